package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domainPatrol "patroltrack/internal/domain/patrol"
	"patroltrack/internal/infrastructure/database/postgres/models"
)

type PatrolLogRepository struct {
	db *DB
}

func NewPatrolLogRepository(db *DB) *PatrolLogRepository {
	return &PatrolLogRepository{db: db}
}

func (r *PatrolLogRepository) Append(ctx context.Context, entry *domainPatrol.LogEntry) error {
	entry.ID = uuid.New()
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	dbModel := toPatrolLogModel(entry)
	if err := r.db.DB.WithContext(ctx).Create(dbModel).Error; err != nil {
		return fmt.Errorf("failed to append patrol log: %w", err)
	}

	entry.ID = dbModel.ID

	return nil
}

func (r *PatrolLogRepository) ListByUserBetween(ctx context.Context, username string, from, to time.Time) ([]*domainPatrol.LogEntry, error) {
	var dbModels []models.PatrolLogModel

	err := r.db.DB.WithContext(ctx).
		Where("username = ? AND created_at >= ? AND created_at < ?", username, from, to).
		Order("created_at ASC").
		Find(&dbModels).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list patrol logs: %w", err)
	}

	return toPatrolLogEntities(dbModels), nil
}

func (r *PatrolLogRepository) ListTimeRecordsBetween(ctx context.Context, from, to time.Time) ([]*domainPatrol.LogEntry, error) {
	var dbModels []models.PatrolLogModel

	err := r.db.DB.WithContext(ctx).
		Where("action IN ? AND created_at >= ? AND created_at < ?",
			[]string{domainPatrol.ActionTimeIn, domainPatrol.ActionTimeOut}, from, to).
		Order("created_at ASC").
		Find(&dbModels).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list time records: %w", err)
	}

	return toPatrolLogEntities(dbModels), nil
}

func (r *PatrolLogRepository) ListRecent(ctx context.Context, username string, limit int) ([]*domainPatrol.LogEntry, error) {
	var dbModels []models.PatrolLogModel

	db := r.db.DB.WithContext(ctx).Model(&models.PatrolLogModel{})
	if username != "" {
		db = db.Where("username = ?", username)
	}
	if limit > 0 {
		db = db.Limit(limit)
	}

	if err := db.Order("created_at DESC").Find(&dbModels).Error; err != nil {
		return nil, fmt.Errorf("failed to list recent patrol logs: %w", err)
	}

	return toPatrolLogEntities(dbModels), nil
}

type DutyStatusRepository struct {
	db *DB
}

func NewDutyStatusRepository(db *DB) *DutyStatusRepository {
	return &DutyStatusRepository{db: db}
}

// Upsert keeps the single-row-per-tanod invariant with an ON CONFLICT update
// on the username unique index.
func (r *DutyStatusRepository) Upsert(ctx context.Context, status *domainPatrol.DutyStatus) error {
	if status.ID == uuid.Nil {
		status.ID = uuid.New()
	}
	status.UpdatedAt = time.Now()

	dbModel := &models.DutyStatusModel{
		ID:            status.ID,
		Username:      status.Username,
		Status:        status.Status,
		Location:      status.Location,
		ScheduledTime: status.ScheduledTime,
		UpdatedAt:     status.UpdatedAt,
	}

	err := r.db.DB.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "username"}},
			DoUpdates: clause.AssignmentColumns([]string{"status", "location", "scheduled_time", "updated_at"}),
		}).
		Create(dbModel).Error
	if err != nil {
		return fmt.Errorf("failed to upsert duty status: %w", err)
	}

	return nil
}

func (r *DutyStatusRepository) GetByUsername(ctx context.Context, username string) (*domainPatrol.DutyStatus, error) {
	var dbModel models.DutyStatusModel
	err := r.db.DB.WithContext(ctx).
		Where("username = ?", username).
		First(&dbModel).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domainPatrol.ErrStatusNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get duty status: %w", err)
	}

	return toDutyStatusEntity(&dbModel), nil
}

func (r *DutyStatusRepository) List(ctx context.Context) ([]*domainPatrol.DutyStatus, error) {
	var dbModels []models.DutyStatusModel

	err := r.db.DB.WithContext(ctx).
		Order("updated_at DESC").
		Find(&dbModels).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list duty statuses: %w", err)
	}

	statuses := make([]*domainPatrol.DutyStatus, 0, len(dbModels))
	for i := range dbModels {
		statuses = append(statuses, toDutyStatusEntity(&dbModels[i]))
	}

	return statuses, nil
}

func toPatrolLogModel(e *domainPatrol.LogEntry) *models.PatrolLogModel {
	return &models.PatrolLogModel{
		ID:        e.ID,
		Username:  e.Username,
		Action:    e.Action,
		Location:  e.Location,
		Details:   e.Details,
		TimeIn:    e.TimeIn,
		TimeOut:   e.TimeOut,
		CreatedAt: e.CreatedAt,
	}
}

func toPatrolLogEntities(dbModels []models.PatrolLogModel) []*domainPatrol.LogEntry {
	entries := make([]*domainPatrol.LogEntry, 0, len(dbModels))
	for i := range dbModels {
		m := &dbModels[i]
		entries = append(entries, &domainPatrol.LogEntry{
			ID:        m.ID,
			Username:  m.Username,
			Action:    m.Action,
			Location:  m.Location,
			Details:   m.Details,
			TimeIn:    m.TimeIn,
			TimeOut:   m.TimeOut,
			CreatedAt: m.CreatedAt,
		})
	}
	return entries
}

func toDutyStatusEntity(m *models.DutyStatusModel) *domainPatrol.DutyStatus {
	return &domainPatrol.DutyStatus{
		ID:            m.ID,
		Username:      m.Username,
		Status:        m.Status,
		Location:      m.Location,
		ScheduledTime: m.ScheduledTime,
		UpdatedAt:     m.UpdatedAt,
	}
}

package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	domainIncident "patroltrack/internal/domain/incident"
	"patroltrack/internal/infrastructure/database/postgres/models"
)

type IncidentRepository struct {
	db *DB
}

func NewIncidentRepository(db *DB) *IncidentRepository {
	return &IncidentRepository{db: db}
}

func (r *IncidentRepository) Create(ctx context.Context, inc *domainIncident.Incident) error {
	inc.ID = uuid.New()
	inc.CreatedAt = time.Now()
	inc.UpdatedAt = time.Now()
	if inc.Status == "" {
		inc.Status = domainIncident.StatusUnderReview
	}

	dbModel := toIncidentModel(inc)
	if err := r.db.DB.WithContext(ctx).Create(dbModel).Error; err != nil {
		return fmt.Errorf("failed to create incident: %w", err)
	}

	inc.ID = dbModel.ID
	inc.Seq = dbModel.Seq

	return nil
}

func (r *IncidentRepository) GetByID(ctx context.Context, incidentID uuid.UUID) (*domainIncident.Incident, error) {
	var dbModel models.IncidentModel
	err := r.db.DB.WithContext(ctx).
		Where("id = ?", incidentID).
		First(&dbModel).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domainIncident.ErrIncidentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get incident: %w", err)
	}

	return toIncidentEntity(&dbModel), nil
}

func (r *IncidentRepository) List(ctx context.Context, filter *domainIncident.Filter) ([]*domainIncident.Incident, error) {
	var dbModels []models.IncidentModel

	db := r.db.DB.WithContext(ctx).Model(&models.IncidentModel{})

	if filter != nil {
		if filter.Status != nil {
			db = db.Where("status = ?", string(*filter.Status))
		}
		if filter.ReportedBy != nil {
			db = db.Where("reported_by = ?", *filter.ReportedBy)
		}
		if filter.AssignedTanod != nil {
			db = db.Where("assigned_tanod = ?", *filter.AssignedTanod)
		}
		if filter.ReportedAfter != nil {
			db = db.Where("reported_at >= ?", *filter.ReportedAfter)
		}
		if filter.ReportedBefore != nil {
			db = db.Where("reported_at <= ?", *filter.ReportedBefore)
		}
		if filter.Limit > 0 {
			db = db.Limit(filter.Limit)
		}
	}

	// Dashboards show newest first.
	if err := db.Order("reported_at DESC").Find(&dbModels).Error; err != nil {
		return nil, fmt.Errorf("failed to list incidents: %w", err)
	}

	incidents := make([]*domainIncident.Incident, 0, len(dbModels))
	for i := range dbModels {
		incidents = append(incidents, toIncidentEntity(&dbModels[i]))
	}

	return incidents, nil
}

func (r *IncidentRepository) ListSince(ctx context.Context, afterSeq int64, limit int) ([]*domainIncident.Incident, error) {
	var dbModels []models.IncidentModel

	db := r.db.DB.WithContext(ctx).
		Where("seq > ?", afterSeq).
		Order("seq ASC")
	if limit > 0 {
		db = db.Limit(limit)
	}

	if err := db.Find(&dbModels).Error; err != nil {
		return nil, fmt.Errorf("failed to list incident updates: %w", err)
	}

	incidents := make([]*domainIncident.Incident, 0, len(dbModels))
	for i := range dbModels {
		incidents = append(incidents, toIncidentEntity(&dbModels[i]))
	}

	return incidents, nil
}

// Assign guards on the current status in the WHERE clause so a concurrent
// resolve or assign cannot be overwritten: zero rows affected means the
// incident either does not exist or already left under_review.
func (r *IncidentRepository) Assign(ctx context.Context, incidentID uuid.UUID, tanod string) error {
	result := r.db.DB.WithContext(ctx).
		Model(&models.IncidentModel{}).
		Where("id = ? AND status = ?", incidentID, string(domainIncident.StatusUnderReview)).
		Updates(map[string]interface{}{
			"status":         string(domainIncident.StatusInProgress),
			"assigned_tanod": tanod,
			"updated_at":     time.Now(),
		})

	if result.Error != nil {
		return fmt.Errorf("failed to assign incident: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domainIncident.ErrInvalidTransition
	}

	return nil
}

func (r *IncidentRepository) Resolve(ctx context.Context, incidentID uuid.UUID, resolvedBy string, resolvedAt time.Time) error {
	result := r.db.DB.WithContext(ctx).
		Model(&models.IncidentModel{}).
		Where("id = ? AND status <> ?", incidentID, string(domainIncident.StatusResolved)).
		Updates(map[string]interface{}{
			"status":      string(domainIncident.StatusResolved),
			"resolved_by": resolvedBy,
			"resolved_at": resolvedAt,
			"updated_at":  time.Now(),
		})

	if result.Error != nil {
		return fmt.Errorf("failed to resolve incident: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domainIncident.ErrAlreadyResolved
	}

	return nil
}

func toIncidentModel(inc *domainIncident.Incident) *models.IncidentModel {
	return &models.IncidentModel{
		ID:            inc.ID,
		Seq:           inc.Seq,
		Type:          inc.Type,
		ReportedBy:    inc.ReportedBy,
		Location:      inc.Location,
		Latitude:      inc.Latitude,
		Longitude:     inc.Longitude,
		ReportedAt:    inc.ReportedAt,
		ImageKey:      inc.ImageKey,
		Status:        string(inc.Status),
		AssignedTanod: inc.AssignedTanod,
		ResolvedBy:    inc.ResolvedBy,
		ResolvedAt:    inc.ResolvedAt,
		CreatedAt:     inc.CreatedAt,
		UpdatedAt:     inc.UpdatedAt,
	}
}

func toIncidentEntity(m *models.IncidentModel) *domainIncident.Incident {
	return &domainIncident.Incident{
		ID:            m.ID,
		Seq:           m.Seq,
		Type:          m.Type,
		ReportedBy:    m.ReportedBy,
		Location:      m.Location,
		Latitude:      m.Latitude,
		Longitude:     m.Longitude,
		ReportedAt:    m.ReportedAt,
		ImageKey:      m.ImageKey,
		Status:        domainIncident.Status(m.Status),
		AssignedTanod: m.AssignedTanod,
		ResolvedBy:    m.ResolvedBy,
		ResolvedAt:    m.ResolvedAt,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

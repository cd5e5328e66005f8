package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	domainUser "patroltrack/internal/domain/user"
	"patroltrack/internal/infrastructure/database/postgres/models"
)

type UserRepository struct {
	db *DB
}

func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, u *domainUser.User) error {
	u.ID = uuid.New()
	u.CreatedAt = time.Now()
	u.UpdatedAt = time.Now()
	if u.Status == "" {
		u.Status = domainUser.StatusPending
	}

	dbModel := toUserModel(u)
	if err := r.db.DB.WithContext(ctx).Create(dbModel).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domainUser.ErrUserAlreadyExists
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	u.ID = dbModel.ID

	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, userID uuid.UUID) (*domainUser.User, error) {
	var dbModel models.UserModel
	err := r.db.DB.WithContext(ctx).
		Where("id = ?", userID).
		First(&dbModel).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domainUser.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return toUserEntity(&dbModel), nil
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*domainUser.User, error) {
	var dbModel models.UserModel
	err := r.db.DB.WithContext(ctx).
		Where("username = ?", username).
		First(&dbModel).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domainUser.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return toUserEntity(&dbModel), nil
}

func (r *UserRepository) Update(ctx context.Context, u *domainUser.User) error {
	u.UpdatedAt = time.Now()

	result := r.db.DB.WithContext(ctx).
		Model(&models.UserModel{}).
		Where("id = ?", u.ID).
		Updates(map[string]interface{}{
			"full_name":  u.FullName,
			"email":      u.Email,
			"address":    u.Address,
			"image_key":  u.ImageKey,
			"updated_at": u.UpdatedAt,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update user: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domainUser.ErrUserNotFound
	}

	return nil
}

func (r *UserRepository) UpdateStatus(ctx context.Context, userID uuid.UUID, status string) error {
	result := r.db.DB.WithContext(ctx).
		Model(&models.UserModel{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now(),
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update user status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domainUser.ErrUserNotFound
	}

	return nil
}

func (r *UserRepository) Delete(ctx context.Context, userID uuid.UUID) error {
	result := r.db.DB.WithContext(ctx).
		Where("id = ?", userID).
		Delete(&models.UserModel{})

	if result.Error != nil {
		return fmt.Errorf("failed to delete user: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domainUser.ErrUserNotFound
	}

	return nil
}

func (r *UserRepository) List(ctx context.Context, role string) ([]*domainUser.User, error) {
	var dbModels []models.UserModel

	db := r.db.DB.WithContext(ctx).Model(&models.UserModel{})
	if role != "" {
		db = db.Where("role = ?", role)
	}

	if err := db.Order("created_at DESC").Find(&dbModels).Error; err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	users := make([]*domainUser.User, 0, len(dbModels))
	for i := range dbModels {
		users = append(users, toUserEntity(&dbModels[i]))
	}

	return users, nil
}

func toUserModel(u *domainUser.User) *models.UserModel {
	return &models.UserModel{
		ID:             u.ID,
		Username:       u.Username,
		Email:          u.Email,
		PasswordHashed: u.PasswordHashed,
		FullName:       u.FullName,
		Role:           u.Role,
		Status:         u.Status,
		Address:        u.Address,
		ImageKey:       u.ImageKey,
		CreatedAt:      u.CreatedAt,
		UpdatedAt:      u.UpdatedAt,
	}
}

func toUserEntity(m *models.UserModel) *domainUser.User {
	return &domainUser.User{
		ID:             m.ID,
		Username:       m.Username,
		Email:          m.Email,
		PasswordHashed: m.PasswordHashed,
		FullName:       m.FullName,
		Role:           m.Role,
		Status:         m.Status,
		Address:        m.Address,
		ImageKey:       m.ImageKey,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

package models

import (
	"time"

	"github.com/google/uuid"
)

// UserModel represents the database model for User
type UserModel struct {
	ID             uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Username       string    `gorm:"type:varchar(100);not null;uniqueIndex"`
	Email          string    `gorm:"type:varchar(255);not null;uniqueIndex"`
	PasswordHashed string    `gorm:"type:varchar(255);not null"`
	FullName       string    `gorm:"type:varchar(255);not null"`
	Role           string    `gorm:"type:varchar(50);not null;default:'resident';index"`
	Status         string    `gorm:"type:varchar(50);not null;default:'pending';index"`
	Address        *string   `gorm:"type:text"`
	ImageKey       *string   `gorm:"type:varchar(512)"`
	CreatedAt      time.Time `gorm:"not null"`
	UpdatedAt      time.Time `gorm:"not null"`
}

func (UserModel) TableName() string {
	return "users"
}

// RefreshTokenModel represents the database model for RefreshToken
type RefreshTokenModel struct {
	ID        uuid.UUID  `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	UserID    uuid.UUID  `gorm:"type:uuid;not null;index"`
	Token     string     `gorm:"type:varchar(500);not null;unique;index"`
	ExpiresAt time.Time  `gorm:"not null;index"`
	Revoked   bool       `gorm:"default:false;index"`
	RevokedAt *time.Time `gorm:"type:timestamptz"`
	CreatedAt time.Time  `gorm:"not null"`
	UpdatedAt time.Time  `gorm:"not null"`
}

func (RefreshTokenModel) TableName() string {
	return "refresh_tokens"
}

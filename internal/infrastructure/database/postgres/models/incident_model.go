package models

import (
	"time"

	"github.com/google/uuid"
)

// IncidentModel represents the database model for Incident.
// AssignedTanod is kept as a plain username column with no foreign key so a
// deleted user account leaves the historical assignment intact.
type IncidentModel struct {
	ID            uuid.UUID  `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Seq           int64      `gorm:"autoIncrement;uniqueIndex"`
	Type          string     `gorm:"type:varchar(100);not null"`
	ReportedBy    string     `gorm:"type:varchar(100);not null;index"`
	Location      string     `gorm:"type:text;not null"`
	Latitude      float64    `gorm:"type:double precision;not null"`
	Longitude     float64    `gorm:"type:double precision;not null"`
	ReportedAt    time.Time  `gorm:"type:timestamptz;not null;index"`
	ImageKey      *string    `gorm:"type:varchar(512)"`
	Status        string     `gorm:"type:varchar(50);not null;default:'under_review';index"`
	AssignedTanod *string    `gorm:"type:varchar(100);index"`
	ResolvedBy    *string    `gorm:"type:varchar(100)"`
	ResolvedAt    *time.Time `gorm:"type:timestamptz"`
	CreatedAt     time.Time  `gorm:"not null;index"`
	UpdatedAt     time.Time  `gorm:"not null"`
}

func (IncidentModel) TableName() string {
	return "incidents"
}

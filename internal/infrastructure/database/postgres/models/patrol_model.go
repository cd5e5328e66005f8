package models

import (
	"time"

	"github.com/google/uuid"
)

// PatrolLogModel represents the append-only patrol log table. Rows are never
// updated or deleted after insert.
type PatrolLogModel struct {
	ID        uuid.UUID  `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Username  string     `gorm:"type:varchar(100);not null;index:idx_patrol_logs_user_created"`
	Action    string     `gorm:"type:varchar(50);not null;index"`
	Location  string     `gorm:"type:text"`
	Details   string     `gorm:"type:text"`
	TimeIn    *time.Time `gorm:"type:timestamptz"`
	TimeOut   *time.Time `gorm:"type:timestamptz"`
	CreatedAt time.Time  `gorm:"not null;index:idx_patrol_logs_user_created;index"`
}

func (PatrolLogModel) TableName() string {
	return "patrol_logs"
}

// DutyStatusModel is the one-row-per-tanod roster projection.
type DutyStatusModel struct {
	ID            uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Username      string    `gorm:"type:varchar(100);not null;uniqueIndex"`
	Status        string    `gorm:"type:varchar(100);not null"`
	Location      string    `gorm:"type:text"`
	ScheduledTime time.Time `gorm:"type:timestamptz;not null"`
	UpdatedAt     time.Time `gorm:"not null"`
}

func (DutyStatusModel) TableName() string {
	return "duty_statuses"
}

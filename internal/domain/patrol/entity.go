package patrol

import (
	"time"

	"github.com/google/uuid"
)

// Log actions. TIME-IN and TIME-OUT bracket a shift; ActionStatus rows record
// duty-status announcements (the free-text Details carries the description).
const (
	ActionTimeIn  = "TIME-IN"
	ActionTimeOut = "TIME-OUT"
	ActionStatus  = "STATUS"
)

// Duty statuses shown on the dashboard roster.
const (
	DutyAvailable  = "Available"
	DutyOnDuty     = "On duty"
	DutyResponding = "On its way to incident"
	DutyOffDuty    = "Off duty"
)

// LogEntry is an append-only record of a patrol event. Rows are never mutated
// after insert; the on-duty state of a tanod is derived from today's rows.
type LogEntry struct {
	ID       uuid.UUID
	Username string
	Action   string
	Location string
	Details  string
	TimeIn   *time.Time
	TimeOut  *time.Time

	CreatedAt time.Time
}

// DutyStatus is the single mutable roster row per tanod: a best-effort
// projection of their latest announced status, reconciled by subsequent
// status-change calls. The log, not this row, is the source of truth.
type DutyStatus struct {
	ID            uuid.UUID
	Username      string
	Status        string
	Location      string
	ScheduledTime time.Time

	UpdatedAt time.Time
}

// TodayStatus is the derived time-tracking state of one user for one day.
type TodayStatus struct {
	TimeIn          *time.Time `json:"time_in,omitempty"`
	TimeOut         *time.Time `json:"time_out,omitempty"`
	HasTimeInToday  bool       `json:"has_time_in_today"`
	HasTimeOutToday bool       `json:"has_time_out_today"`
}

// AvailableTanod is one entry of the duty-roster derivation: a tanod with an
// open shift (TIME-IN without a later TIME-OUT) on the requested day.
type AvailableTanod struct {
	Username string    `json:"username"`
	TimeIn   time.Time `json:"time_in"`
	LogID    uuid.UUID `json:"log_id"`
}

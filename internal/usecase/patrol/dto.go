package patrol

import (
	"time"

	"github.com/google/uuid"

	domainPatrol "patroltrack/internal/domain/patrol"
)

// Request DTOs

type TimeRecordRequest struct {
	Action   string `json:"action" validate:"required"`
	Location string `json:"location" validate:"omitempty,max=500"`
}

type StatusChangeRequest struct {
	Status        string     `json:"status" validate:"required"`
	Location      string     `json:"location" validate:"omitempty,max=500"`
	Details       string     `json:"details" validate:"omitempty,max=1000"`
	ScheduledTime *time.Time `json:"scheduled_time" validate:"omitempty"`
}

// Response DTOs

type LogEntryResponse struct {
	ID       uuid.UUID  `json:"id"`
	Username string     `json:"username"`
	Action   string     `json:"action"`
	Location string     `json:"location,omitempty"`
	Details  string     `json:"details,omitempty"`
	TimeIn   *time.Time `json:"time_in,omitempty"`
	TimeOut  *time.Time `json:"time_out,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// TimeRecordResponse returns the appended entry together with the derived
// state of today's shift after the event.
type TimeRecordResponse struct {
	Entry *LogEntryResponse         `json:"entry"`
	Today *domainPatrol.TodayStatus `json:"today"`
}

type DutyStatusResponse struct {
	Username      string    `json:"username"`
	Status        string    `json:"status"`
	Location      string    `json:"location,omitempty"`
	ScheduledTime time.Time `json:"scheduled_time"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func ToLogEntryResponse(entry *domainPatrol.LogEntry) *LogEntryResponse {
	return &LogEntryResponse{
		ID:        entry.ID,
		Username:  entry.Username,
		Action:    entry.Action,
		Location:  entry.Location,
		Details:   entry.Details,
		TimeIn:    entry.TimeIn,
		TimeOut:   entry.TimeOut,
		CreatedAt: entry.CreatedAt,
	}
}

func ToLogEntryResponses(entries []*domainPatrol.LogEntry) []*LogEntryResponse {
	responses := make([]*LogEntryResponse, 0, len(entries))
	for _, entry := range entries {
		responses = append(responses, ToLogEntryResponse(entry))
	}
	return responses
}

func ToDutyStatusResponse(status *domainPatrol.DutyStatus) *DutyStatusResponse {
	return &DutyStatusResponse{
		Username:      status.Username,
		Status:        status.Status,
		Location:      status.Location,
		ScheduledTime: status.ScheduledTime,
		UpdatedAt:     status.UpdatedAt,
	}
}

func ToDutyStatusResponses(statuses []*domainPatrol.DutyStatus) []*DutyStatusResponse {
	responses := make([]*DutyStatusResponse, 0, len(statuses))
	for _, status := range statuses {
		responses = append(responses, ToDutyStatusResponse(status))
	}
	return responses
}

package incident

import (
	"time"

	"github.com/google/uuid"

	domainIncident "patroltrack/internal/domain/incident"
)

// Request DTOs

type ReportIncidentRequest struct {
	Type      string  `json:"type" validate:"required,incident_type"`
	Location  string  `json:"location" validate:"required,min=3,max=500"`
	Latitude  string  `json:"latitude" validate:"required"`
	Longitude string  `json:"longitude" validate:"required"`
	ImageKey  *string `json:"image_key" validate:"omitempty,max=512"`

	// ReportedAt defaults to the server clock when omitted.
	ReportedAt *time.Time `json:"reported_at" validate:"omitempty"`
}

type AssignTanodRequest struct {
	Tanod string `json:"tanod" validate:"required,min=1,max=100"`
}

type ListIncidentsRequest struct {
	Status        *string `form:"status"`
	ReportedBy    *string `form:"reported_by"`
	AssignedTanod *string `form:"assigned_tanod"`
	Limit         int     `form:"limit" validate:"omitempty,min=1,max=500"`
}

// Response DTOs

type IncidentResponse struct {
	ID            uuid.UUID              `json:"id"`
	Seq           int64                  `json:"seq"`
	Type          string                 `json:"type"`
	ReportedBy    string                 `json:"reported_by"`
	Location      string                 `json:"location"`
	Latitude      float64                `json:"latitude"`
	Longitude     float64                `json:"longitude"`
	ReportedAt    time.Time              `json:"reported_at"`
	ImageKey      *string                `json:"image_key,omitempty"`
	Status        domainIncident.Status  `json:"status"`
	AssignedTanod *string                `json:"assigned_tanod,omitempty"`
	ResolvedBy    *string                `json:"resolved_by,omitempty"`
	ResolvedAt    *time.Time             `json:"resolved_at,omitempty"`
	CreatedAt     time.Time              `json:"created_at"`
}

// UpdatesResponse is the polling feed: every incident with a sequence number
// greater than the client's cursor, plus the new cursor to pass next time.
type UpdatesResponse struct {
	Incidents []*IncidentResponse `json:"incidents"`
	Cursor    int64               `json:"cursor"`
}

func ToIncidentResponse(inc *domainIncident.Incident) *IncidentResponse {
	return &IncidentResponse{
		ID:            inc.ID,
		Seq:           inc.Seq,
		Type:          inc.Type,
		ReportedBy:    inc.ReportedBy,
		Location:      inc.Location,
		Latitude:      inc.Latitude,
		Longitude:     inc.Longitude,
		ReportedAt:    inc.ReportedAt,
		ImageKey:      inc.ImageKey,
		Status:        inc.Status,
		AssignedTanod: inc.AssignedTanod,
		ResolvedBy:    inc.ResolvedBy,
		ResolvedAt:    inc.ResolvedAt,
		CreatedAt:     inc.CreatedAt,
	}
}

func ToIncidentResponses(incidents []*domainIncident.Incident) []*IncidentResponse {
	responses := make([]*IncidentResponse, 0, len(incidents))
	for _, inc := range incidents {
		responses = append(responses, ToIncidentResponse(inc))
	}
	return responses
}

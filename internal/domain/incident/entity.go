package incident

import (
	"time"

	"github.com/google/uuid"
)

// Status represents the lifecycle state of an incident report
type Status string

const (
	StatusUnderReview Status = "under_review" // Newly reported, awaiting triage
	StatusInProgress  Status = "in_progress"  // Tanod assigned and responding
	StatusResolved    Status = "resolved"     // Closed; terminal
)

// Incident represents a report filed by a resident or tanod. The lifecycle
// only moves forward: under_review -> in_progress -> resolved, with a direct
// under_review -> resolved path for reports closed without dispatch.
type Incident struct {
	ID uuid.UUID

	// Seq is a monotonically increasing sequence used as the polling cursor
	// for the updates feed.
	Seq int64

	Type       string
	ReportedBy string
	Location   string
	Latitude   float64
	Longitude  float64
	ReportedAt time.Time

	// ImageKey is the opaque object-store reference of the photo evidence.
	ImageKey *string

	Status        Status
	AssignedTanod *string
	ResolvedBy    *string
	ResolvedAt    *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsTerminal reports whether the incident can no longer change state.
func (i *Incident) IsTerminal() bool {
	return i.Status == StatusResolved
}

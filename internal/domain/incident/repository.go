package incident

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository defines the interface for incident repository operations
type Repository interface {
	Create(ctx context.Context, incident *Incident) error
	GetByID(ctx context.Context, incidentID uuid.UUID) (*Incident, error)
	List(ctx context.Context, filter *Filter) ([]*Incident, error)

	// ListSince returns incidents with Seq greater than afterSeq in ascending
	// sequence order. It is the read contract of the polling clients.
	ListSince(ctx context.Context, afterSeq int64, limit int) ([]*Incident, error)

	// Assign sets status=in_progress and the assigned tanod in one update,
	// guarded on the current status so a concurrent writer cannot regress the
	// lifecycle.
	Assign(ctx context.Context, incidentID uuid.UUID, tanod string) error

	// Resolve sets status=resolved with the resolver and timestamp, guarded on
	// the incident not already being resolved.
	Resolve(ctx context.Context, incidentID uuid.UUID, resolvedBy string, resolvedAt time.Time) error
}

// Filter represents filtering options for listing incidents
type Filter struct {
	Status        *Status
	ReportedBy    *string
	AssignedTanod *string

	ReportedAfter  *time.Time
	ReportedBefore *time.Time

	Limit int
}

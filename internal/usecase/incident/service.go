package incident

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	domainIncident "patroltrack/internal/domain/incident"
	domainPatrol "patroltrack/internal/domain/patrol"
	"patroltrack/internal/logger"
	"patroltrack/internal/notify"
	appErrors "patroltrack/pkg/errors"
	"patroltrack/pkg/utils"
)

// storageTimeout bounds every store round trip so no operation hangs; past
// it the caller gets a STORAGE_UNAVAILABLE error instead.
const storageTimeout = 5 * time.Second

// AvailabilityResolver is the duty-roster view the lifecycle consults before
// assignment. Implemented by the patrol service.
type AvailabilityResolver interface {
	ListAvailableTanods(ctx context.Context, asOf time.Time) ([]*domainPatrol.AvailableTanod, error)
}

// Service implements the incident lifecycle use cases
type Service struct {
	incidentRepo domainIncident.Repository
	roster       AvailabilityResolver
	publisher    notify.Publisher

	// locks serializes operations on the same incident; availability is
	// re-checked inside the critical section of AssignTanod so a tanod who
	// just clocked out cannot be assigned from a stale dashboard list.
	locks *utils.KeyMutex

	now func() time.Time
}

// NewService creates a new incident lifecycle service
func NewService(
	incidentRepo domainIncident.Repository,
	roster AvailabilityResolver,
	publisher notify.Publisher,
) *Service {
	return &Service{
		incidentRepo: incidentRepo,
		roster:       roster,
		publisher:    publisher,
		locks:        utils.NewKeyMutex(),
		now:          time.Now,
	}
}

// WithClock overrides the service clock. Used by tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// ReportIncident validates and files a new report in state under_review.
// All validation happens before any write.
func (s *Service) ReportIncident(ctx context.Context, reporter string, req *ReportIncidentRequest) (*IncidentResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, appErrors.NewAppError("INVALID_INCIDENT_DATA", "Invalid input", err)
	}
	if reporter == "" {
		return nil, appErrors.NewAppError("INVALID_INCIDENT_DATA", "Reporter is required", domainIncident.ErrInvalidData)
	}

	lat, err := ParseCoordinate("latitude", req.Latitude)
	if err != nil {
		return nil, err
	}
	lon, err := ParseCoordinate("longitude", req.Longitude)
	if err != nil {
		return nil, err
	}

	reportedAt := s.now()
	if req.ReportedAt != nil {
		reportedAt = *req.ReportedAt
	}

	inc := &domainIncident.Incident{
		Type:       req.Type,
		ReportedBy: reporter,
		Location:   req.Location,
		Latitude:   lat,
		Longitude:  lon,
		ReportedAt: reportedAt,
		ImageKey:   req.ImageKey,
		Status:     domainIncident.StatusUnderReview,
	}

	sctx, cancel := context.WithTimeout(ctx, storageTimeout)
	defer cancel()
	if err := s.incidentRepo.Create(sctx, inc); err != nil {
		return nil, s.storageError("failed to save incident", err)
	}

	logger.Info("Incident reported",
		zap.String("incident_id", inc.ID.String()),
		zap.String("type", inc.Type),
		zap.String("reported_by", reporter),
		zap.String("event", "incident_reported"),
	)

	s.publisher.PublishIncident(&notify.IncidentEvent{
		Event:      "incident_reported",
		IncidentID: inc.ID.String(),
		Seq:        inc.Seq,
		Type:       inc.Type,
		Status:     string(inc.Status),
		Location:   inc.Location,
		Time:       reportedAt,
	})

	return ToIncidentResponse(inc), nil
}

// AssignTanod moves an incident to in_progress and records the responding
// tanod. Eligibility is re-validated against the duty roster inside the
// operation; a stale client-side list is never trusted.
func (s *Service) AssignTanod(ctx context.Context, incidentID uuid.UUID, req *AssignTanodRequest) (*IncidentResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, appErrors.NewAppError("VALIDATION_ERROR", "Invalid input", err)
	}

	key := incidentID.String()
	s.locks.Lock(key)
	defer s.locks.Unlock(key)

	inc, err := s.getIncident(ctx, incidentID)
	if err != nil {
		return nil, err
	}

	if err := ValidateStatusTransition(inc.Status, domainIncident.StatusInProgress); err != nil {
		return nil, err
	}

	// Re-check availability at assignment time.
	available, err := s.roster.ListAvailableTanods(ctx, s.now())
	if err != nil {
		return nil, appErrors.NewAppError("STORAGE_UNAVAILABLE", "Duty roster unavailable, assignment blocked", err)
	}

	onDuty := false
	for _, t := range available {
		if t.Username == req.Tanod {
			onDuty = true
			break
		}
	}
	if !onDuty {
		return nil, appErrors.NewAppError(
			"TANOD_NOT_AVAILABLE",
			fmt.Sprintf("Tanod %q is not on duty", req.Tanod),
			domainIncident.ErrTanodNotAvailable,
		)
	}

	sctx, cancel := context.WithTimeout(ctx, storageTimeout)
	defer cancel()
	if err := s.incidentRepo.Assign(sctx, incidentID, req.Tanod); err != nil {
		if errors.Is(err, domainIncident.ErrInvalidTransition) {
			return nil, appErrors.NewAppError(
				"INVALID_TRANSITION",
				fmt.Sprintf("Incident is no longer %s", domainIncident.StatusUnderReview),
				err,
			)
		}
		return nil, s.storageError("failed to assign incident", err)
	}

	updated, err := s.getIncident(ctx, incidentID)
	if err != nil {
		return nil, err
	}

	logger.Info("Tanod assigned to incident",
		zap.String("incident_id", incidentID.String()),
		zap.String("tanod", req.Tanod),
		zap.String("event", "incident_assigned"),
	)

	s.publisher.PublishIncident(&notify.IncidentEvent{
		Event:         "incident_assigned",
		IncidentID:    updated.ID.String(),
		Seq:           updated.Seq,
		Type:          updated.Type,
		Status:        string(updated.Status),
		Location:      updated.Location,
		AssignedTanod: req.Tanod,
		Time:          s.now(),
	})

	return ToIncidentResponse(updated), nil
}

// ResolveIncident closes an incident from either under_review or
// in_progress. Resolving an already-resolved incident is reported as
// ALREADY_RESOLVED rather than silently ignored, and leaves resolved_by and
// resolved_at untouched.
func (s *Service) ResolveIncident(ctx context.Context, incidentID uuid.UUID, resolvedBy string) (*IncidentResponse, error) {
	if resolvedBy == "" {
		return nil, appErrors.NewAppError("VALIDATION_ERROR", "Resolver is required", appErrors.ErrInvalidInput)
	}

	key := incidentID.String()
	s.locks.Lock(key)
	defer s.locks.Unlock(key)

	inc, err := s.getIncident(ctx, incidentID)
	if err != nil {
		return nil, err
	}

	if inc.Status == domainIncident.StatusResolved {
		return nil, appErrors.NewAppError(
			"ALREADY_RESOLVED",
			fmt.Sprintf("Incident was already resolved by %s", derefOr(inc.ResolvedBy, "unknown")),
			domainIncident.ErrAlreadyResolved,
		)
	}

	sctx, cancel := context.WithTimeout(ctx, storageTimeout)
	defer cancel()
	if err := s.incidentRepo.Resolve(sctx, incidentID, resolvedBy, s.now()); err != nil {
		if errors.Is(err, domainIncident.ErrAlreadyResolved) {
			return nil, appErrors.NewAppError("ALREADY_RESOLVED", "Incident is already resolved", err)
		}
		return nil, s.storageError("failed to resolve incident", err)
	}

	updated, err := s.getIncident(ctx, incidentID)
	if err != nil {
		return nil, err
	}

	logger.Info("Incident resolved",
		zap.String("incident_id", incidentID.String()),
		zap.String("resolved_by", resolvedBy),
		zap.String("event", "incident_resolved"),
	)

	s.publisher.PublishIncident(&notify.IncidentEvent{
		Event:      "incident_resolved",
		IncidentID: updated.ID.String(),
		Seq:        updated.Seq,
		Type:       updated.Type,
		Status:     string(updated.Status),
		Location:   updated.Location,
		Time:       s.now(),
	})

	return ToIncidentResponse(updated), nil
}

// GetIncident returns a single incident by id.
func (s *Service) GetIncident(ctx context.Context, incidentID uuid.UUID) (*IncidentResponse, error) {
	inc, err := s.getIncident(ctx, incidentID)
	if err != nil {
		return nil, err
	}
	return ToIncidentResponse(inc), nil
}

// ListIncidents returns incidents newest first, optionally filtered by
// status, reporter or assignee.
func (s *Service) ListIncidents(ctx context.Context, req *ListIncidentsRequest) ([]*IncidentResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, appErrors.NewAppError("VALIDATION_ERROR", "Invalid filter", err)
	}

	filter := &domainIncident.Filter{
		ReportedBy:    req.ReportedBy,
		AssignedTanod: req.AssignedTanod,
		Limit:         req.Limit,
	}
	if req.Status != nil {
		status := domainIncident.Status(*req.Status)
		if _, ok := validTransitions[status]; !ok {
			return nil, appErrors.NewAppError(
				"VALIDATION_ERROR",
				fmt.Sprintf("Unknown status %q", *req.Status),
				domainIncident.ErrInvalidStatus,
			)
		}
		filter.Status = &status
	}

	sctx, cancel := context.WithTimeout(ctx, storageTimeout)
	defer cancel()
	incidents, err := s.incidentRepo.List(sctx, filter)
	if err != nil {
		return nil, s.storageError("failed to list incidents", err)
	}

	return ToIncidentResponses(incidents), nil
}

// ListUpdates is the polling feed. The caller owns the cursor: it passes the
// last sequence number it has seen and receives everything newer plus the
// cursor to use on the next poll.
func (s *Service) ListUpdates(ctx context.Context, afterSeq int64, limit int) (*UpdatesResponse, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	sctx, cancel := context.WithTimeout(ctx, storageTimeout)
	defer cancel()
	incidents, err := s.incidentRepo.ListSince(sctx, afterSeq, limit)
	if err != nil {
		return nil, s.storageError("failed to list incident updates", err)
	}

	cursor := afterSeq
	for _, inc := range incidents {
		if inc.Seq > cursor {
			cursor = inc.Seq
		}
	}

	return &UpdatesResponse{
		Incidents: ToIncidentResponses(incidents),
		Cursor:    cursor,
	}, nil
}

func (s *Service) getIncident(ctx context.Context, incidentID uuid.UUID) (*domainIncident.Incident, error) {
	sctx, cancel := context.WithTimeout(ctx, storageTimeout)
	defer cancel()

	inc, err := s.incidentRepo.GetByID(sctx, incidentID)
	if err != nil {
		if errors.Is(err, domainIncident.ErrIncidentNotFound) {
			return nil, appErrors.NewAppError(
				"INCIDENT_NOT_FOUND",
				fmt.Sprintf("No incident with id %s", incidentID),
				err,
			)
		}
		return nil, s.storageError("failed to load incident", err)
	}

	return inc, nil
}

func (s *Service) storageError(msg string, err error) error {
	return appErrors.NewAppError("STORAGE_UNAVAILABLE", msg, errors.Join(appErrors.ErrStorageUnavailable, err))
}

func derefOr(s *string, fallback string) string {
	if s != nil {
		return *s
	}
	return fallback
}

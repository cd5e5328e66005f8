package patrol

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	domainPatrol "patroltrack/internal/domain/patrol"
	"patroltrack/internal/logger"
	"patroltrack/internal/notify"
	appErrors "patroltrack/pkg/errors"
	"patroltrack/pkg/utils"
)

const storageTimeout = 5 * time.Second

// validTimeActions is the closed set of actions RecordTimeEvent accepts.
var validTimeActions = map[string]bool{
	domainPatrol.ActionTimeIn:  true,
	domainPatrol.ActionTimeOut: true,
}

// validDutyStatuses is the closed set of roster statuses.
var validDutyStatuses = map[string]bool{
	domainPatrol.DutyAvailable:  true,
	domainPatrol.DutyOnDuty:     true,
	domainPatrol.DutyResponding: true,
	domainPatrol.DutyOffDuty:    true,
}

// Service implements patrol time tracking, the activity log and the derived
// duty roster. The append-only log is the source of truth; the duty_statuses
// projection is best effort and never gates a recorded event.
type Service struct {
	logRepo  domainPatrol.LogRepository
	dutyRepo domainPatrol.DutyStatusRepository

	publisher notify.Publisher

	// locks serializes time events per username so two concurrent TIME-INs
	// cannot both pass the open-shift check.
	locks *utils.KeyMutex

	now func() time.Time
}

func NewService(
	logRepo domainPatrol.LogRepository,
	dutyRepo domainPatrol.DutyStatusRepository,
	publisher notify.Publisher,
) *Service {
	return &Service{
		logRepo:   logRepo,
		dutyRepo:  dutyRepo,
		publisher: publisher,
		locks:     utils.NewKeyMutex(),
		now:       time.Now,
	}
}

// WithClock overrides the service clock. Used by tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// RecordTimeEvent appends a TIME-IN or TIME-OUT row for the user after
// checking today's derived shift state. TIME-IN requires no open shift;
// TIME-OUT requires an open one.
func (s *Service) RecordTimeEvent(ctx context.Context, username string, req *TimeRecordRequest) (*TimeRecordResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, appErrors.NewAppError("VALIDATION_ERROR", "Invalid input", err)
	}
	if !validTimeActions[req.Action] {
		return nil, appErrors.NewAppError(
			"VALIDATION_ERROR",
			fmt.Sprintf("Unknown action %q, expected %s or %s", req.Action, domainPatrol.ActionTimeIn, domainPatrol.ActionTimeOut),
			domainPatrol.ErrInvalidAction,
		)
	}

	s.locks.Lock(username)
	defer s.locks.Unlock(username)

	now := s.now()
	today, err := s.deriveTodayStatus(ctx, username, now)
	if err != nil {
		return nil, err
	}

	switch req.Action {
	case domainPatrol.ActionTimeIn:
		if today.HasTimeInToday && !today.HasTimeOutToday {
			return nil, appErrors.NewAppError(
				"DUPLICATE_TIME_IN",
				"A time-in is already open for today",
				domainPatrol.ErrDuplicateTimeIn,
			)
		}
	case domainPatrol.ActionTimeOut:
		if !today.HasTimeInToday {
			return nil, appErrors.NewAppError(
				"MISSING_TIME_IN",
				"No time-in recorded for today",
				domainPatrol.ErrMissingTimeIn,
			)
		}
		if today.HasTimeOutToday {
			return nil, appErrors.NewAppError(
				"DUPLICATE_TIME_OUT",
				"Today's shift is already closed",
				domainPatrol.ErrDuplicateTimeOut,
			)
		}
	}

	entry := &domainPatrol.LogEntry{
		Username:  username,
		Action:    req.Action,
		Location:  req.Location,
		CreatedAt: now,
	}
	if req.Action == domainPatrol.ActionTimeIn {
		entry.TimeIn = &now
	} else {
		entry.TimeOut = &now
	}

	sctx, cancel := context.WithTimeout(ctx, storageTimeout)
	defer cancel()
	if err := s.logRepo.Append(sctx, entry); err != nil {
		return nil, s.storageError("failed to record time event", err)
	}

	logger.Info("Time event recorded",
		zap.String("username", username),
		zap.String("action", req.Action),
		zap.String("event", "time_event_recorded"),
	)

	// Best-effort roster projection. The appended row is already the truth;
	// a failed upsert only delays the dashboard.
	dutyStatus := domainPatrol.DutyOnDuty
	if req.Action == domainPatrol.ActionTimeOut {
		dutyStatus = domainPatrol.DutyOffDuty
	}
	s.upsertDutyStatus(ctx, &domainPatrol.DutyStatus{
		Username:      username,
		Status:        dutyStatus,
		Location:      req.Location,
		ScheduledTime: now,
	})

	s.publisher.PublishPatrol(&notify.PatrolEvent{
		Event:    "time_event_recorded",
		Username: username,
		Action:   req.Action,
		Status:   dutyStatus,
		Location: req.Location,
		Time:     now,
	})

	updated, err := s.deriveTodayStatus(ctx, username, now)
	if err != nil {
		return nil, err
	}

	return &TimeRecordResponse{
		Entry: ToLogEntryResponse(entry),
		Today: updated,
	}, nil
}

// GetTodayStatus returns the user's derived time-tracking state for the
// current day.
func (s *Service) GetTodayStatus(ctx context.Context, username string) (*domainPatrol.TodayStatus, error) {
	return s.deriveTodayStatus(ctx, username, s.now())
}

// RecordStatusChange appends a STATUS row to the activity log and refreshes
// the roster projection. The log append is authoritative; the projection
// upsert is best effort and its failure is only logged.
func (s *Service) RecordStatusChange(ctx context.Context, username string, req *StatusChangeRequest) (*LogEntryResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, appErrors.NewAppError("VALIDATION_ERROR", "Invalid input", err)
	}
	if !validDutyStatuses[req.Status] {
		return nil, appErrors.NewAppError(
			"VALIDATION_ERROR",
			fmt.Sprintf("Unknown duty status %q", req.Status),
			domainPatrol.ErrInvalidStatus,
		)
	}

	s.locks.Lock(username)
	defer s.locks.Unlock(username)

	now := s.now()
	details := req.Details
	if details == "" {
		details = req.Status
	}

	entry := &domainPatrol.LogEntry{
		Username:  username,
		Action:    domainPatrol.ActionStatus,
		Location:  req.Location,
		Details:   details,
		CreatedAt: now,
	}

	sctx, cancel := context.WithTimeout(ctx, storageTimeout)
	defer cancel()
	if err := s.logRepo.Append(sctx, entry); err != nil {
		return nil, s.storageError("failed to record status change", err)
	}

	logger.Info("Duty status change recorded",
		zap.String("username", username),
		zap.String("status", req.Status),
		zap.String("event", "duty_status_changed"),
	)

	scheduled := now
	if req.ScheduledTime != nil {
		scheduled = *req.ScheduledTime
	}
	s.upsertDutyStatus(ctx, &domainPatrol.DutyStatus{
		Username:      username,
		Status:        req.Status,
		Location:      req.Location,
		ScheduledTime: scheduled,
	})

	s.publisher.PublishPatrol(&notify.PatrolEvent{
		Event:    "duty_status_changed",
		Username: username,
		Action:   domainPatrol.ActionStatus,
		Status:   req.Status,
		Location: req.Location,
		Time:     now,
	})

	return ToLogEntryResponse(entry), nil
}

// ListAvailableTanods derives the set of tanods with an open shift on the day
// of asOf: a TIME-IN without a later TIME-OUT. Each tanod appears at most
// once, ordered by time-in ascending.
func (s *Service) ListAvailableTanods(ctx context.Context, asOf time.Time) ([]*domainPatrol.AvailableTanod, error) {
	from, to := dayBounds(asOf)

	sctx, cancel := context.WithTimeout(ctx, storageTimeout)
	defer cancel()
	records, err := s.logRepo.ListTimeRecordsBetween(sctx, from, to)
	if err != nil {
		return nil, s.storageError("failed to load time records", err)
	}

	// Replay the day's rows in order. A TIME-IN opens the user's shift, a
	// TIME-OUT closes it; whoever is still open at the end is available.
	open := make(map[string]*domainPatrol.AvailableTanod)
	for _, rec := range records {
		switch rec.Action {
		case domainPatrol.ActionTimeIn:
			if _, exists := open[rec.Username]; !exists {
				timeIn := rec.CreatedAt
				if rec.TimeIn != nil {
					timeIn = *rec.TimeIn
				}
				open[rec.Username] = &domainPatrol.AvailableTanod{
					Username: rec.Username,
					TimeIn:   timeIn,
					LogID:    rec.ID,
				}
			}
		case domainPatrol.ActionTimeOut:
			delete(open, rec.Username)
		}
	}

	available := make([]*domainPatrol.AvailableTanod, 0, len(open))
	for _, tanod := range open {
		available = append(available, tanod)
	}
	sort.Slice(available, func(i, j int) bool {
		if available[i].TimeIn.Equal(available[j].TimeIn) {
			return available[i].Username < available[j].Username
		}
		return available[i].TimeIn.Before(available[j].TimeIn)
	})

	return available, nil
}

// Roster returns the current duty status projection for every tanod.
func (s *Service) Roster(ctx context.Context) ([]*DutyStatusResponse, error) {
	sctx, cancel := context.WithTimeout(ctx, storageTimeout)
	defer cancel()
	statuses, err := s.dutyRepo.List(sctx)
	if err != nil {
		return nil, s.storageError("failed to load duty roster", err)
	}

	return ToDutyStatusResponses(statuses), nil
}

// RecentLogs returns the latest activity log rows, newest first, optionally
// filtered to one user.
func (s *Service) RecentLogs(ctx context.Context, username string, limit int) ([]*LogEntryResponse, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}

	sctx, cancel := context.WithTimeout(ctx, storageTimeout)
	defer cancel()
	entries, err := s.logRepo.ListRecent(sctx, username, limit)
	if err != nil {
		return nil, s.storageError("failed to load activity log", err)
	}

	return ToLogEntryResponses(entries), nil
}

func (s *Service) deriveTodayStatus(ctx context.Context, username string, asOf time.Time) (*domainPatrol.TodayStatus, error) {
	from, to := dayBounds(asOf)

	sctx, cancel := context.WithTimeout(ctx, storageTimeout)
	defer cancel()
	entries, err := s.logRepo.ListByUserBetween(sctx, username, from, to)
	if err != nil {
		return nil, s.storageError("failed to load today's records", err)
	}

	status := &domainPatrol.TodayStatus{}
	for _, entry := range entries {
		switch entry.Action {
		case domainPatrol.ActionTimeIn:
			status.TimeIn = entry.TimeIn
			status.HasTimeInToday = true
			status.TimeOut = nil
			status.HasTimeOutToday = false
		case domainPatrol.ActionTimeOut:
			status.TimeOut = entry.TimeOut
			status.HasTimeOutToday = true
		}
	}

	return status, nil
}

func (s *Service) upsertDutyStatus(ctx context.Context, status *domainPatrol.DutyStatus) {
	sctx, cancel := context.WithTimeout(ctx, storageTimeout)
	defer cancel()
	if err := s.dutyRepo.Upsert(sctx, status); err != nil {
		logger.Warn("Failed to refresh duty status projection",
			zap.String("username", status.Username),
			zap.Error(err),
		)
	}
}

func (s *Service) storageError(msg string, err error) error {
	return appErrors.NewAppError("STORAGE_UNAVAILABLE", msg, err)
}

// dayBounds returns the [midnight, next midnight) window around t in t's
// location.
func dayBounds(t time.Time) (time.Time, time.Time) {
	from := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return from, from.AddDate(0, 0, 1)
}

package patrol

import (
	"context"
	"errors"
	"testing"
	"time"

	domainPatrol "patroltrack/internal/domain/patrol"
	appErrors "patroltrack/pkg/errors"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

func newTestService() (*Service, *mockLogRepo, *mockDutyRepo, *fakeClock) {
	logRepo := &mockLogRepo{}
	dutyRepo := newMockDutyRepo()
	clock := &fakeClock{now: time.Date(2025, 6, 15, 8, 0, 0, 0, time.UTC)}

	svc := NewService(logRepo, dutyRepo, nopPublisher{}).WithClock(clock.Now)
	return svc, logRepo, dutyRepo, clock
}

func timeIn(t *testing.T, svc *Service, username string) *TimeRecordResponse {
	t.Helper()

	resp, err := svc.RecordTimeEvent(context.Background(), username, &TimeRecordRequest{
		Action: domainPatrol.ActionTimeIn,
	})
	if err != nil {
		t.Fatalf("TIME-IN for %s failed: %v", username, err)
	}
	return resp
}

func timeOut(t *testing.T, svc *Service, username string) *TimeRecordResponse {
	t.Helper()

	resp, err := svc.RecordTimeEvent(context.Background(), username, &TimeRecordRequest{
		Action: domainPatrol.ActionTimeOut,
	})
	if err != nil {
		t.Fatalf("TIME-OUT for %s failed: %v", username, err)
	}
	return resp
}

func TestTimeInOpensShift(t *testing.T) {
	svc, logRepo, dutyRepo, clock := newTestService()

	resp := timeIn(t, svc, "tanod1")

	if !resp.Today.HasTimeInToday {
		t.Error("expected an open time-in")
	}
	if resp.Today.HasTimeOutToday {
		t.Error("expected no time-out yet")
	}
	if resp.Today.TimeIn == nil || !resp.Today.TimeIn.Equal(clock.now) {
		t.Errorf("expected time-in at %v, got %v", clock.now, resp.Today.TimeIn)
	}
	if len(logRepo.entries) != 1 || logRepo.entries[0].Action != domainPatrol.ActionTimeIn {
		t.Fatalf("expected one TIME-IN row, got %d entries", len(logRepo.entries))
	}

	status, err := dutyRepo.GetByUsername(context.Background(), "tanod1")
	if err != nil {
		t.Fatalf("expected a roster row: %v", err)
	}
	if status.Status != domainPatrol.DutyOnDuty {
		t.Errorf("expected roster status %q, got %q", domainPatrol.DutyOnDuty, status.Status)
	}
}

func TestDuplicateTimeIn(t *testing.T) {
	svc, logRepo, _, _ := newTestService()

	timeIn(t, svc, "tanod1")

	_, err := svc.RecordTimeEvent(context.Background(), "tanod1", &TimeRecordRequest{
		Action: domainPatrol.ActionTimeIn,
	})
	if err == nil {
		t.Fatal("expected an error")
	}
	if code := appErrors.CodeOf(err); code != "DUPLICATE_TIME_IN" {
		t.Errorf("expected DUPLICATE_TIME_IN, got %q", code)
	}
	if len(logRepo.entries) != 1 {
		t.Errorf("rejected event must not be appended, got %d rows", len(logRepo.entries))
	}
}

func TestTimeOutWithoutTimeIn(t *testing.T) {
	svc, logRepo, _, _ := newTestService()

	_, err := svc.RecordTimeEvent(context.Background(), "tanod1", &TimeRecordRequest{
		Action: domainPatrol.ActionTimeOut,
	})
	if err == nil {
		t.Fatal("expected an error")
	}
	if code := appErrors.CodeOf(err); code != "MISSING_TIME_IN" {
		t.Errorf("expected MISSING_TIME_IN, got %q", code)
	}
	if len(logRepo.entries) != 0 {
		t.Errorf("rejected event must not be appended, got %d rows", len(logRepo.entries))
	}
}

func TestDuplicateTimeOut(t *testing.T) {
	svc, _, _, clock := newTestService()

	timeIn(t, svc, "tanod1")
	clock.Advance(4 * time.Hour)
	timeOut(t, svc, "tanod1")

	_, err := svc.RecordTimeEvent(context.Background(), "tanod1", &TimeRecordRequest{
		Action: domainPatrol.ActionTimeOut,
	})
	if err == nil {
		t.Fatal("expected an error")
	}
	if code := appErrors.CodeOf(err); code != "DUPLICATE_TIME_OUT" {
		t.Errorf("expected DUPLICATE_TIME_OUT, got %q", code)
	}
}

func TestTimeInAgainAfterTimeOut(t *testing.T) {
	svc, logRepo, _, clock := newTestService()

	timeIn(t, svc, "tanod1")
	clock.Advance(4 * time.Hour)
	timeOut(t, svc, "tanod1")
	clock.Advance(time.Hour)

	resp := timeIn(t, svc, "tanod1")
	if !resp.Today.HasTimeInToday || resp.Today.HasTimeOutToday {
		t.Error("expected a freshly opened shift")
	}
	if len(logRepo.entries) != 3 {
		t.Errorf("expected 3 append-only rows, got %d", len(logRepo.entries))
	}
}

func TestTimeInAllowedOnNewDay(t *testing.T) {
	svc, _, _, clock := newTestService()

	timeIn(t, svc, "tanod1")

	// The open shift from yesterday does not block today's time-in.
	clock.Advance(24 * time.Hour)
	resp := timeIn(t, svc, "tanod1")
	if !resp.Today.HasTimeInToday {
		t.Error("expected an open shift on the new day")
	}
}

func TestRecordTimeEventUnknownAction(t *testing.T) {
	svc, logRepo, _, _ := newTestService()

	for _, action := range []string{"time-in", "TIMEIN", "CLOCK-IN", ""} {
		_, err := svc.RecordTimeEvent(context.Background(), "tanod1", &TimeRecordRequest{Action: action})
		if err == nil {
			t.Errorf("expected action %q to be rejected", action)
			continue
		}
		if code := appErrors.CodeOf(err); code != "VALIDATION_ERROR" {
			t.Errorf("expected VALIDATION_ERROR for %q, got %q", action, code)
		}
	}
	if len(logRepo.entries) != 0 {
		t.Errorf("no rows should be appended, got %d", len(logRepo.entries))
	}
}

func TestListAvailableTanodsDerivation(t *testing.T) {
	svc, _, _, clock := newTestService()

	timeIn(t, svc, "tanod2")
	clock.Advance(30 * time.Minute)
	timeIn(t, svc, "tanod1")
	clock.Advance(30 * time.Minute)
	timeIn(t, svc, "tanod3")
	clock.Advance(30 * time.Minute)
	timeOut(t, svc, "tanod3")

	available, err := svc.ListAvailableTanods(context.Background(), clock.now)
	if err != nil {
		t.Fatalf("ListAvailableTanods failed: %v", err)
	}

	if len(available) != 2 {
		t.Fatalf("expected 2 available tanods, got %d", len(available))
	}
	// Ordered by time-in ascending: tanod2 clocked in first.
	if available[0].Username != "tanod2" || available[1].Username != "tanod1" {
		t.Errorf("unexpected order: %s, %s", available[0].Username, available[1].Username)
	}
}

func TestListAvailableTanodsIgnoresOtherDays(t *testing.T) {
	svc, _, _, clock := newTestService()

	timeIn(t, svc, "tanod1")

	// Next day: yesterday's open shift no longer counts.
	nextDay := clock.now.Add(24 * time.Hour)
	available, err := svc.ListAvailableTanods(context.Background(), nextDay)
	if err != nil {
		t.Fatalf("ListAvailableTanods failed: %v", err)
	}
	if len(available) != 0 {
		t.Errorf("expected no available tanods, got %d", len(available))
	}
}

func TestListAvailableTanodsStorageFailure(t *testing.T) {
	svc, logRepo, _, clock := newTestService()
	logRepo.listErr = errors.New("connection reset")

	_, err := svc.ListAvailableTanods(context.Background(), clock.now)
	if err == nil {
		t.Fatal("expected an error")
	}
	if code := appErrors.CodeOf(err); code != "STORAGE_UNAVAILABLE" {
		t.Errorf("expected STORAGE_UNAVAILABLE, got %q", code)
	}
}

func TestRecordStatusChange(t *testing.T) {
	svc, logRepo, dutyRepo, _ := newTestService()

	resp, err := svc.RecordStatusChange(context.Background(), "tanod1", &StatusChangeRequest{
		Status:   domainPatrol.DutyResponding,
		Location: "Purok 5",
	})
	if err != nil {
		t.Fatalf("RecordStatusChange failed: %v", err)
	}

	if resp.Action != domainPatrol.ActionStatus {
		t.Errorf("expected a STATUS row, got %q", resp.Action)
	}
	if len(logRepo.entries) != 1 {
		t.Fatalf("expected one log row, got %d", len(logRepo.entries))
	}

	status, err := dutyRepo.GetByUsername(context.Background(), "tanod1")
	if err != nil {
		t.Fatalf("expected a roster row: %v", err)
	}
	if status.Status != domainPatrol.DutyResponding {
		t.Errorf("expected roster status %q, got %q", domainPatrol.DutyResponding, status.Status)
	}
}

func TestRecordStatusChangeSurvivesProjectionFailure(t *testing.T) {
	svc, logRepo, dutyRepo, _ := newTestService()
	dutyRepo.upsertErr = errors.New("deadlock detected")

	_, err := svc.RecordStatusChange(context.Background(), "tanod1", &StatusChangeRequest{
		Status: domainPatrol.DutyOnDuty,
	})
	if err != nil {
		t.Fatalf("the log append is authoritative, projection failure must not surface: %v", err)
	}
	if len(logRepo.entries) != 1 {
		t.Errorf("expected the log row to exist, got %d", len(logRepo.entries))
	}
}

func TestRecordStatusChangeFailsWhenLogUnavailable(t *testing.T) {
	svc, logRepo, _, _ := newTestService()
	logRepo.appendErr = errors.New("connection refused")

	_, err := svc.RecordStatusChange(context.Background(), "tanod1", &StatusChangeRequest{
		Status: domainPatrol.DutyOnDuty,
	})
	if err == nil {
		t.Fatal("expected an error")
	}
	if code := appErrors.CodeOf(err); code != "STORAGE_UNAVAILABLE" {
		t.Errorf("expected STORAGE_UNAVAILABLE, got %q", code)
	}
}

func TestRecordStatusChangeUnknownStatus(t *testing.T) {
	svc, logRepo, _, _ := newTestService()

	_, err := svc.RecordStatusChange(context.Background(), "tanod1", &StatusChangeRequest{
		Status: "Sleeping",
	})
	if err == nil {
		t.Fatal("expected an error")
	}
	if code := appErrors.CodeOf(err); code != "VALIDATION_ERROR" {
		t.Errorf("expected VALIDATION_ERROR, got %q", code)
	}
	if len(logRepo.entries) != 0 {
		t.Errorf("no rows should be appended, got %d", len(logRepo.entries))
	}
}

func TestGetTodayStatus(t *testing.T) {
	svc, _, _, clock := newTestService()

	before, err := svc.GetTodayStatus(context.Background(), "tanod1")
	if err != nil {
		t.Fatalf("GetTodayStatus failed: %v", err)
	}
	if before.HasTimeInToday || before.HasTimeOutToday {
		t.Error("expected a clean slate before any records")
	}

	timeIn(t, svc, "tanod1")
	clock.Advance(8 * time.Hour)
	timeOut(t, svc, "tanod1")

	after, err := svc.GetTodayStatus(context.Background(), "tanod1")
	if err != nil {
		t.Fatalf("GetTodayStatus failed: %v", err)
	}
	if !after.HasTimeInToday || !after.HasTimeOutToday {
		t.Error("expected both time-in and time-out to be recorded")
	}
	if after.TimeOut == nil || !after.TimeOut.Equal(clock.now) {
		t.Errorf("expected time-out at %v, got %v", clock.now, after.TimeOut)
	}
}

func TestRecentLogsNewestFirst(t *testing.T) {
	svc, _, _, clock := newTestService()

	timeIn(t, svc, "tanod1")
	clock.Advance(time.Hour)
	if _, err := svc.RecordStatusChange(context.Background(), "tanod1", &StatusChangeRequest{
		Status: domainPatrol.DutyResponding,
	}); err != nil {
		t.Fatalf("RecordStatusChange failed: %v", err)
	}

	logs, err := svc.RecentLogs(context.Background(), "tanod1", 10)
	if err != nil {
		t.Fatalf("RecentLogs failed: %v", err)
	}
	if len(logs) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(logs))
	}
	if logs[0].Action != domainPatrol.ActionStatus {
		t.Errorf("expected the status change first, got %q", logs[0].Action)
	}
}

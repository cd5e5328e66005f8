package patrol

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	domainPatrol "patroltrack/internal/domain/patrol"
	"patroltrack/internal/notify"
)

// mockLogRepo is an in-memory append-only log with the same window and
// ordering semantics as the postgres repository.
type mockLogRepo struct {
	mu      sync.Mutex
	entries []*domainPatrol.LogEntry

	appendErr error
	listErr   error
}

func (m *mockLogRepo) Append(_ context.Context, entry *domainPatrol.LogEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.appendErr != nil {
		return m.appendErr
	}

	entry.ID = uuid.New()
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	stored := *entry
	m.entries = append(m.entries, &stored)
	return nil
}

func (m *mockLogRepo) ListByUserBetween(_ context.Context, username string, from, to time.Time) ([]*domainPatrol.LogEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.listErr != nil {
		return nil, m.listErr
	}

	var result []*domainPatrol.LogEntry
	for _, entry := range m.entries {
		if entry.Username != username {
			continue
		}
		if entry.CreatedAt.Before(from) || !entry.CreatedAt.Before(to) {
			continue
		}
		copied := *entry
		result = append(result, &copied)
	}
	return result, nil
}

func (m *mockLogRepo) ListTimeRecordsBetween(_ context.Context, from, to time.Time) ([]*domainPatrol.LogEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.listErr != nil {
		return nil, m.listErr
	}

	var result []*domainPatrol.LogEntry
	for _, entry := range m.entries {
		if entry.Action != domainPatrol.ActionTimeIn && entry.Action != domainPatrol.ActionTimeOut {
			continue
		}
		if entry.CreatedAt.Before(from) || !entry.CreatedAt.Before(to) {
			continue
		}
		copied := *entry
		result = append(result, &copied)
	}
	return result, nil
}

func (m *mockLogRepo) ListRecent(_ context.Context, username string, limit int) ([]*domainPatrol.LogEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.listErr != nil {
		return nil, m.listErr
	}

	var result []*domainPatrol.LogEntry
	for i := len(m.entries) - 1; i >= 0; i-- {
		entry := m.entries[i]
		if username != "" && entry.Username != username {
			continue
		}
		copied := *entry
		result = append(result, &copied)
		if limit > 0 && len(result) >= limit {
			break
		}
	}
	return result, nil
}

// mockDutyRepo is the in-memory roster projection.
type mockDutyRepo struct {
	mu       sync.Mutex
	statuses map[string]*domainPatrol.DutyStatus

	upsertErr error
}

func newMockDutyRepo() *mockDutyRepo {
	return &mockDutyRepo{statuses: make(map[string]*domainPatrol.DutyStatus)}
}

func (m *mockDutyRepo) Upsert(_ context.Context, status *domainPatrol.DutyStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.upsertErr != nil {
		return m.upsertErr
	}

	existing, ok := m.statuses[status.Username]
	if ok {
		status.ID = existing.ID
	} else if status.ID == uuid.Nil {
		status.ID = uuid.New()
	}
	status.UpdatedAt = time.Now()

	stored := *status
	m.statuses[status.Username] = &stored
	return nil
}

func (m *mockDutyRepo) GetByUsername(_ context.Context, username string) (*domainPatrol.DutyStatus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	status, ok := m.statuses[username]
	if !ok {
		return nil, domainPatrol.ErrStatusNotFound
	}
	copied := *status
	return &copied, nil
}

func (m *mockDutyRepo) List(_ context.Context) ([]*domainPatrol.DutyStatus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var result []*domainPatrol.DutyStatus
	for _, status := range m.statuses {
		copied := *status
		result = append(result, &copied)
	}
	return result, nil
}

// nopPublisher discards events.
type nopPublisher = notify.NopPublisher

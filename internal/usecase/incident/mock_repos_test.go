package incident

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	domainIncident "patroltrack/internal/domain/incident"
	domainPatrol "patroltrack/internal/domain/patrol"
	"patroltrack/internal/notify"
)

// mockIncidentRepo is an in-memory stand-in for the postgres repository with
// the same guarded-update semantics.
type mockIncidentRepo struct {
	mu        sync.Mutex
	incidents map[uuid.UUID]*domainIncident.Incident
	nextSeq   int64

	createErr error
	getErr    error
	listErr   error
}

func newMockIncidentRepo() *mockIncidentRepo {
	return &mockIncidentRepo{
		incidents: make(map[uuid.UUID]*domainIncident.Incident),
	}
}

func (m *mockIncidentRepo) Create(_ context.Context, inc *domainIncident.Incident) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.createErr != nil {
		return m.createErr
	}

	if inc.ID == uuid.Nil {
		inc.ID = uuid.New()
	}
	m.nextSeq++
	inc.Seq = m.nextSeq
	inc.CreatedAt = time.Now()
	inc.UpdatedAt = inc.CreatedAt

	stored := *inc
	m.incidents[inc.ID] = &stored
	return nil
}

func (m *mockIncidentRepo) GetByID(_ context.Context, id uuid.UUID) (*domainIncident.Incident, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.getErr != nil {
		return nil, m.getErr
	}

	inc, ok := m.incidents[id]
	if !ok {
		return nil, domainIncident.ErrIncidentNotFound
	}
	copied := *inc
	return &copied, nil
}

func (m *mockIncidentRepo) List(_ context.Context, filter *domainIncident.Filter) ([]*domainIncident.Incident, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.listErr != nil {
		return nil, m.listErr
	}

	var result []*domainIncident.Incident
	for _, inc := range m.incidents {
		if filter != nil && filter.Status != nil && inc.Status != *filter.Status {
			continue
		}
		if filter != nil && filter.ReportedBy != nil && inc.ReportedBy != *filter.ReportedBy {
			continue
		}
		copied := *inc
		result = append(result, &copied)
	}
	return result, nil
}

func (m *mockIncidentRepo) ListSince(_ context.Context, afterSeq int64, limit int) ([]*domainIncident.Incident, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.listErr != nil {
		return nil, m.listErr
	}

	var result []*domainIncident.Incident
	for seq := afterSeq + 1; seq <= m.nextSeq; seq++ {
		for _, inc := range m.incidents {
			if inc.Seq == seq {
				copied := *inc
				result = append(result, &copied)
			}
		}
		if limit > 0 && len(result) >= limit {
			break
		}
	}
	return result, nil
}

func (m *mockIncidentRepo) Assign(_ context.Context, id uuid.UUID, tanod string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	inc, ok := m.incidents[id]
	if !ok {
		return domainIncident.ErrIncidentNotFound
	}
	if inc.Status != domainIncident.StatusUnderReview {
		return domainIncident.ErrInvalidTransition
	}

	inc.Status = domainIncident.StatusInProgress
	inc.AssignedTanod = &tanod
	inc.UpdatedAt = time.Now()
	return nil
}

func (m *mockIncidentRepo) Resolve(_ context.Context, id uuid.UUID, resolvedBy string, resolvedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	inc, ok := m.incidents[id]
	if !ok {
		return domainIncident.ErrIncidentNotFound
	}
	if inc.Status == domainIncident.StatusResolved {
		return domainIncident.ErrAlreadyResolved
	}

	inc.Status = domainIncident.StatusResolved
	inc.ResolvedBy = &resolvedBy
	inc.ResolvedAt = &resolvedAt
	inc.UpdatedAt = time.Now()
	return nil
}

// mockRoster returns a fixed availability list or a fixed error.
type mockRoster struct {
	mu     sync.Mutex
	tanods []*domainPatrol.AvailableTanod
	err    error
	calls  int
}

func (m *mockRoster) ListAvailableTanods(_ context.Context, _ time.Time) ([]*domainPatrol.AvailableTanod, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.tanods, nil
}

func (m *mockRoster) setTanods(usernames ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.tanods = nil
	base := time.Now()
	for i, username := range usernames {
		m.tanods = append(m.tanods, &domainPatrol.AvailableTanod{
			Username: username,
			TimeIn:   base.Add(time.Duration(i) * time.Minute),
			LogID:    uuid.New(),
		})
	}
}

// recordingPublisher captures published events for assertions.
type recordingPublisher struct {
	mu             sync.Mutex
	incidentEvents []*notify.IncidentEvent
	patrolEvents   []*notify.PatrolEvent
}

func (p *recordingPublisher) PublishIncident(evt *notify.IncidentEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.incidentEvents = append(p.incidentEvents, evt)
}

func (p *recordingPublisher) PublishPatrol(evt *notify.PatrolEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.patrolEvents = append(p.patrolEvents, evt)
}

func (p *recordingPublisher) incidentEventNames() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	names := make([]string, 0, len(p.incidentEvents))
	for _, evt := range p.incidentEvents {
		names = append(names, evt.Event)
	}
	return names
}

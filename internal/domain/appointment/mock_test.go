package appointment

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/migrantcare/healthtrack/internal/domain/profile"
	"github.com/migrantcare/healthtrack/internal/platform/auth"
)

var errStoreDown = errors.New("connection refused")

type mockRepo struct {
	mu    sync.Mutex
	items map[uuid.UUID]*Appointment
	err   error
}

func newMockRepo() *mockRepo {
	return &mockRepo{items: make(map[uuid.UUID]*Appointment)}
}

func (m *mockRepo) Create(_ context.Context, a *Appointment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	m.items[a.ID] = a.Clone()
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	a, ok := m.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	return a.Clone(), nil
}

func (m *mockRepo) Update(_ context.Context, id uuid.UUID, mutate func(a *Appointment) error) (*Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	a, ok := m.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := a.Clone()
	if err := mutate(cp); err != nil {
		return nil, err
	}
	m.items[id] = cp.Clone()
	return cp, nil
}

func (m *mockRepo) Delete(_ context.Context, id uuid.UUID, check func(a *Appointment) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	a, ok := m.items[id]
	if !ok {
		return ErrNotFound
	}
	if err := check(a.Clone()); err != nil {
		return err
	}
	delete(m.items, id)
	return nil
}

func (m *mockRepo) filter(keep func(a *Appointment) bool) []*Appointment {
	var out []*Appointment
	for _, a := range m.items {
		if keep(a) {
			out = append(out, a.Clone())
		}
	}
	return out
}

func page(items []*Appointment, limit, offset int) ([]*Appointment, int) {
	total := len(items)
	if offset >= total {
		return nil, total
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return items[offset:end], total
}

func newestFirst(items []*Appointment) {
	sort.Slice(items, func(i, j int) bool { return items[i].ScheduledAt.After(items[j].ScheduledAt) })
}

func (m *mockRepo) ListBySubject(_ context.Context, subjectID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, 0, m.err
	}
	items := m.filter(func(a *Appointment) bool { return a.SubjectID() == subjectID })
	newestFirst(items)
	out, total := page(items, limit, offset)
	return out, total, nil
}

func (m *mockRepo) ListByDoctor(_ context.Context, doctorID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, 0, m.err
	}
	items := m.filter(func(a *Appointment) bool { return a.DoctorID == doctorID })
	newestFirst(items)
	out, total := page(items, limit, offset)
	return out, total, nil
}

func (m *mockRepo) ListUpcomingBySubject(_ context.Context, subjectID uuid.UUID, from time.Time, limit int) ([]*Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	items := m.filter(func(a *Appointment) bool {
		return a.SubjectID() == subjectID && !a.ScheduledAt.Before(from)
	})
	sort.Slice(items, func(i, j int) bool { return items[i].ScheduledAt.Before(items[j].ScheduledAt) })
	out, _ := page(items, limit, 0)
	return out, nil
}

type mockProfiles struct {
	byUser map[string]*profile.Profile
	err    error
}

func newMockProfiles() *mockProfiles {
	return &mockProfiles{byUser: make(map[string]*profile.Profile)}
}

func (m *mockProfiles) add(kind profile.Kind, userID string) *profile.Profile {
	p := &profile.Profile{ID: uuid.New(), UserID: userID, Kind: kind, FirstName: userID}
	m.byUser[userID] = p
	return p
}

func (m *mockProfiles) Resolve(_ context.Context, p auth.Principal) (*profile.Profile, error) {
	if m.err != nil {
		return nil, m.err
	}
	kind, ok := profile.KindForRole(p.Role)
	if !ok {
		return nil, nil
	}
	prof, ok := m.byUser[p.UserID]
	if !ok || prof.Kind != kind {
		return nil, nil
	}
	return prof, nil
}

func (m *mockProfiles) ResolveUser(_ context.Context, userID string) (*profile.Profile, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.byUser[userID], nil
}

func (m *mockProfiles) Doctor(_ context.Context, id uuid.UUID) (*profile.Profile, error) {
	if m.err != nil {
		return nil, m.err
	}
	for _, p := range m.byUser {
		if p.Kind == profile.KindDoctor && p.ID == id {
			return p, nil
		}
	}
	return nil, nil
}

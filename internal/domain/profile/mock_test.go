package profile

import (
	"context"
	"errors"
	"sort"

	"github.com/google/uuid"
)

type mockRepo struct {
	profiles map[Kind]map[string]*Profile
	calls    int
	err      error
}

func newMockRepo() *mockRepo {
	return &mockRepo{profiles: map[Kind]map[string]*Profile{
		KindWorker:  {},
		KindPatient: {},
		KindDoctor:  {},
	}}
}

func (m *mockRepo) add(kind Kind, userID, first, last string) *Profile {
	p := &Profile{ID: uuid.New(), UserID: userID, Kind: kind, FirstName: first, LastName: last}
	m.profiles[kind][userID] = p
	return p
}

func (m *mockRepo) GetByUserID(_ context.Context, kind Kind, userID string) (*Profile, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	p, ok := m.profiles[kind][userID]
	if !ok {
		return nil, ErrNotFound
	}
	return p, nil
}

func (m *mockRepo) GetByID(_ context.Context, kind Kind, id uuid.UUID) (*Profile, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	for _, p := range m.profiles[kind] {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, ErrNotFound
}

func (m *mockRepo) List(_ context.Context, kind Kind, limit, offset int) ([]*Profile, int, error) {
	if m.err != nil {
		return nil, 0, m.err
	}
	var all []*Profile
	for _, p := range m.profiles[kind] {
		all = append(all, p)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].LastName < all[j].LastName })
	total := len(all)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return all[offset:end], total, nil
}

var errStoreDown = errors.New("connection refused")

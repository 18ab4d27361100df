package store

import (
	"context"
	"slices"
	"sync"

	"Quackito/internal/model"
)

// MemoryStore keeps ducks in process memory. Used when SQLite is not configured.
type MemoryStore struct {
	mu           sync.Mutex
	nextID       int64
	ducks        map[string]*model.Duck
	interactions []model.Interaction
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{ducks: make(map[string]*model.Duck)}
}

func (m *MemoryStore) Create(_ context.Context, d *model.Duck) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.ducks[d.Code]; ok {
		return ErrCodeTaken
	}
	m.nextID++
	d.ID = m.nextID
	cp := *d
	m.ducks[d.Code] = &cp
	return nil
}

func (m *MemoryStore) Get(_ context.Context, code string) (*model.Duck, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.ducks[code]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *d
	return &cp, nil
}

func (m *MemoryStore) Update(_ context.Context, code string, fn Mutation) (*model.Duck, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.ducks[code]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *d
	in, err := fn(&cp)
	if err != nil {
		return nil, err
	}
	*d = cp
	if in != nil {
		in.ID = int64(len(m.interactions) + 1)
		in.DuckID = d.ID
		m.interactions = append(m.interactions, *in)
	}
	out := cp
	return &out, nil
}

func (m *MemoryStore) Interactions(_ context.Context, duckID int64) ([]model.Interaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Interaction
	for _, in := range m.interactions {
		if in.DuckID == duckID {
			out = append(out, in)
		}
	}
	slices.SortStableFunc(out, func(a, b model.Interaction) int {
		return a.Timestamp.Compare(b.Timestamp)
	})
	return out, nil
}

func (m *MemoryStore) Close() error { return nil }

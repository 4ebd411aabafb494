package period

import (
	"context"
	"sync"
)

// SelectionStore remembers the period each user last selected.
type SelectionStore interface {
	Get(ctx context.Context, userID string) (Period, bool, error)
	Set(ctx context.Context, userID string, p Period) error
}

// Resolver picks the period a request operates on: an explicit value wins,
// then the caller's stored selection, then the current month.
type Resolver struct {
	Store SelectionStore
	Now   func() Period
}

func NewResolver(store SelectionStore, now func() Period) *Resolver {
	return &Resolver{Store: store, Now: now}
}

func (r *Resolver) Resolve(ctx context.Context, userID, explicit string) (Period, error) {
	if explicit != "" {
		return Parse(explicit)
	}
	if r.Store != nil && userID != "" {
		p, ok, err := r.Store.Get(ctx, userID)
		if err != nil {
			return Period{}, err
		}
		if ok {
			return p, nil
		}
	}
	return r.Now(), nil
}

// Selected returns the stored selection or the current month.
func (r *Resolver) Selected(ctx context.Context, userID string) (Period, error) {
	return r.Resolve(ctx, userID, "")
}

func (r *Resolver) Select(ctx context.Context, userID string, p Period) error {
	return r.Store.Set(ctx, userID, p)
}

type MemoryStore struct {
	mu       sync.RWMutex
	selected map[string]Period
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{selected: map[string]Period{}}
}

func (m *MemoryStore) Get(_ context.Context, userID string) (Period, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.selected[userID]
	return p, ok, nil
}

func (m *MemoryStore) Set(_ context.Context, userID string, p Period) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.selected[userID] = p
	return nil
}

// Package session keeps one UserState per browser or terminal session.
package session

import (
	"context"
	"errors"
	"sync"

	"github.com/jask/smartsavernet/internal/state"
)

// ErrNotFound is returned for a session that has no stored state.
var ErrNotFound = errors.New("session not found")

// Store persists session state. Implementations hand out independent copies so callers never
// share maps or slices with the store.
type Store interface {
	Get(ctx context.Context, id string) (state.UserState, error)
	Put(ctx context.Context, id string, s state.UserState) error
	Delete(ctx context.Context, id string) error
}

// MemoryStore is an in-process Store.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]state.UserState
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: map[string]state.UserState{}}
}

func (m *MemoryStore) Get(_ context.Context, id string) (state.UserState, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.data[id]
	if !ok {
		return state.UserState{}, ErrNotFound
	}
	return s.Clone(), nil
}

func (m *MemoryStore) Put(_ context.Context, id string, s state.UserState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[id] = s.Clone()
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, id)
	return nil
}

// Package session keeps lesson sessions for the transports that serve more
// than one learner at a time.
package session

import (
	"errors"
	"sort"
	"sync"

	"github.com/cgast/chkwrite/pkg/lesson"
)

// ErrSessionNotFound is returned for an id the store does not hold.
var ErrSessionNotFound = errors.New("session not found")

// Store persists sessions by id. Implementations copy on the way in and on
// the way out, so callers never share a *lesson.Session with the store.
type Store interface {
	Get(id string) (*lesson.Session, error)
	Put(s *lesson.Session) error
	Delete(id string) error
	List() ([]*lesson.Session, error)
	Close() error
}

// MemoryStore is an in-process Store.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*lesson.Session
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]*lesson.Session)}
}

func (m *MemoryStore) Get(id string) (*lesson.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s.Clone(), nil
}

func (m *MemoryStore) Put(s *lesson.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sessions[s.ID] = s.Clone()
	return nil
}

func (m *MemoryStore) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sessions, id)
	return nil
}

// List returns every session ordered by id.
func (m *MemoryStore) List() ([]*lesson.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*lesson.Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, s.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemoryStore) Close() error {
	return nil
}

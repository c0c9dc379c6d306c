package session

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/cgast/chkwrite/internal/logging"
	"github.com/cgast/chkwrite/pkg/lesson"
)

// Manager pairs a lesson engine with a store and serializes the mutations
// of each session.
type Manager struct {
	engine *lesson.Engine
	store  Store
	logger *zap.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewManager creates a manager. A nil logger disables logging.
func NewManager(engine *lesson.Engine, store Store, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		engine: engine,
		store:  store,
		logger: logger,
		locks:  make(map[string]*sync.Mutex),
	}
}

// Engine returns the lesson engine.
func (m *Manager) Engine() *lesson.Engine {
	return m.engine
}

// Create starts a lesson and stores it.
func (m *Manager) Create(ctx context.Context, scenarioIndex int, phase lesson.Phase) (*lesson.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s, err := m.engine.StartLesson(scenarioIndex, phase)
	if err != nil {
		return nil, err
	}
	if err := m.store.Put(s); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}
	logging.Session(m.logger, s.ID).Info("session created",
		zap.Int("scenario", scenarioIndex),
		zap.String("phase", string(phase)),
	)
	return s, nil
}

// Get returns a copy of the stored session.
func (m *Manager) Get(ctx context.Context, id string) (*lesson.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s, err := m.store.Get(id)
	if err != nil {
		return nil, fmt.Errorf("get session %s: %w", id, err)
	}
	return s, nil
}

// Update loads the session, applies fn and writes the result back. Calls for
// the same id run one at a time. If fn returns an error nothing is written.
func (m *Manager) Update(ctx context.Context, id string, fn func(*lesson.Session) error) (*lesson.Session, error) {
	lock := m.lockFor(id)
	lock.Lock()
	defer lock.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s, err := m.store.Get(id)
	if err != nil {
		return nil, fmt.Errorf("get session %s: %w", id, err)
	}
	if err := fn(s); err != nil {
		return nil, err
	}
	if err := m.store.Put(s); err != nil {
		return nil, fmt.Errorf("store session %s: %w", id, err)
	}
	logging.Session(m.logger, id).Debug("session updated",
		zap.String("phase", string(s.Phase)),
		zap.Int("step", s.StepIndex),
		zap.Bool("completed", s.Completed),
	)
	return s, nil
}

// Delete removes a session.
func (m *Manager) Delete(ctx context.Context, id string) error {
	lock := m.lockFor(id)
	lock.Lock()
	defer lock.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	if err := m.store.Delete(id); err != nil {
		return fmt.Errorf("delete session %s: %w", id, err)
	}

	m.mu.Lock()
	delete(m.locks, id)
	m.mu.Unlock()
	logging.Session(m.logger, id).Info("session deleted")
	return nil
}

// List returns every stored session.
func (m *Manager) List(ctx context.Context) ([]*lesson.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return m.store.List()
}

func (m *Manager) lockFor(id string) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()

	l, ok := m.locks[id]
	if !ok {
		l = &sync.Mutex{}
		m.locks[id] = l
	}
	return l
}

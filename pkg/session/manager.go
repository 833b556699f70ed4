package session

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/opencity/insight/pkg/events"
)

// Manager tracks in-flight Sessions so a client disconnect can cancel
// the corresponding orchestration run. Sessions deregister themselves on
// completion; Manager never accumulates unbounded state.
type Manager struct {
	orchestrator *Orchestrator

	mu       sync.Mutex
	sessions map[uuid.UUID]context.CancelFunc
}

// NewManager builds a Manager driving Sessions through orchestrator.
func NewManager(orchestrator *Orchestrator) *Manager {
	return &Manager{
		orchestrator: orchestrator,
		sessions:     make(map[uuid.UUID]context.CancelFunc),
	}
}

// Start begins a new Session for question under mode, deriving a
// cancellable context from ctx. The returned channel is closed when the
// Session terminates; call Cancel(id) to stop it early (e.g. on an HTTP
// client disconnect).
func (m *Manager) Start(ctx context.Context, question string, mode Mode) (uuid.UUID, <-chan events.Event) {
	id := uuid.New()
	sessionCtx, cancel := context.WithCancel(ctx)

	m.mu.Lock()
	m.sessions[id] = cancel
	m.mu.Unlock()

	raw := m.orchestrator.Run(sessionCtx, id, question, mode)

	out := make(chan events.Event, eventBufferSize)
	go func() {
		defer close(out)
		defer cancel()
		defer m.deregister(id)
		for e := range raw {
			out <- e
		}
	}()

	return id, out
}

// Cancel stops the Session identified by id, if still running. A no-op
// if the Session has already terminated.
func (m *Manager) Cancel(id uuid.UUID) {
	m.mu.Lock()
	cancel, ok := m.sessions[id]
	m.mu.Unlock()
	if ok {
		cancel()
	}
}

func (m *Manager) deregister(id uuid.UUID) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
}

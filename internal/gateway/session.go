package gateway

import (
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/botel-ai/pms-mcp-gateway/internal/rpc"
)

var ErrSessionClosed = errors.New("session closed")

// Session pairs an SSE connection with its outbound response queue. The
// queue channel is never closed; Close signals via done so a concurrent Push
// can never hit a closed channel.
type Session struct {
	ID    string
	queue chan *rpc.Response
	done  chan struct{}
	once  sync.Once
}

// Push enqueues a response for delivery on the session's SSE stream.
func (s *Session) Push(resp *rpc.Response) error {
	select {
	case <-s.done:
		return ErrSessionClosed
	case s.queue <- resp:
		return nil
	}
}

// Queue exposes the outbound channel to the SSE drain loop.
func (s *Session) Queue() <-chan *rpc.Response {
	return s.queue
}

// Done is closed when the session is torn down.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

func (s *Session) close() {
	s.once.Do(func() { close(s.done) })
}

// SessionManager owns the session-id to queue mapping. It is the only
// mutable state shared across connections and is safe for concurrent
// create/get/remove.
type SessionManager struct {
	mu        sync.RWMutex
	sessions  map[string]*Session
	queueSize int
}

func NewSessionManager(queueSize int) *SessionManager {
	if queueSize <= 0 {
		queueSize = 64
	}
	return &SessionManager{
		sessions:  make(map[string]*Session),
		queueSize: queueSize,
	}
}

// Create registers a new session under a fresh random identifier.
func (m *SessionManager) Create() *Session {
	s := &Session{
		ID:    uuid.NewString(),
		queue: make(chan *rpc.Response, m.queueSize),
		done:  make(chan struct{}),
	}
	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()
	return s
}

func (m *SessionManager) Get(id string) (*Session, bool) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	return s, ok
}

// Remove tears down a session. Removing an unknown or already-removed id is
// a no-op; a disconnect race must never crash the server.
func (m *SessionManager) Remove(id string) {
	m.mu.Lock()
	s, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
	}
	m.mu.Unlock()
	if ok {
		s.close()
	}
}

// Shutdown closes every live session, unblocking their SSE loops.
func (m *SessionManager) Shutdown() {
	m.mu.Lock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()
	for _, s := range sessions {
		s.close()
	}
}

// Len reports the number of live sessions.
func (m *SessionManager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

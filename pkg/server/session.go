package server

import (
	"context"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/matst80/slask-intel/pkg/controller"
)

const DefaultSessionCacheSize = 1024

// Session is one browser session with its own controller loop.
type Session struct {
	Id         string
	Controller *controller.Controller
	View       *RecordingView
	Navigator  *controller.MemoryNavigator
	cancel     context.CancelFunc
}

type SessionFactory func(id string) *Session

// SessionManager keeps the most recently used sessions, evicted sessions stop their loop.
type SessionManager struct {
	mu      sync.Mutex
	cache   *lru.Cache[string, *Session]
	factory SessionFactory
}

func NewSessionManager(size int, factory SessionFactory) (*SessionManager, error) {
	if size <= 0 {
		size = DefaultSessionCacheSize
	}
	cache, err := lru.NewWithEvict(size, func(_ string, s *Session) {
		s.cancel()
	})
	if err != nil {
		return nil, err
	}
	return &SessionManager{cache: cache, factory: factory}, nil
}

// Get returns the session for id, creating and starting it when needed.
func (m *SessionManager) Get(id string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.cache.Get(id); ok {
		return s, false
	}
	s := m.factory(id)
	m.cache.Add(id, s)
	return s, true
}

func (m *SessionManager) Len() int {
	return m.cache.Len()
}

// Broadcast posts the event to every live session.
func (m *SessionManager) Broadcast(event controller.Event) {
	for _, s := range m.cache.Values() {
		s.Controller.Post(event)
	}
}

func (m *SessionManager) Close() {
	m.cache.Purge()
}

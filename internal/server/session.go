package server

import (
	"sync"

	"github.com/google/uuid"

	"github.com/meridian-maps/worldview/internal/engine"
)

// session is one viewer's engine. The engine itself is single-threaded;
// the mutex serializes event batches arriving on concurrent requests.
type session struct {
	mu  sync.Mutex
	eng *engine.Engine
}

// frame applies an event batch under the session lock.
func (s *session) frame(events []engine.Event) *engine.Frame {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.eng.Frame(events)
}

// sessions is the registry of live viewer sessions.
type sessions struct {
	mu   sync.RWMutex
	byID map[string]*session
}

func newSessions() *sessions {
	return &sessions{byID: make(map[string]*session)}
}

func (s *sessions) create(eng *engine.Engine) string {
	id := uuid.NewString()
	s.mu.Lock()
	s.byID[id] = &session{eng: eng}
	s.mu.Unlock()
	return id
}

func (s *sessions) get(id string) (*session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.byID[id]
	return sess, ok
}

func (s *sessions) remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[id]; !ok {
		return false
	}
	delete(s.byID, id)
	return true
}

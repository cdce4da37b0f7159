package api

import (
	"sync"
	"time"

	"github.com/soaringjerry/Jornada/internal/game"
	"github.com/soaringjerry/Jornada/internal/models"
)

const maxAudit = 1000

// AuditEntry records one admin action.
type AuditEntry struct {
	Time   time.Time `json:"time"`
	Actor  string    `json:"actor"`
	Action string    `json:"action"`
	Target string    `json:"target"`
	Note   string    `json:"note,omitempty"`
}

// memoryStore keeps live sessions, their end-of-game reports and the audit log.
// Reports themselves live in the configured key-value slot, not here.
type memoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*game.Session
	results  map[string]models.Report
	audit    []AuditEntry
	onSize   func(n int)
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		sessions: map[string]*game.Session{},
		results:  map[string]models.Report{},
		audit:    []AuditEntry{},
	}
}

// sizeChanged must be called with mu held.
func (s *memoryStore) sizeChanged() {
	if s.onSize != nil {
		s.onSize(len(s.sessions))
	}
}

func (s *memoryStore) PutSession(sess *game.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.ID()] = sess
	delete(s.results, sess.ID())
	s.sizeChanged()
}

func (s *memoryStore) GetSession(id string) (*game.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	return sess, ok
}

func (s *memoryStore) RemoveSession(id string) (*game.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	delete(s.sessions, id)
	delete(s.results, id)
	s.sizeChanged()
	return sess, true
}

func (s *memoryStore) RemoveIdleSessions(before time.Time) []*game.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*game.Session
	for id, sess := range s.sessions {
		if sess.UpdatedAt().Before(before) {
			out = append(out, sess)
			delete(s.sessions, id)
			delete(s.results, id)
		}
	}
	if len(out) > 0 {
		s.sizeChanged()
	}
	return out
}

func (s *memoryStore) SessionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func (s *memoryStore) PutResult(sessionID string, r models.Report) {
	s.mu.Lock()
	defer s.mu.Unlock()
	// the session may have been abandoned while the finish step ran
	if _, ok := s.sessions[sessionID]; !ok {
		return
	}
	s.results[sessionID] = r
}

func (s *memoryStore) GetResult(sessionID string) (models.Report, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.results[sessionID]
	return r, ok
}

// AddAudit appends e, dropping the oldest entries past maxAudit.
func (s *memoryStore) AddAudit(e AuditEntry) {
	s.mu.Lock()
	s.audit = append(s.audit, e)
	if n := len(s.audit); n > maxAudit {
		s.audit = append([]AuditEntry(nil), s.audit[n-maxAudit:]...)
	}
	s.mu.Unlock()
}

func (s *memoryStore) ListAudit() []AuditEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]AuditEntry, len(s.audit))
	copy(out, s.audit)
	return out
}

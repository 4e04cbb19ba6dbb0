package memory

import (
	"sort"
	"sync"
	"time"

	"github.com/PabloGalante/translingua/internal/app/session"
	"github.com/PabloGalante/translingua/internal/domain"
)

// SessionStore keeps live sessions in process memory.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[domain.SessionID]*session.Session
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[domain.SessionID]*session.Session),
	}
}

func (s *SessionStore) Create(sess *session.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.sessions[sess.ID]; exists {
		return domain.ErrSessionAlreadyExists
	}

	s.sessions[sess.ID] = sess
	return nil
}

func (s *SessionStore) Get(id domain.SessionID) (*session.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}

	return sess, nil
}

func (s *SessionStore) Delete(id domain.SessionID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		return domain.ErrSessionNotFound
	}

	delete(s.sessions, id)
	return nil
}

// List returns all live sessions, oldest first.
func (s *SessionStore) List() ([]*session.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*session.Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		out = append(out, sess)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})

	return out, nil
}

func (s *SessionStore) PruneIdle(cutoff time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pruned := 0
	for id, sess := range s.sessions {
		if sess.LastSeen().Before(cutoff) {
			delete(s.sessions, id)
			pruned++
		}
	}

	return pruned, nil
}

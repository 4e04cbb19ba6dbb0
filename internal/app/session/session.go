package session

import (
	"sync"
	"time"

	"github.com/PabloGalante/translingua/internal/app/history"
	"github.com/PabloGalante/translingua/internal/domain"
)

// Capacities bounds the history kept per operation kind.
type Capacities struct {
	Translations int
	TravelGuides int
}

// DefaultCapacities keeps 10 translations and 5 travel guides.
func DefaultCapacities() Capacities {
	return Capacities{Translations: 10, TravelGuides: 5}
}

// Session is the explicit per-user state: one history store per operation
// kind plus the last result of each. It is owned by whoever created it and
// shares nothing with other sessions.
type Session struct {
	ID        domain.SessionID
	CreatedAt time.Time

	Translations *history.Store[domain.TranslationRequest]
	TravelGuides *history.Store[domain.TravelGuideRequest]

	mu              sync.RWMutex
	lastSeen        time.Time
	lastTranslation *domain.GenerationResult
	lastTravelGuide *domain.GenerationResult
}

func New(id domain.SessionID, now time.Time, caps Capacities) *Session {
	return &Session{
		ID:           id,
		CreatedAt:    now,
		Translations: history.NewStore[domain.TranslationRequest](caps.Translations),
		TravelGuides: history.NewStore[domain.TravelGuideRequest](caps.TravelGuides),
		lastSeen:     now,
	}
}

// Touch records activity on the session.
func (s *Session) Touch(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if now.After(s.lastSeen) {
		s.lastSeen = now
	}
}

func (s *Session) LastSeen() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastSeen
}

// LastTranslation returns the most recent translation result, if any.
func (s *Session) LastTranslation() (domain.GenerationResult, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.lastTranslation == nil {
		return domain.GenerationResult{}, false
	}
	return *s.lastTranslation, true
}

// LastTravelGuide returns the most recent travel guide result, if any.
func (s *Session) LastTravelGuide() (domain.GenerationResult, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.lastTravelGuide == nil {
		return domain.GenerationResult{}, false
	}
	return *s.lastTravelGuide, true
}

func (s *Session) setLastTranslation(res domain.GenerationResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastTranslation = &res
}

func (s *Session) setLastTravelGuide(res domain.GenerationResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastTravelGuide = &res
}

// Store keeps live sessions addressable by id.
type Store interface {
	Create(s *Session) error
	Get(id domain.SessionID) (*Session, error)
	Delete(id domain.SessionID) error
	List() ([]*Session, error)
	// PruneIdle removes sessions not seen since cutoff and returns how many.
	PruneIdle(cutoff time.Time) (int, error)
}

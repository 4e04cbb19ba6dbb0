package history

import (
	"sync"
	"time"

	"github.com/PabloGalante/translingua/internal/domain"
)

// Entry pairs a past request with its result. Entries are never mutated
// after they are appended.
type Entry[T any] struct {
	Seq       uint64                  `json:"seq"`
	Request   T                       `json:"request"`
	Result    domain.GenerationResult `json:"result"`
	CreatedAt time.Time               `json:"created_at"`
}

// Store is a bounded, append-only record of past operations. When full,
// appending evicts the oldest entry.
type Store[T any] struct {
	mu      sync.RWMutex
	buf     []Entry[T]
	head    int // index of the oldest entry
	size    int
	nextSeq uint64
	now     func() time.Time
}

// NewStore creates a store holding at most capacity entries.
// A capacity below 1 is raised to 1.
func NewStore[T any](capacity int) *Store[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &Store[T]{
		buf:     make([]Entry[T], capacity),
		nextSeq: 1,
		now:     time.Now,
	}
}

// Append records a request and its result and returns the stored entry.
func (s *Store[T]) Append(req T, res domain.GenerationResult) Entry[T] {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := Entry[T]{
		Seq:       s.nextSeq,
		Request:   req,
		Result:    res,
		CreatedAt: s.now(),
	}
	s.nextSeq++

	if s.size < len(s.buf) {
		s.buf[(s.head+s.size)%len(s.buf)] = e
		s.size++
		return e
	}

	// full: overwrite the oldest and move head forward
	s.buf[s.head] = e
	s.head = (s.head + 1) % len(s.buf)
	return e
}

// Recent returns up to k entries, most recent first.
func (s *Store[T]) Recent(k int) []Entry[T] {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if k <= 0 {
		return []Entry[T]{}
	}
	if k > s.size {
		k = s.size
	}

	out := make([]Entry[T], 0, k)
	for i := 0; i < k; i++ {
		idx := (s.head + s.size - 1 - i) % len(s.buf)
		out = append(out, s.buf[idx])
	}
	return out
}

// All returns every entry in insertion order.
func (s *Store[T]) All() []Entry[T] {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Entry[T], 0, s.size)
	for i := 0; i < s.size; i++ {
		out = append(out, s.buf[(s.head+i)%len(s.buf)])
	}
	return out
}

func (s *Store[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.size
}

func (s *Store[T]) Cap() int {
	return len(s.buf)
}

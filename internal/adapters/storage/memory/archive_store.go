package memory

import (
	"context"
	"sync"

	"github.com/PabloGalante/translingua/internal/domain"
)

// ArchiveStore is an in-memory domain.HistoryArchive.
// It is NOT persistent and is only suitable for development / local mode.
type ArchiveStore struct {
	mu      sync.RWMutex
	entries map[domain.SessionID][]*domain.ArchivedEntry
}

func NewArchiveStore() *ArchiveStore {
	return &ArchiveStore{
		entries: make(map[domain.SessionID][]*domain.ArchivedEntry),
	}
}

func (s *ArchiveStore) AppendEntry(_ context.Context, entry *domain.ArchivedEntry) error {
	if entry == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[entry.SessionID] = append(s.entries[entry.SessionID], entry)
	return nil
}

// ListEntriesBySession returns the last `limit` entries in insertion order.
// If limit <= 0, returns all.
func (s *ArchiveStore) ListEntriesBySession(_ context.Context, sessionID domain.SessionID, limit int) ([]*domain.ArchivedEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := s.entries[sessionID]
	if limit > 0 && len(entries) > limit {
		entries = entries[len(entries)-limit:]
	}

	out := make([]*domain.ArchivedEntry, len(entries))
	copy(out, entries)
	return out, nil
}

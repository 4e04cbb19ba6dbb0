package firestore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/PabloGalante/translingua/internal/domain"
)

// Store is a Firestore-backed domain.HistoryArchive. Entries live under
// sessions/{session_id}/entries/{entry_id}.
type Store struct {
	client *firestore.Client
}

// NewStore creates a Firestore store for the given project.
func NewStore(ctx context.Context, projectID string) (*Store, error) {
	if projectID == "" {
		return nil, fmt.Errorf("projectID is required for Firestore store")
	}

	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("creating firestore client: %w", err)
	}

	return &Store{client: client}, nil
}

func (s *Store) Close() error {
	return s.client.Close()
}

// ─────────────────────────────────────────
// Helpers
// ─────────────────────────────────────────

func (s *Store) sessionDoc(id domain.SessionID) *firestore.DocumentRef {
	return s.client.Collection("sessions").Doc(string(id))
}

func (s *Store) entriesCol(sessionID domain.SessionID) *firestore.CollectionRef {
	return s.sessionDoc(sessionID).Collection("entries")
}

// ─────────────────────────────────────────
// Firestore Types
// ─────────────────────────────────────────

type entryDoc struct {
	SessionID string            `firestore:"session_id"`
	Kind      string            `firestore:"kind"`
	Seq       int64             `firestore:"seq"`
	Request   map[string]string `firestore:"request"`
	Prompt    string            `firestore:"prompt"`
	Output    string            `firestore:"output"`
	Succeeded bool              `firestore:"succeeded"`
	Error     string            `firestore:"error"`
	Model     string            `firestore:"model"`
	CreatedAt time.Time         `firestore:"created_at"`
}

func toEntryDoc(e *domain.ArchivedEntry) entryDoc {
	return entryDoc{
		SessionID: string(e.SessionID),
		Kind:      string(e.Kind),
		Seq:       int64(e.Seq),
		Request:   e.Request,
		Prompt:    e.Prompt,
		Output:    e.Output,
		Succeeded: e.Succeeded,
		Error:     e.Error,
		Model:     e.Model,
		CreatedAt: e.CreatedAt,
	}
}

func fromEntryDoc(id string, doc entryDoc) *domain.ArchivedEntry {
	return &domain.ArchivedEntry{
		ID:        id,
		SessionID: domain.SessionID(doc.SessionID),
		Kind:      domain.OperationKind(doc.Kind),
		Seq:       uint64(doc.Seq),
		Request:   doc.Request,
		Prompt:    doc.Prompt,
		Output:    doc.Output,
		Succeeded: doc.Succeeded,
		Error:     doc.Error,
		Model:     doc.Model,
		CreatedAt: doc.CreatedAt,
	}
}

// ─────────────────────────────────────────
// HistoryArchive implementation
// ─────────────────────────────────────────

func (s *Store) AppendEntry(ctx context.Context, entry *domain.ArchivedEntry) error {
	if entry == nil {
		return nil
	}
	if entry.ID == "" {
		return fmt.Errorf("firestore AppendEntry: entry id is required")
	}

	_, err := s.entriesCol(entry.SessionID).Doc(entry.ID).Create(ctx, toEntryDoc(entry))
	if err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return fmt.Errorf("firestore AppendEntry: entry %s already archived", entry.ID)
		}
		return fmt.Errorf("firestore AppendEntry: %w", err)
	}
	return nil
}

// ListEntriesBySession returns the last `limit` entries, oldest first.
func (s *Store) ListEntriesBySession(ctx context.Context, sessionID domain.SessionID, limit int) ([]*domain.ArchivedEntry, error) {
	q := s.entriesCol(sessionID).OrderBy("created_at", firestore.Desc)
	if limit > 0 {
		q = q.Limit(limit)
	}

	iter := q.Documents(ctx)
	defer iter.Stop()

	var out []*domain.ArchivedEntry
	for {
		snap, err := iter.Next()
		if err != nil {
			if errors.Is(err, iterator.Done) {
				break
			}
			if status.Code(err) == codes.NotFound {
				return []*domain.ArchivedEntry{}, nil
			}
			return nil, fmt.Errorf("firestore ListEntriesBySession: %w", err)
		}

		var doc entryDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, fmt.Errorf("decode entryDoc: %w", err)
		}
		out = append(out, fromEntryDoc(snap.Ref.ID, doc))
	}

	// queried newest first so the limit keeps the latest; flip to oldest first
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

package domain

import (
	"context"
	"time"
)

// ArchivedEntry is a flattened history entry kept by a durable backend.
type ArchivedEntry struct {
	ID        string            `json:"id"`
	SessionID SessionID         `json:"session_id"`
	Kind      OperationKind     `json:"kind"`
	Seq       uint64            `json:"seq"`
	Request   map[string]string `json:"request"`
	Prompt    string            `json:"prompt"`
	Output    string            `json:"output"`
	Succeeded bool              `json:"succeeded"`
	Error     string            `json:"error,omitempty"`
	Model     string            `json:"model"`
	CreatedAt time.Time         `json:"created_at"`
}

// HistoryArchive defines the minimum operations to persist history entries
// beyond the life of a session.
type HistoryArchive interface {
	AppendEntry(ctx context.Context, entry *ArchivedEntry) error
	ListEntriesBySession(ctx context.Context, sessionID SessionID, limit int) ([]*ArchivedEntry, error)
}

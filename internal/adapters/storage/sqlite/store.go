package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/PabloGalante/translingua/internal/domain"
)

// Store is a SQLite-backed domain.HistoryArchive.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at path, ensuring that the parent
// directory exists, and creates the schema.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create db directory %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open db at %s: %w", path, err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping db at %s: %w", path, err)
	}

	if err := initSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to init schema: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func initSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS history_entries (
			id TEXT PRIMARY KEY,
			session_id TEXT NOT NULL,
			kind TEXT NOT NULL,
			seq INTEGER NOT NULL,
			request TEXT NOT NULL,
			prompt TEXT NOT NULL,
			output TEXT NOT NULL,
			succeeded INTEGER NOT NULL,
			error TEXT,
			model TEXT NOT NULL,
			created_at INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_history_entries_session ON history_entries(session_id, created_at);
	`)
	return err
}

func (s *Store) AppendEntry(ctx context.Context, entry *domain.ArchivedEntry) error {
	if entry == nil {
		return nil
	}

	request, err := json.Marshal(entry.Request)
	if err != nil {
		return fmt.Errorf("marshal entry request: %w", err)
	}

	var errText any
	if entry.Error != "" {
		errText = entry.Error
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO history_entries
			(id, session_id, kind, seq, request, prompt, output, succeeded, error, model, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, string(entry.SessionID), string(entry.Kind), int64(entry.Seq), string(request),
		entry.Prompt, entry.Output, entry.Succeeded, errText, entry.Model, entry.CreatedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("insert history entry %s: %w", entry.ID, err)
	}
	return nil
}

// ListEntriesBySession returns the last `limit` entries, oldest first.
// If limit <= 0, returns all.
func (s *Store) ListEntriesBySession(ctx context.Context, sessionID domain.SessionID, limit int) ([]*domain.ArchivedEntry, error) {
	if limit <= 0 {
		limit = -1 // sqlite: no limit
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, session_id, kind, seq, request, prompt, output, succeeded, error, model, created_at
		 FROM (
			SELECT * FROM history_entries WHERE session_id = ?
			ORDER BY created_at DESC, rowid DESC LIMIT ?
		 ) ORDER BY created_at ASC, seq ASC`,
		string(sessionID), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query history entries: %w", err)
	}
	defer rows.Close()

	out := []*domain.ArchivedEntry{}
	for rows.Next() {
		var (
			e         domain.ArchivedEntry
			sid, kind string
			seq       int64
			request   string
			errText   sql.NullString
			createdAt int64
		)
		if err := rows.Scan(&e.ID, &sid, &kind, &seq, &request, &e.Prompt, &e.Output,
			&e.Succeeded, &errText, &e.Model, &createdAt); err != nil {
			return nil, fmt.Errorf("scan history entry: %w", err)
		}
		if err := json.Unmarshal([]byte(request), &e.Request); err != nil {
			return nil, fmt.Errorf("decode history entry request: %w", err)
		}
		e.SessionID = domain.SessionID(sid)
		e.Kind = domain.OperationKind(kind)
		e.Seq = uint64(seq)
		e.Error = errText.String
		e.CreatedAt = time.Unix(0, createdAt).UTC()
		out = append(out, &e)
	}
	return out, rows.Err()
}

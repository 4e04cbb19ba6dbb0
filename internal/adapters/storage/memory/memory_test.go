package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/PabloGalante/translingua/internal/adapters/storage/memory"
	"github.com/PabloGalante/translingua/internal/app/session"
	"github.com/PabloGalante/translingua/internal/domain"
)

func TestSessionStoreLifecycle(t *testing.T) {
	store := memory.NewSessionStore()
	now := time.Now()

	sess := session.New("s-1", now, session.DefaultCapacities())
	if err := store.Create(sess); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := store.Create(sess); !errors.Is(err, domain.ErrSessionAlreadyExists) {
		t.Fatalf("expected ErrSessionAlreadyExists, got %v", err)
	}

	got, err := store.Get("s-1")
	if err != nil || got != sess {
		t.Fatalf("Get returned %v, %v", got, err)
	}

	if err := store.Delete("s-1"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := store.Get("s-1"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
	if err := store.Delete("s-1"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound on second delete, got %v", err)
	}
}

func TestSessionStorePruneIdle(t *testing.T) {
	store := memory.NewSessionStore()
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	old := session.New("old", base, session.DefaultCapacities())
	fresh := session.New("fresh", base, session.DefaultCapacities())
	fresh.Touch(base.Add(time.Hour))

	_ = store.Create(old)
	_ = store.Create(fresh)

	n, err := store.PruneIdle(base.Add(30 * time.Minute))
	if err != nil {
		t.Fatalf("PruneIdle failed: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 pruned session, got %d", n)
	}

	list, _ := store.List()
	if len(list) != 1 || list[0].ID != "fresh" {
		t.Fatalf("expected only fresh session to remain, got %v", list)
	}
}

func TestArchiveStoreLimit(t *testing.T) {
	ctx := context.Background()
	store := memory.NewArchiveStore()

	for i := 1; i <= 4; i++ {
		err := store.AppendEntry(ctx, &domain.ArchivedEntry{
			SessionID: "s-1",
			Kind:      domain.KindTranslation,
			Seq:       uint64(i),
		})
		if err != nil {
			t.Fatalf("AppendEntry failed: %v", err)
		}
	}

	all, _ := store.ListEntriesBySession(ctx, "s-1", 0)
	if len(all) != 4 {
		t.Fatalf("expected 4 entries, got %d", len(all))
	}

	last, _ := store.ListEntriesBySession(ctx, "s-1", 2)
	if len(last) != 2 || last[0].Seq != 3 || last[1].Seq != 4 {
		t.Fatalf("expected seqs [3 4], got %+v", last)
	}

	none, _ := store.ListEntriesBySession(ctx, "other", 0)
	if len(none) != 0 {
		t.Fatalf("expected no entries for unknown session")
	}
}

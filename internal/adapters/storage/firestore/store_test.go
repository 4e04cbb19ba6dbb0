package firestore

import (
	"testing"
	"time"

	"github.com/PabloGalante/translingua/internal/domain"
)

func TestEntryDocRoundTrip(t *testing.T) {
	created := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	in := &domain.ArchivedEntry{
		ID:        "e-1",
		SessionID: "s-1",
		Kind:      domain.KindTravelGuide,
		Seq:       7,
		Request:   map[string]string{"destination": "Paris"},
		Prompt:    "p",
		Output:    "o",
		Succeeded: true,
		Model:     "gemini-2.5-flash",
		CreatedAt: created,
	}

	out := fromEntryDoc("e-1", toEntryDoc(in))

	if out.ID != in.ID || out.SessionID != in.SessionID || out.Kind != in.Kind || out.Seq != in.Seq {
		t.Fatalf("identity fields changed: %+v", out)
	}
	if out.Request["destination"] != "Paris" || !out.CreatedAt.Equal(created) || !out.Succeeded {
		t.Fatalf("payload fields changed: %+v", out)
	}
}

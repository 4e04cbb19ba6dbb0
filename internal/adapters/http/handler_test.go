package httpadapter_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	httpadapter "github.com/PabloGalante/translingua/internal/adapters/http"
	"github.com/PabloGalante/translingua/internal/adapters/llm"
	"github.com/PabloGalante/translingua/internal/adapters/storage/memory"
	"github.com/PabloGalante/translingua/internal/app/generation"
	"github.com/PabloGalante/translingua/internal/app/session"
	"github.com/PabloGalante/translingua/internal/domain"
)

func newTestServer(t *testing.T, mock *llm.MockLLM, archive domain.HistoryArchive) http.Handler {
	t.Helper()

	gen := generation.NewClient(mock, generation.Options{Model: "test-model"})
	ctrl := session.NewController(gen, memory.NewSessionStore(), session.Options{
		Capacities: session.Capacities{Translations: 2, TravelGuides: 2},
		Archive:    archive,
	})

	return httpadapter.NewServer(ctrl, httpadapter.Options{
		DisplayHistory: 5,
		ModelInfo: domain.ModelInfo{
			Provider:         "mock",
			APIStatus:        "configured",
			TranslationModel: "test-model",
			TravelModel:      "test-model",
		},
	})
}

func do(t *testing.T, srv http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewReader([]byte(body)))
	}
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	return w
}

func createSession(t *testing.T, srv http.Handler) string {
	t.Helper()
	w := do(t, srv, http.MethodPost, "/sessions", "")
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d, body=%s", w.Code, w.Body.String())
	}
	var resp struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode session: %v", err)
	}
	if resp.ID == "" {
		t.Fatal("expected session id")
	}
	return resp.ID
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("decode body %q: %v", w.Body.String(), err)
	}
}

type result struct {
	Status string `json:"status"`
	Output string `json:"output"`
	Error  string `json:"error"`
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t, llm.NewMockLLM(), nil)

	w := do(t, srv, http.MethodGet, "/healthz", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Fatal("expected X-Request-ID header")
	}
}

func TestLanguagesAndModel(t *testing.T) {
	srv := newTestServer(t, llm.NewMockLLM(), nil)

	w := do(t, srv, http.MethodGet, "/languages", "")
	var langs struct {
		Languages []domain.Language `json:"languages"`
	}
	decode(t, w, &langs)
	if len(langs.Languages) != 20 {
		t.Fatalf("expected 20 languages, got %d", len(langs.Languages))
	}

	w = do(t, srv, http.MethodGet, "/model", "")
	var info domain.ModelInfo
	decode(t, w, &info)
	if info.Provider != "mock" || info.TranslationModel != "test-model" {
		t.Fatalf("unexpected model info: %+v", info)
	}
}

func TestTranslateAndHistory(t *testing.T) {
	srv := newTestServer(t, llm.NewMockLLM(), nil)
	id := createSession(t, srv)

	for _, text := range []string{"one", "two", "three"} {
		body := `{"text":"` + text + `","source_language":"English","target_language":"es"}`
		w := do(t, srv, http.MethodPost, "/sessions/"+id+"/translations", body)
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d, body=%s", w.Code, w.Body.String())
		}
		var res result
		decode(t, w, &res)
		if res.Status != "ok" || !strings.HasPrefix(res.Output, "[test-model]") {
			t.Fatalf("unexpected result: %+v", res)
		}
	}

	w := do(t, srv, http.MethodGet, "/sessions/"+id+"/translations", "")
	var list struct {
		Translations []struct {
			Seq            uint64 `json:"seq"`
			Text           string `json:"text"`
			TargetLanguage string `json:"target_language"`
		} `json:"translations"`
	}
	decode(t, w, &list)
	if len(list.Translations) != 2 {
		t.Fatalf("expected 2 retained translations, got %d", len(list.Translations))
	}
	if list.Translations[0].Text != "three" || list.Translations[1].Text != "two" {
		t.Fatalf("expected newest first, got %+v", list.Translations)
	}
	if list.Translations[0].TargetLanguage != "Spanish" {
		t.Fatalf("expected resolved language name, got %q", list.Translations[0].TargetLanguage)
	}

	w = do(t, srv, http.MethodGet, "/sessions/"+id+"/translations?limit=1", "")
	decode(t, w, &list)
	if len(list.Translations) != 1 {
		t.Fatalf("expected 1 translation with limit, got %d", len(list.Translations))
	}
}

func TestTranslateBlankTextIsEmpty(t *testing.T) {
	srv := newTestServer(t, llm.NewMockLLM(), nil)
	id := createSession(t, srv)

	w := do(t, srv, http.MethodPost, "/sessions/"+id+"/translations",
		`{"text":"   ","source_language":"English","target_language":"French"}`)
	var res result
	decode(t, w, &res)
	if res.Status != "empty" {
		t.Fatalf("expected empty status, got %+v", res)
	}

	w = do(t, srv, http.MethodGet, "/sessions/"+id, "")
	var sess struct {
		Translations []any `json:"translations"`
	}
	decode(t, w, &sess)
	if len(sess.Translations) != 0 {
		t.Fatalf("expected no history, got %d", len(sess.Translations))
	}
}

func TestTranslateUnsupportedLanguage(t *testing.T) {
	srv := newTestServer(t, llm.NewMockLLM(), nil)
	id := createSession(t, srv)

	w := do(t, srv, http.MethodPost, "/sessions/"+id+"/translations",
		`{"text":"hi","source_language":"Klingon","target_language":"French"}`)
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", w.Code)
	}
	var resp struct {
		InvalidFields []string `json:"invalid_fields"`
	}
	decode(t, w, &resp)
	if len(resp.InvalidFields) != 1 || resp.InvalidFields[0] != "source_language" {
		t.Fatalf("unexpected invalid fields: %v", resp.InvalidFields)
	}
}

func TestTranslateGeneratorFailureIsReported(t *testing.T) {
	mock := &llm.MockLLM{Err: errors.New("quota exceeded")}
	srv := newTestServer(t, mock, nil)
	id := createSession(t, srv)

	w := do(t, srv, http.MethodPost, "/sessions/"+id+"/translations",
		`{"text":"hi","source_language":"en","target_language":"de"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var res result
	decode(t, w, &res)
	if res.Status != "error" || !strings.Contains(res.Error, "quota exceeded") {
		t.Fatalf("unexpected result: %+v", res)
	}

	w = do(t, srv, http.MethodGet, "/sessions/"+id, "")
	var sess struct {
		LastTranslation *result `json:"last_translation"`
		Translations    []any   `json:"translations"`
	}
	decode(t, w, &sess)
	if len(sess.Translations) != 1 || sess.LastTranslation == nil || sess.LastTranslation.Status != "error" {
		t.Fatalf("expected failed translation recorded, got %s", w.Body.String())
	}
}

func TestTravelGuideValidation(t *testing.T) {
	srv := newTestServer(t, llm.NewMockLLM(), nil)
	id := createSession(t, srv)

	w := do(t, srv, http.MethodPost, "/sessions/"+id+"/travel-guides",
		`{"destination":"","duration":"3 days","interests":"food"}`)
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", w.Code)
	}
	var resp struct {
		MissingFields []string `json:"missing_fields"`
	}
	decode(t, w, &resp)
	if len(resp.MissingFields) != 1 || resp.MissingFields[0] != "destination" {
		t.Fatalf("unexpected missing fields: %v", resp.MissingFields)
	}

	w = do(t, srv, http.MethodPost, "/sessions/"+id+"/travel-guides",
		`{"destination":"Kyoto","duration":"3 days","interests":"temples","budget":"mid"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d, body=%s", w.Code, w.Body.String())
	}

	w = do(t, srv, http.MethodGet, "/sessions/"+id+"/travel-guides", "")
	var list struct {
		TravelGuides []struct {
			Destination string `json:"destination"`
		} `json:"travel_guides"`
	}
	decode(t, w, &list)
	if len(list.TravelGuides) != 1 || list.TravelGuides[0].Destination != "Kyoto" {
		t.Fatalf("unexpected travel guides: %+v", list.TravelGuides)
	}
}

func TestDetectAndRefine(t *testing.T) {
	srv := newTestServer(t, llm.NewMockLLM(), nil)
	id := createSession(t, srv)

	w := do(t, srv, http.MethodPost, "/sessions/"+id+"/detections", `{"text":"bonjour"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	w = do(t, srv, http.MethodPost, "/sessions/"+id+"/detections", `{"text":""}`)
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for blank detection, got %d", w.Code)
	}

	w = do(t, srv, http.MethodPost, "/sessions/"+id+"/refinements",
		`{"original_text":"hello","current_translation":"hola","feedback":"more formal"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d, body=%s", w.Code, w.Body.String())
	}

	w = do(t, srv, http.MethodGet, "/sessions/"+id, "")
	var sess struct {
		Translations []any `json:"translations"`
	}
	decode(t, w, &sess)
	if len(sess.Translations) != 0 {
		t.Fatalf("detections and refinements must not enter history, got %d", len(sess.Translations))
	}
}

func TestArchiveEndpoint(t *testing.T) {
	srv := newTestServer(t, llm.NewMockLLM(), nil)
	id := createSession(t, srv)
	if w := do(t, srv, http.MethodGet, "/sessions/"+id+"/archive", ""); w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 when archive disabled, got %d", w.Code)
	}

	srv = newTestServer(t, llm.NewMockLLM(), memory.NewArchiveStore())
	id = createSession(t, srv)
	do(t, srv, http.MethodPost, "/sessions/"+id+"/translations",
		`{"text":"hi","source_language":"en","target_language":"it"}`)

	w := do(t, srv, http.MethodGet, "/sessions/"+id+"/archive", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp struct {
		Entries []domain.ArchivedEntry `json:"entries"`
	}
	decode(t, w, &resp)
	if len(resp.Entries) != 1 || resp.Entries[0].Kind != domain.KindTranslation {
		t.Fatalf("unexpected archive entries: %+v", resp.Entries)
	}
}

func TestSessionLifecycleErrors(t *testing.T) {
	srv := newTestServer(t, llm.NewMockLLM(), nil)

	if w := do(t, srv, http.MethodGet, "/sessions/nope", ""); w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
	if w := do(t, srv, http.MethodPost, "/sessions/nope/translations", `{}`); w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}

	id := createSession(t, srv)
	if w := do(t, srv, http.MethodPost, "/sessions/"+id+"/translations", `{bad`); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if w := do(t, srv, http.MethodPut, "/sessions/"+id+"/translations", `{}`); w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", w.Code)
	}
	if w := do(t, srv, http.MethodGet, "/sessions/"+id+"/detections", ""); w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", w.Code)
	}
	if w := do(t, srv, http.MethodDelete, "/sessions/"+id, ""); w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}
	if w := do(t, srv, http.MethodGet, "/sessions/"+id, ""); w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", w.Code)
	}
}

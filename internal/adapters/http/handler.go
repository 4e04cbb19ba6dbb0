package httpadapter

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/PabloGalante/translingua/internal/app/history"
	"github.com/PabloGalante/translingua/internal/app/session"
	"github.com/PabloGalante/translingua/internal/domain"
	"github.com/PabloGalante/translingua/internal/observability"
)

// Options configures the HTTP surface.
type Options struct {
	// DisplayHistory caps the history shown in a session summary.
	DisplayHistory int
	ModelInfo      domain.ModelInfo
}

type Server struct {
	ctrl *session.Controller
	opts Options
}

func NewServer(ctrl *session.Controller, opts Options) http.Handler {
	if opts.DisplayHistory <= 0 {
		opts.DisplayHistory = 5
	}
	s := &Server{ctrl: ctrl, opts: opts}
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", s.handleHealthz)
	mux.HandleFunc("/languages", s.handleLanguages)
	mux.HandleFunc("/model", s.handleModel)

	// /sessions → create session (POST)
	mux.HandleFunc("/sessions", s.handleSessions)

	// /sessions/{id}                → GET summary, DELETE
	// /sessions/{id}/{collection}   → POST operation, GET history
	mux.HandleFunc("/sessions/", s.handleSessionWithID)

	return chainMiddlewares(mux, withCORS, withLogging, withRequestID)
}

// ─────────────────────────────────────────────
// DTOs (request/response)
// ─────────────────────────────────────────────

type translationRequest struct {
	Text           string `json:"text"`
	SourceLanguage string `json:"source_language"`
	TargetLanguage string `json:"target_language"`
	Context        string `json:"context,omitempty"`
}

type travelGuideRequest struct {
	Destination string `json:"destination"`
	Duration    string `json:"duration"`
	Interests   string `json:"interests"`
	Budget      string `json:"budget,omitempty"`
}

type detectionRequest struct {
	Text string `json:"text"`
}

type refinementRequest struct {
	OriginalText       string `json:"original_text"`
	CurrentTranslation string `json:"current_translation"`
	Feedback           string `json:"feedback"`
}

type resultResponse struct {
	Status     string `json:"status"` // ok, error, empty
	Output     string `json:"output"`
	Error      string `json:"error,omitempty"`
	Model      string `json:"model,omitempty"`
	Attempts   int    `json:"attempts"`
	DurationMS int64  `json:"duration_ms"`
}

type translationEntryResponse struct {
	Seq            uint64         `json:"seq"`
	Text           string         `json:"text"`
	SourceLanguage string         `json:"source_language"`
	TargetLanguage string         `json:"target_language"`
	Context        string         `json:"context,omitempty"`
	Result         resultResponse `json:"result"`
	CreatedAt      time.Time      `json:"created_at"`
}

type travelGuideEntryResponse struct {
	Seq         uint64         `json:"seq"`
	Destination string         `json:"destination"`
	Duration    string         `json:"duration"`
	Interests   string         `json:"interests"`
	Budget      string         `json:"budget,omitempty"`
	Result      resultResponse `json:"result"`
	CreatedAt   time.Time      `json:"created_at"`
}

type sessionResponse struct {
	ID              string                     `json:"id"`
	CreatedAt       time.Time                  `json:"created_at"`
	LastSeen        time.Time                  `json:"last_seen"`
	LastTranslation *resultResponse            `json:"last_translation,omitempty"`
	LastTravelGuide *resultResponse            `json:"last_travel_guide,omitempty"`
	Translations    []translationEntryResponse `json:"translations"`
	TravelGuides    []travelGuideEntryResponse `json:"travel_guides"`
}

type validationResponse struct {
	Error         string   `json:"error"`
	MissingFields []string `json:"missing_fields,omitempty"`
	InvalidFields []string `json:"invalid_fields,omitempty"`
}

// ─────────────────────────────────────────────
// Basic routing
// ─────────────────────────────────────────────

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleLanguages(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"languages": s.ctrl.Languages()})
}

func (s *Server) handleModel(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	writeJSON(w, http.StatusOK, s.opts.ModelInfo)
}

// /sessions
func (s *Server) handleSessions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.handleCreateSession(w, r)
	default:
		methodNotAllowed(w)
	}
}

// /sessions/{id} or /sessions/{id}/{collection}
func (s *Server) handleSessionWithID(w http.ResponseWriter, r *http.Request) {
	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/sessions/"), "/")
	if path == "" {
		http.NotFound(w, r)
		return
	}

	parts := strings.Split(path, "/")
	id := domain.SessionID(parts[0])

	if len(parts) == 1 {
		switch r.Method {
		case http.MethodGet:
			s.handleGetSession(w, r, id)
		case http.MethodDelete:
			s.handleDeleteSession(w, r, id)
		default:
			methodNotAllowed(w)
		}
		return
	}

	if len(parts) != 2 {
		http.NotFound(w, r)
		return
	}

	type route struct {
		post func(http.ResponseWriter, *http.Request, *session.Session)
		get  func(http.ResponseWriter, *http.Request, *session.Session)
	}
	routes := map[string]route{
		"translations":  {post: s.handleTranslate, get: s.handleListTranslations},
		"travel-guides": {post: s.handleTravelGuide, get: s.handleListTravelGuides},
		"detections":    {post: s.handleDetect},
		"refinements":   {post: s.handleRefine},
		"archive":       {get: s.handleArchive},
	}

	rt, ok := routes[parts[1]]
	if !ok {
		http.NotFound(w, r)
		return
	}

	var h func(http.ResponseWriter, *http.Request, *session.Session)
	switch r.Method {
	case http.MethodPost:
		h = rt.post
	case http.MethodGet:
		h = rt.get
	}
	if h == nil {
		methodNotAllowed(w)
		return
	}

	sess, err := s.ctrl.GetSession(r.Context(), id)
	if err != nil {
		sessionError(w, r, err)
		return
	}
	h(w, r, sess)
}

// ─────────────────────────────────────────────
// Concrete handlers
// ─────────────────────────────────────────────

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.ctrl.StartSession(r.Context())
	if err != nil {
		internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, s.toSessionResponse(sess))
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request, id domain.SessionID) {
	sess, err := s.ctrl.GetSession(r.Context(), id)
	if err != nil {
		sessionError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.toSessionResponse(sess))
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request, id domain.SessionID) {
	if err := s.ctrl.EndSession(r.Context(), id); err != nil {
		sessionError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleTranslate(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	var req translationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}

	langs := s.ctrl.Languages()
	src, srcOK := langs.Lookup(req.SourceLanguage)
	tgt, tgtOK := langs.Lookup(req.TargetLanguage)
	if !srcOK || !tgtOK {
		var invalid []string
		if !srcOK {
			invalid = append(invalid, "source_language")
		}
		if !tgtOK {
			invalid = append(invalid, "target_language")
		}
		validationFailed(w, &domain.ValidationError{Fields: invalid, Err: domain.ErrUnsupportedLanguage})
		return
	}

	res, err := s.ctrl.HandleTranslation(r.Context(), sess, domain.TranslationRequest{
		Text:    req.Text,
		Source:  src,
		Target:  tgt,
		Context: req.Context,
	})
	if err != nil {
		validationFailed(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toResultResponse(res))
}

func (s *Server) handleTravelGuide(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	var req travelGuideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}

	res, err := s.ctrl.HandleTravelGuide(r.Context(), sess, domain.TravelGuideRequest{
		Destination: req.Destination,
		Duration:    req.Duration,
		Interests:   req.Interests,
		Budget:      req.Budget,
	})
	if err != nil {
		validationFailed(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toResultResponse(res))
}

func (s *Server) handleDetect(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	var req detectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}

	res, err := s.ctrl.DetectLanguage(r.Context(), sess, req.Text)
	if err != nil {
		validationFailed(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toResultResponse(res))
}

func (s *Server) handleRefine(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	var req refinementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}

	res, err := s.ctrl.RefineTranslation(r.Context(), sess, domain.RefinementRequest{
		OriginalText:       req.OriginalText,
		CurrentTranslation: req.CurrentTranslation,
		Feedback:           req.Feedback,
	})
	if err != nil {
		validationFailed(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toResultResponse(res))
}

func (s *Server) handleListTranslations(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	limit, ok := parseLimit(w, r, sess.Translations.Cap())
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"translations": toTranslationEntries(s.ctrl.RecentTranslations(sess, limit)),
	})
}

func (s *Server) handleListTravelGuides(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	limit, ok := parseLimit(w, r, sess.TravelGuides.Cap())
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"travel_guides": toTravelGuideEntries(s.ctrl.RecentTravelGuides(sess, limit)),
	})
}

func (s *Server) handleArchive(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	limit, ok := parseLimit(w, r, 0)
	if !ok {
		return
	}

	entries, enabled, err := s.ctrl.ArchivedEntries(r.Context(), sess.ID, limit)
	if !enabled {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "archive is disabled"})
		return
	}
	if err != nil {
		internalError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"entries": entries})
}

// ─────────────────────────────────────────────
// Conversion helpers
// ─────────────────────────────────────────────

func (s *Server) toSessionResponse(sess *session.Session) sessionResponse {
	resp := sessionResponse{
		ID:           string(sess.ID),
		CreatedAt:    sess.CreatedAt,
		LastSeen:     sess.LastSeen(),
		Translations: toTranslationEntries(sess.Translations.Recent(s.opts.DisplayHistory)),
		TravelGuides: toTravelGuideEntries(sess.TravelGuides.Recent(s.opts.DisplayHistory)),
	}
	if res, ok := sess.LastTranslation(); ok {
		rr := toResultResponse(res)
		resp.LastTranslation = &rr
	}
	if res, ok := sess.LastTravelGuide(); ok {
		rr := toResultResponse(res)
		resp.LastTravelGuide = &rr
	}
	return resp
}

func toResultResponse(res domain.GenerationResult) resultResponse {
	status := "ok"
	switch {
	case res.IsEmpty():
		status = "empty"
	case !res.Succeeded:
		status = "error"
	}
	return resultResponse{
		Status:     status,
		Output:     res.Output,
		Error:      res.Error,
		Model:      res.Model,
		Attempts:   res.Attempts,
		DurationMS: res.Duration.Milliseconds(),
	}
}

func toTranslationEntries(entries []history.Entry[domain.TranslationRequest]) []translationEntryResponse {
	out := make([]translationEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, translationEntryResponse{
			Seq:            e.Seq,
			Text:           e.Request.Text,
			SourceLanguage: e.Request.Source.Name,
			TargetLanguage: e.Request.Target.Name,
			Context:        e.Request.Context,
			Result:         toResultResponse(e.Result),
			CreatedAt:      e.CreatedAt,
		})
	}
	return out
}

func toTravelGuideEntries(entries []history.Entry[domain.TravelGuideRequest]) []travelGuideEntryResponse {
	out := make([]travelGuideEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, travelGuideEntryResponse{
			Seq:         e.Seq,
			Destination: e.Request.Destination,
			Duration:    e.Request.Duration,
			Interests:   e.Request.Interests,
			Budget:      e.Request.Budget,
			Result:      toResultResponse(e.Result),
			CreatedAt:   e.CreatedAt,
		})
	}
	return out
}

// parseLimit reads ?limit=, falling back to def. It writes a 400 and
// returns false on a malformed value.
func parseLimit(w http.ResponseWriter, r *http.Request, def int) (int, bool) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		badRequest(w, "limit must be a non-negative integer")
		return 0, false
	}
	return n, true
}

// ─────────────────────────────────────────────
// HTTP Helpers
// ─────────────────────────────────────────────

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, map[string]string{
		"error": msg,
	})
}

func validationFailed(w http.ResponseWriter, err error) {
	var vErr *domain.ValidationError
	if !errors.As(err, &vErr) {
		badRequest(w, err.Error())
		return
	}

	resp := validationResponse{Error: vErr.Error()}
	if vErr.Err != nil {
		resp.InvalidFields = vErr.Fields
	} else {
		resp.MissingFields = vErr.Fields
	}
	writeJSON(w, http.StatusUnprocessableEntity, resp)
}

func sessionError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, domain.ErrSessionNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "session not found"})
		return
	}
	internalError(w, r, err)
}

func internalError(w http.ResponseWriter, r *http.Request, err error) {
	observability.LoggerFromContext(r.Context()).Error("request failed", "error", err)
	writeJSON(w, http.StatusInternalServerError, map[string]string{
		"error": "internal server error",
	})
}

func methodNotAllowed(w http.ResponseWriter) {
	writeJSON(w, http.StatusMethodNotAllowed, map[string]string{
		"error": "method not allowed",
	})
}

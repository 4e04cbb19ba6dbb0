package session

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/PabloGalante/translingua/internal/app/history"
	"github.com/PabloGalante/translingua/internal/app/prompt"
	"github.com/PabloGalante/translingua/internal/domain"
	"github.com/PabloGalante/translingua/internal/observability"
)

// Generator produces a GenerationResult for a prompt. Failures are carried
// inside the result, never returned.
type Generator interface {
	Generate(ctx context.Context, prompt string) domain.GenerationResult
	Model() string
}

// Options tunes a Controller.
type Options struct {
	Capacities Capacities
	Languages  domain.LanguageCatalog
	// Archive is optional; nil disables archiving.
	Archive domain.HistoryArchive
}

// Controller validates requests, builds prompts, calls the generator and
// records results in the session's history.
type Controller struct {
	gen       Generator
	store     Store
	archive   domain.HistoryArchive
	languages domain.LanguageCatalog
	caps      Capacities
	now       func() time.Time
	newID     func() string
}

func NewController(gen Generator, store Store, opts Options) *Controller {
	if opts.Capacities.Translations <= 0 || opts.Capacities.TravelGuides <= 0 {
		def := DefaultCapacities()
		if opts.Capacities.Translations <= 0 {
			opts.Capacities.Translations = def.Translations
		}
		if opts.Capacities.TravelGuides <= 0 {
			opts.Capacities.TravelGuides = def.TravelGuides
		}
	}
	if len(opts.Languages) == 0 {
		opts.Languages = domain.DefaultLanguages()
	}

	return &Controller{
		gen:       gen,
		store:     store,
		archive:   opts.Archive,
		languages: opts.Languages,
		caps:      opts.Capacities,
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

// Languages returns the supported-language catalog.
func (c *Controller) Languages() domain.LanguageCatalog {
	return c.languages
}

// ─────────────────────────────────────────────
// Session lifecycle
// ─────────────────────────────────────────────

func (c *Controller) StartSession(ctx context.Context) (*Session, error) {
	sess := New(domain.SessionID(c.newID()), c.now(), c.caps)

	log := observability.LoggerFromContext(ctx).With("session_id", sess.ID)
	if err := c.store.Create(sess); err != nil {
		log.Error("failed to create session", "error", err)
		return nil, err
	}

	log.Info("session started",
		"translation_capacity", c.caps.Translations,
		"travel_guide_capacity", c.caps.TravelGuides,
	)
	return sess, nil
}

// GetSession looks up a live session and marks it as active.
func (c *Controller) GetSession(ctx context.Context, id domain.SessionID) (*Session, error) {
	sess, err := c.store.Get(id)
	if err != nil {
		return nil, err
	}
	sess.Touch(c.now())
	return sess, nil
}

func (c *Controller) EndSession(ctx context.Context, id domain.SessionID) error {
	if err := c.store.Delete(id); err != nil {
		return err
	}
	observability.LoggerFromContext(ctx).Info("session ended", "session_id", id)
	return nil
}

// PruneIdle drops sessions that have been idle for longer than ttl.
func (c *Controller) PruneIdle(ctx context.Context, ttl time.Duration) (int, error) {
	n, err := c.store.PruneIdle(c.now().Add(-ttl))
	if err != nil {
		return 0, fmt.Errorf("prune idle sessions: %w", err)
	}
	if n > 0 {
		observability.LoggerFromContext(ctx).Info("pruned idle sessions", "count", n, "ttl", ttl.String())
	}
	return n, nil
}

// ─────────────────────────────────────────────
// Operations
// ─────────────────────────────────────────────

// HandleTranslation translates req.Text. Blank text yields an empty result
// without calling the generator or touching history. The only error
// returned is a *domain.ValidationError for languages outside the catalog.
func (c *Controller) HandleTranslation(
	ctx context.Context,
	sess *Session,
	req domain.TranslationRequest,
) (domain.GenerationResult, error) {
	if req.IsBlank() {
		return domain.GenerationResult{}, nil
	}

	src, tgt, err := c.resolvePair(req.Source, req.Target)
	if err != nil {
		return domain.GenerationResult{}, err
	}
	req.Source, req.Target = src, tgt

	log := observability.LoggerFromContext(ctx).With(
		"session_id", sess.ID,
		"source", src.Code,
		"target", tgt.Code,
	)
	if src.Code == tgt.Code {
		log.Debug("source and target language are the same")
	}

	p := prompt.Translation(req.Text, src, tgt, req.Context)
	res := c.gen.Generate(ctx, p)

	entry := sess.Translations.Append(req, res)
	sess.setLastTranslation(res)
	sess.Touch(c.now())

	c.archiveEntry(ctx, sess.ID, domain.KindTranslation, entry.Seq, translationFields(req), res, entry.CreatedAt)

	log.Info("translation handled", "seq", entry.Seq, "succeeded", res.Succeeded)
	return res, nil
}

// HandleTravelGuide generates a travel guide. Missing destination, duration
// or interests yield a *domain.ValidationError and no side effects.
func (c *Controller) HandleTravelGuide(
	ctx context.Context,
	sess *Session,
	req domain.TravelGuideRequest,
) (domain.GenerationResult, error) {
	log := observability.LoggerFromContext(ctx).With("session_id", sess.ID)

	if err := req.Validate(); err != nil {
		log.Info("travel guide request rejected", "reason", err.Error())
		return domain.GenerationResult{}, err
	}

	p := prompt.TravelGuide(req.Destination, req.Duration, req.Interests, req.Budget)
	res := c.gen.Generate(ctx, p)

	entry := sess.TravelGuides.Append(req, res)
	sess.setLastTravelGuide(res)
	sess.Touch(c.now())

	c.archiveEntry(ctx, sess.ID, domain.KindTravelGuide, entry.Seq, travelGuideFields(req), res, entry.CreatedAt)

	log.Info("travel guide handled", "seq", entry.Seq, "destination", req.Destination, "succeeded", res.Succeeded)
	return res, nil
}

// DetectLanguage asks the model which language text is written in.
// Detections are not kept in history.
func (c *Controller) DetectLanguage(ctx context.Context, sess *Session, text string) (domain.GenerationResult, error) {
	if strings.TrimSpace(text) == "" {
		return domain.GenerationResult{}, &domain.ValidationError{Fields: []string{"text"}}
	}

	res := c.gen.Generate(ctx, prompt.Detection(text))
	sess.Touch(c.now())

	observability.LoggerFromContext(ctx).Info("language detection handled",
		"session_id", sess.ID,
		"succeeded", res.Succeeded,
	)
	return res, nil
}

// RefineTranslation improves a translation using the user's feedback.
// Refinements are not kept in history.
func (c *Controller) RefineTranslation(
	ctx context.Context,
	sess *Session,
	req domain.RefinementRequest,
) (domain.GenerationResult, error) {
	if err := req.Validate(); err != nil {
		return domain.GenerationResult{}, err
	}

	res := c.gen.Generate(ctx, prompt.Refinement(req.OriginalText, req.CurrentTranslation, req.Feedback))
	sess.Touch(c.now())

	observability.LoggerFromContext(ctx).Info("translation refinement handled",
		"session_id", sess.ID,
		"succeeded", res.Succeeded,
	)
	return res, nil
}

// RecentTranslations returns up to limit entries, most recent first.
func (c *Controller) RecentTranslations(sess *Session, limit int) []history.Entry[domain.TranslationRequest] {
	return sess.Translations.Recent(limit)
}

// RecentTravelGuides returns up to limit entries, most recent first.
func (c *Controller) RecentTravelGuides(sess *Session, limit int) []history.Entry[domain.TravelGuideRequest] {
	return sess.TravelGuides.Recent(limit)
}

// ArchivedEntries lists what the archive holds for a session.
// It returns false when archiving is disabled.
func (c *Controller) ArchivedEntries(ctx context.Context, id domain.SessionID, limit int) ([]*domain.ArchivedEntry, bool, error) {
	if c.archive == nil {
		return nil, false, nil
	}
	entries, err := c.archive.ListEntriesBySession(ctx, id, limit)
	if err != nil {
		return nil, true, fmt.Errorf("list archived entries: %w", err)
	}
	return entries, true, nil
}

// ─────────────────────────────────────────────
// Helpers
// ─────────────────────────────────────────────

func (c *Controller) resolvePair(source, target domain.Language) (domain.Language, domain.Language, error) {
	var (
		invalid []string
		src     domain.Language
		tgt     domain.Language
		ok      bool
	)
	if src, ok = c.languages.Lookup(source.Code); !ok {
		if src, ok = c.languages.Lookup(source.Name); !ok {
			invalid = append(invalid, "source_language")
		}
	}
	if tgt, ok = c.languages.Lookup(target.Code); !ok {
		if tgt, ok = c.languages.Lookup(target.Name); !ok {
			invalid = append(invalid, "target_language")
		}
	}
	if len(invalid) > 0 {
		return src, tgt, &domain.ValidationError{Fields: invalid, Err: domain.ErrUnsupportedLanguage}
	}
	return src, tgt, nil
}

func (c *Controller) archiveEntry(
	ctx context.Context,
	id domain.SessionID,
	kind domain.OperationKind,
	seq uint64,
	request map[string]string,
	res domain.GenerationResult,
	createdAt time.Time,
) {
	if c.archive == nil {
		return
	}

	entry := &domain.ArchivedEntry{
		ID:        c.newID(),
		SessionID: id,
		Kind:      kind,
		Seq:       seq,
		Request:   request,
		Prompt:    res.Prompt,
		Output:    res.Output,
		Succeeded: res.Succeeded,
		Error:     res.Error,
		Model:     res.Model,
		CreatedAt: createdAt,
	}

	if err := c.archive.AppendEntry(ctx, entry); err != nil {
		observability.LoggerFromContext(ctx).Error("failed to archive history entry",
			"session_id", id,
			"kind", kind,
			"seq", seq,
			"error", err,
		)
	}
}

func translationFields(req domain.TranslationRequest) map[string]string {
	m := map[string]string{
		"text":   req.Text,
		"source": req.Source.Name,
		"target": req.Target.Name,
	}
	if req.Context != "" {
		m["context"] = req.Context
	}
	return m
}

func travelGuideFields(req domain.TravelGuideRequest) map[string]string {
	m := map[string]string{
		"destination": req.Destination,
		"duration":    req.Duration,
		"interests":   req.Interests,
	}
	if req.Budget != "" {
		m["budget"] = req.Budget
	}
	return m
}

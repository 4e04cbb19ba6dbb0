package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpadapter "github.com/PabloGalante/translingua/internal/adapters/http"
	"github.com/PabloGalante/translingua/internal/adapters/llm"
	firestorestore "github.com/PabloGalante/translingua/internal/adapters/storage/firestore"
	memstore "github.com/PabloGalante/translingua/internal/adapters/storage/memory"
	sqlitestore "github.com/PabloGalante/translingua/internal/adapters/storage/sqlite"
	"github.com/PabloGalante/translingua/internal/app/generation"
	"github.com/PabloGalante/translingua/internal/app/session"
	"github.com/PabloGalante/translingua/internal/config"
	"github.com/PabloGalante/translingua/internal/domain"
	"github.com/PabloGalante/translingua/internal/observability"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	logger, logCloser := observability.Setup(observability.Options{
		Level: cfg.LogLevel,
		File:  cfg.LogFile,
	})
	defer logCloser.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("translingua exited with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	textGen, err := newTextGenerator(ctx, cfg)
	if err != nil {
		return err
	}
	logger.Info("text generator ready", "provider", textGen.Provider(), "model", cfg.ModelName)

	gen := generation.NewClient(textGen, generation.Options{
		Model:      cfg.ModelName,
		Timeout:    cfg.RequestTimeout,
		MaxRetries: cfg.MaxRetries,
		BaseDelay:  cfg.RetryBaseDelay,
	})

	archive, closeArchive, err := newArchive(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeArchive.Close()
	logger.Info("history archive ready", "backend", cfg.ArchiveBackend)

	ctrl := session.NewController(gen, memstore.NewSessionStore(), session.Options{
		Capacities: session.Capacities{
			Translations: cfg.TranslationHistory,
			TravelGuides: cfg.TravelHistory,
		},
		Languages: cfg.Languages,
		Archive:   archive,
	})

	go pruneIdleSessions(ctx, ctrl, cfg.SessionIdleTTL)

	srv := &http.Server{
		Addr: ":" + cfg.Port,
		Handler: httpadapter.NewServer(ctrl, httpadapter.Options{
			DisplayHistory: cfg.DisplayHistory,
			ModelInfo:      cfg.ModelInfo(),
		}),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		IdleTimeout:       120 * time.Second,
		// a slow model plus retries must fit inside one response
		WriteTimeout: cfg.RequestTimeout*time.Duration(cfg.MaxRetries+1) + 30*time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("TransLingua API listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func newTextGenerator(ctx context.Context, cfg *config.Config) (domain.TextGenerator, error) {
	switch cfg.Provider {
	case config.ProviderMock:
		return llm.NewMockLLM(), nil
	case config.ProviderOpenAI:
		return llm.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.Temperature, int(cfg.MaxOutputTokens)), nil
	default:
		client, err := llm.NewGeminiClient(ctx, llm.GeminiOptions{
			APIKey:          cfg.GoogleAPIKey,
			Vertex:          cfg.Provider == config.ProviderVertex,
			Project:         cfg.GCPProjectID,
			Location:        cfg.GCPLocation,
			Temperature:     cfg.Temperature,
			MaxOutputTokens: cfg.MaxOutputTokens,
		})
		if err != nil {
			return nil, err
		}
		return client, nil
	}
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

// newArchive returns a nil archive when archiving is disabled.
func newArchive(ctx context.Context, cfg *config.Config) (domain.HistoryArchive, io.Closer, error) {
	noop := closerFunc(func() error { return nil })

	switch cfg.ArchiveBackend {
	case config.ArchiveMemory:
		return memstore.NewArchiveStore(), noop, nil
	case config.ArchiveSQLite:
		st, err := sqlitestore.Open(cfg.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("opening sqlite archive: %w", err)
		}
		return st, st, nil
	case config.ArchiveFirestore:
		st, err := firestorestore.NewStore(ctx, cfg.GCPProjectID)
		if err != nil {
			return nil, nil, fmt.Errorf("opening firestore archive: %w", err)
		}
		return st, st, nil
	default:
		return nil, noop, nil
	}
}

// pruneIdleSessions drops sessions unused for longer than ttl until ctx ends.
func pruneIdleSessions(ctx context.Context, ctrl *session.Controller, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	ticker := time.NewTicker(min(ttl/2, time.Minute))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := ctrl.PruneIdle(ctx, ttl); err != nil {
				observability.LoggerFromContext(ctx).Error("idle session janitor failed", "error", err)
			}
		}
	}
}

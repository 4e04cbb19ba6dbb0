package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/PabloGalante/translingua/internal/domain"
)

type Provider string

const (
	ProviderGemini Provider = "gemini"
	ProviderVertex Provider = "vertex"
	ProviderOpenAI Provider = "openai"
	ProviderMock   Provider = "mock"
)

type ArchiveBackend string

const (
	ArchiveNone      ArchiveBackend = "none"
	ArchiveMemory    ArchiveBackend = "memory"
	ArchiveSQLite    ArchiveBackend = "sqlite"
	ArchiveFirestore ArchiveBackend = "firestore"
)

type Config struct {
	Port string

	Provider      Provider
	GoogleAPIKey  string
	OpenAIAPIKey  string
	OpenAIBaseURL string
	GCPProjectID  string
	GCPLocation   string

	ModelName       string
	Temperature     float32
	MaxOutputTokens int32

	RequestTimeout time.Duration
	MaxRetries     int
	RetryBaseDelay time.Duration

	TranslationHistory int
	TravelHistory      int
	DisplayHistory     int
	SessionIdleTTL     time.Duration

	ArchiveBackend ArchiveBackend
	SQLitePath     string

	LogLevel string
	LogFile  string

	Languages domain.LanguageCatalog
}

// Error reports every configuration problem found during Load.
type Error struct {
	Missing []string
	Invalid []string
}

func (e *Error) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "missing: "+strings.Join(e.Missing, ", "))
	}
	if len(e.Invalid) > 0 {
		parts = append(parts, "invalid: "+strings.Join(e.Invalid, ", "))
	}
	return "configuration error (" + strings.Join(parts, "; ") + ")"
}

// APIKey returns the credential used by the configured provider.
func (c *Config) APIKey() string {
	switch c.Provider {
	case ProviderGemini:
		return c.GoogleAPIKey
	case ProviderOpenAI:
		return c.OpenAIAPIKey
	default:
		return ""
	}
}

// Load reads a .env file if present, then all env vars, and validates the
// result eagerly. Every problem is reported in a single *Error.
func Load() (*Config, error) {
	if err := godotenv.Load(getEnv("TRANSLINGUA_ENV_FILE", ".env")); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading env file: %w", err)
	}

	cerr := &Error{}

	cfg := &Config{
		Port: getEnv("TRANSLINGUA_PORT", "8080"),

		Provider:      Provider(strings.ToLower(getEnv("TRANSLINGUA_PROVIDER", string(ProviderGemini)))),
		GoogleAPIKey:  os.Getenv("GOOGLE_API_KEY"),
		OpenAIAPIKey:  os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL: os.Getenv("OPENAI_BASE_URL"),
		GCPProjectID:  getEnv("TRANSLINGUA_GCP_PROJECT", ""),
		GCPLocation:   getEnv("TRANSLINGUA_GCP_LOCATION", "us-central1"),

		ModelName:       getEnv("TRANSLINGUA_MODEL_NAME", "gemini-2.5-flash"),
		Temperature:     float32(getFloatEnv(cerr, "TRANSLINGUA_TEMPERATURE", 0.7)),
		MaxOutputTokens: int32(getIntEnv(cerr, "TRANSLINGUA_MAX_OUTPUT_TOKENS", 2048)),

		RequestTimeout: getDurationEnv(cerr, "TRANSLINGUA_REQUEST_TIMEOUT", 60*time.Second),
		MaxRetries:     getIntEnv(cerr, "TRANSLINGUA_MAX_RETRIES", 2),
		RetryBaseDelay: getDurationEnv(cerr, "TRANSLINGUA_RETRY_BASE_DELAY", time.Second),

		TranslationHistory: getIntEnv(cerr, "TRANSLINGUA_TRANSLATION_HISTORY", 10),
		TravelHistory:      getIntEnv(cerr, "TRANSLINGUA_TRAVEL_HISTORY", 5),
		DisplayHistory:     getIntEnv(cerr, "TRANSLINGUA_DISPLAY_HISTORY", 5),
		SessionIdleTTL:     getDurationEnv(cerr, "TRANSLINGUA_SESSION_IDLE_TTL", 30*time.Minute),

		ArchiveBackend: ArchiveBackend(strings.ToLower(getEnv("TRANSLINGUA_ARCHIVE_BACKEND", string(ArchiveNone)))),
		SQLitePath:     getEnv("TRANSLINGUA_SQLITE_PATH", "translingua.db"),

		LogLevel: getEnv("TRANSLINGUA_LOG_LEVEL", "info"),
		LogFile:  getEnv("TRANSLINGUA_LOG_FILE", ""),

		Languages: domain.DefaultLanguages(),
	}

	cfg.validate(cerr)
	if len(cerr.Missing) > 0 || len(cerr.Invalid) > 0 {
		return nil, cerr
	}
	return cfg, nil
}

func (c *Config) validate(cerr *Error) {
	switch c.Provider {
	case ProviderGemini:
		if c.GoogleAPIKey == "" {
			cerr.Missing = append(cerr.Missing, "GOOGLE_API_KEY")
		}
	case ProviderVertex:
		if c.GCPProjectID == "" {
			cerr.Missing = append(cerr.Missing, "TRANSLINGUA_GCP_PROJECT")
		}
	case ProviderOpenAI:
		if c.OpenAIAPIKey == "" {
			cerr.Missing = append(cerr.Missing, "OPENAI_API_KEY")
		}
	case ProviderMock:
	default:
		cerr.Invalid = append(cerr.Invalid, "TRANSLINGUA_PROVIDER")
	}

	switch c.ArchiveBackend {
	case ArchiveNone, ArchiveMemory:
	case ArchiveSQLite:
		if c.SQLitePath == "" {
			cerr.Missing = append(cerr.Missing, "TRANSLINGUA_SQLITE_PATH")
		}
	case ArchiveFirestore:
		// vertex already reported a missing project
		if c.GCPProjectID == "" && c.Provider != ProviderVertex {
			cerr.Missing = append(cerr.Missing, "TRANSLINGUA_GCP_PROJECT")
		}
	default:
		cerr.Invalid = append(cerr.Invalid, "TRANSLINGUA_ARCHIVE_BACKEND")
	}

	if c.ModelName == "" {
		cerr.Missing = append(cerr.Missing, "TRANSLINGUA_MODEL_NAME")
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		cerr.Invalid = append(cerr.Invalid, "TRANSLINGUA_TEMPERATURE")
	}
	if c.MaxOutputTokens <= 0 {
		cerr.Invalid = append(cerr.Invalid, "TRANSLINGUA_MAX_OUTPUT_TOKENS")
	}
	if c.MaxRetries < 0 {
		cerr.Invalid = append(cerr.Invalid, "TRANSLINGUA_MAX_RETRIES")
	}
	if c.TranslationHistory <= 0 {
		cerr.Invalid = append(cerr.Invalid, "TRANSLINGUA_TRANSLATION_HISTORY")
	}
	if c.TravelHistory <= 0 {
		cerr.Invalid = append(cerr.Invalid, "TRANSLINGUA_TRAVEL_HISTORY")
	}
	if c.DisplayHistory <= 0 {
		cerr.Invalid = append(cerr.Invalid, "TRANSLINGUA_DISPLAY_HISTORY")
	}
	if len(c.Languages) == 0 {
		cerr.Invalid = append(cerr.Invalid, "languages")
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getIntEnv(cerr *Error, key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		cerr.Invalid = append(cerr.Invalid, key)
		return def
	}
	return n
}

func getFloatEnv(cerr *Error, key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 32)
	if err != nil {
		cerr.Invalid = append(cerr.Invalid, key)
		return def
	}
	return f
}

func getDurationEnv(cerr *Error, key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d < 0 {
		cerr.Invalid = append(cerr.Invalid, key)
		return def
	}
	return d
}

// ModelInfo summarises the generation backend without exposing the
// credential: only its first 10 characters are kept.
func (c *Config) ModelInfo() domain.ModelInfo {
	info := domain.ModelInfo{
		Provider:         string(c.Provider),
		APIStatus:        "configured",
		TranslationModel: c.ModelName,
		TravelModel:      c.ModelName,
	}

	key := c.APIKey()
	switch {
	case key != "":
		if len(key) > 10 {
			key = key[:10]
		}
		info.APIKeyPrefix = key + "..."
	case c.Provider == ProviderGemini || c.Provider == ProviderOpenAI:
		info.APIStatus = "missing"
	}
	return info
}

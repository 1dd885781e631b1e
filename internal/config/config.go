// Package config loads process settings from the environment and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/joho/godotenv"
)

// Backend names
const (
	StoreMemory   = "memory"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
	StoreRedis    = "redis"

	IndexMemory   = "memory"
	IndexPgvector = "pgvector"
)

// Config holds every process setting.
type Config struct {
	AppName   string
	LogLevel  string
	LogFormat string

	Host string
	Port int

	// AI providers
	AIProvider      string
	OpenAIAPIKey    string
	OpenAIBaseURL   string
	LLMModel        string
	EmbeddingModel  string
	ModerationModel string

	ProviderMaxAttempts int
	ProviderRetryDelay  time.Duration
	ProviderTimeout     time.Duration
	ProviderRPS         float64

	// Storage
	DocumentStore string
	IndexProvider string
	DatabaseURL   string
	SQLitePath    string
	RedisURL      string
	DocumentTTL   time.Duration

	DBMaxOpenConns    int
	DBMaxIdleConns    int
	DBConnMaxLifetime time.Duration
	DBConnMaxIdleTime time.Duration

	PromptsFile string
	JWTSecret   string
	CORSOrigins []string
	Swagger     bool

	MaxUploadBytes    int64
	ExtractWorkers    int
	IndexBuildTimeout time.Duration
	RequestTimeout    time.Duration

	// ChunkCleanup normalizes and deduplicates child chunks before embedding.
	ChunkCleanup bool
}

// Load reads .env (when present) and then the environment.
// Variables already set in the environment win over .env entries.
func Load() *Config {
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv builds a Config from the current environment without touching .env.
func FromEnv() *Config {
	return &Config{
		AppName:   getEnv("APP_NAME", "DocuCortex"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),

		Host: getEnv("HOST", "0.0.0.0"),
		Port: getEnvInt("PORT", 8000),

		AIProvider:      getEnv("AI_PROVIDER", "openai"),
		OpenAIAPIKey:    getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL:   getEnv("OPENAI_BASE_URL", ""),
		LLMModel:        getEnv("LLM_MODEL", "gpt-4o"),
		EmbeddingModel:  getEnv("EMBEDDING_MODEL", "text-embedding-3-small"),
		ModerationModel: getEnv("MODERATION_MODEL", "omni-moderation-latest"),

		ProviderMaxAttempts: getEnvInt("PROVIDER_MAX_ATTEMPTS", 3),
		ProviderRetryDelay:  getEnvDuration("PROVIDER_RETRY_DELAY", 500*time.Millisecond),
		ProviderTimeout:     getEnvDuration("PROVIDER_TIMEOUT", 60*time.Second),
		ProviderRPS:         getEnvFloat("PROVIDER_RPS", 0),

		DocumentStore: strings.ToLower(getEnv("DOCUMENT_STORE", StoreMemory)),
		IndexProvider: strings.ToLower(getEnv("INDEX_PROVIDER", IndexMemory)),
		DatabaseURL:   getEnv("DATABASE_URL", ""),
		SQLitePath:    getEnv("SQLITE_PATH", "data/docucortex.db"),
		RedisURL:      getEnv("REDIS_URL", ""),
		DocumentTTL:   getEnvDuration("DOCUMENT_TTL", 0),

		DBMaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 25),
		DBMaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
		DBConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
		DBConnMaxIdleTime: getEnvDuration("DB_CONN_MAX_IDLE_TIME", time.Minute),

		PromptsFile: getEnv("PROMPTS_FILE", ""),
		JWTSecret:   getEnv("JWT_SECRET", ""),
		CORSOrigins: getEnvList("CORS_ORIGINS", []string{"*"}),
		Swagger:     getEnvBool("SWAGGER_ENABLED", true),

		MaxUploadBytes:    getEnvBytes("MAX_UPLOAD_BYTES", 20<<20),
		ExtractWorkers:    getEnvInt("EXTRACT_WORKERS", runtime.NumCPU()),
		IndexBuildTimeout: getEnvDuration("INDEX_BUILD_TIMEOUT", 5*time.Minute),
		RequestTimeout:    getEnvDuration("REQUEST_TIMEOUT", 2*time.Minute),

		ChunkCleanup: getEnvBool("CHUNK_CLEANUP", false),
	}
}

// Validate reports every missing or inconsistent setting at once.
func (c *Config) Validate() error {
	var errs []error

	if c.AIProvider != "openai" {
		errs = append(errs, fmt.Errorf("AI_PROVIDER: unsupported provider %q", c.AIProvider))
	}
	if c.OpenAIAPIKey == "" {
		errs = append(errs, errors.New("OPENAI_API_KEY is required"))
	}

	switch c.DocumentStore {
	case StoreMemory, StoreSQLite:
	case StorePostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for DOCUMENT_STORE=postgres"))
		}
	case StoreRedis:
		if c.RedisURL == "" {
			errs = append(errs, errors.New("REDIS_URL is required for DOCUMENT_STORE=redis"))
		}
	default:
		errs = append(errs, fmt.Errorf("DOCUMENT_STORE: unknown store %q", c.DocumentStore))
	}

	switch c.IndexProvider {
	case IndexMemory:
	case IndexPgvector:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for INDEX_PROVIDER=pgvector"))
		}
	default:
		errs = append(errs, fmt.Errorf("INDEX_PROVIDER: unknown provider %q", c.IndexProvider))
	}

	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT: %d out of range", c.Port))
	}
	if c.ProviderMaxAttempts < 1 {
		errs = append(errs, errors.New("PROVIDER_MAX_ATTEMPTS must be at least 1"))
	}
	if c.MaxUploadBytes <= 0 {
		errs = append(errs, errors.New("MAX_UPLOAD_BYTES must be positive"))
	}
	if c.ExtractWorkers < 1 {
		errs = append(errs, errors.New("EXTRACT_WORKERS must be at least 1"))
	}

	return errors.Join(errs...)
}

// UsesPostgres reports whether any backend needs DATABASE_URL.
func (c *Config) UsesPostgres() bool {
	return c.DocumentStore == StorePostgres || c.IndexProvider == IndexPgvector
}

// Addr returns the HTTP listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var result int
		if _, err := fmt.Sscanf(value, "%d", &result); err == nil {
			return result
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		var result float64
		if _, err := fmt.Sscanf(value, "%g", &result); err == nil {
			return result
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}

// getEnvBytes accepts plain byte counts or sizes such as "20MiB" and "5MB".
func getEnvBytes(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if n, err := humanize.ParseBytes(value); err == nil && n <= math.MaxInt64 {
			return int64(n)
		}
	}
	return defaultValue
}

// getEnvDuration accepts Go durations ("90s") or a bare number of seconds.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	var seconds int
	if _, err := fmt.Sscanf(value, "%d", &seconds); err == nil {
		return time.Duration(seconds) * time.Second
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

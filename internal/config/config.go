package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Store backends.
const (
	BackendMemory   = "memory"
	BackendDynamoDB = "dynamodb"
)

// ServerConfig configures cmd/api.
type ServerConfig struct {
	Port           string
	RunLocal       bool
	StoreBackend   string // memory | dynamodb
	ItemsTable     string
	EventsQueueURL string // empty disables event publishing
	SeedCount      int
	SeedXLSX       string // when set, seeds from a spreadsheet instead of generated data
	RateLimitRPS   float64
	RateLimitBurst int
	CORSOrigin     string
	LogLevel       string
	LogFormat      string
}

// WorkerConfig configures cmd/worker.
type WorkerConfig struct {
	IdempotencyTable string
	MetricsNamespace string
	DedupeTTL        time.Duration
	LogLevel         string
	LogFormat        string
}

// DefaultServerConfig listens on 8000 and seeds 10000 items in memory.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Port:           "8000",
		StoreBackend:   BackendMemory,
		ItemsTable:     "catalog-items",
		SeedCount:      10000,
		RateLimitBurst: 20,
		CORSOrigin:     "*",
		LogLevel:       "info",
		LogFormat:      "text",
	}
}

// DefaultWorkerConfig returns worker defaults.
func DefaultWorkerConfig() WorkerConfig {
	return WorkerConfig{
		IdempotencyTable: "catalog-event-dedupe",
		MetricsNamespace: "Catalog",
		DedupeTTL:        48 * time.Hour,
		LogLevel:         "info",
		LogFormat:        "json",
	}
}

// LoadServer reads .env (if any) and the environment on top of the defaults.
func LoadServer() (ServerConfig, error) {
	_ = godotenv.Load()

	cfg := DefaultServerConfig()
	setString(&cfg.Port, "PORT")
	setString(&cfg.StoreBackend, "STORE_BACKEND")
	setString(&cfg.ItemsTable, "ITEMS_TABLE")
	setString(&cfg.EventsQueueURL, "EVENTS_QUEUE_URL")
	setString(&cfg.SeedXLSX, "SEED_XLSX")
	setString(&cfg.CORSOrigin, "CORS_ORIGIN")
	setString(&cfg.LogLevel, "LOG_LEVEL")
	setString(&cfg.LogFormat, "LOG_FORMAT")
	cfg.RunLocal = os.Getenv("RUN_LOCAL") == "true"

	if err := setInt(&cfg.SeedCount, "SEED_COUNT"); err != nil {
		return cfg, err
	}
	if err := setInt(&cfg.RateLimitBurst, "RATE_LIMIT_BURST"); err != nil {
		return cfg, err
	}
	if raw := os.Getenv("RATE_LIMIT_RPS"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return cfg, fmt.Errorf("RATE_LIMIT_RPS: %w", err)
		}
		cfg.RateLimitRPS = v
	}

	switch cfg.StoreBackend {
	case BackendMemory, BackendDynamoDB:
	default:
		return cfg, fmt.Errorf("STORE_BACKEND must be %q or %q, got %q", BackendMemory, BackendDynamoDB, cfg.StoreBackend)
	}
	if cfg.SeedCount < 0 {
		return cfg, fmt.Errorf("SEED_COUNT must not be negative")
	}
	return cfg, nil
}

// LoadWorker reads .env (if any) and the environment on top of the defaults.
func LoadWorker() (WorkerConfig, error) {
	_ = godotenv.Load()

	cfg := DefaultWorkerConfig()
	setString(&cfg.IdempotencyTable, "IDEMPOTENCY_TABLE")
	setString(&cfg.MetricsNamespace, "CATALOG_METRICS_NAMESPACE")
	setString(&cfg.LogLevel, "LOG_LEVEL")
	setString(&cfg.LogFormat, "LOG_FORMAT")
	if raw := os.Getenv("DEDUPE_TTL"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return cfg, fmt.Errorf("DEDUPE_TTL: %w", err)
		}
		cfg.DedupeTTL = d
	}
	return cfg, nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) error {
	raw := os.Getenv(key)
	if raw == "" {
		return nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = v
	return nil
}

package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// TupleOrder selects the element order of the range statistics triple.
type TupleOrder string

const (
	// TupleOrderCanonical renders [min, avg, max] on both range routes.
	TupleOrderCanonical TupleOrder = "canonical"
	// TupleOrderLegacy renders [avg, min, max] on the start-only route.
	TupleOrderLegacy TupleOrder = "legacy"
)

type AppConfig struct {
	Port   string
	AppEnv string // dev or prod

	LogLevel string

	// DatabasePath is the SQLite file; DatabaseDSN overrides it when set.
	DatabasePath string
	DatabaseDSN  string
	SQLEcho      bool

	QueryTimeout   time.Duration
	StartupTimeout time.Duration
	HealthInterval time.Duration

	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	TupleOrder TupleOrder
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	cfg := &AppConfig{}

	cfg.Port = getenvDefault("PORT", "8080")

	cfg.AppEnv = strings.ToLower(getenvDefault("APP_ENV", "dev"))
	switch cfg.AppEnv {
	case "dev", "prod":
	default:
		return nil, fmt.Errorf("invalid APP_ENV %q (allowed: dev, prod)", cfg.AppEnv)
	}

	cfg.LogLevel = strings.ToLower(getenvDefault("LOG_LEVEL", "info"))
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return nil, fmt.Errorf("invalid LOG_LEVEL %q (allowed: debug, info, warn, error)", cfg.LogLevel)
	}

	cfg.DatabasePath = getenvDefault("DATABASE_PATH", "Resources/hawaii.sqlite")
	cfg.DatabaseDSN = strings.TrimSpace(os.Getenv("DATABASE_DSN"))

	echo, err := getenvBool("SQL_ECHO", false)
	if err != nil {
		return nil, err
	}
	cfg.SQLEcho = echo

	durations := []struct {
		key string
		def string
		dst *time.Duration
	}{
		{"QUERY_TIMEOUT", "5s", &cfg.QueryTimeout},
		{"STARTUP_TIMEOUT", "30s", &cfg.StartupTimeout},
		{"HEALTH_INTERVAL", "1m", &cfg.HealthInterval},
		{"READ_TIMEOUT", "10s", &cfg.ReadTimeout},
		{"WRITE_TIMEOUT", "10s", &cfg.WriteTimeout},
	}
	for _, d := range durations {
		v, err := time.ParseDuration(getenvDefault(d.key, d.def))
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", d.key, err)
		}
		*d.dst = v
	}

	cfg.TupleOrder = TupleOrder(strings.ToLower(getenvDefault("TUPLE_ORDER", string(TupleOrderCanonical))))
	switch cfg.TupleOrder {
	case TupleOrderCanonical, TupleOrderLegacy:
	default:
		return nil, fmt.Errorf("invalid TUPLE_ORDER %q (allowed: canonical, legacy)", cfg.TupleOrder)
	}

	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getenvBool(key string, def bool) (bool, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}

package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/ZhenyaSonic/ORO-SurveyAnalytics/db"
)

// DefaultCORSOrigins are the local frontend origins allowed when none are configured.
const DefaultCORSOrigins = "http://localhost:5173,http://localhost:3000,http://localhost:8080,http://localhost"

type Config struct {
	Port         int
	DatabaseURL  string
	DatabaseType string
	CORSOrigins  []string
	LogLevel     string
	LogFormat    string
	MaxOpenConns int
	EnvFile      string
}

// ParseFlags validates flags and fills the rest from the environment.
// Precedence: CLI flag, process environment, .env file, default.
func ParseFlags(args []string) (Config, error) {
	var cfg Config
	var origins string

	flags := flag.NewFlagSet("survey-analytics", flag.ContinueOnError)

	flags.IntVar(&cfg.Port, "p", 0, "Server port")
	flags.StringVar(&cfg.DatabaseURL, "d", "", "Database URL")
	flags.StringVar(&cfg.DatabaseType, "t", "", "Database type (sqlite or postgres)")
	flags.StringVar(&origins, "cors-origins", "", "Comma-separated list of allowed CORS origins")
	flags.StringVar(&cfg.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flags.StringVar(&cfg.LogFormat, "log-format", "", "Log format (json, text, auto)")
	flags.IntVar(&cfg.MaxOpenConns, "max-open-conns", 0, "Maximum open database connections")
	flags.StringVar(&cfg.EnvFile, "env-file", "", "Path to a .env file")

	if err := flags.Parse(args); err != nil {
		return Config{}, err
	}

	// .env values never override variables already set in the environment
	if cfg.EnvFile == "" {
		cfg.EnvFile = envOr("ENV_FILE", ".env")
	}
	if err := godotenv.Load(cfg.EnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load env file %s: %w", cfg.EnvFile, err)
	}

	if cfg.Port == 0 {
		port, err := envInt("PORT", 8000)
		if err != nil {
			return Config{}, err
		}
		cfg.Port = port
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("database URL required (use -d or DATABASE_URL env)")
	}

	if cfg.DatabaseType == "" {
		cfg.DatabaseType = envOr("DATABASE_TYPE", db.InferType(cfg.DatabaseURL))
	}
	if cfg.DatabaseType != db.TypePostgres && cfg.DatabaseType != db.TypeSQLite {
		return Config{}, fmt.Errorf("unsupported database type %q (use sqlite or postgres)", cfg.DatabaseType)
	}

	if origins == "" {
		origins = envOr("CORS_ORIGINS", DefaultCORSOrigins)
	}
	cfg.CORSOrigins = SplitList(origins)

	if cfg.LogLevel == "" {
		cfg.LogLevel = envOr("LOG_LEVEL", "info")
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = envOr("LOG_FORMAT", "auto")
	}

	if cfg.MaxOpenConns == 0 {
		n, err := envInt("DB_MAX_OPEN_CONNS", 10)
		if err != nil {
			return Config{}, err
		}
		cfg.MaxOpenConns = n
	}
	if cfg.MaxOpenConns < 0 {
		return Config{}, errors.New("max open connections must not be negative")
	}

	return cfg, nil
}

// SplitList splits a comma-separated value, trimming blanks.
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s env variable", key)
	}
	return n, nil
}

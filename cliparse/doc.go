// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

# Config Fields

  - Port: Server listen port (default: 8000)
  - DatabaseURL: PostgreSQL URL or SQLite path (required)
  - DatabaseType: sqlite or postgres (default: inferred from the URL)
  - CORSOrigins: Allowed browser origins (default: local dev servers)
  - LogLevel: debug, info, warn or error (default: info)
  - LogFormat: json, text or auto (default: auto)
  - MaxOpenConns: Connection pool size (default: 10)

# CLI Flags

	-p                Server port
	-d                Database URL
	-t                Database type
	-cors-origins     Comma-separated origins
	-log-level        Log level
	-log-format       Log format
	-max-open-conns   Pool size
	-env-file         Path to a .env file

# Environment Variables

Flags fall back to environment variables:

	PORT              → -p
	DATABASE_URL      → -d
	DATABASE_TYPE     → -t
	CORS_ORIGINS      → -cors-origins
	LOG_LEVEL         → -log-level
	LOG_FORMAT        → -log-format
	DB_MAX_OPEN_CONNS → -max-open-conns
	ENV_FILE          → -env-file

Variables may also come from a .env file (default ".env"; a missing file is
ignored). CLI flags take precedence over the environment, which takes
precedence over the .env file.

# Validation

ParseFlags returns an error if DATABASE_URL is missing, a numeric value does
not parse, or the database type is not sqlite or postgres.
*/
package cliparse

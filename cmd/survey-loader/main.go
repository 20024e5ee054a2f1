// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/ZhenyaSonic/ORO-SurveyAnalytics/db"
	"github.com/ZhenyaSonic/ORO-SurveyAnalytics/ingest"
	"github.com/ZhenyaSonic/ORO-SurveyAnalytics/logging"
)

var (
	flagDatabaseURL  string
	flagDatabaseType string
	flagLogLevel     string
	flagLogFormat    string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "survey-loader",
	Short:         "Load survey definitions and responses into the analytics database",
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load .env: %w", err)
		}
		return logging.Setup(
			firstNonEmpty(flagLogLevel, os.Getenv("LOG_LEVEL"), "info"),
			firstNonEmpty(flagLogFormat, os.Getenv("LOG_FORMAT"), logging.FormatAuto),
		)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagDatabaseURL, "database-url", "d", "", "database URL (default: DATABASE_URL env)")
	rootCmd.PersistentFlags().StringVarP(&flagDatabaseType, "database-type", "t", "", "database type: sqlite|postgres (default: inferred from the URL)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "log level: debug|info|warn|error")
	rootCmd.PersistentFlags().StringVar(&flagLogFormat, "log-format", "", "log format: json|text|auto")

	rootCmd.AddCommand(loadCmd)
	rootCmd.AddCommand(schemaCmd)
}

var (
	flagManifest     string
	flagXMLDir       string
	flagResponses    string
	flagBatchSize    int
	flagCacheSize    int
	flagParseWorkers int
)

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Load survey XML definitions, then a response sheet",
	Long: "Applies every *.xml survey definition in the XML directory and loads the response sheet (.csv, .csv.gz or .xlsx). " +
		"Flags override manifest values. Without either, INPUT_BASE_DIR/input/xml and INPUT_BASE_DIR/input/responses.xlsx are used when present.",
	Args: cobra.NoArgs,
	RunE: runLoad,
}

func init() {
	loadCmd.Flags().StringVar(&flagManifest, "manifest", "", "YAML manifest describing the run")
	loadCmd.Flags().StringVar(&flagXMLDir, "xml-dir", "", "directory of survey XML definitions")
	loadCmd.Flags().StringVar(&flagResponses, "responses", "", "response sheet (.csv, .csv.gz or .xlsx)")
	loadCmd.Flags().IntVar(&flagBatchSize, "batch-size", 0, fmt.Sprintf("rows per transaction (default %d)", ingest.DefaultBatchSize))
	loadCmd.Flags().IntVar(&flagCacheSize, "cache-size", 0, fmt.Sprintf("respondent cache entries (default %d)", ingest.DefaultCacheSize))
	loadCmd.Flags().IntVar(&flagParseWorkers, "parse-workers", 0, fmt.Sprintf("concurrent XML parsers (default %d)", ingest.DefaultParseWorkers))
}

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Create the database schema",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		url, dbType, err := resolveDatabase(flagDatabaseURL, flagDatabaseType)
		if err != nil {
			return err
		}
		conn, err := openDatabase(url, dbType)
		if err != nil {
			return err
		}
		defer conn.Close()

		fmt.Fprintf(os.Stderr, "Schema ready (%s)\n", dbType)
		return nil
	},
}

// loadConfig is a fully resolved load run.
type loadConfig struct {
	DatabaseURL  string
	DatabaseType string
	XMLDir       string
	Responses    string
	Options      ingest.Options
}

func runLoad(cmd *cobra.Command, args []string) error {
	var m ingest.Manifest
	if flagManifest != "" {
		var err error
		if m, err = ingest.LoadManifest(flagManifest); err != nil {
			return err
		}
	}

	cfg, err := resolveLoadConfig(m)
	if err != nil {
		return err
	}

	conn, err := openDatabase(cfg.DatabaseURL, cfg.DatabaseType)
	if err != nil {
		return err
	}
	defer conn.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	loader, err := ingest.NewLoader(conn, cfg.Options)
	if err != nil {
		return err
	}
	report, err := loader.LoadAll(ctx, cfg.XMLDir, cfg.Responses)
	if err != nil {
		return fmt.Errorf("load run %s: %w", report.RunID, err)
	}

	printReport(report)
	return nil
}

// resolveLoadConfig merges flags over the manifest, then falls back to the
// environment and the default input layout.
func resolveLoadConfig(m ingest.Manifest) (loadConfig, error) {
	cfg := loadConfig{
		XMLDir:    firstNonEmpty(flagXMLDir, m.XMLDir),
		Responses: firstNonEmpty(flagResponses, m.Responses),
		Options:   m.Options(),
	}
	if flagBatchSize != 0 {
		cfg.Options.BatchSize = flagBatchSize
	}
	if flagCacheSize != 0 {
		cfg.Options.CacheSize = flagCacheSize
	}
	if flagParseWorkers != 0 {
		cfg.Options.ParseWorkers = flagParseWorkers
	}
	if cfg.Options.BatchSize < 0 || cfg.Options.CacheSize < 0 || cfg.Options.ParseWorkers < 0 {
		return loadConfig{}, errors.New("batch size, cache size and parse workers must not be negative")
	}

	if cfg.XMLDir == "" && cfg.Responses == "" {
		cfg.XMLDir, cfg.Responses = defaultInputs(os.Getenv("INPUT_BASE_DIR"))
	}
	if cfg.XMLDir == "" && cfg.Responses == "" {
		return loadConfig{}, ingest.ErrNoInput
	}

	var err error
	cfg.DatabaseURL, cfg.DatabaseType, err = resolveDatabase(
		firstNonEmpty(flagDatabaseURL, m.DatabaseURL),
		firstNonEmpty(flagDatabaseType, m.DatabaseType),
	)
	if err != nil {
		return loadConfig{}, err
	}
	return cfg, nil
}

// defaultInputs returns base/input/xml and base/input/responses.xlsx, each
// only if it exists.
func defaultInputs(base string) (xmlDir, responses string) {
	if base == "" {
		base = "."
	}
	xmlDir = filepath.Join(base, "input", "xml")
	if info, err := os.Stat(xmlDir); err != nil || !info.IsDir() {
		xmlDir = ""
	}
	responses = filepath.Join(base, "input", "responses.xlsx")
	if _, err := os.Stat(responses); err != nil {
		responses = ""
	}
	return xmlDir, responses
}

func resolveDatabase(url, dbType string) (string, string, error) {
	url = firstNonEmpty(url, os.Getenv("DATABASE_URL"))
	if url == "" {
		return "", "", errors.New("database URL required (use -d or DATABASE_URL env)")
	}
	dbType = firstNonEmpty(dbType, os.Getenv("DATABASE_TYPE"), db.InferType(url))
	if dbType != db.TypePostgres && dbType != db.TypeSQLite {
		return "", "", fmt.Errorf("unsupported database type %q (use sqlite or postgres)", dbType)
	}
	return url, dbType, nil
}

func openDatabase(url, dbType string) (*sql.DB, error) {
	conn, err := db.Open(dbType, url, db.DefaultPoolConfig())
	if err != nil {
		return nil, err
	}
	if err := db.CreateSchema(conn); err != nil {
		conn.Close()
		return nil, err
	}
	slog.Debug("database ready", "type", dbType)
	return conn, nil
}

func printReport(r ingest.Report) {
	for _, d := range r.Definitions {
		fmt.Fprintf(os.Stderr, "Survey %s: %d questions, %d options\n", d.SurveyID, d.Questions, d.Options)
	}
	s := r.Responses
	if s.Rows == 0 {
		return
	}
	fmt.Fprintf(os.Stderr, "Responses: %s rows (%s skipped) in %s\n",
		humanize.Comma(int64(s.Rows)), humanize.Comma(int64(s.SkippedRows)), s.Duration.Round(time.Millisecond))
	fmt.Fprintf(os.Stderr, "Inserted: %s respondents, %s text, %s choice\n",
		humanize.Comma(int64(s.Respondents)), humanize.Comma(int64(s.TextResponses)), humanize.Comma(int64(s.ChoiceResponses)))
	if s.FailedBatches > 0 {
		fmt.Fprintf(os.Stderr, "Failed batches: %d (%s rows lost)\n", s.FailedBatches, humanize.Comma(int64(s.LostRows)))
	}
	fmt.Fprintf(os.Stderr, "Run: %s\n", r.RunID)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

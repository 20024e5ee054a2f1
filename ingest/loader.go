// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ingest

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/oklog/ulid/v2"
	"golang.org/x/sync/errgroup"

	"github.com/ZhenyaSonic/ORO-SurveyAnalytics/models"
	"github.com/ZhenyaSonic/ORO-SurveyAnalytics/responses"
)

// Defaults for Options fields left at zero.
const (
	DefaultBatchSize    = 5000
	DefaultCacheSize    = 100_000
	DefaultParseWorkers = 4
)

type Options struct {
	BatchSize    int
	CacheSize    int
	ParseWorkers int
}

func (o Options) withDefaults() Options {
	if o.BatchSize <= 0 {
		o.BatchSize = DefaultBatchSize
	}
	if o.CacheSize <= 0 {
		o.CacheSize = DefaultCacheSize
	}
	if o.ParseWorkers <= 0 {
		o.ParseWorkers = DefaultParseWorkers
	}
	return o
}

// Summary counts what LoadResponses read and wrote. Inserted counts only
// include committed batches.
type Summary struct {
	RunID           string
	Rows            int
	SkippedRows     int
	Batches         int
	FailedBatches   int
	LostRows        int
	Respondents     int
	TextResponses   int
	ChoiceResponses int
	Duration        time.Duration
}

// Report is the outcome of LoadAll.
type Report struct {
	RunID       string
	Definitions []DefinitionSummary
	Responses   Summary
}

// Loader writes survey definitions and response sheets into the database.
type Loader struct {
	db    *sql.DB
	opts  Options
	runID string
	known *lru.Cache[string, struct{}]
}

func NewLoader(db *sql.DB, opts Options) (*Loader, error) {
	opts = opts.withDefaults()
	known, err := lru.New[string, struct{}](opts.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("create respondent cache: %w", err)
	}
	return &Loader{
		db:    db,
		opts:  opts,
		runID: ulid.Make().String(),
		known: known,
	}, nil
}

// RunID identifies this loader's run in logs.
func (l *Loader) RunID() string {
	return l.runID
}

// LoadAll applies every *.xml definition in xmlDir, then loads sheetPath.
// Definitions are parsed concurrently and applied in file name order, one
// transaction per survey. An empty sheetPath skips the responses.
func (l *Loader) LoadAll(ctx context.Context, xmlDir, sheetPath string) (Report, error) {
	report := Report{RunID: l.runID}

	if xmlDir != "" {
		defs, err := l.parseDefinitions(ctx, xmlDir)
		if err != nil {
			return report, err
		}
		for _, def := range defs {
			s, err := ApplyDefinition(ctx, l.db, def)
			if err != nil {
				return report, err
			}
			slog.Info("survey loaded",
				"run_id", l.runID,
				"survey_id", s.SurveyID,
				"questions", s.Questions,
				"options", s.Options,
			)
			report.Definitions = append(report.Definitions, s)
		}
	}

	if sheetPath == "" {
		return report, nil
	}

	if info, err := os.Stat(sheetPath); err == nil {
		slog.Info("loading responses",
			"run_id", l.runID,
			"sheet", filepath.Base(sheetPath),
			"size", humanize.Bytes(uint64(info.Size())),
		)
	}
	src, err := OpenSheet(sheetPath)
	if err != nil {
		return report, err
	}
	defer src.Close()

	report.Responses, err = l.LoadResponses(ctx, src)
	return report, err
}

func (l *Loader) parseDefinitions(ctx context.Context, xmlDir string) ([]Definition, error) {
	paths, err := filepath.Glob(filepath.Join(xmlDir, "*.xml"))
	if err != nil {
		return nil, fmt.Errorf("list definitions: %w", err)
	}
	sort.Strings(paths)

	defs := make([]Definition, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(l.opts.ParseWorkers)
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			def, err := ParseDefinitionFile(path)
			if err != nil {
				return err
			}
			defs[i] = def
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	slog.Info("definitions parsed", "run_id", l.runID, "files", len(defs), "dir", xmlDir)
	return defs, nil
}

// batch is one open write transaction.
type batch struct {
	tx      *sql.Tx
	w       *responses.Writer
	rows    int
	added   []string
	pending Summary
}

// LoadResponses writes every row of src. Rows are committed in batches; a
// batch that fails is rolled back, logged and dropped, and loading goes on
// with the next row. A failure of the final commit is returned.
func (l *Loader) LoadResponses(ctx context.Context, src RowSource) (Summary, error) {
	start := time.Now()
	summary := Summary{RunID: l.runID}

	var b *batch
	defer func() {
		if b != nil {
			b.tx.Rollback()
		}
	}()

	for {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		row, err := src.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return summary, err
		}
		summary.Rows++

		if b == nil {
			if b, err = l.begin(ctx); err != nil {
				return summary, err
			}
		}

		skip, err := l.writeRow(ctx, b, row)
		if err != nil {
			slog.Warn("batch failed, rolling back",
				"run_id", l.runID,
				"line", row.Line,
				"lost_rows", b.rows+1,
				"error", err,
			)
			l.discard(b, &summary, b.rows+1)
			b = nil
			continue
		}
		if skip != "" {
			summary.SkippedRows++
			slog.Debug("row skipped", "run_id", l.runID, "line", row.Line, "reason", skip)
		}
		b.rows++

		if b.rows >= l.opts.BatchSize {
			if err := b.tx.Commit(); err != nil {
				slog.Warn("batch commit failed, rolling back",
					"run_id", l.runID,
					"line", row.Line,
					"lost_rows", b.rows,
					"error", err,
				)
				l.discard(b, &summary, b.rows)
			} else {
				l.merge(b, &summary)
				slog.Info("batch committed",
					"run_id", l.runID,
					"rows", humanize.Comma(int64(summary.Rows)),
				)
			}
			b = nil
		}
	}

	if b != nil {
		if err := b.tx.Commit(); err != nil {
			l.discard(b, &summary, b.rows)
			b = nil
			summary.Duration = time.Since(start)
			return summary, fmt.Errorf("final commit: %w", err)
		}
		l.merge(b, &summary)
		b = nil
	}

	summary.Duration = time.Since(start)
	slog.Info("responses loaded",
		"run_id", l.runID,
		"rows", humanize.Comma(int64(summary.Rows)),
		"skipped", summary.SkippedRows,
		"failed_batches", summary.FailedBatches,
		"respondents", humanize.Comma(int64(summary.Respondents)),
		"text_responses", humanize.Comma(int64(summary.TextResponses)),
		"choice_responses", humanize.Comma(int64(summary.ChoiceResponses)),
		"took", summary.Duration.Round(time.Millisecond).String(),
	)
	return summary, nil
}

func (l *Loader) begin(ctx context.Context) (*batch, error) {
	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin batch: %w", err)
	}
	return &batch{tx: tx, w: responses.NewWriter(tx)}, nil
}

// merge folds a committed batch into the summary.
func (l *Loader) merge(b *batch, s *Summary) {
	s.Batches++
	s.Respondents += b.pending.Respondents
	s.TextResponses += b.pending.TextResponses
	s.ChoiceResponses += b.pending.ChoiceResponses
}

// discard rolls a batch back and forgets the respondents it created.
func (l *Loader) discard(b *batch, s *Summary, lost int) {
	b.tx.Rollback()
	for _, id := range b.added {
		l.known.Remove(id)
	}
	s.Batches++
	s.FailedBatches++
	s.LostRows += lost
}

// writeRow stores one sheet row. A non-empty skip reason means the row was
// valid input that carried no answer or could not be interpreted; an error
// means the transaction is no longer usable.
func (l *Loader) writeRow(ctx context.Context, b *batch, row Row) (skip string, err error) {
	surveyID := strings.TrimSpace(row.Survey)
	respondentID := strings.TrimSpace(row.Respondent)
	questionID := strings.TrimSpace(row.Question)
	if missing(surveyID) || missing(respondentID) || missing(questionID) {
		return "missing survey, respondent or question", nil
	}
	typeCode, err := parseInt(row.Type)
	if err != nil {
		return "invalid question type", nil
	}

	if !l.known.Contains(respondentID) {
		created, err := b.w.EnsureRespondent(ctx, respondentID)
		if err != nil {
			return "", err
		}
		l.known.Add(respondentID, struct{}{})
		b.added = append(b.added, respondentID)
		if created {
			b.pending.Respondents++
		}
	}

	switch models.QuestionType(typeCode) {
	case models.QuestionText:
		text := strings.TrimSpace(row.Text)
		if missing(text) {
			return "empty text", nil
		}
		inserted, err := b.w.InsertText(ctx, models.TextResponse{
			RespondentID: respondentID,
			QuestionID:   questionID,
			SurveyID:     surveyID,
			Text:         text,
		})
		if err != nil {
			return "", err
		}
		if inserted {
			b.pending.TextResponses++
		}
	case models.QuestionSingle, models.QuestionMultiple:
		optionID := strings.TrimSpace(row.Response)
		if missing(optionID) {
			return "empty response", nil
		}
		order := 1
		if o := strings.TrimSpace(row.Order); !missing(o) {
			if order, err = parseInt(o); err != nil {
				return "invalid order", nil
			}
		}
		inserted, err := b.w.InsertChoice(ctx, models.ChoiceResponse{
			RespondentID:   respondentID,
			QuestionID:     questionID,
			SurveyID:       surveyID,
			AnswerOptionID: optionID,
			ResponseOrder:  order,
		})
		if err != nil {
			return "", err
		}
		if inserted {
			b.pending.ChoiceResponses++
		}
	default:
		return "unknown question type", nil
	}
	return "", nil
}

// missing reports blank cells and the literal "nan" spreadsheet exports
// write for empty numeric cells.
func missing(v string) bool {
	return v == "" || strings.EqualFold(v, "nan")
}

// ErrNoInput is returned when neither definitions nor responses are given.
var ErrNoInput = errors.New("nothing to load: set an XML directory or a responses sheet")

// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ZhenyaSonic/ORO-SurveyAnalytics/db"
	"github.com/ZhenyaSonic/ORO-SurveyAnalytics/models"
)

// ErrNotFound is returned when a single survey, question or option is absent.
var ErrNotFound = errors.New("not found")

// Catalog is a read-only view of the survey structure.
type Catalog struct {
	q db.Querier
}

// New returns a Catalog reading through q (a *sql.DB or *sql.Tx).
func New(q db.Querier) *Catalog {
	return &Catalog{q: q}
}

func (c *Catalog) GetSurvey(ctx context.Context, id string) (models.Survey, error) {
	var s models.Survey
	err := c.q.QueryRowContext(ctx, `SELECT id FROM surveys WHERE id = $1`, id).Scan(&s.ID)
	if err == sql.ErrNoRows {
		return models.Survey{}, fmt.Errorf("survey %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return models.Survey{}, fmt.Errorf("query survey: %w", err)
	}
	return s, nil
}

func (c *Catalog) ListSurveys(ctx context.Context) ([]models.Survey, error) {
	rows, err := c.q.QueryContext(ctx, `SELECT id FROM surveys ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query surveys: %w", err)
	}
	defer rows.Close()

	surveys := []models.Survey{}
	for rows.Next() {
		var s models.Survey
		if err := rows.Scan(&s.ID); err != nil {
			return nil, fmt.Errorf("scan survey: %w", err)
		}
		surveys = append(surveys, s)
	}
	return surveys, rows.Err()
}

const questionColumns = `id, survey_id, name, text, type, position`

// GetQuestions returns every question of a survey in definition order.
func (c *Catalog) GetQuestions(ctx context.Context, surveyID string) ([]models.Question, error) {
	rows, err := c.q.QueryContext(ctx, `
		SELECT `+questionColumns+`
		FROM questions
		WHERE survey_id = $1
		ORDER BY position, id
	`, surveyID)
	if err != nil {
		return nil, fmt.Errorf("query questions: %w", err)
	}
	return scanQuestions(rows)
}

// GetQuestionsByName resolves names to questions of one survey. Names that
// do not exist are simply absent from the result.
func (c *Catalog) GetQuestionsByName(ctx context.Context, surveyID string, names []string) ([]models.Question, error) {
	questions := []models.Question{}
	for _, chunk := range db.Chunks(distinct(names), db.MaxInArgs) {
		args := make([]any, 0, len(chunk)+1)
		args = append(args, surveyID)
		for _, n := range chunk {
			args = append(args, n)
		}

		rows, err := c.q.QueryContext(ctx, `
			SELECT `+questionColumns+`
			FROM questions
			WHERE survey_id = $1 AND name IN (`+db.Placeholders(2, len(chunk))+`)
			ORDER BY position, id
		`, args...)
		if err != nil {
			return nil, fmt.Errorf("query questions by name: %w", err)
		}
		batch, err := scanQuestions(rows)
		if err != nil {
			return nil, err
		}
		questions = append(questions, batch...)
	}
	return questions, nil
}

func (c *Catalog) GetQuestion(ctx context.Context, id string) (models.Question, error) {
	var q models.Question
	var qt int
	err := c.q.QueryRowContext(ctx, `
		SELECT `+questionColumns+` FROM questions WHERE id = $1
	`, id).Scan(&q.ID, &q.SurveyID, &q.Name, &q.Text, &qt, &q.Position)
	if err == sql.ErrNoRows {
		return models.Question{}, fmt.Errorf("question %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return models.Question{}, fmt.Errorf("query question: %w", err)
	}
	q.Type = models.ParseQuestionType(qt)
	return q, nil
}

func (c *Catalog) GetAnswerOption(ctx context.Context, id string) (models.AnswerOption, error) {
	var o models.AnswerOption
	err := c.q.QueryRowContext(ctx, `
		SELECT id, question_id, code, label FROM answer_options WHERE id = $1
	`, id).Scan(&o.ID, &o.QuestionID, &o.Code, &o.Label)
	if err == sql.ErrNoRows {
		return models.AnswerOption{}, fmt.Errorf("answer option %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return models.AnswerOption{}, fmt.Errorf("query answer option: %w", err)
	}
	return o, nil
}

// GetAnswerOptions looks up many options at once, keyed by option id.
// Missing ids are absent from the map.
func (c *Catalog) GetAnswerOptions(ctx context.Context, ids []string) (Options, error) {
	opts := Options{}
	for _, chunk := range db.Chunks(distinct(ids), db.MaxInArgs) {
		rows, err := c.q.QueryContext(ctx, `
			SELECT id, question_id, code, label
			FROM answer_options
			WHERE id IN (`+db.Placeholders(1, len(chunk))+`)
		`, toArgs(chunk)...)
		if err != nil {
			return nil, fmt.Errorf("query answer options: %w", err)
		}
		batch, err := scanOptions(rows)
		if err != nil {
			return nil, err
		}
		for _, o := range batch {
			opts[o.ID] = o
		}
	}
	return opts, nil
}

// GetAnswerOptionsForQuestions groups options by question id, ordered by code.
func (c *Catalog) GetAnswerOptionsForQuestions(ctx context.Context, questionIDs []string) (map[string][]models.AnswerOption, error) {
	grouped := make(map[string][]models.AnswerOption)
	for _, chunk := range db.Chunks(distinct(questionIDs), db.MaxInArgs) {
		rows, err := c.q.QueryContext(ctx, `
			SELECT id, question_id, code, label
			FROM answer_options
			WHERE question_id IN (`+db.Placeholders(1, len(chunk))+`)
			ORDER BY question_id, code, id
		`, toArgs(chunk)...)
		if err != nil {
			return nil, fmt.Errorf("query answer options: %w", err)
		}
		batch, err := scanOptions(rows)
		if err != nil {
			return nil, err
		}
		for _, o := range batch {
			grouped[o.QuestionID] = append(grouped[o.QuestionID], o)
		}
	}
	return grouped, nil
}

// Options maps answer option ids to options.
type Options map[string]models.AnswerOption

// Lookup implements aggregate.OptionLookup.
func (o Options) Lookup(id string) (models.AnswerOption, bool) {
	opt, ok := o[id]
	return opt, ok
}

func scanQuestions(rows *sql.Rows) ([]models.Question, error) {
	defer rows.Close()

	questions := []models.Question{}
	for rows.Next() {
		var q models.Question
		var qt int
		if err := rows.Scan(&q.ID, &q.SurveyID, &q.Name, &q.Text, &qt, &q.Position); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		q.Type = models.ParseQuestionType(qt)
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

func scanOptions(rows *sql.Rows) ([]models.AnswerOption, error) {
	defer rows.Close()

	var opts []models.AnswerOption
	for rows.Next() {
		var o models.AnswerOption
		if err := rows.Scan(&o.ID, &o.QuestionID, &o.Code, &o.Label); err != nil {
			return nil, fmt.Errorf("scan answer option: %w", err)
		}
		opts = append(opts, o)
	}
	return opts, rows.Err()
}

func distinct(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func toArgs(values []string) []any {
	args := make([]any, len(values))
	for i, v := range values {
		args[i] = v
	}
	return args
}

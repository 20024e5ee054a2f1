// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package responses

import (
	"context"
	"fmt"

	"github.com/ZhenyaSonic/ORO-SurveyAnalytics/db"
	"github.com/ZhenyaSonic/ORO-SurveyAnalytics/models"
)

// Writer appends facts. Every insert is idempotent: an existing row is left
// untouched and reported as not inserted.
type Writer struct {
	x db.Execer
}

func NewWriter(x db.Execer) *Writer {
	return &Writer{x: x}
}

// EnsureRespondent creates the respondent if it does not exist yet.
func (w *Writer) EnsureRespondent(ctx context.Context, id string) (bool, error) {
	return w.insert(ctx, "respondent", `
		INSERT INTO respondents (id) VALUES ($1)
		ON CONFLICT DO NOTHING
	`, id)
}

func (w *Writer) InsertText(ctx context.Context, tr models.TextResponse) (bool, error) {
	return w.insert(ctx, "text response", `
		INSERT INTO text_responses (respondent_id, question_id, survey_id, text)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT DO NOTHING
	`, tr.RespondentID, tr.QuestionID, tr.SurveyID, tr.Text)
}

func (w *Writer) InsertChoice(ctx context.Context, cr models.ChoiceResponse) (bool, error) {
	return w.insert(ctx, "choice response", `
		INSERT INTO choice_responses (respondent_id, question_id, survey_id, answer_option_id, response_order)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT DO NOTHING
	`, cr.RespondentID, cr.QuestionID, cr.SurveyID, cr.AnswerOptionID, cr.ResponseOrder)
}

func (w *Writer) insert(ctx context.Context, what, query string, args ...any) (bool, error) {
	res, err := w.x.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("insert %s: %w", what, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert %s: %w", what, err)
	}
	return n > 0, nil
}

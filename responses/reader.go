// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package responses

import (
	"context"
	"fmt"

	"github.com/ZhenyaSonic/ORO-SurveyAnalytics/db"
	"github.com/ZhenyaSonic/ORO-SurveyAnalytics/models"
)

// Reader reads raw answer facts.
type Reader struct {
	q db.Querier
}

func NewReader(q db.Querier) *Reader {
	return &Reader{q: q}
}

// TextResponses returns the free-text facts of a survey restricted to the
// given question ids.
func (r *Reader) TextResponses(ctx context.Context, surveyID string, questionIDs []string) ([]models.TextResponse, error) {
	var out []models.TextResponse
	for _, chunk := range db.Chunks(questionIDs, db.MaxInArgs) {
		rows, err := r.q.QueryContext(ctx, `
			SELECT respondent_id, question_id, survey_id, text
			FROM text_responses
			WHERE survey_id = $1 AND question_id IN (`+db.Placeholders(2, len(chunk))+`)
			ORDER BY respondent_id, question_id
		`, scopedArgs(surveyID, chunk)...)
		if err != nil {
			return nil, fmt.Errorf("query text responses: %w", err)
		}

		for rows.Next() {
			var tr models.TextResponse
			if err := rows.Scan(&tr.RespondentID, &tr.QuestionID, &tr.SurveyID, &tr.Text); err != nil {
				rows.Close()
				return nil, fmt.Errorf("scan text response: %w", err)
			}
			out = append(out, tr)
		}
		err = rows.Err()
		rows.Close()
		if err != nil {
			return nil, fmt.Errorf("iterate text responses: %w", err)
		}
	}
	return out, nil
}

// ChoiceResponses returns the selected-option facts of a survey restricted to
// the given question ids. Rows of one respondent and question come back in
// response order, so a later row is a later selection.
func (r *Reader) ChoiceResponses(ctx context.Context, surveyID string, questionIDs []string) ([]models.ChoiceResponse, error) {
	var out []models.ChoiceResponse
	for _, chunk := range db.Chunks(questionIDs, db.MaxInArgs) {
		rows, err := r.q.QueryContext(ctx, `
			SELECT respondent_id, question_id, survey_id, answer_option_id, response_order
			FROM choice_responses
			WHERE survey_id = $1 AND question_id IN (`+db.Placeholders(2, len(chunk))+`)
			ORDER BY respondent_id, question_id, response_order, answer_option_id
		`, scopedArgs(surveyID, chunk)...)
		if err != nil {
			return nil, fmt.Errorf("query choice responses: %w", err)
		}

		for rows.Next() {
			var cr models.ChoiceResponse
			if err := rows.Scan(&cr.RespondentID, &cr.QuestionID, &cr.SurveyID, &cr.AnswerOptionID, &cr.ResponseOrder); err != nil {
				rows.Close()
				return nil, fmt.Errorf("scan choice response: %w", err)
			}
			out = append(out, cr)
		}
		err = rows.Err()
		rows.Close()
		if err != nil {
			return nil, fmt.Errorf("iterate choice responses: %w", err)
		}
	}
	return out, nil
}

func scopedArgs(surveyID string, ids []string) []any {
	args := make([]any, 0, len(ids)+1)
	args = append(args, surveyID)
	for _, id := range ids {
		args = append(args, id)
	}
	return args
}

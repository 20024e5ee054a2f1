// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package query

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ZhenyaSonic/ORO-SurveyAnalytics/aggregate"
	"github.com/ZhenyaSonic/ORO-SurveyAnalytics/catalog"
	"github.com/ZhenyaSonic/ORO-SurveyAnalytics/models"
	"github.com/ZhenyaSonic/ORO-SurveyAnalytics/responses"
)

// Gateway serves survey reads. Every call runs in its own transaction,
// which is always rolled back.
type Gateway struct {
	db *sql.DB
}

func NewGateway(db *sql.DB) *Gateway {
	return &Gateway{db: db}
}

// scope is the set of readers bound to one transaction.
type scope struct {
	catalog *catalog.Catalog
	facts   *responses.Reader
}

func (g *Gateway) read(ctx context.Context, fn func(s scope) error) error {
	tx, err := g.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin read transaction: %w", err)
	}
	defer tx.Rollback()

	return fn(scope{catalog: catalog.New(tx), facts: responses.NewReader(tx)})
}

func (g *Gateway) ListSurveys(ctx context.Context) ([]models.Survey, error) {
	var surveys []models.Survey
	err := g.read(ctx, func(s scope) error {
		var err error
		surveys, err = s.catalog.ListSurveys(ctx)
		return err
	})
	return surveys, err
}

// SurveyQuestions lists a survey's questions in definition order.
func (g *Gateway) SurveyQuestions(ctx context.Context, surveyID string) ([]models.Question, error) {
	var questions []models.Question
	err := g.read(ctx, func(s scope) error {
		if err := requireSurvey(ctx, s, surveyID); err != nil {
			return err
		}
		var err error
		questions, err = s.catalog.GetQuestions(ctx, surveyID)
		return err
	})
	return questions, err
}

// QuestionOptions returns the answer options of one question ordered by code.
func (g *Gateway) QuestionOptions(ctx context.Context, questionID string) ([]models.AnswerOption, error) {
	var opts []models.AnswerOption
	err := g.read(ctx, func(s scope) error {
		if _, err := s.catalog.GetQuestion(ctx, questionID); err != nil {
			if errors.Is(err, catalog.ErrNotFound) {
				return ErrQuestionNotFound
			}
			return err
		}
		grouped, err := s.catalog.GetAnswerOptionsForQuestions(ctx, []string{questionID})
		if err != nil {
			return err
		}
		opts = grouped[questionID]
		if opts == nil {
			opts = []models.AnswerOption{}
		}
		return nil
	})
	return opts, err
}

// OptionsForQuestions groups answer options by question id. Unknown ids
// are omitted.
func (g *Gateway) OptionsForQuestions(ctx context.Context, questionIDs []string) (map[string][]models.AnswerOption, error) {
	var grouped map[string][]models.AnswerOption
	err := g.read(ctx, func(s scope) error {
		var err error
		grouped, err = s.catalog.GetAnswerOptionsForQuestions(ctx, questionIDs)
		return err
	})
	return grouped, err
}

// ValidateQuestions checks that every name belongs to the survey. Unresolved
// input is reported in the result; only storage failures are errors.
func (g *Gateway) ValidateQuestions(ctx context.Context, surveyID string, names []string) (models.ValidateQuestionsResponse, error) {
	resp := models.ValidateQuestionsResponse{Errors: []string{}}
	err := g.read(ctx, func(s scope) error {
		err := requireSurvey(ctx, s, surveyID)
		if errors.Is(err, ErrSurveyNotFound) {
			resp.Errors = append(resp.Errors, fmt.Sprintf("Survey %s not found", surveyID))
			return nil
		}
		if err != nil {
			return err
		}

		_, missing, err := resolve(ctx, s, surveyID, names)
		if err != nil {
			return err
		}
		for _, name := range missing {
			resp.Errors = append(resp.Errors, fmt.Sprintf("Question %s not found in survey %s", name, surveyID))
		}
		return nil
	})
	if err != nil {
		return models.ValidateQuestionsResponse{}, err
	}

	resp.Valid = len(resp.Errors) == 0
	return resp, nil
}

// GetResponses returns every respondent's answers to the named questions.
// The survey must exist and every name must resolve.
func (g *Gateway) GetResponses(ctx context.Context, surveyID string, names []string) (models.GetResponsesResponse, error) {
	var resp models.GetResponsesResponse
	err := g.read(ctx, func(s scope) error {
		var err error
		resp, err = getResponses(ctx, s, surveyID, names)
		return err
	})
	return resp, err
}

// GetAllResponses is GetResponses over every question of the survey, in
// definition order.
func (g *Gateway) GetAllResponses(ctx context.Context, surveyID string) (models.GetResponsesResponse, error) {
	var resp models.GetResponsesResponse
	err := g.read(ctx, func(s scope) error {
		if err := requireSurvey(ctx, s, surveyID); err != nil {
			return err
		}
		questions, err := s.catalog.GetQuestions(ctx, surveyID)
		if err != nil {
			return err
		}
		if len(questions) == 0 {
			resp = models.GetResponsesResponse{Respondents: []models.RespondentResponseData{}}
			return nil
		}

		names := make([]string, len(questions))
		for i, q := range questions {
			names[i] = q.Name
		}
		resp, err = getResponses(ctx, s, surveyID, names)
		return err
	})
	return resp, err
}

func getResponses(ctx context.Context, s scope, surveyID string, names []string) (models.GetResponsesResponse, error) {
	if err := requireSurvey(ctx, s, surveyID); err != nil {
		return models.GetResponsesResponse{}, err
	}

	requested, missing, err := resolve(ctx, s, surveyID, names)
	if err != nil {
		return models.GetResponsesResponse{}, err
	}
	if len(missing) > 0 {
		return models.GetResponsesResponse{}, &UnresolvedQuestionsError{SurveyID: surveyID, Names: missing}
	}

	return aggregateResponses(ctx, s, surveyID, requested)
}

func requireSurvey(ctx context.Context, s scope, surveyID string) error {
	_, err := s.catalog.GetSurvey(ctx, surveyID)
	if errors.Is(err, catalog.ErrNotFound) {
		return ErrSurveyNotFound
	}
	return err
}

// resolve maps names to questions of the survey in request order and
// returns the names that did not match, in request order.
func resolve(ctx context.Context, s scope, surveyID string, names []string) ([]models.Question, []string, error) {
	questions, err := s.catalog.GetQuestionsByName(ctx, surveyID, names)
	if err != nil {
		return nil, nil, err
	}

	byName := make(map[string]models.Question, len(questions))
	for _, q := range questions {
		if _, dup := byName[q.Name]; !dup {
			byName[q.Name] = q
		}
	}

	requested := make([]models.Question, 0, len(names))
	var missing []string
	for _, name := range names {
		q, ok := byName[name]
		if !ok {
			missing = append(missing, name)
			continue
		}
		requested = append(requested, q)
	}
	return requested, missing, nil
}

func aggregateResponses(ctx context.Context, s scope, surveyID string, requested []models.Question) (models.GetResponsesResponse, error) {
	ids := make([]string, 0, len(requested))
	seen := make(map[string]struct{}, len(requested))
	for _, q := range requested {
		if _, ok := seen[q.ID]; ok {
			continue
		}
		seen[q.ID] = struct{}{}
		ids = append(ids, q.ID)
	}

	var facts aggregate.Facts
	var err error
	if facts.Texts, err = s.facts.TextResponses(ctx, surveyID, ids); err != nil {
		return models.GetResponsesResponse{}, err
	}
	if facts.Choices, err = s.facts.ChoiceResponses(ctx, surveyID, ids); err != nil {
		return models.GetResponsesResponse{}, err
	}

	optionIDs := make([]string, 0, len(facts.Choices))
	for _, cr := range facts.Choices {
		optionIDs = append(optionIDs, cr.AnswerOptionID)
	}
	options, err := s.catalog.GetAnswerOptions(ctx, optionIDs)
	if err != nil {
		return models.GetResponsesResponse{}, err
	}

	result := aggregate.Build(requested, facts, options)

	slog.Debug("responses aggregated",
		"survey_id", surveyID,
		"questions", len(requested),
		"text_rows", len(facts.Texts),
		"choice_rows", len(facts.Choices),
		"respondents", len(result.Respondents),
	)
	if a := result.Anomalies; a.Total() > 0 {
		slog.Warn("skipped anomalous response rows",
			"survey_id", surveyID,
			"orphaned_options", a.OrphanedOptions,
			"duplicate_texts", a.DuplicateTexts,
			"duplicate_singles", a.DuplicateSingles,
			"type_mismatches", a.TypeMismatches,
			"unknown_questions", a.UnknownQuestions,
		)
	}

	return toResponse(result), nil
}

func toResponse(result aggregate.Result) models.GetResponsesResponse {
	respondents := make([]models.RespondentResponseData, 0, len(result.Respondents))
	for _, r := range result.Respondents {
		data := make([]models.ResponseData, 0, len(r.Records))
		for _, rec := range r.Records {
			data = append(data, models.ResponseData{
				QuestionID:   rec.Question.Name,
				QuestionName: rec.Question.Name,
				QuestionType: rec.Question.Type,
				Value:        rec.Value.External(),
			})
		}
		respondents = append(respondents, models.RespondentResponseData{
			RespondentID: r.RespondentID,
			Responses:    data,
		})
	}
	return models.GetResponsesResponse{Respondents: respondents}
}

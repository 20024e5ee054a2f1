// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"

	"github.com/ZhenyaSonic/ORO-SurveyAnalytics/cliparse"
	"github.com/ZhenyaSonic/ORO-SurveyAnalytics/middleware"
	"github.com/ZhenyaSonic/ORO-SurveyAnalytics/models"
	"github.com/ZhenyaSonic/ORO-SurveyAnalytics/query"
)

type SurveyHandler struct {
	db      *sql.DB
	cfg     cliparse.Config
	gateway *query.Gateway
}

func NewSurveyHandler(db *sql.DB, cfg cliparse.Config) *SurveyHandler {
	return &SurveyHandler{db: db, cfg: cfg, gateway: query.NewGateway(db)}
}

// ListSurveys handles GET /api/surveys
func (h *SurveyHandler) ListSurveys(w http.ResponseWriter, r *http.Request) {
	surveys, err := h.gateway.ListSurveys(r.Context())
	if err != nil {
		writeQueryError(w, r, err)
		return
	}
	if surveys == nil {
		surveys = []models.Survey{}
	}
	middleware.JSONResponse(w, http.StatusOK, surveys)
}

// GetQuestions handles GET /api/surveys/{id}/questions
func (h *SurveyHandler) GetQuestions(w http.ResponseWriter, r *http.Request) {
	surveyID := r.PathValue("id")
	if surveyID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "survey_id is required")
		return
	}

	questions, err := h.gateway.SurveyQuestions(r.Context(), surveyID)
	if err != nil {
		writeQueryError(w, r, err)
		return
	}
	if questions == nil {
		questions = []models.Question{}
	}
	middleware.JSONResponse(w, http.StatusOK, questions)
}

// ValidateQuestions handles POST /api/surveys/validate-questions.
// Unknown surveys and names are reported in the body with status 200.
func (h *SurveyHandler) ValidateQuestions(w http.ResponseWriter, r *http.Request) {
	sel, ok := parseSelection(w, r)
	if !ok {
		return
	}

	resp, err := h.gateway.ValidateQuestions(r.Context(), sel.SurveyID, sel.Names())
	if err != nil {
		writeQueryError(w, r, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, resp)
}

// GetResponses handles POST /api/surveys/responses
func (h *SurveyHandler) GetResponses(w http.ResponseWriter, r *http.Request) {
	sel, ok := parseSelection(w, r)
	if !ok {
		return
	}

	resp, err := h.gateway.GetResponses(r.Context(), sel.SurveyID, sel.Names())
	if err != nil {
		writeQueryError(w, r, err)
		return
	}

	slog.Info("responses served",
		"request_id", middleware.RequestID(r.Context()),
		"survey_id", sel.SurveyID,
		"questions", len(sel.Names()),
		"respondents", len(resp.Respondents),
	)
	middleware.JSONResponse(w, http.StatusOK, resp)
}

// GetAllResponses handles GET /api/surveys/{id}/all-responses
func (h *SurveyHandler) GetAllResponses(w http.ResponseWriter, r *http.Request) {
	surveyID := r.PathValue("id")
	if surveyID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "survey_id is required")
		return
	}

	resp, err := h.gateway.GetAllResponses(r.Context(), surveyID)
	if err != nil {
		writeQueryError(w, r, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, resp)
}

func parseSelection(w http.ResponseWriter, r *http.Request) (models.QuestionSelection, bool) {
	var sel models.QuestionSelection
	if err := middleware.ParseJSONBody(r, &sel); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return sel, false
	}
	if sel.SurveyID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "survey_id is required")
		return sel, false
	}
	return sel, true
}

// writeQueryError maps gateway errors to HTTP responses.
func writeQueryError(w http.ResponseWriter, r *http.Request, err error) {
	if ue, ok := query.IsUnresolved(err); ok {
		middleware.ErrorDetailsResponse(w, http.StatusBadRequest, ue.Error(), ue.Names)
		return
	}

	switch {
	case errors.Is(err, query.ErrSurveyNotFound):
		middleware.ErrorResponse(w, http.StatusNotFound, "Survey not found")
	case errors.Is(err, query.ErrQuestionNotFound):
		middleware.ErrorResponse(w, http.StatusNotFound, "Question not found")
	default:
		slog.Error("query failed",
			"request_id", middleware.RequestID(r.Context()),
			"path", r.URL.Path,
			"error", err,
		)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
	}
}

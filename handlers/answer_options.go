// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"net/http"

	"github.com/ZhenyaSonic/ORO-SurveyAnalytics/cliparse"
	"github.com/ZhenyaSonic/ORO-SurveyAnalytics/middleware"
	"github.com/ZhenyaSonic/ORO-SurveyAnalytics/models"
	"github.com/ZhenyaSonic/ORO-SurveyAnalytics/query"
)

type AnswerOptionHandler struct {
	db      *sql.DB
	cfg     cliparse.Config
	gateway *query.Gateway
}

func NewAnswerOptionHandler(db *sql.DB, cfg cliparse.Config) *AnswerOptionHandler {
	return &AnswerOptionHandler{db: db, cfg: cfg, gateway: query.NewGateway(db)}
}

// ForQuestion handles GET /api/answer-options/question/{id}
func (h *AnswerOptionHandler) ForQuestion(w http.ResponseWriter, r *http.Request) {
	questionID := r.PathValue("id")
	if questionID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "question_id is required")
		return
	}

	opts, err := h.gateway.QuestionOptions(r.Context(), questionID)
	if err != nil {
		writeQueryError(w, r, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, opts)
}

// ForQuestions handles GET /api/answer-options/questions/{ids}, where ids is
// a comma-separated list. Questions without options are omitted.
func (h *AnswerOptionHandler) ForQuestions(w http.ResponseWriter, r *http.Request) {
	ids := cliparse.SplitList(r.PathValue("ids"))
	if len(ids) == 0 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "at least one question id is required")
		return
	}

	grouped, err := h.gateway.OptionsForQuestions(r.Context(), ids)
	if err != nil {
		writeQueryError(w, r, err)
		return
	}
	if grouped == nil {
		grouped = map[string][]models.AnswerOption{}
	}
	middleware.JSONResponse(w, http.StatusOK, grouped)
}

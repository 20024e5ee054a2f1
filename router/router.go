// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"database/sql"
	"net/http"

	"github.com/ZhenyaSonic/ORO-SurveyAnalytics/cliparse"
	"github.com/ZhenyaSonic/ORO-SurveyAnalytics/handlers"
	"github.com/ZhenyaSonic/ORO-SurveyAnalytics/middleware"
	"github.com/ZhenyaSonic/ORO-SurveyAnalytics/models"
)

// APIVersion is reported by the root endpoint.
const APIVersion = "1.0.0"

func NewRouter(db *sql.DB, cfg cliparse.Config) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	surveyHandler := handlers.NewSurveyHandler(db, cfg)
	optionHandler := handlers.NewAnswerOptionHandler(db, cfg)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		middleware.JSONResponse(w, http.StatusOK, models.HealthResponse{Status: "healthy"})
	})

	// Surveys and aggregated responses
	mux.HandleFunc("GET /api/surveys", middleware.WithLogging(surveyHandler.ListSurveys))
	mux.HandleFunc("GET /api/surveys/{id}/questions", middleware.WithLogging(surveyHandler.GetQuestions))
	mux.HandleFunc("GET /api/surveys/{id}/all-responses", middleware.WithLogging(surveyHandler.GetAllResponses))
	mux.HandleFunc("POST /api/surveys/validate-questions", middleware.WithLogging(surveyHandler.ValidateQuestions))
	mux.HandleFunc("POST /api/surveys/responses", middleware.WithLogging(surveyHandler.GetResponses))

	// Answer options
	mux.HandleFunc("GET /api/answer-options/question/{id}", middleware.WithLogging(optionHandler.ForQuestion))
	mux.HandleFunc("GET /api/answer-options/questions/{ids}", middleware.WithLogging(optionHandler.ForQuestions))

	// Root endpoint
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		middleware.JSONResponse(w, http.StatusOK, models.RootResponse{
			Message: "Survey Analytics API",
			Version: APIVersion,
		})
	})

	return mux
}

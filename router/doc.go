// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the Survey Analytics API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(db, cfg)

CORS is applied by the caller around the returned mux.

# Endpoints

Service:

	GET /health - {"status":"healthy"}
	GET /       - API name and version

Surveys:

	GET  /api/surveys                     - List surveys
	GET  /api/surveys/{id}/questions      - Questions in definition order
	GET  /api/surveys/{id}/all-responses  - Every respondent, every question
	POST /api/surveys/validate-questions  - Check question names
	POST /api/surveys/responses           - Respondents for selected questions

Answer options:

	GET /api/answer-options/question/{id}   - Options of one question
	GET /api/answer-options/questions/{ids} - Options grouped by question

# Handler Initialization

The router creates handler instances with dependency injection:

	surveyHandler := handlers.NewSurveyHandler(db, cfg)
	optionHandler := handlers.NewAnswerOptionHandler(db, cfg)
*/
package router

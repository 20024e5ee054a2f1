// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the Survey Analytics API.

# Handler Types

Each handler is a struct with database and config dependencies:

  - SurveyHandler: survey listing, question validation, aggregated responses
  - AnswerOptionHandler: answer option lookup

Handlers are created via constructor functions that accept *sql.DB and Config:

	surveyHandler := handlers.NewSurveyHandler(db, cfg)

All reads go through query.Gateway, so every request sees one consistent
snapshot of the survey.

# Response Aggregation

POST /api/surveys/responses takes a survey id and question names:

	{"survey_id": "S1", "question_names": ["Q1", "Q2"]}

and returns one entry per respondent who answered at least one of the
questions. Each entry has exactly one response per requested name, in
request order. Values are a string for TEXT, an integer code for SINGLE
("" when unanswered) and an ordered list of codes for MULTIPLE.

# Error Mapping

	unknown survey or question      → 404
	unresolved question names       → 400, names in "details"
	malformed JSON, missing survey  → 400
	storage failures                → 500 "Database error"

validate-questions never fails on unknown input; it reports problems in
its "errors" list with status 200.
*/
package handlers

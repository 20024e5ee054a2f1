// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
)

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}

	return nil
}

// Statements run one at a time; the DDL sticks to types and clauses shared
// by PostgreSQL and SQLite.
var schema = []string{
	// Surveys
	`CREATE TABLE IF NOT EXISTS surveys (
    id TEXT PRIMARY KEY
)`,

	// Questions
	`CREATE TABLE IF NOT EXISTS questions (
    id TEXT PRIMARY KEY,
    survey_id TEXT NOT NULL REFERENCES surveys(id) ON DELETE CASCADE,
    name TEXT NOT NULL,
    text TEXT NOT NULL DEFAULT '',
    type INTEGER NOT NULL CHECK (type IN (1, 2, 3)),
    position INTEGER NOT NULL DEFAULT 0
)`,
	`CREATE INDEX IF NOT EXISTS idx_questions_survey_name ON questions(survey_id, name)`,

	// Answer options
	`CREATE TABLE IF NOT EXISTS answer_options (
    id TEXT PRIMARY KEY,
    question_id TEXT NOT NULL REFERENCES questions(id) ON DELETE CASCADE,
    code INTEGER NOT NULL,
    label TEXT NOT NULL DEFAULT ''
)`,
	`CREATE INDEX IF NOT EXISTS idx_answer_options_question_id ON answer_options(question_id)`,

	// Respondents
	`CREATE TABLE IF NOT EXISTS respondents (
    id TEXT PRIMARY KEY
)`,

	// Text responses: one per (respondent, question, survey)
	`CREATE TABLE IF NOT EXISTS text_responses (
    respondent_id TEXT NOT NULL REFERENCES respondents(id) ON DELETE CASCADE,
    question_id TEXT NOT NULL REFERENCES questions(id) ON DELETE CASCADE,
    survey_id TEXT NOT NULL REFERENCES surveys(id) ON DELETE CASCADE,
    text TEXT NOT NULL,
    PRIMARY KEY (respondent_id, question_id, survey_id)
)`,
	`CREATE INDEX IF NOT EXISTS idx_text_responses_survey_question ON text_responses(survey_id, question_id)`,

	// Choice responses: one per selected option.
	// answer_option_id is not a foreign key; readers skip orphaned options.
	`CREATE TABLE IF NOT EXISTS choice_responses (
    respondent_id TEXT NOT NULL REFERENCES respondents(id) ON DELETE CASCADE,
    question_id TEXT NOT NULL REFERENCES questions(id) ON DELETE CASCADE,
    survey_id TEXT NOT NULL REFERENCES surveys(id) ON DELETE CASCADE,
    answer_option_id TEXT NOT NULL,
    response_order INTEGER NOT NULL DEFAULT 1,
    PRIMARY KEY (respondent_id, question_id, survey_id, answer_option_id)
)`,
	`CREATE INDEX IF NOT EXISTS idx_choice_responses_survey_question ON choice_responses(survey_id, question_id)`,
}

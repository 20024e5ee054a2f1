// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db handles database connections and schema creation.

# Connecting

Open selects the driver from the database type and applies pool settings:

	conn, err := db.Open(db.TypePostgres, "postgres://...", db.DefaultPoolConfig())

PostgreSQL uses github.com/lib/pq. SQLite uses modernc.org/sqlite with
foreign keys enabled. InferType picks postgres for postgres:// URLs and
sqlite otherwise.

# Schema Creation

CreateSchema initializes all required tables:

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.
The DDL is shared by PostgreSQL and SQLite.

# Tables

  - surveys: survey identifiers
  - questions: name, text, type (1=TEXT, 2=SINGLE, 3=MULTIPLE), position
  - answer_options: integer code and label per choice question
  - respondents: respondent identifiers
  - text_responses: one free-text answer per respondent/question/survey
  - choice_responses: one row per selected option, with response_order

# Relationships

	surveys 1──* questions 1──* answer_options
	respondents 1──* text_responses
	respondents 1──* choice_responses

Foreign keys use ON DELETE CASCADE. choice_responses.answer_option_id is
not a foreign key so orphaned option references can be stored and skipped
at read time.

# Query Helpers

Querier and Execer abstract over *sql.DB and *sql.Tx. Placeholders and
Chunks build bounded IN (...) lists with $N parameters, which both drivers
accept.
*/
package db

// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the Survey Analytics API server.

The server answers questions about ingested survey data: which surveys
exist, what they ask, and what each respondent answered to a chosen set of
questions, with free text, single-choice codes and ordered multiple-choice
code lists merged into one record per question.

# Starting the Server

The server requires environment variables or CLI flags for configuration:

	DATABASE_URL=postgres://... go run .

Or with flags:

	go run . -p 8000 -d "file:survey.db"

# Configuration

Required settings:

  - DATABASE_URL (-d): PostgreSQL URL or SQLite path

Optional settings:

  - PORT (-p): Server port (default: 8000)
  - DATABASE_TYPE (-t): sqlite or postgres (default: inferred)
  - CORS_ORIGINS (-cors-origins): allowed browser origins
  - LOG_LEVEL, LOG_FORMAT: logging verbosity and json/text/auto output

Data is loaded with the survey-loader command (cmd/survey-loader).

# Architecture

  - handlers: HTTP request handlers (surveys, answer options)
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, request logging, JSON helpers
  - query: Read transactions, name resolution, error taxonomy
  - aggregate: Per-respondent response aggregation
  - catalog, responses: Storage access for definitions and answers
  - ingest: XML definitions and response sheets
  - models: Domain and request/response types
  - db: Schema creation and connections
  - cliparse, logging: Configuration and log setup

See package documentation for each component.
*/
package main

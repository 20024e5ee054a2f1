// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package responses reads and writes raw answer facts.

Two storage shapes exist: text_responses holds one free-text row per
respondent and question, choice_responses holds one row per selected
option with its 1-based response order.

Reader fetches both shapes for a survey and a set of question ids.
Writer inserts facts with ON CONFLICT DO NOTHING so reloading the same
input never duplicates rows.
*/
package responses

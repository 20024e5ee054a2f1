// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package aggregate rebuilds per-respondent answer vectors from raw facts.

# Algorithm

Build runs four passes over already-resolved questions:

  1. Text merge: the first text row per respondent and question wins.
  2. Choice merge: SINGLE questions take the option code directly, last
     write wins. MULTIPLE questions buffer (response_order, code) pairs.
  3. Finalize: each buffer goes through OrderCodes, which sorts by order
     and drops repeated codes after their first position.
  4. Emit: one record per requested question for every respondent with at
     least one fact row, in the requested order. Unanswered questions get
     "" (TEXT, SINGLE) or [] (MULTIPLE).

Orphaned option references, duplicate rows and type mismatches are skipped
and counted in Anomalies. Build never fails.

# Values

Value is a tagged variant. External and MarshalJSON produce the API shape:

	TEXT     → "free text"
	SINGLE   → 10, or "" when unanswered
	MULTIPLE → [1, 2]
*/
package aggregate

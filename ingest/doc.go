// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package ingest loads survey definitions and respondent answers.

# Survey Definitions

Each survey is one XML file named after the survey id:

	<survey>
	  <questions>
	    <question id="q1" type="1"><name>Q1</name><text>Comments</text></question>
	    <question id="q2" type="2"><name>Q2</name><text>Recommend?</text></question>
	  </questions>
	  <categories id="q2">
	    <category id="q2-yes" code="1">Yes</category>
	  </categories>
	</survey>

Type 1 is TEXT, 2 SINGLE and 3 MULTIPLE; anything else is read as TEXT.
ApplyDefinition upserts a parsed definition, so reloading a changed file
updates names, texts, types and option labels in place.

# Response Sheets

OpenSheet reads .csv, .csv.gz and .xlsx files with the columns

	survey, respondent, question, type, text, response, order

TEXT rows carry the answer in text. SINGLE and MULTIPLE rows carry the
selected answer option id in response and its position in order
(default 1). Blank cells and "nan" count as empty.

# Loading

Loader.LoadResponses writes rows in batched transactions. Inserts are
idempotent, so loading the same sheet twice adds nothing. A batch that
fails is rolled back and loading continues with the next row. Respondents
are created on first sight, with an LRU cache keeping repeat lookups off
the database.

	loader, err := ingest.NewLoader(conn, ingest.Options{BatchSize: 5000})
	report, err := loader.LoadAll(ctx, "input/xml", "input/responses.xlsx")
*/
package ingest

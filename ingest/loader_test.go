// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ingest

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZhenyaSonic/ORO-SurveyAnalytics/query"
	"github.com/ZhenyaSonic/ORO-SurveyAnalytics/testutil"
)

const responsesCSV = `survey,respondent,question,type,text,response,order
S1,R1,q1,1,  hello  ,,
S1,R1,q2,2,,q2-yes,
S1,R2,q3,3,,q3-tv,2
S1,R2,q3,3,,q3-web,1
S1,R2,q1,1,nan,,
S1,R3,q2,2,,,
S1,R3,q3,3,,q3-radio,x
,R4,q1,1,orphan,,
`

func seedDefinition(t *testing.T, conn *sql.DB) {
	t.Helper()
	def, err := ParseDefinition(strings.NewReader(surveyXML), "S1")
	require.NoError(t, err)
	_, err = ApplyDefinition(context.Background(), conn, def)
	require.NoError(t, err)
}

func csvSource(t *testing.T, data string) RowSource {
	t.Helper()
	src, err := NewCSVSource(strings.NewReader(data))
	require.NoError(t, err)
	return src
}

func countRows(t *testing.T, conn *sql.DB, table string) int {
	t.Helper()
	var n int
	require.NoError(t, conn.QueryRow(`SELECT COUNT(*) FROM `+table).Scan(&n))
	return n
}

func TestLoadResponses(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	seedDefinition(t, conn)

	loader, err := NewLoader(conn, Options{})
	require.NoError(t, err)

	summary, err := loader.LoadResponses(context.Background(), csvSource(t, responsesCSV))
	require.NoError(t, err)

	assert.Equal(t, loader.RunID(), summary.RunID)
	assert.Len(t, summary.RunID, 26)
	assert.Equal(t, 8, summary.Rows)
	// nan text, empty response, bad order, missing survey
	assert.Equal(t, 4, summary.SkippedRows)
	assert.Equal(t, 3, summary.Respondents)
	assert.Equal(t, 1, summary.TextResponses)
	assert.Equal(t, 3, summary.ChoiceResponses)
	assert.Equal(t, 1, summary.Batches)
	assert.Zero(t, summary.FailedBatches)

	var text string
	require.NoError(t, conn.QueryRow(`SELECT text FROM text_responses WHERE respondent_id = 'R1'`).Scan(&text))
	assert.Equal(t, "hello", text)

	var order int
	require.NoError(t, conn.QueryRow(`SELECT response_order FROM choice_responses WHERE answer_option_id = 'q2-yes'`).Scan(&order))
	assert.Equal(t, 1, order, "missing order defaults to 1")
}

func TestLoadResponses_Idempotent(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	seedDefinition(t, conn)
	ctx := context.Background()

	first, err := NewLoader(conn, Options{})
	require.NoError(t, err)
	_, err = first.LoadResponses(ctx, csvSource(t, responsesCSV))
	require.NoError(t, err)

	before := countRows(t, conn, "text_responses") + countRows(t, conn, "choice_responses")

	// A fresh loader has a cold respondent cache
	second, err := NewLoader(conn, Options{})
	require.NoError(t, err)
	summary, err := second.LoadResponses(ctx, csvSource(t, responsesCSV))
	require.NoError(t, err)

	assert.NotEqual(t, first.RunID(), second.RunID())
	assert.Zero(t, summary.Respondents)
	assert.Zero(t, summary.TextResponses)
	assert.Zero(t, summary.ChoiceResponses)
	assert.Equal(t, before, countRows(t, conn, "text_responses")+countRows(t, conn, "choice_responses"))
	assert.Equal(t, 3, countRows(t, conn, "respondents"))
}

func TestLoadResponses_FailedBatchRolledBack(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	seedDefinition(t, conn)

	// Second row references a question that does not exist, which fails the
	// first batch of two rows
	data := `survey,respondent,question,type,text,response,order
S1,R1,q1,1,lost,,
S1,R1,missing,1,boom,,
S1,R2,q1,1,kept,,
S1,R2,q2,2,,q2-no,1
S1,R3,q1,1,tail,,
`
	loader, err := NewLoader(conn, Options{BatchSize: 2})
	require.NoError(t, err)

	summary, err := loader.LoadResponses(context.Background(), csvSource(t, data))
	require.NoError(t, err)

	assert.Equal(t, 5, summary.Rows)
	assert.Equal(t, 3, summary.Batches)
	assert.Equal(t, 1, summary.FailedBatches)
	assert.Equal(t, 2, summary.LostRows)
	assert.Equal(t, 2, summary.TextResponses)
	assert.Equal(t, 1, summary.ChoiceResponses)
	assert.Equal(t, 2, summary.Respondents)

	assert.Equal(t, 2, countRows(t, conn, "respondents"), "R1 was rolled back with its batch")
	assert.Equal(t, 2, countRows(t, conn, "text_responses"))

	// R1 was evicted from the cache, so a later batch recreates it
	summary, err = loader.LoadResponses(context.Background(), csvSource(t,
		"survey,respondent,question,type,text\nS1,R1,q1,1,again\n"))
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Respondents)
	assert.Equal(t, 1, summary.TextResponses)
}

func TestLoadResponses_ContextCanceled(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	seedDefinition(t, conn)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	loader, err := NewLoader(conn, Options{})
	require.NoError(t, err)
	_, err = loader.LoadResponses(ctx, csvSource(t, responsesCSV))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, countRows(t, conn, "respondents"))
}

func TestLoadAll_EndToEnd(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	dir := t.TempDir()
	xmlDir := filepath.Join(dir, "xml")
	require.NoError(t, os.Mkdir(xmlDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(xmlDir, "S1.xml"), []byte(surveyXML), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(xmlDir, "S0.xml"),
		[]byte(`<s><questions><question id="s0-q1" type="1"><name>Q1</name></question></questions></s>`), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(xmlDir, "notes.txt"), []byte("ignored"), 0o600))
	sheet := filepath.Join(dir, "responses.csv")
	require.NoError(t, os.WriteFile(sheet, []byte(responsesCSV), 0o600))

	loader, err := NewLoader(conn, Options{ParseWorkers: 2})
	require.NoError(t, err)

	report, err := loader.LoadAll(context.Background(), xmlDir, sheet)
	require.NoError(t, err)

	require.Len(t, report.Definitions, 2)
	assert.Equal(t, "S0", report.Definitions[0].SurveyID)
	assert.Equal(t, "S1", report.Definitions[1].SurveyID)
	assert.Equal(t, 3, report.Responses.ChoiceResponses)

	gw := query.NewGateway(conn)
	resp, err := gw.GetResponses(context.Background(), "S1", []string{"Q3", "Q2", "Q1"})
	require.NoError(t, err)
	// R3 only has skipped rows
	require.Len(t, resp.Respondents, 2)

	r2 := resp.Respondents[1]
	assert.Equal(t, "R2", r2.RespondentID)
	assert.Equal(t, []int{10, 20}, r2.Responses[0].Value)
	assert.Equal(t, "", r2.Responses[1].Value)
	assert.Equal(t, "", r2.Responses[2].Value)

	r1 := resp.Respondents[0]
	assert.Equal(t, []int{}, r1.Responses[0].Value)
	assert.Equal(t, 1, r1.Responses[1].Value)
	assert.Equal(t, "hello", r1.Responses[2].Value)
}

func TestLoadAll_DefinitionsOnly(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	xmlDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(xmlDir, "S1.xml"), []byte(surveyXML), 0o600))

	loader, err := NewLoader(conn, Options{})
	require.NoError(t, err)

	report, err := loader.LoadAll(context.Background(), xmlDir, "")
	require.NoError(t, err)
	require.Len(t, report.Definitions, 1)
	assert.Zero(t, report.Responses.Rows)
}

func TestLoadAll_BadDefinitionStopsRun(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	xmlDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(xmlDir, "S1.xml"), []byte(surveyXML), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(xmlDir, "S2.xml"), []byte(`<questions>`), 0o600))

	loader, err := NewLoader(conn, Options{})
	require.NoError(t, err)

	_, err = loader.LoadAll(context.Background(), xmlDir, "")
	assert.ErrorContains(t, err, "S2.xml")
	assert.Zero(t, countRows(t, conn, "surveys"), "nothing is applied when parsing fails")
}

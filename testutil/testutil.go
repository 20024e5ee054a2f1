// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/ZhenyaSonic/ORO-SurveyAnalytics/cliparse"
	"github.com/ZhenyaSonic/ORO-SurveyAnalytics/db"
	"github.com/ZhenyaSonic/ORO-SurveyAnalytics/models"
)

// SetupTestDB creates a fresh SQLite database file with the full schema.
// The database is closed when the test ends.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "survey_test.db")
	conn, err := db.Open(db.TypeSQLite, "file:"+path, db.PoolConfig{MaxOpen: 4})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := db.CreateSchema(conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:         8000,
		DatabaseURL:  "file::memory:",
		DatabaseType: db.TypeSQLite,
		CORSOrigins:  []string{"http://localhost:5173"},
		LogLevel:     "info",
		LogFormat:    "text",
	}
}

// CreateTestSurvey inserts a survey row
func CreateTestSurvey(t *testing.T, conn *sql.DB, surveyID string) {
	t.Helper()

	if _, err := conn.Exec(`INSERT INTO surveys (id) VALUES ($1)`, surveyID); err != nil {
		t.Fatalf("Failed to create test survey: %v", err)
	}
}

// AddTestQuestion inserts a question; position follows insertion order
func AddTestQuestion(t *testing.T, conn *sql.DB, surveyID, questionID, name string, qt models.QuestionType) models.Question {
	t.Helper()

	var position int
	if err := conn.QueryRow(`SELECT COUNT(*) FROM questions WHERE survey_id = $1`, surveyID).Scan(&position); err != nil {
		t.Fatalf("Failed to count questions: %v", err)
	}

	q := models.Question{
		ID:       questionID,
		SurveyID: surveyID,
		Name:     name,
		Text:     name + " text",
		Type:     qt,
		Position: position,
	}
	_, err := conn.Exec(`
		INSERT INTO questions (id, survey_id, name, text, type, position)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, q.ID, q.SurveyID, q.Name, q.Text, int(q.Type), q.Position)
	if err != nil {
		t.Fatalf("Failed to create test question: %v", err)
	}

	return q
}

// AddTestOption inserts an answer option for a choice question
func AddTestOption(t *testing.T, conn *sql.DB, questionID, optionID string, code int, label string) {
	t.Helper()

	_, err := conn.Exec(`
		INSERT INTO answer_options (id, question_id, code, label)
		VALUES ($1, $2, $3, $4)
	`, optionID, questionID, code, label)
	if err != nil {
		t.Fatalf("Failed to create test option: %v", err)
	}
}

// AddTestRespondent inserts a respondent if missing
func AddTestRespondent(t *testing.T, conn *sql.DB, respondentID string) {
	t.Helper()

	if _, err := conn.Exec(`INSERT INTO respondents (id) VALUES ($1) ON CONFLICT DO NOTHING`, respondentID); err != nil {
		t.Fatalf("Failed to create test respondent: %v", err)
	}
}

// AddTestText stores a free-text answer, creating the respondent as needed
func AddTestText(t *testing.T, conn *sql.DB, surveyID, respondentID, questionID, text string) {
	t.Helper()

	AddTestRespondent(t, conn, respondentID)
	_, err := conn.Exec(`
		INSERT INTO text_responses (respondent_id, question_id, survey_id, text)
		VALUES ($1, $2, $3, $4)
	`, respondentID, questionID, surveyID, text)
	if err != nil {
		t.Fatalf("Failed to create test text response: %v", err)
	}
}

// AddTestChoice stores one selected option, creating the respondent as needed
func AddTestChoice(t *testing.T, conn *sql.DB, surveyID, respondentID, questionID, optionID string, order int) {
	t.Helper()

	AddTestRespondent(t, conn, respondentID)
	_, err := conn.Exec(`
		INSERT INTO choice_responses (respondent_id, question_id, survey_id, answer_option_id, response_order)
		VALUES ($1, $2, $3, $4, $5)
	`, respondentID, questionID, surveyID, optionID, order)
	if err != nil {
		t.Fatalf("Failed to create test choice response: %v", err)
	}
}

// SeedScenario builds survey S1 with a TEXT, a SINGLE and a MULTIPLE question:
//
//	Q1 (TEXT)     id s1-q1
//	Q2 (SINGLE)   id s1-q2, options yes=10, no=20
//	Q3 (MULTIPLE) id s1-q3, options m1=1, m2=2, m3=3
func SeedScenario(t *testing.T, conn *sql.DB) {
	t.Helper()

	CreateTestSurvey(t, conn, "S1")
	AddTestQuestion(t, conn, "S1", "s1-q1", "Q1", models.QuestionText)
	AddTestQuestion(t, conn, "S1", "s1-q2", "Q2", models.QuestionSingle)
	AddTestQuestion(t, conn, "S1", "s1-q3", "Q3", models.QuestionMultiple)
	AddTestOption(t, conn, "s1-q2", "yes", 10, "Yes")
	AddTestOption(t, conn, "s1-q2", "no", 20, "No")
	AddTestOption(t, conn, "s1-q3", "m1", 1, "One")
	AddTestOption(t, conn, "s1-q3", "m2", 2, "Two")
	AddTestOption(t, conn, "s1-q3", "m3", 3, "Three")
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}

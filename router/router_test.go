// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ZhenyaSonic/ORO-SurveyAnalytics/models"
	"github.com/ZhenyaSonic/ORO-SurveyAnalytics/testutil"
)

func TestHealthEndpoint(t *testing.T) {
	db := testutil.SetupTestDB(t)

	cfg := testutil.GetTestConfig()
	mux := NewRouter(db, cfg)

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()

	mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	expected := `{"status":"healthy"}`
	if strings.TrimSpace(w.Body.String()) != expected {
		t.Errorf("Expected body '%s', got '%s'", expected, w.Body.String())
	}
}

func TestRootEndpoint(t *testing.T) {
	db := testutil.SetupTestDB(t)

	cfg := testutil.GetTestConfig()
	mux := NewRouter(db, cfg)

	req := httptest.NewRequest("GET", "/", nil)
	w := httptest.NewRecorder()

	mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	var resp models.RootResponse
	testutil.AssertJSON(t, w, &resp)
	if resp.Message != "Survey Analytics API" || resp.Version != "1.0.0" {
		t.Errorf("Unexpected root response: %+v", resp)
	}
}

func TestUnknownPath(t *testing.T) {
	db := testutil.SetupTestDB(t)
	mux := NewRouter(db, testutil.GetTestConfig())

	req := httptest.NewRequest("GET", "/does-not-exist", nil)
	w := httptest.NewRecorder()

	mux.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for unknown path, got %d", w.Code)
	}
}

func TestRouteExistence(t *testing.T) {
	db := testutil.SetupTestDB(t)

	cfg := testutil.GetTestConfig()
	mux := NewRouter(db, cfg)

	// 400 and 404 are valid handler responses here; only 405 means no route
	testCases := []struct {
		method string
		path   string
	}{
		{"GET", "/health"},
		{"GET", "/"},
		{"GET", "/api/surveys"},
		{"GET", "/api/surveys/S1/questions"},
		{"GET", "/api/surveys/S1/all-responses"},
		{"POST", "/api/surveys/validate-questions"},
		{"POST", "/api/surveys/responses"},
		{"GET", "/api/answer-options/question/q1"},
		{"GET", "/api/answer-options/questions/q1,q2"},
	}

	for _, tc := range testCases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, strings.NewReader("{}"))
			w := httptest.NewRecorder()

			mux.ServeHTTP(w, req)

			if w.Code == http.StatusMethodNotAllowed {
				t.Errorf("Route %s %s returned 405, expected route handler to exist", tc.method, tc.path)
			}
		})
	}
}

func TestSpecificMethodRouting(t *testing.T) {
	db := testutil.SetupTestDB(t)

	cfg := testutil.GetTestConfig()
	mux := NewRouter(db, cfg)

	testCases := []struct {
		name           string
		method         string
		path           string
		expectedStatus int
	}{
		{"POST to health endpoint", "POST", "/health", http.StatusMethodNotAllowed},
		{"GET to responses endpoint", "GET", "/api/surveys/responses", http.StatusMethodNotAllowed},
		{"DELETE a survey", "DELETE", "/api/surveys/S1/questions", http.StatusMethodNotAllowed},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, nil)
			w := httptest.NewRecorder()

			mux.ServeHTTP(w, req)

			if w.Code != tc.expectedStatus {
				t.Errorf("Expected %d for %s %s, got %d", tc.expectedStatus, tc.method, tc.path, w.Code)
			}
		})
	}
}

func TestPathParameterExtraction(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SeedScenario(t, db)
	testutil.AddTestText(t, db, "S1", "R1", "s1-q1", "hello")

	mux := NewRouter(db, testutil.GetTestConfig())

	t.Run("survey id", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/surveys/S1/all-responses", nil)
		w := httptest.NewRecorder()

		mux.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d. Body: %s", w.Code, w.Body.String())
		}
		var resp models.GetResponsesResponse
		testutil.AssertJSON(t, w, &resp)
		if len(resp.Respondents) != 1 || resp.Respondents[0].RespondentID != "R1" {
			t.Errorf("Expected R1 only, got %+v", resp.Respondents)
		}
	})

	t.Run("question id list", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/answer-options/questions/s1-q2,s1-q3", nil)
		w := httptest.NewRecorder()

		mux.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d. Body: %s", w.Code, w.Body.String())
		}
		var grouped map[string][]models.AnswerOption
		testutil.AssertJSON(t, w, &grouped)
		if len(grouped) != 2 {
			t.Errorf("Expected 2 groups, got %d", len(grouped))
		}
	})
}

func TestResponsesEndToEnd(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SeedScenario(t, db)
	testutil.AddTestChoice(t, db, "S1", "R2", "s1-q3", "m2", 2)
	testutil.AddTestChoice(t, db, "S1", "R2", "s1-q3", "m1", 1)
	testutil.AddTestChoice(t, db, "S1", "R2", "s1-q3", "m2", 3)

	mux := NewRouter(db, testutil.GetTestConfig())

	body, _ := json.Marshal(models.QuestionSelection{SurveyID: "S1", QuestionNames: []string{"Q3"}})
	req := httptest.NewRequest("POST", "/api/surveys/responses", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	mux.ServeHTTP(w, req)

	testutil.AssertStatus(t, w, http.StatusOK)
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("Expected X-Request-ID on logged routes")
	}

	var resp models.GetResponsesResponse
	testutil.AssertJSON(t, w, &resp)
	if len(resp.Respondents) != 1 {
		t.Fatalf("Expected 1 respondent, got %d", len(resp.Respondents))
	}
	got, ok := resp.Respondents[0].Responses[0].Value.([]interface{})
	if !ok || len(got) != 2 || got[0] != float64(1) || got[1] != float64(2) {
		t.Errorf("Expected [1 2], got %v", resp.Respondents[0].Responses[0].Value)
	}
}

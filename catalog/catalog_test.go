// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package catalog

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZhenyaSonic/ORO-SurveyAnalytics/db"
	"github.com/ZhenyaSonic/ORO-SurveyAnalytics/models"
	"github.com/ZhenyaSonic/ORO-SurveyAnalytics/testutil"
)

func TestGetSurvey(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	testutil.SeedScenario(t, conn)
	c := New(conn)

	s, err := c.GetSurvey(context.Background(), "S1")
	require.NoError(t, err)
	assert.Equal(t, models.Survey{ID: "S1"}, s)

	_, err = c.GetSurvey(context.Background(), "S2")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListSurveys_Empty(t *testing.T) {
	conn := testutil.SetupTestDB(t)

	surveys, err := New(conn).ListSurveys(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, surveys)
	assert.Empty(t, surveys)
}

func TestGetQuestionsByName(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	testutil.SeedScenario(t, conn)
	testutil.CreateTestSurvey(t, conn, "S2")
	testutil.AddTestQuestion(t, conn, "S2", "s2-q1", "Q1", models.QuestionText)
	c := New(conn)

	questions, err := c.GetQuestionsByName(context.Background(), "S1", []string{"Q3", "Q1", "missing", "Q1"})
	require.NoError(t, err)
	require.Len(t, questions, 2)
	// Definition order, scoped to the survey
	assert.Equal(t, "s1-q1", questions[0].ID)
	assert.Equal(t, "s1-q3", questions[1].ID)

	questions, err = c.GetQuestionsByName(context.Background(), "S1", nil)
	require.NoError(t, err)
	assert.Empty(t, questions)
}

func TestGetQuestionsByName_ManyNames(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	testutil.CreateTestSurvey(t, conn, "BIG")

	names := make([]string, 0, db.MaxInArgs+10)
	for i := 0; i < db.MaxInArgs+10; i++ {
		name := fmt.Sprintf("Q%d", i)
		names = append(names, name)
		if i%100 == 0 {
			testutil.AddTestQuestion(t, conn, "BIG", fmt.Sprintf("big-%d", i), name, models.QuestionText)
		}
	}

	questions, err := New(conn).GetQuestionsByName(context.Background(), "BIG", names)
	require.NoError(t, err)
	assert.Len(t, questions, (db.MaxInArgs+10+99)/100)
}

func TestGetQuestionAndOption(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	testutil.SeedScenario(t, conn)
	c := New(conn)

	q, err := c.GetQuestion(context.Background(), "s1-q2")
	require.NoError(t, err)
	assert.Equal(t, "Q2", q.Name)
	assert.Equal(t, models.QuestionSingle, q.Type)
	assert.Equal(t, 1, q.Position)

	_, err = c.GetQuestion(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)

	o, err := c.GetAnswerOption(context.Background(), "no")
	require.NoError(t, err)
	assert.Equal(t, models.AnswerOption{ID: "no", QuestionID: "s1-q2", Code: 20, Label: "No"}, o)

	_, err = c.GetAnswerOption(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetAnswerOptions(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	testutil.SeedScenario(t, conn)

	opts, err := New(conn).GetAnswerOptions(context.Background(), []string{"m2", "yes", "m2", "gone"})
	require.NoError(t, err)
	assert.Len(t, opts, 2)

	o, ok := opts.Lookup("m2")
	assert.True(t, ok)
	assert.Equal(t, 2, o.Code)

	_, ok = opts.Lookup("gone")
	assert.False(t, ok)
}

func TestGetAnswerOptionsForQuestions(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	testutil.SeedScenario(t, conn)

	grouped, err := New(conn).GetAnswerOptionsForQuestions(context.Background(), []string{"s1-q3", "s1-q1", "s1-q2"})
	require.NoError(t, err)

	assert.Len(t, grouped, 2)
	assert.NotContains(t, grouped, "s1-q1")
	require.Len(t, grouped["s1-q3"], 3)
	assert.Equal(t, []int{1, 2, 3}, []int{grouped["s1-q3"][0].Code, grouped["s1-q3"][1].Code, grouped["s1-q3"][2].Code})
	assert.Equal(t, "yes", grouped["s1-q2"][0].ID)
}

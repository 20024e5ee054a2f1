// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ingest

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZhenyaSonic/ORO-SurveyAnalytics/catalog"
	"github.com/ZhenyaSonic/ORO-SurveyAnalytics/models"
	"github.com/ZhenyaSonic/ORO-SurveyAnalytics/testutil"
)

const surveyXML = `<?xml version="1.0" encoding="UTF-8"?>
<survey>
  <meta><question id="ignored" type="1"><name>NotAQuestion</name></question></meta>
  <questions>
    <question id="q1" type="1">
      <name>Q1</name>
      <text>Anything else?</text>
    </question>
    <question id="q2" type="2">
      <name>Q2</name>
      <text>Would you recommend us?</text>
    </question>
    <question id="q3" type="3">
      <name>Q3</name>
      <text>Which channels?</text>
    </question>
    <question id="q4" type="9">
      <name>Q4</name>
      <text>Odd type</text>
    </question>
  </questions>
  <lists>
    <categories id="q2">
      <category id="q2-yes" code="1">Yes</category>
      <category id="q2-no" code="2"> No </category>
    </categories>
  </lists>
  <categories id="q3">
    <category id="q3-web" code="10">Web</category>
    <category id="q3-tv" code="20">TV</category>
    <category id="q3-radio" code="30">Radio</category>
  </categories>
  <categories id="q1">
    <category id="q1-x" code="1">Text questions carry no options</category>
  </categories>
</survey>`

func TestParseDefinition(t *testing.T) {
	def, err := ParseDefinition(strings.NewReader(surveyXML), "S1")
	require.NoError(t, err)

	assert.Equal(t, "S1", def.SurveyID)
	require.Len(t, def.Questions, 4)

	q1 := def.Questions[0]
	assert.Equal(t, "q1", q1.ID)
	assert.Equal(t, "Q1", q1.Name)
	assert.Equal(t, "Anything else?", q1.Text)
	assert.Equal(t, models.QuestionText, q1.Type)
	assert.Equal(t, 0, q1.Position)
	assert.Empty(t, q1.Options)

	q2 := def.Questions[1]
	assert.Equal(t, models.QuestionSingle, q2.Type)
	assert.Equal(t, []models.AnswerOption{
		{ID: "q2-yes", QuestionID: "q2", Code: 1, Label: "Yes"},
		{ID: "q2-no", QuestionID: "q2", Code: 2, Label: "No"},
	}, q2.Options)

	q3 := def.Questions[2]
	assert.Equal(t, models.QuestionMultiple, q3.Type)
	assert.Len(t, q3.Options, 3)
	assert.Equal(t, 2, q3.Position)

	q4 := def.Questions[3]
	assert.Equal(t, models.QuestionText, q4.Type, "unknown types fall back to TEXT")
}

func TestParseDefinition_Errors(t *testing.T) {
	tests := []struct {
		name string
		xml  string
	}{
		{"malformed xml", `<survey><questions>`},
		{"non-numeric type", `<questions><question id="q1" type="x"><name>Q1</name></question></questions>`},
		{"missing id", `<questions><question type="1"><name>Q1</name></question></questions>`},
		{"non-numeric code", `<r><questions><question id="q1" type="2"><name>Q1</name></question></questions>` +
			`<categories id="q1"><category id="o" code="one">One</category></categories></r>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseDefinition(strings.NewReader(tt.xml), "S1")
			assert.Error(t, err)
		})
	}
}

func TestApplyDefinition_Upserts(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	ctx := context.Background()

	def, err := ParseDefinition(strings.NewReader(surveyXML), "S1")
	require.NoError(t, err)

	summary, err := ApplyDefinition(ctx, conn, def)
	require.NoError(t, err)
	assert.Equal(t, DefinitionSummary{SurveyID: "S1", Questions: 4, Options: 5}, summary)

	// Reload with a renamed question and relabelled option
	def.Questions[1].Name = "Recommend"
	def.Questions[1].Options[0].Label = "Absolutely"
	_, err = ApplyDefinition(ctx, conn, def)
	require.NoError(t, err)

	cat := catalog.New(conn)
	questions, err := cat.GetQuestions(ctx, "S1")
	require.NoError(t, err)
	require.Len(t, questions, 4)
	assert.Equal(t, "Recommend", questions[1].Name)

	opt, err := cat.GetAnswerOption(ctx, "q2-yes")
	require.NoError(t, err)
	assert.Equal(t, "Absolutely", opt.Label)

	var count int
	require.NoError(t, conn.QueryRow(`SELECT COUNT(*) FROM answer_options`).Scan(&count))
	assert.Equal(t, 5, count)
}

func TestParseInt(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"3", 3, false},
		{" 2 ", 2, false},
		{"2.0", 2, false},
		{"2.5", 0, true},
		{"nan", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseInt(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ingest

import (
	"context"
	"database/sql"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ZhenyaSonic/ORO-SurveyAnalytics/models"
)

// Definition is one survey's questions and answer options as read from XML.
type Definition struct {
	SurveyID  string
	Questions []DefinedQuestion
}

// DefinedQuestion is a question with its options. Only SINGLE and MULTIPLE
// questions carry options.
type DefinedQuestion struct {
	models.Question
	Options []models.AnswerOption
}

// DefinitionSummary reports what ApplyDefinition wrote.
type DefinitionSummary struct {
	SurveyID  string
	Questions int
	Options   int
}

type xmlQuestion struct {
	ID   string `xml:"id,attr"`
	Type string `xml:"type,attr"`
	Name string `xml:"name"`
	Text string `xml:"text"`
}

type xmlCategories struct {
	ID         string        `xml:"id,attr"`
	Categories []xmlCategory `xml:"category"`
}

type xmlCategory struct {
	ID    string `xml:"id,attr"`
	Code  string `xml:"code,attr"`
	Label string `xml:",chardata"`
}

// ParseDefinitionFile parses a survey XML file. The survey id is the file
// name without its extension.
func ParseDefinitionFile(path string) (Definition, error) {
	f, err := os.Open(path)
	if err != nil {
		return Definition{}, fmt.Errorf("open definition: %w", err)
	}
	defer f.Close()

	surveyID := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	def, err := ParseDefinition(f, surveyID)
	if err != nil {
		return Definition{}, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return def, nil
}

// ParseDefinition reads <question> elements nested in a <questions> element
// and <categories id="question id"> blocks from anywhere in the document.
// Unknown question types become TEXT.
func ParseDefinition(r io.Reader, surveyID string) (Definition, error) {
	if surveyID == "" {
		return Definition{}, errors.New("survey id is required")
	}

	var questions []xmlQuestion
	categories := make(map[string][]xmlCategory)

	dec := xml.NewDecoder(r)
	var parents []string
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Definition{}, fmt.Errorf("parse xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			parent := ""
			if len(parents) > 0 {
				parent = parents[len(parents)-1]
			}

			switch {
			case t.Name.Local == "question" && parent == "questions":
				var q xmlQuestion
				if err := dec.DecodeElement(&q, &t); err != nil {
					return Definition{}, fmt.Errorf("parse question: %w", err)
				}
				questions = append(questions, q)
			case t.Name.Local == "categories":
				var c xmlCategories
				if err := dec.DecodeElement(&c, &t); err != nil {
					return Definition{}, fmt.Errorf("parse categories: %w", err)
				}
				// First block per question wins
				if _, ok := categories[c.ID]; !ok {
					categories[c.ID] = c.Categories
				}
			default:
				parents = append(parents, t.Name.Local)
			}
		case xml.EndElement:
			if len(parents) > 0 {
				parents = parents[:len(parents)-1]
			}
		}
	}

	def := Definition{SurveyID: surveyID}
	for i, xq := range questions {
		q, err := buildQuestion(surveyID, i, xq, categories[xq.ID])
		if err != nil {
			return Definition{}, err
		}
		def.Questions = append(def.Questions, q)
	}
	return def, nil
}

func buildQuestion(surveyID string, position int, xq xmlQuestion, cats []xmlCategory) (DefinedQuestion, error) {
	id := strings.TrimSpace(xq.ID)
	if id == "" {
		return DefinedQuestion{}, fmt.Errorf("question %d has no id", position+1)
	}
	code, err := parseInt(xq.Type)
	if err != nil {
		return DefinedQuestion{}, fmt.Errorf("question %s: invalid type %q", id, xq.Type)
	}

	q := DefinedQuestion{Question: models.Question{
		ID:       id,
		SurveyID: surveyID,
		Name:     strings.TrimSpace(xq.Name),
		Text:     strings.TrimSpace(xq.Text),
		Type:     models.ParseQuestionType(code),
		Position: position,
	}}
	if !q.Type.IsChoice() {
		return q, nil
	}

	for _, c := range cats {
		optionCode, err := parseInt(c.Code)
		if err != nil {
			return DefinedQuestion{}, fmt.Errorf("question %s option %s: invalid code %q", id, c.ID, c.Code)
		}
		q.Options = append(q.Options, models.AnswerOption{
			ID:         strings.TrimSpace(c.ID),
			QuestionID: id,
			Code:       optionCode,
			Label:      strings.TrimSpace(c.Label),
		})
	}
	return q, nil
}

// ApplyDefinition upserts the survey, its questions and their options in one
// transaction. Existing rows are updated in place.
func ApplyDefinition(ctx context.Context, conn *sql.DB, def Definition) (DefinitionSummary, error) {
	summary := DefinitionSummary{SurveyID: def.SurveyID}

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return summary, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO surveys (id) VALUES ($1)
		ON CONFLICT DO NOTHING
	`, def.SurveyID); err != nil {
		return summary, fmt.Errorf("upsert survey %s: %w", def.SurveyID, err)
	}

	for _, q := range def.Questions {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO questions (id, survey_id, name, text, type, position)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (id) DO UPDATE SET
				name = excluded.name,
				text = excluded.text,
				type = excluded.type,
				position = excluded.position
		`, q.ID, q.SurveyID, q.Name, q.Text, int(q.Type), q.Position); err != nil {
			return summary, fmt.Errorf("upsert question %s: %w", q.ID, err)
		}
		summary.Questions++

		for _, o := range q.Options {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO answer_options (id, question_id, code, label)
				VALUES ($1, $2, $3, $4)
				ON CONFLICT (id) DO UPDATE SET
					code = excluded.code,
					label = excluded.label
			`, o.ID, o.QuestionID, o.Code, o.Label); err != nil {
				return summary, fmt.Errorf("upsert answer option %s: %w", o.ID, err)
			}
			summary.Options++
		}
	}

	if err := tx.Commit(); err != nil {
		return summary, fmt.Errorf("commit survey %s: %w", def.SurveyID, err)
	}
	return summary, nil
}

// parseInt accepts integers and whole floats such as "2.0", which
// spreadsheet exports produce for numeric cells.
func parseInt(s string) (int, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != float64(int(f)) {
		return 0, fmt.Errorf("not an integer: %q", s)
	}
	return int(f), nil
}

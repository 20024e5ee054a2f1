package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// QuestionType is the storage code of a question kind.
type QuestionType int

// Question type constants (values match the ingestion format)
const (
	QuestionText     QuestionType = 1
	QuestionSingle   QuestionType = 2
	QuestionMultiple QuestionType = 3
)

// ParseQuestionType maps an ingestion type code to a QuestionType.
// Unknown codes fall back to TEXT.
func ParseQuestionType(code int) QuestionType {
	switch QuestionType(code) {
	case QuestionSingle, QuestionMultiple:
		return QuestionType(code)
	default:
		return QuestionText
	}
}

func (t QuestionType) String() string {
	switch t {
	case QuestionSingle:
		return "SINGLE"
	case QuestionMultiple:
		return "MULTIPLE"
	default:
		return "TEXT"
	}
}

// IsChoice reports whether answers to the question reference answer options.
func (t QuestionType) IsChoice() bool {
	return t == QuestionSingle || t == QuestionMultiple
}

func (t QuestionType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *QuestionType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch strings.ToUpper(s) {
	case "TEXT":
		*t = QuestionText
	case "SINGLE":
		*t = QuestionSingle
	case "MULTIPLE":
		*t = QuestionMultiple
	default:
		return fmt.Errorf("unknown question type %q", s)
	}
	return nil
}

// Request types

// QuestionSelection is the body of validate-questions and responses.
// QuestionIDs is the legacy field name; both carry question names.
type QuestionSelection struct {
	SurveyID      string   `json:"survey_id"`
	QuestionNames []string `json:"question_names"`
	QuestionIDs   []string `json:"question_ids,omitempty"`
}

// Names returns the requested question names, preferring question_names.
func (s QuestionSelection) Names() []string {
	if len(s.QuestionNames) > 0 {
		return s.QuestionNames
	}
	return s.QuestionIDs
}

// Response types

type ValidateQuestionsResponse struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

// ResponseData is one question's answer for one respondent.
// Value is a string for TEXT, an int (or "") for SINGLE and []int for MULTIPLE.
type ResponseData struct {
	QuestionID   string       `json:"question_id"`
	QuestionName string       `json:"question_name"`
	QuestionType QuestionType `json:"question_type"`
	Value        any          `json:"value"`
}

type RespondentResponseData struct {
	RespondentID string         `json:"respondent_id"`
	Responses    []ResponseData `json:"responses"`
}

type GetResponsesResponse struct {
	Respondents []RespondentResponseData `json:"respondents"`
}

type HealthResponse struct {
	Status string `json:"status"`
}

type RootResponse struct {
	Message string `json:"message"`
	Version string `json:"version"`
}

// Domain types

type Survey struct {
	ID string `json:"id"`
}

type Question struct {
	ID       string       `json:"id"`
	SurveyID string       `json:"survey_id"`
	Name     string       `json:"name"`
	Text     string       `json:"text"`
	Type     QuestionType `json:"type"`
	Position int          `json:"-"`
}

type AnswerOption struct {
	ID         string `json:"id"`
	QuestionID string `json:"question_id"`
	Code       int    `json:"code"`
	Label      string `json:"label"`
}

type Respondent struct {
	ID string `json:"id"`
}

type TextResponse struct {
	RespondentID string
	QuestionID   string
	SurveyID     string
	Text         string
}

// ChoiceResponse is one selected option; a MULTIPLE answer spans several rows.
type ChoiceResponse struct {
	RespondentID   string
	QuestionID     string
	SurveyID       string
	AnswerOptionID string
	ResponseOrder  int
}

// Error response

type ErrorResponse struct {
	Error   string   `json:"error"`
	Message string   `json:"message,omitempty"`
	Details []string `json:"details,omitempty"`
}

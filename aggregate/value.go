// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package aggregate

import (
	"encoding/json"

	"github.com/ZhenyaSonic/ORO-SurveyAnalytics/models"
)

// Value is one canonical answer: free text, a single option code, or an
// ordered list of option codes. The zero Value is an unanswered TEXT.
type Value struct {
	typ     models.QuestionType
	text    string
	code    int
	hasCode bool
	codes   []int
}

func TextValue(s string) Value {
	return Value{typ: models.QuestionText, text: s}
}

func SingleValue(code int) Value {
	return Value{typ: models.QuestionSingle, code: code, hasCode: true}
}

func MultipleValue(codes []int) Value {
	if codes == nil {
		codes = []int{}
	}
	return Value{typ: models.QuestionMultiple, codes: codes}
}

// DefaultValue is the value used for a question a respondent did not answer.
func DefaultValue(t models.QuestionType) Value {
	switch t {
	case models.QuestionSingle:
		return Value{typ: models.QuestionSingle}
	case models.QuestionMultiple:
		return MultipleValue(nil)
	default:
		return TextValue("")
	}
}

func (v Value) Type() models.QuestionType {
	if v.typ == 0 {
		return models.QuestionText
	}
	return v.typ
}

func (v Value) Text() string { return v.text }

// Code returns the selected code of a SINGLE answer and whether one exists.
func (v Value) Code() (int, bool) { return v.code, v.hasCode }

func (v Value) Codes() []int { return v.codes }

// External converts to the loosely typed API shape: string for TEXT,
// int or "" for SINGLE, []int for MULTIPLE.
func (v Value) External() any {
	switch v.Type() {
	case models.QuestionSingle:
		if !v.hasCode {
			return ""
		}
		return v.code
	case models.QuestionMultiple:
		if v.codes == nil {
			return []int{}
		}
		return v.codes
	default:
		return v.text
	}
}

func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.External())
}

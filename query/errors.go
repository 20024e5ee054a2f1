// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package query

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrSurveyNotFound   = errors.New("survey not found")
	ErrQuestionNotFound = errors.New("question not found")
)

// UnresolvedQuestionsError lists every requested name that does not exist
// in the survey.
type UnresolvedQuestionsError struct {
	SurveyID string
	Names    []string
}

func (e *UnresolvedQuestionsError) Error() string {
	return fmt.Sprintf("questions not found in survey %s: %s", e.SurveyID, strings.Join(e.Names, ", "))
}

// IsUnresolved reports whether err (or any error in its chain) is an
// UnresolvedQuestionsError, and returns it.
func IsUnresolved(err error) (*UnresolvedQuestionsError, bool) {
	var ue *UnresolvedQuestionsError
	ok := errors.As(err, &ue)
	return ue, ok
}

// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Request Types

  - QuestionSelection: survey_id plus question_names (legacy alias
    question_ids), used by validate-questions and responses

# Response Types

  - ValidateQuestionsResponse: valid, errors
  - GetResponsesResponse: respondents → responses
  - RespondentResponseData: respondent_id, responses
  - ResponseData: question_id, question_name, question_type, value
  - ErrorResponse: error, message, details

# Domain Types

  - Survey: identifier only
  - Question: id, survey_id, name, text, type
  - AnswerOption: id, question_id, code, label
  - Respondent: identifier only
  - TextResponse: free text fact row
  - ChoiceResponse: one selected option with its response order

# Question Types

QuestionType uses the ingestion codes and serializes as a string:

	QuestionText     = 1 // "TEXT"
	QuestionSingle   = 2 // "SINGLE"
	QuestionMultiple = 3 // "MULTIPLE"

ParseQuestionType maps unknown codes to QuestionText.
*/
package models

// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package aggregate

import (
	"log/slog"
	"sort"

	"github.com/ZhenyaSonic/ORO-SurveyAnalytics/models"
)

// OptionLookup resolves answer option ids.
type OptionLookup interface {
	Lookup(id string) (models.AnswerOption, bool)
}

// Facts are the raw rows for one survey and one set of questions.
type Facts struct {
	Texts   []models.TextResponse
	Choices []models.ChoiceResponse
}

// Record is the answer of one respondent to one requested question.
type Record struct {
	Question models.Question
	Value    Value
}

type RespondentRecords struct {
	RespondentID string
	Records      []Record
}

// Anomalies counts fact rows that were skipped or overridden while merging.
type Anomalies struct {
	OrphanedOptions  int // choice row pointing at a missing option
	DuplicateTexts   int // second text row for the same respondent and question
	DuplicateSingles int // more than one selected option on a SINGLE question
	TypeMismatches   int // text row on a choice question or choice row on a TEXT question
	UnknownQuestions int // row for a question outside the requested set
}

func (a Anomalies) Total() int {
	return a.OrphanedOptions + a.DuplicateTexts + a.DuplicateSingles + a.TypeMismatches + a.UnknownQuestions
}

type Result struct {
	Respondents []RespondentRecords
	Anomalies   Anomalies
}

// Build merges text and choice facts into one record per requested question
// for every respondent that has at least one fact row. requested is in
// output order and may repeat a question. Anomalous rows are skipped and
// counted, never returned as errors.
func Build(requested []models.Question, facts Facts, options OptionLookup) Result {
	acc := newAccumulator(requested)
	acc.mergeTexts(facts.Texts)
	acc.mergeChoices(facts.Choices, options)
	acc.finalizeMultiple()

	return Result{
		Respondents: acc.emit(requested),
		Anomalies:   acc.anomalies,
	}
}

type answerKey struct {
	respondentID string
	questionID   string
}

type accumulator struct {
	questions   map[string]models.Question
	respondents map[string]struct{}
	values      map[answerKey]Value
	pending     map[answerKey][]OrderedCode
	anomalies   Anomalies
}

func newAccumulator(requested []models.Question) *accumulator {
	questions := make(map[string]models.Question, len(requested))
	for _, q := range requested {
		questions[q.ID] = q
	}
	return &accumulator{
		questions:   questions,
		respondents: make(map[string]struct{}),
		values:      make(map[answerKey]Value),
		pending:     make(map[answerKey][]OrderedCode),
	}
}

// mergeTexts keeps the first text seen per respondent and question.
func (a *accumulator) mergeTexts(rows []models.TextResponse) {
	for _, tr := range rows {
		q, ok := a.questions[tr.QuestionID]
		if !ok {
			a.anomalies.UnknownQuestions++
			continue
		}
		a.respondents[tr.RespondentID] = struct{}{}

		if q.Type != models.QuestionText {
			a.anomalies.TypeMismatches++
			slog.Debug("text response on choice question",
				"respondent_id", tr.RespondentID, "question", q.Name, "type", q.Type.String())
			continue
		}

		k := answerKey{tr.RespondentID, tr.QuestionID}
		if _, exists := a.values[k]; exists {
			a.anomalies.DuplicateTexts++
			continue
		}
		a.values[k] = TextValue(tr.Text)
	}
}

// mergeChoices writes SINGLE codes directly and buffers MULTIPLE selections
// for finalizeMultiple.
func (a *accumulator) mergeChoices(rows []models.ChoiceResponse, options OptionLookup) {
	for _, cr := range rows {
		q, ok := a.questions[cr.QuestionID]
		if !ok {
			a.anomalies.UnknownQuestions++
			continue
		}
		a.respondents[cr.RespondentID] = struct{}{}

		if !q.Type.IsChoice() {
			a.anomalies.TypeMismatches++
			slog.Debug("choice response on text question",
				"respondent_id", cr.RespondentID, "question", q.Name)
			continue
		}

		opt, ok := options.Lookup(cr.AnswerOptionID)
		if !ok {
			a.anomalies.OrphanedOptions++
			slog.Debug("skipping choice response with missing answer option",
				"respondent_id", cr.RespondentID, "question", q.Name, "answer_option_id", cr.AnswerOptionID)
			continue
		}

		k := answerKey{cr.RespondentID, cr.QuestionID}
		if q.Type == models.QuestionSingle {
			// Last write wins; rows arrive in response order.
			if _, exists := a.values[k]; exists {
				a.anomalies.DuplicateSingles++
			}
			a.values[k] = SingleValue(opt.Code)
			continue
		}

		a.pending[k] = append(a.pending[k], OrderedCode{Order: cr.ResponseOrder, Code: opt.Code})
	}
}

func (a *accumulator) finalizeMultiple() {
	for k, pairs := range a.pending {
		a.values[k] = MultipleValue(OrderCodes(pairs))
	}
	a.pending = make(map[answerKey][]OrderedCode)
}

// emit builds the output in requested order, backfilling defaults.
// Respondents are sorted by id.
func (a *accumulator) emit(requested []models.Question) []RespondentRecords {
	ids := make([]string, 0, len(a.respondents))
	for id := range a.respondents {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make([]RespondentRecords, 0, len(ids))
	for _, id := range ids {
		records := make([]Record, 0, len(requested))
		for _, q := range requested {
			v, ok := a.values[answerKey{id, q.ID}]
			if !ok {
				v = DefaultValue(q.Type)
			}
			records = append(records, Record{Question: q, Value: v})
		}
		out = append(out, RespondentRecords{RespondentID: id, Records: records})
	}
	return out
}

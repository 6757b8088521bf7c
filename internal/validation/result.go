package validation

// Code classifies an issue so callers (the correction suggester, the HTTP API)
// can react to a problem without parsing messages.
type Code string

const (
	CodeMissingBegin    Code = "missing_begin"
	CodeMissingEnd      Code = "missing_end"
	CodeUnbalanced      Code = "unbalanced_brackets"
	CodeEnvironment     Code = "environment_mismatch"
	CodeInvalidID       Code = "invalid_question_id"
	CodeMissingSubcount Code = "missing_subcount"
	CodeMissingChoice   Code = "missing_choice"
	CodeMissingTrue     Code = "missing_true_marker"
	CodeMissingContent  Code = "missing_content"
	CodeContentTooShort Code = "content_too_short"
	CodeTooFewAnswers   Code = "too_few_answers"
	CodeFewAnswers      Code = "few_answers"
	CodeMissingCorrect  Code = "missing_correct_answer"
	CodeMultipleCorrect Code = "multiple_correct_answers"
	CodeMissingSolution Code = "missing_solution"
	CodeEmptySolution   Code = "empty_solution"
	CodeInputTooLarge   Code = "input_too_large"
	CodeInternal        Code = "internal_error"
)

// Issue is one error or warning.
type Issue struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
}

// Result accumulates every issue found in one pass, in detection order.
type Result struct {
	IsValid  bool    `json:"is_valid"`
	Errors   []Issue `json:"errors"`
	Warnings []Issue `json:"warnings,omitempty"`
}

func (r *Result) errorf(code Code, msg string) {
	r.Errors = append(r.Errors, Issue{Code: code, Message: msg})
}

func (r *Result) warn(code Code, msg string) {
	r.Warnings = append(r.Warnings, Issue{Code: code, Message: msg})
}

func (r *Result) finish() Result {
	if r.Errors == nil {
		r.Errors = []Issue{}
	}
	r.IsValid = len(r.Errors) == 0
	return *r
}

// Has reports whether an error with code was recorded.
func (r Result) Has(code Code) bool {
	for _, e := range r.Errors {
		if e.Code == code {
			return true
		}
	}
	return false
}

// Messages returns the error messages in order.
func (r Result) Messages() []string {
	out := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		out = append(out, e.Message)
	}
	return out
}

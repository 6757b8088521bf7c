// Package correction proposes whole-document rewrites for questions that fail
// validation. Each detected class of problem yields one independent
// suggestion; suggestions are never composed.
package correction

import (
	"log/slog"
	"strings"

	"github.com/mind-engage/exbank/internal/markup"
	"github.com/mind-engage/exbank/internal/question"
	"github.com/mind-engage/exbank/internal/validation"
)

// Suggestion is a full replacement document with an explanation.
type Suggestion struct {
	Code        string `json:"code"`
	Original    string `json:"original"`
	Suggested   string `json:"suggested"`
	Explanation string `json:"explanation"`
}

const (
	CodeEnvironment = "insert_environment"
	CodeBrackets    = "rebalance_brackets"
	CodeAnswerBlock = "insert_answer_block"
	CodeSolution    = "insert_solution"
)

var answerTemplates = map[question.Type]struct{ block, options string }{
	question.TypeMC: {
		block:   "\\choice\n{Option A}\n{\\True Option B}\n{Option C}\n{Option D}\n",
		options: "\n{Option A}\n{\\True Option B}\n{Option C}\n{Option D}\n",
	},
	question.TypeTF: {
		block:   "\\choiceTF\n{\\True Statement a}\n{Statement b}\n{Statement c}\n{Statement d}\n",
		options: "\n{\\True Statement a}\n{Statement b}\n{Statement c}\n{Statement d}\n",
	},
	question.TypeSA: {
		block:   "\\shortans{'0'}\n",
		options: "{'0'}",
	},
}

const solutionTemplate = "\\loigiai{\nSolution goes here.\n}\n"

// Suggester runs both validators and turns their findings into rewrites.
type Suggester struct {
	v      *validation.Validator
	ex     *question.Extractor
	logger *slog.Logger
}

// New returns a Suggester using v (validation.New() if nil).
func New(v *validation.Validator, logger *slog.Logger) *Suggester {
	if v == nil {
		v = validation.New()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Suggester{v: v, ex: question.NewExtractor(logger), logger: logger}
}

// Suggest returns one rewrite per detected problem class, or an empty slice
// when the document passes both validators. It never panics.
func (s *Suggester) Suggest(raw string) (out []Suggestion) {
	out = []Suggestion{}
	defer func() {
		if r := recover(); r != nil {
			s.logger.Warn("correction suggester panicked", "panic", r)
			out = []Suggestion{}
		}
	}()

	syn := s.v.Syntax(raw)
	st := s.v.Structure(raw)
	if syn.IsValid && st.IsValid {
		return out
	}
	if syn.Has(validation.CodeInputTooLarge) || syn.Has(validation.CodeInternal) {
		return out
	}
	// Rewrites keep the caller's bytes: markers are ASCII, so offsets found in
	// raw are valid without normalising line endings or Unicode composition.
	text := raw
	nl := lineEnding(raw)
	add := func(code, suggested, why string) {
		out = append(out, Suggestion{Code: code, Original: raw, Suggested: suggested, Explanation: why})
	}

	if syn.Has(validation.CodeMissingBegin) || syn.Has(validation.CodeMissingEnd) {
		add(CodeEnvironment, wrapEnvironment(text, nl), `Wrap the question in \begin{ex} ... \end{ex}.`)
	}
	if syn.Has(validation.CodeUnbalanced) {
		add(CodeBrackets, markup.Rebalance(text), "Insert the missing opening or closing brackets so every {, [ and ( is closed.")
	}
	if fixed, why, ok := s.insertAnswerBlock(text, nl, syn, st); ok {
		add(CodeAnswerBlock, fixed, why)
	}
	if !s.ex.HasSolutionMarker(text) {
		add(CodeSolution, insertBefore(text, closingIndex(text), eol(solutionTemplate, nl)), `Add a \loigiai{...} solution before \end{ex}.`)
	}
	s.logger.Debug("corrections suggested", "count", len(out))
	return out
}

func lineEnding(raw string) string {
	if strings.Contains(raw, "\r\n") {
		return "\r\n"
	}
	return "\n"
}

func eol(snippet, nl string) string {
	if nl == "\n" {
		return snippet
	}
	return strings.ReplaceAll(snippet, "\n", nl)
}

func wrapEnvironment(text, nl string) string {
	out := text
	if !strings.Contains(out, markup.BeginEx) {
		out = markup.BeginEx + nl + out
	}
	if !strings.Contains(out, markup.EndEx) {
		out = strings.TrimRight(out, "\r\n") + nl + markup.EndEx
	}
	return out
}

// insertAnswerBlock handles three cases. Options tagged \True with no answer
// marker get a templated block before \loigiai or \end{ex}. A marker with no
// options gets the placeholder options right after it. A block with too few
// options is padded after its last option.
func (s *Suggester) insertAnswerBlock(text, nl string, syn, st validation.Result) (string, string, bool) {
	if syn.Has(validation.CodeMissingChoice) {
		t := question.TypeMC
		if len(markup.TrueTokenRe.FindAllStringIndex(text, -1)) > 1 {
			t = question.TypeTF
		}
		at := closingIndex(text)
		if loc := markup.SolutionCmdRe.FindStringIndex(text); loc != nil && loc[0] < at {
			at = loc[0]
		}
		return insertBefore(text, at, eol(answerTemplates[t].block, nl)),
			`Add an answer block before the solution and move the \True-marked options into it.`, true
	}

	t := question.Classify(text)
	tpl, ok := answerTemplates[t]
	if !ok {
		return "", "", false
	}
	loc, ok := question.MarkerSpan(text, t)
	if !ok {
		return "", "", false
	}
	start := markup.SkipOptional(text, loc[1])
	groups, end := markup.BraceGroups(text, start)
	switch {
	case t == question.TypeSA && len(groups) > 0 && st.Has(validation.CodeMissingCorrect):
		return text[:start] + tpl.options + text[end:],
			"Fill in the expected value of the short answer.", true
	case len(groups) == 0:
		return text[:start] + eol(tpl.options, nl) + text[start:],
			"Add placeholder options; replace them with the real answers and mark the correct one with \\True.", true
	case st.Has(validation.CodeTooFewAnswers):
		return text[:end] + eol(padOptions(t, len(groups)), nl) + text[end:],
			"Add placeholder options so the question has four; replace them with real answers.", true
	}
	return "", "", false
}

// padOptions returns untagged placeholder options from index have up to four.
func padOptions(t question.Type, have int) string {
	var b strings.Builder
	for i := have; i < 4; i++ {
		if t == question.TypeTF {
			b.WriteString("\n{Statement " + string(rune('a'+i)) + "}")
		} else {
			b.WriteString("\n{Option " + string(rune('A'+i)) + "}")
		}
	}
	b.WriteString("\n")
	return b.String()
}

// closingIndex is the offset of the last \end{ex}, or the end of text.
func closingIndex(text string) int {
	if i := strings.LastIndex(text, markup.EndEx); i >= 0 {
		return i
	}
	return len(text)
}

func insertBefore(text string, at int, snippet string) string {
	prefix := text[:at]
	if prefix != "" && !strings.HasSuffix(prefix, "\n") {
		snippet = "\n" + snippet
	}
	return prefix + snippet + text[at:]
}

var defaultSuggester = New(nil, nil)

// Suggest runs the default Suggester.
func Suggest(raw string) []Suggestion { return defaultSuggester.Suggest(raw) }

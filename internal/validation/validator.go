// Package validation checks question markup for lexical (syntax) and
// semantic (structure) problems. Both checks collect every issue in a single
// pass instead of stopping at the first one.
package validation

import (
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/mind-engage/exbank/internal/markup"
	"github.com/mind-engage/exbank/internal/question"
)

const (
	minContentRunes  = 5
	minEssayRunes    = 10
	minSolutionRunes = 2
	minAnswers       = 2
	expectedAnswers  = 4
)

// Option configures a Validator.
type Option func(*config)

type config struct {
	StrictSubcount bool // flag any bracket when no subcount grammar matches
	MaxInputBytes  int
	Logger         *slog.Logger
}

// WithStrictSubcount toggles the bracket/subcount heuristic (default on). The
// heuristic also fires on brackets used for unrelated purposes such as image
// or \shortans parameters.
func WithStrictSubcount(b bool) Option { return func(c *config) { c.StrictSubcount = b } }
func WithMaxInputBytes(n int) Option   { return func(c *config) { c.MaxInputBytes = n } }
func WithLogger(l *slog.Logger) Option { return func(c *config) { c.Logger = l } }

// Validator runs syntax and structure checks. It is safe for concurrent use.
type Validator struct {
	cfg config
	ex  *question.Extractor
}

// New creates a Validator.
func New(opts ...Option) *Validator {
	cfg := config{
		StrictSubcount: true,
		MaxInputBytes:  question.DefaultMaxInputBytes,
	}
	for _, o := range opts {
		o(&cfg)
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Validator{cfg: cfg, ex: question.NewExtractor(cfg.Logger)}
}

// Syntax checks delimiters, environments, ID format and the presence of the
// type-specific markers.
func (v *Validator) Syntax(raw string) (res Result) {
	defer v.guard(&res)
	if v.tooLarge(raw, &res) {
		return res.finish()
	}
	text := question.Normalize(raw)

	outerMissing := false
	if !strings.Contains(text, markup.BeginEx) {
		outerMissing = true
		res.errorf(CodeMissingBegin, `missing \begin{ex}: the question must open the ex environment`)
	}
	if !strings.Contains(text, markup.EndEx) {
		outerMissing = true
		res.errorf(CodeMissingEnd, `missing \end{ex}: the ex environment is never closed`)
	}
	if im, ok := markup.CheckBalance(text); !ok {
		res.errorf(CodeUnbalanced, "unbalanced brackets: "+im.String())
	}
	for _, p := range markup.CheckEnvironments(text) {
		if outerMissing && p.Name == markup.OuterEnv {
			continue
		}
		res.errorf(CodeEnvironment, p.Message)
	}
	if id, ok := v.ex.IDCandidate(text); ok && !markup.IDStrict.MatchString(id) {
		res.errorf(CodeInvalidID, fmt.Sprintf("question ID %q does not match XXXXX-X (5 uppercase letters or digits, dash, 1 more)", id))
	}
	if v.cfg.StrictSubcount && strings.ContainsAny(text, "[]") {
		if _, ok := v.ex.Subcount(text); !ok {
			res.errorf(CodeMissingSubcount, "brackets found but no subcount like [AB.12] or [AB-12]")
		}
	}

	switch question.Classify(text) {
	case question.TypeMC:
		if !markup.TrueTokenRe.MatchString(text) {
			res.errorf(CodeMissingTrue, `multiple choice question needs one option marked \True`)
		}
	case question.TypeES:
		if markup.TrueTokenRe.MatchString(text) {
			res.errorf(CodeMissingChoice, `options are marked \True but there is no \choice or \choiceTF block`)
		}
	}
	return res.finish()
}

// Structure checks that the extracted fields make a usable question of the
// classified type.
func (v *Validator) Structure(raw string) (res Result) {
	defer v.guard(&res)
	if v.tooLarge(raw, &res) {
		return res.finish()
	}
	text := question.Normalize(raw)

	content := v.ex.Content(text)
	if content == "" {
		res.errorf(CodeMissingContent, "question content is missing")
		return res.finish()
	}
	if n := utf8.RuneCountInString(content); n < minContentRunes {
		res.errorf(CodeContentTooShort, fmt.Sprintf("question content is too short (%d characters, need %d)", n, minContentRunes))
		return res.finish()
	}

	switch t := question.Classify(text); t {
	case question.TypeMC:
		v.checkAnswerCount(text, t, &res)
		correct := v.ex.CorrectAnswer(text, t)
		if correct.Empty() {
			res.errorf(CodeMissingCorrect, `no option is marked \True`)
		}
		if n := v.ex.TrueOptionCount(text, t); n > 1 {
			res.errorf(CodeMultipleCorrect, fmt.Sprintf(`multiple choice question has %d options marked \True, expected exactly one`, n))
		}
	case question.TypeTF:
		v.checkAnswerCount(text, t, &res)
		if v.ex.CorrectAnswer(text, t).Empty() {
			res.errorf(CodeMissingCorrect, `true/false question needs at least one statement marked \True`)
		}
	case question.TypeSA:
		if v.ex.CorrectAnswer(text, t).Empty() {
			res.errorf(CodeMissingCorrect, `\shortans has no expected value`)
		}
	case question.TypeES:
		if n := utf8.RuneCountInString(content); n < minEssayRunes {
			res.errorf(CodeContentTooShort, fmt.Sprintf("essay question content is too short (%d characters, need %d)", n, minEssayRunes))
		}
		if !v.ex.HasSolutionMarker(text) {
			res.warn(CodeMissingSolution, `essay question has no \loigiai solution`)
		}
	}

	if v.ex.HasSolutionMarker(text) {
		sol, ok := v.ex.Solution(text)
		if !ok || utf8.RuneCountInString(sol) < minSolutionRunes {
			res.errorf(CodeEmptySolution, fmt.Sprintf(`\loigiai solution is empty or shorter than %d characters`, minSolutionRunes))
		}
	}
	return res.finish()
}

func (v *Validator) checkAnswerCount(text string, t question.Type, res *Result) {
	n := len(v.ex.Answers(text, t))
	switch {
	case n < minAnswers:
		res.errorf(CodeTooFewAnswers, fmt.Sprintf("found %d answer options, need at least %d", n, minAnswers))
	case n < expectedAnswers:
		res.warn(CodeFewAnswers, fmt.Sprintf("found %d answer options, %d are usual", n, expectedAnswers))
	}
}

func (v *Validator) tooLarge(raw string, res *Result) bool {
	if len(raw) <= v.cfg.MaxInputBytes {
		return false
	}
	res.errorf(CodeInputTooLarge, fmt.Sprintf("question markup too large: %d bytes (max %d)", len(raw), v.cfg.MaxInputBytes))
	return true
}

// guard converts a panic into an invalid result so batch callers never abort.
func (v *Validator) guard(res *Result) {
	if r := recover(); r != nil {
		v.cfg.Logger.Warn("validation panicked", "panic", r)
		*res = Result{Errors: []Issue{{Code: CodeInternal, Message: fmt.Sprintf("internal validation error: %v", r)}}}
	}
}

var defaultValidator = New()

// Syntax validates raw with default options.
func Syntax(raw string) Result { return defaultValidator.Syntax(raw) }

// Structure validates raw with default options.
func Structure(raw string) Result { return defaultValidator.Structure(raw) }

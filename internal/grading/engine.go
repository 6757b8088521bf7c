// Package grading scores a learner response against a parsed question.
package grading

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mind-engage/exbank/internal/question"
)

var ErrBadResponse = errors.New("unsupported response shape")

// Q is the view of a question needed for grading.
type Q struct {
	Type    question.Type
	Points  float64
	Answers []string // options or statements, in document order
	Key     question.CorrectAnswer
}

// FromParsed builds a Q worth points from a parsed question.
func FromParsed(p question.Parsed, points float64) Q {
	return Q{Type: p.Type, Points: points, Answers: p.Answers, Key: p.CorrectAnswer}
}

// Result is the outcome of grading a single question response.
type Result struct {
	AutoPoints  float64  `json:"auto_points"`  // points awarded automatically
	MaxPoints   float64  `json:"max_points"`   // the question's max points
	NeedsManual bool     `json:"needs_manual"` // true if a human must grade it
	Feedback    []string `json:"feedback,omitempty"`
}

// Strategy grades a single question.
type Strategy interface {
	Grade(ctx context.Context, q Q, response any) (Result, error)
}

// Grader routes by question type to the correct Strategy.
type Grader interface {
	Grade(ctx context.Context, q Q, response any) (Result, error)
}

type defaultGrader struct {
	strategies map[question.Type]Strategy
}

func (g *defaultGrader) Grade(ctx context.Context, q Q, response any) (Result, error) {
	s, ok := g.strategies[q.Type]
	if !ok {
		return Result{MaxPoints: q.Points, NeedsManual: true, Feedback: []string{"no strategy available"}}, nil
	}
	return s.Grade(ctx, q, response)
}

// Engine options

type Option func(*config)

type config struct {
	MaxEditDistance int     // for short-answer fuzzy match
	PartialTF       bool    // per-statement credit for true/false groups
	NumericTol      float64 // absolute tolerance for numeric short answers
}

func WithMaxEditDistance(n int) Option      { return func(c *config) { c.MaxEditDistance = n } }
func WithPartialTF(b bool) Option           { return func(c *config) { c.PartialTF = b } }
func WithNumericTolerance(t float64) Option { return func(c *config) { c.NumericTol = t } }

// NewDefaultGrader installs built-in strategies.
func NewDefaultGrader(opts ...Option) Grader {
	cfg := &config{
		MaxEditDistance: 1,
		PartialTF:       true,
		NumericTol:      1e-9,
	}
	for _, o := range opts {
		o(cfg)
	}
	return &defaultGrader{
		strategies: map[question.Type]Strategy{
			question.TypeMC: choiceStrategy{},
			question.TypeTF: trueFalseStrategy{partial: cfg.PartialTF},
			question.TypeSA: shortAnswerStrategy{maxEdit: cfg.MaxEditDistance, tol: cfg.NumericTol},
			question.TypeES: essayStrategy{},
		},
	}
}

// --- Strategies ---

// choiceStrategy accepts the option letter ("B") or the option text.
type choiceStrategy struct{}

func (choiceStrategy) Grade(_ context.Context, q Q, response any) (Result, error) {
	res := Result{MaxPoints: q.Points}
	resp, ok := response.(string)
	if !ok {
		return res, fmt.Errorf("%w: choice response must be string", ErrBadResponse)
	}
	if q.Key.Empty() {
		res.NeedsManual = true
		res.Feedback = append(res.Feedback, "question has no marked answer")
		return res, nil
	}
	if resolve(resp, q.Answers, true) == q.Key.Value {
		res.AutoPoints = q.Points
	}
	return res, nil
}

// trueFalseStrategy takes the statements judged true, as letters ("a", "c")
// or texts, and scores every statement judged correctly either way.
type trueFalseStrategy struct{ partial bool }

func (s trueFalseStrategy) Grade(_ context.Context, q Q, response any) (Result, error) {
	res := Result{MaxPoints: q.Points}
	picked, ok := toStringSlice(response)
	if !ok {
		return res, fmt.Errorf("%w: true/false response must be a list", ErrBadResponse)
	}
	if len(q.Answers) == 0 {
		res.NeedsManual = true
		return res, nil
	}
	judgedTrue := map[string]struct{}{}
	for _, p := range picked {
		judgedTrue[resolve(p, q.Answers, false)] = struct{}{}
	}
	right := 0
	for _, a := range q.Answers {
		_, saidTrue := judgedTrue[a]
		if saidTrue == q.Key.Contains(a) {
			right++
		}
	}
	res.Feedback = append(res.Feedback, fmt.Sprintf("statements correct: %d/%d", right, len(q.Answers)))
	switch {
	case right == len(q.Answers):
		res.AutoPoints = q.Points
	case s.partial:
		res.AutoPoints = q.Points * float64(right) / float64(len(q.Answers))
	}
	return res, nil
}

type shortAnswerStrategy struct {
	maxEdit int
	tol     float64
}

func (s shortAnswerStrategy) Grade(_ context.Context, q Q, response any) (Result, error) {
	res := Result{MaxPoints: q.Points}
	resp, ok := response.(string)
	if !ok {
		return res, fmt.Errorf("%w: short answer must be string", ErrBadResponse)
	}
	key := q.Key.Value
	if matchNumeric(stripMath(resp), stripMath(key), s.tol) {
		res.AutoPoints = q.Points
		return res, nil
	}
	nk, nr := normalize(key), normalize(resp)
	if nk == nr {
		res.AutoPoints = q.Points
		return res, nil
	}
	if _, isNum := parseFloatLoose(stripMath(key)); !isNum && s.maxEdit > 0 && levenshtein(fold(key), fold(resp)) <= s.maxEdit {
		res.AutoPoints = q.Points * 0.5
		res.Feedback = append(res.Feedback, "close match (fuzzy)")
	}
	return res, nil
}

type essayStrategy struct{}

func (essayStrategy) Grade(_ context.Context, q Q, _ any) (Result, error) {
	return Result{MaxPoints: q.Points, NeedsManual: true, Feedback: []string{"manual grading required"}}, nil
}

// helpers

// resolve maps a single-letter label to the option it names; anything else
// is taken as option text.
func resolve(resp string, answers []string, upper bool) string {
	r := strings.TrimSpace(resp)
	r = strings.TrimSuffix(strings.TrimSuffix(r, "."), ")")
	if len(r) == 1 {
		c := r[0]
		if upper && c >= 'a' && c <= 'z' {
			c -= 'a' - 'A'
		}
		if !upper && c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}
		base := byte('a')
		if upper {
			base = 'A'
		}
		if i := int(c) - int(base); i >= 0 && i < len(answers) {
			return answers[i]
		}
	}
	return strings.TrimSpace(resp)
}

func toStringSlice(v any) ([]string, bool) {
	switch t := v.(type) {
	case []string:
		return t, true
	case []any:
		out := make([]string, 0, len(t))
		for _, e := range t {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out, true
	default:
		return nil, false
	}
}

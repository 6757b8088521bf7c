// Package batch parses and validates many question documents in parallel.
package batch

import (
	"context"
	"log/slog"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/mind-engage/exbank/internal/correction"
	"github.com/mind-engage/exbank/internal/markup"
	"github.com/mind-engage/exbank/internal/question"
	"github.com/mind-engage/exbank/internal/validation"
)

// Document is one named markup source, possibly holding several questions.
type Document struct {
	Name   string
	Source string
}

// Report is the outcome for one question block.
type Report struct {
	Document    string                  `json:"document"`
	Index       int                     `json:"index"`
	Line        int                     `json:"line"`
	Raw         string                  `json:"-"`
	Question    *question.Parsed        `json:"question,omitempty"`
	ParseError  string                  `json:"parse_error,omitempty"`
	Syntax      validation.Result       `json:"syntax"`
	Structure   validation.Result       `json:"structure"`
	Suggestions []correction.Suggestion `json:"suggestions,omitempty"`
}

// Valid reports whether the block parsed and passed both validators.
func (r Report) Valid() bool {
	return r.Question != nil && r.Syntax.IsValid && r.Structure.IsValid
}

// Options configures Run.
type Options struct {
	// Workers bounds concurrent blocks (default: GOMAXPROCS).
	Workers int
	// Suggest computes corrections for invalid blocks.
	Suggest bool

	Parser    *question.Parser
	Validator *validation.Validator
	Suggester *correction.Suggester
	Logger    *slog.Logger
}

func (o *Options) defaults() {
	if o.Workers <= 0 {
		o.Workers = runtime.GOMAXPROCS(0)
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.Parser == nil {
		o.Parser = question.NewParser(question.Config{Logger: o.Logger})
	}
	if o.Validator == nil {
		o.Validator = validation.New(validation.WithLogger(o.Logger))
	}
	if o.Suggest && o.Suggester == nil {
		o.Suggester = correction.New(o.Validator, o.Logger)
	}
}

type job struct {
	doc   string
	block markup.Block
	slot  int
}

// Run splits every document into question blocks and processes them with at
// most opts.Workers goroutines. Reports come back in document then block
// order. Cancelling ctx stops dispatch; the context error is returned with
// the reports finished so far.
func Run(ctx context.Context, docs []Document, opts Options) ([]Report, error) {
	opts.defaults()

	var jobs []job
	for _, d := range docs {
		for _, b := range markup.Split(d.Source) {
			jobs = append(jobs, job{doc: d.Name, block: b, slot: len(jobs)})
		}
	}
	reports := make([]Report, len(jobs))
	done := make([]bool, len(jobs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)
	for _, j := range jobs {
		j := j
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			reports[j.slot] = process(j, &opts)
			done[j.slot] = true
			return nil
		})
	}
	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		out := reports[:0]
		for i, ok := range done {
			if ok {
				out = append(out, reports[i])
			}
		}
		opts.Logger.Warn("batch interrupted", "done", len(out), "total", len(jobs), "error", err)
		return out, err
	}
	opts.Logger.Debug("batch finished", "documents", len(docs), "questions", len(jobs))
	return reports, nil
}

// Check is Run over a single source without suggestions.
func Check(ctx context.Context, name, source string) ([]Report, error) {
	return Run(ctx, []Document{{Name: name, Source: source}}, Options{})
}

func process(j job, opts *Options) Report {
	r := Report{
		Document: j.doc,
		Index:    j.block.Index,
		Line:     j.block.Line,
		Raw:      j.block.Text,
	}
	if q, err := opts.Parser.Parse(j.block.Text); err != nil {
		r.ParseError = err.Error()
	} else {
		r.Question = &q
	}
	r.Syntax = opts.Validator.Syntax(j.block.Text)
	r.Structure = opts.Validator.Structure(j.block.Text)
	if opts.Suggest && !(r.Syntax.IsValid && r.Structure.IsValid) {
		r.Suggestions = opts.Suggester.Suggest(j.block.Text)
	}
	return r
}

// Summary counts outcomes over reports.
type Summary struct {
	Questions int `json:"questions"`
	Valid     int `json:"valid"`
	Errors    int `json:"errors"`
	Warnings  int `json:"warnings"`
}

// Summarize totals a set of reports.
func Summarize(reports []Report) Summary {
	var s Summary
	for _, r := range reports {
		s.Questions++
		if r.Valid() {
			s.Valid++
		}
		s.Errors += len(r.Syntax.Errors) + len(r.Structure.Errors)
		s.Warnings += len(r.Syntax.Warnings) + len(r.Structure.Warnings)
	}
	return s
}

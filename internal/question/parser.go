// Package question classifies ex_test question markup and extracts its
// fields into a Parsed value.
//
// Usage:
//
//	p := question.NewParser(question.Config{})
//	q, err := p.Parse(raw)
//	fmt.Println(q.Type, q.Answers, q.CorrectAnswer.List())
package question

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	// ErrInputTooLarge is returned when raw markup exceeds Config.MaxInputBytes.
	ErrInputTooLarge = errors.New("question markup too large")
	// ErrInternal wraps an unexpected failure inside the extractor.
	ErrInternal = errors.New("internal parser failure")
)

// DefaultMaxInputBytes caps a single question document.
const DefaultMaxInputBytes = 1 << 20

// Config configures a Parser.
type Config struct {
	// MaxInputBytes rejects larger documents (default: 1 MiB).
	MaxInputBytes int `json:"max_input_bytes" yaml:"max_input_bytes"`

	// Logger for debug messages.
	Logger *slog.Logger `json:"-" yaml:"-"`
}

func (c *Config) defaults() {
	if c.MaxInputBytes <= 0 {
		c.MaxInputBytes = DefaultMaxInputBytes
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Parser turns raw markup into Parsed values. It holds no mutable state and
// is safe for concurrent use.
type Parser struct {
	cfg    Config
	logger *slog.Logger
	ex     *Extractor
}

// NewParser creates a Parser with the given configuration.
func NewParser(cfg Config) *Parser {
	cfg.defaults()
	return &Parser{
		cfg:    cfg,
		logger: cfg.Logger,
		ex:     NewExtractor(cfg.Logger),
	}
}

// Extractor exposes the field extractor used by the parser.
func (p *Parser) Extractor() *Extractor { return p.ex }

// MaxInputBytes returns the configured input cap.
func (p *Parser) MaxInputBytes() int { return p.cfg.MaxInputBytes }

// Normalize brings raw markup into the form the grammar expects: NFC
// composed Unicode and \n line endings.
func Normalize(raw string) string {
	raw = strings.ReplaceAll(raw, "\r\n", "\n")
	return norm.NFC.String(raw)
}

// Parse extracts every field of a question. Missing markers give empty
// fields; an error is returned only for oversized input or an internal
// failure.
func (p *Parser) Parse(raw string) (q Parsed, err error) {
	if len(raw) > p.cfg.MaxInputBytes {
		return Parsed{}, fmt.Errorf("%w: %d bytes (max %d)", ErrInputTooLarge, len(raw), p.cfg.MaxInputBytes)
	}
	defer func() {
		if r := recover(); r != nil {
			p.logger.Warn("question parse panicked", "panic", r)
			q, err = Parsed{}, fmt.Errorf("%w: %v", ErrInternal, r)
		}
	}()

	text := Normalize(raw)
	t := Classify(text)
	q = Parsed{
		Type:          t,
		Content:       p.ex.Content(text),
		CorrectAnswer: p.ex.CorrectAnswer(text, t),
		Sources:       p.ex.Sources(text),
		Solutions:     p.ex.Solutions(text),
		Answers:       p.ex.Answers(text, t),
	}
	if id, ok := p.ex.QuestionID(text); ok {
		q.QuestionID = id
	}
	if sc, ok := p.ex.Subcount(text); ok {
		q.Subcount = &sc
	}
	p.logger.Debug("question parsed", "type", t, "id", q.QuestionID, "answers", len(q.Answers))
	return q, nil
}

var defaultParser = NewParser(Config{})

// Parse parses raw with a default Parser.
func Parse(raw string) (Parsed, error) { return defaultParser.Parse(raw) }

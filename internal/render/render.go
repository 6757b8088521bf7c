// Package render turns question markup into HTML or plain text. Extraction
// failures never escape: they are rendered as a visible error block so a batch
// of documents always renders completely.
package render

import (
	"fmt"
	"html"
	"log/slog"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/mind-engage/exbank/internal/question"
)

// Config configures a Renderer.
type Config struct {
	// Parser used for extraction (default: question.NewParser with Logger).
	Parser *question.Parser

	// Logger for render failures.
	Logger *slog.Logger
}

func (c *Config) defaults() {
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	if c.Parser == nil {
		c.Parser = question.NewParser(question.Config{Logger: c.Logger})
	}
}

// Renderer produces display views of a question. It is safe for concurrent use.
type Renderer struct {
	parser *question.Parser
	logger *slog.Logger
	policy *bluemonday.Policy
}

// New creates a Renderer.
func New(cfg Config) *Renderer {
	cfg.defaults()
	return &Renderer{
		parser: cfg.Parser,
		logger: cfg.Logger,
		policy: newPolicy(),
	}
}

// newPolicy allows exactly the markup this package emits.
func newPolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements("div", "ol", "li", "span", "sup", "sub", "br", "strong")
	p.AllowAttrs("class").Globally()
	p.AllowAttrs("type").OnElements("ol")
	p.AllowDataAttributes()
	return p
}

var letters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"

func label(i int, upper bool) string {
	l := string(letters[i%len(letters)])
	if !upper {
		return strings.ToLower(l)
	}
	return l
}

// HTML renders raw as an HTML fragment. All free text is escaped; correct
// options carry the "correct" class.
func (r *Renderer) HTML(raw string) string {
	q, err := r.parse(raw)
	if err != nil {
		return fmt.Sprintf(`<div class="question question-error">Could not render question: %s</div>`, html.EscapeString(err.Error()))
	}

	var b strings.Builder
	fmt.Fprintf(&b, `<div class="question question-%s"`, strings.ToLower(string(q.Type)))
	if q.QuestionID != "" {
		fmt.Fprintf(&b, ` data-question-id="%s"`, html.EscapeString(q.QuestionID))
	}
	if q.Subcount != nil {
		fmt.Fprintf(&b, ` data-subcount="%s"`, html.EscapeString(q.Subcount.FullID))
	}
	b.WriteString(">\n")
	fmt.Fprintf(&b, `<div class="question-content">%s</div>`+"\n", richHTML(q.Content))

	switch q.Type {
	case question.TypeMC:
		b.WriteString(`<ol class="question-answers" type="A">` + "\n")
		marked := false
		for _, a := range q.Answers {
			cls := "answer"
			if !marked && a == q.CorrectAnswer.Value {
				cls += " correct"
				marked = true
			}
			fmt.Fprintf(&b, `<li class="%s">%s</li>`+"\n", cls, richHTML(a))
		}
		b.WriteString("</ol>\n")
	case question.TypeTF:
		b.WriteString(`<ol class="question-statements" type="a">` + "\n")
		for _, a := range q.Answers {
			cls := "statement false"
			if q.CorrectAnswer.Contains(a) {
				cls = "statement true correct"
			}
			fmt.Fprintf(&b, `<li class="%s">%s</li>`+"\n", cls, richHTML(a))
		}
		b.WriteString("</ol>\n")
	case question.TypeSA:
		fmt.Fprintf(&b, `<div class="question-answer short-answer correct"><strong>Answer:</strong> %s</div>`+"\n", richHTML(q.CorrectAnswer.Value))
	case question.TypeES:
	}

	for _, s := range q.Solutions {
		fmt.Fprintf(&b, `<div class="question-solution"><strong>Solution:</strong> %s</div>`+"\n", richHTML(s))
	}
	b.WriteString("</div>")
	return r.policy.Sanitize(b.String())
}

// PlainText renders raw as plain text with lettered options and a trailing
// solution.
func (r *Renderer) PlainText(raw string) string {
	q, err := r.parse(raw)
	if err != nil {
		return "[render error] " + err.Error()
	}

	var b strings.Builder
	fmt.Fprintf(&b, "[%s]", q.Type)
	if q.QuestionID != "" {
		b.WriteString(" " + q.QuestionID)
	}
	if q.Subcount != nil {
		b.WriteString(" (" + q.Subcount.FullID + ")")
	}
	b.WriteString("\n" + mathText(q.Content) + "\n")

	switch q.Type {
	case question.TypeMC:
		marked := false
		for i, a := range q.Answers {
			suffix := ""
			if !marked && a == q.CorrectAnswer.Value {
				suffix = " (correct)"
				marked = true
			}
			fmt.Fprintf(&b, "%s. %s%s\n", label(i, true), mathText(a), suffix)
		}
	case question.TypeTF:
		for i, a := range q.Answers {
			mark := "F"
			if q.CorrectAnswer.Contains(a) {
				mark = "T"
			}
			fmt.Fprintf(&b, "%s) %s [%s]\n", label(i, false), mathText(a), mark)
		}
	case question.TypeSA:
		fmt.Fprintf(&b, "Answer: %s\n", mathText(q.CorrectAnswer.Value))
	case question.TypeES:
	}

	for _, s := range q.Solutions {
		fmt.Fprintf(&b, "Solution: %s\n", mathText(s))
	}
	return strings.TrimRight(b.String(), "\n")
}

func (r *Renderer) parse(raw string) (q question.Parsed, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("%w: %v", question.ErrInternal, rec)
		}
	}()
	q, err = r.parser.Parse(raw)
	if err != nil {
		r.logger.Warn("render: extraction failed", "error", err)
	}
	return q, err
}

func richHTML(s string) string {
	return mathHTML(html.EscapeString(s))
}

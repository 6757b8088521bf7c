package question

import (
	"log/slog"
	"strings"

	"github.com/mind-engage/exbank/internal/markup"
)

// Extractor pulls individual fields out of question markup. Absent markers
// give empty or false results; nothing here returns an error.
type Extractor struct {
	logger *slog.Logger
}

// NewExtractor returns an Extractor logging to logger (slog.Default if nil).
func NewExtractor(logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{logger: logger}
}

// QuestionID returns the first well-formed %[XXXXX-X] marker.
func (e *Extractor) QuestionID(text string) (string, bool) {
	m := markup.IDPattern.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return strings.TrimSpace(m[1]), true
}

// IDCandidate returns the first %[token] marker that is not a subcount, even
// when malformed.
func (e *Extractor) IDCandidate(text string) (string, bool) {
	for _, m := range markup.IDCandidate.FindAllStringSubmatch(text, -1) {
		if id := strings.TrimSpace(m[1]); !markup.IsSubcount(id) {
			return id, true
		}
	}
	return "", false
}

// Subcount returns the first match among the subcount grammars, in order.
func (e *Extractor) Subcount(text string) (Subcount, bool) {
	for _, g := range markup.SubcountGrammars {
		if m := g.Pattern.FindStringSubmatch(text); m != nil {
			return Subcount{Prefix: m[1], Number: m[2], FullID: m[1] + g.Separator + m[2]}, true
		}
	}
	return Subcount{}, false
}

// Sources returns every source marker text in document order.
func (e *Extractor) Sources(text string) []string {
	out := []string{}
	for _, m := range markup.SourcePattern.FindAllStringSubmatch(text, -1) {
		src := m[1]
		if src == "" {
			src = m[2]
		}
		if src = strings.TrimSpace(src); src != "" {
			out = append(out, src)
		}
	}
	return out
}

// Content returns the question stem: the ex body without markers, images,
// answers or solution, whitespace collapsed. Empty if \begin{ex}...\end{ex}
// is absent.
func (e *Extractor) Content(text string) string {
	body, ok := markup.ExtractEnvironment(text, markup.OuterEnv)
	if !ok {
		return ""
	}
	body = markup.IDPattern.ReplaceAllString(body, " ")
	body = markup.IDCandidate.ReplaceAllString(body, " ")
	body = markup.SourcePattern.ReplaceAllString(body, " ")
	for _, g := range markup.SubcountGrammars {
		body = g.Pattern.ReplaceAllString(body, " ")
	}
	for _, re := range markup.ImagePatterns {
		body = re.ReplaceAllString(body, " ")
	}
	if loc := markup.TailStart.FindStringIndex(body); loc != nil {
		body = body[:loc[0]]
	}
	return markup.CollapseSpace(body)
}

// Solution returns the body of the first \loigiai block. The flat regex is
// tried first; nested braces defeat it, in which case the block is
// bracket-extracted from the marker position.
func (e *Extractor) Solution(text string) (string, bool) {
	loc := markup.SolutionCmdRe.FindStringIndex(text)
	if loc == nil {
		return "", false
	}
	return e.solutionAt(text, loc[0])
}

// HasSolutionMarker reports whether any \loigiai occurs in text.
func (e *Extractor) HasSolutionMarker(text string) bool {
	return markup.SolutionCmdRe.MatchString(text)
}

// Solutions returns every solution block in document order.
func (e *Extractor) Solutions(text string) []string {
	out := []string{}
	for _, loc := range markup.SolutionCmdRe.FindAllStringIndex(text, -1) {
		if s, ok := e.solutionAt(text, loc[0]); ok {
			out = append(out, s)
		}
	}
	return out
}

func (e *Extractor) solutionAt(text string, at int) (string, bool) {
	if m := markup.SolutionRe.FindStringSubmatchIndex(text[at:]); m != nil && m[0] == 0 {
		return strings.TrimSpace(text[at+m[2] : at+m[3]]), true
	}
	ex, ok := markup.ExtractFirst(markup.Brace, text, at)
	if !ok {
		e.logger.Debug("solution marker without closed block", "offset", at)
		return "", false
	}
	e.logger.Debug("solution recovered by bracket scan", "offset", at)
	return strings.TrimSpace(ex.Content), true
}

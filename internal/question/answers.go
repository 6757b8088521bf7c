package question

import (
	"strings"

	"github.com/mind-engage/exbank/internal/markup"
)

// Answers returns the option texts for MC/TF, the single expected value for
// SA and nothing for essays.
func (e *Extractor) Answers(text string, t Type) []string {
	switch t {
	case TypeMC, TypeTF:
		out := []string{}
		for _, opt := range e.optionGroups(text, t) {
			if s := stripTrue(opt); s != "" {
				out = append(out, s)
			}
		}
		return out
	case TypeSA:
		if v, ok := e.shortAnswer(text); ok {
			return []string{v}
		}
		return []string{}
	case TypeES:
		return []string{}
	}
	return []string{}
}

// CorrectAnswer returns the correct option for MC, every \True statement for
// TF, the expected value for SA and an empty answer for essays.
func (e *Extractor) CorrectAnswer(text string, t Type) CorrectAnswer {
	switch t {
	case TypeMC:
		return Single(e.correctMC(text))
	case TypeTF:
		return Multiple(e.correctTF(text))
	case TypeSA:
		if v, ok := e.shortAnswer(text); ok {
			return Single(v)
		}
		return Single("")
	case TypeES:
		return Single("")
	}
	return Single("")
}

// TrueOptionCount counts the options of the answer block of t that carry a
// \True marker.
func (e *Extractor) TrueOptionCount(text string, t Type) int {
	n := 0
	for _, opt := range e.optionGroups(text, t) {
		if markup.TrueTokenRe.MatchString(opt) {
			n++
		}
	}
	return n
}

// optionGroups reads the brace groups following the choice marker of t,
// skipping an optional [..] parameter. Reading stops at the first token that is
// not a brace group, so a trailing \loigiai is never taken as an option.
func (e *Extractor) optionGroups(text string, t Type) []string {
	loc, ok := MarkerSpan(text, t)
	if !ok || (t != TypeMC && t != TypeTF) {
		return nil
	}
	start := markup.SkipOptional(text, loc[1])
	groups, _ := markup.BraceGroups(text, start)
	return groups
}

func (e *Extractor) shortAnswer(text string) (string, bool) {
	loc, ok := MarkerSpan(text, TypeSA)
	if !ok {
		return "", false
	}
	start := markup.SkipOptional(text, loc[1])
	groups, _ := markup.BraceGroups(text, start)
	if len(groups) == 0 {
		return "", false
	}
	v := strings.TrimSpace(groups[0])
	if i := strings.IndexByte(v, '\''); i >= 0 {
		if j := strings.IndexByte(v[i+1:], '\''); j >= 0 {
			return v[i+1 : i+1+j], true
		}
	}
	return v, true
}

func (e *Extractor) correctMC(text string) string {
	for _, m := range markup.TrueOption.FindAllStringSubmatch(text, -1) {
		if v := strings.TrimSpace(m[1]); v != "" {
			return v
		}
	}
	loc := markup.TrueTokenRe.FindStringIndex(text)
	if loc == nil {
		return ""
	}
	e.logger.Debug("correct option recovered by bracket scan", "offset", loc[0])
	v, _ := optionAt(text, loc[0])
	return v
}

func (e *Extractor) correctTF(text string) []string {
	markers := markup.TrueTokenRe.FindAllStringIndex(text, -1)
	if len(markers) == 0 {
		return []string{}
	}
	var out []string
	for _, m := range markup.TrueOption.FindAllStringSubmatch(text, -1) {
		if v := strings.TrimSpace(m[1]); v != "" {
			out = append(out, v)
		}
	}
	if len(out) == len(markers) {
		return out
	}

	e.logger.Debug("true statements recovered by sequential scan", "markers", len(markers), "regex_hits", len(out))
	out = []string{}
	cursor := 0
	for cursor < len(text) {
		loc := markup.TrueTokenRe.FindStringIndex(text[cursor:])
		if loc == nil {
			break
		}
		pos := cursor + loc[0]
		v, end := optionAt(text, pos)
		if v != "" {
			out = append(out, v)
		}
		if end <= cursor+loc[1] {
			end = cursor + loc[1]
		}
		cursor = end
	}
	return out
}

// optionAt bracket-extracts the option enclosing the marker at pos and returns
// its text without the marker and the index past the option.
func optionAt(text string, pos int) (string, int) {
	open := markup.EnclosingOpener(text, pos)
	if open < 0 {
		return "", pos
	}
	ex, ok := markup.ExtractFirst(markup.Brace, text, open)
	if !ok {
		return "", pos
	}
	return stripTrue(ex.Content), ex.EndIndex
}

func stripTrue(opt string) string {
	return strings.TrimSpace(markup.TrueTokenRe.ReplaceAllString(opt, ""))
}

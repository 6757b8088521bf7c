package render

import "regexp"

// Only a small, fixed set of commands is translated; anything else is shown
// as written.
var (
	fracRe   = regexp.MustCompile(`\\[dt]?frac\s*\{([^{}]*)\}\s*\{([^{}]*)\}`)
	symbolRe = regexp.MustCompile(`\\(Leftrightarrow|leftrightarrow|Rightarrow|rightarrow|infty|times|cdot|geq|leq|neq|ge|le|ne|pm|to)\b`)
	breakRe  = regexp.MustCompile(`\\\\|\\newline\b`)
)

var symbols = map[string]string{
	"Leftrightarrow": "⇔",
	"leftrightarrow": "↔",
	"Rightarrow":     "⇒",
	"rightarrow":     "→",
	"to":             "→",
	"infty":          "∞",
	"times":          "×",
	"cdot":           "·",
	"geq":            "≥",
	"ge":             "≥",
	"leq":            "≤",
	"le":             "≤",
	"neq":            "≠",
	"ne":             "≠",
	"pm":             "±",
}

func replaceSymbols(s string) string {
	return symbolRe.ReplaceAllStringFunc(s, func(m string) string {
		return symbols[m[1:]]
	})
}

// mathHTML translates the substitution table into HTML. s must already be
// escaped.
func mathHTML(s string) string {
	s = breakRe.ReplaceAllString(s, "<br>")
	s = fracRe.ReplaceAllString(s, `<span class="frac"><sup>$1</sup>/<sub>$2</sub></span>`)
	return replaceSymbols(s)
}

// mathText translates the substitution table into plain text.
func mathText(s string) string {
	s = breakRe.ReplaceAllString(s, "\n")
	s = fracRe.ReplaceAllString(s, "($1)/($2)")
	return replaceSymbols(s)
}

package markup

import (
	"regexp"
	"strings"
)

// Literal markers of the ex_test dialect.
const (
	OuterEnv     = "ex"
	BeginEx      = `\begin{ex}`
	EndEx        = `\end{ex}`
	ChoiceMarker = `\choice`
	TFMarker     = `\choiceTF`
	ShortMarker  = `\shortans`
	SolutionCmd  = `\loigiai`
	TrueToken    = `\True`
)

// All patterns are RE2 and therefore linear in the input length.
var (
	// IDPattern captures a well-formed question ID, e.g. %[1A2B3-C].
	IDPattern = regexp.MustCompile(`%\[\s*([A-Z0-9]{5}-[A-Z0-9])\s*\]`)
	// IDCandidate captures any single-token %[...] marker so malformed IDs
	// can be reported. Source markers never match; subcount-shaped tokens do
	// and are filtered by IsSubcount.
	IDCandidate = regexp.MustCompile(`%\[\s*([^\]\s":]+)\s*\]`)
	IDStrict    = regexp.MustCompile(`^[A-Z0-9]{5}-[A-Z0-9]$`)

	// SourcePattern has one group for %[Nguồn: "..."] and one for [Nguồn: "..."].
	SourcePattern = regexp.MustCompile(`%\[\s*(?i:nguồn)\s*:\s*"([^"]*)"\s*\]|\[\s*(?i:nguồn)\s*:\s*"([^"]*)"\s*\]`)

	// ChoiceAny matches \choice and \choiceTF; group 1 is "TF" for the latter.
	ChoiceAny     = regexp.MustCompile(`\\choice(TF)?`)
	ShortAnsRe    = regexp.MustCompile(`\\shortans`)
	SolutionRe    = regexp.MustCompile(`\\loigiai\s*\{([^{}]*)\}`)
	SolutionCmdRe = regexp.MustCompile(`\\loigiai`)
	TrueOption    = regexp.MustCompile(`\{\s*\\True\b\s*([^{}]*)\}`)
	TrueTokenRe   = regexp.MustCompile(`\\True\b`)

	// TailStart marks where the answer block or solution begins.
	TailStart = regexp.MustCompile(`\\(?:choice|shortans|loigiai)`)

	EnvPattern = regexp.MustCompile(`\\(begin|end)\s*\{([^{}]*)\}`)

	// ImagePatterns strip figures and graphics from question content.
	ImagePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?s)\\begin\{tikzpicture\}.*?\\end\{tikzpicture\}`),
		regexp.MustCompile(`(?s)\\begin\{figure\}.*?\\end\{figure\}`),
		regexp.MustCompile(`(?s)\\begin\{center\}\s*\\includegraphics\s*(?:\[[^\]]*\])?\s*\{[^{}]*\}\s*\\end\{center\}`),
		regexp.MustCompile(`\\includegraphics\s*(?:\[[^\]]*\])?\s*\{[^{}]*\}`),
	}

	spaceRun = regexp.MustCompile(`\s+`)
)

// SubcountGrammar is one accepted spelling of a subcount such as [AB.123].
type SubcountGrammar struct {
	Pattern   *regexp.Regexp
	Separator string
}

// SubcountGrammars are tried in order.
var SubcountGrammars = []SubcountGrammar{
	{Pattern: regexp.MustCompile(`\[([A-Z]{2})\.(\d+)\]`), Separator: "."},
	{Pattern: regexp.MustCompile(`\[([A-Z]{2})-(\d+)\]`), Separator: "-"},
}

// IsSubcount reports whether token, without brackets, is a subcount such
// as AB.12.
func IsSubcount(token string) bool {
	for _, g := range SubcountGrammars {
		if g.Pattern.MatchString("[" + token + "]") {
			return true
		}
	}
	return false
}

// CollapseSpace replaces whitespace runs with one space and trims the ends.
func CollapseSpace(s string) string {
	return strings.TrimSpace(spaceRun.ReplaceAllString(s, " "))
}

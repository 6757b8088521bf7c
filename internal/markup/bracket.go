package markup

import "strings"

// Kind identifies a delimiter pair by its opening rune.
type Kind byte

const (
	Brace   Kind = '{'
	Bracket Kind = '['
	Paren   Kind = '('
)

// Closer returns the closing delimiter for k.
func (k Kind) Closer() byte {
	switch k {
	case Brace:
		return '}'
	case Bracket:
		return ']'
	case Paren:
		return ')'
	}
	return 0
}

// Extraction is the body of one delimited span.
type Extraction struct {
	Content  string
	EndIndex int // index just past the closing delimiter
}

// ExtractFirst scans for the first opener of kind at or after start and returns
// the body up to its matching closer. Only delimiters of the same kind count
// towards nesting depth. Escaped delimiters (\{) are not special-cased.
func ExtractFirst(kind Kind, text string, start int) (Extraction, bool) {
	if start < 0 {
		start = 0
	}
	if start >= len(text) {
		return Extraction{}, false
	}
	open, close := byte(kind), kind.Closer()
	if close == 0 {
		return Extraction{}, false
	}
	rel := strings.IndexByte(text[start:], open)
	if rel < 0 {
		return Extraction{}, false
	}
	begin := start + rel
	depth := 0
	for i := begin; i < len(text); i++ {
		switch text[i] {
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return Extraction{Content: text[begin+1 : i], EndIndex: i + 1}, true
			}
		}
	}
	return Extraction{}, false
}

// ExtractAll returns the bodies of every top-level span of kind, in order.
func ExtractAll(kind Kind, text string) []string {
	var out []string
	cursor := 0
	for {
		ex, ok := ExtractFirst(kind, text, cursor)
		if !ok {
			return out
		}
		out = append(out, ex.Content)
		cursor = ex.EndIndex
	}
}

// ExtractEnvironment returns the text between the first \begin{name} and the
// next \end{name}. Nested environments of the same name are not tracked.
func ExtractEnvironment(text, name string) (string, bool) {
	begin := `\begin{` + name + `}`
	end := `\end{` + name + `}`
	i := strings.Index(text, begin)
	if i < 0 {
		return "", false
	}
	body := text[i+len(begin):]
	j := strings.Index(body, end)
	if j < 0 {
		return "", false
	}
	return body[:j], true
}

// BraceGroups reads consecutive {...} groups starting at start, allowing only
// whitespace between them. It stops at the first other character and returns
// the bodies together with the index just past the last group.
func BraceGroups(text string, start int) ([]string, int) {
	var out []string
	i := start
	for {
		j := skipSpace(text, i)
		if j >= len(text) || text[j] != '{' {
			return out, i
		}
		ex, ok := ExtractFirst(Brace, text, j)
		if !ok {
			return out, i
		}
		out = append(out, ex.Content)
		i = ex.EndIndex
	}
}

// SkipOptional skips whitespace and one optional [...] parameter at start.
func SkipOptional(text string, start int) int {
	j := skipSpace(text, start)
	if j < len(text) && text[j] == '[' {
		if ex, ok := ExtractFirst(Bracket, text, j); ok {
			return ex.EndIndex
		}
	}
	return start
}

// EnclosingOpener returns the index of the innermost unclosed '{' before pos.
func EnclosingOpener(text string, pos int) int {
	depth := 0
	for i := pos - 1; i >= 0; i-- {
		switch text[i] {
		case '}':
			depth++
		case '{':
			if depth == 0 {
				return i
			}
			depth--
		}
	}
	return -1
}

func skipSpace(text string, i int) int {
	for i < len(text) {
		switch text[i] {
		case ' ', '\t', '\n', '\r', '\f', '\v':
			i++
		default:
			return i
		}
	}
	return i
}

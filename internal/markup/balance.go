package markup

import "fmt"

var pairs = map[byte]byte{'}': '{', ']': '[', ')': '('}

// Imbalance describes the first delimiter problem found by CheckBalance.
type Imbalance struct {
	Index    int  // byte offset, or len(text) for unclosed openers
	Found    byte // offending closer, 0 at end of input
	Expected byte // closer that would have been valid, 0 if none was open
}

func (i Imbalance) String() string {
	switch {
	case i.Found == 0:
		return fmt.Sprintf("unclosed %q at end of input", pairs2open(i.Expected))
	case i.Expected == 0:
		return fmt.Sprintf("unexpected %q at offset %d", i.Found, i.Index)
	default:
		return fmt.Sprintf("expected %q but found %q at offset %d", i.Expected, i.Found, i.Index)
	}
}

func pairs2open(closer byte) byte {
	if o, ok := pairs[closer]; ok {
		return o
	}
	return closer
}

// CheckBalance runs a stack scan over {, [ and ( and reports the first
// mismatch, if any.
func CheckBalance(text string) (Imbalance, bool) {
	var stack []byte
	for i := 0; i < len(text); i++ {
		c := text[i]
		switch c {
		case '{', '[', '(':
			stack = append(stack, c)
		case '}', ']', ')':
			if len(stack) == 0 {
				return Imbalance{Index: i, Found: c}, false
			}
			top := stack[len(stack)-1]
			if top != pairs[c] {
				return Imbalance{Index: i, Found: c, Expected: Kind(top).Closer()}, false
			}
			stack = stack[:len(stack)-1]
		}
	}
	if len(stack) > 0 {
		return Imbalance{Index: len(text), Expected: Kind(stack[len(stack)-1]).Closer()}, false
	}
	return Imbalance{}, true
}

// Balanced reports whether every {, [ and ( in text is closed in order.
func Balanced(text string) bool {
	_, ok := CheckBalance(text)
	return ok
}

// Rebalance repairs text in one left-to-right pass: an unexpected closer gets
// its opener inserted immediately before it, and openers still on the stack at
// the end are closed innermost first.
func Rebalance(text string) string {
	out := make([]byte, 0, len(text)+8)
	var stack []byte
	for i := 0; i < len(text); i++ {
		c := text[i]
		switch c {
		case '{', '[', '(':
			stack = append(stack, c)
		case '}', ']', ')':
			if len(stack) > 0 && stack[len(stack)-1] == pairs[c] {
				stack = stack[:len(stack)-1]
			} else {
				out = append(out, pairs[c])
			}
		}
		out = append(out, c)
	}
	for i := len(stack) - 1; i >= 0; i-- {
		out = append(out, Kind(stack[i]).Closer())
	}
	return string(out)
}

// EnvProblem is one \begin/\end mismatch.
type EnvProblem struct {
	Name    string
	Message string
}

// CheckEnvironments verifies that every \begin{X} is closed by a matching
// \end{X} with correct nesting. All problems are returned in scan order.
func CheckEnvironments(text string) []EnvProblem {
	var problems []EnvProblem
	var stack []string
	for _, m := range EnvPattern.FindAllStringSubmatch(text, -1) {
		kind, name := m[1], m[2]
		if kind == "begin" {
			stack = append(stack, name)
			continue
		}
		if len(stack) == 0 {
			problems = append(problems, EnvProblem{Name: name, Message: fmt.Sprintf(`\end{%s} without matching \begin{%s}`, name, name)})
			continue
		}
		top := stack[len(stack)-1]
		if top != name {
			problems = append(problems, EnvProblem{Name: name, Message: fmt.Sprintf(`\end{%s} closes \begin{%s}`, name, top)})
			// drop the frame only if the name is open deeper, otherwise keep scanning
			for j := len(stack) - 1; j >= 0; j-- {
				if stack[j] == name {
					stack = stack[:j]
					break
				}
			}
			continue
		}
		stack = stack[:len(stack)-1]
	}
	for i := len(stack) - 1; i >= 0; i-- {
		problems = append(problems, EnvProblem{Name: stack[i], Message: fmt.Sprintf(`\begin{%s} is never closed`, stack[i])})
	}
	return problems
}

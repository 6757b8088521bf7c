package question

import "github.com/mind-engage/exbank/internal/markup"

// Classify decides the question type from its markers. \choiceTF is tested
// before \choice because the latter is a textual prefix of the former.
func Classify(text string) Type {
	if _, ok := MarkerSpan(text, TypeTF); ok {
		return TypeTF
	}
	if _, ok := MarkerSpan(text, TypeMC); ok {
		return TypeMC
	}
	if _, ok := MarkerSpan(text, TypeSA); ok {
		return TypeSA
	}
	return TypeES
}

// HasMarker reports whether the answer marker of t occurs in text. Essays
// have no marker.
func HasMarker(text string, t Type) bool {
	_, ok := MarkerSpan(text, t)
	return ok
}

// MarkerSpan returns the [start,end) of the first answer marker of t.
func MarkerSpan(text string, t Type) ([2]int, bool) {
	switch t {
	case TypeMC, TypeTF:
		for _, m := range markup.ChoiceAny.FindAllStringSubmatchIndex(text, -1) {
			isTF := m[2] >= 0
			if isTF == (t == TypeTF) {
				return [2]int{m[0], m[1]}, true
			}
		}
	case TypeSA:
		if loc := markup.ShortAnsRe.FindStringIndex(text); loc != nil {
			return [2]int{loc[0], loc[1]}, true
		}
	case TypeES:
	}
	return [2]int{}, false
}

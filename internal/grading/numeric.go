package grading

import (
	"math"
	"strconv"
	"strings"
)

// matchNumeric reports whether resp and key are both numbers within tol.
// Decimal commas are accepted ("2,5" == "2.5").
func matchNumeric(resp, key string, tol float64) bool {
	rv, rOK := parseFloatLoose(resp)
	kv, kOK := parseFloatLoose(key)
	if !rOK || !kOK {
		return false
	}
	return math.Abs(rv-kv) <= tol
}

func parseFloatLoose(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, "$")
	if strings.Count(s, ",") == 1 && !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return v, true
	}
	if sp := strings.Fields(s); len(sp) > 0 {
		if v, err := strconv.ParseFloat(sp[0], 64); err == nil {
			return v, true
		}
	}
	return 0, false
}

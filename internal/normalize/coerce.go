package normalize

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleCaser = cases.Title(language.AmericanEnglish)

// parseNumber coerces a raw JSON scalar into a float. Unparsable values
// report ok=false and the caller falls back to zero.
func parseNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		s := strings.TrimSpace(n)
		s = strings.NewReplacer(",", "", "$", "", "%", "").Replace(s)
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// scaled converts a number to whole units, multiplying by 1000 when the
// upstream field is stored in thousands.
func scaled(f float64, thousands bool) int64 {
	if thousands {
		f *= 1000
	}
	return int64(math.Round(f))
}

// stringValue renders a raw scalar as text. Whole floats print without a
// decimal point so numeric ids stay stable.
func stringValue(v any) string {
	switch s := v.(type) {
	case string:
		return strings.TrimSpace(s)
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case int:
		return strconv.Itoa(s)
	case int64:
		return strconv.FormatInt(s, 10)
	case json.Number:
		return s.String()
	case bool:
		return strconv.FormatBool(s)
	default:
		return ""
	}
}

// cleanName collapses whitespace and title-cases names that arrive in all caps.
func cleanName(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if s == "" {
		return s
	}
	for _, r := range s {
		if unicode.IsLower(r) {
			return s
		}
	}
	return titleCaser.String(strings.ToLower(s))
}

func cleanState(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// slug joins the lower-cased letter and digit runs of parts with '-', e.g.
// ("Hill Country Teachers", "TX") -> "hill-country-teachers-tx".
func slug(parts ...string) string {
	var words []string
	for _, p := range parts {
		words = append(words, strings.FieldsFunc(strings.ToLower(p), func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})...)
	}
	return strings.Join(words, "-")
}

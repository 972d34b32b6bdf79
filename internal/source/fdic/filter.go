package fdic

import (
	"strconv"
	"strings"

	"github.com/sells-group/leads-cli/internal/model"
)

// buildFilters renders criteria as a comma-joined BankFind filter expression.
// Asset bounds are converted from dollars to the API's thousands.
func buildFilters(c model.Criteria) string {
	parts := []string{"ACTIVE:1"}
	if c.State != "" {
		parts = append(parts, `STALP:"`+c.State+`"`)
	}
	if c.MinAssetsUSD > 0 || c.MaxAssetsUSD > 0 {
		lo, hi := "*", "*"
		if c.MinAssetsUSD > 0 {
			lo = strconv.FormatInt(c.MinAssetsUSD/1000, 10)
		}
		if c.MaxAssetsUSD > 0 {
			hi = strconv.FormatInt((c.MaxAssetsUSD+999)/1000, 10)
		}
		parts = append(parts, "ASSET:["+lo+" TO "+hi+"]")
	}
	if c.Name != "" {
		parts = append(parts, "NAME:*"+escapeTerm(strings.ToUpper(c.Name))+"*")
	}
	return strings.Join(parts, ",")
}

// escapeTerm backslash-escapes characters that carry meaning in the filter
// grammar so a name fragment cannot break out of its wildcard.
func escapeTerm(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case ' ', ':', ',', '"', '*', '[', ']', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

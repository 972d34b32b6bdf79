package ncua

import (
	"strconv"
	"strings"

	"github.com/sells-group/leads-cli/internal/model"
)

// buildWhere renders criteria as a SoQL $where conjunction in the dataset's
// dialect. Asset bounds are converted to thousands. Empty criteria produce "".
func buildWhere(d Dialect, c model.Criteria) string {
	var clauses []string
	if c.State != "" {
		clauses = append(clauses, d.StateField+"="+quote(c.State))
	}
	if c.MinAssetsUSD > 0 {
		clauses = append(clauses, d.AssetsField+">="+strconv.FormatInt(c.MinAssetsUSD/1000, 10))
	}
	if c.MaxAssetsUSD > 0 {
		clauses = append(clauses, d.AssetsField+"<="+strconv.FormatInt((c.MaxAssetsUSD+999)/1000, 10))
	}
	if c.Name != "" {
		clauses = append(clauses, "upper("+d.NameField+") like "+quote("%"+strings.ToUpper(c.Name)+"%"))
	}
	return strings.Join(clauses, " AND ")
}

// quote wraps s in single quotes, doubling embedded quotes.
func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

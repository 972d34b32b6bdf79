// Package scorer computes the deterministic opportunity score and product
// recommendations for an institution.
package scorer

import "github.com/sells-group/leads-cli/internal/model"

// Score bounds.
const (
	BaseScore = 50
	MaxScore  = 100

	// MaxProducts caps the recommendation list.
	MaxProducts = 3
)

// Product names.
const (
	ProductPerformanceManagement = "Performance Management"
	ProductRegulatoryAnalytics   = "Regulatory Analytics"
	ProductLoanAnalytics         = "Loan Analytics"
	ProductMarketingSolutions    = "Marketing Solutions"
	ProductEssentialAnalytics    = "Essential Analytics"
	ProductMemberInsights        = "Member Insights"
)

// band awards points to values at or above min. Bands are ordered from the
// largest threshold down and the first match wins.
type band[T int64 | float64] struct {
	min    T
	points int
}

var assetBands = []band[int64]{
	{10_000_000_000, 30},
	{5_000_000_000, 25},
	{1_000_000_000, 20},
	{500_000_000, 15},
	{100_000_000, 10},
}

const assetFloor = 5

var memberBands = []band[int64]{
	{500_000, 10},
	{100_000, 7},
	{50_000, 5},
}

const memberFloor = 2

var roaBands = []band[float64]{
	{1.5, 10},
	{1.0, 7},
	{0.5, 4},
}

func points[T int64 | float64](v T, bands []band[T], floor int) int {
	for _, b := range bands {
		if v >= b.min {
			return b.points
		}
	}
	return floor
}

// Score returns the opportunity score for the given attributes. Members only
// count when positive; banks report zero. The result lies in [55, 100].
func Score(assetsUSD, memberCount int64, roaPct float64) int {
	s := BaseScore + points(assetsUSD, assetBands, assetFloor)
	if memberCount > 0 {
		s += points(memberCount, memberBands, memberFloor)
	}
	s += points(roaPct, roaBands, 0)
	if s > MaxScore {
		s = MaxScore
	}
	return s
}

// Recommend returns up to MaxProducts products: the asset-tier products
// first, then Member Insights for credit unions.
func Recommend(assetsUSD int64, kind model.Kind) []string {
	var products []string
	switch {
	case assetsUSD >= 5_000_000_000:
		products = []string{ProductPerformanceManagement, ProductRegulatoryAnalytics}
	case assetsUSD >= 1_000_000_000:
		products = []string{ProductLoanAnalytics, ProductMarketingSolutions}
	default:
		products = []string{ProductEssentialAnalytics}
	}
	if kind == model.KindCreditUnion {
		products = append(products, ProductMemberInsights)
	}
	if len(products) > MaxProducts {
		products = products[:MaxProducts]
	}
	return products
}

// Evaluate scores an institution.
func Evaluate(inst model.Institution) model.ScoreResult {
	return model.ScoreResult{
		Score:               Score(inst.AssetsUSD, inst.MemberCount, inst.ROAPct),
		RecommendedProducts: Recommend(inst.AssetsUSD, inst.Kind),
	}
}

package model

import "strings"

// DefaultLimit caps a search when Criteria.Limit is unset.
const DefaultLimit = 500

// Criteria is the source-independent search filter handed to every adapter.
// Asset bounds are whole dollars; zero means unbounded.
type Criteria struct {
	State        string `json:"state,omitempty"`
	MinAssetsUSD int64  `json:"min_assets_usd,omitempty"`
	MaxAssetsUSD int64  `json:"max_assets_usd,omitempty"`
	Name         string `json:"name,omitempty"`
	Limit        int    `json:"limit,omitempty"`
}

// Normalized returns a copy with trimmed, upper-cased state, trimmed name and
// a positive limit.
func (c Criteria) Normalized() Criteria {
	c.State = strings.ToUpper(strings.TrimSpace(c.State))
	c.Name = strings.TrimSpace(c.Name)
	if c.Limit <= 0 {
		c.Limit = DefaultLimit
	}
	if c.MinAssetsUSD < 0 {
		c.MinAssetsUSD = 0
	}
	if c.MaxAssetsUSD < 0 {
		c.MaxAssetsUSD = 0
	}
	return c
}

// Matches reports whether an institution satisfies the criteria. Used by
// tiers that filter locally instead of upstream.
func (c Criteria) Matches(inst Institution) bool {
	if c.State != "" && !strings.EqualFold(inst.State, c.State) {
		return false
	}
	if c.MinAssetsUSD > 0 && inst.AssetsUSD < c.MinAssetsUSD {
		return false
	}
	if c.MaxAssetsUSD > 0 && inst.AssetsUSD > c.MaxAssetsUSD {
		return false
	}
	if c.Name != "" && !strings.Contains(strings.ToLower(inst.Name), strings.ToLower(c.Name)) {
		return false
	}
	return true
}

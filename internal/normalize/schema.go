// Package normalize maps raw upstream records onto the canonical Institution
// using an explicit, ordered alias table per source system.
package normalize

import "github.com/sells-group/leads-cli/internal/model"

// Attribute names a canonical Institution attribute resolved from raw keys.
type Attribute string

const (
	AttrName         Attribute = "name"
	AttrRegulatoryID Attribute = "regulatory_id"
	AttrCity         Attribute = "city"
	AttrState        Attribute = "state"
	AttrAssets       Attribute = "assets"
	AttrMembers      Attribute = "members"
	AttrDeposits     Attribute = "deposits"
	AttrROA          Attribute = "roa"
	AttrBranches     Attribute = "branches"
)

// Schema declares how one source system names its fields. Aliases are tried
// in order; the first present, non-null value wins, so the most modern
// spelling goes first. Attributes listed in Thousands are scaled by 1000.
type Schema struct {
	System    model.SourceSystem
	Aliases   map[Attribute][]string
	Thousands []Attribute
}

func (s Schema) inThousands(attr Attribute) bool {
	for _, a := range s.Thousands {
		if a == attr {
			return true
		}
	}
	return false
}

// lookup returns the first present, non-empty raw value for attr.
func (s Schema) lookup(raw model.RawRecord, attr Attribute) (any, bool) {
	for _, key := range s.Aliases[attr] {
		v, ok := raw[key]
		if !ok || v == nil {
			continue
		}
		if str, isStr := v.(string); isStr && str == "" {
			continue
		}
		return v, true
	}
	return nil, false
}

// Package model defines the canonical institution, score, override and lead types.
package model

// Kind distinguishes credit unions from community banks.
type Kind string

const (
	KindCreditUnion   Kind = "credit_union"
	KindCommunityBank Kind = "community_bank"
)

// SourceSystem identifies the upstream regulatory source a record came from.
type SourceSystem string

const (
	SourceFDIC SourceSystem = "fdic"
	SourceNCUA SourceSystem = "ncua"
)

// Kind returns the institution kind a source system reports on.
func (s SourceSystem) Kind() Kind {
	if s == SourceNCUA {
		return KindCreditUnion
	}
	return KindCommunityBank
}

// RawRecord is one upstream row as returned by a retrieval tier. Key casing
// and naming differ between tiers of the same source.
type RawRecord map[string]any

// Institution is the normalized view of one regulated institution.
// Values are constructed once by the normalizer and never mutated.
type Institution struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Kind         Kind         `json:"kind"`
	City         string       `json:"city"`
	State        string       `json:"state"`
	AssetsUSD    int64        `json:"assets_usd"`
	MemberCount  int64        `json:"member_count"`
	DepositsUSD  int64        `json:"deposits_usd"`
	ROAPct       float64      `json:"roa_pct"`
	BranchCount  int          `json:"branch_count"`
	RegulatoryID string       `json:"regulatory_id"`
	Source       SourceSystem `json:"source"`
	Tier         string       `json:"tier,omitempty"`
}

// InstitutionID derives the stable identity for a source-native charter or
// certificate number.
func InstitutionID(source SourceSystem, regulatoryID string) string {
	return string(source) + "_" + regulatoryID
}

// IsCreditUnion reports whether the institution has members rather than customers.
func (i Institution) IsCreditUnion() bool {
	return i.Kind == KindCreditUnion
}

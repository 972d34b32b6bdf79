package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstitutionID(t *testing.T) {
	assert.Equal(t, "fdic_3511", InstitutionID(SourceFDIC, "3511"))
	assert.Equal(t, "ncua_5536", InstitutionID(SourceNCUA, "5536"))
}

func TestSourceSystemKind(t *testing.T) {
	assert.Equal(t, KindCreditUnion, SourceNCUA.Kind())
	assert.Equal(t, KindCommunityBank, SourceFDIC.Kind())
	assert.True(t, Institution{Kind: KindCreditUnion}.IsCreditUnion())
}

func TestCriteriaNormalized(t *testing.T) {
	c := Criteria{State: " tx ", Name: "  navy ", MinAssetsUSD: -1, MaxAssetsUSD: -2}.Normalized()
	assert.Equal(t, "TX", c.State)
	assert.Equal(t, "navy", c.Name)
	assert.Equal(t, DefaultLimit, c.Limit)
	assert.Zero(t, c.MinAssetsUSD)
	assert.Zero(t, c.MaxAssetsUSD)

	assert.Equal(t, 25, Criteria{Limit: 25}.Normalized().Limit)
}

func TestCriteriaMatches(t *testing.T) {
	inst := Institution{Name: "Navy Federal Credit Union", State: "VA", AssetsUSD: 180_000_000_000}

	assert.True(t, Criteria{}.Matches(inst))
	assert.True(t, Criteria{State: "va", Name: "federal"}.Matches(inst))
	assert.False(t, Criteria{State: "TX"}.Matches(inst))
	assert.False(t, Criteria{MinAssetsUSD: 200_000_000_000}.Matches(inst))
	assert.False(t, Criteria{MaxAssetsUSD: 1_000_000}.Matches(inst))
	assert.False(t, Criteria{Name: "army"}.Matches(inst))
}

func TestLeadStatusValid(t *testing.T) {
	for _, s := range LeadStatuses {
		assert.True(t, s.Valid(), s)
	}
	assert.False(t, LeadStatus("maybe").Valid())
}

func TestOverrideValidate(t *testing.T) {
	assert.NoError(t, Override{}.Validate())
	assert.NoError(t, Override{Status: Ptr(StatusWon), ScoreOverride: Ptr(100)}.Validate())
	assert.Error(t, Override{Status: Ptr(LeadStatus("cold"))}.Validate())
	assert.Error(t, Override{ScoreOverride: Ptr(101)}.Validate())
	assert.Error(t, Override{ScoreOverride: Ptr(-1)}.Validate())
}

func TestOverrideMerge(t *testing.T) {
	base := Override{ContactName: Ptr("Dana"), Status: Ptr(StatusContacted)}
	merged := base.Merge(Override{Status: Ptr(StatusQualified), Notes: Ptr("demo booked")})

	assert.Equal(t, "Dana", *merged.ContactName)
	assert.Equal(t, StatusQualified, *merged.Status)
	assert.Equal(t, "demo booked", *merged.Notes)
	assert.Equal(t, StatusContacted, *base.Status)

	assert.Equal(t, base, base.Merge(Override{}))
	assert.True(t, Override{}.IsEmpty())
	assert.False(t, merged.IsEmpty())
}

func TestOverrideJSONOmitsAbsentFields(t *testing.T) {
	b, err := json.Marshal(Override{Status: Ptr(StatusQualified)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"qualified"}`, string(b))

	var o Override
	require.NoError(t, json.Unmarshal([]byte(`{"score_override":80}`), &o))
	assert.Nil(t, o.Status)
	assert.Equal(t, 80, *o.ScoreOverride)
}

func TestNewLead(t *testing.T) {
	products := []string{"Essential Analytics"}
	l := NewLead(Institution{ID: "fdic_1"}, ScoreResult{Score: 55, RecommendedProducts: products})

	assert.Equal(t, StatusNew, l.Status)
	assert.Equal(t, 55, l.Score)
	assert.Equal(t, 55, l.ComputedScore)
	products[0] = "mutated"
	assert.Equal(t, "Essential Analytics", l.RecommendedProducts[0])
}

func TestApplyOverride(t *testing.T) {
	l := NewLead(Institution{ID: "ncua_1"}, ScoreResult{Score: 70})

	got := l.ApplyOverride(Override{Status: Ptr(StatusQualified)})
	assert.Equal(t, StatusQualified, got.Status)
	assert.Equal(t, StatusNew, l.Status)
	assert.Equal(t, 70, got.Score)

	o := Override{ScoreOverride: Ptr(90), ContactEmail: Ptr("cfo@example.org"), LastContactDate: Ptr("2026-10-01")}
	once := l.ApplyOverride(o)
	twice := once.ApplyOverride(o)
	assert.Equal(t, once, twice)
	assert.Equal(t, 90, once.Score)
	assert.Equal(t, 70, once.ComputedScore)
	assert.Equal(t, 90, once.ScoreResult().Score)
}

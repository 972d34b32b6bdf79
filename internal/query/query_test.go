package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/leads-cli/internal/model"
)

func lead(id, name, state string, kind model.Kind, assets int64, score int, status model.LeadStatus) model.Lead {
	return model.Lead{
		Institution: model.Institution{ID: id, Name: name, State: state, Kind: kind, AssetsUSD: assets},
		Score:       score,
		Status:      status,
	}
}

func fixture() []model.Lead {
	return []model.Lead{
		lead("fdic_1", "Lone Star Bank", "TX", model.KindCommunityBank, 500_000_000, 70, model.StatusNew),
		lead("ncua_2", "Alamo Credit Union", "TX", model.KindCreditUnion, 2_000_000_000, 90, model.StatusQualified),
		lead("ncua_3", "Prairie CU", "KS", model.KindCreditUnion, 90_000_000, 57, model.StatusNew),
		lead("fdic_4", "Bank of Clarke", "VA", model.KindCommunityBank, 2_000_000_000, 80, model.StatusWon),
	}
}

func ids(leads []model.Lead) []string {
	out := make([]string, len(leads))
	for i, l := range leads {
		out[i] = l.ID
	}
	return out
}

func TestApply_DefaultSortIsAssetsDesc(t *testing.T) {
	p := Apply(fixture(), Options{})
	assert.Equal(t, []string{"fdic_4", "ncua_2", "fdic_1", "ncua_3"}, ids(p.Leads))
	assert.Equal(t, 4, p.Total)
	assert.Equal(t, 1, p.Pages)
	assert.Equal(t, DefaultPageSize, p.PageSize)
}

func TestApply_Filters(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		want []string
	}{
		{"state", Options{State: " tx "}, []string{"ncua_2", "fdic_1"}},
		{"kind", Options{Kind: model.KindCreditUnion}, []string{"ncua_2", "ncua_3"}},
		{"status", Options{Status: model.StatusNew}, []string{"fdic_1", "ncua_3"}},
		{"min score", Options{MinScore: 80}, []string{"fdic_4", "ncua_2"}},
		{"search", Options{Search: "credit"}, []string{"ncua_2"}},
		{"combined", Options{State: "TX", Kind: model.KindCommunityBank}, []string{"fdic_1"}},
		{"no match", Options{State: "AK"}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(Apply(fixture(), tt.opts).Leads))
		})
	}
}

func TestApply_SortKeys(t *testing.T) {
	assert.Equal(t, []string{"ncua_3", "fdic_1", "fdic_4", "ncua_2"},
		ids(Apply(fixture(), Options{SortBy: SortScore}).Leads))
	assert.Equal(t, []string{"ncua_2", "fdic_4", "fdic_1", "ncua_3"},
		ids(Apply(fixture(), Options{SortBy: SortScore, Desc: true}).Leads))
	assert.Equal(t, []string{"ncua_2", "fdic_4", "fdic_1", "ncua_3"},
		ids(Apply(fixture(), Options{SortBy: SortName}).Leads))
	assert.Equal(t, []string{"ncua_3", "fdic_1", "fdic_4", "ncua_2"},
		ids(Apply(fixture(), Options{SortBy: SortAssets}).Leads))
}

func TestApply_Pagination(t *testing.T) {
	p := Apply(fixture(), Options{PageSize: 3, Page: 2})
	assert.Equal(t, []string{"ncua_3"}, ids(p.Leads))
	assert.Equal(t, 2, p.Pages)
	assert.Equal(t, 2, p.Page)

	p = Apply(fixture(), Options{PageSize: 3, Page: 9})
	assert.Equal(t, 2, p.Page)

	p = Apply(nil, Options{Page: 3})
	assert.Empty(t, p.Leads)
	assert.Equal(t, 0, p.Pages)
	assert.Equal(t, 3, p.Page)
}

func TestApply_DoesNotMutateInput(t *testing.T) {
	in := fixture()
	Apply(in, Options{SortBy: SortName})
	require.Len(t, in, 4)
	assert.Equal(t, "fdic_1", in[0].ID)
}

func TestOptionsValidate(t *testing.T) {
	assert.NoError(t, Options{}.Validate())
	assert.NoError(t, Options{Kind: model.KindCreditUnion, Status: model.StatusWon, SortBy: SortScore, Page: 2}.Validate())

	for _, bad := range []Options{
		{Kind: "thrift"},
		{Status: "maybe"},
		{SortBy: "city"},
		{MinScore: -1},
		{PageSize: -5},
	} {
		assert.Error(t, bad.Validate(), "%+v", bad)
	}
}

package main

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/leads-cli/internal/config"
	"github.com/sells-group/leads-cli/internal/model"
	"github.com/sells-group/leads-cli/internal/query"
)

func newOverrideFlagsCmd(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "test"}
	fs := cmd.Flags()
	fs.String("contact-name", "", "")
	fs.String("contact-email", "", "")
	fs.String("contact-phone", "", "")
	fs.String("status", "", "")
	fs.String("notes", "", "")
	fs.String("last-contact", "", "")
	fs.Int("score", 0, "")
	require.NoError(t, fs.Parse(args))
	return cmd
}

func TestPatchFromFlags_OnlyChanged(t *testing.T) {
	patch, err := patchFromFlags(newOverrideFlagsCmd(t, "--status", "qualified", "--notes", ""))
	require.NoError(t, err)

	require.NotNil(t, patch.Status)
	assert.Equal(t, model.StatusQualified, *patch.Status)
	require.NotNil(t, patch.Notes)
	assert.Equal(t, "", *patch.Notes)
	assert.Nil(t, patch.ContactName)
	assert.Nil(t, patch.ScoreOverride)
}

func TestPatchFromFlags_ScoreZeroIsPresent(t *testing.T) {
	patch, err := patchFromFlags(newOverrideFlagsCmd(t, "--score", "0"))
	require.NoError(t, err)
	require.NotNil(t, patch.ScoreOverride)
	assert.Equal(t, 0, *patch.ScoreOverride)
}

func TestPatchFromFlags_Empty(t *testing.T) {
	patch, err := patchFromFlags(newOverrideFlagsCmd(t))
	require.NoError(t, err)
	assert.True(t, patch.IsEmpty())
}

func TestPatchFromFlags_Invalid(t *testing.T) {
	_, err := patchFromFlags(newOverrideFlagsCmd(t, "--status", "maybe"))
	assert.Error(t, err)
	_, err = patchFromFlags(newOverrideFlagsCmd(t, "--score", "120"))
	assert.Error(t, err)
}

func TestListFlags_Options(t *testing.T) {
	f := listFlags{kind: "credit_union", sortBy: "SCORE", desc: true, page: 2, pageSize: 10}
	opts, err := f.options("tx")
	require.NoError(t, err)
	assert.Equal(t, query.Options{
		State: "tx", Kind: model.KindCreditUnion, SortBy: query.SortScore, Desc: true, Page: 2, PageSize: 10,
	}, opts)

	_, err = (&listFlags{sortBy: "city"}).options("")
	assert.Error(t, err)
}

func TestSearchFlags_Criteria(t *testing.T) {
	cfg = &config.Config{Resolve: config.ResolveConfig{DefaultLimit: 200}}

	crit := (&searchFlags{state: " co ", name: " first ", minAssets: 1000}).criteria()
	assert.Equal(t, model.Criteria{State: "CO", Name: "first", MinAssetsUSD: 1000, Limit: 200}, crit)

	crit = (&searchFlags{limit: 5}).criteria()
	assert.Equal(t, 5, crit.Limit)
}

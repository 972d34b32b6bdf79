package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand_HasSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, name := range []string{"leads", "override", "serve", "export", "brief"} {
		assert.True(t, names[name], "expected subcommand %q not found", name)
	}
}

func TestRootCommand_Metadata(t *testing.T) {
	assert.Equal(t, "leads-cli", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
}

func TestLeadsCommand_Flags(t *testing.T) {
	for _, name := range []string{"state", "name", "min-assets", "max-assets", "limit", "kind", "status", "min-score", "search", "sort", "desc", "page", "page-size", "json"} {
		assert.NotNil(t, leadsCmd.Flags().Lookup(name), "leads should have --%s", name)
	}
	assert.Equal(t, "25", leadsCmd.Flags().Lookup("page-size").DefValue)
}

func TestExportCommand_Flags(t *testing.T) {
	flag := exportCmd.Flags().Lookup("out")
	require.NotNil(t, flag)
	assert.Equal(t, "leads.xlsx", flag.DefValue)
	assert.Nil(t, exportCmd.Flags().Lookup("page"), "export writes every matching lead")
}

func TestServeCommand_Flags(t *testing.T) {
	flag := serveCmd.Flags().Lookup("port")
	require.NotNil(t, flag)
	assert.Equal(t, "0", flag.DefValue)
}

func TestBriefCommand_Args(t *testing.T) {
	assert.Error(t, briefCmd.Args(briefCmd, nil))
	assert.NoError(t, briefCmd.Args(briefCmd, []string{"ncua_5536"}))
	assert.NotNil(t, briefCmd.Flags().Lookup("question"))
}

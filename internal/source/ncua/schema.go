// Package ncua implements the Source B adapter for credit-union call report
// datasets published behind a SoQL-style query API.
package ncua

import (
	"github.com/sells-group/leads-cli/internal/model"
	"github.com/sells-group/leads-cli/internal/normalize"
)

// Schema covers the three naming conventions used across dataset versions:
// snake_case (current), run-together lowercase, and upper snake case.
// Assets and shares are reported in thousands; members are a plain count.
var Schema = normalize.Schema{
	System: model.SourceNCUA,
	Aliases: map[normalize.Attribute][]string{
		normalize.AttrName:         {"cu_name", "cuname", "CU_NAME", "name"},
		normalize.AttrRegulatoryID: {"charter_number", "cu_number", "charternumber", "CU_NUMBER", "CHARTER_NUMBER"},
		normalize.AttrCity:         {"city", "CITY"},
		normalize.AttrState:        {"state", "STATE", "state_code"},
		normalize.AttrAssets:       {"total_assets", "totalassets", "TOTAL_ASSETS", "assets"},
		normalize.AttrMembers:      {"members", "num_members", "nummembers", "MEMBERS", "NUM_MEMBERS"},
		normalize.AttrDeposits:     {"total_shares", "totalshares", "TOTAL_SHARES", "shares_and_deposits"},
		normalize.AttrROA:          {"roa", "return_on_assets", "ROA"},
		normalize.AttrBranches:     {"num_branches", "branches", "BRANCHES"},
	},
	Thousands: []normalize.Attribute{normalize.AttrAssets, normalize.AttrDeposits},
}

// Dialect names the fields a dataset version uses in its query clauses.
type Dialect struct {
	Name        string
	NameField   string
	StateField  string
	AssetsField string
}

var (
	DialectCurrent = Dialect{Name: "current", NameField: "cu_name", StateField: "state", AssetsField: "total_assets"}
	DialectCompact = Dialect{Name: "compact", NameField: "cuname", StateField: "state", AssetsField: "totalassets"}
	DialectLegacy  = Dialect{Name: "legacy", NameField: "CU_NAME", StateField: "STATE", AssetsField: "TOTAL_ASSETS"}
)

// DialectByName resolves a configured dialect name, defaulting to current.
func DialectByName(name string) Dialect {
	switch name {
	case DialectCompact.Name:
		return DialectCompact
	case DialectLegacy.Name:
		return DialectLegacy
	default:
		return DialectCurrent
	}
}

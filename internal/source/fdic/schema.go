// Package fdic implements the Source A adapter for the FDIC BankFind
// institutions API and its mirrors.
package fdic

import (
	"github.com/sells-group/leads-cli/internal/model"
	"github.com/sells-group/leads-cli/internal/normalize"
)

// Schema lists the field spellings seen across the BankFind API, its
// lower-cased mirror, and older bulk exports. Monetary fields are reported in
// thousands of dollars.
var Schema = normalize.Schema{
	System: model.SourceFDIC,
	Aliases: map[normalize.Attribute][]string{
		normalize.AttrName:         {"NAME", "name", "INSTNAME", "inst_name"},
		normalize.AttrRegulatoryID: {"CERT", "cert", "FDIC_CERT", "fdic_cert"},
		normalize.AttrCity:         {"CITY", "city"},
		normalize.AttrState:        {"STALP", "stalp", "STATE", "state"},
		normalize.AttrAssets:       {"ASSET", "asset", "total_assets", "totalassets", "TOTAL_ASSETS"},
		normalize.AttrDeposits:     {"DEP", "dep", "total_deposits", "DEPOSITS"},
		normalize.AttrROA:          {"ROA", "roa", "ROAPTX", "return_on_assets"},
		normalize.AttrBranches:     {"OFFICES", "offices", "num_branches"},
	},
	Thousands: []normalize.Attribute{normalize.AttrAssets, normalize.AttrDeposits},
}

// projection is the field list requested from the API.
var projection = []string{"CERT", "NAME", "CITY", "STALP", "ASSET", "DEP", "ROA", "OFFICES"}

package export

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/leads-cli/internal/model"
)

func testLeads() []model.Lead {
	cu := model.NewLead(model.Institution{
		ID: "ncua_24212", Name: "Randolph-Brooks", Kind: model.KindCreditUnion, City: "Live Oak", State: "TX",
		AssetsUSD: 17_601_330_000, MemberCount: 1_190_000, ROAPct: 1.08, BranchCount: 60, Source: model.SourceNCUA, Tier: "ncua-sample",
	}, model.ScoreResult{Score: 97, RecommendedProducts: []string{"Performance Management", "Regulatory Analytics", "Member Insights"}})
	cu = cu.ApplyOverride(model.Override{ContactName: model.Ptr("Pat Lee"), Status: model.Ptr(model.StatusProposal)})

	bank := model.NewLead(model.Institution{
		ID: "fdic_9268", Name: "First National Bank Of Gillette", Kind: model.KindCommunityBank, State: "WY",
		AssetsUSD: 82_400_000, Source: model.SourceFDIC,
	}, model.ScoreResult{Score: 55, RecommendedProducts: []string{"Essential Analytics"}})
	return []model.Lead{cu, bank}
}

func TestWriteFile_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "leads.xlsx")
	require.NoError(t, WriteFile(path, testLeads()))

	f, err := xlsx.OpenFile(path)
	require.NoError(t, err)
	sheet, ok := f.Sheet[SheetName]
	require.True(t, ok)
	require.Len(t, sheet.Rows, 3)

	header := sheet.Rows[0]
	require.Len(t, header.Cells, len(Columns))
	assert.Equal(t, "ID", header.Cells[0].String())

	cu := sheet.Rows[1]
	assert.Equal(t, "ncua_24212", cu.Cells[0].String())
	assets, err := cu.Cells[5].Int64()
	require.NoError(t, err)
	assert.Equal(t, int64(17_601_330_000), assets)
	assert.Equal(t, "Performance Management, Regulatory Analytics, Member Insights", cu.Cells[12].String())
	assert.Equal(t, "proposal", cu.Cells[13].String())
	assert.Equal(t, "Pat Lee", cu.Cells[14].String())

	bank := sheet.Rows[2]
	assert.Equal(t, "new", bank.Cells[13].String())
}

func TestWrite_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, nil))
	assert.NotZero(t, buf.Len())

	f, err := xlsx.OpenBinary(buf.Bytes())
	require.NoError(t, err)
	require.Len(t, f.Sheets, 1)
	assert.Len(t, f.Sheets[0].Rows, 1)
}

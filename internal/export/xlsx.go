// Package export writes leads to spreadsheet workbooks.
package export

import (
	"io"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/leads-cli/internal/model"
)

// SheetName is the name of the single worksheet written.
const SheetName = "Leads"

// Columns is the header row, in output order.
var Columns = []string{
	"ID", "Name", "Kind", "City", "State", "Assets (USD)", "Deposits (USD)",
	"Members", "ROA %", "Branches", "Score", "Computed Score", "Products",
	"Status", "Contact", "Email", "Phone", "Last Contact", "Notes", "Source", "Tier",
}

// Workbook builds an in-memory workbook with one row per lead.
func Workbook(leads []model.Lead) (*xlsx.File, error) {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet(SheetName)
	if err != nil {
		return nil, eris.Wrap(err, "export: add sheet")
	}

	header := sheet.AddRow()
	for _, c := range Columns {
		header.AddCell().SetString(c)
	}

	for _, l := range leads {
		row := sheet.AddRow()
		row.AddCell().SetString(l.ID)
		row.AddCell().SetString(l.Name)
		row.AddCell().SetString(string(l.Kind))
		row.AddCell().SetString(l.City)
		row.AddCell().SetString(l.State)
		row.AddCell().SetInt64(l.AssetsUSD)
		row.AddCell().SetInt64(l.DepositsUSD)
		row.AddCell().SetInt64(l.MemberCount)
		row.AddCell().SetFloat(l.ROAPct)
		row.AddCell().SetInt(l.BranchCount)
		row.AddCell().SetInt(l.Score)
		row.AddCell().SetInt(l.ComputedScore)
		row.AddCell().SetString(strings.Join(l.RecommendedProducts, ", "))
		row.AddCell().SetString(string(l.Status))
		row.AddCell().SetString(l.ContactName)
		row.AddCell().SetString(l.ContactEmail)
		row.AddCell().SetString(l.ContactPhone)
		row.AddCell().SetString(l.LastContactDate)
		row.AddCell().SetString(l.Notes)
		row.AddCell().SetString(string(l.Source))
		row.AddCell().SetString(l.Tier)
	}
	return f, nil
}

// WriteFile writes leads to a workbook at path.
func WriteFile(path string, leads []model.Lead) error {
	f, err := Workbook(leads)
	if err != nil {
		return err
	}
	return eris.Wrapf(f.Save(path), "export: save %s", path)
}

// Write writes leads as a workbook to w.
func Write(w io.Writer, leads []model.Lead) error {
	f, err := Workbook(leads)
	if err != nil {
		return err
	}
	return eris.Wrap(f.Write(w), "export: write workbook")
}

package export

import (
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/jobbank-etl/internal/model"
)

// SheetName is the worksheet written by WriteXLSX.
const SheetName = "jobbank"

// WriteXLSX saves rows as a single-sheet workbook with a header row.
func WriteXLSX(path string, rows []model.NormalizedJobRecord) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet(SheetName)
	if err != nil {
		return eris.Wrap(err, "export: add xlsx sheet")
	}

	addRow(sheet, model.JobbankColumns)
	for _, r := range rows {
		addRecord(sheet, r)
	}

	return eris.Wrap(f.Save(path), "export: save xlsx")
}

func addRow(sheet *xlsx.Sheet, values []string) {
	row := sheet.AddRow()
	for _, v := range values {
		row.AddCell().SetString(v)
	}
}

// Column positions of the salary bounds in model.JobbankColumns.
const (
	lowerCol = 8
	upperCol = 9
)

// addRecord writes r with numeric bounds as number cells so the sheet sorts
// and sums them. N/A and verbatim year text stay strings.
func addRecord(sheet *xlsx.Sheet, r model.NormalizedJobRecord) {
	lower, hasLower := r.LowerAmount()
	upper, hasUpper := r.UpperAmount()

	row := sheet.AddRow()
	for i, v := range r.Strings() {
		cell := row.AddCell()
		switch {
		case i == lowerCol && hasLower:
			cell.SetFloat(lower)
		case i == upperCol && hasUpper:
			cell.SetFloat(upper)
		default:
			cell.SetString(v)
		}
	}
}

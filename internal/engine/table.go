package engine

import (
	"io"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/xuri/excelize/v2"

	"plantmap/internal/models"
)

// exportSheet names the sheet of exported workbooks.
const exportSheet = "Plants"

// MissingDisplayColumns returns the display columns absent from the source.
func MissingDisplayColumns(cs *ColumnStore) []models.Column {
	var missing []models.Column
	for _, col := range models.DisplayColumns {
		if !cs.HasColumn(col) {
			missing = append(missing, col)
		}
	}
	return missing
}

// MissingColumnsWarning formats the warning shown instead of the table.
func MissingColumnsWarning(missing []models.Column) string {
	names := make([]string, len(missing))
	for i, m := range missing {
		names[i] = string(m)
	}
	return "Missing columns in dataset: " + strings.Join(names, ", ")
}

// DetailTable projects cs onto the display columns. It fails when a display
// column is absent from the source.
func DetailTable(cs *ColumnStore) (*models.DetailTable, error) {
	if missing := MissingDisplayColumns(cs); len(missing) > 0 {
		return nil, eris.New(MissingColumnsWarning(missing))
	}

	t := &models.DetailTable{
		Columns: make([]string, len(models.DisplayColumns)),
		Rows:    make([][]string, len(cs.Units)),
	}
	for i, col := range models.DisplayColumns {
		t.Columns[i] = string(col)
	}
	for r := range cs.Units {
		u := &cs.Units[r]
		row := make([]string, len(models.DisplayColumns))
		for i, col := range models.DisplayColumns {
			row[i] = cellText(u, col)
		}
		t.Rows[r] = row
	}
	return t, nil
}

func cellText(u *models.PlantUnit, col models.Column) string {
	if !col.IsNumeric() {
		return u.Text(col)
	}
	return FormatNumber(u.Number(col), -1)
}

// ExportXLSX writes the display columns of cs as a workbook. Numbers are
// written as numeric cells and missing numbers as blanks.
func ExportXLSX(w io.Writer, cs *ColumnStore) error {
	if missing := MissingDisplayColumns(cs); len(missing) > 0 {
		return eris.New(MissingColumnsWarning(missing))
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return eris.Wrap(err, "export: rename sheet")
	}

	header := make([]interface{}, len(models.DisplayColumns))
	for i, col := range models.DisplayColumns {
		header[i] = string(col)
	}
	if err := f.SetSheetRow(exportSheet, "A1", &header); err != nil {
		return eris.Wrap(err, "export: write header")
	}

	for r := range cs.Units {
		u := &cs.Units[r]
		row := make([]interface{}, len(models.DisplayColumns))
		for i, col := range models.DisplayColumns {
			if col.IsNumeric() {
				if v := u.Number(col); v != nil {
					row[i] = *v
				}
				continue
			}
			row[i] = u.Text(col)
		}
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return eris.Wrap(err, "export: cell name")
		}
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return eris.Wrapf(err, "export: write row %d", r+2)
		}
	}

	if err := f.SetPanes(exportSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return eris.Wrap(err, "export: freeze header")
	}

	if _, err := f.WriteTo(w); err != nil {
		return eris.Wrap(err, "export: write workbook")
	}
	return nil
}

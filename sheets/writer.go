// sheets/writer.go
package sheets

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"
	"github.com/xuri/excelize/v2"

	"github.com/gewnthar/adcvd/models"
)

const sheetName = "Sheet1"

// Write encodes the table's rows to w in the given format.
func Write(w io.Writer, table *models.ResultTable, format Format) error {
	switch format {
	case FormatXLSX:
		return WriteXLSX(w, table)
	case FormatCSV:
		return WriteCSV(w, table)
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// header returns the output columns, with Error appended when the table has failed lookups.
func header(table *models.ResultTable) []string {
	cols := append([]string(nil), models.Columns...)
	if table.HasErrors() {
		cols = append(cols, models.ErrorColumn)
	}
	return cols
}

// WriteXLSX writes the table as a single-sheet workbook.
func WriteXLSX(w io.Writer, table *models.ResultTable) error {
	f := excelize.NewFile()
	defer f.Close()

	cols := header(table)
	withError := len(cols) > len(models.Columns)

	headerRow := make([]interface{}, len(cols))
	for i, c := range cols {
		headerRow[i] = c
	}
	if err := f.SetSheetRow(sheetName, "A1", &headerRow); err != nil {
		return eris.Wrap(err, "failed to write header row")
	}

	for i, row := range table.Rows() {
		values := row.Values(withError)
		cells := make([]interface{}, len(values))
		for j, v := range values {
			cells[j] = v
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return eris.Wrap(err, "failed to compute cell name")
		}
		if err := f.SetSheetRow(sheetName, cell, &cells); err != nil {
			return eris.Wrapf(err, "failed to write row %d", i+2)
		}
	}

	if err := f.Write(w); err != nil {
		return eris.Wrap(err, "failed to write workbook")
	}
	return nil
}

// WriteCSV writes the table as CSV with a header line.
func WriteCSV(w io.Writer, table *models.ResultTable) error {
	cw := csv.NewWriter(w)
	enc := csvutil.NewEncoder(cw)
	cols := header(table)
	enc.SetHeader(cols)

	rows := table.Rows()
	if len(rows) == 0 {
		if err := cw.Write(cols); err != nil {
			return eris.Wrap(err, "failed to write CSV header")
		}
	}
	for _, row := range rows {
		if err := enc.Encode(row); err != nil {
			return eris.Wrap(err, "failed to encode CSV row")
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return eris.Wrap(err, "failed to flush CSV")
	}
	return nil
}

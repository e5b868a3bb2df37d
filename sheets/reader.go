// sheets/reader.go
package sheets

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"
	"github.com/xuri/excelize/v2"

	"github.com/gewnthar/adcvd/models"
	"github.com/gewnthar/adcvd/utils"
)

// MessageIDColumn is the header of the input column holding message IDs.
const MessageIDColumn = "Message_ID"

// ErrMissingColumn is returned when the input has no Message_ID header.
var ErrMissingColumn = errors.New("input has no " + MessageIDColumn + " column")

// ErrUnsupportedFormat is returned for file names that are neither .xlsx nor .csv.
var ErrUnsupportedFormat = errors.New("unsupported file format, expected .xlsx or .csv")

// Format is a tabular file format.
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
)

// FormatFromName picks the format from a file name's extension.
func FormatFromName(name string) (Format, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx":
		return FormatXLSX, nil
	case ".csv":
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, name)
	}
}

// ReadMessageIDs reads the Message_ID column from r in input order.
// Blank cells are skipped and numeric IDs normalised.
func ReadMessageIDs(r io.Reader, format Format) ([]models.MessageID, error) {
	var raw []string
	var err error
	switch format {
	case FormatXLSX:
		raw, err = readXLSXColumn(r)
	case FormatCSV:
		raw, err = readCSVColumn(r)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return nil, err
	}

	ids := make([]models.MessageID, 0, len(raw))
	for _, v := range raw {
		if id := utils.NormalizeMessageID(v); id != "" {
			ids = append(ids, models.MessageID(id))
		}
	}
	return ids, nil
}

// readXLSXColumn reads the Message_ID column of the workbook's first sheet.
func readXLSXColumn(r io.Reader) ([]string, error) {
	// Raw values keep long numeric IDs out of display formatting (scientific notation).
	f, err := excelize.OpenReader(r, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, eris.Wrap(err, "failed to open workbook")
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrMissingColumn
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, eris.Wrapf(err, "failed to read sheet %s", sheets[0])
	}
	if len(rows) == 0 {
		return nil, ErrMissingColumn
	}

	col := -1
	for i, h := range rows[0] {
		if strings.TrimSpace(h) == MessageIDColumn {
			col = i
			break
		}
	}
	if col < 0 {
		return nil, ErrMissingColumn
	}

	values := make([]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		// GetRows trims trailing empty cells, so short rows mean a blank ID.
		if col < len(row) {
			values = append(values, row[col])
		}
	}
	return values, nil
}

type messageIDRow struct {
	MessageID string `csv:"Message_ID"`
}

func readCSVColumn(r io.Reader) ([]string, error) {
	dec, err := csvutil.NewDecoder(csv.NewReader(r))
	if errors.Is(err, io.EOF) {
		return nil, ErrMissingColumn
	}
	if err != nil {
		return nil, eris.Wrap(err, "failed to create CSV decoder")
	}

	found := false
	for _, h := range dec.Header() {
		if h == MessageIDColumn {
			found = true
			break
		}
	}
	if !found {
		return nil, ErrMissingColumn
	}

	var values []string
	for {
		var row messageIDRow
		if err := dec.Decode(&row); err == io.EOF {
			break
		} else if err != nil {
			return nil, eris.Wrap(err, "failed to decode CSV row")
		}
		values = append(values, row.MessageID)
	}
	return values, nil
}

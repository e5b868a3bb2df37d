package sheets

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/gewnthar/adcvd/models"
)

func workbook(t *testing.T, rows [][]interface{}) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		r := row
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &r))
	}
	buf := &bytes.Buffer{}
	require.NoError(t, f.Write(buf))
	return buf
}

func sampleTable() *models.ResultTable {
	table := &models.ResultTable{}
	table.Append(models.MessageResult{
		MessageID: "4123401",
		State:     models.StateDone,
		Records: []models.CaseRecord{{
			MessageID:       "4123401",
			Exporter:        "Acme Corp",
			Producer:        models.ProducerNotMentioned,
			CaseNumber:      "A-570-909-001",
			CashDepositRate: "8.91%",
			ProductName:     "steel nails",
			Country:         "Vietnam",
			Category:        "AD Cash Deposit",
			EffectiveDate:   "05/01/2024",
		}},
	})
	return table
}

func TestFormatFromName(t *testing.T) {
	f, err := FormatFromName("ids.XLSX")
	require.NoError(t, err)
	assert.Equal(t, FormatXLSX, f)

	f, err = FormatFromName("/tmp/ids.csv")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, f)

	_, err = FormatFromName("ids.xls")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestReadMessageIDs_XLSX(t *testing.T) {
	buf := workbook(t, [][]interface{}{
		{"Notes", "Message_ID"},
		{"first", 4123401},
		{"blank id"},
		{"second", "4123402.0"},
		{"third", " 4123403 "},
	})

	ids, err := ReadMessageIDs(buf, FormatXLSX)
	require.NoError(t, err)
	assert.Equal(t, []models.MessageID{"4123401", "4123402", "4123403"}, ids)
}

func TestReadMessageIDs_XLSXLongNumericIDs(t *testing.T) {
	buf := workbook(t, [][]interface{}{
		{"Message_ID"},
		{int64(412340112345678)},
		{float64(123456789012)},
	})

	ids, err := ReadMessageIDs(buf, FormatXLSX)
	require.NoError(t, err)
	assert.Equal(t, []models.MessageID{"412340112345678", "123456789012"}, ids)
}

func TestReadMessageIDs_XLSXMissingColumn(t *testing.T) {
	buf := workbook(t, [][]interface{}{{"ID"}, {1}})

	_, err := ReadMessageIDs(buf, FormatXLSX)
	assert.ErrorIs(t, err, ErrMissingColumn)
}

func TestReadMessageIDs_CSV(t *testing.T) {
	in := "Message_ID,Comment\n4123401,a\n,skip\n4123402,b\n"

	ids, err := ReadMessageIDs(strings.NewReader(in), FormatCSV)
	require.NoError(t, err)
	assert.Equal(t, []models.MessageID{"4123401", "4123402"}, ids)
}

func TestReadMessageIDs_CSVErrors(t *testing.T) {
	_, err := ReadMessageIDs(strings.NewReader("Other\n1\n"), FormatCSV)
	assert.ErrorIs(t, err, ErrMissingColumn)

	_, err = ReadMessageIDs(strings.NewReader(""), FormatCSV)
	assert.ErrorIs(t, err, ErrMissingColumn)
}

func TestWriteXLSX(t *testing.T) {
	buf := &bytes.Buffer{}
	require.NoError(t, WriteXLSX(buf, sampleTable()))

	f, err := excelize.OpenReader(buf)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Sheet1")
	require.NoError(t, err)

	require.Len(t, rows, 2)
	assert.Equal(t, models.Columns, rows[0])
	assert.Equal(t, []string{"4123401", "Acme Corp", "Not mentioned", "A-570-909-001", "8.91%",
		"steel nails", "Vietnam", "AD Cash Deposit", "05/01/2024"}, rows[1])
}

func TestWriteXLSXWithErrorRows(t *testing.T) {
	table := sampleTable()
	table.Append(models.MessageResult{
		MessageID: "4123409",
		State:     models.StateErrored,
		FailedIn:  models.StateSearching,
		Err:       errors.New("page crashed"),
	})

	buf := &bytes.Buffer{}
	require.NoError(t, WriteXLSX(buf, table))

	f, err := excelize.OpenReader(buf)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Sheet1")
	require.NoError(t, err)

	require.Len(t, rows, 3)
	assert.Equal(t, models.ErrorColumn, rows[0][len(rows[0])-1])
	assert.Equal(t, "4123409", rows[2][0])
	assert.Equal(t, "searching: page crashed", rows[2][len(models.Columns)])
}

func TestWriteCSV(t *testing.T) {
	buf := &bytes.Buffer{}
	require.NoError(t, WriteCSV(buf, sampleTable()))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, strings.Join(models.Columns, ","), lines[0])
	assert.Equal(t, "4123401,Acme Corp,Not mentioned,A-570-909-001,8.91%,steel nails,Vietnam,AD Cash Deposit,05/01/2024", lines[1])
}

func TestWriteCSVEmptyTable(t *testing.T) {
	buf := &bytes.Buffer{}
	require.NoError(t, Write(buf, &models.ResultTable{}, FormatCSV))
	assert.Equal(t, strings.Join(models.Columns, ",")+"\n", buf.String())
}

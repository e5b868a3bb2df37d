// models/case_record.go
package models

// ProducerNotMentioned is used when a body block has no Producer line.
const ProducerNotMentioned = "Not mentioned"

// CaseRecord is one exporter block recovered from a message body.
// ProductName and Country are empty when the title heuristics found nothing.
type CaseRecord struct {
	MessageID       MessageID
	Exporter        string
	Producer        string
	CaseNumber      string // A-###-###-###
	CashDepositRate string // digits(.digits)?%
	ProductName     string
	Country         string
	Category        string
	EffectiveDate   string
}

// ResultRow is one output line. Error rows only carry MessageID and Error.
// CSV tags match the column headers of the downloadable spreadsheet.
type ResultRow struct {
	MessageID       string `csv:"Message_ID"`
	Exporter        string `csv:"Exporter"`
	Producer        string `csv:"Producer"`
	CaseNumber      string `csv:"Case number"`
	CashDepositRate string `csv:"Cash deposit rate"`
	ProductName     string `csv:"Product Name"`
	Country         string `csv:"Country"`
	Category        string `csv:"Category"`
	EffectiveDate   string `csv:"Effective Date"`
	Error           string `csv:"Error"`
}

// IsError reports whether the row describes a failed lookup.
func (r ResultRow) IsError() bool { return r.Error != "" }

// Columns is the header of the output table, without the Error column.
var Columns = []string{
	"Message_ID",
	"Exporter",
	"Producer",
	"Case number",
	"Cash deposit rate",
	"Product Name",
	"Country",
	"Category",
	"Effective Date",
}

// ErrorColumn is appended to Columns when a table holds error rows.
const ErrorColumn = "Error"

// Values returns the row's cells in Columns order, plus Error when withError is set.
func (r ResultRow) Values(withError bool) []string {
	v := []string{
		r.MessageID,
		r.Exporter,
		r.Producer,
		r.CaseNumber,
		r.CashDepositRate,
		r.ProductName,
		r.Country,
		r.Category,
		r.EffectiveDate,
	}
	if withError {
		v = append(v, r.Error)
	}
	return v
}

func rowFromRecord(rec CaseRecord) ResultRow {
	return ResultRow{
		MessageID:       string(rec.MessageID),
		Exporter:        rec.Exporter,
		Producer:        rec.Producer,
		CaseNumber:      rec.CaseNumber,
		CashDepositRate: rec.CashDepositRate,
		ProductName:     rec.ProductName,
		Country:         rec.Country,
		Category:        rec.Category,
		EffectiveDate:   rec.EffectiveDate,
	}
}

// scraper/case_parser.go
package scraper

import (
	"regexp"
	"strings"

	"github.com/gewnthar/adcvd/models"
)

// spaceRun is an optional gap between tokens. It takes Unicode spaces as well,
// the portal sometimes puts a non-breaking space after a label.
const spaceRun = `[\s\p{Z}]*`

// caseRecordRegex matches one exporter block of an ADCVD message body:
//
//	Exporter: <text> [Producer: <text>] Case number: A-###-###-### Cash deposit rate: <n>%
//
// (?s) lets the lazy text captures run across line breaks.
var caseRecordRegex = regexp.MustCompile(
	`(?s)Exporter:` + spaceRun + `(?P<Exporter>.*?)` + spaceRun +
		`(?:Producer:` + spaceRun + `(?P<Producer>.*?)` + spaceRun + `)?` +
		`Case number:` + spaceRun + `(?P<CaseNumber>A-\d{3}-\d{3}-\d{3})` + spaceRun +
		`Cash deposit rate:` + spaceRun + `(?P<CashRate>\d+(\.\d+)?%)`,
)

var (
	exporterIdx   = caseRecordRegex.SubexpIndex("Exporter")
	producerIdx   = caseRecordRegex.SubexpIndex("Producer")
	caseNumberIdx = caseRecordRegex.SubexpIndex("CaseNumber")
	cashRateIdx   = caseRecordRegex.SubexpIndex("CashRate")
)

// ParseCaseRecords returns one CaseRecord per non-overlapping match in body,
// in order of appearance. Ancillary fields (message ID, title-derived fields,
// category, effective date) are copied from base. A body with no match
// yields nil.
func ParseCaseRecords(body string, base models.CaseRecord) []models.CaseRecord {
	matches := caseRecordRegex.FindAllStringSubmatch(body, -1)
	if len(matches) == 0 {
		return nil
	}

	records := make([]models.CaseRecord, 0, len(matches))
	for _, m := range matches {
		rec := base
		rec.Exporter = strings.TrimSpace(m[exporterIdx])
		rec.Producer = strings.TrimSpace(m[producerIdx])
		if rec.Producer == "" {
			rec.Producer = models.ProducerNotMentioned
		}
		rec.CaseNumber = strings.TrimSpace(m[caseNumberIdx])
		rec.CashDepositRate = strings.TrimSpace(m[cashRateIdx])
		records = append(records, rec)
	}
	return records
}

// models/message.go
package models

// NotFound stands in for a field or body that did not appear within the wait bound.
const NotFound = "Not found"

// Header labels as they appear in the portal's details table.
const (
	LabelCategory      = "Category"
	LabelEffectiveDate = "Effective Date"
	LabelMessageTitle  = "Message Title"
)

// MessageID identifies one ADCVD message on the portal.
type MessageID string

// MessageDetails is everything scraped for one message lookup.
// Each field holds either the scraped text or NotFound.
type MessageDetails struct {
	Category      string
	EffectiveDate string
	Title         string
	Body          string
}

// LookupState tracks where a single message lookup is.
type LookupState int

const (
	StateSearching LookupState = iota
	StateWaitingForResults
	StateExtracting
	StateDone
	StateErrored
)

func (s LookupState) String() string {
	switch s {
	case StateSearching:
		return "searching"
	case StateWaitingForResults:
		return "waiting for results"
	case StateExtracting:
		return "extracting"
	case StateDone:
		return "done"
	case StateErrored:
		return "errored"
	default:
		return "unknown"
	}
}

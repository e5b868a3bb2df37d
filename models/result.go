// models/result.go
package models

// MessageResult is the outcome of one lookup: either Records (possibly empty)
// or Err, never both. State is the state the lookup ended in; for failed
// lookups FailedIn is the state that was active when it failed.
type MessageResult struct {
	MessageID MessageID
	State     LookupState
	FailedIn  LookupState
	Details   MessageDetails
	Records   []CaseRecord
	Err       error
}

// Failed reports whether the lookup ended in StateErrored.
func (r MessageResult) Failed() bool { return r.Err != nil }

// ErrorDescription is the text shown in the Error column for a failed lookup.
func (r MessageResult) ErrorDescription() string {
	if r.Err == nil {
		return ""
	}
	return r.FailedIn.String() + ": " + r.Err.Error()
}

// ResultTable collects per-message results in input order.
type ResultTable struct {
	Results []MessageResult
}

// Append adds the result for the next message in input order.
func (t *ResultTable) Append(r MessageResult) {
	t.Results = append(t.Results, r)
}

// Rows flattens the table: one row per case record, one row per failed lookup.
// Messages with no records and no error contribute nothing.
func (t *ResultTable) Rows() []ResultRow {
	var rows []ResultRow
	for _, r := range t.Results {
		if r.Failed() {
			rows = append(rows, ResultRow{MessageID: string(r.MessageID), Error: r.ErrorDescription()})
			continue
		}
		for _, rec := range r.Records {
			rows = append(rows, rowFromRecord(rec))
		}
	}
	return rows
}

// HasErrors reports whether any lookup failed.
func (t *ResultTable) HasErrors() bool {
	for _, r := range t.Results {
		if r.Failed() {
			return true
		}
	}
	return false
}

// RecordCount is the number of case records across all messages.
func (t *ResultTable) RecordCount() int {
	n := 0
	for _, r := range t.Results {
		n += len(r.Records)
	}
	return n
}

// ErrorCount is the number of failed lookups.
func (t *ResultTable) ErrorCount() int {
	n := 0
	for _, r := range t.Results {
		if r.Failed() {
			n++
		}
	}
	return n
}

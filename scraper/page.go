// scraper/page.go
package scraper

import (
	"context"
	"errors"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/gewnthar/adcvd/models"
)

// ErrWaitTimeout is returned by a Page when an element did not appear within the wait bound.
var ErrWaitTimeout = errors.New("timed out waiting for element")

// Page is the portal as seen by the extractor: a search box, a search
// trigger, a details table keyed by header labels and a message body control.
// Implementations block for at most timeout in the Wait* methods and
// report expiry as ErrWaitTimeout.
type Page interface {
	// SubmitSearch replaces the search input with messageID and triggers the search.
	SubmitSearch(messageID models.MessageID) error
	// WaitDetailsTable waits until the details table has a row for label
	// and returns the table's HTML.
	WaitDetailsTable(label string, timeout time.Duration) (string, error)
	// WaitMessageBody waits for the body control and returns its raw value.
	WaitMessageBody(timeout time.Duration) (string, error)
	Close() error
}

// SessionOpener starts a browser session positioned on the portal search page.
type SessionOpener func(ctx context.Context) (Page, error)

// FieldLocator reads labelled values out of the details table.
type FieldLocator struct {
	page    Page
	timeout time.Duration
	logger  *zap.Logger
}

func NewFieldLocator(page Page, timeout time.Duration, logger *zap.Logger) *FieldLocator {
	return &FieldLocator{page: page, timeout: timeout, logger: logger}
}

// Locate returns the value for label, or models.NotFound when the value did
// not show up within the wait bound. Only unexpected browser faults are errors.
func (l *FieldLocator) Locate(label string) (string, error) {
	tableHTML, err := l.page.WaitDetailsTable(label, l.timeout)
	if errors.Is(err, ErrWaitTimeout) {
		l.logger.Debug("scraper: field not found", zap.String("label", label), zap.Duration("timeout", l.timeout))
		return models.NotFound, nil
	}
	if err != nil {
		return "", eris.Wrapf(err, "failed to read field %q", label)
	}

	value, ok, err := DetailValue(tableHTML, label)
	if err != nil {
		return "", err
	}
	if !ok {
		l.logger.Debug("scraper: label missing from details table", zap.String("label", label))
		return models.NotFound, nil
	}
	return value, nil
}

// BodyFetcher reads the raw message body.
type BodyFetcher struct {
	page    Page
	timeout time.Duration
	logger  *zap.Logger
}

func NewBodyFetcher(page Page, timeout time.Duration, logger *zap.Logger) *BodyFetcher {
	return &BodyFetcher{page: page, timeout: timeout, logger: logger}
}

// Fetch returns the message body text, or models.NotFound on timeout.
func (f *BodyFetcher) Fetch() (string, error) {
	body, err := f.page.WaitMessageBody(f.timeout)
	if errors.Is(err, ErrWaitTimeout) {
		f.logger.Debug("scraper: message body not found", zap.Duration("timeout", f.timeout))
		return models.NotFound, nil
	}
	if err != nil {
		return "", eris.Wrap(err, "failed to read message body")
	}
	return body, nil
}

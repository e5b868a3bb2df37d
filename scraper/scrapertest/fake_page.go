// Package scrapertest provides an in-memory scraper.Page for tests.
package scrapertest

import (
	"context"
	"html"
	"strings"
	"sync"
	"time"

	"github.com/gewnthar/adcvd/models"
	"github.com/gewnthar/adcvd/scraper"
)

// Message is what the fake portal shows after searching for one ID.
// Fields missing from Fields time out; a nil Body times out.
type Message struct {
	Fields map[string]string
	Body   *string

	SearchErr error // returned by SubmitSearch
	FieldErr  error // returned by WaitDetailsTable
	BodyErr   error // returned by WaitMessageBody
	Panic     string
}

// Body is a helper for building Message literals.
func Body(s string) *string { return &s }

// Page is a fake portal page keyed by message ID.
type Page struct {
	mu       sync.Mutex
	messages map[models.MessageID]Message
	current  *Message

	Searches []models.MessageID
	Timeouts []time.Duration
	Closed   bool
}

var _ scraper.Page = (*Page)(nil)

func NewPage(messages map[models.MessageID]Message) *Page {
	return &Page{messages: messages}
}

// Opener returns a SessionOpener handing out p, or err when set.
func (p *Page) Opener(err error) scraper.SessionOpener {
	return func(context.Context) (scraper.Page, error) {
		if err != nil {
			return nil, err
		}
		return p, nil
	}
}

func (p *Page) SubmitSearch(id models.MessageID) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Searches = append(p.Searches, id)
	msg, ok := p.messages[id]
	if !ok {
		// unknown IDs leave the page empty, like a search with no hits
		p.current = &Message{}
		return nil
	}
	if msg.Panic != "" {
		panic(msg.Panic)
	}
	p.current = &msg
	return msg.SearchErr
}

func (p *Page) WaitDetailsTable(label string, timeout time.Duration) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Timeouts = append(p.Timeouts, timeout)
	if p.current == nil {
		return "", scraper.ErrWaitTimeout
	}
	if p.current.FieldErr != nil {
		return "", p.current.FieldErr
	}
	if _, ok := p.current.Fields[label]; !ok {
		return "", scraper.ErrWaitTimeout
	}
	return DetailsTableHTML(p.current.Fields), nil
}

func (p *Page) WaitMessageBody(timeout time.Duration) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Timeouts = append(p.Timeouts, timeout)
	if p.current == nil {
		return "", scraper.ErrWaitTimeout
	}
	if p.current.BodyErr != nil {
		return "", p.current.BodyErr
	}
	if p.current.Body == nil {
		return "", scraper.ErrWaitTimeout
	}
	return *p.current.Body, nil
}

func (p *Page) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Closed = true
	return nil
}

// DetailsTableHTML renders fields the way the portal lays out its message header table.
func DetailsTableHTML(fields map[string]string) string {
	var b strings.Builder
	b.WriteString(`<table id="detailsMessageHeaderTables"><tbody>`)
	for _, label := range []string{models.LabelCategory, models.LabelEffectiveDate, models.LabelMessageTitle} {
		if v, ok := fields[label]; ok {
			b.WriteString("<tr><th>\n  " + html.EscapeString(label) + ":\n</th><td>" + html.EscapeString(v) + "</td></tr>")
		}
	}
	for label, v := range fields {
		switch label {
		case models.LabelCategory, models.LabelEffectiveDate, models.LabelMessageTitle:
			continue
		}
		b.WriteString("<tr><th>" + html.EscapeString(label) + "</th><td>" + html.EscapeString(v) + "</td></tr>")
	}
	b.WriteString("</tbody></table>")
	return b.String()
}

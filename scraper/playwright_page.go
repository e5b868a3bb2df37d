// scraper/playwright_page.go
package scraper

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	pw "github.com/playwright-community/playwright-go"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/gewnthar/adcvd/config"
	"github.com/gewnthar/adcvd/models"
)

// PlaywrightPage drives the portal in a headless Chromium through playwright-go.
// It owns the playwright driver, the browser and the page; Close releases all three.
type PlaywrightPage struct {
	pw        *pw.Playwright
	browser   pw.Browser
	page      pw.Page
	selectors config.ScraperSelectorsConfig
	logger    *zap.Logger
}

// NewPlaywrightOpener returns a SessionOpener that launches a fresh browser
// per batch and navigates to the configured portal URL.
func NewPlaywrightOpener(cfg *config.Config, logger *zap.Logger) SessionOpener {
	return func(ctx context.Context) (Page, error) {
		page, err := OpenPlaywrightPage(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		return page, nil
	}
}

// OpenPlaywrightPage starts playwright, launches Chromium and loads the portal.
// On any failure everything started so far is torn down again.
func OpenPlaywrightPage(_ context.Context, cfg *config.Config, logger *zap.Logger) (_ *PlaywrightPage, err error) {
	if cfg.Portal.InstallBrowsers {
		logger.Info("scraper: installing playwright chromium")
		if err := pw.Install(&pw.RunOptions{Browsers: []string{"chromium"}}); err != nil {
			return nil, eris.Wrap(err, "failed to install playwright chromium")
		}
	}

	driver, err := pw.Run()
	if err != nil {
		return nil, eris.Wrap(err, "failed to start playwright")
	}
	p := &PlaywrightPage{pw: driver, selectors: cfg.ScraperSelectors, logger: logger}
	defer func() {
		if err != nil {
			if closeErr := p.Close(); closeErr != nil {
				logger.Warn("scraper: cleanup after failed open", zap.Error(closeErr))
			}
		}
	}()

	p.browser, err = driver.Chromium.Launch(pw.BrowserTypeLaunchOptions{
		Headless: pw.Bool(cfg.Portal.Headless),
		Args:     []string{"--no-sandbox", "--disable-dev-shm-usage"},
	})
	if err != nil {
		return nil, eris.Wrap(err, "failed to launch chromium")
	}

	p.page, err = p.browser.NewPage(pw.BrowserNewPageOptions{
		Viewport: &pw.Size{Width: 1024, Height: 768},
	})
	if err != nil {
		return nil, eris.Wrap(err, "failed to create page")
	}
	p.page.SetDefaultTimeout(float64(cfg.Portal.WaitTimeout.Milliseconds()))

	logger.Info("scraper: opening portal", zap.String("url", cfg.Portal.URL))
	if _, err = p.page.Goto(cfg.Portal.URL, pw.PageGotoOptions{
		WaitUntil: pw.WaitUntilStateDomcontentloaded,
	}); err != nil {
		return nil, eris.Wrapf(err, "failed to navigate to %s", cfg.Portal.URL)
	}
	return p, nil
}

func (p *PlaywrightPage) SubmitSearch(messageID models.MessageID) error {
	p.logger.Debug("scraper: submitting search", zap.String("message_id", string(messageID)))
	input := p.page.Locator(p.selectors.MessageInput).First()
	if err := input.WaitFor(pw.LocatorWaitForOptions{State: pw.WaitForSelectorStateAttached}); err != nil {
		return eris.Wrap(err, "search input not available")
	}
	// Fill clears the previous value before typing.
	if err := input.Fill(string(messageID)); err != nil {
		return eris.Wrap(err, "failed to fill search input")
	}
	if err := p.page.Locator(p.selectors.SearchButton).First().Click(); err != nil {
		return eris.Wrap(err, "failed to click search")
	}
	return nil
}

func (p *PlaywrightPage) WaitDetailsTable(label string, timeout time.Duration) (string, error) {
	table := p.page.Locator(p.selectors.DetailsTable).First()
	cell := table.Locator(fmt.Sprintf("xpath=.//th[contains(normalize-space(), %s)]/following-sibling::td", xpathLiteral(label)))
	if err := waitAttached(cell, timeout); err != nil {
		return "", err
	}
	inner, err := table.InnerHTML()
	if err != nil {
		return "", eris.Wrap(err, "failed to read details table")
	}
	return "<table>" + inner + "</table>", nil
}

func (p *PlaywrightPage) WaitMessageBody(timeout time.Duration) (string, error) {
	body := p.page.Locator(p.selectors.MessageBody).First()
	if err := waitAttached(body, timeout); err != nil {
		return "", err
	}
	value, err := body.InputValue()
	if err != nil {
		return "", eris.Wrap(err, "failed to read message body value")
	}
	return value, nil
}

func waitAttached(loc pw.Locator, timeout time.Duration) error {
	err := loc.First().WaitFor(pw.LocatorWaitForOptions{
		State:   pw.WaitForSelectorStateAttached,
		Timeout: pw.Float(float64(timeout.Milliseconds())),
	})
	if errors.Is(err, pw.ErrTimeout) {
		return ErrWaitTimeout
	}
	return err
}

// Close shuts down the page, the browser and the playwright driver.
func (p *PlaywrightPage) Close() error {
	var errs []error
	if p.page != nil {
		if err := p.page.Close(); err != nil {
			errs = append(errs, eris.Wrap(err, "close page"))
		}
	}
	if p.browser != nil {
		if err := p.browser.Close(); err != nil {
			errs = append(errs, eris.Wrap(err, "close browser"))
		}
	}
	if p.pw != nil {
		if err := p.pw.Stop(); err != nil {
			errs = append(errs, eris.Wrap(err, "stop playwright"))
		}
	}
	return errors.Join(errs...)
}

// xpathLiteral quotes s for use inside an XPath expression.
func xpathLiteral(s string) string {
	if !strings.Contains(s, "'") {
		return "'" + s + "'"
	}
	if !strings.Contains(s, `"`) {
		return `"` + s + `"`
	}
	parts := strings.Split(s, "'")
	return "concat('" + strings.Join(parts, `', "'", '`) + "')"
}

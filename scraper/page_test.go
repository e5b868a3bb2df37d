package scraper_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/gewnthar/adcvd/models"
	"github.com/gewnthar/adcvd/scraper"
	"github.com/gewnthar/adcvd/scraper/scrapertest"
)

func newPage(t *testing.T, msg scrapertest.Message) *scrapertest.Page {
	t.Helper()
	page := scrapertest.NewPage(map[models.MessageID]scrapertest.Message{"1": msg})
	require.NoError(t, page.SubmitSearch("1"))
	return page
}

func TestFieldLocator(t *testing.T) {
	t.Run("returns value and passes the wait bound", func(t *testing.T) {
		page := newPage(t, scrapertest.Message{Fields: map[string]string{
			models.LabelCategory: "AD Cash Deposit",
		}})
		loc := scraper.NewFieldLocator(page, 7*time.Second, zap.NewNop())

		got, err := loc.Locate(models.LabelCategory)
		require.NoError(t, err)
		assert.Equal(t, "AD Cash Deposit", got)
		assert.Equal(t, []time.Duration{7 * time.Second}, page.Timeouts)
	})

	t.Run("timeout becomes sentinel", func(t *testing.T) {
		page := newPage(t, scrapertest.Message{})
		loc := scraper.NewFieldLocator(page, time.Second, zap.NewNop())

		got, err := loc.Locate(models.LabelEffectiveDate)
		require.NoError(t, err)
		assert.Equal(t, models.NotFound, got)
	})

	t.Run("browser fault is an error", func(t *testing.T) {
		page := newPage(t, scrapertest.Message{FieldErr: errors.New("target closed")})
		loc := scraper.NewFieldLocator(page, time.Second, zap.NewNop())

		_, err := loc.Locate(models.LabelMessageTitle)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "target closed")
	})
}

func TestBodyFetcher(t *testing.T) {
	t.Run("returns raw value", func(t *testing.T) {
		raw := "  Exporter: Acme\n\tCase number: A-123-456-789\n"
		page := newPage(t, scrapertest.Message{Body: scrapertest.Body(raw)})

		got, err := scraper.NewBodyFetcher(page, time.Second, zap.NewNop()).Fetch()
		require.NoError(t, err)
		assert.Equal(t, raw, got)
	})

	t.Run("timeout becomes sentinel", func(t *testing.T) {
		page := newPage(t, scrapertest.Message{})

		got, err := scraper.NewBodyFetcher(page, time.Second, zap.NewNop()).Fetch()
		require.NoError(t, err)
		assert.Equal(t, models.NotFound, got)
	})

	t.Run("browser fault is an error", func(t *testing.T) {
		page := newPage(t, scrapertest.Message{BodyErr: errors.New("detached")})

		_, err := scraper.NewBodyFetcher(page, time.Second, zap.NewNop()).Fetch()
		require.Error(t, err)
	})
}

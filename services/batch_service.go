// services/batch_service.go
package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/gewnthar/adcvd/analyzer"
	"github.com/gewnthar/adcvd/config"
	"github.com/gewnthar/adcvd/metrics"
	"github.com/gewnthar/adcvd/models"
	"github.com/gewnthar/adcvd/scraper"
)

// BatchService looks up message IDs one at a time on the portal and turns
// each message into case records. A batch owns one browser session from
// start to finish.
type BatchService struct {
	open        scraper.SessionOpener
	tagger      analyzer.EntityTagger
	waitTimeout time.Duration
	settleDelay time.Duration
	sleep       func(time.Duration)
	metrics     *metrics.Metrics
	logger      *zap.Logger
}

type Option func(*BatchService)

// WithSleep replaces the function used for the settle delay.
func WithSleep(fn func(time.Duration)) Option {
	return func(s *BatchService) { s.sleep = fn }
}

func NewBatchService(
	open scraper.SessionOpener,
	tagger analyzer.EntityTagger,
	portal config.PortalConfig,
	m *metrics.Metrics,
	logger *zap.Logger,
	opts ...Option,
) *BatchService {
	s := &BatchService{
		open:        open,
		tagger:      tagger,
		waitTimeout: portal.WaitTimeout,
		settleDelay: portal.SettleDelay,
		sleep:       time.Sleep,
		metrics:     m,
		logger:      logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RunBatch processes ids in order and returns one result per ID.
// Failures of individual lookups are recorded in the table; only failing to
// open the browser session aborts the run. The session is closed on return.
// Once started, a batch runs over every ID.
func (s *BatchService) RunBatch(ctx context.Context, ids []models.MessageID) (*models.ResultTable, error) {
	log := s.logger.With(zap.String("batch_id", uuid.NewString()))
	log.Info("batch: starting", zap.Int("messages", len(ids)))

	page, err := s.open(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "failed to open browser session")
	}
	defer func() {
		if err := page.Close(); err != nil {
			log.Warn("batch: failed to close browser session", zap.Error(err))
		}
	}()

	start := time.Now()
	s.metrics.BatchStarted()
	defer func() { s.metrics.BatchFinished(time.Since(start)) }()

	table := &models.ResultTable{}
	for i, id := range ids {
		res := s.ProcessMessage(page, id)
		table.Append(res)
		s.metrics.ObserveMessage(res.Failed(), len(res.Records))

		fields := []zap.Field{
			zap.String("message_id", string(id)),
			zap.Int("position", i+1),
		}
		if res.Failed() {
			log.Warn("batch: message failed", append(fields,
				zap.Stringer("state", res.FailedIn), zap.Error(res.Err))...)
			continue
		}
		log.Info("batch: message done", append(fields, zap.Int("records", len(res.Records)))...)
	}

	log.Info("batch: finished",
		zap.Int("records", table.RecordCount()),
		zap.Int("errors", table.ErrorCount()),
		zap.Duration("elapsed", time.Since(start)))
	return table, nil
}

// ProcessMessage runs one lookup through Searching, WaitingForResults,
// Extracting and Done. Any fault, including a panic, ends it in Errored.
func (s *BatchService) ProcessMessage(page scraper.Page, id models.MessageID) (res models.MessageResult) {
	res = models.MessageResult{MessageID: id, State: models.StateSearching}
	defer func() {
		if r := recover(); r != nil {
			res = failed(res, fmt.Errorf("panic: %v", r))
		}
	}()

	if err := page.SubmitSearch(id); err != nil {
		return failed(res, err)
	}

	res.State = models.StateWaitingForResults
	s.sleep(s.settleDelay)

	res.State = models.StateExtracting
	log := s.logger.With(zap.String("message_id", string(id)))
	locator := scraper.NewFieldLocator(page, s.waitTimeout, log)

	var err error
	if res.Details.Category, err = locator.Locate(models.LabelCategory); err != nil {
		return failed(res, err)
	}
	if res.Details.EffectiveDate, err = locator.Locate(models.LabelEffectiveDate); err != nil {
		return failed(res, err)
	}
	if res.Details.Title, err = locator.Locate(models.LabelMessageTitle); err != nil {
		return failed(res, err)
	}
	if res.Details.Body, err = scraper.NewBodyFetcher(page, s.waitTimeout, log).Fetch(); err != nil {
		return failed(res, err)
	}

	base := models.CaseRecord{
		MessageID:     id,
		Category:      res.Details.Category,
		EffectiveDate: res.Details.EffectiveDate,
	}
	if country, ok := analyzer.ExtractCountry(s.tagger, res.Details.Title); ok {
		base.Country = country
	}
	if product, ok := analyzer.ExtractProduct(res.Details.Title); ok {
		base.ProductName = product
	}

	res.Records = scraper.ParseCaseRecords(res.Details.Body, base)
	res.State = models.StateDone
	return res
}

func failed(res models.MessageResult, err error) models.MessageResult {
	res.FailedIn = res.State
	res.State = models.StateErrored
	res.Err = err
	res.Records = nil
	return res
}

// metrics/metrics.go
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome label values for MessagesProcessed.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// Metrics holds the extractor's Prometheus collectors.
type Metrics struct {
	MessagesProcessed *prometheus.CounterVec
	CaseRecords       prometheus.Counter
	BatchDuration     prometheus.Histogram
	BatchInProgress   prometheus.Gauge
}

// New registers the extractor's collectors with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		MessagesProcessed: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "adcvd_messages_processed_total",
			Help: "Total number of message lookups, by outcome",
		}, []string{"outcome"}),
		CaseRecords: factory.NewCounter(prometheus.CounterOpts{
			Name: "adcvd_case_records_total",
			Help: "Total number of case records extracted from message bodies",
		}),
		BatchDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "adcvd_batch_duration_seconds",
			Help:    "Wall time of a batch run",
			Buckets: prometheus.ExponentialBuckets(5, 2, 10),
		}),
		BatchInProgress: factory.NewGauge(prometheus.GaugeOpts{
			Name: "adcvd_batch_in_progress",
			Help: "1 while a batch holds the browser session",
		}),
	}
}

// ObserveMessage counts one finished lookup and, when it succeeded, its case records.
func (m *Metrics) ObserveMessage(failed bool, records int) {
	if failed {
		m.MessagesProcessed.WithLabelValues(OutcomeError).Inc()
		return
	}
	m.MessagesProcessed.WithLabelValues(OutcomeOK).Inc()
	m.CaseRecords.Add(float64(records))
}

// BatchStarted marks the browser session as busy.
func (m *Metrics) BatchStarted() {
	m.BatchInProgress.Set(1)
}

// BatchFinished clears the busy gauge and records the batch's wall time.
func (m *Metrics) BatchFinished(elapsed time.Duration) {
	m.BatchInProgress.Set(0)
	m.BatchDuration.Observe(elapsed.Seconds())
}

// main.go
package main

import (
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gewnthar/adcvd/analyzer"
	"github.com/gewnthar/adcvd/config"
	"github.com/gewnthar/adcvd/logging"
	"github.com/gewnthar/adcvd/metrics"
	"github.com/gewnthar/adcvd/scraper"
	"github.com/gewnthar/adcvd/services"
)

var configPath string

func main() {
	root := &cobra.Command{
		Use:           "adcvd",
		Short:         "Extract case records from CBP ACE ADCVD messages",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to config.yaml (defaults to config/config.yaml when present)")
	root.AddCommand(newExtractCmd(), newServeCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// app holds what both commands need: config, logger and a ready batch service.
type app struct {
	cfg     *config.Config
	logger  *zap.Logger
	batch   *services.BatchService
	metrics *prometheus.Registry
}

// newApp loads configuration and builds the batch pipeline. The NER model is
// loaded up front so a broken model fails the command before any browser starts.
func newApp() (*app, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("error loading configuration: %w", err)
	}
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, fmt.Errorf("error building logger: %w", err)
	}
	logger.Info("Configuration loaded",
		zap.String("portal_url", cfg.Portal.URL),
		zap.Duration("wait_timeout", cfg.Portal.WaitTimeout),
		zap.Duration("settle_delay", cfg.Portal.SettleDelay),
		zap.Bool("headless", cfg.Portal.Headless))

	tagger, err := analyzer.NewProseTagger(cfg.NER.ModelPath)
	if err != nil {
		_ = logger.Sync()
		return nil, err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	batch := services.NewBatchService(
		scraper.NewPlaywrightOpener(cfg, logger),
		tagger,
		cfg.Portal,
		metrics.New(reg),
		logger,
	)
	return &app{cfg: cfg, logger: logger, batch: batch, metrics: reg}, nil
}

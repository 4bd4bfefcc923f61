package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/FACorreiaa/statement-analyzer/internal/domain/analysis"
	"github.com/FACorreiaa/statement-analyzer/internal/domain/sales"
	"github.com/FACorreiaa/statement-analyzer/internal/domain/statement"
	"github.com/FACorreiaa/statement-analyzer/pkg/config"
	"github.com/FACorreiaa/statement-analyzer/pkg/telemetry"
)

// Dependencies holds all application dependencies
type Dependencies struct {
	Config *config.Config
	Logger *slog.Logger

	// Telemetry
	Registry        *prometheus.Registry
	Recorder        *telemetry.Recorder
	shutdownTracing func(context.Context) error

	// Pipeline stages
	SalesExtractor      *sales.Extractor
	SalesAggregator     *sales.Aggregator
	StatementExtractor  *statement.Extractor
	StatementAggregator *statement.Aggregator

	// Services
	AnalysisService *analysis.AnalysisService
}

// InitDependencies initializes all application dependencies.
// Spans are written to traceOut when tracing is enabled.
func InitDependencies(cfg *config.Config, logger *slog.Logger, traceOut io.Writer) (*Dependencies, error) {
	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
	}

	if err := deps.initTelemetry(traceOut); err != nil {
		return nil, fmt.Errorf("failed to init telemetry: %w", err)
	}

	deps.initStages()
	deps.initServices()

	if !cfg.Gemini.Configured() {
		logger.Warn("GEMINI_API_KEY is not set, narrative reports are unavailable")
	}

	logger.Debug("all dependencies initialized successfully")
	return deps, nil
}

func (d *Dependencies) initTelemetry(traceOut io.Writer) error {
	d.Registry = prometheus.NewRegistry()

	recorder, err := telemetry.NewRecorder(d.Registry)
	if err != nil {
		return err
	}
	d.Recorder = recorder

	if d.Config.Observability.TracingEnabled {
		shutdown, err := telemetry.SetupTracing(traceOut)
		if err != nil {
			return err
		}
		d.shutdownTracing = shutdown
	}

	d.Logger.Debug("telemetry initialized",
		"metrics_textfile", d.Config.Observability.MetricsTextfile,
		"tracing", d.Config.Observability.TracingEnabled,
	)
	return nil
}

func (d *Dependencies) initStages() {
	salesOpts := []sales.Option{sales.WithKeywords(d.Config.Analysis.SalesKeywords...)}
	if d.Config.Analysis.SalesSheet != "" {
		salesOpts = append(salesOpts, sales.WithSheet(d.Config.Analysis.SalesSheet))
	}

	d.SalesExtractor = sales.NewExtractor(d.Logger, salesOpts...)
	d.SalesAggregator = sales.NewAggregator(d.Logger)
	d.StatementExtractor = statement.NewExtractor(d.Logger)
	d.StatementAggregator = statement.NewAggregator(d.Logger)

	d.Logger.Debug("pipeline stages initialized", "sales_keywords", d.Config.Analysis.SalesKeywords)
}

func (d *Dependencies) initServices() {
	d.AnalysisService = analysis.NewAnalysisService(
		d.SalesExtractor,
		d.SalesAggregator,
		d.StatementExtractor,
		d.StatementAggregator,
		d.Logger,
	).WithRecorder(d.Recorder)

	d.Logger.Debug("services initialized")
}

// WriteMetrics exports the run counters when a textfile path is configured
func (d *Dependencies) WriteMetrics() error {
	path := d.Config.Observability.MetricsTextfile
	if path == "" {
		return nil
	}
	return telemetry.WriteTextfile(path, d.Registry)
}

// Close flushes pending spans
func (d *Dependencies) Close(ctx context.Context) error {
	if d.shutdownTracing == nil {
		return nil
	}
	return d.shutdownTracing(ctx)
}

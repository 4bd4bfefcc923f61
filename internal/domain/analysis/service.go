package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/FACorreiaa/statement-analyzer/internal/domain/metrics"
	"github.com/FACorreiaa/statement-analyzer/internal/domain/sniffer"
	"github.com/FACorreiaa/statement-analyzer/internal/domain/statement"
	"github.com/FACorreiaa/statement-analyzer/pkg/telemetry"
)

var ErrUnknownKind = errors.New("cannot tell whether the artifact is a sales export or a statement")

// SalesExtractor reads a tabular sales export
type SalesExtractor interface {
	Extract(ctx context.Context, path string) (*metrics.Table, error)
}

// SalesAggregator derives sales summaries
type SalesAggregator interface {
	Aggregate(ctx context.Context, t *metrics.Table) *metrics.Summary
}

// StatementExtractor reads a financial statement document
type StatementExtractor interface {
	Extract(ctx context.Context, path string) (*statement.Extraction, error)
}

// StatementAggregator derives statement ratios
type StatementAggregator interface {
	Aggregate(ctx context.Context, m *metrics.Scalars) *metrics.Summary
}

// Report is the caller-facing result of one run
type Report struct {
	RunID     string             `json:"run_id"`
	Pipeline  string             `json:"pipeline"`
	Path      string             `json:"path"`
	State     State              `json:"state"`
	Metrics   json.Marshaler     `json:"metrics"` // *metrics.Table or *metrics.Scalars
	Summary   *metrics.Summary   `json:"summary"`
	Omitted   []metrics.Omission `json:"omitted,omitempty"`
	Missing   []metrics.Omission `json:"missing_items,omitempty"` // Statement line items not found
	Text      string             `json:"text,omitempty"`
	Error     string             `json:"error,omitempty"`
	StartedAt time.Time          `json:"started_at"`
	Duration  time.Duration      `json:"-"`

	ExtractErr error `json:"-"`
}

// Degraded reports whether extraction failed and the metric set is empty
func (r *Report) Degraded() bool {
	return r.ExtractErr != nil
}

// AnalysisService runs the sales and statement pipelines
type AnalysisService struct {
	salesExtractor      SalesExtractor
	salesAggregator     SalesAggregator
	statementExtractor  StatementExtractor
	statementAggregator StatementAggregator
	recorder            *telemetry.Recorder // Optional: nil disables metrics
	logger              *slog.Logger
}

// NewAnalysisService creates a new analysis service
func NewAnalysisService(
	salesExtractor SalesExtractor,
	salesAggregator SalesAggregator,
	statementExtractor StatementExtractor,
	statementAggregator StatementAggregator,
	logger *slog.Logger,
) *AnalysisService {
	return &AnalysisService{
		salesExtractor:      salesExtractor,
		salesAggregator:     salesAggregator,
		statementExtractor:  statementExtractor,
		statementAggregator: statementAggregator,
		logger:              logger,
	}
}

// WithRecorder adds Prometheus metrics to every run
func (s *AnalysisService) WithRecorder(recorder *telemetry.Recorder) *AnalysisService {
	s.recorder = recorder
	return s
}

// AnalyzeSales runs the sales pipeline over a tabular export.
// An empty runID is replaced by a random one.
func (s *AnalysisService) AnalyzeSales(ctx context.Context, runID, path string) *Report {
	p := &Pipeline[*metrics.Table]{
		name:      PipelineSales,
		extract:   s.salesExtractor.Extract,
		aggregate: s.salesAggregator.Aggregate,
		empty:     metrics.NewTable,
		size:      (*metrics.Table).Len,
		logger:    s.logger,
		recorder:  s.recorder,
	}
	run := p.Run(ctx, ensureRunID(runID), path)

	report := newReport(run)
	report.Metrics = run.Metrics
	return report
}

// AnalyzeStatement runs the statement pipeline over a document.
// An empty runID is replaced by a random one.
func (s *AnalysisService) AnalyzeStatement(ctx context.Context, runID, path string) *Report {
	p := &Pipeline[*statement.Extraction]{
		name:    PipelineStatement,
		extract: s.statementExtractor.Extract,
		aggregate: func(ctx context.Context, ext *statement.Extraction) *metrics.Summary {
			return s.statementAggregator.Aggregate(ctx, ext.Metrics)
		},
		empty: func() *statement.Extraction {
			return &statement.Extraction{Metrics: metrics.NewScalars()}
		},
		size: func(ext *statement.Extraction) int {
			if ext == nil {
				return 0
			}
			return ext.Metrics.Len()
		},
		logger:   s.logger,
		recorder: s.recorder,
	}
	run := p.Run(ctx, ensureRunID(runID), path)

	report := newReport(run)
	report.Metrics = run.Metrics.Metrics
	report.Missing = run.Metrics.Omissions
	report.Text = run.Metrics.Text
	return report
}

// Analyze picks the pipeline from the artifact's content and extension.
// It fails only when the kind cannot be determined.
func (s *AnalysisService) Analyze(ctx context.Context, runID, path string) (*Report, error) {
	kind, err := sniffer.DetectFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to detect artifact kind: %w", err)
	}

	s.logger.Debug("detected artifact kind", "path", path, "kind", kind)

	switch {
	case kind == sniffer.KindPDF:
		return s.AnalyzeStatement(ctx, runID, path), nil
	case kind.Tabular():
		return s.AnalyzeSales(ctx, runID, path), nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownKind, path)
}

func newReport[M any](run *Run[M]) *Report {
	r := &Report{
		RunID:      run.ID,
		Pipeline:   run.Pipeline,
		Path:       run.Path,
		State:      run.State,
		Summary:    run.Summary,
		Omitted:    run.Summary.Omissions(),
		StartedAt:  run.StartedAt,
		Duration:   run.Duration,
		ExtractErr: run.ExtractErr,
	}
	if run.ExtractErr != nil {
		r.Error = run.ExtractErr.Error()
	}
	return r
}

func ensureRunID(runID string) string {
	if runID == "" {
		return uuid.NewString()
	}
	return runID
}

package analysis

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/statement-analyzer/internal/domain/metrics"
	"github.com/FACorreiaa/statement-analyzer/pkg/telemetry"
)

// Pipeline names
const (
	PipelineSales     = "sales"
	PipelineStatement = "statement"
)

const (
	stageExtract   = "extract"
	stageAggregate = "aggregate"
)

// Run is the record of one pass over one artifact
type Run[M any] struct {
	ID         string
	Pipeline   string
	Path       string
	State      State
	History    []State
	Metrics    M
	Summary    *metrics.Summary
	ExtractErr error // Why the metric set is empty, if it is
	StartedAt  time.Time
	Duration   time.Duration
}

func (r *Run[M]) advance() {
	next, err := r.State.Next()
	if err != nil {
		return
	}
	r.State = next
	r.History = append(r.History, next)
}

// Pipeline runs Extract then Aggregate over a metric set of type M
type Pipeline[M any] struct {
	name      string
	extract   func(ctx context.Context, path string) (M, error)
	aggregate func(ctx context.Context, m M) *metrics.Summary
	empty     func() M
	size      func(M) int
	logger    *slog.Logger
	recorder  *telemetry.Recorder
}

// Run processes one artifact. It never fails: an extraction error is
// logged and the aggregator sees an empty metric set instead.
func (p *Pipeline[M]) Run(ctx context.Context, runID, path string) *Run[M] {
	ctx, span := telemetry.Tracer().Start(ctx, p.name+".run", trace.WithAttributes(
		attribute.String("run.id", runID),
		attribute.String("artifact.path", path),
	))
	defer span.End()

	logger := p.logger.With("run_id", runID, "pipeline", p.name)
	run := &Run[M]{
		ID:        runID,
		Pipeline:  p.name,
		Path:      path,
		State:     StateStart,
		History:   []State{StateStart},
		StartedAt: time.Now(),
	}

	logger.Info("starting analysis", "path", path)

	outcome := telemetry.OutcomeComplete
	err := p.stage(ctx, stageExtract, func(ctx context.Context) error {
		m, err := p.extract(ctx, path)
		if err != nil {
			return err
		}
		run.Metrics = m
		return nil
	})
	if err != nil {
		logger.Error("extraction failed, continuing with an empty metric set", "path", path, "error", err)
		run.Metrics = p.empty()
		run.ExtractErr = err
		outcome = telemetry.OutcomeDegraded
	}
	run.advance()
	p.recorder.FieldsExtracted(p.name, p.size(run.Metrics))

	_ = p.stage(ctx, stageAggregate, func(ctx context.Context) error {
		run.Summary = p.aggregate(ctx, run.Metrics)
		return nil
	})
	if run.Summary == nil {
		run.Summary = metrics.NewSummary()
	}
	run.advance()

	p.recorder.ResultsComputed(p.name, run.Summary.Len())
	for _, o := range run.Summary.Omissions() {
		p.recorder.ResultOmitted(p.name, metrics.Reason(o.Reason))
	}

	run.advance()
	run.Duration = time.Since(run.StartedAt)
	p.recorder.RunFinished(p.name, outcome)

	span.SetAttributes(
		attribute.String("run.outcome", outcome),
		attribute.Int("run.results", run.Summary.Len()),
	)
	logger.Info("analysis finished",
		"outcome", outcome,
		"fields", p.size(run.Metrics),
		"results", run.Summary.Len(),
		"omitted", len(run.Summary.Omissions()),
		"duration", run.Duration,
	)

	return run
}

func (p *Pipeline[M]) stage(ctx context.Context, name string, fn func(context.Context) error) error {
	ctx, span := telemetry.Tracer().Start(ctx, p.name+"."+name)
	defer span.End()

	start := time.Now()
	err := fn(ctx)
	p.recorder.ObserveStage(p.name, name, time.Since(start))

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

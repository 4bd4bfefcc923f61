// Package telemetry provides Prometheus metrics and OpenTelemetry tracing for analysis runs.
package telemetry

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "statement_analyzer"

// Run outcomes
const (
	OutcomeComplete = "complete" // Extraction succeeded
	OutcomeDegraded = "degraded" // Extraction failed; pipeline continued on an empty metric set
)

// Recorder collects per-run pipeline metrics.
// A nil *Recorder is valid and records nothing.
type Recorder struct {
	runs      *prometheus.CounterVec
	fields    *prometheus.CounterVec
	results   *prometheus.CounterVec
	omissions *prometheus.CounterVec
	stages    *prometheus.HistogramVec
}

// NewRecorder creates a recorder and registers its collectors
func NewRecorder(reg prometheus.Registerer) (*Recorder, error) {
	r := &Recorder{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Pipeline runs by pipeline and outcome.",
		}, []string{"pipeline", "outcome"}),
		fields: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fields_extracted_total",
			Help:      "Metric set fields produced by extractors.",
		}, []string{"pipeline"}),
		results: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "results_computed_total",
			Help:      "Derived results added to summaries.",
		}, []string{"pipeline"}),
		omissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "results_omitted_total",
			Help:      "Derived results left out of summaries, by reason.",
		}, []string{"pipeline", "reason"}),
		stages: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Time spent in each pipeline stage.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
		}, []string{"pipeline", "stage"}),
	}

	for _, c := range []prometheus.Collector{r.runs, r.fields, r.results, r.omissions, r.stages} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("failed to register collector: %w", err)
		}
	}

	return r, nil
}

// RunFinished counts a completed run
func (r *Recorder) RunFinished(pipeline, outcome string) {
	if r == nil {
		return
	}
	r.runs.WithLabelValues(pipeline, outcome).Inc()
}

// FieldsExtracted adds the number of fields an extractor produced
func (r *Recorder) FieldsExtracted(pipeline string, n int) {
	if r == nil || n <= 0 {
		return
	}
	r.fields.WithLabelValues(pipeline).Add(float64(n))
}

// ResultsComputed adds the number of results a summary holds
func (r *Recorder) ResultsComputed(pipeline string, n int) {
	if r == nil || n <= 0 {
		return
	}
	r.results.WithLabelValues(pipeline).Add(float64(n))
}

// ResultOmitted counts one omitted result
func (r *Recorder) ResultOmitted(pipeline, reason string) {
	if r == nil {
		return
	}
	r.omissions.WithLabelValues(pipeline, reason).Inc()
}

// ObserveStage records how long a stage took
func (r *Recorder) ObserveStage(pipeline, stage string, d time.Duration) {
	if r == nil {
		return
	}
	r.stages.WithLabelValues(pipeline, stage).Observe(d.Seconds())
}

// WriteTextfile writes the gathered metrics for the node_exporter textfile collector
func WriteTextfile(path string, g prometheus.Gatherer) error {
	if err := prometheus.WriteToTextfile(path, g); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}

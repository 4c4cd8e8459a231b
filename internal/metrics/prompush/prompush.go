// Package prompush implements a Prometheus Pushgateway backend for the
// metrics package.
//
// This package adapts the generic metrics.Backend interface to Prometheus by:
//
//   - Using client_golang CounterVec and SummaryVec collectors.
//   - Mapping the common run labels (job, stage, status) onto Prometheus labels.
//   - Pushing collected metrics to a Prometheus Pushgateway instance instead of
//     exposing an HTTP scrape endpoint; the pipeline is a batch job, so there
//     is nothing long-lived to scrape.
//
// The package intentionally contains all Prometheus-specific dependencies so
// that the rest of the project remains decoupled from Prometheus and can swap
// to alternative backends (e.g. Datadog, StatsD) without changes to the core
// pipeline.
package prompush

import (
	"fmt"

	"github.com/rajpat739407/Sales-Data-Processor/internal/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Backend is a Prometheus Pushgateway metrics backend.
type Backend struct {
	gatewayURL string // e.g. http://pushgateway:9091
	jobName    string // Pushgateway "job" group
	reg        *prometheus.Registry

	// Stage-level metrics
	stageCounter  *prometheus.CounterVec // "salesproc_stage_total"
	stageDuration *prometheus.SummaryVec // "salesproc_stage_duration_seconds"

	// Row-level metrics
	rowCounter   *prometheus.CounterVec // "salesproc_rows_total"
	batchCounter prometheus.Counter     // "salesproc_batches_total"
}

// NewBackend constructs a Prometheus Pushgateway backend.
// jobName: the Pushgateway "job" name (often same as pipeline job).
// gatewayURL: base URL of the Pushgateway server.
func NewBackend(jobName, gatewayURL string) (*Backend, error) {
	if gatewayURL == "" {
		return nil, fmt.Errorf("prompush: gateway URL is required")
	}
	if jobName == "" {
		jobName = "salesproc"
	}

	reg := prometheus.NewRegistry()

	// job is the Pushgateway grouping key; stage and status stay dynamic.
	stageCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "salesproc_stage_total",
			Help: "Total number of run stage executions, partitioned by stage and status.",
		},
		[]string{"stage", "status"},
	)
	stageDuration := prometheus.NewSummaryVec(
		prometheus.SummaryOpts{
			Name:       "salesproc_stage_duration_seconds",
			Help:       "Duration of run stages in seconds, partitioned by stage and status.",
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
		},
		[]string{"stage", "status"},
	)

	// ROW metrics: kind (parsed, duplicates_removed, inserted, ...).
	rowCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "salesproc_rows_total",
			Help: "Row-level counts per kind (parsed, duplicates_removed, inserted, etc.).",
		},
		[]string{"kind"},
	)

	// BATCH metrics: simple counter per job (job is grouping label via Pushgateway).
	batchCounter := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "salesproc_batches_total",
			Help: "Total number of storage batches flushed for this run.",
		},
	)

	if err := reg.Register(stageCounter); err != nil {
		return nil, fmt.Errorf("prompush: register stage counter: %w", err)
	}
	if err := reg.Register(stageDuration); err != nil {
		return nil, fmt.Errorf("prompush: register stage summary: %w", err)
	}
	if err := reg.Register(rowCounter); err != nil {
		return nil, fmt.Errorf("prompush: register row counter: %w", err)
	}
	if err := reg.Register(batchCounter); err != nil {
		return nil, fmt.Errorf("prompush: register batch counter: %w", err)
	}

	return &Backend{
		gatewayURL:    gatewayURL,
		jobName:       jobName,
		reg:           reg,
		stageCounter:  stageCounter,
		stageDuration: stageDuration,
		rowCounter:    rowCounter,
		batchCounter:  batchCounter,
	}, nil
}

func (b *Backend) IncCounter(name string, delta float64, labels metrics.Labels) {
	switch name {
	case "salesproc_stage_total":
		if b.stageCounter == nil {
			return
		}
		stage := labels["stage"]
		status := labels["status"]
		b.stageCounter.WithLabelValues(stage, status).Add(delta)

	case "salesproc_rows_total":
		if b.rowCounter == nil {
			return
		}
		kind := labels["kind"]
		b.rowCounter.WithLabelValues(kind).Add(delta)

	case "salesproc_batches_total":
		if b.batchCounter == nil {
			return
		}
		b.batchCounter.Add(delta)

	default:
		// unknown metric name: ignore
	}
}

func (b *Backend) ObserveHistogram(name string, value float64, labels metrics.Labels) {
	if name != "salesproc_stage_duration_seconds" || b.stageDuration == nil {
		return
	}
	stage := labels["stage"]
	status := labels["status"]
	b.stageDuration.WithLabelValues(stage, status).Observe(value)
}

// Flush pushes the current registry to the Pushgateway.
func (b *Backend) Flush() error {
	return push.New(b.gatewayURL, b.jobName).
		Gatherer(b.reg).
		Push()
}

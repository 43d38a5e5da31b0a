// internal/common/metrics/metrics.go
package metrics

import (
	"context"

	"bluemedix-workflow/internal/workflow"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	StepsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "workflow_steps_total",
			Help: "Total number of workflow steps by outcome",
		},
		[]string{"step", "status"},
	)

	StepFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "workflow_step_failures_total",
			Help: "Total number of failed or skipped workflow steps by error code",
		},
		[]string{"step", "error_code"},
	)

	StepDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "workflow_step_duration_seconds",
			Help:    "Duration of workflow steps in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"step"},
	)

	RunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "workflow_runs_total",
			Help: "Total number of workflow runs by result",
		},
		[]string{"result"},
	)

	LastRunTimestamp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "workflow_last_run_timestamp_seconds",
			Help: "Unix time the last workflow run finished",
		},
	)
)

// Observer records step outcomes on the package collectors.
type Observer struct{}

func NewObserver() *Observer {
	return &Observer{}
}

func (o *Observer) StepFinished(_ context.Context, res workflow.Result) {
	StepsTotal.WithLabelValues(res.Step, string(res.Status)).Inc()
	if res.Err != nil {
		StepFailures.WithLabelValues(res.Step, string(res.Err.Code)).Inc()
	}
	if res.Status != workflow.StatusSkipped {
		StepDuration.WithLabelValues(res.Step).Observe(res.Duration.Seconds())
	}
}

func (o *Observer) RunFinished(_ context.Context, results []workflow.Result) {
	RunsTotal.WithLabelValues(RunResult(results)).Inc()
	LastRunTimestamp.SetToCurrentTime()
}

// RunResult is "failed" when any step failed, otherwise "passed".
func RunResult(results []workflow.Result) string {
	if _, failed, _ := workflow.Summarize(results); failed > 0 {
		return "failed"
	}
	return "passed"
}

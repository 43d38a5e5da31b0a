package observability

import (
	"context"
	"time"

	"bluemedix-workflow/internal/common/logger"
	"bluemedix-workflow/internal/workflow"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
)

type Observability struct {
	meterProvider *metric.MeterProvider
	meter         otelmetric.Meter
	stepCounter   otelmetric.Int64Counter
	stepDuration  otelmetric.Float64Histogram
	logger        logger.Logger
}

// New exports workflow metrics through the Prometheus exporter.
func New(serviceName string, log logger.Logger) *Observability {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	exporter, err := prometheus.New()
	if err != nil {
		log.Warn("Failed to create Prometheus exporter", map[string]interface{}{"error": err})
		return &Observability{logger: log}
	}
	o := NewWithReader(serviceName, exporter, log)
	otel.SetMeterProvider(o.meterProvider)
	return o
}

// NewWithReader builds the meter on an arbitrary reader.
func NewWithReader(serviceName string, reader metric.Reader, log logger.Logger) *Observability {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	provider := metric.NewMeterProvider(metric.WithReader(reader))
	meter := provider.Meter(serviceName)

	stepCounter, err := meter.Int64Counter(
		"workflow.steps.processed",
		otelmetric.WithDescription("Number of workflow steps processed"),
	)
	if err != nil {
		log.Warn("Failed to create step counter", map[string]interface{}{"error": err})
	}

	stepDuration, err := meter.Float64Histogram(
		"workflow.steps.duration",
		otelmetric.WithDescription("Workflow step duration"),
		otelmetric.WithUnit("ms"),
	)
	if err != nil {
		log.Warn("Failed to create step duration histogram", map[string]interface{}{"error": err})
	}

	return &Observability{
		meterProvider: provider,
		meter:         meter,
		stepCounter:   stepCounter,
		stepDuration:  stepDuration,
		logger:        log,
	}
}

func (o *Observability) RecordStepProcessed(ctx context.Context, step, status string) {
	if o.stepCounter != nil {
		o.stepCounter.Add(ctx, 1, otelmetric.WithAttributes(
			attribute.String("step", step),
			attribute.String("status", status),
		))
	}
}

func (o *Observability) RecordStepDuration(ctx context.Context, step string, duration time.Duration, status string) {
	if o.stepDuration != nil {
		o.stepDuration.Record(ctx, float64(duration.Milliseconds()), otelmetric.WithAttributes(
			attribute.String("step", step),
			attribute.String("status", status),
		))
	}
}

func (o *Observability) StepFinished(ctx context.Context, res workflow.Result) {
	o.RecordStepProcessed(ctx, res.Step, string(res.Status))
	if res.Status != workflow.StatusSkipped {
		o.RecordStepDuration(ctx, res.Step, res.Duration, string(res.Status))
	}
}

func (o *Observability) RunFinished(context.Context, []workflow.Result) {}

func (o *Observability) Shutdown() {
	if o.meterProvider != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := o.meterProvider.Shutdown(ctx); err != nil {
			o.logger.Warn("Meter provider shutdown failed", map[string]interface{}{"error": err})
		}
	}
}

package report

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
)

// TextfileSink dumps the gathered step metrics in Prometheus text format,
// for node_exporter's textfile collector.
type TextfileSink struct {
	Path     string
	Gatherer prometheus.Gatherer
}

func NewTextfileSink(path string, g prometheus.Gatherer) *TextfileSink {
	if g == nil {
		g = prometheus.DefaultGatherer
	}
	return &TextfileSink{Path: path, Gatherer: g}
}

func (t *TextfileSink) Name() string { return "metrics-textfile" }

func (t *TextfileSink) Write(context.Context, *Report) error {
	return prometheus.WriteToTextfile(t.Path, t.Gatherer)
}

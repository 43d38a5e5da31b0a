// Package report accumulates per-step records and publishes the run report.
package report

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"bluemedix-workflow/internal/common/errors"
	"bluemedix-workflow/internal/common/logger"
	"bluemedix-workflow/internal/workflow"
)

type Record struct {
	Name         string          `json:"name" bson:"name"`
	Status       workflow.Status `json:"status" bson:"status"`
	Message      string          `json:"message,omitempty" bson:"message,omitempty"`
	ErrorCode    string          `json:"errorCode,omitempty" bson:"errorCode,omitempty"`
	HTTPStatus   int             `json:"httpStatus,omitempty" bson:"httpStatus,omitempty"`
	ResponseBody string          `json:"responseBody,omitempty" bson:"responseBody,omitempty"`
	StartedAt    time.Time       `json:"startedAt" bson:"startedAt"`
	DurationMs   int64           `json:"durationMs" bson:"durationMs"`
}

type Summary struct {
	Total   int `json:"total" bson:"total"`
	Passed  int `json:"passed" bson:"passed"`
	Failed  int `json:"failed" bson:"failed"`
	Skipped int `json:"skipped" bson:"skipped"`
}

type Report struct {
	RunID      string            `json:"runId" bson:"_id"`
	BaseURL    string            `json:"baseUrl" bson:"baseUrl"`
	StartedAt  time.Time         `json:"startedAt" bson:"startedAt"`
	FinishedAt time.Time         `json:"finishedAt" bson:"finishedAt"`
	Summary    Summary           `json:"summary" bson:"summary"`
	Captured   map[string]string `json:"captured,omitempty" bson:"captured,omitempty"`
	Results    []Record          `json:"results" bson:"results"`
}

func (r *Report) JSON() ([]byte, error) {
	return json.Marshal(r)
}

// Sink persists a finished report somewhere.
type Sink interface {
	Name() string
	Write(ctx context.Context, rep *Report) error
}

// Reporter collects records from the runner and fans the report out to sinks.
type Reporter struct {
	mu         sync.Mutex
	runID      string
	baseURL    string
	startedAt  time.Time
	finishedAt time.Time
	records    []Record
	captured   map[string]string
	sinks      []Sink
	logger     logger.Logger
	now        func() time.Time
}

func NewReporter(runID, baseURL string, log logger.Logger) *Reporter {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	r := &Reporter{
		runID:   runID,
		baseURL: baseURL,
		logger:  log.With(map[string]interface{}{"runId": runID}),
		now:     func() time.Time { return time.Now().UTC() },
	}
	r.startedAt = r.now()
	return r
}

func (r *Reporter) AddSink(s Sink) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sinks = append(r.sinks, s)
}

func (r *Reporter) Sinks() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, len(r.sinks))
	for i, s := range r.sinks {
		names[i] = s.Name()
	}
	return names
}

// Add appends a record directly.
func (r *Reporter) Add(rec Record) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, rec)
}

// SetCaptured stores the identifiers the run produced.
func (r *Reporter) SetCaptured(values map[string]string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.captured = make(map[string]string, len(values))
	for k, v := range values {
		r.captured[k] = v
	}
}

func (r *Reporter) StepFinished(_ context.Context, res workflow.Result) {
	rec := Record{
		Name:       res.Step,
		Status:     res.Status,
		StartedAt:  res.StartedAt.UTC(),
		DurationMs: res.Duration.Milliseconds(),
	}
	if res.Err != nil {
		rec.Message = res.Err.Message
		if res.Err.Details != "" && res.Err.Code == errors.ErrCodeAssertionFailed {
			rec.Message = fmt.Sprintf("%s: %s", res.Err.Message, res.Err.Details)
		}
		rec.ErrorCode = string(res.Err.Code)
		rec.HTTPStatus = res.Err.HTTPStatus
		rec.ResponseBody = res.Err.Body
	}
	r.Add(rec)
}

func (r *Reporter) RunFinished(context.Context, []workflow.Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.finishedAt = r.now()
}

func (r *Reporter) Summary() Summary {
	r.mu.Lock()
	defer r.mu.Unlock()
	return summarize(r.records)
}

func summarize(records []Record) Summary {
	s := Summary{Total: len(records)}
	for _, rec := range records {
		switch rec.Status {
		case workflow.StatusPassed:
			s.Passed++
		case workflow.StatusFailed:
			s.Failed++
		case workflow.StatusSkipped:
			s.Skipped++
		}
	}
	return s
}

// Report snapshots the current state of the run.
func (r *Reporter) Report() *Report {
	r.mu.Lock()
	defer r.mu.Unlock()

	finished := r.finishedAt
	if finished.IsZero() {
		finished = r.now()
	}
	records := make([]Record, len(r.records))
	copy(records, r.records)

	var captured map[string]string
	if len(r.captured) > 0 {
		captured = make(map[string]string, len(r.captured))
		for k, v := range r.captured {
			captured[k] = v
		}
	}

	return &Report{
		RunID:      r.runID,
		BaseURL:    r.baseURL,
		StartedAt:  r.startedAt,
		FinishedAt: finished,
		Summary:    summarize(records),
		Captured:   captured,
		Results:    records,
	}
}

// Publish writes the report to every sink. Sink failures, including panics,
// are logged and returned; they never alter the report.
func (r *Reporter) Publish(ctx context.Context) (*Report, []error) {
	rep := r.Report()

	r.mu.Lock()
	sinks := append([]Sink(nil), r.sinks...)
	r.mu.Unlock()

	var failures []error
	for _, sink := range sinks {
		if err := writeSafely(ctx, sink, rep); err != nil {
			sinkErr := errors.NewSinkError(sink.Name(), err)
			r.logger.Error("Report sink failed", map[string]interface{}{
				"sink":      sink.Name(),
				"errorCode": sinkErr.Code,
				"error":     err,
			})
			failures = append(failures, sinkErr)
			continue
		}
		r.logger.Debug("Report written", map[string]interface{}{"sink": sink.Name()})
	}
	return rep, failures
}

func writeSafely(ctx context.Context, sink Sink, rep *Report) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("sink panicked: %v", rec)
		}
	}()
	return sink.Write(ctx, rep)
}

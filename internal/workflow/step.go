// Package workflow executes an ordered list of dependent steps.
package workflow

import (
	"context"
	"fmt"
	"time"

	"bluemedix-workflow/internal/common/errors"
)

// StepFunc performs one step. It returns the state to commit on success;
// the returned state is discarded when err is non-nil.
type StepFunc func(ctx context.Context, state State) (State, error)

type Step struct {
	Name        string
	Description string
	// Endpoint is informational, e.g. "PATCH /api/orders/:id/status".
	Endpoint  string
	DependsOn []string
	Run       StepFunc
}

type Status string

const (
	StatusPassed  Status = "passed"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
)

// Result is the outcome of one step.
type Result struct {
	Step      string
	Status    Status
	Err       *errors.StandardError
	StartedAt time.Time
	Duration  time.Duration
}

func (r Result) Message() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Message
}

// Validate checks that names are unique and non-empty, every step has a
// body, and every dependency names an earlier step.
func Validate(steps []Step) error {
	seen := make(map[string]bool, len(steps))
	for i, s := range steps {
		if s.Name == "" {
			return fmt.Errorf("step %d has no name", i)
		}
		if seen[s.Name] {
			return fmt.Errorf("duplicate step name %q", s.Name)
		}
		if s.Run == nil {
			return fmt.Errorf("step %q has no run function", s.Name)
		}
		for _, dep := range s.DependsOn {
			if dep == s.Name {
				return fmt.Errorf("step %q depends on itself", s.Name)
			}
			if !seen[dep] {
				return fmt.Errorf("step %q depends on %q, which is not an earlier step", s.Name, dep)
			}
		}
		seen[s.Name] = true
	}
	return nil
}

package workflow

import (
	"context"
	"time"

	"bluemedix-workflow/internal/common/errors"
	"bluemedix-workflow/internal/common/logger"
)

// Observer receives step outcomes as they happen.
type Observer interface {
	StepFinished(ctx context.Context, result Result)
	RunFinished(ctx context.Context, results []Result)
}

// Runner executes steps one at a time in list order. A failing step does not
// stop the run: steps that depend on it, directly or through a skipped step,
// are skipped and independent steps still execute.
type Runner struct {
	steps     []Step
	logger    logger.Logger
	observers []Observer
	now       func() time.Time
}

func NewRunner(steps []Step, log logger.Logger, observers ...Observer) (*Runner, error) {
	if err := Validate(steps); err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Runner{
		steps:     steps,
		logger:    log,
		observers: observers,
		now:       time.Now,
	}, nil
}

func (r *Runner) Steps() []Step {
	return r.steps
}

// Run executes every step and returns the final state with one result per step.
func (r *Runner) Run(ctx context.Context, initial State) (State, []Result) {
	state := initial
	if state.values == nil {
		state = NewState()
	}

	statuses := make(map[string]Status, len(r.steps))
	results := make([]Result, 0, len(r.steps))

	for _, step := range r.steps {
		res := r.runStep(ctx, step, statuses, &state)
		statuses[step.Name] = res.Status
		results = append(results, res)

		fields := map[string]interface{}{
			"step":       step.Name,
			"status":     res.Status,
			"durationMs": res.Duration.Milliseconds(),
		}
		switch res.Status {
		case StatusPassed:
			r.logger.Info("Step passed", fields)
		case StatusSkipped:
			fields["reason"] = res.Message()
			r.logger.Warn("Step skipped", fields)
		default:
			fields["errorCode"] = res.Err.Code
			fields["error"] = res.Message()
			if res.Err.HTTPStatus != 0 {
				fields["httpStatus"] = res.Err.HTTPStatus
			}
			r.logger.Error("Step failed", fields)
		}

		for _, o := range r.observers {
			o.StepFinished(ctx, res)
		}
	}

	for _, o := range r.observers {
		o.RunFinished(ctx, results)
	}
	return state, results
}

func (r *Runner) runStep(ctx context.Context, step Step, statuses map[string]Status, state *State) Result {
	started := r.now()
	res := Result{Step: step.Name, StartedAt: started}

	if err := ctx.Err(); err != nil {
		res.Status = StatusSkipped
		res.Err = errors.NewCancelledError(step.Name, err)
		return res
	}

	for _, dep := range step.DependsOn {
		if statuses[dep] != StatusPassed {
			res.Status = StatusSkipped
			res.Err = errors.NewDependencyError(step.Name, dep)
			return res
		}
	}

	next, err := r.invoke(ctx, step, *state)
	res.Duration = r.now().Sub(started)
	if err != nil {
		res.Status = StatusFailed
		res.Err = errors.Normalize(err)
		return res
	}

	if next.values != nil {
		*state = next
	}
	res.Status = StatusPassed
	return res
}

func (r *Runner) invoke(ctx context.Context, step Step, state State) (next State, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = errors.NewPanicError(step.Name, rec)
		}
	}()
	return step.Run(ctx, state)
}

// Summarize counts results by status.
func Summarize(results []Result) (passed, failed, skipped int) {
	for _, res := range results {
		switch res.Status {
		case StatusPassed:
			passed++
		case StatusFailed:
			failed++
		case StatusSkipped:
			skipped++
		}
	}
	return passed, failed, skipped
}

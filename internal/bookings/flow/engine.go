// Package flow runs an ordered list of steps over shared state. When a step
// fails, the compensations of the steps that already completed run in
// reverse order before the error is returned.
package flow

import (
	"context"
	"errors"
	"fmt"

	"tourism/pkg/logger"
)

type Step[S any] struct {
	Name       string
	Execute    func(ctx context.Context, state S) error
	Compensate func(ctx context.Context, state S) error
}

func NewStep[S any](name string, execute func(ctx context.Context, state S) error) *Step[S] {
	return &Step[S]{
		Name:    name,
		Execute: execute,
	}
}

// WithCompensation sets the undo action run when a later step fails.
func (s *Step[S]) WithCompensation(fn func(ctx context.Context, state S) error) *Step[S] {
	s.Compensate = fn
	return s
}

type Flow[S any] struct {
	name  string
	steps []*Step[S]
}

func New[S any](name string, steps ...*Step[S]) *Flow[S] {
	return &Flow[S]{name: name, steps: steps}
}

func (f *Flow[S]) Name() string {
	return f.name
}

// StepError reports which step stopped the flow. It unwraps to the step's
// own error so callers can still match domain errors.
type StepError struct {
	Flow string
	Step string
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s: %s step failed: %v", e.Flow, e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// Run executes every step in order. Compensations run on a context detached
// from cancellation so a timed out request still releases what it took.
func (f *Flow[S]) Run(ctx context.Context, log *logger.Logger, state S) error {
	done := make([]*Step[S], 0, len(f.steps))
	for _, step := range f.steps {
		if err := step.Execute(ctx, state); err != nil {
			f.compensate(context.WithoutCancel(ctx), log, done, state)
			return &StepError{Flow: f.name, Step: step.Name, Err: err}
		}
		done = append(done, step)
	}
	return nil
}

func (f *Flow[S]) compensate(ctx context.Context, log *logger.Logger, done []*Step[S], state S) {
	for i := len(done) - 1; i >= 0; i-- {
		step := done[i]
		if step.Compensate == nil {
			continue
		}
		if err := step.Compensate(ctx, state); err != nil {
			log.Error("Flow compensation failed",
				"flow", f.name,
				"step", step.Name,
				"error", err,
			)
		}
	}
}

// StepName returns the name of the step that failed, or "" when err did not
// come from a flow.
func StepName(err error) string {
	var stepErr *StepError
	if errors.As(err, &stepErr) {
		return stepErr.Step
	}
	return ""
}

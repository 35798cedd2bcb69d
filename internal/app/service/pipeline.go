package service

import (
	"context"
	"errors"
	"fmt"
)

// OutcomeKind tags how a fallback pipeline finished.
type OutcomeKind int

const (
	// OutcomeSuccess means one of the steps produced the value.
	OutcomeSuccess OutcomeKind = iota + 1
	// OutcomeDegraded means every step failed and the default value was used.
	OutcomeDegraded
	// OutcomeFailed means the pipeline stopped on a step that must not be skipped.
	OutcomeFailed
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSuccess:
		return "success"
	case OutcomeDegraded:
		return "degraded"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Step is one attempt in a fallback pipeline.
type Step[T any] struct {
	Name string
	Run  func(ctx context.Context) (T, error)
}

// Outcome is the tagged result of a fallback pipeline.
type Outcome[T any] struct {
	Kind  OutcomeKind
	Value T
	// Step is the name of the step that produced Value, empty for the default.
	Step string
	// Errors holds the failure of every step that was tried and failed, in order.
	Errors []error
}

// Err joins the step failures.
func (o Outcome[T]) Err() error {
	return errors.Join(o.Errors...)
}

// Fallback runs steps in order and returns the first success.
// A cancelled context stops the pipeline with OutcomeFailed.
// When every step fails the default value is returned as OutcomeDegraded.
func Fallback[T any](ctx context.Context, def T, steps ...Step[T]) Outcome[T] {
	out := Outcome[T]{}
	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			out.Kind = OutcomeFailed
			out.Value = def
			out.Errors = append(out.Errors, err)
			return out
		}
		v, err := step.Run(ctx)
		if err == nil {
			out.Kind = OutcomeSuccess
			out.Value = v
			out.Step = step.Name
			return out
		}
		out.Errors = append(out.Errors, fmt.Errorf("%s: %w", step.Name, err))
	}
	out.Kind = OutcomeDegraded
	out.Value = def
	return out
}

package model

import (
	"context"
	"errors"
)

// ErrSolverFailure marks a solve that ended without a usable status:
// numeric breakdown, cancellation, or a limit hit before any solution was found.
var ErrSolverFailure = errors.New("solver failure")

// Solver solves a Model. Infeasible and unbounded models are reported through
// Solution.Status; the error return is reserved for solver failures.
type Solver interface {
	Solve(ctx context.Context, m *Model) (*Solution, error)
}

// SolverFunc adapts a function to the Solver interface
type SolverFunc func(ctx context.Context, m *Model) (*Solution, error)

// Solve calls f
func (f SolverFunc) Solve(ctx context.Context, m *Model) (*Solution, error) {
	return f(ctx, m)
}

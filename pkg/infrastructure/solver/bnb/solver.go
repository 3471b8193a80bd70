// Package bnb is a pure-Go MILP backend: depth-first branch-and-bound over
// LP relaxations solved with gonum's simplex. It is adequate for models with
// a few hundred variables.
package bnb

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/vsinha/factoryplan/pkg/domain/model"
)

var errNodeLimit = errors.New("node limit reached")

// Options tunes the search
type Options struct {
	// IntegralityTolerance is how far from an integer a value may be and still count as integral
	IntegralityTolerance float64
	// SimplexTolerance is the reduced cost tolerance handed to the simplex
	SimplexTolerance float64
	// MaxNodes stops the search after this many relaxations (0 = unlimited)
	MaxNodes int
	// TimeLimit stops the search after this duration (0 = unlimited)
	TimeLimit time.Duration
	// Relax solves only the LP relaxation and ignores integrality
	Relax  bool
	Logger *zap.Logger
}

// DefaultOptions returns the options used by New when fields are left zero
func DefaultOptions() Options {
	return Options{
		IntegralityTolerance: 1e-6,
		SimplexTolerance:     1e-9,
	}
}

// Solver solves a model.Model by branch-and-bound
type Solver struct {
	opts   Options
	logger *zap.Logger
}

var _ model.Solver = (*Solver)(nil)

// New creates a solver. Zero tolerances are replaced by the defaults.
func New(opts Options) *Solver {
	defaults := DefaultOptions()
	if opts.IntegralityTolerance <= 0 {
		opts.IntegralityTolerance = defaults.IntegralityTolerance
	}
	if opts.SimplexTolerance <= 0 {
		opts.SimplexTolerance = defaults.SimplexTolerance
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.L()
	}
	return &Solver{
		opts:   opts,
		logger: logger.Named("bnb"),
	}
}

type node struct {
	lo, hi []float64
	depth  int
}

// Solve runs the search. Infeasible and unbounded models come back as a
// status. A limit that stops the search with an incumbent in hand yields
// Feasible; without one, or on cancellation, the error wraps
// model.ErrSolverFailure.
func (s *Solver) Solve(ctx context.Context, m *model.Model) (*model.Solution, error) {
	if m == nil {
		return nil, fmt.Errorf("%w: nil model", model.ErrSolverFailure)
	}
	if s.opts.TimeLimit > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.TimeLimit)
		defer cancel()
	}

	start := time.Now()
	p := newProblem(m, s.opts.SimplexTolerance)
	lo, hi := s.rootBounds(m)

	if s.opts.Relax {
		return s.solveRelaxation(p, lo, hi)
	}

	var (
		incumbent      []float64
		incumbentValue = math.Inf(1)
		nodes          int
		skipped        int
		stopped        error
	)

	stack := []node{{lo: lo, hi: hi}}
	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			stopped = err
			break
		}
		if s.opts.MaxNodes > 0 && nodes >= s.opts.MaxNodes {
			stopped = errNodeLimit
			break
		}

		nd := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		nodes++

		r, err := p.relax(nd.lo, nd.hi)
		if err != nil {
			if nodes == 1 {
				return nil, fmt.Errorf("%w: root relaxation of %s: %v", model.ErrSolverFailure, m.Name(), err)
			}
			s.logger.Debug("Skipping node after numeric failure", zap.Int("depth", nd.depth), zap.Error(err))
			skipped++
			continue
		}

		switch r.status {
		case lpInfeasible:
			continue
		case lpUnbounded:
			if nodes == 1 {
				return s.finish(m, model.Unbounded, nil, nodes, start), nil
			}
			skipped++
			continue
		}

		if incumbent != nil && !p.canImprove(r.value, incumbentValue) {
			continue
		}

		j := p.branchVariable(r.x, s.opts.IntegralityTolerance)
		if j < 0 {
			values := p.roundIntegers(r.x)
			if !p.feasible(values) {
				skipped++
				continue
			}
			if value := p.objective(values); value < incumbentValue {
				incumbent, incumbentValue = values, value
				s.logger.Debug("New incumbent",
					zap.Float64("objective", m.ObjectiveValue(values)),
					zap.Int("nodes", nodes),
					zap.Int("depth", nd.depth))
			}
			continue
		}

		f := r.x[j]
		down := node{lo: nd.lo, hi: cloneWith(nd.hi, j, math.Floor(f)), depth: nd.depth + 1}
		up := node{lo: cloneWith(nd.lo, j, math.Ceil(f)), hi: nd.hi, depth: nd.depth + 1}
		if f-math.Floor(f) < 0.5 {
			stack = append(stack, up, down)
		} else {
			stack = append(stack, down, up)
		}
	}

	switch {
	case stopped == nil && skipped == 0:
		if incumbent == nil {
			return s.finish(m, model.Infeasible, nil, nodes, start), nil
		}
		return s.finish(m, model.Optimal, incumbent, nodes, start), nil
	case errors.Is(stopped, context.Canceled):
		return nil, fmt.Errorf("%w: %s after %d nodes: %v", model.ErrSolverFailure, m.Name(), nodes, stopped)
	case incumbent != nil:
		return s.finish(m, model.Feasible, incumbent, nodes, start), nil
	case stopped != nil:
		return nil, fmt.Errorf("%w: %s after %d nodes without an integer solution: %v", model.ErrSolverFailure, m.Name(), nodes, stopped)
	default:
		return nil, fmt.Errorf("%w: %s: %d nodes failed numerically and no integer solution was found", model.ErrSolverFailure, m.Name(), skipped)
	}
}

func (s *Solver) solveRelaxation(p *problem, lo, hi []float64) (*model.Solution, error) {
	start := time.Now()
	r, err := p.relax(lo, hi)
	if err != nil {
		return nil, fmt.Errorf("%w: relaxation of %s: %v", model.ErrSolverFailure, p.model.Name(), err)
	}
	switch r.status {
	case lpInfeasible:
		return s.finish(p.model, model.Infeasible, nil, 1, start), nil
	case lpUnbounded:
		return s.finish(p.model, model.Unbounded, nil, 1, start), nil
	default:
		return s.finish(p.model, model.Optimal, r.x, 1, start), nil
	}
}

func (s *Solver) finish(m *model.Model, status model.Status, values []float64, nodes int, start time.Time) *model.Solution {
	objective := math.NaN()
	if values != nil {
		objective = m.ObjectiveValue(values)
	}
	solution := model.NewSolution(status, objective, values)
	solution.Nodes = nodes
	s.logger.Debug("Search finished",
		zap.String("model", m.Name()),
		zap.Stringer("status", status),
		zap.Float64("objective", objective),
		zap.Int("nodes", nodes),
		zap.Duration("elapsed", time.Since(start)))
	return solution
}

// rootBounds copies the model bounds, tightened to integers for integer variables
func (s *Solver) rootBounds(m *model.Model) ([]float64, []float64) {
	vars := m.Variables()
	lo := make([]float64, len(vars))
	hi := make([]float64, len(vars))
	for i, v := range vars {
		lo[i], hi[i] = v.Lower, v.Upper
		if v.Integer && !s.opts.Relax {
			lo[i] = math.Ceil(lo[i] - s.opts.IntegralityTolerance)
			if !math.IsInf(hi[i], 1) {
				hi[i] = math.Floor(hi[i] + s.opts.IntegralityTolerance)
			}
		}
	}
	return lo, hi
}

// canImprove reports whether a node whose relaxation has value bound could
// still hold a solution strictly better than the incumbent
func (p *problem) canImprove(bound, incumbent float64) bool {
	if p.granularity > 0 {
		return bound <= incumbent-p.granularity+feasTol
	}
	return bound < incumbent-1e-9*(1+math.Abs(incumbent))
}

// branchVariable returns the most fractional integer variable, or -1
func (p *problem) branchVariable(x []float64, tol float64) int {
	best, bestDist := -1, tol
	for i, v := range x {
		if !p.integer[i] {
			continue
		}
		dist := math.Abs(v - math.Round(v))
		if dist > bestDist {
			best, bestDist = i, dist
		}
	}
	return best
}

func (p *problem) roundIntegers(x []float64) []float64 {
	out := make([]float64, len(x))
	for i, v := range x {
		if p.integer[i] {
			v = math.Round(v)
		}
		out[i] = v
	}
	return out
}

// feasible checks values against every row and bound of the model
func (p *problem) feasible(values []float64) bool {
	for _, v := range p.model.Variables() {
		x := values[v.ID]
		if x < v.Lower-feasTol || x > v.Upper+feasTol {
			return false
		}
	}
	for _, c := range p.rows {
		if !c.Satisfied(values, feasTol*(1+math.Abs(c.RHS))) {
			return false
		}
	}
	return true
}

func cloneWith(bounds []float64, i int, v float64) []float64 {
	out := make([]float64, len(bounds))
	copy(out, bounds)
	out[i] = v
	return out
}

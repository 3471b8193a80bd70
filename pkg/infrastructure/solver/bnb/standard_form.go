package bnb

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"

	"github.com/vsinha/factoryplan/pkg/domain/model"
)

type lpStatus int

const (
	lpOptimal lpStatus = iota
	lpInfeasible
	lpUnbounded
)

const (
	// feasTol is the row and bound tolerance used outside the simplex
	feasTol = 1e-6
	// condLimit marks a set of rows as linearly dependent
	condLimit = 1e12
)

// relaxation is the result of one LP solve in minimization form
type relaxation struct {
	status lpStatus
	value  float64
	x      []float64
}

// problem is the static, minimization-form view of a Model shared by all nodes
type problem struct {
	model       *model.Model
	n           int
	cost        []float64
	constant    float64
	integer     []bool
	rows        []model.Constraint
	granularity float64
	simplexTol  float64
}

func newProblem(m *model.Model, simplexTol float64) *problem {
	p := &problem{
		model:      m,
		n:          m.NumVariables(),
		cost:       make([]float64, m.NumVariables()),
		integer:    make([]bool, m.NumVariables()),
		rows:       m.Constraints(),
		simplexTol: simplexTol,
	}
	sign := 1.0
	if m.Sense() == model.Maximize {
		sign = -1
	}
	terms, constant := m.Objective()
	for _, t := range terms {
		p.cost[t.Var] = sign * t.Coef
	}
	p.constant = sign * constant
	for i, v := range m.Variables() {
		p.integer[i] = v.Integer
	}
	p.granularity = objectiveGranularity(terms, p.integer)
	return p
}

// objectiveGranularity returns the largest step g such that every objective
// coefficient is a multiple of g and sits on an integer variable. Any two
// integer solutions then differ in objective by a multiple of g. Zero means
// no such step is known.
func objectiveGranularity(terms []model.Term, integer []bool) float64 {
	for _, t := range terms {
		if !integer[t.Var] {
			return 0
		}
	}
	for _, g := range []float64{1, 0.5, 0.25, 0.1, 0.05, 0.01} {
		fits := true
		for _, t := range terms {
			q := t.Coef / g
			if math.Abs(q-math.Round(q)) > 1e-9 {
				fits = false
				break
			}
		}
		if fits {
			return g
		}
	}
	return 0
}

// objective evaluates the minimization objective at x
func (p *problem) objective(x []float64) float64 {
	total := p.constant
	for i, c := range p.cost {
		total += c * x[i]
	}
	return total
}

// stdRow is one row over the kept structural columns, before slacks are added
type stdRow struct {
	cols  []int
	coefs []float64
	op    model.Operator
	rhs   float64
}

func (r stdRow) satisfied(y []float64) bool {
	lhs := 0.0
	for i, c := range r.cols {
		lhs += r.coefs[i] * y[c]
	}
	tol := feasTol * (1 + math.Abs(r.rhs))
	switch r.op {
	case model.LessEqual:
		return lhs <= r.rhs+tol
	case model.GreaterEqual:
		return lhs >= r.rhs-tol
	default:
		return math.Abs(lhs-r.rhs) <= tol
	}
}

// singletonOutside reports whether a one-column row forces its column
// outside [0, width]
func (r stdRow) singletonOutside(width float64) bool {
	v := r.rhs / r.coefs[0]
	tol := feasTol * (1 + math.Abs(v))
	switch {
	case r.op == model.Equal:
		return v < -tol || v > width+tol
	case (r.op == model.LessEqual) == (r.coefs[0] > 0):
		// column <= v
		return v < -tol
	default:
		// column >= v
		return v > width+tol
	}
}

// relax solves the LP relaxation restricted to the box [lo, hi].
//
// Variables are shifted to y = x - lo >= 0. Fixed variables and variables
// that appear in no row are folded away, finite upper bounds become rows
// y + t = hi - lo, and inequality rows get a slack column. The result is the
// equality form gonum's simplex expects.
func (p *problem) relax(lo, hi []float64) (*relaxation, error) {
	x := make([]float64, p.n)
	copy(x, lo)

	appears := make([]bool, p.n)
	for _, row := range p.rows {
		for _, t := range row.Terms {
			if t.Coef != 0 {
				appears[t.Var] = true
			}
		}
	}

	col := make([]int, p.n)
	var structural []int
	for v := 0; v < p.n; v++ {
		col[v] = -1
		if lo[v] > hi[v]+feasTol {
			return &relaxation{status: lpInfeasible}, nil
		}
		if hi[v]-lo[v] <= feasTol {
			continue
		}
		if math.IsInf(hi[v], 1) && !appears[v] {
			if p.cost[v] < 0 {
				return &relaxation{status: lpUnbounded}, nil
			}
			continue
		}
		col[v] = len(structural)
		structural = append(structural, v)
	}

	rows := make([]stdRow, 0, len(p.rows)+len(structural))
	for _, c := range p.rows {
		row := stdRow{op: c.Op, rhs: c.RHS}
		for _, t := range c.Terms {
			row.rhs -= t.Coef * lo[t.Var]
			if col[t.Var] >= 0 && t.Coef != 0 {
				row.cols = append(row.cols, col[t.Var])
				row.coefs = append(row.coefs, t.Coef)
			}
		}
		if len(row.cols) == 0 {
			if !row.satisfied(nil) {
				return &relaxation{status: lpInfeasible}, nil
			}
			continue
		}
		if len(row.cols) == 1 {
			v := structural[row.cols[0]]
			if row.singletonOutside(hi[v] - lo[v]) {
				return &relaxation{status: lpInfeasible}, nil
			}
		}
		rows = append(rows, row)
	}
	for j, v := range structural {
		if !math.IsInf(hi[v], 1) {
			rows = append(rows, stdRow{
				cols:  []int{j},
				coefs: []float64{1},
				op:    model.LessEqual,
				rhs:   hi[v] - lo[v],
			})
		}
	}

	if len(structural) > 0 {
		y, status, err := p.solveStandard(structural, rows)
		if err != nil || status != lpOptimal {
			return &relaxation{status: status}, err
		}
		for j, v := range structural {
			x[v] = lo[v] + y[j]
		}
	}

	return &relaxation{
		status: lpOptimal,
		value:  p.objective(x),
		x:      x,
	}, nil
}

// solveStandard adds slacks, calls the simplex and returns the structural part
// of the optimum. Dependent equality rows are removed when the simplex reports
// a singular system, and checked against the answer afterwards.
func (p *problem) solveStandard(structural []int, rows []stdRow) ([]float64, lpStatus, error) {
	nStruct := len(structural)
	if len(rows) == 0 {
		return make([]float64, nStruct), lpOptimal, nil
	}
	kept := make([]int, len(rows))
	for i := range rows {
		kept[i] = i
	}

	reduced := false
	if len(rows) > nStruct+countSlacks(rows) {
		kept = independentRows(rows, nStruct)
		reduced = true
	}

	for {
		a, b, c := p.assemble(structural, rows, kept)
		_, z, err := lp.Simplex(c, a, b, p.simplexTol, nil)
		switch {
		case err == nil:
			y := z[:nStruct]
			if reduced {
				for _, r := range rows {
					if !r.satisfied(y) {
						return nil, lpInfeasible, nil
					}
				}
			}
			return y, lpOptimal, nil
		case errors.Is(err, lp.ErrInfeasible):
			return nil, lpInfeasible, nil
		case errors.Is(err, lp.ErrUnbounded):
			return nil, lpUnbounded, nil
		case errors.Is(err, lp.ErrSingular) && !reduced:
			kept = independentRows(rows, nStruct)
			reduced = true
		default:
			return nil, lpOptimal, fmt.Errorf("simplex on %d rows x %d columns: %w", len(kept), nStruct, err)
		}
	}
}

func countSlacks(rows []stdRow) int {
	n := 0
	for _, r := range rows {
		if r.op != model.Equal {
			n++
		}
	}
	return n
}

// assemble builds A, b and c for the kept rows. Slack columns follow the
// structural ones in row order.
func (p *problem) assemble(structural []int, rows []stdRow, kept []int) (*mat.Dense, []float64, []float64) {
	nStruct := len(structural)
	slacks := 0
	for _, i := range kept {
		if rows[i].op != model.Equal {
			slacks++
		}
	}

	a := mat.NewDense(len(kept), nStruct+slacks, nil)
	b := make([]float64, len(kept))
	c := make([]float64, nStruct+slacks)
	for j, v := range structural {
		c[j] = p.cost[v]
	}

	slack := nStruct
	for r, i := range kept {
		row := rows[i]
		for k, j := range row.cols {
			a.Set(r, j, a.At(r, j)+row.coefs[k])
		}
		b[r] = row.rhs
		switch row.op {
		case model.LessEqual:
			a.Set(r, slack, 1)
			slack++
		case model.GreaterEqual:
			a.Set(r, slack, -1)
			slack++
		}
	}
	return a, b, c
}

// independentRows picks a maximal set of rows whose coefficient vectors
// (slack columns included) are linearly independent. Rows carrying a slack
// are always independent of the others and are kept.
func independentRows(rows []stdRow, nStruct int) []int {
	kept := make([]int, 0, len(rows))
	var eqs []int
	for i, r := range rows {
		if r.op != model.Equal {
			kept = append(kept, i)
			continue
		}
		eqs = append(eqs, i)
	}
	if len(eqs) == 0 {
		return kept
	}

	// Rows with a slack only touch their own slack column, so equality rows
	// can be tested for dependence among themselves on the structural part.
	basis := mat.NewDense(nStruct, nStruct, nil)
	vec := make([]float64, nStruct)
	var chosen []int
	for _, i := range eqs {
		if len(chosen) == nStruct {
			break
		}
		for k := range vec {
			vec[k] = 0
		}
		for k, j := range rows[i].cols {
			vec[j] += rows[i].coefs[k]
		}
		basis.SetCol(len(chosen), vec)
		candidate := basis.Slice(0, nStruct, 0, len(chosen)+1)
		if mat.Cond(candidate, 1) > condLimit {
			continue
		}
		chosen = append(chosen, i)
	}
	return append(kept, chosen...)
}

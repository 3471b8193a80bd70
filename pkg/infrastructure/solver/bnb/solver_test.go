package bnb

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vsinha/factoryplan/pkg/domain/model"
)

type testVar struct {
	name    string
	lo, hi  float64
	integer bool
}

type testRow struct {
	coefs []float64
	op    model.Operator
	rhs   float64
}

// buildModel creates a dense little model: coefs are indexed like vars
func buildModel(t *testing.T, sense model.Sense, vars []testVar, objective []float64, rows []testRow) (*model.Model, []model.VarID) {
	t.Helper()
	b := model.NewBuilder("test", sense)
	ids := make([]model.VarID, len(vars))
	for i, v := range vars {
		id, err := b.AddVariable(v.name, v.lo, v.hi, v.integer)
		require.NoError(t, err)
		ids[i] = id
	}
	for r, row := range rows {
		expr := model.NewExpr()
		for i, c := range row.coefs {
			if c != 0 {
				expr.AddTerm(ids[i], c)
			}
		}
		require.NoError(t, b.AddConstraint("r"+string(rune('a'+r)), expr, row.op, row.rhs))
	}
	obj := model.NewExpr()
	for i, c := range objective {
		obj.AddTerm(ids[i], c)
	}
	require.NoError(t, b.SetObjective(obj))
	m, err := b.Build()
	require.NoError(t, err)
	return m, ids
}

func value(t *testing.T, s *model.Solution, id model.VarID) float64 {
	t.Helper()
	v, ok := s.Value(id)
	require.True(t, ok, "expected a value for variable %d", id)
	return v
}

func TestSolve_ContinuousLP(t *testing.T) {
	inf := math.Inf(1)
	m, ids := buildModel(t, model.Maximize,
		[]testVar{{name: "x", hi: inf}, {name: "y", hi: inf}},
		[]float64{1, 1},
		[]testRow{
			{coefs: []float64{1, 2}, op: model.LessEqual, rhs: 4},
			{coefs: []float64{3, 1}, op: model.LessEqual, rhs: 6},
		})

	sol, err := New(Options{}).Solve(context.Background(), m)
	require.NoError(t, err)
	assert.Equal(t, model.Optimal, sol.Status)
	assert.InDelta(t, 2.8, sol.Objective, 1e-6)
	assert.InDelta(t, 1.6, value(t, sol, ids[0]), 1e-6)
	assert.InDelta(t, 1.2, value(t, sol, ids[1]), 1e-6)
}

func TestSolve_IntegerBranching(t *testing.T) {
	inf := math.Inf(1)
	m, ids := buildModel(t, model.Maximize,
		[]testVar{{name: "x", hi: inf, integer: true}, {name: "y", hi: inf, integer: true}},
		[]float64{8, 5},
		[]testRow{
			{coefs: []float64{1, 1}, op: model.LessEqual, rhs: 6},
			{coefs: []float64{9, 5}, op: model.LessEqual, rhs: 45},
		})

	relaxed, err := New(Options{Relax: true}).Solve(context.Background(), m)
	require.NoError(t, err)
	assert.Equal(t, model.Optimal, relaxed.Status)
	assert.InDelta(t, 41.25, relaxed.Objective, 1e-6)

	sol, err := New(Options{}).Solve(context.Background(), m)
	require.NoError(t, err)
	assert.Equal(t, model.Optimal, sol.Status)
	assert.InDelta(t, 40, sol.Objective, 1e-6)
	assert.Equal(t, 5.0, value(t, sol, ids[0]))
	assert.Equal(t, 0.0, value(t, sol, ids[1]))
	assert.Greater(t, sol.Nodes, 1)
}

func TestSolve_HalfIntegralRelaxation(t *testing.T) {
	m, _ := buildModel(t, model.Maximize,
		[]testVar{{name: "x", hi: 10, integer: true}, {name: "y", hi: 10, integer: true}},
		[]float64{1, 1},
		[]testRow{{coefs: []float64{2, 2}, op: model.LessEqual, rhs: 3}})

	sol, err := New(Options{}).Solve(context.Background(), m)
	require.NoError(t, err)
	assert.Equal(t, model.Optimal, sol.Status)
	assert.InDelta(t, 1, sol.Objective, 1e-9)
}

func TestSolve_Minimize(t *testing.T) {
	m, ids := buildModel(t, model.Minimize,
		[]testVar{{name: "x", lo: 1, hi: 10}, {name: "y", hi: 10}},
		[]float64{2, 3},
		[]testRow{{coefs: []float64{1, 1}, op: model.GreaterEqual, rhs: 4}})

	sol, err := New(Options{}).Solve(context.Background(), m)
	require.NoError(t, err)
	assert.Equal(t, model.Optimal, sol.Status)
	assert.InDelta(t, 8, sol.Objective, 1e-6)
	assert.InDelta(t, 4, value(t, sol, ids[0]), 1e-6)
}

func TestSolve_Infeasible(t *testing.T) {
	m, _ := buildModel(t, model.Maximize,
		[]testVar{{name: "x", hi: 1}, {name: "y", hi: 1}},
		[]float64{1, 1},
		[]testRow{{coefs: []float64{1, 1}, op: model.GreaterEqual, rhs: 5}})

	sol, err := New(Options{}).Solve(context.Background(), m)
	require.NoError(t, err)
	assert.Equal(t, model.Infeasible, sol.Status)
	_, ok := sol.Value(0)
	assert.False(t, ok)
	assert.True(t, math.IsNaN(sol.Objective))
}

func TestSolve_IntegerInfeasible(t *testing.T) {
	m, _ := buildModel(t, model.Maximize,
		[]testVar{{name: "x", hi: 5, integer: true}},
		[]float64{1},
		[]testRow{{coefs: []float64{2}, op: model.Equal, rhs: 1}})

	relaxed, err := New(Options{Relax: true}).Solve(context.Background(), m)
	require.NoError(t, err)
	assert.Equal(t, model.Optimal, relaxed.Status)

	sol, err := New(Options{}).Solve(context.Background(), m)
	require.NoError(t, err)
	assert.Equal(t, model.Infeasible, sol.Status)
}

func TestSolve_Unbounded(t *testing.T) {
	inf := math.Inf(1)
	m, _ := buildModel(t, model.Maximize,
		[]testVar{{name: "x", hi: inf}, {name: "y", hi: inf}},
		[]float64{1, 0},
		[]testRow{{coefs: []float64{1, -1}, op: model.LessEqual, rhs: 1}})

	sol, err := New(Options{}).Solve(context.Background(), m)
	require.NoError(t, err)
	assert.Equal(t, model.Unbounded, sol.Status)
}

func TestSolve_FreeColumnUnbounded(t *testing.T) {
	inf := math.Inf(1)
	m, _ := buildModel(t, model.Maximize,
		[]testVar{{name: "x", hi: 3}, {name: "z", hi: inf}},
		[]float64{1, 1},
		[]testRow{{coefs: []float64{1, 0}, op: model.LessEqual, rhs: 2}})

	sol, err := New(Options{}).Solve(context.Background(), m)
	require.NoError(t, err)
	assert.Equal(t, model.Unbounded, sol.Status)
}

func TestSolve_DependentEqualities(t *testing.T) {
	m, ids := buildModel(t, model.Maximize,
		[]testVar{{name: "x", hi: 5}, {name: "y", hi: 5}},
		[]float64{1, 0},
		[]testRow{
			{coefs: []float64{1, 1}, op: model.Equal, rhs: 2},
			{coefs: []float64{2, 2}, op: model.Equal, rhs: 4},
		})

	sol, err := New(Options{}).Solve(context.Background(), m)
	require.NoError(t, err)
	assert.Equal(t, model.Optimal, sol.Status)
	assert.InDelta(t, 2, value(t, sol, ids[0]), 1e-6)
	assert.InDelta(t, 0, value(t, sol, ids[1]), 1e-6)
}

func TestSolve_InconsistentEqualities(t *testing.T) {
	m, _ := buildModel(t, model.Maximize,
		[]testVar{{name: "x", hi: 5}, {name: "y", hi: 5}},
		[]float64{1, 0},
		[]testRow{
			{coefs: []float64{1, 1}, op: model.Equal, rhs: 2},
			{coefs: []float64{2, 2}, op: model.Equal, rhs: 5},
		})

	sol, err := New(Options{}).Solve(context.Background(), m)
	require.NoError(t, err)
	assert.Equal(t, model.Infeasible, sol.Status)
}

func TestSolve_FixedVariablesFoldIntoRows(t *testing.T) {
	m, ids := buildModel(t, model.Maximize,
		[]testVar{{name: "x", lo: 3, hi: 3, integer: true}, {name: "y", hi: 10, integer: true}},
		[]float64{1, 1},
		[]testRow{{coefs: []float64{1, 1}, op: model.LessEqual, rhs: 7}})

	sol, err := New(Options{}).Solve(context.Background(), m)
	require.NoError(t, err)
	assert.Equal(t, model.Optimal, sol.Status)
	assert.Equal(t, 3.0, value(t, sol, ids[0]))
	assert.Equal(t, 4.0, value(t, sol, ids[1]))
}

func TestSolve_NodeLimitWithoutIncumbent(t *testing.T) {
	inf := math.Inf(1)
	m, _ := buildModel(t, model.Maximize,
		[]testVar{{name: "x", hi: inf, integer: true}, {name: "y", hi: inf, integer: true}},
		[]float64{8, 5},
		[]testRow{
			{coefs: []float64{1, 1}, op: model.LessEqual, rhs: 6},
			{coefs: []float64{9, 5}, op: model.LessEqual, rhs: 45},
		})

	_, err := New(Options{MaxNodes: 1}).Solve(context.Background(), m)
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrSolverFailure)
}

func TestSolve_Cancelled(t *testing.T) {
	m, _ := buildModel(t, model.Maximize,
		[]testVar{{name: "x", hi: 4, integer: true}},
		[]float64{1},
		nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(Options{}).Solve(ctx, m)
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrSolverFailure)
}

func TestSolve_NoRows(t *testing.T) {
	m, ids := buildModel(t, model.Maximize,
		[]testVar{{name: "x", hi: 4, integer: true}},
		[]float64{1},
		nil)

	sol, err := New(Options{}).Solve(context.Background(), m)
	require.NoError(t, err)
	assert.Equal(t, model.Optimal, sol.Status)
	assert.Equal(t, 4.0, value(t, sol, ids[0]))
}

func TestObjectiveGranularity(t *testing.T) {
	integer := []bool{true, true, false}
	testCases := []struct {
		name     string
		terms    []model.Term
		expected float64
	}{
		{"integral", []model.Term{{Var: 0, Coef: 10}, {Var: 1, Coef: -3}}, 1},
		{"halves", []model.Term{{Var: 0, Coef: 10}, {Var: 1, Coef: -0.5}}, 0.5},
		{"tenths", []model.Term{{Var: 0, Coef: 0.3}}, 0.1},
		{"irrational", []model.Term{{Var: 0, Coef: math.Pi}}, 0},
		{"continuous", []model.Term{{Var: 2, Coef: 1}}, 0},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, objectiveGranularity(tc.terms, integer))
		})
	}
}

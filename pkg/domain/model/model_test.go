package model

import (
	"math"
	"testing"
)

func TestBuilder_AddVariable_Validation(t *testing.T) {
	b := NewBuilder("test", Maximize)

	if _, err := b.AddVariable("x", 0, 10, true); err != nil {
		t.Fatalf("Expected valid variable to be accepted: %v", err)
	}

	testCases := []struct {
		name        string
		varName     string
		lower       float64
		upper       float64
		expectError string
	}{
		{"empty name", "", 0, 1, "variable name cannot be empty"},
		{"duplicate", "x", 0, 1, "duplicate variable name: x"},
		{"inverted bounds", "y", 5, 1, "variable y: upper bound 1 below lower bound 5"},
		{"infinite lower", "z", math.Inf(-1), 1, "variable z: lower bound must be finite, got -Inf"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := b.AddVariable(tc.varName, tc.lower, tc.upper, false)
			if err == nil {
				t.Fatalf("Expected error for %s, but got none", tc.name)
			}
			if err.Error() != tc.expectError {
				t.Errorf("Expected error '%s', got '%s'", tc.expectError, err.Error())
			}
		})
	}
}

func TestBuilder_AddConstraint_FoldsConstantAndMergesTerms(t *testing.T) {
	b := NewBuilder("test", Maximize)
	x, _ := b.AddVariable("x", 0, math.Inf(1), true)
	y, _ := b.AddVariable("y", 0, 4, true)

	// 4 - y + 2x + x - 4 + y <= 9  ->  3x <= 9
	expr := Constant(4).AddTerm(y, -1).AddTerm(x, 2).AddTerm(x, 1).AddConstant(-4).AddTerm(y, 1)
	if err := b.AddConstraint("row", expr, LessEqual, 9); err != nil {
		t.Fatalf("AddConstraint failed: %v", err)
	}
	if err := b.SetObjective(NewExpr().AddTerm(x, 1)); err != nil {
		t.Fatalf("SetObjective failed: %v", err)
	}

	m, err := b.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	row := m.Constraint(0)
	if len(row.Terms) != 1 {
		t.Fatalf("Expected 1 merged term, got %d: %v", len(row.Terms), row.Terms)
	}
	if row.Terms[0].Var != x || row.Terms[0].Coef != 3 {
		t.Errorf("Expected term 3*x, got %v", row.Terms[0])
	}
	if row.RHS != 9 {
		t.Errorf("Expected RHS 9, got %g", row.RHS)
	}
}

func TestBuilder_RejectsUnknownVariable(t *testing.T) {
	b := NewBuilder("test", Minimize)
	if err := b.AddConstraint("bad", NewExpr().AddTerm(VarID(3), 1), Equal, 0); err == nil {
		t.Fatal("Expected error for unknown variable")
	}
}

func TestBuilder_BuildFreezes(t *testing.T) {
	b := NewBuilder("test", Maximize)
	x, _ := b.AddVariable("x", 0, 1, false)
	_ = b.SetObjective(NewExpr().AddTerm(x, 1))

	m, err := b.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if _, err := b.AddVariable("y", 0, 1, false); err == nil {
		t.Error("Expected AddVariable after Build to fail")
	}
	if _, err := b.Build(); err == nil {
		t.Error("Expected second Build to fail")
	}

	// Accessors hand out copies
	vars := m.Variables()
	vars[0].Upper = 99
	if m.Variable(x).Upper != 1 {
		t.Error("Model variables must not be mutable through Variables()")
	}
}

func TestBuilder_BuildRequiresObjective(t *testing.T) {
	b := NewBuilder("empty", Maximize)
	if _, err := b.Build(); err == nil {
		t.Fatal("Expected error for missing objective")
	}
}

func TestBuilder_NilExpressionsAreEmpty(t *testing.T) {
	b := NewBuilder("nil", Maximize)
	if err := b.SetObjective(nil); err != nil {
		t.Fatalf("SetObjective(nil) failed: %v", err)
	}
	if err := b.AddConstraint("empty", nil, LessEqual, 1); err != nil {
		t.Fatalf("AddConstraint(nil) failed: %v", err)
	}
	m, err := b.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	terms, constant := m.Objective()
	if len(terms) != 0 || constant != 0 {
		t.Errorf("Expected empty objective, got %v + %g", terms, constant)
	}
}

func TestModel_Stats(t *testing.T) {
	b := NewBuilder("stats", Maximize)
	x, _ := b.AddVariable("x", 0, 1, true)
	y, _ := b.AddVariable("y", 0, 1, false)
	_ = b.AddConstraint("r1", NewExpr().AddTerm(x, 1).AddTerm(y, 1), LessEqual, 1)
	_ = b.AddConstraint("r2", NewExpr().AddTerm(x, 1), GreaterEqual, 0)
	_ = b.SetObjective(NewExpr().AddTerm(x, 2).AddTerm(y, 1))
	m, _ := b.Build()

	stats := m.Stats()
	if stats.Variables != 2 || stats.IntegerVariables != 1 || stats.Constraints != 2 || stats.NonZeros != 3 {
		t.Errorf("Unexpected stats: %+v", stats)
	}
	if got := m.ObjectiveValue([]float64{1, 0.5}); got != 2.5 {
		t.Errorf("Expected objective 2.5, got %g", got)
	}
}

func TestConstraint_Satisfied(t *testing.T) {
	c := Constraint{Terms: []Term{{Var: 0, Coef: 2}, {Var: 1, Coef: -1}}, Op: Equal, RHS: 3}
	if !c.Satisfied([]float64{2, 1}, 1e-9) {
		t.Error("Expected 2*2-1 = 3 to satisfy equality")
	}
	if c.Satisfied([]float64{2, 0}, 1e-9) {
		t.Error("Expected 2*2-0 = 4 to violate equality")
	}
	c.Op = LessEqual
	if !c.Satisfied([]float64{1, 1}, 1e-9) {
		t.Error("Expected 1 <= 3")
	}
	c.Op = GreaterEqual
	if c.Satisfied([]float64{1, 1}, 1e-9) {
		t.Error("Expected 1 >= 3 to fail")
	}
}

func TestSolution_ValuesOnlyForSolvedStatuses(t *testing.T) {
	solved := NewSolution(Optimal, 10, []float64{1, 2})
	if v, ok := solved.Value(1); !ok || v != 2 {
		t.Errorf("Expected value 2, got %g (ok=%t)", v, ok)
	}
	if _, ok := solved.Value(5); ok {
		t.Error("Expected out-of-range lookup to report no value")
	}

	for _, status := range []Status{NotSolved, Infeasible, Unbounded} {
		s := NewSolution(status, 10, []float64{1, 2})
		if _, ok := s.Value(0); ok {
			t.Errorf("Expected no values for status %s", status)
		}
		if !math.IsNaN(s.Objective) {
			t.Errorf("Expected NaN objective for status %s, got %g", status, s.Objective)
		}
	}
}

func TestStatus_TextRoundTrip(t *testing.T) {
	for _, s := range []Status{NotSolved, Optimal, Feasible, Infeasible, Unbounded} {
		text, _ := s.MarshalText()
		var back Status
		if err := back.UnmarshalText(text); err != nil {
			t.Fatalf("UnmarshalText(%q) failed: %v", text, err)
		}
		if back != s {
			t.Errorf("Expected %s, got %s", s, back)
		}
	}
	if _, err := ParseStatus("Bogus"); err == nil {
		t.Error("Expected error for unknown status")
	}
}

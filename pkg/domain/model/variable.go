// Package model is the solver-neutral representation of a linear program:
// bounded (optionally integer) variables, linear constraints and one linear
// objective. Planning code builds a Model, solver backends consume it.
package model

import (
	"fmt"
	"math"
)

// VarID identifies a variable inside one Model. IDs are dense and start at 0.
type VarID int

// Variable is a decision variable with solver-enforced bounds
type Variable struct {
	ID      VarID
	Name    string
	Lower   float64
	Upper   float64 // math.Inf(1) when unbounded above
	Integer bool
}

// HasUpperBound reports whether the variable is bounded above
func (v Variable) HasUpperBound() bool {
	return !math.IsInf(v.Upper, 1)
}

func (v Variable) String() string {
	kind := "continuous"
	if v.Integer {
		kind = "integer"
	}
	if v.HasUpperBound() {
		return fmt.Sprintf("%s in [%g, %g] %s", v.Name, v.Lower, v.Upper, kind)
	}
	return fmt.Sprintf("%s in [%g, +inf) %s", v.Name, v.Lower, kind)
}

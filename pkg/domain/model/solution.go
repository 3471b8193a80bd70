package model

import (
	"fmt"
	"math"
)

// Status is the outcome of a solve
type Status int

const (
	NotSolved Status = iota
	Optimal
	// Feasible means an integer solution was found but optimality was not proven
	// because a node or time limit stopped the search.
	Feasible
	Infeasible
	Unbounded
)

func (s Status) String() string {
	switch s {
	case NotSolved:
		return "Not Solved"
	case Optimal:
		return "Optimal"
	case Feasible:
		return "Feasible"
	case Infeasible:
		return "Infeasible"
	case Unbounded:
		return "Unbounded"
	default:
		return "Undefined"
	}
}

// HasValues reports whether a solution with this status carries variable values
func (s Status) HasValues() bool {
	return s == Optimal || s == Feasible
}

// MarshalText encodes the status by name
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a status name
func (s *Status) UnmarshalText(text []byte) error {
	parsed, err := ParseStatus(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ParseStatus is the inverse of Status.String
func ParseStatus(text string) (Status, error) {
	for _, s := range []Status{NotSolved, Optimal, Feasible, Infeasible, Unbounded} {
		if s.String() == text {
			return s, nil
		}
	}
	return NotSolved, fmt.Errorf("unknown solve status %q", text)
}

// Solution is what a solver hands back for a Model
type Solution struct {
	Status    Status
	Objective float64
	// Nodes is the number of relaxations the backend solved
	Nodes  int
	values []float64
}

// NewSolution creates a solution. values must be nil unless status carries values.
func NewSolution(status Status, objective float64, values []float64) *Solution {
	if !status.HasValues() {
		values = nil
		objective = math.NaN()
	}
	return &Solution{
		Status:    status,
		Objective: objective,
		values:    append([]float64(nil), values...),
	}
}

// Value returns the solved value of v; ok is false when no value exists
func (s *Solution) Value(v VarID) (float64, bool) {
	if !s.Status.HasValues() || int(v) < 0 || int(v) >= len(s.values) {
		return 0, false
	}
	return s.values[v], true
}

// Values returns a copy of all values ordered by variable id, or nil
func (s *Solution) Values() []float64 {
	if !s.Status.HasValues() {
		return nil
	}
	return append([]float64(nil), s.values...)
}

package model

import (
	"fmt"
	"math"
)

// Sense is the optimization direction
type Sense int

const (
	Maximize Sense = iota
	Minimize
)

func (s Sense) String() string {
	if s == Minimize {
		return "Minimize"
	}
	return "Maximize"
}

// Stats summarizes the size of a model
type Stats struct {
	Variables        int
	IntegerVariables int
	Constraints      int
	NonZeros         int
}

// Model is an assembled linear program. It is immutable: accessors return copies.
type Model struct {
	name        string
	sense       Sense
	variables   []Variable
	constraints []Constraint
	objective   []Term
	objConstant float64
}

// Name returns the model name
func (m *Model) Name() string { return m.name }

// Sense returns the optimization direction
func (m *Model) Sense() Sense { return m.sense }

// NumVariables returns the variable count
func (m *Model) NumVariables() int { return len(m.variables) }

// NumConstraints returns the constraint count
func (m *Model) NumConstraints() int { return len(m.constraints) }

// Variable returns the variable with the given id
func (m *Model) Variable(id VarID) Variable { return m.variables[id] }

// Variables returns a copy of all variables ordered by id
func (m *Model) Variables() []Variable {
	return append([]Variable(nil), m.variables...)
}

// Constraint returns row i
func (m *Model) Constraint(i int) Constraint {
	c := m.constraints[i]
	c.Terms = append([]Term(nil), c.Terms...)
	return c
}

// Constraints returns a deep copy of all rows in emission order
func (m *Model) Constraints() []Constraint {
	out := make([]Constraint, len(m.constraints))
	for i := range m.constraints {
		out[i] = m.Constraint(i)
	}
	return out
}

// Objective returns the merged objective terms and its constant
func (m *Model) Objective() ([]Term, float64) {
	return append([]Term(nil), m.objective...), m.objConstant
}

// ObjectiveValue evaluates the objective at values
func (m *Model) ObjectiveValue(values []float64) float64 {
	total := m.objConstant
	for _, t := range m.objective {
		total += t.Coef * values[t.Var]
	}
	return total
}

// Stats returns size information
func (m *Model) Stats() Stats {
	s := Stats{
		Variables:   len(m.variables),
		Constraints: len(m.constraints),
	}
	for _, v := range m.variables {
		if v.Integer {
			s.IntegerVariables++
		}
	}
	for _, c := range m.constraints {
		s.NonZeros += len(c.Terms)
	}
	return s
}

// Builder accumulates variables and rows for a single Model.
// A Builder is not safe for concurrent use; build one per goroutine.
type Builder struct {
	name        string
	sense       Sense
	variables   []Variable
	names       map[string]VarID
	constraints []Constraint
	objective   *LinearExpr
	built       bool
}

// NewBuilder creates a builder for a model with the given name and direction
func NewBuilder(name string, sense Sense) *Builder {
	return &Builder{
		name:  name,
		sense: sense,
		names: make(map[string]VarID),
	}
}

// AddVariable registers a variable and returns its id
func (b *Builder) AddVariable(name string, lower, upper float64, integer bool) (VarID, error) {
	if b.built {
		return 0, fmt.Errorf("model %s already built", b.name)
	}
	if name == "" {
		return 0, fmt.Errorf("variable name cannot be empty")
	}
	if _, exists := b.names[name]; exists {
		return 0, fmt.Errorf("duplicate variable name: %s", name)
	}
	if math.IsNaN(lower) || math.IsNaN(upper) || math.IsInf(lower, 0) {
		return 0, fmt.Errorf("variable %s: lower bound must be finite, got %g", name, lower)
	}
	if upper < lower {
		return 0, fmt.Errorf("variable %s: upper bound %g below lower bound %g", name, upper, lower)
	}

	id := VarID(len(b.variables))
	b.variables = append(b.variables, Variable{
		ID:      id,
		Name:    name,
		Lower:   lower,
		Upper:   upper,
		Integer: integer,
	})
	b.names[name] = id
	return id, nil
}

// AddConstraint adds expr op rhs. Constants in expr are moved to the right-hand side.
func (b *Builder) AddConstraint(name string, expr *LinearExpr, op Operator, rhs float64) error {
	if b.built {
		return fmt.Errorf("model %s already built", b.name)
	}
	if expr == nil {
		expr = NewExpr()
	}
	for _, t := range expr.terms {
		if int(t.Var) < 0 || int(t.Var) >= len(b.variables) {
			return fmt.Errorf("constraint %s references unknown variable %d", name, t.Var)
		}
	}
	b.constraints = append(b.constraints, Constraint{
		Name:  name,
		Terms: expr.Normalized(),
		Op:    op,
		RHS:   rhs - expr.constant,
	})
	return nil
}

// SetObjective replaces the objective expression
func (b *Builder) SetObjective(expr *LinearExpr) error {
	if b.built {
		return fmt.Errorf("model %s already built", b.name)
	}
	if expr == nil {
		expr = NewExpr()
	}
	for _, t := range expr.terms {
		if int(t.Var) < 0 || int(t.Var) >= len(b.variables) {
			return fmt.Errorf("objective references unknown variable %d", t.Var)
		}
	}
	b.objective = expr
	return nil
}

// Build freezes the builder into an immutable Model
func (b *Builder) Build() (*Model, error) {
	if b.built {
		return nil, fmt.Errorf("model %s already built", b.name)
	}
	if b.objective == nil {
		return nil, fmt.Errorf("model %s has no objective", b.name)
	}
	b.built = true
	return &Model{
		name:        b.name,
		sense:       b.sense,
		variables:   b.variables,
		constraints: b.constraints,
		objective:   b.objective.Normalized(),
		objConstant: b.objective.constant,
	}, nil
}

package model

import "fmt"

// Operator is the relation of a constraint row
type Operator int

const (
	LessEqual Operator = iota
	GreaterEqual
	Equal
)

func (o Operator) String() string {
	switch o {
	case LessEqual:
		return "<="
	case GreaterEqual:
		return ">="
	case Equal:
		return "="
	default:
		return "?"
	}
}

// Constraint is a normalized linear row: Σ Terms  Op  RHS
type Constraint struct {
	Name  string
	Terms []Term
	Op    Operator
	RHS   float64
}

// Satisfied checks the row against values within tol
func (c Constraint) Satisfied(values []float64, tol float64) bool {
	lhs := c.Activity(values)
	switch c.Op {
	case LessEqual:
		return lhs <= c.RHS+tol
	case GreaterEqual:
		return lhs >= c.RHS-tol
	default:
		return lhs >= c.RHS-tol && lhs <= c.RHS+tol
	}
}

// Activity is the left-hand side evaluated at values
func (c Constraint) Activity(values []float64) float64 {
	total := 0.0
	for _, t := range c.Terms {
		total += t.Coef * values[t.Var]
	}
	return total
}

func (c Constraint) String() string {
	return fmt.Sprintf("%s: %d terms %s %g", c.Name, len(c.Terms), c.Op, c.RHS)
}

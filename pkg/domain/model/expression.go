package model

import "sort"

// Term is one coefficient * variable product
type Term struct {
	Var  VarID
	Coef float64
}

// LinearExpr is a sum of terms plus a constant.
// The zero value is the empty expression.
type LinearExpr struct {
	terms    []Term
	constant float64
}

// NewExpr creates an empty expression
func NewExpr() *LinearExpr {
	return &LinearExpr{}
}

// Constant creates an expression holding only a constant
func Constant(c float64) *LinearExpr {
	return &LinearExpr{constant: c}
}

// AddTerm appends coef * v and returns the expression for chaining
func (e *LinearExpr) AddTerm(v VarID, coef float64) *LinearExpr {
	e.terms = append(e.terms, Term{Var: v, Coef: coef})
	return e
}

// AddConstant adds c to the constant part
func (e *LinearExpr) AddConstant(c float64) *LinearExpr {
	e.constant += c
	return e
}

// AddExpr adds scale * other into e
func (e *LinearExpr) AddExpr(other *LinearExpr, scale float64) *LinearExpr {
	if other == nil {
		return e
	}
	for _, t := range other.terms {
		e.terms = append(e.terms, Term{Var: t.Var, Coef: t.Coef * scale})
	}
	e.constant += other.constant * scale
	return e
}

// Terms returns a copy of the raw (unmerged) terms
func (e *LinearExpr) Terms() []Term {
	return append([]Term(nil), e.terms...)
}

// ConstantValue returns the constant part
func (e *LinearExpr) ConstantValue() float64 {
	return e.constant
}

// Len returns the number of raw terms
func (e *LinearExpr) Len() int {
	return len(e.terms)
}

// Normalized merges duplicate variables, drops zero coefficients and orders
// terms by variable id while keeping the first-seen order stable for equal ids.
func (e *LinearExpr) Normalized() []Term {
	if len(e.terms) == 0 {
		return nil
	}
	sum := make(map[VarID]float64, len(e.terms))
	order := make([]VarID, 0, len(e.terms))
	for _, t := range e.terms {
		if _, seen := sum[t.Var]; !seen {
			order = append(order, t.Var)
		}
		sum[t.Var] += t.Coef
	}
	sort.Slice(order, func(i, j int) bool { return order[i] < order[j] })
	out := make([]Term, 0, len(order))
	for _, v := range order {
		if c := sum[v]; c != 0 {
			out = append(out, Term{Var: v, Coef: c})
		}
	}
	return out
}

// Evaluate computes the expression for the given variable values
func (e *LinearExpr) Evaluate(values []float64) float64 {
	total := e.constant
	for _, t := range e.terms {
		total += t.Coef * values[t.Var]
	}
	return total
}

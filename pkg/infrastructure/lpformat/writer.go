// Package lpformat writes models in the CPLEX LP text format
package lpformat

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/vsinha/factoryplan/pkg/domain/model"
)

// maxLineWidth keeps lines well under the 510 character limit of the format
const maxLineWidth = 78

// Write encodes m to w
func Write(w io.Writer, m *model.Model) error {
	if m == nil {
		return fmt.Errorf("no model to write")
	}
	lw := &lineWriter{w: bufio.NewWriter(w)}

	lw.line(`\ Model ` + m.Name())
	terms, constant := m.Objective()
	if constant != 0 {
		lw.line(`\ Objective constant ` + formatNumber(constant))
	}

	lw.line(m.Sense().String())
	if len(terms) == 0 && m.NumVariables() > 0 {
		// An empty objective still needs one term to parse
		terms = []model.Term{{Var: 0, Coef: 0}}
	}
	lw.expression(" obj:", terms, m, "")

	lw.line("Subject To")
	for i, c := range m.Constraints() {
		name := sanitize(c.Name)
		if name == "" {
			name = fmt.Sprintf("c%d", i)
		}
		terms := c.Terms
		if len(terms) == 0 && m.NumVariables() > 0 {
			// Rows without terms still need one to parse
			terms = []model.Term{{Var: 0, Coef: 0}}
		}
		lw.expression(" "+name+":", terms, m, fmt.Sprintf(" %s %s", c.Op, formatNumber(c.RHS)))
	}

	lw.line("Bounds")
	for _, v := range m.Variables() {
		if bound := formatBound(v); bound != "" {
			lw.line(" " + bound)
		}
	}

	var integers []string
	for _, v := range m.Variables() {
		if v.Integer {
			integers = append(integers, sanitize(v.Name))
		}
	}
	if len(integers) > 0 {
		lw.line("General")
		lw.words(integers)
	}

	lw.line("End")
	return lw.flush()
}

// String returns the LP text of m
func String(m *model.Model) (string, error) {
	var sb strings.Builder
	if err := Write(&sb, m); err != nil {
		return "", err
	}
	return sb.String(), nil
}

type lineWriter struct {
	w   *bufio.Writer
	err error
}

func (lw *lineWriter) line(s string) {
	if lw.err != nil {
		return
	}
	_, lw.err = lw.w.WriteString(s + "\n")
}

// expression writes head, the terms and tail, wrapping at term boundaries
func (lw *lineWriter) expression(head string, terms []model.Term, m *model.Model, tail string) {
	var sb strings.Builder
	sb.WriteString(head)
	width := len(head)
	for i, t := range terms {
		part := formatTerm(t.Coef, sanitize(m.Variable(t.Var).Name), i == 0)
		if width+len(part) > maxLineWidth && width > len(head) {
			sb.WriteString("\n  ")
			width = 2
		}
		sb.WriteString(part)
		width += len(part)
	}
	sb.WriteString(tail)
	lw.line(sb.String())
}

func (lw *lineWriter) words(words []string) {
	var sb strings.Builder
	width := 0
	for _, word := range words {
		if width > 0 && width+len(word)+1 > maxLineWidth {
			lw.line(sb.String())
			sb.Reset()
			width = 0
		}
		sb.WriteString(" " + word)
		width += len(word) + 1
	}
	if width > 0 {
		lw.line(sb.String())
	}
}

func (lw *lineWriter) flush() error {
	if lw.err != nil {
		return lw.err
	}
	return lw.w.Flush()
}

func formatTerm(coef float64, name string, first bool) string {
	sign := "+"
	if coef < 0 {
		sign = "-"
		coef = -coef
	}
	var body string
	if coef == 1 {
		body = name
	} else {
		body = formatNumber(coef) + " " + name
	}
	if first && sign == "+" {
		return " " + body
	}
	return " " + sign + " " + body
}

// formatBound renders the bounds line of v, or "" for the default [0, +inf)
func formatBound(v model.Variable) string {
	name := sanitize(v.Name)
	switch {
	case v.Lower == v.Upper:
		return name + " = " + formatNumber(v.Lower)
	case !v.HasUpperBound():
		if v.Lower == 0 {
			return ""
		}
		return name + " >= " + formatNumber(v.Lower)
	default:
		return formatNumber(v.Lower) + " <= " + name + " <= " + formatNumber(v.Upper)
	}
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// sanitize replaces characters the LP format does not allow in names
func sanitize(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case strings.ContainsRune("!\"#$%&()/,.;?@_`'{}|~", r):
			return r
		default:
			return '_'
		}
	}, name)
}

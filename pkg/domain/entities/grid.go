package entities

import (
	"encoding/json"
	"fmt"
)

// Grid is a rectangular row-major table indexed by (row, column).
// Products and resources index rows, months index columns.
type Grid[T any] struct {
	rows  int
	cols  int
	cells []T
}

// NewGrid creates a rows x cols grid filled with zero values
func NewGrid[T any](rows, cols int) *Grid[T] {
	if rows < 0 || cols < 0 {
		panic(fmt.Sprintf("entities: negative grid dimensions %dx%d", rows, cols))
	}
	return &Grid[T]{
		rows:  rows,
		cols:  cols,
		cells: make([]T, rows*cols),
	}
}

// GridFromRows copies a slice of rows into a grid. All rows must have the same length.
func GridFromRows[T any](rows [][]T) (*Grid[T], error) {
	if len(rows) == 0 {
		return NewGrid[T](0, 0), nil
	}
	cols := len(rows[0])
	g := NewGrid[T](len(rows), cols)
	for r, row := range rows {
		if len(row) != cols {
			return nil, fmt.Errorf("row %d has %d columns, expected %d", r, len(row), cols)
		}
		copy(g.cells[r*cols:(r+1)*cols], row)
	}
	return g, nil
}

// Rows returns the number of rows
func (g *Grid[T]) Rows() int { return g.rows }

// Cols returns the number of columns
func (g *Grid[T]) Cols() int { return g.cols }

// At returns the cell at (r, c)
func (g *Grid[T]) At(r, c int) T {
	return g.cells[g.index(r, c)]
}

// Set stores v at (r, c)
func (g *Grid[T]) Set(r, c int, v T) {
	g.cells[g.index(r, c)] = v
}

// Row returns a copy of row r
func (g *Grid[T]) Row(r int) []T {
	out := make([]T, g.cols)
	copy(out, g.cells[g.index(r, 0):g.index(r, 0)+g.cols])
	return out
}

// ToRows returns the grid as a freshly allocated slice of rows
func (g *Grid[T]) ToRows() [][]T {
	out := make([][]T, g.rows)
	for r := range out {
		out[r] = g.Row(r)
	}
	return out
}

// Each calls fn for every cell in row-major order
func (g *Grid[T]) Each(fn func(r, c int, v T)) {
	for r := 0; r < g.rows; r++ {
		for c := 0; c < g.cols; c++ {
			fn(r, c, g.cells[r*g.cols+c])
		}
	}
}

func (g *Grid[T]) index(r, c int) int {
	if r < 0 || r >= g.rows || c < 0 || c >= g.cols {
		panic(fmt.Sprintf("entities: grid index (%d,%d) out of range %dx%d", r, c, g.rows, g.cols))
	}
	return r*g.cols + c
}

// MarshalJSON encodes the grid as an array of rows
func (g *Grid[T]) MarshalJSON() ([]byte, error) {
	return json.Marshal(g.ToRows())
}

// UnmarshalJSON decodes an array of rows
func (g *Grid[T]) UnmarshalJSON(data []byte) error {
	var rows [][]T
	if err := json.Unmarshal(data, &rows); err != nil {
		return err
	}
	decoded, err := GridFromRows(rows)
	if err != nil {
		return err
	}
	*g = *decoded
	return nil
}

package entities

import (
	"encoding/json"
	"testing"
)

func TestGridFromRows(t *testing.T) {
	g, err := GridFromRows([][]int{{1, 2, 3}, {4, 5, 6}})
	if err != nil {
		t.Fatalf("GridFromRows failed: %v", err)
	}
	if g.Rows() != 2 || g.Cols() != 3 {
		t.Fatalf("Expected 2x3 grid, got %dx%d", g.Rows(), g.Cols())
	}
	if g.At(1, 2) != 6 {
		t.Errorf("Expected At(1,2) = 6, got %d", g.At(1, 2))
	}

	_, err = GridFromRows([][]int{{1, 2}, {3}})
	if err == nil {
		t.Fatal("Expected error for ragged rows")
	}
	if err.Error() != "row 1 has 1 columns, expected 2" {
		t.Errorf("Unexpected error: %v", err)
	}
}

func TestGrid_RowIsCopy(t *testing.T) {
	g := NewGrid[int](2, 2)
	g.Set(0, 1, 7)

	row := g.Row(0)
	row[1] = 99
	if g.At(0, 1) != 7 {
		t.Error("Row must return a copy")
	}
}

func TestGrid_EachIsRowMajor(t *testing.T) {
	g, _ := GridFromRows([][]string{{"a", "b"}, {"c", "d"}})
	var visited string
	g.Each(func(r, c int, v string) { visited += v })
	if visited != "abcd" {
		t.Errorf("Expected row-major order abcd, got %s", visited)
	}
}

func TestGrid_OutOfRangePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Expected panic for out of range index")
		}
	}()
	NewGrid[int](1, 1).At(1, 0)
}

func TestGrid_JSON(t *testing.T) {
	g, _ := GridFromRows([][]int{{1, 2}, {3, 4}})
	data, err := json.Marshal(g)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if string(data) != "[[1,2],[3,4]]" {
		t.Errorf("Unexpected JSON %s", data)
	}

	var back Grid[int]
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if back.At(1, 0) != 3 {
		t.Errorf("Expected 3 at (1,0), got %d", back.At(1, 0))
	}
}

func TestParameterSet_NamesAndClone(t *testing.T) {
	p := &ParameterSet{
		NumProducts:      2,
		NumResourceSteps: 1,
		ProductNames:     []string{"A"},
		MarketLimit:      [][]int{{1, 2}, {3, 4}},
	}
	if p.ProductName(0) != "A" {
		t.Errorf("Expected A, got %s", p.ProductName(0))
	}
	if p.ProductName(1) != "PROD2" {
		t.Errorf("Expected default PROD2, got %s", p.ProductName(1))
	}
	if p.ResourceName(0) != "STEP1" {
		t.Errorf("Expected default STEP1, got %s", p.ResourceName(0))
	}
	if MonthName(5) != "M6" {
		t.Errorf("Expected M6, got %s", MonthName(5))
	}

	c := p.Clone()
	c.MarketLimit[0][0] = 100
	if p.MarketLimit[0][0] != 1 {
		t.Error("Clone must deep copy matrices")
	}
}

func TestVariant_Parse(t *testing.T) {
	testCases := map[string]Variant{
		"fixed":                 FixedAvailability,
		"":                      FixedAvailability,
		"maintenance":           ScheduledMaintenance,
		"scheduled_maintenance": ScheduledMaintenance,
	}
	for text, expected := range testCases {
		got, err := ParseVariant(text)
		if err != nil {
			t.Fatalf("ParseVariant(%q) failed: %v", text, err)
		}
		if got != expected {
			t.Errorf("ParseVariant(%q) = %s, expected %s", text, got, expected)
		}
	}
	if _, err := ParseVariant("weekly"); err == nil {
		t.Error("Expected error for unknown variant")
	}
}

package entities

import "fmt"

const (
	// DefaultStockBound is the per-product month-end storage limit
	DefaultStockBound = 100
	// DefaultFinalStockRequirement is the stock every product must hold at the end of the horizon
	DefaultFinalStockRequirement = 50
	// DefaultHoursPerMachineMonth is two 8 hour shifts over 24 working days
	DefaultHoursPerMachineMonth = 16 * 24
	// DefaultStockCostPerUnit is the holding cost per unit per month
	DefaultStockCostPerUnit = 0.5
)

// Variant selects how machine availability enters the model
type Variant int

const (
	// FixedAvailability uses a given machines-available table per resource and month
	FixedAvailability Variant = iota
	// ScheduledMaintenance makes availability a decision variable tied to a maintenance quota
	ScheduledMaintenance
)

func (v Variant) String() string {
	switch v {
	case FixedAvailability:
		return "FixedAvailability"
	case ScheduledMaintenance:
		return "ScheduledMaintenance"
	default:
		return "Unknown"
	}
}

// MarshalText encodes the variant by name
func (v Variant) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// UnmarshalText accepts any spelling ParseVariant understands
func (v *Variant) UnmarshalText(text []byte) error {
	parsed, err := ParseVariant(string(text))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// ParseVariant maps the scenario file spelling of a variant
func ParseVariant(s string) (Variant, error) {
	switch s {
	case "fixed", "fixed_availability", "FixedAvailability", "":
		return FixedAvailability, nil
	case "maintenance", "scheduled_maintenance", "ScheduledMaintenance":
		return ScheduledMaintenance, nil
	default:
		return FixedAvailability, fmt.Errorf("unknown variant %q", s)
	}
}

// ParameterSet is the static data of one production planning problem.
//
// Matrices are indexed product x step (ProductionHours), product x month
// (MarketLimit) and resource x month (MachinesAvailable). A ParameterSet is
// treated as read-only once handed to the planner.
type ParameterSet struct {
	Name    string
	Variant Variant

	NumProducts      int
	NumMonths        int
	NumResourceSteps int

	ProductNames  []string
	ResourceNames []string

	ProfitPerUnit    []float64
	StockCostPerUnit float64
	ProductionHours  [][]float64
	MarketLimit      [][]int

	StockBound            int
	FinalStockRequirement int
	HoursPerMachineMonth  float64

	// FixedAvailability only
	MachinesAvailable [][]int

	// ScheduledMaintenance only
	MachineCount     []int
	MaintenanceQuota []int
}

// ProductName returns the display name of product i
func (p *ParameterSet) ProductName(i int) string {
	if i < len(p.ProductNames) && p.ProductNames[i] != "" {
		return p.ProductNames[i]
	}
	return fmt.Sprintf("PROD%d", i+1)
}

// ResourceName returns the display name of resource step k
func (p *ParameterSet) ResourceName(k int) string {
	if k < len(p.ResourceNames) && p.ResourceNames[k] != "" {
		return p.ResourceNames[k]
	}
	return fmt.Sprintf("STEP%d", k+1)
}

// MonthName returns the 1-based display label of month j
func MonthName(j int) string {
	return fmt.Sprintf("M%d", j+1)
}

// TotalMachineCount returns the installed machines of resource k.
// For FixedAvailability the peak of the availability row is used.
func (p *ParameterSet) TotalMachineCount(k int) int {
	if p.Variant == ScheduledMaintenance {
		return p.MachineCount[k]
	}
	peak := 0
	for _, n := range p.MachinesAvailable[k] {
		if n > peak {
			peak = n
		}
	}
	return peak
}

// Clone returns a deep copy so callers can derive modified scenarios safely
func (p *ParameterSet) Clone() *ParameterSet {
	c := *p
	c.ProductNames = append([]string(nil), p.ProductNames...)
	c.ResourceNames = append([]string(nil), p.ResourceNames...)
	c.ProfitPerUnit = append([]float64(nil), p.ProfitPerUnit...)
	c.ProductionHours = cloneMatrix(p.ProductionHours)
	c.MarketLimit = cloneMatrix(p.MarketLimit)
	c.MachinesAvailable = cloneMatrix(p.MachinesAvailable)
	c.MachineCount = append([]int(nil), p.MachineCount...)
	c.MaintenanceQuota = append([]int(nil), p.MaintenanceQuota...)
	return &c
}

func cloneMatrix[T any](m [][]T) [][]T {
	if m == nil {
		return nil
	}
	out := make([][]T, len(m))
	for i, row := range m {
		out[i] = append([]T(nil), row...)
	}
	return out
}

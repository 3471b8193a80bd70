package entities

import (
	"fmt"
	"time"
)

// CapacityUse is the load of one resource step in one month
type CapacityUse struct {
	Resource       string  `json:"resource"`
	Step           int     `json:"step"`
	Month          int     `json:"month"`
	HoursUsed      float64 `json:"hours_used"`
	HoursAvailable float64 `json:"hours_available"`
	Utilization    float64 `json:"utilization"`
	// Binding is set when the spare hours cannot fit one more unit of any
	// product processed on the step
	Binding bool `json:"binding"`
}

// SpareHours returns the unused machine hours
func (u CapacityUse) SpareHours() float64 {
	return u.HoursAvailable - u.HoursUsed
}

// BottleneckAnalysis ranks the resource-months of a plan by load
type BottleneckAnalysis struct {
	Scenario     string        `json:"scenario"`
	AnalysisDate time.Time     `json:"analysis_date"`
	Uses         []CapacityUse `json:"uses"`        // step-major, month-minor
	Bottlenecks  []CapacityUse `json:"bottlenecks"` // top N by utilization
	BindingCount int           `json:"binding_count"`
}

// GetBottleneckSummary returns a one-line description of the tightest resource-month
func (a *BottleneckAnalysis) GetBottleneckSummary() string {
	if len(a.Bottlenecks) == 0 {
		return "No capacity in use"
	}
	top := a.Bottlenecks[0]
	return fmt.Sprintf("Bottleneck: %s in %s at %.0f%% (%d of %d resource-months binding)",
		top.Resource, MonthName(top.Month), top.Utilization*100, a.BindingCount, len(a.Uses))
}

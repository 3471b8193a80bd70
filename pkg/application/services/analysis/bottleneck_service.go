// Package analysis derives reports from solved production plans
package analysis

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/vsinha/factoryplan/pkg/domain/entities"
)

// hoursTolerance absorbs float noise in the hours sums
const hoursTolerance = 1e-6

// BottleneckService measures how much of each resource-month a plan uses
type BottleneckService struct {
	now func() time.Time
}

// NewBottleneckService creates a new bottleneck service
func NewBottleneckService() *BottleneckService {
	return &BottleneckService{now: time.Now}
}

// Analyze computes the load of every resource-month of plan and returns the
// topN most utilized ones. topN <= 0 keeps them all.
func (s *BottleneckService) Analyze(params *entities.ParameterSet, plan *entities.Plan, topN int) (*entities.BottleneckAnalysis, error) {
	if params == nil || plan == nil {
		return nil, fmt.Errorf("bottleneck analysis needs parameters and a plan")
	}
	if !plan.HasValues() {
		return nil, fmt.Errorf("plan for %s has no values (status %s)", params.Name, plan.Status)
	}
	if plan.Production.Rows() != params.NumProducts || plan.Production.Cols() != params.NumMonths {
		return nil, fmt.Errorf("plan does not match %s: %dx%d production table for %d products and %d months",
			params.Name, plan.Production.Rows(), plan.Production.Cols(), params.NumProducts, params.NumMonths)
	}

	analysis := &entities.BottleneckAnalysis{
		Scenario:     params.Name,
		AnalysisDate: s.now(),
	}

	for k := 0; k < params.NumResourceSteps; k++ {
		smallest := smallestUnitHours(params, k)
		for j := 0; j < params.NumMonths; j++ {
			machines, err := machinesAvailable(params, plan, k, j)
			if err != nil {
				return nil, err
			}

			use := entities.CapacityUse{
				Resource:       params.ResourceName(k),
				Step:           k,
				Month:          j,
				HoursAvailable: float64(machines) * params.HoursPerMachineMonth,
			}
			for i := 0; i < params.NumProducts; i++ {
				use.HoursUsed += params.ProductionHours[i][k] * float64(plan.Production.At(i, j))
			}
			if use.HoursAvailable > 0 {
				use.Utilization = use.HoursUsed / use.HoursAvailable
			}
			use.Binding = !math.IsInf(smallest, 1) && use.SpareHours()+hoursTolerance < smallest
			if use.Binding {
				analysis.BindingCount++
			}
			analysis.Uses = append(analysis.Uses, use)
		}
	}

	ranked := make([]entities.CapacityUse, len(analysis.Uses))
	copy(ranked, analysis.Uses)
	sort.SliceStable(ranked, func(a, b int) bool {
		// Primary sort: utilization
		if ranked[a].Utilization != ranked[b].Utilization {
			return ranked[a].Utilization > ranked[b].Utilization
		}
		// Secondary sort: binding first
		if ranked[a].Binding != ranked[b].Binding {
			return ranked[a].Binding
		}
		return false
	})
	if topN > 0 && topN < len(ranked) {
		ranked = ranked[:topN]
	}
	analysis.Bottlenecks = ranked

	return analysis, nil
}

// smallestUnitHours is the least positive per-unit time any product spends on
// step k, or +Inf when no product uses it
func smallestUnitHours(params *entities.ParameterSet, k int) float64 {
	smallest := math.Inf(1)
	for i := 0; i < params.NumProducts; i++ {
		if h := params.ProductionHours[i][k]; h > 0 && h < smallest {
			smallest = h
		}
	}
	return smallest
}

func machinesAvailable(params *entities.ParameterSet, plan *entities.Plan, k, j int) (int, error) {
	if params.Variant == entities.ScheduledMaintenance {
		if plan.MachinesAvailable == nil {
			return 0, fmt.Errorf("scheduled maintenance plan for %s has no machines available table", params.Name)
		}
		return plan.MachinesAvailable.At(k, j), nil
	}
	return params.MachinesAvailable[k][j], nil
}

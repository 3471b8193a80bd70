package entities

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/vsinha/factoryplan/pkg/domain/model"
)

// Financials is the exact money breakdown of a plan
type Financials struct {
	Revenue     decimal.Decimal `json:"revenue"`
	StorageCost decimal.Decimal `json:"storage_cost"`
	NetProfit   decimal.Decimal `json:"net_profit"`
}

// Plan is the solved production plan read back from a solution.
// Tables are nil unless Status carries values.
type Plan struct {
	Status    model.Status `json:"status"`
	Objective float64      `json:"objective"`

	ProductNames  []string `json:"product_names"`
	ResourceNames []string `json:"resource_names"`
	NumMonths     int      `json:"num_months"`

	Production        *Grid[int] `json:"production,omitempty"`
	Sales             *Grid[int] `json:"sales,omitempty"`
	Stock             *Grid[int] `json:"stock,omitempty"`
	UnfulfilledDemand *Grid[int] `json:"unfulfilled_demand,omitempty"`
	// ScheduledMaintenance only
	MachinesAvailable *Grid[int] `json:"machines_available,omitempty"`

	Financials Financials `json:"financials"`
}

// HasValues reports whether the plan carries solved tables
func (p *Plan) HasValues() bool {
	return p.Status.HasValues() && p.Production != nil
}

// MaintenanceSchedule returns, per resource and month, how many machines are down.
// Only meaningful for ScheduledMaintenance plans.
func (p *Plan) MaintenanceSchedule(machineCount []int) *Grid[int] {
	if p.MachinesAvailable == nil {
		return nil
	}
	down := NewGrid[int](p.MachinesAvailable.Rows(), p.MachinesAvailable.Cols())
	p.MachinesAvailable.Each(func(k, j int, available int) {
		down.Set(k, j, machineCount[k]-available)
	})
	return down
}

// PlanRun is one persisted planning run
type PlanRun struct {
	ID            string        `json:"id"`
	Scenario      string        `json:"scenario"`
	Variant       Variant       `json:"variant"`
	Status        model.Status  `json:"status"`
	Objective     float64       `json:"objective"`
	Plan          *Plan         `json:"plan,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	BuildDuration time.Duration `json:"build_duration"`
	SolveDuration time.Duration `json:"solve_duration"`
}

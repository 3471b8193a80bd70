package planning

import (
	"fmt"
	"math"

	"github.com/vsinha/factoryplan/pkg/domain/entities"
	"github.com/vsinha/factoryplan/pkg/domain/model"
)

// Variables holds the decision variable ids of one planning model.
// Product tables are P x M, MachinesAvailable is K x M.
type Variables struct {
	Production *entities.Grid[model.VarID]
	Sales      *entities.Grid[model.VarID]
	Stock      *entities.Grid[model.VarID]
	// nil for FixedAvailability
	MachinesAvailable *entities.Grid[model.VarID]
}

// VariableFactory creates the bounded integer variables of a planning model
type VariableFactory struct {
	params *entities.ParameterSet
}

// NewVariableFactory creates a factory for the given parameters
func NewVariableFactory(params *entities.ParameterSet) *VariableFactory {
	return &VariableFactory{params: params}
}

// Create registers all variables on b. Bounds are checked before the first
// variable is added so a rejected parameter set leaves b untouched.
func (f *VariableFactory) Create(b *model.Builder) (*Variables, error) {
	if err := f.checkBounds(); err != nil {
		return nil, err
	}

	p := f.params
	vars := &Variables{
		Production: entities.NewGrid[model.VarID](p.NumProducts, p.NumMonths),
		Sales:      entities.NewGrid[model.VarID](p.NumProducts, p.NumMonths),
		Stock:      entities.NewGrid[model.VarID](p.NumProducts, p.NumMonths),
	}

	for i := 0; i < p.NumProducts; i++ {
		for j := 0; j < p.NumMonths; j++ {
			id, err := b.AddVariable(fmt.Sprintf("p_%d_%d", i, j), 0, math.Inf(1), true)
			if err != nil {
				return nil, fmt.Errorf("failed to create production variable: %w", err)
			}
			vars.Production.Set(i, j, id)
		}
	}
	for i := 0; i < p.NumProducts; i++ {
		for j := 0; j < p.NumMonths; j++ {
			id, err := b.AddVariable(fmt.Sprintf("v_%d_%d", i, j), 0, float64(p.MarketLimit[i][j]), true)
			if err != nil {
				return nil, fmt.Errorf("failed to create sales variable: %w", err)
			}
			vars.Sales.Set(i, j, id)
		}
	}
	for i := 0; i < p.NumProducts; i++ {
		for j := 0; j < p.NumMonths; j++ {
			id, err := b.AddVariable(fmt.Sprintf("s_%d_%d", i, j), 0, float64(p.StockBound), true)
			if err != nil {
				return nil, fmt.Errorf("failed to create stock variable: %w", err)
			}
			vars.Stock.Set(i, j, id)
		}
	}

	if p.Variant != entities.ScheduledMaintenance {
		return vars, nil
	}

	vars.MachinesAvailable = entities.NewGrid[model.VarID](p.NumResourceSteps, p.NumMonths)
	for k := 0; k < p.NumResourceSteps; k++ {
		for j := 0; j < p.NumMonths; j++ {
			id, err := b.AddVariable(fmt.Sprintf("m_%d_%d", k, j), 0, float64(p.MachineCount[k]), true)
			if err != nil {
				return nil, fmt.Errorf("failed to create machine availability variable: %w", err)
			}
			vars.MachinesAvailable.Set(k, j, id)
		}
	}

	return vars, nil
}

func (f *VariableFactory) checkBounds() error {
	p := f.params
	if p.NumProducts <= 0 || p.NumMonths <= 0 {
		return entities.NewInvalidParameter("dimensions", "need at least one product and one month, got %d x %d", p.NumProducts, p.NumMonths)
	}
	if len(p.MarketLimit) != p.NumProducts {
		return entities.NewInvalidParameter("market_limit", "expected %d rows, got %d", p.NumProducts, len(p.MarketLimit))
	}
	for i, row := range p.MarketLimit {
		if len(row) != p.NumMonths {
			return entities.NewInvalidParameter(fmt.Sprintf("market_limit[%d]", i), "expected %d months, got %d", p.NumMonths, len(row))
		}
		for j, limit := range row {
			if limit < 0 {
				return entities.NewInvalidParameter(fmt.Sprintf("market_limit[%d][%d]", i, j), "must be non-negative, got %d", limit)
			}
		}
	}
	if p.StockBound < 0 {
		return entities.NewInvalidParameter("stock_bound", "must be non-negative, got %d", p.StockBound)
	}
	if p.Variant == entities.ScheduledMaintenance {
		if len(p.MachineCount) != p.NumResourceSteps {
			return entities.NewInvalidParameter("machine_count", "expected %d entries, got %d", p.NumResourceSteps, len(p.MachineCount))
		}
		for k, n := range p.MachineCount {
			if n < 0 {
				return entities.NewInvalidParameter(fmt.Sprintf("machine_count[%d]", k), "must be non-negative, got %d", n)
			}
		}
	}
	return nil
}

package planning

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"github.com/vsinha/factoryplan/pkg/domain/entities"
	"github.com/vsinha/factoryplan/pkg/domain/model"
)

// ResultExtractor reads solved values back into a Plan
type ResultExtractor struct{}

// NewResultExtractor creates a new result extractor
func NewResultExtractor() *ResultExtractor {
	return &ResultExtractor{}
}

// Extract builds a Plan from a solution. Values are rounded to the nearest
// integer since every planning variable is integral. A status without values
// yields a Plan carrying only the status, with a zero objective.
func (e *ResultExtractor) Extract(pm *PlanningModel, solution *model.Solution) (*entities.Plan, error) {
	if pm == nil || solution == nil {
		return nil, fmt.Errorf("extract needs a model and a solution")
	}
	params := pm.Params

	plan := &entities.Plan{
		Status:        solution.Status,
		ProductNames:  make([]string, params.NumProducts),
		ResourceNames: make([]string, params.NumResourceSteps),
		NumMonths:     params.NumMonths,
	}
	for i := range plan.ProductNames {
		plan.ProductNames[i] = params.ProductName(i)
	}
	for k := range plan.ResourceNames {
		plan.ResourceNames[k] = params.ResourceName(k)
	}

	if !solution.Status.HasValues() {
		return plan, nil
	}
	plan.Objective = solution.Objective

	var err error
	if plan.Production, err = e.table(pm.Variables.Production, solution); err != nil {
		return nil, err
	}
	if plan.Sales, err = e.table(pm.Variables.Sales, solution); err != nil {
		return nil, err
	}
	if plan.Stock, err = e.table(pm.Variables.Stock, solution); err != nil {
		return nil, err
	}
	if pm.Variables.MachinesAvailable != nil {
		if plan.MachinesAvailable, err = e.table(pm.Variables.MachinesAvailable, solution); err != nil {
			return nil, err
		}
	}

	plan.UnfulfilledDemand = entities.NewGrid[int](params.NumProducts, params.NumMonths)
	plan.Sales.Each(func(i, j int, sold int) {
		plan.UnfulfilledDemand.Set(i, j, params.MarketLimit[i][j]-sold)
	})

	plan.Financials = e.financials(params, plan)
	return plan, nil
}

func (e *ResultExtractor) table(ids *entities.Grid[model.VarID], solution *model.Solution) (*entities.Grid[int], error) {
	out := entities.NewGrid[int](ids.Rows(), ids.Cols())
	var missing error
	ids.Each(func(r, c int, id model.VarID) {
		if missing != nil {
			return
		}
		value, ok := solution.Value(id)
		if !ok {
			missing = fmt.Errorf("solution has no value for variable %d", id)
			return
		}
		out.Set(r, c, int(math.Round(value)))
	})
	return out, missing
}

func (e *ResultExtractor) financials(params *entities.ParameterSet, plan *entities.Plan) entities.Financials {
	revenue := decimal.Zero
	plan.Sales.Each(func(i, _ int, sold int) {
		revenue = revenue.Add(decimal.NewFromFloat(params.ProfitPerUnit[i]).Mul(decimal.NewFromInt(int64(sold))))
	})

	held := int64(0)
	plan.Stock.Each(func(_, _ int, s int) {
		held += int64(s)
	})
	storage := decimal.NewFromFloat(params.StockCostPerUnit).Mul(decimal.NewFromInt(held))

	return entities.Financials{
		Revenue:     revenue,
		StorageCost: storage,
		NetProfit:   revenue.Sub(storage),
	}
}

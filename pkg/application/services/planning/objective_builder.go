package planning

import (
	"github.com/vsinha/factoryplan/pkg/domain/entities"
	"github.com/vsinha/factoryplan/pkg/domain/model"
)

// ObjectiveBuilder assembles profit from sales minus storage cost
type ObjectiveBuilder struct {
	params *entities.ParameterSet
	vars   *Variables
}

// NewObjectiveBuilder creates an objective builder
func NewObjectiveBuilder(params *entities.ParameterSet, vars *Variables) *ObjectiveBuilder {
	return &ObjectiveBuilder{params: params, vars: vars}
}

// Sense is always Maximize for planning models
func (ob *ObjectiveBuilder) Sense() model.Sense {
	return model.Maximize
}

// Build returns Σ_i Σ_j profit[i] * v[i][j] - stockCost * s[i][j]
func (ob *ObjectiveBuilder) Build() *model.LinearExpr {
	expr := model.NewExpr()
	for i := 0; i < ob.params.NumProducts; i++ {
		for j := 0; j < ob.params.NumMonths; j++ {
			expr.AddTerm(ob.vars.Sales.At(i, j), ob.params.ProfitPerUnit[i])
			expr.AddTerm(ob.vars.Stock.At(i, j), -ob.params.StockCostPerUnit)
		}
	}
	return expr
}

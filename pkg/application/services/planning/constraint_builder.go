package planning

import (
	"fmt"

	"github.com/vsinha/factoryplan/pkg/domain/entities"
	"github.com/vsinha/factoryplan/pkg/domain/model"
)

// ConstraintBuilder emits the structural rows of a planning model
type ConstraintBuilder struct {
	params *entities.ParameterSet
	vars   *Variables
	hours  HoursProvider
}

// NewConstraintBuilder creates a builder. hours decides the capacity right-hand side.
func NewConstraintBuilder(params *entities.ParameterSet, vars *Variables, hours HoursProvider) *ConstraintBuilder {
	return &ConstraintBuilder{
		params: params,
		vars:   vars,
		hours:  hours,
	}
}

// Build emits conservation, final stock, capacity and (when availability
// variables exist) maintenance rows, in that order.
func (cb *ConstraintBuilder) Build(b *model.Builder) error {
	if err := cb.checkRanges(); err != nil {
		return err
	}
	if err := cb.AddConservation(b); err != nil {
		return err
	}
	if err := cb.AddFinalStock(b); err != nil {
		return err
	}
	if err := cb.AddCapacity(b); err != nil {
		return err
	}
	if cb.vars.MachinesAvailable != nil {
		if err := cb.AddMaintenance(b); err != nil {
			return err
		}
	}
	return nil
}

// AddConservation emits s[i][j] + v[i][j] - p[i][j] - s[i][j-1] = 0,
// product-major and month-minor. Month 0 has no prior stock.
func (cb *ConstraintBuilder) AddConservation(b *model.Builder) error {
	if err := cb.checkRanges(); err != nil {
		return err
	}
	for i := 0; i < cb.params.NumProducts; i++ {
		for j := 0; j < cb.params.NumMonths; j++ {
			expr := model.NewExpr().
				AddTerm(cb.vars.Stock.At(i, j), 1).
				AddTerm(cb.vars.Sales.At(i, j), 1).
				AddTerm(cb.vars.Production.At(i, j), -1)
			if j > 0 {
				expr.AddTerm(cb.vars.Stock.At(i, j-1), -1)
			}
			if err := b.AddConstraint(fmt.Sprintf("conservation_%d_%d", i, j), expr, model.Equal, 0); err != nil {
				return fmt.Errorf("failed to add conservation row: %w", err)
			}
		}
	}
	return nil
}

// AddFinalStock emits s[i][M-1] = FinalStockRequirement for every product
func (cb *ConstraintBuilder) AddFinalStock(b *model.Builder) error {
	if err := cb.checkRanges(); err != nil {
		return err
	}
	last := cb.params.NumMonths - 1
	for i := 0; i < cb.params.NumProducts; i++ {
		expr := model.NewExpr().AddTerm(cb.vars.Stock.At(i, last), 1)
		if err := b.AddConstraint(fmt.Sprintf("final_stock_%d", i), expr, model.Equal, float64(cb.params.FinalStockRequirement)); err != nil {
			return fmt.Errorf("failed to add final stock row: %w", err)
		}
	}
	return nil
}

// AddCapacity emits Σ_i hours[i][k] * p[i][j] - available(k, j) <= 0 for every
// resource and month, resource-major.
func (cb *ConstraintBuilder) AddCapacity(b *model.Builder) error {
	if err := cb.checkRanges(); err != nil {
		return err
	}
	if len(cb.params.ProductionHours) != cb.params.NumProducts {
		return entities.NewInvalidParameter("production_hours", "expected %d rows, got %d", cb.params.NumProducts, len(cb.params.ProductionHours))
	}
	for i, row := range cb.params.ProductionHours {
		if len(row) != cb.params.NumResourceSteps {
			return entities.NewInvalidParameter(fmt.Sprintf("production_hours[%d]", i), "expected %d steps, got %d", cb.params.NumResourceSteps, len(row))
		}
	}

	for k := 0; k < cb.params.NumResourceSteps; k++ {
		for j := 0; j < cb.params.NumMonths; j++ {
			expr := model.NewExpr()
			for i := 0; i < cb.params.NumProducts; i++ {
				if hours := cb.params.ProductionHours[i][k]; hours != 0 {
					expr.AddTerm(cb.vars.Production.At(i, j), hours)
				}
			}
			expr.AddExpr(cb.hours.AvailableHours(k, j), -1)
			if err := b.AddConstraint(fmt.Sprintf("capacity_%d_%d", k, j), expr, model.LessEqual, 0); err != nil {
				return fmt.Errorf("failed to add capacity row: %w", err)
			}
		}
	}
	return nil
}

// AddMaintenance emits Σ_j (MachineCount[k] - m[k][j]) = MaintenanceQuota[k]
// for every resource type.
func (cb *ConstraintBuilder) AddMaintenance(b *model.Builder) error {
	if err := cb.checkRanges(); err != nil {
		return err
	}
	if cb.vars.MachinesAvailable == nil {
		return fmt.Errorf("maintenance rows need machine availability variables")
	}
	p := cb.params
	if len(p.MachineCount) != p.NumResourceSteps || len(p.MaintenanceQuota) != p.NumResourceSteps {
		return entities.NewInvalidParameter("maintenance_quota", "need %d machine counts and quotas, got %d and %d",
			p.NumResourceSteps, len(p.MachineCount), len(p.MaintenanceQuota))
	}

	for k := 0; k < p.NumResourceSteps; k++ {
		expr := model.NewExpr()
		for j := 0; j < p.NumMonths; j++ {
			expr.AddConstant(float64(p.MachineCount[k]))
			expr.AddTerm(cb.vars.MachinesAvailable.At(k, j), -1)
		}
		if err := b.AddConstraint(fmt.Sprintf("maintenance_%d", k), expr, model.Equal, float64(p.MaintenanceQuota[k])); err != nil {
			return fmt.Errorf("failed to add maintenance row: %w", err)
		}
	}
	return nil
}

// checkRanges rejects empty index ranges: with M == 0 every capacity row
// would be vacuous and the model would silently accept any configuration.
func (cb *ConstraintBuilder) checkRanges() error {
	p := cb.params
	if p.NumMonths <= 0 {
		return entities.NewInvalidParameter("num_months", "horizon must have at least one month, got %d", p.NumMonths)
	}
	if p.NumProducts <= 0 {
		return entities.NewInvalidParameter("num_products", "must be positive, got %d", p.NumProducts)
	}
	if p.NumResourceSteps <= 0 {
		return entities.NewInvalidParameter("num_resource_steps", "must be positive, got %d", p.NumResourceSteps)
	}
	if cb.vars == nil || cb.vars.Production == nil {
		return fmt.Errorf("constraint builder has no variables")
	}
	if cb.vars.Production.Rows() != p.NumProducts || cb.vars.Production.Cols() != p.NumMonths {
		return entities.NewInvalidParameter("dimensions", "variables are %dx%d but parameters describe %dx%d",
			cb.vars.Production.Rows(), cb.vars.Production.Cols(), p.NumProducts, p.NumMonths)
	}
	return nil
}

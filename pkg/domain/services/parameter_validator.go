package services

import (
	"errors"
	"fmt"
	"math"

	"github.com/vsinha/factoryplan/pkg/domain/entities"
)

// ParameterValidator checks a ParameterSet for structural problems
type ParameterValidator struct{}

// NewParameterValidator creates a new parameter validator
func NewParameterValidator() *ParameterValidator {
	return &ParameterValidator{}
}

// ValidationResult contains every problem found in one pass
type ValidationResult struct {
	Errors []error
}

// Valid reports whether no problems were found
func (r *ValidationResult) Valid() bool {
	return len(r.Errors) == 0
}

// Err joins all problems into one error, or returns nil.
// errors.Is(err, entities.ErrInvalidParameter) holds for a non-nil result.
func (r *ValidationResult) Err() error {
	if r.Valid() {
		return nil
	}
	return errors.Join(r.Errors...)
}

func (r *ValidationResult) add(field, format string, args ...interface{}) {
	r.Errors = append(r.Errors, entities.NewInvalidParameter(field, format, args...))
}

// ValidateParameters is a shorthand for NewParameterValidator().Validate(p).Err()
func ValidateParameters(p *entities.ParameterSet) error {
	return NewParameterValidator().Validate(p).Err()
}

// Validate performs all checks and collects the problems
func (v *ParameterValidator) Validate(p *entities.ParameterSet) *ValidationResult {
	result := &ValidationResult{Errors: make([]error, 0)}
	if p == nil {
		result.add("parameters", "parameter set is nil")
		return result
	}

	// Dimensions first: the matrix checks below are meaningless without them
	if p.NumProducts <= 0 {
		result.add("num_products", "must be positive, got %d", p.NumProducts)
	}
	if p.NumMonths <= 0 {
		result.add("num_months", "horizon must have at least one month, got %d", p.NumMonths)
	}
	if p.NumResourceSteps <= 0 {
		result.add("num_resource_steps", "must be positive, got %d", p.NumResourceSteps)
	}
	if !result.Valid() {
		return result
	}

	v.validateProducts(p, result)
	v.validateStock(p, result)
	switch p.Variant {
	case entities.FixedAvailability:
		v.validateFixedAvailability(p, result)
	case entities.ScheduledMaintenance:
		v.validateScheduledMaintenance(p, result)
	default:
		result.add("variant", "unknown variant %d", int(p.Variant))
	}

	return result
}

func (v *ParameterValidator) validateProducts(p *entities.ParameterSet, result *ValidationResult) {
	if len(p.ProductNames) != 0 && len(p.ProductNames) != p.NumProducts {
		result.add("product_names", "expected %d names, got %d", p.NumProducts, len(p.ProductNames))
	}
	if len(p.ProfitPerUnit) != p.NumProducts {
		result.add("profit_per_unit", "expected %d entries, got %d", p.NumProducts, len(p.ProfitPerUnit))
	}
	for i, profit := range p.ProfitPerUnit {
		if !isFinite(profit) {
			result.add(fmt.Sprintf("profit_per_unit[%d]", i), "must be finite, got %g", profit)
		}
	}

	if len(p.ProductionHours) != p.NumProducts {
		result.add("production_hours", "expected %d rows, got %d", p.NumProducts, len(p.ProductionHours))
	}
	for i, row := range p.ProductionHours {
		if len(row) != p.NumResourceSteps {
			result.add(fmt.Sprintf("production_hours[%d]", i), "expected %d steps, got %d", p.NumResourceSteps, len(row))
			continue
		}
		for k, hours := range row {
			if hours < 0 || !isFinite(hours) {
				result.add(fmt.Sprintf("production_hours[%d][%d]", i, k), "must be a non-negative number, got %g", hours)
			}
		}
	}

	if len(p.MarketLimit) != p.NumProducts {
		result.add("market_limit", "expected %d rows, got %d", p.NumProducts, len(p.MarketLimit))
	}
	for i, row := range p.MarketLimit {
		if len(row) != p.NumMonths {
			result.add(fmt.Sprintf("market_limit[%d]", i), "expected %d months, got %d", p.NumMonths, len(row))
			continue
		}
		for j, limit := range row {
			if limit < 0 {
				result.add(fmt.Sprintf("market_limit[%d][%d]", i, j), "must be non-negative, got %d", limit)
			}
		}
	}
}

func (v *ParameterValidator) validateStock(p *entities.ParameterSet, result *ValidationResult) {
	if p.StockBound < 0 {
		result.add("stock_bound", "must be non-negative, got %d", p.StockBound)
	}
	if p.FinalStockRequirement < 0 {
		result.add("final_stock_requirement", "must be non-negative, got %d", p.FinalStockRequirement)
	}
	if p.StockCostPerUnit < 0 || !isFinite(p.StockCostPerUnit) {
		result.add("stock_cost_per_unit", "must be a non-negative number, got %g", p.StockCostPerUnit)
	}
	if p.HoursPerMachineMonth < 0 || !isFinite(p.HoursPerMachineMonth) {
		result.add("hours_per_machine_month", "must be a non-negative number, got %g", p.HoursPerMachineMonth)
	}
	if len(p.ResourceNames) != 0 && len(p.ResourceNames) != p.NumResourceSteps {
		result.add("resource_names", "expected %d names, got %d", p.NumResourceSteps, len(p.ResourceNames))
	}
}

func (v *ParameterValidator) validateFixedAvailability(p *entities.ParameterSet, result *ValidationResult) {
	if len(p.MachinesAvailable) != p.NumResourceSteps {
		result.add("machines_available", "expected %d rows, got %d", p.NumResourceSteps, len(p.MachinesAvailable))
		return
	}
	for k, row := range p.MachinesAvailable {
		if len(row) != p.NumMonths {
			result.add(fmt.Sprintf("machines_available[%d]", k), "expected %d months, got %d", p.NumMonths, len(row))
			continue
		}
		for j, n := range row {
			if n < 0 {
				result.add(fmt.Sprintf("machines_available[%d][%d]", k, j), "must be non-negative, got %d", n)
			}
		}
	}
}

func (v *ParameterValidator) validateScheduledMaintenance(p *entities.ParameterSet, result *ValidationResult) {
	if len(p.MachineCount) != p.NumResourceSteps {
		result.add("machine_count", "expected %d entries, got %d", p.NumResourceSteps, len(p.MachineCount))
	}
	if len(p.MaintenanceQuota) != p.NumResourceSteps {
		result.add("maintenance_quota", "expected %d entries, got %d", p.NumResourceSteps, len(p.MaintenanceQuota))
	}
	for k, n := range p.MachineCount {
		if n < 0 {
			result.add(fmt.Sprintf("machine_count[%d]", k), "must be non-negative, got %d", n)
		}
	}
	for k, quota := range p.MaintenanceQuota {
		if quota < 0 {
			result.add(fmt.Sprintf("maintenance_quota[%d]", k), "must be non-negative, got %d", quota)
			continue
		}
		if k < len(p.MachineCount) && quota > p.MachineCount[k] {
			result.add(fmt.Sprintf("maintenance_quota[%d]", k), "%d exceeds the %d installed machines", quota, p.MachineCount[k])
		}
	}
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

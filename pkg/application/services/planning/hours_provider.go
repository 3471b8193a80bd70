package planning

import (
	"github.com/vsinha/factoryplan/pkg/domain/entities"
	"github.com/vsinha/factoryplan/pkg/domain/model"
)

// HoursProvider supplies the right-hand side of the capacity row for
// resource k in month j. The constraint builder only sees this interface,
// which is what lets one builder serve both variants.
type HoursProvider interface {
	AvailableHours(k, j int) *model.LinearExpr
}

// FixedHours derives available hours from a constant machines table
type FixedHours struct {
	machines        *entities.Grid[int]
	hoursPerMachine float64
}

// NewFixedHours creates a provider over a K x M machines-available table
func NewFixedHours(machines *entities.Grid[int], hoursPerMachine float64) *FixedHours {
	return &FixedHours{machines: machines, hoursPerMachine: hoursPerMachine}
}

// AvailableHours returns machines[k][j] * hoursPerMachine as a constant expression
func (h *FixedHours) AvailableHours(k, j int) *model.LinearExpr {
	return model.Constant(float64(h.machines.At(k, j)) * h.hoursPerMachine)
}

// ScheduledHours derives available hours from machine availability variables
type ScheduledHours struct {
	machines        *entities.Grid[model.VarID]
	hoursPerMachine float64
}

// NewScheduledHours creates a provider over the K x M availability variables
func NewScheduledHours(machines *entities.Grid[model.VarID], hoursPerMachine float64) *ScheduledHours {
	return &ScheduledHours{machines: machines, hoursPerMachine: hoursPerMachine}
}

// AvailableHours returns hoursPerMachine * m[k][j]
func (h *ScheduledHours) AvailableHours(k, j int) *model.LinearExpr {
	return model.NewExpr().AddTerm(h.machines.At(k, j), h.hoursPerMachine)
}

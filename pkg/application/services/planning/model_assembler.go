package planning

import (
	"context"
	"fmt"

	"github.com/vsinha/factoryplan/pkg/domain/entities"
	"github.com/vsinha/factoryplan/pkg/domain/model"
	"github.com/vsinha/factoryplan/pkg/domain/services"
)

// PlanningModel is a frozen model together with the variable tables and the
// parameters it was built from
type PlanningModel struct {
	Model     *model.Model
	Variables *Variables
	Params    *entities.ParameterSet
}

// Solve hands the model to solver. The model is never modified.
func (pm *PlanningModel) Solve(ctx context.Context, solver model.Solver) (*model.Solution, error) {
	if solver == nil {
		return nil, fmt.Errorf("no solver configured")
	}
	solution, err := solver.Solve(ctx, pm.Model)
	if err != nil {
		return nil, fmt.Errorf("failed to solve %s: %w", pm.Model.Name(), err)
	}
	return solution, nil
}

// Assembler turns a ParameterSet into a PlanningModel
type Assembler struct {
	validator *services.ParameterValidator
}

// NewAssembler creates a new model assembler
func NewAssembler() *Assembler {
	return &Assembler{validator: services.NewParameterValidator()}
}

// Assemble validates params and builds variables, constraints and objective.
// params is cloned, so later edits by the caller do not leak into the model.
func (a *Assembler) Assemble(params *entities.ParameterSet) (*PlanningModel, error) {
	if err := a.validator.Validate(params).Err(); err != nil {
		return nil, err
	}
	params = params.Clone()

	name := params.Name
	if name == "" {
		name = "factory_planning"
	}
	b := model.NewBuilder(name, model.Maximize)

	vars, err := NewVariableFactory(params).Create(b)
	if err != nil {
		return nil, err
	}

	hours, err := a.hoursProvider(params, vars)
	if err != nil {
		return nil, err
	}

	if err := NewConstraintBuilder(params, vars, hours).Build(b); err != nil {
		return nil, err
	}

	if err := b.SetObjective(NewObjectiveBuilder(params, vars).Build()); err != nil {
		return nil, fmt.Errorf("failed to set objective: %w", err)
	}

	m, err := b.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build model: %w", err)
	}

	return &PlanningModel{
		Model:     m,
		Variables: vars,
		Params:    params,
	}, nil
}

func (a *Assembler) hoursProvider(params *entities.ParameterSet, vars *Variables) (HoursProvider, error) {
	switch params.Variant {
	case entities.ScheduledMaintenance:
		return NewScheduledHours(vars.MachinesAvailable, params.HoursPerMachineMonth), nil
	case entities.FixedAvailability:
		machines, err := entities.GridFromRows(params.MachinesAvailable)
		if err != nil {
			return nil, entities.NewInvalidParameter("machines_available", "%v", err)
		}
		return NewFixedHours(machines, params.HoursPerMachineMonth), nil
	default:
		return nil, entities.NewInvalidParameter("variant", "unknown variant %d", int(params.Variant))
	}
}

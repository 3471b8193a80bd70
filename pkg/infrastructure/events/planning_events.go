package events

import (
	"github.com/vsinha/factoryplan/pkg/domain/entities"
	"github.com/vsinha/factoryplan/pkg/domain/model"
)

const (
	ModelAssembledEvent = "model.assembled"
	PlanSolvedEvent     = "plan.solved"
	PlanFailedEvent     = "plan.failed"
)

// PlanningEventTypes lists every event type published by a planning run
var PlanningEventTypes = []string{ModelAssembledEvent, PlanSolvedEvent, PlanFailedEvent}

type ModelAssembled struct {
	Scenario string           `json:"scenario"`
	Variant  entities.Variant `json:"variant"`
	Stats    model.Stats      `json:"stats"`
}

type PlanSolved struct {
	RunID     string       `json:"run_id"`
	Scenario  string       `json:"scenario"`
	Status    model.Status `json:"status"`
	Objective float64      `json:"objective"`
	Nodes     int          `json:"nodes"`
}

type PlanFailed struct {
	Scenario string `json:"scenario"`
	Reason   string `json:"reason"`
}

func NewModelAssembledEvent(params *entities.ParameterSet, stats model.Stats) Event {
	return NewEvent(ModelAssembledEvent, params.Name, ModelAssembled{
		Scenario: params.Name,
		Variant:  params.Variant,
		Stats:    stats,
	})
}

func NewPlanSolvedEvent(run *entities.PlanRun, nodes int) Event {
	return NewEvent(PlanSolvedEvent, run.Scenario, PlanSolved{
		RunID:     run.ID,
		Scenario:  run.Scenario,
		Status:    run.Status,
		Objective: run.Objective,
		Nodes:     nodes,
	})
}

func NewPlanFailedEvent(scenario string, err error) Event {
	return NewEvent(PlanFailedEvent, scenario, PlanFailed{
		Scenario: scenario,
		Reason:   err.Error(),
	})
}

package dto

import (
	"time"

	"github.com/vsinha/factoryplan/pkg/domain/entities"
	"github.com/vsinha/factoryplan/pkg/domain/model"
)

// PlanResult contains the complete output of one planning run
type PlanResult struct {
	Run        *entities.PlanRun
	Plan       *entities.Plan
	ModelStats model.Stats
	Nodes      int

	// Bottlenecks is filled in only when capacity analysis was requested
	Bottlenecks *entities.BottleneckAnalysis
}

// Summary is the one-line view of a run used by listings
type Summary struct {
	ID        string           `json:"id"`
	Scenario  string           `json:"scenario"`
	Variant   entities.Variant `json:"variant"`
	Status    model.Status     `json:"status"`
	Objective float64          `json:"objective"`
	CreatedAt time.Time        `json:"created_at"`
	Elapsed   time.Duration    `json:"elapsed"`
}

// Summarize reduces a run to its listing row
func Summarize(run *entities.PlanRun) Summary {
	return Summary{
		ID:        run.ID,
		Scenario:  run.Scenario,
		Variant:   run.Variant,
		Status:    run.Status,
		Objective: run.Objective,
		CreatedAt: run.CreatedAt,
		Elapsed:   run.BuildDuration + run.SolveDuration,
	}
}

package repositories

import (
	"context"

	"github.com/vsinha/factoryplan/pkg/domain/entities"
)

// RunRepository persists planning runs
type RunRepository interface {
	SaveRun(ctx context.Context, run *entities.PlanRun) error
	GetRun(ctx context.Context, id string) (*entities.PlanRun, error)
	// ListRuns returns runs newest first; limit <= 0 returns all of them
	ListRuns(ctx context.Context, limit int) ([]*entities.PlanRun, error)
}

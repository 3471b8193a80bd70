package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/vsinha/factoryplan/pkg/domain/entities"
	"github.com/vsinha/factoryplan/pkg/domain/repositories"
)

// RunRepository provides in-memory storage of planning runs
type RunRepository struct {
	mu   sync.RWMutex
	runs map[string]*entities.PlanRun
}

// NewRunRepository creates a new in-memory run repository
func NewRunRepository() *RunRepository {
	return &RunRepository{
		runs: make(map[string]*entities.PlanRun),
	}
}

// Verify interface compliance
var _ repositories.RunRepository = (*RunRepository)(nil)

// SaveRun stores run, replacing any run with the same id
func (r *RunRepository) SaveRun(ctx context.Context, run *entities.PlanRun) error {
	if run == nil || run.ID == "" {
		return fmt.Errorf("run must have an id")
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *run
	r.runs[run.ID] = &stored
	return nil
}

// GetRun returns the run with the given id
func (r *RunRepository) GetRun(ctx context.Context, id string) (*entities.PlanRun, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	run, exists := r.runs[id]
	if !exists {
		return nil, fmt.Errorf("run %s: %w", id, repositories.ErrNotFound)
	}
	out := *run
	return &out, nil
}

// ListRuns returns runs newest first
func (r *RunRepository) ListRuns(ctx context.Context, limit int) ([]*entities.PlanRun, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	runs := make([]*entities.PlanRun, 0, len(r.runs))
	for _, run := range r.runs {
		out := *run
		runs = append(runs, &out)
	}
	sort.Slice(runs, func(i, j int) bool {
		if runs[i].CreatedAt.Equal(runs[j].CreatedAt) {
			return runs[i].ID < runs[j].ID
		}
		return runs[i].CreatedAt.After(runs[j].CreatedAt)
	})
	if limit > 0 && len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}

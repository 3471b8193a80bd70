// Package sqlite persists planning runs in a SQLite database
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/vsinha/factoryplan/pkg/domain/entities"
	"github.com/vsinha/factoryplan/pkg/domain/model"
	"github.com/vsinha/factoryplan/pkg/domain/repositories"
)

// RunStore is a RunRepository backed by SQLite
type RunStore struct {
	db *sql.DB
}

// Verify interface compliance
var _ repositories.RunRepository = (*RunStore)(nil)

// NewRunStore opens (creating if needed) the database at dbPath and runs migrations
func NewRunStore(dbPath string) (*RunStore, error) {
	if dir := filepath.Dir(dbPath); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// SQLite only supports one writer at a time
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	s := &RunStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// Close closes the database connection
func (s *RunStore) Close() error {
	return s.db.Close()
}

func (s *RunStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS plan_runs (
		id TEXT PRIMARY KEY,
		scenario TEXT NOT NULL,
		variant TEXT NOT NULL,
		status TEXT NOT NULL,
		objective REAL NOT NULL,
		plan_json TEXT,
		created_at INTEGER NOT NULL,
		build_ns INTEGER NOT NULL,
		solve_ns INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_plan_runs_created_at ON plan_runs(created_at);
	CREATE INDEX IF NOT EXISTS idx_plan_runs_scenario ON plan_runs(scenario);
	`
	_, err := s.db.Exec(schema)
	return err
}

// SaveRun inserts run or replaces the run with the same id
func (s *RunStore) SaveRun(ctx context.Context, run *entities.PlanRun) error {
	if run == nil || run.ID == "" {
		return fmt.Errorf("run must have an id")
	}

	var planJSON sql.NullString
	if run.Plan != nil {
		data, err := json.Marshal(run.Plan)
		if err != nil {
			return fmt.Errorf("encode plan: %w", err)
		}
		planJSON = sql.NullString{String: string(data), Valid: true}
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO plan_runs
			(id, scenario, variant, status, objective, plan_json, created_at, build_ns, solve_ns)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Scenario, run.Variant.String(), run.Status.String(), run.Objective, planJSON,
		run.CreatedAt.UTC().UnixNano(), int64(run.BuildDuration), int64(run.SolveDuration),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// GetRun returns the run with the given id including its plan
func (s *RunStore) GetRun(ctx context.Context, id string) (*entities.PlanRun, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, scenario, variant, status, objective, plan_json, created_at, build_ns, solve_ns
		FROM plan_runs WHERE id = ?`, id)

	run, err := scanRun(row, true)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run %s: %w", id, repositories.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query run: %w", err)
	}
	return run, nil
}

// ListRuns returns runs newest first without their plans
func (s *RunStore) ListRuns(ctx context.Context, limit int) ([]*entities.PlanRun, error) {
	query := `SELECT id, scenario, variant, status, objective, NULL, created_at, build_ns, solve_ns
		FROM plan_runs ORDER BY created_at DESC, id ASC`
	var args []interface{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []*entities.PlanRun
	for rows.Next() {
		run, err := scanRun(rows, false)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(sc scanner, withPlan bool) (*entities.PlanRun, error) {
	var (
		run                      entities.PlanRun
		variant, status          string
		planJSON                 sql.NullString
		createdAt, build, solveD int64
	)
	if err := sc.Scan(&run.ID, &run.Scenario, &variant, &status, &run.Objective, &planJSON, &createdAt, &build, &solveD); err != nil {
		return nil, err
	}

	var err error
	if run.Variant, err = entities.ParseVariant(variant); err != nil {
		return nil, err
	}
	if run.Status, err = model.ParseStatus(status); err != nil {
		return nil, err
	}
	run.CreatedAt = time.Unix(0, createdAt).UTC()
	run.BuildDuration = time.Duration(build)
	run.SolveDuration = time.Duration(solveD)

	if withPlan && planJSON.Valid {
		run.Plan = &entities.Plan{}
		if err := json.Unmarshal([]byte(planJSON.String), run.Plan); err != nil {
			return nil, fmt.Errorf("decode plan: %w", err)
		}
	}
	return &run, nil
}

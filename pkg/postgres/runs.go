package postgres

import (
	"context"
	"fmt"

	"github.com/kiddos/scheduler/pkg/db"
)

// InsertRun records an optimisation run
func (d *DB) InsertRun(ctx context.Context, run *db.OptimizationRun) error {
	_, err := d.pool.Exec(ctx, `
		INSERT INTO optimization_run (
			id, period_id, backend, status, objective, conflicts, branches,
			wall_time_ms, variables, row_count, violations, committed, started_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`, run.ID, run.PeriodID, run.Backend, run.Status, run.Objective, run.Conflicts, run.Branches,
		run.WallTimeMs, run.Variables, run.RowCount, run.Violations, run.Committed, run.StartedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to insert optimization run: %w", err)
	}
	return nil
}

// GetRuns retrieves the optimisation history of a period, oldest first
func (d *DB) GetRuns(ctx context.Context, periodID string) ([]db.OptimizationRun, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT id, period_id, backend, status, objective, conflicts, branches,
			wall_time_ms, variables, row_count, violations, committed, started_at
		FROM optimization_run
		WHERE period_id = $1
		ORDER BY started_at
	`, periodID)
	if err != nil {
		return nil, fmt.Errorf("failed to query optimization runs: %w", err)
	}
	defer rows.Close()

	var runs []db.OptimizationRun
	for rows.Next() {
		var r db.OptimizationRun
		if err := rows.Scan(&r.ID, &r.PeriodID, &r.Backend, &r.Status, &r.Objective, &r.Conflicts, &r.Branches,
			&r.WallTimeMs, &r.Variables, &r.RowCount, &r.Violations, &r.Committed, &r.StartedAt); err != nil {
			return nil, fmt.Errorf("failed to scan optimization run: %w", err)
		}
		runs = append(runs, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating optimization runs: %w", err)
	}

	return runs, nil
}

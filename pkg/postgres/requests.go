package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/kiddos/scheduler/pkg/db"
)

// GetRequests retrieves the request grid of a period
func (d *DB) GetRequests(ctx context.Context, periodID string) ([]db.Request, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT period_id, staff_id, day, code
		FROM request
		WHERE period_id = $1
		ORDER BY staff_id, day
	`, periodID)
	if err != nil {
		return nil, fmt.Errorf("failed to query requests: %w", err)
	}
	defer rows.Close()

	var requests []db.Request
	for rows.Next() {
		var r db.Request
		if err := rows.Scan(&r.PeriodID, &r.StaffID, &r.Day, &r.Code); err != nil {
			return nil, fmt.Errorf("failed to scan request: %w", err)
		}
		requests = append(requests, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating requests: %w", err)
	}

	return requests, nil
}

// UpsertRequests writes request cells; an empty code clears the cell
func (d *DB) UpsertRequests(ctx context.Context, requests []db.Request) error {
	return d.SaveRequests(ctx, requests, nil)
}

// SaveRequests writes request cells and requirement rows in one transaction
func (d *DB) SaveRequests(ctx context.Context, requests []db.Request, requirements []db.Requirement) error {
	if len(requests) == 0 && len(requirements) == 0 {
		return nil
	}

	tx, err := d.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := writeRequests(ctx, tx, requests); err != nil {
		return err
	}
	if len(requirements) > 0 {
		if err := upsertRequirements(ctx, tx, requirements); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func writeRequests(ctx context.Context, tx pgx.Tx, requests []db.Request) error {
	var err error
	for _, r := range requests {
		if r.Code == "" {
			_, err = tx.Exec(ctx, `
				DELETE FROM request WHERE period_id = $1 AND staff_id = $2 AND day = $3
			`, r.PeriodID, r.StaffID, r.Day)
		} else {
			_, err = tx.Exec(ctx, `
				INSERT INTO request (period_id, staff_id, day, code)
				VALUES ($1, $2, $3, $4)
				ON CONFLICT (period_id, staff_id, day) DO UPDATE SET code = EXCLUDED.code
			`, r.PeriodID, r.StaffID, r.Day, r.Code)
		}
		if err != nil {
			return fmt.Errorf("failed to write request: %w", err)
		}
	}
	return nil
}

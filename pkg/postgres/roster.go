package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/kiddos/scheduler/pkg/db"
)

// GetRoster retrieves the committed roster of a period in row order
func (d *DB) GetRoster(ctx context.Context, periodID string) ([]db.RosterCell, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT period_id, run_id, staff_id, staff_name, row_index, day, code
		FROM roster_cell
		WHERE period_id = $1
		ORDER BY row_index, day
	`, periodID)
	if err != nil {
		return nil, fmt.Errorf("failed to query roster: %w", err)
	}
	defer rows.Close()

	var cells []db.RosterCell
	for rows.Next() {
		var c db.RosterCell
		if err := rows.Scan(&c.PeriodID, &c.RunID, &c.StaffID, &c.StaffName, &c.RowIndex, &c.Day, &c.Code); err != nil {
			return nil, fmt.Errorf("failed to scan roster cell: %w", err)
		}
		cells = append(cells, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating roster: %w", err)
	}

	return cells, nil
}

// ReplaceRoster atomically swaps the committed roster of a period
func (d *DB) ReplaceRoster(ctx context.Context, periodID string, cells []db.RosterCell) error {
	tx, err := d.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	pid, err := parseUUID(periodID)
	if err != nil {
		return fmt.Errorf("invalid period id: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM roster_cell WHERE period_id = $1`, periodID); err != nil {
		return fmt.Errorf("failed to clear roster: %w", err)
	}

	_, err = tx.CopyFrom(ctx,
		pgx.Identifier{"roster_cell"},
		[]string{"period_id", "run_id", "staff_id", "staff_name", "row_index", "day", "code"},
		pgx.CopyFromSlice(len(cells), func(i int) ([]any, error) {
			c := cells[i]
			runID, err := parseUUID(c.RunID)
			if err != nil {
				return nil, fmt.Errorf("invalid run id: %w", err)
			}
			return []any{pid, runID, c.StaffID, c.StaffName, c.RowIndex, c.Day, c.Code}, nil
		}),
	)
	if err != nil {
		return fmt.Errorf("failed to insert roster cells: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// parseUUID converts an ID into the binary form COPY requires
func parseUUID(id string) (pgtype.UUID, error) {
	u, err := uuid.Parse(id)
	if err != nil {
		return pgtype.UUID{}, err
	}
	return pgtype.UUID{Bytes: u, Valid: true}, nil
}

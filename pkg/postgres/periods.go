package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/kiddos/scheduler/pkg/db"
)

const periodColumns = `id, month, COALESCE(leader_id, ''), common_days_off, created_at`

func scanPeriod(row pgx.Row) (*db.Period, error) {
	var p db.Period
	if err := row.Scan(&p.ID, &p.Month, &p.LeaderID, &p.CommonDaysOff, &p.CreatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

// GetPeriod retrieves the period of a month (YYYY-MM)
func (d *DB) GetPeriod(ctx context.Context, month string) (*db.Period, error) {
	p, err := scanPeriod(d.pool.QueryRow(ctx, `SELECT `+periodColumns+` FROM period WHERE month = $1`, month))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, db.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query period: %w", err)
	}
	return p, nil
}

// GetPeriods retrieves every period, oldest month first
func (d *DB) GetPeriods(ctx context.Context) ([]db.Period, error) {
	rows, err := d.pool.Query(ctx, `SELECT `+periodColumns+` FROM period ORDER BY month`)
	if err != nil {
		return nil, fmt.Errorf("failed to query periods: %w", err)
	}
	defer rows.Close()

	var periods []db.Period
	for rows.Next() {
		p, err := scanPeriod(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan period: %w", err)
		}
		periods = append(periods, *p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating periods: %w", err)
	}

	return periods, nil
}

// InsertPeriod inserts a period together with its initial requirements
func (d *DB) InsertPeriod(ctx context.Context, period *db.Period, requirements []db.Requirement) error {
	tx, err := d.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var leaderID *string
	if period.LeaderID != "" {
		leaderID = &period.LeaderID
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO period (id, month, leader_id, common_days_off, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, period.ID, period.Month, leaderID, period.CommonDaysOff, period.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to insert period: %w", err)
	}

	if err := upsertRequirements(ctx, tx, requirements); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// SetPeriodLeader changes the designated leader of a period together with
// the requirements derived for them
func (d *DB) SetPeriodLeader(ctx context.Context, periodID, leaderID string, requirements []db.Requirement) error {
	tx, err := d.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `UPDATE period SET leader_id = NULLIF($2, '') WHERE id = $1`, periodID, leaderID)
	if err != nil {
		return fmt.Errorf("failed to set period leader: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return db.ErrNotFound
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

// GetRequirements retrieves the requirements of a period ordered by day
func (d *DB) GetRequirements(ctx context.Context, periodID string) ([]db.Requirement, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT period_id, day, shift, headcount
		FROM requirement
		WHERE period_id = $1
		ORDER BY day, shift
	`, periodID)
	if err != nil {
		return nil, fmt.Errorf("failed to query requirements: %w", err)
	}
	defer rows.Close()

	var requirements []db.Requirement
	for rows.Next() {
		var r db.Requirement
		if err := rows.Scan(&r.PeriodID, &r.Day, &r.Shift, &r.Headcount); err != nil {
			return nil, fmt.Errorf("failed to scan requirement: %w", err)
		}
		requirements = append(requirements, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating requirements: %w", err)
	}

	return requirements, nil
}

// UpsertRequirements inserts or overwrites requirement records
func (d *DB) UpsertRequirements(ctx context.Context, requirements []db.Requirement) error {
	if len(requirements) == 0 {
		return nil
	}

	tx, err := d.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := upsertRequirements(ctx, tx, requirements); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func upsertRequirements(ctx context.Context, tx pgx.Tx, requirements []db.Requirement) error {
	batch := &pgx.Batch{}
	for _, r := range requirements {
		batch.Queue(`
			INSERT INTO requirement (period_id, day, shift, headcount)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (period_id, day, shift) DO UPDATE SET headcount = EXCLUDED.headcount
		`, r.PeriodID, r.Day, r.Shift, r.Headcount)
	}

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to upsert requirements: %w", err)
	}
	return nil
}

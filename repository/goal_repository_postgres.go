package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"goal-calculator/domain"
)

const createGoalTable = `
	CREATE TABLE IF NOT EXISTS goal_calculations (
		id                  UUID PRIMARY KEY,
		present_value       DOUBLE PRECISION NOT NULL,
		annual_rate_percent DOUBLE PRECISION NOT NULL,
		annual_contribution DOUBLE PRECISION NOT NULL,
		target_amount       DOUBLE PRECISION NOT NULL,
		status              TEXT NOT NULL,
		elapsed_years       DOUBLE PRECISION NOT NULL,
		created_at          TIMESTAMPTZ NOT NULL
	)`

// GoalRepositoryPostgres keeps the calculation history in PostgreSQL.
type GoalRepositoryPostgres struct {
	db  *sql.DB
	log *logrus.Logger
}

// NewGoalRepositoryPostgres wraps an open database handle (driver "postgres").
func NewGoalRepositoryPostgres(db *sql.DB, log *logrus.Logger) *GoalRepositoryPostgres {
	return &GoalRepositoryPostgres{db: db, log: log}
}

// EnsureSchema creates the history table if it does not exist.
func (r *GoalRepositoryPostgres) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createGoalTable); err != nil {
		return fmt.Errorf("failed to create goal_calculations table: %w", err)
	}
	return nil
}

func (r *GoalRepositoryPostgres) Save(ctx context.Context, record domain.GoalRecord) error {
	query := `
		INSERT INTO goal_calculations
			(id, present_value, annual_rate_percent, annual_contribution, target_amount, status, elapsed_years, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.db.ExecContext(ctx, query,
		record.ID,
		record.Params.PresentValue,
		record.Params.AnnualRatePercent,
		record.Params.AnnualContribution,
		record.Params.TargetAmount,
		string(record.Status),
		record.ElapsedYears,
		record.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save goal calculation: %w", err)
	}
	r.log.WithField("id", record.ID).Debug("goal calculation saved")
	return nil
}

func (r *GoalRepositoryPostgres) List(ctx context.Context, limit int) ([]domain.GoalRecord, error) {
	query := `
		SELECT id, present_value, annual_rate_percent, annual_contribution, target_amount, status, elapsed_years, created_at
		FROM goal_calculations
		ORDER BY created_at DESC
		LIMIT $1`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list goal calculations: %w", err)
	}
	defer rows.Close()

	records := []domain.GoalRecord{}
	for rows.Next() {
		var rec domain.GoalRecord
		var status string
		if err := rows.Scan(
			&rec.ID,
			&rec.Params.PresentValue,
			&rec.Params.AnnualRatePercent,
			&rec.Params.AnnualContribution,
			&rec.Params.TargetAmount,
			&status,
			&rec.ElapsedYears,
			&rec.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan goal calculation: %w", err)
		}
		rec.Status = domain.GoalStatus(status)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate goal calculations: %w", err)
	}
	return records, nil
}

func (r *GoalRepositoryPostgres) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM goal_calculations WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune goal calculations: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count pruned rows: %w", err)
	}
	return n, nil
}

package repository

import (
	"context"
	"time"

	"goal-calculator/domain"
)

// GoalRepository stores the history of calculations.
type GoalRepository interface {
	Save(ctx context.Context, record domain.GoalRecord) error
	List(ctx context.Context, limit int) ([]domain.GoalRecord, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

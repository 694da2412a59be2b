package repository

import (
	"context"
	"sync"
	"time"

	"goal-calculator/domain"
)

// GoalRepositoryMemory is an in-memory implementation of GoalRepository.
type GoalRepositoryMemory struct {
	mu   sync.RWMutex
	data []domain.GoalRecord
}

// NewGoalRepositoryMemory creates a new in-memory goal repository.
func NewGoalRepositoryMemory() *GoalRepositoryMemory {
	return &GoalRepositoryMemory{
		data: []domain.GoalRecord{},
	}
}

// Save stores the record in memory.
func (r *GoalRepositoryMemory) Save(_ context.Context, record domain.GoalRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data = append(r.data, record)
	return nil
}

// List returns up to limit records, newest first.
func (r *GoalRepositoryMemory) List(_ context.Context, limit int) ([]domain.GoalRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if limit <= 0 || limit > len(r.data) {
		limit = len(r.data)
	}
	records := make([]domain.GoalRecord, 0, limit)
	for i := len(r.data) - 1; i >= 0 && len(records) < limit; i-- {
		records = append(records, r.data[i])
	}
	return records, nil
}

// DeleteOlderThan drops every record created before cutoff.
func (r *GoalRepositoryMemory) DeleteOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.data[:0]
	var deleted int64
	for _, rec := range r.data {
		if rec.CreatedAt.Before(cutoff) {
			deleted++
			continue
		}
		kept = append(kept, rec)
	}
	r.data = kept
	return deleted, nil
}

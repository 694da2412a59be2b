package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"goal-calculator/domain"
	"goal-calculator/repository"
)

type MockGoalRepository struct {
	Saved      []domain.GoalRecord
	ForceError bool
	Cutoff     time.Time
}

func (m *MockGoalRepository) Save(_ context.Context, record domain.GoalRecord) error {
	if m.ForceError {
		return errors.New("save error")
	}
	m.Saved = append(m.Saved, record)
	return nil
}

func (m *MockGoalRepository) List(_ context.Context, limit int) ([]domain.GoalRecord, error) {
	if limit < len(m.Saved) {
		return m.Saved[:limit], nil
	}
	return m.Saved, nil
}

func (m *MockGoalRepository) DeleteOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	m.Cutoff = cutoff
	return 3, nil
}

type countingCache struct {
	*repository.MemoryCache
	sets int
}

func (c *countingCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	c.sets++
	return c.MemoryCache.Set(ctx, key, value, ttl)
}

func newTestLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func newTestService(repo repository.GoalRepository, cache repository.CacheRepository) *GoalService {
	log := newTestLogger()
	explainer := NewExplanationService(ExplanationConfig{CurrencySymbol: "₹"}, log)
	return NewGoalService(repo, cache, explainer, log, GoalServiceOptions{
		CacheTTL:       time.Minute,
		CurrencySymbol: "₹",
	})
}

func TestCalculateGoal_Reached(t *testing.T) {
	mockRepo := &MockGoalRepository{}
	service := newTestService(mockRepo, repository.NewMemoryCache())

	result, err := service.CalculateGoal(context.Background(), goalParams(100000, 10, 50000, 1000000))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Status != domain.GoalReached {
		t.Errorf("expected reached, got %s", result.Status)
	}
	if result.HorizonYears != 10 {
		t.Errorf("expected horizon 10, got %v", result.HorizonYears)
	}
	if len(result.Series) != 11 {
		t.Errorf("expected 11 points, got %d", len(result.Series))
	}
	if !strings.HasPrefix(result.Summary, "Time required to reach ₹1,000,000.00: 9.6") {
		t.Errorf("unexpected summary %q", result.Summary)
	}
	if result.Explanation == "" || result.Formula != FormulaText {
		t.Errorf("expected explanation and formula to be filled")
	}
	if len(mockRepo.Saved) != 1 || mockRepo.Saved[0].Status != domain.GoalReached {
		t.Errorf("expected one saved record, got %+v", mockRepo.Saved)
	}
}

func TestCalculateGoal_UnreachableIsAResult(t *testing.T) {
	mockRepo := &MockGoalRepository{}
	service := newTestService(mockRepo, repository.NewMemoryCache())

	result, err := service.CalculateGoal(context.Background(), goalParams(0, 0, 0, 1000))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Status != domain.GoalUnreachable {
		t.Errorf("expected unreachable, got %s", result.Status)
	}
	if result.ElapsedYears != 0 {
		t.Errorf("expected no elapsed years, got %v", result.ElapsedYears)
	}
	if len(result.Series) != int(HorizonYears)+1 {
		t.Errorf("expected the full horizon to be charted, got %d points", len(result.Series))
	}
}

func TestCalculateGoal_AlreadyMet(t *testing.T) {
	service := newTestService(&MockGoalRepository{}, repository.NewMemoryCache())

	result, err := service.CalculateGoal(context.Background(), goalParams(5000, 5, 100, 1000))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Status != domain.GoalAlreadyMet || result.ElapsedYears != 0 {
		t.Errorf("expected already met at 0, got %s %v", result.Status, result.ElapsedYears)
	}
	if len(result.Series) != 1 || result.Series[0].ProjectedValue != 5000 {
		t.Errorf("expected a single point at the present value, got %+v", result.Series)
	}
}

func TestCalculateGoal_InvalidInput(t *testing.T) {
	mockRepo := &MockGoalRepository{}
	service := newTestService(mockRepo, repository.NewMemoryCache())

	_, err := service.CalculateGoal(context.Background(), goalParams(-1, 5, 100, 1000))
	if !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
	if len(mockRepo.Saved) != 0 {
		t.Errorf("repository Save should NOT be called")
	}
}

func TestCalculateGoal_SaveErrorIsNotFatal(t *testing.T) {
	service := newTestService(&MockGoalRepository{ForceError: true}, repository.NewMemoryCache())

	if _, err := service.CalculateGoal(context.Background(), goalParams(1000, 0, 100, 2000)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCalculateGoal_UsesCache(t *testing.T) {
	mockRepo := &MockGoalRepository{}
	cache := &countingCache{MemoryCache: repository.NewMemoryCache()}
	service := newTestService(mockRepo, cache)
	p := goalParams(1000, 0, 100, 2000)

	first, err := service.CalculateGoal(context.Background(), p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := service.CalculateGoal(context.Background(), p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cache.sets != 1 {
		t.Errorf("expected one cache write, got %d", cache.sets)
	}
	if first.ElapsedYears != second.ElapsedYears || second.ElapsedYears != 10 {
		t.Errorf("expected identical cached result, got %v and %v", first.ElapsedYears, second.ElapsedYears)
	}
	if len(mockRepo.Saved) != 2 {
		t.Errorf("expected both calls in history, got %d", len(mockRepo.Saved))
	}
}

func TestHistory_Limits(t *testing.T) {
	service := newTestService(&MockGoalRepository{}, repository.NewMemoryCache())

	if _, err := service.History(context.Background(), MaxHistorySize+1); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
	if _, err := service.History(context.Background(), 0); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestPruneHistory(t *testing.T) {
	mockRepo := &MockGoalRepository{}
	service := newTestService(mockRepo, repository.NewMemoryCache())
	fixed := time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)
	service.now = func() time.Time { return fixed }

	n, err := service.PruneHistory(context.Background(), 24*time.Hour)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 3 {
		t.Errorf("expected 3 deleted, got %d", n)
	}
	if !mockRepo.Cutoff.Equal(fixed.Add(-24 * time.Hour)) {
		t.Errorf("unexpected cutoff %v", mockRepo.Cutoff)
	}
}

func TestCacheKey_Distinct(t *testing.T) {
	a := cacheKey(goalParams(1, 2, 3, 4))
	b := cacheKey(goalParams(1, 2, 3, 4.0000000001))
	if a == b {
		t.Errorf("expected distinct keys, both were %q", a)
	}
}

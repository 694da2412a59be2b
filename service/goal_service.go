package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"goal-calculator/domain"
	"goal-calculator/repository"
)

type GoalService struct {
	repo      repository.GoalRepository
	cache     repository.CacheRepository
	explainer *ExplanationService
	log       *logrus.Logger
	cacheTTL  time.Duration
	symbol    string
	now       func() time.Time
}

type GoalServiceOptions struct {
	CacheTTL       time.Duration
	CurrencySymbol string
}

// NewGoalService creates a new GoalService with the given repository and cache.
func NewGoalService(
	repo repository.GoalRepository,
	cache repository.CacheRepository,
	explainer *ExplanationService,
	log *logrus.Logger,
	opts GoalServiceOptions,
) *GoalService {
	return &GoalService{
		repo:      repo,
		cache:     cache,
		explainer: explainer,
		log:       log,
		cacheTTL:  opts.CacheTTL,
		symbol:    opts.CurrencySymbol,
		now:       time.Now,
	}
}

// CalculateGoal solves the time to reach the target and builds the chart
// series. Unreachable and already-met targets are reported through
// GoalResult.Status; only invalid input returns an error.
func (s *GoalService) CalculateGoal(
	ctx context.Context,
	params domain.GoalParameters,
) (domain.GoalResult, error) {

	if err := ValidateParameters(params); err != nil {
		return domain.GoalResult{}, err
	}

	key := cacheKey(params)
	result, hit := s.cached(ctx, key)
	if !hit {
		var err error
		result, err = s.compute(ctx, params)
		if err != nil {
			return domain.GoalResult{}, err
		}
		s.store(ctx, key, result)
	}

	// Guardar el historial (no crítico si falla)
	record := domain.GoalRecord{
		ID:           uuid.New(),
		Params:       params,
		Status:       result.Status,
		ElapsedYears: result.ElapsedYears,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.repo.Save(ctx, record); err != nil {
		s.log.WithError(err).Warn("failed to save goal calculation")
	}

	return result, nil
}

func (s *GoalService) compute(ctx context.Context, params domain.GoalParameters) (domain.GoalResult, error) {
	result := domain.GoalResult{
		Formula:      FormulaText,
		FormulaValue: FormulaWithValues(params),
	}

	sol, err := SolveTimeToGoal(params)
	switch {
	case errors.Is(err, ErrUnreachableTarget):
		result.Status = domain.GoalUnreachable
		result.HorizonYears = HorizonYears
	case err != nil:
		return domain.GoalResult{}, err
	default:
		result.Status = sol.Status
		result.ElapsedYears = sol.Years
		result.HorizonYears = math.Ceil(sol.Years)
	}
	result.LinearGrowth = params.AnnualRatePercent == 0

	series, err := ProjectSeries(params, result.HorizonYears)
	if err != nil {
		return domain.GoalResult{}, err
	}
	result.Series = series
	result.Summary = summarize(s.symbol, params, result.Status, result.ElapsedYears)
	result.Explanation = s.explainer.Explain(ctx, params, result)

	s.log.WithFields(logrus.Fields{
		"status": result.Status,
		"years":  roundTo2Decimals(result.ElapsedYears),
	}).Debug("goal calculated")

	return result, nil
}

// Projection returns the yearly series for an explicit horizon.
func (s *GoalService) Projection(
	_ context.Context,
	input domain.ProjectionInput,
) ([]domain.ProjectionPoint, error) {
	return ProjectSeries(input.Params, input.HorizonYears)
}

// History lists the most recent calculations, newest first.
func (s *GoalService) History(ctx context.Context, limit int) ([]domain.GoalRecord, error) {
	if limit <= 0 {
		limit = DefaultHistorySize
	}
	if limit > MaxHistorySize {
		return nil, fmt.Errorf("%w: limit exceeds the maximum of %d", ErrInvalidInput, MaxHistorySize)
	}
	return s.repo.List(ctx, limit)
}

// PruneHistory removes calculations older than retention.
func (s *GoalService) PruneHistory(ctx context.Context, retention time.Duration) (int64, error) {
	cutoff := s.now().UTC().Add(-retention)
	n, err := s.repo.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	s.log.WithFields(logrus.Fields{"deleted": n, "cutoff": cutoff}).Info("goal history pruned")
	return n, nil
}

func (s *GoalService) Guide() []domain.GuideSection {
	return s.explainer.Guide()
}

func (s *GoalService) cached(ctx context.Context, key string) (domain.GoalResult, bool) {
	raw, ok := s.cache.Get(ctx, key)
	if !ok {
		return domain.GoalResult{}, false
	}
	var result domain.GoalResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		s.log.WithError(err).Warn("discarding malformed cache entry")
		return domain.GoalResult{}, false
	}
	return result, true
}

func (s *GoalService) store(ctx context.Context, key string, result domain.GoalResult) {
	data, err := json.Marshal(result)
	if err != nil {
		s.log.WithError(err).Warn("failed to encode goal result for cache")
		return
	}
	if err := s.cache.Set(ctx, key, string(data), s.cacheTTL); err != nil {
		s.log.WithError(err).Warn("failed to cache goal result")
	}
}

// cacheKey uses the shortest exact representation of each input so that
// distinct parameters never share a key.
func cacheKey(p domain.GoalParameters) string {
	f := func(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }
	return "goal:" + f(p.PresentValue) + ":" + f(p.AnnualRatePercent) + ":" +
		f(p.AnnualContribution) + ":" + f(p.TargetAmount)
}

package service

import (
	"errors"
	"fmt"
	"math"

	"goal-calculator/domain"
)

var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrUnreachableTarget = errors.New("target not reachable within horizon")
)

// Solution is the outcome of SolveTimeToGoal. Years is only meaningful
// when Status is domain.GoalReached; it is zero for domain.GoalAlreadyMet.
type Solution struct {
	Years  float64
	Status domain.GoalStatus
	Linear bool
}

// FutureValue returns the projected worth after t years of compounding at
// the annual rate plus one contribution per year. A zero rate degrades to
// the linear form P + PMT*t.
func FutureValue(p domain.GoalParameters, t float64) float64 {
	r := p.AnnualRatePercent / 100
	if r == 0 {
		return p.PresentValue + p.AnnualContribution*t
	}
	// g = (1+r)^t - 1 sin cancelación para tasas muy pequeñas
	g := math.Expm1(t * math.Log1p(r))
	return p.PresentValue*(1+g) + p.AnnualContribution*g/r
}

// SolveTimeToGoal finds the smallest t in [0, HorizonYears] with
// FutureValue(p, t) >= p.TargetAmount, within ToleranceYears.
func SolveTimeToGoal(p domain.GoalParameters) (Solution, error) {
	if err := ValidateParameters(p); err != nil {
		return Solution{}, err
	}

	if p.PresentValue >= p.TargetAmount {
		return Solution{Years: 0, Status: domain.GoalAlreadyMet}, nil
	}

	if p.AnnualRatePercent == 0 {
		if p.AnnualContribution == 0 {
			return Solution{}, ErrUnreachableTarget
		}
		years := (p.TargetAmount - p.PresentValue) / p.AnnualContribution
		if years > HorizonYears {
			return Solution{}, ErrUnreachableTarget
		}
		return Solution{Years: years, Status: domain.GoalReached, Linear: true}, nil
	}

	if FutureValue(p, HorizonYears) < p.TargetAmount {
		return Solution{}, ErrUnreachableTarget
	}

	// F es creciente, así que high siempre cumple F(high) >= target.
	low, high := 0.0, HorizonYears
	for high-low > ToleranceYears {
		mid := (low + high) / 2
		if FutureValue(p, mid) < p.TargetAmount {
			low = mid
		} else {
			high = mid
		}
	}

	return Solution{Years: high, Status: domain.GoalReached}, nil
}

// ProjectSeries returns F(year) for every integer year from 0 to
// ceil(horizonYears) inclusive.
func ProjectSeries(p domain.GoalParameters, horizonYears float64) ([]domain.ProjectionPoint, error) {
	if err := ValidateParameters(p); err != nil {
		return nil, err
	}
	if math.IsNaN(horizonYears) || horizonYears < 0 || horizonYears > HorizonYears {
		return nil, fmt.Errorf("%w: horizon must be between 0 and %.0f years", ErrInvalidInput, HorizonYears)
	}

	last := int(math.Ceil(horizonYears))
	series := make([]domain.ProjectionPoint, 0, last+1)
	for year := 0; year <= last; year++ {
		series = append(series, domain.ProjectionPoint{
			Year:           year,
			ProjectedValue: FutureValue(p, float64(year)),
		})
	}
	return series, nil
}

// ValidateParameters rejects negative, NaN, infinite and out-of-range inputs.
func ValidateParameters(p domain.GoalParameters) error {
	fields := []struct {
		name  string
		value float64
		max   float64
	}{
		{"present_value", p.PresentValue, MaxAmount},
		{"annual_rate_percent", p.AnnualRatePercent, MaxRatePercent},
		{"annual_contribution", p.AnnualContribution, MaxAmount},
		{"target_amount", p.TargetAmount, MaxAmount},
	}
	for _, f := range fields {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) || f.value < 0 {
			return fmt.Errorf("%w: %s must be a non-negative number", ErrInvalidInput, f.name)
		}
		if f.value > f.max {
			return fmt.Errorf("%w: %s exceeds the maximum of %.2f", ErrInvalidInput, f.name, f.max)
		}
	}
	return nil
}

package domain

import (
	"time"

	"github.com/google/uuid"
)

// GoalParameters are the four user inputs of a calculation.
type GoalParameters struct {
	PresentValue       float64 `json:"present_value"`
	AnnualRatePercent  float64 `json:"annual_rate_percent"`
	AnnualContribution float64 `json:"annual_contribution"`
	TargetAmount       float64 `json:"target_amount"`
}

type GoalStatus string

const (
	GoalReached     GoalStatus = "reached"
	GoalAlreadyMet  GoalStatus = "already_met"
	GoalUnreachable GoalStatus = "unreachable"
)

// ProjectionPoint is one year of the chart series.
type ProjectionPoint struct {
	Year           int     `json:"year"`
	ProjectedValue float64 `json:"projected_value"`
}

type GoalResult struct {
	Status       GoalStatus        `json:"status"`
	ElapsedYears float64           `json:"elapsed_years"`
	HorizonYears float64           `json:"horizon_years"`
	LinearGrowth bool              `json:"linear_growth"` // tasa cero: F(t) = P + PMT*t
	Summary      string            `json:"summary"`
	Formula      string            `json:"formula"`
	FormulaValue string            `json:"formula_with_values"`
	Explanation  string            `json:"explanation,omitempty"`
	Series       []ProjectionPoint `json:"series"`
}

type ProjectionInput struct {
	Params       GoalParameters `json:"params"`
	HorizonYears float64        `json:"horizon_years"`
}

// GoalRecord is a stored calculation in the history.
type GoalRecord struct {
	ID           uuid.UUID      `json:"id"`
	Params       GoalParameters `json:"params"`
	Status       GoalStatus     `json:"status"`
	ElapsedYears float64        `json:"elapsed_years"`
	CreatedAt    time.Time      `json:"created_at"`
}

type GuideSection struct {
	Title string   `json:"title"`
	Body  string   `json:"body,omitempty"`
	Items []string `json:"items,omitempty"`
}

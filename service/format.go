package service

import (
	"fmt"
	"math"
	"strings"

	"goal-calculator/domain"
)

const FormulaText = "A = P(1 + r/100)^t + PMT[((1 + r/100)^t - 1) / (r/100)]"

// roundTo2Decimals redondea un float64 a 2 decimales
func roundTo2Decimals(value float64) float64 {
	return math.Round(value*100) / 100
}

// FormatMoney renders an amount with thousands separators and two decimals,
// e.g. "₹1,234,567.89".
func FormatMoney(symbol string, amount float64) string {
	s := fmt.Sprintf("%.2f", math.Abs(amount))
	intPart, frac, _ := strings.Cut(s, ".")

	var b strings.Builder
	if amount < 0 && roundTo2Decimals(amount) != 0 {
		b.WriteByte('-')
	}
	b.WriteString(symbol)
	for i, c := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	b.WriteByte('.')
	b.WriteString(frac)
	return b.String()
}

// FormulaWithValues substitutes the user's inputs into FormulaText.
func FormulaWithValues(p domain.GoalParameters) string {
	return fmt.Sprintf("A = %.2f(1 + %.2f/100)^t + %.2f[((1 + %.2f/100)^t - 1) / (%.2f/100)]",
		p.PresentValue, p.AnnualRatePercent, p.AnnualContribution,
		p.AnnualRatePercent, p.AnnualRatePercent)
}

func summarize(symbol string, p domain.GoalParameters, status domain.GoalStatus, years float64) string {
	target := FormatMoney(symbol, p.TargetAmount)
	switch status {
	case domain.GoalAlreadyMet:
		return fmt.Sprintf("Your current investment of %s already meets the target of %s.",
			FormatMoney(symbol, p.PresentValue), target)
	case domain.GoalUnreachable:
		return fmt.Sprintf("%s cannot be reached within %.0f years with these parameters.", target, HorizonYears)
	default:
		return fmt.Sprintf("Time required to reach %s: %.2f years", target, years)
	}
}

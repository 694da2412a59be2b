package report

import (
	"bytes"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"

	"goal-calculator/domain"
	"goal-calculator/service"
)

const (
	marginLeft   = 15.0
	marginTop    = 15.0
	marginRight  = 15.0
	marginBottom = 15.0
	contentWidth = 210.0 - marginLeft - marginRight

	chartHeight = 80.0
	maxTableRow = 40
)

// Symbols without a cp1252 code point are spelled out before translation.
var symbolReplacer = strings.NewReplacer("₹", "Rs.")

// formatAmount renders whole currency units without a symbol, e.g. "1,234,567".
func formatAmount(v float64) string {
	return strings.TrimSuffix(service.FormatMoney("", math.Round(v)), ".00")
}

type goalReport struct {
	pdf    *fpdf.Fpdf
	params domain.GoalParameters
	result domain.GoalResult
	guide  []domain.GuideSection
	tr     func(string) string
}

func newGoalReport(params domain.GoalParameters, result domain.GoalResult, guide []domain.GuideSection) *goalReport {
	pdf := fpdf.New("P", "mm", "A4", "")
	return &goalReport{
		pdf:    pdf,
		params: params,
		result: result,
		guide:  guide,
		tr:     pdf.UnicodeTranslatorFromDescriptor(""),
	}
}

// text converts free UTF-8 text (summaries, LLM explanations) to the
// encoding of the core fonts.
func (r *goalReport) text(s string) string {
	return r.tr(symbolReplacer.Replace(s))
}

// GeneratePDFReport renders a calculation as a one or two page PDF: inputs,
// summary, formula, an area chart of the projection and a yearly table.
func GeneratePDFReport(params domain.GoalParameters, result domain.GoalResult, guide []domain.GuideSection) ([]byte, error) {
	r := newGoalReport(params, result, guide)
	r.pdf.SetMargins(marginLeft, marginTop, marginRight)
	r.pdf.SetAutoPageBreak(true, marginBottom)
	r.pdf.SetTitle("Investment Goal Report", false)

	r.addSummaryPage()
	r.addChart()
	r.addYearTable()
	r.addGuide()

	var buf bytes.Buffer
	if err := r.pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render pdf report: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *goalReport) addSummaryPage() {
	r.pdf.AddPage()

	r.pdf.SetFont("Arial", "B", 22)
	r.pdf.SetTextColor(0, 51, 102)
	r.pdf.CellFormat(contentWidth, 12, "Investment Goal Calculator", "", 1, "C", false, 0, "")
	r.pdf.SetFont("Arial", "I", 10)
	r.pdf.SetTextColor(80, 80, 80)
	r.pdf.CellFormat(contentWidth, 6, fmt.Sprintf("Generated: %s", time.Now().Format("2 January 2006")), "", 1, "C", false, 0, "")
	r.pdf.Ln(6)

	r.drawSectionHeader("Inputs")
	rows := [][2]string{
		{"Current investment value", formatAmount(r.params.PresentValue)},
		{"Annual compounding rate", fmt.Sprintf("%.2f%%", r.params.AnnualRatePercent)},
		{"Annual contribution", formatAmount(r.params.AnnualContribution)},
		{"Target amount", formatAmount(r.params.TargetAmount)},
	}
	r.pdf.SetFont("Arial", "", 11)
	r.pdf.SetTextColor(50, 50, 50)
	r.pdf.SetFillColor(245, 247, 250)
	r.pdf.SetDrawColor(200, 200, 200)
	for i, row := range rows {
		fill := i%2 == 0
		r.pdf.CellFormat(contentWidth*0.6, 7, row[0], "1", 0, "L", fill, 0, "")
		r.pdf.CellFormat(contentWidth*0.4, 7, row[1], "1", 1, "R", fill, 0, "")
	}
	r.pdf.Ln(6)

	r.drawSectionHeader("Result")
	r.pdf.SetFont("Arial", "B", 12)
	r.setStatusColor()
	r.pdf.MultiCell(contentWidth, 7, r.text(r.result.Summary), "", "L", false)
	r.pdf.SetFont("Arial", "", 10)
	r.pdf.SetTextColor(50, 50, 50)
	if r.result.Explanation != "" {
		r.pdf.Ln(2)
		r.pdf.MultiCell(contentWidth, 5, r.text(r.result.Explanation), "", "L", false)
	}
	r.pdf.Ln(4)

	r.drawSectionHeader("Future value")
	r.pdf.SetFont("Courier", "", 9)
	r.pdf.MultiCell(contentWidth, 5, r.result.Formula, "", "L", false)
	r.pdf.MultiCell(contentWidth, 5, r.result.FormulaValue, "", "L", false)
	r.pdf.Ln(4)
}

func (r *goalReport) setStatusColor() {
	switch r.result.Status {
	case domain.GoalUnreachable:
		r.pdf.SetTextColor(180, 30, 30)
	case domain.GoalAlreadyMet:
		r.pdf.SetTextColor(0, 102, 51)
	default:
		r.pdf.SetTextColor(0, 51, 102)
	}
}

// addChart draws the projection as a filled area with the target as a
// dashed horizontal line.
func (r *goalReport) addChart() {
	series := r.result.Series
	if len(series) == 0 {
		return
	}
	r.drawSectionHeader("Projection")

	if r.pdf.GetY()+chartHeight+15 > 297-marginBottom {
		r.pdf.AddPage()
	}
	top := r.pdf.GetY() + 2
	left := marginLeft + 18
	width := contentWidth - 20
	bottom := top + chartHeight

	maxValue := r.params.TargetAmount
	for _, pt := range series {
		maxValue = math.Max(maxValue, pt.ProjectedValue)
	}
	if maxValue <= 0 {
		maxValue = 1
	}
	lastYear := float64(series[len(series)-1].Year)
	if lastYear == 0 {
		lastYear = 1
	}
	x := func(year int) float64 { return left + width*float64(year)/lastYear }
	y := func(v float64) float64 { return bottom - chartHeight*v/maxValue }

	points := make([]fpdf.PointType, 0, len(series)+2)
	points = append(points, fpdf.PointType{X: x(series[0].Year), Y: bottom})
	for _, pt := range series {
		points = append(points, fpdf.PointType{X: x(pt.Year), Y: y(pt.ProjectedValue)})
	}
	points = append(points, fpdf.PointType{X: x(series[len(series)-1].Year), Y: bottom})

	r.pdf.SetFillColor(207, 206, 240)
	r.pdf.SetDrawColor(136, 132, 216)
	r.pdf.SetLineWidth(0.5)
	r.pdf.Polygon(points, "FD")

	r.pdf.SetLineWidth(0.2)
	r.pdf.SetDrawColor(120, 120, 120)
	r.pdf.Line(left, top, left, bottom)
	r.pdf.Line(left, bottom, left+width, bottom)

	if r.params.TargetAmount > 0 {
		r.pdf.SetDrawColor(200, 60, 60)
		r.pdf.SetDashPattern([]float64{1.5, 1}, 0)
		r.pdf.Line(left, y(r.params.TargetAmount), left+width, y(r.params.TargetAmount))
		r.pdf.SetDashPattern([]float64{}, 0)
	}

	r.pdf.SetFont("Arial", "", 7)
	r.pdf.SetTextColor(80, 80, 80)
	for i := 0; i <= 4; i++ {
		v := maxValue * float64(i) / 4
		r.pdf.Text(marginLeft, y(v)+1, formatAmount(v))
	}
	step := int(math.Max(1, math.Ceil(lastYear/10)))
	for year := 0; year <= int(lastYear); year += step {
		r.pdf.Text(x(year)-1, bottom+4, fmt.Sprintf("%d", year))
	}
	r.pdf.SetXY(marginLeft, bottom+6)
	r.pdf.CellFormat(contentWidth, 5, "Year", "", 1, "C", false, 0, "")
	r.pdf.Ln(4)
}

func (r *goalReport) addYearTable() {
	series := r.result.Series
	if len(series) == 0 {
		return
	}
	r.pdf.AddPage()
	r.drawSectionHeader("Year by year")

	widths := []float64{30, 60}
	r.pdf.SetFont("Arial", "B", 10)
	r.pdf.SetFillColor(0, 51, 102)
	r.pdf.SetTextColor(255, 255, 255)
	r.pdf.CellFormat(widths[0], 7, "Year", "1", 0, "C", true, 0, "")
	r.pdf.CellFormat(widths[1], 7, "Investment value", "1", 1, "C", true, 0, "")

	r.pdf.SetFont("Arial", "", 10)
	r.pdf.SetTextColor(50, 50, 50)
	for i, pt := range sampleSeries(series, maxTableRow) {
		r.pdf.SetFillColor(245, 247, 250)
		fill := i%2 == 0
		r.pdf.CellFormat(widths[0], 6, fmt.Sprintf("%d", pt.Year), "1", 0, "C", fill, 0, "")
		r.pdf.CellFormat(widths[1], 6, formatAmount(pt.ProjectedValue), "1", 1, "R", fill, 0, "")
	}
	r.pdf.Ln(6)
}

// sampleSeries keeps at most n rows, always including the first and last.
func sampleSeries(series []domain.ProjectionPoint, n int) []domain.ProjectionPoint {
	if len(series) <= n {
		return series
	}
	step := int(math.Ceil(float64(len(series)-1) / float64(n-1)))
	out := make([]domain.ProjectionPoint, 0, n)
	for i := 0; i < len(series)-1; i += step {
		out = append(out, series[i])
	}
	return append(out, series[len(series)-1])
}

func (r *goalReport) addGuide() {
	for _, section := range r.guide {
		r.drawSectionHeader(section.Title)
		r.pdf.SetFont("Arial", "", 10)
		r.pdf.SetTextColor(50, 50, 50)
		if section.Body != "" {
			r.pdf.MultiCell(contentWidth, 5, r.text(section.Body), "", "L", false)
		}
		for _, item := range section.Items {
			r.pdf.MultiCell(contentWidth, 5, "- "+r.text(item), "", "L", false)
		}
		r.pdf.Ln(4)
	}
}

func (r *goalReport) drawSectionHeader(title string) {
	r.pdf.SetFont("Arial", "B", 13)
	r.pdf.SetTextColor(0, 51, 102)
	r.pdf.CellFormat(contentWidth, 8, title, "", 1, "L", false, 0, "")
	r.pdf.SetDrawColor(0, 51, 102)
	r.pdf.Line(marginLeft, r.pdf.GetY(), marginLeft+contentWidth, r.pdf.GetY())
	r.pdf.Ln(3)
}

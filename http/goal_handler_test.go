package http

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"goal-calculator/domain"
	"goal-calculator/repository"
	"goal-calculator/service"
)

func newTestHandler() *GoalHandler {
	log := logrus.New()
	log.SetOutput(io.Discard)
	explainer := service.NewExplanationService(service.ExplanationConfig{CurrencySymbol: "₹"}, log)
	svc := service.NewGoalService(
		repository.NewGoalRepositoryMemory(),
		repository.NewMemoryCache(),
		explainer,
		log,
		service.GoalServiceOptions{CacheTTL: time.Minute, CurrencySymbol: "₹"},
	)
	return NewGoalHandler(svc, log)
}

func postJSON(target, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestCalculateGoalHandler_OK(t *testing.T) {
	handler := newTestHandler()

	req := postJSON("/goal/calculate", `{
		"present_value": 100000,
		"annual_rate_percent": 10,
		"annual_contribution": 50000,
		"target_amount": 1000000
	}`)
	w := httptest.NewRecorder()

	handler.CalculateGoal(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var result domain.GoalResult
	if err := json.NewDecoder(w.Body).Decode(&result); err != nil {
		t.Fatalf("invalid response: %v", err)
	}
	if result.Status != domain.GoalReached || result.ElapsedYears < 9.6 || result.ElapsedYears > 9.63 {
		t.Errorf("unexpected result %s %v", result.Status, result.ElapsedYears)
	}
	if len(result.Series) == 0 || result.Series[0].ProjectedValue != 100000 {
		t.Errorf("expected series starting at 100000")
	}
}

func TestCalculateGoalHandler_Unreachable(t *testing.T) {
	handler := newTestHandler()

	req := postJSON("/goal/calculate", `{"present_value":0,"annual_rate_percent":0,"annual_contribution":0,"target_amount":1000}`)
	w := httptest.NewRecorder()
	handler.CalculateGoal(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var result domain.GoalResult
	json.NewDecoder(w.Body).Decode(&result)
	if result.Status != domain.GoalUnreachable {
		t.Errorf("expected unreachable, got %s", result.Status)
	}
}

func TestCalculateGoalHandler_MethodNotAllowed(t *testing.T) {
	handler := newTestHandler()

	req := httptest.NewRequest(http.MethodGet, "/goal/calculate", nil)
	w := httptest.NewRecorder()
	handler.CalculateGoal(w, req)

	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected 405, got %d", w.Code)
	}
}

func TestCalculateGoalHandler_BadRequest(t *testing.T) {
	cases := map[string]string{
		"malformed json":   `{invalid-json}`,
		"unknown field":    `{"monto": 10000}`,
		"negative amount":  `{"present_value":-5,"annual_rate_percent":1,"annual_contribution":1,"target_amount":1}`,
		"rate above limit": `{"present_value":5,"annual_rate_percent":5000,"annual_contribution":1,"target_amount":1}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			handler := newTestHandler()
			w := httptest.NewRecorder()
			handler.CalculateGoal(w, postJSON("/goal/calculate", body))
			if w.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d", w.Code)
			}
		})
	}
}

func TestCalculateGoalHandler_UnsupportedMediaType(t *testing.T) {
	handler := newTestHandler()

	req := httptest.NewRequest(http.MethodPost, "/goal/calculate", bytes.NewBufferString(`{}`))
	req.Header.Set("Content-Type", "text/plain")
	w := httptest.NewRecorder()
	handler.CalculateGoal(w, req)

	if w.Code != http.StatusUnsupportedMediaType {
		t.Errorf("expected 415, got %d", w.Code)
	}
}

func TestProjectionHandler(t *testing.T) {
	handler := newTestHandler()

	req := postJSON("/goal/projection", `{
		"params": {"present_value": 1000, "annual_rate_percent": 0, "annual_contribution": 100, "target_amount": 2000},
		"horizon_years": 2.5
	}`)
	w := httptest.NewRecorder()
	handler.Projection(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var series []domain.ProjectionPoint
	json.NewDecoder(w.Body).Decode(&series)
	if len(series) != 4 || series[3].ProjectedValue != 1300 {
		t.Errorf("unexpected series %+v", series)
	}
}

func TestReportHandler(t *testing.T) {
	handler := newTestHandler()

	req := postJSON("/goal/report", `{"present_value":100000,"annual_rate_percent":10,"annual_contribution":50000,"target_amount":1000000}`)
	w := httptest.NewRecorder()
	handler.Report(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Errorf("expected application/pdf, got %q", ct)
	}
	if !bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF")) {
		t.Errorf("body is not a PDF")
	}
}

func TestRouter_HistoryAfterCalculation(t *testing.T) {
	handler := newTestHandler()
	limiter := NewRateLimiter(10, time.Minute)
	defer limiter.Stop()
	router := NewRouter(handler, limiter, false)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, postJSON("/goal/calculate", `{"present_value":1000,"annual_rate_percent":0,"annual_contribution":100,"target_amount":2000}`))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/goal/history?limit=5", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var records []domain.GoalRecord
	json.NewDecoder(w.Body).Decode(&records)
	if len(records) != 1 || records[0].ElapsedYears != 10 {
		t.Errorf("unexpected history %+v", records)
	}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/goal/history?limit=abc", nil))
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for bad limit, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusOK {
		t.Errorf("expected 200 from health, got %d", w.Code)
	}
}

func TestGuideHandler(t *testing.T) {
	handler := newTestHandler()

	w := httptest.NewRecorder()
	handler.Guide(w, httptest.NewRequest(http.MethodGet, "/goal/guide", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var guide []domain.GuideSection
	json.NewDecoder(w.Body).Decode(&guide)
	if len(guide) == 0 {
		t.Errorf("expected guide sections")
	}
}

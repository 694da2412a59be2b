package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"goal-calculator/domain"
	"goal-calculator/report"
	"goal-calculator/service"
)

const maxBodyBytes = 1 << 16

type GoalHandler struct {
	service *service.GoalService
	log     *logrus.Logger
}

func NewGoalHandler(service *service.GoalService, log *logrus.Logger) *GoalHandler {
	return &GoalHandler{service: service, log: log}
}

func (h *GoalHandler) CalculateGoal(w http.ResponseWriter, r *http.Request) {
	var input domain.GoalParameters
	if !h.decode(w, r, &input) {
		return
	}

	result, err := h.service.CalculateGoal(r.Context(), input)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

func (h *GoalHandler) Projection(w http.ResponseWriter, r *http.Request) {
	var input domain.ProjectionInput
	if !h.decode(w, r, &input) {
		return
	}

	series, err := h.service.Projection(r.Context(), input)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, series)
}

func (h *GoalHandler) Report(w http.ResponseWriter, r *http.Request) {
	var input domain.GoalParameters
	if !h.decode(w, r, &input) {
		return
	}

	result, err := h.service.CalculateGoal(r.Context(), input)
	if err != nil {
		h.writeError(w, err)
		return
	}

	pdf, err := report.GeneratePDFReport(input, result, h.service.Guide())
	if err != nil {
		h.log.WithError(err).Error("Error generating report")
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="investment-goal.pdf"`)
	if _, err := w.Write(pdf); err != nil {
		h.log.WithError(err).Warn("Error writing report")
	}
}

func (h *GoalHandler) History(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}

	records, err := h.service.History(r.Context(), limit)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, records)
}

func (h *GoalHandler) Guide(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	h.writeJSON(w, http.StatusOK, h.service.Guide())
}

// decode checks method and Content-Type and reads a JSON body into dst.
// It writes the error response itself and reports whether to continue.
func (h *GoalHandler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return false
	}

	// Validar Content-Type
	contentType := r.Header.Get("Content-Type")
	if !strings.Contains(contentType, "application/json") {
		http.Error(w, "Content-Type must be application/json", http.StatusUnsupportedMediaType)
		return false
	}

	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		h.log.WithError(err).Debug("Error decoding request body")
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}

func (h *GoalHandler) writeError(w http.ResponseWriter, err error) {
	if errors.Is(err, service.ErrInvalidInput) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	h.log.WithError(err).Error("request failed")
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

func (h *GoalHandler) writeJSON(w http.ResponseWriter, status int, v any) {
	// Codificar JSON en buffer primero para evitar escribir header si falla
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		h.log.WithError(err).Error("Error encoding response")
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		h.log.WithError(err).Warn("Error writing response")
	}
}

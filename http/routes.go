package http

import (
	"net/http"

	"github.com/gorilla/mux"
)

// NewRouter wires the goal endpoints behind the rate limiter.
func NewRouter(goalHandler *GoalHandler, limiter *RateLimiter, trustProxy bool) *mux.Router {
	router := mux.NewRouter()
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}` + "\n"))
	}).Methods(http.MethodGet)

	goalRouter := router.PathPrefix("/goal").Subrouter()
	goalRouter.Use(RateLimitMiddleware(limiter, trustProxy))
	goalRouter.HandleFunc("/calculate", goalHandler.CalculateGoal)
	goalRouter.HandleFunc("/projection", goalHandler.Projection)
	goalRouter.HandleFunc("/report", goalHandler.Report)
	goalRouter.HandleFunc("/history", goalHandler.History)
	goalRouter.HandleFunc("/guide", goalHandler.Guide)

	return router
}

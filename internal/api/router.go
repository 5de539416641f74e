package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mazkir/mazkir/internal/coordinator"
	"github.com/mazkir/mazkir/internal/history"
	"github.com/mazkir/mazkir/internal/views"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// hist may be nil when completion history is disabled.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(v *views.Views, coord *coordinator.Coordinator, hist history.Recorder, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(v, coord, hist)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Habits.
	r.Get("/habits", h.ListHabits)
	r.Post("/habits", h.CreateHabit)
	r.Post("/habits/complete", h.CompleteHabit)

	// Tasks.
	r.Get("/tasks", h.ListTasks)
	r.Post("/tasks", h.CreateTask)

	// Goals.
	r.Get("/goals", h.ListGoals)
	r.Post("/goals", h.CreateGoal)

	// Daily summary and token balances.
	r.Get("/day", h.Daily)
	r.Get("/ledger", h.Ledger)

	// Completion history.
	r.Get("/history", h.History)

	// Journal recovery sweep.
	r.Post("/recover", h.Recover)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}

package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/mazkir/mazkir/internal/apperr"
	"github.com/mazkir/mazkir/internal/coordinator"
	"github.com/mazkir/mazkir/internal/history"
	"github.com/mazkir/mazkir/internal/views"
)

// Handler holds API route handlers.
type Handler struct {
	views *views.Views
	coord *coordinator.Coordinator
	hist  history.Recorder // nil disables the history endpoint
}

// NewHandler creates a new Handler.
func NewHandler(v *views.Views, coord *coordinator.Coordinator, hist history.Recorder) *Handler {
	return &Handler{views: v, coord: coord, hist: hist}
}

// writeDomainError maps the error taxonomy onto HTTP statuses. Malformed
// documents and path escapes indicate a corrupted vault or a bug, so they
// surface as operator-facing 500s, never as user input problems.
func writeDomainError(w http.ResponseWriter, err error) {
	var ambiguous *coordinator.AmbiguousError
	switch {
	case errors.As(err, &ambiguous):
		writeJSON(w, http.StatusConflict, map[string]any{
			"error":      "ambiguous name",
			"candidates": ambiguous.Candidates,
		})
	case errors.Is(err, apperr.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
	case errors.Is(err, apperr.ErrAlreadyExists):
		writeJSON(w, http.StatusConflict, errorBody("already exists"))
	case errors.Is(err, apperr.ErrInvalidAmount):
		writeJSON(w, http.StatusUnprocessableEntity, errorBody(err.Error()))
	case errors.Is(err, apperr.ErrTimeout):
		writeJSON(w, http.StatusGatewayTimeout, errorBody("vault timeout"))
	default:
		slog.Error("vault operation failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
	}
}

// ListHabits handles GET /api/habits.
//
//	@Summary		List active habits, optionally sorted by streak
//	@Tags			habits
//	@Produce		json
//	@Param			sort	query		string	false	"Sort order"	Enums(streak)
//	@Success		200		{object}	HabitListResponse
//	@Security		BearerAuth
//	@Router			/habits [get]
func (h *Handler) ListHabits(w http.ResponseWriter, r *http.Request) {
	byStreak := r.URL.Query().Get("sort") == "streak"
	habits, err := h.views.ActiveHabits(r.Context(), byStreak)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, HabitListResponse{Habits: habits, Total: len(habits)})
}

// CreateHabit handles POST /api/habits.
//
//	@Summary		Create a new habit
//	@Tags			habits
//	@Accept			json
//	@Produce		json
//	@Param			body	body		coordinator.HabitSpec	true	"Habit to create"
//	@Success		201		{object}	CreatedResponse
//	@Failure		409		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/habits [post]
func (h *Handler) CreateHabit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var spec coordinator.HabitSpec
	if err := json.NewDecoder(r.Body).Decode(&spec); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if spec.Name == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("name is required"))
		return
	}
	doc, err := h.coord.CreateHabit(r.Context(), spec)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, CreatedResponse{Path: doc.Path})
}

// CompleteHabit handles POST /api/habits/complete.
//
//	@Summary		Complete a habit by name
//	@Tags			habits
//	@Accept			json
//	@Produce		json
//	@Param			body	body		CompleteRequest	true	"Habit name (exact or fuzzy)"
//	@Success		200		{object}	coordinator.Result
//	@Failure		404		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/habits/complete [post]
func (h *Handler) CompleteHabit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req CompleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("name is required"))
		return
	}
	result, err := h.coord.CompleteHabit(r.Context(), req.Name)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// ListTasks handles GET /api/tasks.
//
//	@Summary		List active tasks sorted by priority and due date
//	@Tags			tasks
//	@Produce		json
//	@Success		200	{object}	TaskListResponse
//	@Security		BearerAuth
//	@Router			/tasks [get]
func (h *Handler) ListTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.views.ActiveTasks(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, TaskListResponse{Tasks: tasks, Total: len(tasks)})
}

// CreateTask handles POST /api/tasks.
//
//	@Summary		Create a new task
//	@Tags			tasks
//	@Accept			json
//	@Produce		json
//	@Param			body	body		coordinator.TaskSpec	true	"Task to create"
//	@Success		201		{object}	CreatedResponse
//	@Failure		409		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/tasks [post]
func (h *Handler) CreateTask(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var spec coordinator.TaskSpec
	if err := json.NewDecoder(r.Body).Decode(&spec); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if spec.Name == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("name is required"))
		return
	}
	doc, err := h.coord.CreateTask(r.Context(), spec)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, CreatedResponse{Path: doc.Path})
}

// ListGoals handles GET /api/goals.
//
//	@Summary		List open goals sorted by priority and target date
//	@Tags			goals
//	@Produce		json
//	@Success		200	{object}	GoalListResponse
//	@Security		BearerAuth
//	@Router			/goals [get]
func (h *Handler) ListGoals(w http.ResponseWriter, r *http.Request) {
	goals, err := h.views.ActiveGoals(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, GoalListResponse{Goals: goals, Total: len(goals)})
}

// CreateGoal handles POST /api/goals.
//
//	@Summary		Create a new goal
//	@Tags			goals
//	@Accept			json
//	@Produce		json
//	@Param			body	body		coordinator.GoalSpec	true	"Goal to create"
//	@Success		201		{object}	CreatedResponse
//	@Failure		409		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/goals [post]
func (h *Handler) CreateGoal(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var spec coordinator.GoalSpec
	if err := json.NewDecoder(r.Body).Decode(&spec); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if spec.Name == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("name is required"))
		return
	}
	doc, err := h.coord.CreateGoal(r.Context(), spec)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, CreatedResponse{Path: doc.Path})
}

// Daily handles GET /api/day.
//
//	@Summary		Daily aggregate: day note, habits, and balances
//	@Tags			day
//	@Produce		json
//	@Param			date	query		string	false	"Calendar date (YYYY-MM-DD), default today"
//	@Success		200		{object}	views.DailySummary
//	@Security		BearerAuth
//	@Router			/day [get]
func (h *Handler) Daily(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		date = h.views.Today()
	}
	sum, err := h.views.Daily(r.Context(), date)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

// Ledger handles GET /api/ledger.
//
//	@Summary		Current token balances and the next milestone
//	@Tags			tokens
//	@Produce		json
//	@Success		200	{object}	views.LedgerView
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/ledger [get]
func (h *Handler) Ledger(w http.ResponseWriter, r *http.Request) {
	ledger, err := h.views.Ledger(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ledger)
}

// History handles GET /api/history.
//
//	@Summary		Recent recorded completions
//	@Tags			history
//	@Produce		json
//	@Param			limit	query		int	false	"Max events"
//	@Success		200		{object}	HistoryResponse
//	@Security		BearerAuth
//	@Router			/history [get]
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	if h.hist == nil {
		writeJSON(w, http.StatusNotFound, errorBody("history disabled"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	events, err := h.hist.RecentCompletions(limit)
	if err != nil {
		slog.Error("history query failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	if events == nil {
		events = []history.Completion{}
	}
	writeJSON(w, http.StatusOK, HistoryResponse{Completions: events})
}

// Recover handles POST /api/recover.
//
//	@Summary		Replay interrupted completions from the journal
//	@Tags			recovery
//	@Produce		json
//	@Success		200	{object}	coordinator.RecoveryReport
//	@Security		BearerAuth
//	@Router			/recover [post]
func (h *Handler) Recover(w http.ResponseWriter, r *http.Request) {
	report, err := h.coord.Recover(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

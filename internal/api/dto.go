package api

import (
	"github.com/mazkir/mazkir/internal/history"
	"github.com/mazkir/mazkir/internal/models"
)

// CompleteRequest is the request body for completing a habit.
type CompleteRequest struct {
	Name string `json:"name" example:"gym" validate:"required"`
}

// CreatedResponse is returned after a habit or task document is created.
type CreatedResponse struct {
	Path string `json:"path" example:"20-habits/gym.md" validate:"required"`
}

// HabitListResponse wraps habit listings.
type HabitListResponse struct {
	Habits []models.Habit `json:"habits" validate:"required"`
	Total  int            `json:"total" example:"7" validate:"required"`
}

// TaskListResponse wraps task listings.
type TaskListResponse struct {
	Tasks []models.Task `json:"tasks" validate:"required"`
	Total int           `json:"total" example:"3" validate:"required"`
}

// GoalListResponse wraps goal listings.
type GoalListResponse struct {
	Goals []models.Goal `json:"goals" validate:"required"`
	Total int           `json:"total" example:"2" validate:"required"`
}

// HistoryResponse wraps recent completion events.
type HistoryResponse struct {
	Completions []history.Completion `json:"completions" validate:"required"`
}

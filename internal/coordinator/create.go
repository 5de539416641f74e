package coordinator

import (
	"context"
	"fmt"
	"strings"

	"github.com/mazkir/mazkir/internal/apperr"
	"github.com/mazkir/mazkir/internal/codec"
	"github.com/mazkir/mazkir/internal/models"
	"github.com/mazkir/mazkir/internal/storage"
	"github.com/mazkir/mazkir/internal/vault"
)

// HabitSpec describes a habit to create.
type HabitSpec struct {
	Name                string `json:"name"`
	Frequency           string `json:"frequency"`
	Category            string `json:"category"`
	TokensPerCompletion int    `json:"tokens_per_completion"`
}

// TaskSpec describes a task to create.
type TaskSpec struct {
	Name     string `json:"name"`
	Priority int    `json:"priority"`
	DueDate  string `json:"due_date"`
	Category string `json:"category"`
}

// GoalSpec describes a goal to create.
type GoalSpec struct {
	Name       string `json:"name"`
	Priority   string `json:"priority"`
	TargetDate string `json:"target_date"`
	Category   string `json:"category"`
}

// CreateHabit creates a habit document from defaults. Not idempotent:
// duplicate calls on the same slug fail with apperr.ErrAlreadyExists;
// each call represents a distinct user intent.
func (c *Coordinator) CreateHabit(ctx context.Context, spec HabitSpec) (*models.Document, error) {
	name := strings.TrimSpace(spec.Name)
	if name == "" {
		return nil, fmt.Errorf("coordinator: empty habit name: %w", apperr.ErrNotFound)
	}
	if spec.Frequency == "" {
		spec.Frequency = "daily"
	}
	if spec.Category == "" {
		spec.Category = "personal"
	}
	if spec.TokensPerCompletion <= 0 {
		spec.TokensPerCompletion = 5
	}

	today := c.store.Today()
	meta := codec.NewMetadata()
	meta.Set(models.FieldName, name)
	meta.Set(models.FieldStatus, models.StatusActive)
	meta.Set("frequency", spec.Frequency)
	meta.Set("category", spec.Category)
	meta.Set(models.FieldStreak, 0)
	meta.Set(models.FieldBestStreak, 0)
	meta.Set(models.FieldTokensPerCompletion, spec.TokensPerCompletion)
	meta.Set("created", today)
	meta.Set(models.FieldUpdated, today)

	path := vault.HabitsDir + "/" + slug(name) + storage.DocumentExt
	body := "# " + name + "\n"
	return c.store.Create(ctx, path, meta, body)
}

// CreateTask creates a task document under the active-tasks directory.
// Tokens on completion default by priority the way the original reward
// table did: 5 for priority 1-2, 10 for 3, 15 for 4-5.
func (c *Coordinator) CreateTask(ctx context.Context, spec TaskSpec) (*models.Document, error) {
	name := strings.TrimSpace(spec.Name)
	if name == "" {
		return nil, fmt.Errorf("coordinator: empty task name: %w", apperr.ErrNotFound)
	}
	if spec.Priority == 0 {
		spec.Priority = 3
	}
	if spec.Priority < 1 || spec.Priority > 5 {
		return nil, fmt.Errorf("coordinator: priority %d out of range: %w", spec.Priority, apperr.ErrInvalidAmount)
	}
	if spec.Category == "" {
		spec.Category = "personal"
	}

	today := c.store.Today()
	meta := codec.NewMetadata()
	meta.Set(models.FieldName, name)
	meta.Set(models.FieldPriority, spec.Priority)
	if spec.DueDate != "" {
		meta.Set(models.FieldDueDate, spec.DueDate)
	}
	meta.Set("category", spec.Category)
	meta.Set(models.FieldTokensOnCompletion, taskTokens(spec.Priority))
	meta.Set("created", today)
	meta.Set(models.FieldUpdated, today)

	path := vault.TasksActiveDir + "/" + slug(name) + storage.DocumentExt
	body := "# " + name + "\n"

	doc, err := c.store.Create(ctx, path, meta, body)
	if err != nil {
		return nil, err
	}
	if _, err := models.TaskFrom(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// CreateGoal creates a goal document. New goals start as not-started
// with zero progress and an empty milestone list; progress tracking is
// an editing concern, not a creation one.
func (c *Coordinator) CreateGoal(ctx context.Context, spec GoalSpec) (*models.Document, error) {
	name := strings.TrimSpace(spec.Name)
	if name == "" {
		return nil, fmt.Errorf("coordinator: empty goal name: %w", apperr.ErrNotFound)
	}
	if spec.Priority == "" {
		spec.Priority = models.GoalPriorityMedium
	}
	switch spec.Priority {
	case models.GoalPriorityHigh, models.GoalPriorityMedium, models.GoalPriorityLow:
	default:
		return nil, fmt.Errorf("coordinator: priority %q out of range: %w", spec.Priority, apperr.ErrInvalidAmount)
	}
	if spec.Category == "" {
		spec.Category = "personal"
	}

	today := c.store.Today()
	meta := codec.NewMetadata()
	meta.Set(models.FieldName, name)
	meta.Set(models.FieldStatus, models.GoalStatusNotStarted)
	meta.Set(models.FieldPriority, spec.Priority)
	meta.Set(models.FieldProgress, 0)
	if spec.TargetDate != "" {
		meta.Set(models.FieldTargetDate, spec.TargetDate)
	}
	meta.Set(models.FieldCategory, spec.Category)
	meta.Set(models.FieldMilestones, []any{})
	meta.Set("created", today)
	meta.Set(models.FieldUpdated, today)

	path := vault.GoalsDir + "/" + slug(name) + storage.DocumentExt
	body := "# " + name + "\n"

	doc, err := c.store.Create(ctx, path, meta, body)
	if err != nil {
		return nil, err
	}
	if _, err := models.GoalFrom(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func taskTokens(priority int) int {
	switch {
	case priority <= 2:
		return 5
	case priority <= 3:
		return 10
	default:
		return 15
	}
}

// slug converts a display name into a filename: lowercase, spaces to
// hyphens, everything but letters, digits, and hyphens dropped.
func slug(name string) string {
	var b strings.Builder
	lastHyphen := false
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		case r == ' ' || r == '-' || r == '_':
			if !lastHyphen && b.Len() > 0 {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

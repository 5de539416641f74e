// Package views provides the read-only aggregations over the vault:
// sorted task lists, filtered habit lists, and the daily summary. Views
// never write.
package views

import (
	"context"
	"errors"
	"sort"

	"github.com/mazkir/mazkir/internal/apperr"
	"github.com/mazkir/mazkir/internal/models"
	"github.com/mazkir/mazkir/internal/tokens"
	"github.com/mazkir/mazkir/internal/vault"
)

// Views serves read paths built only on the document store.
type Views struct {
	store         *vault.Store
	milestoneStep int
}

// New creates a Views over store.
func New(store *vault.Store, milestoneStep int) *Views {
	if milestoneStep <= 0 {
		milestoneStep = tokens.DefaultMilestoneStep
	}
	return &Views{store: store, milestoneStep: milestoneStep}
}

// Today returns today's date in the vault's timezone.
func (v *Views) Today() string { return v.store.Today() }

// ActiveTasks lists the active tasks sorted by priority descending, then
// due date ascending; tasks without a due date sort last. A missing
// tasks directory is an empty list, not an error.
func (v *Views) ActiveTasks(ctx context.Context) ([]models.Task, error) {
	docs, err := v.store.List(ctx, vault.TasksActiveDir, vault.ListOptions{MissingDirOK: true})
	if err != nil {
		return nil, err
	}
	out := make([]models.Task, 0, len(docs))
	for _, doc := range docs {
		t, terr := models.TaskFrom(doc)
		if terr != nil {
			return nil, terr
		}
		out = append(out, t)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Priority != out[j].Priority {
			return out[i].Priority > out[j].Priority
		}
		return dueBefore(out[i].DueDate, out[j].DueDate)
	})
	return out, nil
}

func dueBefore(a, b string) bool {
	switch {
	case a == "":
		return false
	case b == "":
		return true
	default:
		return a < b
	}
}

// ActiveHabits lists the active habits. With byStreak set, the list is
// sorted by streak descending for display.
func (v *Views) ActiveHabits(ctx context.Context, byStreak bool) ([]models.Habit, error) {
	docs, err := v.store.List(ctx, vault.HabitsDir, vault.ListOptions{
		MissingDirOK: true,
		Filter: func(d *models.Document) bool {
			return d.Meta.String(models.FieldStatus) == models.StatusActive
		},
	})
	if err != nil {
		return nil, err
	}
	out := make([]models.Habit, 0, len(docs))
	for _, doc := range docs {
		h, herr := models.HabitFrom(doc)
		if herr != nil {
			return nil, herr
		}
		out = append(out, h)
	}
	if byStreak {
		sort.SliceStable(out, func(i, j int) bool { return out[i].Streak > out[j].Streak })
	}
	return out, nil
}

// ActiveGoals lists the open goals sorted by priority (high first),
// then target date ascending; goals without a target date sort last.
// A missing goals directory is an empty list, not an error.
func (v *Views) ActiveGoals(ctx context.Context) ([]models.Goal, error) {
	docs, err := v.store.List(ctx, vault.GoalsDir, vault.ListOptions{
		MissingDirOK: true,
		Filter: func(d *models.Document) bool {
			return d.Meta.String(models.FieldStatus) != models.GoalStatusCompleted
		},
	})
	if err != nil {
		return nil, err
	}
	out := make([]models.Goal, 0, len(docs))
	for _, doc := range docs {
		g, gerr := models.GoalFrom(doc)
		if gerr != nil {
			return nil, gerr
		}
		out = append(out, g)
	}
	sort.SliceStable(out, func(i, j int) bool {
		pi, pj := priorityRank(out[i].Priority), priorityRank(out[j].Priority)
		if pi != pj {
			return pi < pj
		}
		return dueBefore(out[i].TargetDate, out[j].TargetDate)
	})
	return out, nil
}

func priorityRank(p string) int {
	switch p {
	case models.GoalPriorityHigh:
		return 0
	case models.GoalPriorityMedium:
		return 1
	default:
		return 2
	}
}

// LedgerView is the balance snapshot surfaced to presentation layers.
type LedgerView struct {
	TotalTokens   int `json:"total_tokens"`
	TokensToday   int `json:"tokens_today"`
	AllTimeTokens int `json:"all_time_tokens"`
	NextMilestone int `json:"next_milestone"`
}

// Ledger reads the token ledger.
func (v *Views) Ledger(ctx context.Context) (*LedgerView, error) {
	doc, err := v.store.Read(ctx, vault.LedgerPath)
	if err != nil {
		return nil, err
	}
	l, err := models.LedgerFrom(doc)
	if err != nil {
		return nil, err
	}
	return &LedgerView{
		TotalTokens:   l.TotalTokens,
		TokensToday:   l.TokensToday,
		AllTimeTokens: l.AllTimeTokens,
		NextMilestone: tokens.NextMilestone(l.TotalTokens, v.milestoneStep),
	}, nil
}

// HabitStatus is one habit's row in the daily summary.
type HabitStatus struct {
	Name      string `json:"name"`
	Streak    int    `json:"streak"`
	Completed bool   `json:"completed"`
}

// DailySummary joins the day note, the habit list, and the ledger into
// one read-only snapshot.
type DailySummary struct {
	Date            string        `json:"date"`
	TokensEarned    int           `json:"tokens_earned"`
	TokensTotal     int           `json:"tokens_total"`
	CompletedHabits []string      `json:"completed_habits"`
	Habits          []HabitStatus `json:"habits"`
	TotalStreak     int           `json:"total_streak"`
	AverageStreak   float64       `json:"average_streak"`
	NextMilestone   int           `json:"next_milestone"`
}

// Daily builds the aggregate view for date. A missing day note yields a
// zero-valued summary for that date; the habit list and ledger still
// populate.
func (v *Views) Daily(ctx context.Context, date string) (*DailySummary, error) {
	sum := &DailySummary{Date: date, CompletedHabits: []string{}}

	doc, err := v.store.Read(ctx, vault.DailyPath(date))
	switch {
	case err == nil:
		note, nerr := models.DayNoteFrom(doc)
		if nerr != nil {
			return nil, nerr
		}
		sum.TokensEarned = note.TokensEarned
		sum.TokensTotal = note.TokensTotal
		if note.CompletedHabits != nil {
			sum.CompletedHabits = note.CompletedHabits
		}
	case errors.Is(err, apperr.ErrNotFound):
		// No completions recorded yet today.
	default:
		return nil, err
	}

	habits, err := v.ActiveHabits(ctx, true)
	if err != nil {
		return nil, err
	}
	done := make(map[string]struct{}, len(sum.CompletedHabits))
	for _, h := range sum.CompletedHabits {
		done[h] = struct{}{}
	}
	for _, h := range habits {
		_, completed := done[h.Name]
		sum.Habits = append(sum.Habits, HabitStatus{Name: h.Name, Streak: h.Streak, Completed: completed})
		sum.TotalStreak += h.Streak
	}
	if len(habits) > 0 {
		sum.AverageStreak = float64(sum.TotalStreak) / float64(len(habits))
	}

	ledger, err := v.Ledger(ctx)
	if err == nil {
		sum.TokensTotal = ledger.TotalTokens
		sum.NextMilestone = ledger.NextMilestone
	} else if !errors.Is(err, apperr.ErrNotFound) {
		return nil, err
	}

	return sum, nil
}

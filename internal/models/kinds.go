package models

import (
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/mazkir/mazkir/internal/codec"
)

// Habit statuses.
const (
	StatusActive   = "active"
	StatusArchived = "archived"
)

// Goal statuses. A goal counts as open in every status except completed.
const (
	GoalStatusNotStarted = "not-started"
	GoalStatusPlanning   = "planning"
	GoalStatusActive     = "active"
	GoalStatusInProgress = "in-progress"
	GoalStatusCompleted  = "completed"
)

// Goal priority levels.
const (
	GoalPriorityHigh   = "high"
	GoalPriorityMedium = "medium"
	GoalPriorityLow    = "low"
)

// Frontmatter field names shared by the document kinds.
const (
	FieldName                = "name"
	FieldStatus              = "status"
	FieldStreak              = "streak"
	FieldBestStreak          = "best_streak"
	FieldLastCompleted       = "last_completed"
	FieldTokensPerCompletion = "tokens_per_completion"
	FieldPriority            = "priority"
	FieldDueDate             = "due_date"
	FieldTokensOnCompletion  = "tokens_on_completion"
	FieldTotalTokens         = "total_tokens"
	FieldTokensToday         = "tokens_today"
	FieldAllTimeTokens       = "all_time_tokens"
	FieldTokensEarned        = "tokens_earned"
	FieldTokensTotal         = "tokens_total"
	FieldCompletedHabits     = "completed_habits"
	FieldDate                = "date"
	FieldUpdated             = "updated"
	FieldCategory            = "category"
	FieldProgress            = "progress"
	FieldTargetDate          = "target_date"
	FieldMilestones          = "milestones"
)

const dateLayout = "2006-01-02"

// Habit is the typed view of a habit document.
type Habit struct {
	Path                string
	Name                string
	Status              string
	Streak              int
	BestStreak          int
	LastCompleted       string
	TokensPerCompletion int
}

// HabitFrom interprets doc as a habit and validates its schema.
func HabitFrom(doc *Document) (Habit, error) {
	h := Habit{
		Path:                doc.Path,
		Name:                doc.Meta.String(FieldName),
		Status:              doc.Meta.String(FieldStatus),
		Streak:              doc.Meta.Int(FieldStreak),
		BestStreak:          doc.Meta.Int(FieldBestStreak),
		LastCompleted:       doc.Meta.String(FieldLastCompleted),
		TokensPerCompletion: doc.Meta.Int(FieldTokensPerCompletion),
	}
	if err := h.Validate(); err != nil {
		return Habit{}, fmt.Errorf("models: habit %s: %w", doc.Path, err)
	}
	return h, nil
}

// Validate checks the habit schema.
func (h Habit) Validate() error {
	return validation.ValidateStruct(&h,
		validation.Field(&h.Name, validation.Required),
		validation.Field(&h.Status, validation.Required, validation.In(StatusActive, StatusArchived)),
		validation.Field(&h.Streak, validation.Min(0)),
		validation.Field(&h.BestStreak, validation.Min(h.Streak).Error("must be at least the current streak")),
		validation.Field(&h.LastCompleted, validation.Date(dateLayout)),
		validation.Field(&h.TokensPerCompletion, validation.Required, validation.Min(1)),
	)
}

// ApplyTo writes the habit's mutable fields back into meta, preserving
// every field the view does not model.
func (h Habit) ApplyTo(meta *codec.Metadata) {
	meta.Set(FieldStreak, h.Streak)
	meta.Set(FieldBestStreak, h.BestStreak)
	meta.Set(FieldLastCompleted, h.LastCompleted)
}

// Task is the typed view of a task document.
type Task struct {
	Path               string
	Name               string
	Priority           int
	DueDate            string
	TokensOnCompletion int
}

// TaskFrom interprets doc as a task and validates its schema.
func TaskFrom(doc *Document) (Task, error) {
	t := Task{
		Path:               doc.Path,
		Name:               doc.Meta.String(FieldName),
		Priority:           doc.Meta.Int(FieldPriority),
		DueDate:            doc.Meta.String(FieldDueDate),
		TokensOnCompletion: doc.Meta.Int(FieldTokensOnCompletion),
	}
	if err := t.Validate(); err != nil {
		return Task{}, fmt.Errorf("models: task %s: %w", doc.Path, err)
	}
	return t, nil
}

// Validate checks the task schema.
func (t Task) Validate() error {
	return validation.ValidateStruct(&t,
		validation.Field(&t.Name, validation.Required),
		validation.Field(&t.Priority, validation.Required, validation.Min(1), validation.Max(5)),
		validation.Field(&t.DueDate, validation.Date(dateLayout)),
	)
}

// Goal is the typed view of a goal document. Milestones live in the
// frontmatter as a list of mappings; the view keeps only the counts the
// summaries need.
type Goal struct {
	Path            string
	Name            string
	Status          string
	Priority        string
	Progress        int // percent, 0 to 100
	TargetDate      string
	Category        string
	MilestonesDone  int
	MilestonesTotal int
}

// GoalFrom interprets doc as a goal and validates its schema.
func GoalFrom(doc *Document) (Goal, error) {
	g := Goal{
		Path:       doc.Path,
		Name:       doc.Meta.String(FieldName),
		Status:     doc.Meta.String(FieldStatus),
		Priority:   doc.Meta.String(FieldPriority),
		Progress:   doc.Meta.Int(FieldProgress),
		TargetDate: doc.Meta.String(FieldTargetDate),
		Category:   doc.Meta.String(FieldCategory),
	}
	g.MilestonesDone, g.MilestonesTotal = milestoneCounts(doc.Meta)
	if err := g.Validate(); err != nil {
		return Goal{}, fmt.Errorf("models: goal %s: %w", doc.Path, err)
	}
	return g, nil
}

func milestoneCounts(meta *codec.Metadata) (done, total int) {
	v, ok := meta.Get(FieldMilestones)
	if !ok {
		return 0, 0
	}
	list, ok := v.([]any)
	if !ok {
		return 0, 0
	}
	for _, e := range list {
		m, ok := e.(*codec.Metadata)
		if !ok {
			continue
		}
		total++
		if m.String(FieldStatus) == GoalStatusCompleted {
			done++
		}
	}
	return done, total
}

// Validate checks the goal schema.
func (g Goal) Validate() error {
	return validation.ValidateStruct(&g,
		validation.Field(&g.Name, validation.Required),
		validation.Field(&g.Status, validation.Required, validation.In(
			GoalStatusNotStarted, GoalStatusPlanning, GoalStatusActive,
			GoalStatusInProgress, GoalStatusCompleted,
		)),
		validation.Field(&g.Priority, validation.Required, validation.In(
			GoalPriorityHigh, GoalPriorityMedium, GoalPriorityLow,
		)),
		validation.Field(&g.Progress, validation.Min(0), validation.Max(100)),
		validation.Field(&g.TargetDate, validation.Date(dateLayout)),
	)
}

// Open reports whether the goal is still being worked toward.
func (g Goal) Open() bool {
	return g.Status != GoalStatusCompleted
}

// Ledger is the typed view of the single token-ledger document.
type Ledger struct {
	Path          string
	TotalTokens   int
	TokensToday   int
	AllTimeTokens int
	Updated       string // last-update date, drives the day-boundary rollover
}

// LedgerFrom interprets doc as the token ledger and validates its schema.
func LedgerFrom(doc *Document) (Ledger, error) {
	l := Ledger{
		Path:          doc.Path,
		TotalTokens:   doc.Meta.Int(FieldTotalTokens),
		TokensToday:   doc.Meta.Int(FieldTokensToday),
		AllTimeTokens: doc.Meta.Int(FieldAllTimeTokens),
		Updated:       doc.Meta.String(FieldUpdated),
	}
	if err := l.Validate(); err != nil {
		return Ledger{}, fmt.Errorf("models: ledger %s: %w", doc.Path, err)
	}
	return l, nil
}

// Validate checks the ledger schema, including the invariant that the
// all-time counter never falls below the spendable balance.
func (l Ledger) Validate() error {
	return validation.ValidateStruct(&l,
		validation.Field(&l.TotalTokens, validation.Min(0)),
		validation.Field(&l.TokensToday, validation.Min(0)),
		validation.Field(&l.AllTimeTokens, validation.Min(l.TotalTokens).Error("must be at least total_tokens")),
	)
}

// ApplyTo writes the ledger balances back into meta.
func (l Ledger) ApplyTo(meta *codec.Metadata) {
	meta.Set(FieldTotalTokens, l.TotalTokens)
	meta.Set(FieldTokensToday, l.TokensToday)
	meta.Set(FieldAllTimeTokens, l.AllTimeTokens)
}

// DayNote is the typed view of a daily-note document.
type DayNote struct {
	Path            string
	Date            string
	TokensEarned    int
	TokensTotal     int
	CompletedHabits []string
}

// DayNoteFrom interprets doc as a day note.
func DayNoteFrom(doc *Document) (DayNote, error) {
	n := DayNote{
		Path:            doc.Path,
		Date:            doc.Meta.String(FieldDate),
		TokensEarned:    doc.Meta.Int(FieldTokensEarned),
		TokensTotal:     doc.Meta.Int(FieldTokensTotal),
		CompletedHabits: doc.Meta.StringList(FieldCompletedHabits),
	}
	if err := n.Validate(); err != nil {
		return DayNote{}, fmt.Errorf("models: day note %s: %w", doc.Path, err)
	}
	return n, nil
}

// Validate checks the day-note schema.
func (n DayNote) Validate() error {
	return validation.ValidateStruct(&n,
		validation.Field(&n.Date, validation.Required, validation.Date(dateLayout)),
		validation.Field(&n.TokensEarned, validation.Min(0)),
	)
}

// ApplyTo writes the day note's aggregate fields back into meta.
func (n DayNote) ApplyTo(meta *codec.Metadata) {
	meta.Set(FieldTokensEarned, n.TokensEarned)
	meta.Set(FieldTokensTotal, n.TokensTotal)
	meta.Set(FieldCompletedHabits, n.CompletedHabits)
}

// MarkCompleted appends habit to the completed set if absent and reports
// whether it was added.
func (n *DayNote) MarkCompleted(habit string) bool {
	for _, h := range n.CompletedHabits {
		if h == habit {
			return false
		}
	}
	n.CompletedHabits = append(n.CompletedHabits, habit)
	return true
}

// Package coordinator enforces cross-document consistency for logical
// vault operations. A habit completion touches three documents — the
// habit file, the token ledger, and today's day note — with no database
// transaction underneath. Consistency comes from a fixed write order, an
// idempotency gate on the habit's completion date, and a pending-credit
// journal that lets a recovery sweep finish interrupted operations
// forward instead of rolling back files a human may already have seen.
package coordinator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/mazkir/mazkir/internal/apperr"
	"github.com/mazkir/mazkir/internal/codec"
	"github.com/mazkir/mazkir/internal/history"
	"github.com/mazkir/mazkir/internal/models"
	"github.com/mazkir/mazkir/internal/storage"
	"github.com/mazkir/mazkir/internal/streak"
	"github.com/mazkir/mazkir/internal/tokens"
	"github.com/mazkir/mazkir/internal/vault"
)

// Publisher receives completion events for live subscribers. Optional.
type Publisher interface {
	PublishCompletion(habit, date string, tokensCredited, newBalance int)
}

// Coordinator orchestrates multi-document vault operations.
type Coordinator struct {
	store         *vault.Store
	journal       *journal
	locks         *pathLocks
	milestoneStep int

	recorder  history.Recorder // optional
	publisher Publisher        // optional
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithHistory records successful completions in the history log.
func WithHistory(r history.Recorder) Option {
	return func(c *Coordinator) { c.recorder = r }
}

// WithPublisher broadcasts completion events.
func WithPublisher(p Publisher) Option {
	return func(c *Coordinator) { c.publisher = p }
}

// WithMilestoneStep overrides the display-milestone granularity.
func WithMilestoneStep(step int) Option {
	return func(c *Coordinator) { c.milestoneStep = step }
}

// New creates a Coordinator over the document store. fs is the raw
// storage layer used for the journal file.
func New(store *vault.Store, fs storage.Provider, opts ...Option) *Coordinator {
	c := &Coordinator{
		store:         store,
		journal:       &journal{fs: fs},
		locks:         newPathLocks(),
		milestoneStep: tokens.DefaultMilestoneStep,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Result is the payload surfaced to presentation collaborators after a
// completion.
type Result struct {
	Habit         string `json:"habit"`
	Date          string `json:"date"`
	AlreadyDone   bool   `json:"already_done"`
	OldStreak     int    `json:"old_streak"`
	NewStreak     int    `json:"new_streak"`
	BestStreak    int    `json:"best_streak"`
	TokensCredit  int    `json:"tokens_credited"`
	NewBalance    int    `json:"new_balance"`
	TokensToday   int    `json:"tokens_today"`
	NextMilestone int    `json:"next_milestone"`
}

// AmbiguousError reports a habit name that matched more than one
// candidate. The caller disambiguates; the coordinator never guesses.
type AmbiguousError struct {
	Name       string
	Candidates []string
}

func (e *AmbiguousError) Error() string {
	return fmt.Sprintf("coordinator: %q matches %s", e.Name, strings.Join(e.Candidates, ", "))
}

// Unwrap lets errors.Is match apperr.ErrAmbiguous.
func (e *AmbiguousError) Unwrap() error { return apperr.ErrAmbiguous }

// CompleteHabit runs the complete-habit operation for the habit matching
// name. The operation is idempotent per calendar day: a second call on
// the same date returns a Result with AlreadyDone set and touches
// nothing.
func (c *Coordinator) CompleteHabit(ctx context.Context, name string) (*Result, error) {
	today := c.store.Today()

	habitPath, err := c.resolveHabit(ctx, name)
	if err != nil {
		return nil, err
	}

	dayPath := vault.DailyPath(today)
	release := c.locks.acquire(habitPath, vault.LedgerPath, dayPath)
	defer release()

	// Re-read under the lock; the resolve pass ran unlocked.
	habitDoc, err := c.store.Read(ctx, habitPath)
	if err != nil {
		return nil, err
	}
	habit, err := models.HabitFrom(habitDoc)
	if err != nil {
		return nil, err
	}

	// Idempotency gate: the whole operation short-circuits before any
	// write when the habit already shows today's date.
	if habit.LastCompleted == today {
		ledger, lerr := c.readLedger(ctx)
		if lerr != nil {
			return nil, lerr
		}
		return &Result{
			Habit:         habit.Name,
			Date:          today,
			AlreadyDone:   true,
			OldStreak:     habit.Streak,
			NewStreak:     habit.Streak,
			BestStreak:    habit.BestStreak,
			NewBalance:    ledger.TotalTokens,
			TokensToday:   ledger.TokensToday,
			NextMilestone: tokens.NextMilestone(ledger.TotalTokens, c.milestoneStep),
		}, nil
	}

	advanced := streak.Advance(habit, today)
	amount := habit.TokensPerCompletion

	// The journal entry carries everything a recovery sweep needs to
	// finish the remaining writes. It is persisted before the habit
	// write; if the operation dies before the habit commits, the entry
	// is dropped as stale because the habit will not show today's date.
	entry := journalEntry{
		ID:        uuid.NewString(),
		HabitPath: habitPath,
		HabitName: habit.Name,
		Date:      today,
		Amount:    amount,
		DayPath:   dayPath,
		Stage:     stagePending,
		CreatedAt: c.store.Now(),
	}
	if err := c.journal.add(ctx, entry); err != nil {
		return nil, err
	}

	// Apply in fixed order: habit, ledger, day note.
	if _, err := c.store.Update(ctx, habitPath, func(doc *models.Document) error {
		advanced.ApplyTo(doc.Meta)
		return nil
	}); err != nil {
		return nil, err
	}

	newLedger, err := c.creditLedger(ctx, amount, today)
	if err != nil {
		return nil, err
	}
	if err := c.journal.setStage(ctx, entry.ID, stageLedgerDone); err != nil {
		return nil, err
	}

	if err := c.applyDayCredit(ctx, dayPath, today, habit.Name, amount, newLedger.TotalTokens); err != nil {
		return nil, err
	}
	if err := c.journal.remove(ctx, entry.ID); err != nil {
		return nil, err
	}

	c.record(history.Completion{
		ID:     entry.ID,
		Habit:  habit.Name,
		Date:   today,
		Tokens: amount,
		Streak: advanced.Streak,
	})
	if c.publisher != nil {
		c.publisher.PublishCompletion(habit.Name, today, amount, newLedger.TotalTokens)
	}

	return &Result{
		Habit:         habit.Name,
		Date:          today,
		OldStreak:     habit.Streak,
		NewStreak:     advanced.Streak,
		BestStreak:    advanced.BestStreak,
		TokensCredit:  amount,
		NewBalance:    newLedger.TotalTokens,
		TokensToday:   newLedger.TokensToday,
		NextMilestone: tokens.NextMilestone(newLedger.TotalTokens, c.milestoneStep),
	}, nil
}

// resolveHabit locates the habit document for name against the active
// habit list. An exact case-insensitive name match wins outright;
// otherwise substring matching applies, and more than one candidate is
// surfaced as AmbiguousError.
func (c *Coordinator) resolveHabit(ctx context.Context, name string) (string, error) {
	needle := strings.ToLower(strings.TrimSpace(name))
	if needle == "" {
		return "", fmt.Errorf("coordinator: empty habit name: %w", apperr.ErrNotFound)
	}

	docs, err := c.store.List(ctx, vault.HabitsDir, vault.ListOptions{
		Filter: func(d *models.Document) bool {
			return d.Meta.String(models.FieldStatus) == models.StatusActive
		},
	})
	if err != nil {
		return "", err
	}

	var fuzzy []models.Habit
	for _, doc := range docs {
		h, herr := models.HabitFrom(doc)
		if herr != nil {
			return "", herr
		}
		lower := strings.ToLower(h.Name)
		if lower == needle {
			return h.Path, nil
		}
		if strings.Contains(lower, needle) || strings.Contains(needle, lower) {
			fuzzy = append(fuzzy, h)
		}
	}

	switch len(fuzzy) {
	case 0:
		return "", fmt.Errorf("coordinator: habit %q: %w", name, apperr.ErrNotFound)
	case 1:
		return fuzzy[0].Path, nil
	default:
		names := make([]string, len(fuzzy))
		for i, h := range fuzzy {
			names[i] = h.Name
		}
		return "", &AmbiguousError{Name: name, Candidates: names}
	}
}

func (c *Coordinator) readLedger(ctx context.Context) (models.Ledger, error) {
	doc, err := c.store.Read(ctx, vault.LedgerPath)
	if err != nil {
		return models.Ledger{}, err
	}
	return models.LedgerFrom(doc)
}

// creditLedger applies the token arithmetic and persists the ledger.
func (c *Coordinator) creditLedger(ctx context.Context, amount int, today string) (models.Ledger, error) {
	ledger, err := c.readLedger(ctx)
	if err != nil {
		return models.Ledger{}, err
	}
	next, err := tokens.Credit(ledger, amount, today, ledger.Updated)
	if err != nil {
		return models.Ledger{}, err
	}
	if _, err := c.store.Update(ctx, vault.LedgerPath, func(doc *models.Document) error {
		next.ApplyTo(doc.Meta)
		return nil
	}); err != nil {
		return models.Ledger{}, err
	}
	return next, nil
}

// applyDayCredit records the completion on the day note, creating it
// lazily. A habit already listed there is not re-appended and earns no
// second credit, which guards recovery replays.
func (c *Coordinator) applyDayCredit(ctx context.Context, dayPath, date, habit string, amount, balance int) error {
	doc, err := c.store.Read(ctx, dayPath)
	if err == nil {
		note, nerr := models.DayNoteFrom(doc)
		if nerr != nil {
			return nerr
		}
		if note.MarkCompleted(habit) {
			note.TokensEarned += amount
		}
		note.TokensTotal = balance
		_, uerr := c.store.Update(ctx, dayPath, func(d *models.Document) error {
			note.ApplyTo(d.Meta)
			return nil
		})
		return uerr
	}
	if !isNotFound(err) {
		return err
	}

	meta := codec.NewMetadata()
	meta.Set(models.FieldDate, date)
	meta.Set(models.FieldTokensEarned, amount)
	meta.Set(models.FieldTokensTotal, balance)
	meta.Set(models.FieldCompletedHabits, []string{habit})
	meta.Set(models.FieldUpdated, c.store.Today())
	body := "# " + date + "\n"
	return c.store.Write(ctx, dayPath, meta, body)
}

func isNotFound(err error) bool {
	return errors.Is(err, apperr.ErrNotFound)
}

func (c *Coordinator) record(comp history.Completion) {
	if c.recorder == nil {
		return
	}
	// Best effort: the vault writes are the source of truth and have
	// already committed.
	if err := c.recorder.RecordCompletion(comp); err != nil {
		slog.Warn("history record failed",
			slog.String("habit", comp.Habit),
			slog.String("error", err.Error()))
	}
}

package coordinator

import (
	"context"
	"log/slog"

	"github.com/mazkir/mazkir/internal/history"
	"github.com/mazkir/mazkir/internal/models"
	"github.com/mazkir/mazkir/internal/vault"
)

// RecoveryReport summarizes one recovery sweep.
type RecoveryReport struct {
	Replayed int `json:"replayed"`
	Dropped  int `json:"dropped"`
}

// recoverOutcome classifies what a sweep did with one journal entry.
type recoverOutcome int

const (
	// recoverSkipped means another sweep finished the entry first.
	recoverSkipped recoverOutcome = iota
	recoverReplayed
	recoverDropped
)

// Recover finishes interrupted completions by replaying the writes each
// journal entry still owes: a pending entry owes the ledger credit and
// the day-note update, a ledger-done entry owes only the day-note
// update. An entry whose habit does not show the journaled completion
// date is stale (the habit write never committed) and is dropped.
//
// Runs at startup and on demand; the sweep takes the same per-path locks
// as live operations.
func (c *Coordinator) Recover(ctx context.Context) (*RecoveryReport, error) {
	release := c.locks.acquire(vault.LedgerPath)
	entries, err := c.journal.load(ctx)
	release()
	if err != nil {
		return nil, err
	}

	report := &RecoveryReport{}
	for _, e := range entries {
		outcome, rerr := c.recoverEntry(ctx, e)
		if rerr != nil {
			return report, rerr
		}
		switch outcome {
		case recoverReplayed:
			report.Replayed++
		case recoverDropped:
			report.Dropped++
		}
	}
	return report, nil
}

func (c *Coordinator) recoverEntry(ctx context.Context, e journalEntry) (recoverOutcome, error) {
	release := c.locks.acquire(e.HabitPath, vault.LedgerPath, e.DayPath)
	defer release()

	// A concurrent sweep may have finished this entry while we waited for
	// the locks. Re-read the journal under them and work from the fresh
	// entry, so a pending-stage credit is never applied twice.
	entries, err := c.journal.load(ctx)
	if err != nil {
		return recoverSkipped, err
	}
	found := false
	for _, cur := range entries {
		if cur.ID == e.ID {
			e = cur
			found = true
			break
		}
	}
	if !found {
		return recoverSkipped, nil
	}

	habitDoc, err := c.store.Read(ctx, e.HabitPath)
	if err != nil {
		if isNotFound(err) {
			// Habit gone; nothing to finish.
			return recoverDropped, c.journal.remove(ctx, e.ID)
		}
		return recoverSkipped, err
	}
	habit, err := models.HabitFrom(habitDoc)
	if err != nil {
		return recoverSkipped, err
	}
	if habit.LastCompleted != e.Date {
		// The habit write never committed, so nothing was credited and a
		// plain retry of the completion is safe. A habit showing a LATER
		// date means a next-day completion overwrote it before the sweep
		// ran; the journaled day's credit cannot be distinguished from a
		// half-committed one, so it is dropped the same way, loudly.
		if habit.LastCompleted > e.Date {
			slog.Warn("dropping journal entry overtaken by a later completion",
				slog.String("habit", e.HabitName),
				slog.String("journaled_date", e.Date),
				slog.String("last_completed", habit.LastCompleted))
		}
		return recoverDropped, c.journal.remove(ctx, e.ID)
	}

	if e.Stage == stagePending {
		if _, err := c.creditLedger(ctx, e.Amount, e.Date); err != nil {
			return recoverSkipped, err
		}
		if err := c.journal.setStage(ctx, e.ID, stageLedgerDone); err != nil {
			return recoverSkipped, err
		}
	}

	ledger, err := c.readLedger(ctx)
	if err != nil {
		return recoverSkipped, err
	}
	if err := c.applyDayCredit(ctx, e.DayPath, e.Date, e.HabitName, e.Amount, ledger.TotalTokens); err != nil {
		return recoverSkipped, err
	}
	if err := c.journal.remove(ctx, e.ID); err != nil {
		return recoverSkipped, err
	}

	c.record(history.Completion{
		ID:        e.ID,
		Habit:     e.HabitName,
		Date:      e.Date,
		Tokens:    e.Amount,
		Streak:    habit.Streak,
		Recovered: true,
	})
	slog.Info("recovered interrupted completion",
		slog.String("habit", e.HabitName),
		slog.String("date", e.Date),
		slog.Int("tokens", e.Amount))
	return recoverReplayed, nil
}

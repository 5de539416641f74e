package coordinator

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/mazkir/mazkir/internal/models"
	"github.com/mazkir/mazkir/internal/testutil"
	"github.com/mazkir/mazkir/internal/vault"
)

// completedGymDoc is the habit state after its write committed but
// before the crash that the recovery tests simulate.
const completedGymDoc = `---
name: Morning Gym
status: active
streak: 13
best_streak: 21
last_completed: 2026-08-29
tokens_per_completion: 10
---
`

func pendingEntry(stage string) journalEntry {
	return journalEntry{
		ID:        "test-entry",
		HabitPath: "20-habits/gym.md",
		HabitName: "Morning Gym",
		Date:      "2026-08-29",
		Amount:    10,
		DayPath:   vault.DailyPath("2026-08-29"),
		Stage:     stage,
		CreatedAt: time.Date(2026, 8, 29, 9, 0, 0, 0, time.UTC),
	}
}

func TestRecoverReplaysPendingEntry(t *testing.T) {
	c, store, fs := testCoord(t, "2026-08-29")
	ctx := context.Background()

	// Crash after the habit write: habit shows today, ledger untouched,
	// no day note, journal entry still pending.
	testutil.WriteDoc(t, fs, "20-habits/gym.md", completedGymDoc)
	testutil.WriteDoc(t, fs, vault.LedgerPath, ledgerDoc)
	if err := c.journal.add(ctx, pendingEntry(stagePending)); err != nil {
		t.Fatalf("journal add: %v", err)
	}

	report, err := c.Recover(ctx)
	if err != nil {
		t.Fatalf("Recover: %v", err)
	}
	if report.Replayed != 1 || report.Dropped != 0 {
		t.Errorf("report = %+v", report)
	}

	ledgerDoc, _ := store.Read(ctx, vault.LedgerPath)
	ledger, err := models.LedgerFrom(ledgerDoc)
	if err != nil {
		t.Fatalf("LedgerFrom: %v", err)
	}
	if ledger.TotalTokens != 245 || ledger.AllTimeTokens != 1245 {
		t.Errorf("ledger = %+v, want credit replayed once", ledger)
	}

	dayDoc, err := store.Read(ctx, vault.DailyPath("2026-08-29"))
	if err != nil {
		t.Fatalf("day note: %v", err)
	}
	note, _ := models.DayNoteFrom(dayDoc)
	if len(note.CompletedHabits) != 1 || note.CompletedHabits[0] != "Morning Gym" {
		t.Errorf("completed = %v", note.CompletedHabits)
	}

	entries, _ := c.journal.load(ctx)
	if len(entries) != 0 {
		t.Errorf("journal not drained: %v", entries)
	}
}

func TestRecoverLedgerDoneSkipsCredit(t *testing.T) {
	c, store, fs := testCoord(t, "2026-08-29")
	ctx := context.Background()

	// Crash after the ledger write: credit already applied, day note
	// still missing.
	testutil.WriteDoc(t, fs, "20-habits/gym.md", completedGymDoc)
	testutil.WriteDoc(t, fs, vault.LedgerPath,
		"---\ntotal_tokens: 245\ntokens_today: 20\nall_time_tokens: 1245\nupdated: 2026-08-29\n---\n")
	if err := c.journal.add(ctx, pendingEntry(stageLedgerDone)); err != nil {
		t.Fatalf("journal add: %v", err)
	}

	report, err := c.Recover(ctx)
	if err != nil {
		t.Fatalf("Recover: %v", err)
	}
	if report.Replayed != 1 {
		t.Errorf("report = %+v", report)
	}

	ledgerDoc, _ := store.Read(ctx, vault.LedgerPath)
	ledger, _ := models.LedgerFrom(ledgerDoc)
	if ledger.TotalTokens != 245 || ledger.AllTimeTokens != 1245 {
		t.Errorf("ledger = %+v, credit must not be applied twice", ledger)
	}

	dayDoc, err := store.Read(ctx, vault.DailyPath("2026-08-29"))
	if err != nil {
		t.Fatalf("day note: %v", err)
	}
	note, _ := models.DayNoteFrom(dayDoc)
	if note.TokensTotal != 245 {
		t.Errorf("note = %+v", note)
	}
}

func TestRecoverDropsStaleEntry(t *testing.T) {
	c, store, fs := testCoord(t, "2026-08-29")
	ctx := context.Background()

	// Crash before the habit write: habit still shows yesterday, so the
	// journaled completion never happened.
	testutil.WriteDoc(t, fs, "20-habits/gym.md", gymDoc)
	testutil.WriteDoc(t, fs, vault.LedgerPath, ledgerDoc)
	if err := c.journal.add(ctx, pendingEntry(stagePending)); err != nil {
		t.Fatalf("journal add: %v", err)
	}

	report, err := c.Recover(ctx)
	if err != nil {
		t.Fatalf("Recover: %v", err)
	}
	if report.Dropped != 1 || report.Replayed != 0 {
		t.Errorf("report = %+v", report)
	}

	ledgerDoc, _ := store.Read(ctx, vault.LedgerPath)
	ledger, _ := models.LedgerFrom(ledgerDoc)
	if ledger.TotalTokens != 235 {
		t.Errorf("ledger = %+v, stale entry must not credit", ledger)
	}
	entries, _ := c.journal.load(ctx)
	if len(entries) != 0 {
		t.Errorf("stale entry not removed: %v", entries)
	}
}

func TestRecoverMissingHabitDropsEntry(t *testing.T) {
	c, _, fs := testCoord(t, "2026-08-29")
	ctx := context.Background()

	testutil.WriteDoc(t, fs, vault.LedgerPath, ledgerDoc)
	if err := c.journal.add(ctx, pendingEntry(stagePending)); err != nil {
		t.Fatalf("journal add: %v", err)
	}

	report, err := c.Recover(ctx)
	if err != nil {
		t.Fatalf("Recover: %v", err)
	}
	if report.Dropped != 1 {
		t.Errorf("report = %+v", report)
	}
}

func TestRecoverEmptyJournal(t *testing.T) {
	c, _, fs := testCoord(t, "2026-08-29")
	testutil.WriteDoc(t, fs, vault.LedgerPath, ledgerDoc)

	report, err := c.Recover(context.Background())
	if err != nil {
		t.Fatalf("Recover: %v", err)
	}
	if report.Replayed != 0 || report.Dropped != 0 {
		t.Errorf("report = %+v", report)
	}
}

func TestRecoverConcurrentSweepsCreditOnce(t *testing.T) {
	c, store, fs := testCoord(t, "2026-08-29")
	ctx := context.Background()

	// Five interrupted completions, each owing a 10-token credit.
	testutil.WriteDoc(t, fs, vault.LedgerPath,
		"---\ntotal_tokens: 100\ntokens_today: 0\nall_time_tokens: 100\nupdated: 2026-08-28\n---\n")
	for i := 0; i < 5; i++ {
		name := fmt.Sprintf("Habit %d", i)
		path := fmt.Sprintf("20-habits/habit-%d.md", i)
		testutil.WriteDoc(t, fs, path, fmt.Sprintf(
			"---\nname: %s\nstatus: active\nstreak: 1\nbest_streak: 1\nlast_completed: 2026-08-29\ntokens_per_completion: 10\n---\n", name))
		e := pendingEntry(stagePending)
		e.ID = fmt.Sprintf("entry-%d", i)
		e.HabitPath = path
		e.HabitName = name
		if err := c.journal.add(ctx, e); err != nil {
			t.Fatalf("journal add: %v", err)
		}
	}

	// Startup sweep and an on-demand sweep racing: both snapshot the same
	// pending entries, but each credit must land exactly once.
	var wg sync.WaitGroup
	errs := make(chan error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.Recover(ctx)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("Recover: %v", err)
		}
	}

	ledgerDoc, _ := store.Read(ctx, vault.LedgerPath)
	ledger, err := models.LedgerFrom(ledgerDoc)
	if err != nil {
		t.Fatalf("LedgerFrom: %v", err)
	}
	if ledger.TotalTokens != 150 {
		t.Errorf("TotalTokens = %d, want 150 (each credit applied exactly once)", ledger.TotalTokens)
	}
	if ledger.AllTimeTokens != 150 {
		t.Errorf("AllTimeTokens = %d, want 150", ledger.AllTimeTokens)
	}

	entries, _ := c.journal.load(ctx)
	if len(entries) != 0 {
		t.Errorf("journal not drained: %v", entries)
	}
}

func TestRecoverDropsEntryOvertakenByLaterCompletion(t *testing.T) {
	c, store, fs := testCoord(t, "2026-08-30")
	ctx := context.Background()

	// The journaled completion is for the 29th, but a next-day completion
	// already moved the habit to the 30th before the sweep ran. The
	// journaled credit cannot be told apart from a half-committed one, so
	// the entry is dropped without crediting.
	testutil.WriteDoc(t, fs, "20-habits/gym.md",
		"---\nname: Morning Gym\nstatus: active\nstreak: 14\nbest_streak: 21\nlast_completed: 2026-08-30\ntokens_per_completion: 10\n---\n")
	testutil.WriteDoc(t, fs, vault.LedgerPath, ledgerDoc)
	if err := c.journal.add(ctx, pendingEntry(stagePending)); err != nil {
		t.Fatalf("journal add: %v", err)
	}

	report, err := c.Recover(ctx)
	if err != nil {
		t.Fatalf("Recover: %v", err)
	}
	if report.Dropped != 1 || report.Replayed != 0 {
		t.Errorf("report = %+v", report)
	}

	ledgerDoc, _ := store.Read(ctx, vault.LedgerPath)
	ledger, _ := models.LedgerFrom(ledgerDoc)
	if ledger.TotalTokens != 235 {
		t.Errorf("ledger = %+v, overtaken entry must not credit", ledger)
	}
}

func TestRecoverIsIdempotent(t *testing.T) {
	c, store, fs := testCoord(t, "2026-08-29")
	ctx := context.Background()

	testutil.WriteDoc(t, fs, "20-habits/gym.md", completedGymDoc)
	testutil.WriteDoc(t, fs, vault.LedgerPath, ledgerDoc)
	if err := c.journal.add(ctx, pendingEntry(stagePending)); err != nil {
		t.Fatalf("journal add: %v", err)
	}

	if _, err := c.Recover(ctx); err != nil {
		t.Fatalf("first Recover: %v", err)
	}
	if _, err := c.Recover(ctx); err != nil {
		t.Fatalf("second Recover: %v", err)
	}

	ledgerDoc, _ := store.Read(ctx, vault.LedgerPath)
	ledger, _ := models.LedgerFrom(ledgerDoc)
	if ledger.TotalTokens != 245 {
		t.Errorf("TotalTokens = %d, second sweep must be a no-op", ledger.TotalTokens)
	}
}

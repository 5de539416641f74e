package history_test

import (
	"testing"
	"time"

	"github.com/mazkir/mazkir/internal/history"
	"github.com/mazkir/mazkir/internal/testutil"
)

func completion(id string, ts time.Time) history.Completion {
	return history.Completion{
		ID:        id,
		Habit:     "Gym",
		Date:      "2026-08-29",
		Tokens:    10,
		Streak:    13,
		CreatedAt: ts,
	}
}

func TestRecordAndRecent(t *testing.T) {
	db := testutil.TestHistory(t)
	base := time.Date(2026, 8, 29, 9, 0, 0, 0, time.UTC)

	for i, id := range []string{"a", "b", "c"} {
		if err := db.RecordCompletion(completion(id, base.Add(time.Duration(i)*time.Minute))); err != nil {
			t.Fatalf("RecordCompletion: %v", err)
		}
	}

	got, err := db.RecentCompletions(10)
	if err != nil {
		t.Fatalf("RecentCompletions: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d rows", len(got))
	}
	if got[0].ID != "c" {
		t.Errorf("newest first: got[0].ID = %q", got[0].ID)
	}
	if got[0].Tokens != 10 || got[0].Streak != 13 {
		t.Errorf("row = %+v", got[0])
	}
}

func TestRecordSameIDIsNoOp(t *testing.T) {
	db := testutil.TestHistory(t)
	ts := time.Date(2026, 8, 29, 9, 0, 0, 0, time.UTC)

	c := completion("dup", ts)
	if err := db.RecordCompletion(c); err != nil {
		t.Fatalf("RecordCompletion: %v", err)
	}
	c.Tokens = 999
	if err := db.RecordCompletion(c); err != nil {
		t.Fatalf("replay RecordCompletion: %v", err)
	}

	got, err := db.RecentCompletions(10)
	if err != nil {
		t.Fatalf("RecentCompletions: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d rows, replay must not duplicate", len(got))
	}
	if got[0].Tokens != 10 {
		t.Errorf("Tokens = %d, replay must not overwrite", got[0].Tokens)
	}
}

func TestHabitTotals(t *testing.T) {
	db := testutil.TestHistory(t)
	base := time.Date(2026, 8, 29, 9, 0, 0, 0, time.UTC)

	for i, id := range []string{"x", "y"} {
		if err := db.RecordCompletion(completion(id, base.Add(time.Duration(i)*time.Hour))); err != nil {
			t.Fatalf("RecordCompletion: %v", err)
		}
	}
	other := completion("z", base)
	other.Habit = "Reading"
	other.Tokens = 5
	if err := db.RecordCompletion(other); err != nil {
		t.Fatalf("RecordCompletion: %v", err)
	}

	totals, err := db.HabitTotals("Gym")
	if err != nil {
		t.Fatalf("HabitTotals: %v", err)
	}
	if totals.Completions != 2 || totals.Tokens != 20 {
		t.Errorf("totals = %+v", totals)
	}

	empty, err := db.HabitTotals("Nothing")
	if err != nil {
		t.Fatalf("HabitTotals: %v", err)
	}
	if empty.Completions != 0 || empty.Tokens != 0 {
		t.Errorf("empty totals = %+v", empty)
	}
}

func TestRecoveredFlagRoundTrip(t *testing.T) {
	db := testutil.TestHistory(t)
	c := completion("r", time.Date(2026, 8, 29, 9, 0, 0, 0, time.UTC))
	c.Recovered = true
	if err := db.RecordCompletion(c); err != nil {
		t.Fatalf("RecordCompletion: %v", err)
	}
	got, err := db.RecentCompletions(1)
	if err != nil {
		t.Fatalf("RecentCompletions: %v", err)
	}
	if len(got) != 1 || !got[0].Recovered {
		t.Errorf("got = %+v", got)
	}
}

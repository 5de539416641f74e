package coordinator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mazkir/mazkir/internal/apperr"
	"github.com/mazkir/mazkir/internal/storage"
	"github.com/mazkir/mazkir/internal/vault"
)

// Journal entry stages. A pending entry still owes the ledger and
// day-note writes; a ledger-done entry owes only the day-note write.
const (
	stagePending    = "pending"
	stageLedgerDone = "ledger_done"
)

// journalEntry records one in-flight credit so a recovery sweep can
// finish an interrupted completion by replaying only the remaining
// writes.
type journalEntry struct {
	ID        string    `json:"id"`
	HabitPath string    `json:"habit_path"`
	HabitName string    `json:"habit_name"`
	Date      string    `json:"date"`
	Amount    int       `json:"amount"`
	DayPath   string    `json:"day_path"`
	Stage     string    `json:"stage"`
	CreatedAt time.Time `json:"created_at"`
}

// journal persists pending credits as a single JSON file under the
// system directory, rewritten atomically through the storage layer.
// Callers hold the ledger path lock, which serializes journal access.
type journal struct {
	fs storage.Provider
}

func (j *journal) load(ctx context.Context) ([]journalEntry, error) {
	raw, err := j.fs.Read(ctx, vault.JournalPath)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	var entries []journalEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("coordinator: decode journal: %w", err)
	}
	return entries, nil
}

func (j *journal) save(ctx context.Context, entries []journalEntry) error {
	raw, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("coordinator: encode journal: %w", err)
	}
	return j.fs.Write(ctx, vault.JournalPath, raw)
}

func (j *journal) add(ctx context.Context, e journalEntry) error {
	entries, err := j.load(ctx)
	if err != nil {
		return err
	}
	return j.save(ctx, append(entries, e))
}

func (j *journal) setStage(ctx context.Context, id, stage string) error {
	entries, err := j.load(ctx)
	if err != nil {
		return err
	}
	for i := range entries {
		if entries[i].ID == id {
			entries[i].Stage = stage
		}
	}
	return j.save(ctx, entries)
}

func (j *journal) remove(ctx context.Context, id string) error {
	entries, err := j.load(ctx)
	if err != nil {
		return err
	}
	kept := entries[:0]
	for _, e := range entries {
		if e.ID != id {
			kept = append(kept, e)
		}
	}
	return j.save(ctx, kept)
}

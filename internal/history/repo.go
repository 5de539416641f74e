package history

import (
	"fmt"
	"time"
)

// Completion is one recorded habit completion.
type Completion struct {
	ID        string    `json:"id"`
	Habit     string    `json:"habit"`
	Date      string    `json:"date"`
	Tokens    int       `json:"tokens"`
	Streak    int       `json:"streak"`
	Recovered bool      `json:"recovered,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Totals aggregates a habit's recorded history.
type Totals struct {
	Habit       string `json:"habit"`
	Completions int    `json:"completions"`
	Tokens      int    `json:"tokens"`
}

// RecordCompletion inserts one completion event. Replaying the same id
// is a no-op, so recovery sweeps cannot duplicate rows.
func (db *DB) RecordCompletion(c Completion) error {
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	_, err := db.conn.Exec(`
		INSERT OR IGNORE INTO completions (id, habit, date, tokens, streak, recovered, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, c.ID, c.Habit, c.Date, c.Tokens, c.Streak, boolInt(c.Recovered), c.CreatedAt)
	if err != nil {
		return fmt.Errorf("history: record completion: %w", err)
	}
	return nil
}

// RecentCompletions returns the newest events first.
func (db *DB) RecentCompletions(limit int) ([]Completion, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	rows, err := db.conn.Query(`
		SELECT id, habit, date, tokens, streak, recovered, created_at
		FROM completions
		ORDER BY created_at DESC, id
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("history: recent completions: %w", err)
	}
	defer rows.Close()

	var out []Completion
	for rows.Next() {
		var c Completion
		var recovered int
		if err := rows.Scan(&c.ID, &c.Habit, &c.Date, &c.Tokens, &c.Streak, &recovered, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("history: scan completion: %w", err)
		}
		c.Recovered = recovered != 0
		out = append(out, c)
	}
	return out, rows.Err()
}

// HabitTotals aggregates the recorded completions for one habit.
func (db *DB) HabitTotals(habit string) (Totals, error) {
	var t Totals
	t.Habit = habit
	err := db.conn.QueryRow(`
		SELECT COUNT(*), COALESCE(SUM(tokens), 0)
		FROM completions WHERE habit = ?
	`, habit).Scan(&t.Completions, &t.Tokens)
	if err != nil {
		return Totals{}, fmt.Errorf("history: habit totals: %w", err)
	}
	return t, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

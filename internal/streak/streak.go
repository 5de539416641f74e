// Package streak computes habit streak transitions. The functions here
// are pure and time-zone-agnostic: "today" is computed once per logical
// operation by the caller and passed in explicitly.
package streak

import (
	"github.com/mazkir/mazkir/internal/clock"
	"github.com/mazkir/mazkir/internal/models"
)

// Advance returns the habit's state after a completion on the given
// calendar date.
//
//   - Already completed today: the habit is returned unchanged. This is
//     the idempotency gate that makes retried completion events safe.
//   - Last completed yesterday: the streak continues.
//   - Never completed, or a gap of more than one day: the streak resets
//     to 1.
//
// The best streak only ever grows.
func Advance(h models.Habit, today string) models.Habit {
	if h.LastCompleted == today {
		return h
	}

	if h.LastCompleted != "" && h.LastCompleted == clock.PrevDay(today) {
		h.Streak++
	} else {
		h.Streak = 1
	}
	if h.Streak > h.BestStreak {
		h.BestStreak = h.Streak
	}
	h.LastCompleted = today
	return h
}

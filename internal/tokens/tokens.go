// Package tokens implements the reward-token ledger arithmetic. All
// functions are pure; the caller supplies the dates.
package tokens

import (
	"fmt"

	"github.com/mazkir/mazkir/internal/apperr"
	"github.com/mazkir/mazkir/internal/models"
)

// DefaultMilestoneStep is the milestone granularity when none is
// configured.
const DefaultMilestoneStep = 50

// Credit returns the ledger after crediting amount on the given date.
// lastUpdate is the date of the ledger's previous mutation; when it
// differs from today, tokens_today rolls over to zero before the credit
// is added. The running total and all-time counter carry forward
// unchanged by the rollover itself.
//
// amount must be positive; otherwise apperr.ErrInvalidAmount is returned
// and the ledger is not mutated.
func Credit(l models.Ledger, amount int, today, lastUpdate string) (models.Ledger, error) {
	if amount <= 0 {
		return models.Ledger{}, fmt.Errorf("tokens: credit %d: %w", amount, apperr.ErrInvalidAmount)
	}
	if lastUpdate != today {
		l.TokensToday = 0
	}
	l.TotalTokens += amount
	l.AllTimeTokens += amount
	l.TokensToday += amount
	l.Updated = today
	return l, nil
}

// NextMilestone returns the smallest multiple of step strictly greater
// than total. Used for display only, never persisted.
func NextMilestone(total, step int) int {
	if step <= 0 {
		step = DefaultMilestoneStep
	}
	return (total/step + 1) * step
}

// Package match implements statement linking: attaching unmatched account
// transactions to known recurring bills using description, amount, and date
// proximity signals.
package match

import (
	"strings"
	"time"

	"github.com/tallyho/tally-ho/internal/model"
)

// Config holds the tunable linking heuristics. The weights and thresholds
// carry over from long-running use but have no empirical derivation; treat
// them as defaults to tune, not requirements.
type Config struct {
	// AmountToleranceCents is the difference at which the amount signal reaches zero.
	AmountToleranceCents int64
	// DateWindowDays is the day difference at which the date signal reaches zero.
	DateWindowDays int
	// MinScore is the acceptance threshold. A description-only match (0.5)
	// clears it alone; amount or date alone never do.
	MinScore float64
}

// Default heuristic constants.
const (
	DefaultAmountToleranceCents = 500
	DefaultDateWindowDays       = 7
	DefaultMinScore             = 0.4

	descriptionWeight = 0.5
	amountWeight      = 0.3
	dateWeight        = 0.2
)

// DefaultConfig returns the default linking heuristics.
func DefaultConfig() Config {
	return Config{
		AmountToleranceCents: DefaultAmountToleranceCents,
		DateWindowDays:       DefaultDateWindowDays,
		MinScore:             DefaultMinScore,
	}
}

// Score rates how well a transaction matches a bill, in [0, 1]. Three signals
// contribute: any bill pattern appearing in the description (0.5), amount
// within tolerance of the bill amount (up to 0.3, linear falloff), and
// closeness to the bill's due day in the transaction's month (up to 0.2,
// linear falloff).
func Score(txn model.Transaction, bill model.Bill, cfg Config) float64 {
	score := 0.0

	desc := strings.ToUpper(txn.Description)
	for _, pattern := range bill.MatchPatterns {
		if pattern != "" && strings.Contains(desc, strings.ToUpper(pattern)) {
			score += descriptionWeight
			break
		}
	}

	if bill.AmountCents != 0 && txn.AmountCents != 0 {
		score += amountScore(txn.AmountCents, bill.AmountCents, cfg.AmountToleranceCents)
	}

	if bill.DueDay > 0 && !txn.Date.IsZero() {
		score += dateProximityScore(txn.Date, bill.DueDay, cfg.DateWindowDays)
	}

	return score
}

func amountScore(txnCents, billCents, toleranceCents int64) float64 {
	diff := abs(abs(txnCents) - billCents)
	switch {
	case diff == 0:
		return amountWeight
	case diff <= toleranceCents:
		return amountWeight * (1 - float64(diff)/float64(toleranceCents))
	}
	return 0
}

// dateProximityScore compares the transaction date to the bill's expected due
// date in the same month, clamping the due day to the month's last valid day.
func dateProximityScore(txnDate time.Time, dueDay, windowDays int) float64 {
	lastDay := daysInMonth(txnDate.Year(), txnDate.Month())
	day := dueDay
	if day > lastDay {
		day = lastDay
	}

	diffDays := txnDate.Day() - day
	if diffDays < 0 {
		diffDays = -diffDays
	}

	switch {
	case diffDays == 0:
		return dateWeight
	case diffDays <= windowDays:
		return dateWeight * (1 - float64(diffDays)/float64(windowDays))
	}
	return 0
}

// BestMatch returns the highest-scoring bill that clears the acceptance
// threshold. Ties break to the earlier bill in slice order; that ordering is
// arbitrary but load-bearing, so callers pass bills in creation order.
func BestMatch(txn model.Transaction, bills []model.Bill, cfg Config) (model.MatchCandidate, bool) {
	var best model.MatchCandidate

	for _, bill := range bills {
		score := Score(txn, bill, cfg)
		if score > best.Score && score >= cfg.MinScore {
			best = model.MatchCandidate{
				TransactionID: txn.ID,
				BillID:        bill.ID,
				Score:         score,
			}
		}
	}

	return best, best.BillID != ""
}

// Stop words excluded when extracting a learned pattern from a confirmed
// transaction's description.
var patternStopWords = map[string]struct{}{
	"PAYMENT": {},
	"TO":      {},
	"FROM":    {},
	"FOR":     {},
	"THE":     {},
	"ACH":     {},
	"DEBIT":   {},
	"CREDIT":  {},
	"ONLINE":  {},
}

// LearnedPattern extracts a match pattern from a confirmed transaction's
// description: uppercase, drop stop words, keep the first three remaining
// tokens. Returns "" when nothing meaningful survives.
func LearnedPattern(description string) string {
	var meaningful []string
	for _, word := range strings.Fields(strings.ToUpper(description)) {
		if _, skip := patternStopWords[word]; skip {
			continue
		}
		meaningful = append(meaningful, word)
		if len(meaningful) == 3 {
			break
		}
	}
	return strings.Join(meaningful, " ")
}

// daysInMonth returns the number of days in the given month.
func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func abs(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}

package recurring

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tallyho/tally-ho/internal/common"
	"github.com/tallyho/tally-ho/internal/model"
	"github.com/tallyho/tally-ho/internal/service"
	"github.com/tallyho/tally-ho/internal/vendors"
)

// Detector scans transaction history for recurring charges and manages the
// confirmation step that turns candidates into subscriptions.
type Detector struct {
	store service.Storage
	cfg   Config
	now   func() time.Time
}

// NewDetector creates a recurring charge detector backed by the given storage.
func NewDetector(store service.Storage, cfg Config) *Detector {
	return &Detector{store: store, cfg: cfg, now: time.Now}
}

// occurrence is one debit observed for a vendor.
type occurrence struct {
	date        time.Time
	amountCents int64
}

// Detect scans debit transactions in the rolling window, grouped by normalized
// vendor key, and returns detection candidates sorted by confidence
// descending. Vendors already covered by an active bill's patterns or an
// existing subscription are excluded, so repeated runs never re-surface known
// recurring items. Candidates are never persisted here; ConfirmCandidates does
// that. A windowMonths of zero or less uses the configured default.
func (d *Detector) Detect(ctx context.Context, windowMonths int) ([]model.DetectionCandidate, error) {
	if windowMonths <= 0 {
		windowMonths = d.cfg.WindowMonths
	}
	cutoff := d.now().AddDate(0, 0, -windowMonths*30)

	tx, err := d.store.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin detection pass: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	debits, err := tx.GetDebitsSince(ctx, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to load debits: %w", err)
	}

	excluded, err := knownVendorKeys(ctx, tx)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit detection read: %w", err)
	}

	groups := make(map[string][]occurrence)
	for _, txn := range debits {
		key := vendors.Normalize(txn.Description)
		if key == "" {
			continue
		}
		amount := txn.AmountCents
		if amount < 0 {
			amount = -amount
		}
		groups[key] = append(groups[key], occurrence{date: txn.Date, amountCents: amount})
	}

	var candidates []model.DetectionCandidate
	for key, occurrences := range groups {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if _, known := excluded[key]; known {
			continue
		}

		if candidate, ok := classifyGroup(key, occurrences, d.cfg); ok {
			candidates = append(candidates, candidate)
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Confidence > candidates[j].Confidence
	})

	slog.Info("Recurring charge detection complete",
		"debits_scanned", len(debits),
		"vendors", len(groups),
		"candidates", len(candidates))

	return candidates, nil
}

// classifyGroup turns one vendor's occurrences into a candidate, or reports
// the group is not recurring: too few occurrences, spacing that fits no
// frequency bucket, or confidence below the floor.
func classifyGroup(key string, occurrences []occurrence, cfg Config) (model.DetectionCandidate, bool) {
	if len(occurrences) < cfg.MinOccurrences {
		return model.DetectionCandidate{}, false
	}

	sort.Slice(occurrences, func(i, j int) bool {
		return occurrences[i].date.Before(occurrences[j].date)
	})

	dates := make([]time.Time, len(occurrences))
	amounts := make([]int64, len(occurrences))
	for i, occ := range occurrences {
		dates[i] = occ.date
		amounts[i] = occ.amountCents
	}

	intervals := make([]int, 0, len(dates)-1)
	for i := 1; i < len(dates); i++ {
		intervals = append(intervals, int(dates[i].Sub(dates[i-1]).Hours()/24))
	}

	frequency, ok := ClassifyFrequency(intervals)
	if !ok {
		return model.DetectionCandidate{}, false
	}

	confidence := Confidence(len(occurrences), intervals, amounts, frequency)
	if confidence < cfg.MinConfidence {
		return model.DetectionCandidate{}, false
	}

	var sum int64
	for _, a := range amounts {
		sum += a
	}

	last := dates[len(dates)-1]
	return model.DetectionCandidate{
		VendorKey:      key,
		Frequency:      frequency,
		Confidence:     confidence,
		AmountsCents:   amounts,
		Dates:          dates,
		AvgAmountCents: sum / int64(len(amounts)),
		LastCharge:     last,
		NextCharge:     last.AddDate(0, 0, CanonicalIntervalDays(frequency)),
	}, true
}

// knownVendorKeys collects every vendor key already covered by an active
// bill's match patterns or an existing subscription.
func knownVendorKeys(ctx context.Context, store service.Storage) (map[string]struct{}, error) {
	known := make(map[string]struct{})

	bills, err := store.GetActiveBills(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load bill patterns: %w", err)
	}
	for _, bill := range bills {
		for _, pattern := range bill.MatchPatterns {
			known[strings.ToUpper(pattern)] = struct{}{}
		}
	}

	subs, err := store.ListSubscriptions(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("failed to load subscriptions: %w", err)
	}
	for _, sub := range subs {
		known[sub.VendorKey] = struct{}{}
	}

	return known, nil
}

// ConfirmCandidates persists the given candidates as detected subscriptions
// and returns how many were actually created. Candidates whose vendor key
// already has a subscription are skipped, so confirming the same detection
// output twice creates exactly one subscription per vendor.
func (d *Detector) ConfirmCandidates(ctx context.Context, candidates []model.DetectionCandidate) (int, error) {
	if len(candidates) == 0 {
		return 0, nil
	}

	tx, err := d.store.BeginTx(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin confirmation: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	created := 0
	for _, candidate := range candidates {
		if err := ctx.Err(); err != nil {
			return 0, err
		}

		_, err := tx.GetSubscriptionByVendorKey(ctx, candidate.VendorKey)
		if err == nil {
			continue // already known
		}
		if !errors.Is(err, common.ErrNotFound) {
			return 0, err
		}

		sub := &model.Subscription{
			ID:             uuid.NewString(),
			Name:           titleCase(candidate.VendorKey),
			VendorKey:      candidate.VendorKey,
			AmountCents:    candidate.AvgAmountCents,
			Frequency:      candidate.Frequency,
			Confidence:     candidate.Confidence,
			NextChargeDate: candidate.NextCharge,
			LastChargeDate: candidate.LastCharge,
			FirstDetected:  d.now(),
			Status:         model.SubscriptionActive,
			Source:         model.SourceDetected,
		}
		if err := tx.CreateSubscription(ctx, sub); err != nil {
			return 0, fmt.Errorf("failed to create subscription for %s: %w", candidate.VendorKey, err)
		}
		created++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit confirmation: %w", err)
	}

	slog.Info("Confirmed detection candidates",
		"offered", len(candidates),
		"created", created)

	return created, nil
}

// AddSubscription records a manually declared subscription. The vendor key is
// the uppercased name; an existing subscription for that key is rejected with
// common.ErrDuplicateEntry.
func (d *Detector) AddSubscription(ctx context.Context, name string, amountCents int64, frequency model.Frequency) (*model.Subscription, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: subscription name is required", common.ErrInvalidInput)
	}
	if amountCents < 0 {
		return nil, fmt.Errorf("%w: amount cannot be negative", common.ErrInvalidInput)
	}
	if !frequency.Valid() {
		return nil, fmt.Errorf("%w: %q", common.ErrInvalidFrequency, frequency)
	}

	sub := &model.Subscription{
		ID:            uuid.NewString(),
		Name:          name,
		VendorKey:     strings.ToUpper(name),
		AmountCents:   amountCents,
		Frequency:     frequency,
		FirstDetected: d.now(),
		Status:        model.SubscriptionActive,
		Source:        model.SourceManual,
	}
	if err := d.store.CreateSubscription(ctx, sub); err != nil {
		return nil, err
	}
	return sub, nil
}

// titleCase renders a vendor key as a display name: first letter of each word
// uppercased, the rest lowered.
func titleCase(key string) string {
	words := strings.Fields(strings.ToLower(key))
	for i, word := range words {
		words[i] = strings.ToUpper(word[:1]) + word[1:]
	}
	return strings.Join(words, " ")
}

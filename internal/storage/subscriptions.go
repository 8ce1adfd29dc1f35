package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/tallyho/tally-ho/internal/common"
	"github.com/tallyho/tally-ho/internal/model"
)

// CreateSubscription persists a new subscription. The vendor key is unique;
// inserting a second subscription for the same key returns
// common.ErrDuplicateEntry.
func (s *SQLiteStorage) CreateSubscription(ctx context.Context, sub *model.Subscription) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateSubscription(sub); err != nil {
		return err
	}
	return s.createSubscriptionTx(ctx, s.db, sub)
}

func (s *SQLiteStorage) createSubscriptionTx(ctx context.Context, q queryable, sub *model.Subscription) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO subscriptions (
			id, name, vendor_key, amount_cents, frequency, confidence,
			next_charge_date, last_charge_date, first_detected, status, source
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		sub.ID,
		sub.Name,
		sub.VendorKey,
		sub.AmountCents,
		string(sub.Frequency),
		sub.Confidence,
		nullTime(sub.NextChargeDate),
		nullTime(sub.LastChargeDate),
		nullTime(sub.FirstDetected),
		string(sub.Status),
		string(sub.Source),
	)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return fmt.Errorf("%w: subscription vendor key %s", common.ErrDuplicateEntry, sub.VendorKey)
		}
		return fmt.Errorf("failed to create subscription: %w", err)
	}
	return nil
}

// GetSubscriptionByVendorKey retrieves the subscription for a vendor key, or
// common.ErrNotFound if none exists.
func (s *SQLiteStorage) GetSubscriptionByVendorKey(ctx context.Context, vendorKey string) (*model.Subscription, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(vendorKey, "vendorKey"); err != nil {
		return nil, err
	}
	return s.getSubscriptionByVendorKeyTx(ctx, s.db, vendorKey)
}

func (s *SQLiteStorage) getSubscriptionByVendorKeyTx(ctx context.Context, q queryable, vendorKey string) (*model.Subscription, error) {
	row := q.QueryRowContext(ctx, `
		SELECT id, name, vendor_key, amount_cents, frequency, confidence,
		       next_charge_date, last_charge_date, first_detected, status, source
		FROM subscriptions
		WHERE vendor_key = ?
	`, vendorKey)

	sub, err := scanSubscription(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: subscription for vendor %s", common.ErrNotFound, vendorKey)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}
	return sub, nil
}

// ListSubscriptions returns subscriptions, optionally only active ones.
func (s *SQLiteStorage) ListSubscriptions(ctx context.Context, activeOnly bool) ([]model.Subscription, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.listSubscriptionsTx(ctx, s.db, activeOnly)
}

func (s *SQLiteStorage) listSubscriptionsTx(ctx context.Context, q queryable, activeOnly bool) ([]model.Subscription, error) {
	query := `
		SELECT id, name, vendor_key, amount_cents, frequency, confidence,
		       next_charge_date, last_charge_date, first_detected, status, source
		FROM subscriptions`
	if activeOnly {
		query += ` WHERE status = 'active'`
	}
	query += ` ORDER BY name`

	rows, err := q.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query subscriptions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var subs []model.Subscription
	for rows.Next() {
		sub, scanErr := scanSubscription(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan subscription: %w", scanErr)
		}
		subs = append(subs, *sub)
	}
	return subs, rows.Err()
}

// UpdateSubscriptionStatus transitions a subscription's status.
func (s *SQLiteStorage) UpdateSubscriptionStatus(ctx context.Context, id string, status model.SubscriptionStatus) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}
	return s.updateSubscriptionStatusTx(ctx, s.db, id, status)
}

func (s *SQLiteStorage) updateSubscriptionStatusTx(ctx context.Context, q queryable, id string, status model.SubscriptionStatus) error {
	result, err := q.ExecContext(ctx, `
		UPDATE subscriptions SET status = ? WHERE id = ?
	`, string(status), id)
	if err != nil {
		return fmt.Errorf("failed to update subscription status: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: subscription %s", common.ErrNotFound, id)
	}
	return nil
}

func nullTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}

func scanSubscription(row rowScanner) (*model.Subscription, error) {
	var sub model.Subscription
	var frequency, status, source string
	var next, last, first sql.NullTime
	if err := row.Scan(
		&sub.ID,
		&sub.Name,
		&sub.VendorKey,
		&sub.AmountCents,
		&frequency,
		&sub.Confidence,
		&next,
		&last,
		&first,
		&status,
		&source,
	); err != nil {
		return nil, err
	}

	sub.Frequency = model.Frequency(frequency)
	sub.Status = model.SubscriptionStatus(status)
	sub.Source = model.SubscriptionSource(source)
	sub.NextChargeDate = next.Time
	sub.LastChargeDate = last.Time
	sub.FirstDetected = first.Time
	return &sub, nil
}

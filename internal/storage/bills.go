package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tallyho/tally-ho/internal/common"
	"github.com/tallyho/tally-ho/internal/model"
)

// CreateBill saves a new bill.
func (s *SQLiteStorage) CreateBill(ctx context.Context, bill *model.Bill) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateBill(bill); err != nil {
		return err
	}
	return s.createBillTx(ctx, s.db, bill)
}

func (s *SQLiteStorage) createBillTx(ctx context.Context, q queryable, bill *model.Bill) error {
	patterns, err := marshalPatterns(bill.MatchPatterns)
	if err != nil {
		return err
	}

	_, err = q.ExecContext(ctx, `
		INSERT INTO bills (id, name, match_patterns, amount_cents, due_day, frequency, is_active)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		bill.ID,
		bill.Name,
		patterns,
		bill.AmountCents,
		bill.DueDay,
		string(bill.Frequency),
		bill.Active,
	)
	if err != nil {
		return fmt.Errorf("failed to create bill: %w", err)
	}
	return nil
}

// GetBillByID retrieves a bill by id.
func (s *SQLiteStorage) GetBillByID(ctx context.Context, id string) (*model.Bill, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}
	return s.getBillByIDTx(ctx, s.db, id)
}

func (s *SQLiteStorage) getBillByIDTx(ctx context.Context, q queryable, id string) (*model.Bill, error) {
	row := q.QueryRowContext(ctx, `
		SELECT id, name, match_patterns, amount_cents, due_day, frequency, is_active
		FROM bills
		WHERE id = ?
	`, id)

	bill, err := scanBill(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: bill %s", common.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bill: %w", err)
	}
	return bill, nil
}

// GetActiveBills returns all active bills in creation order. The statement
// linker's tie-break depends on this ordering.
func (s *SQLiteStorage) GetActiveBills(ctx context.Context) ([]model.Bill, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.listBillsTx(ctx, s.db, true)
}

// ListBills returns bills in creation order, optionally only active ones.
func (s *SQLiteStorage) ListBills(ctx context.Context, activeOnly bool) ([]model.Bill, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.listBillsTx(ctx, s.db, activeOnly)
}

func (s *SQLiteStorage) listBillsTx(ctx context.Context, q queryable, activeOnly bool) ([]model.Bill, error) {
	query := `
		SELECT id, name, match_patterns, amount_cents, due_day, frequency, is_active
		FROM bills`
	if activeOnly {
		query += ` WHERE is_active = 1`
	}
	query += ` ORDER BY created_at, id`

	rows, err := q.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query bills: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var bills []model.Bill
	for rows.Next() {
		bill, scanErr := scanBill(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan bill: %w", scanErr)
		}
		bills = append(bills, *bill)
	}
	return bills, rows.Err()
}

// UpdateBillPatterns replaces a bill's match pattern list.
func (s *SQLiteStorage) UpdateBillPatterns(ctx context.Context, billID string, patterns []string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(billID, "billID"); err != nil {
		return err
	}
	return s.updateBillPatternsTx(ctx, s.db, billID, patterns)
}

func (s *SQLiteStorage) updateBillPatternsTx(ctx context.Context, q queryable, billID string, patterns []string) error {
	encoded, err := marshalPatterns(patterns)
	if err != nil {
		return err
	}

	result, err := q.ExecContext(ctx, `
		UPDATE bills SET match_patterns = ? WHERE id = ?
	`, encoded, billID)
	if err != nil {
		return fmt.Errorf("failed to update bill patterns: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: bill %s", common.ErrNotFound, billID)
	}
	return nil
}

func marshalPatterns(patterns []string) (string, error) {
	if patterns == nil {
		patterns = []string{}
	}
	encoded, err := json.Marshal(patterns)
	if err != nil {
		return "", fmt.Errorf("failed to encode match patterns: %w", err)
	}
	return string(encoded), nil
}

func scanBill(row rowScanner) (*model.Bill, error) {
	var bill model.Bill
	var patterns string
	var frequency string
	if err := row.Scan(
		&bill.ID,
		&bill.Name,
		&patterns,
		&bill.AmountCents,
		&bill.DueDay,
		&frequency,
		&bill.Active,
	); err != nil {
		return nil, err
	}

	bill.Frequency = model.Frequency(frequency)
	if patterns != "" {
		if err := json.Unmarshal([]byte(patterns), &bill.MatchPatterns); err != nil {
			return nil, fmt.Errorf("failed to decode match patterns for bill %s: %w", bill.ID, err)
		}
	}
	return &bill, nil
}

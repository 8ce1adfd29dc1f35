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
	"github.com/tallyho/tally-ho/internal/service"
)

// InsertTransaction inserts a transaction into the named store. A fingerprint
// collision surfaces as common.ErrDuplicateEntry; callers treat that as a
// skipped duplicate, not a failure.
func (s *SQLiteStorage) InsertTransaction(ctx context.Context, store service.TransactionStore, txn *model.Transaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateTransaction(txn); err != nil {
		return err
	}
	return s.insertTransactionTx(ctx, s.db, store, txn)
}

func (s *SQLiteStorage) insertTransactionTx(ctx context.Context, q queryable, store service.TransactionStore, txn *model.Transaction) error {
	table, err := storeTable(string(store))
	if err != nil {
		return err
	}

	fingerprint := sql.NullString{String: txn.Fingerprint, Valid: txn.Fingerprint != ""}

	switch store {
	case service.StoreAccount:
		_, err = q.ExecContext(ctx, `
			INSERT INTO account_transactions (
				id, account_id, description, amount_cents, transaction_date,
				txn_fingerprint, is_matched, linked_bill_id
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`,
			txn.ID,
			txn.AccountID,
			txn.Description,
			txn.AmountCents,
			txn.Date,
			fingerprint,
			txn.Matched,
			sql.NullString{String: txn.LinkedBillID, Valid: txn.LinkedBillID != ""},
		)
	default:
		_, err = q.ExecContext(ctx, `
			INSERT INTO card_transactions (
				id, account_id, description, amount_cents, transaction_date, txn_fingerprint
			) VALUES (?, ?, ?, ?, ?, ?)
		`,
			txn.ID,
			txn.AccountID,
			txn.Description,
			txn.AmountCents,
			txn.Date,
			fingerprint,
		)
	}

	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return fmt.Errorf("%w: fingerprint %s in %s", common.ErrDuplicateEntry, txn.Fingerprint, table)
		}
		return fmt.Errorf("failed to insert transaction into %s: %w", table, err)
	}

	return nil
}

// FingerprintExists reports whether any transaction store already holds the
// fingerprint. The check fans out across every store so re-importing an event
// through a different channel still counts as a duplicate.
func (s *SQLiteStorage) FingerprintExists(ctx context.Context, fingerprint string) (bool, error) {
	if err := validateContext(ctx); err != nil {
		return false, err
	}
	if err := validateString(fingerprint, "fingerprint"); err != nil {
		return false, err
	}
	return s.fingerprintExistsTx(ctx, s.db, fingerprint)
}

func (s *SQLiteStorage) fingerprintExistsTx(ctx context.Context, q queryable, fingerprint string) (bool, error) {
	var exists bool
	err := q.QueryRowContext(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM account_transactions WHERE txn_fingerprint = ?
			UNION
			SELECT 1 FROM card_transactions WHERE txn_fingerprint = ?
		)
	`, fingerprint, fingerprint).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check fingerprint: %w", err)
	}
	return exists, nil
}

// GetUnmatchedTransactions returns account transactions that have not been
// linked to a bill, newest first, optionally filtered to one account.
func (s *SQLiteStorage) GetUnmatchedTransactions(ctx context.Context, accountID *string) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.getUnmatchedTransactionsTx(ctx, s.db, accountID)
}

func (s *SQLiteStorage) getUnmatchedTransactionsTx(ctx context.Context, q queryable, accountID *string) ([]model.Transaction, error) {
	query := `
		SELECT id, account_id, description, amount_cents, transaction_date,
		       txn_fingerprint, is_matched, linked_bill_id
		FROM account_transactions
		WHERE is_matched = 0`
	args := []any{}
	if accountID != nil {
		query += ` AND account_id = ?`
		args = append(args, *accountID)
	}
	query += ` ORDER BY transaction_date DESC`

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query unmatched transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return scanTransactions(rows)
}

// GetTransactionByID retrieves one account transaction.
func (s *SQLiteStorage) GetTransactionByID(ctx context.Context, id string) (*model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}
	return s.getTransactionByIDTx(ctx, s.db, id)
}

func (s *SQLiteStorage) getTransactionByIDTx(ctx context.Context, q queryable, id string) (*model.Transaction, error) {
	row := q.QueryRowContext(ctx, `
		SELECT id, account_id, description, amount_cents, transaction_date,
		       txn_fingerprint, is_matched, linked_bill_id
		FROM account_transactions
		WHERE id = ?
	`, id)

	txn, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: transaction %s", common.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return txn, nil
}

// MarkTransactionMatched marks an account transaction as matched and links it
// to the given bill. There is no automatic unmatching; the transition happens
// exactly once.
func (s *SQLiteStorage) MarkTransactionMatched(ctx context.Context, transactionID, billID string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(transactionID, "transactionID"); err != nil {
		return err
	}
	if err := validateString(billID, "billID"); err != nil {
		return err
	}
	return s.markTransactionMatchedTx(ctx, s.db, transactionID, billID)
}

func (s *SQLiteStorage) markTransactionMatchedTx(ctx context.Context, q queryable, transactionID, billID string) error {
	result, err := q.ExecContext(ctx, `
		UPDATE account_transactions
		SET is_matched = 1, linked_bill_id = ?
		WHERE id = ?
	`, billID, transactionID)
	if err != nil {
		return fmt.Errorf("failed to mark transaction matched: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: transaction %s", common.ErrNotFound, transactionID)
	}
	return nil
}

// GetDebitsSince returns debit-signed transactions from every store on or
// after the cutoff date: negative amounts from the account store, positive
// charges from the card store.
func (s *SQLiteStorage) GetDebitsSince(ctx context.Context, cutoff time.Time) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.getDebitsSinceTx(ctx, s.db, cutoff)
}

func (s *SQLiteStorage) getDebitsSinceTx(ctx context.Context, q queryable, cutoff time.Time) ([]model.Transaction, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, account_id, description, amount_cents, transaction_date,
		       txn_fingerprint, is_matched, linked_bill_id
		FROM account_transactions
		WHERE amount_cents < 0 AND transaction_date >= ?
	`, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to query account debits: %w", err)
	}
	defer func() { _ = rows.Close() }()

	debits, err := scanTransactions(rows)
	if err != nil {
		return nil, err
	}

	cardRows, err := q.QueryContext(ctx, `
		SELECT id, account_id, description, amount_cents, transaction_date, txn_fingerprint
		FROM card_transactions
		WHERE amount_cents > 0 AND transaction_date >= ?
	`, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to query card charges: %w", err)
	}
	defer func() { _ = cardRows.Close() }()

	for cardRows.Next() {
		var txn model.Transaction
		var fingerprint sql.NullString
		if err := cardRows.Scan(&txn.ID, &txn.AccountID, &txn.Description, &txn.AmountCents, &txn.Date, &fingerprint); err != nil {
			return nil, fmt.Errorf("failed to scan card transaction: %w", err)
		}
		txn.Fingerprint = fingerprint.String
		debits = append(debits, txn)
	}

	return debits, cardRows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransactionInto(txn *model.Transaction, row rowScanner) error {
	var fingerprint, linkedBillID sql.NullString
	if err := row.Scan(
		&txn.ID,
		&txn.AccountID,
		&txn.Description,
		&txn.AmountCents,
		&txn.Date,
		&fingerprint,
		&txn.Matched,
		&linkedBillID,
	); err != nil {
		return err
	}
	txn.Fingerprint = fingerprint.String
	txn.LinkedBillID = linkedBillID.String
	return nil
}

func scanTransaction(row rowScanner) (*model.Transaction, error) {
	var txn model.Transaction
	if err := scanTransactionInto(&txn, row); err != nil {
		return nil, err
	}
	return &txn, nil
}

func scanTransactions(rows *sql.Rows) ([]model.Transaction, error) {
	var transactions []model.Transaction
	for rows.Next() {
		var txn model.Transaction
		if err := scanTransactionInto(&txn, rows); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		transactions = append(transactions, txn)
	}
	return transactions, rows.Err()
}

package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/tallyho/tally-ho/internal/model"
	"github.com/tallyho/tally-ho/internal/service"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteStorage implements the service.Storage interface using SQLite.
type SQLiteStorage struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteStorage creates a new SQLite storage instance.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if err := validateString(dbPath, "dbPath"); err != nil {
		return nil, err
	}

	// Ensure directory exists
	if dbPath != ":memory:" {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite doesn't benefit from multiple connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &SQLiteStorage{
		db:     db,
		dbPath: dbPath,
	}, nil
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// BeginTx starts a new database transaction.
func (s *SQLiteStorage) BeginTx(ctx context.Context) (service.Tx, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}

	return &sqliteTx{
		tx:      tx,
		storage: s,
	}, nil
}

// queryable is an interface satisfied by both *sql.DB and *sql.Tx.
type queryable interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// sqliteTx wraps sql.Tx to implement service.Tx.
type sqliteTx struct {
	tx      *sql.Tx
	storage *SQLiteStorage
}

func (t *sqliteTx) Commit() error {
	return t.tx.Commit()
}

func (t *sqliteTx) Rollback() error {
	return t.tx.Rollback()
}

// Storage methods delegate to the shared implementations with the transaction.
func (t *sqliteTx) InsertTransaction(ctx context.Context, store service.TransactionStore, txn *model.Transaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateTransaction(txn); err != nil {
		return err
	}
	return t.storage.insertTransactionTx(ctx, t.tx, store, txn)
}

func (t *sqliteTx) FingerprintExists(ctx context.Context, fingerprint string) (bool, error) {
	if err := validateContext(ctx); err != nil {
		return false, err
	}
	if err := validateString(fingerprint, "fingerprint"); err != nil {
		return false, err
	}
	return t.storage.fingerprintExistsTx(ctx, t.tx, fingerprint)
}

func (t *sqliteTx) GetUnmatchedTransactions(ctx context.Context, accountID *string) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return t.storage.getUnmatchedTransactionsTx(ctx, t.tx, accountID)
}

func (t *sqliteTx) GetTransactionByID(ctx context.Context, id string) (*model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}
	return t.storage.getTransactionByIDTx(ctx, t.tx, id)
}

func (t *sqliteTx) MarkTransactionMatched(ctx context.Context, transactionID, billID string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(transactionID, "transactionID"); err != nil {
		return err
	}
	if err := validateString(billID, "billID"); err != nil {
		return err
	}
	return t.storage.markTransactionMatchedTx(ctx, t.tx, transactionID, billID)
}

func (t *sqliteTx) GetDebitsSince(ctx context.Context, cutoff time.Time) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return t.storage.getDebitsSinceTx(ctx, t.tx, cutoff)
}

func (t *sqliteTx) CreateBill(ctx context.Context, bill *model.Bill) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateBill(bill); err != nil {
		return err
	}
	return t.storage.createBillTx(ctx, t.tx, bill)
}

func (t *sqliteTx) GetBillByID(ctx context.Context, id string) (*model.Bill, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}
	return t.storage.getBillByIDTx(ctx, t.tx, id)
}

func (t *sqliteTx) GetActiveBills(ctx context.Context) ([]model.Bill, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return t.storage.listBillsTx(ctx, t.tx, true)
}

func (t *sqliteTx) ListBills(ctx context.Context, activeOnly bool) ([]model.Bill, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return t.storage.listBillsTx(ctx, t.tx, activeOnly)
}

func (t *sqliteTx) UpdateBillPatterns(ctx context.Context, billID string, patterns []string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(billID, "billID"); err != nil {
		return err
	}
	return t.storage.updateBillPatternsTx(ctx, t.tx, billID, patterns)
}

func (t *sqliteTx) CreateSubscription(ctx context.Context, sub *model.Subscription) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateSubscription(sub); err != nil {
		return err
	}
	return t.storage.createSubscriptionTx(ctx, t.tx, sub)
}

func (t *sqliteTx) GetSubscriptionByVendorKey(ctx context.Context, vendorKey string) (*model.Subscription, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(vendorKey, "vendorKey"); err != nil {
		return nil, err
	}
	return t.storage.getSubscriptionByVendorKeyTx(ctx, t.tx, vendorKey)
}

func (t *sqliteTx) ListSubscriptions(ctx context.Context, activeOnly bool) ([]model.Subscription, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return t.storage.listSubscriptionsTx(ctx, t.tx, activeOnly)
}

func (t *sqliteTx) UpdateSubscriptionStatus(ctx context.Context, id string, status model.SubscriptionStatus) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}
	return t.storage.updateSubscriptionStatusTx(ctx, t.tx, id, status)
}

func (t *sqliteTx) Migrate(_ context.Context) error {
	// Migrations should not be run within a transaction
	return fmt.Errorf("migrations cannot be run within a transaction")
}

func (t *sqliteTx) BeginTx(_ context.Context) (service.Tx, error) {
	// Nested transactions not supported
	return nil, fmt.Errorf("nested transactions not supported")
}

func (t *sqliteTx) Close() error {
	// Transactions should be committed or rolled back, not closed
	return fmt.Errorf("transactions must be committed or rolled back, not closed")
}

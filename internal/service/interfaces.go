// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/tallyho/tally-ho/internal/model"
)

// TransactionStore identifies which physical transaction table a record lives
// in. The dedup check spans every store; most other queries name one.
type TransactionStore string

const (
	// StoreAccount holds bank account transactions (negative = debit).
	StoreAccount TransactionStore = "account"
	// StoreCard holds credit card transactions (positive = charge).
	StoreCard TransactionStore = "card"
)

// LinkResult summarizes one statement-linking pass.
type LinkResult struct {
	Matches        []model.MatchCandidate
	TotalUnmatched int
	Matched        int
}

// Storage defines the contract for our persistence layer.
type Storage interface {
	// Transaction operations
	InsertTransaction(ctx context.Context, store TransactionStore, txn *model.Transaction) error
	FingerprintExists(ctx context.Context, fingerprint string) (bool, error)
	GetUnmatchedTransactions(ctx context.Context, accountID *string) ([]model.Transaction, error)
	GetTransactionByID(ctx context.Context, id string) (*model.Transaction, error)
	MarkTransactionMatched(ctx context.Context, transactionID, billID string) error
	GetDebitsSince(ctx context.Context, cutoff time.Time) ([]model.Transaction, error)

	// Bill operations
	CreateBill(ctx context.Context, bill *model.Bill) error
	GetBillByID(ctx context.Context, id string) (*model.Bill, error)
	GetActiveBills(ctx context.Context) ([]model.Bill, error)
	ListBills(ctx context.Context, activeOnly bool) ([]model.Bill, error)
	UpdateBillPatterns(ctx context.Context, billID string, patterns []string) error

	// Subscription operations
	CreateSubscription(ctx context.Context, sub *model.Subscription) error
	GetSubscriptionByVendorKey(ctx context.Context, vendorKey string) (*model.Subscription, error)
	ListSubscriptions(ctx context.Context, activeOnly bool) ([]model.Subscription, error)
	UpdateSubscriptionStatus(ctx context.Context, id string, status model.SubscriptionStatus) error

	// Database management
	Migrate(ctx context.Context) error
	BeginTx(ctx context.Context) (Tx, error)
	Close() error
}

// Tx represents a database transaction. Batch engine passes run their
// read-then-write sequence inside one Tx so two concurrent passes cannot both
// claim the same transaction or create duplicate subscriptions.
type Tx interface {
	Commit() error
	Rollback() error
	// Include all Storage methods for use within the transaction
	Storage
}

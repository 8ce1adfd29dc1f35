// Package testutil provides test helpers for the tally-ho project: in-memory
// databases with migrations applied and seed helpers for the core entities.
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/tallyho/tally-ho/internal/model"
	"github.com/tallyho/tally-ho/internal/service"
	"github.com/tallyho/tally-ho/internal/storage"
)

// TestDB wraps an in-memory storage with seeding helpers.
type TestDB struct {
	Storage service.Storage
	t       *testing.T
}

// SetupTestDB creates a migrated in-memory SQLite database that is closed
// automatically when the test finishes.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	store, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	ctx := context.Background()
	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() {
		_ = store.Close()
	})

	return &TestDB{
		Storage: store,
		t:       t,
	}
}

// SeedBill inserts an active bill and returns it.
func (db *TestDB) SeedBill(name string, patterns []string, amountCents int64, dueDay int) *model.Bill {
	db.t.Helper()

	bill := &model.Bill{
		ID:            uuid.NewString(),
		Name:          name,
		MatchPatterns: patterns,
		AmountCents:   amountCents,
		DueDay:        dueDay,
		Frequency:     model.FrequencyMonthly,
		Active:        true,
	}
	if err := db.Storage.CreateBill(context.Background(), bill); err != nil {
		db.t.Fatalf("failed to seed bill %q: %v", name, err)
	}
	return bill
}

// SeedTransaction inserts a transaction into the given store with its
// fingerprint computed, and returns it.
func (db *TestDB) SeedTransaction(store service.TransactionStore, accountID, description string, amountCents int64, date time.Time) *model.Transaction {
	db.t.Helper()

	txn := &model.Transaction{
		ID:          uuid.NewString(),
		AccountID:   accountID,
		Description: description,
		AmountCents: amountCents,
		Date:        date,
	}
	txn.GenerateFingerprint()

	if err := db.Storage.InsertTransaction(context.Background(), store, txn); err != nil {
		db.t.Fatalf("failed to seed transaction %q: %v", description, err)
	}
	return txn
}

// SeedMonthlyCharges inserts count card charges for the same vendor spaced an
// exact number of days apart, starting at start.
func (db *TestDB) SeedMonthlyCharges(description string, amountCents int64, start time.Time, count, intervalDays int) []*model.Transaction {
	db.t.Helper()

	txns := make([]*model.Transaction, 0, count)
	for i := 0; i < count; i++ {
		date := start.AddDate(0, 0, i*intervalDays)
		txns = append(txns, db.SeedTransaction(service.StoreCard, "card-1", description, amountCents, date))
	}
	return txns
}

package main

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"github.com/tallyho/tally-ho/internal/common"
	"github.com/tallyho/tally-ho/internal/config"
	"github.com/tallyho/tally-ho/internal/service"
	"github.com/tallyho/tally-ho/internal/storage"
)

// initStorage opens the configured database and brings the schema current.
func initStorage(ctx context.Context) (service.Storage, error) {
	dbPath := config.DatabasePath(viper.GetViper())
	if dbPath == "" {
		return nil, fmt.Errorf("%w: database.path", common.ErrMissingConfig)
	}

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// closeStorage closes the store; a failed close has no caller to report to,
// so it is logged instead.
func closeStorage(store service.Storage) {
	if err := store.Close(); err != nil {
		common.LogError(err, "failed to close storage", nil)
	}
}

// formatAmount renders cents as a dollar string, e.g. -1599 -> "-$15.99".
func formatAmount(cents int64) string {
	d := decimal.New(cents, -2)
	if d.IsNegative() {
		return "-$" + d.Abs().StringFixed(2)
	}
	return "$" + d.StringFixed(2)
}

// parseAmount converts a dollar string like "15.99" to cents.
func parseAmount(s string) (int64, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, common.NewUserError(fmt.Sprintf("invalid amount %q", s), common.ErrInvalidInput)
	}
	return d.Mul(decimal.NewFromInt(100)).IntPart(), nil
}

// parseStore maps a --store flag value to a transaction store.
func parseStore(value string) (service.TransactionStore, error) {
	switch value {
	case "account":
		return service.StoreAccount, nil
	case "card":
		return service.StoreCard, nil
	}
	return "", common.NewUserError(fmt.Sprintf("unknown store %q (want account or card)", value), common.ErrInvalidInput)
}

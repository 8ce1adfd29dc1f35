package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// ExpectedSchemaVersion is the latest schema version that the application expects.
const ExpectedSchemaVersion = 3

// Migration represents a database schema migration.
type Migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Initial schema: transaction stores and bills",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS account_transactions (
					id TEXT PRIMARY KEY,
					account_id TEXT NOT NULL,
					description TEXT NOT NULL,
					amount_cents INTEGER NOT NULL,
					transaction_date DATETIME NOT NULL,
					txn_fingerprint TEXT UNIQUE,
					is_matched INTEGER NOT NULL DEFAULT 0,
					linked_bill_id TEXT,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE TABLE IF NOT EXISTS card_transactions (
					id TEXT PRIMARY KEY,
					account_id TEXT NOT NULL,
					description TEXT NOT NULL,
					amount_cents INTEGER NOT NULL,
					transaction_date DATETIME NOT NULL,
					txn_fingerprint TEXT UNIQUE,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE TABLE IF NOT EXISTS bills (
					id TEXT PRIMARY KEY,
					name TEXT NOT NULL,
					match_patterns TEXT NOT NULL DEFAULT '[]',
					amount_cents INTEGER NOT NULL DEFAULT 0,
					due_day INTEGER NOT NULL DEFAULT 1,
					frequency TEXT NOT NULL DEFAULT 'monthly',
					is_active INTEGER NOT NULL DEFAULT 1,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query: %w", err)
				}
			}
			return nil
		},
	},
	{
		Version:     2,
		Description: "Subscriptions",
		Up: func(tx *sql.Tx) error {
			query := `CREATE TABLE IF NOT EXISTS subscriptions (
				id TEXT PRIMARY KEY,
				name TEXT NOT NULL,
				vendor_key TEXT UNIQUE NOT NULL,
				amount_cents INTEGER NOT NULL DEFAULT 0,
				frequency TEXT NOT NULL,
				confidence INTEGER NOT NULL DEFAULT 0,
				next_charge_date DATETIME,
				last_charge_date DATETIME,
				first_detected DATETIME,
				status TEXT NOT NULL DEFAULT 'active',
				source TEXT NOT NULL DEFAULT 'manual',
				created_at DATETIME DEFAULT CURRENT_TIMESTAMP
			)`

			if _, err := tx.Exec(query); err != nil {
				return fmt.Errorf("failed to create subscriptions table: %w", err)
			}
			return nil
		},
	},
	{
		Version:     3,
		Description: "Query indexes for batch passes",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE INDEX IF NOT EXISTS idx_account_txns_matched ON account_transactions(is_matched)`,
				`CREATE INDEX IF NOT EXISTS idx_account_txns_date ON account_transactions(transaction_date)`,
				`CREATE INDEX IF NOT EXISTS idx_card_txns_date ON card_transactions(transaction_date)`,
				`CREATE INDEX IF NOT EXISTS idx_subscriptions_status ON subscriptions(status)`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query: %w", err)
				}
			}
			return nil
		},
	},
}

// Migrate applies any pending schema migrations.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	// Get current version
	var currentVersion int
	err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&currentVersion)
	if err != nil {
		return fmt.Errorf("failed to get schema version: %w", err)
	}

	// Apply migrations
	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		tx, txErr := s.db.BeginTx(ctx, nil)
		if txErr != nil {
			return fmt.Errorf("failed to begin transaction: %w", txErr)
		}

		if upErr := migration.Up(tx); upErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", migration.Version, upErr)
		}

		// Update version
		if _, execErr := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", migration.Version)); execErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to update schema version: %w", execErr)
		}

		if commitErr := tx.Commit(); commitErr != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, commitErr)
		}

		slog.Info("Applied migration",
			"version", migration.Version,
			"description", migration.Description)
	}

	return nil
}

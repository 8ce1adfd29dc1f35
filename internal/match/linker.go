package match

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tallyho/tally-ho/internal/model"
	"github.com/tallyho/tally-ho/internal/service"
)

// Linker runs statement-linking passes over the store. Each pass executes its
// read-then-write sequence inside one storage transaction so concurrent runs
// cannot both claim the same transaction.
type Linker struct {
	store service.Storage
	cfg   Config
}

// NewLinker creates a statement linker backed by the given storage.
func NewLinker(store service.Storage, cfg Config) *Linker {
	return &Linker{store: store, cfg: cfg}
}

// LinkTransactions scores every unmatched account transaction against every
// active bill and accepts the best match per transaction when it clears the
// threshold. Re-running with no new data matches nothing; already-matched
// transactions are excluded from the scan.
func (l *Linker) LinkTransactions(ctx context.Context, accountID *string) (service.LinkResult, error) {
	var result service.LinkResult

	tx, err := l.store.BeginTx(ctx)
	if err != nil {
		return result, fmt.Errorf("failed to begin linking pass: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	bills, err := tx.GetActiveBills(ctx)
	if err != nil {
		return result, fmt.Errorf("failed to load bills: %w", err)
	}

	unmatched, err := tx.GetUnmatchedTransactions(ctx, accountID)
	if err != nil {
		return result, fmt.Errorf("failed to load unmatched transactions: %w", err)
	}
	result.TotalUnmatched = len(unmatched)

	for i := range unmatched {
		if err := ctx.Err(); err != nil {
			return service.LinkResult{}, err
		}

		candidate, ok := BestMatch(unmatched[i], bills, l.cfg)
		if !ok {
			continue
		}

		if err := tx.MarkTransactionMatched(ctx, candidate.TransactionID, candidate.BillID); err != nil {
			return service.LinkResult{}, fmt.Errorf("failed to record match: %w", err)
		}

		slog.Debug("Linked transaction to bill",
			"transaction_id", candidate.TransactionID,
			"bill_id", candidate.BillID,
			"score", candidate.Score)

		result.Matches = append(result.Matches, candidate)
	}
	result.Matched = len(result.Matches)

	if err := tx.Commit(); err != nil {
		return service.LinkResult{}, fmt.Errorf("failed to commit linking pass: %w", err)
	}

	slog.Info("Statement linking pass complete",
		"total_unmatched", result.TotalUnmatched,
		"matched", result.Matched)

	return result, nil
}

// ConfirmMatch records a user-confirmed link between a transaction and a bill,
// then learns a new match pattern from the transaction's description so future
// passes catch the same payee automatically. The learned pattern is appended
// to the bill only if not already present; a description that reduces to
// nothing after stop-word removal simply teaches nothing. Returns an error
// wrapping common.ErrNotFound when the transaction or bill does not exist.
func (l *Linker) ConfirmMatch(ctx context.Context, transactionID, billID string) error {
	tx, err := l.store.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin confirmation: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	txn, err := tx.GetTransactionByID(ctx, transactionID)
	if err != nil {
		return err
	}

	bill, err := tx.GetBillByID(ctx, billID)
	if err != nil {
		return err
	}

	if err := tx.MarkTransactionMatched(ctx, txn.ID, bill.ID); err != nil {
		return err
	}

	if pattern := LearnedPattern(txn.Description); pattern != "" && !bill.HasPattern(pattern) {
		patterns := append(bill.MatchPatterns, pattern)
		if err := tx.UpdateBillPatterns(ctx, bill.ID, patterns); err != nil {
			return fmt.Errorf("failed to learn pattern: %w", err)
		}
		slog.Info("Learned new match pattern",
			"bill_id", bill.ID,
			"pattern", pattern)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit confirmation: %w", err)
	}

	return nil
}

// GetUnmatched lists unmatched transactions for review, newest first.
func (l *Linker) GetUnmatched(ctx context.Context, accountID *string) ([]model.Transaction, error) {
	return l.store.GetUnmatchedTransactions(ctx, accountID)
}

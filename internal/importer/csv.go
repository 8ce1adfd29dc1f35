// Package importer brings externally exported CSV transaction files into the
// store, running every row through the cross-store fingerprint dedup gate and
// a statement-linking pass afterwards.
package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tallyho/tally-ho/internal/common"
	"github.com/tallyho/tally-ho/internal/match"
	"github.com/tallyho/tally-ho/internal/model"
	"github.com/tallyho/tally-ho/internal/service"
)

// csvRow is one line of a bank CSV export.
type csvRow struct {
	Date        string `csv:"date"`
	Description string `csv:"description"`
	Amount      string `csv:"amount"`
}

// Result summarizes one import run. Skipped counts duplicates rejected by the
// fingerprint check; they are not errors.
type Result struct {
	RowErrors []string
	Imported  int
	Skipped   int
	Linked    int
}

// CSVImporter parses CSV exports and inserts deduplicated transactions.
type CSVImporter struct {
	store    service.Storage
	linker   *match.Linker
	progress func(done, total int)
}

// NewCSVImporter creates an importer. linker may be nil to skip the
// post-import statement-linking pass.
func NewCSVImporter(store service.Storage, linker *match.Linker) *CSVImporter {
	return &CSVImporter{store: store, linker: linker}
}

// SetProgress registers a callback invoked after each row.
func (i *CSVImporter) SetProgress(fn func(done, total int)) {
	i.progress = fn
}

// ImportFile imports a CSV file into the given transaction store.
func (i *CSVImporter) ImportFile(ctx context.Context, path, accountID string, store service.TransactionStore) (*Result, error) {
	f, err := os.Open(path) // #nosec G304 -- user-supplied import path
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	return i.Import(ctx, f, accountID, store)
}

// Import reads CSV rows and inserts each one whose fingerprint is not already
// present in any transaction store. Malformed rows are recorded in the result
// and skipped; they do not abort the run.
func (i *CSVImporter) Import(ctx context.Context, r io.Reader, accountID string, store service.TransactionStore) (*Result, error) {
	var rows []*csvRow
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, fmt.Errorf("failed to parse CSV: %w", err)
	}

	result := &Result{}

	for n, row := range rows {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		txn, err := parseRow(row, accountID)
		if err != nil {
			result.RowErrors = append(result.RowErrors, fmt.Sprintf("row %d: %v", n+1, err))
			continue
		}

		exists, err := i.store.FingerprintExists(ctx, txn.Fingerprint)
		if err != nil {
			return nil, err
		}
		if exists {
			result.Skipped++
			slog.Debug("Skipping duplicate transaction",
				"fingerprint", txn.Fingerprint,
				"description", txn.Description)
		} else {
			switch err := i.store.InsertTransaction(ctx, store, txn); {
			case errors.Is(err, common.ErrDuplicateEntry):
				// Unique-constraint backstop: another writer inserted the
				// same fingerprint after our pre-check. Still a duplicate.
				result.Skipped++
			case err != nil:
				return nil, err
			default:
				result.Imported++
			}
		}

		if i.progress != nil {
			i.progress(n+1, len(rows))
		}
	}

	if i.linker != nil && store == service.StoreAccount {
		linked, err := i.linker.LinkTransactions(ctx, &accountID)
		if err != nil {
			return nil, fmt.Errorf("post-import linking failed: %w", err)
		}
		result.Linked = linked.Matched
	}

	slog.Info("CSV import complete",
		"rows", len(rows),
		"imported", result.Imported,
		"skipped", result.Skipped,
		"linked", result.Linked,
		"row_errors", len(result.RowErrors))

	return result, nil
}

// Date layouts accepted in CSV exports.
var dateLayouts = []string{"2006-01-02", "01/02/2006"}

func parseRow(row *csvRow, accountID string) (*model.Transaction, error) {
	if row.Description == "" {
		return nil, errors.New("missing description")
	}

	var date time.Time
	var err error
	for _, layout := range dateLayouts {
		if date, err = time.Parse(layout, row.Date); err == nil {
			break
		}
	}
	if err != nil {
		return nil, fmt.Errorf("unparseable date %q", row.Date)
	}

	amount, err := decimal.NewFromString(row.Amount)
	if err != nil {
		return nil, fmt.Errorf("unparseable amount %q", row.Amount)
	}
	amountCents := amount.Mul(decimal.NewFromInt(100)).IntPart()

	txn := &model.Transaction{
		ID:          uuid.NewString(),
		AccountID:   accountID,
		Description: row.Description,
		AmountCents: amountCents,
		Date:        date,
	}
	txn.GenerateFingerprint()
	return txn, nil
}

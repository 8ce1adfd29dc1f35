// Package storage provides the data persistence layer for the tally application.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tallyho/tally-ho/internal/model"
)

// Validation errors.
var (
	ErrNilContext         = errors.New("context cannot be nil")
	ErrEmptyString        = errors.New("string parameter cannot be empty")
	ErrNilParameter       = errors.New("parameter cannot be nil")
	ErrInvalidTransaction = errors.New("invalid transaction")
	ErrInvalidBill        = errors.New("invalid bill")
	ErrInvalidSub         = errors.New("invalid subscription")
	ErrUnknownStore       = errors.New("unknown transaction store")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateTransaction validates a single transaction.
func validateTransaction(txn *model.Transaction) error {
	if txn == nil {
		return fmt.Errorf("%w: transaction", ErrNilParameter)
	}
	if txn.ID == "" {
		return fmt.Errorf("%w: missing ID", ErrInvalidTransaction)
	}
	if txn.Date.IsZero() {
		return fmt.Errorf("%w: missing date", ErrInvalidTransaction)
	}
	if txn.Description == "" {
		return fmt.Errorf("%w: missing description", ErrInvalidTransaction)
	}
	if txn.AccountID == "" {
		return fmt.Errorf("%w: missing account ID", ErrInvalidTransaction)
	}
	return nil
}

// validateBill validates a bill.
func validateBill(bill *model.Bill) error {
	if bill == nil {
		return fmt.Errorf("%w: bill", ErrNilParameter)
	}
	if bill.ID == "" {
		return fmt.Errorf("%w: missing ID", ErrInvalidBill)
	}
	if strings.TrimSpace(bill.Name) == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidBill)
	}
	if bill.DueDay < 1 || bill.DueDay > 31 {
		return fmt.Errorf("%w: due day must be between 1 and 31", ErrInvalidBill)
	}
	if !bill.Frequency.Valid() {
		return fmt.Errorf("%w: frequency %q", ErrInvalidBill, bill.Frequency)
	}
	return nil
}

// validateSubscription validates a subscription.
func validateSubscription(sub *model.Subscription) error {
	if sub == nil {
		return fmt.Errorf("%w: subscription", ErrNilParameter)
	}
	if sub.ID == "" {
		return fmt.Errorf("%w: missing ID", ErrInvalidSub)
	}
	if strings.TrimSpace(sub.Name) == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidSub)
	}
	if strings.TrimSpace(sub.VendorKey) == "" {
		return fmt.Errorf("%w: missing vendor key", ErrInvalidSub)
	}
	if !sub.Frequency.Valid() {
		return fmt.Errorf("%w: frequency %q", ErrInvalidSub, sub.Frequency)
	}
	if sub.Confidence < 0 || sub.Confidence > 100 {
		return fmt.Errorf("%w: confidence must be between 0 and 100", ErrInvalidSub)
	}
	return nil
}

// storeTable maps a transaction store to its backing table name.
func storeTable(store string) (string, error) {
	switch store {
	case "account":
		return "account_transactions", nil
	case "card":
		return "card_transactions", nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownStore, store)
}

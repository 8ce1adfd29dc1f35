// Package model defines the core data structures for the tally application.
package model

import (
	"crypto/sha256"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Transaction represents a single posted financial event from any import source.
type Transaction struct {
	Date         time.Time
	ID           string
	AccountID    string
	Description  string // Raw description as imported
	Fingerprint  string // Dedup identity; empty until computed
	LinkedBillID string // Set when matched to a bill
	AmountCents  int64  // Negative = debit, positive = credit
	Matched      bool
}

var fingerprintStrip = regexp.MustCompile(`[^A-Z0-9]`)

// Fingerprint computes the deterministic dedup identity for a transaction.
// The description is uppercased and reduced to [A-Z0-9] before hashing so the
// same real-world event produces the same fingerprint regardless of which
// import channel captured it. Returns the first 16 hex characters of the
// SHA-256 of "date|description|amount". This is an identity, not a security
// primitive.
func Fingerprint(date time.Time, description string, amountCents int64) string {
	normalized := fingerprintStrip.ReplaceAllString(strings.ToUpper(description), "")
	raw := fmt.Sprintf("%s|%s|%d", date.Format("2006-01-02"), normalized, amountCents)
	sum := sha256.Sum256([]byte(raw))
	return fmt.Sprintf("%x", sum)[:16]
}

// GenerateFingerprint computes and stores the transaction's fingerprint.
func (t *Transaction) GenerateFingerprint() string {
	t.Fingerprint = Fingerprint(t.Date, t.Description, t.AmountCents)
	return t.Fingerprint
}

// Package vendors reduces noisy transaction descriptions to canonical vendor
// keys so that charges from the same payee group together regardless of the
// payment-rail boilerplate each bank wraps around them.
package vendors

import (
	"regexp"
	"sort"
	"strings"
)

// Boilerplate prefixes banks prepend to descriptions. Sorted longest-first so
// the greedy scan strips "ACH PAYMENT" before "ACH", etc.
var stripPrefixes = func() []string {
	prefixes := []string{
		"AUTOMATIC PAYMENT",
		"DEBIT CARD PURCHASE",
		"RECURRING PAYMENT",
		"ONLINE PURCHASE",
		"ONLINE PAYMENT",
		"BILL PAYMENT",
		"ACH PAYMENT",
		"ACH CREDIT",
		"ACH DEBIT",
		"POS DEBIT",
		"MASTERCARD",
		"VISA",
	}
	sort.Slice(prefixes, func(i, j int) bool {
		return len(prefixes[i]) > len(prefixes[j])
	})
	return prefixes
}()

var (
	trailingRef  = regexp.MustCompile(`\s*\d{6,}$`)
	trailingDate = regexp.MustCompile(`\s*\d{2}/\d{2}$`)
)

// Normalize collapses a raw transaction description into a canonical vendor
// key: uppercase, known boilerplate prefixes stripped, trailing reference
// numbers (6+ digits) and trailing MM/DD dates removed, whitespace collapsed.
//
// Normalize is idempotent: applying it to its own output is a no-op. The
// cleanup pass runs until it reaches a fixpoint, so stripping one prefix that
// exposes another (or a reference number that exposes a trailing date) cannot
// leave residue that a second call would remove.
func Normalize(description string) string {
	text := strings.ToUpper(strings.TrimSpace(description))

	for {
		prev := text
		text = cleanOnce(text)
		if text == prev {
			break
		}
	}

	return strings.Join(strings.Fields(text), " ")
}

// cleanOnce strips at most one boilerplate prefix and one trailing reference
// number and date. Text only ever shrinks, so iteration terminates.
func cleanOnce(text string) string {
	for _, prefix := range stripPrefixes {
		if strings.HasPrefix(text, prefix) {
			text = strings.TrimSpace(text[len(prefix):])
			break
		}
	}

	text = trailingRef.ReplaceAllString(text, "")
	text = trailingDate.ReplaceAllString(text, "")

	return text
}

package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFingerprint(t *testing.T) {
	date := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)

	t.Run("deterministic", func(t *testing.T) {
		a := Fingerprint(date, "AMAZON.COM", -4299)
		b := Fingerprint(date, "AMAZON.COM", -4299)
		assert.Equal(t, a, b)
	})

	t.Run("length and charset", func(t *testing.T) {
		fp := Fingerprint(date, "NETFLIX.COM 123456", -1599)
		assert.Len(t, fp, 16)
		for _, c := range fp {
			assert.True(t, (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f'),
				"unexpected character %q in fingerprint", c)
		}
	})

	t.Run("case and punctuation variants collapse", func(t *testing.T) {
		a := Fingerprint(date, "AMAZON.COM", -4299)
		b := Fingerprint(date, "Amazon Com", -4299)
		c := Fingerprint(date, "amazon*com", -4299)
		assert.Equal(t, a, b)
		assert.Equal(t, a, c)
	})

	t.Run("different content differs", func(t *testing.T) {
		a := Fingerprint(date, "AMAZON.COM", -4299)
		b := Fingerprint(date, "AMAZON.COM 1234", -4299)
		assert.NotEqual(t, a, b)
	})

	t.Run("amount and date participate", func(t *testing.T) {
		a := Fingerprint(date, "AMAZON.COM", -4299)
		assert.NotEqual(t, a, Fingerprint(date, "AMAZON.COM", -4300))
		assert.NotEqual(t, a, Fingerprint(date.AddDate(0, 0, 1), "AMAZON.COM", -4299))
	})
}

func TestGenerateFingerprint(t *testing.T) {
	txn := Transaction{
		Date:        time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC),
		Description: "JCPL PAYMENT ELECTRIC",
		AmountCents: -14200,
	}

	fp := txn.GenerateFingerprint()
	assert.Equal(t, fp, txn.Fingerprint)
	assert.Equal(t, Fingerprint(txn.Date, txn.Description, txn.AmountCents), fp)
}

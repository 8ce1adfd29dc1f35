package match

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/tallyho/tally-ho/internal/model"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestScore(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		name    string
		txn     model.Transaction
		bill    model.Bill
		wantMin float64
		wantMax float64
	}{
		{
			name: "exact match on all three signals",
			txn: model.Transaction{
				Description: "JCPL PAYMENT ELECTRIC",
				AmountCents: -14200,
				Date:        date(2026, time.February, 15),
			},
			bill: model.Bill{
				MatchPatterns: []string{"JCPL"},
				AmountCents:   14200,
				DueDay:        15,
			},
			wantMin: 0.99,
			wantMax: 1.0,
		},
		{
			name: "amount within tolerance still clears threshold",
			txn: model.Transaction{
				Description: "ELIZGAS PAYMENT",
				AmountCents: -9700,
				Date:        date(2026, time.February, 12),
			},
			bill: model.Bill{
				MatchPatterns: []string{"ELIZGAS"},
				AmountCents:   9500,
				DueDay:        12,
			},
			wantMin: DefaultMinScore,
			wantMax: 1.0,
		},
		{
			name: "description only scores exactly the description weight",
			txn: model.Transaction{
				Description: "NETFLIX.COM",
				AmountCents: -1599,
				Date:        date(2026, time.March, 3),
			},
			bill: model.Bill{
				MatchPatterns: []string{"NETFLIX"},
				AmountCents:   9900,
				DueDay:        20,
			},
			wantMin: 0.5,
			wantMax: 0.5,
		},
		{
			name: "amount alone stays below threshold",
			txn: model.Transaction{
				Description: "SOMETHING ELSE ENTIRELY",
				AmountCents: -14200,
				Date:        date(2026, time.February, 1),
			},
			bill: model.Bill{
				MatchPatterns: []string{"JCPL"},
				AmountCents:   14200,
				DueDay:        15,
			},
			wantMin: 0.3,
			wantMax: DefaultMinScore - 1e-9,
		},
		{
			name: "date alone stays below threshold",
			txn: model.Transaction{
				Description: "SOMETHING ELSE ENTIRELY",
				AmountCents: -99999,
				Date:        date(2026, time.February, 15),
			},
			bill: model.Bill{
				MatchPatterns: []string{"JCPL"},
				AmountCents:   14200,
				DueDay:        15,
			},
			wantMin: 0.2,
			wantMax: DefaultMinScore - 1e-9,
		},
		{
			name: "no signals at all",
			txn: model.Transaction{
				Description: "GROCERY RUN",
				AmountCents: -5000,
				Date:        date(2026, time.February, 1),
			},
			bill: model.Bill{
				MatchPatterns: []string{"JCPL"},
				AmountCents:   14200,
				DueDay:        15,
			},
			wantMin: 0.0,
			wantMax: 0.1,
		},
		{
			name: "due day clamps to short month",
			txn: model.Transaction{
				Description: "RENT CO",
				AmountCents: -90000,
				Date:        date(2026, time.February, 28),
			},
			bill: model.Bill{
				MatchPatterns: []string{"RENT CO"},
				AmountCents:   90000,
				DueDay:        31,
			},
			wantMin: 0.99,
			wantMax: 1.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Score(tt.txn, tt.bill, cfg)
			assert.GreaterOrEqual(t, got, tt.wantMin)
			assert.LessOrEqual(t, got, tt.wantMax)
		})
	}
}

func TestScoreBounds(t *testing.T) {
	cfg := DefaultConfig()

	txns := []model.Transaction{
		{Description: "JCPL PAYMENT", AmountCents: -14200, Date: date(2026, time.February, 15)},
		{Description: "", AmountCents: 0},
		{Description: "NETFLIX", AmountCents: -1599, Date: date(2026, time.January, 31)},
	}
	bills := []model.Bill{
		{MatchPatterns: []string{"JCPL"}, AmountCents: 14200, DueDay: 15},
		{MatchPatterns: nil, AmountCents: 0, DueDay: 0},
		{MatchPatterns: []string{""}, AmountCents: 1, DueDay: 31},
	}

	for _, txn := range txns {
		for _, bill := range bills {
			score := Score(txn, bill, cfg)
			assert.GreaterOrEqual(t, score, 0.0)
			assert.LessOrEqual(t, score, 1.0)
		}
	}
}

func TestBestMatch(t *testing.T) {
	cfg := DefaultConfig()
	txn := model.Transaction{
		ID:          "t1",
		Description: "JCPL PAYMENT ELECTRIC",
		AmountCents: -14200,
		Date:        date(2026, time.February, 15),
	}

	t.Run("picks highest scoring bill", func(t *testing.T) {
		bills := []model.Bill{
			{ID: "weak", MatchPatterns: []string{"JCPL"}},
			{ID: "strong", MatchPatterns: []string{"JCPL"}, AmountCents: 14200, DueDay: 15},
		}

		got, ok := BestMatch(txn, bills, cfg)
		assert.True(t, ok)
		assert.Equal(t, "strong", got.BillID)
	})

	t.Run("tie breaks to the first bill", func(t *testing.T) {
		bills := []model.Bill{
			{ID: "first", MatchPatterns: []string{"JCPL"}, AmountCents: 14200, DueDay: 15},
			{ID: "second", MatchPatterns: []string{"ELECTRIC"}, AmountCents: 14200, DueDay: 15},
		}

		got, ok := BestMatch(txn, bills, cfg)
		assert.True(t, ok)
		assert.Equal(t, "first", got.BillID)
	})

	t.Run("below threshold finds nothing", func(t *testing.T) {
		bills := []model.Bill{
			{ID: "b1", MatchPatterns: []string{"UNRELATED"}, AmountCents: 99999, DueDay: 1},
		}

		_, ok := BestMatch(txn, bills, cfg)
		assert.False(t, ok)
	})

	t.Run("no bills finds nothing", func(t *testing.T) {
		_, ok := BestMatch(txn, nil, cfg)
		assert.False(t, ok)
	})
}

func TestLearnedPattern(t *testing.T) {
	tests := []struct {
		name        string
		description string
		want        string
	}{
		{
			name:        "skips stop words and keeps three tokens",
			description: "ACH DEBIT PAYMENT TO JCPL ELECTRIC COMPANY NJ",
			want:        "JCPL ELECTRIC COMPANY",
		},
		{
			name:        "fewer than three meaningful tokens",
			description: "PAYMENT TO NETFLIX",
			want:        "NETFLIX",
		},
		{
			name:        "lowercase input uppercased",
			description: "online payment to spotify usa",
			want:        "SPOTIFY USA",
		},
		{
			name:        "all stop words yields nothing",
			description: "ACH DEBIT PAYMENT",
			want:        "",
		},
		{
			name:        "empty description",
			description: "",
			want:        "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, LearnedPattern(tt.description))
		})
	}
}

package recurring

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tallyho/tally-ho/internal/model"
	"github.com/tallyho/tally-ho/internal/service"
	"github.com/tallyho/tally-ho/internal/testutil"
)

var detectNow = time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

func newTestDetector(db *testutil.TestDB) *Detector {
	d := NewDetector(db.Storage, DefaultConfig())
	d.now = func() time.Time { return detectNow }
	return d
}

// seedCharges inserts count card charges spaced intervalDays apart, ending
// well inside the detection window.
func seedCharges(db *testutil.TestDB, description string, amountCents int64, count, intervalDays int) {
	start := detectNow.AddDate(0, 0, -(count * intervalDays))
	db.SeedMonthlyCharges(description, amountCents, start, count, intervalDays)
}

func TestDetect(t *testing.T) {
	ctx := context.Background()

	t.Run("detects a monthly subscription", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		detector := newTestDetector(db)

		seedCharges(db, "NETFLIX.COM", 1599, 5, 30)

		candidates, err := detector.Detect(ctx, 6)
		require.NoError(t, err)
		require.Len(t, candidates, 1)

		candidate := candidates[0]
		assert.Equal(t, "NETFLIX.COM", candidate.VendorKey)
		assert.Equal(t, model.FrequencyMonthly, candidate.Frequency)
		assert.GreaterOrEqual(t, candidate.Confidence, 60)
		assert.Equal(t, int64(1599), candidate.AvgAmountCents)
		assert.Equal(t, candidate.LastCharge.AddDate(0, 0, 30), candidate.NextCharge)
	})

	t.Run("two occurrences never produce a candidate", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		detector := newTestDetector(db)

		seedCharges(db, "SPOTIFY USA", 999, 2, 30)

		candidates, err := detector.Detect(ctx, 6)
		require.NoError(t, err)
		assert.Empty(t, candidates)
	})

	t.Run("irregular spacing is discarded", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		detector := newTestDetector(db)

		// Median interval of 15 days fits no frequency bucket.
		for _, offset := range []int{0, 15, 30, 45} {
			db.SeedTransaction(service.StoreCard, "card-1", "CORNER COFFEE", 450,
				detectNow.AddDate(0, 0, -90+offset))
		}

		candidates, err := detector.Detect(ctx, 6)
		require.NoError(t, err)
		assert.Empty(t, candidates)
	})

	t.Run("vendor boilerplate collapses into one group", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		detector := newTestDetector(db)

		start := detectNow.AddDate(0, 0, -150)
		descriptions := []string{
			"DEBIT CARD PURCHASE NETFLIX.COM",
			"NETFLIX.COM 880123456",
			"RECURRING PAYMENT NETFLIX.COM",
			"NETFLIX.COM",
		}
		for i, desc := range descriptions {
			db.SeedTransaction(service.StoreCard, "card-1", desc, 1599,
				start.AddDate(0, 0, i*30))
		}

		candidates, err := detector.Detect(ctx, 6)
		require.NoError(t, err)
		require.Len(t, candidates, 1)
		assert.Equal(t, "NETFLIX.COM", candidates[0].VendorKey)
		assert.Len(t, candidates[0].Dates, 4)
	})

	t.Run("scans both transaction stores", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		detector := newTestDetector(db)

		start := detectNow.AddDate(0, 0, -150)
		for i := 0; i < 2; i++ {
			db.SeedTransaction(service.StoreCard, "card-1", "HULU.COM", 1299,
				start.AddDate(0, 0, i*30))
		}
		for i := 2; i < 4; i++ {
			// Account debits are negative
			db.SeedTransaction(service.StoreAccount, "acct-1", "HULU.COM", -1299,
				start.AddDate(0, 0, i*30))
		}

		candidates, err := detector.Detect(ctx, 6)
		require.NoError(t, err)
		require.Len(t, candidates, 1)
		assert.Equal(t, int64(1299), candidates[0].AvgAmountCents)
		assert.Len(t, candidates[0].Dates, 4)
	})

	t.Run("existing subscription vendor key is excluded", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		detector := newTestDetector(db)

		seedCharges(db, "NETFLIX.COM", 1599, 5, 30)

		_, err := detector.AddSubscription(ctx, "Netflix.com", 1599, model.FrequencyMonthly)
		require.NoError(t, err)

		candidates, err := detector.Detect(ctx, 6)
		require.NoError(t, err)
		assert.Empty(t, candidates)
	})

	t.Run("active bill pattern is excluded", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		detector := newTestDetector(db)

		seedCharges(db, "JCPL ELECTRIC", 14200, 5, 30)
		db.SeedBill("Electric", []string{"JCPL ELECTRIC"}, 14200, 15)

		candidates, err := detector.Detect(ctx, 6)
		require.NoError(t, err)
		assert.Empty(t, candidates)
	})

	t.Run("old transactions fall outside the window", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		detector := newTestDetector(db)

		start := detectNow.AddDate(0, 0, -600)
		for i := 0; i < 5; i++ {
			db.SeedTransaction(service.StoreCard, "card-1", "ANCIENT GYM", 2999,
				start.AddDate(0, 0, i*30))
		}

		candidates, err := detector.Detect(ctx, 6)
		require.NoError(t, err)
		assert.Empty(t, candidates)
	})

	t.Run("empty store yields no candidates", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		detector := newTestDetector(db)

		candidates, err := detector.Detect(ctx, 6)
		require.NoError(t, err)
		assert.Empty(t, candidates)
	})
}

func TestConfirmCandidates(t *testing.T) {
	ctx := context.Background()

	t.Run("creates subscriptions from candidates", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		detector := newTestDetector(db)

		seedCharges(db, "NETFLIX.COM", 1599, 5, 30)

		candidates, err := detector.Detect(ctx, 6)
		require.NoError(t, err)
		require.Len(t, candidates, 1)

		created, err := detector.ConfirmCandidates(ctx, candidates)
		require.NoError(t, err)
		assert.Equal(t, 1, created)

		sub, err := db.Storage.GetSubscriptionByVendorKey(ctx, "NETFLIX.COM")
		require.NoError(t, err)
		assert.Equal(t, "Netflix.com", sub.Name)
		assert.Equal(t, model.SourceDetected, sub.Source)
		assert.Equal(t, model.SubscriptionActive, sub.Status)
		assert.Equal(t, int64(1599), sub.AmountCents)
	})

	t.Run("detect then confirm twice creates one subscription", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		detector := newTestDetector(db)

		seedCharges(db, "NETFLIX.COM", 1599, 5, 30)

		candidates, err := detector.Detect(ctx, 6)
		require.NoError(t, err)
		created, err := detector.ConfirmCandidates(ctx, candidates)
		require.NoError(t, err)
		assert.Equal(t, 1, created)

		// Second full pass: the vendor is now excluded, and confirming stale
		// candidates creates nothing new.
		again, err := detector.Detect(ctx, 6)
		require.NoError(t, err)
		assert.Empty(t, again)

		created, err = detector.ConfirmCandidates(ctx, candidates)
		require.NoError(t, err)
		assert.Equal(t, 0, created)

		subs, err := db.Storage.ListSubscriptions(ctx, false)
		require.NoError(t, err)
		assert.Len(t, subs, 1)
	})

	t.Run("empty candidate list is a no-op", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		detector := newTestDetector(db)

		created, err := detector.ConfirmCandidates(ctx, nil)
		require.NoError(t, err)
		assert.Equal(t, 0, created)
	})
}

func TestAddSubscription(t *testing.T) {
	ctx := context.Background()

	t.Run("creates a manual subscription", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		detector := newTestDetector(db)

		sub, err := detector.AddSubscription(ctx, "Gym Membership", 2999, model.FrequencyMonthly)
		require.NoError(t, err)
		assert.Equal(t, "GYM MEMBERSHIP", sub.VendorKey)
		assert.Equal(t, model.SourceManual, sub.Source)
	})

	t.Run("rejects invalid input", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		detector := newTestDetector(db)

		_, err := detector.AddSubscription(ctx, "", 100, model.FrequencyMonthly)
		assert.Error(t, err)

		_, err = detector.AddSubscription(ctx, "Thing", -1, model.FrequencyMonthly)
		assert.Error(t, err)

		_, err = detector.AddSubscription(ctx, "Thing", 100, model.Frequency("fortnightly"))
		assert.Error(t, err)
	})

	t.Run("duplicate vendor key is rejected", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		detector := newTestDetector(db)

		_, err := detector.AddSubscription(ctx, "Netflix", 1599, model.FrequencyMonthly)
		require.NoError(t, err)

		_, err = detector.AddSubscription(ctx, "netflix", 1599, model.FrequencyMonthly)
		assert.Error(t, err)
	})
}

package model

import "time"

// MatchCandidate records a single accepted statement-link decision from one
// linking pass. Transient; never persisted.
type MatchCandidate struct {
	TransactionID string
	BillID        string
	Score         float64
}

// DetectionCandidate is a recurring charge surfaced by the detector, awaiting
// user confirmation. Transient; confirmation turns it into a Subscription.
type DetectionCandidate struct {
	LastCharge     time.Time
	NextCharge     time.Time
	VendorKey      string
	Frequency      Frequency
	AmountsCents   []int64
	Dates          []time.Time
	AvgAmountCents int64
	Confidence     int // 0-100
}

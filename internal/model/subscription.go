package model

import "time"

// SubscriptionStatus tracks the lifecycle of a subscription.
type SubscriptionStatus string

// Subscription statuses.
const (
	SubscriptionActive    SubscriptionStatus = "active"
	SubscriptionPaused    SubscriptionStatus = "paused"
	SubscriptionCancelled SubscriptionStatus = "cancelled"
)

// SubscriptionSource indicates how a subscription record was created.
type SubscriptionSource string

const (
	// SourceDetected indicates the subscription was surfaced by the recurring
	// charge detector and confirmed by the user.
	SourceDetected SubscriptionSource = "detected"
	// SourceManual indicates the subscription was entered directly.
	SourceManual SubscriptionSource = "manual"
)

// Subscription represents a confirmed recurring charge. VendorKey is the
// normalized vendor identity and is unique across all subscriptions; it is the
// idempotency key that prevents the same recurring charge from being recorded
// twice.
type Subscription struct {
	NextChargeDate time.Time
	LastChargeDate time.Time
	FirstDetected  time.Time
	ID             string
	Name           string
	VendorKey      string
	Frequency      Frequency
	Status         SubscriptionStatus
	Source         SubscriptionSource
	AmountCents    int64
	Confidence     int // 0-100, 0 for manual entries
}

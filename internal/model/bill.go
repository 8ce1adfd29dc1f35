package model

// Frequency describes how often a recurring charge repeats.
type Frequency string

// Supported frequencies.
const (
	FrequencyWeekly    Frequency = "weekly"
	FrequencyMonthly   Frequency = "monthly"
	FrequencyQuarterly Frequency = "quarterly"
	FrequencyYearly    Frequency = "yearly"
)

// Valid reports whether the frequency is one of the supported values.
func (f Frequency) Valid() bool {
	switch f {
	case FrequencyWeekly, FrequencyMonthly, FrequencyQuarterly, FrequencyYearly:
		return true
	}
	return false
}

// Bill represents a known recurring obligation that transactions are matched
// against. MatchPatterns grow over time as manual confirmations are learned;
// all other fields are managed by the bills CLI.
type Bill struct {
	ID            string
	Name          string
	MatchPatterns []string
	Frequency     Frequency
	AmountCents   int64
	DueDay        int // Day of month the bill is due
	Active        bool
}

// HasPattern reports whether the bill already carries the given match pattern.
func (b *Bill) HasPattern(pattern string) bool {
	for _, p := range b.MatchPatterns {
		if p == pattern {
			return true
		}
	}
	return false
}

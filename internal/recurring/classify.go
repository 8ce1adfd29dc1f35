// Package recurring detects previously-unknown recurring charges by grouping
// transaction history by normalized vendor key and classifying the spacing of
// each group's occurrences.
package recurring

import (
	"sort"

	"github.com/tallyho/tally-ho/internal/model"
)

// Config holds the tunable detection heuristics.
type Config struct {
	// WindowMonths bounds how far back the detector scans.
	WindowMonths int
	// MinOccurrences is the smallest vendor group worth classifying.
	MinOccurrences int
	// MinConfidence discards candidates scoring below it. Like the linker
	// weights, the value is historical rather than derived; tune against
	// real data before trusting it.
	MinConfidence int
}

// Default heuristic constants.
const (
	DefaultWindowMonths   = 6
	DefaultMinOccurrences = 3
	DefaultMinConfidence  = 40
)

// DefaultConfig returns the default detection heuristics.
func DefaultConfig() Config {
	return Config{
		WindowMonths:   DefaultWindowMonths,
		MinOccurrences: DefaultMinOccurrences,
		MinConfidence:  DefaultMinConfidence,
	}
}

// bucket is an inclusive day-interval range for one frequency.
type bucket struct {
	frequency model.Frequency
	lo        int
	hi        int
}

var frequencyBuckets = []bucket{
	{model.FrequencyWeekly, 5, 9},
	{model.FrequencyMonthly, 25, 35},
	{model.FrequencyQuarterly, 80, 100},
	{model.FrequencyYearly, 350, 380},
}

// canonicalIntervalDays is the expected day spacing for each frequency, used
// to predict the next charge date.
var canonicalIntervalDays = map[model.Frequency]int{
	model.FrequencyWeekly:    7,
	model.FrequencyMonthly:   30,
	model.FrequencyQuarterly: 90,
	model.FrequencyYearly:    365,
}

// CanonicalIntervalDays returns the expected day spacing for a frequency.
func CanonicalIntervalDays(frequency model.Frequency) int {
	return canonicalIntervalDays[frequency]
}

// ClassifyFrequency buckets the median of the day-intervals into a frequency.
// The second return is false when the median falls in no bucket (irregular
// spacing) or there are no intervals.
func ClassifyFrequency(intervals []int) (model.Frequency, bool) {
	if len(intervals) == 0 {
		return "", false
	}

	sorted := make([]int, len(intervals))
	copy(sorted, intervals)
	sort.Ints(sorted)
	median := sorted[len(sorted)/2]

	for _, b := range frequencyBuckets {
		if median >= b.lo && median <= b.hi {
			return b.frequency, true
		}
	}
	return "", false
}

// Confidence scores a vendor group 0-100: occurrence count caps at 30,
// interval consistency (fraction of intervals inside the chosen bucket) caps
// at 40, amount consistency caps at 30 with full credit for spreads within
// 10% of the mean decaying to zero at 30%.
func Confidence(count int, intervals []int, amounts []int64, frequency model.Frequency) int {
	occurrences := count
	if occurrences > 6 {
		occurrences = 6
	}
	score := occurrences * 5

	score += intervalConsistency(intervals, frequency)
	score += amountConsistency(amounts)

	return score
}

func intervalConsistency(intervals []int, frequency model.Frequency) int {
	if len(intervals) == 0 {
		return 0
	}

	var lo, hi int
	for _, b := range frequencyBuckets {
		if b.frequency == frequency {
			lo, hi = b.lo, b.hi
			break
		}
	}

	inRange := 0
	for _, interval := range intervals {
		if interval >= lo && interval <= hi {
			inRange++
		}
	}
	return int(float64(inRange) / float64(len(intervals)) * 40)
}

func amountConsistency(amounts []int64) int {
	if len(amounts) == 0 {
		return 0
	}

	var sum int64
	for _, a := range amounts {
		sum += a
	}
	mean := float64(sum) / float64(len(amounts))
	if mean <= 0 {
		return 0
	}

	var maxSpread float64
	for _, a := range amounts {
		spread := (float64(a) - mean) / mean
		if spread < 0 {
			spread = -spread
		}
		if spread > maxSpread {
			maxSpread = spread
		}
	}

	if maxSpread <= 0.10 {
		return 30
	}
	score := int(30 * (1 - (maxSpread-0.10)/0.20))
	if score < 0 {
		return 0
	}
	return score
}

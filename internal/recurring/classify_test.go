package recurring

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tallyho/tally-ho/internal/model"
)

func TestClassifyFrequency(t *testing.T) {
	tests := []struct {
		name      string
		intervals []int
		want      model.Frequency
		wantOK    bool
	}{
		{
			name:      "steady monthly",
			intervals: []int{30, 30, 30, 30},
			want:      model.FrequencyMonthly,
			wantOK:    true,
		},
		{
			name:      "weekly",
			intervals: []int{7, 7, 6, 8},
			want:      model.FrequencyWeekly,
			wantOK:    true,
		},
		{
			name:      "quarterly",
			intervals: []int{91, 89, 92},
			want:      model.FrequencyQuarterly,
			wantOK:    true,
		},
		{
			name:      "yearly",
			intervals: []int{365, 366},
			want:      model.FrequencyYearly,
			wantOK:    true,
		},
		{
			name:      "bucket edges are inclusive",
			intervals: []int{35},
			want:      model.FrequencyMonthly,
			wantOK:    true,
		},
		{
			name:      "median outside every bucket",
			intervals: []int{15, 16, 14},
			wantOK:    false,
		},
		{
			name:      "one outlier does not move the median",
			intervals: []int{30, 30, 30, 120},
			want:      model.FrequencyMonthly,
			wantOK:    true,
		},
		{
			name:      "no intervals",
			intervals: nil,
			wantOK:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ClassifyFrequency(tt.intervals)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestConfidence(t *testing.T) {
	t.Run("perfect monthly run scores all components", func(t *testing.T) {
		intervals := []int{30, 30, 30, 30}
		amounts := []int64{1599, 1599, 1599, 1599, 1599}

		got := Confidence(5, intervals, amounts, model.FrequencyMonthly)
		// 5 occurrences * 5 + full interval consistency + full amount consistency
		assert.Equal(t, 25+40+30, got)
	})

	t.Run("occurrence component caps at six", func(t *testing.T) {
		intervals := []int{30, 30, 30, 30, 30, 30, 30, 30, 30}
		amounts := make([]int64, 10)
		for i := range amounts {
			amounts[i] = 999
		}

		got := Confidence(10, intervals, amounts, model.FrequencyMonthly)
		assert.Equal(t, 30+40+30, got)
	})

	t.Run("irregular intervals reduce consistency", func(t *testing.T) {
		intervals := []int{30, 60, 30, 15}
		amounts := []int64{1000, 1000, 1000, 1000, 1000}

		got := Confidence(5, intervals, amounts, model.FrequencyMonthly)
		// 2 of 4 intervals inside [25,35]
		assert.Equal(t, 25+20+30, got)
	})

	t.Run("wild amounts score nothing for consistency", func(t *testing.T) {
		intervals := []int{30, 30}
		amounts := []int64{1000, 5000, 200}

		got := Confidence(3, intervals, amounts, model.FrequencyMonthly)
		assert.Equal(t, 15+40, got)
	})

	t.Run("moderate spread scores partial amount credit", func(t *testing.T) {
		// mean 1100, spread ~0.18 -> partial credit between 0 and 30
		intervals := []int{30, 30}
		amounts := []int64{900, 1100, 1300}

		got := Confidence(3, intervals, amounts, model.FrequencyMonthly)
		assert.Greater(t, got, 15+40)
		assert.Less(t, got, 15+40+30)
	})

	t.Run("score stays within 0 and 100", func(t *testing.T) {
		got := Confidence(100, []int{30, 30, 30}, []int64{1, 1, 1, 1}, model.FrequencyMonthly)
		assert.LessOrEqual(t, got, 100)
		assert.GreaterOrEqual(t, got, 0)
	})
}

func TestCanonicalIntervalDays(t *testing.T) {
	assert.Equal(t, 7, CanonicalIntervalDays(model.FrequencyWeekly))
	assert.Equal(t, 30, CanonicalIntervalDays(model.FrequencyMonthly))
	assert.Equal(t, 90, CanonicalIntervalDays(model.FrequencyQuarterly))
	assert.Equal(t, 365, CanonicalIntervalDays(model.FrequencyYearly))
}

func TestTitleCase(t *testing.T) {
	assert.Equal(t, "Netflix.com", titleCase("NETFLIX.COM"))
	assert.Equal(t, "Spotify Usa", titleCase("SPOTIFY USA"))
	assert.Equal(t, "", titleCase(""))
}

package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestDefaults(t *testing.T) {
	v := viper.New()
	SetDefaults(v)

	linker := LinkerConfig(v)
	assert.Equal(t, int64(500), linker.AmountToleranceCents)
	assert.Equal(t, 7, linker.DateWindowDays)
	assert.InDelta(t, 0.4, linker.MinScore, 1e-9)

	detector := DetectorConfig(v)
	assert.Equal(t, 6, detector.WindowMonths)
	assert.Equal(t, 3, detector.MinOccurrences)
	assert.Equal(t, 40, detector.MinConfidence)
}

func TestOverrides(t *testing.T) {
	v := viper.New()
	SetDefaults(v)
	v.Set("linker.amount_tolerance_cents", 1000)
	v.Set("detector.min_confidence", 60)

	assert.Equal(t, int64(1000), LinkerConfig(v).AmountToleranceCents)
	assert.Equal(t, 60, DetectorConfig(v).MinConfidence)
}

func TestExpandPath(t *testing.T) {
	t.Setenv("TALLY_TEST_DIR", "/tmp/tally")

	assert.Equal(t, "/tmp/tally/data.db", ExpandPath("$TALLY_TEST_DIR/data.db"))
	assert.Equal(t, "", ExpandPath(""))
	assert.Equal(t, "/absolute/path", ExpandPath("/absolute/path"))
}

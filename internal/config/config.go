// Package config provides configuration utilities for the application.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/tallyho/tally-ho/internal/match"
	"github.com/tallyho/tally-ho/internal/recurring"
)

// SetDefaults registers every configuration key with its default value.
// The engine heuristics are deliberately overridable; see the linker and
// detector Config docs.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("database.path", "~/.local/share/tally/tally.db")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetDefault("linker.amount_tolerance_cents", match.DefaultAmountToleranceCents)
	v.SetDefault("linker.date_window_days", match.DefaultDateWindowDays)
	v.SetDefault("linker.min_score", match.DefaultMinScore)

	v.SetDefault("detector.window_months", recurring.DefaultWindowMonths)
	v.SetDefault("detector.min_occurrences", recurring.DefaultMinOccurrences)
	v.SetDefault("detector.min_confidence", recurring.DefaultMinConfidence)
}

// LinkerConfig reads the statement-linker heuristics.
func LinkerConfig(v *viper.Viper) match.Config {
	return match.Config{
		AmountToleranceCents: v.GetInt64("linker.amount_tolerance_cents"),
		DateWindowDays:       v.GetInt("linker.date_window_days"),
		MinScore:             v.GetFloat64("linker.min_score"),
	}
}

// DetectorConfig reads the recurring-charge-detector heuristics.
func DetectorConfig(v *viper.Viper) recurring.Config {
	return recurring.Config{
		WindowMonths:   v.GetInt("detector.window_months"),
		MinOccurrences: v.GetInt("detector.min_occurrences"),
		MinConfidence:  v.GetInt("detector.min_confidence"),
	}
}

// DatabasePath returns the configured database path with ~ and environment
// variables expanded.
func DatabasePath(v *viper.Viper) string {
	return ExpandPath(v.GetString("database.path"))
}

// ExpandPath expands ~ and environment variables in a file path.
func ExpandPath(path string) string {
	if path == "" {
		return path
	}

	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(home, path[2:])
		}
	} else if path == "~" {
		home, err := os.UserHomeDir()
		if err == nil {
			path = home
		}
	}

	return os.ExpandEnv(path)
}

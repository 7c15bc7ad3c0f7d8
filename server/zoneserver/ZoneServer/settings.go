package main

import (
	"math"
	"strings"

	"go.uber.org/zap"
)

const (
	siegeReloadPluginName = "SiegeReload"

	// CurrentVersion is stamped onto every settings document this build writes.
	CurrentVersion = "1.0.1"
	// Documents older than this are discarded in favour of defaults.
	migrationThreshold = "1.0.0"

	defaultCatapultReloadSeconds float32 = 6
	defaultBallistaReloadSeconds float32 = 3
)

type Settings struct {
	Version               string  `json:"Version"`
	CatapultReloadSeconds float32 `json:"Catapult Reload Duration Seconds"`
	BallistaReloadSeconds float32 `json:"Ballista Reload Duration Seconds"`
}

func DefaultSettings() Settings {
	return Settings{
		Version:               CurrentVersion,
		CatapultReloadSeconds: defaultCatapultReloadSeconds,
		BallistaReloadSeconds: defaultBallistaReloadSeconds,
	}
}

func factoryDurations() Durations {
	return Durations{
		CategoryCatapult: defaultCatapultReloadSeconds,
		CategoryBallista: defaultBallistaReloadSeconds,
	}
}

func (s Settings) Durations() Durations {
	return Durations{
		CategoryCatapult: s.CatapultReloadSeconds,
		CategoryBallista: s.BallistaReloadSeconds,
	}
}

// versionLess orders version tags by plain string comparison. Deployed
// documents were migrated under this ordering, so "1.10.0" < "1.9.0" holds.
func versionLess(a, b string) bool {
	return strings.Compare(a, b) < 0
}

// migrateSettings brings s up to CurrentVersion. It reports whether anything
// changed.
func migrateSettings(s Settings, logger *zap.Logger) (Settings, bool) {
	if !versionLess(s.Version, CurrentVersion) {
		return s, false
	}
	logger = loggerOrNop(logger)
	logger.Warn("settings changes detected, updating", zap.String("from", s.Version))

	from := s.Version
	if versionLess(s.Version, migrationThreshold) {
		s = DefaultSettings()
	}
	s.Version = CurrentVersion

	logger.Warn("settings update complete",
		zap.String("from", from),
		zap.String("to", CurrentVersion),
	)
	return s, true
}

func validReloadSeconds(v float32) bool {
	f := float64(v)
	return f > 0 && !math.IsNaN(f) && !math.IsInf(f, 0)
}

// sanitizeSettings replaces unusable durations with the category default.
func sanitizeSettings(s Settings, logger *zap.Logger) (Settings, bool) {
	logger = loggerOrNop(logger)
	changed := false
	if !validReloadSeconds(s.CatapultReloadSeconds) {
		logger.Warn("invalid catapult reload duration, using default",
			zap.Float32("configured", s.CatapultReloadSeconds),
			zap.Float32("default", defaultCatapultReloadSeconds),
		)
		s.CatapultReloadSeconds = defaultCatapultReloadSeconds
		changed = true
	}
	if !validReloadSeconds(s.BallistaReloadSeconds) {
		logger.Warn("invalid ballista reload duration, using default",
			zap.Float32("configured", s.BallistaReloadSeconds),
			zap.Float32("default", defaultBallistaReloadSeconds),
		)
		s.BallistaReloadSeconds = defaultBallistaReloadSeconds
		changed = true
	}
	return s, changed
}

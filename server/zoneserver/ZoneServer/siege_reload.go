package main

import (
	"context"
	"errors"

	"go.uber.org/zap"
)

type entitySource interface {
	Entities() []Entity
	OnEntitySpawned(fn func(Entity)) func()
}

type settingsLoader interface {
	Load(ctx context.Context) (Settings, error)
}

type SweepResult struct {
	Patched int
	Skipped int
}

// SiegeReloadSynchronizer keeps every live catapult and ballista reload time
// in line with the active settings. It is driven from the simulation
// goroutine only and holds no locks.
type SiegeReloadSynchronizer struct {
	world     entitySource
	store     settingsLoader
	logger    *zap.Logger
	weaponFor func(Entity) (SiegeWeapon, bool)

	settings    *Settings
	unsubscribe func()
}

func NewSiegeReloadSynchronizer(world entitySource, store settingsLoader, logger *zap.Logger) *SiegeReloadSynchronizer {
	return &SiegeReloadSynchronizer{
		world:     world,
		store:     store,
		logger:    loggerOrNop(logger).Named("siege_reload"),
		weaponFor: siegeWeaponFor,
	}
}

func (s *SiegeReloadSynchronizer) Active() bool { return s.settings != nil }

func (s *SiegeReloadSynchronizer) Settings() (Settings, bool) {
	if s.settings == nil {
		return Settings{}, false
	}
	return *s.settings, true
}

// Activate loads settings, patches the current population and starts
// patching new launchers as they spawn.
func (s *SiegeReloadSynchronizer) Activate(ctx context.Context) {
	if s.Active() {
		return
	}
	settings := s.loadSettings(ctx)
	s.settings = &settings
	s.ApplyToAll(settings.Durations())
	s.unsubscribe = s.world.OnEntitySpawned(s.onEntitySpawned)
	s.logger.Info("siege reload active",
		zap.String("version", settings.Version),
		zap.Float32("catapult_seconds", settings.CatapultReloadSeconds),
		zap.Float32("ballista_seconds", settings.BallistaReloadSeconds),
	)
}

// Deactivate puts factory reload times back and drops the spawn hook.
func (s *SiegeReloadSynchronizer) Deactivate() {
	if !s.Active() {
		return
	}
	s.RestoreFactoryDefaults()
	if s.unsubscribe != nil {
		s.unsubscribe()
		s.unsubscribe = nil
	}
	s.settings = nil
	s.logger.Info("siege reload inactive")
}

// Reload re-reads settings and sweeps again. No-op while inactive.
func (s *SiegeReloadSynchronizer) Reload(ctx context.Context) {
	if !s.Active() {
		return
	}
	settings := s.loadSettings(ctx)
	s.settings = &settings
	s.ApplyToAll(settings.Durations())
}

func (s *SiegeReloadSynchronizer) loadSettings(ctx context.Context) Settings {
	if s.store == nil {
		return DefaultSettings()
	}
	settings, err := s.store.Load(ctx)
	if err != nil {
		s.logger.Warn("settings write-back failed", zap.Error(err))
	}
	return settings
}

// ApplyToAll writes the duration for each launcher's category. Entities that
// are not launchers, or whose category is missing from durations, are left
// alone. A failed write skips that entity only.
func (s *SiegeReloadSynchronizer) ApplyToAll(durations Durations) SweepResult {
	var res SweepResult
	for _, e := range s.world.Entities() {
		weapon, ok := s.weaponFor(e)
		if !ok {
			continue
		}
		seconds, ok := durations[weapon.Category()]
		if !ok {
			continue
		}
		if err := s.ApplyToOne(weapon, seconds); err != nil {
			res.Skipped++
			s.logSkipped(e, weapon.Category(), err)
			continue
		}
		res.Patched++
	}

	s.logger.Info("reload durations applied", sweepFields(res, durations)...)
	return res
}

// sweepFields reports only the categories the sweep was asked to write.
func sweepFields(res SweepResult, durations Durations) []zap.Field {
	fields := []zap.Field{
		zap.Int("patched", res.Patched),
		zap.Int("skipped", res.Skipped),
	}
	for _, c := range []Category{CategoryCatapult, CategoryBallista} {
		if seconds, ok := durations[c]; ok {
			fields = append(fields, zap.Float32(c.String()+"_seconds", seconds))
		}
	}
	return fields
}

func (s *SiegeReloadSynchronizer) ApplyToOne(weapon SiegeWeapon, seconds float32) error {
	return weapon.SetReloadDuration(seconds)
}

func (s *SiegeReloadSynchronizer) RestoreFactoryDefaults() SweepResult {
	return s.ApplyToAll(factoryDurations())
}

func (s *SiegeReloadSynchronizer) onEntitySpawned(e Entity) {
	if s.settings == nil {
		return
	}
	weapon, ok := s.weaponFor(e)
	if !ok {
		return
	}
	seconds, ok := s.settings.Durations()[weapon.Category()]
	if !ok {
		return
	}
	if err := s.ApplyToOne(weapon, seconds); err != nil {
		s.logSkipped(e, weapon.Category(), err)
	}
}

func (s *SiegeReloadSynchronizer) logSkipped(e Entity, category Category, err error) {
	fields := []zap.Field{
		zap.Stringer("entity", e.ID()),
		zap.Stringer("category", category),
		zap.Error(err),
	}
	if errors.Is(err, ErrEntityInvalid) {
		s.logger.Debug("entity gone before reload write", fields...)
		return
	}
	s.logger.Warn("reload field not writable, skipping entity", fields...)
}

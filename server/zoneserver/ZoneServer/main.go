package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := loadZoneConfig("config.json")

	logger, err := newLogger(cfg.ServerName, cfg.Logging)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("=================================")
	logger.Info(cfg.ServerName)
	logger.Info("Status: STARTED")
	logger.Info("=================================")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mode := persistenceModeFromEnv(logger)
	store, err := OpenSettingsStore(ctx, siegeReloadPluginName, cfg.PluginConfigDir, mode, os.Getenv("A3_SETTINGS_DSN"), logger)
	if err != nil {
		logger.Error("open settings store", zap.Error(err))
		return fmt.Errorf("open settings store: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Warn("close settings store", zap.Error(err))
		}
	}()

	world := NewWorld(World1, "The Known World")
	seeded := seedWorldEntities(world, cfg.Seed)
	logger.Info("world ready", zap.String("world", world.Name), zap.Int("entities", seeded))

	siege := NewSiegeReloadSynchronizer(world, store, logger)
	siege.Activate(ctx)

	requestReload := func() {
		world.Post(func() { siege.Reload(ctx) })
	}

	if notifier := newReloadNotifier(cfg.Redis, siegeReloadPluginName, logger); notifier != nil {
		defer func() { _ = notifier.Close() }()
		go func() {
			if err := notifier.Run(ctx, requestReload); err != nil {
				logger.Warn("reload notifier stopped", zap.Error(err))
			}
		}()
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigChan)

	tickRate := time.Duration(cfg.TickRateMS) * time.Millisecond
	ticker := time.NewTicker(tickRate)
	defer ticker.Stop()

	for {
		select {
		case now := <-ticker.C:
			fired := world.Tick(now)
			logger.Debug("server tick", zap.Int("tick_ms", cfg.TickRateMS), zap.Int("fired", fired))
		case sig := <-sigChan:
			if sig == syscall.SIGHUP {
				logger.Info("reload requested", zap.String("signal", sig.String()))
				requestReload()
				continue
			}
			logger.Info("shutdown signal", zap.String("signal", sig.String()))
			world.RunPending()
			siege.Deactivate()
			cancel()
			logger.Info("ZoneServer shut down cleanly")
			return nil
		}
	}
}

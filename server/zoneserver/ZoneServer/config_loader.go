package main

import (
	"encoding/json"
	"os"
	"strings"
)

const (
	defaultServerName      = "Project A3 Zone Server"
	defaultTickRateMS      = 1000
	defaultPluginConfigDir = "data/plugins"
	defaultReloadChannel   = "zoneserver:plugins:reload"
)

type ZoneConfig struct {
	ServerName      string        `json:"server_name"`
	TickRateMS      int           `json:"tick_rate_ms"`
	PluginConfigDir string        `json:"plugin_config_dir"`
	Logging         LoggingConfig `json:"logging"`
	Redis           RedisConfig   `json:"redis"`
	Seed            SeedConfig    `json:"seed"`
}

// LoggingConfig selects the zap encoder. Output, when set, is a file that
// receives a copy of every entry alongside stderr.
type LoggingConfig struct {
	Level  string `json:"level"`
	Format string `json:"format"`
	Output string `json:"output"`
}

// RedisConfig points at the pub/sub channel used to request plugin reloads.
// An empty Addr disables the subscriber.
type RedisConfig struct {
	Addr    string `json:"addr"`
	Channel string `json:"channel"`
}

// SeedConfig is the entity population spawned before plugins activate.
type SeedConfig struct {
	Catapults int `json:"catapults"`
	Ballistas int `json:"ballistas"`
	Rams      int `json:"rams"`
	Mobs      int `json:"mobs"`
}

func defaultZoneConfig() ZoneConfig {
	return ZoneConfig{
		ServerName:      defaultServerName,
		TickRateMS:      defaultTickRateMS,
		PluginConfigDir: defaultPluginConfigDir,
		Logging:         LoggingConfig{Level: "info", Format: "console"},
		Redis:           RedisConfig{Channel: defaultReloadChannel},
		Seed:            SeedConfig{Catapults: 2, Ballistas: 1, Rams: 1, Mobs: 2},
	}
}

func loadZoneConfig(path string) ZoneConfig {
	cfg := defaultZoneConfig()

	data, err := os.ReadFile(path)
	if err == nil {
		if err := json.Unmarshal(data, &cfg); err != nil {
			cfg = defaultZoneConfig()
		}
	}

	if addr := strings.TrimSpace(os.Getenv("A3_REDIS_ADDR")); addr != "" {
		cfg.Redis.Addr = addr
	}

	if strings.TrimSpace(cfg.ServerName) == "" {
		cfg.ServerName = defaultServerName
	}
	if cfg.TickRateMS <= 0 {
		cfg.TickRateMS = defaultTickRateMS
	}
	if strings.TrimSpace(cfg.PluginConfigDir) == "" {
		cfg.PluginConfigDir = defaultPluginConfigDir
	}
	if strings.TrimSpace(cfg.Logging.Level) == "" {
		cfg.Logging.Level = "info"
	}
	if strings.TrimSpace(cfg.Redis.Channel) == "" {
		cfg.Redis.Channel = defaultReloadChannel
	}
	if cfg.Seed.Catapults < 0 {
		cfg.Seed.Catapults = 0
	}
	if cfg.Seed.Ballistas < 0 {
		cfg.Seed.Ballistas = 0
	}
	if cfg.Seed.Rams < 0 {
		cfg.Seed.Rams = 0
	}
	if cfg.Seed.Mobs < 0 {
		cfg.Seed.Mobs = 0
	}

	return cfg
}

package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

const (
	persistenceDB       = "db"
	persistenceHybrid   = "hybrid"
	persistenceJSON     = "json"
	persistencePostgres = "postgres"

	settingsDBFile = "settings.db"
)

var ErrUnknownPersistenceMode = errors.New("unknown persistence mode")

type settingsBackend interface {
	read(ctx context.Context) (Settings, bool, error)
	write(ctx context.Context, s Settings) error
	close() error
}

func persistenceModeFromEnv(logger *zap.Logger) string {
	raw := strings.ToLower(strings.TrimSpace(os.Getenv("A3_PERSISTENCE_MODE")))
	switch raw {
	case "", "db", "sqlite":
		return persistenceDB
	case "hybrid":
		return persistenceHybrid
	case "json", "legacy":
		return persistenceJSON
	case "postgres", "postgresql", "pg":
		return persistencePostgres
	default:
		loggerOrNop(logger).Warn("unknown A3_PERSISTENCE_MODE, defaulting to db", zap.String("mode", raw))
		return persistenceDB
	}
}

// SettingsStore persists one plugin's settings document.
type SettingsStore struct {
	name    string
	mode    string
	backend settingsBackend
	logger  *zap.Logger
}

// OpenSettingsStore opens the backend for mode. dir holds the JSON document
// and the SQLite file; dsn is only used in postgres mode.
func OpenSettingsStore(ctx context.Context, name, dir, mode, dsn string, logger *zap.Logger) (*SettingsStore, error) {
	logger = loggerOrNop(logger).With(zap.String("plugin", name), zap.String("mode", mode))
	legacy := &jsonSettingsBackend{path: filepath.Join(dir, name+".json")}

	var backend settingsBackend
	switch mode {
	case persistenceJSON:
		backend = legacy
	case persistenceDB:
		db, err := openSQLiteSettingsBackend(ctx, filepath.Join(dir, settingsDBFile), name, legacy, logger)
		if err != nil {
			return nil, fmt.Errorf("settings db unavailable in db mode: %w", err)
		}
		backend = db
	case persistenceHybrid:
		db, err := openSQLiteSettingsBackend(ctx, filepath.Join(dir, settingsDBFile), name, legacy, logger)
		if err != nil {
			logger.Warn("settings db unavailable, falling back to JSON", zap.Error(err))
		}
		backend = &hybridSettingsBackend{db: db, fallback: legacy, logger: logger}
	case persistencePostgres:
		if strings.TrimSpace(dsn) == "" {
			return nil, errors.New("postgres mode requires A3_SETTINGS_DSN")
		}
		pg, err := openPostgresSettingsBackend(ctx, dsn, name)
		if err != nil {
			return nil, fmt.Errorf("settings db unavailable in postgres mode: %w", err)
		}
		backend = pg
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownPersistenceMode, mode)
	}

	return &SettingsStore{name: name, mode: mode, backend: backend, logger: logger}, nil
}

func (s *SettingsStore) Mode() string { return s.mode }

func (s *SettingsStore) Defaults() Settings { return DefaultSettings() }

// Load reads, migrates and sanitizes the stored document, then writes the
// result back. The returned Settings is always usable; the error only
// reports a failed write-back.
func (s *SettingsStore) Load(ctx context.Context) (Settings, error) {
	settings, found, err := s.backend.read(ctx)
	if err != nil {
		// Keep the broken document on disk for the operator to fix.
		s.logger.Warn("settings document unreadable, using defaults", zap.Error(err))
		return DefaultSettings(), nil
	}
	if !found {
		s.logger.Info("no settings document, using defaults")
		settings = DefaultSettings()
	} else {
		settings, _ = migrateSettings(settings, s.logger)
	}
	settings, _ = sanitizeSettings(settings, s.logger)

	if err := s.Save(ctx, settings); err != nil {
		return settings, fmt.Errorf("write back settings: %w", err)
	}
	return settings, nil
}

func (s *SettingsStore) Save(ctx context.Context, settings Settings) error {
	return s.backend.write(ctx, settings)
}

func (s *SettingsStore) Close() error {
	if s == nil || s.backend == nil {
		return nil
	}
	return s.backend.close()
}

type jsonSettingsBackend struct {
	path string
}

func (b *jsonSettingsBackend) read(_ context.Context) (Settings, bool, error) {
	data, err := os.ReadFile(b.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Settings{}, false, nil
		}
		return Settings{}, false, err
	}
	var s Settings
	if err := json.Unmarshal(data, &s); err != nil {
		return Settings{}, false, fmt.Errorf("decode %s: %w", b.path, err)
	}
	return s, true, nil
}

func (b *jsonSettingsBackend) write(_ context.Context, s Settings) error {
	if err := os.MkdirAll(filepath.Dir(b.path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(b.path, data, 0o644)
}

func (b *jsonSettingsBackend) close() error { return nil }

type sqliteSettingsBackend struct {
	db   *sql.DB
	name string
}

func openSQLiteSettingsBackend(ctx context.Context, path, name string, legacy *jsonSettingsBackend, logger *zap.Logger) (*sqliteSettingsBackend, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	schema := `
CREATE TABLE IF NOT EXISTS plugin_settings (
  name TEXT PRIMARY KEY,
  payload TEXT NOT NULL,
  updated_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);`
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, err
	}

	b := &sqliteSettingsBackend{db: db, name: name}
	// One-time import of a document written in json mode.
	if legacy != nil {
		if err := b.importLegacy(ctx, legacy, loggerOrNop(logger)); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	return b, nil
}

// importLegacy copies the JSON document into an empty table. A broken
// document is left on disk and skipped; Load then falls back to defaults.
func (b *sqliteSettingsBackend) importLegacy(ctx context.Context, legacy *jsonSettingsBackend, logger *zap.Logger) error {
	if _, found, err := b.read(ctx); err != nil || found {
		return err
	}
	s, found, err := legacy.read(ctx)
	if err != nil {
		logger.Warn("legacy settings document unreadable, skipping import",
			zap.String("path", legacy.path),
			zap.Error(err),
		)
		return nil
	}
	if !found {
		return nil
	}
	logger.Info("imported legacy settings document", zap.String("path", legacy.path))
	return b.write(ctx, s)
}

func (b *sqliteSettingsBackend) read(ctx context.Context) (Settings, bool, error) {
	var payload string
	err := b.db.QueryRowContext(ctx, `SELECT payload FROM plugin_settings WHERE name = ?`, b.name).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Settings{}, false, nil
		}
		return Settings{}, false, err
	}
	var s Settings
	if err := json.Unmarshal([]byte(payload), &s); err != nil {
		return Settings{}, false, err
	}
	return s, true, nil
}

func (b *sqliteSettingsBackend) write(ctx context.Context, s Settings) error {
	payload, err := json.Marshal(s)
	if err != nil {
		return err
	}
	_, err = b.db.ExecContext(ctx,
		`INSERT INTO plugin_settings(name, payload, updated_at)
		 VALUES(?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(name) DO UPDATE SET
		   payload=excluded.payload,
		   updated_at=CURRENT_TIMESTAMP`,
		b.name,
		string(payload),
	)
	return err
}

func (b *sqliteSettingsBackend) close() error { return b.db.Close() }

type hybridSettingsBackend struct {
	db       *sqliteSettingsBackend
	fallback *jsonSettingsBackend
	logger   *zap.Logger
}

func (b *hybridSettingsBackend) read(ctx context.Context) (Settings, bool, error) {
	if b.db != nil {
		s, found, err := b.db.read(ctx)
		if err == nil {
			return s, found, nil
		}
		b.logger.Warn("settings db read failed, trying JSON fallback", zap.Error(err))
	}
	return b.fallback.read(ctx)
}

func (b *hybridSettingsBackend) write(ctx context.Context, s Settings) error {
	if b.db != nil {
		err := b.db.write(ctx, s)
		if err == nil {
			return nil
		}
		b.logger.Warn("settings db write failed, falling back to JSON", zap.Error(err))
	}
	return b.fallback.write(ctx, s)
}

func (b *hybridSettingsBackend) close() error {
	if b.db == nil {
		return nil
	}
	return b.db.close()
}

type postgresSettingsBackend struct {
	pool *pgxpool.Pool
	name string
}

func openPostgresSettingsBackend(ctx context.Context, dsn, name string) (*postgresSettingsBackend, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	schema := `
CREATE TABLE IF NOT EXISTS plugin_settings (
  name TEXT PRIMARY KEY,
  payload JSONB NOT NULL,
  updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, err
	}
	return &postgresSettingsBackend{pool: pool, name: name}, nil
}

func (b *postgresSettingsBackend) read(ctx context.Context) (Settings, bool, error) {
	var payload []byte
	err := b.pool.QueryRow(ctx, `SELECT payload FROM plugin_settings WHERE name = $1`, b.name).Scan(&payload)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Settings{}, false, nil
		}
		return Settings{}, false, err
	}
	var s Settings
	if err := json.Unmarshal(payload, &s); err != nil {
		return Settings{}, false, err
	}
	return s, true, nil
}

func (b *postgresSettingsBackend) write(ctx context.Context, s Settings) error {
	payload, err := json.Marshal(s)
	if err != nil {
		return err
	}
	_, err = b.pool.Exec(ctx,
		`INSERT INTO plugin_settings(name, payload, updated_at)
		 VALUES($1, $2::jsonb, now())
		 ON CONFLICT(name) DO UPDATE SET
		   payload=excluded.payload,
		   updated_at=now()`,
		b.name,
		string(payload),
	)
	return err
}

func (b *postgresSettingsBackend) close() error {
	b.pool.Close()
	return nil
}

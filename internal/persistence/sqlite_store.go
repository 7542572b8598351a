// Package persistence stores user preferences between restarts: runtime
// settings and the coach resume context.
package persistence

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/meetlive/caption-coach/internal/config"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("db path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	store := &SQLiteStore{db: db}
	if err := store.init(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLiteStore) init(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "PRAGMA journal_mode = WAL;"); err != nil {
		return fmt.Errorf("set WAL mode: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, "PRAGMA busy_timeout = 5000;"); err != nil {
		return fmt.Errorf("set busy timeout: %w", err)
	}
	// Bootstrap schema_migrations table so we can track applied versions.
	if _, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);`); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	entries, err := migrationFiles.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("read migrations: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		version := migrationVersion(entry.Name())
		if version <= 0 {
			continue
		}
		var exists int
		if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM schema_migrations WHERE version = ?`, version).Scan(&exists); err != nil {
			return fmt.Errorf("check migration %s: %w", entry.Name(), err)
		}
		if exists > 0 {
			continue
		}
		content, err := migrationFiles.ReadFile(filepath.Join("migrations", entry.Name()))
		if err != nil {
			return fmt.Errorf("read migration %s: %w", entry.Name(), err)
		}
		if _, err := s.db.ExecContext(ctx, string(content)); err != nil {
			return fmt.Errorf("apply migration %s: %w", entry.Name(), err)
		}
		if _, err := s.db.ExecContext(ctx, `INSERT INTO schema_migrations (version) VALUES (?)`, version); err != nil {
			return fmt.Errorf("record migration %s: %w", entry.Name(), err)
		}
	}
	return nil
}

// migrationVersion extracts the leading integer from a migration filename (e.g. "001_init.sql" → 1).
func migrationVersion(name string) int {
	for i, c := range name {
		if c < '0' || c > '9' {
			if i == 0 {
				return 0
			}
			n, _ := strconv.Atoi(name[:i])
			return n
		}
	}
	n, _ := strconv.Atoi(name)
	return n
}

// LoadSettings returns the persisted runtime settings, or the defaults when
// nothing has been saved yet.
func (s *SQLiteStore) LoadSettings(ctx context.Context) (config.RuntimeSettings, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT settings_json FROM runtime_settings WHERE id = 1`).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return config.DefaultRuntimeSettings(), nil
	}
	if err != nil {
		return config.RuntimeSettings{}, fmt.Errorf("load settings: %w", err)
	}

	settings := config.DefaultRuntimeSettings()
	if err := json.Unmarshal([]byte(raw), &settings); err != nil {
		return config.RuntimeSettings{}, fmt.Errorf("decode settings: %w", err)
	}
	return settings, nil
}

// SaveSettings validates and persists the full settings snapshot.
func (s *SQLiteStore) SaveSettings(ctx context.Context, settings config.RuntimeSettings) error {
	if err := settings.Validate(); err != nil {
		return err
	}
	raw, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	_, err = s.db.ExecContext(
		ctx,
		`INSERT INTO runtime_settings (id, settings_json, updated_at)
		 VALUES (1, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(id) DO UPDATE SET
			settings_json = excluded.settings_json,
			updated_at = CURRENT_TIMESTAMP`,
		string(raw),
	)
	if err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}

// SetPanelVisible flips only the panel visibility flag.
func (s *SQLiteStore) SetPanelVisible(ctx context.Context, visible bool) error {
	settings, err := s.LoadSettings(ctx)
	if err != nil {
		return err
	}
	settings.PanelVisible = visible
	return s.SaveSettings(ctx, settings)
}

// ResumeContext returns the stored candidate profile text, empty when unset.
func (s *SQLiteStore) ResumeContext(ctx context.Context) (string, error) {
	var text string
	err := s.db.QueryRowContext(ctx, `SELECT resume_context FROM coach_profile WHERE id = 1`).Scan(&text)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("load resume context: %w", err)
	}
	return strings.TrimSpace(text), nil
}

// SaveResumeContext replaces the candidate profile text.
func (s *SQLiteStore) SaveResumeContext(ctx context.Context, text string) error {
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO coach_profile (id, resume_context, updated_at)
		 VALUES (1, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(id) DO UPDATE SET
			resume_context = excluded.resume_context,
			updated_at = CURRENT_TIMESTAMP`,
		strings.TrimSpace(text),
	)
	if err != nil {
		return fmt.Errorf("save resume context: %w", err)
	}
	return nil
}

// Package storage persists favorites in a local SQLite database.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/babycommando/afroradio/internal/station"
)

const schema = `
CREATE TABLE IF NOT EXISTS favorites (
	name     TEXT NOT NULL,
	country  TEXT NOT NULL,
	position INTEGER NOT NULL,
	added_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (name, country)
);
CREATE INDEX IF NOT EXISTS idx_favorites_position ON favorites(position);
`

type DB struct {
	db  *sql.DB
	log *zap.Logger
}

// Open opens (creating if needed) the database at path. A leading "~/" is
// expanded to the user's home directory.
func Open(path string, logger *zap.Logger) (*DB, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(home, path[2:])
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// a single writer keeps sqlite away from SQLITE_BUSY
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	logger.Named("storage").Debug("database ready", zap.String("path", path))
	return &DB{db: db, log: logger.Named("storage")}, nil
}

func (d *DB) Close() error {
	return d.db.Close()
}

// LoadFavorites returns the stored favorites in their saved order.
func (d *DB) LoadFavorites(ctx context.Context) ([]station.FavoriteEntry, error) {
	rows, err := d.db.QueryContext(ctx, "SELECT name, country FROM favorites ORDER BY position")
	if err != nil {
		return nil, fmt.Errorf("failed to query favorites: %w", err)
	}
	defer rows.Close()

	out := []station.FavoriteEntry{}
	for rows.Next() {
		var e station.FavoriteEntry
		if err := rows.Scan(&e.Name, &e.Country); err != nil {
			return nil, fmt.Errorf("failed to scan favorite: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read favorites: %w", err)
	}
	return out, nil
}

// SaveFavorites replaces the stored set with entries in one transaction.
func (d *DB) SaveFavorites(ctx context.Context, entries []station.FavoriteEntry) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM favorites"); err != nil {
		return fmt.Errorf("failed to clear favorites: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		"INSERT OR IGNORE INTO favorites (name, country, position) VALUES (?, ?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, e := range entries {
		if _, err := stmt.ExecContext(ctx, e.Name, e.Country, i); err != nil {
			return fmt.Errorf("failed to insert favorite %q: %w", e.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit favorites: %w", err)
	}
	d.log.Debug("favorites saved", zap.Int("count", len(entries)))
	return nil
}

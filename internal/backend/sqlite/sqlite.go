// Copyright (c) 2026 The BallotResearch Authors.
// SPDX-License-Identifier: Apache-2.0

// Package sqlite is a cache.Backend over a single SQLite database file.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/apex/log"
	_ "modernc.org/sqlite"

	"github.com/normalee1993/BallotResearch/internal/backend/sqlite/migrations"
	"github.com/normalee1993/BallotResearch/internal/cache"
)

// DefaultFile is the database file name used when only a directory is known.
const DefaultFile = "civicctl.db"

type Backend struct {
	db   *sql.DB
	path string
}

var _ cache.Backend = (*Backend)(nil)

// Open opens (creating if needed) the database at path and applies the schema.
func Open(ctx context.Context, path string) (*Backend, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("sqlite path is required")
	}
	path = filepath.Clean(path)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil { //nolint:mnd
		return nil, fmt.Errorf("create sqlite directory: %w", err)
	}

	dsn := path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := applyMigrations(ctx, db, migrations.FS); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	log.Debugf("sqlite cache at %s", path)
	return &Backend{db: db, path: path}, nil
}

// Path returns the database file.
func (b *Backend) Path() string { return b.path }

func (b *Backend) Read(ctx context.Context, ns cache.Namespace, key string) (*cache.Entry, bool, error) {
	var (
		data    []byte
		updated int64
	)
	err := b.db.QueryRowContext(ctx,
		"SELECT data, last_updated FROM entries WHERE namespace = ? AND key = ?",
		string(ns), key,
	).Scan(&data, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read %s/%s: %w", ns, key, err)
	}
	return &cache.Entry{Key: key, Data: data, LastUpdated: time.UnixMilli(updated)}, true, nil
}

func (b *Backend) Write(ctx context.Context, ns cache.Namespace, key string, e cache.Entry) error {
	updated := e.LastUpdated
	if updated.IsZero() {
		updated = time.Now()
	}
	_, err := b.db.ExecContext(ctx, `
INSERT INTO entries (namespace, key, data, last_updated) VALUES (?, ?, ?, ?)
ON CONFLICT (namespace, key) DO UPDATE SET
	data = excluded.data,
	last_updated = excluded.last_updated
`, string(ns), key, e.Data, updated.UnixMilli())
	if err != nil {
		return fmt.Errorf("write %s/%s: %w", ns, key, err)
	}
	return nil
}

func (b *Backend) RemoveNamespace(ctx context.Context, ns cache.Namespace) error {
	if _, err := b.db.ExecContext(ctx, "DELETE FROM entries WHERE namespace = ?", string(ns)); err != nil {
		return fmt.Errorf("remove %s: %w", ns, err)
	}
	return nil
}

// Purge deletes entries last written more than hours ago.
func (b *Backend) Purge(ctx context.Context, hours int) (int, error) {
	if hours <= 0 {
		return 0, nil
	}
	cutoff := time.Now().Add(-time.Duration(hours) * time.Hour).UnixMilli()
	res, err := b.db.ExecContext(ctx, "DELETE FROM entries WHERE last_updated < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("purge: %w", err)
	}
	return int(n), nil
}

func (b *Backend) Close() error {
	if b == nil || b.db == nil {
		return nil
	}
	return b.db.Close()
}

// MGNREGA Pulse - District Employment Statistics API
// Copyright 2026 Amrita Malviya
// SPDX-License-Identifier: MIT
// https://github.com/AmritaMalviya12/mgnrega-pulse

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/AmritaMalviya12/mgnrega-pulse/internal/cache"
	"github.com/AmritaMalviya12/mgnrega-pulse/internal/metrics"
)

// The api_cache table backs the query cache, so cached responses survive
// process restarts. DB implements cache.Store.

// GetEntry returns the cache entry for key, or cache.ErrNotFound.
func (db *DB) GetEntry(ctx context.Context, key string) (*cache.Entry, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	start := time.Now()
	row := db.conn.QueryRowContext(ctx, `
		SELECT cache_key, component, schema_version, payload, created_at, expires_at
		FROM api_cache
		WHERE cache_key = ?`, key)

	var entry cache.Entry
	var payload string
	err := row.Scan(&entry.Key, &entry.Component, &entry.SchemaVersion,
		&payload, &entry.CreatedAt, &entry.ExpiresAt)
	metrics.RecordDBQuery("SELECT", "api_cache", time.Since(start), err)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, cache.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cache entry: %w", err)
	}
	entry.Payload = []byte(payload)
	return &entry, nil
}

// PutEntry inserts or replaces the entry for its key.
func (db *DB) PutEntry(ctx context.Context, entry *cache.Entry) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	start := time.Now()
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO api_cache (cache_key, component, schema_version, payload, created_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (cache_key) DO UPDATE SET
			component = EXCLUDED.component,
			schema_version = EXCLUDED.schema_version,
			payload = EXCLUDED.payload,
			created_at = EXCLUDED.created_at,
			expires_at = EXCLUDED.expires_at`,
		entry.Key, entry.Component, entry.SchemaVersion,
		string(entry.Payload), entry.CreatedAt, entry.ExpiresAt)
	metrics.RecordDBQuery("INSERT", "api_cache", time.Since(start), err)
	if err != nil {
		return fmt.Errorf("failed to write cache entry: %w", err)
	}
	return nil
}

// DeleteEntry removes one cache entry. Missing keys are not an error.
func (db *DB) DeleteEntry(ctx context.Context, key string) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	start := time.Now()
	_, err := db.conn.ExecContext(ctx, `DELETE FROM api_cache WHERE cache_key = ?`, key)
	metrics.RecordDBQuery("DELETE", "api_cache", time.Since(start), err)
	if err != nil {
		return fmt.Errorf("failed to delete cache entry: %w", err)
	}
	return nil
}

// DeleteComponent removes all entries tagged with the component.
func (db *DB) DeleteComponent(ctx context.Context, component string) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	start := time.Now()
	result, err := db.conn.ExecContext(ctx, `DELETE FROM api_cache WHERE component = ?`, component)
	metrics.RecordDBQuery("DELETE", "api_cache", time.Since(start), err)
	if err != nil {
		return 0, fmt.Errorf("failed to delete cache component %s: %w", component, err)
	}
	return affectedRows(result), nil
}

// DeleteExpired removes entries whose expiry is at or before the given time.
func (db *DB) DeleteExpired(ctx context.Context, before time.Time) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	start := time.Now()
	result, err := db.conn.ExecContext(ctx, `DELETE FROM api_cache WHERE expires_at <= ?`, before)
	metrics.RecordDBQuery("DELETE", "api_cache", time.Since(start), err)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired cache entries: %w", err)
	}
	return affectedRows(result), nil
}

// affectedRows extracts RowsAffected, treating driver errors as zero.
func affectedRows(result sql.Result) int {
	n, err := result.RowsAffected()
	if err != nil {
		return 0
	}
	return int(n)
}

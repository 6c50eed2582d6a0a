// MGNREGA Pulse - District Employment Statistics API
// Copyright 2026 Amrita Malviya
// SPDX-License-Identifier: MIT
// https://github.com/AmritaMalviya12/mgnrega-pulse

/*
schema.go - Database Schema Management

Tables:
  - districts: directory of known districts, keyed by district_code
  - performance_records: one row per (district_code, financial_year, month)
    reporting period, replaced wholesale on every sync
  - api_cache: serialized query responses with per-entry expiry

Schema Strategy:
All columns are defined in the initial CREATE TABLE statements. The dataset
is rebuilt from upstream on every sync, so there is no migration machinery;
a schema change just needs a new database file.

Index Strategy:
  - performance_records(district_code, data_date DESC) for per-district
    history queries
  - performance_records(state_name) and districts(state_name) for state
    filtering and aggregation
  - api_cache(expires_at) for the expiry sweep
*/
package database

import (
	"context"
	"fmt"
	"time"
)

// schemaContext returns a context with timeout for schema operations.
func schemaContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 60*time.Second)
}

// createTables creates the core database tables.
func (db *DB) createTables() error {
	ctx, cancel := schemaContext()
	defer cancel()

	queries := []string{
		`CREATE TABLE IF NOT EXISTS districts (
			district_code TEXT PRIMARY KEY,
			district_name TEXT NOT NULL,
			state_name TEXT NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,

		// The triple (district_code, financial_year, month) is the natural
		// key. Sync upserts by this key, so re-running a sync can never
		// duplicate a reporting period.
		`CREATE TABLE IF NOT EXISTS performance_records (
			district_code TEXT NOT NULL,
			district_name TEXT NOT NULL,
			state_name TEXT NOT NULL,
			financial_year TEXT NOT NULL,
			month TEXT NOT NULL,
			households_provided_employment BIGINT NOT NULL DEFAULT 0,
			total_person_days BIGINT NOT NULL DEFAULT 0,
			total_wages_paid DOUBLE NOT NULL DEFAULT 0,
			total_works_taken_up BIGINT NOT NULL DEFAULT 0,
			completed_works BIGINT NOT NULL DEFAULT 0,
			data_date TIMESTAMP NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (district_code, financial_year, month)
		)`,

		`CREATE TABLE IF NOT EXISTS api_cache (
			cache_key TEXT PRIMARY KEY,
			component TEXT NOT NULL,
			schema_version INTEGER NOT NULL,
			payload TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL,
			expires_at TIMESTAMP NOT NULL
		)`,
	}

	for _, query := range queries {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query: %s: %w", query, err)
		}
	}

	return nil
}

// createIndexes creates indexes for common query patterns.
func (db *DB) createIndexes() error {
	ctx, cancel := schemaContext()
	defer cancel()

	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_perf_district_date
			ON performance_records(district_code, data_date DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_perf_state
			ON performance_records(state_name)`,
		`CREATE INDEX IF NOT EXISTS idx_perf_fy
			ON performance_records(financial_year)`,
		`CREATE INDEX IF NOT EXISTS idx_districts_state
			ON districts(state_name)`,
		`CREATE INDEX IF NOT EXISTS idx_cache_expires
			ON api_cache(expires_at)`,
	}

	for _, query := range indexes {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to create index: %s: %w", query, err)
		}
	}

	return nil
}

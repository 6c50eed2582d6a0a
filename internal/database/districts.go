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

	"github.com/AmritaMalviya12/mgnrega-pulse/internal/metrics"
	"github.com/AmritaMalviya12/mgnrega-pulse/internal/models"
)

// BulkUpsertDistricts writes districts keyed by district_code, updating the
// name and state of rows that already exist. Returns the number of rows
// written.
func (db *DB) BulkUpsertDistricts(ctx context.Context, districts []models.District) (int, error) {
	if len(districts) == 0 {
		return 0, nil
	}

	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	start := time.Now()

	stmt, err := db.conn.PrepareContext(ctx, `
		INSERT INTO districts (district_code, district_name, state_name, created_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (district_code) DO UPDATE SET
			district_name = EXCLUDED.district_name,
			state_name = EXCLUDED.state_name`)
	if err != nil {
		metrics.RecordDBQuery("INSERT", "districts", time.Since(start), err)
		return 0, fmt.Errorf("failed to prepare district upsert: %w", err)
	}
	defer closeQuietly(stmt)

	written := 0
	for i := range districts {
		d := &districts[i]
		if _, err := stmt.ExecContext(ctx, d.DistrictCode, d.DistrictName, d.StateName); err != nil {
			metrics.RecordDBQuery("INSERT", "districts", time.Since(start), err)
			return written, fmt.Errorf("failed to upsert district %s: %w", d.DistrictCode, err)
		}
		written++
	}

	metrics.RecordDBQuery("INSERT", "districts", time.Since(start), nil)
	return written, nil
}

// GetAllDistricts returns the full district directory ordered by name.
func (db *DB) GetAllDistricts(ctx context.Context) ([]models.District, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, `
		SELECT district_code, district_name, state_name, created_at
		FROM districts
		ORDER BY district_name`)
	metrics.RecordDBQuery("SELECT", "districts", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to query districts: %w", err)
	}
	defer closeRows(rows)

	return scanDistricts(rows)
}

// GetDistrictsByState returns districts whose state name contains the given
// fragment, case-insensitively, ordered by district name.
func (db *DB) GetDistrictsByState(ctx context.Context, state string) ([]models.District, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, `
		SELECT district_code, district_name, state_name, created_at
		FROM districts
		WHERE state_name ILIKE '%' || ? || '%'
		ORDER BY district_name`, state)
	metrics.RecordDBQuery("SELECT", "districts", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to query districts by state: %w", err)
	}
	defer closeRows(rows)

	return scanDistricts(rows)
}

// GetDistrictByCode returns one district by its code, or ErrNotFound.
// Codes are matched case-insensitively.
func (db *DB) GetDistrictByCode(ctx context.Context, code string) (*models.District, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	start := time.Now()
	row := db.conn.QueryRowContext(ctx, `
		SELECT district_code, district_name, state_name, created_at
		FROM districts
		WHERE upper(district_code) = upper(?)`, code)

	var d models.District
	err := row.Scan(&d.DistrictCode, &d.DistrictName, &d.StateName, &d.CreatedAt)
	metrics.RecordDBQuery("SELECT", "districts", time.Since(start), err)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query district %s: %w", code, err)
	}
	return &d, nil
}

// SearchDistrictsByName returns districts whose name contains the given
// fragment, case-insensitively.
func (db *DB) SearchDistrictsByName(ctx context.Context, name string) ([]models.District, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, `
		SELECT district_code, district_name, state_name, created_at
		FROM districts
		WHERE district_name ILIKE '%' || ? || '%'
		ORDER BY district_name`, name)
	metrics.RecordDBQuery("SELECT", "districts", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to search districts: %w", err)
	}
	defer closeRows(rows)

	return scanDistricts(rows)
}

// CountDistrictsByState counts directory entries for a state, matched the
// same way as GetDistrictsByState.
func (db *DB) CountDistrictsByState(ctx context.Context, state string) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	start := time.Now()
	var count int
	err := db.conn.QueryRowContext(ctx, `
		SELECT count(*) FROM districts
		WHERE state_name ILIKE '%' || ? || '%'`, state).Scan(&count)
	metrics.RecordDBQuery("SELECT", "districts", time.Since(start), err)
	if err != nil {
		return 0, fmt.Errorf("failed to count districts: %w", err)
	}
	return count, nil
}

// scanDistricts reads district rows into a slice.
func scanDistricts(rows *sql.Rows) ([]models.District, error) {
	var districts []models.District
	for rows.Next() {
		var d models.District
		if err := rows.Scan(&d.DistrictCode, &d.DistrictName, &d.StateName, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan district row: %w", err)
		}
		districts = append(districts, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("district row iteration failed: %w", err)
	}
	return districts, nil
}

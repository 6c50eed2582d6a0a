// MGNREGA Pulse - District Employment Statistics API
// Copyright 2026 Amrita Malviya
// SPDX-License-Identifier: MIT
// https://github.com/AmritaMalviya12/mgnrega-pulse

package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/AmritaMalviya12/mgnrega-pulse/internal/metrics"
	"github.com/AmritaMalviya12/mgnrega-pulse/internal/models"
)

// BulkUpsertPerformanceRecords writes records keyed by
// (district_code, financial_year, month). Existing rows are replaced
// wholesale, so a corrected upstream figure overwrites the stale one on the
// next sync. Returns the number of rows written.
//
// Rows are written one statement at a time without a wrapping transaction;
// a failed sync can leave a partial batch, which the next sync repairs.
func (db *DB) BulkUpsertPerformanceRecords(ctx context.Context, records []models.PerformanceRecord) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	start := time.Now()

	stmt, err := db.conn.PrepareContext(ctx, `
		INSERT INTO performance_records (
			district_code, district_name, state_name, financial_year, month,
			households_provided_employment, total_person_days, total_wages_paid,
			total_works_taken_up, completed_works, data_date, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (district_code, financial_year, month) DO UPDATE SET
			district_name = EXCLUDED.district_name,
			state_name = EXCLUDED.state_name,
			households_provided_employment = EXCLUDED.households_provided_employment,
			total_person_days = EXCLUDED.total_person_days,
			total_wages_paid = EXCLUDED.total_wages_paid,
			total_works_taken_up = EXCLUDED.total_works_taken_up,
			completed_works = EXCLUDED.completed_works,
			data_date = EXCLUDED.data_date`)
	if err != nil {
		metrics.RecordDBQuery("INSERT", "performance_records", time.Since(start), err)
		return 0, fmt.Errorf("failed to prepare performance upsert: %w", err)
	}
	defer closeQuietly(stmt)

	written := 0
	for i := range records {
		r := &records[i]
		_, err := stmt.ExecContext(ctx,
			r.DistrictCode, r.DistrictName, r.StateName, r.FinancialYear, r.Month,
			r.HouseholdsProvidedEmployment, r.TotalPersonDays, r.TotalWagesPaid,
			r.TotalWorksTakenUp, r.CompletedWorks, r.DataDate)
		if err != nil {
			metrics.RecordDBQuery("INSERT", "performance_records", time.Since(start), err)
			return written, fmt.Errorf("failed to upsert record %s: %w", r.NaturalKey(), err)
		}
		written++
	}

	metrics.RecordDBQuery("INSERT", "performance_records", time.Since(start), nil)
	return written, nil
}

// GetDistrictPerformance returns a district's reporting periods newest first.
// An empty financialYear returns all years; limit <= 0 means no limit.
func (db *DB) GetDistrictPerformance(ctx context.Context, code, financialYear string, limit int) ([]models.PerformanceRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `
		SELECT district_code, district_name, state_name, financial_year, month,
			households_provided_employment, total_person_days, total_wages_paid,
			total_works_taken_up, completed_works, data_date, created_at
		FROM performance_records
		WHERE upper(district_code) = upper(?)`
	args := []interface{}{code}

	if financialYear != "" {
		query += ` AND financial_year = ?`
		args = append(args, financialYear)
	}
	query += ` ORDER BY data_date DESC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, query, args...)
	metrics.RecordDBQuery("SELECT", "performance_records", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to query performance for %s: %w", code, err)
	}
	defer closeRows(rows)

	return scanPerformanceRecords(rows)
}

// GetLatestByDistricts returns each requested district's most recent record,
// optionally restricted to one financial year. The year filter applies before
// the latest-per-district reduction. Districts with no matching records are
// simply absent from the result. Uses a window function with QUALIFY to pick
// the newest row per district in one scan.
func (db *DB) GetLatestByDistricts(ctx context.Context, codes []string, financialYear string) ([]models.PerformanceRecord, error) {
	if len(codes) == 0 {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	placeholders := make([]string, len(codes))
	args := make([]interface{}, len(codes))
	for i, code := range codes {
		placeholders[i] = "upper(?)"
		args[i] = code
	}

	yearFilter := ""
	if financialYear != "" {
		yearFilter = " AND financial_year = ?"
		args = append(args, financialYear)
	}

	query := fmt.Sprintf(`
		SELECT district_code, district_name, state_name, financial_year, month,
			households_provided_employment, total_person_days, total_wages_paid,
			total_works_taken_up, completed_works, data_date, created_at
		FROM performance_records
		WHERE upper(district_code) IN (%s)%s
		QUALIFY row_number() OVER (
			PARTITION BY district_code ORDER BY data_date DESC
		) = 1
		ORDER BY district_code`, strings.Join(placeholders, ", "), yearFilter)

	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, query, args...)
	metrics.RecordDBQuery("SELECT", "performance_records", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to query latest records: %w", err)
	}
	defer closeRows(rows)

	return scanPerformanceRecords(rows)
}

// StateAggregateRow holds raw sums for a state and financial year before
// derived figures are computed.
type StateAggregateRow struct {
	ReportingDistricts int
	TotalHouseholds    int64
	TotalPersonDays    int64
	TotalWages         float64
	TotalWorks         int64
	CompletedWorks     int64
}

// GetStateAggregate sums one financial year's records across the districts
// of a state. State matching is a case-insensitive substring, the same rule
// used by the district directory.
func (db *DB) GetStateAggregate(ctx context.Context, state, financialYear string) (*StateAggregateRow, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	start := time.Now()
	row := db.conn.QueryRowContext(ctx, `
		SELECT
			count(DISTINCT district_code),
			coalesce(sum(households_provided_employment), 0),
			coalesce(sum(total_person_days), 0),
			coalesce(sum(total_wages_paid), 0),
			coalesce(sum(total_works_taken_up), 0),
			coalesce(sum(completed_works), 0)
		FROM performance_records
		WHERE state_name ILIKE '%' || ? || '%'
		  AND financial_year = ?`, state, financialYear)

	var agg StateAggregateRow
	err := row.Scan(
		&agg.ReportingDistricts,
		&agg.TotalHouseholds,
		&agg.TotalPersonDays,
		&agg.TotalWages,
		&agg.TotalWorks,
		&agg.CompletedWorks,
	)
	metrics.RecordDBQuery("SELECT", "performance_records", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate state %s: %w", state, err)
	}
	return &agg, nil
}

// CountPerformanceRecords returns the total number of stored reporting
// periods. Used by health reporting.
func (db *DB) CountPerformanceRecords(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	start := time.Now()
	var count int64
	err := db.conn.QueryRowContext(ctx, `SELECT count(*) FROM performance_records`).Scan(&count)
	metrics.RecordDBQuery("SELECT", "performance_records", time.Since(start), err)
	if err != nil {
		return 0, fmt.Errorf("failed to count performance records: %w", err)
	}
	return count, nil
}

// scanPerformanceRecords reads performance rows into a slice.
func scanPerformanceRecords(rows *sql.Rows) ([]models.PerformanceRecord, error) {
	var records []models.PerformanceRecord
	for rows.Next() {
		var r models.PerformanceRecord
		err := rows.Scan(
			&r.DistrictCode, &r.DistrictName, &r.StateName, &r.FinancialYear, &r.Month,
			&r.HouseholdsProvidedEmployment, &r.TotalPersonDays, &r.TotalWagesPaid,
			&r.TotalWorksTakenUp, &r.CompletedWorks, &r.DataDate, &r.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan performance row: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("performance row iteration failed: %w", err)
	}
	return records, nil
}

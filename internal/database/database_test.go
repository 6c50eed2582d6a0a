// MGNREGA Pulse - District Employment Statistics API
// Copyright 2026 Amrita Malviya
// SPDX-License-Identifier: MIT
// https://github.com/AmritaMalviya12/mgnrega-pulse

package database

import (
	"context"
	"testing"
	"time"

	"github.com/AmritaMalviya12/mgnrega-pulse/internal/config"
	"github.com/AmritaMalviya12/mgnrega-pulse/internal/models"
)

// testDBSemaphore limits concurrent in-memory databases. DuckDB CGO calls
// under heavy parallel test load can contend badly.
var testDBSemaphore = make(chan struct{}, 4)

func setupTestDB(t *testing.T) *DB {
	t.Helper()

	testDBSemaphore <- struct{}{}
	t.Cleanup(func() {
		<-testDBSemaphore
	})

	cfg := &config.DatabaseConfig{
		Path:      ":memory:",
		MaxMemory: "512MB",
	}

	db, err := New(cfg)
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Logf("failed to close test database: %v", err)
		}
	})

	return db
}

func testDistricts() []models.District {
	return []models.District{
		{DistrictCode: "UP01", DistrictName: "Agra", StateName: "Uttar Pradesh"},
		{DistrictCode: "UP02", DistrictName: "Lucknow", StateName: "Uttar Pradesh"},
		{DistrictCode: "BR01", DistrictName: "Patna", StateName: "Bihar"},
	}
}

func testRecord(code, fy, month string, dataDate time.Time) models.PerformanceRecord {
	return models.PerformanceRecord{
		DistrictCode:                 code,
		DistrictName:                 "Agra",
		StateName:                    "Uttar Pradesh",
		FinancialYear:                fy,
		Month:                        month,
		HouseholdsProvidedEmployment: 1200,
		TotalPersonDays:              34000,
		TotalWagesPaid:               7820000.50,
		TotalWorksTakenUp:            150,
		CompletedWorks:               130,
		DataDate:                     dataDate,
	}
}

func TestNewCreatesSchema(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	if err := db.Ping(ctx); err != nil {
		t.Fatalf("Ping: %v", err)
	}

	// All three tables must exist and be queryable.
	for _, table := range []string{"districts", "performance_records", "api_cache"} {
		var count int
		if err := db.Conn().QueryRowContext(ctx, "SELECT count(*) FROM "+table).Scan(&count); err != nil {
			t.Errorf("table %s not queryable: %v", table, err)
		}
	}
}

func TestPingAfterClose(t *testing.T) {
	cfg := &config.DatabaseConfig{Path: ":memory:", MaxMemory: "512MB"}
	db, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := db.Ping(context.Background()); err == nil {
		t.Error("Ping after Close should fail")
	}
}

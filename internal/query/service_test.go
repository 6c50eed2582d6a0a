// MGNREGA Pulse - District Employment Statistics API
// Copyright 2026 Amrita Malviya
// SPDX-License-Identifier: MIT
// https://github.com/AmritaMalviya12/mgnrega-pulse

package query

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/AmritaMalviya12/mgnrega-pulse/internal/cache"
	"github.com/AmritaMalviya12/mgnrega-pulse/internal/config"
	"github.com/AmritaMalviya12/mgnrega-pulse/internal/database"
	"github.com/AmritaMalviya12/mgnrega-pulse/internal/models"
)

// testDBSemaphore bounds concurrent in-memory DuckDB instances.
var testDBSemaphore = make(chan struct{}, 4)

func setupService(t *testing.T) (*Service, *database.DB) {
	t.Helper()

	testDBSemaphore <- struct{}{}
	t.Cleanup(func() { <-testDBSemaphore })

	db, err := database.New(&config.DatabaseConfig{
		Path:      ":memory:",
		MaxMemory: "512MB",
		Threads:   2,
	})
	if err != nil {
		t.Fatalf("database.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	c := cache.New(db, time.Hour, time.Hour)
	cacheCfg := &config.CacheConfig{
		DefaultTTL:     time.Hour,
		DirectoryTTL:   time.Hour,
		PerformanceTTL: 30 * time.Minute,
		SummaryTTL:     time.Hour,
		SweepInterval:  time.Hour,
	}
	apiCfg := &config.APIConfig{DefaultLimit: 12, MaxLimit: 100}

	return New(db, c, cacheCfg, apiCfg), db
}

func seedDistricts(t *testing.T, db *database.DB) {
	t.Helper()
	districts := []models.District{
		{DistrictCode: "UP01", DistrictName: "Agra", StateName: "Uttar Pradesh"},
		{DistrictCode: "UP02", DistrictName: "Lucknow", StateName: "Uttar Pradesh"},
		{DistrictCode: "UP03", DistrictName: "Varanasi", StateName: "Uttar Pradesh"},
		{DistrictCode: "BR01", DistrictName: "Patna", StateName: "Bihar"},
	}
	if _, err := db.BulkUpsertDistricts(context.Background(), districts); err != nil {
		t.Fatalf("seed districts: %v", err)
	}
}

func seedRecord(t *testing.T, db *database.DB, code, fy, month string, dataDate time.Time, total, completed int64) {
	t.Helper()
	rec := models.PerformanceRecord{
		DistrictCode:                 code,
		DistrictName:                 "Seeded",
		StateName:                    "Uttar Pradesh",
		FinancialYear:                fy,
		Month:                        month,
		HouseholdsProvidedEmployment: 1200,
		TotalPersonDays:              34000,
		TotalWagesPaid:               7820000.50,
		TotalWorksTakenUp:            total,
		CompletedWorks:               completed,
		DataDate:                     dataDate,
	}
	if _, err := db.BulkUpsertPerformanceRecords(context.Background(), []models.PerformanceRecord{rec}); err != nil {
		t.Fatalf("seed record: %v", err)
	}
}

func TestListDistricts(t *testing.T) {
	svc, db := setupService(t)
	seedDistricts(t, db)
	ctx := context.Background()

	payload, cached, err := svc.ListDistricts(ctx)
	if err != nil {
		t.Fatalf("ListDistricts: %v", err)
	}
	if cached {
		t.Error("first call should miss the cache")
	}
	if payload.Count != 4 {
		t.Errorf("count = %d, want 4", payload.Count)
	}
	if payload.Districts[0].DistrictName != "Agra" {
		t.Errorf("first district = %q, want Agra (name order)", payload.Districts[0].DistrictName)
	}

	again, cached, err := svc.ListDistricts(ctx)
	if err != nil {
		t.Fatalf("second ListDistricts: %v", err)
	}
	if !cached {
		t.Error("second call should hit the cache")
	}
	if again.Count != payload.Count {
		t.Errorf("cached count = %d", again.Count)
	}
}

func TestDistrictsByState(t *testing.T) {
	svc, db := setupService(t)
	seedDistricts(t, db)
	ctx := context.Background()

	payload, _, err := svc.DistrictsByState(ctx, "uttar pradesh")
	if err != nil {
		t.Fatalf("DistrictsByState: %v", err)
	}
	if payload.Count != 3 {
		t.Errorf("count = %d, want 3", payload.Count)
	}

	if _, _, err := svc.DistrictsByState(ctx, "Kerala"); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown state err = %v, want ErrNotFound", err)
	}
}

func TestDistrictByCode(t *testing.T) {
	svc, db := setupService(t)
	seedDistricts(t, db)
	ctx := context.Background()

	district, err := svc.DistrictByCode(ctx, "up01")
	if err != nil {
		t.Fatalf("DistrictByCode: %v", err)
	}
	if district.DistrictName != "Agra" {
		t.Errorf("district = %+v", district)
	}

	if _, err := svc.DistrictByCode(ctx, "XX99"); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown code err = %v, want ErrNotFound", err)
	}
}

func TestDistrictPerformance(t *testing.T) {
	svc, db := setupService(t)
	seedDistricts(t, db)
	ctx := context.Background()

	seedRecord(t, db, "UP01", "2025-26", "April", time.Date(2025, 4, 15, 0, 0, 0, 0, time.UTC), 150, 130)
	seedRecord(t, db, "UP01", "2025-26", "May", time.Date(2025, 5, 15, 0, 0, 0, 0, time.UTC), 160, 120)

	payload, cached, err := svc.DistrictPerformance(ctx, "UP01", "", 0)
	if err != nil {
		t.Fatalf("DistrictPerformance: %v", err)
	}
	if cached {
		t.Error("first call should miss")
	}
	if payload.Count != 2 {
		t.Errorf("count = %d, want 2", payload.Count)
	}
	if payload.Records[0].Month != "May" {
		t.Errorf("newest first: got %s", payload.Records[0].Month)
	}
	if payload.District.DistrictCode != "UP01" {
		t.Errorf("district = %+v", payload.District)
	}

	_, cached, err = svc.DistrictPerformance(ctx, "UP01", "", 0)
	if err != nil {
		t.Fatalf("second call: %v", err)
	}
	if !cached {
		t.Error("second call should hit")
	}
}

func TestDistrictPerformanceUnknownDistrict(t *testing.T) {
	svc, db := setupService(t)
	seedDistricts(t, db)

	// Not-found, never an empty success.
	_, _, err := svc.DistrictPerformance(context.Background(), "XX99", "", 0)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestDistrictPerformanceKnownDistrictNoRecords(t *testing.T) {
	svc, db := setupService(t)
	seedDistricts(t, db)

	payload, _, err := svc.DistrictPerformance(context.Background(), "UP02", "", 0)
	if err != nil {
		t.Fatalf("known district with no records should succeed: %v", err)
	}
	if payload.Count != 0 {
		t.Errorf("count = %d, want 0", payload.Count)
	}
}

func TestCompareDistricts(t *testing.T) {
	svc, db := setupService(t)
	seedDistricts(t, db)
	ctx := context.Background()

	seedRecord(t, db, "UP01", "2025-26", "April", time.Date(2025, 4, 15, 0, 0, 0, 0, time.UTC), 150, 130)
	seedRecord(t, db, "UP01", "2025-26", "May", time.Date(2025, 5, 15, 0, 0, 0, 0, time.UTC), 200, 150)
	seedRecord(t, db, "UP02", "2025-26", "April", time.Date(2025, 4, 15, 0, 0, 0, 0, time.UTC), 100, 80)

	payload, _, err := svc.CompareDistricts(ctx, []string{"up01", "UP02", "XX99"}, "", "")
	if err != nil {
		t.Fatalf("CompareDistricts: %v", err)
	}
	if len(payload.Districts) != 2 {
		t.Fatalf("got %d entries, want 2 (unknown code dropped)", len(payload.Districts))
	}

	for _, entry := range payload.Districts {
		switch entry.District.DistrictCode {
		case "UP01":
			if entry.Latest == nil || entry.Latest.Month != "May" {
				t.Errorf("UP01 latest = %+v, want May", entry.Latest)
			}
			if entry.CompletionRate != 75.0 {
				t.Errorf("UP01 rate = %v, want 75", entry.CompletionRate)
			}
		case "UP02":
			if entry.CompletionRate != 80.0 {
				t.Errorf("UP02 rate = %v, want 80", entry.CompletionRate)
			}
		default:
			t.Errorf("unexpected district %q", entry.District.DistrictCode)
		}
	}
}

func TestCompareDistrictsMetricOrdering(t *testing.T) {
	svc, db := setupService(t)
	seedDistricts(t, db)
	ctx := context.Background()

	// UP01 completes 75%, UP02 completes 80%.
	seedRecord(t, db, "UP01", "2025-26", "May", time.Date(2025, 5, 15, 0, 0, 0, 0, time.UTC), 200, 150)
	seedRecord(t, db, "UP02", "2025-26", "April", time.Date(2025, 4, 15, 0, 0, 0, 0, time.UTC), 100, 80)

	payload, _, err := svc.CompareDistricts(ctx, []string{"UP01", "UP02"}, "", MetricCompletionRate)
	if err != nil {
		t.Fatalf("CompareDistricts: %v", err)
	}
	if payload.Metric != MetricCompletionRate {
		t.Errorf("metric = %q, want %q", payload.Metric, MetricCompletionRate)
	}
	if got := payload.Districts[0].District.DistrictCode; got != "UP02" {
		t.Errorf("first entry = %q, want UP02 (highest completion rate)", got)
	}

	// Works-taken-up ranks UP01 first instead.
	payload, _, err = svc.CompareDistricts(ctx, []string{"UP01", "UP02"}, "", MetricWorksTakenUp)
	if err != nil {
		t.Fatalf("CompareDistricts: %v", err)
	}
	if got := payload.Districts[0].District.DistrictCode; got != "UP01" {
		t.Errorf("first entry = %q, want UP01 (most works taken up)", got)
	}
}

func TestCompareDistrictsAllUnknown(t *testing.T) {
	svc, db := setupService(t)
	seedDistricts(t, db)

	_, _, err := svc.CompareDistricts(context.Background(), []string{"XX98", "XX99"}, "", "")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestStateSummaryAggregation(t *testing.T) {
	svc, db := setupService(t)
	seedDistricts(t, db)
	ctx := context.Background()

	fy := models.CurrentFinancialYear()
	seedRecord(t, db, "UP01", fy, "April", time.Now().UTC(), 100, 80)
	seedRecord(t, db, "UP02", fy, "April", time.Now().UTC(), 50, 50)

	summary, _, err := svc.StateSummary(ctx, "Uttar Pradesh")
	if err != nil {
		t.Fatalf("StateSummary: %v", err)
	}
	if summary.TotalWorks != 150 {
		t.Errorf("total works = %d, want 150", summary.TotalWorks)
	}
	if summary.CompletedWorks != 130 {
		t.Errorf("completed = %d, want 130", summary.CompletedWorks)
	}
	if summary.CompletionRate != 86.67 {
		t.Errorf("completion rate = %v, want 86.67", summary.CompletionRate)
	}
	if summary.TotalDistricts != 3 {
		t.Errorf("total districts = %d, want 3", summary.TotalDistricts)
	}
	if summary.ReportingDistricts != 2 {
		t.Errorf("reporting districts = %d, want 2", summary.ReportingDistricts)
	}
}

func TestStateSummaryZeroDenominator(t *testing.T) {
	svc, db := setupService(t)
	seedDistricts(t, db)

	// Districts exist but no records this financial year.
	summary, _, err := svc.StateSummary(context.Background(), "Bihar")
	if err != nil {
		t.Fatalf("StateSummary: %v", err)
	}
	if summary.CompletionRate != 0 {
		t.Errorf("rate = %v, want 0 for zero denominator", summary.CompletionRate)
	}
}

func TestStateSummaryUnknownState(t *testing.T) {
	svc, db := setupService(t)
	seedDistricts(t, db)

	_, _, err := svc.StateSummary(context.Background(), "Atlantis")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestCompletionRateRounding(t *testing.T) {
	tests := []struct {
		completed, total int64
		want             float64
	}{
		{130, 150, 86.67},
		{80, 100, 80},
		{0, 0, 0},
		{50, 0, 0},
		{1, 3, 33.33},
		{2, 3, 66.67},
	}
	for _, tt := range tests {
		if got := completionRate(tt.completed, tt.total); got != tt.want {
			t.Errorf("completionRate(%d, %d) = %v, want %v", tt.completed, tt.total, got, tt.want)
		}
	}
}

func TestNormalizeCodes(t *testing.T) {
	got := normalizeCodes([]string{"up02", " UP01 ", "UP02", "", "br01"})
	want := []string{"BR01", "UP01", "UP02"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got %v, want %v", got, want)
			break
		}
	}
}

func TestSearchDistricts(t *testing.T) {
	svc, db := setupService(t)
	seedDistricts(t, db)
	ctx := context.Background()

	exact, err := svc.SearchDistricts(ctx, "Varanasi")
	if err != nil {
		t.Fatalf("exact search: %v", err)
	}
	if exact.Count != 1 || exact.Matches[0].MatchType != "exact" {
		t.Errorf("exact match = %+v", exact)
	}

	alias, err := svc.SearchDistricts(ctx, "banaras")
	if err != nil {
		t.Fatalf("alias search: %v", err)
	}
	if alias.Count != 1 || alias.Matches[0].District.DistrictCode != "UP03" {
		t.Errorf("alias match = %+v", alias)
	}
	if alias.Matches[0].MatchType != "alias" {
		t.Errorf("match type = %q, want alias", alias.Matches[0].MatchType)
	}

	partial, err := svc.SearchDistricts(ctx, "luck")
	if err != nil {
		t.Fatalf("partial search: %v", err)
	}
	if partial.Count != 1 || partial.Matches[0].District.DistrictName != "Lucknow" {
		t.Errorf("partial match = %+v", partial)
	}

	if _, err := svc.SearchDistricts(ctx, "Gotham"); !errors.Is(err, ErrNotFound) {
		t.Errorf("no match err = %v, want ErrNotFound", err)
	}
	if _, err := svc.SearchDistricts(ctx, "   "); !errors.Is(err, ErrNotFound) {
		t.Errorf("blank query err = %v, want ErrNotFound", err)
	}
}

func TestClampLimit(t *testing.T) {
	svc, _ := setupService(t)

	if got := svc.clampLimit(0); got != 12 {
		t.Errorf("default = %d, want 12", got)
	}
	if got := svc.clampLimit(-5); got != 12 {
		t.Errorf("negative = %d, want 12", got)
	}
	if got := svc.clampLimit(500); got != 100 {
		t.Errorf("over max = %d, want 100", got)
	}
	if got := svc.clampLimit(7); got != 7 {
		t.Errorf("in range = %d, want 7", got)
	}
}

// MGNREGA Pulse - District Employment Statistics API
// Copyright 2026 Amrita Malviya
// SPDX-License-Identifier: MIT
// https://github.com/AmritaMalviya12/mgnrega-pulse

package source

import (
	"context"
	"testing"
	"time"

	"github.com/AmritaMalviya12/mgnrega-pulse/internal/models"
)

func pinnedFallback(t time.Time) *FallbackSource {
	f := NewFallbackSource()
	f.now = func() time.Time { return t }
	return f
}

func TestFallbackDatasetShape(t *testing.T) {
	f := pinnedFallback(time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC))

	records, err := f.FetchRecords(context.Background())
	if err != nil {
		t.Fatalf("FetchRecords: %v", err)
	}

	want := 15 * 12
	if len(records) != want {
		t.Fatalf("got %d records, want %d", len(records), want)
	}

	for _, r := range records {
		if r.FinancialYear != "2025-26" {
			t.Fatalf("financial year = %q, want 2025-26", r.FinancialYear)
		}
		if r.StateName != "Uttar Pradesh" {
			t.Fatalf("state = %q", r.StateName)
		}
		if !models.IsValidMonth(r.Month) {
			t.Fatalf("invalid month %q", r.Month)
		}
	}
}

func TestFallbackDeterministic(t *testing.T) {
	now := time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)
	ctx := context.Background()

	first, err := pinnedFallback(now).FetchRecords(ctx)
	if err != nil {
		t.Fatalf("first fetch: %v", err)
	}
	second, err := pinnedFallback(now).FetchRecords(ctx)
	if err != nil {
		t.Fatalf("second fetch: %v", err)
	}

	if len(first) != len(second) {
		t.Fatalf("lengths differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("record %d differs:\n%+v\n%+v", i, first[i], second[i])
		}
	}
}

func TestFallbackCompletedNeverExceedsTotal(t *testing.T) {
	f := pinnedFallback(time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC))

	records, err := f.FetchRecords(context.Background())
	if err != nil {
		t.Fatalf("FetchRecords: %v", err)
	}

	for _, r := range records {
		total := r.TotalWorksTakenUp.Int64(-1)
		completed := r.CompletedWorks.Int64(-1)
		if total < 0 || completed < 0 {
			t.Fatalf("unparseable works fields in %+v", r)
		}
		if completed > total {
			t.Errorf("%s %s: completed %d > total %d", r.DistrictCode, r.Month, completed, total)
		}
	}
}

func TestFallbackMonthDates(t *testing.T) {
	// January through March belong to the next calendar year.
	if got := monthDate(2025, 0); got.Month() != time.April || got.Year() != 2025 {
		t.Errorf("April = %v", got)
	}
	if got := monthDate(2025, 8); got.Month() != time.December || got.Year() != 2025 {
		t.Errorf("December = %v", got)
	}
	if got := monthDate(2025, 9); got.Month() != time.January || got.Year() != 2026 {
		t.Errorf("January = %v", got)
	}
	if got := monthDate(2025, 11); got.Month() != time.March || got.Year() != 2026 {
		t.Errorf("March = %v", got)
	}
}

func TestFallbackName(t *testing.T) {
	if got := NewFallbackSource().Name(); got != "fallback" {
		t.Errorf("Name() = %q", got)
	}
}

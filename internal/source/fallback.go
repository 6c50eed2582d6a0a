// MGNREGA Pulse - District Employment Statistics API
// Copyright 2026 Amrita Malviya
// SPDX-License-Identifier: MIT
// https://github.com/AmritaMalviya12/mgnrega-pulse

package source

import (
	"context"
	"fmt"
	"time"

	"github.com/AmritaMalviya12/mgnrega-pulse/internal/models"
)

// fallbackDistricts is the fixed roster of the synthetic dataset: fifteen
// Uttar Pradesh districts with stable codes. The roster never changes so
// repeated fallback syncs upsert the same natural keys.
var fallbackDistricts = []struct {
	Code string
	Name string
}{
	{"UP01", "Agra"},
	{"UP02", "Lucknow"},
	{"UP03", "Varanasi"},
	{"UP04", "Kanpur Nagar"},
	{"UP05", "Prayagraj"},
	{"UP06", "Gorakhpur"},
	{"UP07", "Meerut"},
	{"UP08", "Ghaziabad"},
	{"UP09", "Jhansi"},
	{"UP10", "Aligarh"},
	{"UP11", "Moradabad"},
	{"UP12", "Saharanpur"},
	{"UP13", "Faizabad"},
	{"UP14", "Mathura"},
	{"UP15", "Bareilly"},
}

// FallbackSource generates a deterministic synthetic dataset: every roster
// district gets one record per financial-year month. Values are pure
// functions of (district index, month index), so two runs in the same
// financial year produce byte-identical datasets and upserts converge
// instead of drifting.
type FallbackSource struct {
	// now allows tests to pin the financial year. Defaults to time.Now.
	now func() time.Time
}

// NewFallbackSource creates the synthetic dataset generator.
func NewFallbackSource() *FallbackSource {
	return &FallbackSource{now: time.Now}
}

// Name identifies the synthetic source.
func (f *FallbackSource) Name() string {
	return "fallback"
}

// FetchRecords generates the full synthetic dataset for the current
// financial year. Never fails; the fallback exists so sync always has data.
func (f *FallbackSource) FetchRecords(_ context.Context) ([]models.RawRecord, error) {
	now := f.now()
	fy := models.FinancialYear(now)
	year := now.Year()

	records := make([]models.RawRecord, 0, len(fallbackDistricts)*len(models.FinancialYearMonths))
	for di, district := range fallbackDistricts {
		for mi, month := range models.FinancialYearMonths {
			records = append(records, models.RawRecord{
				DistrictCode:                 district.Code,
				DistrictName:                 district.Name,
				StateName:                    "Uttar Pradesh",
				FinancialYear:                fy,
				Month:                        month,
				HouseholdsProvidedEmployment: flexInt(syntheticValue(di, mi, 800, 2400)),
				TotalPersonDays:              flexInt(syntheticValue(di, mi, 18000, 52000)),
				TotalWagesPaid:               flexFloat(float64(syntheticValue(di, mi, 4100000, 11900000))),
				TotalWorksTakenUp:            flexInt(syntheticValue(di, mi, 90, 260)),
				CompletedWorks:               flexInt(completedFrom(syntheticValue(di, mi, 90, 260), di, mi)),
				DataDate:                     models.FlexString(monthDate(year, mi).Format(time.RFC3339)),
			})
		}
	}
	return records, nil
}

// syntheticValue derives a stable pseudo-figure in [low, high) from the
// district and month indices. No randomness: determinism is the point.
func syntheticValue(districtIdx, monthIdx int, low, high int64) int64 {
	span := high - low
	// Small primes spread values across the range without clustering.
	seed := int64(districtIdx)*31 + int64(monthIdx)*17
	return low + (seed*7919)%span
}

// completedFrom derives completed works strictly below the total.
func completedFrom(total int64, districtIdx, monthIdx int) int64 {
	if total <= 0 {
		return 0
	}
	// Between 55% and 95% of the total, deterministically.
	pct := int64(55 + (districtIdx*13+monthIdx*7)%41)
	return total * pct / 100
}

// monthDate returns the 15th of the given financial-year month. Months
// April (index 0) through December fall in the labeled calendar year;
// January through March fall in the following year.
func monthDate(fyStartYear, monthIdx int) time.Time {
	calMonth := time.Month(4 + monthIdx)
	year := fyStartYear
	if monthIdx >= 9 { // January, February, March
		calMonth = time.Month(monthIdx - 8)
		year = fyStartYear + 1
	}
	return time.Date(year, calMonth, 15, 0, 0, 0, 0, time.UTC)
}

func flexInt(v int64) models.FlexString {
	return models.FlexString(fmt.Sprintf("%d", v))
}

func flexFloat(v float64) models.FlexString {
	return models.FlexString(fmt.Sprintf("%.2f", v))
}

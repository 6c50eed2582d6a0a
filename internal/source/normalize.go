// MGNREGA Pulse - District Employment Statistics API
// Copyright 2026 Amrita Malviya
// SPDX-License-Identifier: MIT
// https://github.com/AmritaMalviya12/mgnrega-pulse

package source

import (
	"strings"
	"time"

	"github.com/AmritaMalviya12/mgnrega-pulse/internal/logging"
	"github.com/AmritaMalviya12/mgnrega-pulse/internal/models"
)

// NormalizeResult is the output of one normalization pass.
type NormalizeResult struct {
	Records   []models.PerformanceRecord
	Districts []models.District

	// Skipped counts raw rows dropped for missing identity fields.
	Skipped int
}

// Normalize converts raw source rows into canonical performance records and
// the distinct districts they reference. Rows missing any natural-key field
// (district code, financial year, month) are skipped and counted. Numeric
// fields default to zero when missing or unparseable; a missing data date
// defaults to now. Normalization is pure apart from logging: the same input
// always yields the same output for a fixed now.
func Normalize(raw []models.RawRecord, now time.Time) NormalizeResult {
	result := NormalizeResult{
		Records:   make([]models.PerformanceRecord, 0, len(raw)),
		Districts: make([]models.District, 0, 16),
	}
	seen := make(map[string]bool, 16)

	for _, r := range raw {
		code := strings.ToUpper(strings.TrimSpace(r.DistrictCode))
		fy := strings.TrimSpace(r.FinancialYear)
		month := canonicalMonth(r.Month)

		if code == "" || fy == "" || month == "" {
			result.Skipped++
			continue
		}

		rec := models.PerformanceRecord{
			DistrictCode:                 code,
			DistrictName:                 strings.TrimSpace(r.DistrictName),
			StateName:                    strings.TrimSpace(r.StateName),
			FinancialYear:                fy,
			Month:                        month,
			HouseholdsProvidedEmployment: r.HouseholdsProvidedEmployment.Int64(0),
			TotalPersonDays:              r.TotalPersonDays.Int64(0),
			TotalWagesPaid:               r.TotalWagesPaid.Float64(0),
			TotalWorksTakenUp:            r.TotalWorksTakenUp.Int64(0),
			CompletedWorks:               r.CompletedWorks.Int64(0),
			DataDate:                     parseDataDate(r.DataDate, now),
		}

		if rec.CompletedWorks > rec.TotalWorksTakenUp {
			logging.Warn().
				Str("district_code", rec.DistrictCode).
				Str("financial_year", rec.FinancialYear).
				Str("month", rec.Month).
				Int64("completed", rec.CompletedWorks).
				Int64("total", rec.TotalWorksTakenUp).
				Msg("Completed works exceeds total works taken up")
		}

		result.Records = append(result.Records, rec)

		if !seen[code] {
			seen[code] = true
			result.Districts = append(result.Districts, models.District{
				DistrictCode: code,
				DistrictName: rec.DistrictName,
				StateName:    rec.StateName,
			})
		}
	}

	return result
}

// canonicalMonth maps a raw month label onto the fixed reporting-month
// spelling, or returns "" for anything unrecognized.
func canonicalMonth(raw string) string {
	trimmed := strings.TrimSpace(raw)
	for _, m := range models.FinancialYearMonths {
		if strings.EqualFold(m, trimmed) {
			return m
		}
	}
	return ""
}

// parseDataDate accepts RFC 3339 or plain dates, defaulting to now.
func parseDataDate(raw models.FlexString, now time.Time) time.Time {
	s := raw.String()
	if s == "" {
		return now.UTC()
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02", "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return now.UTC()
}

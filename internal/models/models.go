// MGNREGA Pulse - District Employment Statistics API
// Copyright 2026 Amrita Malviya
// SPDX-License-Identifier: MIT
// https://github.com/AmritaMalviya12/mgnrega-pulse

package models

import (
	"strconv"
	"strings"
	"time"
)

// District identifies an administrative unit in the directory.
// The district code is the stable join key used by performance records.
type District struct {
	DistrictCode string    `json:"district_code"`
	DistrictName string    `json:"district_name"`
	StateName    string    `json:"state_name"`
	CreatedAt    time.Time `json:"created_at"`
}

// PerformanceRecord holds one district's MGNREGA statistics for one
// (financial_year, month) reporting period. The triple
// (district_code, financial_year, month) is the natural key; writes always
// upsert by that key so repeated syncs never duplicate a period.
type PerformanceRecord struct {
	DistrictCode                 string    `json:"district_code"`
	DistrictName                 string    `json:"district_name"`
	StateName                    string    `json:"state_name"`
	FinancialYear                string    `json:"financial_year"`
	Month                        string    `json:"month"`
	HouseholdsProvidedEmployment int64     `json:"households_provided_employment"`
	TotalPersonDays              int64     `json:"total_person_days"`
	TotalWagesPaid               float64   `json:"total_wages_paid"`
	TotalWorksTakenUp            int64     `json:"total_works_taken_up"`
	CompletedWorks               int64     `json:"completed_works"`
	DataDate                     time.Time `json:"data_date"`
	CreatedAt                    time.Time `json:"created_at"`
}

// NaturalKey returns the (district_code, financial_year, month) identity of
// the record as a single comparable string.
func (r *PerformanceRecord) NaturalKey() string {
	return r.DistrictCode + "|" + r.FinancialYear + "|" + r.Month
}

// StateSummary aggregates the current financial year's records across all
// districts of one state.
type StateSummary struct {
	State              string  `json:"state"`
	FinancialYear      string  `json:"financial_year"`
	TotalDistricts     int     `json:"totalDistricts"`
	ReportingDistricts int     `json:"reportingDistricts"`
	TotalHouseholds    int64   `json:"totalHouseholds"`
	TotalPersonDays    int64   `json:"totalPersonDays"`
	TotalWages         float64 `json:"totalWages"`
	TotalWorks         int64   `json:"totalWorks"`
	CompletedWorks     int64   `json:"completedWorks"`
	CompletionRate     float64 `json:"completionRate"`
}

// DistrictMatch is the result of a fuzzy district-name lookup.
type DistrictMatch struct {
	District   District `json:"district"`
	MatchType  string   `json:"match_type"` // exact, alias, partial
	Confidence string   `json:"confidence"` // high, medium
}

// FinancialYearMonths lists the twelve reporting-period labels in
// financial-year order (April through March).
var FinancialYearMonths = []string{
	"April", "May", "June", "July", "August", "September",
	"October", "November", "December", "January", "February", "March",
}

// FinancialYear formats the fiscal label for the calendar year of t,
// e.g. 2026 -> "2026-27". The upstream dataset labels periods this way.
func FinancialYear(t time.Time) string {
	year := t.Year()
	return strconv.Itoa(year) + "-" + shortYear(year+1)
}

// CurrentFinancialYear returns the fiscal label for the current calendar year.
func CurrentFinancialYear() string {
	return FinancialYear(time.Now())
}

func shortYear(year int) string {
	s := strconv.Itoa(year)
	if len(s) < 2 {
		return s
	}
	return s[len(s)-2:]
}

// IsValidMonth reports whether label is one of the twelve reporting months.
func IsValidMonth(label string) bool {
	for _, m := range FinancialYearMonths {
		if strings.EqualFold(m, label) {
			return true
		}
	}
	return false
}

// MGNREGA Pulse - District Employment Statistics API
// Copyright 2026 Amrita Malviya
// SPDX-License-Identifier: MIT
// https://github.com/AmritaMalviya12/mgnrega-pulse

package models

import (
	"bytes"
	"strconv"
	"strings"
)

// FlexString is a string that also accepts JSON numbers, booleans, and null
// during unmarshaling. The upstream statistics API is inconsistent about
// whether numeric fields arrive quoted, so every numeric-like raw field uses
// this type and is coerced later by the normalizer.
type FlexString string

// UnmarshalJSON accepts strings, numbers, booleans, and null.
func (f *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if data[0] == '"' {
		unquoted, err := strconv.Unquote(string(data))
		if err != nil {
			// Malformed quoting is treated as missing, not fatal; the
			// normalizer substitutes defaults for unparseable values.
			*f = ""
			return nil
		}
		*f = FlexString(unquoted)
		return nil
	}
	*f = FlexString(data)
	return nil
}

// String returns the underlying value with surrounding whitespace removed.
func (f FlexString) String() string {
	return strings.TrimSpace(string(f))
}

// Int64 parses the value as a non-negative count, substituting def for
// missing or unparseable input. Fractional input is truncated toward zero.
func (f FlexString) Int64(def int64) int64 {
	s := f.String()
	if s == "" {
		return def
	}
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return v
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return int64(v)
	}
	return def
}

// Float64 parses the value as a decimal amount, substituting def for missing
// or unparseable input.
func (f FlexString) Float64(def float64) float64 {
	s := f.String()
	if s == "" {
		return def
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return v
	}
	return def
}

// RawRecord is one row as delivered by the external statistics source, either
// the live data.gov.in resource or the synthetic fallback generator. Field
// types are deliberately loose; Normalize produces the canonical
// PerformanceRecord shape.
type RawRecord struct {
	DistrictCode                 string     `json:"district_code"`
	DistrictName                 string     `json:"district_name"`
	StateName                    string     `json:"state_name"`
	FinancialYear                string     `json:"financial_year"`
	Month                        string     `json:"month"`
	HouseholdsProvidedEmployment FlexString `json:"households_provided_employment"`
	TotalPersonDays              FlexString `json:"total_person_days"`
	TotalWagesPaid               FlexString `json:"total_wages_paid"`
	TotalWorksTakenUp            FlexString `json:"total_works_taken_up"`
	CompletedWorks               FlexString `json:"completed_works"`
	DataDate                     FlexString `json:"data_date"`
}

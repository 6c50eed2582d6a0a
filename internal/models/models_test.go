// MGNREGA Pulse - District Employment Statistics API
// Copyright 2026 Amrita Malviya
// SPDX-License-Identifier: MIT
// https://github.com/AmritaMalviya12/mgnrega-pulse

package models

import (
	"testing"
	"time"

	"github.com/goccy/go-json"
)

func TestFinancialYear(t *testing.T) {
	cases := []struct {
		year int
		want string
	}{
		{2024, "2024-25"},
		{2026, "2026-27"},
		{1999, "1999-00"},
		{2099, "2099-00"},
	}

	for _, tc := range cases {
		got := FinancialYear(time.Date(tc.year, time.June, 15, 0, 0, 0, 0, time.UTC))
		if got != tc.want {
			t.Errorf("FinancialYear(%d) = %q, want %q", tc.year, got, tc.want)
		}
	}
}

func TestIsValidMonth(t *testing.T) {
	if !IsValidMonth("April") {
		t.Error("April should be a valid month")
	}
	if !IsValidMonth("march") {
		t.Error("month matching should be case-insensitive")
	}
	if IsValidMonth("Aprils") {
		t.Error("Aprils should not be a valid month")
	}
	if IsValidMonth("") {
		t.Error("empty label should not be a valid month")
	}
}

func TestNaturalKey(t *testing.T) {
	r := PerformanceRecord{DistrictCode: "UP01", FinancialYear: "2026-27", Month: "April"}
	if got := r.NaturalKey(); got != "UP01|2026-27|April" {
		t.Errorf("NaturalKey() = %q", got)
	}
}

func TestFlexStringUnmarshal(t *testing.T) {
	var row struct {
		Count FlexString `json:"count"`
		Wages FlexString `json:"wages"`
		Date  FlexString `json:"date"`
	}

	// Upstream delivers the same fields sometimes quoted, sometimes not.
	payload := `{"count": 1234, "wages": "456.78", "date": null}`
	if err := json.Unmarshal([]byte(payload), &row); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	if got := row.Count.Int64(0); got != 1234 {
		t.Errorf("Count.Int64 = %d, want 1234", got)
	}
	if got := row.Wages.Float64(0); got != 456.78 {
		t.Errorf("Wages.Float64 = %v, want 456.78", got)
	}
	if got := row.Date.String(); got != "" {
		t.Errorf("Date.String = %q, want empty", got)
	}
}

func TestFlexStringDefaults(t *testing.T) {
	cases := []struct {
		in   FlexString
		want int64
	}{
		{"", 0},
		{"not-a-number", 0},
		{"42", 42},
		{"42.9", 42},
		{"  7 ", 7},
	}
	for _, tc := range cases {
		if got := tc.in.Int64(0); got != tc.want {
			t.Errorf("FlexString(%q).Int64(0) = %d, want %d", tc.in, got, tc.want)
		}
	}

	if got := FlexString("bad").Float64(0); got != 0 {
		t.Errorf("Float64 default = %v, want 0", got)
	}
	if got := FlexString("512.25").Float64(0); got != 512.25 {
		t.Errorf("Float64 = %v, want 512.25", got)
	}
}

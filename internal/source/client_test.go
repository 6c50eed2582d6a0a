// MGNREGA Pulse - District Employment Statistics API
// Copyright 2026 Amrita Malviya
// SPDX-License-Identifier: MIT
// https://github.com/AmritaMalviya12/mgnrega-pulse

package source

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/AmritaMalviya12/mgnrega-pulse/internal/config"
)

func testClientConfig(baseURL string) *config.DataGovConfig {
	return &config.DataGovConfig{
		BaseURL:       baseURL,
		APIKey:        "test-key",
		Timeout:       5 * time.Second,
		PageLimit:     1000,
		RatePerSecond: 100,
		Burst:         10,
	}
}

func TestFetchRecordsSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("api-key") != "test-key" {
			t.Errorf("api-key = %q", q.Get("api-key"))
		}
		if q.Get("format") != "json" {
			t.Errorf("format = %q", q.Get("format"))
		}
		if q.Get("limit") != "1000" {
			t.Errorf("limit = %q", q.Get("limit"))
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"status": "ok",
			"total": 2,
			"count": 2,
			"records": [
				{"district_code": "UP01", "district_name": "Agra", "state_name": "Uttar Pradesh",
				 "financial_year": "2025-26", "month": "April",
				 "total_person_days": "34000", "total_wages_paid": 7820000.5},
				{"district_code": "UP02", "district_name": "Lucknow", "state_name": "Uttar Pradesh",
				 "financial_year": "2025-26", "month": "April",
				 "total_person_days": 29000}
			]
		}`))
	}))
	defer srv.Close()

	client := NewDataGovClient(testClientConfig(srv.URL))
	records, err := client.FetchRecords(context.Background())
	if err != nil {
		t.Fatalf("FetchRecords: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}

	// Numeric fields arrive both quoted and bare; both must parse.
	if records[0].TotalPersonDays.Int64(0) != 34000 {
		t.Errorf("quoted person days = %d", records[0].TotalPersonDays.Int64(0))
	}
	if records[1].TotalPersonDays.Int64(0) != 29000 {
		t.Errorf("bare person days = %d", records[1].TotalPersonDays.Int64(0))
	}
	if records[0].TotalWagesPaid.Float64(0) != 7820000.5 {
		t.Errorf("wages = %f", records[0].TotalWagesPaid.Float64(0))
	}
}

func TestFetchRecordsNoAPIKey(t *testing.T) {
	cfg := testClientConfig("http://unused.invalid")
	cfg.APIKey = ""

	client := NewDataGovClient(cfg)
	_, err := client.FetchRecords(context.Background())
	if !errors.Is(err, ErrNoAPIKey) {
		t.Errorf("err = %v, want ErrNoAPIKey", err)
	}
}

func TestFetchRecordsUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("upstream maintenance window"))
	}))
	defer srv.Close()

	client := NewDataGovClient(testClientConfig(srv.URL))
	_, err := client.FetchRecords(context.Background())
	if err == nil {
		t.Fatal("expected error for HTTP 503")
	}
	if !strings.Contains(err.Error(), "503") {
		t.Errorf("error should carry status code: %v", err)
	}
	if !strings.Contains(err.Error(), "maintenance") {
		t.Errorf("error should carry response body: %v", err)
	}
}

func TestFetchRecordsMalformedJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"records": [`))
	}))
	defer srv.Close()

	client := NewDataGovClient(testClientConfig(srv.URL))
	if _, err := client.FetchRecords(context.Background()); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestFetchRecordsContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	client := NewDataGovClient(testClientConfig(srv.URL))
	if _, err := client.FetchRecords(ctx); err == nil {
		t.Fatal("expected context deadline error")
	}
}

func TestReadBodyForErrorTruncates(t *testing.T) {
	long := strings.Repeat("x", maxErrorBodySize+100)
	body := readBodyForError(strings.NewReader(long))
	if !strings.HasSuffix(string(body), "... (truncated)") {
		t.Error("oversized body should be truncated")
	}
}

func TestClientName(t *testing.T) {
	client := NewDataGovClient(testClientConfig("http://unused.invalid"))
	if client.Name() != "live" {
		t.Errorf("Name() = %q", client.Name())
	}
}

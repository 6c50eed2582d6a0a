// MGNREGA Pulse - District Employment Statistics API
// Copyright 2026 Amrita Malviya
// SPDX-License-Identifier: MIT
// https://github.com/AmritaMalviya12/mgnrega-pulse

package source

import (
	"context"
	"errors"
	"testing"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/AmritaMalviya12/mgnrega-pulse/internal/models"
)

// fakeSource scripts FetchRecords outcomes for breaker tests.
type fakeSource struct {
	records []models.RawRecord
	err     error
	calls   int
}

func (f *fakeSource) FetchRecords(_ context.Context) ([]models.RawRecord, error) {
	f.calls++
	return f.records, f.err
}

func (f *fakeSource) Name() string { return "fake" }

func TestBreakerPassesThroughSuccess(t *testing.T) {
	inner := &fakeSource{records: []models.RawRecord{{DistrictCode: "UP01"}}}
	b := NewBreakerSource(inner)

	records, err := b.FetchRecords(context.Background())
	if err != nil {
		t.Fatalf("FetchRecords: %v", err)
	}
	if len(records) != 1 || records[0].DistrictCode != "UP01" {
		t.Errorf("records = %+v", records)
	}
}

func TestBreakerOpensAfterRepeatedFailures(t *testing.T) {
	inner := &fakeSource{err: errors.New("upstream down")}
	b := NewBreakerSource(inner)

	// Five failures hit the 60% threshold at the minimum request count.
	for i := 0; i < 5; i++ {
		if _, err := b.FetchRecords(context.Background()); err == nil {
			t.Fatalf("call %d: expected error", i)
		}
	}

	callsBefore := inner.calls
	_, err := b.FetchRecords(context.Background())
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Fatalf("err = %v, want ErrOpenState", err)
	}
	if inner.calls != callsBefore {
		t.Error("open breaker should not reach the inner source")
	}
}

func TestBreakerDoesNotTripOnMissingKey(t *testing.T) {
	inner := &fakeSource{err: ErrNoAPIKey}
	b := NewBreakerSource(inner)

	for i := 0; i < 10; i++ {
		_, err := b.FetchRecords(context.Background())
		if !errors.Is(err, ErrNoAPIKey) {
			t.Fatalf("call %d: err = %v, want ErrNoAPIKey", i, err)
		}
	}

	// Every call reached the inner source; the breaker stayed closed.
	if inner.calls != 10 {
		t.Errorf("inner calls = %d, want 10", inner.calls)
	}
}

func TestBreakerEmptyDatasetIsNotNoKey(t *testing.T) {
	inner := &fakeSource{records: []models.RawRecord{}}
	b := NewBreakerSource(inner)

	records, err := b.FetchRecords(context.Background())
	if err != nil {
		t.Fatalf("FetchRecords: %v", err)
	}
	if records == nil || len(records) != 0 {
		t.Errorf("records = %v, want empty non-error result", records)
	}
}

func TestBreakerName(t *testing.T) {
	b := NewBreakerSource(&fakeSource{})
	if b.Name() != "fake" {
		t.Errorf("Name() = %q, want delegated inner name", b.Name())
	}
}

// MGNREGA Pulse - District Employment Statistics API
// Copyright 2026 Amrita Malviya
// SPDX-License-Identifier: MIT
// https://github.com/AmritaMalviya12/mgnrega-pulse

package source

import (
	"context"
	"errors"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/AmritaMalviya12/mgnrega-pulse/internal/logging"
	"github.com/AmritaMalviya12/mgnrega-pulse/internal/metrics"
	"github.com/AmritaMalviya12/mgnrega-pulse/internal/models"
)

// BreakerSource wraps a Source with a circuit breaker so a failing upstream
// stops being hammered while the fallback dataset serves syncs.
//
// The breaker uses real time for its interval and timeout calculations.
// Tests should mock the wrapped source, not the breaker.
type BreakerSource struct {
	inner Source
	cb    *gobreaker.CircuitBreaker[[]models.RawRecord]
	name  string
}

// NewBreakerSource wraps source with a circuit breaker.
// Configuration:
//   - Max 3 requests in half-open state
//   - 1 minute measurement window
//   - 2 minute timeout before attempting recovery
//   - Opens after 60% failure rate with minimum 5 requests
func NewBreakerSource(inner Source) *BreakerSource {
	cbName := "datagov"

	metrics.CircuitBreakerState.WithLabelValues(cbName).Set(0) // 0 = closed

	cb := gobreaker.NewCircuitBreaker[[]models.RawRecord](gobreaker.Settings{
		Name:        cbName,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     2 * time.Minute,

		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 5 {
				return false
			}

			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			shouldTrip := failureRatio >= 0.6

			if shouldTrip {
				logging.Warn().
					Uint32("failures", counts.TotalFailures).
					Float64("failure_rate", failureRatio*100).
					Msg("[CIRCUIT BREAKER] Opening circuit")
			}

			return shouldTrip
		},

		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr := stateToString(from)
			toStr := stateToString(to)

			logging.Info().Str("from", fromStr).Str("to", toStr).Msg("[CIRCUIT BREAKER] State transition")

			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, fromStr, toStr).Inc()
		},
	})

	return &BreakerSource{
		inner: inner,
		cb:    cb,
		name:  cbName,
	}
}

// Name identifies the wrapped source.
func (b *BreakerSource) Name() string {
	return b.inner.Name()
}

// FetchRecords fetches through the circuit breaker. A missing API key is not
// counted as an upstream failure; it is a configuration state that the
// breaker cannot recover from by waiting.
func (b *BreakerSource) FetchRecords(ctx context.Context) ([]models.RawRecord, error) {
	var noKey bool
	records, err := b.cb.Execute(func() ([]models.RawRecord, error) {
		records, err := b.inner.FetchRecords(ctx)
		if errors.Is(err, ErrNoAPIKey) {
			// Surface without tripping the breaker.
			noKey = true
			return nil, nil
		}
		return records, err
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.RecordUpstreamRequest("rejected", 0)
			logging.Warn().Err(err).Msg("[CIRCUIT BREAKER] Request rejected")
		}
		return nil, err
	}
	if noKey {
		return nil, ErrNoAPIKey
	}
	return records, nil
}

// stateToFloat converts circuit breaker state to a numeric value for metrics.
func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

// stateToString converts circuit breaker state to a string for logging.
func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

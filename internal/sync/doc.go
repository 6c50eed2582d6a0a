// MGNREGA Pulse - District Employment Statistics API
// Copyright 2026 Amrita Malviya
// SPDX-License-Identifier: MIT
// https://github.com/AmritaMalviya12/mgnrega-pulse

// Package sync orchestrates the daily data refresh: fetch from the live
// data.gov.in source (or the deterministic fallback when the upstream is
// unavailable), normalize the raw rows, upsert districts and performance
// records by natural key, and invalidate cached read responses.
//
// Only one sync runs at a time. Triggers are "startup" (blocking, before
// the server listens), "scheduled" (daily at a configured wall-clock time),
// and "manual" (the POST sync endpoint).
package sync

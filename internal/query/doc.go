// MGNREGA Pulse - District Employment Statistics API
// Copyright 2026 Amrita Malviya
// SPDX-License-Identifier: MIT
// https://github.com/AmritaMalviya12/mgnrega-pulse

// Package query implements the read path. Each operation derives a
// deterministic cache key from its parameters, serves hits from the
// DuckDB-backed cache, and on miss re-derives from the database and
// populates the cache with a per-component TTL. Losing the cache never
// changes results, only latency.
package query

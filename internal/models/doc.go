// MGNREGA Pulse - District Employment Statistics API
// Copyright 2026 Amrita Malviya
// SPDX-License-Identifier: MIT
// https://github.com/AmritaMalviya12/mgnrega-pulse

// Package models defines the canonical data shapes shared across the
// application: the district directory, per-period performance records, raw
// upstream rows, aggregation results, and the HTTP response envelope.
package models

// MGNREGA Pulse - District Employment Statistics API
// Copyright 2026 Amrita Malviya
// SPDX-License-Identifier: MIT
// https://github.com/AmritaMalviya12/mgnrega-pulse

// Package middleware provides HTTP middleware shared by all routes:
// request IDs with logger propagation, Prometheus instrumentation keyed by
// chi route pattern, and gzip response compression.
package middleware

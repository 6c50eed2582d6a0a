// MGNREGA Pulse - District Employment Statistics API
// Copyright 2026 Amrita Malviya
// SPDX-License-Identifier: MIT
// https://github.com/AmritaMalviya12/mgnrega-pulse

package models

import (
	"time"
)

// APIResponse is the standardized envelope returned by every HTTP endpoint.
//
// Status is "success" or "error". On success Data carries the payload; on
// error the Error field describes the failure and Data is null. Metadata is
// always present so clients can observe cache behaviour and query timing.
//
// Example:
//
//	{
//	  "status": "success",
//	  "data": {"count": 15, "districts": [...]},
//	  "metadata": {"timestamp": "2026-08-29T12:00:00Z", "cached": true}
//	}
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata carries per-response observability fields.
type Metadata struct {
	Timestamp   time.Time `json:"timestamp"`
	QueryTimeMS int64     `json:"query_time_ms,omitempty"`
	Cached      bool      `json:"cached,omitempty"`
}

// APIError is a structured error payload.
//
// Common codes:
//   - VALIDATION_ERROR: invalid request parameters
//   - NOT_FOUND: unknown district code or state name
//   - DATABASE_ERROR: persistence read/write failure
//   - SYNC_FAILED: on-demand refresh could not complete
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// SyncResult reports the outcome of one full synchronization run.
type SyncResult struct {
	RecordsWritten   int       `json:"records"`
	DistrictsWritten int       `json:"districts"`
	Source           string    `json:"source"` // live or fallback
	Duration         string    `json:"duration"`
	CompletedAt      time.Time `json:"completed_at"`
}

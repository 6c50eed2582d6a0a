// MGNREGA Pulse - District Employment Statistics API
// Copyright 2026 Amrita Malviya
// SPDX-License-Identifier: MIT
// https://github.com/AmritaMalviya12/mgnrega-pulse

/*
Package metrics provides Prometheus metrics collection and export.

Metrics are exposed at the /metrics endpoint in Prometheus text format:

	curl http://localhost:3000/metrics

# Available Metrics

API:
  - api_requests_total (counter): method, endpoint, status_code
  - api_request_duration_seconds (histogram): method, endpoint
  - api_active_requests (gauge)

Database:
  - duckdb_query_duration_seconds (histogram): operation, table
  - duckdb_query_errors_total (counter): operation, table

Sync:
  - sync_runs_total (counter): trigger (startup, scheduled, manual),
    result (success, failure, skipped)
  - sync_source_total (counter): source (live, fallback)
  - sync_duration_seconds (histogram)
  - sync_records_processed_total, sync_districts_processed_total (counters)
  - sync_last_success_timestamp (gauge)

Cache:
  - cache_hits_total, cache_misses_total, cache_evictions_total (counters):
    component (directory, performance, compare, summary)

Upstream:
  - datagov_requests_total (counter): result (success, error, rejected)
  - datagov_request_duration_seconds (histogram)
  - circuit_breaker_state (gauge): 0=closed, 1=half-open, 2=open

All recording functions are safe for concurrent use; the Prometheus client
handles synchronization internally. Endpoint labels use chi route patterns,
not raw paths, to keep cardinality bounded.
*/
package metrics

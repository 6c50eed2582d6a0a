// MGNREGA Pulse - District Employment Statistics API
// Copyright 2026 Amrita Malviya
// SPDX-License-Identifier: MIT
// https://github.com/AmritaMalviya12/mgnrega-pulse

/*
Package database provides DuckDB-backed persistence for district employment
statistics.

The schema has three tables: districts (the directory), performance_records
(one row per district and reporting period, upserted by natural key during
sync), and api_cache (serialized query responses, see the cache package).

All operations take a context and apply their own timeout on top of it.
Writes use INSERT ... ON CONFLICT DO UPDATE so repeated syncs converge on
the latest upstream figures without ever duplicating a reporting period.

DuckDB runs embedded via database/sql:

	db, err := database.New(&cfg.Database)
	if err != nil {
	    return err
	}
	defer db.Close()

Lookups that match no rows return ErrNotFound rather than a nil result.
*/
package database

// MGNREGA Pulse - District Employment Statistics API
// Copyright 2026 Amrita Malviya
// SPDX-License-Identifier: MIT
// https://github.com/AmritaMalviya12/mgnrega-pulse

/*
Package cache provides a read-through TTL cache for serialized query
responses.

Entries live in a Store, implemented by the database package on the
api_cache table, so cached responses survive process restarts. Each entry
carries a component tag (directory, performance, compare, summary) for
group invalidation after sync, and a schema version so entries written by
an older build are treated as misses instead of unmarshaling into the wrong
shape.

Expiry is passive: every read checks the entry's expiry, so a stale entry
is never served even if the background sweep has not run. The sweep loop
only reclaims storage.

Keys are derived from the query method name and its parameters:

	key := cache.GenerateKey("district_performance", params)
	hit, err := c.Get(ctx, key, "performance", &result)
	if !hit {
	    // compute result, then
	    _ = c.SetWithTTL(ctx, key, "performance", result, 30*time.Minute)
	}
*/
package cache

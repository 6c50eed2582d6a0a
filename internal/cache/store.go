// MGNREGA Pulse - District Employment Statistics API
// Copyright 2026 Amrita Malviya
// SPDX-License-Identifier: MIT
// https://github.com/AmritaMalviya12/mgnrega-pulse

package cache

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by Store.GetEntry when no entry exists for a key.
var ErrNotFound = errors.New("cache entry not found")

// SchemaVersion tags every payload envelope. Entries written by an older
// build are treated as misses instead of being deserialized into the wrong
// shape.
const SchemaVersion = 1

// Entry is one serialized response in the cache store.
type Entry struct {
	Key           string
	Component     string
	SchemaVersion int
	Payload       []byte
	CreatedAt     time.Time
	ExpiresAt     time.Time
}

// Store is the persistence backend for cache entries. The database package
// implements it on the api_cache table, so cached responses survive process
// restarts and expire independently of process lifetime.
type Store interface {
	// GetEntry returns the entry for key, or ErrNotFound. Expiry is NOT
	// checked here; the Cache wrapper owns expiry semantics.
	GetEntry(ctx context.Context, key string) (*Entry, error)

	// PutEntry inserts or replaces the entry for its key.
	PutEntry(ctx context.Context, entry *Entry) error

	// DeleteEntry removes one entry. Deleting a missing key is not an error.
	DeleteEntry(ctx context.Context, key string) error

	// DeleteComponent removes all entries tagged with the component and
	// returns how many were removed.
	DeleteComponent(ctx context.Context, component string) (int, error)

	// DeleteExpired removes entries whose expiry is at or before the given
	// time and returns how many were removed.
	DeleteExpired(ctx context.Context, before time.Time) (int, error)
}

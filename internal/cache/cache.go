// MGNREGA Pulse - District Employment Statistics API
// Copyright 2026 Amrita Malviya
// SPDX-License-Identifier: MIT
// https://github.com/AmritaMalviya12/mgnrega-pulse

package cache

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"github.com/AmritaMalviya12/mgnrega-pulse/internal/logging"
	"github.com/AmritaMalviya12/mgnrega-pulse/internal/metrics"
)

// Cache is a read-through TTL cache over a Store. Expiry is enforced
// passively on every read; a background sweep only reclaims storage, so
// correctness never depends on the sweep having run.
type Cache struct {
	store         Store
	defaultTTL    time.Duration
	sweepInterval time.Duration

	stats Stats

	stopChan chan struct{}
	wg       sync.WaitGroup
	startMu  sync.Mutex
	started  bool
}

// Stats tracks cache performance counters.
type Stats struct {
	mu          sync.RWMutex
	Hits        int64
	Misses      int64
	Evictions   int64
	LastCleanup time.Time
}

// New creates a cache over the given store. The sweep loop is not started
// until Start is called.
func New(store Store, defaultTTL, sweepInterval time.Duration) *Cache {
	return &Cache{
		store:         store,
		defaultTTL:    defaultTTL,
		sweepInterval: sweepInterval,
		stopChan:      make(chan struct{}),
	}
}

// Get looks up key and unmarshals the payload into dest. Returns true on a
// hit. Expired or version-mismatched entries are deleted and reported as
// misses. Store errors other than ErrNotFound are returned so callers can
// distinguish a miss from a broken backend.
func (c *Cache) Get(ctx context.Context, key, component string, dest interface{}) (bool, error) {
	entry, err := c.store.GetEntry(ctx, key)
	if errors.Is(err, ErrNotFound) {
		c.recordMiss(component)
		return false, nil
	}
	if err != nil {
		c.recordMiss(component)
		return false, fmt.Errorf("cache lookup failed: %w", err)
	}

	if time.Now().After(entry.ExpiresAt) || entry.SchemaVersion != SchemaVersion {
		if delErr := c.store.DeleteEntry(ctx, key); delErr != nil {
			logging.Warn().Err(delErr).Str("key", key).Msg("Failed to delete stale cache entry")
		}
		c.recordMiss(component)
		c.recordEvictions(component, 1)
		return false, nil
	}

	if err := json.Unmarshal(entry.Payload, dest); err != nil {
		// A payload that no longer unmarshals is as good as absent.
		if delErr := c.store.DeleteEntry(ctx, key); delErr != nil {
			logging.Warn().Err(delErr).Str("key", key).Msg("Failed to delete corrupt cache entry")
		}
		c.recordMiss(component)
		return false, nil
	}

	c.recordHit(component)
	return true, nil
}

// Set stores value under key with the default TTL.
func (c *Cache) Set(ctx context.Context, key, component string, value interface{}) error {
	return c.SetWithTTL(ctx, key, component, value, c.defaultTTL)
}

// SetWithTTL stores value under key with a custom TTL. An existing entry for
// the key is replaced.
func (c *Cache) SetWithTTL(ctx context.Context, key, component string, value interface{}, ttl time.Duration) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal cache payload: %w", err)
	}

	now := time.Now()
	entry := &Entry{
		Key:           key,
		Component:     component,
		SchemaVersion: SchemaVersion,
		Payload:       payload,
		CreatedAt:     now,
		ExpiresAt:     now.Add(ttl),
	}

	if err := c.store.PutEntry(ctx, entry); err != nil {
		return fmt.Errorf("failed to store cache entry: %w", err)
	}
	return nil
}

// Delete removes one entry.
func (c *Cache) Delete(ctx context.Context, key, component string) error {
	if err := c.store.DeleteEntry(ctx, key); err != nil {
		return fmt.Errorf("failed to delete cache entry: %w", err)
	}
	c.recordEvictions(component, 1)
	return nil
}

// InvalidateComponent removes every entry tagged with the component.
// Called after sync so readers see fresh data immediately.
func (c *Cache) InvalidateComponent(ctx context.Context, component string) error {
	removed, err := c.store.DeleteComponent(ctx, component)
	if err != nil {
		return fmt.Errorf("failed to invalidate component %s: %w", component, err)
	}
	c.recordEvictions(component, removed)
	return nil
}

// Start launches the background sweep loop. Safe to call once.
func (c *Cache) Start() {
	c.startMu.Lock()
	defer c.startMu.Unlock()
	if c.started {
		return
	}
	c.started = true

	c.wg.Add(1)
	go c.sweepLoop()
}

// Stop terminates the sweep loop and waits for it to exit.
func (c *Cache) Stop() {
	c.startMu.Lock()
	defer c.startMu.Unlock()
	if !c.started {
		return
	}
	c.started = false

	close(c.stopChan)
	c.wg.Wait()
}

// sweepLoop periodically removes expired entries from the store.
func (c *Cache) sweepLoop() {
	defer c.wg.Done()

	ticker := time.NewTicker(c.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.sweep()
		case <-c.stopChan:
			return
		}
	}
}

// sweep removes all expired entries.
func (c *Cache) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	now := time.Now()
	removed, err := c.store.DeleteExpired(ctx, now)
	if err != nil {
		logging.Warn().Err(err).Msg("Cache sweep failed")
		return
	}

	c.stats.mu.Lock()
	c.stats.Evictions += int64(removed)
	c.stats.LastCleanup = now
	c.stats.mu.Unlock()

	if removed > 0 {
		logging.Debug().Int("removed", removed).Msg("Cache sweep removed expired entries")
	}
}

// GetStats returns a snapshot of current cache counters.
func (c *Cache) GetStats() Stats {
	c.stats.mu.RLock()
	defer c.stats.mu.RUnlock()

	return Stats{
		Hits:        c.stats.Hits,
		Misses:      c.stats.Misses,
		Evictions:   c.stats.Evictions,
		LastCleanup: c.stats.LastCleanup,
	}
}

// HitRate returns the cache hit rate as a percentage.
func (c *Cache) HitRate() float64 {
	stats := c.GetStats()
	total := stats.Hits + stats.Misses
	if total == 0 {
		return 0.0
	}
	return float64(stats.Hits) / float64(total) * 100.0
}

func (c *Cache) recordHit(component string) {
	c.stats.mu.Lock()
	c.stats.Hits++
	c.stats.mu.Unlock()
	metrics.RecordCacheHit(component)
}

func (c *Cache) recordMiss(component string) {
	c.stats.mu.Lock()
	c.stats.Misses++
	c.stats.mu.Unlock()
	metrics.RecordCacheMiss(component)
}

func (c *Cache) recordEvictions(component string, count int) {
	if count <= 0 {
		return
	}
	c.stats.mu.Lock()
	c.stats.Evictions += int64(count)
	c.stats.mu.Unlock()
	metrics.RecordCacheEviction(component, count)
}

// GenerateKey creates a cache key from the method name and parameters.
// Parameters are serialized to JSON and hashed so structurally identical
// requests share one key.
func GenerateKey(method string, params interface{}) string {
	data, err := json.Marshal(params)
	if err != nil {
		// Fallback to simple string key
		return fmt.Sprintf("%s:%v", method, params)
	}

	hash := sha256.Sum256(data)
	return fmt.Sprintf("%s:%x", method, hash[:16])
}

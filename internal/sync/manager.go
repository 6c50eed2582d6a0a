// MGNREGA Pulse - District Employment Statistics API
// Copyright 2026 Amrita Malviya
// SPDX-License-Identifier: MIT
// https://github.com/AmritaMalviya12/mgnrega-pulse

package sync

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/AmritaMalviya12/mgnrega-pulse/internal/config"
	"github.com/AmritaMalviya12/mgnrega-pulse/internal/logging"
	"github.com/AmritaMalviya12/mgnrega-pulse/internal/metrics"
	"github.com/AmritaMalviya12/mgnrega-pulse/internal/models"
	"github.com/AmritaMalviya12/mgnrega-pulse/internal/source"
)

// DBInterface defines the database operations the sync pipeline needs.
type DBInterface interface {
	BulkUpsertDistricts(ctx context.Context, districts []models.District) (int, error)
	BulkUpsertPerformanceRecords(ctx context.Context, records []models.PerformanceRecord) (int, error)
}

// CacheInvalidator drops cached read responses after a data refresh.
type CacheInvalidator interface {
	InvalidateComponent(ctx context.Context, component string) error
}

// readComponents are the cache components invalidated after every
// successful sync, matching the components the query service writes.
var readComponents = []string{"directory", "performance", "compare", "summary"}

// ErrSyncInProgress is returned when a sync is requested while another run
// is still executing.
var ErrSyncInProgress = fmt.Errorf("sync already in progress")

// Manager orchestrates data synchronization: fetch from the live source,
// fall back to the synthetic dataset on failure, normalize, upsert, and
// invalidate cached reads.
type Manager struct {
	db       DBInterface
	live     source.Source
	fallback source.Source
	cache    CacheInvalidator
	cfg      *config.SyncConfig

	lastSync   time.Time
	lastResult *models.SyncResult
	running    bool
	mu         sync.RWMutex
	syncMu     sync.Mutex
	stopChan   chan struct{}
	wg         sync.WaitGroup
}

// NewManager creates a sync manager. The live source is typically the
// circuit-breaker-wrapped data.gov.in client; fallback is the deterministic
// generator and must never fail.
func NewManager(db DBInterface, live, fallback source.Source, cache CacheInvalidator, cfg *config.SyncConfig) *Manager {
	logging.Info().
		Str("daily_at", cfg.DailyAt).
		Bool("run_on_startup", cfg.RunOnStartup).
		Dur("timeout", cfg.Timeout).
		Msg("Sync manager config loaded")

	return &Manager{
		db:       db,
		live:     live,
		fallback: fallback,
		cache:    cache,
		cfg:      cfg,
		stopChan: make(chan struct{}),
	}
}

// Start begins the daily scheduled sync loop.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return fmt.Errorf("sync manager is already running")
	}
	m.running = true
	m.mu.Unlock()

	logging.Info().Str("daily_at", m.cfg.DailyAt).Msg("Starting sync scheduler")

	m.wg.Add(1)
	go m.scheduleLoop(ctx)

	return nil
}

// Stop gracefully stops the scheduler and waits for any in-flight run.
func (m *Manager) Stop() error {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return fmt.Errorf("sync manager is not running")
	}
	m.running = false
	m.mu.Unlock()

	logging.Info().Msg("Stopping sync manager...")
	close(m.stopChan)
	m.wg.Wait()
	logging.Info().Msg("Sync manager stopped")

	return nil
}

// TriggerSync runs one synchronization immediately. Returns
// ErrSyncInProgress if another run holds the sync lock.
func (m *Manager) TriggerSync(ctx context.Context) (*models.SyncResult, error) {
	return m.runSync(ctx, "manual")
}

// SyncOnStartup runs a blocking initial sync so the API never serves an
// empty database.
func (m *Manager) SyncOnStartup(ctx context.Context) (*models.SyncResult, error) {
	return m.runSync(ctx, "startup")
}

// LastSyncTime returns the completion time of the last successful sync.
func (m *Manager) LastSyncTime() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastSync
}

// LastResult returns the outcome of the last successful sync, or nil if no
// sync has completed yet.
func (m *Manager) LastResult() *models.SyncResult {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastResult
}

// scheduleLoop sleeps until the next configured wall-clock time, runs the
// scheduled sync, and repeats until stopped.
func (m *Manager) scheduleLoop(ctx context.Context) {
	defer m.wg.Done()

	for {
		wait := untilNextRun(time.Now(), m.cfg.DailyAt)
		logging.Debug().Dur("wait", wait).Msg("Next scheduled sync")

		timer := time.NewTimer(wait)
		select {
		case <-m.stopChan:
			timer.Stop()
			return
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}

		if _, err := m.runSync(ctx, "scheduled"); err != nil {
			logging.Error().Err(err).Msg("Scheduled sync failed")
		}
	}
}

// untilNextRun computes the duration from now to the next daily occurrence
// of the configured HH:MM. A malformed setting falls back to 24 hours.
func untilNextRun(now time.Time, dailyAt string) time.Duration {
	offset, err := config.ParseDailyAt(dailyAt)
	if err != nil {
		logging.Warn().Str("daily_at", dailyAt).Err(err).Msg("Invalid schedule, defaulting to 24h")
		return 24 * time.Hour
	}

	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	next := midnight.Add(offset)
	if !next.After(now) {
		next = next.Add(24 * time.Hour)
	}
	return next.Sub(now)
}

// runSync executes one full synchronization pass. Concurrent requests are
// rejected rather than queued; the dataset is daily, so a run already in
// flight makes a second one pointless.
func (m *Manager) runSync(ctx context.Context, trigger string) (*models.SyncResult, error) {
	if !m.syncMu.TryLock() {
		metrics.RecordSyncSkipped(trigger)
		logging.Warn().Str("trigger", trigger).Msg("Sync skipped: another run in progress")
		return nil, ErrSyncInProgress
	}
	defer m.syncMu.Unlock()

	if m.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.cfg.Timeout)
		defer cancel()
	}

	start := time.Now()
	logging.Info().Str("trigger", trigger).Msg("Sync started")

	raw, sourceName, err := m.fetchWithFallback(ctx)
	if err != nil {
		metrics.RecordSyncRun(trigger, sourceName, time.Since(start), 0, 0, err)
		return nil, fmt.Errorf("sync fetch failed: %w", err)
	}

	normalized := source.Normalize(raw, time.Now())
	if normalized.Skipped > 0 {
		logging.Warn().Int("skipped", normalized.Skipped).Msg("Dropped rows with missing identity fields")
	}

	districts, err := m.db.BulkUpsertDistricts(ctx, normalized.Districts)
	if err != nil {
		metrics.RecordSyncRun(trigger, sourceName, time.Since(start), 0, 0, err)
		return nil, fmt.Errorf("district upsert failed: %w", err)
	}

	records, err := m.db.BulkUpsertPerformanceRecords(ctx, normalized.Records)
	if err != nil {
		metrics.RecordSyncRun(trigger, sourceName, time.Since(start), 0, districts, err)
		return nil, fmt.Errorf("performance upsert failed: %w", err)
	}

	m.invalidateReadCaches(ctx)

	duration := time.Since(start)
	metrics.RecordSyncRun(trigger, sourceName, duration, records, districts, nil)

	result := &models.SyncResult{
		RecordsWritten:   records,
		DistrictsWritten: districts,
		Source:           sourceName,
		Duration:         duration.Round(time.Millisecond).String(),
		CompletedAt:      time.Now().UTC(),
	}

	m.mu.Lock()
	m.lastSync = result.CompletedAt
	m.lastResult = result
	m.mu.Unlock()

	logging.Info().
		Str("trigger", trigger).
		Str("source", sourceName).
		Int("records", records).
		Int("districts", districts).
		Dur("duration", duration).
		Msg("Sync completed")

	return result, nil
}

// fetchWithFallback tries the live source first and falls back to the
// synthetic dataset on any failure, including a missing API key or an open
// circuit breaker. The returned source name reports which dataset won.
func (m *Manager) fetchWithFallback(ctx context.Context) ([]models.RawRecord, string, error) {
	raw, err := m.live.FetchRecords(ctx)
	if err == nil {
		return raw, m.live.Name(), nil
	}

	logging.Warn().Err(err).Msg("Live fetch failed, using fallback dataset")

	raw, fbErr := m.fallback.FetchRecords(ctx)
	if fbErr != nil {
		return nil, m.fallback.Name(), fmt.Errorf("fallback fetch failed: %w", fbErr)
	}
	return raw, m.fallback.Name(), nil
}

// invalidateReadCaches drops cached read responses so the next request
// sees the refreshed data. Invalidation failures are logged, not fatal;
// stale entries age out by TTL.
func (m *Manager) invalidateReadCaches(ctx context.Context) {
	if m.cache == nil {
		return
	}
	for _, component := range readComponents {
		if err := m.cache.InvalidateComponent(ctx, component); err != nil {
			logging.Warn().Str("component", component).Err(err).Msg("Cache invalidation failed")
		}
	}
}

// MGNREGA Pulse - District Employment Statistics API
// Copyright 2026 Amrita Malviya
// SPDX-License-Identifier: MIT
// https://github.com/AmritaMalviya12/mgnrega-pulse

package api

import (
	"net/http"
	"time"

	"github.com/AmritaMalviya12/mgnrega-pulse/internal/models"
)

// healthPayload is the /health response body.
type healthPayload struct {
	Status       string             `json:"status"`
	Database     string             `json:"database"`
	CacheHitRate float64            `json:"cache_hit_rate"`
	LastSync     *time.Time         `json:"last_sync,omitempty"`
	LastSyncInfo *models.SyncResult `json:"last_sync_info,omitempty"`
}

// Health handles GET /health and GET /api/v1/health: liveness plus a
// readiness view of the database, cache, and sync state. A failing database
// ping degrades the status to 503.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	payload := healthPayload{
		Status:   "ok",
		Database: "up",
	}

	if err := h.db.Ping(r.Context()); err != nil {
		payload.Status = "degraded"
		payload.Database = "down"
	}
	if h.cache != nil {
		payload.CacheHitRate = h.cache.HitRate()
	}
	if last := h.syncer.LastSyncTime(); !last.IsZero() {
		payload.LastSync = &last
		payload.LastSyncInfo = h.syncer.LastResult()
	}

	status := http.StatusOK
	if payload.Status != "ok" {
		status = http.StatusServiceUnavailable
	}
	respondSuccess(w, status, payload, false, start)
}

// MGNREGA Pulse - District Employment Statistics API
// Copyright 2026 Amrita Malviya
// SPDX-License-Identifier: MIT
// https://github.com/AmritaMalviya12/mgnrega-pulse

package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/AmritaMalviya12/mgnrega-pulse/internal/logging"
	"github.com/AmritaMalviya12/mgnrega-pulse/internal/models"
	"github.com/AmritaMalviya12/mgnrega-pulse/internal/query"
	"github.com/AmritaMalviya12/mgnrega-pulse/internal/sync"
	"github.com/AmritaMalviya12/mgnrega-pulse/internal/validation"
)

// Syncer is the sync orchestrator surface the HTTP layer needs.
type Syncer interface {
	TriggerSync(ctx context.Context) (*models.SyncResult, error)
	LastSyncTime() time.Time
	LastResult() *models.SyncResult
}

// Pinger reports storage liveness for readiness checks.
type Pinger interface {
	Ping(ctx context.Context) error
}

// CacheStats exposes cache counters for the health payload.
type CacheStats interface {
	HitRate() float64
}

// Handler holds the dependencies for all HTTP handlers.
type Handler struct {
	query  *query.Service
	syncer Syncer
	db     Pinger
	cache  CacheStats
}

// NewHandler constructs the handler set.
func NewHandler(q *query.Service, syncer Syncer, db Pinger, cacheStats CacheStats) *Handler {
	return &Handler{
		query:  q,
		syncer: syncer,
		db:     db,
		cache:  cacheStats,
	}
}

// Districts handles GET /api/v1/districts.
func (h *Handler) Districts(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	payload, cached, err := h.query.ListDistricts(r.Context())
	if err != nil {
		h.respondQueryError(w, r, err, "district listing failed")
		return
	}
	respondSuccess(w, http.StatusOK, payload, cached, start)
}

// DistrictsByState handles GET /api/v1/districts/state/{state}.
func (h *Handler) DistrictsByState(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	state := chi.URLParam(r, "state")

	payload, cached, err := h.query.DistrictsByState(r.Context(), state)
	if err != nil {
		h.respondQueryError(w, r, err, "state directory lookup failed")
		return
	}
	respondSuccess(w, http.StatusOK, payload, cached, start)
}

// DistrictByCode handles GET /api/v1/districts/{code}.
func (h *Handler) DistrictByCode(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	code := chi.URLParam(r, "code")

	district, err := h.query.DistrictByCode(r.Context(), code)
	if err != nil {
		h.respondQueryError(w, r, err, "district lookup failed")
		return
	}
	respondSuccess(w, http.StatusOK, district, false, start)
}

// SearchDistricts handles GET /api/v1/districts/search?q=.
func (h *Handler) SearchDistricts(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	q := r.URL.Query().Get("q")

	payload, err := h.query.SearchDistricts(r.Context(), q)
	if errors.Is(err, query.ErrNotFound) {
		respondError(w, http.StatusNotFound, errNotFound("no matching district", map[string]interface{}{
			"query":       q,
			"suggestions": h.query.Suggestions(r.Context(), 5),
		}))
		return
	}
	if err != nil {
		h.respondQueryError(w, r, err, "district search failed")
		return
	}
	respondSuccess(w, http.StatusOK, payload, false, start)
}

// DistrictPerformance handles GET /api/v1/performance/district/{code}?year=&limit=.
func (h *Handler) DistrictPerformance(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	code := chi.URLParam(r, "code")
	year := r.URL.Query().Get("year")

	req := performanceRequest{DistrictCode: code, Year: year}
	if verr := validation.ValidateStruct(&req); verr != nil {
		h.respondValidationError(w, verr)
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			respondError(w, http.StatusBadRequest, errValidation("limit must be a non-negative integer", map[string]interface{}{
				"limit": raw,
			}))
			return
		}
		limit = parsed
	}

	payload, cached, err := h.query.DistrictPerformance(r.Context(), code, year, limit)
	if err != nil {
		h.respondQueryError(w, r, err, "performance lookup failed")
		return
	}
	respondSuccess(w, http.StatusOK, payload, cached, start)
}

// StateSummary handles GET /api/v1/performance/state/{state}.
func (h *Handler) StateSummary(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	state := chi.URLParam(r, "state")

	summary, cached, err := h.query.StateSummary(r.Context(), state)
	if err != nil {
		h.respondQueryError(w, r, err, "state summary failed")
		return
	}
	respondSuccess(w, http.StatusOK, summary, cached, start)
}

// compareRequest is the POST /api/v1/compare body.
type compareRequest struct {
	DistrictCodes []string `json:"districtCodes" validate:"required,min=1,max=10,dive,district_code"`
	Year          string   `json:"year" validate:"omitempty,financial_year"`
	Metric        string   `json:"metric" validate:"omitempty,oneof=households_employed person_days wages_paid works_taken_up completed_works completion_rate"`
}

// performanceRequest validates the district performance path and query params.
type performanceRequest struct {
	DistrictCode string `validate:"required,district_code"`
	Year         string `validate:"omitempty,financial_year"`
}

// Compare handles POST /api/v1/compare.
func (h *Handler) Compare(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req compareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errValidation("malformed request body", map[string]interface{}{
			"error": err.Error(),
		}))
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		h.respondValidationError(w, verr)
		return
	}

	payload, cached, err := h.query.CompareDistricts(r.Context(), req.DistrictCodes, req.Year, req.Metric)
	if err != nil {
		h.respondQueryError(w, r, err, "comparison failed")
		return
	}
	respondSuccess(w, http.StatusOK, payload, cached, start)
}

// RefreshData handles POST /api/v1/refresh-data. Runs a synchronous sync and
// reports counts, or the underlying cause on failure.
func (h *Handler) RefreshData(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	result, err := h.syncer.TriggerSync(r.Context())
	if errors.Is(err, sync.ErrSyncInProgress) {
		respondError(w, http.StatusConflict, &models.APIError{
			Code:    "SYNC_FAILED",
			Message: "a sync is already in progress",
		})
		return
	}
	if err != nil {
		logging.Error().Err(err).Msg("Manual sync failed")
		respondError(w, http.StatusInternalServerError, &models.APIError{
			Code:    "SYNC_FAILED",
			Message: err.Error(),
		})
		return
	}
	respondSuccess(w, http.StatusOK, result, false, start)
}

// respondQueryError maps query-layer errors onto HTTP statuses.
func (h *Handler) respondQueryError(w http.ResponseWriter, r *http.Request, err error, message string) {
	if errors.Is(err, query.ErrNotFound) {
		respondError(w, http.StatusNotFound, errNotFound(err.Error(), nil))
		return
	}
	logging.Ctx(r.Context()).Error().Err(err).Msg(message)
	respondError(w, http.StatusInternalServerError, errDatabase(message))
}

func (h *Handler) respondValidationError(w http.ResponseWriter, verr *validation.RequestValidationError) {
	apiErr := verr.ToAPIError()
	respondError(w, http.StatusBadRequest, &models.APIError{
		Code:    apiErr.Code,
		Message: apiErr.Message,
		Details: apiErr.Details,
	})
}

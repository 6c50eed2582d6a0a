// MGNREGA Pulse - District Employment Statistics API
// Copyright 2026 Amrita Malviya
// SPDX-License-Identifier: MIT
// https://github.com/AmritaMalviya12/mgnrega-pulse

package api

import (
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/AmritaMalviya12/mgnrega-pulse/internal/logging"
	"github.com/AmritaMalviya12/mgnrega-pulse/internal/models"
)

// respondSuccess writes the standard success envelope.
func respondSuccess(w http.ResponseWriter, status int, data interface{}, cached bool, queryStart time.Time) {
	resp := models.APIResponse{
		Status: "success",
		Data:   data,
		Metadata: models.Metadata{
			Timestamp:   time.Now().UTC(),
			QueryTimeMS: time.Since(queryStart).Milliseconds(),
			Cached:      cached,
		},
	}
	writeJSON(w, status, resp)
}

// respondError writes the standard error envelope.
func respondError(w http.ResponseWriter, status int, apiErr *models.APIError) {
	resp := models.APIResponse{
		Status: "error",
		Data:   nil,
		Metadata: models.Metadata{
			Timestamp: time.Now().UTC(),
		},
		Error: apiErr,
	}
	writeJSON(w, status, resp)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Warn().Err(err).Msg("Failed to encode response")
	}
}

func errNotFound(message string, details map[string]interface{}) *models.APIError {
	return &models.APIError{Code: "NOT_FOUND", Message: message, Details: details}
}

func errDatabase(message string) *models.APIError {
	return &models.APIError{Code: "DATABASE_ERROR", Message: message}
}

func errValidation(message string, details map[string]interface{}) *models.APIError {
	return &models.APIError{Code: "VALIDATION_ERROR", Message: message, Details: details}
}

// MGNREGA Pulse - District Employment Statistics API
// Copyright 2026 Amrita Malviya
// SPDX-License-Identifier: MIT
// https://github.com/AmritaMalviya12/mgnrega-pulse

package query

import (
	"context"
	"fmt"
	"strings"

	"github.com/AmritaMalviya12/mgnrega-pulse/internal/models"
)

// districtAliases maps common alternate spellings and historical names onto
// the canonical district name. Voice input in particular produces these.
var districtAliases = map[string]string{
	"banaras":   "Varanasi",
	"benares":   "Varanasi",
	"kashi":     "Varanasi",
	"allahabad": "Prayagraj",
	"prayag":    "Prayagraj",
	"lakhnow":   "Lucknow",
	"lakhnau":   "Lucknow",
	"cawnpore":  "Kanpur Nagar",
	"kanpur":    "Kanpur Nagar",
	"ayodhya":   "Faizabad",
}

// SearchPayload is the fuzzy-lookup response body.
type SearchPayload struct {
	Query   string                 `json:"query"`
	Count   int                    `json:"count"`
	Matches []models.DistrictMatch `json:"matches"`
}

// SearchDistricts resolves a free-text district name: exact name match
// first, then the alias table, then case-insensitive substring. No match is
// NotFound, with a few directory names as suggestions in the error detail.
func (s *Service) SearchDistricts(ctx context.Context, q string) (*SearchPayload, error) {
	trimmed := strings.TrimSpace(q)
	if trimmed == "" {
		return nil, fmt.Errorf("empty search query: %w", ErrNotFound)
	}

	if alias, ok := districtAliases[strings.ToLower(trimmed)]; ok {
		districts, err := s.db.SearchDistrictsByName(ctx, alias)
		if err != nil {
			return nil, fmt.Errorf("alias search failed: %w", err)
		}
		if len(districts) > 0 {
			return searchPayload(trimmed, districts, "alias", "high"), nil
		}
	}

	districts, err := s.db.SearchDistrictsByName(ctx, trimmed)
	if err != nil {
		return nil, fmt.Errorf("district search failed: %w", err)
	}
	if len(districts) == 0 {
		return nil, fmt.Errorf("no district matching %q: %w", trimmed, ErrNotFound)
	}

	matchType := "partial"
	confidence := "medium"
	if len(districts) == 1 && strings.EqualFold(districts[0].DistrictName, trimmed) {
		matchType = "exact"
		confidence = "high"
	}
	return searchPayload(trimmed, districts, matchType, confidence), nil
}

// Suggestions returns up to n directory names for not-found error details.
func (s *Service) Suggestions(ctx context.Context, n int) []string {
	districts, err := s.db.GetAllDistricts(ctx)
	if err != nil || len(districts) == 0 {
		return nil
	}
	if n > len(districts) {
		n = len(districts)
	}
	names := make([]string, 0, n)
	for _, d := range districts[:n] {
		names = append(names, d.DistrictName)
	}
	return names
}

func searchPayload(q string, districts []models.District, matchType, confidence string) *SearchPayload {
	matches := make([]models.DistrictMatch, 0, len(districts))
	for _, d := range districts {
		matches = append(matches, models.DistrictMatch{
			District:   d,
			MatchType:  matchType,
			Confidence: confidence,
		})
	}
	return &SearchPayload{Query: q, Count: len(matches), Matches: matches}
}

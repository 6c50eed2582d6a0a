// MGNREGA Pulse - District Employment Statistics API
// Copyright 2026 Amrita Malviya
// SPDX-License-Identifier: MIT
// https://github.com/AmritaMalviya12/mgnrega-pulse

package query

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/AmritaMalviya12/mgnrega-pulse/internal/cache"
	"github.com/AmritaMalviya12/mgnrega-pulse/internal/config"
	"github.com/AmritaMalviya12/mgnrega-pulse/internal/database"
	"github.com/AmritaMalviya12/mgnrega-pulse/internal/logging"
	"github.com/AmritaMalviya12/mgnrega-pulse/internal/models"
)

// ErrNotFound indicates an unknown district code or a state with no
// districts. A targeted lookup never returns an empty success.
var ErrNotFound = errors.New("not found")

// Cache component tags. Sync invalidates these after every refresh.
const (
	componentDirectory   = "directory"
	componentPerformance = "performance"
	componentCompare     = "compare"
	componentSummary     = "summary"
)

// Service answers all read queries. Every method derives a deterministic
// cache key, serves hits from the cache, and re-derives from the database on
// miss, populating the cache with a per-component TTL.
type Service struct {
	db       *database.DB
	cache    *cache.Cache
	cacheCfg *config.CacheConfig
	apiCfg   *config.APIConfig
}

// New constructs the query service. No global state; callers hold the value.
func New(db *database.DB, c *cache.Cache, cacheCfg *config.CacheConfig, apiCfg *config.APIConfig) *Service {
	return &Service{
		db:       db,
		cache:    c,
		cacheCfg: cacheCfg,
		apiCfg:   apiCfg,
	}
}

// DirectoryPayload is the district-listing response body.
type DirectoryPayload struct {
	Count     int               `json:"count"`
	Districts []models.District `json:"districts"`
}

// PerformancePayload is the district-performance response body.
type PerformancePayload struct {
	District      models.District            `json:"district"`
	FinancialYear string                     `json:"financial_year,omitempty"`
	Count         int                        `json:"count"`
	Records       []models.PerformanceRecord `json:"records"`
}

// ComparisonEntry is one district's latest record in a comparison result.
type ComparisonEntry struct {
	District       models.District           `json:"district"`
	Latest         *models.PerformanceRecord `json:"latest"`
	CompletionRate float64                   `json:"completionRate"`
}

// ComparisonPayload is the cross-district comparison response body. When a
// metric is requested, entries are ordered by it, best first.
type ComparisonPayload struct {
	FinancialYear string            `json:"financial_year,omitempty"`
	Metric        string            `json:"metric,omitempty"`
	Districts     []ComparisonEntry `json:"districts"`
}

// Comparison metrics accepted in the compare request body.
const (
	MetricHouseholds     = "households_employed"
	MetricPersonDays     = "person_days"
	MetricWagesPaid      = "wages_paid"
	MetricWorksTakenUp   = "works_taken_up"
	MetricCompletedWorks = "completed_works"
	MetricCompletionRate = "completion_rate"
)

// ListDistricts returns the full directory sorted by name.
func (s *Service) ListDistricts(ctx context.Context) (*DirectoryPayload, bool, error) {
	key := cache.GenerateKey("list_districts", nil)

	var payload DirectoryPayload
	if hit, err := s.cache.Get(ctx, key, componentDirectory, &payload); err == nil && hit {
		return &payload, true, nil
	}

	districts, err := s.db.GetAllDistricts(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("district listing failed: %w", err)
	}

	payload = DirectoryPayload{Count: len(districts), Districts: districts}
	s.populate(ctx, key, componentDirectory, payload, s.cacheCfg.DirectoryTTL)
	return &payload, false, nil
}

// DistrictsByState returns the directory filtered by state name
// (case-insensitive substring match). An unknown state is NotFound.
func (s *Service) DistrictsByState(ctx context.Context, state string) (*DirectoryPayload, bool, error) {
	key := cache.GenerateKey("districts_by_state", strings.ToLower(strings.TrimSpace(state)))

	var payload DirectoryPayload
	if hit, err := s.cache.Get(ctx, key, componentDirectory, &payload); err == nil && hit {
		return &payload, true, nil
	}

	districts, err := s.db.GetDistrictsByState(ctx, state)
	if err != nil {
		return nil, false, fmt.Errorf("state directory lookup failed: %w", err)
	}
	if len(districts) == 0 {
		return nil, false, fmt.Errorf("state %q: %w", state, ErrNotFound)
	}

	payload = DirectoryPayload{Count: len(districts), Districts: districts}
	s.populate(ctx, key, componentDirectory, payload, s.cacheCfg.DirectoryTTL)
	return &payload, false, nil
}

// DistrictByCode returns a single district or NotFound.
func (s *Service) DistrictByCode(ctx context.Context, code string) (*models.District, error) {
	district, err := s.db.GetDistrictByCode(ctx, code)
	if errors.Is(err, database.ErrNotFound) {
		return nil, fmt.Errorf("district %q: %w", code, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("district lookup failed: %w", err)
	}
	return district, nil
}

// DistrictPerformance returns performance records for one district, newest
// first, optionally filtered by financial year and bounded by limit.
// The district must exist in the directory; unknown codes are NotFound even
// when a zero-record response would otherwise be valid.
func (s *Service) DistrictPerformance(ctx context.Context, code, financialYear string, limit int) (*PerformancePayload, bool, error) {
	limit = s.clampLimit(limit)
	key := cache.GenerateKey("district_performance", map[string]interface{}{
		"code":  strings.ToUpper(strings.TrimSpace(code)),
		"year":  financialYear,
		"limit": limit,
	})

	var payload PerformancePayload
	if hit, err := s.cache.Get(ctx, key, componentPerformance, &payload); err == nil && hit {
		return &payload, true, nil
	}

	district, err := s.DistrictByCode(ctx, code)
	if err != nil {
		return nil, false, err
	}

	records, err := s.db.GetDistrictPerformance(ctx, code, financialYear, limit)
	if err != nil {
		return nil, false, fmt.Errorf("performance lookup failed: %w", err)
	}

	payload = PerformancePayload{
		District:      *district,
		FinancialYear: financialYear,
		Count:         len(records),
		Records:       records,
	}
	s.populate(ctx, key, componentPerformance, payload, s.cacheCfg.PerformanceTTL)
	return &payload, false, nil
}

// CompareDistricts reduces each requested district to its most recent record.
// Codes missing from the directory are dropped; if none of the requested
// codes exist the result is NotFound. A non-empty metric orders the result,
// highest value first; otherwise entries follow district-code order.
func (s *Service) CompareDistricts(ctx context.Context, codes []string, financialYear, metric string) (*ComparisonPayload, bool, error) {
	normalized := normalizeCodes(codes)
	key := cache.GenerateKey("compare_districts", map[string]interface{}{
		"codes":  normalized,
		"year":   financialYear,
		"metric": metric,
	})

	var payload ComparisonPayload
	if hit, err := s.cache.Get(ctx, key, componentCompare, &payload); err == nil && hit {
		return &payload, true, nil
	}

	entries := make([]ComparisonEntry, 0, len(normalized))
	known := make([]string, 0, len(normalized))
	for _, code := range normalized {
		district, err := s.db.GetDistrictByCode(ctx, code)
		if errors.Is(err, database.ErrNotFound) {
			logging.Debug().Str("district_code", code).Msg("Comparison skipping unknown district")
			continue
		}
		if err != nil {
			return nil, false, fmt.Errorf("comparison district lookup failed: %w", err)
		}
		known = append(known, code)
		entries = append(entries, ComparisonEntry{District: *district})
	}
	if len(known) == 0 {
		return nil, false, fmt.Errorf("no known districts among %v: %w", codes, ErrNotFound)
	}

	latest, err := s.db.GetLatestByDistricts(ctx, known, financialYear)
	if err != nil {
		return nil, false, fmt.Errorf("comparison lookup failed: %w", err)
	}

	byCode := make(map[string]*models.PerformanceRecord, len(latest))
	for i := range latest {
		rec := latest[i]
		byCode[rec.DistrictCode] = &rec
	}
	for i := range entries {
		rec := byCode[entries[i].District.DistrictCode]
		entries[i].Latest = rec
		if rec != nil {
			entries[i].CompletionRate = completionRate(rec.CompletedWorks, rec.TotalWorksTakenUp)
		}
	}

	if metric != "" {
		sort.SliceStable(entries, func(i, j int) bool {
			return metricValue(&entries[i], metric) > metricValue(&entries[j], metric)
		})
	}

	payload = ComparisonPayload{FinancialYear: financialYear, Metric: metric, Districts: entries}
	s.populate(ctx, key, componentCompare, payload, s.cacheCfg.PerformanceTTL)
	return &payload, false, nil
}

// metricValue extracts the requested comparison metric from an entry's
// latest record. Districts without a record rank last.
func metricValue(e *ComparisonEntry, metric string) float64 {
	if e.Latest == nil {
		return math.Inf(-1)
	}
	switch metric {
	case MetricHouseholds:
		return float64(e.Latest.HouseholdsProvidedEmployment)
	case MetricPersonDays:
		return float64(e.Latest.TotalPersonDays)
	case MetricWagesPaid:
		return e.Latest.TotalWagesPaid
	case MetricWorksTakenUp:
		return float64(e.Latest.TotalWorksTakenUp)
	case MetricCompletedWorks:
		return float64(e.Latest.CompletedWorks)
	case MetricCompletionRate:
		return e.CompletionRate
	default:
		return e.CompletionRate
	}
}

// StateSummary aggregates the current financial year across one state's
// districts. A state with no districts in the directory is NotFound.
func (s *Service) StateSummary(ctx context.Context, state string) (*models.StateSummary, bool, error) {
	fy := models.CurrentFinancialYear()
	key := cache.GenerateKey("state_summary", map[string]interface{}{
		"state": strings.ToLower(strings.TrimSpace(state)),
		"year":  fy,
	})

	var payload models.StateSummary
	if hit, err := s.cache.Get(ctx, key, componentSummary, &payload); err == nil && hit {
		return &payload, true, nil
	}

	totalDistricts, err := s.db.CountDistrictsByState(ctx, state)
	if err != nil {
		return nil, false, fmt.Errorf("state district count failed: %w", err)
	}
	if totalDistricts == 0 {
		return nil, false, fmt.Errorf("state %q: %w", state, ErrNotFound)
	}

	agg, err := s.db.GetStateAggregate(ctx, state, fy)
	if err != nil {
		return nil, false, fmt.Errorf("state aggregation failed: %w", err)
	}

	payload = models.StateSummary{
		State:              state,
		FinancialYear:      fy,
		TotalDistricts:     totalDistricts,
		ReportingDistricts: agg.ReportingDistricts,
		TotalHouseholds:    agg.TotalHouseholds,
		TotalPersonDays:    agg.TotalPersonDays,
		TotalWages:         agg.TotalWages,
		TotalWorks:         agg.TotalWorks,
		CompletedWorks:     agg.CompletedWorks,
		CompletionRate:     completionRate(agg.CompletedWorks, agg.TotalWorks),
	}
	s.populate(ctx, key, componentSummary, payload, s.cacheCfg.SummaryTTL)
	return &payload, false, nil
}

// populate writes a derived result into the cache. Failures are logged and
// swallowed; the caller already has the result in hand.
func (s *Service) populate(ctx context.Context, key, component string, value interface{}, ttl time.Duration) {
	if ttl <= 0 {
		ttl = s.cacheCfg.DefaultTTL
	}
	if err := s.cache.SetWithTTL(ctx, key, component, value, ttl); err != nil {
		logging.Warn().Str("component", component).Err(err).Msg("Cache populate failed")
	}
}

func (s *Service) clampLimit(limit int) int {
	if limit <= 0 {
		return s.apiCfg.DefaultLimit
	}
	if limit > s.apiCfg.MaxLimit {
		return s.apiCfg.MaxLimit
	}
	return limit
}

// normalizeCodes uppercases, deduplicates, and sorts the requested district
// codes so equivalent requests share one cache key.
func normalizeCodes(codes []string) []string {
	seen := make(map[string]bool, len(codes))
	out := make([]string, 0, len(codes))
	for _, c := range codes {
		c = strings.ToUpper(strings.TrimSpace(c))
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// completionRate computes completed/total as a percentage rounded to two
// decimals, reporting 0 for a zero denominator.
func completionRate(completed, total int64) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(completed)/float64(total)*10000) / 100
}

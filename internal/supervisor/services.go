// MGNREGA Pulse - District Employment Statistics API
// Copyright 2026 Amrita Malviya
// SPDX-License-Identifier: MIT
// https://github.com/AmritaMalviya12/mgnrega-pulse

package supervisor

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/AmritaMalviya12/mgnrega-pulse/internal/logging"
)

// SyncRunner is the subset of the sync manager the supervisor drives.
type SyncRunner interface {
	Start(ctx context.Context) error
	Stop() error
}

// Sweeper is the subset of the cache the supervisor drives.
type Sweeper interface {
	Start()
	Stop()
}

// SyncService adapts the sync manager to suture.Service. The manager runs
// its own scheduling goroutine; Serve blocks until the context is canceled,
// then stops the manager.
type SyncService struct {
	manager SyncRunner
}

// NewSyncService wraps a sync manager for supervision.
func NewSyncService(manager SyncRunner) *SyncService {
	return &SyncService{manager: manager}
}

// Serve implements suture.Service.
func (s *SyncService) Serve(ctx context.Context) error {
	if err := s.manager.Start(ctx); err != nil {
		return fmt.Errorf("starting sync manager: %w", err)
	}

	<-ctx.Done()

	if err := s.manager.Stop(); err != nil {
		logging.Error().Err(err).Msg("Sync manager stop failed")
	}
	return ctx.Err()
}

func (s *SyncService) String() string { return "sync-scheduler" }

// SweeperService adapts the cache sweep loop to suture.Service.
type SweeperService struct {
	cache Sweeper
}

// NewSweeperService wraps the cache sweeper for supervision.
func NewSweeperService(cache Sweeper) *SweeperService {
	return &SweeperService{cache: cache}
}

// Serve implements suture.Service.
func (s *SweeperService) Serve(ctx context.Context) error {
	s.cache.Start()

	<-ctx.Done()

	s.cache.Stop()
	return ctx.Err()
}

func (s *SweeperService) String() string { return "cache-sweeper" }

// HTTPService runs an http.Server under supervision with graceful shutdown.
type HTTPService struct {
	server          *http.Server
	shutdownTimeout time.Duration
}

// NewHTTPService wraps an http.Server for supervision.
func NewHTTPService(server *http.Server, shutdownTimeout time.Duration) *HTTPService {
	if shutdownTimeout == 0 {
		shutdownTimeout = 10 * time.Second
	}
	return &HTTPService{server: server, shutdownTimeout: shutdownTimeout}
}

// Serve implements suture.Service. ListenAndServe runs in a goroutine so
// Serve can watch the context; on cancellation the server is drained within
// the shutdown timeout.
func (s *HTTPService) Serve(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", s.server.Addr).Msg("HTTP server listening")
		errCh <- s.server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()

		if err := s.server.Shutdown(shutdownCtx); err != nil {
			logging.Error().Err(err).Msg("HTTP server shutdown failed")
			s.server.Close()
		}
		logging.Info().Msg("HTTP server stopped")
		return ctx.Err()
	}
}

func (s *HTTPService) String() string { return "http-server" }

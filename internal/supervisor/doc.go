// MGNREGA Pulse - District Employment Statistics API
// Copyright 2026 Amrita Malviya
// SPDX-License-Identifier: MIT
// https://github.com/AmritaMalviya12/mgnrega-pulse

// Package supervisor builds the suture supervision tree for the process.
// The root supervisor owns a data layer (sync scheduler, cache sweeper)
// and an api layer (HTTP server), so failures restart in isolation.
package supervisor

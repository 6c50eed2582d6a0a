// MGNREGA Pulse - District Employment Statistics API
// Copyright 2026 Amrita Malviya
// SPDX-License-Identifier: MIT
// https://github.com/AmritaMalviya12/mgnrega-pulse

// Package api provides the HTTP surface: chi routing, request validation,
// and the JSON response envelope. Handlers are a thin pass-through to the
// query service and the sync orchestrator.
package api

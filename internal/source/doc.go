// MGNREGA Pulse - District Employment Statistics API
// Copyright 2026 Amrita Malviya
// SPDX-License-Identifier: MIT
// https://github.com/AmritaMalviya12/mgnrega-pulse

// Package source fetches raw MGNREGA statistics and normalizes them into the
// canonical record shape. Three Source implementations exist: the live
// data.gov.in client, a circuit-breaker wrapper around it, and a deterministic
// fallback generator used when no API key is configured or the upstream is
// unavailable.
package source

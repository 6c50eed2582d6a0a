// MGNREGA Pulse - District Employment Statistics API
// Copyright 2026 Amrita Malviya
// SPDX-License-Identifier: MIT
// https://github.com/AmritaMalviya12/mgnrega-pulse

// Package config loads application configuration with Koanf v2.
//
// Sources are layered, highest priority last:
//
//  1. Built-in defaults
//  2. Optional YAML config file (CONFIG_PATH or a default search path)
//  3. Environment variables via an explicit allowlist mapping
//
// Only environment variables named in envTransformFunc are consulted, so a
// crowded container environment cannot accidentally override settings.
package config

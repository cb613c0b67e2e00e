// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides unified configuration loading and management for sortbench.
//
// # Key Types
//
//   - Config: Main configuration structure with all settings
//   - BenchmarkConfig: Engines, array sizes, series length and seed
//   - OutputConfig: Report directory, format and CSV file names
//   - StorageConfig: Run history database settings
//
// # Configuration Precedence
//
// Configuration is loaded from (in order of precedence):
//   - Command-line flags (applied by the cli package)
//   - Environment variables (SORTBENCH_*)
//   - ~/.sortbench/config.toml
//   - ~/.sortbench/config.json
//   - Built-in defaults
//
// SORTBENCH_HOME relocates the ~/.sortbench directory.
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	sizes := cfg.Benchmark.Sizes
package config

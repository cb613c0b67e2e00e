// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli provides command-line parsing and execution for sortbench.
//
// # Key Types
//
//   - Command: Enumeration of the CLI commands
//   - Args: Parsed global flags plus the raw command arguments
//   - App: Output streams and configuration shared by every handler
//   - ArgParser: Flag and positional parsing for a single command
//
// # Usage
//
// main hands the arguments and streams to Main and exits with its result:
//
//	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
//	defer stop()
//	os.Exit(cli.Main(ctx, os.Args[1:], os.Stdout, os.Stderr))
//
// # Commands Overview
//
//   - run: Benchmark the sort engines, write reports, record history
//   - history: List, show and delete stored runs
//   - report: Re-export a stored run as Markdown, CSV or JSON
//   - config: Show, initialize or locate the configuration
//   - version, help
//
// # Output Modes
//
// Human output is styled with lipgloss and goes to stdout; progress and
// warnings go to stderr. With --json every command writes one JSONResponse
// to stdout. Errors map to exit codes in errors.go.
package cli

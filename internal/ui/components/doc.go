// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package components provides the terminal views of sortbench.

# Result views

ResultView (benchmark_view.go) renders a single run, an engine comparison or
the stored run history as column-aligned tables:

	view := components.NewResultView(80)
	fmt.Println(view.RenderResult(result))

# Progress

RunWithProgress (progress.go) drives a Bubble Tea program with a spinner and
a progress bar while a benchmark runs on another goroutine. Progress events
are throttled by ProgressReporter so large runs do not flood the renderer.
*/
package components

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"io"
	"log"
)

// configureLogging routes the standard logger. Harness and storage events
// ("SERIES_COMPLETE | ...", "RESULT_SAVED | ...") are only shown with
// --verbose so they never mix with command output.
func configureLogging(w io.Writer, verbose bool) {
	if !verbose {
		log.SetOutput(io.Discard)
		return
	}
	log.SetOutput(w)
	log.SetFlags(log.Ltime | log.Lmicroseconds)
	log.SetPrefix("sortbench: ")
}

// json_output.go - JSON output support for scripting sortbench.
//
// Every command accepts --json and then writes a single JSONResponse to
// stdout; human-readable messages go to stderr.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/jeranaias/sortbench/internal/benchmark"
	"github.com/jeranaias/sortbench/internal/config"
	"github.com/jeranaias/sortbench/internal/storage"
)

// JSONResponse is the standardized response format for all CLI commands.
type JSONResponse struct {
	// Success indicates whether the command completed successfully
	Success bool `json:"success"`

	// Data contains the command-specific response data
	Data interface{} `json:"data"`

	// Error contains the error message if Success is false, null otherwise
	Error *string `json:"error"`

	// Timestamp is the ISO8601 timestamp when the response was generated
	Timestamp string `json:"timestamp"`

	// Command is the command that was executed
	Command string `json:"command,omitempty"`
}

// NewJSONResponse creates a new successful JSON response.
func NewJSONResponse(command string, data interface{}) *JSONResponse {
	return &JSONResponse{
		Success:   true,
		Data:      data,
		Error:     nil,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Command:   command,
	}
}

// NewJSONErrorResponse creates a new error JSON response.
func NewJSONErrorResponse(command string, err error) *JSONResponse {
	errStr := err.Error()
	return &JSONResponse{
		Success:   false,
		Data:      nil,
		Error:     &errStr,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Command:   command,
	}
}

// Print writes the JSON response, indented, to w.
func (r *JSONResponse) Print(w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(r)
}

// String returns the JSON response as a string.
func (r *JSONResponse) String() string {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Sprintf(`{"success":false,"error":"failed to marshal response: %s","timestamp":"%s"}`,
			err.Error(), time.Now().UTC().Format(time.RFC3339))
	}
	return string(data)
}

// =============================================================================
// COMMAND-SPECIFIC DATA STRUCTURES
// =============================================================================

// VersionData represents the data returned by the version command.
type VersionData struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`
}

// RunData represents the data returned by the run command.
type RunData struct {
	Results   []*benchmark.Result `json:"results"`
	Errors    map[string]string   `json:"errors,omitempty"`
	Files     []string            `json:"files"`
	Saved     bool                `json:"saved"`
	Cancelled bool                `json:"cancelled,omitempty"`
}

// HistoryListData represents the data returned by history list.
type HistoryListData struct {
	Database string               `json:"database"`
	Total    int                  `json:"total"`
	Runs     []storage.ResultMeta `json:"runs"`
}

// ReportData represents the data returned by the report command.
type ReportData struct {
	ID       string `json:"id"`
	Format   string `json:"format"`
	MimeType string `json:"mime_type"`
	Path     string `json:"path,omitempty"`
	Output   string `json:"output,omitempty"`
}

// ConfigData represents the data returned by config show.
type ConfigData struct {
	Path   string         `json:"path"`
	Exists bool           `json:"exists"`
	Config *config.Config `json:"config"`
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// report_cmd.go - Re-export a stored run.

package cli

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"

	"github.com/jeranaias/sortbench/internal/benchmark"
	"github.com/jeranaias/sortbench/internal/export"
	"github.com/jeranaias/sortbench/internal/storage"
)

var (
	markdownRenderer     *glamour.TermRenderer
	markdownRendererOnce sync.Once
)

// renderMarkdown renders markdown content for terminal display.
// Returns the original content if rendering fails or renderer is unavailable.
func renderMarkdown(content string) string {
	markdownRendererOnce.Do(func() {
		r, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(GetTerminalWidth()-4),
		)
		if err == nil {
			markdownRenderer = r
		}
	})
	if markdownRenderer == nil {
		return content
	}
	rendered, err := markdownRenderer.Render(content)
	if err != nil {
		return content
	}
	return rendered
}

// HandleReport handles the "report" command.
//
//	sortbench report <id|latest> [--engine E] [--format md|csv|json] [--output FILE] [--no-trials]
func (a *App) HandleReport(ctx context.Context) error {
	parser := NewArgParser(a.Args.Raw, "no-trials")
	if err := checkFlags("report", parser, "format", "output", "engine", "no-trials"); err != nil {
		return err
	}

	id := parser.Positional(0)
	if id == "" {
		return ErrMissingArgument("id", "sortbench report 1a2b3c4d --format md")
	}

	format := strings.ToLower(parser.FlagOrDefault("format", "md"))
	if format == "markdown" {
		format = "md"
	}
	if !isOutputFormat(format) {
		return ErrUnsupportedFormat(format, export.Formats())
	}
	output := parser.Flag("output")

	store, err := a.openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	result, err := a.findResult(ctx, store, id, parser.Flag("engine"))
	if err != nil {
		return err
	}

	// Rendered Markdown skips the front matter; glamour would show it as text
	pretty := format == "md" && output == "" && !a.Args.JSON && a.Interactive && IsTerminalWriter(a.Stdout)

	opts := export.DefaultOptions()
	opts.IncludeMetadata = !pretty
	opts.IncludeTrials = !parser.BoolFlag("no-trials")
	exporter, err := export.NewExporter(format, opts)
	if err != nil {
		return ErrUnsupportedFormat(format, export.Formats())
	}
	content, err := exporter.Export(result)
	if err != nil {
		return NewCommandError("report", format, "export failed", err)
	}

	if output != "" {
		if err := export.WriteFile(output, content); err != nil {
			return NewCommandError("report", format, "could not write report", err)
		}
		if a.Args.JSON {
			return NewJSONResponse("report", ReportData{
				ID:       result.ID,
				Format:   format,
				MimeType: exporter.MimeType(),
				Path:     output,
			}).Print(a.Stdout)
		}
		a.printf("%s Report written to %s\n", RenderStatus("ok"), output)
		return nil
	}

	if a.Args.JSON {
		return NewJSONResponse("report", ReportData{
			ID:       result.ID,
			Format:   format,
			MimeType: exporter.MimeType(),
			Output:   string(content),
		}).Print(a.Stdout)
	}

	if pretty {
		fmt.Fprint(a.Stdout, renderMarkdown(string(content)))
		return nil
	}
	_, err = a.Stdout.Write(content)
	return err
}

// findResult resolves a run ID, an ID prefix or "latest".
func (a *App) findResult(ctx context.Context, store *storage.ResultStore, id, engineName string) (*benchmark.Result, error) {
	if !strings.EqualFold(id, "latest") {
		if engineName != "" {
			return nil, NewValidationErrorWithExample("engine", engineName,
				"only valid with latest", "sortbench report latest --engine merge")
		}
		result, err := store.LoadResult(ctx, id)
		if err != nil {
			return nil, lookupError("report", id, err)
		}
		return result, nil
	}

	if engineName != "" {
		engine, err := benchmark.ParseEngine(engineName)
		if err != nil {
			return nil, NewValidationErrorWithExample("engine", engineName,
				"must be selection or merge", "--engine merge")
		}
		result, err := store.LatestForEngine(ctx, engine)
		if err != nil {
			return nil, lookupError("report", "latest "+string(engine), err)
		}
		return result, nil
	}

	metas, err := store.ListResults(ctx, 1)
	if err != nil {
		return nil, NewCommandError("report", "latest", "could not read history", err)
	}
	if len(metas) == 0 {
		return nil, NewNotFoundError("run", "latest")
	}
	result, err := store.LoadResult(ctx, metas[0].ID)
	if err != nil {
		return nil, lookupError("report", metas[0].ID, err)
	}
	return result, nil
}

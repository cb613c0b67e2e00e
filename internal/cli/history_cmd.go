// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// history_cmd.go - Stored run management.

package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/jeranaias/sortbench/internal/storage"
	"github.com/jeranaias/sortbench/internal/ui/components"
	"github.com/jeranaias/sortbench/internal/util"
)

// HandleHistory handles the "history" command.
func (a *App) HandleHistory(ctx context.Context) error {
	parser := NewArgParser(a.Args.Raw, "confirm")

	switch parser.Subcommand() {
	case "", "list", "ls":
		if err := checkFlags("history list", parser, "limit"); err != nil {
			return err
		}
		return a.historyList(ctx, parser)
	case "show", "view":
		if err := checkFlags("history show", parser); err != nil {
			return err
		}
		return a.historyShow(ctx, parser.Positional(1))
	case "delete", "rm":
		if err := checkFlags("history delete", parser, "confirm"); err != nil {
			return err
		}
		return a.historyDelete(ctx, parser.Positional(1), parser.BoolFlag("confirm"))
	}

	return NewValidationErrorWithExample("subcommand", parser.Subcommand(),
		"must be list, show or delete", "sortbench history show <id>")
}

// openStore opens the configured history database.
func (a *App) openStore() (*storage.ResultStore, error) {
	path, err := a.Config.DatabasePath()
	if err != nil {
		return nil, err
	}
	store, err := storage.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open history database: %w", err)
	}
	return store, nil
}

func (a *App) historyList(ctx context.Context, parser *ArgParser) error {
	limit := a.Config.Storage.HistoryLimit
	if parser.HasFlag("limit") {
		value := parser.Flag("limit")
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return NewValidationErrorWithExample("limit", value, "must be a non-negative integer", "--limit 10")
		}
		limit = n
	}

	store, err := a.openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	metas, err := store.ListResults(ctx, limit)
	if err != nil {
		return NewCommandError("history", "list", "could not read history", err)
	}

	if a.Args.JSON {
		total, err := store.Count(ctx)
		if err != nil {
			return NewCommandError("history", "list", "could not count runs", err)
		}
		return NewJSONResponse("history list", HistoryListData{
			Database: store.Path(),
			Total:    total,
			Runs:     metas,
		}).Print(a.Stdout)
	}

	view := components.NewResultView(GetTerminalWidth())
	a.printf("%s\n", view.RenderHistory(metas))
	return nil
}

func (a *App) historyShow(ctx context.Context, id string) error {
	if id == "" {
		return ErrMissingArgument("id", "sortbench history show 1a2b3c4d")
	}

	store, err := a.openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	result, err := store.LoadResult(ctx, id)
	if err != nil {
		return lookupError("show", id, err)
	}

	if a.Args.JSON {
		return NewJSONResponse("history show", result).Print(a.Stdout)
	}

	view := components.NewResultView(GetTerminalWidth())
	a.printf("%s\n", view.RenderResult(result))
	return nil
}

func (a *App) historyDelete(ctx context.Context, id string, confirm bool) error {
	if id == "" {
		return ErrMissingArgument("id", "sortbench history delete 1a2b3c4d --confirm")
	}
	if !confirm {
		return NewValidationErrorWithExample("confirm", "", "deleting a run requires --confirm",
			fmt.Sprintf("sortbench history delete %s --confirm", id))
	}

	store, err := a.openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	result, err := store.LoadResult(ctx, id)
	if err != nil {
		return lookupError("delete", id, err)
	}
	if err := store.DeleteResult(ctx, result.ID); err != nil {
		return NewCommandError("history", "delete", "could not delete run", err)
	}

	if a.Args.JSON {
		return NewJSONResponse("history delete", map[string]string{"deleted": result.ID}).Print(a.Stdout)
	}
	a.printf("%s Deleted run %s (%s)\n", RenderStatus("ok"), util.ShortID(result.ID, 8), result.Engine)
	return nil
}

// lookupError maps storage lookup failures to CLI errors.
func lookupError(action, id string, err error) error {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return NewNotFoundError("run", id)
	case errors.Is(err, storage.ErrIDTooShort):
		return NewValidationErrorWithExample("id", id,
			fmt.Sprintf("use at least %d characters", storage.MinPrefixLength), "sortbench history show 1a2b")
	case errors.Is(err, storage.ErrAmbiguousID):
		return NewValidationErrorWithExample("id", id, "matches more than one run", "use a longer prefix")
	}
	return NewCommandError("history", action, "lookup failed", err)
}

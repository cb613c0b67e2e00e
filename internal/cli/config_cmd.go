// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// config_cmd.go - Configuration inspection and initialization.

package cli

import (
	"os"
	"strings"

	"github.com/jeranaias/sortbench/internal/config"
)

// HandleConfig handles the "config" command.
func (a *App) HandleConfig() error {
	parser := NewArgParser(a.Args.Raw, "force")

	switch a.Args.Subcommand {
	case "", "show":
		if err := checkFlags("config show", parser); err != nil {
			return err
		}
		return a.configShow()
	case "init":
		if err := checkFlags("config init", parser, "force"); err != nil {
			return err
		}
		return a.configInit(parser.BoolFlag("force"))
	case "path":
		if err := checkFlags("config path", parser); err != nil {
			return err
		}
		return a.configPath()
	}

	return NewValidationErrorWithExample("subcommand", a.Args.Subcommand,
		"must be show, init or path", "sortbench config show")
}

// configFilePath returns the file the config would be read from.
func (a *App) configFilePath() (string, error) {
	if a.Args.ConfigPath != "" {
		return a.Args.ConfigPath, nil
	}
	tomlPath, err := config.ConfigPathTOML()
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(tomlPath); err == nil {
		return tomlPath, nil
	}
	jsonPath, err := config.ConfigPathJSON()
	if err == nil {
		if _, statErr := os.Stat(jsonPath); statErr == nil {
			return jsonPath, nil
		}
	}
	return tomlPath, nil
}

func (a *App) configShow() error {
	if err := a.loadConfig(); err != nil {
		return err
	}
	path, err := a.configFilePath()
	if err != nil {
		return err
	}
	_, statErr := os.Stat(path)
	exists := statErr == nil

	if a.Args.JSON {
		return NewJSONResponse("config show", ConfigData{
			Path:   path,
			Exists: exists,
			Config: a.Config,
		}).Print(a.Stdout)
	}

	source := path
	if !exists {
		source = "built-in defaults (" + path + " not found)"
	}
	a.printf("%s\n", TitleStyle.Render("sortbench configuration"))
	a.printf("%s\n\n", DimStyle.Render("# source: "+source))
	a.printf("%s", a.Config.String())
	return nil
}

func (a *App) configInit(force bool) error {
	path := a.Args.ConfigPath
	if path == "" {
		if err := config.EnsureConfigDir(); err != nil {
			return NewCommandError("config", "init", "could not create config directory", err)
		}
		p, err := config.ConfigPathTOML()
		if err != nil {
			return err
		}
		path = p
	}

	if _, err := os.Stat(path); err == nil && !force {
		return NewValidationErrorWithExample("config", path, "file already exists", "sortbench config init --force")
	}

	cfg := config.Default()
	var err error
	switch {
	case a.Args.ConfigPath == "":
		err = config.Save(cfg)
	case strings.HasSuffix(path, ".json"):
		err = config.SaveJSON(cfg, path)
	default:
		err = config.SaveTOML(cfg, path)
	}
	if err != nil {
		return NewCommandError("config", "init", "could not write config", err)
	}

	if a.Args.JSON {
		return NewJSONResponse("config init", map[string]string{"path": path}).Print(a.Stdout)
	}
	a.printf("%s Wrote default configuration to %s\n", RenderStatus("ok"), path)
	return nil
}

func (a *App) configPath() error {
	path, err := a.configFilePath()
	if err != nil {
		return err
	}
	dir, err := config.ConfigDir()
	if err != nil {
		return err
	}

	// The database path depends on the loaded config; fall back to defaults
	// so a broken config file can still be located.
	cfg := config.Default()
	if err := a.loadConfig(); err == nil {
		cfg = a.Config
	}
	dbPath, err := cfg.DatabasePath()
	if err != nil {
		return err
	}

	if a.Args.JSON {
		return NewJSONResponse("config path", map[string]string{
			"dir":      dir,
			"config":   path,
			"database": dbPath,
		}).Print(a.Stdout)
	}
	a.printf("%s%s\n", RenderLabel("Directory"), dir)
	a.printf("%s%s\n", RenderLabel("Config file"), path)
	a.printf("%s%s\n", RenderLabel("History database"), dbPath)
	return nil
}

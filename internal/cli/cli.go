// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - CLI parsing and command dispatch for sortbench.
package cli

import (
	"context"
	"fmt"
	"io"
	"runtime"
	"strings"

	"github.com/jeranaias/sortbench/internal/config"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdRun Command = iota
	CmdHistory
	CmdReport
	CmdConfig
	CmdVersion
	CmdHelp
)

// String returns the command name as typed on the command line.
func (c Command) String() string {
	switch c {
	case CmdRun:
		return "run"
	case CmdHistory:
		return "history"
	case CmdReport:
		return "report"
	case CmdConfig:
		return "config"
	case CmdVersion:
		return "version"
	case CmdHelp:
		return "help"
	}
	return "unknown"
}

// Args holds parsed CLI arguments.
type Args struct {
	// Global flags
	Verbose    bool
	Quiet      bool
	JSON       bool   // Output in JSON format
	ConfigPath string // --config overrides the default config file

	// Subcommand is the first positional argument of history and config
	Subcommand string

	// Raw args (remaining after global flag parsing and the command name)
	Raw []string
}

const usageText = `sortbench - selection sort and merge sort benchmark

Runs selection sort and top-down merge sort over random arrays of growing
size, reports timings with per-engine operation counts, and keeps a
history of every run.

Usage:
  sortbench [run] [flags]            Run a benchmark (default command)
  sortbench history [list]           List stored runs
  sortbench history show <id>        Show a stored run
  sortbench history delete <id> --confirm
                                     Delete a stored run
  sortbench report <id>              Re-export a stored run
  sortbench config [show|init|path]  Configuration
  sortbench version                  Show version information
  sortbench help                     Show this help

Run Flags:
  --engine selection|merge|all       Engines to benchmark (default: all)
  --sizes 1000,2000,4000             Array sizes, in run order
  --series N                         Trials per size (default: 20)
  --seed N                           Input seed, 0 picks a fresh one
  --verify / --no-verify             Check every trial's output is sorted
  --out DIR                          Directory for report files
  --format csv|json|md               Report format (default: csv)
  --no-history                       Do not record the run
  --no-progress                      Disable the progress view

History Flags:
  --limit N                          Runs to list, 0 for all

Report Flags:
  --format md|csv|json               Report format (default: md)
  --output FILE                      Write to FILE instead of stdout
  --no-trials                        Leave per-trial timings out of JSON

Config Flags:
  --force                            Overwrite an existing file (init)

Global Flags:
  --config PATH                      Use this config file
  --json                             Machine-readable output on stdout
  -v, --verbose                      Log harness events to stderr
  -q, --quiet                        Only print errors

Environment:
  SORTBENCH_HOME                     Config and history directory (~/.sortbench)
  SORTBENCH_SIZES, SORTBENCH_SERIES, SORTBENCH_SEED, SORTBENCH_ENGINE,
  SORTBENCH_OUTPUT_DIR, SORTBENCH_DB, SORTBENCH_NO_HISTORY
                                     Override the matching config values
  NO_COLOR / FORCE_COLOR             Disable or force colored output

Examples:
  sortbench --sizes 1000,2000 --series 5
  sortbench run --engine merge --seed 42 --format md --out reports
  sortbench history show 1a2b3c4d
  sortbench report 1a2b --format csv --output selection.csv

Version: %s
`

// PrintUsage writes the usage/help text.
func PrintUsage(w io.Writer) {
	fmt.Fprintf(w, usageText, Version)
}

// PrintVersion writes version information.
func PrintVersion(w io.Writer) {
	fmt.Fprintf(w, "sortbench version %s\n", Version)
	fmt.Fprintf(w, "  Git commit: %s\n", GitCommit)
	fmt.Fprintf(w, "  Build date: %s\n", BuildDate)
}

// =============================================================================
// PARSING
// =============================================================================

// Parse parses command-line arguments (without the program name) and
// returns the command and args. With no command the benchmark runs.
func Parse(argv []string) (Command, Args, error) {
	remaining, parsedArgs, err := parseGlobalFlags(argv)
	if err != nil {
		return CmdHelp, parsedArgs, err
	}

	if len(remaining) == 0 {
		return CmdRun, parsedArgs, nil
	}

	// Run flags without a command name
	if strings.HasPrefix(remaining[0], "-") {
		parsedArgs.Raw = remaining
		return CmdRun, parsedArgs, nil
	}

	cmd := strings.ToLower(remaining[0])
	remaining = remaining[1:]
	parsedArgs.Raw = remaining

	switch cmd {
	case "run", "bench":
		return CmdRun, parsedArgs, nil

	case "history", "hist", "runs":
		parsedArgs.Subcommand = firstPositional(remaining)
		return CmdHistory, parsedArgs, nil

	case "report", "export":
		return CmdReport, parsedArgs, nil

	case "config", "cfg":
		parsedArgs.Subcommand = firstPositional(remaining)
		return CmdConfig, parsedArgs, nil

	case "version":
		return CmdVersion, parsedArgs, nil

	case "help":
		return CmdHelp, parsedArgs, nil
	}

	return CmdHelp, parsedArgs, NewValidationErrorWithExample(
		"command", cmd, "unknown command", "sortbench help")
}

// parseGlobalFlags extracts global flags from args and returns remaining args.
// --version and --help are rewritten to their commands.
func parseGlobalFlags(args []string) ([]string, Args, error) {
	var remaining []string
	parsedArgs := Args{}

	i := 0
	for i < len(args) {
		arg := args[i]

		switch arg {
		case "-q", "--quiet":
			parsedArgs.Quiet = true
		case "-v", "--verbose":
			parsedArgs.Verbose = true
		case "--json":
			parsedArgs.JSON = true
		case "--version":
			remaining = append([]string{"version"}, remaining...)
		case "-h", "--help":
			remaining = append([]string{"help"}, remaining...)
		case "--config":
			if i+1 >= len(args) {
				return nil, parsedArgs, ErrMissingArgument("config", "sortbench --config ~/bench.toml")
			}
			i++
			parsedArgs.ConfigPath = args[i]
		default:
			if strings.HasPrefix(arg, "--config=") {
				parsedArgs.ConfigPath = strings.TrimPrefix(arg, "--config=")
			} else {
				remaining = append(remaining, arg)
			}
		}
		i++
	}

	return remaining, parsedArgs, nil
}

func firstPositional(args []string) string {
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		return strings.ToLower(args[0])
	}
	return ""
}

// =============================================================================
// APP
// =============================================================================

// App carries the output streams and configuration shared by the handlers.
type App struct {
	Stdout io.Writer
	Stderr io.Writer
	Args   Args
	Config *config.Config

	// Interactive enables the progress view and glamour rendering.
	// Main sets it from TTY detection; tests leave it false.
	Interactive bool
}

// Main parses argv, runs the command and returns the process exit code.
func Main(ctx context.Context, argv []string, stdout, stderr io.Writer) int {
	cmd, args, err := Parse(argv)
	if err != nil {
		if args.JSON {
			DisplayErrorJSON(stdout, err)
		} else {
			DisplayError(stderr, err, false)
			fmt.Fprintln(stderr, DimStyle.Render("Run 'sortbench help' for usage."))
		}
		return GetExitCode(err)
	}

	app := &App{
		Stdout:      stdout,
		Stderr:      stderr,
		Args:        args,
		Interactive: IsTerminalWriter(stderr) && IsTTY() && !args.JSON && !args.Quiet,
	}

	if err := app.Execute(ctx, cmd); err != nil {
		if args.JSON {
			DisplayErrorJSON(stdout, err)
		} else {
			DisplayError(stderr, err, false)
		}
		return GetExitCode(err)
	}
	return ExitSuccess
}

// Execute runs a parsed command.
func (a *App) Execute(ctx context.Context, cmd Command) error {
	configureLogging(a.Stderr, a.Args.Verbose)

	switch cmd {
	case CmdVersion:
		return a.HandleVersion()
	case CmdHelp:
		PrintUsage(a.Stdout)
		return nil
	case CmdConfig:
		return a.HandleConfig()
	}

	if err := a.loadConfig(); err != nil {
		return err
	}
	configureLogging(a.Stderr, a.Args.Verbose || a.Config.UI.Verbose)

	switch cmd {
	case CmdRun:
		return a.HandleRun(ctx)
	case CmdHistory:
		return a.HandleHistory(ctx)
	case CmdReport:
		return a.HandleReport(ctx)
	}
	return fmt.Errorf("unhandled command %s", cmd)
}

// loadConfig loads the configuration once per App.
func (a *App) loadConfig() error {
	if a.Config != nil {
		return nil
	}

	var cfg *config.Config
	var err error
	if a.Args.ConfigPath != "" {
		cfg, err = config.LoadFromPath(a.Args.ConfigPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return err
	}
	a.Config = cfg
	return nil
}

// printf writes human-readable output unless --quiet or --json is set.
func (a *App) printf(format string, args ...interface{}) {
	if a.Args.Quiet || a.Args.JSON {
		return
	}
	fmt.Fprintf(a.Stdout, format, args...)
}

// HandleVersion handles the "version" command with JSON output support.
func (a *App) HandleVersion() error {
	if a.Args.JSON {
		data := VersionData{
			Version:   Version,
			GitCommit: GitCommit,
			BuildDate: BuildDate,
			GoVersion: runtime.Version(),
		}
		return NewJSONResponse("version", data).Print(a.Stdout)
	}
	PrintVersion(a.Stdout)
	return nil
}

// checkFlags rejects flags a command does not know.
func checkFlags(command string, parser *ArgParser, allowed ...string) error {
	known := make(map[string]bool, len(allowed))
	for _, name := range allowed {
		known[name] = true
	}
	for _, name := range parser.FlagNames() {
		if !known[name] {
			return NewValidationErrorWithExample("flag", "--"+name,
				fmt.Sprintf("unknown flag for %s", command), "sortbench help")
		}
	}
	return nil
}

// Package cmd implements the CLI command structure for sessiontodo.
package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/nibzard/sessiontodo/internal/config"
	"github.com/nibzard/sessiontodo/internal/storage"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Run executes the sessiontodo CLI.
func Run(ctx context.Context, args []string) error {
	// Create a flag set for global options
	fs := flag.NewFlagSet("sessiontodo", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	help := fs.Bool("help", false, "Show help")
	fs.BoolVar(help, "h", false, "Show help")
	showVersion := fs.Bool("version", false, "Show version")
	fs.BoolVar(showVersion, "v", false, "Show version")

	// Global flags
	cws, err := config.LoadWithSources(fs, args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			printUsage(fs, os.Stdout)
			return nil
		}
		return fmt.Errorf("loading config: %w", err)
	}
	cfg := cws.Config
	if *help {
		printUsage(fs, os.Stdout)
		return nil
	}
	if *showVersion {
		return versionCommand()
	}

	// Determine the subcommand; the TUI is the default.
	subcommand := "tui"
	remainingArgs := fs.Args()
	if len(remainingArgs) > 0 {
		subcommand = remainingArgs[0]
		remainingArgs = remainingArgs[1:]
	}

	if err := checkStorageForCommand(cfg, subcommand); err != nil {
		return err
	}

	switch subcommand {
	case "tui":
		return tuiCommand(ctx, cfg, remainingArgs)
	case "ls", "list":
		return lsCommand(cfg, remainingArgs)
	case "add":
		return addCommand(cfg, remainingArgs)
	case "edit":
		return editCommand(cfg, remainingArgs)
	case "toggle", "done":
		return toggleCommand(cfg, remainingArgs)
	case "rm", "delete":
		return rmCommand(cfg, remainingArgs)
	case "check":
		return checkCommand(cfg, remainingArgs)
	case "export":
		return exportCommand(cfg, remainingArgs)
	case "end-session":
		return endSessionCommand(cfg, remainingArgs)
	case "config":
		return configCommand(cws, remainingArgs)
	case "logs":
		return logsCommand(ctx, cfg, remainingArgs)
	case "version":
		return versionCommand()
	case "help":
		printUsage(fs, os.Stdout)
		return nil
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", subcommand)
		printUsage(fs, os.Stderr)
		return fmt.Errorf("unknown command: %s", subcommand)
	}
}

// versionCommand prints version information.
func versionCommand() error {
	fmt.Printf("sessiontodo version %s\n", Version)
	return nil
}

// printUsage prints the usage message.
// storageCommands read or write the session's tasks in a single process run.
var storageCommands = map[string]bool{
	"ls": true, "list": true, "add": true, "edit": true,
	"toggle": true, "done": true, "rm": true, "delete": true,
	"check": true, "export": true, "end-session": true,
}

// checkStorageForCommand rejects memory storage for one-shot commands, whose
// process exits before anything could be read back.
func checkStorageForCommand(cfg *config.Config, subcommand string) error {
	if !storageCommands[subcommand] {
		return nil
	}
	if kind, err := storage.ParseKind(cfg.Storage); err != nil || kind != storage.KindMemory {
		return nil
	}
	return fmt.Errorf("%s cannot use memory storage, which ends with the process; use 'sessiontodo tui' or -storage file", subcommand)
}

func printUsage(fs *flag.FlagSet, w io.Writer) {
	fmt.Fprintln(w, "sessiontodo - A task list that lasts as long as your shell session")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  sessiontodo [global options] [command] [options]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  tui                    Launch terminal UI (default command)")
	fmt.Fprintln(w, "  ls [-v]                List tasks")
	fmt.Fprintln(w, "  add [options] <title>  Add a task")
	fmt.Fprintln(w, "  edit [options] <task>  Edit a task")
	fmt.Fprintln(w, "  toggle <task>          Toggle completion")
	fmt.Fprintln(w, "  rm <task>              Delete a task")
	fmt.Fprintln(w, "  check                  Check the stored payload against the task schema")
	fmt.Fprintln(w, "  export [-format yaml]  Print tasks as JSON or YAML")
	fmt.Fprintln(w, "  end-session            Discard everything stored for this session")
	fmt.Fprintln(w, "  config [-example]      Show the effective configuration")
	fmt.Fprintln(w, "  logs [-f] [-n N]       Show the latest session log")
	fmt.Fprintln(w, "  version                Show version information")
	fmt.Fprintln(w, "  help                   Show this help message")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "A <task> is its number in 'ls' output, its id, or a unique id prefix.")
	fmt.Fprintln(w, "Memory storage lasts for one process, so only 'tui' accepts it.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Global Options:")
	fs.SetOutput(w)
	fs.PrintDefaults()
	fs.SetOutput(io.Discard)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Add/Edit Options:")
	fmt.Fprintln(w, "  -d string      Description")
	fmt.Fprintln(w, "  -due string    Due date (2025-07-01, 2025-07-01T17:00 or RFC 3339; local time unless zoned)")
	fmt.Fprintln(w, "  -title string  New title (edit only)")
	fmt.Fprintln(w, "  -clear-due     Remove the due date (edit only)")
}

// parseInterspersed parses flags that may appear before or after positional
// arguments and returns the positional arguments.
func parseInterspersed(fs *flag.FlagSet, args []string) ([]string, error) {
	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		args = fs.Args()
		if len(args) == 0 {
			return positional, nil
		}
		positional = append(positional, args[0])
		args = args[1:]
	}
}

func newCommandFlags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet("sessiontodo "+name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	return fs
}

func joinArgs(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/nibzard/sessiontodo/internal/config"
	"github.com/nibzard/sessiontodo/internal/logging"
	"github.com/nibzard/sessiontodo/internal/todo"
)

// checkCommand validates the stored payload without modifying it.
func checkCommand(cfg *config.Config, args []string) error {
	fs := newCommandFlags("check")
	schemaPath := fs.String("schema", cfg.SchemaFile, "JSON Schema to check against (default: built in)")
	verbose := fs.Bool("v", false, "Show the tasks that would load")
	if err := fs.Parse(args); err != nil {
		return err
	}

	s, err := openStorage(cfg, io.Discard)
	if err != nil {
		return err
	}
	defer s.Close()

	fmt.Println("Session Check")
	fmt.Println("=============")
	fmt.Println()
	fmt.Printf("Session: %s (%s)\n", cfg.Session(), cfg.Storage)
	fmt.Printf("Key: %s\n", s.persister.Key())

	raw, ok, err := s.persister.Raw()
	if err != nil {
		fmt.Printf("  ❌ Read error: %v\n", err)
		return fmt.Errorf("check failed")
	}
	if !ok {
		fmt.Println("  ⚠️  Nothing stored yet")
		return nil
	}
	fmt.Printf("  Size: %d bytes (quota %d)\n", len(raw), cfg.QuotaBytes)

	result := todo.Validate([]byte(raw), todo.ValidationOptions{SchemaPath: *schemaPath, Now: time.Now()})
	if result.UsedSchema {
		fmt.Printf("  Schema: %s\n", result.SchemaName)
	}
	for _, w := range result.Warnings {
		fmt.Printf("  ⚠️  %s\n", w)
	}
	fmt.Printf("  Entries: %d stored, %d would load, %d dropped\n",
		result.Report.Total, result.Report.Kept, result.Report.Dropped)

	if *verbose && result.Report.Kept > 0 {
		now := time.Now()
		if tasks, _, err := todo.Unmarshal([]byte(raw), now); err == nil {
			for i, t := range tasks {
				printTask(i+1, t, now, false)
			}
		}
	}

	if !result.Valid {
		fmt.Println("  ❌ Validation failed:")
		for _, e := range result.Errors {
			fmt.Printf("     - %v\n", e)
		}
		return fmt.Errorf("check failed")
	}
	fmt.Println("  ✅ Valid")
	return nil
}

// exportCommand prints the session's tasks.
func exportCommand(cfg *config.Config, args []string) error {
	fs := newCommandFlags("export")
	format := fs.String("format", todo.FormatJSON, "Output format (json, yaml)")
	output := fs.String("o", "", "Write to file instead of stdout")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	normalized, err := todo.NormalizeFormat(*format)
	if err != nil {
		return err
	}

	s, err := openCLISession(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	var w io.Writer = os.Stdout
	if *output != "" {
		f, err := os.Create(*output)
		if err != nil {
			return fmt.Errorf("creating %s: %w", *output, err)
		}
		defer f.Close()
		w = f
	}
	return todo.Export(w, s.store.Tasks(), normalized)
}

// endSessionCommand discards everything stored for the session.
func endSessionCommand(cfg *config.Config, args []string) error {
	fs := newCommandFlags("end-session")
	if err := fs.Parse(args); err != nil {
		return err
	}

	s, err := openStorage(cfg, os.Stderr)
	if err != nil {
		return err
	}
	defer s.Close()

	n := len(s.persister.Load())
	if err := s.storage.Clear(); err != nil {
		return fmt.Errorf("ending session: %w", err)
	}
	fmt.Printf("Session %s ended; discarded %d task(s).\n", cfg.Session(), n)
	return nil
}

// configCommand prints the effective configuration and where each value came from.
func configCommand(cws *config.ConfigWithSources, args []string) error {
	fs := newCommandFlags("config")
	example := fs.Bool("example", false, "Print an example config file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *example {
		fmt.Print(config.ExampleConfig())
		return nil
	}

	if len(cws.Files) == 0 {
		fmt.Println("Config files: (none)")
	} else {
		fmt.Println("Config files:")
		for _, f := range cws.Files {
			fmt.Printf("  %s\n", f)
		}
	}
	fmt.Println()
	fmt.Printf("%-18s %-32s %s\n", "KEY", "VALUE", "SOURCE")
	for _, field := range cws.Config.Fields() {
		value := field.Value
		if value == "" {
			value = "-"
		}
		fmt.Printf("%-18s %-32s %s\n", field.Key, value, cws.Source(field.Key))
	}
	fmt.Println()
	fmt.Printf("Effective session: %s\n", cws.Config.Session())
	return nil
}

// logsCommand prints the latest log of the session.
func logsCommand(ctx context.Context, cfg *config.Config, args []string) error {
	fs := newCommandFlags("logs")
	follow := fs.Bool("f", false, "Follow the log (like tail -f)")
	fs.BoolVar(follow, "follow", false, "Follow the log (like tail -f)")
	n := fs.Int("n", 0, "Number of lines to show (0 = all)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	logDir, err := logging.SessionLogDir(cfg.LogDir, cfg.Session())
	if err != nil {
		return fmt.Errorf("finding log directory: %w", err)
	}
	logPath, err := logging.FindLatestLog(logDir)
	if err != nil {
		return fmt.Errorf("finding latest log: %w", err)
	}
	if logPath == "" {
		fmt.Println("No log files found.")
		return nil
	}

	fmt.Printf("Tailing: %s\n", logPath)
	if *follow {
		fmt.Println("(Ctrl+C to stop)")
	}
	fmt.Println()

	return logging.TailLog(os.Stdout, logPath, *n, *follow, ctx.Done())
}

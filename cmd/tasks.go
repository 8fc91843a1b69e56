package cmd

import (
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/nibzard/sessiontodo/internal/config"
	"github.com/nibzard/sessiontodo/internal/todo"
	"github.com/nibzard/sessiontodo/internal/utils"
)

// lsCommand lists tasks in insertion order.
func lsCommand(cfg *config.Config, args []string) error {
	fs := newCommandFlags("ls")
	verbose := fs.Bool("v", false, "Show ids, descriptions and creation times")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	s, err := openCLISession(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	tasks := s.store.Tasks()
	if len(tasks) == 0 {
		fmt.Println("No tasks found.")
		return nil
	}

	now := time.Now()
	for i, t := range tasks {
		printTask(i+1, t, now, *verbose)
	}
	fmt.Println()
	printSummary(todo.Summarize(tasks, now))
	return nil
}

// addCommand adds a task.
func addCommand(cfg *config.Config, args []string) error {
	fs := newCommandFlags("add")
	description := fs.String("d", "", "Description")
	due := fs.String("due", "", "Due date")
	positional, err := parseInterspersed(fs, args)
	if err != nil {
		return err
	}

	title := joinArgs(positional)
	if title == "" {
		return fmt.Errorf("title is required")
	}
	dueDate, err := normalizeDue(*due)
	if err != nil {
		return err
	}

	s, err := openCLISession(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	task := s.store.Add(title, strings.TrimSpace(*description), dueDate)
	fmt.Printf("Added %d: %s [%s]\n", s.store.Len(), task.Title, shortID(task.ID))
	return nil
}

// editCommand changes the fields given as flags.
func editCommand(cfg *config.Config, args []string) error {
	fs := newCommandFlags("edit")
	title := fs.String("title", "", "New title")
	description := fs.String("d", "", "New description")
	due := fs.String("due", "", "New due date")
	clearDue := fs.Bool("clear-due", false, "Remove the due date")
	positional, err := parseInterspersed(fs, args)
	if err != nil {
		return err
	}
	if len(positional) != 1 {
		return fmt.Errorf("edit takes exactly one task, got %d", len(positional))
	}

	var update todo.Update
	var problem error
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "title":
			v := strings.TrimSpace(*title)
			if v == "" {
				problem = fmt.Errorf("title must not be empty")
			}
			update.Title = &v
		case "d":
			v := strings.TrimSpace(*description)
			update.Description = &v
		case "due":
			v, err := normalizeDue(*due)
			if err != nil {
				problem = err
			}
			update.DueDate = &v
		}
	})
	if problem != nil {
		return problem
	}
	if *clearDue {
		if update.DueDate != nil && *update.DueDate != "" {
			return fmt.Errorf("-due and -clear-due cannot be combined")
		}
		update.DueDate = todo.ClearDueDate().DueDate
	}
	if update.IsEmpty() {
		return fmt.Errorf("nothing to change (use -title, -d, -due or -clear-due)")
	}

	s, err := openCLISession(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	task, err := resolveTask(s.store, positional[0])
	if err != nil {
		return err
	}
	s.store.Edit(task.ID, update)
	updated, _ := s.store.Get(task.ID)
	fmt.Printf("Updated: %s [%s]\n", updated.Title, shortID(updated.ID))
	return nil
}

// toggleCommand flips completion of one task.
func toggleCommand(cfg *config.Config, args []string) error {
	return withTask(cfg, "toggle", args, func(s *session, task todo.Task) {
		s.store.ToggleCompletion(task.ID)
		state := "open"
		if !task.Completed {
			state = "done"
		}
		fmt.Printf("Marked %s: %s\n", state, task.Title)
	})
}

// rmCommand deletes one task.
func rmCommand(cfg *config.Config, args []string) error {
	return withTask(cfg, "rm", args, func(s *session, task todo.Task) {
		s.store.Delete(task.ID)
		fmt.Printf("Deleted: %s\n", task.Title)
	})
}

func withTask(cfg *config.Config, name string, args []string, fn func(*session, todo.Task)) error {
	fs := newCommandFlags(name)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("%s takes exactly one task, got %d", name, fs.NArg())
	}

	s, err := openCLISession(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	task, err := resolveTask(s.store, fs.Arg(0))
	if err != nil {
		return err
	}
	fn(s, task)
	return nil
}

// printTask prints a single task.
func printTask(n int, t todo.Task, now time.Time, verbose bool) {
	check := "[ ]"
	if t.Completed {
		check = "[x]"
	}
	line := fmt.Sprintf("%3d. %s %s", n, check, t.Title)
	if due, ok := t.DueIn(now.Location()); ok {
		line += fmt.Sprintf("  (due %s)", due.In(now.Location()).Format(todo.DateLayout))
		if todo.IsOverdue(t, now) {
			line += " OVERDUE"
		}
	}
	fmt.Println(line)

	if verbose {
		fmt.Printf("       id: %s  created: %s\n", t.ID, t.CreatedAt.In(now.Location()).Format("2006-01-02 15:04"))
		if t.Description != "" {
			fmt.Printf("       %s\n", utils.FirstLine(t.Description))
		}
	}
}

func printSummary(s todo.Summary) {
	line := fmt.Sprintf("%d open, %d done", s.Open, s.Completed)
	if s.Overdue > 0 {
		line += fmt.Sprintf(", %d overdue", s.Overdue)
	}
	fmt.Println(line)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

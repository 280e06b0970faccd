package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/jaketoday/daysync/pkg/auth"
	"github.com/jaketoday/daysync/pkg/config"
	"github.com/jaketoday/daysync/pkg/google"
	"github.com/jaketoday/daysync/pkg/index"
	"github.com/jaketoday/daysync/pkg/note"
	"github.com/jaketoday/daysync/pkg/sync"
	"github.com/jaketoday/daysync/pkg/todoist"
	"github.com/jaketoday/daysync/pkg/vault"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/tasks/v1"
)

func main() {
	// 1. Parse Flags
	pull := flag.Bool("pull", false, "Pull calendar events and tasks into the daily note")
	push := flag.Bool("push", false, "Push the daily note's entries and todos to Google")
	doAuth := flag.Bool("auth", false, "Re-run the Google authorization flow")
	clearCache := flag.Bool("clear-cache", false, "Drop the cached calendar directory")
	file := flag.String("file", "", "Daily note to sync (default: today's note in the vault)")
	dateStr := flag.String("date", "", "Date to sync as YYYY-MM-DD (default: from the note name)")
	vaultDir := flag.String("vault", "", "Vault directory holding daily notes (overrides config)")
	setVault := flag.String("set-vault", "", "Set the default vault directory")
	setPlanCalendar := flag.String("set-plan-calendar", "", "Set the plan calendar name")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	// 2. Handle Settings Updates
	if *setVault != "" || *setPlanCalendar != "" {
		if *setVault != "" {
			cfg.VaultDir = *setVault
		}
		if *setPlanCalendar != "" {
			cfg.PlanCalendar = *setPlanCalendar
		}
		if err := config.Save(cfg); err != nil {
			log.Fatalf("Error saving config: %v", err)
		}
		fmt.Println("Configuration saved")
		return
	}

	loc, err := cfg.Location()
	if err != nil {
		log.Fatalf("Error resolving timezone: %v", err)
	}

	idx, err := index.NewCalendarIndex()
	if err != nil {
		log.Fatalf("Error loading calendar index: %v", err)
	}

	// 3. Handle Cache Clear
	if *clearCache {
		idx.Clear()
		if err := idx.Save(); err != nil {
			log.Fatalf("Error clearing calendar index: %v", err)
		}
		fmt.Println("Calendar directory cache cleared")
		return
	}

	ctx := context.Background()

	// 4. Handle Authentication
	if *doAuth {
		if err := auth.RemoveToken(); err != nil {
			log.Fatalf("Could not remove existing token: %v", err)
		}
		scopes := []string{calendar.CalendarScope, tasks.TasksScope}
		if _, err := auth.GetClient(ctx, cfg.Impersonate, scopes); err != nil {
			log.Fatalf("Authentication failed: %v", err)
		}
		log.Println("Authentication successful")
		return
	}

	if *pull == *push {
		log.Fatalf("Exactly one of -pull or -push is required")
	}

	// 5. Resolve the Active Note (Priority: Flag > Config)
	dir := cfg.VaultDir
	if *vaultDir != "" {
		dir = *vaultDir
	}

	var date time.Time
	if *dateStr != "" {
		date, err = time.ParseInLocation("2006-01-02", *dateStr, loc)
		if err != nil {
			log.Fatalf("Invalid -date, want YYYY-MM-DD: %v", err)
		}
	}

	path := *file
	switch {
	case path != "" && date.IsZero():
		date, err = vault.DateFromPath(path, loc)
		if err != nil {
			log.Fatalf("Error: %v", err)
		}
	case path == "":
		if dir == "" {
			log.Fatalf("No note to sync: pass -file, or set a vault directory with -set-vault")
		}
		if date.IsZero() {
			now := time.Now().In(loc)
			date = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
		}
		path = vault.Resolve(dir, date)
	}

	content, err := vault.Read(path)
	if err != nil {
		log.Fatalf("Error: %v", err)
	}

	// 6. Build Remote Clients
	cal, taskCli, err := google.NewClients(ctx, cfg, idx, loc)
	if err != nil {
		log.Fatalf("Error creating Google clients: %v", err)
	}

	var taskStore sync.TaskStore = taskCli
	if cfg.TaskBackend == "todoist" {
		if cfg.TodoistAPIKey == "" {
			log.Fatalf("Todoist backend selected but todoist_api_key is not set")
		}
		taskStore = todoist.NewClient(cfg.TodoistAPIKey)
	}

	bridge := &sync.TaskBridge{
		Store:            taskStore,
		Date:             date,
		PlanHeader:       cfg.PlanHeader,
		UnassignedHeader: cfg.UnassignedHeader,
	}

	if *pull {
		if err := runPull(cfg, cal, bridge, path, content, date, loc); err != nil {
			log.Fatalf("Failed to sync: %v", err)
		}
		return
	}

	if err := runPush(cfg, cal, bridge, content, date); err != nil {
		log.Fatalf("Failed to sync: %v", err)
	}
}

// runPull rewrites the note's plan and log sections from the day's fetched
// events, then folds remote task completion back into the plan checkboxes.
func runPull(cfg *config.Config, cal *google.CalendarClient, bridge *sync.TaskBridge, path, content string, date time.Time, loc *time.Location) error {
	events, err := cal.EventsForDate(date)
	if err != nil {
		return err
	}
	planEvents, logEvents := cal.SplitByCalendar(events, cfg.PlanCalendar)

	content = note.UpdateSection(content, cfg.PlanHeader, note.FormatEvents(planEvents, false, false, loc))
	content = note.UpdateSection(content, cfg.LogHeader, note.FormatEvents(logEvents, true, true, loc))
	if err := vault.Write(path, content); err != nil {
		return err
	}
	log.Printf("Synced %d plan events and %d log events", len(planEvents), len(logEvents))

	updatedDoc, updated, added, err := bridge.PullTasks(content)
	if err != nil {
		return err
	}
	if updatedDoc != content {
		if err := vault.Write(path, updatedDoc); err != nil {
			return err
		}
	}
	log.Printf("Tasks: %d checkboxes updated, %d added", updated, added)
	return nil
}

// runPush reconciles the note's entries against the remote calendars and
// pushes plan checkboxes out as tasks.
func runPush(cfg *config.Config, cal *google.CalendarClient, bridge *sync.TaskBridge, content string, date time.Time) error {
	planLocal := note.ParseSection(content, cfg.PlanHeader, cfg.DefaultCalendar)

	// Log entries get no default calendar. The plan calendar's events are
	// reconciled from the plan section alone, so an untagged log entry
	// routed there would be re-created on every push and deleted on the
	// next; the reconciler warns and skips them instead.
	logLocal := note.ParseSection(content, cfg.LogHeader, "")

	events, err := cal.EventsForDate(date)
	if err != nil {
		return err
	}
	planRemote, logRemote := cal.SplitByCalendar(events, cfg.PlanCalendar)

	planID, ok := cal.CalendarIDByName(cfg.PlanCalendar)
	if !ok {
		return fmt.Errorf("plan calendar %q not found", cfg.PlanCalendar)
	}

	rec := &sync.Reconciler{Store: cal, Date: date}

	planRes, err := rec.Reconcile(planID, planLocal, planRemote)
	if err != nil {
		return err
	}
	logRes, err := rec.ReconcileByCalendar(cal.CalendarIDByName, logLocal, logRemote)
	if err != nil {
		return err
	}

	total := planRes
	total.Add(logRes)
	log.Printf("Pushed to calendar: %d created, %d updated, %d deleted", total.Created, total.Updated, total.Deleted)

	todos := note.Todos(note.ParseSectionWithTodos(content, cfg.PlanHeader, cfg.DefaultCalendar))
	created, updated, err := bridge.PushTodos(todos)
	if err != nil {
		return err
	}
	log.Printf("Tasks: %d created, %d updated", created, updated)
	return nil
}

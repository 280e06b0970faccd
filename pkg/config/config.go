package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const (
	xdgAppName = "daysync"
	configFile = "config.json"
)

// Config holds the user-editable settings. Section names and the sentinel
// calendar for untagged plan entries are configuration, not literals baked
// into the parser.
type Config struct {
	// VaultDir is the directory holding the daily notes (YYYY-MM-DD.md).
	VaultDir string `json:"vault_dir"`
	// PlanCalendar is the calendar plan-section entries sync with.
	PlanCalendar string `json:"plan_calendar"`
	// DefaultCalendar is assigned to untagged plan entries when parsed.
	DefaultCalendar string `json:"default_calendar"`
	// PlanHeader and LogHeader name the two synced sections; headings are
	// matched by substring containment, so decoration is fine.
	PlanHeader string `json:"plan_header"`
	LogHeader  string `json:"log_header"`
	// UnassignedHeader labels the block of remote tasks with no local home.
	UnassignedHeader string `json:"unassigned_header"`
	// Impersonate is the account a service-account key acts as. Empty means
	// the interactive OAuth flow.
	Impersonate string `json:"impersonate,omitempty"`
	// Timezone is the fixed local zone (IANA name); empty means system local.
	Timezone string `json:"timezone,omitempty"`
	// TaskLists are preferred task list titles, tried in order.
	TaskLists []string `json:"task_lists,omitempty"`
	// TaskBackend selects where checkboxes sync to: "google" (default) or
	// "todoist".
	TaskBackend string `json:"task_backend,omitempty"`
	// TodoistAPIKey authenticates the todoist backend.
	TodoistAPIKey string `json:"todoist_api_key,omitempty"`
}

func GetConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", xdgAppName, configFile), nil
}

// Default returns the built-in settings used when no config file exists.
func Default() *Config {
	return &Config{
		PlanCalendar:     "Plan",
		DefaultCalendar:  "Plan",
		PlanHeader:       "Daily Plan",
		LogHeader:        "Daily Log",
		UnassignedHeader: "Unassigned Tasks",
		TaskLists:        []string{"My Tasks"},
		TaskBackend:      "google",
	}
}

func Load() (*Config, error) {
	path, err := GetConfigPath()
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, err
	}
	defer f.Close()

	cfg := Default()
	if err := json.NewDecoder(f).Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.normalize()
	return cfg, nil
}

func Save(cfg *Config) error {
	path, err := GetConfigPath()
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to open config file for writing: %w", err)
	}
	defer f.Close()

	encoder := json.NewEncoder(f)
	encoder.SetIndent("", "  ")
	return encoder.Encode(cfg)
}

// Location resolves the configured timezone, falling back to system local.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

func (c *Config) normalize() {
	def := Default()
	if c.PlanCalendar == "" {
		c.PlanCalendar = def.PlanCalendar
	}
	if c.DefaultCalendar == "" {
		c.DefaultCalendar = def.DefaultCalendar
	}
	if c.PlanHeader == "" {
		c.PlanHeader = def.PlanHeader
	}
	if c.LogHeader == "" {
		c.LogHeader = def.LogHeader
	}
	if c.UnassignedHeader == "" {
		c.UnassignedHeader = def.UnassignedHeader
	}
	if len(c.TaskLists) == 0 {
		c.TaskLists = def.TaskLists
	}
	if c.TaskBackend == "" {
		c.TaskBackend = def.TaskBackend
	}
}

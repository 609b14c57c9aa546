// Package config resolves runtime settings from defaults, an optional TOML
// file, and TODO_* environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/kenta1114/my-todo-app/internal/model"
)

const appName = "my-todo-app"

type ReminderConfig struct {
	Enabled       bool   `toml:"enabled"`
	BeforeMinutes int    `toml:"before_minutes"`
	Channel       string `toml:"channel"`
}

type RuntimeConfig struct {
	DBPath               string         `toml:"db_path"`
	DesktopNotifications bool           `toml:"desktop_notifications"`
	SchedulerBuffer      int            `toml:"scheduler_buffer"`
	LogFile              string         `toml:"log_file"`
	LogLevel             string         `toml:"log_level"`
	LogFormat            string         `toml:"log_format"`
	Reminder             ReminderConfig `toml:"reminder"`
}

func DefaultRuntimeConfig() RuntimeConfig {
	d := model.DefaultReminderSettings()
	return RuntimeConfig{
		DBPath:               filepath.Join(dataDir(), "todo.db"),
		DesktopNotifications: true,
		SchedulerBuffer:      64,
		LogFile:              "todo.log",
		LogLevel:             "info",
		LogFormat:            "text",
		Reminder: ReminderConfig{
			Enabled:       d.Enabled,
			BeforeMinutes: d.BeforeMinutes,
			Channel:       string(d.Channel),
		},
	}
}

// ReminderSettings converts the reminder section into validated settings.
func (c RuntimeConfig) ReminderSettings() (model.ReminderSettings, error) {
	ch, err := model.ParseChannel(c.Reminder.Channel)
	if err != nil {
		return model.ReminderSettings{}, err
	}
	out := model.ReminderSettings{
		Enabled:       c.Reminder.Enabled,
		BeforeMinutes: c.Reminder.BeforeMinutes,
		Channel:       ch,
	}
	if err := out.Validate(); err != nil {
		return model.ReminderSettings{}, err
	}
	return out, nil
}

// Load reads the file named by TODO_CONFIG, or the default location, then
// applies environment overrides.
func Load() (RuntimeConfig, error) {
	path := strings.TrimSpace(os.Getenv("TODO_CONFIG"))
	if path == "" {
		path = DefaultPath()
	}
	cfg, err := LoadFrom(path)
	if err != nil {
		return RuntimeConfig{}, err
	}
	return RuntimeConfigFromEnv(cfg), nil
}

// DefaultPath is $XDG_CONFIG_HOME/my-todo-app/config.toml, falling back to
// the platform config directory.
func DefaultPath() string {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		if dir, err := os.UserConfigDir(); err == nil {
			base = dir
		} else {
			home, _ := os.UserHomeDir()
			base = filepath.Join(home, ".config")
		}
	}
	return filepath.Join(base, appName, "config.toml")
}

// LoadFrom overlays the TOML file at path onto the defaults. A missing file is
// not an error.
func LoadFrom(path string) (RuntimeConfig, error) {
	cfg := DefaultRuntimeConfig()
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return RuntimeConfig{}, fmt.Errorf("reading config file: %w", err)
	}
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return RuntimeConfig{}, fmt.Errorf("parsing config file: %w", err)
	}
	if _, err := cfg.ReminderSettings(); err != nil {
		return RuntimeConfig{}, fmt.Errorf("config file %s: %w", path, err)
	}
	cfg.DBPath = expandPath(cfg.DBPath)
	cfg.LogFile = expandPath(cfg.LogFile)
	return cfg, nil
}

// RuntimeConfigFromEnv applies TODO_* overrides. Malformed values are
// ignored.
func RuntimeConfigFromEnv(base RuntimeConfig) RuntimeConfig {
	cfg := base
	if v, ok := lookupEnv("TODO_DB_PATH"); ok {
		cfg.DBPath = expandPath(v)
	}
	if v, ok := getEnvBool("TODO_DESKTOP_NOTIFICATIONS"); ok {
		cfg.DesktopNotifications = v
	}
	if v, ok := getEnvInt("TODO_SCHEDULER_BUFFER"); ok && v > 0 {
		cfg.SchedulerBuffer = v
	}
	if v, ok := lookupEnv("TODO_LOG_FILE"); ok {
		cfg.LogFile = expandPath(v)
	}
	if v, ok := lookupEnv("TODO_LOG_LEVEL"); ok {
		cfg.LogLevel = strings.ToLower(v)
	}
	if v, ok := lookupEnv("TODO_LOG_FORMAT"); ok {
		cfg.LogFormat = strings.ToLower(v)
	}
	if v, ok := getEnvBool("TODO_REMINDER_ENABLED"); ok {
		cfg.Reminder.Enabled = v
	}
	if v, ok := getEnvInt("TODO_REMINDER_BEFORE_MINUTES"); ok && model.IsLeadTime(v) {
		cfg.Reminder.BeforeMinutes = v
	}
	if v, ok := lookupEnv("TODO_REMINDER_CHANNEL"); ok {
		if ch, err := model.ParseChannel(v); err == nil {
			cfg.Reminder.Channel = string(ch)
		}
	}
	return cfg
}

func dataDir() string {
	if base := os.Getenv("XDG_DATA_HOME"); base != "" {
		return filepath.Join(base, appName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".local", "share", appName)
}

func expandPath(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[1:])
	}
	return path
}

// lookupEnv distinguishes an explicitly empty variable from an unset one so
// TODO_DB_PATH= can switch storage off.
func lookupEnv(name string) (string, bool) {
	v, ok := os.LookupEnv(name)
	return strings.TrimSpace(v), ok
}

func getEnvInt(name string) (int, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}

func getEnvBool(name string) (bool, bool) {
	raw := strings.TrimSpace(strings.ToLower(os.Getenv(name)))
	if raw == "" {
		return false, false
	}
	switch raw {
	case "1", "true", "yes", "y", "on":
		return true, true
	case "0", "false", "no", "n", "off":
		return false, true
	default:
		return false, false
	}
}

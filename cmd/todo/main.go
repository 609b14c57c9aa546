package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/kenta1114/my-todo-app/internal/config"
	"github.com/kenta1114/my-todo-app/internal/logging"
	"github.com/kenta1114/my-todo-app/internal/notify"
	"github.com/kenta1114/my-todo-app/internal/reminder"
	"github.com/kenta1114/my-todo-app/internal/scheduler"
	"github.com/kenta1114/my-todo-app/internal/storage"
	"github.com/kenta1114/my-todo-app/internal/store"
	"github.com/kenta1114/my-todo-app/internal/update"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "todo failed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger, logCloser, err := logging.OpenFile(cfg.LogFile, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	defer logCloser.Close()

	settings, err := cfg.ReminderSettings()
	if err != nil {
		return err
	}

	var repo *storage.SQLiteRepository
	storeOpts := []store.Option{store.WithLogger(logger.WithPrefix("store"))}
	if cfg.DBPath != "" {
		repo, err = openRepository(cfg.DBPath)
		if err != nil {
			return err
		}
		defer repo.Close()
		storeOpts = append(storeOpts, store.WithPersister(repo))
	}
	tasks := store.New(storeOpts...)
	if repo != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := tasks.Load(ctx, repo)
		cancel()
		if err != nil {
			return err
		}
	}

	sched := scheduler.NewEngine(cfg.SchedulerBuffer)
	sched.Start()
	defer sched.Stop()

	desktop := notify.NewDesktop(sched, notify.ExecSender{}, cfg.DesktopNotifications,
		notify.WithDesktopLogger(logger.WithPrefix("notify")))
	engine := reminder.New(desktop, tasks,
		reminder.WithSettings(settings),
		reminder.WithLogger(logger.WithPrefix("reminder")),
	)
	engine.Watch(tasks)
	engine.Refresh()

	deps := update.Deps{
		Store:  tasks,
		Engine: engine,
		Alerts: desktop,
		Logger: logger,
	}
	logger.Info("starting", "tasks", tasks.Len(), "db", cfg.DBPath, "reminders", engine.State())

	program := tea.NewProgram(update.NewModel(deps), tea.WithAltScreen())
	_, runErr := program.Run()
	engine.ClearAll()
	logger.Info("stopped", "tasks", tasks.Len())
	return runErr
}

func openRepository(path string) (*storage.SQLiteRepository, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
	}
	return storage.OpenSQLite(path)
}

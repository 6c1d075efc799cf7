package main

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/robfig/cron/v3"

	"github.com/mrjrask/desk-display/pkg/config"
	"github.com/mrjrask/desk-display/pkg/persistence"
	"github.com/mrjrask/desk-display/pkg/schedule"
	"github.com/mrjrask/desk-display/pkg/store"
)

// Loop drives the display: one resolver tick per interval, state flushes,
// config hot reload, and nightly maintenance.
type Loop struct {
	engine     *schedule.Engine
	renderer   Renderer
	states     persistence.StateRepository
	configPath string
	configs    *store.Store
	interval   time.Duration
	darkHours  []config.DarkSegment
	logger     *slog.Logger
}

// Run ticks until the context is cancelled. Resolution and render errors
// are fatal to their tick only: the loop logs and tries again next tick.
func (l *Loop) Run(ctx context.Context, maintenanceSchedule string) error {
	watcher, err := l.watchConfig(ctx)
	if err != nil {
		l.logger.Warn("config watch unavailable, hot reload disabled", "error", err)
	} else {
		defer watcher.Close()
	}

	maintenance := cron.New()

	if _, err := maintenance.AddFunc(maintenanceSchedule, l.maintain); err != nil {
		l.logger.Warn("invalid maintenance schedule, nightly maintenance disabled",
			"schedule", maintenanceSchedule, "error", err)
	} else {
		maintenance.Start()
		defer maintenance.Stop()
	}

	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	l.logger.Info("display loop started", "interval", l.interval)

	for {
		select {
		case <-ctx.Done():
			l.flushState(context.Background())

			return ctx.Err()
		case <-ticker.C:
			l.tick(ctx)
		}
	}
}

func (l *Loop) tick(ctx context.Context) {
	now := time.Now()

	if config.IsDark(l.darkHours, now) {
		l.logger.Debug("inside dark hours, skipping tick")

		return
	}

	ref, err := l.engine.NextScreen()
	if err != nil {
		l.logger.Warn("resolution failed this tick", "error", err)

		return
	}

	if err := l.renderer.Render(ctx, ref); err != nil {
		l.logger.Warn("renderer rejected screen", "screen", ref.Screen, "error", err)

		return
	}

	l.flushState(ctx)
}

func (l *Loop) flushState(ctx context.Context) {
	if err := l.states.Save(ctx, l.engine.SnapshotState()); err != nil {
		l.logger.Warn("failed to persist scheduler state", "error", err)
	}
}

// watchConfig hot-reloads the engine when the active config file changes,
// e.g. after a save from the separately-running admin server. Invalid
// file contents are logged and ignored; the engine keeps the last good
// document.
func (l *Loop) watchConfig(ctx context.Context) (*fsnotify.Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	// Watch the directory: the store replaces the file by rename, which
	// drops a watch on the file itself.
	if err := watcher.Add(filepath.Dir(l.configPath)); err != nil {
		watcher.Close()

		return nil, err
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}

				if event.Name != l.configPath {
					continue
				}

				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}

				l.reloadConfig()
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}

				l.logger.Warn("config watcher error", "error", err)
			}
		}
	}()

	return watcher, nil
}

func (l *Loop) reloadConfig() {
	data, err := os.ReadFile(l.configPath)
	if err != nil {
		l.logger.Warn("failed to read changed config", "error", err)

		return
	}

	doc, verrs := schedule.ValidateRaw(data)
	if len(verrs) > 0 {
		l.logger.Warn("changed config is invalid, keeping current document", "error", verrs.Error())

		return
	}

	l.engine.Swap(doc)
	l.logger.Info("configuration reloaded", "path", l.configPath)
}

func (l *Loop) maintain() {
	if err := l.configs.Prune(); err != nil {
		l.logger.Warn("history maintenance failed", "error", err)
	}

	l.flushState(context.Background())
}

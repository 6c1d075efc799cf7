// Command desk-display runs the display control loop: it resolves the
// next screen from the playlist schedule once per tick and hands it to
// the renderer.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	cli "github.com/urfave/cli/v3"

	"github.com/mrjrask/desk-display/pkg/config"
	"github.com/mrjrask/desk-display/pkg/log"
	filepersistence "github.com/mrjrask/desk-display/pkg/persistence/file"
	"github.com/mrjrask/desk-display/pkg/schedule"
	"github.com/mrjrask/desk-display/pkg/store"
)

func main() {
	cmd := &cli.Command{
		Name:                  "desk-display",
		Usage:                 "Rotate the desk display through its configured screens",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "settings",
				Usage:   "Path to the settings YAML file",
				Sources: cli.EnvVars("DESK_DISPLAY_SETTINGS"),
			},
			&cli.StringFlag{
				Name:    "schedule-config",
				Usage:   "Path to the active schedule configuration JSON",
				Value:   "./data/schedule.json",
				Sources: cli.EnvVars("SCHEDULE_CONFIG"),
			},
			&cli.StringFlag{
				Name:    "state-file",
				Usage:   "Path to the scheduler state file",
				Sources: cli.EnvVars("SCHEDULER_STATE"),
			},
			&cli.DurationFlag{
				Name:    "tick-interval",
				Usage:   "Time each screen stays on the display",
				Sources: cli.EnvVars("TICK_INTERVAL"),
			},
			&cli.StringFlag{
				Name:    "dark-hours",
				Usage:   `Sleep windows, e.g. "Mon-Thu 19:00-07:00; Fri-Sun 00:00-24:00"`,
				Sources: cli.EnvVars("DARK_HOURS"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Action: run,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil && !errors.Is(err, context.Canceled) {
		log.WithModule("display").Error("display loop failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, command *cli.Command) error {
	log.Setup(command.String("log-level"))
	logger := log.WithModule("display")

	settings := config.Default()

	if path := command.String("settings"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return err
		}

		settings = loaded
	}

	configPath := command.String("schedule-config")
	if settings.Paths.Config != "" {
		configPath = settings.Paths.Config
	}

	statePath := command.String("state-file")
	if statePath == "" {
		statePath = settings.Paths.State
	}

	if statePath == "" {
		statePath = filepath.Join(filepath.Dir(configPath), "scheduler_state.json")
	}

	interval := command.Duration("tick-interval")
	if interval <= 0 {
		interval = settings.TickInterval()
	}

	darkSpec := command.String("dark-hours")
	if darkSpec == "" {
		darkSpec = settings.Display.DarkHours
	}

	darkHours, err := config.ParseDarkHours(darkSpec)
	if err != nil {
		return err
	}

	configStore, err := store.Open(store.Options{
		ConfigPath: configPath,
		LedgerPath: settings.Paths.Ledger,
		ArchiveDir: settings.Paths.Archive,
		Retention:  settings.Store.Retention,
	}, logger)
	if err != nil {
		return err
	}

	defer func() {
		if err := configStore.Close(); err != nil {
			logger.Error("failed to close config store", "error", err)
		}
	}()

	doc, err := configStore.Current()
	if err != nil {
		return errors.New("no valid schedule configuration found; create one with the admin API or desk-display-migrate")
	}

	engine := schedule.NewEngine(doc, logger)

	states := filepersistence.NewStateRepository(statePath)

	snap, err := states.Load(ctx)
	if err != nil {
		logger.Warn("failed to load scheduler state, starting fresh", "error", err)
	} else {
		engine.RestoreState(snap)
	}

	// Saves made by this process (none today, the admin runs separately)
	// still swap the engine without waiting for the file watcher.
	configStore.Subscribe(engine.Swap)

	runCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	loop := &Loop{
		engine:     engine,
		renderer:   newLogRenderer(log.WithModule("renderer")),
		states:     states,
		configPath: configPath,
		configs:    configStore,
		interval:   interval,
		darkHours:  darkHours,
		logger:     logger,
	}

	err = loop.Run(runCtx, settings.MaintenanceSchedule())
	if errors.Is(err, context.Canceled) {
		logger.Info("display loop stopped")

		return nil
	}

	return err
}

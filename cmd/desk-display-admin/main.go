package main

import (
	"context"
	"os"

	cli "github.com/urfave/cli/v3"

	"github.com/mrjrask/desk-display/pkg/config"
	"github.com/mrjrask/desk-display/pkg/log"
	"github.com/mrjrask/desk-display/pkg/store"
)

const defaultPort = 5001

func main() {
	cmd := &cli.Command{
		Name:                  "desk-display-admin",
		Usage:                 "Manage the desk-display schedule configuration",
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
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to run the admin API server on",
				Value:   defaultPort,
				Sources: cli.EnvVars("ADMIN_PORT"),
			},
			&cli.IntFlag{
				Name:    "retention",
				Usage:   "How many config versions to keep",
				Value:   store.DefaultRetention,
				Sources: cli.EnvVars("CONFIG_RETENTION"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"))
			logger := log.WithModule("admin")

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

			retention := int(command.Int("retention"))
			if settings.Store.Retention > 0 {
				retention = settings.Store.Retention
			}

			configStore, err := store.Open(store.Options{
				ConfigPath: configPath,
				LedgerPath: settings.Paths.Ledger,
				ArchiveDir: settings.Paths.Archive,
				Retention:  retention,
			}, logger)
			if err != nil {
				return err
			}

			defer func() {
				if err := configStore.Close(); err != nil {
					logger.Error("failed to close config store", "error", err)
				}
			}()

			port := int(command.Int("port"))
			if settings.Admin.Port != 0 {
				port = settings.AdminPort()
			}

			logger.InfoContext(ctx, "starting desk-display admin API", "port", port, "config", configPath)

			api := NewAPI(logger, configStore)

			return api.Start(port)
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.WithModule("admin").Error("admin server failed", "error", err)
		os.Exit(1)
	}
}

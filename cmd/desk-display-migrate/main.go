// Command desk-display-migrate converts legacy schedule configuration
// files to the v2 playlist schema.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	cli "github.com/urfave/cli/v3"

	"github.com/mrjrask/desk-display/pkg/log"
	"github.com/mrjrask/desk-display/pkg/migration"
)

func main() {
	cmd := &cli.Command{
		Name:                  "desk-display-migrate",
		Usage:                 "Schedule configuration migrations",
		EnableShellCompletion: true,
		Commands: []*cli.Command{
			{
				Name:  "migrate",
				Usage: "Migrate a configuration file to schema v2",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "input",
						Usage:    "Path to the existing configuration JSON",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "output",
						Usage: "Optional output path; defaults to in-place overwrite",
					},
					&cli.StringFlag{
						Name:  "log-level",
						Value: "info",
						Usage: "Log level (debug, info, warn, error)",
					},
				},
				Action: func(ctx context.Context, command *cli.Command) error {
					log.Setup(command.String("log-level"))

					return runMigrate(command.String("input"), command.String("output"))
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// runMigrate reads the input, migrates it, and writes the result. The
// input file is never touched on failure; the output is only written once
// the migrated document has passed validation.
func runMigrate(inputPath, outputPath string) error {
	if outputPath == "" {
		outputPath = inputPath
	}

	data, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", inputPath, err)
	}

	result, err := migration.Migrate(data, inputPath)
	if err != nil {
		return err
	}

	encoded, err := json.MarshalIndent(result.Document, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode migrated document: %w", err)
	}

	encoded = append(encoded, '\n')

	if err := os.WriteFile(outputPath, encoded, 0600); err != nil {
		return fmt.Errorf("failed to write %s: %w", outputPath, err)
	}

	if result.Migrated {
		fmt.Printf("Migrated configuration -> %s\n", outputPath)
	} else {
		fmt.Println("Configuration already uses schema v2")
	}

	return nil
}

package main

import (
	"context"

	"github.com/jhpark-dev/lottoctl/internal/shared"
	"github.com/urfave/cli/v3"
)

// ConfigInit writes the example configuration to disk.
func (r *Runner) ConfigInit(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("output")

	if err := shared.CreateConfigFile(path); err != nil {
		return err
	}

	r.logger.Info("config created", "path", path)
	return r.writePlain("Created %s — edit it, then store credentials with 'lottoctl credentials set'\n", path)
}

// ConfigShow prints the resolved configuration after environment overrides.
func (r *Runner) ConfigShow(ctx context.Context, cmd *cli.Command) error {
	if err := r.loadConfig(cmd); err != nil {
		return err
	}

	shown := *r.config
	if shown.Notify.WebhookURL != "" {
		shown.Notify.WebhookURL = shared.Mask(shown.Notify.WebhookURL)
	}
	return r.writeJSON(shown, cmd.Bool("pretty"))
}

// configCommand handles configuration file operations.
func configCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Manage the configuration file",
		Commands: []*cli.Command{
			{
				Name:  "init",
				Usage: "Create a starter configuration file",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Where to write the file",
						Value:   "config.json",
					},
				},
				Action: r.ConfigInit,
			},
			{
				Name:  "show",
				Usage: "Print the resolved configuration",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
						Value: true,
					},
				},
				Action: r.ConfigShow,
			},
		},
	}
}

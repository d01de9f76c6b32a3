package main

import (
	"context"

	"github.com/jhpark-dev/lottoctl/internal/picker"
	"github.com/jhpark-dev/lottoctl/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Run performs the full login → balance → recharge → purchase workflow.
func (r *Runner) Run(ctx context.Context, cmd *cli.Command) error {
	if err := r.loadConfig(cmd); err != nil {
		return err
	}
	if cmd.IsSet("headless") {
		r.config.Options.Headless = cmd.Bool("headless")
	}
	if count := cmd.Int("count"); count > 0 {
		r.config.Purchase.Count = int(count)
		if err := r.config.Validate(); err != nil {
			return err
		}
	}

	creds, err := r.loadCredentials(cmd)
	if err != nil {
		return err
	}

	service, closeBrowser, err := r.siteService(ctx)
	if err != nil {
		return err
	}
	defer closeBrowser()

	history := r.history
	if history == nil {
		db, repo, err := r.openHistory()
		if err != nil {
			return err
		}
		defer db.Close()
		history = repo
	}

	archive, err := picker.LoadArchive(cmd.String("archive"))
	if err != nil {
		r.logger.Warn("draw archive unavailable, using random picks", "err", err)
		archive = picker.NewArchive(nil)
	}

	engine := tasks.NewBuyEngine(
		service,
		r.runNotifier(cmd),
		picker.New(archive, nil),
		history,
		r.config,
		r.logger,
	)

	progressCh := make(chan tasks.ProgressUpdate, 50)
	progressDone := make(chan struct{})
	go func() {
		defer close(progressDone)
		for update := range progressCh {
			switch update.Phase {
			case tasks.Login:
				r.writePlain("🔑 %s\n", update.Message)
			case tasks.CheckBalance:
				r.writePlain("💰 %s\n", update.Message)
			case tasks.Recharge:
				r.writePlain("💳 %s\n", update.Message)
			case tasks.Purchase:
				r.writePlain("   %s\n", update.Message)
			case tasks.Complete:
				r.writePlain("\n%s\n", update.Message)
			}
		}
	}()

	result, runErr := engine.Run(ctx, progressCh, tasks.RunOptions{
		UserID:   creds.UserID,
		Password: creds.Password,
		DryRun:   cmd.Bool("dry-run"),
		Now:      cmd.Bool("now"),
	})
	close(progressCh)
	<-progressDone

	if runErr != nil {
		return runErr
	}

	if cmd.Bool("json") {
		return r.writeJSON(result, cmd.Bool("pretty"))
	}

	r.writePlain("\n")
	r.writePlainHeader("Run Complete")
	r.writePlain("Balance: %d won\n", result.FinalBalance)
	if result.Recharged {
		r.writePlain("Recharged: %d won\n", result.RechargeAmount)
	}
	if result.Skipped {
		r.writePlain("Purchases skipped: %s\n", result.SkipReason)
		return nil
	}
	r.writePlain("Games bought: %d/%d (%d won)\n", result.SuccessCount, len(result.Games), result.Spent)
	if result.ScreenshotPath != "" {
		r.writePlain("Screenshot: %s\n", result.ScreenshotPath)
	}

	if result.FailedCount > 0 {
		r.writePlain("\nFailed games:\n")
		for _, game := range result.Games {
			if !game.Succeeded {
				r.writePlain("  - game %d (%s): %s\n", game.Index+1, game.Mode, game.Error)
			}
		}
	}

	return nil
}

// runCommand handles the purchase workflow.
func runCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "Log in, check the balance, and buy the configured games",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
			},
			&cli.StringFlag{
				Name:  "file",
				Usage: "Path to the encrypted credential file",
			},
			&cli.StringFlag{
				Name:  "master-password",
				Usage: "Master password (falls back to env, secret file, then prompt)",
			},
			&cli.StringFlag{
				Name:  "archive",
				Usage: "Path to the winning number archive",
				Value: "draws.json",
			},
			&cli.IntFlag{
				Name:  "count",
				Usage: "Override the configured game count",
			},
			&cli.BoolFlag{
				Name:  "headless",
				Usage: "Run the browser headless (overrides the config)",
			},
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "Stop after the balance check",
			},
			&cli.BoolFlag{
				Name:  "now",
				Usage: "Buy even when today is not a configured purchase day",
			},
			&cli.BoolFlag{
				Name:  "no-notify",
				Usage: "Skip webhook notifications",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output the run result as JSON",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print output",
				Value: true,
			},
		},
		Action: r.Run,
	}
}

package main

import (
	"context"
	"fmt"

	"github.com/jhpark-dev/lottoctl/internal/services"
	"github.com/jhpark-dev/lottoctl/internal/shared"
	"github.com/urfave/cli/v3"
)

// diagnoser is implemented by site clients that can probe page selectors.
type diagnoser interface {
	Diagnose(ctx context.Context) ([]services.CheckResult, error)
}

// SiteDiagnose probes the site's login and game pages for the selectors the
// automation depends on.
func (r *Runner) SiteDiagnose(ctx context.Context, cmd *cli.Command) error {
	if err := r.loadConfig(cmd); err != nil {
		return err
	}

	if cmd.IsSet("headless") {
		r.config.Options.Headless = cmd.Bool("headless")
	}

	service, closeBrowser, err := r.siteService(ctx)
	if err != nil {
		return err
	}
	defer closeBrowser()

	probe, ok := service.(diagnoser)
	if !ok {
		return fmt.Errorf("%w: site client cannot diagnose pages", shared.ErrSiteUnavailable)
	}

	results, err := probe.Diagnose(ctx)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(results, cmd.Bool("pretty"))
	}

	r.writePlainHeader("Site Diagnosis")
	missing := 0
	for _, result := range results {
		mark := "✓"
		if !result.Found {
			mark = "✗"
			missing++
		}
		r.writePlain("%s %-12s %-24s %s\n", mark, result.Page, result.Name, result.Selector)
	}

	if missing > 0 {
		r.writePlain("\n%d selectors missing — site markup may have changed\n", missing)
	} else {
		r.writePlain("\nAll selectors found\n")
	}
	return nil
}

// SiteOpen opens a site page in the system browser for manual work.
func (r *Runner) SiteOpen(ctx context.Context, cmd *cli.Command) error {
	pages := map[string]string{
		"login":    services.LoginURL,
		"mypage":   services.MyPageURL,
		"game":     services.GameURL,
		"recharge": services.RechargeURL,
		"deposit":  services.RechargeURL,
	}

	page := cmd.String("page")
	url, ok := pages[page]
	if !ok {
		return fmt.Errorf("%w: unknown page %q (login, mypage, game, recharge)", shared.ErrInvalidArgument, page)
	}

	if err := shared.OpenBrowser(url); err != nil {
		return err
	}
	return r.writePlain("Opened %s\n", url)
}

// siteCommand groups site-facing utilities.
func siteCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "site",
		Usage: "Lottery site utilities",
		Commands: []*cli.Command{
			{
				Name:  "diagnose",
				Usage: "Check that the site still has the expected page elements",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
					},
					&cli.BoolFlag{
						Name:  "headless",
						Usage: "Run the browser headless (overrides the config)",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
						Value: true,
					},
				},
				Action: r.SiteDiagnose,
			},
			{
				Name:  "open",
				Usage: "Open a site page in the system browser",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "page",
						Usage: "Page to open: login, mypage, game, recharge",
						Value: "login",
					},
				},
				Action: r.SiteOpen,
			},
		},
	}
}

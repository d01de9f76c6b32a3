package main

import (
	"context"

	"github.com/jhpark-dev/lottoctl/internal/formatter"
	"github.com/jhpark-dev/lottoctl/internal/models"
	"github.com/urfave/cli/v3"
)

// HistoryList prints past purchases from the local database.
func (r *Runner) HistoryList(ctx context.Context, cmd *cli.Command) error {
	if err := r.loadConfig(cmd); err != nil {
		return err
	}

	db, repo, err := r.openHistory()
	if err != nil {
		return err
	}
	defer db.Close()

	var records []*models.PurchaseRecord
	if runID := cmd.String("run"); runID != "" {
		records, err = repo.ByRun(runID)
	} else {
		records, err = repo.ListRecent(int(cmd.Int("limit")))
	}
	if err != nil {
		return err
	}

	if format := cmd.String("export"); format != "" {
		path, err := formatter.WriteExport(records, format, cmd.String("output"))
		if err != nil {
			return err
		}
		return r.writePlain("Exported %d records to %s\n", len(records), path)
	}

	if cmd.Bool("json") {
		rows := make([]map[string]any, len(records))
		for i, rec := range records {
			rows[i] = map[string]any{
				"run_id":    rec.RunID(),
				"game":      rec.GameIndex() + 1,
				"mode":      rec.Mode(),
				"source":    rec.Source(),
				"numbers":   rec.Numbers(),
				"cost":      rec.Cost(),
				"succeeded": rec.Succeeded(),
				"error":     rec.Error(),
				"date":      rec.CreatedAt(),
			}
		}
		return r.writeJSON(rows, cmd.Bool("pretty"))
	}

	if len(records) == 0 {
		return r.writePlain("No purchases recorded yet\n")
	}

	data, err := formatter.ExportToText(records)
	if err != nil {
		return err
	}
	return r.writePlain("%s", data)
}

// historyCommand inspects the purchase history.
func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Inspect past purchases",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List recorded purchases",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of records to return",
						Value: 20,
					},
					&cli.StringFlag{
						Name:  "run",
						Usage: "Show every game of one run id",
					},
					&cli.StringFlag{
						Name:  "export",
						Usage: "Write to a file instead: csv, markdown, text",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Export file path",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
					},
				},
				Action: r.HistoryList,
			},
		},
	}
}

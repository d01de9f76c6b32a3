package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/jhpark-dev/lottoctl/internal/picker"
	"github.com/urfave/cli/v3"
)

// NumbersSuggest generates candidate number sets without touching the site.
func (r *Runner) NumbersSuggest(ctx context.Context, cmd *cli.Command) error {
	source := cmd.String("source")
	sets := int(cmd.Int("sets"))
	if sets < 1 {
		sets = 1
	}

	archive, err := picker.LoadArchive(cmd.String("archive"))
	if err != nil {
		return fmt.Errorf("failed to load draw archive: %w", err)
	}
	p := picker.New(archive, nil)

	suggestions := make([][]int, 0, sets)
	for range sets {
		numbers, err := p.Generate(source, picker.GameNumbers)
		if err != nil {
			return err
		}
		suggestions = append(suggestions, numbers)
	}

	if cmd.Bool("json") {
		return r.writeJSON(map[string]any{"source": source, "sets": suggestions}, cmd.Bool("pretty"))
	}

	r.writePlain("Suggested numbers (%s):\n", source)
	for i, numbers := range suggestions {
		parts := make([]string, len(numbers))
		for j, n := range numbers {
			parts[j] = fmt.Sprintf("%2d", n)
		}
		r.writePlain("  %d. %s\n", i+1, strings.Join(parts, " "))
	}
	return nil
}

// numbersCommand generates number sets from the draw archive.
func numbersCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "numbers",
		Usage: "Number generation utilities",
		Commands: []*cli.Command{
			{
				Name:  "suggest",
				Usage: "Suggest number sets from past draws",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "source",
						Usage: "Strategy: random, frequent, rare, hot, mixed",
						Value: picker.SourceRandom,
					},
					&cli.IntFlag{
						Name:    "sets",
						Aliases: []string{"games"},
						Usage:   "How many sets to generate",
						Value:   1,
					},
					&cli.StringFlag{
						Name:  "archive",
						Usage: "Path to the winning number archive",
						Value: "draws.json",
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
				Action: r.NumbersSuggest,
			},
		},
	}
}

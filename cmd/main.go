package main

import (
	"context"
	"os"

	"github.com/jhpark-dev/lottoctl/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)

	if err := shared.LoadDotenv(); err != nil {
		logger.Warn("dotenv load failed", "err", err)
	}
	shared.DebugFromEnv(logger)

	config := shared.DefaultConfig()
	configPath := ""
	for _, candidate := range []string{"config.json", "config.toml"} {
		if _, err := os.Stat(candidate); err == nil {
			if loadedConfig, err := shared.LoadConfig(candidate); err == nil {
				config = loadedConfig
				configPath = candidate
			}
			break
		}
	}
	if err := shared.ApplyEnvOverrides(config); err != nil {
		logger.Fatalf("invalid configuration: %v", err)
	}

	runner := NewRunner(RunnerOpts{
		Config:     config,
		ConfigPath: configPath,
		Logger:     logger,
	})

	app := &cli.Command{
		Name:     "lottoctl",
		Usage:    "Buy Lotto 6/45 games on dhlottery.co.kr",
		Version:  "1.0.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		logger.Fatalf("application error: %v", err)
	}
}

package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/go-notify-api/internal/config"
	"github.com/go-notify-api/internal/pkg/logger"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"
)

type globalFlags struct {
	EnvFile  string
	LogLevel string
}

func main() {
	var (
		flags globalFlags
		cfg   = new(config.Config)
	)

	app := &cli.Command{
		Name:      "notify-api",
		Usage:     "Per-user notification inbox HTTP API",
		UsageText: "notify-api [global options] [command]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "env-file",
				Usage:       "dotenv file loaded before reading the environment",
				Value:       ".env",
				Destination: &flags.EnvFile,
			},
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "log level (debug, info, warn, error); overrides LOG_LEVEL",
				Destination: &flags.LogLevel,
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			envErr := godotenv.Load(flags.EnvFile)
			if envErr != nil && !errors.Is(envErr, fs.ErrNotExist) {
				return ctx, fmt.Errorf("load %s: %w", flags.EnvFile, envErr)
			}

			*cfg = *config.Load()
			if flags.LogLevel != "" {
				cfg.LogLevel = flags.LogLevel
			}
			if err := cfg.Validate(); err != nil {
				return ctx, fmt.Errorf("invalid configuration: %w", err)
			}

			l, err := logger.New(cfg.LogLevel, cfg.AppEnv, os.Stdout)
			if err != nil {
				return ctx, fmt.Errorf("setup logger: %w", err)
			}
			log.Logger = l
			if envErr != nil {
				log.Debug().Str("file", flags.EnvFile).Msg("no env file found, reading from environment")
			}
			return ctx, nil
		},
		Commands: []*cli.Command{
			serveCommand(cfg),
			bootstrapCommand(cfg),
		},
		DefaultCommand: "serve",
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

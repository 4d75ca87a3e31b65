package main

import (
	"context"
	"fmt"

	"github.com/go-notify-api/internal/config"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"
)

func bootstrapCommand(cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "bootstrap",
		Usage: "create database indexes or tables, then exit",
		Action: func(ctx context.Context, _ *cli.Command) error {
			b, err := openBackend(ctx, cfg, log.Logger)
			if err != nil {
				return err
			}
			defer func() { _ = b.close(context.Background()) }()

			if err := b.bootstrap(ctx); err != nil {
				return fmt.Errorf("bootstrap %s: %w", cfg.DatabaseDriver, err)
			}
			log.Info().Str("driver", cfg.DatabaseDriver).Msg("bootstrap complete")
			return nil
		},
	}
}

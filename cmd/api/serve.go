package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-notify-api/internal/config"
	jwtinfra "github.com/go-notify-api/internal/infrastructure/jwt"
	redisinfra "github.com/go-notify-api/internal/infrastructure/redis"
	"github.com/go-notify-api/internal/infrastructure/sns"
	transporthttp "github.com/go-notify-api/internal/transport/http"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"
)

func serveCommand(cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "run the HTTP API",
		Action: func(ctx context.Context, _ *cli.Command) error {
			return serve(ctx, cfg)
		},
	}
}

func serve(ctx context.Context, cfg *config.Config) error {
	if cfg.JWTSecret == config.DefaultJWTSecret && !cfg.IsDevelopment() {
		log.Warn().Str("env", cfg.AppEnv).Msg("JWT_SECRET is the built-in default; set a real secret")
	}
	jwtProvider, err := jwtinfra.NewProvider(cfg)
	if err != nil {
		return fmt.Errorf("jwt provider: %w", err)
	}

	b, err := openBackend(ctx, cfg, log.Logger)
	if err != nil {
		return err
	}
	defer func() { _ = b.close(context.Background()) }()
	if err := b.bootstrap(ctx); err != nil {
		return fmt.Errorf("bootstrap %s: %w", cfg.DatabaseDriver, err)
	}

	deps := &transporthttp.Deps{
		Users:         b.users,
		Notifications: b.notifications,
		JWTProvider:   jwtProvider,
		Logger:        log.Logger,
	}

	// Unread-count cache (optional; the API runs without it).
	if cfg.RedisURL != "" {
		client, err := redisinfra.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			log.Warn().Err(err).Msg("redis unavailable, unread counts will not be cached")
		} else {
			defer client.Close()
			deps.Cache = redisinfra.NewCache(client)
		}
	}

	// Notification events (optional).
	if cfg.SNSTopicARN != "" {
		pub, err := sns.NewFromConfig(ctx, cfg)
		if err != nil {
			log.Warn().Err(err).Msg("SNS publisher not available")
		} else {
			deps.Events = pub
		}
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      transporthttp.NewRouter(cfg, deps),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.AppPort).Str("env", cfg.AppEnv).Str("driver", cfg.DatabaseDriver).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case sig := <-quit:
		log.Info().Str("signal", sig.String()).Msg("shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("forced shutdown: %w", err)
	}
	log.Info().Msg("server stopped")
	return nil
}

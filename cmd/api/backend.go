package main

import (
	"context"
	"fmt"

	"github.com/go-notify-api/internal/application/notification"
	"github.com/go-notify-api/internal/config"
	"github.com/go-notify-api/internal/infrastructure/dynamo"
	"github.com/go-notify-api/internal/infrastructure/memstore"
	mongoinfra "github.com/go-notify-api/internal/infrastructure/mongo"
	transporthttp "github.com/go-notify-api/internal/transport/http"
	"github.com/rs/zerolog"
)

// backend is the storage selected by DATABASE_DRIVER.
type backend struct {
	users         transporthttp.UserRepository
	notifications notification.Store
	bootstrap     func(ctx context.Context) error
	close         func(ctx context.Context) error
}

func openBackend(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*backend, error) {
	noop := func(context.Context) error { return nil }

	switch cfg.DatabaseDriver {
	case config.DriverMongo:
		client, err := mongoinfra.NewClient(ctx, cfg)
		if err != nil {
			return nil, err
		}
		db := client.Database(cfg.MongoDatabase)
		return &backend{
			users:         mongoinfra.NewUserRepo(db),
			notifications: mongoinfra.NewNotificationRepo(db),
			bootstrap:     func(ctx context.Context) error { return mongoinfra.Bootstrap(ctx, db, log) },
			close:         client.Disconnect,
		}, nil

	case config.DriverDynamo:
		client, err := dynamo.NewClient(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return &backend{
			users:         dynamo.NewUserRepo(client, cfg.DynamoTables.Users),
			notifications: dynamo.NewNotificationRepo(client, cfg.DynamoTables.Notifications),
			bootstrap:     func(ctx context.Context) error { return dynamo.Bootstrap(ctx, client, cfg.DynamoTables, log) },
			close:         noop,
		}, nil

	case config.DriverMemory:
		log.Warn().Msg("using in-memory storage; data is lost on exit")
		return &backend{
			users:         memstore.NewUserRepo(),
			notifications: memstore.NewNotificationRepo(),
			bootstrap:     noop,
			close:         noop,
		}, nil
	}
	return nil, fmt.Errorf("unknown database driver %q", cfg.DatabaseDriver)
}

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-progress-api/internal/bootstrap"
	"github.com/noah-isme/gema-progress-api/internal/cli"
	"github.com/noah-isme/gema-progress-api/internal/config"
	"github.com/noah-isme/gema-progress-api/internal/database"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	logger := zerolog.New(os.Stderr).Level(zerolog.WarnLevel).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL, cfg.Pool())
	if err != nil {
		return err
	}

	// Redis and NATS are optional for one-off commands.
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.ConnectRedis(ctx, cfg.RedisURL, cfg.RedisDialTimeout)
		if err != nil {
			return err
		}
		defer redisClient.Close()
	}

	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = database.ConnectNATS(cfg.NATSURL, "progressctl")
		if err != nil {
			return err
		}
		defer natsConn.Close()
	}

	app := &cli.App{
		Progress: bootstrap.NewProgressService(cfg, bootstrap.Connections{
			DB:    db,
			Redis: redisClient,
			NATS:  natsConn,
		}, validator.New(validator.WithRequiredStructEnabled()), logger),
	}

	return cli.NewRootCmd(app).ExecuteContext(ctx)
}

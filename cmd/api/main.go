package main

import (
	"context"

	"github.com/joho/godotenv"
	"github.com/kolapay/paygate/internal/app"
	"github.com/kolapay/paygate/internal/config"
	"github.com/kolapay/paygate/internal/di"
	"github.com/kolapay/paygate/internal/errors"
	"github.com/kolapay/paygate/internal/infrastructure/api/routers"
	"github.com/kolapay/paygate/internal/infrastructure/database/db_client"
	"github.com/kolapay/paygate/pkg/log"
)

const (
	appName = "paygate"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Missing .env is fine, real environments set variables directly.
	_ = godotenv.Load()

	cfg := config.Load()

	log.Init(appName, log.WithConsoleLogger())
	logger := log.GetLogger()

	pgClient := db_client.NewPGClient(cfg.PostgreSQL)
	db, err := pgClient.Connect()
	if err != nil {
		logger.Fatal().Err(err).Msg(errors.ErrorFailedToConnectToTheDatabase)
	}

	container := di.NewContainer(cfg, db)
	defer container.Publisher.Close()

	router := routers.NewRouter(container)
	service := app.NewService(cfg)
	service.Run(ctx, router)
}

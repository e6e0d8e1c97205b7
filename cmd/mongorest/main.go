package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/mongorest/mongorest/api"
	"github.com/mongorest/mongorest/pkg/config"
	"github.com/mongorest/mongorest/pkg/httpserver"
	"github.com/mongorest/mongorest/pkg/logger"
	"github.com/mongorest/mongorest/pkg/mongodb"
)

type appConfig struct {
	Environment string `env:"APP_ENV" envDefault:"development"`
}

func main() {
	var (
		appCfg   appConfig
		mongoCfg mongodb.Config
		httpCfg  httpserver.Config
	)
	config.MustLoad(&appCfg)
	config.MustLoad(&mongoCfg)
	config.MustLoad(&httpCfg)

	log := logger.New(logger.WithEnvironment(appCfg.Environment, api.ServiceName))
	logger.SetAsDefault(log)

	// The client connects lazily on the first /action request, so the
	// service starts (and answers /health) even when the cluster is down
	// or the URI is not configured yet.
	manager := mongodb.NewManager(mongoCfg)

	router := api.NewRouter(manager, log)

	srv := httpserver.NewFromConfig(httpCfg,
		httpserver.WithLogger(log),
		httpserver.WithStartHook(func(log *slog.Logger) {
			log.Info("server listening", slog.String("addr", httpCfg.Addr))
		}),
		httpserver.WithStopHook(func(log *slog.Logger) {
			// In-flight database calls are not awaited here; a request
			// racing shutdown may see its operation cut mid-flight.
			if err := manager.Close(context.Background()); err != nil {
				log.Error("closing mongodb client", logger.Error(err))
			}
			log.Info("server stopped")
		}),
	)

	if err := srv.Run(context.Background(), router); err != nil {
		log.Error("server exited", logger.Error(err))
		os.Exit(1)
	}
}

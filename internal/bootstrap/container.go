package bootstrap

import (
	"context"
	"errors"

	"knaxim-client/internal/config"
	"knaxim-client/internal/pkg/logger"
	"knaxim-client/internal/service"
	"knaxim-client/internal/store"
	"knaxim-client/internal/tracer"
	"knaxim-client/pkg/api"
)

type Container struct {
	Config   *config.Config
	Logger   logger.ILogger
	Client   *api.Client
	Services *service.Services
	Store    *store.Store

	shutdownTracer func(context.Context) error
}

func NewContainer(cfg *config.Config) (*Container, error) {
	// 1. Logging & tracing
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction(), cfg.App.Debug)
	shutdownTracer := tracer.InitTracer(cfg.Telemetry, sysLogger)

	// 2. Transport
	client, err := api.NewClient(cfg.Client.APIURL)
	if err != nil {
		return nil, err
	}

	// 3. Services
	services := service.NewServices(client, cfg.App.Debug)

	// 4. Store
	st := store.New(store.Deps{
		Services: services,
		Logger:   sysLogger,
		Options: store.Options{
			SearchPageSize: cfg.Client.SearchPageSize,
			HistoryLimit:   cfg.Client.SearchHistoryLimit,
			PreviewLines:   cfg.Client.PreviewLines,
		},
	})

	sysLogger.Debug("BOOTSTRAP", "Container ready", map[string]interface{}{
		"api_url": cfg.Client.APIURL,
		"debug":   cfg.App.Debug,
	})

	return &Container{
		Config:         cfg,
		Logger:         sysLogger,
		Client:         client,
		Services:       services,
		Store:          st,
		shutdownTracer: shutdownTracer,
	}, nil
}

// Close stops the store and flushes traces. Sync errors on console
// outputs are ignored.
func (c *Container) Close(ctx context.Context) error {
	err := errors.Join(c.Store.Close(), c.shutdownTracer(ctx))
	_ = c.Logger.Sync()
	return err
}

package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ModelVault/internal/costwatch"
	"ModelVault/pkg/config"
	xhttp "ModelVault/pkg/http"
	applogger "ModelVault/pkg/logger"
	"ModelVault/pkg/util"
)

// App ties the HTTP server and the optional cost poll loop into one
// process lifecycle.
type App struct {
	server *xhttp.Server
	costs  *costwatch.Service
	cfg    *config.Config
	log    *applogger.Logger
}

// New creates the application. costs may be nil when monitoring is disabled.
func New(srv *xhttp.Server, costs *costwatch.Service, cfg *config.Config, log *applogger.Logger) *App {
	return &App{server: srv, costs: costs, cfg: cfg, log: log}
}

// Run starts the HTTP server and, when configured, the periodic cost check.
// Blocks until SIGINT or SIGTERM, then shuts down gracefully.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := a.server.Start(); err != nil {
		return err
	}
	a.log.Info("started",
		applogger.String("environment", a.cfg.Environment),
		applogger.Int("port", a.cfg.Server.Port),
		applogger.String("storage", a.cfg.Storage.Source),
	)

	if a.costs != nil && a.cfg.Costs.PollInterval > 0 {
		go a.pollCosts(ctx)
	}

	<-ctx.Done()
	a.log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()
	return a.server.Stop(shutdownCtx)
}

// pollCosts re-checks yesterday's spend on a fixed interval. Each check
// stores the snapshot and publishes an alert if a threshold is crossed.
func (a *App) pollCosts(ctx context.Context) {
	a.log.Info("cost polling enabled",
		applogger.Duration("interval", a.cfg.Costs.PollInterval),
	)

	check := func() {
		checkCtx, cancel := context.WithTimeout(ctx, time.Minute)
		defer cancel()
		if _, _, err := a.costs.CheckDaily(checkCtx, util.Yesterday()); err != nil {
			a.log.Error("cost check failed", applogger.Error(err))
		}
	}

	check()
	ticker := time.NewTicker(a.cfg.Costs.PollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			check()
		}
	}
}

// Package server wires the redemption server together: storage backends,
// the magic link service, the HTTP redemption router, the gRPC health
// service and the expired-token sweeper, with graceful shutdown on signals.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/magiclink/internal/logging"
	"github.com/dmitrijs2005/magiclink/internal/server/config"
	"github.com/dmitrijs2005/magiclink/internal/server/httpapi"
	"github.com/dmitrijs2005/magiclink/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/magiclink/internal/server/repositories/tokens"
	"github.com/dmitrijs2005/magiclink/internal/server/services"
	"github.com/dmitrijs2005/magiclink/internal/timex"

	gs "github.com/dmitrijs2005/magiclink/internal/server/grpc"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	config *config.Config
	logger logging.Logger
	stores *repomanager.Stores
	links  *services.MagicLinkService
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	logger, err := logging.New(c.LogFormat, c.LogLevel, os.Stdout)
	if err != nil {
		return nil, fmt.Errorf("logger init error: %w", err)
	}

	stores, err := repomanager.OpenStores(ctx, c, timex.SystemClock)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	secrets := services.NewSecretRegistry(stores.Options, logger)
	capability := services.NewCapabilityService(stores.Options)
	links := services.NewMagicLinkService(secrets, stores.Tokens, capability,
		services.SettingsFromConfig(c), timex.SystemClock, logger)

	return &App{config: c, logger: logger, stores: stores, links: links}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	h := httpapi.NewHandler(app.links, app.stores.Tokens, httpapi.Options{
		HomeURL:         app.config.HomeURL,
		AfterLoginPath:  app.config.AfterLoginPath,
		RedeemRateLimit: app.config.RedeemRateLimit,
	}, app.logger)

	srv := &http.Server{
		Handler:           httpapi.NewRouter(h),
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	lis, err := net.Listen("tcp", app.config.HTTPAddr)
	if err != nil {
		app.logger.Error(ctx, "http listen failed", "error", err)
		cancelFunc()
		return
	}

	go func() {
		<-ctx.Done()
		app.logger.Info(ctx, "Stopping HTTP server...")
		sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(sctx); err != nil {
			app.logger.Error(ctx, "http shutdown failed", "error", err)
		}
	}()

	app.logger.Info(ctx, "Starting HTTP server", "address", lis.Addr().String())

	if err := srv.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := gs.NewHealthServer(app.config.GRPCAddr, app.stores.Tokens, gs.DefaultProbeInterval, app.logger)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// runSweeper purges expired tokens every interval until ctx is done.
func runSweeper(ctx context.Context, store tokens.Repository, interval time.Duration, logger logging.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := store.Sweep(ctx)
			if err != nil {
				if ctx.Err() == nil {
					logger.Warn(ctx, "token sweep failed", "error", err)
				}
				continue
			}
			if n > 0 {
				logger.Debug(ctx, "expired tokens swept", "count", n)
			}
		}
	}
}

// Run blocks until a signal arrives, ctx is cancelled or a listener fails,
// then shuts everything down and closes the stores.
func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(3)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		runSweeper(ctx, app.stores.Tokens, app.config.SweepInterval, app.logger)
	}()

	wg.Wait()

	if err := app.stores.Close(); err != nil {
		app.logger.Error(context.Background(), "closing stores", "error", err)
	}
	app.logger.Info(context.Background(), "App stopped")
}

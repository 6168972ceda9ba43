package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type AppProvider interface {
	Run() error
	Serve() func() error
	Stop(context.Context, context.Context) func() error
}

type App struct {
	logger   *zap.Logger
	config   *Config
	server   *http.Server
	cleanups []func()
}

// NewApp provides an instance of App.
func NewApp() (AppProvider, error) {
	config, err := LoadAndInitConfigs(GitCommit, GitTag, BuildTime)
	if err != nil {
		return nil, fmt.Errorf("failed to setup app configuration: %w", err)
	}

	// Setup the logging module with rotating files.
	clock := NewClock(config.IsProduction)
	logsWriter := NewRSyncWriter(config, clock)
	logger, flusher := SetupLogging(config, logsWriter, NewTickClock(clock))

	app := &App{logger: logger, config: config}
	app.cleanups = append(app.cleanups, func() {
		if err := flusher(); err != nil {
			fmt.Println("error during flushing of logs: ", err)
		}
		if err := logsWriter.Close(); err != nil {
			fmt.Println("error during closing of log file: ", err)
		}
	})

	shutdownTracing, err := SetupTracing(context.Background(), config)
	if err != nil {
		app.Clean()
		return nil, fmt.Errorf("failed to setup tracing: %w", err)
	}
	app.addCleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), config.Server.ShutdownTimeout)
		defer cancel()
		if err := shutdownTracing(ctx); err != nil {
			logger.Error("failed to flush traces", zap.Error(err))
		}
	})

	// Setup the optional search results cache.
	cache, err := NewResultCache(logger, config, clock)
	if err != nil {
		app.Clean()
		return nil, fmt.Errorf("failed to setup %s cache: %w", config.Cache.Backend, err)
	}
	app.addCleanup(func() {
		if err := cache.Close(); err != nil {
			logger.Error("failed to close cache", zap.Error(err))
		}
	})

	// Setup the upstream sources and the search service.
	httpClient := NewUpstreamHTTPClient(&config.Sources)
	appleEbook, appleAudio := NewAppleSources(logger, &config.Sources, httpClient)
	aggregator := NewOfferAggregator(
		logger,
		appleEbook,
		appleAudio,
		NewGoogleSource(logger, &config.Sources, httpClient),
		NewOpenLibrarySource(logger, &config.Sources, httpClient),
		config.Sources.Timeout,
	)
	searchService := NewSearchService(logger, config, clock, aggregator, cache)

	var limiter *RateLimiter
	if config.RateLimit.Enabled {
		limiter = NewRateLimiter(&config.RateLimit, NewTickClock(clock))
		app.addCleanup(limiter.Stop)
	}

	stats := &Statistics{
		version:   config.GitTag,
		container: IsAppRunningInDocker(),
		started:   clock.Now(),
		runtime:   runtime.Version(),
		platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
	// Use git commit in case the tag is not set.
	if stats.version == "" {
		stats.version = config.GitCommit
	}
	apiHandler := NewAPIHandler(logger, config, stats, clock, NewIDsHandler(), searchService, limiter)

	// Build the map of middlewares stacks.
	middlewaresPublic, middlewaresOps := apiHandler.MiddlewaresStacks()

	// Configure the endpoints with their handlers and middlewares.
	router := apiHandler.SetupRoutes(httprouter.New(),
		&MiddlewareMap{
			public: middlewaresPublic.Chain,
			ops:    middlewaresOps.Chain,
		},
	)
	// Wrap the router with the default http timeout handler.
	routerWithTimeout := http.TimeoutHandler(
		router,
		config.Server.RequestTimeout,
		`{"message":"Timeout. Processing taking too long. Please reach out to support."}`)

	app.server = &http.Server{
		Addr:           fmt.Sprintf("%s:%s", config.Server.Host, config.Server.Port),
		Handler:        routerWithTimeout,
		ReadTimeout:    config.Server.ReadTimeout,
		WriteTimeout:   config.Server.WriteTimeout,
		MaxHeaderBytes: 1 << 20, // Max headers size : 1MB
	}
	return app, nil
}

// addCleanup registers f to run before the already registered cleanups.
// The logs flushing is registered first so it always runs last.
func (app *App) addCleanup(f func()) {
	app.cleanups = append([]func(){f}, app.cleanups...)
}

// Run starts the api web server and a goroutine which is responsible to stop it.
func (app *App) Run() error {
	defer app.Clean()
	nCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gCtx := errgroup.WithContext(nCtx)

	g.Go(app.Serve())
	g.Go(app.Stop(nCtx, gCtx))

	err := g.Wait()
	app.logger.Info("api server stopped",
		zap.String("app.host", app.config.Server.Host),
		zap.String("app.port", app.config.Server.Port),
		zap.Error(err),
	)
	return err
}

// Clean calls all registered cleanups functions.
func (app *App) Clean() {
	for _, f := range app.cleanups {
		f()
	}
}

// Serve starts the api web server. It returned error
// will be caught by the errorgroup.
func (app *App) Serve() func() error {
	return func() error {
		app.logger.Info("api server starting",
			zap.String("app.host", app.config.Server.Host),
			zap.String("app.port", app.config.Server.Port),
			zap.String("cache.backend", app.config.Cache.Backend),
			zap.Bool("tracing.enabled", app.config.Tracing.Enabled),
		)
		err := app.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		return err
	}
}

// Stop listens for the group context and triggers the server graceful shutdown.
// It states the reason of its call. We proceed with a brutal shutdown if the
// the graceful did not complete successfully. We explicitly return `nil` to
// allow the errorgroup catches only the `Serve` method result.
func (app *App) Stop(nCtx, gCtx context.Context) func() error {
	return func() error {
		<-gCtx.Done()

		if nCtx.Err() != nil {
			app.logger.Info("api server stopping. reason: requested to stop")
		} else {
			app.logger.Info("api server stopping. reason: errored at running")
		}

		sCtx, cancel := context.WithTimeout(context.Background(), app.config.Server.ShutdownTimeout)
		defer cancel()
		err := app.server.Shutdown(sCtx)
		switch {
		case err == nil, errors.Is(err, http.ErrServerClosed):
			app.logger.Info("api server graceful shutdown succeeded")
		case errors.Is(err, context.DeadlineExceeded):
			app.logger.Info("api server graceful shutdown timed out")
		default:
			app.logger.Info("api server graceful shutdown failed", zap.Error(err))
		}

		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.logger.Info("api server going to force shutdown", zap.Error(app.server.Close()))
		}
		return nil
	}
}

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/boltdb/bolt"
	"github.com/julienschmidt/httprouter"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type AppProvider interface {
	Run(ctx context.Context) error
	Serve() func() error
	Stop(context.Context, context.Context) func() error
}

type App struct {
	logger         *zap.Logger
	config         *Config
	server         *http.Server
	sessions       *SessionManager
	redisClient    *redis.Client
	cleanups       []func()
	queueConsumers []func(context.Context) error
}

// NewApp provides an instance of App.
func NewApp(configFile, envFile string) (AppProvider, error) {
	config, err := LoadAndInitConfigs(configFile, envFile, GitCommit, GitTag, BuildTime)
	if err != nil {
		return nil, fmt.Errorf("failed to setup app configuration: %s", err)
	}

	// Setup the logging module with size based rotated files.
	clock := NewClock(config.IsProduction)
	logWriter := NewRSyncWriter(config, clock)
	logger, flusher := SetupLogging(config, logWriter, clock)
	app := &App{logger: logger, config: config}
	app.cleanups = append(app.cleanups, func() {
		if ferr := flusher(); ferr != nil {
			fmt.Println("error during flushing of logs: ", ferr)
		}
		if cerr := logWriter.Close(); cerr != nil {
			fmt.Println("error during closing of log file: ", cerr)
		}
	})

	catalog, err := LoadCatalog(config.CatalogFile)
	if err != nil {
		app.Clean()
		return nil, fmt.Errorf("failed to load the catalog: %s", err)
	}
	logger.Info("catalog loaded", zap.String("catalog.file", config.CatalogFile), zap.Int("catalog.books", len(catalog.GetAll())))

	// BoltDB always hosts the orders archive.
	boltDBClient, err := GetBoltDBClient(config)
	if err != nil {
		app.Clean()
		return nil, fmt.Errorf("failed to open boltDB file: %s", err)
	}
	archive := NewBoltOrderArchive(logger, &config.BoltDB, boltDBClient)

	storage, err := app.setupSlotStorage(clock, boltDBClient)
	if err != nil {
		_ = boltDBClient.Close()
		app.Clean()
		return nil, err
	}

	var queue Queuer
	if app.redisClient != nil {
		queue = NewRedisQueue(app.redisClient)
	} else {
		queue = NewMemoryQueue(config.OrdersQueueSize)
	}
	archiveConsumer := NewOrderArchiveConsumer(logger, queue, archive)

	idsHandler := NewIDsHandler()
	app.sessions = NewSessionManager(logger, &config.Session, storage, config.Pricing, clock, idsHandler)
	storefrontService := NewStorefrontService(logger, catalog, app.sessions, queue, archive)
	apiService := NewAPIHandler(
		logger,
		config,
		&Statistics{
			version:   config.GitTag,
			container: IsAppRunningInDocker(),
			started:   clock.Now(),
			runtime:   runtime.Version(),
			platform:  runtime.GOOS + "/" + runtime.GOARCH,
			backend:   config.StorageBackend,
		},
		clock,
		idsHandler,
		storefrontService,
	)

	// Use git commit in case the tag is not set.
	if config.GitTag == "" {
		apiService.stats.version = config.GitCommit
	}

	// Build the map of middlewares stacks.
	middlewaresPublic, middlewaresOps := apiService.MiddlewaresStacks()

	// Configure the endpoints with their handlers and middlewares.
	router := apiService.SetupRoutes(httprouter.New(),
		&MiddlewareMap{
			public: middlewaresPublic.Chain,
			ops:    middlewaresOps.Chain,
		},
	)

	// Build the api server definition.
	app.server = &http.Server{
		Addr:           fmt.Sprintf("%s:%s", config.Server.Host, config.Server.Port),
		Handler:        RouterWithTimeout(router, config.Server.RequestTimeout, EventsPath, CPUProfilePath, TraceProfilePath),
		ReadTimeout:    config.Server.ReadTimeout,
		WriteTimeout:   config.Server.WriteTimeout,
		MaxHeaderBytes: 1 << 20, // Max headers size : 1MB
		ConnContext:    SaveConnInContext,
	}
	app.server.RegisterOnShutdown(apiService.CloseStreams)

	app.queueConsumers = []func(ctx context.Context) error{
		func(ctx context.Context) error {
			return archiveConsumer.Consume(ctx, OrdersQueue)
		},
	}
	return app, nil
}

// setupSlotStorage connects the configured slots backend and registers its cleanup.
// The boltDB client is owned by the returned storage when boltdb is the backend.
func (app *App) setupSlotStorage(clock Clocker, boltDBClient *bolt.DB) (SlotStorage, error) {
	config := app.config
	var storage SlotStorage
	switch config.StorageBackend {
	case BackendRedis:
		redisClient, err := GetRedisClient(config)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis server: %s", err)
		}
		app.redisClient = redisClient
		storage = NewRedisSlotStorage(app.logger, redisClient)
	case BackendBolt:
		storage = NewBoltSlotStorage(app.logger, &config.BoltDB, boltDBClient)
	case BackendSQLite:
		sqliteClient, err := GetSQLiteClient(config)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite database: %s", err)
		}
		storage = NewSQLiteSlotStorage(app.logger, sqliteClient, clock)
	default:
		storage = NewMemorySlotStorage()
	}

	cleanup := func() {
		if err := storage.Close(); err != nil {
			app.logger.Error("failed to close slots storage", zap.String("storage.backend", config.StorageBackend), zap.Error(err))
		}
		if config.StorageBackend != BackendBolt {
			if err := boltDBClient.Close(); err != nil {
				app.logger.Error("failed to close boltDB", zap.Error(err))
			}
		}
	}
	// storages must be closed before the logs get flushed.
	app.cleanups = append([]func(){cleanup}, app.cleanups...)
	app.logger.Info("slots storage ready", zap.String("storage.backend", config.StorageBackend))
	return storage, nil
}

// RouterWithTimeout wraps the router with the default http timeout handler.
// Requests on the given long running paths are served by the router directly
// since the timeout handler neither flushes nor lets them outlive the timeout.
func RouterWithTimeout(router http.Handler, timeout time.Duration, longPaths ...string) http.Handler {
	withTimeout := http.TimeoutHandler(
		router,
		timeout,
		"Timeout. Processing taking too long. Please reach out to support.")
	long := make(map[string]struct{}, len(longPaths))
	for _, p := range longPaths {
		long[p] = struct{}{}
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := long[r.URL.Path]; ok {
			router.ServeHTTP(w, r)
			return
		}
		withTimeout.ServeHTTP(w, r)
	})
}

// Run starts the api web server and a goroutine which is responsible to stop it.
// The sessions sweeper and the queue consumers run alongside until the server stops.
func (app *App) Run(ctx context.Context) error {
	defer app.Clean()
	nCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gCtx := errgroup.WithContext(nCtx)

	g.Go(app.ConsumeQueues(gCtx, g))
	g.Go(func() error { return app.sessions.RunSweeper(gCtx) })
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
	app.cleanups = nil
}

// Serve starts the api web server. It returned error
// will be caught by the errorgroup.
func (app *App) Serve() func() error {
	return func() error {
		app.logger.Info("api server starting",
			zap.String("app.host", app.config.Server.Host),
			zap.String("app.port", app.config.Server.Port),
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
		// unblocks the redis queue consumer.
		if app.redisClient != nil {
			_ = app.redisClient.Close()
		}
		return nil
	}
}

// ConsumeQueues runs all queue consumers into separate controlled goroutines.
func (app *App) ConsumeQueues(gCtx context.Context, g *errgroup.Group) func() error {
	return func() error {
		for _, consume := range app.queueConsumers {
			f := func() error {
				return consume(gCtx)
			}
			g.Go(f)
		}
		return nil
	}
}

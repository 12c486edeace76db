package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "temp_monitor/docs"
	"temp_monitor/internal/clock"
	"temp_monitor/internal/device"
	"temp_monitor/internal/handlers"
	"temp_monitor/internal/logger"
	"temp_monitor/internal/persist"
	"temp_monitor/internal/repository"
	"temp_monitor/internal/repository/db"
	"temp_monitor/internal/samples"
	"temp_monitor/internal/sensor"
	"temp_monitor/internal/server"
	"temp_monitor/internal/service"
	"temp_monitor/internal/settings"
	"temp_monitor/internal/store"
	"temp_monitor/internal/uploader"
)

// @title        Temperature Monitor API
// @version      1.0
// @description  Sampling history, device configuration and cloud upload control for a temperature monitor.
// @BasePath     /
func main() {
	// load configs/config.yml and TEMPMON_* overrides
	cfg, err := settings.Load("configs")
	if err != nil {
		logger.Get(logger.InfoLevel).Fatalw("error reading config", "err", err)
	}

	// init logger
	log := logger.Get(cfg.LogLevel)

	// durable store for samples, device config and root certificate
	fs, err := openStore(cfg.Storage.Dir, log)
	if err != nil {
		log.Fatalw("failed to open storage", "err", err, "dir", cfg.Storage.Dir)
	}

	// open DB
	conn, err := openDB(cfg.DB.Path, log)
	if err != nil {
		log.Fatalw("failed to init sqlite", "err", err)
	}
	defer func() {
		if cerr := conn.Close(); cerr != nil {
			log.Errorw("failed to close sqlite", "err", cerr)
		}
	}()

	// wire dependencies
	repos := repository.NewRepository(conn)
	monitor, err := newMonitor(cfg, fs, clock.Real(), repos, log)
	if err != nil {
		log.Fatalw("failed to build monitor", "err", err)
	}
	services := service.NewService(monitor, repos)
	apiHandler := handlers.NewHandler(services, log.Named("http"))

	// context for background goroutines
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// start the control loop
	loopDone := make(chan struct{})
	go func() {
		services.Runner.Run(ctx, cfg.Sampling.PollInterval)
		close(loopDone)
	}()

	// start HTTP server
	srv := &server.Server{}
	runHTTPServer(srv, cfg.Port, apiHandler, log)

	// graceful shutdown
	waitForShutdown(cancel, loopDone, srv, log)
}

func openStore(dir string, log *logger.Logger) (store.Store, error) {
	if dir == "" {
		log.Warnw("storage.dir not set; state will not survive a restart")
		return store.NewMemory(), nil
	}
	return store.NewDir(dir)
}

// openDB initializes the SQLite database using configuration.
func openDB(dbPath string, log *logger.Logger) (*sql.DB, error) {
	if dbPath == "" {
		log.Infow("db.path not set in config; using default file", "default", "tempmon.db")
		dbPath = "tempmon.db"
	}
	return db.InitDB(dbPath)
}

// newMonitor restores persisted state and builds the control loop.
func newMonitor(cfg *settings.Settings, fs store.Store, clk clock.Clock, repos *repository.Repository, log *logger.Logger) (*service.Monitor, error) {
	strategy := persist.Strategy(cfg.Storage.Commit)

	devCfg := device.New(fs, strategy)
	if err := devCfg.Load(); err != nil {
		log.Infow("device config not restored; using defaults", "err", err)
	}

	buf, err := samples.New(samples.Options{
		BucketWidth: cfg.Sampling.BucketWidth,
		MinValid:    cfg.Sampling.MinValid,
		MaxValid:    cfg.Sampling.MaxValid,
		Clock:       clk,
		Location:    devCfg.Location(),
		Store:       fs,
		Strategy:    strategy,
	})
	if err != nil {
		return nil, fmt.Errorf("sample buffer: %w", err)
	}
	if err := buf.Reload(); err != nil {
		log.Infow("sample history not restored; starting empty", "err", err)
	}

	up := uploader.New(fs, clk, log.Named("uploader"), uploader.Options{
		Timeout:    cfg.Cloud.Timeout,
		Attempts:   cfg.Cloud.Attempts,
		RetryDelay: cfg.Cloud.RetryDelay,
	})
	if !up.LoadRootCert() {
		log.Warnw("no root certificate loaded; uploads will not verify the server", "file", uploader.RootCertFile)
	}

	return service.NewMonitor(service.MonitorDeps{
		Buffer:   buf,
		Config:   devCfg,
		Uploader: up,
		Sensor: sensor.NewSimulated(clk, sensor.SimOptions{
			StartC:     cfg.Sensor.StartTemp,
			FaultEvery: cfg.Sensor.FaultEvery,
			NoiseC:     sensor.DefaultNoiseC,
			Seed:       time.Now().UnixNano(),
		}),
		Relay:  service.NewRelay(service.NewLogSwitch(log.Named("relay"))),
		Store:  fs,
		Clock:  clk,
		Events: repos.EventRepo,
		Status: repos.StatusRepo,
		Log:    log.Named("monitor"),
	}), nil
}

// runHTTPServer runs the HTTP server in a separate goroutine.
func runHTTPServer(srv *server.Server, port string, handler *handlers.Handler, log *logger.Logger) {
	go func() {
		if port == "" {
			port = "8080"
		}
		if err := srv.Run(port, handler.InitRoutes()); err != nil {
			log.Fatalw("error starting server", "err", err)
		}
	}()
}

// waitForShutdown listens for termination signals and performs graceful shutdown.
func waitForShutdown(cancel context.CancelFunc, loopDone <-chan struct{}, srv *server.Server, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down server...")

	// allow in-flight requests to complete while the loop still serves them
	ctx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorw("server forced to shutdown", "err", err)
	}

	// stop the control loop
	cancel()
	<-loopDone
}

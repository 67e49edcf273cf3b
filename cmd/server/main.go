package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/azmi-amirullah/minimarket-pos/internal/config"
	"github.com/azmi-amirullah/minimarket-pos/internal/infra"
	"github.com/azmi-amirullah/minimarket-pos/internal/router"
	"github.com/azmi-amirullah/minimarket-pos/internal/worker"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Structured logger — dev: pretty, prod: JSON
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	rdb, err := infra.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	remote := infra.NewRemoteClient(cfg.SyncRemoteURL)
	cb := infra.NewCircuitBreaker(infra.DefaultCBConfig())
	mailer := infra.NewMailer(cfg)
	dispatcher := worker.NewDispatcher(rdb)

	r, services := router.New(router.Deps{
		Cfg:    cfg,
		DB:     db,
		RDB:    rdb,
		Remote: remote,
		CB:     cb,
	}, dispatcher)

	// Worker pool for async jobs (sync cycles, receipt PDFs, emails). Wired
	// here in the composition root so workers share the service instances
	// the HTTP layer uses.
	handlers := &worker.Handlers{
		Sync:    worker.NewSyncWorker(services.Sync),
		Receipt: worker.NewReceiptWorker(services.Sales, dispatcher, cfg.PDFStoragePath, cfg.StoreName),
		Email:   worker.NewEmailWorker(mailer),
	}
	worker.StartPool(ctx, rdb, handlers, cfg.WorkerPoolSize)

	// Periodic pull of the remote snapshot when a backend is configured.
	if remote.Enabled() {
		worker.StartSyncCron(ctx, worker.SyncCronConfig{
			Dispatcher: dispatcher,
			CB:         cb,
			Interval:   time.Duration(cfg.SyncIntervalMinutes) * time.Minute,
		})
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Msgf("minimarket-pos backend listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server…")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}
	log.Info().Msg("server exited")
}

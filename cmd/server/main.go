package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/BistroPdv/bistro-api/internal/config"
	"github.com/BistroPdv/bistro-api/internal/infra"
	"github.com/BistroPdv/bistro-api/internal/repository"
	"github.com/BistroPdv/bistro-api/internal/router"
	"github.com/BistroPdv/bistro-api/internal/worker"

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

	// Worker pool and retry cron are wired here (composition root) so the
	// async side has full access to all infrastructure dependencies.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	omieClient := infra.NewOmieClient(cfg.OmieAPIURL)
	omieCB := infra.NewCircuitBreaker(infra.DefaultCBConfig())

	syncRepo := repository.NewSyncIntentRepository(db)
	pedidoRepo := repository.NewPedidoRepository(db)
	catalogoRepo := repository.NewCatalogoRepository(db)

	pdvSyncWorker := worker.NewPdvSyncWorker(omieClient, omieCB, syncRepo, pedidoRepo, catalogoRepo, rdb)
	worker.StartWorkerPool(ctx, rdb, cfg.WorkerPoolSize, pdvSyncWorker)
	worker.StartRetryCron(ctx, worker.RetryCronConfig{
		SyncRepo: syncRepo,
		Worker:   pdvSyncWorker,
		CB:       omieCB,
	})

	r := router.New(cfg, db, rdb, omieCB)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Msgf("bistro-api listening on :%d", cfg.Port)
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

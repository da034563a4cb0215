package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	router "github.com/parleyhq/parley/internal/adapters/http"
	wssignal "github.com/parleyhq/parley/internal/adapters/signal"
	"github.com/parleyhq/parley/internal/app"
	"github.com/parleyhq/parley/internal/config"
	mongostore "github.com/parleyhq/parley/internal/storage/mongo"
	"github.com/parleyhq/parley/internal/transcribe"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize zerolog global logger early so config.Load can use it.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	// Human-friendly output for terminal; in production you may want JSON only.
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	connectCtx, connectCancel := context.WithTimeout(ctx, 10*time.Second)
	store, err := mongostore.NewStore(connectCtx, cfg.MongoURI, cfg.MongoDatabase)
	connectCancel()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to mongo")
	}
	defer func() {
		closeCtx, closeCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer closeCancel()
		_ = store.Close(closeCtx)
	}()

	presence := app.NewPresence()
	rooms := app.NewRooms()
	sessions := app.NewSessionAllocator(store)
	calls := app.NewCallLog(store)
	coord := app.NewCoordinator(presence, rooms, sessions, calls)

	var secondary transcribe.Engine
	if cfg.OpenAIAPIKey != "" {
		secondary = transcribe.NewWhisperEngine(cfg.OpenAIAPIKey)
	}
	transcriber := &transcribe.Orchestrator{
		Primary:       transcribe.NewDeepgramEngine(cfg.DeepgramAPIKey, cfg.HintLanguages, cfg.Keywords),
		Secondary:     secondary,
		Detector:      transcribe.NewDetector(),
		Store:         store,
		Rooms:         rooms,
		Sessions:      sessions,
		ScratchDir:    cfg.ScratchDir,
		EngineTimeout: cfg.EngineTimeout,
	}

	ctl := wssignal.NewSignalWSController(coord, transcriber, cfg.ReadLimit, cfg.PingPeriod)
	r := router.SetupRouter(ctx, cfg, ctl, store)
	addr := fmt.Sprintf(":%d", cfg.Port)

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("Parley server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited gracefully")
}

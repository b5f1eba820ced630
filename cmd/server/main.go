package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	"watch-party/auth"
	"watch-party/domain/event"
	"watch-party/infrastructure/rest"
	"watch-party/infrastructure/ws"
	"watch-party/internal"
	"watch-party/moderation"
	"watch-party/observability"
	"watch-party/propagation"
	"watch-party/repositories"
	"watch-party/runtime"
	"watch-party/runtime/workers"
	"watch-party/services"
	"watch-party/sink"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
)

const shutdownTimeout = 5 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run initializes all components, manages the server lifecycle, and centralizes error reporting.
// Deferred cleanups (database, workers) always run before the program exits.
func run() error {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)
	charReplacement, err := internal.CharacterRune(config.CharReplacement)
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	// 2. Database (BadgerDB)
	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
		WithLoggingLevel(badger.WARNING))
	if err != nil {
		return fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		log.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	// 3. Moderation
	sanitizer, err := moderation.NewDefaultSanitizer(charReplacement, log)
	if err != nil {
		return fmt.Errorf("moderation setup failed: %w", err)
	}

	// 4. Setup Supervision & Orchestration
	stats := observability.NewStats()
	sup := workers.NewSupervisor(log, config.RestartInterval)
	registry := runtime.NewRegistry()
	broadcaster := runtime.NewBroadcaster(log, config.BufferSize, stats)
	roomRepository := repositories.NewRoomRepository(db, log)
	messageRepository := repositories.NewMessageRepository(db, log, config.LimitMessages)

	orchestrator := runtime.NewOrchestrator(
		log, sup, registry, roomRepository,
		event.NewDefaultPipeline(log), propagation.NewPropagator(log, broadcaster),
		runtime.NewKeyMutex(config.KeyMutexSize), stats, config.DeleteEmptyRooms,
	).Add(sink.NewDiskSink(messageRepository, log))

	// 5. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 6. Start the Engine
	go orchestrator.Start(ctx,
		workers.NewEventFanout(log, registry, broadcaster.Queue(), stats, config.SinkTimeout),
		workers.NewHealthWorker(log, stats, config.HealthInterval),
	)

	// 7. HTTP Server Setup
	tokenizer := auth.NewTokenizer(config.JWTSecret)
	service := services.NewRoomService(log, orchestrator, messageRepository, sanitizer)
	server := &http.Server{
		Addr:              config.Address(),
		Handler:           rest.NewRouter(log, service, tokenizer, stats, ws.NewHandler(log, service, tokenizer, config.ConnectionBufferSize)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Use an error channel to capture ListenAndServe() issues
	errChan := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "address", server.Addr, "at", time.Now().UTC())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// 8. Wait for Stop or Error
	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
	case err := <-errChan:
		orchestrator.Stop()
		return err
	}

	// 9. Final Cleanup
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warn("HTTP server shutdown failed", "error", err)
	}
	orchestrator.Stop()
	log.Info("Program stopped cleanly")

	return nil
}

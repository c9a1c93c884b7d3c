package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"schat/contract"
	"schat/domain/event"
	"schat/infrastructure/tcp"
	"schat/moderation"
	"schat/repositories"
	"schat/runtime"
	"schat/runtime/workers"
	"schat/services"
	"schat/sink"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
)

func main() {
	opts, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(2)
	}
	if err := run(opts); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run wires every component, serves until SIGINT or SIGTERM, then tears
// down. Deferred cleanups (the transcript database) run before main exits.
func run(opts Options) error {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. Moderation
	replacement, err := config.CharacterRune()
	if err != nil {
		return err
	}
	moderator, err := moderation.NewModerator(config.Words(), replacement, log)
	if err != nil {
		return fmt.Errorf("moderation setup failed: %w", err)
	}

	// 3. Optional transcript journal
	var sinks []contract.EventSink
	var background []contract.Worker
	var channels []workers.NamedChannel
	if config.TranscriptPath != "" {
		db, err := badger.Open(badger.DefaultOptions(config.TranscriptPath).
			WithLoggingLevel(badger.WARNING))
		if err != nil {
			return fmt.Errorf("transcript opening failed: %w", err)
		}
		//  Defer will be executed before run() returned anything to main()
		defer func() {
			log.Info("Closing transcript journal...")
			_ = db.Close()
		}()

		events := make(chan event.MessagePosted, config.TranscriptBufferSize)
		repository := repositories.NewTranscriptRepository(db, log)
		sinks = append(sinks, sink.NewTranscriptSink(events, log))
		background = append(background, workers.NewTranscriptWorker(log, repository, events))
		channels = append(channels, workers.NamedChannel{Name: "transcript", Channel: events})
		log.Info("Transcript journal enabled", "path", config.TranscriptPath)
	}

	// 4. Setup Supervision & Orchestration
	sup := workers.NewSupervisor(log, config.RestartInterval)
	registry := runtime.NewRegistry()
	broadcaster := runtime.NewBroadcaster(log, registry, moderator, sinks...)
	orchestrator := runtime.NewOrchestrator(log, sup, registry, runtime.NewCommandQueue(), broadcaster, opts.Room)
	orchestrator.Add(background...)
	orchestrator.Add(workers.NewStatsWorker(log, orchestrator, config.StatsInterval, channels...))

	// 5. Context & Signals: the signal only cancels ctx, teardown happens below
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 6. Bind before anything runs: a taken port ends the process right away
	listener, err := tcp.Listen(opts.Port, config.Backlog)
	if err != nil {
		return fmt.Errorf("failed to listen on port %d: %w", opts.Port, err)
	}

	// 7. Start the Engine
	if err = orchestrator.Start(ctx); err != nil {
		_ = listener.Close()
		return fmt.Errorf("orchestrator failed to start: %w", err)
	}

	// 8. TCP Server Setup
	handler := tcp.NewHandler(log, services.NewChatService(orchestrator), config.InitialLineBuffer, config.MaxLineLength)
	server := tcp.NewServer(log, listener, handler)

	errChan := make(chan error, 1)
	go func() {
		log.Info("Starting chat server", "port", opts.Port, "room", opts.Room, "backlog", config.Backlog)
		errChan <- server.Serve(ctx)
	}()

	// 9. Wait for Stop or Error
	select {
	case <-ctx.Done():
		log.Info("Shutting down...")
	case err := <-errChan:
		orchestrator.Stop()
		if err == nil {
			return fmt.Errorf("listener closed unexpectedly")
		}
		return fmt.Errorf("chat server error: %w", err)
	}

	// 10. Final Cleanup
	if err := orchestrator.Shutdown(server); err != nil {
		log.Warn("Listener close failed", "error", err)
	}
	log.Info("Program stopped cleanly")
	return nil
}

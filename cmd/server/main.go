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

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/dkeye/watchparty/internal/adapters/events"
	router "github.com/dkeye/watchparty/internal/adapters/http"
	"github.com/dkeye/watchparty/internal/app"
	"github.com/dkeye/watchparty/internal/app/orch"
	"github.com/dkeye/watchparty/internal/config"
	"github.com/dkeye/watchparty/internal/logging"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Console logger until the config says otherwise.
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	logging.Init(cfg.Log)

	if err := run(ctx, cfg); err != nil {
		log.Fatal().Err(err).Msg("server error")
	}
	log.Info().Msg("Server exited gracefully")
}

func run(ctx context.Context, cfg *config.Config) error {
	g, ctx := errgroup.WithContext(ctx)

	sink, err := newEventSink(ctx, g, cfg.Events)
	if err != nil {
		return err
	}
	policy, err := app.PolicyByName(cfg.Backpressure.Policy)
	if err != nil {
		return err
	}

	reg := app.NewRegistry()
	rooms := app.NewRoomStore(reg)
	fanout := app.NewRouter(rooms, reg, policy)
	o := orch.New(reg, rooms, fanout, app.NewRelay(fanout), sink)

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router.SetupRouter(ctx, cfg, o),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g.Go(func() error {
		log.Info().Str("addr", addr).Str("backpressure", cfg.Backpressure.Policy).Msg("watchparty server started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		log.Info().Msg("Shutting down")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func newEventSink(ctx context.Context, g *errgroup.Group, cfg config.EventsConfig) (app.EventSink, error) {
	switch cfg.Driver {
	case "redis":
		client, err := events.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		sink := events.NewRedisSink(client, cfg.Channel, cfg.Buffer)
		g.Go(func() error {
			defer client.Close()
			return sink.Run(ctx)
		})
		return sink, nil
	case "log":
		return events.LogSink{}, nil
	default:
		return app.NopSink{}, nil
	}
}

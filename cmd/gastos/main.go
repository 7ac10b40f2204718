package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/plot/vg"

	"gastos/internal/amqp"
	"gastos/internal/backend"
	"gastos/internal/cli"
	apphttp "gastos/internal/http"
	"gastos/internal/log"
	"gastos/internal/services"
)

const shutdownTimeout = 30 * time.Second

func main() {
	os.Exit(run())
}

func run() int {
	cfg, logger := cli.Bootstrap(log.ComponentApp)

	ctx, stop := cli.SignalContext()
	defer stop()

	store, err := backend.Open(ctx, cfg, logger)
	if err != nil {
		logger.LogError(ctx, "Failed to open expense backend", err, log.OpStartup,
			log.NewFields().With(log.FieldBackend, cfg.DataBackend))
		return 1
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.LogError(context.Background(), "Failed to close expense backend", err, log.OpShutdown, nil)
		}
	}()

	// Without a broker expenses are still saved; chart workers just aren't told.
	var publisher services.Publisher
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
		if err != nil {
			logger.Warn("AMQP unavailable, continuing without chart refresh messages", log.FieldError, err.Error())
		} else {
			defer client.Close()
			publisher = client
			logger.Info("Initialized AMQP publisher", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	}

	srv := apphttp.NewServer(apphttp.Options{
		Addr:        net.JoinHostPort("", cfg.Port),
		Store:       store.Store,
		Publisher:   publisher,
		Logger:      logger,
		ChartWidth:  vg.Points(float64(cfg.ChartWidth)),
		ChartHeight: vg.Points(float64(cfg.ChartHeight)),
		WriteLimit:  cfg.WriteRateLimit,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting gastos server", "port", cfg.Port, log.FieldBackend, cfg.DataBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.LogError(context.Background(), "Server stopped with error", err, log.OpShutdown, nil)
		return 1
	}
	logger.Info("Server stopped gracefully", "requests_served", srv.RequestsServed())
	return 0
}

package main

import (
	"context"
	"errors"
	"os"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/plot/vg"

	"gastos/internal/amqp"
	"gastos/internal/cli"
	"gastos/internal/loader"
	"gastos/internal/log"
	"gastos/internal/render"
	"gastos/internal/worker"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, logger := cli.Bootstrap(log.ComponentWorker)
	if err := cfg.RequireAMQP(); err != nil {
		logger.Error("chart-worker needs a broker", log.FieldError, err.Error())
		return 1
	}

	ctx, stop := cli.SignalContext()
	defer stop()

	out, err := render.NewFile(cfg.ChartOutput, vg.Points(float64(cfg.ChartWidth)), vg.Points(float64(cfg.ChartHeight)))
	if err != nil {
		logger.LogError(ctx, "Invalid chart output", err, log.OpStartup, nil)
		return 1
	}

	w, err := worker.NewRenderWorker(loader.Config{
		BaseURL:  cfg.ChartBaseURL,
		Timeout:  cfg.ChartTimeout,
		Client:   loader.NewHTTPClient(),
		Renderer: out,
	}, logger)
	if err != nil {
		logger.LogError(ctx, "Invalid worker configuration", err, log.OpStartup, nil)
		return 1
	}

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
	if err != nil {
		logger.LogError(ctx, "Failed to connect to AMQP", err, log.OpStartup, nil)
		return 1
	}
	defer client.Close()

	logger.Info("Starting chart-worker",
		"exchange", cfg.AMQPExchange,
		"queue", cfg.AMQPQueue,
		log.FieldOutput, cfg.ChartOutput)

	// Draw once so the output exists before the first expense arrives.
	if _, err := w.Render(ctx); err != nil {
		logger.LogError(ctx, "Initial render failed", err, log.OpRender, nil)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return client.Consume(gctx, w.HandleExpenseRecorded)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.LogError(context.Background(), "chart-worker stopped with error", err, log.OpShutdown, nil)
		return 1
	}

	processed, failed := w.Stats()
	logger.Info("chart-worker stopped", "processed", processed, "failed", failed)
	return 0
}

// Package worker re-renders the expense chart when expenses change.
package worker

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"gastos/internal/amqp"
	"gastos/internal/loader"
	"gastos/internal/log"
)

// RenderWorker treats every expense.recorded message as a fresh page load:
// a new Loader is built and initialized exactly once per message.
type RenderWorker struct {
	cfg    loader.Config
	logger *log.Logger

	processed atomic.Int64
	failed    atomic.Int64
}

func NewRenderWorker(cfg loader.Config, logger *log.Logger) (*RenderWorker, error) {
	if logger == nil {
		logger = log.Discard()
	}
	logger = logger.WithComponent(log.ComponentWorker)
	if cfg.Logger == nil {
		cfg.Logger = logger.WithComponent(log.ComponentLoader)
	}
	// fail fast on a bad base URL or missing renderer
	if _, err := loader.New(cfg); err != nil {
		return nil, fmt.Errorf("render worker: %w", err)
	}
	return &RenderWorker{cfg: cfg, logger: logger}, nil
}

// Render runs one load and returns its outcome.
func (w *RenderWorker) Render(ctx context.Context) (loader.Outcome, error) {
	l, err := loader.New(w.cfg)
	if err != nil {
		return loader.Outcome{}, err
	}
	out := l.Initialize(ctx)
	w.processed.Add(1)
	if out.Status == loader.StatusFailed {
		w.failed.Add(1)
	}
	return out, nil
}

// HandleExpenseRecorded is an amqp.Handler. Failures that a retry could fix
// are returned so the message is requeued; the rest are logged and dropped.
func (w *RenderWorker) HandleExpenseRecorded(ctx context.Context, msg *amqp.ExpenseRecordedMessage) error {
	w.logger.InfoContext(ctx, "Re-rendering expense chart",
		log.FieldCategory, msg.Category,
		log.FieldAmountCents, msg.AmountCents)

	out, err := w.Render(ctx)
	if err != nil {
		return err
	}
	if out.Status != loader.StatusFailed {
		return nil
	}

	var le *loader.LoadError
	if errors.As(out.Err, &le) && le.Temporary() {
		return out.Err
	}
	w.logger.WarnContext(ctx, "Dropping expense recorded message after permanent chart failure",
		log.FieldError, out.Err.Error())
	return nil
}

// Stats returns the number of loads run and how many failed.
func (w *RenderWorker) Stats() (processed, failed int64) {
	return w.processed.Load(), w.failed.Load()
}

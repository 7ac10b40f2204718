package services

import (
	"context"
	"fmt"

	"gastos/internal/amqp"
	"gastos/internal/core"
	"gastos/internal/log"
	ports "gastos/internal/sheets"
)

// Publisher announces recorded expenses; *amqp.Client implements it.
type Publisher interface {
	PublishExpenseRecorded(ctx context.Context, msg *amqp.ExpenseRecordedMessage) error
}

// ExpenseService stores expenses and tells chart workers about them.
type ExpenseService struct {
	writer    ports.ExpenseWriter
	publisher Publisher
	logger    *log.Logger
}

// NewExpenseService returns a service; publisher may be nil when no broker
// is configured.
func NewExpenseService(writer ports.ExpenseWriter, publisher Publisher, logger *log.Logger) *ExpenseService {
	if logger == nil {
		logger = log.Discard()
	}
	return &ExpenseService{writer: writer, publisher: publisher, logger: logger}
}

// Record saves e and publishes an expense.recorded message. A failed publish
// is logged and does not fail the call: the expense is already stored.
func (s *ExpenseService) Record(ctx context.Context, e core.Expense) (string, error) {
	ref, err := s.writer.Append(ctx, e)
	if err != nil {
		return "", fmt.Errorf("save expense: %w", err)
	}

	if s.publisher == nil {
		return ref, nil
	}
	if err := s.publisher.PublishExpenseRecorded(ctx, amqp.NewExpenseRecordedMessage(e, ref)); err != nil {
		s.logger.LogError(ctx, "Failed to publish expense recorded", err, log.OpPublish,
			log.NewFields().With("ref", ref))
	}
	return ref, nil
}

package amqp

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"gastos/internal/core"
)

// RoutingKeyExpenseRecorded is the routing key of ExpenseRecordedMessage.
const RoutingKeyExpenseRecorded = "expense.recorded"

var ErrInvalidMessage = errors.New("invalid message")

// ExpenseRecordedMessage announces that an expense was stored and the chart
// is stale. It carries enough to log what changed; consumers refetch totals.
type ExpenseRecordedMessage struct {
	Date        string    `json:"date"`
	Category    string    `json:"category"`
	AmountCents int64     `json:"amount_cents"`
	Ref         string    `json:"ref,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

func NewExpenseRecordedMessage(e core.Expense, ref string) *ExpenseRecordedMessage {
	return &ExpenseRecordedMessage{
		Date:        e.Date.Format("2006-01-02"),
		Category:    e.Category,
		AmountCents: e.Amount.Cents,
		Ref:         ref,
		Timestamp:   time.Now().UTC(),
	}
}

func (m *ExpenseRecordedMessage) Validate() error {
	if strings.TrimSpace(m.Category) == "" {
		return fmt.Errorf("%w: empty category", ErrInvalidMessage)
	}
	if m.AmountCents <= 0 {
		return fmt.Errorf("%w: amount_cents must be positive", ErrInvalidMessage)
	}
	if _, err := time.Parse("2006-01-02", m.Date); err != nil {
		return fmt.Errorf("%w: date %q", ErrInvalidMessage, m.Date)
	}
	return nil
}

func (m *ExpenseRecordedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ExpenseRecordedMessageFromJSON decodes and validates a message body.
func ExpenseRecordedMessageFromJSON(data []byte) (*ExpenseRecordedMessage, error) {
	var msg ExpenseRecordedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	return &msg, nil
}

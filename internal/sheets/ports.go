package sheets

import (
	"context"

	"gastos/internal/core"
)

// Ports for expense backends.
type (
	ExpenseWriter interface {
		Append(ctx context.Context, e core.Expense) (rowRef string, err error)
	}

	// CategoryTotalsReader aggregates expenses by category.
	CategoryTotalsReader interface {
		CategoryTotals(ctx context.Context, p core.Period) ([]core.CategoryAmount, error)
	}

	// Store is implemented by every backend.
	Store interface {
		ExpenseWriter
		CategoryTotalsReader
	}
)

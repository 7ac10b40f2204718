package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gastos/internal/core"
	ports "gastos/internal/sheets"

	_ "modernc.org/sqlite"
)

const dateLayout = "2006-01-02"

var _ ports.Store = (*SQLiteRepository)(nil)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping checks the database connection.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Append implements sheets.ExpenseWriter
func (r *SQLiteRepository) Append(ctx context.Context, e core.Expense) (string, error) {
	if err := e.Validate(); err != nil {
		return "", err
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO expenses (spent_on, description, amount_cents, category) VALUES (?, ?, ?, ?)`,
		e.Date.Format(dateLayout), e.Description, e.Amount.Cents, e.Category)
	if err != nil {
		return "", fmt.Errorf("insert expense: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return "", fmt.Errorf("last insert id: %w", err)
	}

	slog.InfoContext(ctx, "Expense saved to SQLite",
		"id", id,
		"amount_cents", e.Amount.Cents,
		"category", e.Category)

	return strconv.FormatInt(id, 10), nil
}

// CategoryTotals implements sheets.CategoryTotalsReader. Categories come back
// in the order they were first recorded.
func (r *SQLiteRepository) CategoryTotals(ctx context.Context, p core.Period) ([]core.CategoryAmount, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT category, SUM(amount_cents)
		FROM expenses
		WHERE (? = 0 OR CAST(strftime('%Y', spent_on) AS INTEGER) = ?)
		  AND (? = 0 OR CAST(strftime('%m', spent_on) AS INTEGER) = ?)
		GROUP BY category
		ORDER BY MIN(id)`,
		p.Year, p.Year, p.Month, p.Month)
	if err != nil {
		return nil, fmt.Errorf("query category totals: %w", err)
	}
	defer rows.Close()

	var out []core.CategoryAmount
	for rows.Next() {
		var ca core.CategoryAmount
		if err := rows.Scan(&ca.Name, &ca.Amount.Cents); err != nil {
			return nil, fmt.Errorf("scan category total: %w", err)
		}
		out = append(out, ca)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate category totals: %w", err)
	}
	return out, nil
}

// ListExpenses returns expenses in p, oldest first.
func (r *SQLiteRepository) ListExpenses(ctx context.Context, p core.Period) ([]core.Expense, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT spent_on, description, amount_cents, category
		FROM expenses
		WHERE (? = 0 OR CAST(strftime('%Y', spent_on) AS INTEGER) = ?)
		  AND (? = 0 OR CAST(strftime('%m', spent_on) AS INTEGER) = ?)
		ORDER BY spent_on, id`,
		p.Year, p.Year, p.Month, p.Month)
	if err != nil {
		return nil, fmt.Errorf("query expenses: %w", err)
	}
	defer rows.Close()

	var out []core.Expense
	for rows.Next() {
		var (
			e       core.Expense
			spentOn string
		)
		if err := rows.Scan(&spentOn, &e.Description, &e.Amount.Cents, &e.Category); err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		e.Date, err = time.Parse(dateLayout, spentOn)
		if err != nil {
			return nil, fmt.Errorf("parse date %q: %w", spentOn, err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

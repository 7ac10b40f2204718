package http

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"gastos/internal/core"
)

const dateLayout = "2006-01-02"

var errInvalidQuery = errors.New("invalid query")

// parsePeriod reads the optional year and month query parameters. Missing
// parameters widen the period; malformed ones are an error.
func parsePeriod(q url.Values) (core.Period, error) {
	var p core.Period
	var err error

	if v := strings.TrimSpace(q.Get("year")); v != "" {
		if p.Year, err = strconv.Atoi(v); err != nil {
			return core.Period{}, fmt.Errorf("%w: year %q", errInvalidQuery, v)
		}
	}
	if v := strings.TrimSpace(q.Get("month")); v != "" {
		if p.Month, err = strconv.Atoi(v); err != nil {
			return core.Period{}, fmt.Errorf("%w: month %q", errInvalidQuery, v)
		}
	}
	if err := p.Validate(); err != nil {
		return core.Period{}, err
	}
	return p, nil
}

// parseExpenseForm builds an expense from the dashboard form fields. An empty
// date means today.
func parseExpenseForm(form url.Values, now time.Time) (core.Expense, error) {
	date := now
	if v := strings.TrimSpace(form.Get("date")); v != "" {
		d, err := time.Parse(dateLayout, v)
		if err != nil {
			return core.Expense{}, fmt.Errorf("%w: %q", core.ErrInvalidDate, v)
		}
		date = d
	}

	cents, err := core.ParseDecimalToCents(form.Get("amount"))
	if err != nil {
		return core.Expense{}, err
	}

	e := core.Expense{
		Date:        time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC),
		Description: sanitizeInput(form.Get("description")),
		Amount:      core.Money{Cents: cents},
		Category:    sanitizeInput(form.Get("category")),
	}
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}
	return e, nil
}

// sanitizeInput trims s and drops control characters other than tab and newlines.
func sanitizeInput(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' && r != '\n' && r != '\r' {
			return -1
		}
		return r
	}, strings.TrimSpace(s))
}

func periodLabel(p core.Period) string {
	switch {
	case p.IsAll():
		return "Todos los gastos"
	case p.Month == 0:
		return strconv.Itoa(p.Year)
	default:
		return fmt.Sprintf("%04d-%02d", p.Year, p.Month)
	}
}

func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

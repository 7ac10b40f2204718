package core

import (
	"errors"
	"strings"
	"time"
)

type (
	Money struct {
		Cents int64
	}

	Expense struct {
		Date        time.Time
		Description string
		Amount      Money
		Category    string
	}

	// CategoryAmount represents an amount aggregated by category name.
	CategoryAmount struct {
		Name   string
		Amount Money
	}

	// Period restricts aggregation to a year or a single month.
	// The zero value means all recorded expenses.
	Period struct {
		Year  int
		Month int // 1-12, 0 for the whole year
	}
)

var (
	ErrInvalidDate      = errors.New("invalid date")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrEmptyDescription = errors.New("empty description")
	ErrEmptyCategory    = errors.New("empty category")
	ErrInvalidPeriod    = errors.New("invalid period")
)

func (e Expense) Validate() error {
	if e.Date.IsZero() {
		return ErrInvalidDate
	}
	if strings.TrimSpace(e.Description) == "" {
		return ErrEmptyDescription
	}
	if e.Amount.Cents <= 0 {
		return ErrInvalidAmount
	}
	if strings.TrimSpace(e.Category) == "" {
		return ErrEmptyCategory
	}
	return nil
}

func (p Period) Validate() error {
	if p.Month < 0 || p.Month > 12 {
		return ErrInvalidPeriod
	}
	if p.Month > 0 && p.Year == 0 {
		return ErrInvalidPeriod
	}
	if p.Year < 0 {
		return ErrInvalidPeriod
	}
	return nil
}

// IsAll reports whether the period covers every expense.
func (p Period) IsAll() bool {
	return p.Year == 0 && p.Month == 0
}

// Contains reports whether t falls inside the period.
func (p Period) Contains(t time.Time) bool {
	if p.Year != 0 && t.Year() != p.Year {
		return false
	}
	if p.Month != 0 && int(t.Month()) != p.Month {
		return false
	}
	return true
}

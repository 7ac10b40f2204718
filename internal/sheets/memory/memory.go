package memory

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"gastos/internal/core"
	ports "gastos/internal/sheets"
)

var _ ports.Store = (*Store)(nil)

// Store keeps expenses in process memory.
type Store struct {
	mu    sync.Mutex
	items []core.Expense
}

func New(items ...core.Expense) *Store {
	return &Store{items: append([]core.Expense(nil), items...)}
}

// NewFromFile seeds the store from a CSV file with rows
// "YYYY-MM-DD,description,amount,category". A missing file yields an empty store.
func NewFromFile(path string) (*Store, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return New(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("open seed file: %w", err)
	}
	defer f.Close()

	items, err := readSeed(f)
	if err != nil {
		return nil, fmt.Errorf("read seed file %s: %w", path, err)
	}
	return New(items...), nil
}

func readSeed(r io.Reader) ([]core.Expense, error) {
	cr := csv.NewReader(r)
	cr.Comment = '#'
	cr.FieldsPerRecord = 4
	cr.TrimLeadingSpace = true

	var out []core.Expense
	for n := 1; ; n++ {
		rec, err := cr.Read()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		date, err := time.Parse("2006-01-02", strings.TrimSpace(rec[0]))
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", n, err)
		}
		cents, err := core.ParseDecimalToCents(rec[2])
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", n, err)
		}
		e := core.Expense{Date: date, Description: rec[1], Amount: core.Money{Cents: cents}, Category: strings.TrimSpace(rec[3])}
		if err := e.Validate(); err != nil {
			return nil, fmt.Errorf("record %d: %w", n, err)
		}
		out = append(out, e)
	}
}

// Append stores the expense and returns a synthetic row reference.
func (s *Store) Append(_ context.Context, e core.Expense) (string, error) {
	if err := e.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, e)
	return fmt.Sprintf("mem:%d", len(s.items)), nil
}

// CategoryTotals sums stored expenses in p by category.
func (s *Store) CategoryTotals(_ context.Context, p core.Period) ([]core.CategoryAmount, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return core.SumByCategory(s.items, p), nil
}

package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"gastos/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "db", "gastos.db"))
	if err != nil {
		t.Fatalf("new repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestRepositoryTotals(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	day := func(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }

	for _, e := range []core.Expense{
		{Date: day(2025, 7, 1), Description: "Pan", Amount: core.Money{Cents: 350}, Category: "Comida"},
		{Date: day(2025, 7, 2), Description: "Metro", Amount: core.Money{Cents: 150}, Category: "Transporte"},
		{Date: day(2025, 7, 3), Description: "Cena", Amount: core.Money{Cents: 2000}, Category: "Comida"},
		{Date: day(2025, 8, 1), Description: "Luz", Amount: core.Money{Cents: 4000}, Category: "Servicios"},
	} {
		ref, err := repo.Append(ctx, e)
		if err != nil {
			t.Fatalf("append: %v", err)
		}
		if ref == "" {
			t.Fatal("empty row ref")
		}
	}

	tests := []struct {
		name   string
		period core.Period
		want   []core.CategoryAmount
	}{
		{"all", core.Period{}, []core.CategoryAmount{
			{Name: "Comida", Amount: core.Money{Cents: 2350}},
			{Name: "Transporte", Amount: core.Money{Cents: 150}},
			{Name: "Servicios", Amount: core.Money{Cents: 4000}},
		}},
		{"july", core.Period{Year: 2025, Month: 7}, []core.CategoryAmount{
			{Name: "Comida", Amount: core.Money{Cents: 2350}},
			{Name: "Transporte", Amount: core.Money{Cents: 150}},
		}},
		{"other year", core.Period{Year: 2024}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.CategoryTotals(ctx, tt.period)
			if err != nil {
				t.Fatalf("totals: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %+v, want %+v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("row %d = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}

	list, err := repo.ListExpenses(ctx, core.Period{Year: 2025, Month: 8})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].Description != "Luz" || !list[0].Date.Equal(day(2025, 8, 1)) {
		t.Fatalf("list = %+v", list)
	}
}

func TestRepositoryRejectsInvalid(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if _, err := repo.Append(ctx, core.Expense{Date: time.Now(), Description: "x", Category: "y"}); !errors.Is(err, core.ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
	if _, err := repo.CategoryTotals(ctx, core.Period{Month: 2}); !errors.Is(err, core.ErrInvalidPeriod) {
		t.Fatalf("expected ErrInvalidPeriod, got %v", err)
	}
	if err := repo.Ping(ctx); err != nil {
		t.Fatalf("ping: %v", err)
	}
}

func TestMigrationsAreIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gastos.db")
	for i := 0; i < 2; i++ {
		repo, err := NewSQLiteRepository(path)
		if err != nil {
			t.Fatalf("open #%d: %v", i, err)
		}
		repo.Close()
	}
}

func TestSchemaVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gastos.db")
	repo, err := NewSQLiteRepository(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer repo.Close()

	v, dirty, err := SchemaVersion(path)
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if v != 1 || dirty {
		t.Fatalf("version = %d dirty=%v, want 1 clean", v, dirty)
	}
}

package memory

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"gastos/internal/core"
)

func TestStoreAppendAndTotals(t *testing.T) {
	s := New()
	ctx := context.Background()
	day := time.Date(2025, 7, 4, 0, 0, 0, 0, time.UTC)

	for _, e := range []core.Expense{
		{Date: day, Description: "Pan", Amount: core.Money{Cents: 350}, Category: "Comida"},
		{Date: day, Description: "Bus", Amount: core.Money{Cents: 150}, Category: "Transporte"},
		{Date: day, Description: "Fruta", Amount: core.Money{Cents: 200}, Category: "Comida"},
	} {
		if _, err := s.Append(ctx, e); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	ref, err := s.Append(ctx, core.Expense{Date: day, Description: "", Amount: core.Money{Cents: 1}, Category: "x"})
	if !errors.Is(err, core.ErrEmptyDescription) || ref != "" {
		t.Fatalf("expected validation error, got %q %v", ref, err)
	}

	totals, err := s.CategoryTotals(ctx, core.Period{Year: 2025, Month: 7})
	if err != nil {
		t.Fatalf("totals: %v", err)
	}
	if len(totals) != 2 || totals[0].Name != "Comida" || totals[0].Amount.Cents != 550 {
		t.Fatalf("totals = %+v", totals)
	}

	if _, err := s.CategoryTotals(ctx, core.Period{Month: 13}); !errors.Is(err, core.ErrInvalidPeriod) {
		t.Fatalf("expected ErrInvalidPeriod, got %v", err)
	}
}

func TestNewFromFile(t *testing.T) {
	dir := t.TempDir()

	s, err := NewFromFile(filepath.Join(dir, "missing.csv"))
	if err != nil {
		t.Fatalf("missing file: %v", err)
	}
	if totals, _ := s.CategoryTotals(context.Background(), core.Period{}); len(totals) != 0 {
		t.Fatalf("expected empty store, got %+v", totals)
	}

	path := filepath.Join(dir, "seed.csv")
	seed := "# fecha,descripcion,importe,categoria\n2025-07-01,Pan,\"3,50\",Comida\n2025-07-02,Metro,1.50,Transporte\n"
	if err := os.WriteFile(path, []byte(seed), 0o644); err != nil {
		t.Fatal(err)
	}
	s, err = NewFromFile(path)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	totals, _ := s.CategoryTotals(context.Background(), core.Period{})
	if len(totals) != 2 || totals[0].Amount.Cents != 350 || totals[1].Amount.Cents != 150 {
		t.Fatalf("totals = %+v", totals)
	}

	bad := filepath.Join(dir, "bad.csv")
	if err := os.WriteFile(bad, []byte("yesterday,Pan,3,Comida\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewFromFile(bad); err == nil {
		t.Fatal("expected error for bad date")
	}
}

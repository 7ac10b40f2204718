package core

import (
	"errors"
	"reflect"
	"testing"
	"time"
)

func TestChartDataValidate(t *testing.T) {
	ok := ChartData{Labels: []string{"Food", "Transport"}, Data: []float64{100, 50}}
	if err := ok.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	bad := ChartData{Labels: []string{"Food", "Transport"}, Data: []float64{100}}
	if err := bad.Validate(); !errors.Is(err, ErrLengthMismatch) {
		t.Fatalf("expected ErrLengthMismatch, got %v", err)
	}

	if !(ChartData{}).IsEmpty() {
		t.Fatal("zero value should be empty")
	}
}

func TestChartDataFromTotals(t *testing.T) {
	totals := []CategoryAmount{
		{Name: "Transport", Amount: Money{Cents: 5000}},
		{Name: "Food", Amount: Money{Cents: 10000}},
		{Name: "Gifts", Amount: Money{Cents: 0}},
		{Name: "Bills", Amount: Money{Cents: 5000}},
	}

	got := ChartDataFromTotals(totals)
	want := ChartData{
		Labels: []string{"Food", "Bills", "Transport"},
		Data:   []float64{100, 50, 50},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %+v, want %+v", got, want)
	}

	empty := ChartDataFromTotals(nil)
	if !empty.IsEmpty() || empty.Labels == nil {
		t.Fatalf("expected empty non-nil labels, got %#v", empty)
	}
}

func TestSumByCategory(t *testing.T) {
	day := func(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }
	items := []Expense{
		{Date: day(2025, 7, 1), Category: "Food", Amount: Money{Cents: 1000}},
		{Date: day(2025, 7, 3), Category: "Transport", Amount: Money{Cents: 250}},
		{Date: day(2025, 7, 9), Category: "Food", Amount: Money{Cents: 500}},
		{Date: day(2025, 8, 1), Category: "Food", Amount: Money{Cents: 9900}},
		{Date: day(2024, 7, 1), Category: "Health", Amount: Money{Cents: 100}},
	}

	tests := []struct {
		name   string
		period Period
		want   []CategoryAmount
	}{
		{
			name:   "all time",
			period: Period{},
			want: []CategoryAmount{
				{Name: "Food", Amount: Money{Cents: 11400}},
				{Name: "Transport", Amount: Money{Cents: 250}},
				{Name: "Health", Amount: Money{Cents: 100}},
			},
		},
		{
			name:   "single month",
			period: Period{Year: 2025, Month: 7},
			want: []CategoryAmount{
				{Name: "Food", Amount: Money{Cents: 1500}},
				{Name: "Transport", Amount: Money{Cents: 250}},
			},
		},
		{
			name:   "year",
			period: Period{Year: 2024},
			want:   []CategoryAmount{{Name: "Health", Amount: Money{Cents: 100}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SumByCategory(items, tt.period)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestPeriodValidate(t *testing.T) {
	valid := []Period{{}, {Year: 2025}, {Year: 2025, Month: 12}}
	for _, p := range valid {
		if err := p.Validate(); err != nil {
			t.Errorf("%+v: unexpected error %v", p, err)
		}
	}
	invalid := []Period{{Month: 3}, {Year: 2025, Month: 13}, {Year: -1}}
	for _, p := range invalid {
		if err := p.Validate(); !errors.Is(err, ErrInvalidPeriod) {
			t.Errorf("%+v: expected ErrInvalidPeriod, got %v", p, err)
		}
	}
}

func TestExpenseValidate(t *testing.T) {
	base := Expense{
		Date:        time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC),
		Description: "Lunch",
		Amount:      Money{Cents: 1200},
		Category:    "Food",
	}
	if err := base.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	noDate := base
	noDate.Date = time.Time{}
	noDesc := base
	noDesc.Description = " "
	noAmount := base
	noAmount.Amount = Money{}
	noCat := base
	noCat.Category = ""

	cases := map[string]struct {
		e    Expense
		want error
	}{
		"date":        {noDate, ErrInvalidDate},
		"description": {noDesc, ErrEmptyDescription},
		"amount":      {noAmount, ErrInvalidAmount},
		"category":    {noCat, ErrEmptyCategory},
	}
	for name, c := range cases {
		if err := c.e.Validate(); !errors.Is(err, c.want) {
			t.Errorf("%s: got %v, want %v", name, err, c.want)
		}
	}
}

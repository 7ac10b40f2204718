package core

import (
	"errors"
	"fmt"
	"sort"
)

// ChartDataPath is the fixed path serving categorized expense totals.
const ChartDataPath = "/api/chart-data"

var (
	ErrMissingLabels  = errors.New("chart data: missing labels")
	ErrLengthMismatch = errors.New("chart data: labels and data length differ")
)

// ChartData is the payload of ChartDataPath. Labels[i] names the category
// whose total is Data[i].
type ChartData struct {
	Labels []string  `json:"labels"`
	Data   []float64 `json:"data"`
}

// IsEmpty reports whether there is no category to draw.
func (d ChartData) IsEmpty() bool {
	return len(d.Labels) == 0
}

// Validate checks that every label has exactly one value.
func (d ChartData) Validate() error {
	if len(d.Labels) != len(d.Data) {
		return fmt.Errorf("%w: %d labels, %d values", ErrLengthMismatch, len(d.Labels), len(d.Data))
	}
	return nil
}

// ChartDataFromTotals builds the chart payload from category totals, largest
// first. Categories with a non-positive total are left out.
func ChartDataFromTotals(totals []CategoryAmount) ChartData {
	rows := make([]CategoryAmount, 0, len(totals))
	for _, t := range totals {
		if t.Amount.Cents > 0 {
			rows = append(rows, t)
		}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Amount.Cents != rows[j].Amount.Cents {
			return rows[i].Amount.Cents > rows[j].Amount.Cents
		}
		return rows[i].Name < rows[j].Name
	})

	out := ChartData{
		Labels: make([]string, 0, len(rows)),
		Data:   make([]float64, 0, len(rows)),
	}
	for _, r := range rows {
		out.Labels = append(out.Labels, r.Name)
		out.Data = append(out.Data, r.Amount.Float())
	}
	return out
}

// SumByCategory aggregates expenses inside p, keeping first-seen order.
func SumByCategory(items []Expense, p Period) []CategoryAmount {
	idx := map[string]int{}
	var out []CategoryAmount
	for _, e := range items {
		if !p.Contains(e.Date) {
			continue
		}
		i, ok := idx[e.Category]
		if !ok {
			i = len(out)
			idx[e.Category] = i
			out = append(out, CategoryAmount{Name: e.Category})
		}
		out[i].Amount.Cents += e.Amount.Cents
	}
	return out
}

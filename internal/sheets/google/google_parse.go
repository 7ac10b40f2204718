package google

import (
	"fmt"
	"strings"
	"time"

	"gastos/internal/core"
)

const uncategorized = "(Sin categoría)"

var dateLayouts = []string{"2006-01-02", "02/01/2006", "2/1/2006"}

// parseExpenseRows converts a values matrix (as returned by the Sheets API)
// into expenses. Rows without a parseable date or a positive amount, such as
// the header, are skipped.
func parseExpenseRows(values [][]interface{}) []core.Expense {
	var out []core.Expense
	for _, raw := range values {
		row := toStrings(raw)
		if len(row) < 3 {
			continue
		}
		date, ok := parseDate(row[0])
		if !ok {
			continue
		}
		cents, err := core.ParseDecimalToCents(cleanAmount(row[2]))
		if err != nil {
			continue
		}
		category := safeGet(row, 3)
		if category == "" {
			category = uncategorized
		}
		out = append(out, core.Expense{
			Date:        date,
			Description: safeGet(row, 1),
			Amount:      core.Money{Cents: cents},
			Category:    category,
		})
	}
	return out
}

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// cleanAmount strips currency symbols and spaces from formatted cells.
func cleanAmount(s string) string {
	return strings.NewReplacer("€", "", "$", "", " ", "", "\u00a0", "").Replace(s)
}

func toStrings(in []interface{}) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}

func safeGet(arr []string, idx int) string {
	if idx < 0 || idx >= len(arr) {
		return ""
	}
	return arr[idx]
}

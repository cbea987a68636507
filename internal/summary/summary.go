// Package summary aggregates a user's expenses into totals and percentage breakdowns by
// category and by importance.
package summary

import (
	"finance_tracker/internal/domain" // Domain models
	"sort"                            // Deterministic group order
	"time"                            // Month keys

	"github.com/shopspring/decimal" // Exact money arithmetic
)

// Placeholder attributes for expenses whose category no longer exists
const (
	UnknownCategoryName  = "Uncategorized"
	UnknownCategoryColor = "#9CA3AF"
	UnknownCategoryIcon  = "❓"
)

// ImportanceColors is the default color per importance label
var ImportanceColors = map[domain.Importance]string{
	domain.ImportanceImportant: "#EF4444",
	domain.ImportanceNormal:    "#3B82F6",
	domain.ImportanceLuxury:    "#F59E0B",
}

// CategorySummary is the share of the total spent in one category
type CategorySummary struct {
	CategoryID uint    `json:"categoryId"`
	Name       string  `json:"name"`
	Color      string  `json:"color"`
	Icon       string  `json:"icon"`
	Amount     float64 `json:"amount"`     // Rounded to cents
	Percentage float64 `json:"percentage"` // Of the total, truncated to two places
}

// ImportanceSummary is the share of the total spent under one importance label
type ImportanceSummary struct {
	Importance domain.Importance `json:"importance"`
	Color      string            `json:"color"`
	Amount     float64           `json:"amount"`
	Percentage float64           `json:"percentage"`
}

// Summary is the aggregated view of a set of expenses
type Summary struct {
	TotalAmount       float64             `json:"totalAmount"`     // Sum of every expense in cents
	CategorySummary   []CategorySummary   `json:"categorySummary"` // Largest first
	ImportanceSummary []ImportanceSummary `json:"importanceSummary"`
}

// FilterByRange keeps expenses dated within [from, to]; a zero bound is open.
// to is inclusive of its whole day when it carries no time component.
func FilterByRange(expenses []domain.Expense, from, to time.Time) []domain.Expense {
	if from.IsZero() && to.IsZero() {
		return expenses
	}
	end := to
	if !to.IsZero() && to.Equal(truncateDay(to)) {
		end = to.AddDate(0, 0, 1)
	}
	out := make([]domain.Expense, 0, len(expenses))
	for _, e := range expenses {
		if !from.IsZero() && e.Date.Before(from) {
			continue
		}
		if !to.IsZero() && !e.Date.Before(end) {
			continue
		}
		out = append(out, e)
	}
	return out
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// Summarize computes the total and both breakdowns in a single pass over expenses
func Summarize(expenses []domain.Expense, categories []domain.Category) Summary {
	byID := make(map[uint]domain.Category, len(categories))
	for _, c := range categories {
		byID[c.ID] = c
	}

	total := decimal.Zero
	perCategory := map[uint]decimal.Decimal{} // Keyed by category id, missing categories included
	perImportance := map[domain.Importance]decimal.Decimal{}
	for _, e := range expenses {
		amount := decimal.NewFromFloat(e.Amount).Round(2) // Cents first, so groups add up to the total
		total = total.Add(amount)
		perCategory[e.CategoryID] = perCategory[e.CategoryID].Add(amount)
		perImportance[e.Importance] = perImportance[e.Importance].Add(amount)
	}

	s := Summary{
		TotalAmount:       money(total),
		CategorySummary:   make([]CategorySummary, 0, len(perCategory)),
		ImportanceSummary: make([]ImportanceSummary, 0, len(perImportance)),
	}
	for id, amount := range perCategory {
		cs := CategorySummary{
			CategoryID: id,
			Name:       UnknownCategoryName,
			Color:      UnknownCategoryColor,
			Icon:       UnknownCategoryIcon,
			Amount:     money(amount),
			Percentage: Percentage(amount, total),
		}
		if c, ok := byID[id]; ok { // Deleted categories keep the placeholder
			cs.Name, cs.Color, cs.Icon = c.Name, c.Color, c.Icon
		}
		s.CategorySummary = append(s.CategorySummary, cs)
	}
	for imp, amount := range perImportance {
		color, ok := ImportanceColors[imp]
		if !ok {
			color = UnknownCategoryColor
		}
		s.ImportanceSummary = append(s.ImportanceSummary, ImportanceSummary{
			Importance: imp,
			Color:      color,
			Amount:     money(amount),
			Percentage: Percentage(amount, total),
		})
	}

	sort.Slice(s.CategorySummary, func(i, j int) bool {
		a, b := s.CategorySummary[i], s.CategorySummary[j]
		if a.Amount != b.Amount {
			return a.Amount > b.Amount
		}
		return a.CategoryID < b.CategoryID
	})
	sort.Slice(s.ImportanceSummary, func(i, j int) bool {
		a, b := s.ImportanceSummary[i], s.ImportanceSummary[j]
		if a.Amount != b.Amount {
			return a.Amount > b.Amount
		}
		return a.Importance < b.Importance
	})
	return s
}

// Percentage returns part/total*100 truncated to two places, 0 when total is not positive.
// Truncation keeps the percentages of a breakdown from summing past 100.
func Percentage(part, total decimal.Decimal) float64 {
	if !total.IsPositive() {
		return 0
	}
	pct := part.Div(total).Mul(decimal.NewFromInt(100))
	if pct.GreaterThan(decimal.NewFromInt(100)) {
		pct = decimal.NewFromInt(100)
	}
	if pct.IsNegative() {
		pct = decimal.Zero
	}
	f, _ := pct.Truncate(2).Float64()
	return f
}

func money(d decimal.Decimal) float64 {
	f, _ := d.Round(2).Float64()
	return f
}

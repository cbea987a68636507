package challenge

import (
	"finance_tracker/internal/domain" // Domain models
	"fmt"                             // Titles and keys
	"sort"                            // Stable ordering
	"time"                            // Suggestion windows

	"github.com/shopspring/decimal" // Exact money arithmetic
)

// Lookback is how far back spending is analysed when generating suggestions
const Lookback = 30 * 24 * time.Hour

var (
	categoryLimitShare   = decimal.RequireFromString("0.8") // Of the top category's spend
	luxuryShareThreshold = decimal.RequireFromString("0.2")
	luxuryLimitShare     = decimal.RequireFromString("0.5")
	reductionPercent     = 10.0 // Percent under the lookback total
)

// Suggest proposes challenges from the user's recent spending. Every returned challenge is in
// the suggested state with a window starting at now.
func Suggest(u domain.User, expenses []domain.Expense, categories []domain.Category, now time.Time) []domain.Challenge {
	names := make(map[uint]string, len(categories))
	for _, c := range categories {
		names[c.ID] = c.Name
	}

	total := decimal.Zero
	luxury := decimal.Zero
	perCategory := map[uint]decimal.Decimal{}
	for _, e := range expenses {
		amount := decimal.NewFromFloat(e.Amount)
		total = total.Add(amount)
		perCategory[e.CategoryID] = perCategory[e.CategoryID].Add(amount)
		if e.Importance == domain.ImportanceLuxury {
			luxury = luxury.Add(amount)
		}
	}

	newSuggestion := func(t domain.ChallengeType, title, description string, days int, target float64, m domain.ChallengeMetadata) domain.Challenge {
		return domain.Challenge{
			UserID:      u.ID,
			Title:       title,
			Description: description,
			Type:        t,
			Status:      domain.ChallengeSuggested,
			StartDate:   now,
			EndDate:     now.AddDate(0, 0, days),
			TargetValue: target,
			CreatedAt:   now,
			UpdatedAt:   now,
			Metadata:    m,
		}
	}

	var out []domain.Challenge

	if topID, topAmount, ok := topCategory(perCategory); ok {
		name := names[topID]
		if name == "" {
			name = "your top category"
		}
		limit := round2(topAmount.Mul(categoryLimitShare))
		if limit > 0 {
			out = append(out, newSuggestion(domain.ChallengeCategoryLimit,
				fmt.Sprintf("Trim %s spending", name),
				fmt.Sprintf("Keep %s under %.2f for the next 30 days.", name, limit),
				30, limit, domain.CategoryLimitMetadata{CategoryID: topID, Limit: limit}))
		}
	}

	if total.IsPositive() && luxury.Div(total).GreaterThan(luxuryShareThreshold) {
		limit := round2(luxury.Mul(luxuryLimitShare))
		if limit > 0 {
			out = append(out, newSuggestion(domain.ChallengeImportanceLimit,
				"Halve luxury spending",
				fmt.Sprintf("Luxury purchases made up %.0f%% of your spending. Keep them under %.2f for 30 days.", round2(luxury.Div(total).Mul(decimal.NewFromInt(100))), limit),
				30, limit, domain.ImportanceLimitMetadata{Importance: domain.ImportanceLuxury, Limit: limit}))
		}
	}

	if total.IsPositive() {
		baseline := round2(total)
		target := round2(total.Mul(decimal.NewFromFloat(1 - reductionPercent/100)))
		out = append(out, newSuggestion(domain.ChallengeSpendingReduction,
			"Spend 10% less",
			fmt.Sprintf("You spent %.2f in the last 30 days. Aim for %.2f over the next 30.", baseline, target),
			30, target, domain.SpendingReductionMetadata{BaselineAmount: baseline, ReductionPercent: reductionPercent}))
	}

	if luxury.IsPositive() {
		out = append(out, newSuggestion(domain.ChallengeTimeBased,
			"No-luxury week",
			"Skip luxury purchases for 7 days in a row.",
			7, 7, domain.TimeBasedMetadata{Days: 7, Importance: domain.ImportanceLuxury}))
	}

	if u.MonthlyBudget > 0 {
		daily := round2(decimal.NewFromFloat(u.MonthlyBudget).Div(decimal.NewFromInt(30)))
		if daily > 0 {
			out = append(out, newSuggestion(domain.ChallengeConsistency,
				"Stay on budget every day",
				fmt.Sprintf("Spend at most %.2f per day for 14 days.", daily),
				14, 14, domain.ConsistencyMetadata{DailyLimit: daily, Days: 14}))
		}
	}

	return out
}

// Without filters out suggestions that would duplicate one of the given active challenges
func Without(suggested, active []domain.Challenge) []domain.Challenge {
	taken := make(map[string]bool, len(active))
	for _, c := range active {
		taken[targetKey(c)] = true
	}
	out := make([]domain.Challenge, 0, len(suggested))
	for _, c := range suggested {
		if !taken[targetKey(c)] {
			out = append(out, c)
		}
	}
	return out
}

// targetKey identifies what a challenge restricts: its type plus the category or importance
func targetKey(c domain.Challenge) string {
	switch m := c.Metadata.(type) {
	case domain.CategoryLimitMetadata:
		return fmt.Sprintf("%s:%d", c.Type, m.CategoryID)
	case domain.ImportanceLimitMetadata:
		return fmt.Sprintf("%s:%s", c.Type, m.Importance)
	case domain.TimeBasedMetadata:
		return fmt.Sprintf("%s:%s", c.Type, m.Importance)
	}
	return string(c.Type)
}

func topCategory(perCategory map[uint]decimal.Decimal) (uint, decimal.Decimal, bool) {
	if len(perCategory) == 0 {
		return 0, decimal.Zero, false
	}
	ids := make([]uint, 0, len(perCategory))
	for id := range perCategory {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	top := ids[0]
	for _, id := range ids[1:] {
		if perCategory[id].GreaterThan(perCategory[top]) {
			top = id
		}
	}
	return top, perCategory[top], true
}

func round2(d decimal.Decimal) float64 {
	f, _ := d.Round(2).Float64()
	return f
}

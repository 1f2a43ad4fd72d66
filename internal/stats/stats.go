// Package stats derives summary figures from a user's transaction history.
// Aggregation happens in code over the full list, not in database queries.
package stats

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/finman-app/backend/internal/domain"
)

// Trend describes the direction of the balance over the last three months.
type Trend string

const (
	TrendUp     Trend = "up"
	TrendDown   Trend = "down"
	TrendStable Trend = "stable"
)

// CategorySummary aggregates one category's transactions. Percentage is the
// category's share of the matching total (income total for income categories,
// expense total otherwise).
type CategorySummary struct {
	Total      decimal.Decimal `json:"total"`
	Count      int             `json:"count"`
	Percentage float64         `json:"percentage"`
}

// LargestTransaction identifies the single largest entry by absolute amount.
type LargestTransaction struct {
	Amount   decimal.Decimal `json:"amount"`
	Note     string          `json:"note"`
	Category string          `json:"category"`
}

// Summary is the overall financial picture of one user.
type Summary struct {
	TotalIncome          decimal.Decimal            `json:"totalIncome"`
	TotalExpense         decimal.Decimal            `json:"totalExpense"`
	Balance              decimal.Decimal            `json:"balance"`
	Categories           map[string]CategorySummary `json:"categories"`
	MostFrequentCategory string                     `json:"mostFrequentCategory,omitempty"`
	LargestTransaction   *LargestTransaction        `json:"largestTransaction,omitempty"`
}

// MonthlyStat is one month's totals. Month is formatted as "2006-01".
type MonthlyStat struct {
	Month   string          `json:"month"`
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
	Balance decimal.Decimal `json:"balance"`
}

// MonthlyStats is the per-month breakdown with averages and a trend over the
// last three months.
type MonthlyStats struct {
	Months         []MonthlyStat   `json:"months"`
	AverageIncome  decimal.Decimal `json:"averageIncome"`
	AverageExpense decimal.Decimal `json:"averageExpense"`
	Trend          Trend           `json:"trend"`
}

// Summarize computes the overall summary over the given transactions.
func Summarize(transactions []domain.Transaction) Summary {
	summary := Summary{
		TotalIncome:  decimal.Zero,
		TotalExpense: decimal.Zero,
		Balance:      decimal.Zero,
		Categories:   map[string]CategorySummary{},
	}

	incomeCategories := map[string]bool{}
	var largest *LargestTransaction
	var largestAbs decimal.Decimal

	for _, tx := range transactions {
		if tx.Type == domain.TransactionIncome {
			summary.TotalIncome = summary.TotalIncome.Add(tx.Amount)
			incomeCategories[tx.Category] = true
		} else {
			summary.TotalExpense = summary.TotalExpense.Add(tx.Amount)
		}

		cat := summary.Categories[tx.Category]
		cat.Total = cat.Total.Add(tx.Amount)
		cat.Count++
		summary.Categories[tx.Category] = cat

		abs := tx.Amount.Abs()
		if largest == nil || abs.GreaterThan(largestAbs) {
			largest = &LargestTransaction{Amount: tx.Amount, Note: tx.Note, Category: tx.Category}
			largestAbs = abs
		}
	}

	summary.Balance = summary.TotalIncome.Sub(summary.TotalExpense)
	summary.LargestTransaction = largest

	// Sorted iteration keeps the most-frequent tie-break deterministic.
	names := make([]string, 0, len(summary.Categories))
	for name := range summary.Categories {
		names = append(names, name)
	}
	sort.Strings(names)

	maxCount := 0
	for _, name := range names {
		cat := summary.Categories[name]

		total := summary.TotalExpense
		if incomeCategories[name] {
			total = summary.TotalIncome
		}
		if total.IsPositive() {
			cat.Percentage, _ = cat.Total.Div(total).Mul(decimal.NewFromInt(100)).Float64()
		}
		summary.Categories[name] = cat

		if cat.Count > maxCount {
			maxCount = cat.Count
			summary.MostFrequentCategory = name
		}
	}

	return summary
}

// SummarizeMonthly groups transactions by calendar month and derives
// averages and the three-month balance trend.
func SummarizeMonthly(transactions []domain.Transaction) MonthlyStats {
	byMonth := map[string]*MonthlyStat{}
	for _, tx := range transactions {
		key := tx.Date.Format("2006-01")
		month, ok := byMonth[key]
		if !ok {
			month = &MonthlyStat{Month: key, Income: decimal.Zero, Expense: decimal.Zero}
			byMonth[key] = month
		}
		if tx.Type == domain.TransactionIncome {
			month.Income = month.Income.Add(tx.Amount)
		} else {
			month.Expense = month.Expense.Add(tx.Amount)
		}
	}

	stats := MonthlyStats{
		Months:         make([]MonthlyStat, 0, len(byMonth)),
		AverageIncome:  decimal.Zero,
		AverageExpense: decimal.Zero,
		Trend:          TrendStable,
	}
	for _, month := range byMonth {
		month.Balance = month.Income.Sub(month.Expense)
		stats.Months = append(stats.Months, *month)
	}
	sort.Slice(stats.Months, func(i, j int) bool {
		return stats.Months[i].Month < stats.Months[j].Month
	})

	if len(stats.Months) == 0 {
		return stats
	}

	var incomeSum, expenseSum decimal.Decimal
	for _, month := range stats.Months {
		incomeSum = incomeSum.Add(month.Income)
		expenseSum = expenseSum.Add(month.Expense)
	}
	n := decimal.NewFromInt(int64(len(stats.Months)))
	stats.AverageIncome = incomeSum.Div(n)
	stats.AverageExpense = expenseSum.Div(n)

	if len(stats.Months) >= 3 {
		last := stats.Months[len(stats.Months)-3:]
		switch diff := last[2].Balance.Sub(last[0].Balance); {
		case diff.IsPositive():
			stats.Trend = TrendUp
		case diff.IsNegative():
			stats.Trend = TrendDown
		}
	}

	return stats
}

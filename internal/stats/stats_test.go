package stats

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/finman-app/backend/internal/domain"
)

func tx(txType domain.TransactionType, amount float64, category string, date time.Time) domain.Transaction {
	return domain.Transaction{
		Type:     txType,
		Amount:   decimal.NewFromFloat(amount),
		Category: category,
		Date:     date,
	}
}

func TestSummarize_Empty(t *testing.T) {
	got := Summarize(nil)
	if !got.TotalIncome.IsZero() || !got.TotalExpense.IsZero() || !got.Balance.IsZero() {
		t.Errorf("empty summary has non-zero totals: %+v", got)
	}
	if got.LargestTransaction != nil {
		t.Error("empty summary has a largest transaction")
	}
	if got.MostFrequentCategory != "" {
		t.Errorf("MostFrequentCategory = %q, want empty", got.MostFrequentCategory)
	}
}

func TestSummarize(t *testing.T) {
	day := time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC)
	transactions := []domain.Transaction{
		tx(domain.TransactionIncome, 3000, "Salary", day),
		tx(domain.TransactionExpense, 1200, "Housing", day),
		tx(domain.TransactionExpense, 300, "Food", day),
		tx(domain.TransactionExpense, 100, "Food", day),
	}

	got := Summarize(transactions)

	if !got.TotalIncome.Equal(decimal.NewFromInt(3000)) {
		t.Errorf("TotalIncome = %s, want 3000", got.TotalIncome)
	}
	if !got.TotalExpense.Equal(decimal.NewFromInt(1600)) {
		t.Errorf("TotalExpense = %s, want 1600", got.TotalExpense)
	}
	if !got.Balance.Equal(decimal.NewFromInt(1400)) {
		t.Errorf("Balance = %s, want 1400", got.Balance)
	}

	food := got.Categories["Food"]
	if food.Count != 2 {
		t.Errorf("Food.Count = %d, want 2", food.Count)
	}
	if !food.Total.Equal(decimal.NewFromInt(400)) {
		t.Errorf("Food.Total = %s, want 400", food.Total)
	}
	if food.Percentage != 25 {
		t.Errorf("Food.Percentage = %v, want 25", food.Percentage)
	}

	// Income categories take their share of total income, not expenses.
	salary := got.Categories["Salary"]
	if salary.Percentage != 100 {
		t.Errorf("Salary.Percentage = %v, want 100", salary.Percentage)
	}

	if got.MostFrequentCategory != "Food" {
		t.Errorf("MostFrequentCategory = %q, want %q", got.MostFrequentCategory, "Food")
	}

	if got.LargestTransaction == nil {
		t.Fatal("LargestTransaction is nil")
	}
	if got.LargestTransaction.Category != "Salary" {
		t.Errorf("LargestTransaction.Category = %q, want %q", got.LargestTransaction.Category, "Salary")
	}
	if !got.LargestTransaction.Amount.Equal(decimal.NewFromInt(3000)) {
		t.Errorf("LargestTransaction.Amount = %s, want 3000", got.LargestTransaction.Amount)
	}
}

func TestSummarizeMonthly(t *testing.T) {
	jan := time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC)
	feb := time.Date(2024, time.February, 15, 0, 0, 0, 0, time.UTC)
	mar := time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC)

	transactions := []domain.Transaction{
		tx(domain.TransactionIncome, 3000, "Salary", jan),
		tx(domain.TransactionExpense, 2000, "Housing", jan),
		tx(domain.TransactionIncome, 3000, "Salary", feb),
		tx(domain.TransactionExpense, 1500, "Housing", feb),
		tx(domain.TransactionIncome, 3000, "Salary", mar),
		tx(domain.TransactionExpense, 1000, "Housing", mar),
	}

	got := SummarizeMonthly(transactions)

	if len(got.Months) != 3 {
		t.Fatalf("len(Months) = %d, want 3", len(got.Months))
	}
	wantOrder := []string{"2024-01", "2024-02", "2024-03"}
	for i, want := range wantOrder {
		if got.Months[i].Month != want {
			t.Errorf("Months[%d].Month = %q, want %q", i, got.Months[i].Month, want)
		}
	}
	if !got.Months[0].Balance.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("January balance = %s, want 1000", got.Months[0].Balance)
	}
	if !got.AverageIncome.Equal(decimal.NewFromInt(3000)) {
		t.Errorf("AverageIncome = %s, want 3000", got.AverageIncome)
	}
	if !got.AverageExpense.Equal(decimal.NewFromInt(1500)) {
		t.Errorf("AverageExpense = %s, want 1500", got.AverageExpense)
	}
	// Balance rose from 1000 to 2000 over the window.
	if got.Trend != TrendUp {
		t.Errorf("Trend = %q, want %q", got.Trend, TrendUp)
	}
}

func TestSummarizeMonthly_Trend(t *testing.T) {
	month := func(m time.Month) time.Time {
		return time.Date(2024, m, 1, 0, 0, 0, 0, time.UTC)
	}

	tests := []struct {
		name         string
		transactions []domain.Transaction
		want         Trend
	}{
		{
			name: "down",
			transactions: []domain.Transaction{
				tx(domain.TransactionIncome, 3000, "Salary", month(time.January)),
				tx(domain.TransactionIncome, 2000, "Salary", month(time.February)),
				tx(domain.TransactionIncome, 1000, "Salary", month(time.March)),
			},
			want: TrendDown,
		},
		{
			name: "stable",
			transactions: []domain.Transaction{
				tx(domain.TransactionIncome, 1000, "Salary", month(time.January)),
				tx(domain.TransactionIncome, 5000, "Salary", month(time.February)),
				tx(domain.TransactionIncome, 1000, "Salary", month(time.March)),
			},
			want: TrendStable,
		},
		{
			name: "fewer than three months stays stable",
			transactions: []domain.Transaction{
				tx(domain.TransactionIncome, 1000, "Salary", month(time.January)),
				tx(domain.TransactionIncome, 5000, "Salary", month(time.February)),
			},
			want: TrendStable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SummarizeMonthly(tt.transactions); got.Trend != tt.want {
				t.Errorf("Trend = %q, want %q", got.Trend, tt.want)
			}
		})
	}
}

func TestSummarizeMonthly_Empty(t *testing.T) {
	got := SummarizeMonthly(nil)
	if len(got.Months) != 0 {
		t.Errorf("len(Months) = %d, want 0", len(got.Months))
	}
	if got.Trend != TrendStable {
		t.Errorf("Trend = %q, want %q", got.Trend, TrendStable)
	}
	if !got.AverageIncome.IsZero() || !got.AverageExpense.IsZero() {
		t.Error("averages non-zero for empty input")
	}
}

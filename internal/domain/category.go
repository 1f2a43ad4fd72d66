package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Frequency is how often a fixed subcategory charge recurs.
type Frequency string

const (
	FrequencyDaily      Frequency = "daily"
	FrequencyWeekly     Frequency = "weekly"
	FrequencyBiweekly   Frequency = "biweekly"
	FrequencyMonthly    Frequency = "monthly"
	FrequencyQuarterly  Frequency = "quarterly"
	FrequencySemiannual Frequency = "semiannual"
	FrequencyAnnual     Frequency = "annual"
)

// PlaceholderCategoryNames are reserved "add new category" entries created by
// the mobile UI. They carry no real budget and must never be charged.
var PlaceholderCategoryNames = map[string]bool{
	"Adicione": true,
	"Add":      true,
}

// Subcategory is one budget line under a category. IsFixed marks it as a
// recurring charge handled by the fixed-expense scheduler.
type Subcategory struct {
	Name        string          `json:"name"`
	SpentAmount decimal.Decimal `json:"spentAmount"`
	LimitAmount decimal.Decimal `json:"limitAmount"`
	IsFixed     bool            `json:"isFixed"`
}

// Category groups subcategories and, for fixed categories, carries the
// recurrence frequency applied to its fixed subcategories.
type Category struct {
	ID            string        `json:"id"`
	Name          string        `json:"name"`
	Color         string        `json:"color,omitempty"`
	Frequency     Frequency     `json:"frequency,omitempty"`
	Subcategories []Subcategory `json:"subcategories"`
}

// CategoryConfig is the single per-user budget document: variable and fixed
// category lists plus the salary schedule.
type CategoryConfig struct {
	UserID            string          `json:"userId"`
	Variable          []Category      `json:"variable"`
	Fixed             []Category      `json:"fixed"`
	Salary            decimal.Decimal `json:"salary"`
	Payday            int             `json:"payday"`
	LastSalaryPayment *time.Time      `json:"lastSalaryPayment,omitempty"`
	CreatedAt         time.Time       `json:"createdAt"`
	UpdatedAt         time.Time       `json:"updatedAt"`
}

// Categories returns the configured categories in list order, fixed first.
// The scheduler and the subcategory update endpoint both walk this order.
func (c *CategoryConfig) Categories() []Category {
	out := make([]Category, 0, len(c.Fixed)+len(c.Variable))
	out = append(out, c.Fixed...)
	out = append(out, c.Variable...)
	return out
}

package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType distinguishes money coming in from money going out.
type TransactionType string

const (
	TransactionIncome  TransactionType = "income"
	TransactionExpense TransactionType = "expense"
)

// Valid reports whether t is a known transaction type.
func (t TransactionType) Valid() bool {
	return t == TransactionIncome || t == TransactionExpense
}

// Transaction is a single income or expense entry. Fixed is true only for
// entries generated by the fixed-expense scheduler.
type Transaction struct {
	ID          string          `json:"id"`
	UserID      string          `json:"userId"`
	Type        TransactionType `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category"`
	Subcategory string          `json:"subcategory,omitempty"`
	Date        time.Time       `json:"date"`
	Paid        bool            `json:"paid"`
	Fixed       bool            `json:"fixed"`
	Reminder    bool            `json:"reminder"`
	Ignore      bool            `json:"ignore"`
	Note        string          `json:"note,omitempty"`
	Source      string          `json:"source,omitempty"`
	Wallet      string          `json:"wallet,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// TransactionUpdate is the allow-list of fields the update endpoint accepts.
type TransactionUpdate struct {
	Type     *TransactionType `json:"type,omitempty"`
	Amount   *decimal.Decimal `json:"amount,omitempty"`
	Category *string          `json:"category,omitempty"`
	Date     *time.Time       `json:"date,omitempty"`
	Note     *string          `json:"note,omitempty"`
	Paid     *bool            `json:"paid,omitempty"`
}

// Empty reports whether the update carries no fields at all.
func (u TransactionUpdate) Empty() bool {
	return u.Type == nil && u.Amount == nil && u.Category == nil &&
		u.Date == nil && u.Note == nil && u.Paid == nil
}

// TransactionFilter narrows a transaction search. All criteria are optional
// and combined with AND; Query matches note, category, subcategory and source
// case-insensitively.
type TransactionFilter struct {
	Query     string          `json:"query,omitempty"`
	Type      TransactionType `json:"type,omitempty"`
	Category  string          `json:"category,omitempty"`
	StartDate *time.Time      `json:"startDate,omitempty"`
	EndDate   *time.Time      `json:"endDate,omitempty"`
}

// Matches reports whether tx satisfies every set criterion.
func (f TransactionFilter) Matches(tx Transaction) bool {
	if f.Type != "" && tx.Type != f.Type {
		return false
	}
	if f.Category != "" && tx.Category != f.Category {
		return false
	}
	if f.StartDate != nil && tx.Date.Before(*f.StartDate) {
		return false
	}
	if f.EndDate != nil && tx.Date.After(*f.EndDate) {
		return false
	}
	if f.Query != "" {
		q := strings.ToLower(f.Query)
		haystacks := []string{tx.Note, tx.Category, tx.Subcategory, tx.Source}
		found := false
		for _, h := range haystacks {
			if strings.Contains(strings.ToLower(h), q) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

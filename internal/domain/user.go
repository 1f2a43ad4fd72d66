package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// User is the account document. Balance is mutated by direct balance edits
// (which must stay non-negative) and by fixed-expense debits (which may drive
// it negative).
type User struct {
	ID            string          `json:"id"`
	Email         string          `json:"email"`
	Name          string          `json:"name"`
	Phone         string          `json:"phone,omitempty"`
	Nickname      string          `json:"nickname,omitempty"`
	BirthDate     *time.Time      `json:"birthDate,omitempty"`
	Gender        string          `json:"gender,omitempty"`
	PostalCode    string          `json:"postalCode,omitempty"`
	City          string          `json:"city,omitempty"`
	State         string          `json:"state,omitempty"`
	FinancialGoal string          `json:"financialGoal,omitempty"`
	Balance       decimal.Decimal `json:"balance"`
	PasswordHash  string          `json:"-"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// ProfileUpdate carries the fields a user may change on their own profile.
// Nil pointers mean "leave unchanged".
type ProfileUpdate struct {
	Name          *string    `json:"name,omitempty"`
	Phone         *string    `json:"phone,omitempty"`
	Nickname      *string    `json:"nickname,omitempty"`
	BirthDate     *time.Time `json:"birthDate,omitempty"`
	Gender        *string    `json:"gender,omitempty"`
	PostalCode    *string    `json:"postalCode,omitempty"`
	City          *string    `json:"city,omitempty"`
	State         *string    `json:"state,omitempty"`
	FinancialGoal *string    `json:"financialGoal,omitempty"`
}

// MaxBalance is the ceiling enforced on direct balance edits.
var MaxBalance = decimal.NewFromInt(1_000_000)

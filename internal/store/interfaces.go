package store

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/finman-app/backend/internal/domain"
)

// UserRepository manages user account documents.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	UpdateProfile(ctx context.Context, id string, update domain.ProfileUpdate) error
	// SetBalance overwrites the balance. Callers enforce the non-negative
	// rule for direct edits; the scheduler deliberately does not.
	SetBalance(ctx context.Context, id string, balance decimal.Decimal) error
	Delete(ctx context.Context, id string) error
}

// TransactionRepository manages income/expense entries.
type TransactionRepository interface {
	Create(ctx context.Context, tx *domain.Transaction) error
	GetByID(ctx context.Context, id string) (*domain.Transaction, error)
	// ListByUser returns the user's transactions, newest first.
	ListByUser(ctx context.Context, userID string) ([]domain.Transaction, error)
	Update(ctx context.Context, id string, update domain.TransactionUpdate) error
	Delete(ctx context.Context, id string) error
	DeleteByUser(ctx context.Context, userID string) error
}

// CategoryRepository manages the per-user category configuration document.
type CategoryRepository interface {
	Get(ctx context.Context, userID string) (*domain.CategoryConfig, error)
	Save(ctx context.Context, cfg *domain.CategoryConfig) error
	SetLastSalaryPayment(ctx context.Context, userID string, paidAt time.Time) error
	// ListConfiguredUserIDs returns every user that has a category
	// configuration document. The scheduler worker fans out over this set.
	ListConfiguredUserIDs(ctx context.Context) ([]string, error)
	DeleteByUser(ctx context.Context, userID string) error
}

// ReminderRepository manages reminder documents.
type ReminderRepository interface {
	Create(ctx context.Context, reminder *domain.Reminder) error
	GetByID(ctx context.Context, id string) (*domain.Reminder, error)
	// ListByUser returns the user's reminders sorted by due date ascending.
	ListByUser(ctx context.Context, userID string, filter domain.ReminderFilter) ([]domain.Reminder, error)
	TitleExists(ctx context.Context, userID, title string) (bool, error)
	Update(ctx context.Context, id string, update domain.ReminderUpdate) error
	Delete(ctx context.Context, id string) error
	DeleteByUser(ctx context.Context, userID string) error
}

// GoalRepository manages savings goal documents.
type GoalRepository interface {
	Create(ctx context.Context, goal *domain.Goal) error
	GetByID(ctx context.Context, id string) (*domain.Goal, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Goal, error)
	SetCurrentAmount(ctx context.Context, id string, amount decimal.Decimal) error
	DeleteByUser(ctx context.Context, userID string) error
}

// ExecutionLogRepository manages the fixed-expense execution log: one record
// per (user, category, subcategory) holding the last application time.
type ExecutionLogRepository interface {
	Get(ctx context.Context, key domain.ExecutionKey) (*domain.ExecutionLog, error)
	Upsert(ctx context.Context, entry *domain.ExecutionLog) error
	DeleteByUser(ctx context.Context, userID string) error
}

// Store bundles the repositories over one document database.
//
// WithTransaction runs fn inside an atomic multi-document transaction: every
// repository call made with the ctx passed to fn commits together or not at
// all. The fixed-expense scheduler relies on this to keep its due-check and
// its three writes in a single atomic unit.
type Store interface {
	Users() UserRepository
	Transactions() TransactionRepository
	Categories() CategoryRepository
	Reminders() ReminderRepository
	Goals() GoalRepository
	ExecutionLogs() ExecutionLogRepository
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

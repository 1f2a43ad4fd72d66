// Package scheduler applies recurring fixed-expense charges. For one user it
// walks the configured categories, decides per fixed subcategory whether the
// charge is due today, and applies each due charge exactly once per period:
// one expense transaction, one balance debit, one execution-log stamp,
// committed as a single atomic batch.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/finman-app/backend/internal/domain"
	"github.com/finman-app/backend/internal/store"
)

// Result reports how many charges an invocation applied.
type Result struct {
	Processed int `json:"processed"`
}

// Scheduler runs fixed-expense charge passes for individual users.
type Scheduler struct {
	store store.Store
	log   zerolog.Logger
	now   func() time.Time
}

// New creates a scheduler over the given store.
func New(st store.Store, log zerolog.Logger) *Scheduler {
	return &Scheduler{store: st, log: log, now: time.Now}
}

// NewAt creates a scheduler with a custom clock. Tests use this to pin the
// evaluation date.
func NewAt(st store.Store, log zerolog.Logger, now func() time.Time) *Scheduler {
	return &Scheduler{store: st, log: log, now: now}
}

// ProcessFixedExpenses applies every due fixed charge for the user.
//
// A user without a category configuration is a valid steady state: the call
// succeeds with zero processed. A failure while applying one subcategory's
// charge is logged and skipped; the loop continues and the failed charge is
// picked up on the next invocation, since its execution log was not advanced.
// Only a failure to read the configuration itself aborts the invocation.
func (s *Scheduler) ProcessFixedExpenses(ctx context.Context, userID string) (Result, error) {
	if userID == "" {
		return Result{}, fmt.Errorf("user ID is required")
	}

	cfg, err := s.store.Categories().Get(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return Result{}, nil
	}
	if err != nil {
		return Result{}, fmt.Errorf("load category configuration: %w", err)
	}

	log := s.log.With().Str("user_id", userID).Logger()
	now := s.now()
	processed := 0

	for _, cat := range cfg.Categories() {
		if domain.PlaceholderCategoryNames[cat.Name] {
			continue
		}
		for _, sub := range cat.Subcategories {
			if !eligible(sub) {
				continue
			}

			applied, err := s.applyCharge(ctx, userID, cat, sub, now)
			if err != nil {
				log.Error().
					Err(err).
					Str("category", cat.Name).
					Str("subcategory", sub.Name).
					Msg("Failed to apply fixed expense")
				continue
			}
			if applied {
				log.Info().
					Str("category", cat.Name).
					Str("subcategory", sub.Name).
					Str("amount", sub.LimitAmount.String()).
					Msg("Fixed expense applied")
				processed++
			}
		}
	}

	return Result{Processed: processed}, nil
}

// eligible reports whether a subcategory participates in scheduling at all.
func eligible(sub domain.Subcategory) bool {
	return sub.IsFixed && sub.LimitAmount.IsPositive()
}

// applyCharge re-checks due-ness and applies one charge inside a single store
// transaction. Running the execution-log read and the due decision in the
// same atomic unit as the writes closes the window where two overlapping
// invocations could both observe a stale log and double-charge.
func (s *Scheduler) applyCharge(ctx context.Context, userID string, cat domain.Category, sub domain.Subcategory, now time.Time) (bool, error) {
	key := domain.ExecutionKey{
		UserID:      userID,
		CategoryID:  cat.ID,
		Subcategory: sub.Name,
	}

	applied := false
	err := s.store.WithTransaction(ctx, func(ctx context.Context) error {
		var last *time.Time
		entry, err := s.store.ExecutionLogs().Get(ctx, key)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("read execution log: %w", err)
		}
		if err == nil {
			last = &entry.LastExecution
		}

		if !dueForFrequency(cat.Frequency, last, now) {
			return nil
		}

		user, err := s.store.Users().GetByID(ctx, userID)
		if err != nil {
			return fmt.Errorf("read user: %w", err)
		}

		tx := &domain.Transaction{
			ID:          uuid.New().String(),
			UserID:      userID,
			Type:        domain.TransactionExpense,
			Amount:      sub.LimitAmount,
			Category:    cat.Name,
			Subcategory: sub.Name,
			Date:        now,
			Paid:        true,
			Fixed:       true,
			Note:        fmt.Sprintf("Fixed expense: %s", sub.Name),
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := s.store.Transactions().Create(ctx, tx); err != nil {
			return fmt.Errorf("create transaction: %w", err)
		}

		// Scheduled debits may drive the balance negative: the charge
		// happens whether or not funds cover it.
		if err := s.store.Users().SetBalance(ctx, userID, user.Balance.Sub(sub.LimitAmount)); err != nil {
			return fmt.Errorf("debit balance: %w", err)
		}

		if err := s.store.ExecutionLogs().Upsert(ctx, &domain.ExecutionLog{Key: key, LastExecution: now}); err != nil {
			return fmt.Errorf("update execution log: %w", err)
		}

		applied = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return applied, nil
}

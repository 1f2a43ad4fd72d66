package scheduler_test

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/finman-app/backend/internal/domain"
	"github.com/finman-app/backend/internal/logger"
	"github.com/finman-app/backend/internal/scheduler"
	"github.com/finman-app/backend/internal/store"
	"github.com/finman-app/backend/internal/store/memory"
)

const testUserID = "user-1"

func testClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func seedUser(t *testing.T, st *memory.Store, balance int64) {
	t.Helper()
	err := st.Users().Create(context.Background(), &domain.User{
		ID:      testUserID,
		Email:   "user@example.com",
		Name:    "Test User",
		Balance: decimal.NewFromInt(balance),
	})
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
}

func seedConfig(t *testing.T, st *memory.Store, fixed []domain.Category) {
	t.Helper()
	err := st.Categories().Save(context.Background(), &domain.CategoryConfig{
		UserID: testUserID,
		Fixed:  fixed,
	})
	if err != nil {
		t.Fatalf("seed config: %v", err)
	}
}

func fixedCategory(id, name string, freq domain.Frequency, subs ...domain.Subcategory) domain.Category {
	return domain.Category{ID: id, Name: name, Frequency: freq, Subcategories: subs}
}

func fixedSub(name string, limit int64) domain.Subcategory {
	return domain.Subcategory{Name: name, LimitAmount: decimal.NewFromInt(limit), IsFixed: true}
}

func TestProcessFixedExpenses_NoConfiguration(t *testing.T) {
	st := memory.New()
	seedUser(t, st, 200)
	s := scheduler.New(st, logger.NewWithWriter(io.Discard))

	res, err := s.ProcessFixedExpenses(context.Background(), testUserID)
	if err != nil {
		t.Fatalf("ProcessFixedExpenses: %v", err)
	}
	if res.Processed != 0 {
		t.Errorf("Processed = %d, want 0", res.Processed)
	}

	txs, _ := st.Transactions().ListByUser(context.Background(), testUserID)
	if len(txs) != 0 {
		t.Errorf("expected no transactions, got %d", len(txs))
	}
}

func TestProcessFixedExpenses_BootstrapDailyCharge(t *testing.T) {
	st := memory.New()
	seedUser(t, st, 200)
	seedConfig(t, st, []domain.Category{
		fixedCategory("cat-1", "Housing", domain.FrequencyDaily, fixedSub("Rent", 50)),
	})

	now := time.Date(2024, time.March, 14, 9, 0, 0, 0, time.UTC)
	s := scheduler.NewAt(st, logger.NewWithWriter(io.Discard), testClock(now))

	res, err := s.ProcessFixedExpenses(context.Background(), testUserID)
	if err != nil {
		t.Fatalf("ProcessFixedExpenses: %v", err)
	}
	if res.Processed != 1 {
		t.Fatalf("Processed = %d, want 1", res.Processed)
	}

	ctx := context.Background()

	user, err := st.Users().GetByID(ctx, testUserID)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if !user.Balance.Equal(decimal.NewFromInt(150)) {
		t.Errorf("balance = %s, want 150", user.Balance)
	}

	txs, err := st.Transactions().ListByUser(ctx, testUserID)
	if err != nil {
		t.Fatalf("list transactions: %v", err)
	}
	if len(txs) != 1 {
		t.Fatalf("expected 1 transaction, got %d", len(txs))
	}
	tx := txs[0]
	if tx.Type != domain.TransactionExpense || !tx.Amount.Equal(decimal.NewFromInt(50)) {
		t.Errorf("transaction = %s %s, want expense 50", tx.Type, tx.Amount)
	}
	if !tx.Fixed || !tx.Paid {
		t.Errorf("transaction fixed/paid = %v/%v, want true/true", tx.Fixed, tx.Paid)
	}
	if tx.Category != "Housing" || tx.Subcategory != "Rent" {
		t.Errorf("transaction category = %s/%s, want Housing/Rent", tx.Category, tx.Subcategory)
	}
	if tx.Note != "Fixed expense: Rent" {
		t.Errorf("transaction note = %q", tx.Note)
	}

	key := domain.ExecutionKey{UserID: testUserID, CategoryID: "cat-1", Subcategory: "Rent"}
	entry, err := st.ExecutionLogs().Get(ctx, key)
	if err != nil {
		t.Fatalf("get execution log: %v", err)
	}
	if !entry.LastExecution.Equal(now) {
		t.Errorf("lastExecution = %v, want %v", entry.LastExecution, now)
	}
}

func TestProcessFixedExpenses_SecondRunIsNoop(t *testing.T) {
	st := memory.New()
	seedUser(t, st, 200)
	seedConfig(t, st, []domain.Category{
		fixedCategory("cat-1", "Housing", domain.FrequencyDaily, fixedSub("Rent", 50)),
	})

	now := time.Date(2024, time.March, 14, 9, 0, 0, 0, time.UTC)
	s := scheduler.NewAt(st, logger.NewWithWriter(io.Discard), testClock(now))
	ctx := context.Background()

	first, err := s.ProcessFixedExpenses(ctx, testUserID)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	if first.Processed != 1 {
		t.Fatalf("first run Processed = %d, want 1", first.Processed)
	}

	second, err := s.ProcessFixedExpenses(ctx, testUserID)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if second.Processed != 0 {
		t.Errorf("second run Processed = %d, want 0", second.Processed)
	}

	user, _ := st.Users().GetByID(ctx, testUserID)
	if !user.Balance.Equal(decimal.NewFromInt(150)) {
		t.Errorf("balance after second run = %s, want 150", user.Balance)
	}
}

func TestProcessFixedExpenses_IneligibleSubcategories(t *testing.T) {
	st := memory.New()
	seedUser(t, st, 200)
	seedConfig(t, st, []domain.Category{
		fixedCategory("cat-1", "Housing", domain.FrequencyDaily,
			domain.Subcategory{Name: "NotFixed", LimitAmount: decimal.NewFromInt(40), IsFixed: false},
			domain.Subcategory{Name: "ZeroLimit", LimitAmount: decimal.Zero, IsFixed: true},
			domain.Subcategory{Name: "NegativeLimit", LimitAmount: decimal.NewFromInt(-10), IsFixed: true},
		),
	})

	s := scheduler.New(st, logger.NewWithWriter(io.Discard))

	res, err := s.ProcessFixedExpenses(context.Background(), testUserID)
	if err != nil {
		t.Fatalf("ProcessFixedExpenses: %v", err)
	}
	if res.Processed != 0 {
		t.Errorf("Processed = %d, want 0", res.Processed)
	}
}

func TestProcessFixedExpenses_PlaceholderCategorySkipped(t *testing.T) {
	st := memory.New()
	seedUser(t, st, 200)
	seedConfig(t, st, []domain.Category{
		fixedCategory("cat-add", "Adicione", domain.FrequencyDaily, fixedSub("Anything", 30)),
	})

	s := scheduler.New(st, logger.NewWithWriter(io.Discard))

	res, err := s.ProcessFixedExpenses(context.Background(), testUserID)
	if err != nil {
		t.Fatalf("ProcessFixedExpenses: %v", err)
	}
	if res.Processed != 0 {
		t.Errorf("Processed = %d, want 0 for placeholder category", res.Processed)
	}
}

func TestProcessFixedExpenses_AtomicRollback(t *testing.T) {
	st := memory.New()
	seedUser(t, st, 200)
	seedConfig(t, st, []domain.Category{
		fixedCategory("cat-1", "Housing", domain.FrequencyDaily, fixedSub("Rent", 50)),
	})

	// Force the balance debit to fail after the transaction insert.
	st.SetBalanceErr = errors.New("store unavailable")

	s := scheduler.New(st, logger.NewWithWriter(io.Discard))
	ctx := context.Background()

	res, err := s.ProcessFixedExpenses(ctx, testUserID)
	if err != nil {
		t.Fatalf("ProcessFixedExpenses: %v", err)
	}
	if res.Processed != 0 {
		t.Errorf("Processed = %d, want 0", res.Processed)
	}

	// Neither the transaction nor the log write may survive the rollback.
	txs, _ := st.Transactions().ListByUser(ctx, testUserID)
	if len(txs) != 0 {
		t.Errorf("expected rollback to remove the transaction, found %d", len(txs))
	}
	user, _ := st.Users().GetByID(ctx, testUserID)
	if !user.Balance.Equal(decimal.NewFromInt(200)) {
		t.Errorf("balance = %s, want untouched 200", user.Balance)
	}
	key := domain.ExecutionKey{UserID: testUserID, CategoryID: "cat-1", Subcategory: "Rent"}
	if _, err := st.ExecutionLogs().Get(ctx, key); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected no execution log after rollback, got err=%v", err)
	}

	// The failed charge stays due and applies cleanly on the next run.
	res, err = s.ProcessFixedExpenses(ctx, testUserID)
	if err != nil {
		t.Fatalf("retry run: %v", err)
	}
	if res.Processed != 1 {
		t.Errorf("retry Processed = %d, want 1", res.Processed)
	}
}

func TestProcessFixedExpenses_FailureDoesNotAbortLoop(t *testing.T) {
	st := memory.New()
	seedUser(t, st, 200)
	seedConfig(t, st, []domain.Category{
		fixedCategory("cat-1", "Housing", domain.FrequencyDaily,
			fixedSub("Rent", 50),
			fixedSub("Internet", 20),
		),
	})

	// First insert fails, second succeeds.
	st.CreateTransactionErr = errors.New("write conflict")

	s := scheduler.New(st, logger.NewWithWriter(io.Discard))

	res, err := s.ProcessFixedExpenses(context.Background(), testUserID)
	if err != nil {
		t.Fatalf("ProcessFixedExpenses: %v", err)
	}
	if res.Processed != 1 {
		t.Errorf("Processed = %d, want 1 (second subcategory still applies)", res.Processed)
	}

	user, _ := st.Users().GetByID(context.Background(), testUserID)
	if !user.Balance.Equal(decimal.NewFromInt(180)) {
		t.Errorf("balance = %s, want 180", user.Balance)
	}
}

func TestProcessFixedExpenses_MonthlyAnchoredToDayOne(t *testing.T) {
	st := memory.New()
	seedUser(t, st, 500)
	seedConfig(t, st, []domain.Category{
		fixedCategory("cat-1", "Subscriptions", domain.FrequencyMonthly, fixedSub("Streaming", 25)),
	})
	ctx := context.Background()

	lastRun := time.Date(2024, time.January, 1, 8, 0, 0, 0, time.UTC)
	err := st.ExecutionLogs().Upsert(ctx, &domain.ExecutionLog{
		Key:           domain.ExecutionKey{UserID: testUserID, CategoryID: "cat-1", Subcategory: "Streaming"},
		LastExecution: lastRun,
	})
	if err != nil {
		t.Fatalf("seed execution log: %v", err)
	}

	// Mid-month: not due regardless of elapsed time.
	midMonth := scheduler.NewAt(st, logger.NewWithWriter(io.Discard), testClock(time.Date(2024, time.January, 15, 8, 0, 0, 0, time.UTC)))
	res, err := midMonth.ProcessFixedExpenses(ctx, testUserID)
	if err != nil {
		t.Fatalf("mid-month run: %v", err)
	}
	if res.Processed != 0 {
		t.Errorf("mid-month Processed = %d, want 0", res.Processed)
	}

	// First of the next month with 31 elapsed days: due.
	firstOfMonth := scheduler.NewAt(st, logger.NewWithWriter(io.Discard), testClock(time.Date(2024, time.February, 1, 8, 0, 0, 0, time.UTC)))
	res, err = firstOfMonth.ProcessFixedExpenses(ctx, testUserID)
	if err != nil {
		t.Fatalf("first-of-month run: %v", err)
	}
	if res.Processed != 1 {
		t.Errorf("first-of-month Processed = %d, want 1", res.Processed)
	}
}

package categories_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/finman-app/backend/internal/categories"
	"github.com/finman-app/backend/internal/domain"
	"github.com/finman-app/backend/internal/store/memory"
)

func fixedAt(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func testConfig(userID string) *domain.CategoryConfig {
	return &domain.CategoryConfig{
		UserID: userID,
		Payday: 5,
		Salary: decimal.NewFromInt(3000),
		Fixed: []domain.Category{
			{
				ID:        "cat-housing",
				Name:      "Housing",
				Frequency: domain.FrequencyMonthly,
				Subcategories: []domain.Subcategory{
					{Name: "Rent", LimitAmount: decimal.NewFromInt(1200), IsFixed: true},
				},
			},
		},
		Variable: []domain.Category{
			{
				ID:   "cat-food",
				Name: "Food",
				Subcategories: []domain.Subcategory{
					{Name: "Groceries", LimitAmount: decimal.NewFromInt(400)},
				},
			},
		},
	}
}

func TestGet_UnconfiguredUserGetsEmptyConfig(t *testing.T) {
	st := memory.New()
	svc := categories.NewService(st, time.Minute)

	cfg, cached, err := svc.Get(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if cached {
		t.Error("Get() cached = true on first read")
	}
	if cfg.UserID != "user-1" {
		t.Errorf("UserID = %q, want %q", cfg.UserID, "user-1")
	}
	if len(cfg.Fixed) != 0 || len(cfg.Variable) != 0 {
		t.Errorf("expected empty category lists, got fixed=%d variable=%d", len(cfg.Fixed), len(cfg.Variable))
	}
}

func TestGet_SecondReadIsCached(t *testing.T) {
	st := memory.New()
	svc := categories.NewService(st, time.Minute)
	ctx := context.Background()

	if err := svc.Save(ctx, "user-1", testConfig("user-1")); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	if _, cached, err := svc.Get(ctx, "user-1"); err != nil || cached {
		t.Fatalf("first Get() cached=%v err=%v, want cached=false err=nil", cached, err)
	}
	if _, cached, err := svc.Get(ctx, "user-1"); err != nil || !cached {
		t.Errorf("second Get() cached=%v err=%v, want cached=true err=nil", cached, err)
	}
}

func TestSave_InvalidatesCache(t *testing.T) {
	st := memory.New()
	svc := categories.NewService(st, time.Minute)
	ctx := context.Background()

	if err := svc.Save(ctx, "user-1", testConfig("user-1")); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if _, _, err := svc.Get(ctx, "user-1"); err != nil {
		t.Fatalf("Get() error = %v", err)
	}

	updated := testConfig("user-1")
	updated.Salary = decimal.NewFromInt(4500)
	if err := svc.Save(ctx, "user-1", updated); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	cfg, cached, err := svc.Get(ctx, "user-1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if cached {
		t.Error("Get() after Save() served a stale cache entry")
	}
	if !cfg.Salary.Equal(decimal.NewFromInt(4500)) {
		t.Errorf("Salary = %s, want 4500", cfg.Salary)
	}
}

func TestSave_Validation(t *testing.T) {
	st := memory.New()
	svc := categories.NewService(st, time.Minute)
	ctx := context.Background()

	bad := testConfig("user-1")
	bad.Payday = 0
	if err := svc.Save(ctx, "user-1", bad); err == nil {
		t.Error("Save() with payday 0 succeeded, want error")
	}

	bad = testConfig("user-1")
	bad.Payday = 32
	if err := svc.Save(ctx, "user-1", bad); err == nil {
		t.Error("Save() with payday 32 succeeded, want error")
	}

	bad = testConfig("user-1")
	bad.Salary = decimal.NewFromInt(-1)
	if err := svc.Save(ctx, "user-1", bad); err == nil {
		t.Error("Save() with negative salary succeeded, want error")
	}
}

func TestUpdateSubcategory(t *testing.T) {
	st := memory.New()
	svc := categories.NewService(st, time.Minute)
	ctx := context.Background()

	if err := svc.Save(ctx, "user-1", testConfig("user-1")); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	spent := decimal.NewFromInt(250)
	err := svc.UpdateSubcategory(ctx, "user-1", "cat-food", "Groceries", categories.SubcategoryUpdate{
		SpentAmount: &spent,
	})
	if err != nil {
		t.Fatalf("UpdateSubcategory() error = %v", err)
	}

	cfg, _, err := svc.Get(ctx, "user-1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	got := cfg.Variable[0].Subcategories[0]
	if !got.SpentAmount.Equal(spent) {
		t.Errorf("SpentAmount = %s, want %s", got.SpentAmount, spent)
	}
	if !got.LimitAmount.Equal(decimal.NewFromInt(400)) {
		t.Errorf("LimitAmount changed to %s, want untouched 400", got.LimitAmount)
	}
}

func TestUpdateSubcategory_NotFound(t *testing.T) {
	st := memory.New()
	svc := categories.NewService(st, time.Minute)
	ctx := context.Background()

	if err := svc.Save(ctx, "user-1", testConfig("user-1")); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	err := svc.UpdateSubcategory(ctx, "user-1", "no-such-cat", "Rent", categories.SubcategoryUpdate{})
	if !errors.Is(err, categories.ErrCategoryNotFound) {
		t.Errorf("unknown category: err = %v, want ErrCategoryNotFound", err)
	}

	err = svc.UpdateSubcategory(ctx, "user-1", "cat-housing", "no-such-sub", categories.SubcategoryUpdate{})
	if !errors.Is(err, categories.ErrSubcategoryNotFound) {
		t.Errorf("unknown subcategory: err = %v, want ErrSubcategoryNotFound", err)
	}
}

func TestCheckSalary(t *testing.T) {
	payday5 := time.Date(2024, time.March, 5, 9, 0, 0, 0, time.UTC)
	lastMonth := time.Date(2024, time.February, 5, 9, 0, 0, 0, time.UTC)
	sameMonth := time.Date(2024, time.March, 5, 8, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		now         time.Time
		lastPayment *time.Time
		want        bool
	}{
		{"payday and never paid", payday5, nil, true},
		{"payday and paid last month", payday5, &lastMonth, true},
		{"payday but already paid this month", payday5, &sameMonth, false},
		{"not payday", payday5.AddDate(0, 0, 3), nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := memory.New()
			svc := categories.NewServiceAt(st, time.Minute, fixedAt(tt.now))
			ctx := context.Background()

			cfg := testConfig("user-1")
			cfg.CreatedAt = tt.now
			if err := st.Categories().Save(ctx, cfg); err != nil {
				t.Fatalf("seed Save() error = %v", err)
			}
			if tt.lastPayment != nil {
				if err := st.Categories().SetLastSalaryPayment(ctx, "user-1", *tt.lastPayment); err != nil {
					t.Fatalf("seed last payment: %v", err)
				}
			}

			status, err := svc.CheckSalary(ctx, "user-1")
			if err != nil {
				t.Fatalf("CheckSalary() error = %v", err)
			}
			if status.ShouldReceive != tt.want {
				t.Errorf("ShouldReceive = %v, want %v", status.ShouldReceive, tt.want)
			}
		})
	}
}

func TestCheckSalary_Unconfigured(t *testing.T) {
	st := memory.New()
	svc := categories.NewService(st, time.Minute)

	status, err := svc.CheckSalary(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("CheckSalary() error = %v", err)
	}
	if status.ShouldReceive {
		t.Error("ShouldReceive = true for unconfigured user")
	}
}

func TestConfirmSalary(t *testing.T) {
	now := time.Date(2024, time.March, 5, 9, 0, 0, 0, time.UTC)
	st := memory.New()
	svc := categories.NewServiceAt(st, time.Minute, fixedAt(now))
	ctx := context.Background()

	cfg := testConfig("user-1")
	if err := st.Categories().Save(ctx, cfg); err != nil {
		t.Fatalf("seed Save() error = %v", err)
	}

	if err := svc.ConfirmSalary(ctx, "user-1"); err != nil {
		t.Fatalf("ConfirmSalary() error = %v", err)
	}

	got, err := st.Categories().Get(ctx, "user-1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.LastSalaryPayment == nil || !got.LastSalaryPayment.Equal(now) {
		t.Errorf("LastSalaryPayment = %v, want %v", got.LastSalaryPayment, now)
	}

	status, err := svc.CheckSalary(ctx, "user-1")
	if err != nil {
		t.Fatalf("CheckSalary() error = %v", err)
	}
	if status.ShouldReceive {
		t.Error("ShouldReceive = true right after confirmation")
	}
}

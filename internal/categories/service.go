// Package categories serves the per-user budget configuration through a TTL
// cache and implements the salary schedule checks.
package categories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/finman-app/backend/internal/cache"
	"github.com/finman-app/backend/internal/domain"
	"github.com/finman-app/backend/internal/store"
)

var (
	ErrCategoryNotFound    = errors.New("category not found")
	ErrSubcategoryNotFound = errors.New("subcategory not found")
)

// SubcategoryUpdate carries the fields of one subcategory to overwrite.
// Nil fields are left alone.
type SubcategoryUpdate struct {
	SpentAmount *decimal.Decimal `json:"spentAmount,omitempty"`
	LimitAmount *decimal.Decimal `json:"limitAmount,omitempty"`
	IsFixed     *bool            `json:"isFixed,omitempty"`
}

// SalaryStatus is the answer to "should the user receive salary today".
type SalaryStatus struct {
	ShouldReceive bool            `json:"shouldReceive"`
	Salary        decimal.Decimal `json:"salary"`
	Payday        int             `json:"payday"`
}

// Service wraps the category repository with caching and validation. Reads
// hit the cache; every write invalidates the user's entry.
type Service struct {
	store store.Store
	cache *cache.Cache[*domain.CategoryConfig]
	now   func() time.Time
}

func NewService(st store.Store, ttl time.Duration) *Service {
	return &Service{store: st, cache: cache.New[*domain.CategoryConfig](ttl), now: time.Now}
}

// NewServiceAt is NewService with an injectable clock for tests.
func NewServiceAt(st store.Store, ttl time.Duration, now func() time.Time) *Service {
	return &Service{store: st, cache: cache.NewWithClock[*domain.CategoryConfig](ttl, now), now: now}
}

// Get returns the user's configuration, and whether it came from the cache.
// A user with no configuration yet gets an empty document, not an error.
func (s *Service) Get(ctx context.Context, userID string) (*domain.CategoryConfig, bool, error) {
	if cfg, ok := s.cache.Get(userID); ok {
		return cfg, true, nil
	}

	cfg, err := s.store.Categories().Get(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return &domain.CategoryConfig{
			UserID:   userID,
			Variable: []domain.Category{},
			Fixed:    []domain.Category{},
		}, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	s.cache.Set(userID, cfg)
	return cfg, false, nil
}

// Save validates and persists the full configuration, stamping the salary as
// received now. The cache entry is dropped so the next read sees the write.
func (s *Service) Save(ctx context.Context, userID string, cfg *domain.CategoryConfig) error {
	if cfg.Payday < 1 || cfg.Payday > 31 {
		return fmt.Errorf("payday must be a day of month between 1 and 31, got %d", cfg.Payday)
	}
	if cfg.Salary.IsNegative() {
		return fmt.Errorf("salary cannot be negative")
	}

	now := s.now()
	cfg.UserID = userID
	cfg.LastSalaryPayment = &now
	cfg.UpdatedAt = now
	if cfg.CreatedAt.IsZero() {
		cfg.CreatedAt = now
	}
	if cfg.Variable == nil {
		cfg.Variable = []domain.Category{}
	}
	if cfg.Fixed == nil {
		cfg.Fixed = []domain.Category{}
	}

	if err := s.store.Categories().Save(ctx, cfg); err != nil {
		return err
	}
	s.cache.Invalidate(userID)
	return nil
}

// UpdateSubcategory overwrites fields on one subcategory, located by its
// parent category ID and its name, and persists the whole document.
func (s *Service) UpdateSubcategory(ctx context.Context, userID, categoryID, name string, update SubcategoryUpdate) error {
	cfg, err := s.store.Categories().Get(ctx, userID)
	if err != nil {
		return err
	}

	var cat *domain.Category
	for _, cats := range [][]domain.Category{cfg.Fixed, cfg.Variable} {
		for i := range cats {
			if cats[i].ID == categoryID {
				cat = &cats[i]
				break
			}
		}
		if cat != nil {
			break
		}
	}
	if cat == nil {
		return ErrCategoryNotFound
	}

	var sub *domain.Subcategory
	for j := range cat.Subcategories {
		if cat.Subcategories[j].Name == name {
			sub = &cat.Subcategories[j]
			break
		}
	}
	if sub == nil {
		return ErrSubcategoryNotFound
	}

	if update.SpentAmount != nil {
		sub.SpentAmount = *update.SpentAmount
	}
	if update.LimitAmount != nil {
		sub.LimitAmount = *update.LimitAmount
	}
	if update.IsFixed != nil {
		sub.IsFixed = *update.IsFixed
	}

	cfg.UpdatedAt = s.now()
	if err := s.store.Categories().Save(ctx, cfg); err != nil {
		return err
	}
	s.cache.Invalidate(userID)
	return nil
}

// CheckSalary reports whether today is the user's payday and the salary has
// not been received yet this month. Users without a configured salary are
// never due.
func (s *Service) CheckSalary(ctx context.Context, userID string) (SalaryStatus, error) {
	cfg, err := s.store.Categories().Get(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return SalaryStatus{}, nil
	}
	if err != nil {
		return SalaryStatus{}, err
	}
	if cfg.Payday == 0 {
		return SalaryStatus{}, nil
	}

	now := s.now()
	due := now.Day() == cfg.Payday
	if due && cfg.LastSalaryPayment != nil {
		last := *cfg.LastSalaryPayment
		if last.Month() == now.Month() && last.Year() == now.Year() {
			due = false
		}
	}

	return SalaryStatus{
		ShouldReceive: due,
		Salary:        cfg.Salary,
		Payday:        cfg.Payday,
	}, nil
}

// ConfirmSalary stamps the salary as received now.
func (s *Service) ConfirmSalary(ctx context.Context, userID string) error {
	if err := s.store.Categories().SetLastSalaryPayment(ctx, userID, s.now()); err != nil {
		return err
	}
	s.cache.Invalidate(userID)
	return nil
}

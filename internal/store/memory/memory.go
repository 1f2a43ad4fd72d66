// Package memory is an in-memory implementation of the store interfaces.
// It backs package tests: WithTransaction snapshots all collections and
// rolls back on error, mirroring the all-or-nothing semantics of the
// MongoDB store, and one-shot error hooks let tests force a failure in the
// middle of a multi-document write.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/finman-app/backend/internal/domain"
	"github.com/finman-app/backend/internal/store"
)

type record[T any] struct {
	value T
	seq   int
}

type data struct {
	users        map[string]domain.User
	transactions map[string]record[domain.Transaction]
	configs      map[string]domain.CategoryConfig
	reminders    map[string]record[domain.Reminder]
	goals        map[string]record[domain.Goal]
	executions   map[domain.ExecutionKey]time.Time
	seq          int
}

func newData() *data {
	return &data{
		users:        make(map[string]domain.User),
		transactions: make(map[string]record[domain.Transaction]),
		configs:      make(map[string]domain.CategoryConfig),
		reminders:    make(map[string]record[domain.Reminder]),
		goals:        make(map[string]record[domain.Goal]),
		executions:   make(map[domain.ExecutionKey]time.Time),
	}
}

func (d *data) clone() *data {
	c := newData()
	c.seq = d.seq
	for k, v := range d.users {
		c.users[k] = cloneUser(v)
	}
	for k, v := range d.transactions {
		c.transactions[k] = v
	}
	for k, v := range d.configs {
		c.configs[k] = cloneConfig(v)
	}
	for k, v := range d.reminders {
		c.reminders[k] = v
	}
	for k, v := range d.goals {
		c.goals[k] = v
	}
	for k, v := range d.executions {
		c.executions[k] = v
	}
	return c
}

func cloneUser(u domain.User) domain.User {
	if u.BirthDate != nil {
		bd := *u.BirthDate
		u.BirthDate = &bd
	}
	return u
}

func cloneConfig(cfg domain.CategoryConfig) domain.CategoryConfig {
	cfg.Variable = cloneCategories(cfg.Variable)
	cfg.Fixed = cloneCategories(cfg.Fixed)
	if cfg.LastSalaryPayment != nil {
		last := *cfg.LastSalaryPayment
		cfg.LastSalaryPayment = &last
	}
	return cfg
}

func cloneCategories(cats []domain.Category) []domain.Category {
	out := make([]domain.Category, len(cats))
	for i, c := range cats {
		subs := make([]domain.Subcategory, len(c.Subcategories))
		copy(subs, c.Subcategories)
		c.Subcategories = subs
		out[i] = c
	}
	return out
}

// Store is an in-memory document store. Not intended for production use.
type Store struct {
	mu   sync.Mutex
	txMu sync.Mutex
	data *data

	// One-shot error hooks, consumed by the next matching call. Tests use
	// them to force a failure between the writes of an atomic batch.
	CreateTransactionErr error
	SetBalanceErr        error
	UpsertExecutionErr   error
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{data: newData()}
}

func (s *Store) Users() store.UserRepository                 { return &userRepo{s} }
func (s *Store) Transactions() store.TransactionRepository   { return &transactionRepo{s} }
func (s *Store) Categories() store.CategoryRepository        { return &categoryRepo{s} }
func (s *Store) Reminders() store.ReminderRepository         { return &reminderRepo{s} }
func (s *Store) Goals() store.GoalRepository                 { return &goalRepo{s} }
func (s *Store) ExecutionLogs() store.ExecutionLogRepository { return &executionRepo{s} }

// WithTransaction snapshots the whole store, runs fn and restores the
// snapshot if fn fails. Transactions are serialized against each other.
func (s *Store) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	snapshot := s.data.clone()
	s.mu.Unlock()

	if err := fn(ctx); err != nil {
		s.mu.Lock()
		s.data = snapshot
		s.mu.Unlock()
		return err
	}
	return nil
}

var _ store.Store = (*Store)(nil)

func takeErr(slot *error) error {
	err := *slot
	*slot = nil
	return err
}

type userRepo struct{ s *Store }

func (r *userRepo) Create(ctx context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.data.users[user.ID]; ok {
		return store.ErrDuplicate
	}
	for _, u := range r.s.data.users {
		if u.Email == user.Email {
			return store.ErrDuplicate
		}
	}
	r.s.data.users[user.ID] = cloneUser(*user)
	return nil
}

func (r *userRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.data.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	u = cloneUser(u)
	return &u, nil
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.data.users {
		if u.Email == email {
			u = cloneUser(u)
			return &u, nil
		}
	}
	return nil, store.ErrNotFound
}

func (r *userRepo) UpdateProfile(ctx context.Context, id string, update domain.ProfileUpdate) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.data.users[id]
	if !ok {
		return store.ErrNotFound
	}
	if update.Name != nil {
		u.Name = *update.Name
	}
	if update.Phone != nil {
		u.Phone = *update.Phone
	}
	if update.Nickname != nil {
		u.Nickname = *update.Nickname
	}
	if update.BirthDate != nil {
		bd := *update.BirthDate
		u.BirthDate = &bd
	}
	if update.Gender != nil {
		u.Gender = *update.Gender
	}
	if update.PostalCode != nil {
		u.PostalCode = *update.PostalCode
	}
	if update.City != nil {
		u.City = *update.City
	}
	if update.State != nil {
		u.State = *update.State
	}
	if update.FinancialGoal != nil {
		u.FinancialGoal = *update.FinancialGoal
	}
	u.UpdatedAt = time.Now().UTC()
	r.s.data.users[id] = u
	return nil
}

func (r *userRepo) SetBalance(ctx context.Context, id string, balance decimal.Decimal) error {
	if err := takeErr(&r.s.SetBalanceErr); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.data.users[id]
	if !ok {
		return store.ErrNotFound
	}
	u.Balance = balance
	u.UpdatedAt = time.Now().UTC()
	r.s.data.users[id] = u
	return nil
}

func (r *userRepo) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.data.users[id]; !ok {
		return store.ErrNotFound
	}
	delete(r.s.data.users, id)
	return nil
}

type transactionRepo struct{ s *Store }

func (r *transactionRepo) Create(ctx context.Context, tx *domain.Transaction) error {
	if err := takeErr(&r.s.CreateTransactionErr); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.data.transactions[tx.ID]; ok {
		return store.ErrDuplicate
	}
	r.s.data.seq++
	r.s.data.transactions[tx.ID] = record[domain.Transaction]{value: *tx, seq: r.s.data.seq}
	return nil
}

func (r *transactionRepo) GetByID(ctx context.Context, id string) (*domain.Transaction, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rec, ok := r.s.data.transactions[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	tx := rec.value
	return &tx, nil
}

func (r *transactionRepo) ListByUser(ctx context.Context, userID string) ([]domain.Transaction, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var recs []record[domain.Transaction]
	for _, rec := range r.s.data.transactions {
		if rec.value.UserID == userID {
			recs = append(recs, rec)
		}
	}
	// Newest first, matching the MongoDB sort on created_at.
	sort.Slice(recs, func(i, j int) bool { return recs[i].seq > recs[j].seq })
	out := make([]domain.Transaction, len(recs))
	for i, rec := range recs {
		out[i] = rec.value
	}
	return out, nil
}

func (r *transactionRepo) Update(ctx context.Context, id string, update domain.TransactionUpdate) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rec, ok := r.s.data.transactions[id]
	if !ok {
		return store.ErrNotFound
	}
	tx := rec.value
	if update.Type != nil {
		tx.Type = *update.Type
	}
	if update.Amount != nil {
		tx.Amount = *update.Amount
	}
	if update.Category != nil {
		tx.Category = *update.Category
	}
	if update.Date != nil {
		tx.Date = *update.Date
	}
	if update.Note != nil {
		tx.Note = *update.Note
	}
	if update.Paid != nil {
		tx.Paid = *update.Paid
	}
	tx.UpdatedAt = time.Now().UTC()
	rec.value = tx
	r.s.data.transactions[id] = rec
	return nil
}

func (r *transactionRepo) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.data.transactions[id]; !ok {
		return store.ErrNotFound
	}
	delete(r.s.data.transactions, id)
	return nil
}

func (r *transactionRepo) DeleteByUser(ctx context.Context, userID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, rec := range r.s.data.transactions {
		if rec.value.UserID == userID {
			delete(r.s.data.transactions, id)
		}
	}
	return nil
}

type categoryRepo struct{ s *Store }

func (r *categoryRepo) Get(ctx context.Context, userID string) (*domain.CategoryConfig, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cfg, ok := r.s.data.configs[userID]
	if !ok {
		return nil, store.ErrNotFound
	}
	cfg = cloneConfig(cfg)
	return &cfg, nil
}

func (r *categoryRepo) Save(ctx context.Context, cfg *domain.CategoryConfig) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.data.configs[cfg.UserID] = cloneConfig(*cfg)
	return nil
}

func (r *categoryRepo) SetLastSalaryPayment(ctx context.Context, userID string, paidAt time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cfg, ok := r.s.data.configs[userID]
	if !ok {
		return store.ErrNotFound
	}
	cfg.LastSalaryPayment = &paidAt
	cfg.UpdatedAt = time.Now().UTC()
	r.s.data.configs[userID] = cfg
	return nil
}

func (r *categoryRepo) ListConfiguredUserIDs(ctx context.Context) ([]string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	ids := make([]string, 0, len(r.s.data.configs))
	for id := range r.s.data.configs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (r *categoryRepo) DeleteByUser(ctx context.Context, userID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.data.configs, userID)
	return nil
}

type reminderRepo struct{ s *Store }

func (r *reminderRepo) Create(ctx context.Context, reminder *domain.Reminder) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.data.reminders[reminder.ID]; ok {
		return store.ErrDuplicate
	}
	r.s.data.seq++
	r.s.data.reminders[reminder.ID] = record[domain.Reminder]{value: *reminder, seq: r.s.data.seq}
	return nil
}

func (r *reminderRepo) GetByID(ctx context.Context, id string) (*domain.Reminder, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rec, ok := r.s.data.reminders[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	rem := rec.value
	return &rem, nil
}

func (r *reminderRepo) ListByUser(ctx context.Context, userID string, filter domain.ReminderFilter) ([]domain.Reminder, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.Reminder
	for _, rec := range r.s.data.reminders {
		rem := rec.value
		if rem.UserID != userID {
			continue
		}
		if filter.Completed != nil && rem.IsCompleted != *filter.Completed {
			continue
		}
		if filter.Priority != "" && rem.Priority != filter.Priority {
			continue
		}
		out = append(out, rem)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DueDate.Before(out[j].DueDate) })
	if filter.Limit > 0 && filter.Limit < len(out) {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (r *reminderRepo) TitleExists(ctx context.Context, userID, title string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, rec := range r.s.data.reminders {
		if rec.value.UserID == userID && rec.value.Title == title {
			return true, nil
		}
	}
	return false, nil
}

func (r *reminderRepo) Update(ctx context.Context, id string, update domain.ReminderUpdate) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rec, ok := r.s.data.reminders[id]
	if !ok {
		return store.ErrNotFound
	}
	rem := rec.value
	if update.Title != nil {
		rem.Title = *update.Title
	}
	if update.Description != nil {
		rem.Description = *update.Description
	}
	if update.DueDate != nil {
		rem.DueDate = *update.DueDate
	}
	if update.Priority != nil {
		rem.Priority = *update.Priority
	}
	if update.Category != nil {
		rem.Category = *update.Category
	}
	if update.IsCompleted != nil {
		rem.IsCompleted = *update.IsCompleted
	}
	rem.UpdatedAt = time.Now().UTC()
	rec.value = rem
	r.s.data.reminders[id] = rec
	return nil
}

func (r *reminderRepo) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.data.reminders[id]; !ok {
		return store.ErrNotFound
	}
	delete(r.s.data.reminders, id)
	return nil
}

func (r *reminderRepo) DeleteByUser(ctx context.Context, userID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, rec := range r.s.data.reminders {
		if rec.value.UserID == userID {
			delete(r.s.data.reminders, id)
		}
	}
	return nil
}

type goalRepo struct{ s *Store }

func (r *goalRepo) Create(ctx context.Context, goal *domain.Goal) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.data.goals[goal.ID]; ok {
		return store.ErrDuplicate
	}
	r.s.data.seq++
	r.s.data.goals[goal.ID] = record[domain.Goal]{value: *goal, seq: r.s.data.seq}
	return nil
}

func (r *goalRepo) GetByID(ctx context.Context, id string) (*domain.Goal, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rec, ok := r.s.data.goals[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	g := rec.value
	return &g, nil
}

func (r *goalRepo) ListByUser(ctx context.Context, userID string) ([]domain.Goal, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var recs []record[domain.Goal]
	for _, rec := range r.s.data.goals {
		if rec.value.UserID == userID {
			recs = append(recs, rec)
		}
	}
	sort.Slice(recs, func(i, j int) bool { return recs[i].seq < recs[j].seq })
	out := make([]domain.Goal, len(recs))
	for i, rec := range recs {
		out[i] = rec.value
	}
	return out, nil
}

func (r *goalRepo) SetCurrentAmount(ctx context.Context, id string, amount decimal.Decimal) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rec, ok := r.s.data.goals[id]
	if !ok {
		return store.ErrNotFound
	}
	g := rec.value
	g.CurrentAmount = amount
	g.UpdatedAt = time.Now().UTC()
	rec.value = g
	r.s.data.goals[id] = rec
	return nil
}

func (r *goalRepo) DeleteByUser(ctx context.Context, userID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, rec := range r.s.data.goals {
		if rec.value.UserID == userID {
			delete(r.s.data.goals, id)
		}
	}
	return nil
}

type executionRepo struct{ s *Store }

func (r *executionRepo) Get(ctx context.Context, key domain.ExecutionKey) (*domain.ExecutionLog, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	last, ok := r.s.data.executions[key]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &domain.ExecutionLog{Key: key, LastExecution: last}, nil
}

func (r *executionRepo) Upsert(ctx context.Context, entry *domain.ExecutionLog) error {
	if err := takeErr(&r.s.UpsertExecutionErr); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.data.executions[entry.Key] = entry.LastExecution
	return nil
}

func (r *executionRepo) DeleteByUser(ctx context.Context, userID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for key := range r.s.data.executions {
		if key.UserID == userID {
			delete(r.s.data.executions, key)
		}
	}
	return nil
}

// Package mongodb implements the store interfaces on top of MongoDB.
// Multi-document atomicity comes from session transactions, so the
// fixed-expense scheduler's balance debit, transaction insert and
// execution-log upsert commit as one unit.
package mongodb

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/finman-app/backend/internal/store"
)

const (
	colUsers         = "users"
	colTransactions  = "transactions"
	colCategories    = "user_categories"
	colReminders     = "reminders"
	colGoals         = "goals"
	colExecutionLogs = "fixed_expense_executions"
)

// Store is the MongoDB-backed document store.
type Store struct {
	client *mongo.Client
	db     *mongo.Database

	users        *userRepository
	transactions *transactionRepository
	categories   *categoryRepository
	reminders    *reminderRepository
	goals        *goalRepository
	executions   *executionLogRepository
}

// Connect opens a client, verifies connectivity and ensures indexes.
func Connect(ctx context.Context, uri, database string) (*Store, error) {
	if uri == "" {
		return nil, fmt.Errorf("mongo URI is not set")
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect to mongo: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	db := client.Database(database)
	s := &Store{client: client, db: db}
	s.users = &userRepository{col: db.Collection(colUsers)}
	s.transactions = &transactionRepository{col: db.Collection(colTransactions)}
	s.categories = &categoryRepository{col: db.Collection(colCategories)}
	s.reminders = &reminderRepository{col: db.Collection(colReminders)}
	s.goals = &goalRepository{col: db.Collection(colGoals)}
	s.executions = &executionLogRepository{col: db.Collection(colExecutionLogs)}

	if err := s.ensureIndexes(ctx); err != nil {
		return nil, fmt.Errorf("ensure indexes: %w", err)
	}

	return s, nil
}

func (s *Store) ensureIndexes(ctx context.Context) error {
	_, err := s.db.Collection(colUsers).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return err
	}

	_, err = s.db.Collection(colTransactions).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}},
	})
	if err != nil {
		return err
	}

	_, err = s.db.Collection(colReminders).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "due_date", Value: 1}},
	})
	if err != nil {
		return err
	}

	// One execution-log record per (user, category, subcategory).
	_, err = s.db.Collection(colExecutionLogs).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "user_id", Value: 1},
			{Key: "category_id", Value: 1},
			{Key: "subcategory", Value: 1},
		},
		Options: options.Index().SetUnique(true),
	})
	return err
}

// Close disconnects the underlying client.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *Store) Users() store.UserRepository                 { return s.users }
func (s *Store) Transactions() store.TransactionRepository   { return s.transactions }
func (s *Store) Categories() store.CategoryRepository        { return s.categories }
func (s *Store) Reminders() store.ReminderRepository         { return s.reminders }
func (s *Store) Goals() store.GoalRepository                 { return s.goals }
func (s *Store) ExecutionLogs() store.ExecutionLogRepository { return s.executions }

// WithTransaction runs fn inside a MongoDB session transaction. Repository
// calls made with the session context join the transaction and commit
// atomically; any error aborts the whole batch.
func (s *Store) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	session, err := s.client.StartSession()
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}

var _ store.Store = (*Store)(nil)

// Amounts are persisted as decimal strings to avoid float drift.
func decimalToRaw(d decimal.Decimal) string {
	return d.String()
}

func rawToDecimal(s string) decimal.Decimal {
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func mapError(err error) error {
	switch {
	case err == nil:
		return nil
	case err == mongo.ErrNoDocuments:
		return store.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return store.ErrDuplicate
	default:
		return err
	}
}

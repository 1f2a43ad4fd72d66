package mongodb

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/finman-app/backend/internal/domain"
	"github.com/finman-app/backend/internal/store"
)

type transactionDoc struct {
	ID          string    `bson:"_id"`
	UserID      string    `bson:"user_id"`
	Type        string    `bson:"type"`
	Amount      string    `bson:"amount"`
	Category    string    `bson:"category"`
	Subcategory string    `bson:"subcategory,omitempty"`
	Date        time.Time `bson:"date"`
	Paid        bool      `bson:"paid"`
	Fixed       bool      `bson:"fixed"`
	Reminder    bool      `bson:"reminder"`
	Ignore      bool      `bson:"ignore"`
	Note        string    `bson:"note,omitempty"`
	Source      string    `bson:"source,omitempty"`
	Wallet      string    `bson:"wallet,omitempty"`
	CreatedAt   time.Time `bson:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at"`
}

func toTransactionDoc(t *domain.Transaction) transactionDoc {
	return transactionDoc{
		ID:          t.ID,
		UserID:      t.UserID,
		Type:        string(t.Type),
		Amount:      decimalToRaw(t.Amount),
		Category:    t.Category,
		Subcategory: t.Subcategory,
		Date:        t.Date,
		Paid:        t.Paid,
		Fixed:       t.Fixed,
		Reminder:    t.Reminder,
		Ignore:      t.Ignore,
		Note:        t.Note,
		Source:      t.Source,
		Wallet:      t.Wallet,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func (d transactionDoc) toDomain() domain.Transaction {
	return domain.Transaction{
		ID:          d.ID,
		UserID:      d.UserID,
		Type:        domain.TransactionType(d.Type),
		Amount:      rawToDecimal(d.Amount),
		Category:    d.Category,
		Subcategory: d.Subcategory,
		Date:        d.Date,
		Paid:        d.Paid,
		Fixed:       d.Fixed,
		Reminder:    d.Reminder,
		Ignore:      d.Ignore,
		Note:        d.Note,
		Source:      d.Source,
		Wallet:      d.Wallet,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

type transactionRepository struct {
	col *mongo.Collection
}

func (r *transactionRepository) Create(ctx context.Context, tx *domain.Transaction) error {
	_, err := r.col.InsertOne(ctx, toTransactionDoc(tx))
	return mapError(err)
}

func (r *transactionRepository) GetByID(ctx context.Context, id string) (*domain.Transaction, error) {
	var doc transactionDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		return nil, mapError(err)
	}
	t := doc.toDomain()
	return &t, nil
}

func (r *transactionRepository) ListByUser(ctx context.Context, userID string) ([]domain.Transaction, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.col.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, mapError(err)
	}
	defer cursor.Close(ctx)

	var txs []domain.Transaction
	for cursor.Next(ctx) {
		var doc transactionDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		txs = append(txs, doc.toDomain())
	}
	return txs, cursor.Err()
}

func (r *transactionRepository) Update(ctx context.Context, id string, update domain.TransactionUpdate) error {
	set := bson.M{"updated_at": time.Now().UTC()}
	if update.Type != nil {
		set["type"] = string(*update.Type)
	}
	if update.Amount != nil {
		set["amount"] = decimalToRaw(*update.Amount)
	}
	if update.Category != nil {
		set["category"] = *update.Category
	}
	if update.Date != nil {
		set["date"] = *update.Date
	}
	if update.Note != nil {
		set["note"] = *update.Note
	}
	if update.Paid != nil {
		set["paid"] = *update.Paid
	}

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return mapError(err)
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *transactionRepository) Delete(ctx context.Context, id string) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return mapError(err)
	}
	if res.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *transactionRepository) DeleteByUser(ctx context.Context, userID string) error {
	_, err := r.col.DeleteMany(ctx, bson.M{"user_id": userID})
	return mapError(err)
}

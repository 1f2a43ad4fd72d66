package mongodb

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/finman-app/backend/internal/domain"
	"github.com/finman-app/backend/internal/store"
)

type goalDoc struct {
	ID            string    `bson:"_id"`
	UserID        string    `bson:"user_id"`
	Name          string    `bson:"name"`
	TargetAmount  string    `bson:"target_amount"`
	CurrentAmount string    `bson:"current_amount"`
	CreatedAt     time.Time `bson:"created_at"`
	UpdatedAt     time.Time `bson:"updated_at"`
}

func (d goalDoc) toDomain() domain.Goal {
	return domain.Goal{
		ID:            d.ID,
		UserID:        d.UserID,
		Name:          d.Name,
		TargetAmount:  rawToDecimal(d.TargetAmount),
		CurrentAmount: rawToDecimal(d.CurrentAmount),
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}
}

type goalRepository struct {
	col *mongo.Collection
}

func (r *goalRepository) Create(ctx context.Context, goal *domain.Goal) error {
	_, err := r.col.InsertOne(ctx, goalDoc{
		ID:            goal.ID,
		UserID:        goal.UserID,
		Name:          goal.Name,
		TargetAmount:  decimalToRaw(goal.TargetAmount),
		CurrentAmount: decimalToRaw(goal.CurrentAmount),
		CreatedAt:     goal.CreatedAt,
		UpdatedAt:     goal.UpdatedAt,
	})
	return mapError(err)
}

func (r *goalRepository) GetByID(ctx context.Context, id string) (*domain.Goal, error) {
	var doc goalDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		return nil, mapError(err)
	}
	g := doc.toDomain()
	return &g, nil
}

func (r *goalRepository) ListByUser(ctx context.Context, userID string) ([]domain.Goal, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := r.col.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, mapError(err)
	}
	defer cursor.Close(ctx)

	var goals []domain.Goal
	for cursor.Next(ctx) {
		var doc goalDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		goals = append(goals, doc.toDomain())
	}
	return goals, cursor.Err()
}

func (r *goalRepository) SetCurrentAmount(ctx context.Context, id string, amount decimal.Decimal) error {
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"current_amount": decimalToRaw(amount),
		"updated_at":     time.Now().UTC(),
	}})
	if err != nil {
		return mapError(err)
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *goalRepository) DeleteByUser(ctx context.Context, userID string) error {
	_, err := r.col.DeleteMany(ctx, bson.M{"user_id": userID})
	return mapError(err)
}

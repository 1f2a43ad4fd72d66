package mongodb

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/finman-app/backend/internal/domain"
)

type executionLogDoc struct {
	UserID        string    `bson:"user_id"`
	CategoryID    string    `bson:"category_id"`
	Subcategory   string    `bson:"subcategory"`
	LastExecution time.Time `bson:"last_execution"`
}

type executionLogRepository struct {
	col *mongo.Collection
}

func keyFilter(key domain.ExecutionKey) bson.M {
	return bson.M{
		"user_id":     key.UserID,
		"category_id": key.CategoryID,
		"subcategory": key.Subcategory,
	}
}

func (r *executionLogRepository) Get(ctx context.Context, key domain.ExecutionKey) (*domain.ExecutionLog, error) {
	var doc executionLogDoc
	if err := r.col.FindOne(ctx, keyFilter(key)).Decode(&doc); err != nil {
		return nil, mapError(err)
	}
	return &domain.ExecutionLog{
		Key: domain.ExecutionKey{
			UserID:      doc.UserID,
			CategoryID:  doc.CategoryID,
			Subcategory: doc.Subcategory,
		},
		LastExecution: doc.LastExecution,
	}, nil
}

func (r *executionLogRepository) Upsert(ctx context.Context, entry *domain.ExecutionLog) error {
	opts := options.Update().SetUpsert(true)
	_, err := r.col.UpdateOne(ctx, keyFilter(entry.Key), bson.M{"$set": bson.M{
		"last_execution": entry.LastExecution,
	}}, opts)
	return mapError(err)
}

func (r *executionLogRepository) DeleteByUser(ctx context.Context, userID string) error {
	_, err := r.col.DeleteMany(ctx, bson.M{"user_id": userID})
	return mapError(err)
}

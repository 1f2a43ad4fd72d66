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

type reminderDoc struct {
	ID          string    `bson:"_id"`
	UserID      string    `bson:"user_id"`
	Title       string    `bson:"title"`
	Description string    `bson:"description,omitempty"`
	DueDate     time.Time `bson:"due_date"`
	Priority    string    `bson:"priority,omitempty"`
	Category    string    `bson:"category,omitempty"`
	IsCompleted bool      `bson:"is_completed"`
	CreatedAt   time.Time `bson:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at"`
}

func toReminderDoc(rem *domain.Reminder) reminderDoc {
	return reminderDoc{
		ID:          rem.ID,
		UserID:      rem.UserID,
		Title:       rem.Title,
		Description: rem.Description,
		DueDate:     rem.DueDate,
		Priority:    string(rem.Priority),
		Category:    rem.Category,
		IsCompleted: rem.IsCompleted,
		CreatedAt:   rem.CreatedAt,
		UpdatedAt:   rem.UpdatedAt,
	}
}

func (d reminderDoc) toDomain() domain.Reminder {
	return domain.Reminder{
		ID:          d.ID,
		UserID:      d.UserID,
		Title:       d.Title,
		Description: d.Description,
		DueDate:     d.DueDate,
		Priority:    domain.ReminderPriority(d.Priority),
		Category:    d.Category,
		IsCompleted: d.IsCompleted,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

type reminderRepository struct {
	col *mongo.Collection
}

func (r *reminderRepository) Create(ctx context.Context, reminder *domain.Reminder) error {
	_, err := r.col.InsertOne(ctx, toReminderDoc(reminder))
	return mapError(err)
}

func (r *reminderRepository) GetByID(ctx context.Context, id string) (*domain.Reminder, error) {
	var doc reminderDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		return nil, mapError(err)
	}
	rem := doc.toDomain()
	return &rem, nil
}

func (r *reminderRepository) ListByUser(ctx context.Context, userID string, filter domain.ReminderFilter) ([]domain.Reminder, error) {
	query := bson.M{"user_id": userID}
	if filter.Completed != nil {
		query["is_completed"] = *filter.Completed
	}
	if filter.Priority != "" {
		query["priority"] = string(filter.Priority)
	}

	opts := options.Find().SetSort(bson.D{{Key: "due_date", Value: 1}})
	if filter.Limit > 0 {
		opts.SetLimit(int64(filter.Limit))
	}

	cursor, err := r.col.Find(ctx, query, opts)
	if err != nil {
		return nil, mapError(err)
	}
	defer cursor.Close(ctx)

	var reminders []domain.Reminder
	for cursor.Next(ctx) {
		var doc reminderDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		reminders = append(reminders, doc.toDomain())
	}
	return reminders, cursor.Err()
}

func (r *reminderRepository) TitleExists(ctx context.Context, userID, title string) (bool, error) {
	err := r.col.FindOne(ctx, bson.M{"user_id": userID, "title": title}).Err()
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *reminderRepository) Update(ctx context.Context, id string, update domain.ReminderUpdate) error {
	set := bson.M{"updated_at": time.Now().UTC()}
	if update.Title != nil {
		set["title"] = *update.Title
	}
	if update.Description != nil {
		set["description"] = *update.Description
	}
	if update.DueDate != nil {
		set["due_date"] = *update.DueDate
	}
	if update.Priority != nil {
		set["priority"] = string(*update.Priority)
	}
	if update.Category != nil {
		set["category"] = *update.Category
	}
	if update.IsCompleted != nil {
		set["is_completed"] = *update.IsCompleted
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

func (r *reminderRepository) Delete(ctx context.Context, id string) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return mapError(err)
	}
	if res.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *reminderRepository) DeleteByUser(ctx context.Context, userID string) error {
	_, err := r.col.DeleteMany(ctx, bson.M{"user_id": userID})
	return mapError(err)
}

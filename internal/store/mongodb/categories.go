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

type subcategoryDoc struct {
	Name        string `bson:"name"`
	SpentAmount string `bson:"spent_amount"`
	LimitAmount string `bson:"limit_amount"`
	IsFixed     bool   `bson:"is_fixed"`
}

type categoryDoc struct {
	ID            string           `bson:"id"`
	Name          string           `bson:"name"`
	Color         string           `bson:"color,omitempty"`
	Frequency     string           `bson:"frequency,omitempty"`
	Subcategories []subcategoryDoc `bson:"subcategories"`
}

// categoryConfigDoc is keyed by user ID: one configuration document per user.
type categoryConfigDoc struct {
	UserID            string        `bson:"_id"`
	Variable          []categoryDoc `bson:"variable"`
	Fixed             []categoryDoc `bson:"fixed"`
	Salary            string        `bson:"salary"`
	Payday            int           `bson:"payday"`
	LastSalaryPayment *time.Time    `bson:"last_salary_payment,omitempty"`
	CreatedAt         time.Time     `bson:"created_at"`
	UpdatedAt         time.Time     `bson:"updated_at"`
}

func toCategoryDocs(cats []domain.Category) []categoryDoc {
	out := make([]categoryDoc, 0, len(cats))
	for _, c := range cats {
		subs := make([]subcategoryDoc, 0, len(c.Subcategories))
		for _, s := range c.Subcategories {
			subs = append(subs, subcategoryDoc{
				Name:        s.Name,
				SpentAmount: decimalToRaw(s.SpentAmount),
				LimitAmount: decimalToRaw(s.LimitAmount),
				IsFixed:     s.IsFixed,
			})
		}
		out = append(out, categoryDoc{
			ID:            c.ID,
			Name:          c.Name,
			Color:         c.Color,
			Frequency:     string(c.Frequency),
			Subcategories: subs,
		})
	}
	return out
}

func fromCategoryDocs(docs []categoryDoc) []domain.Category {
	out := make([]domain.Category, 0, len(docs))
	for _, d := range docs {
		subs := make([]domain.Subcategory, 0, len(d.Subcategories))
		for _, s := range d.Subcategories {
			subs = append(subs, domain.Subcategory{
				Name:        s.Name,
				SpentAmount: rawToDecimal(s.SpentAmount),
				LimitAmount: rawToDecimal(s.LimitAmount),
				IsFixed:     s.IsFixed,
			})
		}
		out = append(out, domain.Category{
			ID:            d.ID,
			Name:          d.Name,
			Color:         d.Color,
			Frequency:     domain.Frequency(d.Frequency),
			Subcategories: subs,
		})
	}
	return out
}

type categoryRepository struct {
	col *mongo.Collection
}

func (r *categoryRepository) Get(ctx context.Context, userID string) (*domain.CategoryConfig, error) {
	var doc categoryConfigDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": userID}).Decode(&doc); err != nil {
		return nil, mapError(err)
	}
	return &domain.CategoryConfig{
		UserID:            doc.UserID,
		Variable:          fromCategoryDocs(doc.Variable),
		Fixed:             fromCategoryDocs(doc.Fixed),
		Salary:            rawToDecimal(doc.Salary),
		Payday:            doc.Payday,
		LastSalaryPayment: doc.LastSalaryPayment,
		CreatedAt:         doc.CreatedAt,
		UpdatedAt:         doc.UpdatedAt,
	}, nil
}

func (r *categoryRepository) Save(ctx context.Context, cfg *domain.CategoryConfig) error {
	doc := categoryConfigDoc{
		UserID:            cfg.UserID,
		Variable:          toCategoryDocs(cfg.Variable),
		Fixed:             toCategoryDocs(cfg.Fixed),
		Salary:            decimalToRaw(cfg.Salary),
		Payday:            cfg.Payday,
		LastSalaryPayment: cfg.LastSalaryPayment,
		CreatedAt:         cfg.CreatedAt,
		UpdatedAt:         cfg.UpdatedAt,
	}
	opts := options.Replace().SetUpsert(true)
	_, err := r.col.ReplaceOne(ctx, bson.M{"_id": cfg.UserID}, doc, opts)
	return mapError(err)
}

func (r *categoryRepository) SetLastSalaryPayment(ctx context.Context, userID string, paidAt time.Time) error {
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": userID}, bson.M{"$set": bson.M{
		"last_salary_payment": paidAt,
		"updated_at":          time.Now().UTC(),
	}})
	if err != nil {
		return mapError(err)
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *categoryRepository) ListConfiguredUserIDs(ctx context.Context) ([]string, error) {
	opts := options.Find().SetProjection(bson.M{"_id": 1})
	cursor, err := r.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, mapError(err)
	}
	defer cursor.Close(ctx)

	var ids []string
	for cursor.Next(ctx) {
		var doc struct {
			UserID string `bson:"_id"`
		}
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		ids = append(ids, doc.UserID)
	}
	return ids, cursor.Err()
}

func (r *categoryRepository) DeleteByUser(ctx context.Context, userID string) error {
	_, err := r.col.DeleteOne(ctx, bson.M{"_id": userID})
	return mapError(err)
}

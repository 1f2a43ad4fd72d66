package mongodb

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/finman-app/backend/internal/domain"
	"github.com/finman-app/backend/internal/store"
)

type userDoc struct {
	ID            string     `bson:"_id"`
	Email         string     `bson:"email"`
	Name          string     `bson:"name"`
	Phone         string     `bson:"phone,omitempty"`
	Nickname      string     `bson:"nickname,omitempty"`
	BirthDate     *time.Time `bson:"birth_date,omitempty"`
	Gender        string     `bson:"gender,omitempty"`
	PostalCode    string     `bson:"postal_code,omitempty"`
	City          string     `bson:"city,omitempty"`
	State         string     `bson:"state,omitempty"`
	FinancialGoal string     `bson:"financial_goal,omitempty"`
	Balance       string     `bson:"balance"`
	PasswordHash  string     `bson:"password_hash"`
	CreatedAt     time.Time  `bson:"created_at"`
	UpdatedAt     time.Time  `bson:"updated_at"`
}

func toUserDoc(u *domain.User) userDoc {
	return userDoc{
		ID:            u.ID,
		Email:         u.Email,
		Name:          u.Name,
		Phone:         u.Phone,
		Nickname:      u.Nickname,
		BirthDate:     u.BirthDate,
		Gender:        u.Gender,
		PostalCode:    u.PostalCode,
		City:          u.City,
		State:         u.State,
		FinancialGoal: u.FinancialGoal,
		Balance:       decimalToRaw(u.Balance),
		PasswordHash:  u.PasswordHash,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
	}
}

func (d userDoc) toDomain() *domain.User {
	return &domain.User{
		ID:            d.ID,
		Email:         d.Email,
		Name:          d.Name,
		Phone:         d.Phone,
		Nickname:      d.Nickname,
		BirthDate:     d.BirthDate,
		Gender:        d.Gender,
		PostalCode:    d.PostalCode,
		City:          d.City,
		State:         d.State,
		FinancialGoal: d.FinancialGoal,
		Balance:       rawToDecimal(d.Balance),
		PasswordHash:  d.PasswordHash,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}
}

type userRepository struct {
	col *mongo.Collection
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	_, err := r.col.InsertOne(ctx, toUserDoc(user))
	return mapError(err)
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	var doc userDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		return nil, mapError(err)
	}
	return doc.toDomain(), nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var doc userDoc
	if err := r.col.FindOne(ctx, bson.M{"email": email}).Decode(&doc); err != nil {
		return nil, mapError(err)
	}
	return doc.toDomain(), nil
}

func (r *userRepository) UpdateProfile(ctx context.Context, id string, update domain.ProfileUpdate) error {
	set := bson.M{"updated_at": time.Now().UTC()}
	if update.Name != nil {
		set["name"] = *update.Name
	}
	if update.Phone != nil {
		set["phone"] = *update.Phone
	}
	if update.Nickname != nil {
		set["nickname"] = *update.Nickname
	}
	if update.BirthDate != nil {
		set["birth_date"] = *update.BirthDate
	}
	if update.Gender != nil {
		set["gender"] = *update.Gender
	}
	if update.PostalCode != nil {
		set["postal_code"] = *update.PostalCode
	}
	if update.City != nil {
		set["city"] = *update.City
	}
	if update.State != nil {
		set["state"] = *update.State
	}
	if update.FinancialGoal != nil {
		set["financial_goal"] = *update.FinancialGoal
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

func (r *userRepository) SetBalance(ctx context.Context, id string, balance decimal.Decimal) error {
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"balance":    decimalToRaw(balance),
		"updated_at": time.Now().UTC(),
	}})
	if err != nil {
		return mapError(err)
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *userRepository) Delete(ctx context.Context, id string) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return mapError(err)
	}
	if res.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

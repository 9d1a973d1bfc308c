package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ganzorig/mishil/app/models"
	"github.com/ganzorig/mishil/pkg/mongodb"
)

// UserRepository is the MongoDB UserStore.
type UserRepository struct{}

func NewUserRepository() *UserRepository { return &UserRepository{} }

func (r *UserRepository) col() *mongo.Collection { return mongodb.Collection("users") }

func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.Role == "" {
		user.Role = models.RoleUser
	}

	res, err := r.col().InsertOne(ctx, user)
	if err != nil {
		return fmt.Errorf("users: insert: %w", err)
	}
	user.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *UserRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var user models.User
	err := r.col().FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("users: find %s: %w", id.Hex(), err)
	}
	return &user, nil
}

// FindByPhone returns the first account matching phone. Phone numbers are
// not unique in this store; with duplicates, "first" is whatever document
// the server returns first.
func (r *UserRepository) FindByPhone(ctx context.Context, phone string) (*models.User, error) {
	var user models.User
	err := r.col().FindOne(ctx, bson.M{"phoneNumber": phone}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("users: find by phone: %w", err)
	}
	return &user, nil
}

func (r *UserRepository) Update(ctx context.Context, user *models.User) error {
	user.UpdatedAt = time.Now()
	res, err := r.col().ReplaceOne(ctx, bson.M{"_id": user.ID}, user)
	if err != nil {
		return fmt.Errorf("users: update %s: %w", user.ID.Hex(), err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *UserRepository) UpdateRole(ctx context.Context, id primitive.ObjectID, role string) error {
	return r.setFields(ctx, id, bson.M{"role": role})
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id primitive.ObjectID, hash string) error {
	return r.setFields(ctx, id, bson.M{"password": hash})
}

func (r *UserRepository) setFields(ctx context.Context, id primitive.ObjectID, fields bson.M) error {
	fields["updatedAt"] = time.Now()
	res, err := r.col().UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": fields})
	if err != nil {
		return fmt.Errorf("users: update %s: %w", id.Hex(), err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *UserRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.col().DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("users: delete %s: %w", id.Hex(), err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *UserRepository) All(ctx context.Context) ([]models.User, error) {
	cur, err := r.col().Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("users: list: %w", err)
	}
	var users []models.User
	if err := cur.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("users: decode list: %w", err)
	}
	return users, nil
}

func (r *UserRepository) Count(ctx context.Context) (int64, error) {
	n, err := r.col().CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("users: count: %w", err)
	}
	return n, nil
}

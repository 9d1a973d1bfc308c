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

// CategoryRepository is the MongoDB CategoryStore.
type CategoryRepository struct{}

func NewCategoryRepository() *CategoryRepository { return &CategoryRepository{} }

func (r *CategoryRepository) col() *mongo.Collection { return mongodb.Collection("categories") }

func (r *CategoryRepository) Create(ctx context.Context, c *models.Category) error {
	now := time.Now()
	c.CreatedAt = now
	c.UpdatedAt = now

	res, err := r.col().InsertOne(ctx, c)
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("category %q: %w", c.Name, ErrDuplicate)
	}
	if err != nil {
		return fmt.Errorf("categories: insert: %w", err)
	}
	c.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *CategoryRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Category, error) {
	var c models.Category
	err := r.col().FindOne(ctx, bson.M{"_id": id}).Decode(&c)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("categories: find %s: %w", id.Hex(), err)
	}
	return &c, nil
}

func (r *CategoryRepository) Update(ctx context.Context, c *models.Category) error {
	c.UpdatedAt = time.Now()
	res, err := r.col().ReplaceOne(ctx, bson.M{"_id": c.ID}, c)
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("category %q: %w", c.Name, ErrDuplicate)
	}
	if err != nil {
		return fmt.Errorf("categories: update %s: %w", c.ID.Hex(), err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *CategoryRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.col().DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("categories: delete %s: %w", id.Hex(), err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *CategoryRepository) List(ctx context.Context, activeOnly bool) ([]models.Category, error) {
	filter := bson.M{}
	if activeOnly {
		filter["isActive"] = true
	}

	cur, err := r.col().Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("categories: list: %w", err)
	}
	var categories []models.Category
	if err := cur.All(ctx, &categories); err != nil {
		return nil, fmt.Errorf("categories: decode list: %w", err)
	}
	return categories, nil
}

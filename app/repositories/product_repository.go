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

// ProductRepository is the MongoDB ProductStore.
type ProductRepository struct{}

func NewProductRepository() *ProductRepository { return &ProductRepository{} }

func (r *ProductRepository) col() *mongo.Collection { return mongodb.Collection("products") }

func (r *ProductRepository) Create(ctx context.Context, p *models.Product) error {
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now

	res, err := r.col().InsertOne(ctx, p)
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("product code %q: %w", p.Code, ErrDuplicate)
	}
	if err != nil {
		return fmt.Errorf("products: insert: %w", err)
	}
	p.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *ProductRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	var p models.Product
	err := r.col().FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("products: find %s: %w", id.Hex(), err)
	}
	return &p, nil
}

func (r *ProductRepository) Update(ctx context.Context, p *models.Product) error {
	p.UpdatedAt = time.Now()
	res, err := r.col().ReplaceOne(ctx, bson.M{"_id": p.ID}, p)
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("product code %q: %w", p.Code, ErrDuplicate)
	}
	if err != nil {
		return fmt.Errorf("products: update %s: %w", p.ID.Hex(), err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ProductRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.col().DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("products: delete %s: %w", id.Hex(), err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns catalog products newest-first, narrowed by f.
func (r *ProductRepository) List(ctx context.Context, f ProductFilter) ([]models.Product, error) {
	filter := bson.M{}
	if f.Category != "" {
		filter["category"] = f.Category
	}
	switch f.Feature {
	case "new":
		filter["features.isNew"] = true
	case "featured":
		filter["features.isFeatured"] = true
	case "discounted":
		filter["features.isDiscounted"] = true
	}
	if f.Search != "" {
		re := primitive.Regex{Pattern: regexQuote(f.Search), Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"name": re},
			bson.M{"code": re},
		}
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	if f.Limit > 0 {
		opts.SetLimit(f.Limit)
	}

	cur, err := r.col().Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("products: list: %w", err)
	}
	var products []models.Product
	if err := cur.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("products: decode list: %w", err)
	}
	return products, nil
}

// DecrementStock is the compare-and-swap on stock: the filter only matches
// when stock still covers qty, so two racing orders cannot both draw down
// stock that satisfies only one of them.
func (r *ProductRepository) DecrementStock(ctx context.Context, id primitive.ObjectID, qty int) error {
	res, err := r.col().UpdateOne(ctx,
		bson.M{"_id": id, "stock": bson.M{"$gte": qty}},
		bson.M{
			"$inc": bson.M{"stock": -qty},
			"$set": bson.M{"updatedAt": time.Now()},
		},
	)
	if err != nil {
		return fmt.Errorf("products: decrement stock %s: %w", id.Hex(), err)
	}
	if res.MatchedCount == 0 {
		// Either gone or not enough stock; re-read to say which.
		p, ferr := r.FindByID(ctx, id)
		if ferr != nil {
			return ferr
		}
		return &InsufficientStockError{ProductName: p.Name, Requested: qty, Available: p.Stock}
	}
	return nil
}

func (r *ProductRepository) Count(ctx context.Context) (int64, error) {
	n, err := r.col().CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("products: count: %w", err)
	}
	return n, nil
}

func (r *ProductRepository) CountLowStock(ctx context.Context, threshold int) (int64, error) {
	n, err := r.col().CountDocuments(ctx, bson.M{"stock": bson.M{"$lte": threshold}})
	if err != nil {
		return 0, fmt.Errorf("products: count low stock: %w", err)
	}
	return n, nil
}

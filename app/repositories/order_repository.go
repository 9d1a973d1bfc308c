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

// OrderRepository is the MongoDB OrderStore.
type OrderRepository struct {
	users    *UserRepository
	products *ProductRepository
}

func NewOrderRepository() *OrderRepository {
	return &OrderRepository{users: NewUserRepository(), products: NewProductRepository()}
}

func (r *OrderRepository) col() *mongo.Collection { return mongodb.Collection("orders") }

func (r *OrderRepository) Insert(ctx context.Context, o *models.Order) error {
	now := time.Now()
	o.CreatedAt = now
	o.UpdatedAt = now

	res, err := r.col().InsertOne(ctx, o)
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("order code %q: %w", o.OrderCode, ErrDuplicate)
	}
	if err != nil {
		return fmt.Errorf("orders: insert: %w", err)
	}
	o.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *OrderRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
	var o models.Order
	err := r.col().FindOne(ctx, bson.M{"_id": id}).Decode(&o)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("orders: find %s: %w", id.Hex(), err)
	}
	return &o, nil
}

// FindPopulated loads the order plus its customer and product documents.
// Products or the user deleted since placement come back nil on their line;
// the stored snapshot (price, quantity, size) still tells the whole story.
func (r *OrderRepository) FindPopulated(ctx context.Context, id primitive.ObjectID) (*models.PopulatedOrder, error) {
	o, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	populated := &models.PopulatedOrder{Order: *o}

	if o.UserID != nil {
		user, err := r.users.FindByID(ctx, *o.UserID)
		if err != nil && !errors.Is(err, ErrNotFound) {
			return nil, err
		}
		populated.User = user
	}

	populated.Lines = make([]models.PopulatedItem, 0, len(o.Items))
	for _, item := range o.Items {
		p, err := r.products.FindByID(ctx, item.ProductID)
		if err != nil && !errors.Is(err, ErrNotFound) {
			return nil, err
		}
		populated.Lines = append(populated.Lines, models.PopulatedItem{OrderItem: item, Product: p})
	}
	return populated, nil
}

func (r *OrderRepository) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error) {
	return r.list(ctx, bson.M{"userId": userID})
}

func (r *OrderRepository) List(ctx context.Context, f OrderFilter) ([]models.Order, error) {
	filter := bson.M{}
	created := bson.M{}
	if !f.From.IsZero() {
		created["$gte"] = f.From
	}
	if !f.To.IsZero() {
		created["$lte"] = f.To
	}
	if len(created) > 0 {
		filter["createdAt"] = created
	}
	return r.list(ctx, filter)
}

func (r *OrderRepository) list(ctx context.Context, filter bson.M) ([]models.Order, error) {
	cur, err := r.col().Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("orders: list: %w", err)
	}
	var orders []models.Order
	if err := cur.All(ctx, &orders); err != nil {
		return nil, fmt.Errorf("orders: decode list: %w", err)
	}
	return orders, nil
}

func (r *OrderRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, status string) error {
	res, err := r.col().UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"status": status, "updatedAt": time.Now()}},
	)
	if err != nil {
		return fmt.Errorf("orders: update status %s: %w", id.Hex(), err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *OrderRepository) Count(ctx context.Context) (int64, error) {
	n, err := r.col().CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("orders: count: %w", err)
	}
	return n, nil
}

func (r *OrderRepository) CountByStatus(ctx context.Context, status string) (int64, error) {
	n, err := r.col().CountDocuments(ctx, bson.M{"status": status})
	if err != nil {
		return 0, fmt.Errorf("orders: count by status: %w", err)
	}
	return n, nil
}

// Revenue sums order totals across everything except cancelled orders.
func (r *OrderRepository) Revenue(ctx context.Context) (int64, error) {
	cur, err := r.col().Aggregate(ctx, mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"status": bson.M{"$ne": models.OrderCancelled}}}},
		{{Key: "$group", Value: bson.M{"_id": nil, "total": bson.M{"$sum": "$total"}}}},
	})
	if err != nil {
		return 0, fmt.Errorf("orders: revenue: %w", err)
	}
	var rows []struct {
		Total int64 `bson:"total"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return 0, fmt.Errorf("orders: decode revenue: %w", err)
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return rows[0].Total, nil
}

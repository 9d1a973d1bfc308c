// Package repositories contains the MongoDB stores and the interfaces the
// service layer consumes. Services accept these interfaces so the order
// placement workflow can be tested against in-memory fakes.
package repositories

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ganzorig/mishil/app/models"
)

// ProductFilter narrows catalog list queries. Zero values mean "no filter".
type ProductFilter struct {
	Category string
	Feature  string // "new" | "featured" | "discounted"
	Search   string // free-text match on name or code
	Limit    int64
}

// OrderFilter narrows admin order list queries.
type OrderFilter struct {
	From time.Time
	To   time.Time
}

// UserStore persists accounts.
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindByPhone(ctx context.Context, phone string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	UpdateRole(ctx context.Context, id primitive.ObjectID, role string) error
	UpdatePassword(ctx context.Context, id primitive.ObjectID, hash string) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	All(ctx context.Context) ([]models.User, error)
	Count(ctx context.Context) (int64, error)
}

// ProductStore persists the catalog.
type ProductStore interface {
	Create(ctx context.Context, p *models.Product) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
	Update(ctx context.Context, p *models.Product) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	List(ctx context.Context, f ProductFilter) ([]models.Product, error)

	// DecrementStock subtracts qty from the product's stock only when the
	// current stock covers it, as a single guarded update. Returns an
	// *InsufficientStockError when it does not.
	DecrementStock(ctx context.Context, id primitive.ObjectID, qty int) error

	Count(ctx context.Context) (int64, error)
	CountLowStock(ctx context.Context, threshold int) (int64, error)
}

// CategoryStore persists categories.
type CategoryStore interface {
	Create(ctx context.Context, c *models.Category) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Category, error)
	Update(ctx context.Context, c *models.Category) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	List(ctx context.Context, activeOnly bool) ([]models.Category, error)
}

// OrderStore persists orders.
type OrderStore interface {
	// Insert writes a new order. A colliding order code surfaces as
	// ErrDuplicate so the caller can regenerate and retry.
	Insert(ctx context.Context, o *models.Order) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error)
	FindPopulated(ctx context.Context, id primitive.ObjectID) (*models.PopulatedOrder, error)
	ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error)
	List(ctx context.Context, f OrderFilter) ([]models.Order, error)
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status string) error
	Count(ctx context.Context) (int64, error)
	CountByStatus(ctx context.Context, status string) (int64, error)
	Revenue(ctx context.Context) (int64, error)
}

// TxRunner groups store operations into an atomic unit of work. Every store
// call inside fn must use the context fn receives.
type TxRunner interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

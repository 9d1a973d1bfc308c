package repositories

import (
	"go.mongodb.org/mongo-driver/bson"

	"github.com/ganzorig/mishil/pkg/mongodb"
)

// Indexes returns the index set the stores rely on. The unique indexes on
// products.code and orders.orderCode back the ErrDuplicate paths.
func Indexes() []mongodb.IndexSpec {
	return []mongodb.IndexSpec{
		{Collection: "users", Keys: bson.D{{Key: "phoneNumber", Value: 1}}},
		{Collection: "users", Keys: bson.D{{Key: "email", Value: 1}}},
		{Collection: "products", Keys: bson.D{{Key: "code", Value: 1}}, Unique: true},
		{Collection: "products", Keys: bson.D{{Key: "category", Value: 1}}},
		{Collection: "products", Keys: bson.D{{Key: "createdAt", Value: -1}}},
		{Collection: "products", Keys: bson.D{{Key: "features.isNew", Value: 1}}},
		{Collection: "products", Keys: bson.D{{Key: "features.isFeatured", Value: 1}}},
		{Collection: "products", Keys: bson.D{{Key: "features.isDiscounted", Value: 1}}},
		{Collection: "categories", Keys: bson.D{{Key: "name", Value: 1}}, Unique: true},
		{Collection: "orders", Keys: bson.D{{Key: "orderCode", Value: 1}}, Unique: true},
		{Collection: "orders", Keys: bson.D{{Key: "userId", Value: 1}}},
		{Collection: "orders", Keys: bson.D{{Key: "createdAt", Value: -1}}},
	}
}

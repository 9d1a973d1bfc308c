package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Category groups products for the storefront navigation. Products carry the
// category name as a denormalized string; a rename here does not rewrite
// products (documented tradeoff, see DESIGN.md).
type Category struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name"` // unique
	NameEn      string             `bson:"nameEn,omitempty" json:"nameEn,omitempty"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	IsActive    bool               `bson:"isActive" json:"isActive"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

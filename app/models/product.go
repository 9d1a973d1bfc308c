package models

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MaxProductImages bounds the image list on a product.
const MaxProductImages = 10

var (
	// ErrNoImages is returned when a product is created without images.
	ErrNoImages = errors.New("product must have at least one image")
	// ErrTooManyImages is returned when a product exceeds MaxProductImages.
	ErrTooManyImages = errors.New("product must not have more than 10 images")
	// ErrNoMainImage is returned when no image (or more than one) is
	// flagged as the main image.
	ErrNoMainImage = errors.New("product must have exactly one main image")
)

// ProductImage is one entry of a product's ordered image list. URL is either
// a storage/S3 URL (local mode) or an inline data URL (serverless mode).
type ProductImage struct {
	URL    string `bson:"url" json:"url"`
	IsMain bool   `bson:"isMain" json:"isMain"`
	Order  int    `bson:"order" json:"order"`
}

// ProductFeatures drives the storefront's catalog sections. These are
// display flags, not access control.
type ProductFeatures struct {
	IsNew        bool `bson:"isNew" json:"isNew"`
	IsFeatured   bool `bson:"isFeatured" json:"isFeatured"`
	IsDiscounted bool `bson:"isDiscounted" json:"isDiscounted"`
}

// Product is a catalog document. Category is the category's name as a
// denormalized string, not a reference; renaming a category does not cascade.
type Product struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Code        string             `bson:"code" json:"code"` // unique
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Price       int64              `bson:"price" json:"price"` // ₮, no minor units
	Category    string             `bson:"category" json:"category"`
	Stock       int                `bson:"stock" json:"stock"`
	Sizes       []string           `bson:"sizes,omitempty" json:"sizes,omitempty"`
	Images      []ProductImage     `bson:"images" json:"images"`
	Features    ProductFeatures    `bson:"features" json:"features"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// ValidateImages enforces the image invariants: 1..MaxProductImages entries
// with exactly one main image.
func ValidateImages(images []ProductImage) error {
	if len(images) == 0 {
		return ErrNoImages
	}
	if len(images) > MaxProductImages {
		return ErrTooManyImages
	}
	mains := 0
	for _, img := range images {
		if img.IsMain {
			mains++
		}
	}
	if mains != 1 {
		return ErrNoMainImage
	}
	return nil
}

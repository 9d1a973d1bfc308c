package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ganzorig/mishil/app/models"
	"github.com/ganzorig/mishil/app/repositories"
	"github.com/ganzorig/mishil/pkg/cache"
	"github.com/ganzorig/mishil/pkg/logger"
	"github.com/ganzorig/mishil/pkg/storage"
)

// catalogTTL is how long catalog sections live in the cache. Short on
// purpose: an admin write invalidates immediately, but a missed invalidation
// (another instance, a crash) self-heals within this window.
const catalogTTL = 5 * time.Minute

const cachePrefix = "catalog:"

// ErrCategoryInUse is returned when deleting a category that products still
// reference.
var ErrCategoryInUse = errors.New("category still has products")

// CatalogService owns the product catalog and its categories, with cached
// reads for the storefront sections.
type CatalogService struct {
	products   repositories.ProductStore
	categories repositories.CategoryStore
}

func NewCatalogService(products repositories.ProductStore, categories repositories.CategoryStore) *CatalogService {
	return &CatalogService{products: products, categories: categories}
}

// ─── Storefront reads ────────────────────────────────────────────────────────

// Products returns catalog products for f, caching section queries (feature
// and category lists) but never search results.
func (s *CatalogService) Products(ctx context.Context, f repositories.ProductFilter) ([]models.Product, error) {
	key := ""
	if f.Search == "" {
		key = fmt.Sprintf("%sproducts:%s:%s:%d", cachePrefix, f.Category, f.Feature, f.Limit)
		var cached []models.Product
		if cache.Get(key, &cached) {
			return cached, nil
		}
	}

	products, err := s.products.List(ctx, f)
	if err != nil {
		return nil, err
	}
	if key != "" {
		if err := cache.Set(key, products, catalogTTL); err != nil {
			logger.WithCtx(ctx).Warn("catalog: cache set failed", "error", err)
		}
	}
	return products, nil
}

// Product returns one product by id.
func (s *CatalogService) Product(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	return s.products.FindByID(ctx, id)
}

// Category returns one category by id.
func (s *CatalogService) Category(ctx context.Context, id primitive.ObjectID) (*models.Category, error) {
	return s.categories.FindByID(ctx, id)
}

// Categories returns categories, active ones only for the storefront.
func (s *CatalogService) Categories(ctx context.Context, activeOnly bool) ([]models.Category, error) {
	key := ""
	if activeOnly {
		key = cachePrefix + "categories:active"
		var cached []models.Category
		if cache.Get(key, &cached) {
			return cached, nil
		}
	}

	categories, err := s.categories.List(ctx, activeOnly)
	if err != nil {
		return nil, err
	}
	if key != "" {
		if err := cache.Set(key, categories, catalogTTL); err != nil {
			logger.WithCtx(ctx).Warn("catalog: cache set failed", "error", err)
		}
	}
	return categories, nil
}

// ─── Admin writes ────────────────────────────────────────────────────────────

// CreateProduct validates the image set and persists the product.
func (s *CatalogService) CreateProduct(ctx context.Context, p *models.Product) error {
	if err := models.ValidateImages(p.Images); err != nil {
		return err
	}
	if err := s.products.Create(ctx, p); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

// UpdateProduct replaces the product document.
func (s *CatalogService) UpdateProduct(ctx context.Context, p *models.Product) error {
	if err := models.ValidateImages(p.Images); err != nil {
		return err
	}
	if err := s.products.Update(ctx, p); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

// DeleteProduct removes the product and its stored images. Past orders keep
// their price/quantity snapshots and render the line without a product.
func (s *CatalogService) DeleteProduct(ctx context.Context, id primitive.ObjectID) error {
	p, err := s.products.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.products.Delete(ctx, id); err != nil {
		return err
	}
	for _, img := range p.Images {
		if err := storage.DeleteImage(img.URL); err != nil {
			logger.WithCtx(ctx).Warn("catalog: delete image", "url", img.URL, "error", err)
		}
	}
	s.invalidate(ctx)
	return nil
}

func (s *CatalogService) CreateCategory(ctx context.Context, c *models.Category) error {
	if err := s.categories.Create(ctx, c); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

// UpdateCategory renames/edits a category. Products keep the category name
// they were saved with; renames do not cascade.
func (s *CatalogService) UpdateCategory(ctx context.Context, c *models.Category) error {
	if err := s.categories.Update(ctx, c); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

// DeleteCategory refuses to remove a category that products still use.
func (s *CatalogService) DeleteCategory(ctx context.Context, id primitive.ObjectID) error {
	c, err := s.categories.FindByID(ctx, id)
	if err != nil {
		return err
	}
	inUse, err := s.products.List(ctx, repositories.ProductFilter{Category: c.Name, Limit: 1})
	if err != nil {
		return err
	}
	if len(inUse) > 0 {
		return ErrCategoryInUse
	}
	if err := s.categories.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *CatalogService) invalidate(ctx context.Context) {
	if err := cache.DelPrefix(cachePrefix); err != nil {
		logger.WithCtx(ctx).Warn("catalog: cache invalidation failed", "error", err)
	}
}

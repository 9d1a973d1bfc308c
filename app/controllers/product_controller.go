package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ganzorig/mishil/app/repositories"
	"github.com/ganzorig/mishil/app/services"
	"github.com/ganzorig/mishil/pkg/response"
)

// sectionLimit caps the storefront's featured/new/discounted strips.
const sectionLimit = 20

// ProductController serves the public catalog.
type ProductController struct {
	catalog *services.CatalogService
}

func NewProductController(catalog *services.CatalogService) *ProductController {
	return &ProductController{catalog: catalog}
}

// List returns the whole catalog, optionally filtered by ?category=.
func (c *ProductController) List(w http.ResponseWriter, r *http.Request) {
	c.respond(w, r, repositories.ProductFilter{
		Category: r.URL.Query().Get("category"),
	})
}

// Get returns one product.
func (c *ProductController) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := objectID(r)
	if !ok {
		response.NotFound(w, "Product not found")
		return
	}
	p, err := c.catalog.Product(r.Context(), id)
	if err != nil {
		fail(w, r, err)
		return
	}
	response.Success(w, p)
}

// New returns the newest-arrivals strip.
func (c *ProductController) New(w http.ResponseWriter, r *http.Request) {
	c.respond(w, r, repositories.ProductFilter{Feature: "new", Limit: sectionLimit})
}

// Featured returns the featured strip.
func (c *ProductController) Featured(w http.ResponseWriter, r *http.Request) {
	c.respond(w, r, repositories.ProductFilter{Feature: "featured", Limit: sectionLimit})
}

// Discounted returns the sale strip.
func (c *ProductController) Discounted(w http.ResponseWriter, r *http.Request) {
	c.respond(w, r, repositories.ProductFilter{Feature: "discounted", Limit: sectionLimit})
}

// ByCategory returns the products of one category.
func (c *ProductController) ByCategory(w http.ResponseWriter, r *http.Request) {
	c.respond(w, r, repositories.ProductFilter{Category: chi.URLParam(r, "category")})
}

// Search matches ?q= against product names and codes.
func (c *ProductController) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		response.Success(w, []struct{}{})
		return
	}
	c.respond(w, r, repositories.ProductFilter{Search: q})
}

// Categories returns the active categories for the storefront navigation.
func (c *ProductController) Categories(w http.ResponseWriter, r *http.Request) {
	categories, err := c.catalog.Categories(r.Context(), true)
	if err != nil {
		fail(w, r, err)
		return
	}
	response.Success(w, categories)
}

func (c *ProductController) respond(w http.ResponseWriter, r *http.Request, f repositories.ProductFilter) {
	products, err := c.catalog.Products(r.Context(), f)
	if err != nil {
		fail(w, r, err)
		return
	}
	response.Success(w, products)
}

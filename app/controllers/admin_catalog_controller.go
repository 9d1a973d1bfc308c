package controllers

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ganzorig/mishil/app/models"
	"github.com/ganzorig/mishil/app/repositories"
	"github.com/ganzorig/mishil/app/services"
	"github.com/ganzorig/mishil/pkg/bind"
	"github.com/ganzorig/mishil/pkg/response"
	"github.com/ganzorig/mishil/pkg/storage"
)

// maxUploadBytes caps a product image upload form.
const maxUploadBytes = 32 << 20

// AdminCatalogController serves the console's product and category CRUD.
type AdminCatalogController struct {
	catalog *services.CatalogService
}

func NewAdminCatalogController(catalog *services.CatalogService) *AdminCatalogController {
	return &AdminCatalogController{catalog: catalog}
}

// ─── Products ────────────────────────────────────────────────────────────────

// Products lists the full catalog for the console, ?q= searches it.
func (c *AdminCatalogController) Products(w http.ResponseWriter, r *http.Request) {
	products, err := c.catalog.Products(r.Context(), productFilterFromQuery(r))
	if err != nil {
		fail(w, r, err)
		return
	}
	response.Success(w, products)
}

// CreateProduct accepts a multipart form: scalar fields plus 1-10 "images"
// files. The "main" field is the zero-based index of the main image and
// defaults to the first one.
func (c *AdminCatalogController) CreateProduct(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid multipart form", err)
		return
	}

	price, err := strconv.ParseInt(r.FormValue("price"), 10, 64)
	if err != nil || price < 0 {
		response.Error(w, http.StatusBadRequest, "Price must be a non-negative integer")
		return
	}
	stock, err := strconv.Atoi(r.FormValue("stock"))
	if err != nil || stock < 0 {
		response.Error(w, http.StatusBadRequest, "Stock must be a non-negative integer")
		return
	}

	p := &models.Product{
		Code:        strings.TrimSpace(r.FormValue("code")),
		Name:        strings.TrimSpace(r.FormValue("name")),
		Description: r.FormValue("description"),
		Price:       price,
		Category:    strings.TrimSpace(r.FormValue("category")),
		Stock:       stock,
		Sizes:       splitList(r.FormValue("sizes")),
		Features: models.ProductFeatures{
			IsNew:        r.FormValue("isNew") == "true",
			IsFeatured:   r.FormValue("isFeatured") == "true",
			IsDiscounted: r.FormValue("isDiscounted") == "true",
		},
	}
	if p.Code == "" || p.Name == "" || p.Category == "" {
		response.Error(w, http.StatusBadRequest, "Code, name and category are required")
		return
	}

	files := r.MultipartForm.File["images"]
	images, err := c.saveImages(p.Code, files, mainIndex(r, len(files)))
	if err != nil {
		fail(w, r, err)
		return
	}
	p.Images = images

	if err := c.catalog.CreateProduct(r.Context(), p); err != nil {
		// The document was rejected; do not leave orphaned files behind.
		for _, img := range images {
			storage.DeleteImage(img.URL) //nolint:errcheck
		}
		fail(w, r, err)
		return
	}
	response.Created(w, p)
}

// productUpdateRequest carries a partial product edit. Nil fields are left
// unchanged; a non-nil Images replaces the whole image list.
type productUpdateRequest struct {
	Name        *string                 `json:"name"`
	Description *string                 `json:"description"`
	Price       *int64                  `json:"price"`
	Category    *string                 `json:"category"`
	Stock       *int                    `json:"stock"`
	Sizes       *[]string               `json:"sizes"`
	Features    *models.ProductFeatures `json:"features"`
	Images      *[]models.ProductImage  `json:"images"`
}

// UpdateProduct applies a partial JSON edit.
func (c *AdminCatalogController) UpdateProduct(w http.ResponseWriter, r *http.Request) {
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

	var body productUpdateRequest
	if errs, err := bind.JSON(r, &body); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", err)
		return
	} else if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	if body.Name != nil {
		p.Name = *body.Name
	}
	if body.Description != nil {
		p.Description = *body.Description
	}
	if body.Price != nil {
		if *body.Price < 0 {
			response.Error(w, http.StatusBadRequest, "Price must be a non-negative integer")
			return
		}
		p.Price = *body.Price
	}
	if body.Category != nil {
		p.Category = *body.Category
	}
	if body.Stock != nil {
		if *body.Stock < 0 {
			response.Error(w, http.StatusBadRequest, "Stock must be a non-negative integer")
			return
		}
		p.Stock = *body.Stock
	}
	if body.Sizes != nil {
		p.Sizes = *body.Sizes
	}
	if body.Features != nil {
		p.Features = *body.Features
	}
	if body.Images != nil {
		p.Images = *body.Images
	}

	if err := c.catalog.UpdateProduct(r.Context(), p); err != nil {
		fail(w, r, err)
		return
	}
	response.Success(w, p)
}

// UploadImages appends multipart "images" files to an existing product,
// respecting the 10-image cap. Pass main=N to move the main flag.
func (c *AdminCatalogController) UploadImages(w http.ResponseWriter, r *http.Request) {
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

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid multipart form", err)
		return
	}
	files := r.MultipartForm.File["images"]
	if len(files) == 0 {
		response.Error(w, http.StatusBadRequest, "No images uploaded")
		return
	}
	if len(p.Images)+len(files) > models.MaxProductImages {
		response.Error(w, http.StatusBadRequest, models.ErrTooManyImages.Error())
		return
	}

	appended, err := c.saveImages(p.Code, files, -1)
	if err != nil {
		fail(w, r, err)
		return
	}
	for i := range appended {
		appended[i].Order = len(p.Images) + i
	}
	p.Images = append(p.Images, appended...)

	if mainStr := r.FormValue("main"); mainStr != "" {
		if idx, err := strconv.Atoi(mainStr); err == nil && idx >= 0 && idx < len(p.Images) {
			for i := range p.Images {
				p.Images[i].IsMain = i == idx
			}
		}
	}

	if err := c.catalog.UpdateProduct(r.Context(), p); err != nil {
		fail(w, r, err)
		return
	}
	response.Success(w, p)
}

// DeleteProduct removes a product and its stored images.
func (c *AdminCatalogController) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := objectID(r)
	if !ok {
		response.NotFound(w, "Product not found")
		return
	}
	if err := c.catalog.DeleteProduct(r.Context(), id); err != nil {
		fail(w, r, err)
		return
	}
	response.Message(w, "Product deleted")
}

// ─── Categories ──────────────────────────────────────────────────────────────

// categoryRequest is the create/update body for a category.
type categoryRequest struct {
	Name        string `json:"name" validate:"required"`
	NameEn      string `json:"nameEn"`
	Description string `json:"description"`
	IsActive    *bool  `json:"isActive"`
}

// Categories lists every category, active or not, for the console.
func (c *AdminCatalogController) Categories(w http.ResponseWriter, r *http.Request) {
	categories, err := c.catalog.Categories(r.Context(), false)
	if err != nil {
		fail(w, r, err)
		return
	}
	response.Success(w, categories)
}

func (c *AdminCatalogController) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var body categoryRequest
	if errs, err := bind.JSON(r, &body); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", err)
		return
	} else if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	category := &models.Category{
		Name:        strings.TrimSpace(body.Name),
		NameEn:      body.NameEn,
		Description: body.Description,
		IsActive:    body.IsActive == nil || *body.IsActive,
	}
	if err := c.catalog.CreateCategory(r.Context(), category); err != nil {
		fail(w, r, err)
		return
	}
	response.Created(w, category)
}

func (c *AdminCatalogController) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := objectID(r)
	if !ok {
		response.NotFound(w, "Category not found")
		return
	}
	existing, err := c.catalog.Category(r.Context(), id)
	if err != nil {
		fail(w, r, err)
		return
	}

	var body categoryRequest
	if errs, err := bind.JSON(r, &body); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", err)
		return
	} else if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	existing.Name = strings.TrimSpace(body.Name)
	existing.NameEn = body.NameEn
	existing.Description = body.Description
	if body.IsActive != nil {
		existing.IsActive = *body.IsActive
	}

	if err := c.catalog.UpdateCategory(r.Context(), existing); err != nil {
		fail(w, r, err)
		return
	}
	response.Success(w, existing)
}

func (c *AdminCatalogController) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := objectID(r)
	if !ok {
		response.NotFound(w, "Category not found")
		return
	}
	if err := c.catalog.DeleteCategory(r.Context(), id); err != nil {
		fail(w, r, err)
		return
	}
	response.Message(w, "Category deleted")
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

// saveImages stores each uploaded file and builds the ordered image list.
// main == -1 leaves every IsMain false (append mode); otherwise the file at
// that index becomes the main image.
func (c *AdminCatalogController) saveImages(productCode string, files []*multipart.FileHeader, main int) ([]models.ProductImage, error) {
	images := make([]models.ProductImage, 0, len(files))
	for i, fh := range files {
		f, err := fh.Open()
		if err != nil {
			return nil, fmt.Errorf("open upload %q: %w", fh.Filename, err)
		}
		content, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("read upload %q: %w", fh.Filename, err)
		}

		path := fmt.Sprintf("products/%s/%d%s", productCode, i, filepath.Ext(fh.Filename))
		url, err := storage.SaveImage(path, content, fh.Header.Get("Content-Type"))
		if err != nil {
			return nil, fmt.Errorf("save upload %q: %w", fh.Filename, err)
		}
		images = append(images, models.ProductImage{URL: url, IsMain: i == main, Order: i})
	}
	return images, nil
}

func mainIndex(r *http.Request, count int) int {
	idx, err := strconv.Atoi(r.FormValue("main"))
	if err != nil || idx < 0 || idx >= count {
		return 0
	}
	return idx
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func productFilterFromQuery(r *http.Request) (f repositories.ProductFilter) {
	f.Category = r.URL.Query().Get("category")
	f.Search = r.URL.Query().Get("q")
	return f
}

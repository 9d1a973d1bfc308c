package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ganzorig/mishil/app/models"
	"github.com/ganzorig/mishil/app/repositories"
	"github.com/ganzorig/mishil/app/services"
)

// fakeCategories is an in-memory CategoryStore.
type fakeCategories struct {
	byID map[primitive.ObjectID]*models.Category
}

func newFakeCategories() *fakeCategories {
	return &fakeCategories{byID: map[primitive.ObjectID]*models.Category{}}
}

func (f *fakeCategories) Create(_ context.Context, c *models.Category) error {
	for _, existing := range f.byID {
		if existing.Name == c.Name {
			return repositories.ErrDuplicate
		}
	}
	c.ID = primitive.NewObjectID()
	f.byID[c.ID] = c
	return nil
}

func (f *fakeCategories) FindByID(_ context.Context, id primitive.ObjectID) (*models.Category, error) {
	if c, ok := f.byID[id]; ok {
		clone := *c
		return &clone, nil
	}
	return nil, repositories.ErrNotFound
}

func (f *fakeCategories) Update(_ context.Context, c *models.Category) error {
	if _, ok := f.byID[c.ID]; !ok {
		return repositories.ErrNotFound
	}
	f.byID[c.ID] = c
	return nil
}

func (f *fakeCategories) Delete(_ context.Context, id primitive.ObjectID) error {
	if _, ok := f.byID[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeCategories) List(_ context.Context, activeOnly bool) ([]models.Category, error) {
	var out []models.Category
	for _, c := range f.byID {
		if activeOnly && !c.IsActive {
			continue
		}
		out = append(out, *c)
	}
	return out, nil
}

func inlineImage() models.ProductImage {
	return models.ProductImage{URL: "data:image/png;base64,aGVsbG8=", IsMain: true}
}

func TestCreateProductEnforcesImageInvariants(t *testing.T) {
	svc := services.NewCatalogService(&fakeProducts{db: newMemDB()}, newFakeCategories())

	err := svc.CreateProduct(context.Background(), &models.Product{Code: "P1", Name: "Shirt"})
	assert.ErrorIs(t, err, models.ErrNoImages)

	images := make([]models.ProductImage, models.MaxProductImages+1)
	for i := range images {
		images[i] = models.ProductImage{URL: "data:image/png;base64,eA==", IsMain: i == 0}
	}
	err = svc.CreateProduct(context.Background(), &models.Product{Code: "P1", Name: "Shirt", Images: images})
	assert.ErrorIs(t, err, models.ErrTooManyImages)

	err = svc.CreateProduct(context.Background(), &models.Product{
		Code: "P1", Name: "Shirt", Images: []models.ProductImage{inlineImage()},
	})
	assert.NoError(t, err)
}

func TestDeleteCategoryRefusesWhenInUse(t *testing.T) {
	db := newMemDB()
	categories := newFakeCategories()
	svc := services.NewCatalogService(&fakeProducts{db: db}, categories)

	dresses := &models.Category{Name: "Даашинз", IsActive: true}
	require.NoError(t, svc.CreateCategory(context.Background(), dresses))

	require.NoError(t, svc.CreateProduct(context.Background(), &models.Product{
		Code: "D1", Name: "Summer dress", Category: "Даашинз",
		Images: []models.ProductImage{inlineImage()},
	}))

	err := svc.DeleteCategory(context.Background(), dresses.ID)
	assert.ErrorIs(t, err, services.ErrCategoryInUse)

	empty := &models.Category{Name: "Гутал", IsActive: true}
	require.NoError(t, svc.CreateCategory(context.Background(), empty))
	assert.NoError(t, svc.DeleteCategory(context.Background(), empty.ID))
}

func TestCategoryRenameDoesNotCascade(t *testing.T) {
	db := newMemDB()
	categories := newFakeCategories()
	svc := services.NewCatalogService(&fakeProducts{db: db}, categories)

	c := &models.Category{Name: "Цамц", IsActive: true}
	require.NoError(t, svc.CreateCategory(context.Background(), c))
	require.NoError(t, svc.CreateProduct(context.Background(), &models.Product{
		Code: "S1", Name: "Shirt", Category: "Цамц",
		Images: []models.ProductImage{inlineImage()},
	}))

	c.Name = "Захын цамц"
	require.NoError(t, svc.UpdateCategory(context.Background(), c))

	// The product keeps the name it was saved with.
	products, err := svc.Products(context.Background(), repositories.ProductFilter{Category: "Цамц"})
	require.NoError(t, err)
	assert.Len(t, products, 1)
}

func TestDeleteProductKeepsOrderSnapshots(t *testing.T) {
	db := newMemDB()
	svc := services.NewCatalogService(&fakeProducts{db: db}, newFakeCategories())
	orderSvc, _ := newService(db)

	p := &models.Product{
		Code: "S1", Name: "Shirt", Price: 1500, Stock: 4,
		Images: []models.ProductImage{inlineImage()},
	}
	require.NoError(t, svc.CreateProduct(context.Background(), p))

	order, err := orderSvc.Place(context.Background(), guestInput(
		services.CartLine{ProductID: p.ID.Hex(), Quantity: 2},
	))
	require.NoError(t, err)

	require.NoError(t, svc.DeleteProduct(context.Background(), p.ID))

	// The order document still carries the snapshot that priced it.
	stored, err := orderSvc.Get(context.Background(),
		order.ID, &models.User{ID: primitive.NewObjectID(), Role: models.RoleAdmin})
	require.NoError(t, err)
	assert.Equal(t, int64(3000), stored.Total)
	require.Len(t, stored.Items, 1)
	assert.Equal(t, int64(1500), stored.Items[0].Price)
}

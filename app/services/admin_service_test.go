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
	"github.com/ganzorig/mishil/pkg/auth"
)

// fakeUsers is an in-memory UserStore for the admin workflows.
type fakeUsers struct {
	byID map[primitive.ObjectID]*models.User
}

func newFakeUsers(users ...*models.User) *fakeUsers {
	f := &fakeUsers{byID: map[primitive.ObjectID]*models.User{}}
	for _, u := range users {
		f.byID[u.ID] = u
	}
	return f
}

func (f *fakeUsers) Create(_ context.Context, u *models.User) error {
	u.ID = primitive.NewObjectID()
	f.byID[u.ID] = u
	return nil
}

func (f *fakeUsers) FindByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	if u, ok := f.byID[id]; ok {
		clone := *u
		return &clone, nil
	}
	return nil, repositories.ErrNotFound
}

func (f *fakeUsers) FindByPhone(_ context.Context, phone string) (*models.User, error) {
	for _, u := range f.byID {
		if u.PhoneNumber == phone {
			clone := *u
			return &clone, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (f *fakeUsers) Update(_ context.Context, u *models.User) error {
	if _, ok := f.byID[u.ID]; !ok {
		return repositories.ErrNotFound
	}
	f.byID[u.ID] = u
	return nil
}

func (f *fakeUsers) UpdateRole(_ context.Context, id primitive.ObjectID, role string) error {
	u, ok := f.byID[id]
	if !ok {
		return repositories.ErrNotFound
	}
	u.Role = role
	return nil
}

func (f *fakeUsers) UpdatePassword(_ context.Context, id primitive.ObjectID, hash string) error {
	u, ok := f.byID[id]
	if !ok {
		return repositories.ErrNotFound
	}
	u.Password = hash
	return nil
}

func (f *fakeUsers) Delete(_ context.Context, id primitive.ObjectID) error {
	if _, ok := f.byID[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeUsers) All(_ context.Context) ([]models.User, error) {
	var out []models.User
	for _, u := range f.byID {
		out = append(out, *u)
	}
	return out, nil
}

func (f *fakeUsers) Count(_ context.Context) (int64, error) {
	return int64(len(f.byID)), nil
}

func adminUser() *models.User {
	return &models.User{ID: primitive.NewObjectID(), Role: models.RoleAdmin, PhoneNumber: "99000000"}
}

func plainUser() *models.User {
	return &models.User{ID: primitive.NewObjectID(), Role: models.RoleUser, PhoneNumber: "88000000"}
}

func TestSetRolePromotes(t *testing.T) {
	admin := adminUser()
	customer := plainUser()
	users := newFakeUsers(admin, customer)
	svc := services.NewAdminService(users, &fakeProducts{db: newMemDB()}, &fakeOrders{db: newMemDB()})

	require.NoError(t, svc.SetRole(context.Background(), customer.ID, models.RoleAdmin))
	assert.Equal(t, models.RoleAdmin, users.byID[customer.ID].Role)
}

func TestSetRoleRejectsUnknownRole(t *testing.T) {
	customer := plainUser()
	users := newFakeUsers(customer)
	svc := services.NewAdminService(users, &fakeProducts{db: newMemDB()}, &fakeOrders{db: newMemDB()})

	err := svc.SetRole(context.Background(), customer.ID, "superuser")
	assert.ErrorIs(t, err, services.ErrUnknownRole)
}

func TestCannotDemoteLastAdmin(t *testing.T) {
	admin := adminUser()
	users := newFakeUsers(admin, plainUser())
	svc := services.NewAdminService(users, &fakeProducts{db: newMemDB()}, &fakeOrders{db: newMemDB()})

	err := svc.SetRole(context.Background(), admin.ID, models.RoleUser)
	assert.ErrorIs(t, err, services.ErrLastAdmin)
	assert.Equal(t, models.RoleAdmin, users.byID[admin.ID].Role)
}

func TestCannotDeleteLastAdmin(t *testing.T) {
	admin := adminUser()
	users := newFakeUsers(admin)
	svc := services.NewAdminService(users, &fakeProducts{db: newMemDB()}, &fakeOrders{db: newMemDB()})

	err := svc.DeleteUser(context.Background(), admin.ID)
	assert.ErrorIs(t, err, services.ErrLastAdmin)
}

func TestDemoteWithSecondAdmin(t *testing.T) {
	first := adminUser()
	second := adminUser()
	users := newFakeUsers(first, second)
	svc := services.NewAdminService(users, &fakeProducts{db: newMemDB()}, &fakeOrders{db: newMemDB()})

	require.NoError(t, svc.SetRole(context.Background(), first.ID, models.RoleUser))
	assert.Equal(t, models.RoleUser, users.byID[first.ID].Role)
}

func TestResetPIN(t *testing.T) {
	customer := plainUser()
	users := newFakeUsers(customer)
	svc := services.NewAdminService(users, &fakeProducts{db: newMemDB()}, &fakeOrders{db: newMemDB()})

	require.NoError(t, svc.ResetPIN(context.Background(), customer.ID, "4321"))
	assert.True(t, auth.CheckPIN(users.byID[customer.ID].Password, "4321"))

	err := svc.ResetPIN(context.Background(), customer.ID, "weak")
	assert.ErrorIs(t, err, auth.ErrInvalidPIN)
}

func TestDashboardCounters(t *testing.T) {
	db := newMemDB()
	db.addProduct("shirt", 1000, 2) // low stock
	db.addProduct("dress", 2000, 50)
	users := newFakeUsers(adminUser(), plainUser())
	svc := services.NewAdminService(users, &fakeProducts{db: db}, &fakeOrders{db: db})

	orderSvc, _ := newService(db)
	_, err := orderSvc.Place(context.Background(), guestInput(
		services.CartLine{ProductID: firstProductID(db, "shirt"), Quantity: 1},
	))
	require.NoError(t, err)

	stats, err := svc.Dashboard(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.Users)
	assert.Equal(t, int64(2), stats.Products)
	assert.Equal(t, int64(1), stats.LowStock, "shirt is at 1 after the order")
	assert.Equal(t, int64(1), stats.Orders)
	assert.Equal(t, int64(1), stats.PendingOrders)
	assert.Equal(t, int64(1000), stats.Revenue)
}

func firstProductID(db *memDB, code string) string {
	for id, p := range db.products {
		if p.Code == code {
			return id.Hex()
		}
	}
	return primitive.NilObjectID.Hex()
}

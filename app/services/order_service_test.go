package services_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ganzorig/mishil/app/models"
	"github.com/ganzorig/mishil/app/repositories"
	"github.com/ganzorig/mishil/app/services"
	"github.com/ganzorig/mishil/pkg/ordercode"
)

// ─── In-memory stores ─────────────────────────────────────────────────────────

// memDB backs the fake stores. The fake transaction runner snapshots and
// restores it, giving the same all-or-nothing behaviour the Mongo transaction
// provides in production.
type memDB struct {
	products map[primitive.ObjectID]*models.Product
	orders   []*models.Order
}

func newMemDB() *memDB {
	return &memDB{products: map[primitive.ObjectID]*models.Product{}}
}

func (db *memDB) addProduct(name string, price int64, stock int) primitive.ObjectID {
	id := primitive.NewObjectID()
	db.products[id] = &models.Product{
		ID: id, Code: name, Name: name, Price: price, Stock: stock,
	}
	return id
}

func (db *memDB) snapshot() *memDB {
	cp := newMemDB()
	for id, p := range db.products {
		clone := *p
		cp.products[id] = &clone
	}
	for _, o := range db.orders {
		clone := *o
		cp.orders = append(cp.orders, &clone)
	}
	return cp
}

func (db *memDB) restore(from *memDB) {
	db.products = from.products
	db.orders = from.orders
}

type fakeProducts struct{ db *memDB }

func (f *fakeProducts) Create(_ context.Context, p *models.Product) error {
	p.ID = primitive.NewObjectID()
	f.db.products[p.ID] = p
	return nil
}

func (f *fakeProducts) FindByID(_ context.Context, id primitive.ObjectID) (*models.Product, error) {
	p, ok := f.db.products[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	clone := *p
	return &clone, nil
}

func (f *fakeProducts) Update(_ context.Context, p *models.Product) error {
	if _, ok := f.db.products[p.ID]; !ok {
		return repositories.ErrNotFound
	}
	f.db.products[p.ID] = p
	return nil
}

func (f *fakeProducts) Delete(_ context.Context, id primitive.ObjectID) error {
	delete(f.db.products, id)
	return nil
}

func (f *fakeProducts) List(_ context.Context, filter repositories.ProductFilter) ([]models.Product, error) {
	var out []models.Product
	for _, p := range f.db.products {
		if filter.Category != "" && p.Category != filter.Category {
			continue
		}
		out = append(out, *p)
		if filter.Limit > 0 && int64(len(out)) == filter.Limit {
			break
		}
	}
	return out, nil
}

func (f *fakeProducts) DecrementStock(_ context.Context, id primitive.ObjectID, qty int) error {
	p, ok := f.db.products[id]
	if !ok {
		return repositories.ErrNotFound
	}
	if p.Stock < qty {
		return &repositories.InsufficientStockError{
			ProductName: p.Name, Requested: qty, Available: p.Stock,
		}
	}
	p.Stock -= qty
	return nil
}

func (f *fakeProducts) Count(_ context.Context) (int64, error) {
	return int64(len(f.db.products)), nil
}

func (f *fakeProducts) CountLowStock(_ context.Context, threshold int) (int64, error) {
	var n int64
	for _, p := range f.db.products {
		if p.Stock <= threshold {
			n++
		}
	}
	return n, nil
}

type fakeOrders struct {
	db *memDB
	// dupsLeft makes the next N inserts fail with ErrDuplicate, simulating
	// order-code collisions under the unique index.
	dupsLeft int
}

func (f *fakeOrders) Insert(_ context.Context, o *models.Order) error {
	if f.dupsLeft > 0 {
		f.dupsLeft--
		return repositories.ErrDuplicate
	}
	for _, existing := range f.db.orders {
		if existing.OrderCode == o.OrderCode {
			return repositories.ErrDuplicate
		}
	}
	o.ID = primitive.NewObjectID()
	o.CreatedAt = time.Now()
	clone := *o
	f.db.orders = append(f.db.orders, &clone)
	return nil
}

func (f *fakeOrders) FindByID(_ context.Context, id primitive.ObjectID) (*models.Order, error) {
	for _, o := range f.db.orders {
		if o.ID == id {
			clone := *o
			return &clone, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (f *fakeOrders) FindPopulated(ctx context.Context, id primitive.ObjectID) (*models.PopulatedOrder, error) {
	o, err := f.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	populated := &models.PopulatedOrder{Order: *o}
	for _, item := range o.Items {
		var product *models.Product
		if p, ok := f.db.products[item.ProductID]; ok {
			clone := *p
			product = &clone
		}
		populated.Lines = append(populated.Lines, models.PopulatedItem{OrderItem: item, Product: product})
	}
	return populated, nil
}

func (f *fakeOrders) ListByUser(_ context.Context, userID primitive.ObjectID) ([]models.Order, error) {
	var out []models.Order
	for _, o := range f.db.orders {
		if o.UserID != nil && *o.UserID == userID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (f *fakeOrders) List(_ context.Context, _ repositories.OrderFilter) ([]models.Order, error) {
	var out []models.Order
	for _, o := range f.db.orders {
		out = append(out, *o)
	}
	return out, nil
}

func (f *fakeOrders) UpdateStatus(_ context.Context, id primitive.ObjectID, status string) error {
	for _, o := range f.db.orders {
		if o.ID == id {
			o.Status = status
			return nil
		}
	}
	return repositories.ErrNotFound
}

func (f *fakeOrders) Count(_ context.Context) (int64, error) {
	return int64(len(f.db.orders)), nil
}

func (f *fakeOrders) CountByStatus(_ context.Context, status string) (int64, error) {
	var n int64
	for _, o := range f.db.orders {
		if o.Status == status {
			n++
		}
	}
	return n, nil
}

func (f *fakeOrders) Revenue(_ context.Context) (int64, error) {
	var total int64
	for _, o := range f.db.orders {
		if o.Status != models.OrderCancelled {
			total += o.Total
		}
	}
	return total, nil
}

// fakeTx snapshots the database before fn and restores it when fn fails.
type fakeTx struct{ db *memDB }

func (t *fakeTx) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	before := t.db.snapshot()
	if err := fn(ctx); err != nil {
		t.db.restore(before)
		return err
	}
	return nil
}

// ─── Fixtures ─────────────────────────────────────────────────────────────────

func newService(db *memDB) (*services.OrderService, *fakeOrders) {
	orders := &fakeOrders{db: db}
	return services.NewOrderService(orders, &fakeProducts{db: db}, &fakeTx{db: db}), orders
}

func guestInput(lines ...services.CartLine) services.PlaceOrderInput {
	return services.PlaceOrderInput{
		PhoneNumber:     "99112233",
		CustomerName:    "Bolor",
		Items:           lines,
		DeliveryAddress: models.DeliveryAddress{Address: "Ulaanbaatar, Sukhbaatar district"},
		PaymentMethod:   models.BankTransfer,
	}
}

// ─── Tests ────────────────────────────────────────────────────────────────────

func TestPlaceComputesTotalFromStoredPrices(t *testing.T) {
	db := newMemDB()
	shirt := db.addProduct("shirt", 1000, 10)
	socks := db.addProduct("socks", 250, 10)
	svc, _ := newService(db)

	order, err := svc.Place(context.Background(), guestInput(
		services.CartLine{ProductID: shirt.Hex(), Quantity: 2},
		services.CartLine{ProductID: socks.Hex(), Quantity: 3},
	))
	require.NoError(t, err)

	// 2×1000 + 3×250, regardless of anything the client claimed.
	assert.Equal(t, int64(2750), order.Total)
	require.Len(t, order.Items, 2)
	assert.Equal(t, int64(1000), order.Items[0].Price)
	assert.Equal(t, int64(250), order.Items[1].Price)
}

func TestGuestCheckout(t *testing.T) {
	db := newMemDB()
	dress := db.addProduct("dress", 1000, 5)
	svc, _ := newService(db)

	order, err := svc.Place(context.Background(), guestInput(
		services.CartLine{ProductID: dress.Hex(), Quantity: 2, Size: "M"},
	))
	require.NoError(t, err)

	assert.Equal(t, int64(2000), order.Total)
	assert.Equal(t, models.OrderPending, order.Status)
	assert.Nil(t, order.UserID, "guest order must not reference an account")
	assert.Equal(t, "99112233", order.PhoneNumber)
	assert.Equal(t, 3, db.products[dress].Stock, "stock 5 minus 2 ordered")
	assert.NotEmpty(t, order.OrderCode)
	assert.LessOrEqual(t, len(order.OrderCode), ordercode.MaxLen)
}

func TestPlaceReturnsExpandedReferences(t *testing.T) {
	db := newMemDB()
	dress := db.addProduct("dress", 1000, 5)
	svc, _ := newService(db)

	order, err := svc.Place(context.Background(), guestInput(
		services.CartLine{ProductID: dress.Hex(), Quantity: 1},
	))
	require.NoError(t, err)

	// The checkout response carries the re-read order with each line's
	// product expanded, not just the stored snapshot.
	require.Len(t, order.Lines, 1)
	require.NotNil(t, order.Lines[0].Product)
	assert.Equal(t, "dress", order.Lines[0].Product.Name)
	assert.Equal(t, int64(1000), order.Lines[0].Price)
}

func TestGuestOrderJSONOmitsUserReference(t *testing.T) {
	db := newMemDB()
	dress := db.addProduct("dress", 1000, 5)
	svc, _ := newService(db)

	order, err := svc.Place(context.Background(), guestInput(
		services.CartLine{ProductID: dress.Hex(), Quantity: 1},
	))
	require.NoError(t, err)

	data, err := json.Marshal(order)
	require.NoError(t, err)
	assert.NotContains(t, string(data), `"userId"`,
		"a guest order must not serialize a zero user id")
}

func TestSignedInCheckoutUsesAccountContact(t *testing.T) {
	db := newMemDB()
	dress := db.addProduct("dress", 1000, 5)
	svc, _ := newService(db)

	user := &models.User{
		ID:          primitive.NewObjectID(),
		PhoneNumber: "88110022",
		Name:        "Saraa",
	}
	in := guestInput(services.CartLine{ProductID: dress.Hex(), Quantity: 1})
	in.User = user
	in.PhoneNumber = "should-be-ignored"

	order, err := svc.Place(context.Background(), in)
	require.NoError(t, err)
	require.NotNil(t, order.UserID)
	assert.Equal(t, user.ID, *order.UserID)
	assert.Equal(t, "88110022", order.PhoneNumber)
	assert.Equal(t, "Saraa", order.CustomerName)
}

func TestInsufficientStockRollsBackEverything(t *testing.T) {
	db := newMemDB()
	shirt := db.addProduct("shirt", 1000, 10)
	scarce := db.addProduct("scarce", 500, 1)
	svc, _ := newService(db)

	_, err := svc.Place(context.Background(), guestInput(
		services.CartLine{ProductID: shirt.Hex(), Quantity: 2},
		services.CartLine{ProductID: scarce.Hex(), Quantity: 3},
	))
	require.Error(t, err)
	assert.True(t, repositories.IsInsufficientStock(err))

	// The first line's decrement must not survive the failed second line.
	assert.Equal(t, 10, db.products[shirt].Stock)
	assert.Equal(t, 1, db.products[scarce].Stock)
	assert.Empty(t, db.orders, "no order document may exist")
}

func TestUnknownProductRollsBack(t *testing.T) {
	db := newMemDB()
	shirt := db.addProduct("shirt", 1000, 10)
	svc, _ := newService(db)

	_, err := svc.Place(context.Background(), guestInput(
		services.CartLine{ProductID: shirt.Hex(), Quantity: 1},
		services.CartLine{ProductID: primitive.NewObjectID().Hex(), Quantity: 1},
	))
	require.ErrorIs(t, err, services.ErrUnknownProduct)
	assert.Equal(t, 10, db.products[shirt].Stock)
	assert.Empty(t, db.orders)
}

func TestPlaceRetriesCollidingOrderCode(t *testing.T) {
	db := newMemDB()
	shirt := db.addProduct("shirt", 1000, 10)
	svc, orders := newService(db)
	orders.dupsLeft = 2 // first two generated codes "collide"

	order, err := svc.Place(context.Background(), guestInput(
		services.CartLine{ProductID: shirt.Hex(), Quantity: 1},
	))
	require.NoError(t, err)
	assert.NotEmpty(t, order.OrderCode)
	assert.Len(t, db.orders, 1)
}

func TestPlaceValidation(t *testing.T) {
	db := newMemDB()
	shirt := db.addProduct("shirt", 1000, 10)
	svc, _ := newService(db)
	line := services.CartLine{ProductID: shirt.Hex(), Quantity: 1}

	_, err := svc.Place(context.Background(), guestInput())
	assert.ErrorIs(t, err, services.ErrEmptyCart)

	_, err = svc.Place(context.Background(), guestInput(
		services.CartLine{ProductID: shirt.Hex(), Quantity: 0},
	))
	assert.ErrorIs(t, err, services.ErrBadQuantity)

	in := guestInput(line)
	in.PaymentMethod = "crypto"
	_, err = svc.Place(context.Background(), in)
	assert.ErrorIs(t, err, services.ErrBadPayment)

	in = guestInput(line)
	in.PhoneNumber = ""
	_, err = svc.Place(context.Background(), in)
	assert.ErrorIs(t, err, services.ErrMissingContact)

	in = guestInput(line)
	in.DeliveryAddress = models.DeliveryAddress{}
	_, err = svc.Place(context.Background(), in)
	assert.ErrorIs(t, err, services.ErrMissingAddress)
}

func TestGetEnforcesOwnership(t *testing.T) {
	db := newMemDB()
	shirt := db.addProduct("shirt", 1000, 10)
	svc, _ := newService(db)

	owner := &models.User{ID: primitive.NewObjectID(), Role: models.RoleUser}
	in := guestInput(services.CartLine{ProductID: shirt.Hex(), Quantity: 1})
	in.User = owner
	order, err := svc.Place(context.Background(), in)
	require.NoError(t, err)

	_, err = svc.Get(context.Background(), order.ID, owner)
	assert.NoError(t, err, "owner reads their own order")

	other := &models.User{ID: primitive.NewObjectID(), Role: models.RoleUser}
	_, err = svc.Get(context.Background(), order.ID, other)
	assert.ErrorIs(t, err, services.ErrNotYourOrder)

	admin := &models.User{ID: primitive.NewObjectID(), Role: models.RoleAdmin}
	_, err = svc.Get(context.Background(), order.ID, admin)
	assert.NoError(t, err, "admin reads any order")
}

func TestUpdateStatus(t *testing.T) {
	db := newMemDB()
	shirt := db.addProduct("shirt", 1000, 10)
	svc, _ := newService(db)

	order, err := svc.Place(context.Background(), guestInput(
		services.CartLine{ProductID: shirt.Hex(), Quantity: 1},
	))
	require.NoError(t, err)

	updated, err := svc.UpdateStatus(context.Background(), order.ID, models.OrderShipped)
	require.NoError(t, err)
	assert.Equal(t, models.OrderShipped, updated.Status)

	_, err = svc.UpdateStatus(context.Background(), order.ID, "returned")
	assert.ErrorIs(t, err, services.ErrUnknownStatus)

	_, err = svc.UpdateStatus(context.Background(), primitive.NewObjectID(), models.OrderShipped)
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ganzorig/mishil/app/models"
	"github.com/ganzorig/mishil/app/repositories"
	"github.com/ganzorig/mishil/pkg/live"
	"github.com/ganzorig/mishil/pkg/logger"
	"github.com/ganzorig/mishil/pkg/metrics"
	"github.com/ganzorig/mishil/pkg/ordercode"
)

// codeRetries bounds how many times placement regenerates a colliding order
// code before giving up.
const codeRetries = 3

var (
	ErrEmptyCart      = errors.New("order must contain at least one item")
	ErrBadQuantity    = errors.New("item quantity must be positive")
	ErrUnknownProduct = errors.New("product not found")
	ErrBadPayment     = errors.New("unknown payment method")
	ErrMissingContact = errors.New("guest orders require a phone number")
	ErrMissingAddress = errors.New("delivery address is required")
	ErrUnknownStatus  = errors.New("unknown order status")
	ErrNotYourOrder   = errors.New("order belongs to another customer")
)

// CartLine is one requested line of a checkout. Validated by
// OrderService.validate, which can name the offending line.
type CartLine struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
	Size      string `json:"size"`
}

// PlaceOrderInput is the checkout payload. User is nil for guest checkout.
type PlaceOrderInput struct {
	User            *models.User
	PhoneNumber     string
	Email           string
	CustomerName    string
	Items           []CartLine
	DeliveryAddress models.DeliveryAddress
	PaymentMethod   string
}

// OrderService owns the checkout workflow and order reads.
type OrderService struct {
	orders   repositories.OrderStore
	products repositories.ProductStore
	tx       repositories.TxRunner
}

func NewOrderService(orders repositories.OrderStore, products repositories.ProductStore, tx repositories.TxRunner) *OrderService {
	return &OrderService{orders: orders, products: products, tx: tx}
}

// Place runs the checkout: it snapshots current product prices, computes the
// total server-side, writes the order and draws down stock, all inside one
// transaction. Any failure — unknown product, insufficient stock, a write
// error — rolls the whole thing back, so stock never moves for an order that
// was not created and no order exists whose stock did not move. The committed
// order is re-read with its user and product references expanded for the
// response.
func (s *OrderService) Place(ctx context.Context, in PlaceOrderInput) (*models.PopulatedOrder, error) {
	if err := s.validate(in); err != nil {
		return nil, err
	}

	order := &models.Order{
		Items:           make([]models.OrderItem, 0, len(in.Items)),
		DeliveryAddress: in.DeliveryAddress,
		PaymentMethod:   in.PaymentMethod,
		Status:          models.OrderPending,
	}
	if in.User != nil {
		order.UserID = &in.User.ID
		order.PhoneNumber = in.User.PhoneNumber
		order.Email = in.User.Email
		order.CustomerName = in.User.Name
	} else {
		order.PhoneNumber = in.PhoneNumber
		order.Email = in.Email
		order.CustomerName = in.CustomerName
	}

	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		order.Items = order.Items[:0]
		order.Total = 0

		// Snapshot each line at the price the product carries right now.
		for _, line := range in.Items {
			pid, err := primitive.ObjectIDFromHex(line.ProductID)
			if err != nil {
				return fmt.Errorf("%w: %s", ErrUnknownProduct, line.ProductID)
			}
			p, err := s.products.FindByID(ctx, pid)
			if errors.Is(err, repositories.ErrNotFound) {
				return fmt.Errorf("%w: %s", ErrUnknownProduct, line.ProductID)
			}
			if err != nil {
				return err
			}
			order.Items = append(order.Items, models.OrderItem{
				ProductID: p.ID,
				Quantity:  line.Quantity,
				Price:     p.Price,
				Size:      line.Size,
			})
			order.Total += p.Price * int64(line.Quantity)
		}

		// Insert under the unique orderCode index; a collision just means
		// another order landed in the same microsecond, so regenerate.
		var insertErr error
		for attempt := 0; attempt < codeRetries; attempt++ {
			order.ID = primitive.NilObjectID
			order.OrderCode = ordercode.New()
			insertErr = s.orders.Insert(ctx, order)
			if !errors.Is(insertErr, repositories.ErrDuplicate) {
				break
			}
		}
		if insertErr != nil {
			return insertErr
		}

		for _, item := range order.Items {
			if err := s.products.DecrementStock(ctx, item.ProductID, item.Quantity); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if repositories.IsInsufficientStock(err) {
			metrics.StockConflicts.Inc()
		}
		return nil, err
	}

	metrics.OrdersPlaced.Inc()
	metrics.OrderRevenue.Add(float64(order.Total))
	live.Orders.BroadcastJSON(live.OrderEvent{
		Type:      "order.created",
		OrderID:   order.ID.Hex(),
		OrderCode: order.OrderCode,
		Total:     order.Total,
		Status:    order.Status,
		At:        time.Now(),
	})
	logger.WithCtx(ctx).Info("order placed",
		"orderCode", order.OrderCode, "total", order.Total, "items", len(order.Items))

	// The expanded view is a courtesy for the response; the order itself is
	// already committed, so fall back to the raw document if it fails.
	populated, err := s.orders.FindPopulated(ctx, order.ID)
	if err != nil {
		logger.WithCtx(ctx).Warn("order placed, populate failed",
			"orderCode", order.OrderCode, "error", err)
		return &models.PopulatedOrder{Order: *order}, nil
	}
	return populated, nil
}

func (s *OrderService) validate(in PlaceOrderInput) error {
	if len(in.Items) == 0 {
		return ErrEmptyCart
	}
	for _, line := range in.Items {
		if line.Quantity <= 0 {
			return ErrBadQuantity
		}
	}
	if !models.ValidPaymentMethod(in.PaymentMethod) {
		return ErrBadPayment
	}
	if in.User == nil && in.PhoneNumber == "" {
		return ErrMissingContact
	}
	if in.DeliveryAddress.Address == "" {
		return ErrMissingAddress
	}
	return nil
}

// Get returns one order, populated, enforcing ownership: customers only see
// their own orders, admins see everything. Guest orders are admin-only after
// creation.
func (s *OrderService) Get(ctx context.Context, id primitive.ObjectID, viewer *models.User) (*models.PopulatedOrder, error) {
	o, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !viewer.IsAdmin() && (o.UserID == nil || *o.UserID != viewer.ID) {
		return nil, ErrNotYourOrder
	}
	return s.orders.FindPopulated(ctx, id)
}

// ListForUser returns the viewer's own orders, newest first.
func (s *OrderService) ListForUser(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error) {
	return s.orders.ListByUser(ctx, userID)
}

// ListAll is the admin order list, optionally bounded by a date range.
func (s *OrderService) ListAll(ctx context.Context, f repositories.OrderFilter) ([]models.Order, error) {
	return s.orders.List(ctx, f)
}

// UpdateStatus moves an order to a new status and notifies the live feed.
func (s *OrderService) UpdateStatus(ctx context.Context, id primitive.ObjectID, status string) (*models.Order, error) {
	if !models.ValidOrderStatus(status) {
		return nil, ErrUnknownStatus
	}
	if err := s.orders.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}
	o, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	live.Orders.BroadcastJSON(live.OrderEvent{
		Type:      "order.status",
		OrderID:   o.ID.Hex(),
		OrderCode: o.OrderCode,
		Total:     o.Total,
		Status:    o.Status,
		At:        time.Now(),
	})
	return o, nil
}

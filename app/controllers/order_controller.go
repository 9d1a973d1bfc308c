package controllers

import (
	"net/http"

	"github.com/ganzorig/mishil/app/middlewares"
	"github.com/ganzorig/mishil/app/models"
	"github.com/ganzorig/mishil/app/services"
	"github.com/ganzorig/mishil/pkg/bind"
	"github.com/ganzorig/mishil/pkg/response"
)

// placeOrderRequest is the checkout body. The contact fields matter only for
// guests; for signed-in customers the account supplies them.
type placeOrderRequest struct {
	PhoneNumber     string                 `json:"phoneNumber"`
	Email           string                 `json:"email" validate:"nullable,email"`
	CustomerName    string                 `json:"customerName"`
	Items           []services.CartLine    `json:"items"`
	DeliveryAddress models.DeliveryAddress `json:"deliveryAddress"`
	PaymentMethod   string                 `json:"paymentMethod" validate:"required"`
}

// OrderController serves checkout and the customer's own orders.
type OrderController struct {
	orders *services.OrderService
}

func NewOrderController(orders *services.OrderService) *OrderController {
	return &OrderController{orders: orders}
}

// Place runs checkout. Works for guests and signed-in customers alike; the
// route sits behind OptionalAuth.
func (c *OrderController) Place(w http.ResponseWriter, r *http.Request) {
	var body placeOrderRequest
	if errs, err := bind.JSON(r, &body); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", err)
		return
	} else if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	order, err := c.orders.Place(r.Context(), services.PlaceOrderInput{
		User:            middlewares.CurrentUser(r.Context()),
		PhoneNumber:     body.PhoneNumber,
		Email:           body.Email,
		CustomerName:    body.CustomerName,
		Items:           body.Items,
		DeliveryAddress: body.DeliveryAddress,
		PaymentMethod:   body.PaymentMethod,
	})
	if err != nil {
		fail(w, r, err)
		return
	}
	response.Created(w, order)
}

// Get returns one populated order. Customers only reach their own.
func (c *OrderController) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := objectID(r)
	if !ok {
		response.NotFound(w, "Order not found")
		return
	}

	order, err := c.orders.Get(r.Context(), id, middlewares.CurrentUser(r.Context()))
	if err != nil {
		fail(w, r, err)
		return
	}
	response.Success(w, order)
}

// Mine lists the signed-in customer's orders, newest first.
func (c *OrderController) Mine(w http.ResponseWriter, r *http.Request) {
	user := middlewares.CurrentUser(r.Context())
	orders, err := c.orders.ListForUser(r.Context(), user.ID)
	if err != nil {
		fail(w, r, err)
		return
	}
	response.Success(w, orders)
}

package controllers

import (
	"net/http"
	"time"

	"github.com/ganzorig/mishil/app/middlewares"
	"github.com/ganzorig/mishil/app/repositories"
	"github.com/ganzorig/mishil/app/services"
	"github.com/ganzorig/mishil/pkg/bind"
	"github.com/ganzorig/mishil/pkg/live"
	"github.com/ganzorig/mishil/pkg/response"
)

// AdminOrderController serves the console's order views and the live feed.
type AdminOrderController struct {
	orders *services.OrderService
}

func NewAdminOrderController(orders *services.OrderService) *AdminOrderController {
	return &AdminOrderController{orders: orders}
}

// List returns all orders, optionally bounded by ?from= and ?to=
// (YYYY-MM-DD). The to-date is inclusive of its whole day.
func (c *AdminOrderController) List(w http.ResponseWriter, r *http.Request) {
	var f repositories.OrderFilter

	if raw := r.URL.Query().Get("from"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			response.Error(w, http.StatusBadRequest, "Invalid from date, want YYYY-MM-DD")
			return
		}
		f.From = t
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			response.Error(w, http.StatusBadRequest, "Invalid to date, want YYYY-MM-DD")
			return
		}
		f.To = t.Add(24*time.Hour - time.Nanosecond)
	}

	orders, err := c.orders.ListAll(r.Context(), f)
	if err != nil {
		fail(w, r, err)
		return
	}
	response.Success(w, orders)
}

// Get returns one populated order for the console.
func (c *AdminOrderController) Get(w http.ResponseWriter, r *http.Request) {
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

// UpdateStatus moves an order through its lifecycle.
func (c *AdminOrderController) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := objectID(r)
	if !ok {
		response.NotFound(w, "Order not found")
		return
	}

	var body struct {
		Status string `json:"status" validate:"required"`
	}
	if errs, err := bind.JSON(r, &body); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", err)
		return
	} else if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	order, err := c.orders.UpdateStatus(r.Context(), id, body.Status)
	if err != nil {
		fail(w, r, err)
		return
	}
	response.Success(w, order)
}

// Live upgrades to a WebSocket feed of order events. Sits behind the admin
// gate like every other console route.
func (c *AdminOrderController) Live(w http.ResponseWriter, r *http.Request) {
	live.Upgrade(w, r, live.Orders)
}

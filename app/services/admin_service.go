package services

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ganzorig/mishil/app/models"
	"github.com/ganzorig/mishil/app/repositories"
	"github.com/ganzorig/mishil/pkg/auth"
	"github.com/ganzorig/mishil/pkg/logger"
)

// lowStockThreshold marks products the dashboard flags for restocking.
const lowStockThreshold = 5

var (
	ErrUnknownRole = errors.New("unknown role")
	ErrLastAdmin   = errors.New("cannot remove the last admin")
)

// DashboardStats is the admin landing page summary.
type DashboardStats struct {
	Users         int64 `json:"users"`
	Products      int64 `json:"products"`
	LowStock      int64 `json:"lowStock"`
	Orders        int64 `json:"orders"`
	PendingOrders int64 `json:"pendingOrders"`
	Revenue       int64 `json:"revenue"`
}

// AdminService owns the console's cross-cutting operations: the dashboard
// and user administration.
type AdminService struct {
	users    repositories.UserStore
	products repositories.ProductStore
	orders   repositories.OrderStore
}

func NewAdminService(users repositories.UserStore, products repositories.ProductStore, orders repositories.OrderStore) *AdminService {
	return &AdminService{users: users, products: products, orders: orders}
}

// Dashboard gathers the summary counters.
func (s *AdminService) Dashboard(ctx context.Context) (*DashboardStats, error) {
	stats := &DashboardStats{}
	var err error

	if stats.Users, err = s.users.Count(ctx); err != nil {
		return nil, err
	}
	if stats.Products, err = s.products.Count(ctx); err != nil {
		return nil, err
	}
	if stats.LowStock, err = s.products.CountLowStock(ctx, lowStockThreshold); err != nil {
		return nil, err
	}
	if stats.Orders, err = s.orders.Count(ctx); err != nil {
		return nil, err
	}
	if stats.PendingOrders, err = s.orders.CountByStatus(ctx, models.OrderPending); err != nil {
		return nil, err
	}
	if stats.Revenue, err = s.orders.Revenue(ctx); err != nil {
		return nil, err
	}
	return stats, nil
}

// Users lists every account for the console.
func (s *AdminService) Users(ctx context.Context) ([]models.User, error) {
	users, err := s.users.All(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		users[i] = users[i].Public()
	}
	return users, nil
}

// SetRole promotes or demotes an account. Demotion keeps at least one admin.
func (s *AdminService) SetRole(ctx context.Context, id primitive.ObjectID, role string) error {
	if role != models.RoleAdmin && role != models.RoleUser {
		return ErrUnknownRole
	}

	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if user.IsAdmin() && role == models.RoleUser {
		if err := s.ensureNotLastAdmin(ctx, id); err != nil {
			return err
		}
	}

	if err := s.users.UpdateRole(ctx, id, role); err != nil {
		return err
	}
	logger.WithCtx(ctx).Info("role changed", "userId", id.Hex(), "role", role)
	return nil
}

// ResetPIN sets a new 4-digit PIN on the account.
func (s *AdminService) ResetPIN(ctx context.Context, id primitive.ObjectID, pin string) error {
	hash, err := auth.HashPIN(pin)
	if err != nil {
		return err
	}
	return s.users.UpdatePassword(ctx, id, hash)
}

// DeleteUser removes an account. Their orders survive; the stored contact
// snapshot on each order still identifies the customer.
func (s *AdminService) DeleteUser(ctx context.Context, id primitive.ObjectID) error {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if user.IsAdmin() {
		if err := s.ensureNotLastAdmin(ctx, id); err != nil {
			return err
		}
	}
	return s.users.Delete(ctx, id)
}

func (s *AdminService) ensureNotLastAdmin(ctx context.Context, exclude primitive.ObjectID) error {
	users, err := s.users.All(ctx)
	if err != nil {
		return err
	}
	for _, u := range users {
		if u.IsAdmin() && u.ID != exclude {
			return nil
		}
	}
	return ErrLastAdmin
}

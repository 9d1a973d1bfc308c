// Package middlewares holds the storefront's auth gates. They sit in app/
// rather than pkg/middleware because they need the user store and models.
package middlewares

import (
	"context"
	"net/http"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ganzorig/mishil/app/models"
	"github.com/ganzorig/mishil/app/repositories"
	"github.com/ganzorig/mishil/pkg/auth"
	"github.com/ganzorig/mishil/pkg/response"
)

type userKey struct{}

// CurrentUser returns the authenticated user attached by Auth or
// OptionalAuth, or nil for a guest.
func CurrentUser(ctx context.Context) *models.User {
	u, _ := ctx.Value(userKey{}).(*models.User)
	return u
}

func withUser(ctx context.Context, u *models.User) context.Context {
	return context.WithValue(ctx, userKey{}, u)
}

// resolve validates the bearer token and loads the account fresh from the
// store. The token only carries the user id; role comes from the document,
// so a promotion to admin works on the very next request without a new token.
func resolve(r *http.Request, users repositories.UserStore) *models.User {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return nil
	}
	token := strings.TrimPrefix(header, "Bearer ")
	if token == "" {
		return nil
	}

	claims, err := auth.ValidateToken(token)
	if err != nil {
		return nil
	}
	id, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return nil
	}
	user, err := users.FindByID(r.Context(), id)
	if err != nil {
		return nil
	}
	return user
}

// Auth requires a valid bearer token bound to an existing account.
func Auth(users repositories.UserStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := resolve(r, users)
			if user == nil {
				response.Unauthorized(w)
				return
			}
			next.ServeHTTP(w, r.WithContext(withUser(r.Context(), user)))
		})
	}
}

// OptionalAuth attaches the account when a valid token is present and lets
// the request through as a guest otherwise. Checkout uses it: the same
// endpoint serves signed-in and guest customers.
func OptionalAuth(users repositories.UserStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if user := resolve(r, users); user != nil {
				r = r.WithContext(withUser(r.Context(), user))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// AdminOnly gates the console routes. Chain after Auth.
func AdminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := CurrentUser(r.Context())
		if user == nil {
			response.Unauthorized(w)
			return
		}
		if !user.IsAdmin() {
			response.Forbidden(w)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Package controllers holds the HTTP handlers. Controllers stay thin: decode
// and validate the request, call a service, translate the outcome into the
// JSON envelope.
package controllers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ganzorig/mishil/app/models"
	"github.com/ganzorig/mishil/app/repositories"
	"github.com/ganzorig/mishil/app/services"
	"github.com/ganzorig/mishil/pkg/auth"
	"github.com/ganzorig/mishil/pkg/logger"
	"github.com/ganzorig/mishil/pkg/response"
)

// objectID parses the {id} route parameter. A malformed id is reported as
// not-found rather than a client error: the resource cannot exist.
func objectID(r *http.Request) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	return id, err == nil
}

// fail maps service and store errors onto the response envelope.
func fail(w http.ResponseWriter, r *http.Request, err error) {
	var stockErr *repositories.InsufficientStockError

	switch {
	case errors.Is(err, repositories.ErrNotFound):
		response.NotFound(w)
	case errors.As(err, &stockErr):
		response.Error(w, http.StatusConflict, stockErr.Error())
	case errors.Is(err, repositories.ErrDuplicate):
		response.Error(w, http.StatusConflict, "Already exists", err)
	case errors.Is(err, services.ErrInvalidCredentials):
		response.Unauthorized(w, err.Error())
	case errors.Is(err, services.ErrNotYourOrder):
		response.Forbidden(w)
	case isBadRequest(err):
		response.Error(w, http.StatusBadRequest, err.Error())
	default:
		logger.WithCtx(r.Context()).Error("request failed",
			"method", r.Method, "path", r.URL.Path, "error", err)
		response.Error(w, http.StatusInternalServerError, "Something went wrong", err)
	}
}

func isBadRequest(err error) bool {
	for _, target := range []error{
		services.ErrEmptyCart,
		services.ErrBadQuantity,
		services.ErrUnknownProduct,
		services.ErrBadPayment,
		services.ErrMissingContact,
		services.ErrMissingAddress,
		services.ErrUnknownStatus,
		services.ErrUnknownRole,
		services.ErrLastAdmin,
		services.ErrCategoryInUse,
		auth.ErrInvalidPIN,
		models.ErrNoImages,
		models.ErrTooManyImages,
		models.ErrNoMainImage,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

package controllers

import (
	"net/http"

	"github.com/ganzorig/mishil/app/middlewares"
	"github.com/ganzorig/mishil/app/services"
	"github.com/ganzorig/mishil/pkg/bind"
	"github.com/ganzorig/mishil/pkg/response"
)

// AuthController serves registration, login and the signed-in profile.
type AuthController struct {
	auth *services.AuthService
}

func NewAuthController(auth *services.AuthService) *AuthController {
	return &AuthController{auth: auth}
}

// Signup registers an account and returns a session token.
func (c *AuthController) Signup(w http.ResponseWriter, r *http.Request) {
	var in services.SignupInput
	if errs, err := bind.JSON(r, &in); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", err)
		return
	} else if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	session, err := c.auth.Signup(r.Context(), in)
	if err != nil {
		fail(w, r, err)
		return
	}
	response.Created(w, session)
}

// Signin exchanges phone number + PIN for a session token.
func (c *AuthController) Signin(w http.ResponseWriter, r *http.Request) {
	var in services.SigninInput
	if errs, err := bind.JSON(r, &in); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", err)
		return
	} else if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	session, err := c.auth.Signin(r.Context(), in)
	if err != nil {
		fail(w, r, err)
		return
	}
	response.Success(w, session)
}

// Me returns the signed-in profile.
func (c *AuthController) Me(w http.ResponseWriter, r *http.Request) {
	user := middlewares.CurrentUser(r.Context())
	response.Success(w, user.Public())
}

// UpdateMe edits the signed-in profile.
func (c *AuthController) UpdateMe(w http.ResponseWriter, r *http.Request) {
	user := middlewares.CurrentUser(r.Context())

	var in services.ProfileInput
	if errs, err := bind.JSON(r, &in); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", err)
		return
	} else if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	updated, err := c.auth.UpdateProfile(r.Context(), user.ID, in)
	if err != nil {
		fail(w, r, err)
		return
	}
	response.Success(w, updated.Public())
}

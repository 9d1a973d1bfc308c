package controllers

import (
	"net/http"

	"github.com/ganzorig/mishil/app/services"
	"github.com/ganzorig/mishil/pkg/bind"
	"github.com/ganzorig/mishil/pkg/response"
)

// AdminController serves the console dashboard and user administration.
type AdminController struct {
	admin *services.AdminService
}

func NewAdminController(admin *services.AdminService) *AdminController {
	return &AdminController{admin: admin}
}

// Dashboard returns the summary counters for the console landing page.
func (c *AdminController) Dashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := c.admin.Dashboard(r.Context())
	if err != nil {
		fail(w, r, err)
		return
	}
	response.Success(w, stats)
}

// Users lists every account.
func (c *AdminController) Users(w http.ResponseWriter, r *http.Request) {
	users, err := c.admin.Users(r.Context())
	if err != nil {
		fail(w, r, err)
		return
	}
	response.Success(w, users)
}

// SetRole promotes or demotes an account. The target's next request runs
// with the new role; no token re-issue is needed.
func (c *AdminController) SetRole(w http.ResponseWriter, r *http.Request) {
	id, ok := objectID(r)
	if !ok {
		response.NotFound(w, "User not found")
		return
	}

	var body struct {
		Role string `json:"role" validate:"required,in=admin,user"`
	}
	if errs, err := bind.JSON(r, &body); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", err)
		return
	} else if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	if err := c.admin.SetRole(r.Context(), id, body.Role); err != nil {
		fail(w, r, err)
		return
	}
	response.Message(w, "Role updated")
}

// ResetPIN sets a new 4-digit PIN on an account.
func (c *AdminController) ResetPIN(w http.ResponseWriter, r *http.Request) {
	id, ok := objectID(r)
	if !ok {
		response.NotFound(w, "User not found")
		return
	}

	var body struct {
		Password string `json:"password" validate:"required,digits=4"`
	}
	if errs, err := bind.JSON(r, &body); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", err)
		return
	} else if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	if err := c.admin.ResetPIN(r.Context(), id, body.Password); err != nil {
		fail(w, r, err)
		return
	}
	response.Message(w, "PIN reset")
}

// DeleteUser removes an account.
func (c *AdminController) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := objectID(r)
	if !ok {
		response.NotFound(w, "User not found")
		return
	}
	if err := c.admin.DeleteUser(r.Context(), id); err != nil {
		fail(w, r, err)
		return
	}
	response.Message(w, "User deleted")
}

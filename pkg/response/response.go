// Package response writes the JSON envelope used by every Mishil endpoint:
//
//	{"success": true,  "data": ...}
//	{"success": false, "message": "Product not found", "error": "..."}
//
// The "error" field carries debug detail and is omitted in production.
package response

import (
	"encoding/json"
	"net/http"

	"github.com/ganzorig/mishil/config"
)

type envelope struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Errors  interface{} `json:"errors,omitempty"`
}

func write(w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body) //nolint:errcheck
}

// Success sends a 200 with data.
func Success(w http.ResponseWriter, data interface{}) {
	write(w, http.StatusOK, envelope{Success: true, Data: data})
}

// Created sends a 201 with data.
func Created(w http.ResponseWriter, data interface{}) {
	write(w, http.StatusCreated, envelope{Success: true, Data: data})
}

// Message sends a 200 with a human-readable message and no data.
func Message(w http.ResponseWriter, message string) {
	write(w, http.StatusOK, envelope{Success: true, Message: message})
}

// Error sends a failure envelope with the given status and message.
// detail is optional debug information shown only outside production.
func Error(w http.ResponseWriter, status int, message string, detail ...error) {
	body := envelope{Success: false, Message: message}
	if len(detail) > 0 && detail[0] != nil && !config.IsProduction() {
		body.Error = detail[0].Error()
	}
	write(w, status, body)
}

// ValidationError sends a 422 with a field-level error map.
func ValidationError(w http.ResponseWriter, errs map[string]string) {
	write(w, http.StatusUnprocessableEntity, envelope{
		Success: false,
		Message: "Validation failed",
		Errors:  errs,
	})
}

// Unauthorized sends a 401.
func Unauthorized(w http.ResponseWriter, message ...string) {
	msg := "Unauthorized"
	if len(message) > 0 {
		msg = message[0]
	}
	Error(w, http.StatusUnauthorized, msg)
}

// Forbidden sends a 403.
func Forbidden(w http.ResponseWriter) {
	Error(w, http.StatusForbidden, "Forbidden")
}

// NotFound sends a 404.
func NotFound(w http.ResponseWriter, message ...string) {
	msg := "Not found"
	if len(message) > 0 {
		msg = message[0]
	}
	Error(w, http.StatusNotFound, msg)
}

// Package response writes the JSON envelope every endpoint returns:
//
//	{"status": 200, "message": "...", "data": ..., "errors": {...}}
package response

import (
	"encoding/json"
	"net/http"

	"github.com/shashiranjanraj/bazaar/pkg/orm"
)

type Envelope struct {
	Status  int         `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Errors  interface{} `json:"errors,omitempty"`
}

// Page is the data member of a paginated response.
type Page struct {
	Items      interface{}    `json:"items"`
	Pagination orm.Pagination `json:"pagination"`
}

func Write(w http.ResponseWriter, status int, body Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body) //nolint:errcheck
}

// Success sends a 200 JSON response with data.
func Success(w http.ResponseWriter, data interface{}) {
	Write(w, http.StatusOK, Envelope{Status: http.StatusOK, Data: data})
}

// Created sends a 201 JSON response with data.
func Created(w http.ResponseWriter, data interface{}) {
	Write(w, http.StatusCreated, Envelope{Status: http.StatusCreated, Data: data})
}

// Message sends a 200 with only a message, e.g. after a delete.
func Message(w http.ResponseWriter, message string) {
	Write(w, http.StatusOK, Envelope{Status: http.StatusOK, Message: message})
}

// Error sends a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	Write(w, status, Envelope{Status: status, Message: message})
}

// ValidationError sends a 422 with field-level error map.
func ValidationError(w http.ResponseWriter, errs map[string]string) {
	Write(w, http.StatusUnprocessableEntity, Envelope{
		Status:  http.StatusUnprocessableEntity,
		Message: "Validation failed",
		Errors:  errs,
	})
}

// Paginated sends a 200 response with items and pagination metadata.
func Paginated(w http.ResponseWriter, items interface{}, p orm.Pagination) {
	Success(w, Page{Items: items, Pagination: p})
}

func Unauthorized(w http.ResponseWriter) {
	Error(w, http.StatusUnauthorized, "Unauthorized")
}

func Forbidden(w http.ResponseWriter) {
	Error(w, http.StatusForbidden, "Forbidden")
}

func NotFound(w http.ResponseWriter) {
	Error(w, http.StatusNotFound, "Not found")
}

func TooManyRequests(w http.ResponseWriter) {
	Error(w, http.StatusTooManyRequests, "Too Many Requests")
}

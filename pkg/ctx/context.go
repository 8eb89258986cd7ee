// Package ctx gives handlers a single *Context instead of the
// (http.ResponseWriter, *http.Request) pair:
//
//	func (h *ProductController) Show(c *ctx.Context) {
//	    id, ok := c.ParamUint("id")
//	    ...
//	    c.Success(product)
//	}
//
//	router.Get("/products/{id}", "products.show", ctx.Wrap(h.Show))
package ctx

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/shashiranjanraj/bazaar/pkg/auth"
	"github.com/shashiranjanraj/bazaar/pkg/bind"
	"github.com/shashiranjanraj/bazaar/pkg/logger"
	"github.com/shashiranjanraj/bazaar/pkg/orm"
	"github.com/shashiranjanraj/bazaar/pkg/response"
)

// HandlerFunc is the context-aware handler signature.
type HandlerFunc func(c *Context)

// Wrap converts a HandlerFunc to a standard http.HandlerFunc.
func Wrap(h HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := acquire(w, r)
		defer release(c)
		h(c)
	}
}

// Context wraps a request/response pair.
type Context struct {
	W      http.ResponseWriter
	R      *http.Request
	mu     sync.RWMutex
	store  map[string]any
	status int // 0 until written
}

var pool = sync.Pool{
	New: func() any { return &Context{store: make(map[string]any)} },
}

func acquire(w http.ResponseWriter, r *http.Request) *Context {
	c := pool.Get().(*Context)
	c.W = w
	c.R = r
	c.status = 0
	for k := range c.store {
		delete(c.store, k)
	}
	return c
}

func release(c *Context) {
	c.W = nil
	c.R = nil
	pool.Put(c)
}

// ─── Request helpers ──────────────────────────────────────────────────────────

// Param returns a URL path parameter ("/products/{id}" → c.Param("id")).
func (c *Context) Param(key string) string {
	return chi.URLParam(c.R, key)
}

// ParamUint parses a numeric path parameter. It reports false for anything
// that is not a positive integer.
func (c *Context) ParamUint(key string) (uint, bool) {
	n, err := strconv.ParseUint(c.Param(key), 10, 64)
	if err != nil || n == 0 {
		return 0, false
	}
	return uint(n), true
}

func (c *Context) Query(key string) string {
	return c.R.URL.Query().Get(key)
}

func (c *Context) DefaultQuery(key, def string) string {
	if v := c.Query(key); v != "" {
		return v
	}
	return def
}

// QueryInt returns the query value as an int, or def when absent or invalid.
func (c *Context) QueryInt(key string, def int) int {
	n, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return def
	}
	return n
}

func (c *Context) Header(key string) string {
	return c.R.Header.Get(key)
}

// BearerToken returns the token from "Authorization: Bearer <token>".
func (c *Context) BearerToken() string {
	return BearerToken(c.R)
}

func BearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

// ClientIP returns the client IP, respecting X-Forwarded-For.
func (c *Context) ClientIP() string {
	return ClientIP(c.R)
}

func ClientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return strings.TrimSpace(strings.SplitN(fwd, ",", 2)[0])
	}
	if real := r.Header.Get("X-Real-Ip"); real != "" {
		return real
	}
	ip := r.RemoteAddr
	if idx := strings.LastIndex(ip, ":"); idx != -1 {
		ip = ip[:idx]
	}
	return ip
}

func (c *Context) Context() context.Context { return c.R.Context() }

// Principal returns the caller resolved by the auth middleware.
func (c *Context) Principal() (auth.Principal, bool) {
	return auth.FromContext(c.R.Context())
}

// ─── Per-request store ────────────────────────────────────────────────────────

func (c *Context) Set(key string, val any) {
	c.mu.Lock()
	c.store[key] = val
	c.mu.Unlock()
}

func (c *Context) Get(key string) (any, bool) {
	c.mu.RLock()
	v, ok := c.store[key]
	c.mu.RUnlock()
	return v, ok
}

// ─── Binding ──────────────────────────────────────────────────────────────────

// Bind decodes a JSON or multipart body into dest and validates it. On
// failure it writes a 400 or 422 and returns false.
//
//	var in CreateProductInput
//	files, ok := c.Bind(&in)
//	if !ok {
//	    return
//	}
func (c *Context) Bind(dest any) ([]bind.File, bool) {
	errs, files, err := bind.Request(c.R, dest)
	if err != nil {
		c.Error(http.StatusBadRequest, err.Error())
		return nil, false
	}
	if len(errs) > 0 {
		c.ValidationError(errs)
		return nil, false
	}
	return files, true
}

// ─── Responses ────────────────────────────────────────────────────────────────

func (c *Context) JSON(code int, v any) {
	c.W.Header().Set("Content-Type", "application/json")
	c.W.WriteHeader(code)
	c.status = code
	json.NewEncoder(c.W).Encode(v) //nolint:errcheck
}

func (c *Context) envelope(code int, e response.Envelope) {
	e.Status = code
	c.JSON(code, e)
}

// Success sends a 200 envelope: {"status":200,"data":...}
func (c *Context) Success(data any) {
	c.envelope(http.StatusOK, response.Envelope{Data: data})
}

func (c *Context) Created(data any) {
	c.envelope(http.StatusCreated, response.Envelope{Data: data})
}

func (c *Context) Message(message string) {
	c.envelope(http.StatusOK, response.Envelope{Message: message})
}

func (c *Context) Paginated(items any, p orm.Pagination) {
	c.Success(response.Page{Items: items, Pagination: p})
}

func (c *Context) Error(code int, message string) {
	c.envelope(code, response.Envelope{Message: message})
}

func (c *Context) ValidationError(errs map[string]string) {
	c.envelope(http.StatusUnprocessableEntity, response.Envelope{
		Message: "Validation failed",
		Errors:  errs,
	})
}

func (c *Context) Unauthorized() { c.Error(http.StatusUnauthorized, "Unauthorized") }
func (c *Context) Forbidden()    { c.Error(http.StatusForbidden, "Forbidden") }
func (c *Context) NotFound()     { c.Error(http.StatusNotFound, "Not found") }

// Fail maps err onto a response. Errors carrying field errors become 422;
// errors with a StatusCode below 500 use that code and their message;
// everything else is logged and reported as a bare 500.
func (c *Context) Fail(err error) {
	var fe interface{ FieldErrors() map[string]string }
	if errors.As(err, &fe) {
		c.ValidationError(fe.FieldErrors())
		return
	}
	if errors.Is(err, auth.ErrUnauthorized) {
		c.Unauthorized()
		return
	}
	var se interface {
		error
		StatusCode() int
	}
	if errors.As(err, &se) && se.StatusCode() < http.StatusInternalServerError {
		c.Error(se.StatusCode(), se.Error())
		return
	}

	logger.WithCtx(c.Context()).Error("request failed", "error", err.Error(), "path", c.R.URL.Path)
	c.Error(http.StatusInternalServerError, "Internal Server Error")
}

// WrittenStatus returns the status written so far, or 0.
func (c *Context) WrittenStatus() int { return c.status }

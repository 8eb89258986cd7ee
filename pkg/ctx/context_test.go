package ctx_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shashiranjanraj/bazaar/pkg/auth"
	appctx "github.com/shashiranjanraj/bazaar/pkg/ctx"
	"github.com/shashiranjanraj/bazaar/pkg/orm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Status  int               `json:"status"`
	Message string            `json:"message"`
	Data    json.RawMessage   `json:"data"`
	Errors  map[string]string `json:"errors"`
}

func serve(t *testing.T, req *http.Request, h appctx.HandlerFunc) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	rec := httptest.NewRecorder()
	appctx.Wrap(h)(rec, req)
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return rec, env
}

func TestSuccessEnvelope(t *testing.T) {
	rec, env := serve(t, httptest.NewRequest(http.MethodGet, "/", nil), func(c *appctx.Context) {
		c.Success(map[string]any{"id": 1})
	})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 200, env.Status)
	assert.JSONEq(t, `{"id":1}`, string(env.Data))
}

func TestPaginatedEnvelope(t *testing.T) {
	_, env := serve(t, httptest.NewRequest(http.MethodGet, "/", nil), func(c *appctx.Context) {
		c.Paginated([]int{1, 2}, orm.Pagination{CurrentPage: 1, PerPage: 12, Total: 2, LastPage: 1})
	})
	assert.JSONEq(t, `{"items":[1,2],"pagination":{"current_page":1,"per_page":12,"total":2,"last_page":1}}`, string(env.Data))
}

type statusErr struct{ code int }

func (e statusErr) Error() string   { return http.StatusText(e.code) }
func (e statusErr) StatusCode() int { return e.code }

type fieldErr map[string]string

func (fieldErr) Error() string                    { return "invalid" }
func (f fieldErr) FieldErrors() map[string]string { return f }

func TestFailMapsErrors(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{fmt.Errorf("get product: %w", statusErr{http.StatusNotFound}), http.StatusNotFound},
		{statusErr{http.StatusForbidden}, http.StatusForbidden},
		{statusErr{http.StatusConflict}, http.StatusConflict},
		{fmt.Errorf("resolve: %w", auth.ErrUnauthorized), http.StatusUnauthorized},
		{fieldErr{"name": "The name field is required."}, http.StatusUnprocessableEntity},
		{statusErr{http.StatusServiceUnavailable}, http.StatusInternalServerError},
		{errors.New("disk on fire"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		rec, env := serve(t, httptest.NewRequest(http.MethodGet, "/", nil), func(c *appctx.Context) {
			c.Fail(tc.err)
		})
		assert.Equal(t, tc.code, rec.Code, tc.err.Error())
		assert.Equal(t, tc.code, env.Status)
	}
}

func TestFailHidesInternalMessages(t *testing.T) {
	_, env := serve(t, httptest.NewRequest(http.MethodGet, "/", nil), func(c *appctx.Context) {
		c.Fail(errors.New("dial tcp 10.0.0.5:5432: refused"))
	})
	assert.Equal(t, "Internal Server Error", env.Message)
}

func TestBindValidationError(t *testing.T) {
	type input struct {
		Name string `json:"name" validate:"required"`
	}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")

	rec, env := serve(t, req, func(c *appctx.Context) {
		var in input
		if _, ok := c.Bind(&in); ok {
			c.Success(in)
		}
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "The name field is required.", env.Errors["name"])
}

func TestParamUint(t *testing.T) {
	r := chi.NewRouter()
	var got uint
	var ok bool
	r.Get("/products/{id}", appctx.Wrap(func(c *appctx.Context) {
		got, ok = c.ParamUint("id")
		c.Success(nil)
	}))

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/products/42", nil))
	assert.True(t, ok)
	assert.Equal(t, uint(42), got)

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/products/abc", nil))
	assert.False(t, ok)
}

func TestBearerToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Empty(t, appctx.BearerToken(req))

	req.Header.Set("Authorization", "Bearer abc.def")
	assert.Equal(t, "abc.def", appctx.BearerToken(req))

	req.Header.Set("Authorization", "Basic Zm9v")
	assert.Empty(t, appctx.BearerToken(req))
}

package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ok(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) }

func TestGroupsJoinPrefixesAndMiddleware(t *testing.T) {
	r := New()
	var order []string
	tag := func(name string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, req)
			})
		}
	}

	api := r.Group("/api", tag("api"))
	api.Group("products", tag("auth")).Delete("/{id}", "products.destroy", ok, tag("route"))

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/products/3", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"api", "auth", "route"}, order)
}

func TestNamedRoutes(t *testing.T) {
	r := New()
	r.Group("/api").Get("/products/{id}", "products.show", ok)

	url, err := r.URL("products.show", map[string]string{"id": "9"})
	require.NoError(t, err)
	assert.Equal(t, "/api/products/9", url)

	_, err = r.URL("products.show", nil)
	assert.Error(t, err)
	_, err = r.URL("missing", nil)
	assert.Error(t, err)
}

func TestRoutesAreListed(t *testing.T) {
	r := New()
	g := r.Group("/api/products")
	g.Put("/{id}", "products.update", ok)
	g.Patch("/{id}", "", ok)
	g.Get("/", "products.index", ok)
	r.Get("/health", "health", ok)

	got := r.Routes()
	require.Len(t, got, 4)
	assert.Equal(t, RouteInfo{Method: "GET", Path: "/api/products", Name: "products.index"}, got[0])
	assert.Equal(t, "PATCH", got[1].Method)
	assert.Equal(t, "PUT", got[2].Method)
	assert.Equal(t, "/health", got[3].Path)
}

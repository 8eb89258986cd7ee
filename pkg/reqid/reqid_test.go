package reqid

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func run(t *testing.T, header string) (string, string) {
	t.Helper()
	var seen string
	h := Middleware()(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		seen = FromCtx(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set(Header, header)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return seen, rec.Header().Get(Header)
}

func TestGeneratesID(t *testing.T) {
	seen, echoed := run(t, "")
	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, echoed)
}

func TestReusesUpstreamID(t *testing.T) {
	seen, echoed := run(t, "gateway-123")
	assert.Equal(t, "gateway-123", seen)
	assert.Equal(t, "gateway-123", echoed)
}

func TestRejectsMalformedUpstreamID(t *testing.T) {
	seen, _ := run(t, "bad id\nwith newline")
	assert.NotEqual(t, "bad id\nwith newline", seen)
	assert.NotEmpty(t, seen)
}

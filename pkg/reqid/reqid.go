// Package reqid assigns every request an ID, stores it in the request
// context and echoes it in the X-Request-ID response header.
package reqid

import (
	"context"
	"net/http"
	"regexp"

	"github.com/google/uuid"
)

type ctxKey struct{}

// Header is the HTTP header name used to propagate the request ID.
const Header = "X-Request-ID"

// upstream IDs are only trusted when they look like an ID, so a client
// cannot smuggle arbitrary text into every log line.
var validID = regexp.MustCompile(`^[A-Za-z0-9._-]{1,64}$`)

// New returns a random request ID.
func New() string {
	return uuid.NewString()
}

func WithValue(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromCtx returns the request ID in ctx, or "".
func FromCtx(ctx context.Context) string {
	if id, ok := ctx.Value(ctxKey{}).(string); ok {
		return id
	}
	return ""
}

// Middleware reuses a well-formed upstream X-Request-ID or generates one.
func Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(Header)
			if !validID.MatchString(id) {
				id = New()
			}
			w.Header().Set(Header, id)
			next.ServeHTTP(w, r.WithContext(WithValue(r.Context(), id)))
		})
	}
}

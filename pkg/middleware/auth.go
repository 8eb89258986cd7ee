package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/shashiranjanraj/bazaar/pkg/auth"
	"github.com/shashiranjanraj/bazaar/pkg/ctx"
	"github.com/shashiranjanraj/bazaar/pkg/logger"
	"github.com/shashiranjanraj/bazaar/pkg/response"
)

// TokenResolver turns a bearer token into a principal. *auth.TokenService
// implements it.
type TokenResolver interface {
	Resolve(ctx context.Context, token string) (auth.Principal, error)
}

// Authenticate requires a valid bearer token and stores the resolved
// principal in the request context.
func Authenticate(tokens TokenResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := ctx.BearerToken(r)
			if token == "" {
				response.Unauthorized(w)
				return
			}

			p, err := tokens.Resolve(r.Context(), token)
			if err != nil {
				if !errors.Is(err, auth.ErrUnauthorized) {
					logger.WithCtx(r.Context()).Error("token resolve failed", "error", err.Error())
					response.Error(w, http.StatusInternalServerError, "Internal Server Error")
					return
				}
				response.Unauthorized(w)
				return
			}

			if m := metaFrom(r.Context()); m != nil {
				m.userID = p.ID
			}
			c := auth.WithPrincipal(r.Context(), p)
			c = logger.InjectLogger(c, logger.WithCtx(c).With("user_id", p.ID))
			next.ServeHTTP(w, r.WithContext(c))
		})
	}
}

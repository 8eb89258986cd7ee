package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/shashiranjanraj/bazaar/pkg/ctx"
	"github.com/shashiranjanraj/bazaar/pkg/logger"
	"github.com/shashiranjanraj/bazaar/pkg/reqid"
)

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// requestMeta is filled in by later middleware and read back once the
// request has been served.
type requestMeta struct {
	userID uint
}

type metaKey struct{}

func metaFrom(c context.Context) *requestMeta {
	m, _ := c.Value(metaKey{}).(*requestMeta)
	return m
}

// Logger logs each request with method, path, status, duration, IP, the
// request_id from reqid.Middleware and, once authenticated, the user_id.
//
//	r.Use(reqid.Middleware())
//	r.Use(middleware.Logger)
func Logger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rid := reqid.FromCtx(r.Context())

		reqLog := logger.L.With("request_id", rid)
		meta := &requestMeta{}
		c := logger.InjectLogger(r.Context(), reqLog)
		c = context.WithValue(c, metaKey{}, meta)
		r = r.WithContext(c)

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		attrs := []any{
			"method", r.Method,
			"path", r.URL.Path,
			"status", rw.statusCode,
			"duration", time.Since(start).String(),
			"ip", ctx.ClientIP(r),
		}
		if meta.userID != 0 {
			attrs = append(attrs, "user_id", meta.userID)
		}
		reqLog.Info("request", attrs...)
	})
}

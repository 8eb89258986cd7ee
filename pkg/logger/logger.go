// Package logger provides a structured, levelled logger built on log/slog.
//
// Handlers and services log through WithCtx so every line carries the
// request_id injected by the Logger middleware:
//
//	log := logger.WithCtx(ctx)
//	log.Info("product created", "product_id", p.ID)
//	// → time=... level=INFO msg="product created" request_id=a1b2c3d4 product_id=7
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/shashiranjanraj/bazaar/config"
)

var L *slog.Logger

func init() {
	L = slog.New(newHandler(os.Stdout, config.AppEnv()))
	slog.SetDefault(L)
}

func newHandler(w io.Writer, env string) slog.Handler {
	switch env {
	case "production", "prod":
		return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo})
	case "testing", "test":
		return slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelWarn})
	default:
		return slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug})
	}
}

// AttachMongo fans every record out to a MongoDB collection in addition to
// stdout. It is a no-op when LOG_MONGO_URI is empty. The returned func
// flushes and disconnects; call it on shutdown.
func AttachMongo() (func(), error) {
	uri := config.LogMongoURI()
	if uri == "" {
		return func() {}, nil
	}

	mh, err := NewMongoHandler(uri, config.LogMongoDB(), "logs")
	if err != nil {
		return func() {}, err
	}

	L = slog.New(NewMultiHandler(L.Handler(), mh))
	slog.SetDefault(L)
	return mh.Close, nil
}

// ctxKey is the unexported key used to store a per-request *slog.Logger.
type ctxKey struct{}

// WithCtx returns the per-request logger stored by InjectLogger, or the
// base logger when ctx carries none.
func WithCtx(ctx context.Context) *slog.Logger {
	if ctx == nil {
		return L
	}
	if log, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok && log != nil {
		return log
	}
	return L
}

// InjectLogger stores a *slog.Logger (pre-tagged with request_id) into ctx.
func InjectLogger(ctx context.Context, log *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, log)
}

func Debug(msg string, args ...any) { L.Debug(msg, args...) }
func Info(msg string, args ...any)  { L.Info(msg, args...) }
func Warn(msg string, args ...any)  { L.Warn(msg, args...) }
func Error(msg string, args ...any) { L.Error(msg, args...) }

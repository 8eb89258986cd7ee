// Package router wraps chi with named routes and prefix groups.
package router

import (
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
)

type Middleware func(http.Handler) http.Handler

// RouteInfo describes one registered route, as printed by route:list.
type RouteInfo struct {
	Method string
	Path   string
	Name   string
}

type Router struct {
	mux    chi.Router
	mu     sync.RWMutex
	names  map[string]string
	routes []RouteInfo
}

type Group struct {
	router      *Router
	prefix      string
	middlewares []Middleware
}

func New() *Router {
	return &Router{
		mux:   chi.NewRouter(),
		names: make(map[string]string),
	}
}

func (r *Router) Handler() http.Handler {
	return r.mux
}

// Use adds global middleware. chi requires this before any route is added.
func (r *Router) Use(middlewares ...Middleware) {
	for _, mw := range middlewares {
		r.mux.Use(mw)
	}
}

func (r *Router) Group(prefix string, middlewares ...Middleware) *Group {
	return &Group{
		router:      r,
		prefix:      normalizePath(prefix),
		middlewares: append([]Middleware(nil), middlewares...),
	}
}

func (r *Router) Get(path, name string, h http.HandlerFunc, mw ...Middleware) {
	r.add(http.MethodGet, normalizePath(path), name, h, mw)
}

func (r *Router) Post(path, name string, h http.HandlerFunc, mw ...Middleware) {
	r.add(http.MethodPost, normalizePath(path), name, h, mw)
}

// Mount attaches a sub-handler for every method below prefix, e.g. a file
// server under /storage.
func (r *Router) Mount(prefix, name string, h http.Handler) {
	p := normalizePath(prefix)
	r.mux.Mount(p, h)
	r.record("*", p+"/*", name)
}

// Path returns the pattern registered under name.
func (r *Router) Path(name string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	path, ok := r.names[name]
	return path, ok
}

// URL builds a path for a named route, substituting {params}.
func (r *Router) URL(name string, params map[string]string) (string, error) {
	path, ok := r.Path(name)
	if !ok {
		return "", fmt.Errorf("route %q not found", name)
	}

	for key, value := range params {
		path = strings.ReplaceAll(path, "{"+key+"}", value)
	}

	if strings.Contains(path, "{") {
		return "", fmt.Errorf("missing parameters for route %q", name)
	}

	return path, nil
}

// Routes lists registered routes sorted by path, then method.
func (r *Router) Routes() []RouteInfo {
	r.mu.RLock()
	out := append([]RouteInfo(nil), r.routes...)
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Path != out[j].Path {
			return out[i].Path < out[j].Path
		}
		return out[i].Method < out[j].Method
	})
	return out
}

func (r *Router) add(method, fullPath, name string, h http.Handler, mw []Middleware) {
	r.mux.Method(method, fullPath, chain(h, mw...))
	r.record(method, fullPath, name)
}

func (r *Router) record(method, fullPath, name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.routes = append(r.routes, RouteInfo{Method: method, Path: fullPath, Name: name})
	if name != "" {
		r.names[name] = fullPath
	}
}

func (g *Group) Group(prefix string, middlewares ...Middleware) *Group {
	return &Group{
		router:      g.router,
		prefix:      joinPath(g.prefix, prefix),
		middlewares: append(append([]Middleware(nil), g.middlewares...), middlewares...),
	}
}

func (g *Group) Get(path, name string, h http.HandlerFunc, mw ...Middleware) {
	g.mount(http.MethodGet, path, name, h, mw)
}

func (g *Group) Post(path, name string, h http.HandlerFunc, mw ...Middleware) {
	g.mount(http.MethodPost, path, name, h, mw)
}

func (g *Group) Put(path, name string, h http.HandlerFunc, mw ...Middleware) {
	g.mount(http.MethodPut, path, name, h, mw)
}

func (g *Group) Patch(path, name string, h http.HandlerFunc, mw ...Middleware) {
	g.mount(http.MethodPatch, path, name, h, mw)
}

func (g *Group) Delete(path, name string, h http.HandlerFunc, mw ...Middleware) {
	g.mount(http.MethodDelete, path, name, h, mw)
}

func (g *Group) mount(method, path, name string, h http.Handler, mw []Middleware) {
	combined := append(append([]Middleware(nil), g.middlewares...), mw...)
	g.router.add(method, joinPath(g.prefix, path), name, h, combined)
}

func chain(handler http.Handler, middlewares ...Middleware) http.Handler {
	wrapped := handler
	for i := len(middlewares) - 1; i >= 0; i-- {
		wrapped = middlewares[i](wrapped)
	}
	return wrapped
}

func joinPath(parts ...string) string {
	segments := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.Trim(part, "/"); trimmed != "" {
			segments = append(segments, trimmed)
		}
	}

	if len(segments) == 0 {
		return "/"
	}

	return "/" + strings.Join(segments, "/")
}

func normalizePath(path string) string {
	return joinPath(path)
}

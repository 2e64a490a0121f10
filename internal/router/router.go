package router

import (
	"net/http"
	"slices"
)

// Router wraps http.ServeMux with middleware chaining. A router made by
// WithAlias also registers each route under its alias prefixes.
type Router struct {
	mux     *http.ServeMux
	chain   []Middleware
	aliases []string
}

// Middleware is a function that wraps an http.Handler
type Middleware func(http.Handler) http.Handler

// New creates a new Router with optional global middleware
func New(middleware ...Middleware) *Router {
	return &Router{
		mux:   http.NewServeMux(),
		chain: middleware,
	}
}

// ServeHTTP implements http.Handler
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// Get registers a GET route
func (r *Router) Get(pattern string, handler http.HandlerFunc, middleware ...Middleware) {
	r.Handle(http.MethodGet, pattern, handler, middleware...)
}

// Post registers a POST route
func (r *Router) Post(pattern string, handler http.HandlerFunc, middleware ...Middleware) {
	r.Handle(http.MethodPost, pattern, handler, middleware...)
}

// Put registers a PUT route
func (r *Router) Put(pattern string, handler http.HandlerFunc, middleware ...Middleware) {
	r.Handle(http.MethodPut, pattern, handler, middleware...)
}

// Delete registers a DELETE route
func (r *Router) Delete(pattern string, handler http.HandlerFunc, middleware ...Middleware) {
	r.Handle(http.MethodDelete, pattern, handler, middleware...)
}

// Handle registers a route with explicit method. The middleware chain is
// built once and shared by the route and its aliases.
func (r *Router) Handle(method, pattern string, handler http.Handler, middleware ...Middleware) {
	h := r.wrap(handler, middleware)
	r.mux.Handle(method+" "+pattern, h)
	for _, prefix := range r.aliases {
		r.mux.Handle(method+" "+prefix+pattern, h)
	}
}

// wrap applies middleware to a handler in reverse order
func (r *Router) wrap(handler http.Handler, middleware []Middleware) http.Handler {
	// Combine global middleware chain with route-specific middleware
	combined := append(slices.Clone(r.chain), middleware...)

	// Apply middleware in reverse order so they execute in the order defined
	slices.Reverse(combined)

	result := handler
	for _, m := range combined {
		result = m(result)
	}

	return result
}

// Group creates a sub-router with additional middleware
func (r *Router) Group(middleware ...Middleware) *Router {
	return &Router{
		mux:     r.mux,
		chain:   append(slices.Clone(r.chain), middleware...),
		aliases: r.aliases,
	}
}

// WithAlias returns a sub-router that also serves every route under each prefix.
func (r *Router) WithAlias(prefixes ...string) *Router {
	g := r.Group()
	g.aliases = append(slices.Clone(r.aliases), prefixes...)
	return g
}

// Package route maps (method, path) pairs to handlers.
//
// A router is assembled with a Builder and is immutable once built, so it can
// serve any number of concurrent requests without locking:
//
//	router := route.New().
//	    Handle(http.MethodGet, "/", hello).
//	    Handle(http.MethodPost, "/foo", postFoo).
//	    Build()
//
// Matching is exact. Paths are compared case-sensitively and without any
// cleaning, so "/foo" and "/foo/" are different routes. Methods are compared
// case-insensitively. A request that matches no route, including a request
// for a known path with a different method, gets the fallback handler, which
// answers 404 unless replaced with SetFallback.
package route

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/ridge/hellohttp/tlog"
	"github.com/ridge/must/v2"
	"go.uber.org/zap"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Methods lists the methods a route can be registered for
var Methods = []string{
	http.MethodGet,
	http.MethodPut,
	http.MethodPost,
	http.MethodPatch,
	http.MethodDelete,
}

// Key identifies a route
type Key struct {
	Method string
	Path   string
}

func (k Key) String() string {
	return k.Method + " " + k.Path
}

// ErrDuplicateRoute is returned by Builder.Add for an already registered key
var ErrDuplicateRoute = errors.New("duplicate route")

// ErrInvalidRoute is returned by Builder.Add for a malformed key
type ErrInvalidRoute struct {
	Key    Key
	Reason string
}

func (e ErrInvalidRoute) Error() string {
	return fmt.Sprintf("invalid route %s: %s", e.Key, e.Reason)
}

func validate(key Key) error {
	if !slices.Contains(Methods, key.Method) {
		return ErrInvalidRoute{Key: key, Reason: "unsupported method"}
	}
	if !strings.HasPrefix(key.Path, "/") {
		return ErrInvalidRoute{Key: key, Reason: "path must be absolute"}
	}
	// mux would read braces as a path variable
	if strings.ContainsAny(key.Path, "?#{}") {
		return ErrInvalidRoute{Key: key, Reason: "path must not contain '?', '#', '{' or '}'"}
	}
	return nil
}

// Builder collects routes for a Router
type Builder struct {
	routes   map[Key]Handler
	fallback Handler
}

// New creates an empty Builder with NotFound as the fallback
func New() *Builder {
	return &Builder{
		routes:   map[Key]Handler{},
		fallback: NotFound,
	}
}

// Add registers a handler for the method and path
func (b *Builder) Add(method, path string, handler Handler) error {
	key := Key{Method: strings.ToUpper(method), Path: path}
	if err := validate(key); err != nil {
		return err
	}
	if _, ok := b.routes[key]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateRoute, key)
	}
	b.routes[key] = handler
	return nil
}

// Handle is Add for static route tables: it panics on error
func (b *Builder) Handle(method, path string, handler Handler) *Builder {
	must.OK(b.Add(method, path, handler))
	return b
}

// SetFallback replaces the handler for requests matching no route
func (b *Builder) SetFallback(handler Handler) *Builder {
	b.fallback = handler
	return b
}

// Build creates the Router. The Builder may be discarded afterwards.
func (b *Builder) Build() *Router {
	keys := maps.Keys(b.routes)
	slices.SortFunc(keys, func(x, y Key) bool {
		if x.Path != y.Path {
			return x.Path < y.Path
		}
		return x.Method < y.Method
	})

	m := mux.NewRouter().SkipClean(true)
	for _, key := range keys {
		m.Methods(key.Method).Path(key.Path).Handler(responder(b.routes[key]))
	}
	fallback := responder(b.fallback)
	m.NotFoundHandler = fallback
	m.MethodNotAllowedHandler = fallback

	return &Router{
		mux:      m,
		keys:     keys,
		fallback: b.fallback,
	}
}

// responder adapts a Handler to the http.Handler mux stores
type responder Handler

func (h responder) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	write(w, r, h(RequestURI(r)))
}

// Router dispatches requests to handlers. Safe for concurrent use.
type Router struct {
	mux      *mux.Router
	keys     []Key
	fallback Handler
}

// Routes returns the registered keys sorted by path, then method
func (r *Router) Routes() []Key {
	return slices.Clone(r.keys)
}

// Dispatch selects the handler for the request and returns its response
func (r *Router) Dispatch(req *http.Request) Response {
	req = normalizeMethod(req)
	var match mux.RouteMatch
	if r.mux.Match(req, &match) {
		if h, ok := match.Handler.(responder); ok {
			return h(RequestURI(req))
		}
	}
	return r.fallback(RequestURI(req))
}

// ServeHTTP implements http.Handler
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, normalizeMethod(req))
}

func write(w http.ResponseWriter, r *http.Request, resp Response) {
	if err := resp.Write(w); err != nil {
		if logger, ok := tlog.Lookup(r.Context()); ok {
			logger.Debug("Failed to write response to client", zap.Error(err))
		}
	}
}

func normalizeMethod(req *http.Request) *http.Request {
	method := strings.ToUpper(req.Method)
	if method == req.Method {
		return req
	}
	req = req.Clone(req.Context())
	req.Method = method
	return req
}

// RequestURI returns the request-target the client sent. Requests built on
// the client side have no RequestURI, so it is reconstructed from the URL.
func RequestURI(r *http.Request) string {
	if r.RequestURI != "" {
		return r.RequestURI
	}
	return r.URL.RequestURI()
}

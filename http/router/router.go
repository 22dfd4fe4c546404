package router

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"

	"github.com/beconnected/beconnected"
	"github.com/beconnected/beconnected/http/middleware"
	"github.com/beconnected/beconnected/route"
	"github.com/gorilla/mux"
)

// AssetsPath prefixes every request for static assets.
const AssetsPath = "/static/"

// ErrMissingHandler returns when a View of the route table has no handler.
var ErrMissingHandler = errors.New("missing handler")

// A Route maps a path and HTTP method to an [http.HandlerFunc].
// Additional [middleware.Adapter] can be called when a server handles
// a request matching the Route.
type Route struct {
	Path        string
	Method      string
	Handler     http.HandlerFunc
	Middlewares []middleware.Adapter
}

// A View renders a [route.View], running Middlewares first.
type View struct {
	Handler     http.HandlerFunc
	Middlewares []middleware.Adapter
}

// Router routes requests for resources to their handlers.
type Router struct {
	env           beconnected.Environment
	everyReqStack []middleware.Adapter
	guard         route.Guard
	logoffURL     string
	r             *mux.Router
}

// New constructs a [*Router] for the given environment.
// Requests below AssetsPath are served from assets, if it is not nil.
//
// guard decides on every guarded [route.Entry] registered through HandleViews;
// requests to logoffURL are never asked to come back to it after logging in.
func New(env beconnected.Environment, guard route.Guard, logoffURL string, assets fs.FS) *Router {
	r := mux.NewRouter()
	if assets != nil {
		r.PathPrefix(AssetsPath).Handler(middleware.Chain(
			http.StripPrefix(AssetsPath, http.FileServer(http.FS(assets))),
			cacheControlMiddleware(env),
		))
	}

	return &Router{env: env, guard: guard, logoffURL: logoffURL, r: r}
}

// Handle applies the [Route] to the [*Router].
func (r *Router) Handle(route Route) {
	r.HandleRoutes([]Route{route})
}

// HandleNotFound sets handler as the one called when no registered route matches.
// It runs behind the every request stack, so it can render with the session and current user.
func (r *Router) HandleNotFound(handler http.HandlerFunc) {
	r.r.NotFoundHandler = middleware.Chain(handler, r.everyReqStack...)
}

// HandleRoutes registers the set of Routes on the Router
// and includes all the [middleware.Adapter] on each Route.
// Any [middleware.Adapter] already assigned to a Route is appended to middlewares,
// so are called after the default set.
func (r *Router) HandleRoutes(routes []Route, middlewares ...middleware.Adapter) {
	for _, rt := range routes {
		mws := append(append(append([]middleware.Adapter{}, r.everyReqStack...), middlewares...), rt.Middlewares...)
		r.r.Handle(rt.Path, middleware.Chain(rt.Handler, mws...)).Methods(rt.Method)
	}
}

// HandleViews registers a GET and HEAD route for every [route.Entry] of t,
// in the order t matches them, so that the router and t always agree on which Entry a path resolves to.
//
// Every View of t must have a handler in views, otherwise ErrMissingHandler returns
// and nothing is registered.
//
// Before the View's handler runs, the request goes through:
//   - the every request stack
//   - RequireAuthed, applying the Router's guard to the Entry
//   - the View's own Middlewares
//
// The handler reads the resolved [route.Match] with [MatchFrom].
func (r *Router) HandleViews(t *route.Table, views map[route.View]View) error {
	entries := t.Entries()
	for _, e := range entries {
		if v, ok := views[e.View]; !ok || v.Handler == nil {
			return fmt.Errorf("%w: view %s of %q", ErrMissingHandler, e.View, e.Pattern)
		}
	}

	for _, e := range entries {
		v := views[e.View]
		mws := append([]middleware.Adapter{}, r.everyReqStack...)
		mws = append(mws, stashMatch(t, e), middleware.RequireAuthed(r.guard, e, r.logoffURL))
		mws = append(mws, v.Middlewares...)

		r.r.Handle(e.MuxPath(), middleware.Chain(v.Handler, mws...)).Methods(http.MethodGet, http.MethodHead)
	}

	return nil
}

// OnEveryRequest appends the middlewares to the existing stack
// that the [*Router] will apply to every request.
//
// Only routes registered afterwards get them.
func (r *Router) OnEveryRequest(middlewares ...middleware.Adapter) {
	r.everyReqStack = append(r.everyReqStack, middlewares...)
}

// ServeHTTP responds to an HTTP request.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.r.ServeHTTP(w, req)
}

// MatchFrom retrieves the [route.Match] the request resolved to.
func MatchFrom(ctx context.Context) (route.Match, bool) {
	m, ok := ctx.Value(beconnected.RouteMatchKey).(route.Match)
	return m, ok
}

// stashMatch resolves the request path against t
// and stores the resulting route.Match under beconnected.RouteMatchKey.
func stashMatch(t *route.Table, e route.Entry) middleware.Adapter {
	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			m, err := t.Match(req.URL.Path)
			if err != nil || m.Pattern != e.Pattern {
				m = route.Match{Entry: e, Params: route.Params(mux.Vars(req))}
			}

			h.ServeHTTP(w, req.Clone(context.WithValue(req.Context(), beconnected.RouteMatchKey, m)))
		})
	}
}

// cacheControlMiddleware lets browsers cache assets, except in development.
func cacheControlMiddleware(env beconnected.Environment) middleware.Adapter {
	if env.IsDevelopment() {
		return middleware.NoopAdapter
	}

	return func(handler http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Cache-Control", "max-age=2592000") // 30 days
			handler.ServeHTTP(w, r)
		})
	}
}

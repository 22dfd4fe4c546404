package web

import (
	"context"
	"embed"
	"io/fs"
	"net/http"
	"net/url"
	"strings"

	"github.com/beconnected/beconnected"
	"github.com/beconnected/beconnected/auth"
	"github.com/beconnected/beconnected/http/middleware"
	"github.com/beconnected/beconnected/http/req"
	"github.com/beconnected/beconnected/http/resp"
	"github.com/beconnected/beconnected/http/router"
	"github.com/beconnected/beconnected/http/session"
	"github.com/beconnected/beconnected/http/template"
	"github.com/beconnected/beconnected/logger"
	"github.com/beconnected/beconnected/route"
)

// Templates rendered by the Handler.
const (
	AuthedTmpl      = "tmpl/layout/authed.tmpl"
	UnauthedTmpl    = "tmpl/layout/unauthed.tmpl"
	connectionsTmpl = "tmpl/connections.tmpl"
	feedTmpl        = "tmpl/feed.tmpl"
	homeTmpl        = "tmpl/home.tmpl"
	loginTmpl       = "tmpl/login.tmpl"
	messagesTmpl    = "tmpl/messages.tmpl"
	networkTmpl     = "tmpl/network.tmpl"
	notFoundTmpl    = "tmpl/not_found.tmpl"
	profileTmpl     = "tmpl/profile.tmpl"
	registerTmpl    = "tmpl/register.tmpl"
	settingsTmpl    = "tmpl/settings.tmpl"
)

// Paths of the actions outside the route table.
const (
	GoogleCallbackPath = "/login/google/callback"
	GoogleLoginPath    = "/login/google"
	HealthPath         = "/healthz"
	LogoffPath         = "/logout"
)

// ContactErrMsg is the flash shown when something unexpected goes wrong.
const ContactErrMsg = session.DefaultErrMsg + " Please try again in a moment."

const oauthStateKey = "oauthState"

var (
	//go:embed tmpl
	tmplFS embed.FS

	//go:embed static
	staticFS embed.FS
)

// Templates holds the HTML templates the Handler renders.
func Templates() fs.FS { return tmplFS }

// Assets holds the static assets pages link to, rooted so "app.css" opens static/app.css.
func Assets() fs.FS {
	sub, err := fs.Sub(staticFS, template.AssetsBase)
	if err != nil {
		panic(err)
	}

	return sub
}

// NewParser constructs the *template.Parse for the Handler's templates,
// providing them with the "asset", "env", "nonce", "rootUrl" and "routePath" functions.
func NewParser(env beconnected.Environment, rootURL *url.URL, t *route.Table) *template.Parse {
	return template.NewParser(
		template.WithFS(Templates()),
		template.WithFn(template.AssetURI(env, staticFS)),
		template.WithFn(template.Env(env)),
		template.WithFn(template.Nonce()),
		template.WithFn(template.RootUrl(rootURL)),
		template.WithFn(template.RoutePath(t)),
	)
}

// NewResponder constructs the *resp.Responder rendering with p.
func NewResponder(l logger.Logger, rootURL *url.URL, p template.Parser) *resp.Responder {
	return resp.NewResponder(
		resp.WithAuthTemplate(AuthedTmpl),
		resp.WithContactErrMsg(ContactErrMsg),
		resp.WithErrTemplate(template.ErrTmpl),
		resp.WithLogger(l),
		resp.WithParser(p),
		resp.WithRootUrl(rootURL.String()),
		resp.WithUnauthTemplate(UnauthedTmpl),
	)
}

// Accounts is what the Handler needs from the authentication service.
type Accounts interface {
	auth.Authenticator
	FindUser(ctx context.Context, usernameOrEmail string) (beconnected.User, error)
	IssueToken(u beconnected.User) (string, error)
	LoginVerified(ctx context.Context, email string) (auth.Result, error)
	Register(ctx context.Context, reg auth.Registration) (beconnected.User, error)
	Search(ctx context.Context, query string, currentUserID uint) ([]beconnected.User, error)
}

// Handler serves the views of the route table and the actions around logging in and out.
type Handler struct {
	*resp.Responder

	accounts Accounts
	google   *auth.GoogleService
	logger   logger.Logger
	parser   *req.Parser
	table    *route.Table
}

// A HandlerOpt configures a *Handler.
type HandlerOpt func(*Handler)

// WithGoogle enables signing in with Google.
func WithGoogle(gs *auth.GoogleService) HandlerOpt {
	return func(h *Handler) { h.google = gs }
}

// WithLogger sets the logger.Logger the Handler reports through.
func WithLogger(l logger.Logger) HandlerOpt {
	return func(h *Handler) { h.logger = l }
}

// NewHandler constructs a *Handler rendering the views of t.
func NewHandler(d *resp.Responder, accounts Accounts, t *route.Table, opts ...HandlerOpt) *Handler {
	h := &Handler{
		Responder: d,
		accounts:  accounts,
		parser:    req.NewParser(),
		table:     t,
	}

	for _, opt := range opts {
		opt(h)
	}

	if h.logger == nil {
		h.logger = logger.New()
	}

	return h
}

// Views binds every route.View to the handler rendering it.
func (h *Handler) Views() map[route.View]router.View {
	return map[route.View]router.View{
		route.Home:        {Handler: h.home},
		route.Login:       {Handler: h.loginPage},
		route.Register:    {Handler: h.registerPage},
		route.Feed:        {Handler: h.feed},
		route.Network:     {Handler: h.network},
		route.Profile:     {Handler: h.profile},
		route.Messages:    {Handler: h.messages},
		route.Settings:    {Handler: h.settings},
		route.Connections: {Handler: h.connections},
	}
}

// Routes lists the actions outside the route table.
//
// visitors throttles login attempts; cache deduplicates registrations.
func (h *Handler) Routes(visitors *middleware.Visitors, cache middleware.IdempotencyCacher) []router.Route {
	return []router.Route{
		{Path: route.LoginPath, Method: http.MethodPost, Handler: h.login, Middlewares: []middleware.Adapter{middleware.RateLimit(visitors)}},
		{Path: route.RegisterPath, Method: http.MethodPost, Handler: h.register, Middlewares: []middleware.Adapter{middleware.Idempotent(cache)}},
		{Path: LogoffPath, Method: http.MethodGet, Handler: h.logoff},
		{Path: LogoffPath, Method: http.MethodPost, Handler: h.logoff},
		{Path: GoogleLoginPath, Method: http.MethodGet, Handler: h.googleLogin, Middlewares: []middleware.Adapter{middleware.RequireUnauthed()}},
		{Path: GoogleCallbackPath, Method: http.MethodGet, Handler: h.googleCallback},
		{Path: HealthPath, Method: http.MethodGet, Handler: h.health},
	}
}

// Mount registers the views and routes of h on r, and its not found page.
func (h *Handler) Mount(r *router.Router, visitors *middleware.Visitors, cache middleware.IdempotencyCacher) error {
	if err := r.HandleViews(h.table, h.Views()); err != nil {
		return err
	}

	r.HandleRoutes(h.Routes(visitors, cache))
	r.HandleNotFound(h.notFound)
	return nil
}

// currentUser retrieves the user CurrentUser stored in ctx.
func currentUser(ctx context.Context) (beconnected.User, bool) {
	u, ok := ctx.Value(beconnected.CurrentUserKey).(beconnected.User)
	return u, ok
}

// layout picks the base template matching whether someone is logged in.
func layout(r *http.Request) resp.Fn {
	if _, ok := currentUser(r.Context()); ok {
		return resp.Authed()
	}

	return resp.Unauthed()
}

// wantsJSON asserts whether the client asked for a JSON response.
func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json") ||
		strings.HasPrefix(r.Header.Get("Content-Type"), "application/json")
}

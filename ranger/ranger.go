package ranger

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/beconnected/beconnected"
	"github.com/beconnected/beconnected/auth"
	"github.com/beconnected/beconnected/http/middleware"
	"github.com/beconnected/beconnected/http/resp"
	"github.com/beconnected/beconnected/http/router"
	"github.com/beconnected/beconnected/http/session"
	"github.com/beconnected/beconnected/logger"
	"github.com/beconnected/beconnected/postgres"
	"github.com/beconnected/beconnected/route"
	"github.com/beconnected/beconnected/web"
	_ "github.com/joho/godotenv/autoload"
)

// A Ranger manages and exposes all components of the web app to one another.
type Ranger struct {
	*resp.Responder
	*router.Router

	accounts *auth.Service
	cache    middleware.IdempotencyCacher
	ctx      context.Context
	cancel   context.CancelFunc
	db       *postgres.DB
	env      beconnected.Environment
	google   *auth.GoogleService
	l        logger.Logger
	sessions session.SessionStorer
	srv      *http.Server
	store    auth.UserStore
	table    *route.Table
	url      *url.URL
	visitors *middleware.Visitors
}

// New constructs a Ranger from the provided options.
// Whatever the options leave unset is configured from environment variables.
func New(opts ...RangerOption) (*Ranger, error) {
	r := new(Ranger)
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, fmt.Errorf("%w: %s", beconnected.ErrBadConfig, err)
		}
	}

	if r.ctx == nil {
		r.ctx = context.Background()
	}

	r.ctx, r.cancel = context.WithCancel(r.ctx)

	if r.env == "" {
		r.env = beconnected.EnvVarOrEnv(environmentEnvVar, beconnected.Development)
	}

	if r.l == nil {
		r.l = defaultLogger(r.env)
	}

	if r.url == nil {
		r.url = beconnected.EnvVarOrURL(BaseURLEnvVar, defaultBaseURL)
	}

	if r.table == nil {
		r.table = route.Default()
	}

	var err error
	if r.store == nil {
		r.store, r.db, err = defaultUserStore(r.env, r.l)
		if err != nil {
			return nil, err
		}
	}

	if r.accounts, err = defaultAccounts(r.env, r.store); err != nil {
		return nil, err
	}

	if r.sessions == nil {
		if r.sessions, err = defaultSessionStore(r.env); err != nil {
			return nil, err
		}
	}

	if r.cache == nil {
		r.cache = defaultIdempotencyCache(r.l)
	}

	proxies, err := defaultTrustedProxies()
	if err != nil {
		return nil, err
	}

	r.google = defaultGoogle(r.url, r.l)
	r.visitors = middleware.NewVisitors(middleware.DefaultRate, middleware.DefaultBurst)
	r.Responder = web.NewResponder(r.l, r.url, web.NewParser(r.env, r.url, r.table))
	r.Router = defaultRouter(r.env, r.Responder, r.l, r.sessions, r.accounts, proxies)

	h := web.NewHandler(r.Responder, r.accounts, r.table, web.WithLogger(r.l), web.WithGoogle(r.google))
	if err := h.Mount(r.Router, r.visitors, r.cache); err != nil {
		return nil, fmt.Errorf("%w: %s", beconnected.ErrBadConfig, err)
	}

	if r.srv == nil {
		r.srv = defaultServer(r.ctx)
	}

	r.srv.Handler = r.Router

	return r, nil
}

// Accounts exposes the service logging users in.
func (r *Ranger) Accounts() *auth.Service { return r.accounts }

// Cancel stops Guide.
func (r *Ranger) Cancel() { r.cancel() }

// Env is the environment the web app runs in.
func (r *Ranger) Env() beconnected.Environment { return r.env }

// Logger exposes the logger.Logger every component logs through.
func (r *Ranger) Logger() logger.Logger { return r.l }

// Guide begins the web server.
//
// These, and (*Ranger).Cancel, stop Guide:
//
//   - os.Interrupt
//   - syscall.SIGHUP
//   - syscall.SIGQUIT
//   - syscall.SIGTERM
func (r *Ranger) Guide() error {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt, syscall.SIGHUP, syscall.SIGQUIT, syscall.SIGTERM)
	defer signal.Stop(ch)

	go func() {
		select {
		case s := <-ch:
			r.l.Info(fmt.Sprint("received shutdown signal: ", s), nil)
			r.cancel()
		case <-r.ctx.Done():
		}
	}()

	errCh := make(chan error, 1)
	go func() {
		r.l.Info(fmt.Sprintf("running web server at %s", r.srv.Addr), nil)
		if err := r.srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("could not listen: %w", err)
		}
	}()

	select {
	case err := <-errCh:
		r.l.Error(err.Error(), nil)
		r.cancel()
		return err
	case <-r.ctx.Done():
	}

	return r.Shutdown()
}

// Shutdown shuts down the web server and closes the database connection.
func (r *Ranger) Shutdown() error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	r.l.Info("shutting down web server", nil)
	if err := r.srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("could not shutdown: %w", err)
	}

	if r.db != nil {
		sqlDB, err := r.db.DB().DB()
		if err == nil {
			err = sqlDB.Close()
		}

		if err != nil {
			return fmt.Errorf("could not close db: %w", err)
		}
	}

	if f, ok := r.l.(interface{ Flush(time.Duration) bool }); ok {
		f.Flush(2 * time.Second)
	}

	r.l.Info("web server shutdown successfully", nil)
	return nil
}

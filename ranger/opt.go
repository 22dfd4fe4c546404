package ranger

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/beconnected/beconnected"
	"github.com/beconnected/beconnected/auth"
	"github.com/beconnected/beconnected/http/middleware"
	"github.com/beconnected/beconnected/http/session"
	"github.com/beconnected/beconnected/logger"
	"github.com/beconnected/beconnected/route"
)

// A RangerOption configures a *Ranger under construction,
// replacing what New would otherwise set up from environment variables.
type RangerOption func(rng *Ranger) error

// WithBaseURL sets the URL the web app is served at.
func WithBaseURL(u string) RangerOption {
	return func(rng *Ranger) error {
		parsed, err := url.ParseRequestURI(u)
		if err != nil {
			return fmt.Errorf("base URL %q: %s", u, err)
		}

		rng.url = parsed
		return nil
	}
}

// WithContext exposes the provided context.Context to the web app.
// Cancelling it stops Guide.
func WithContext(ctx context.Context) RangerOption {
	return func(rng *Ranger) error {
		rng.ctx = ctx
		return nil
	}
}

// WithEnv sets the Environment of the web app.
func WithEnv(env beconnected.Environment) RangerOption {
	return func(rng *Ranger) error {
		if err := env.Valid(); err != nil {
			return fmt.Errorf("env %q: %s", env, err)
		}

		rng.env = env
		return nil
	}
}

// WithIdempotencyCache sets where responses to idempotent requests are cached.
func WithIdempotencyCache(cache middleware.IdempotencyCacher) RangerOption {
	return func(rng *Ranger) error {
		rng.cache = cache
		return nil
	}
}

// WithLogger exposes the provided logger.Logger to the web app.
func WithLogger(l logger.Logger) RangerOption {
	return func(rng *Ranger) error {
		rng.l = l
		return nil
	}
}

// WithRouteTable replaces route.Default as the table views are served from.
func WithRouteTable(t *route.Table) RangerOption {
	return func(rng *Ranger) error {
		rng.table = t
		return nil
	}
}

// WithServer sets the *http.Server Guide runs.
func WithServer(s *http.Server) RangerOption {
	return func(rng *Ranger) error {
		rng.srv = s
		return nil
	}
}

// WithSessionStore exposes the session.SessionStorer to the web app.
func WithSessionStore(store session.SessionStorer) RangerOption {
	return func(rng *Ranger) error {
		rng.sessions = store
		return nil
	}
}

// WithUserStore sets where users are kept, instead of connecting to a database.
func WithUserStore(store auth.UserStore) RangerOption {
	return func(rng *Ranger) error {
		rng.store = store
		return nil
	}
}

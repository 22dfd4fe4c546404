package ranger

import (
	"context"
	"encoding/hex"
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"net/url"
	"os"
	"strings"
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
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/gorilla/securecookie"
)

const (
	// Base URL defaults
	BaseURLEnvVar  = "BASE_URL"
	defaultBaseURL = "http://" + DefaultHost + DefaultPort

	// CORS defaults
	corsOriginEnvVar = "CORS_ORIGIN"

	// Environment defaults
	environmentEnvVar = "ENVIRONMENT"

	// Log defaults
	logLevelEnvVar  = "LOG_LEVEL"
	sentryDsnEnvVar = "SENTRY_DSN"

	// Database defaults
	dbHostEnvVar         = "DATABASE_HOST"
	defaultDBHost        = "localhost"
	dbNameEnvVar         = "DATABASE_NAME"
	dbPassEnvVar         = "DATABASE_PASSWORD"
	dbPortEnvVar         = "DATABASE_PORT"
	defaultDBPort        = "5432"
	dbSSLModeEnvVar      = "DATABASE_SSLMODE"
	defaultDBSSLMode     = "prefer"
	dbURLEnvVar          = "DATABASE_URL"
	dbUserEnvVar         = "DATABASE_USER"
	dbMaxIdleCxnsEnvVar  = "DATABASE_MAX_IDLE_CXNS"
	defaultDBMaxIdleCxns = 1

	// Test database defaults
	dbTestHostEnvVar    = "DATABASE_TEST_HOST"
	dbTestNameEnvVar    = "DATABASE_TEST_NAME"
	dbTestPassEnvVar    = "DATABASE_TEST_PASSWORD"
	dbTestPortEnvVar    = "DATABASE_TEST_PORT"
	dbTestSSLModeEnvVar = "DATABASE_TEST_SSLMODE"
	dbTestURLEnvVar     = "DATABASE_TEST_URL"
	dbTestUserEnvVar    = "DATABASE_TEST_USER"

	// Auth defaults
	jwtSecretEnvVar          = "JWT_SECRET"
	googleClientIDEnvVar     = "GOOGLE_CLIENT_ID"
	googleClientSecretEnvVar = "GOOGLE_CLIENT_SECRET"

	// Proxy defaults
	behindProxyEnvVar    = "BEHIND_PROXY"
	trustedProxiesEnvVar = "TRUSTED_PROXIES"

	// Redis defaults
	redisURLEnvVar      = "REDIS_URL"
	redisPasswordEnvVar = "REDIS_PASSWORD"
	idempotencyPrefix   = "beconnected:idempotency:"

	// Web server defaults
	DefaultHost               = "localhost"
	DefaultPort               = ":3000"
	portEnvVar                = "PORT"
	serverReadTimeoutEnvVar   = "SERVER_READ_TIMEOUT"
	DefaultServerReadTimeout  = 5 * time.Second
	serverIdleTimeoutEnvVar   = "SERVER_IDLE_TIMEOUT"
	DefaultServerIdleTimeout  = 120 * time.Second
	serverWriteTimeoutEnvVar  = "SERVER_WRITE_TIMEOUT"
	DefaultServerWriteTimeout = 5 * time.Second

	// Session defaults
	SessionAuthKeyEnvVar    = "SESSION_AUTH_KEY"
	SessionEncryptKeyEnvVar = "SESSION_ENCRYPTION_KEY"
	sessionMaxAgeEnvVar     = "SESSION_MAX_AGE"
	defaultSessionMaxAge    = 3600 * 24 * 7
)

// NewPostgresConfig constructs a *postgres.CxnConfig appropriate to the given environment.
// Confer the DATABASE env vars for usage.
func NewPostgresConfig(env beconnected.Environment) *postgres.CxnConfig {
	var cfg *postgres.CxnConfig
	switch {
	case env.IsTesting():
		cfg = &postgres.CxnConfig{
			Host:     beconnected.EnvVarOrString(dbTestHostEnvVar, defaultDBHost),
			IsTestDB: true,
			Name:     os.Getenv(dbTestNameEnvVar),
			Password: os.Getenv(dbTestPassEnvVar),
			Port:     beconnected.EnvVarOrString(dbTestPortEnvVar, defaultDBPort),
			SSLMode:  beconnected.EnvVarOrString(dbTestSSLModeEnvVar, defaultDBSSLMode),
			URL:      os.Getenv(dbTestURLEnvVar),
			User:     os.Getenv(dbTestUserEnvVar),
		}

	case os.Getenv(dbURLEnvVar) == "":
		cfg = &postgres.CxnConfig{
			Host:     beconnected.EnvVarOrString(dbHostEnvVar, defaultDBHost),
			Name:     os.Getenv(dbNameEnvVar),
			Password: os.Getenv(dbPassEnvVar),
			Port:     beconnected.EnvVarOrString(dbPortEnvVar, defaultDBPort),
			SSLMode:  beconnected.EnvVarOrString(dbSSLModeEnvVar, defaultDBSSLMode),
			User:     os.Getenv(dbUserEnvVar),
		}

	default:
		cfg = &postgres.CxnConfig{URL: os.Getenv(dbURLEnvVar)}
	}

	cfg.MaxIdleCxns = beconnected.EnvVarOrInt(dbMaxIdleCxnsEnvVar, defaultDBMaxIdleCxns)

	return cfg
}

// defaultLogger constructs the logger.Logger used throughout the web app,
// reporting to Sentry when SENTRY_DSN is set.
func defaultLogger(env beconnected.Environment) logger.Logger {
	l := logger.New(
		logger.WithEnv(env.String()),
		logger.WithLevel(logger.NewLogLevel(beconnected.EnvVarOrString(logLevelEnvVar, "INFO"))),
		logger.WithSentry(os.Getenv(sentryDsnEnvVar)),
	)
	l.Debug("setting up app logger", nil)

	return l
}

// defaultUserStore connects to Postgres and migrates it.
// If no database is configured and env allows it, users are kept in memory instead.
func defaultUserStore(env beconnected.Environment, l logger.Logger) (auth.UserStore, *postgres.DB, error) {
	cfg := NewPostgresConfig(env)
	if !cfg.Configured() && env.CanUseServiceStub() {
		l.Warn("no database configured, keeping users in memory", nil)
		return auth.NewMemoryStore(), nil, nil
	}

	db, err := postgres.Connect(cfg, postgres.Migrations, env)
	if err != nil {
		return nil, nil, err
	}

	return postgres.NewUserStore(db), db, nil
}

// defaultAccounts constructs the *auth.Service signing session tokens with JWT_SECRET.
// Where env allows it, a missing JWT_SECRET is replaced with a random one,
// invalidating every session token on restart.
func defaultAccounts(env beconnected.Environment, store auth.UserStore) (*auth.Service, error) {
	key := os.Getenv(jwtSecretEnvVar)
	if key == "" && env.CanUseServiceStub() {
		key = uuid.NewString()
	}

	s, err := auth.NewService(store, key)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be set: %s", beconnected.ErrBadConfig, jwtSecretEnvVar, err)
	}

	return s, nil
}

// defaultGoogle constructs a *auth.GoogleService when GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET are set.
func defaultGoogle(base *url.URL, l logger.Logger) *auth.GoogleService {
	id, secret := os.Getenv(googleClientIDEnvVar), os.Getenv(googleClientSecretEnvVar)
	if id == "" && secret == "" {
		return nil
	}

	callback := *base
	callback.Path = web.GoogleCallbackPath
	gs, err := auth.NewGoogleService(id, secret, callback.String())
	if err != nil {
		l.Warn(fmt.Sprintf("not signing in with Google: %s", err), nil)
		return nil
	}

	return gs
}

// defaultSessionStore constructs a SessionStorer to be used for storing session data.
//
// defaultSessionStore relies on these env vars:
//   - SESSION_AUTH_KEY
//   - SESSION_ENCRYPTION_KEY
//   - SESSION_MAX_AGE
//   - REDIS_URL and REDIS_PASSWORD, to keep sessions in Redis rather than cookies
//
// Both KEY env vars must be valid hex encoded values; cf. [encoding/hex].
// Where env allows it, missing keys are generated, logging everyone out on restart.
func defaultSessionStore(env beconnected.Environment) (session.SessionStorer, error) {
	cfg := session.Config{
		AuthKey:     os.Getenv(SessionAuthKeyEnvVar),
		EncryptKey:  os.Getenv(SessionEncryptKeyEnvVar),
		Env:         env,
		SessionName: session.DefaultSessionName,
	}

	if env.CanUseServiceStub() {
		if cfg.AuthKey == "" {
			cfg.AuthKey = hex.EncodeToString(securecookie.GenerateRandomKey(64))
		}

		if cfg.EncryptKey == "" {
			cfg.EncryptKey = hex.EncodeToString(securecookie.GenerateRandomKey(32))
		}
	}

	args := []session.ServiceOpt{session.WithMaxAge(beconnected.EnvVarOrInt(sessionMaxAgeEnvVar, defaultSessionMaxAge))}
	if opts, ok := redisOptions(); ok {
		args = append(args, session.WithRedis(opts.Addr, opts.Password))
	} else {
		args = append(args, session.WithCookie())
	}

	return session.NewStoreService(cfg, args...)
}

// defaultIdempotencyCache keeps idempotent responses in Redis when REDIS_URL is set,
// otherwise in memory.
func defaultIdempotencyCache(l logger.Logger) middleware.IdempotencyCacher {
	opts, ok := redisOptions()
	if !ok {
		return middleware.NewIdemResMap()
	}

	l.Debug("caching idempotent responses in Redis", nil)
	return middleware.NewRedisCache(opts, idempotencyPrefix)
}

// redisOptions reads REDIS_URL and REDIS_PASSWORD.
// REDIS_URL is either a redis:// URL or a host:port address.
func redisOptions() (*redis.Options, bool) {
	raw := os.Getenv(redisURLEnvVar)
	if raw == "" {
		return nil, false
	}

	opts := &redis.Options{Addr: raw}
	if strings.Contains(raw, "://") {
		parsed, err := redis.ParseURL(raw)
		if err != nil {
			return nil, false
		}

		opts = parsed
	}

	if pass := os.Getenv(redisPasswordEnvVar); pass != "" {
		opts.Password = pass
	}

	return opts, true
}

// defaultTrustedProxies lists the proxies whose forwarded headers name the client.
// None are trusted unless BEHIND_PROXY is true, in which case TRUSTED_PROXIES,
// or else the private ranges, are.
func defaultTrustedProxies() ([]netip.Prefix, error) {
	if !beconnected.EnvVarOrBool(behindProxyEnvVar, false) {
		return nil, nil
	}

	list := os.Getenv(trustedProxiesEnvVar)
	if list == "" {
		return middleware.PrivateProxies, nil
	}

	proxies, err := middleware.ParseProxies(list)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %s", beconnected.ErrBadConfig, trustedProxiesEnvVar, err)
	}

	return proxies, nil
}

// defaultRouter constructs the *router.Router with the middlewares every request goes through.
func defaultRouter(
	env beconnected.Environment,
	d *resp.Responder,
	l logger.Logger,
	sessions session.SessionStorer,
	accounts *auth.Service,
	proxies []netip.Prefix,
) *router.Router {
	r := router.New(env, route.NewGuard(route.LoginPath), web.LogoffPath, web.Assets())
	r.OnEveryRequest(
		middleware.ReportPanic(env),
		middleware.ForceHTTPS(env),
		middleware.RequestID(),
		middleware.InjectIPAddress(proxies...),
		middleware.LogRequest(l),
		middleware.CORS(os.Getenv(corsOriginEnvVar)),
		middleware.InjectSession(sessions),
		middleware.CurrentUser(d, accounts.FindByID, accounts.Authenticate),
	)

	return r
}

// defaultServer constructs a default [*http.Server].
func defaultServer(ctx context.Context) *http.Server {
	port := beconnected.EnvVarOrString(portEnvVar, DefaultPort)
	if port[0] != ':' {
		port = ":" + port
	}

	srv := &http.Server{
		Addr:         port,
		IdleTimeout:  beconnected.EnvVarOrDuration(serverIdleTimeoutEnvVar, DefaultServerIdleTimeout),
		ReadTimeout:  beconnected.EnvVarOrDuration(serverReadTimeoutEnvVar, DefaultServerReadTimeout),
		WriteTimeout: beconnected.EnvVarOrDuration(serverWriteTimeoutEnvVar, DefaultServerWriteTimeout),
	}
	if ctx != nil {
		srv.BaseContext = func(_ net.Listener) context.Context { return ctx }
	}

	return srv
}

package session

import (
	"encoding/gob"
	"encoding/hex"
	"fmt"
	"net/http"

	"github.com/beconnected/beconnected"
	"github.com/boj/redistore"
	gorilla "github.com/gorilla/sessions"
)

const (
	DefaultSessionName = "beconnected"
	defaultMaxAge      = 86400 // 1 day

	// Redis connections kept idle in the pool, and the prefix of session keys.
	redisPoolSize  = 10
	redisKeyPrefix = "beconnected:session:"
)

// The SessionStorer defines methods for interacting with a Session for the given *http.Request.
type SessionStorer interface {
	GetSession(r *http.Request) (Session, error)
}

// A Service hands out the Session of each request from a gorilla.Store,
// backed by cookies or by Redis.
//
// Service implements SessionStorer.
type Service struct {
	env    beconnected.Environment
	keys   [][]byte // authentication key, then the encryption key if any
	maxAge int      // seconds
	name   string   // of the session and its cookie
	store  gorilla.Store
}

// A Config provides the required values
type Config struct {
	Env beconnected.Environment

	// The name sessions are stored under.
	// Also used as the name of the cookie.
	SessionName string

	// Hex-encoded key
	AuthKey string

	// Hex-encoded key
	EncryptKey string
}

func (c Config) validate() error {
	if err := c.Env.Valid(); err != nil {
		return fmt.Errorf("%w: Env %q is %s", beconnected.ErrBadConfig, c.Env, err)
	}

	if c.SessionName == "" {
		return fmt.Errorf("%w: SessionName cannot be empty", beconnected.ErrBadConfig)
	}

	return nil
}

// keys decodes the hex keys of c, leaving out an empty encryption key.
func (c Config) keys() ([][]byte, error) {
	ak, err := hex.DecodeString(c.AuthKey)
	if err != nil {
		return nil, fmt.Errorf("%w: authentication key is not valid: %s", beconnected.ErrBadConfig, err)
	}

	ek, err := hex.DecodeString(c.EncryptKey)
	if err != nil {
		return nil, fmt.Errorf("%w: encryption key is not valid: %s", beconnected.ErrBadConfig, err)
	}

	if len(ek) == 0 {
		return [][]byte{ak}, nil
	}

	return [][]byte{ak, ek}, nil
}

// NewStoreService initiates a data store for user web sessions
// with the provided config.
// If no backing storage is provided through a functional option,
// like WithRedis, NewStoreService stores sessions in cookies.
func NewStoreService(cfg Config, opts ...ServiceOpt) (Service, error) {
	if err := cfg.validate(); err != nil {
		return Service{}, err
	}

	keys, err := cfg.keys()
	if err != nil {
		return Service{}, err
	}

	gob.Register(Flash{})
	s := Service{env: cfg.Env, keys: keys, maxAge: defaultMaxAge, name: cfg.SessionName}

	for _, opt := range opts {
		if err := opt(&s); err != nil {
			return Service{}, fmt.Errorf("%w: %s", beconnected.ErrBadConfig, err)
		}
	}

	if s.store == nil {
		if err := WithCookie()(&s); err != nil {
			return Service{}, fmt.Errorf("%w: %s", beconnected.ErrBadConfig, err)
		}
	}

	return s, nil
}

// GetSession retrieves the Session for the *http.Request,
// or creates a brand new one.
//
// A session that cannot be decoded, e.g., one signed by a rotated key,
// comes back as a brand new Session alongside the error.
func (s Service) GetSession(r *http.Request) (Session, error) {
	session, err := s.store.Get(r, s.name)
	return Session{s: session}, err
}

// cookie sets the attributes of the session cookie on opts.
// Outside local environments, the cookie is only ever sent over HTTPS.
func (s Service) cookie(opts *gorilla.Options) {
	opts.Path = "/"
	opts.HttpOnly = true
	opts.Secure = !s.env.IsLocal()
	opts.SameSite = http.SameSiteLaxMode
}

// A ServiceOpt configures the provided *Service,
// returning an error if unable to.
type ServiceOpt func(*Service) error

// WithCookie configures the Service to back session storage with cookies.
//
// In TESTING, cookies are signed but not encrypted, so tests can read them.
func WithCookie() ServiceOpt {
	return func(s *Service) error {
		keys := s.keys
		if s.env.IsTesting() {
			keys = keys[:1]
		}

		c := gorilla.NewCookieStore(keys...)
		s.cookie(c.Options)
		c.MaxAge(s.maxAge)
		s.store = c
		return nil
	}
}

// WithMaxAge sets the time-to-live of a session.
//
// Call before other options so this value is available.
//
// Otherwise, the Service uses defaultMaxAge.
func WithMaxAge(secs int) ServiceOpt {
	return func(s *Service) error {
		if secs <= 0 {
			return fmt.Errorf("%w: max age must be positive, got %d", ErrNotValid, secs)
		}

		s.maxAge = secs
		return nil
	}
}

// WithRedis configures the Service to keep sessions in Redis at addr,
// the cookie only carrying the session ID.
//
// To authenticate to the Redis server, provide pass, otherwise its zero-value is acceptable.
func WithRedis(addr, pass string) ServiceOpt {
	return func(s *Service) error {
		r, err := redistore.NewRediStore(redisPoolSize, "tcp", addr, pass, s.keys...)
		if err != nil {
			return fmt.Errorf("failed initializing Redis: %s", err)
		}

		r.SetKeyPrefix(redisKeyPrefix)
		s.cookie(r.Options)
		r.SetMaxAge(s.maxAge)
		s.store = r
		return nil
	}
}

// A Stub is an in-memory SessionStorer sharing a single session across every request.
// A Stub is not safe for concurrent use.
type Stub struct {
	s *gorilla.Session
}

// NewStub constructs a *Stub, with a user registered if loggedIn is true.
func NewStub(loggedIn bool) *Stub {
	gob.Register(Flash{})

	s := new(Stub)
	s.s = gorilla.NewSession(s, "stub")
	s.s.Options = &gorilla.Options{Path: "/", MaxAge: defaultMaxAge}
	if loggedIn {
		s.s.Values[userSessionKey] = uint(1)
	}

	return s
}

func (s *Stub) GetSession(r *http.Request) (Session, error) {
	return Session{s.s}, nil
}

func (s *Stub) Get(r *http.Request, name string) (*gorilla.Session, error)               { return s.s, nil }
func (s *Stub) New(r *http.Request, name string) (*gorilla.Session, error)               { return s.s, nil }
func (s *Stub) Save(r *http.Request, w http.ResponseWriter, sess *gorilla.Session) error { return nil }

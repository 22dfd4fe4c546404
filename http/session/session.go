package session

import (
	"net/http"

	gorilla "github.com/gorilla/sessions"
)

// keys used internal to specific implementations of different interfaces.
const (
	sessionKey      = "beconnected-session" // used by Service
	userSessionKey  = sessionKey + "-user"  // used by Session
	tokenSessionKey = sessionKey + "-token" // used by Session
)

// The Sessionable wraps methods for basic adding values to, deleting, and getting values from a session
// associated with an *http.Request and saving those to the session store.
type Sessionable interface {
	Delete(w http.ResponseWriter, r *http.Request) error
	Get(key string) any
	ResetExpiry(w http.ResponseWriter, r *http.Request) error
	Save(w http.ResponseWriter, r *http.Request) error
	Set(w http.ResponseWriter, r *http.Request, key string, val any) error
}

// The Writer wraps the only methods changing who a session belongs to.
// The login and logout flows are its sole callers.
type Writer interface {
	DeregisterUser(w http.ResponseWriter, r *http.Request) error
	RegisterUser(w http.ResponseWriter, r *http.Request, ID uint, token string) error
}

// The UserSessionable wraps methods for adding, removing, and retrieving
// users from a session.
type UserSessionable interface {
	Writer
	State() State
	Token() string
	UserID() (uint, error)
}

// The BeconnectedSessionable composes session's major interfaces.
type BeconnectedSessionable interface {
	FlashSessionable
	Sessionable
	UserSessionable
}

var _ BeconnectedSessionable = Session{}

// A Session provides all functionality for managing a fully featured session.
//
// Its functionality is implemented by lightly wrapping a gorilla.Session.
type Session struct {
	s *gorilla.Session
}

// NewSession constructs a new Session from a *gorilla.Session.
func NewSession(g *gorilla.Session) Session { return Session{s: g} }

// Delete removes a session by making the MaxAge negative.
func (s Session) Delete(w http.ResponseWriter, r *http.Request) error {
	s.s.Options.MaxAge = -1
	return s.Save(w, r)
}

// DeregisterUser removes the user and their token from the session.
func (s Session) DeregisterUser(w http.ResponseWriter, r *http.Request) error {
	delete(s.s.Values, userSessionKey)
	delete(s.s.Values, tokenSessionKey)
	return s.Save(w, r)
}

// Flashes retrieves []Flash stored in the session.
func (s Session) Flashes(w http.ResponseWriter, r *http.Request) []Flash {
	raw := s.s.Flashes()
	fs := make([]Flash, 0)
	for _, r := range raw {
		f, ok := r.(Flash)
		if !ok {
			continue
		}

		fs = append(fs, f)
	}

	if len(fs) > 0 {
		// NOTE: flashes are removed once read,
		// but the session needs saving for them to be gone for good
		if err := s.Save(w, r); err != nil {
			return nil
		}
	}

	return fs
}

// Get retrieves a value from the session according to the key passed in.
func (s Session) Get(key string) any {
	return s.s.Values[key]
}

// RegisterUser stores the user's ID and the session token issued for them in the session.
//
// A zero ID returns ErrNoUser.
func (s Session) RegisterUser(w http.ResponseWriter, r *http.Request, ID uint, token string) error {
	if ID == 0 {
		return ErrNoUser
	}

	s.s.Values[userSessionKey] = ID
	s.s.Values[tokenSessionKey] = token
	return s.Save(w, r)
}

// ResetExpiry resets the expiration of the session by saving it.
func (s Session) ResetExpiry(w http.ResponseWriter, r *http.Request) error {
	return s.Save(w, r)
}

// Save wraps gorilla.Session.Save, saving the session in the request.
func (s Session) Save(w http.ResponseWriter, r *http.Request) error { return s.s.Save(r, w) }

// Set stores a value according to the key passed in on the session.
func (s Session) Set(w http.ResponseWriter, r *http.Request, key string, val any) error {
	s.s.Values[key] = val
	return s.Save(w, r)
}

// SetFlash stores the passed in Flash in the session.
func (s Session) SetFlash(w http.ResponseWriter, r *http.Request, flash Flash) error {
	s.s.AddFlash(flash)
	return s.Save(w, r)
}

// State projects the session into the State guards decide on.
// A session without a valid user ID is unauthenticated.
func (s Session) State() State {
	id, err := s.UserID()
	if err != nil {
		return State{}
	}

	return State{UserID: id}
}

// Token gets the session token registered alongside the user.
func (s Session) Token() string {
	tok, _ := s.s.Values[tokenSessionKey].(string)
	return tok
}

// UserID gets the user ID out of the session.
// A user ID is present in a session if the user successfully authenticated.
// If no user ID can be found, ErrNoUser returns.
//
// If the value in the session is not a uint, ErrNotValid returns.
func (s Session) UserID() (uint, error) {
	intfVal, ok := s.s.Values[userSessionKey]
	if !ok {
		return 0, ErrNoUser
	}

	val, ok := intfVal.(uint)
	if !ok {
		return 0, ErrNotValid
	}

	return val, nil
}

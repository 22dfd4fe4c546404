package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/beconnected/beconnected"
	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
)

const defaultTokenTTL = 24 * time.Hour

var _ Authenticator = (*Service)(nil)

// Service authenticates users held in a UserStore.
//
// Service implements Authenticator.
type Service struct {
	store  UserStore
	key    []byte
	parser *jwt.Parser
	cost   int
	ttl    time.Duration
	now    func() time.Time
}

// A ServiceOpt configures a *Service when constructing it.
type ServiceOpt func(*Service)

// WithBcryptCost sets the cost passwords are hashed at.
// The default is bcrypt.DefaultCost.
func WithBcryptCost(cost int) ServiceOpt {
	return func(s *Service) {
		s.cost = cost
	}
}

// WithClock sets the function Service tells the time with.
func WithClock(now func() time.Time) ServiceOpt {
	return func(s *Service) {
		s.now = now
	}
}

// WithTokenTTL sets how long a session token is valid.
// The default is one day.
func WithTokenTTL(ttl time.Duration) ServiceOpt {
	return func(s *Service) {
		s.ttl = ttl
	}
}

// NewService constructs a *Service signing session tokens with jwtKey.
func NewService(store UserStore, jwtKey string, opts ...ServiceOpt) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("%w: store cannot be nil", ErrNotValid)
	}

	if jwtKey == "" {
		return nil, fmt.Errorf(`%w: jwt key cannot be ""`, ErrNotValid)
	}

	s := &Service{
		store:  store,
		key:    []byte(jwtKey),
		parser: &jwt.Parser{ValidMethods: []string{jwt.SigningMethodHS256.Alg()}},
		cost:   bcrypt.DefaultCost,
		ttl:    defaultTokenTTL,
		now:    time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

// Login checks the password of the user identified by email.
// For parity with signing in through a username, email may also be a username.
//
// Login returns an error only when looking up the user fails for reasons
// other than the user not existing.
func (s *Service) Login(ctx context.Context, email, password string) (Result, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return Result{Reason: ReasonMissingData}, nil
	}

	u, err := s.FindUser(ctx, email)
	if errors.Is(err, beconnected.ErrNotExist) {
		return Result{Reason: ReasonBadCredentials}, nil
	}

	if err != nil {
		return Result{}, fmt.Errorf("%w: finding user: %s", ErrUnexpected, err)
	}

	if err := bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(password)); err != nil {
		return Result{Reason: ReasonBadCredentials}, nil
	}

	return s.login(u)
}

// LoginVerified logs in the user identified by an email
// an identity provider, e.g., Google, already verified.
func (s *Service) LoginVerified(ctx context.Context, email string) (Result, error) {
	u, err := s.store.FindByEmail(ctx, email)
	if errors.Is(err, beconnected.ErrNotExist) {
		return Result{Reason: ReasonBadCredentials}, nil
	}

	if err != nil {
		return Result{}, fmt.Errorf("%w: finding user: %s", ErrUnexpected, err)
	}

	return s.login(u)
}

func (s *Service) login(u beconnected.User) (Result, error) {
	if !u.HasAccess() {
		return Result{Reason: ReasonNoAccess}, nil
	}

	tok, err := s.IssueToken(u)
	if err != nil {
		return Result{}, err
	}

	return Result{Success: true, SessionToken: tok, UserID: u.ID}, nil
}

// Register creates a user with access granted from the Registration.
//
// If the username or email is taken, beconnected.ErrExists returns.
func (s *Service) Register(ctx context.Context, reg Registration) (beconnected.User, error) {
	reg.Username = strings.TrimSpace(reg.Username)
	reg.Email = strings.TrimSpace(reg.Email)
	if reg.Username == "" || reg.Email == "" || reg.Password == "" {
		return beconnected.User{}, fmt.Errorf("%w: username, email and password are required", beconnected.ErrMissingData)
	}

	if _, err := mail.ParseAddress(reg.Email); err != nil {
		return beconnected.User{}, fmt.Errorf("%w: email %q", beconnected.ErrNotValid, reg.Email)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(reg.Password), s.cost)
	if err != nil {
		return beconnected.User{}, fmt.Errorf("%w: hashing password: %s", ErrUnexpected, err)
	}

	u := beconnected.User{
		AccessState:  beconnected.AccessGranted,
		Email:        reg.Email,
		FirstName:    strings.TrimSpace(reg.FirstName),
		LastName:     strings.TrimSpace(reg.LastName),
		PasswordHash: hash,
		Username:     reg.Username,
	}

	if err := s.store.Create(ctx, &u); err != nil {
		return beconnected.User{}, err
	}

	return u, nil
}

// FindByID retrieves the user with the id.
func (s *Service) FindByID(ctx context.Context, id uint) (beconnected.User, error) {
	return s.store.FindByID(ctx, id)
}

// FindUser resolves usernameOrEmail, trying it as a username before an email.
func (s *Service) FindUser(ctx context.Context, usernameOrEmail string) (beconnected.User, error) {
	u, err := s.store.FindByUsername(ctx, usernameOrEmail)
	if err == nil || !errors.Is(err, beconnected.ErrNotExist) {
		return u, err
	}

	u, err = s.store.FindByEmail(ctx, usernameOrEmail)
	if errors.Is(err, beconnected.ErrNotExist) {
		return beconnected.User{}, fmt.Errorf("%w: username/email %q", beconnected.ErrNotExist, usernameOrEmail)
	}

	return u, err
}

// Search finds the users matching query other than the current user.
// An empty query finds no one.
func (s *Service) Search(ctx context.Context, query string, currentUserID uint) ([]beconnected.User, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []beconnected.User{}, nil
	}

	return s.store.Search(ctx, query, currentUserID)
}

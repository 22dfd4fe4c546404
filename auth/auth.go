package auth

import "context"

// Reasons a Login does not succeed.
const (
	ReasonBadCredentials = "bad credentials"
	ReasonMissingData    = "missing credentials"
	ReasonNoAccess       = "no access"
)

// An Authenticator logs users in.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (Result, error)
}

// A Result is the outcome of a login attempt.
//
// A Result with Success false carries the Reason;
// SessionToken and UserID are only set when Success is true.
type Result struct {
	Success      bool
	SessionToken string
	UserID       uint
	Reason       string
}

// A Registration is what a user submits to sign up.
type Registration struct {
	Username  string
	Email     string
	FirstName string
	LastName  string
	Password  string
}

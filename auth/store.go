package auth

import (
	"context"

	"github.com/beconnected/beconnected"
)

//go:generate mockgen -destination=mock_auth/mock_auth.go github.com/beconnected/beconnected/auth UserStore

// A UserStore persists users.
//
// Lookups of a missing user return beconnected.ErrNotExist
// and Create returns beconnected.ErrExists when the username or email is taken.
type UserStore interface {
	Create(ctx context.Context, u *beconnected.User) error
	FindByEmail(ctx context.Context, email string) (beconnected.User, error)
	FindByID(ctx context.Context, id uint) (beconnected.User, error)
	FindByUsername(ctx context.Context, username string) (beconnected.User, error)

	// Search matches query against usernames, first names and last names, ignoring case,
	// and never returns the user identified by excludeID.
	Search(ctx context.Context, query string, excludeID uint) ([]beconnected.User, error)
}

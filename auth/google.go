package auth

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	goauth2 "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"
)

// GoogleService signs users in through their Google account.
type GoogleService struct {
	config *oauth2.Config
}

// NewGoogleService constructs a *GoogleService
// redirecting back to redirectURL once Google authenticated a user.
func NewGoogleService(clientID, clientSecret, redirectURL string) (*GoogleService, error) {
	if clientID == "" || clientSecret == "" || redirectURL == "" {
		return nil, fmt.Errorf(`%w: config cannot be ""`, ErrNotValid)
	}

	return &GoogleService{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       []string{goauth2.UserinfoEmailScope},
			Endpoint:     google.Endpoint,
		},
	}, nil
}

// AuthCodeURL is where to send a user to sign in with Google.
// state comes back to the callback unchanged.
func (gs *GoogleService) AuthCodeURL(state string) string {
	return gs.config.AuthCodeURL(state)
}

// VerifiedEmail exchanges the code Google called back with for the email of the user.
//
// If Google did not verify the email, ErrNotValid returns.
func (gs *GoogleService) VerifiedEmail(ctx context.Context, code string) (string, error) {
	token, err := gs.config.Exchange(ctx, code)
	if err != nil {
		return "", fmt.Errorf("%w: exchanging code: %s", ErrUnexpected, err)
	}

	info, err := gs.FetchUser(ctx, token)
	if err != nil {
		return "", err
	}

	if info.VerifiedEmail == nil || !*info.VerifiedEmail {
		return "", fmt.Errorf("%w: email %q is not verified", ErrNotValid, info.Email)
	}

	return info.Email, nil
}

// FetchUser retrieves the Google account the token was issued for.
func (gs *GoogleService) FetchUser(ctx context.Context, token *oauth2.Token) (*goauth2.Userinfo, error) {
	service, err := goauth2.NewService(ctx, option.WithTokenSource(gs.config.TokenSource(ctx, token)))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnexpected, err)
	}

	user, err := service.Userinfo.Get().Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnexpected, err)
	}

	return user, nil
}

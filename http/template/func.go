package template

import (
	"net/url"

	"github.com/beconnected/beconnected"
	"github.com/beconnected/beconnected/route"
	"github.com/google/uuid"
)

// Env encloses some string representing an environment.
// It returns "env" as the name of the function for convenient passing to WithFn
// and returns a function returning the enclosed value when called.
func Env(e beconnected.Environment) (string, func() string) {
	return "env", func() string { return e.String() }
}

// Nonce returns "nonce" as the name of the function for convenient passing to WithFn
// and returns a function generating a uuid.
func Nonce() (string, func() string) {
	return "nonce", func() string { return uuid.NewString() }
}

// RootUrl encloses the *url.URL representing the base URL of the web app.
// It returns "rootUrl" as the name of the function for convenient passing to WithFn
// and returns a function returning its *url.URL.String().
// If u is nil, that function will always return an empty string.
func RootUrl(u *url.URL) (string, func() string) {
	if u == nil {
		return "rootUrl", func() string { return "" }
	}

	s := u.String()
	return "rootUrl", func() string { return s }
}

// RoutePath encloses the *route.Table so templates link to views by name,
// e.g., {{ routePath "profile" "username" .Data.Username }}.
// It returns "routePath" as the name of the function for convenient passing to WithFn.
func RoutePath(t *route.Table) (string, func(view string, params ...string) (string, error)) {
	return "routePath", func(view string, params ...string) (string, error) {
		return t.Path(route.View(view), params...)
	}
}

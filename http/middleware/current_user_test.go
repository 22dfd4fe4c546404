package middleware_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/beconnected/beconnected"
	"github.com/beconnected/beconnected/http/middleware"
	"github.com/beconnected/beconnected/http/resp"
	"github.com/beconnected/beconnected/http/session"
	"github.com/stretchr/testify/require"
)

func findUser(u beconnected.User, err error) middleware.UserFinder {
	return func(_ context.Context, id uint) (beconnected.User, error) {
		if err != nil {
			return beconnected.User{}, err
		}

		u.ID = id
		return u, nil
	}
}

func tokenFor(id uint, err error) middleware.TokenAuthenticator {
	return func(string) (uint, error) { return id, err }
}

func TestCurrentUser(t *testing.T) {
	granted := beconnected.User{AccessState: beconnected.AccessGranted, Username: "alice"}
	revoked := beconnected.User{AccessState: beconnected.AccessRevoked, Username: "mallory"}

	for _, tc := range []struct {
		name          string
		loggedIn      bool
		find          middleware.UserFinder
		authenticate  middleware.TokenAuthenticator
		expectUser    bool
		expectAuthed  bool
		expectFlashes int
	}{
		{"No-User", false, findUser(granted, nil), tokenFor(1, nil), false, false, 0},
		{"Granted", true, findUser(granted, nil), tokenFor(1, nil), true, true, 0},
		{"Unchecked-Token", true, findUser(granted, nil), nil, true, true, 0},
		{"Bad-Token", true, findUser(granted, nil), tokenFor(0, errors.New("expired")), false, false, 0},
		{"Someone-Elses-Token", true, findUser(granted, nil), tokenFor(2, nil), false, false, 0},
		{"Gone", true, findUser(granted, beconnected.ErrNotExist), tokenFor(1, nil), false, false, 0},
		{"Revoked", true, findUser(revoked, nil), tokenFor(1, nil), false, false, 1},
	} {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			store := session.NewStub(tc.loggedIn)
			w := httptest.NewRecorder()
			r := withSession(t, store, httptest.NewRequest(http.MethodGet, "/feed", nil))
			d := resp.NewResponder(resp.WithLogger(newTestLogger(new(bytes.Buffer))))

			var (
				called bool
				user   any
			)

			// Act
			middleware.CurrentUser(d, tc.find, tc.authenticate)(http.HandlerFunc(func(_ http.ResponseWriter, rx *http.Request) {
				called = true
				user = rx.Context().Value(beconnected.CurrentUserKey)
			})).ServeHTTP(w, r)

			// Assert
			require.True(t, called)
			require.Equal(t, tc.expectUser, user != nil)

			s, err := store.GetSession(r)
			require.NoError(t, err)
			require.Equal(t, tc.expectAuthed, s.State().IsAuthenticated())
			require.Len(t, s.Flashes(w, r), tc.expectFlashes)
		})
	}
}

func TestCurrentUserNoop(t *testing.T) {
	// Arrange + Act
	noop := fmt.Sprintf("%p", middleware.Adapter(middleware.NoopAdapter))

	// Assert
	require.Equal(t, noop, fmt.Sprintf("%p", middleware.CurrentUser(nil, nil, nil)))
	require.Equal(t, noop, fmt.Sprintf("%p", middleware.CurrentUser(resp.NewResponder(), nil, nil)))
}

func TestCurrentUserErrors(t *testing.T) {
	d := resp.NewResponder(resp.WithLogger(newTestLogger(new(bytes.Buffer))), resp.WithRootUrl("https://example.com"))

	t.Run("No-Session", func(t *testing.T) {
		// Arrange
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/feed", nil)

		// Act
		middleware.CurrentUser(d, findUser(beconnected.User{}, nil), nil)(teapotHandler()).ServeHTTP(w, r)

		// Assert
		require.Equal(t, http.StatusSeeOther, w.Code)
		require.Equal(t, "https://example.com", w.Header().Get("Location"))
	})

	t.Run("No-Session-JSON", func(t *testing.T) {
		// Arrange
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/feed", nil)
		r.Header.Set("Accept", "application/json")

		// Act
		middleware.CurrentUser(d, findUser(beconnected.User{}, nil), nil)(teapotHandler()).ServeHTTP(w, r)

		// Assert
		require.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Store-Down", func(t *testing.T) {
		// Arrange
		w := httptest.NewRecorder()
		r := withSession(t, session.NewStub(true), httptest.NewRequest(http.MethodGet, "/feed", nil))
		r.Header.Set("Accept", "application/json")
		find := findUser(beconnected.User{}, fmt.Errorf("%w: connection refused", beconnected.ErrUnexpected))

		// Act
		middleware.CurrentUser(d, find, tokenFor(1, nil))(teapotHandler()).ServeHTTP(w, r)

		// Assert
		require.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

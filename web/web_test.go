package web_test

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/beconnected/beconnected"
	"github.com/beconnected/beconnected/auth"
	"github.com/beconnected/beconnected/http/middleware"
	"github.com/beconnected/beconnected/http/router"
	"github.com/beconnected/beconnected/http/session"
	"github.com/beconnected/beconnected/logger"
	"github.com/beconnected/beconnected/route"
	"github.com/beconnected/beconnected/web"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testPassword = "correct horse battery staple"

type testApp struct {
	handler  http.Handler
	accounts *auth.Service
	sessions *session.Stub
}

func newUser(t *testing.T, username, first, last string) beconnected.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	require.NoError(t, err)

	return beconnected.User{
		AccessState:  beconnected.AccessGranted,
		Email:        username + "@example.com",
		FirstName:    first,
		LastName:     last,
		PasswordHash: hash,
		Username:     username,
	}
}

// newTestApp serves the web app with alice, user 1, and bob, user 2.
// When loggedIn is true, alice is logged in.
func newTestApp(t *testing.T, loggedIn bool) testApp {
	t.Helper()

	store := auth.NewMemoryStore(
		newUser(t, "alice", "Alice", "Liddell"),
		newUser(t, "bob", "Bob", "Builder"),
	)
	accounts, err := auth.NewService(store, "test-signing-key", auth.WithBcryptCost(bcrypt.MinCost))
	require.NoError(t, err)

	l := logger.New(logger.WithLogger(log.New(io.Discard, "", 0)))
	base, err := url.ParseRequestURI("http://example.com/")
	require.NoError(t, err)

	table := route.Default()
	d := web.NewResponder(l, base, web.NewParser(beconnected.Testing, base, table))
	sessions := session.NewStub(loggedIn)

	rt := router.New(beconnected.Testing, route.NewGuard(route.LoginPath), web.LogoffPath, web.Assets())
	rt.OnEveryRequest(
		middleware.InjectSession(sessions),
		middleware.CurrentUser(d, accounts.FindByID, nil),
	)

	h := web.NewHandler(d, accounts, table, web.WithLogger(l))
	require.NoError(t, h.Mount(rt, middleware.NewVisitors(0, 0), middleware.NewIdemResMap()))

	return testApp{handler: rt, accounts: accounts, sessions: sessions}
}

func (app testApp) do(r *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	app.handler.ServeHTTP(w, r)
	return w
}

func (app testApp) authenticated(t *testing.T) bool {
	t.Helper()

	s, err := app.sessions.GetSession(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	return s.State().IsAuthenticated()
}

func postForm(path string, vals url.Values) *http.Request {
	r := httptest.NewRequest(http.MethodPost, path, strings.NewReader(vals.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return r
}

func postJSON(path, body string) *http.Request {
	r := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	r.Header.Set("Content-Type", "application/json")
	r.Header.Set("Accept", "application/json")
	return r
}

func TestViewsUnauthenticated(t *testing.T) {
	for _, tc := range []struct {
		path     string
		code     int
		contains string
		location string
	}{
		{"/", http.StatusOK, `id="home"`, ""},
		{"/login", http.StatusOK, `id="login"`, ""},
		{"/register", http.StatusOK, `id="register"`, ""},
		{"/feed", http.StatusTemporaryRedirect, "", "/login?next=%2Ffeed"},
		{"/network", http.StatusTemporaryRedirect, "", "/login?next=%2Fnetwork"},
		{"/messages", http.StatusTemporaryRedirect, "", "/login?next=%2Fmessages"},
		{"/settings", http.StatusTemporaryRedirect, "", "/login?next=%2Fsettings"},
		{"/profile/alice", http.StatusTemporaryRedirect, "", "/login?next=%2Fprofile%2Falice"},
		{"/profile/alice/connections", http.StatusTemporaryRedirect, "", "/login?next=%2Fprofile%2Falice%2Fconnections"},
		{"/nowhere", http.StatusNotFound, `id="not-found"`, ""},
	} {
		t.Run(tc.path, func(t *testing.T) {
			// Arrange
			app := newTestApp(t, false)

			// Act
			w := app.do(httptest.NewRequest(http.MethodGet, tc.path, nil))

			// Assert
			require.Equal(t, tc.code, w.Code)
			require.Contains(t, w.Body.String(), tc.contains)
			require.Equal(t, tc.location, w.Header().Get("Location"))
			if tc.code == http.StatusOK {
				require.Contains(t, w.Body.String(), `class="unauthed"`)
			}
		})
	}
}

func TestViewsAuthenticated(t *testing.T) {
	for _, tc := range []struct {
		path     string
		code     int
		contains string
		location string
	}{
		{"/", http.StatusOK, `id="home"`, ""},
		{"/login", http.StatusOK, `id="login"`, ""},
		{"/register", http.StatusOK, `id="register"`, ""},
		{"/feed", http.StatusOK, "Welcome back, Alice Liddell", ""},
		{"/network", http.StatusOK, `id="network"`, ""},
		{"/messages", http.StatusOK, `id="messages"`, ""},
		{"/settings", http.StatusOK, "alice@example.com", ""},
		{"/profile/bob", http.StatusOK, `id="profile" data-username="bob"`, ""},
		{"/profile/BOB", http.StatusOK, `id="profile" data-username="bob"`, ""},
		{"/profile/alice/connections", http.StatusOK, `id="connections" data-username="alice"`, ""},
		{"/profile/nobody", http.StatusNotFound, `id="not-found"`, ""},
		{"/nowhere", http.StatusNotFound, `id="not-found"`, ""},
	} {
		t.Run(tc.path, func(t *testing.T) {
			// Arrange
			app := newTestApp(t, true)

			// Act
			w := app.do(httptest.NewRequest(http.MethodGet, tc.path, nil))

			// Assert
			require.Equal(t, tc.code, w.Code)
			require.Contains(t, w.Body.String(), tc.contains)
			require.Equal(t, tc.location, w.Header().Get("Location"))
			if tc.code == http.StatusOK {
				require.Contains(t, w.Body.String(), `class="authed"`)
			}
		})
	}
}

func TestGuardedViewsAreNotCached(t *testing.T) {
	// Arrange
	app := newTestApp(t, true)

	// Act
	w := app.do(httptest.NewRequest(http.MethodGet, "/feed", nil))

	// Assert
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "no-store", w.Header().Get("Cache-control"))
}

func TestNetworkSearch(t *testing.T) {
	// Arrange
	app := newTestApp(t, true)

	// Act
	w := app.do(httptest.NewRequest(http.MethodGet, "/network?q=bui", nil))

	// Assert
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "@bob")
	require.NotContains(t, w.Body.String(), "@alice")

	// Arrange
	r := httptest.NewRequest(http.MethodGet, "/network?q=ali", nil)
	r.Header.Set("Accept", "application/json")

	// Act
	w = app.do(r)

	// Assert
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"data":{"Query":"ali","Results":[]}}`, w.Body.String())
}

func TestLogin(t *testing.T) {
	for _, tc := range []struct {
		name     string
		form     url.Values
		code     int
		location string
		contains string
		authed   bool
	}{
		{
			name:     "Bad-Password",
			form:     url.Values{"email": {"alice@example.com"}, "password": {"wrong"}},
			code:     http.StatusUnauthorized,
			contains: session.BadCredsMsg,
		},
		{
			name:     "Unknown-User",
			form:     url.Values{"email": {"carol@example.com"}, "password": {testPassword}},
			code:     http.StatusUnauthorized,
			contains: session.BadCredsMsg,
		},
		{
			name:     "Missing-Password",
			form:     url.Values{"email": {"alice@example.com"}},
			code:     http.StatusBadRequest,
			contains: "check your form",
		},
		{
			name:     "Success",
			form:     url.Values{"email": {"alice@example.com"}, "password": {testPassword}},
			code:     http.StatusSeeOther,
			location: route.FeedPath,
			authed:   true,
		},
		{
			name:     "Success-By-Username",
			form:     url.Values{"email": {"alice"}, "password": {testPassword}},
			code:     http.StatusSeeOther,
			location: route.FeedPath,
			authed:   true,
		},
		{
			name:     "Success-Next",
			form:     url.Values{"email": {"alice"}, "password": {testPassword}, "next": {"/profile/bob?tab=posts"}},
			code:     http.StatusSeeOther,
			location: "/profile/bob?tab=posts",
			authed:   true,
		},
		{
			name:     "Success-Next-Offsite",
			form:     url.Values{"email": {"alice"}, "password": {testPassword}, "next": {"//evil.example.com/feed"}},
			code:     http.StatusSeeOther,
			location: route.FeedPath,
			authed:   true,
		},
		{
			name:     "Success-Next-Login",
			form:     url.Values{"email": {"alice"}, "password": {testPassword}, "next": {"/login"}},
			code:     http.StatusSeeOther,
			location: route.FeedPath,
			authed:   true,
		},
		{
			name:     "Success-Next-Unknown",
			form:     url.Values{"email": {"alice"}, "password": {testPassword}, "next": {"/nowhere"}},
			code:     http.StatusSeeOther,
			location: route.FeedPath,
			authed:   true,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			app := newTestApp(t, false)

			// Act
			w := app.do(postForm("/login", tc.form))

			// Assert
			require.Equal(t, tc.code, w.Code)
			require.Equal(t, tc.location, w.Header().Get("Location"))
			require.Contains(t, w.Body.String(), tc.contains)
			require.Equal(t, tc.authed, app.authenticated(t))
		})
	}
}

func TestLoginThenFeed(t *testing.T) {
	// Arrange
	app := newTestApp(t, false)

	// Act
	w := app.do(httptest.NewRequest(http.MethodGet, "/feed", nil))

	// Assert
	require.Equal(t, http.StatusTemporaryRedirect, w.Code)

	// Act
	w = app.do(postForm("/login", url.Values{"email": {"alice"}, "password": {testPassword}, "next": {"/feed"}}))

	// Assert
	require.Equal(t, http.StatusSeeOther, w.Code)

	// Act
	w = app.do(httptest.NewRequest(http.MethodGet, w.Header().Get("Location"), nil))

	// Assert
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `id="feed"`)
}

func TestLoginJSON(t *testing.T) {
	for _, tc := range []struct {
		name   string
		body   string
		code   int
		assert func(*testing.T, map[string]any)
	}{
		{
			name: "Bad-Credentials",
			body: `{"email":"alice@example.com","password":"wrong"}`,
			code: http.StatusUnauthorized,
			assert: func(t *testing.T, got map[string]any) {
				require.Equal(t, map[string]any{"message": session.BadCredsMsg}, got["data"])
			},
		},
		{
			name: "Missing-Password",
			body: `{"email":"alice@example.com"}`,
			code: http.StatusBadRequest,
			assert: func(t *testing.T, got map[string]any) {
				data := got["data"].(map[string]any)
				errs := data["validationErrors"].([]any)
				require.Len(t, errs, 1)
				require.Equal(t, "password", errs[0].(map[string]any)["field"])
			},
		},
		{
			name: "Success",
			body: `{"email":"alice@example.com","password":"` + testPassword + `"}`,
			code: http.StatusOK,
			assert: func(t *testing.T, got map[string]any) {
				data := got["data"].(map[string]any)
				require.Equal(t, float64(1), data["userId"])
				require.NotEmpty(t, data["token"])
			},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			app := newTestApp(t, false)

			// Act
			w := app.do(postJSON("/login", tc.body))

			// Assert
			require.Equal(t, tc.code, w.Code)

			var got map[string]any
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
			tc.assert(t, got)
		})
	}
}

func TestLoginJSONTokenAuthenticates(t *testing.T) {
	// Arrange
	app := newTestApp(t, false)

	// Act
	w := app.do(postJSON("/login", `{"email":"bob","password":"`+testPassword+`"}`))

	// Assert
	require.Equal(t, http.StatusOK, w.Code)

	var got struct {
		Data struct {
			Token  string `json:"token"`
			UserID uint   `json:"userId"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))

	id, err := app.accounts.Authenticate(got.Data.Token)
	require.NoError(t, err)
	require.Equal(t, got.Data.UserID, id)
}

func TestRegister(t *testing.T) {
	for _, tc := range []struct {
		name     string
		form     url.Values
		code     int
		location string
		contains string
		authed   bool
	}{
		{
			name: "Success",
			form: url.Values{
				"username":  {"carol"},
				"email":     {"carol@example.com"},
				"firstName": {"Carol"},
				"password":  {testPassword},
			},
			code:     http.StatusSeeOther,
			location: route.FeedPath,
			authed:   true,
		},
		{
			name:     "Taken",
			form:     url.Values{"username": {"alice"}, "email": {"alice2@example.com"}, "password": {testPassword}},
			code:     http.StatusConflict,
			contains: session.TakenMsg,
		},
		{
			name:     "Not-An-Email",
			form:     url.Values{"username": {"carol"}, "email": {"carol"}, "password": {testPassword}},
			code:     http.StatusBadRequest,
			contains: "check your form",
		},
		{
			name:     "Missing-Username",
			form:     url.Values{"email": {"carol@example.com"}, "password": {testPassword}},
			code:     http.StatusBadRequest,
			contains: `value="carol@example.com"`,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			app := newTestApp(t, false)

			// Act
			w := app.do(postForm("/register", tc.form))

			// Assert
			require.Equal(t, tc.code, w.Code)
			require.Equal(t, tc.location, w.Header().Get("Location"))
			require.Contains(t, w.Body.String(), tc.contains)
			require.NotContains(t, w.Body.String(), testPassword)
			require.Equal(t, tc.authed, app.authenticated(t))
		})
	}
}

func TestRegisterWelcomes(t *testing.T) {
	// Arrange
	app := newTestApp(t, false)
	form := url.Values{"username": {"carol"}, "email": {"carol@example.com"}, "password": {testPassword}}

	// Act
	w := app.do(postForm("/register", form))
	require.Equal(t, http.StatusSeeOther, w.Code)
	w = app.do(httptest.NewRequest(http.MethodGet, route.FeedPath, nil))

	// Assert
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), session.WelcomeMsg)
	require.Contains(t, w.Body.String(), "Welcome back, carol")
}

func TestLogoff(t *testing.T) {
	for _, method := range []string{http.MethodGet, http.MethodPost} {
		t.Run(method, func(t *testing.T) {
			// Arrange
			app := newTestApp(t, true)
			require.True(t, app.authenticated(t))

			// Act
			w := app.do(httptest.NewRequest(method, web.LogoffPath, nil))

			// Assert
			require.Equal(t, http.StatusSeeOther, w.Code)
			require.Equal(t, route.LoginPath, w.Header().Get("Location"))
			require.False(t, app.authenticated(t))

			// Act
			w = app.do(httptest.NewRequest(http.MethodGet, route.FeedPath, nil))

			// Assert
			require.Equal(t, http.StatusTemporaryRedirect, w.Code)
		})
	}
}

func TestLogoffWithoutSession(t *testing.T) {
	// Arrange
	l := logger.New(logger.WithLogger(log.New(io.Discard, "", 0)))
	base, err := url.ParseRequestURI("http://example.com/")
	require.NoError(t, err)

	table := route.Default()
	d := web.NewResponder(l, base, web.NewParser(beconnected.Testing, base, table))
	rt := router.New(beconnected.Testing, route.NewGuard(route.LoginPath), web.LogoffPath, web.Assets())
	require.NoError(t, web.NewHandler(d, nil, table, web.WithLogger(l)).Mount(rt, nil, middleware.NewIdemResMap()))

	w := httptest.NewRecorder()

	// Act
	rt.ServeHTTP(w, httptest.NewRequest(http.MethodPost, web.LogoffPath, nil))

	// Assert
	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.Empty(t, w.Header().Get("Location"))
}

func TestGoogleDisabled(t *testing.T) {
	// Arrange
	app := newTestApp(t, false)

	// Act
	w := app.do(httptest.NewRequest(http.MethodGet, web.GoogleLoginPath, nil))

	// Assert
	require.Equal(t, http.StatusNotFound, w.Code)
	require.NotContains(t, w.Body.String(), "Sign in with Google")
}

func TestHealth(t *testing.T) {
	// Arrange
	app := newTestApp(t, false)

	// Act
	w := app.do(httptest.NewRequest(http.MethodGet, web.HealthPath, nil))

	// Assert
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"data":{"status":"ok"}}`, w.Body.String())
}

func TestAssets(t *testing.T) {
	// Arrange
	app := newTestApp(t, false)

	// Act
	w := app.do(httptest.NewRequest(http.MethodGet, "/static/app.css", nil))

	// Assert
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), ".flash")
}

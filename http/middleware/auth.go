package middleware

import (
	"net/http"
	"net/url"

	"github.com/beconnected/beconnected"
	"github.com/beconnected/beconnected/route"
)

// RequireAuthed returns an Adapter applying guard to entry
// against the session state of each request.
//
// The session state is the one InjectSession stored for this request;
// a request without a session is unauthenticated.
// Nothing is cached between requests: every request is decided anew.
//
// When the guard redirects, the next handler never runs.
// Requests whose "Accept" header asks for "application/json" get 401.
// All others are redirected to the guard's login path with a 307.
// The URL originally requested is appended as a "next" query param
// when the request method is GET and the path is not logoffURL.
//
// When the guard authorizes a guarded entry, the response is marked
// so that browsers do not keep it around after logging off.
func RequireAuthed(guard route.Guard, entry route.Entry, logoffURL string) Adapter {
	return func(handler http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var state route.Sessioner
			if s, ok := sessionFrom(r); ok {
				state = s.State()
			}

			decision := guard.Check(entry, state)
			if !decision.Allowed() {
				if acceptsJSON(r.Header) {
					w.WriteHeader(http.StatusUnauthorized)
					return
				}

				u := decision.Redirect
				if r.Method == http.MethodGet && r.URL.Path != logoffURL {
					u += "?next=" + url.QueryEscape(r.URL.RequestURI())
				}

				http.Redirect(w, r, u, http.StatusTemporaryRedirect)
				return
			}

			if entry.Guarded {
				w.Header().Set("Cache-control", "no-store")
				w.Header().Set("Pragma", "no-cache")
			}

			handler.ServeHTTP(w, r)
		})
	}
}

// RequireUnauthed returns an Adapter sending an already authenticated user away
// from pages meant for anonymous visitors, such as login and registration.
//
// Authenticated means CurrentUser stashed a User in the request context.
//
// When the User is authenticated, and the request's "Accept" header has "application/json" in it,
// RequireUnauthed writes 400 to the client.
// Otherwise, RequireUnauthed redirects to the User's HomePath.
func RequireUnauthed() Adapter {
	return func(handler http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cu, ok := r.Context().Value(beconnected.CurrentUserKey).(beconnected.User)
			if !ok {
				handler.ServeHTTP(w, r)
				return
			}

			if acceptsJSON(r.Header) {
				w.WriteHeader(http.StatusBadRequest)
				return
			}

			http.Redirect(w, r, cu.HomePath(), http.StatusTemporaryRedirect)
		})
	}
}

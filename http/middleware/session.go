package middleware

import (
	"context"
	"net/http"

	"github.com/beconnected/beconnected"
	"github.com/beconnected/beconnected/http/session"
)

// InjectSession stores the session associated with the *http.Request in *http.Request.Context
// under beconnected.SessionKey.
//
// The session is read from store anew on every request.
// A session that cannot be decoded is replaced by a brand new, unauthenticated one.
//
// If store is nil, NoopAdapter returns and this middleware does nothing.
func InjectSession(store session.SessionStorer) Adapter {
	if store == nil {
		return NoopAdapter
	}

	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s, _ := store.GetSession(r)
			ctx := context.WithValue(r.Context(), beconnected.SessionKey, s)
			h.ServeHTTP(w, r.Clone(ctx))
		})
	}
}

// sessionFrom pulls the session InjectSession stored.
func sessionFrom(r *http.Request) (session.Session, bool) {
	s, ok := r.Context().Value(beconnected.SessionKey).(session.Session)
	return s, ok
}

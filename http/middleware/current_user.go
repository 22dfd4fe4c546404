package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/beconnected/beconnected"
	"github.com/beconnected/beconnected/http/resp"
	"github.com/beconnected/beconnected/http/session"
)

// A UserFinder retrieves the User identified by id,
// returning beconnected.ErrNotExist if there is none.
type UserFinder func(ctx context.Context, id uint) (beconnected.User, error)

// A TokenAuthenticator validates a session token,
// returning the ID of the user it was issued to.
type TokenAuthenticator func(token string) (uint, error)

// CurrentUser loads the User registered in the session InjectSession stored
// and stashes it in the *http.Request.Context under beconnected.CurrentUserKey.
//
// A session without a user passes through untouched;
// whether that is acceptable is for RequireAuthed to decide.
//
// The user is deregistered from the session, and the request continues unauthenticated, when:
//   - the session token does not validate or belongs to someone else
//   - the user no longer exists
//   - the user no longer has access, in which case a flash explains why
//
// If authenticate is nil, session tokens are not checked.
// If d or find are nil, NoopAdapter returns and this middleware does nothing.
func CurrentUser(d *resp.Responder, find UserFinder, authenticate TokenAuthenticator) Adapter {
	if d == nil || find == nil {
		return NoopAdapter
	}

	return func(handler http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s, ok := sessionFrom(r)
			if !ok {
				handleErr(w, r, http.StatusUnauthorized, d, nil)
				return
			}

			uid, err := s.UserID()
			if err != nil {
				handler.ServeHTTP(w, r)
				return
			}

			if authenticate != nil {
				tokenID, err := authenticate(s.Token())
				if err != nil || tokenID != uid {
					deregister(w, r, s, d, handler, nil)
					return
				}
			}

			user, err := find(r.Context(), uid)
			if errors.Is(err, beconnected.ErrNotExist) {
				deregister(w, r, s, d, handler, nil)
				return
			}

			if err != nil {
				handleErr(w, r, http.StatusInternalServerError, d, err)
				return
			}

			if !user.HasAccess() {
				f := &session.Flash{Class: session.FlashWarning, Msg: session.NoAccessMsg}
				deregister(w, r, s, d, handler, f)
				return
			}

			if err := s.ResetExpiry(w, r); err != nil {
				_ = s.Delete(w, r)
				handleErr(w, r, http.StatusInternalServerError, d, err)
				return
			}

			ctx := context.WithValue(r.Context(), beconnected.CurrentUserKey, user)
			handler.ServeHTTP(w, r.Clone(ctx))
		})
	}
}

// deregister removes the user from s, optionally leaving a flash,
// and hands the now unauthenticated request to handler.
func deregister(
	w http.ResponseWriter,
	r *http.Request,
	s session.Session,
	d *resp.Responder,
	handler http.Handler,
	f *session.Flash,
) {
	if f != nil {
		_ = s.SetFlash(w, r, *f)
	}

	if err := s.DeregisterUser(w, r); err != nil {
		handleErr(w, r, http.StatusInternalServerError, d, err)
		return
	}

	handler.ServeHTTP(w, r)
}

// handleErr helps CurrentUser error paths by writing responses reflecting the
// "Accept" type of the *http.Request.
func handleErr(w http.ResponseWriter, r *http.Request, code int, d *resp.Responder, err error) {
	if acceptsJSON(r.Header) {
		if err := d.Json(w, r, resp.Err(err), resp.Code(code)); err != nil {
			d.Err(w, r, err)
		}

		return
	}

	if err := d.Redirect(w, r, resp.Err(err), resp.Code(code)); err != nil {
		d.Err(w, r, err)
	}
}

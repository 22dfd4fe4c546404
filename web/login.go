package web

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/beconnected/beconnected"
	"github.com/beconnected/beconnected/auth"
	"github.com/beconnected/beconnected/http/req"
	"github.com/beconnected/beconnected/http/resp"
	"github.com/beconnected/beconnected/http/session"
	"github.com/beconnected/beconnected/route"
	"github.com/google/uuid"
)

type loginForm struct {
	Email    string `json:"email" schema:"email" validate:"required"`
	Password string `json:"password" schema:"password" validate:"required"`
	Next     string `json:"next" schema:"next"`
}

type registerForm struct {
	Username  string `json:"username" schema:"username" validate:"required"`
	Email     string `json:"email" schema:"email" validate:"required,email"`
	FirstName string `json:"firstName" schema:"firstName"`
	LastName  string `json:"lastName" schema:"lastName"`
	Password  string `json:"password" schema:"password" validate:"required"`
}

type loginData struct {
	Email  string
	Google bool
	Next   string
}

type loggedIn struct {
	Token  string `json:"token"`
	UserID uint   `json:"userId"`
}

func (h *Handler) loginPage(w http.ResponseWriter, r *http.Request) {
	data := loginData{Google: h.google != nil, Next: r.URL.Query().Get("next")}
	if err := h.Html(w, r, layout(r), resp.Tmpls(loginTmpl), resp.Data(data)); err != nil {
		h.Err(w, r, err)
	}
}

// login checks the credentials posted and, if they are good,
// registers the user in the session before sending them where they were headed.
//
// Bad credentials re-render the login page with a 401.
// Nothing about the session changes unless the login succeeds.
func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var form loginForm
	if err := h.parser.ParseRequest(w, r, &form); err != nil {
		h.rejectLogin(w, r, form, session.BadInputMsg, http.StatusBadRequest, err)
		return
	}

	res, err := h.accounts.Login(r.Context(), form.Email, form.Password)
	if err != nil {
		h.failLogin(w, r, err)
		return
	}

	if !res.Success {
		msg := session.BadCredsMsg
		if res.Reason == auth.ReasonNoAccess {
			msg = session.NoAccessMsg
		}

		h.rejectLogin(w, r, form, msg, http.StatusUnauthorized, nil)
		return
	}

	h.startSession(w, r, res, form.Next)
}

// rejectLogin responds to a login attempt that did not succeed with code.
func (h *Handler) rejectLogin(w http.ResponseWriter, r *http.Request, form loginForm, msg string, code int, err error) {
	if wantsJSON(r) {
		h.sendJSON(w, r, resp.Code(code), resp.Data(jsonFailure(err, msg)))
		return
	}

	if err != nil {
		h.logger.Debug(err.Error(), nil)
	}

	data := loginData{Email: form.Email, Google: h.google != nil, Next: form.Next}
	flash := session.Flash{Class: session.FlashError, Msg: msg}
	if err := h.Html(
		w, r,
		layout(r),
		resp.Tmpls(loginTmpl),
		resp.Data(data),
		resp.Flash(flash),
		resp.Code(code),
	); err != nil {
		h.Err(w, r, err)
	}
}

// startSession registers the user res logged in and redirects them to next,
// if it is a page of the web app, or to the feed.
func (h *Handler) startSession(w http.ResponseWriter, r *http.Request, res auth.Result, next string) {
	s, err := h.Session(r.Context())
	if err == nil {
		err = s.RegisterUser(w, r, res.UserID, res.SessionToken)
	}

	if err != nil {
		h.failLogin(w, r, err)
		return
	}

	if wantsJSON(r) {
		h.sendJSON(w, r, resp.Data(loggedIn{Token: res.SessionToken, UserID: res.UserID}))
		return
	}

	if err := h.Redirect(w, r, resp.Url(h.safeNext(next)), resp.Code(http.StatusSeeOther)); err != nil {
		h.Err(w, r, err)
	}
}

// failLogin answers a login that broke down for reasons other than the credentials.
// JSON clients get a 500; everyone else goes back to the login page with a generic flash.
func (h *Handler) failLogin(w http.ResponseWriter, r *http.Request, err error) {
	if wantsJSON(r) {
		h.sendJSON(w, r, resp.Err(err))
		return
	}

	h.backToLogin(w, r, resp.GenericErr(err))
}

// backToLogin redirects to the login page with a 303, after applying fns.
func (h *Handler) backToLogin(w http.ResponseWriter, r *http.Request, fns ...resp.Fn) {
	fns = append(fns, resp.Url(route.LoginPath), resp.Code(http.StatusSeeOther))
	if err := h.Redirect(w, r, fns...); err != nil {
		h.Err(w, r, err)
	}
}

func (h *Handler) sendJSON(w http.ResponseWriter, r *http.Request, fns ...resp.Fn) {
	if err := h.Json(w, r, fns...); err != nil {
		h.Err(w, r, err)
	}
}

// safeNext returns next when it is a path to a view other than login or registration,
// otherwise the feed.
func (h *Handler) safeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return route.FeedPath
	}

	u, err := url.ParseRequestURI(next)
	if err != nil || u.Host != "" {
		return route.FeedPath
	}

	m, err := h.table.Match(u.Path)
	if err != nil || m.View == route.Login || m.View == route.Register {
		return route.FeedPath
	}

	return u.RequestURI()
}

func (h *Handler) registerPage(w http.ResponseWriter, r *http.Request) {
	if err := h.Html(w, r, layout(r), resp.Tmpls(registerTmpl)); err != nil {
		h.Err(w, r, err)
	}
}

// register signs up a new user and logs them in.
func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var form registerForm
	if err := h.parser.ParseRequest(w, r, &form); err != nil {
		h.rejectRegistration(w, r, form, session.BadInputMsg, http.StatusBadRequest, err)
		return
	}

	u, err := h.accounts.Register(r.Context(), auth.Registration{
		Username:  form.Username,
		Email:     form.Email,
		FirstName: form.FirstName,
		LastName:  form.LastName,
		Password:  form.Password,
	})
	switch {
	case errors.Is(err, beconnected.ErrExists):
		h.rejectRegistration(w, r, form, session.TakenMsg, http.StatusConflict, nil)
		return
	case errors.Is(err, beconnected.ErrMissingData), errors.Is(err, beconnected.ErrNotValid):
		h.rejectRegistration(w, r, form, session.BadInputMsg, http.StatusBadRequest, err)
		return
	case err != nil:
		h.rejectRegistration(w, r, form, ContactErrMsg, http.StatusInternalServerError, err)
		return
	}

	token, err := h.accounts.IssueToken(u)
	if err != nil {
		h.failLogin(w, r, err)
		return
	}

	if s, err := h.Session(r.Context()); err == nil && !wantsJSON(r) {
		if err := s.SetFlash(w, r, session.Flash{Class: session.FlashSuccess, Msg: session.WelcomeMsg}); err != nil {
			h.logger.Warn(err.Error(), nil)
		}
	}

	h.startSession(w, r, auth.Result{Success: true, SessionToken: token, UserID: u.ID}, route.FeedPath)
}

// rejectRegistration re-renders the registration page with what was submitted, save the password.
func (h *Handler) rejectRegistration(w http.ResponseWriter, r *http.Request, form registerForm, msg string, code int, err error) {
	if code >= http.StatusInternalServerError {
		h.logger.Error(err.Error(), nil)
	}

	if wantsJSON(r) {
		h.sendJSON(w, r, resp.Code(code), resp.Data(jsonFailure(err, msg)))
		return
	}

	form.Password = ""
	flash := session.Flash{Class: session.FlashError, Msg: msg}
	if err := h.Html(
		w, r,
		layout(r),
		resp.Tmpls(registerTmpl),
		resp.Data(form),
		resp.Flash(flash),
		resp.Code(code),
	); err != nil {
		h.Err(w, r, err)
	}
}

// jsonFailure lists the fields failing validation in err, if any, or else carries msg.
func jsonFailure(err error, msg string) any {
	var verrs req.ValidationErrors
	if errors.As(err, &verrs) {
		return verrs
	}

	return map[string]string{"message": msg}
}

// logoff deregisters the user from the session.
func (h *Handler) logoff(w http.ResponseWriter, r *http.Request) {
	s, err := h.Session(r.Context())
	if err == nil {
		err = s.DeregisterUser(w, r)
	}

	if err != nil {
		h.backToLogin(w, r, resp.GenericErr(err))
		return
	}

	h.backToLogin(w, r, resp.Flash(session.Flash{Class: session.FlashInfo, Msg: session.LoggedOffMsg}))
}

// googleLogin sends the visitor to Google to sign in,
// remembering a random state to check on the way back.
func (h *Handler) googleLogin(w http.ResponseWriter, r *http.Request) {
	if h.google == nil {
		h.notFound(w, r)
		return
	}

	s, err := h.Session(r.Context())
	if err != nil {
		h.backToLogin(w, r, resp.GenericErr(err))
		return
	}

	state := uuid.NewString()
	if err := s.Set(w, r, oauthStateKey, state); err != nil {
		h.backToLogin(w, r, resp.GenericErr(err))
		return
	}

	http.Redirect(w, r, h.google.AuthCodeURL(state), http.StatusFound)
}

// googleCallback logs in the user whose email Google verified.
func (h *Handler) googleCallback(w http.ResponseWriter, r *http.Request) {
	if h.google == nil {
		h.notFound(w, r)
		return
	}

	s, err := h.Session(r.Context())
	if err != nil {
		h.backToLogin(w, r, resp.GenericErr(err))
		return
	}

	want, _ := s.Get(oauthStateKey).(string)
	if want == "" || r.URL.Query().Get("state") != want {
		h.backToLogin(w, r, resp.Warn(session.BadCredsMsg))
		return
	}

	if err := s.Set(w, r, oauthStateKey, ""); err != nil {
		h.backToLogin(w, r, resp.GenericErr(err))
		return
	}

	email, err := h.google.VerifiedEmail(r.Context(), r.URL.Query().Get("code"))
	if errors.Is(err, auth.ErrNotValid) {
		h.backToLogin(w, r, resp.Warn(session.BadCredsMsg))
		return
	}

	if err != nil {
		h.backToLogin(w, r, resp.GenericErr(err))
		return
	}

	res, err := h.accounts.LoginVerified(r.Context(), email)
	if err != nil {
		h.backToLogin(w, r, resp.GenericErr(err))
		return
	}

	if !res.Success {
		h.backToLogin(w, r, resp.Warn(session.BadCredsMsg))
		return
	}

	h.startSession(w, r, res, route.FeedPath)
}

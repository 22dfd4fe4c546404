package resp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"sync"

	"github.com/beconnected/beconnected"
	"github.com/beconnected/beconnected/http/session"
	"github.com/beconnected/beconnected/http/template"
	"github.com/beconnected/beconnected/logger"
)

const (
	htmlMediaType = "text/html; charset=UTF-8"
	jsonMediaType = "application/json; charset=UTF-8"
)

// A Responder writes the responses of BeConnected's handlers:
// pages with Html, API payloads with Json and Redirect.
// One Responder, configured once, serves the whole web app.
//
// A handler shapes each response with Fn options such as Tmpls, Data, Flash or Code.
type Responder struct {
	contactErrMsg string // shown in flashes and the error page
	logger        logger.Logger
	parser        template.Parser
	pool          *sync.Pool // of *bytes.Buffer responses are rendered into
	rootUrl       *url.URL

	// Base templates: a page renders inside authed or unauthed;
	// err renders when no page can.
	templates struct {
		authed   string
		err      string
		unauthed string
	}
}

// renderData is what every page template executes with.
type renderData struct {
	CurrentUser any
	Data        any
	Flashes     []session.Flash
}

// jsonSchema is the envelope of every Json response.
type jsonSchema struct {
	D any `json:"data,omitempty"`
	U any `json:"currentUser,omitempty"`
}

// NewResponder constructs a *Responder using the ResponderOptFns passed in.
func NewResponder(opts ...ResponderOptFn) *Responder {
	d := &Responder{
		pool:    &sync.Pool{New: func() any { return new(bytes.Buffer) }},
		rootUrl: &url.URL{Path: "/"},
	}

	for _, opt := range opts {
		opt(d)
	}

	if d.logger == nil {
		d.logger = logger.New()
	}

	return d
}

// CurrentUser retrieves the user set in the context.
//
// If the context.Context has no value for beconnected.CurrentUserKey, ErrNotFound returns.
func (doer Responder) CurrentUser(ctx context.Context) (any, error) {
	if val := ctx.Value(beconnected.CurrentUserKey); val != nil {
		return val, nil
	}

	return nil, fmt.Errorf("%w: no user found with %s", ErrNotFound, beconnected.CurrentUserKey)
}

// Session retrieves the session set in the context as a session.Session.
//
// If the context.Context has no value for beconnected.SessionKey, ErrNotFound returns.
func (doer Responder) Session(ctx context.Context) (session.Session, error) {
	switch val := ctx.Value(beconnected.SessionKey).(type) {
	case nil:
		return session.Session{}, fmt.Errorf("%w: no session found with %s", ErrNotFound, beconnected.SessionKey)
	case session.Session:
		return val, nil
	default:
		return session.Session{}, fmt.Errorf("%w: is not session.Session, is %T", ErrInvalid, val)
	}
}

// Err logs err and answers with http.Error, a 500 unless opts set another code.
//
// Use it when neither Html nor Redirect can respond.
func (doer *Responder) Err(w http.ResponseWriter, r *http.Request, err error, opts ...Fn) {
	rr, nested := doer.do(w, r, append(opts, Err(err))...)
	if nested != nil {
		err = fmt.Errorf("%w: %s", nested, err)
	}

	code := http.StatusInternalServerError
	if rr != nil && rr.code != 0 {
		code = rr.code
	}

	var msg string
	if err != nil {
		msg = err.Error()
	}

	http.Error(w, msg, code)
}

// Html renders the templates set by Tmpls, inside the base template Authed or Unauthed picked.
// Templates execute with CurrentUser, Data and Flashes fields; reading the flashes clears them.
//
// When rendering fails, Html writes the error page instead and logs why.
func (doer *Responder) Html(w http.ResponseWriter, r *http.Request, opts ...Fn) error {
	rr, err := doer.do(w, r, opts...)
	if err == nil {
		err = doer.canRender(rr)
	}

	if err != nil {
		return doer.handleHtmlError(w, r, err)
	}

	tmpl, err := doer.parser.Parse(rr.tmpls...)
	if err != nil {
		return doer.handleHtmlError(w, r, fmt.Errorf("cannot parse: %w", err))
	}

	rd := renderData{CurrentUser: rr.user, Data: rr.data}
	switch s, err := doer.Session(r.Context()); {
	case err == nil:
		rd.Flashes = s.Flashes(w, r)
	case !errors.Is(err, ErrNotFound):
		return doer.handleHtmlError(w, r, fmt.Errorf("can't retrieve session: %w", err))
	}

	b, release := doer.buffer()
	defer release()

	if err := tmpl.ExecuteTemplate(b, path.Base(rr.tmpls[0]), rd); err != nil {
		return doer.handleHtmlError(w, r, err)
	}

	return write(w, htmlMediaType, rr.code, b)
}

// canRender checks rr has templates to render with, and a user for the authed base template.
func (doer *Responder) canRender(rr *Response) error {
	if doer.parser == nil {
		return fmt.Errorf("%w: no parser configured", ErrBadConfig)
	}

	if len(rr.tmpls) == 0 {
		return fmt.Errorf("%w: no templates to render", ErrMissingData)
	}

	// Tmpls(authedTmpl, ...) without Authed() still needs the user.
	if rr.tmpls[0] == doer.templates.authed {
		return populateUser(*doer, rr)
	}

	return nil
}

// Json writes the data set by Data under "data".
// Responses with a 2xx code, 200 by default, also carry the user under "currentUser":
//
//	{
//		"currentUser": {},
//		"data": {}
//	}
func (doer *Responder) Json(w http.ResponseWriter, r *http.Request, opts ...Fn) error {
	rr, err := doer.do(w, r, opts...)
	if err != nil {
		return err
	}

	if rr.code == 0 {
		rr.code = http.StatusOK
	}

	payload := jsonSchema{D: rr.data}
	if rr.code >= http.StatusOK && rr.code <= http.StatusNoContent {
		payload.U = rr.user
	}

	b, release := doer.buffer()
	defer release()

	if err := json.NewEncoder(b).Encode(payload); err != nil {
		doer.Err(w, r, err)
		return err
	}

	return write(w, jsonMediaType, rr.code, b)
}

// Redirect sends the client to the URL Url set, or the root URL without one.
//
// Redirect answers 302 by default and keeps a 3xx set by Code.
// Other codes set by Code, e.g. by Err, become:
//   - 303 for a 4xx
//   - 307 for a 5xx
func (doer *Responder) Redirect(w http.ResponseWriter, r *http.Request, opts ...Fn) error {
	rr, err := doer.do(w, r, append([]Fn{ToRoot()}, opts...)...)
	if err != nil {
		return err
	}

	if rr.url == nil {
		return fmt.Errorf("%w: cannot redirect, no url", ErrMissingData)
	}

	http.Redirect(w, r, rr.url.String(), redirectCode(rr.code))
	return nil
}

func redirectCode(code int) int {
	switch {
	case code >= http.StatusMultipleChoices && code <= http.StatusPermanentRedirect:
		return code
	case code >= http.StatusInternalServerError:
		return http.StatusTemporaryRedirect
	case code >= http.StatusBadRequest:
		return http.StatusSeeOther
	default:
		return http.StatusFound
	}
}

// do applies opts to a new *Response for w and r.
//
// Options may depend on ones listed after them:
// failing options are retried as long as a pass over them makes progress.
// The errors of the options still failing after that are returned together.
func (doer *Responder) do(w http.ResponseWriter, r *http.Request, opts ...Fn) (*Response, error) {
	rr := &Response{w: w, r: r, tmpls: make([]string, 0)}

	for pending := opts; len(pending) > 0; {
		if r.Context().Err() != nil {
			return nil, fmt.Errorf("%w", ErrDone)
		}

		var (
			failed []Fn
			err    error
		)
		for _, opt := range pending {
			nested := opt(*doer, rr)
			switch {
			case nested == nil:
				continue
			case err == nil:
				err = nested
			default:
				err = fmt.Errorf("%w: %s", err, nested)
			}

			failed = append(failed, opt)
		}

		if len(failed) == len(pending) {
			return rr, err
		}

		pending = failed
	}

	return rr, nil
}

// handleHtmlError logs err and renders the error page with a 500,
// or a plain 500 when no error page is configured or it fails too.
func (doer *Responder) handleHtmlError(w http.ResponseWriter, r *http.Request, err error) error {
	doer.logger.Error(err.Error(), newLogContext(r, err, nil, nil))

	if doer.templates.err == "" || doer.parser == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return fmt.Errorf("%w: no error template provided, encountered while handling: %s", ErrBadConfig, err)
	}

	b, release := doer.buffer()
	defer release()

	tmpl, nested := doer.parser.Parse(doer.templates.err)
	if nested == nil {
		nested = tmpl.Execute(b, map[string]any{"Contact": doer.contactErrMsg, "Error": err})
	}

	if nested != nil {
		err = fmt.Errorf("%w: %s", nested, err)
		doer.logger.Error(err.Error(), nil)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return err
	}

	if nested = write(w, htmlMediaType, http.StatusInternalServerError, b); nested != nil {
		return fmt.Errorf("%w: %s", nested, err)
	}

	return nil
}

// buffer borrows an empty *bytes.Buffer from the pool; call release to return it.
func (doer *Responder) buffer() (*bytes.Buffer, func()) {
	b := doer.pool.Get().(*bytes.Buffer)
	b.Reset()
	return b, func() { doer.pool.Put(b) }
}

// write sends b as the body, with the media type and, unless zero, the status code.
func write(w http.ResponseWriter, mediaType string, code int, b *bytes.Buffer) error {
	w.Header().Set("Content-Type", mediaType)
	if code != 0 {
		w.WriteHeader(code)
	}

	_, err := b.WriteTo(w)
	return err
}

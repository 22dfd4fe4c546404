package resp

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/beconnected/beconnected/http/session"
)

// A Fn shapes the Response a Responder method is building.
// It may fail when it needs something another Fn has yet to set.
type Fn func(Responder, *Response) error

// A Response accumulates what the Fn options of a Responder method call set.
type Response struct {
	w     http.ResponseWriter
	r     *http.Request
	code  int
	data  any
	tmpls []string
	url   *url.URL
	user  any
}

// Authed renders the page inside the base template for logged in users,
// replacing the unauthenticated one, and puts the current user in the Response.
//
// Without a user in the request context, ErrNoUser returns.
// Without WithAuthTemplate, ErrBadConfig returns.
func Authed() Fn {
	return func(d Responder, r *Response) error {
		if d.templates.authed == "" {
			return fmt.Errorf("%w: no authed tmpl", ErrBadConfig)
		}

		if err := populateUser(d, r); err != nil {
			return err
		}

		r.setBase(d.templates.authed, d.templates.unauthed)
		return nil
	}
}

// Unauthed renders the page inside the base template for visitors,
// replacing the authenticated one.
//
// Without WithUnauthTemplate, ErrBadConfig returns.
func Unauthed() Fn {
	return func(d Responder, r *Response) error {
		if d.templates.unauthed == "" {
			return fmt.Errorf("%w: no unauthed tmpl", ErrBadConfig)
		}

		r.setBase(d.templates.unauthed, d.templates.authed)
		return nil
	}
}

// setBase makes base the first template, swapping it for other if that is first.
func (r *Response) setBase(base, other string) {
	switch {
	case len(r.tmpls) > 0 && r.tmpls[0] == base:
	case len(r.tmpls) > 0 && r.tmpls[0] == other:
		r.tmpls[0] = base
	default:
		r.tmpls = append([]string{base}, r.tmpls...)
	}
}

func Code(c int) Fn {
	return func(_ Responder, r *Response) error {
		r.code = c
		return nil
	}
}

// Data is rendered as .Data by Html and under "data" by Json.
func Data(d any) Fn {
	return func(_ Responder, r *Response) error {
		r.data = d
		return nil
	}
}

// Err logs e, if any, and sets the status code to 500.
func Err(e error) Fn {
	return func(d Responder, r *Response) error {
		if e != nil {
			d.logger.Error(e.Error(), newLogContext(r.r, e, r.data, r.user))
		}

		r.code = http.StatusInternalServerError
		return nil
	}
}

// Flash saves flash in the session, to be shown by the next page rendered.
func Flash(flash session.Flash) Fn {
	return func(d Responder, r *Response) error {
		s, err := d.Session(r.r.Context())
		if err != nil {
			return err
		}

		return s.SetFlash(r.w, r.r, flash)
	}
}

// GenericErr is Err, plus an error flash asking the user to get in touch:
// the message set by WithContactErrMsg or session.DefaultErrMsg.
func GenericErr(e error) Fn {
	return func(d Responder, r *Response) error {
		if err := Err(e)(d, r); err != nil {
			return err
		}

		msg := d.contactErrMsg
		if msg == "" {
			msg = session.DefaultErrMsg
		}

		return Flash(session.Flash{Class: session.FlashError, Msg: msg})(d, r)
	}
}

// Warn logs msg and saves it as a warning flash.
func Warn(msg string) Fn {
	return func(d Responder, r *Response) error {
		d.logger.Warn(msg, newLogContext(r.r, nil, r.data, r.user))
		return Flash(session.Flash{Class: session.FlashWarning, Msg: msg})(d, r)
	}
}

// Tmpls appends the templates a page renders, after its base template.
func Tmpls(fps ...string) Fn {
	return func(_ Responder, r *Response) error {
		r.tmpls = append(r.tmpls, fps...)
		return nil
	}
}

// ToRoot redirects to the Responder's root URL.
func ToRoot() Fn {
	return func(d Responder, r *Response) error {
		u := *d.rootUrl
		r.url = &u
		return nil
	}
}

// Url sets where Redirect sends the client.
func Url(u string) Fn {
	return func(_ Responder, r *Response) error {
		parsed, err := url.ParseRequestURI(u)
		if err != nil {
			return fmt.Errorf("%w: u is not a valid URL: %v", ErrInvalid, err)
		}

		r.url = parsed
		return nil
	}
}

// User sets the user a page renders as .CurrentUser, and Json under "currentUser".
func User(u any) Fn {
	return func(_ Responder, r *Response) error {
		r.user = u
		return nil
	}
}

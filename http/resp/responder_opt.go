package resp

import (
	"net/url"

	"github.com/beconnected/beconnected/http/template"
	"github.com/beconnected/beconnected/logger"
)

// A ResponderOptFn configures a Responder under construction; cf. NewResponder.
type ResponderOptFn func(*Responder)

// WithAuthTemplate names the base template of pages for logged in users. Authed requires it.
func WithAuthTemplate(fp string) ResponderOptFn {
	return func(d *Responder) { d.templates.authed = fp }
}

// WithUnauthTemplate names the base template of pages for visitors. Unauthed requires it.
func WithUnauthTemplate(fp string) ResponderOptFn {
	return func(d *Responder) { d.templates.unauthed = fp }
}

// WithErrTemplate names the page rendered when Html cannot render the one asked for.
// It executes with Contact, the message set by WithContactErrMsg, and Error.
func WithErrTemplate(fp string) ResponderOptFn {
	return func(d *Responder) { d.templates.err = fp }
}

// WithContactErrMsg sets the message GenericErr flashes and the error page shows.
func WithContactErrMsg(msg string) ResponderOptFn {
	return func(d *Responder) { d.contactErrMsg = msg }
}

// WithLogger sets the Logger; NewResponder otherwise uses logger.New.
func WithLogger(log logger.Logger) ResponderOptFn {
	return func(d *Responder) { d.logger = log }
}

func WithParser(p template.Parser) ResponderOptFn {
	return func(d *Responder) { d.parser = p }
}

// WithRootUrl sets where ToRoot, and Redirect without Url, send the client.
// A u that url.ParseRequestURI rejects leaves the root at "/".
func WithRootUrl(u string) ResponderOptFn {
	return func(d *Responder) {
		if parsed, err := url.ParseRequestURI(u); err == nil {
			d.rootUrl = parsed
		}
	}
}

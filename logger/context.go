package logger

import (
	"encoding"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"runtime"

	"github.com/beconnected/beconnected"
)

var (
	_ encoding.TextMarshaler = LogContext{}

	// maskedHeaders never reach a log line.
	maskedHeaders = []string{"Authorization", "Cookie"}

	// maskedKeys are scrubbed from query strings and forms.
	maskedKeys = []string{"password", "confirm_password", "token"}
)

// LogUser is the interface exposing attributes of a user to a LogContext.
type LogUser interface {
	// GetID retrieves the application's identifier for a user.
	GetID() uint

	// GetEmail retrieves the email address of the user.
	GetEmail() string
}

// A LogContext provides additional information and configuration
// for a Logger method that cannot be tersely captured in the message itself.
type LogContext struct {
	// Caller overrides the caller file and line number with the provided value.
	//
	// Caller is not logged in the text of a LogContext.
	//
	// Caller helps goroutines identify the callers of the process that spawned it.
	Caller string

	// Data is any information pertinent at the time of the logging event.
	Data map[string]any

	// Error is the error that may or may not have instigated a logging event.
	Error error

	// Request is the *http.Request that may or may not have been open during the logging event.
	Request *http.Request

	// User is the user whose session was active during the logging event.
	User LogUser
}

// MarshalText converts LogContext into a JSON representation,
// eliminating zero-value fields or fields not requiring logging.
// Credentials in the Request are masked.
//
// Values in LogContext.Data that cannot be represented in JSON cause an error.
//
// MarshalText implements encoding.TextMarshaler.
func (lc LogContext) MarshalText() ([]byte, error) {
	m := make(map[string]any)
	if lc.Data != nil {
		m["data"] = lc.Data
	}

	if lc.Error != nil {
		m["error"] = lc.Error.Error()
	}

	if lc.Request != nil {
		m["request"] = marshalRequest(lc.Request)
	}

	if lc.User != nil {
		u := make(map[string]any)
		if id := lc.User.GetID(); id != 0 {
			u["id"] = id
		}

		if email := lc.User.GetEmail(); email != "" {
			u["email"] = email
		}

		if len(u) > 0 {
			m["user"] = u
		}
	}

	return json.Marshal(m)
}

// String stringifies LogContext as a JSON representation of it.
func (lc LogContext) String() string {
	b, err := lc.MarshalText()
	if err != nil {
		return fmt.Sprintf("%q", err)
	}

	return string(b)
}

func marshalRequest(r *http.Request) map[string]any {
	req := map[string]any{"method": r.Method}
	if r.URL != nil {
		u := *r.URL
		q := u.Query()
		if maskAll(q) {
			u.RawQuery = q.Encode()
		}

		req["url"] = u.String()
	}

	header := r.Header.Clone()
	for _, h := range maskedHeaders {
		header.Del(h)
	}

	if len(header) > 0 {
		req["header"] = header
	}

	if len(r.PostForm) > 0 {
		form := make(url.Values, len(r.PostForm))
		for k, v := range r.PostForm {
			form[k] = v
		}

		maskAll(form)
		req["form"] = form
	}

	return req
}

// maskAll masks every maskedKeys in vals, reporting whether any was present.
func maskAll(vals url.Values) bool {
	var found bool
	for _, k := range maskedKeys {
		if _, ok := vals[k]; ok {
			found = true
			beconnected.Mask(vals, k)
		}
	}

	return found
}

// CurrentCaller retrieves the caller for the caller of CurrentCaller,
// formatted for using as a value in LogContext.Caller.
//
//	myFunc() { 		<- returns this caller
//		func() {
//			CurrentCaller()
//		}()
//	}
func CurrentCaller() string {
	_, file, line, _ := runtime.Caller(2)
	return fmt.Sprintf(callerTmpl, immediateFilepath(file), line)
}

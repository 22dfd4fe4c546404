package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/beconnected/beconnected"
	"github.com/beconnected/beconnected/logger"
)

// LogRequest logs, once the request is handled, its method, requested URI,
// response status and how long it took, using the enclosed logger.Logger.
//
// The IP address and request ID stashed by InjectIPAddress and RequestID are included.
// Credentials in the query string are masked; cf. logger.LogContext.
//
// If logger.Logger is nil, NoopAdapter returns and this middleware does nothing.
func LogRequest(ls logger.Logger) Adapter {
	if ls == nil {
		return NoopAdapter
	}

	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &statusWriter{ResponseWriter: w}
			h.ServeHTTP(sw, r)

			data := map[string]any{
				"duration": time.Since(start).String(),
				"status":   sw.status(),
			}

			if ip, ok := r.Context().Value(beconnected.IpAddrKey).(string); ok {
				data["ip"] = ip
			}

			if id, ok := r.Context().Value(beconnected.RequestIDKey).(string); ok {
				data["requestID"] = id
			}

			msg := fmt.Sprintf("%s %s %d", r.Method, maskedURI(r), sw.status())
			ls.Info(msg, &logger.LogContext{Data: data})
		})
	}
}

// maskedURI renders the request URI with credentials masked.
func maskedURI(r *http.Request) string {
	u := *r.URL
	q := u.Query()
	for _, k := range []string{"password", "token"} {
		beconnected.Mask(q, k)
	}

	if len(q) > 0 {
		u.RawQuery = q.Encode()
	}

	return u.RequestURI()
}

// A statusWriter remembers the status code written through it.
type statusWriter struct {
	http.ResponseWriter
	code int
}

func (sw *statusWriter) WriteHeader(code int) {
	if sw.code == 0 {
		sw.code = code
	}

	sw.ResponseWriter.WriteHeader(code)
}

func (sw *statusWriter) Write(b []byte) (int, error) {
	if sw.code == 0 {
		sw.code = http.StatusOK
	}

	return sw.ResponseWriter.Write(b)
}

func (sw *statusWriter) status() int {
	if sw.code == 0 {
		return http.StatusOK
	}

	return sw.code
}

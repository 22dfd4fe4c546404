package middleware

import (
	"net/http"

	"github.com/beconnected/beconnected"
)

// hsts pins browsers to HTTPS for a year.
const hsts = "max-age=31536000; includeSubDomains"

// ForceHTTPS redirects HTTP requests to HTTPS unless env is a local environment.
// In production, HTTPS responses also carry a Strict-Transport-Security header.
//
// The "X-Forwarded-Proto" header decides whether HTTP was requested,
// since the web app runs behind a TLS terminating proxy.
func ForceHTTPS(env beconnected.Environment) Adapter {
	if env.IsLocal() {
		return NoopAdapter
	}

	return func(handler http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("X-Forwarded-Proto") == "https" {
				if env.IsProduction() {
					w.Header().Set("Strict-Transport-Security", hsts)
				}
				handler.ServeHTTP(w, r)
				return
			}

			u := *r.URL
			u.Scheme = "https"
			u.Host = r.Host

			http.Redirect(w, r, u.String(), http.StatusPermanentRedirect)
		})
	}
}

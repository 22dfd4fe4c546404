package middleware

import (
	"net/http"

	"github.com/beconnected/beconnected"
	sentryhttp "github.com/getsentry/sentry-go/http"
)

// ReportPanic recovers panics in handlers, reporting them to Sentry
// and responding with 500.
//
// In development, panics are left alone so they surface in the console.
func ReportPanic(env beconnected.Environment) Adapter {
	if env.IsDevelopment() {
		return NoopAdapter
	}

	sh := sentryhttp.New(sentryhttp.Options{
		Repanic:         false,
		WaitForDelivery: true,
	})

	return func(handler http.Handler) http.Handler {
		return sh.Handle(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					w.WriteHeader(http.StatusInternalServerError)
					panic(rec)
				}
			}()

			handler.ServeHTTP(w, r)
		}))
	}
}

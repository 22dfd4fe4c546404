/*
Package middleware defines what a middleware is in the web app and the set of middlewares it runs.

The available middlewares are:
  - CORS
  - CurrentUser
  - ForceHTTPS
  - Idempotent
  - InjectIPAddress
  - InjectSession
  - LogRequest
  - RateLimit
  - ReportPanic
  - RequestID
  - RequireAuthed
  - RequireUnauthed

Middlewares running on every request are chained in this order:

	adpts := []middleware.Adapter{
		middleware.ReportPanic(env),
		middleware.ForceHTTPS(env),
		middleware.RequestID(),
		middleware.InjectIPAddress(),
		middleware.LogRequest(log),
		middleware.CORS(baseURL),
		middleware.InjectSession(sessionStore),
		middleware.CurrentUser(responder, users.FindByID, users.Authenticate),
	}

RequireAuthed and RequireUnauthed are applied per route, since they depend on the route's entry.
*/
package middleware

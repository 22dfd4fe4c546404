/*
Package ranger initializes and manages the BeConnected web app with sane defaults.

# Ranger

The main entrypoint to package ranger is the [Ranger] type, constructed with [New].
[New] wires the route table, the auth guard, the session store, the user store
and the view handlers of package web behind the middlewares every request goes through.

[*Ranger.Guide] begins the web server.
By default, [*Ranger.Guide] listens on [DefaultPort] (:3000).
Stop that web server with [*Ranger.Cancel] or by sending a signal [*Ranger.Guide] listens for.

# Configuration

A developer configures the web app through environment variables
and by passing a [RangerOption] to [New].
Environment variables ought to be set in a file called ".env"
found at the same directory the application is executed from.

Here are the available environment variables.
  - BASE_URL: the base URL the application runs on; default: http://localhost:3000
  - BEHIND_PROXY: whether a proxy forwards requests, so that its X-Forwarded-For header names the client; default: false
  - CORS_ORIGIN: the origin allowed to make cross-origin requests; default: none
  - DATABASE_HOST: the host the database is running on; default: localhost
  - DATABASE_MAX_IDLE_CXNS: the number of idle connections kept open; default: 1
  - DATABASE_NAME: the name of the database
  - DATABASE_PASSWORD: the password for authenticating a connection to the database
  - DATABASE_PORT: the port the database is listening on; default: 5432
  - DATABASE_SSLMODE: the SSL mode of the connection; default: prefer
  - DATABASE_URL: the fully-qualified connection string for connecting to the database; replaces all other DATABASE_* env vars
  - DATABASE_USER: the user for authenticating a connection to the database
  - DATABASE_TEST_*: the same as DATABASE_*, used when ENVIRONMENT is TESTING
  - ENVIRONMENT: the environment the application is running in; cf. [beconnected.Environment]
  - GOOGLE_CLIENT_ID: the OAuth2 client ID for signing in with Google
  - GOOGLE_CLIENT_SECRET: the OAuth2 client secret for signing in with Google
  - JWT_SECRET: the key session tokens are signed with
  - LOG_LEVEL: the level at which to begin logging; default: INFO; cf. [logger.LogLevel]
  - PORT: the port the application should listen on; default: :3000
  - REDIS_URL: the Redis server sessions and idempotent responses are kept in; default: cookies and memory
  - REDIS_PASSWORD: the password for authenticating to Redis
  - SENTRY_DSN: the DSN errors are reported to Sentry with
  - SERVER_IDLE_TIMEOUT: the timeout, as understood by [time.ParseDuration], for idling between requests when using keep-alives; default: 120s
  - SERVER_READ_TIMEOUT: the timeout, as understood by [time.ParseDuration], for reading HTTP requests; default: 5s
  - SERVER_WRITE_TIMEOUT: the timeout, as understood by [time.ParseDuration], for writing HTTP responses; default: 5s
  - SESSION_AUTH_KEY: a hex-encoded key for authenticating cookies; cf. [encoding/hex]
  - SESSION_ENCRYPTION_KEY: a hex-encoded key for encrypting cookies; cf. [encoding/hex]
  - SESSION_MAX_AGE: the number of seconds a session lasts; default: 604800
  - TRUSTED_PROXIES: comma separated CIDR blocks or IP addresses of those proxies; default: the private ranges

In DEVELOPMENT, DEMO and TESTING, a missing database keeps users in memory,
and missing JWT_SECRET or SESSION_* keys are generated on start.
*/
package ranger

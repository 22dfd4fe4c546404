/*
Package logger provides logging functionality by defining the required behavior in [Logger]
and providing an implementation of it with [AppLogger].

# Overview

The Logger interface outputs messages at certain levels of importance.
An implementation of Logger may be initialized at a certain [LogLevel]
and only emit messages at or above that level of importance.
For example, if an [AppLogger] is initialized with [LogLevelWarn],
only [*AppLogger.Warn], [*AppLogger.Error], and [*AppLogger.Fatal] produce messages.

# AppLogger

Log messages emitted by [AppLogger] are composed of a timestamp, the log level,
the call site, the message and, optionally, a log context:

	2026/04/28 15:55:21 [WARN] web/login.go:43 'failed login' log_context: {"request":{"method":"POST","url":"/login"}}

The log context is a JSON-encoded [LogContext] carrying data inessential to the message proper.
Passwords and cookies never appear in it.

# SentryLogger

When constructed [WithSentry], [New] returns a [SentryLogger]
which additionally reports the [LogContext.Error] of warnings and worse to Sentry.
*/
package logger

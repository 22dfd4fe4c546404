package logger

import (
	"fmt"
	"net/http"
	"time"

	"github.com/beconnected/beconnected"
	"github.com/getsentry/sentry-go"
)

// A SentryLogger logs through an AppLogger
// and reports the error of a LogContext to Sentry for warnings and worse.
type SentryLogger struct {
	hub *sentry.Hub
	l   SkipLogger
}

// NewSentryLogger constructs a SentryLogger based off the provided AppLogger.
// The Sentry client built from opts also becomes the one of sentry.CurrentHub,
// so that panics recovered by sentryhttp are reported alike.
//
// If the client cannot be built, NewSentryLogger logs the failure and returns al.
func NewSentryLogger(al *AppLogger, opts sentry.ClientOptions) Logger {
	if opts.Environment == "" {
		opts.Environment = al.env
	}
	opts.IgnoreErrors = append(opts.IgnoreErrors, "write: broken pipe")

	client, err := sentry.NewClient(opts)
	if err != nil {
		al.Error(fmt.Sprintf("not reporting to Sentry: %s", err), nil)
		return al
	}

	sentry.CurrentHub().BindClient(client)

	return &SentryLogger{
		hub: sentry.NewHub(client, sentry.NewScope()),
		l:   al.AddSkip(1 + al.Skip()),
	}
}

// AddSkip replaces the current number of frames to scroll back when logging a message.
func (sl *SentryLogger) AddSkip(i int) SkipLogger {
	return &SentryLogger{hub: sl.hub, l: sl.l.AddSkip(i)}
}

// Flush waits up to timeout for queued reports to be sent.
func (sl *SentryLogger) Flush(timeout time.Duration) bool { return sl.hub.Flush(timeout) }

func (sl *SentryLogger) Debug(msg string, ctx *LogContext) { sl.l.Debug(msg, ctx) }

func (sl *SentryLogger) Info(msg string, ctx *LogContext) { sl.l.Info(msg, ctx) }

// Warn writes a warning log, reporting ctx.Error.
func (sl *SentryLogger) Warn(msg string, ctx *LogContext) {
	sl.l.Warn(msg, ctx)
	sl.report(LogLevelWarn, ctx)
}

// Error writes an error log, reporting ctx.Error.
func (sl *SentryLogger) Error(msg string, ctx *LogContext) {
	sl.l.Error(msg, ctx)
	sl.report(LogLevelError, ctx)
}

// Fatal writes a fatal log, reporting ctx.Error.
func (sl *SentryLogger) Fatal(msg string, ctx *LogContext) {
	sl.l.Fatal(msg, ctx)
	sl.report(LogLevelFatal, ctx)
}

func (sl *SentryLogger) LogLevel() LogLevel { return sl.l.LogLevel() }

func (sl *SentryLogger) Skip() int { return sl.l.Skip() }

// report captures ctx.Error at level, unless the logger filters level out.
// The user, request, request ID and data of ctx go along with it.
func (sl *SentryLogger) report(level LogLevel, ctx *LogContext) {
	if ctx == nil || ctx.Error == nil || sl.l.LogLevel() > level {
		return
	}

	sl.hub.WithScope(func(scope *sentry.Scope) {
		scope.SetLevel(sentryLevel(level))

		if ctx.User != nil {
			scope.SetUser(sentry.User{Email: ctx.User.GetEmail(), ID: fmt.Sprint(ctx.User.GetID())})
		}

		if ctx.Request != nil {
			scope.SetRequest(ctx.Request)
			if id := requestID(ctx.Request); id != "" {
				scope.SetTag("request_id", id)
			}
		}

		if ctx.Data != nil {
			scope.SetExtra("data", ctx.Data)
		}

		sl.hub.CaptureException(ctx.Error)
	})
}

func requestID(r *http.Request) string {
	id, _ := r.Context().Value(beconnected.RequestIDKey).(string)
	return id
}

func sentryLevel(level LogLevel) sentry.Level {
	switch level {
	case LogLevelFatal:
		return sentry.LevelFatal
	case LogLevelError:
		return sentry.LevelError
	default:
		return sentry.LevelWarning
	}
}

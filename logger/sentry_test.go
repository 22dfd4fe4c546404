package logger_test

import (
	"bytes"
	"context"
	"errors"
	"net/http/httptest"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/beconnected/beconnected"
	"github.com/beconnected/beconnected/logger"
	"github.com/getsentry/sentry-go"
	"github.com/stretchr/testify/require"
)

var sentryCallerRegexp = regexp.MustCompile(`logger/sentry_test\.go:\d+`)

// eventRecorder is a sentry.Transport keeping the events sent through it.
type eventRecorder struct {
	mu     sync.Mutex
	events []*sentry.Event
}

func (er *eventRecorder) Configure(sentry.ClientOptions) {}

func (er *eventRecorder) Flush(time.Duration) bool { return true }

func (er *eventRecorder) SendEvent(e *sentry.Event) {
	er.mu.Lock()
	defer er.mu.Unlock()
	er.events = append(er.events, e)
}

func (er *eventRecorder) sent() []*sentry.Event {
	er.mu.Lock()
	defer er.mu.Unlock()
	return append([]*sentry.Event(nil), er.events...)
}

func newSentryLogger(t *testing.T, b *bytes.Buffer, level logger.LogLevel) (logger.Logger, *eventRecorder) {
	t.Helper()

	al, ok := logger.New(logger.WithLogger(newTestLogger(b)), logger.WithLevel(level), logger.WithEnv("TESTING")).(*logger.AppLogger)
	require.True(t, ok)

	rec := new(eventRecorder)
	l := logger.NewSentryLogger(al, sentry.ClientOptions{Transport: rec})
	_, ok = l.(*logger.SentryLogger)
	require.True(t, ok)

	return l, rec
}

func TestSentryLoggerReports(t *testing.T) {
	// Arrange
	b := new(bytes.Buffer)
	l, rec := newSentryLogger(t, b, logger.LogLevelInfo)

	r := httptest.NewRequest("POST", "/login", nil)
	r = r.WithContext(context.WithValue(r.Context(), beconnected.RequestIDKey, "req-1"))

	// Act
	l.Error("login failed", &logger.LogContext{Error: errors.New("db down"), Request: r})

	// Assert
	require.Regexp(t, sentryCallerRegexp, b.String())

	events := rec.sent()
	require.Len(t, events, 1)
	require.Equal(t, sentry.LevelError, events[0].Level)
	require.Equal(t, "req-1", events[0].Tags["request_id"])
	require.Equal(t, "TESTING", events[0].Environment)
	require.NotEmpty(t, events[0].Exception)
	require.Equal(t, "db down", events[0].Exception[0].Value)
}

func TestSentryLoggerSkips(t *testing.T) {
	for _, tc := range []struct {
		name  string
		level logger.LogLevel
		log   func(l logger.Logger)
	}{
		{"info", logger.LogLevelDebug, func(l logger.Logger) { l.Info("msg", &logger.LogContext{Error: errors.New("boom")}) }},
		{"no-error", logger.LogLevelDebug, func(l logger.Logger) { l.Warn("msg", &logger.LogContext{}) }},
		{"nil-context", logger.LogLevelDebug, func(l logger.Logger) { l.Error("msg", nil) }},
		{"filtered", logger.LogLevelFatal, func(l logger.Logger) { l.Error("msg", &logger.LogContext{Error: errors.New("boom")}) }},
	} {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			l, rec := newSentryLogger(t, new(bytes.Buffer), tc.level)

			// Act
			tc.log(l)

			// Assert
			require.Empty(t, rec.sent())
		})
	}
}

package logger_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/beconnected/beconnected"
	"github.com/beconnected/beconnected/logger"
	"github.com/stretchr/testify/require"
)

func TestLogContextMarshalText(t *testing.T) {
	// Arrange
	lc := logger.LogContext{}

	// Act
	b, err := lc.MarshalText()

	// Assert
	require.Nil(t, err)
	require.Equal(t, []byte("{}"), b)

	// Arrange
	lc = logger.LogContext{Data: map[string]any{"test": "data"}}

	// Act
	b, err = lc.MarshalText()

	// Assert
	require.Nil(t, err)
	require.Equal(t, `{"data":{"test":"data"}}`, string(b))

	// Arrange
	lc = logger.LogContext{Error: errors.New("test")}

	// Act
	b, err = lc.MarshalText()

	// Assert
	require.Nil(t, err)
	require.Equal(t, `{"error":"test"}`, string(b))

	// Arrange
	lc = logger.LogContext{User: testUser{}}

	// Act
	b, err = lc.MarshalText()

	// Assert
	require.Nil(t, err)
	require.Equal(t, `{"user":{"email":"alice@example.com","id":1}}`, string(b))
}

func TestLogContextMarshalTextRequest(t *testing.T) {
	// Arrange
	expected := map[string]any{
		"request": map[string]any{
			"method": http.MethodGet,
			"url":    "https://example.com/feed",
			"header": map[string]any{
				"Accept": []any{"text/html"},
			},
		},
	}

	r := httptest.NewRequest(http.MethodGet, "https://example.com/feed", nil)
	r.Header.Set("Accept", "text/html")
	r.Header.Set("Cookie", "beconnected=secret")
	lc := logger.LogContext{Request: r}

	// Act
	b, err := lc.MarshalText()

	// Assert
	require.Nil(t, err)
	m := make(map[string]any)
	require.Nil(t, json.Unmarshal(b, &m))
	require.Equal(t, expected, m)

	// Arrange
	expected = map[string]any{
		"request": map[string]any{
			"method": http.MethodPost,
			"url":    "https://example.com/login?password=" + beconnected.LogMaskVal,
			"header": map[string]any{
				"Content-Type": []any{"application/x-www-form-urlencoded"},
			},
			"form": map[string]any{
				"email":    []any{"alice@example.com"},
				"password": []any{beconnected.LogMaskVal},
			},
		},
	}

	form := url.Values{}
	form.Set("email", "alice@example.com")
	form.Set("password", "hunter2")

	r = httptest.NewRequest(http.MethodPost, "https://example.com/login?password=hunter2", strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	require.Nil(t, r.ParseForm())

	lc = logger.LogContext{Request: r}

	// Act
	b, err = lc.MarshalText()

	// Assert
	require.Nil(t, err)
	m = make(map[string]any)
	require.Nil(t, json.Unmarshal(b, &m))
	require.Equal(t, expected, m)
	require.Equal(t, "hunter2", r.PostForm.Get("password"))
	require.NotContains(t, lc.String(), "hunter2")
}

type testUser struct{}

func (u testUser) GetID() uint      { return 1 }
func (u testUser) GetEmail() string { return "alice@example.com" }

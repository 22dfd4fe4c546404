package req_test

import (
	"encoding/json"
	"testing"

	"github.com/beconnected/beconnected"
	"github.com/beconnected/beconnected/http/req"
	"github.com/stretchr/testify/require"
)

func TestValidationErrorsMasksPasswords(t *testing.T) {
	// Arrange
	verrs := req.ValidationErrors{
		{Field: "email", Got: "alice", Rule: "email; string"},
		{Field: "newPassword", Got: "hunter2", Rule: "min=8; string"},
	}

	// Act
	msg := verrs.Error()
	b, err := json.Marshal(verrs)

	// Assert
	require.ErrorIs(t, verrs, beconnected.ErrNotValid)
	require.Contains(t, msg, `field="email" rule="email; string" got="alice"`)
	require.NotContains(t, msg, "hunter2")
	require.NoError(t, err)
	require.NotContains(t, string(b), "hunter2")
	require.Contains(t, string(b), beconnected.LogMaskVal)
}

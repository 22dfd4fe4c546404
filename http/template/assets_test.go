package template_test

import (
	"testing"

	"github.com/beconnected/beconnected"
	"github.com/beconnected/beconnected/http/template"
	tt "github.com/beconnected/beconnected/http/template/templatetest"
	"github.com/stretchr/testify/require"
)

func TestAssetURI(t *testing.T) {
	filesys := tt.NewMockFS(tt.NewMockFile("static/app-4f9a1c.css", nil))

	tcs := []struct {
		name     string
		env      beconnected.Environment
		asset    string
		expected string
	}{
		{"testing", beconnected.Testing, "app.css", ""},
		{"development", beconnected.Development, "app.css", "/static/app.css"},
		{"fingerprinted", beconnected.Production, "app.css", "/static/app-4f9a1c.css"},
		{"missing", beconnected.Production, "app.js", "/static/app.js"},
		{"bad-pattern", beconnected.Production, "[.css", "/static/[.css"},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			name, fn := template.AssetURI(tc.env, filesys)

			// Act
			actual := fn(tc.asset)

			// Assert
			require.Equal(t, "asset", name)
			require.Equal(t, tc.expected, actual)
		})
	}
}

package template_test

import (
	"bytes"
	html "html/template"
	"testing"

	"github.com/beconnected/beconnected/http/template"
	tt "github.com/beconnected/beconnected/http/template/templatetest"
	"github.com/stretchr/testify/require"
)

type testFn func(*testing.T, *html.Template, error)

func TestParse(t *testing.T) {
	stub := []byte("<!DOCTYPE html>\n<html></html>")
	tcs := []struct {
		name   string
		parser template.Parser
		fps    []string
		assert testFn
	}{
		{
			name:   "Zero-Value",
			parser: tt.NewParser(),
			fps:    []string{},
			assert: func(t *testing.T, tmpl *html.Template, err error) {
				require.ErrorIs(t, err, template.ErrNoFiles)
				require.Nil(t, tmpl)
			},
		},
		{
			name:   "Empty-String",
			parser: tt.NewParser(tt.NewMockFile("", nil)),
			fps:    []string{""},
			assert: func(t *testing.T, tmpl *html.Template, err error) {
				require.ErrorIs(t, err, template.ErrNoFiles)
				require.Nil(t, tmpl)
			},
		},
		{
			name:   "No-File",
			parser: tt.NewParser(),
			fps:    []string{"example.tmpl"},
			assert: func(t *testing.T, tmpl *html.Template, err error) {
				require.NotNil(t, err)
				require.Nil(t, tmpl)
			},
		},
		{
			name:   "Not-Empty-File",
			parser: tt.NewParser(tt.NewMockFile("example.tmpl", stub)),
			fps:    []string{"example.tmpl"},
			assert: func(t *testing.T, tmpl *html.Template, err error) {
				require.Nil(t, err)
				require.Equal(t, "example.tmpl", tmpl.Name())

				b := new(bytes.Buffer)
				require.Nil(t, tmpl.Execute(b, nil))
				require.Equal(t, stub, b.Bytes())
			},
		},
		{
			name: "Many-Files",
			parser: tt.NewParser(
				tt.NewMockFile("layout/authed.tmpl", []byte(`<html>{{ template "content" . }}</html>`)),
				tt.NewMockFile("feed.tmpl", []byte(`{{ define "content" }}<p>{{ .Data }}</p>{{ end }}`)),
			),
			fps: []string{"", "layout/authed.tmpl", "feed.tmpl"},
			assert: func(t *testing.T, tmpl *html.Template, err error) {
				require.Nil(t, err)
				require.Equal(t, "authed.tmpl", tmpl.Name())

				b := new(bytes.Buffer)
				require.Nil(t, tmpl.Execute(b, map[string]any{"Data": "sup"}))
				require.Equal(t, "<html><p>sup</p></html>", b.String())
			},
		},
		{
			name: "Fns",
			parser: template.NewParser(
				template.WithFS(tt.NewMockFS(
					tt.NewMockFile("example.tmpl", []byte(`<html>{{ test }} {{ second "cool" }}</html>`)),
				)),
				template.WithFn("test", func() string { return "test" }),
				template.WithFn("second", func(s string) string { return s }),
				template.WithFn("", func() string { return "ignored" }),
			),
			fps: []string{"example.tmpl"},
			assert: func(t *testing.T, tmpl *html.Template, err error) {
				require.Nil(t, err)

				b := new(bytes.Buffer)
				require.Nil(t, tmpl.Execute(b, nil))
				require.Equal(t, "<html>test cool</html>", b.String())
			},
		},
		{
			name:   "Embedded-Error-Template",
			parser: tt.NewParser(),
			fps:    []string{template.ErrTmpl},
			assert: func(t *testing.T, tmpl *html.Template, err error) {
				require.Nil(t, err)

				b := new(bytes.Buffer)
				require.Nil(t, tmpl.Execute(b, map[string]any{"Contact": "Email us."}))
				require.Contains(t, b.String(), "Email us.")
			},
		},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			// Act
			tmpl, err := tc.parser.Parse(tc.fps...)

			// Assert
			tc.assert(t, tmpl, err)
		})
	}
}

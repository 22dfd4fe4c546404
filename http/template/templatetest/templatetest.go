// Package templatetest builds in-memory template files for tests, so none need a testdata/ directory.
package templatetest

import (
	"io/fs"
	"testing/fstest"

	"github.com/beconnected/beconnected/http/template"
)

// A File is a template, or asset, at Name holding Data.
type File struct {
	Name string
	Data []byte
}

// NewMockFile names data as a file of a NewMockFS.
func NewMockFile(name string, data []byte) File { return File{Name: name, Data: data} }

// NewMockFS holds files at their full paths. Files without a name are left out.
func NewMockFS(files ...File) fs.FS {
	m := make(fstest.MapFS, len(files))
	for _, f := range files {
		if f.Name != "" {
			m[f.Name] = &fstest.MapFile{Data: f.Data, Mode: 0o444}
		}
	}

	return m
}

// NewParser constructs a *template.Parse reading files.
func NewParser(files ...File) *template.Parse {
	return template.NewParser(template.WithFS(NewMockFS(files...)))
}

package template

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"github.com/beconnected/beconnected"
)

// AssetsBase is the directory static assets are served from.
const AssetsBase = "static"

// AssetURI encloses the environment and filesystem so when called executing a template,
// emits valid URIs for static assets.
// It returns "asset" as the name of the function for convenient passing to WithFn.
//
// Outside of development, a fingerprinted copy of the asset is preferred,
// e.g., "app.css" resolves to "/static/app-4f9a1c.css" if filesys holds it.
func AssetURI(env beconnected.Environment, filesys fs.FS) (string, func(string) string) {
	return "asset", func(assetPath string) string {
		plain := fmt.Sprintf("/%s/%s", AssetsBase, assetPath)
		if env.IsTesting() {
			return ""
		}

		if env.IsDevelopment() || filesys == nil {
			return plain
		}

		ext := path.Ext(assetPath)
		glob := fmt.Sprintf("%s/%s-*%s", AssetsBase, strings.TrimSuffix(assetPath, ext), ext)
		matches, err := fs.Glob(filesys, glob)
		if errors.Is(err, path.ErrBadPattern) || len(matches) == 0 {
			return plain
		}

		return "/" + matches[0]
	}
}

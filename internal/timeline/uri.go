package timeline

import (
	"net/url"
	"path/filepath"
)

// FileURI converts a filesystem path to a file:// URI.
func FileURI(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(path)}
	return u.String()
}

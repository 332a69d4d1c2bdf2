package pagemill

import (
	"os"
	"path/filepath"
)

// ResolveFilePath maps a URL-shaped path to a file path using the directory
// index convention: <urlPath>.<ext> if such a file exists, otherwise
// <urlPath>/index.<ext>. The fallback is returned whether or not it exists;
// the caller handles its absence.
func ResolveFilePath(urlPath, ext string) string {
	p := urlPath + "." + ext
	if _, err := os.Stat(p); err == nil {
		return p
	}
	return filepath.Join(urlPath, "index."+ext)
}

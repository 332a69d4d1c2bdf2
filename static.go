package pagemill

import (
	"net/http"
	"path"
)

// StaticHandler serves single files out of an http.FileSystem. Requests for
// directories answer 404 instead of a listing, so a content tree can be
// mounted without exposing its layout.
type StaticHandler struct {
	fs http.FileSystem
}

func NewStaticHandler(fs http.FileSystem) StaticHandler {
	return StaticHandler{fs: fs}
}

// Open satisfies http.FileSystem. The name is rooted and cleaned first, so
// ".." segments cannot climb out of the tree.
func (sh StaticHandler) Open(name string) (http.File, error) {
	return sh.fs.Open(path.Clean("/" + name))
}

func (sh StaticHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f, err := sh.Open(r.URL.Path)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	defer f.Close()

	stat, err := f.Stat()
	switch {
	case err != nil:
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	case stat.IsDir():
		http.NotFound(w, r)
	default:
		http.ServeContent(w, r, stat.Name(), stat.ModTime(), f)
	}
}

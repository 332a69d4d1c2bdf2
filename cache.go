package pagemill

import (
	"context"
	"io/fs"
	"log"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"golang.org/x/sync/singleflight"
)

// Source is the read capability of a content source. Implementations report
// missing content and I/O failures through the returned error.
type Source interface {
	ReadFile(ctx context.Context, name string) ([]byte, error)
}

// Store is a write-through file cache over a Source. Entries live at
// <dir>/<name> and are never invalidated; once written they are assumed to
// match what the source returns for the same name.
type Store struct {
	dir    string
	logger *log.Logger
	group  singleflight.Group
}

func NewStore(dir string, logger *log.Logger) *Store {
	if logger == nil {
		logger = log.Default()
	}
	return &Store{dir: dir, logger: logger}
}

// Resolve returns the content stored under name, reading the cache first and
// falling back to src on a miss. Fetched content is persisted before it is
// returned. Only a missing cache file counts as a miss; any other local read
// failure is returned to the caller. Concurrent misses for the same name share
// a single fetch.
func (s *Store) Resolve(ctx context.Context, name string, src Source) ([]byte, error) {
	local := filepath.FromSlash(name)
	if !filepath.IsLocal(local) {
		return nil, errors.Errorf("identifier escapes cache dir: %q", name)
	}
	local = filepath.Join(s.dir, local)

	b, err := os.ReadFile(local)
	if err == nil {
		return b, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, errors.Wrapf(err, "cache read: %q", name)
	}
	s.logger.Printf("cache miss: %s", name)

	v, err, _ := s.group.Do(name, func() (interface{}, error) {
		data, err := src.ReadFile(ctx, name)
		if err != nil {
			return nil, &FetchError{Name: name, Err: err}
		}
		if err := os.MkdirAll(filepath.Dir(local), 0o755); err != nil {
			return nil, &PersistError{Name: name, Err: err}
		}
		if err := os.WriteFile(local, data, 0o644); err != nil {
			return nil, &PersistError{Name: name, Err: err}
		}
		return data, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

package source

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// Dir serves content from a local directory tree.
type Dir struct {
	Root string
}

func (d Dir) ReadFile(ctx context.Context, name string) ([]byte, error) {
	b, err := os.ReadFile(filepath.Join(d.Root, filepath.FromSlash(name)))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, errors.Wrapf(ErrNotFound, "%s", name)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "read %q", name)
	}
	return b, nil
}

package source

import (
	"context"
	"io"
	"strings"

	g "github.com/gogits/git"
	"github.com/lemmi/ghfs"
	"github.com/pkg/errors"
)

// Git reads content from a branch of a git repository without a working
// checkout. The branch tip is resolved on every read, so pushes become
// visible without restarting the host.
type Git struct {
	Path   string
	Branch string
}

func (s Git) ReadFile(ctx context.Context, name string) ([]byte, error) {
	repo, err := g.OpenRepository(s.Path)
	if err != nil {
		return nil, errors.Wrapf(err, "open repository %q", s.Path)
	}
	branch := s.Branch
	if branch == "" {
		branch = "master"
	}
	commit, err := repo.GetCommitOfBranch(branch)
	if err != nil {
		return nil, errors.Wrapf(err, "branch %q", branch)
	}
	f, err := ghfs.FromCommit(commit).Open("/" + strings.TrimPrefix(name, "/"))
	if err != nil {
		return nil, errors.Wrapf(ErrNotFound, "%s", name)
	}
	defer f.Close()
	return io.ReadAll(f)
}

// Package source provides content sources for pagemill's cache-aside
// resolver: a local directory, a remote HTTP store and a git branch.
package source

import "github.com/pkg/errors"

// ErrNotFound reports that the source has no content under the given name.
var ErrNotFound = errors.New("source: not found")

package source

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// HTTP fetches content from a remote store via GET <base>/<name>.
type HTTP struct {
	base   string
	client *http.Client
}

func NewHTTP(base string) *HTTP {
	return &HTTP{
		base: strings.TrimSuffix(base, "/"),
		client: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

func (h *HTTP) ReadFile(ctx context.Context, name string) ([]byte, error) {
	url := h.base + "/" + strings.TrimPrefix(name, "/")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrap(err, "create request")
	}
	req.Header.Set("User-Agent", "pagemill")

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "fetch %q", url)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, errors.Wrapf(ErrNotFound, "%s", name)
	case resp.StatusCode != http.StatusOK:
		return nil, errors.Errorf("fetch %q: unexpected status code: %d", url, resp.StatusCode)
	}

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrapf(err, "read %q", url)
	}
	return b, nil
}

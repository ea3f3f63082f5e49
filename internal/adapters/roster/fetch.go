package roster

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/gregjones/httpcache"
)

// Payload formats.
type format int

const (
	formatJSON format = iota
	formatYAML
)

// maxPayload bounds a roster download.
const maxPayload = 32 << 20

// newCachedClient returns a client that serves repeated fetches from memory
// for ttl, regardless of the origin's cache headers.
func newCachedClient(rt http.RoundTripper, ttl time.Duration) *http.Client {
	ct := httpcache.NewMemoryCacheTransport()
	ct.Transport = &headerOverride{
		wrapped: rt,
		maxAge:  int(ttl / time.Second),
	}
	return &http.Client{Transport: ct, Timeout: 30 * time.Second}
}

// headerOverride rewrites origin caching headers to enforce a client TTL.
type headerOverride struct {
	wrapped http.RoundTripper
	maxAge  int
}

func (t *headerOverride) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.wrapped.RoundTrip(req.Clone(req.Context()))
	if err != nil {
		return nil, err
	}
	resp.Header.Del("Pragma")
	resp.Header.Del("Expires")
	resp.Header.Set("Cache-Control", fmt.Sprintf("public, max-age=%d", t.maxAge))
	return resp, nil
}

func isRemote(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}

func formatOf(name string) (format, error) {
	switch strings.ToLower(path.Ext(name)) {
	case ".json":
		return formatJSON, nil
	case ".yaml", ".yml":
		return formatYAML, nil
	}
	return 0, fmt.Errorf("%w: %q has no .json, .yaml or .yml extension", ErrUnsupportedSource, name)
}

func readFile(source string) ([]byte, format, error) {
	f, err := formatOf(source)
	if err != nil {
		return nil, 0, err
	}
	data, err := os.ReadFile(filepath.Clean(source))
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %w", ErrFetch, err)
	}
	return data, f, nil
}

func (l *Loader) fetch(ctx context.Context, source string) ([]byte, format, error) {
	u, err := url.Parse(source)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %w", ErrUnsupportedSource, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %w", ErrFetch, err)
	}
	req.Header.Set("Accept", "application/json, application/yaml;q=0.9")

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %w", ErrFetch, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, 0, fmt.Errorf("%w: %s returned %s", ErrFetch, source, resp.Status)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxPayload))
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %w", ErrFetch, err)
	}

	ct := resp.Header.Get("Content-Type")
	switch {
	case strings.Contains(ct, "yaml"):
		return data, formatYAML, nil
	case strings.Contains(ct, "json"):
		return data, formatJSON, nil
	}
	if byExt, err := formatOf(u.Path); err == nil {
		return data, byExt, nil
	}
	return data, formatJSON, nil
}

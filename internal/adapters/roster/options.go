package roster

import (
	"net/http"
	"time"

	"github.com/okian/legend/pkg/logger"
)

// Option configures a Loader.
type Option func(*Loader)

// WithLogger sets the logger used to report skipped records.
func WithLogger(l logger.Logger) Option {
	return func(ld *Loader) {
		if l != nil {
			ld.log = l
		}
	}
}

// WithCacheTTL sets how long fetched rosters are served from the HTTP cache.
func WithCacheTTL(ttl time.Duration) Option {
	return func(ld *Loader) {
		if ttl > 0 {
			ld.cacheTTL = ttl
		}
	}
}

// WithHTTPTransport sets the transport underneath the cache.
func WithHTTPTransport(rt http.RoundTripper) Option {
	return func(ld *Loader) {
		if rt != nil {
			ld.transport = rt
		}
	}
}

package repository

import "time"

type settings struct {
	ttl    time.Duration
	prefix string
	now    func() time.Time
}

// Option applies a configuration option to a Store.
type Option func(*settings)

// WithTTL expires sessions that have not been saved for ttl. Zero disables expiry.
func WithTTL(ttl time.Duration) Option {
	return func(s *settings) {
		if ttl >= 0 {
			s.ttl = ttl
		}
	}
}

// WithPrefix sets the key prefix used by the Redis store.
func WithPrefix(prefix string) Option {
	return func(s *settings) {
		if prefix != "" {
			s.prefix = prefix
		}
	}
}

// WithClock overrides time.Now for expiry bookkeeping.
func WithClock(now func() time.Time) Option {
	return func(s *settings) {
		if now != nil {
			s.now = now
		}
	}
}

func newSettings(opts []Option) settings {
	s := settings{prefix: "legend:session:", now: time.Now}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

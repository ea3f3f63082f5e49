package service

import (
	"time"

	"github.com/okian/legend/internal/adapters/repository"
	"github.com/okian/legend/internal/domain/model"
	"github.com/okian/legend/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithRosterSource sets the file path or URL the population is loaded from.
func WithRosterSource(source string) Option {
	return func(s *Service) {
		if source != "" {
			s.rosterSource = source
		}
	}
}

// WithRosterCacheTTL sets how long a fetched roster is reused.
func WithRosterCacheTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.rosterCacheTTL = ttl
		}
	}
}

// WithPopulation supplies the players directly instead of loading a roster.
func WithPopulation(players []model.Player) Option {
	return func(s *Service) {
		s.population = players
	}
}

// WithExplicitListThreshold sets the candidate count at or below which names are listed.
func WithExplicitListThreshold(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.listThreshold = n
		}
	}
}

// WithStore injects a session store instead of building one from settings.
func WithStore(st repository.Store) Option {
	return func(s *Service) {
		if st != nil {
			s.store = st
		}
	}
}

// WithRedis selects the Redis session store.
func WithRedis(addr, password string, db int, prefix string) Option {
	return func(s *Service) {
		s.redis = &redisSettings{addr: addr, password: password, db: db, prefix: prefix}
	}
}

// WithSessionTTL expires idle sessions. Zero keeps them until deleted.
func WithSessionTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl >= 0 {
			s.sessionTTL = ttl
		}
	}
}

// WithQueueSize sets the maximum size of the outcome queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithWorkerCount sets the number of outcome workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithDedupeSize sets how many answer idempotency keys are remembered.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithMaxTopLimit caps the most-guessed ranking size.
func WithMaxTopLimit(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxTopLimit = n
		}
	}
}

// WithClock overrides the time source for session timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator overrides session id generation.
func WithIDGenerator(gen func() string) Option {
	return func(s *Service) {
		if gen != nil {
			s.newID = gen
		}
	}
}

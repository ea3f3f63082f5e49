// Package service wires the question engine, session store and outcome
// pipeline behind the operations the HTTP API calls.
package service

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/legend/internal/adapters/mq/queue"
	"github.com/okian/legend/internal/adapters/mq/worker"
	"github.com/okian/legend/internal/adapters/repository"
	"github.com/okian/legend/internal/adapters/roster"
	"github.com/okian/legend/internal/domain/dedupe"
	"github.com/okian/legend/internal/domain/engine"
	"github.com/okian/legend/internal/domain/game"
	"github.com/okian/legend/internal/domain/model"
	"github.com/okian/legend/internal/domain/tally"
	"github.com/okian/legend/internal/domain/types"
	"github.com/okian/legend/pkg/logger"
	"github.com/okian/legend/pkg/metrics"
)

// lockStripes bounds the number of session mutexes.
const lockStripes = 64

type redisSettings struct {
	addr     string
	password string
	db       int
	prefix   string
}

// Service hosts many concurrent games. Operations on one session are
// serialised; different sessions proceed in parallel.
type Service struct {
	mu sync.RWMutex

	// Configuration
	rosterSource   string
	rosterCacheTTL time.Duration
	listThreshold  int
	redis          *redisSettings
	sessionTTL     time.Duration
	queueSize      int
	workerCount    int
	dedupeSize     int
	maxTopLimit    int
	now            func() time.Time
	newID          func() string

	// Core components
	population []model.Player
	engine     *engine.Engine
	controller *game.Controller
	store      repository.Store
	ownsStore  bool
	deduper    dedupe.Deduper
	outcomes   *queue.InMemoryQueue
	pool       *worker.Pool
	tally      *tally.Tally

	// State
	started bool
	cancel  context.CancelFunc
	locks   [lockStripes]sync.Mutex

	logger logger.Logger
}

// New constructs a Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		rosterSource:   "data/players.json",
		rosterCacheTTL: time.Hour,
		listThreshold:  5,
		sessionTTL:     time.Hour,
		queueSize:      1024,
		workerCount:    4,
		dedupeSize:     50_000,
		maxTopLimit:    100,
		now:            time.Now,
		newID:          uuid.NewString,
		logger:         logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start loads the roster and starts the store and outcome workers.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	s.logger.Info(ctx, "starting game service...")

	if s.population == nil {
		loader := roster.New(s.rosterSource,
			roster.WithLogger(s.logger.Named("roster")),
			roster.WithCacheTTL(s.rosterCacheTTL),
		)
		players, err := loader.Load(ctx)
		if err != nil {
			return fmt.Errorf("load roster: %w", err)
		}
		s.population = players
	}
	for _, c := range []model.Conference{model.East, model.West} {
		metrics.UpdateRosterSize(string(c), len(model.FilterConference(s.population, c)))
	}

	if s.store == nil {
		st, err := s.buildStore(ctx)
		if err != nil {
			return err
		}
		s.store = st
		s.ownsStore = true
	}

	s.engine = engine.New(engine.WithExplicitListThreshold(s.listThreshold))
	s.controller = game.NewController(s.engine, game.WithClock(s.now))
	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	s.tally = tally.New()
	s.outcomes = queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))
	s.pool = worker.NewPool(s.outcomes, s.tally,
		worker.WithWorkers(s.workerCount),
		worker.WithLogger(s.logger.Named("outcomes")),
	)

	// Workers outlive request contexts; Stop ends them.
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel
	s.pool.Start(runCtx)

	s.started = true
	s.logger.Info(ctx, "game service started",
		logger.Int("players", len(s.population)),
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("explicitListThreshold", s.listThreshold),
	)
	return nil
}

func (s *Service) buildStore(ctx context.Context) (repository.Store, error) {
	if s.redis == nil {
		s.logger.Info(ctx, "using in-memory session store")
		return repository.NewMemoryStore(
			repository.WithTTL(s.sessionTTL),
			repository.WithClock(s.now),
		), nil
	}

	rs := repository.NewRedisStore(s.redis.addr, s.redis.password, s.redis.db,
		repository.WithTTL(s.sessionTTL),
		repository.WithPrefix(s.redis.prefix),
		repository.WithClock(s.now),
	)
	if err := rs.Ping(ctx); err != nil {
		_ = rs.Close()
		return nil, fmt.Errorf("session store: %w", err)
	}
	s.logger.Info(ctx, "using redis session store", logger.String("addr", s.redis.addr))
	return rs, nil
}

// Stop drains queued outcomes and releases the store. ctx bounds the drain.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}
	s.logger.Info(ctx, "stopping game service...")

	err := s.pool.Shutdown(ctx)
	s.cancel()
	if s.ownsStore {
		err = errors.Join(err, s.store.Close())
		s.store = nil
		s.ownsStore = false
	}

	s.started = false
	s.logger.Info(ctx, "game service stopped")
	return err
}

func (s *Service) ready() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return ErrNotStarted
	}
	return nil
}

func (s *Service) lockFor(id string) *sync.Mutex {
	h := fnv.New32a()
	_, _ = h.Write([]byte(id))
	return &s.locks[h.Sum32()%lockStripes]
}

func (s *Service) load(ctx context.Context, id string) (*game.Session, error) {
	sess, err := s.store.Load(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w %q: %w", ErrUnknownGame, id, err)
		}
		metrics.RecordErrorByComponent("service", "load")
		return nil, err
	}
	return sess, nil
}

func (s *Service) save(ctx context.Context, sess *game.Session) error {
	if err := s.store.Save(ctx, sess); err != nil {
		metrics.RecordErrorByComponent("service", "save")
		return err
	}
	return nil
}

// observe records metrics for the session's new state and publishes the
// outcome of a game that just finished.
func (s *Service) observe(ctx context.Context, sess *game.Session) {
	metrics.RecordCandidatesRemaining(sess.Remaining())
	switch {
	case sess.Finished():
		metrics.RecordGameFinished(string(sess.Outcome))
		s.publish(ctx, sess.OutcomeRecord())
	case sess.Active != nil && !sess.AwaitingChoice:
		metrics.RecordQuestionAsked(string(sess.Active.Kind))
	}
}

func (s *Service) publish(ctx context.Context, o model.Outcome) {
	if err := s.outcomes.Enqueue(context.WithoutCancel(ctx), o); err != nil {
		s.logger.Warn(ctx, "dropping game outcome", logger.String("session", o.SessionID), logger.Error(err))
	}
}

func sinceMs(start time.Time) float64 {
	return float64(time.Since(start).Microseconds()) / 1000
}

// NewGame starts a game for conference and asks the first question.
func (s *Service) NewGame(ctx context.Context, conference model.Conference) (*game.Session, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	sess := game.NewSession(s.newID(), s.now())
	start := time.Now()
	if err := s.controller.Start(sess, conference, s.population); err != nil {
		return nil, err
	}
	metrics.RecordSelectionLatency(sinceMs(start))
	metrics.RecordGameStarted(string(conference))

	if err := s.save(ctx, sess); err != nil {
		return nil, fmt.Errorf("save new game: %w", err)
	}
	s.observe(ctx, sess)
	s.logger.Debug(ctx, "game started",
		logger.String("session", sess.ID),
		logger.String("conference", string(conference)),
		logger.Int("candidates", sess.Remaining()),
	)
	return sess, nil
}

// Game returns the current state of a session.
func (s *Service) Game(ctx context.Context, id string) (*game.Session, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	return s.load(ctx, id)
}

// Answer applies in to the session's active question. The boolean result
// reports a replayed idempotency key, in which case nothing was applied.
func (s *Service) Answer(ctx context.Context, id string, in types.AnswerInput) (*game.Session, bool, error) {
	if err := s.ready(); err != nil {
		return nil, false, err
	}
	mu := s.lockFor(id)
	mu.Lock()
	defer mu.Unlock()

	var key string
	if in.IdempotencyKey != "" {
		key = id + "/" + in.IdempotencyKey
		if s.deduper.SeenAndRecord(ctx, key) {
			metrics.RecordDuplicateAnswer()
			sess, err := s.load(ctx, id)
			return sess, true, err
		}
	}
	forget := func() {
		if key != "" {
			s.deduper.Unrecord(ctx, key)
		}
	}

	sess, err := s.load(ctx, id)
	if err != nil {
		forget()
		return nil, false, err
	}
	if in.Round != nil && *in.Round != sess.QuestionsAsked {
		forget()
		return nil, false, fmt.Errorf("%w: got round %d, session is at %d", ErrStaleRound, *in.Round, sess.QuestionsAsked)
	}

	start := time.Now()
	if err := s.controller.Answer(sess, in.Answer); err != nil {
		forget()
		return nil, false, err
	}
	metrics.RecordSelectionLatency(sinceMs(start))

	if err := s.save(ctx, sess); err != nil {
		forget()
		return nil, false, fmt.Errorf("save answer: %w", err)
	}
	s.observe(ctx, sess)
	return sess, false, nil
}

// Choose resolves a session waiting for the player to pick a listed name.
func (s *Service) Choose(ctx context.Context, id, name string) (*game.Session, error) {
	return s.mutate(ctx, id, func(sess *game.Session) error {
		return s.controller.Choose(sess, name)
	})
}

// Begin starts a new round on a session that was reset to the intro state.
func (s *Service) Begin(ctx context.Context, id string, conference model.Conference) (*game.Session, error) {
	return s.mutate(ctx, id, func(sess *game.Session) error {
		if err := s.controller.Start(sess, conference, s.population); err != nil {
			return err
		}
		metrics.RecordGameStarted(string(conference))
		return nil
	})
}

// Reset returns a finished session to the intro state so it can be replayed.
func (s *Service) Reset(ctx context.Context, id string) (*game.Session, error) {
	return s.mutate(ctx, id, s.controller.Reset)
}

func (s *Service) mutate(ctx context.Context, id string, apply func(*game.Session) error) (*game.Session, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	mu := s.lockFor(id)
	mu.Lock()
	defer mu.Unlock()

	sess, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	wasFinished := sess.Finished()
	if err := apply(sess); err != nil {
		return nil, err
	}
	if err := s.save(ctx, sess); err != nil {
		return nil, err
	}
	if !wasFinished {
		s.observe(ctx, sess)
	}
	return sess, nil
}

// Delete removes a session.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.ready(); err != nil {
		return err
	}
	mu := s.lockFor(id)
	mu.Lock()
	defer mu.Unlock()

	if err := s.store.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%w %q: %w", ErrUnknownGame, id, err)
		}
		return err
	}
	return nil
}

// MaxTopLimit returns the largest accepted ranking size.
func (s *Service) MaxTopLimit() int { return s.maxTopLimit }

// TopPlayers returns the most frequently guessed players.
func (s *Service) TopPlayers(ctx context.Context, limit int) ([]types.Entry, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if limit > s.maxTopLimit {
		limit = s.maxTopLimit
	}
	return s.tally.TopN(ctx, limit)
}

// Ping reports whether the service can serve requests.
func (s *Service) Ping(ctx context.Context) error {
	if err := s.ready(); err != nil {
		return err
	}
	if p, ok := s.store.(interface{ Ping(context.Context) error }); ok {
		return p.Ping(ctx)
	}
	return nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats(ctx context.Context) types.Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := types.Stats{
		Started:    s.started,
		Workers:    s.workerCount,
		RosterSize: make(map[string]int, 2),
	}
	for _, c := range []model.Conference{model.East, model.West} {
		stats.RosterSize[string(c)] = len(model.FilterConference(s.population, c))
	}
	if !s.started {
		return stats
	}

	stats.Summary = s.tally.Summary()
	stats.QueueLength = s.outcomes.Len()
	stats.SeenAnswerKeys = s.deduper.Size()
	if n, err := s.store.Count(ctx); err == nil {
		stats.ActiveSessions = n
	} else {
		s.logger.Warn(ctx, "count sessions failed", logger.Error(err))
	}
	return stats
}

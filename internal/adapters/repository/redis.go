package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	backend "github.com/redis/go-redis/v9"

	"github.com/okian/legend/internal/domain/game"
	"github.com/okian/legend/pkg/metrics"
)

// noExpiryScore ranks sessions without a TTL in the index (2100-01-01).
const noExpiryScore = 4102444800

// RedisStore keeps sessions as JSON strings with an expiry index in a
// sorted set scored by expiry time.
type RedisStore struct {
	client *backend.Client
	cfg    settings
}

var _ Store = (*RedisStore)(nil)

// NewRedisStore connects to a Redis server.
func NewRedisStore(address, password string, db int, opts ...Option) *RedisStore {
	return NewRedisStoreFromClient(backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	}), opts...)
}

// NewRedisStoreFromClient wraps an existing client.
func NewRedisStoreFromClient(client *backend.Client, opts ...Option) *RedisStore {
	return &RedisStore{client: client, cfg: newSettings(opts)}
}

// Ping checks connectivity.
func (r *RedisStore) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}

func (r *RedisStore) key(id string) string { return r.cfg.prefix + id }

func (r *RedisStore) indexKey() string { return r.cfg.prefix + "index" }

func (r *RedisStore) Save(ctx context.Context, s *game.Session) error {
	data, err := encode(s)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	score := float64(noExpiryScore)
	if r.cfg.ttl > 0 {
		score = float64(r.cfg.now().Add(r.cfg.ttl).Unix())
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, r.key(s.ID), data, r.cfg.ttl)
	pipe.ZAdd(ctx, r.indexKey(), backend.Z{Score: score, Member: s.ID})
	if _, err := pipe.Exec(ctx); err != nil {
		metrics.RecordErrorByComponent("redis_store", "save")
		return fmt.Errorf("save session %s: %w", s.ID, err)
	}
	return nil
}

func (r *RedisStore) Load(ctx context.Context, id string) (*game.Session, error) {
	val, err := r.client.Get(ctx, r.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return nil, ErrNotFound
		}
		metrics.RecordErrorByComponent("redis_store", "load")
		return nil, fmt.Errorf("load session %s: %w", id, err)
	}
	s, err := decode(val)
	if err != nil {
		return nil, fmt.Errorf("decode session %s: %w", id, err)
	}
	return s, nil
}

func (r *RedisStore) Delete(ctx context.Context, id string) error {
	pipe := r.client.TxPipeline()
	del := pipe.Del(ctx, r.key(id))
	pipe.ZRem(ctx, r.indexKey(), id)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("delete session %s: %w", id, err)
	}
	if del.Val() == 0 {
		return ErrNotFound
	}
	return nil
}

// Count prunes expired index members and returns the live session count.
func (r *RedisStore) Count(ctx context.Context) (int, error) {
	now := strconv.FormatInt(r.cfg.now().Unix(), 10)
	if err := r.client.ZRemRangeByScore(ctx, r.indexKey(), "-inf", "("+now).Err(); err != nil {
		return 0, fmt.Errorf("prune expired sessions: %w", err)
	}
	n, err := r.client.ZCard(ctx, r.indexKey()).Result()
	if err != nil {
		return 0, fmt.Errorf("count sessions: %w", err)
	}
	metrics.UpdateActiveSessions(int(n))
	return int(n), nil
}

// Close closes the redis client.
func (r *RedisStore) Close() error {
	return r.client.Close()
}

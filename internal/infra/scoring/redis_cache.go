package scoring

import (
	"context"
	"encoding/json"
	"time"

	"salaf/config"
	"salaf/internal/domain/entity"
	"salaf/internal/domain/service"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

const snapshotKeyPrefix = "salaf:scoring:"

// redisCache stores scoring snapshots in Redis so repeated score calls for
// the same request skip the model. The repository stays the source of truth;
// a cold or unreachable cache only costs an extra scorer call.
type redisCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisCache is the constructor for redisCache.
func NewRedisCache(rdb *redis.Client, cfg *config.Config) service.ScoringCache {
	ttl := cfg.Scoring.CacheTTL
	if ttl == 0 {
		ttl = time.Hour
	}

	return &redisCache{rdb: rdb, ttl: ttl}
}

// Get returns the cached snapshot for a request, or (nil, nil) on a miss.
func (c *redisCache) Get(ctx context.Context, requestID uuid.UUID) (*entity.ScoringSnapshot, error) {
	raw, err := c.rdb.Get(ctx, snapshotKeyPrefix+requestID.String()).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to read scoring snapshot from cache")
	}

	var snapshot entity.ScoringSnapshot
	if err := json.Unmarshal(raw, &snapshot); err != nil {
		return nil, errors.Wrap(err, "failed to decode cached scoring snapshot")
	}

	return &snapshot, nil
}

// Set stores the snapshot under the request's key.
func (c *redisCache) Set(ctx context.Context, requestID uuid.UUID, snapshot *entity.ScoringSnapshot) error {
	raw, err := json.Marshal(snapshot)
	if err != nil {
		return errors.Wrap(err, "failed to encode scoring snapshot for cache")
	}

	if err := c.rdb.Set(ctx, snapshotKeyPrefix+requestID.String(), raw, c.ttl).Err(); err != nil {
		return errors.Wrap(err, "failed to write scoring snapshot to cache")
	}

	return nil
}

// OpenRedis connects the shared Redis client used by the scoring cache.
func OpenRedis(cfg *config.Config) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, errors.Wrap(err, "failed to ping redis")
	}

	return rdb, nil
}

package cache

import (
	"context"
	"errors"
	"strconv"
	"time"

	json "github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/student-management/internal/config"
	"github.com/stemsi/student-management/internal/model"
	"github.com/stemsi/student-management/internal/repository"
)

// fillScript sets KEYS[2] only while the write generation in KEYS[1] still
// equals ARGV[1], so a fill loaded before a write can never land after it.
var fillScript = redis.NewScript(`
if (redis.call('GET', KEYS[1]) or '0') == ARGV[1] then
	return redis.call('SET', KEYS[2], ARGV[2], 'PX', ARGV[3])
end
return false
`)

// StudentCache is a read-through Redis cache in front of a StudentStore.
// Writes go to the store first, then bump the write generation and delete
// the affected keys. Redis failures are logged and never fail the call.
type StudentCache struct {
	next repository.StudentStore
	rdb  *redis.Client
	ttl  time.Duration
	log  zerolog.Logger
}

var _ repository.StudentStore = (*StudentCache)(nil)

// NewStudentCache wraps next with a Redis cache.
func NewStudentCache(next repository.StudentStore, rdb *redis.Client, ttl time.Duration, log zerolog.Logger) *StudentCache {
	return &StudentCache{next: next, rdb: rdb, ttl: ttl, log: log}
}

// List serves the full list from cache when present.
func (c *StudentCache) List(ctx context.Context) ([]model.Student, error) {
	key := config.CacheKey.StudentListKey()

	var students []model.Student
	if c.load(ctx, key, &students) {
		return students, nil
	}

	gen, ok := c.generation(ctx)
	students, err := c.next.List(ctx)
	if err != nil {
		return nil, err
	}
	if ok {
		c.fill(ctx, key, gen, students)
	}
	return students, nil
}

// GetByID serves a single record from cache when present. Misses are not cached.
func (c *StudentCache) GetByID(ctx context.Context, id int64) (*model.Student, error) {
	key := config.CacheKey.StudentKey(id)

	var student model.Student
	if c.load(ctx, key, &student) {
		return &student, nil
	}

	gen, ok := c.generation(ctx)
	s, err := c.next.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if ok {
		c.fill(ctx, key, gen, s)
	}
	return s, nil
}

// ExistsByEmail always asks the store.
func (c *StudentCache) ExistsByEmail(ctx context.Context, email string, excludeID int64) (bool, error) {
	return c.next.ExistsByEmail(ctx, email, excludeID)
}

func (c *StudentCache) Create(ctx context.Context, s *model.Student) error {
	if err := c.next.Create(ctx, s); err != nil {
		return err
	}
	c.invalidate(ctx, config.CacheKey.StudentListKey())
	return nil
}

func (c *StudentCache) Update(ctx context.Context, s *model.Student) error {
	if err := c.next.Update(ctx, s); err != nil {
		return err
	}
	c.invalidate(ctx, config.CacheKey.StudentListKey(), config.CacheKey.StudentKey(s.ID))
	return nil
}

func (c *StudentCache) Delete(ctx context.Context, id int64) error {
	if err := c.next.Delete(ctx, id); err != nil {
		return err
	}
	c.invalidate(ctx, config.CacheKey.StudentListKey(), config.CacheKey.StudentKey(id))
	return nil
}

// Prewarm loads the full list into Redis so the first reads after startup
// are served from cache. It overwrites whatever a previous run left behind.
func (c *StudentCache) Prewarm(ctx context.Context) error {
	students, err := c.next.List(ctx)
	if err != nil {
		return err
	}
	key := config.CacheKey.StudentListKey()
	raw, err := json.Marshal(students)
	if err != nil {
		return err
	}
	if err := c.rdb.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		return err
	}
	c.log.Info().Int("students", len(students)).Msg("Student cache prewarmed")
	return nil
}

func (c *StudentCache) load(ctx context.Context, key string, dst any) bool {
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn().Err(err).Str("key", key).Msg("Cache read failed")
		}
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("Cache entry corrupt, dropping")
		c.invalidate(ctx, key)
		return false
	}
	return true
}

// generation reads the write counter. It must be read before the store is
// queried. ok is false when Redis is unreachable.
func (c *StudentCache) generation(ctx context.Context) (string, bool) {
	gen, err := c.rdb.Get(ctx, config.CacheKey.StudentGenerationKey()).Result()
	if errors.Is(err, redis.Nil) {
		return "0", true
	}
	if err != nil {
		c.log.Warn().Err(err).Msg("Cache generation read failed")
		return "", false
	}
	return gen, true
}

func (c *StudentCache) fill(ctx context.Context, key, gen string, v any) {
	raw, err := json.Marshal(v)
	if err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("Cache encode failed")
		return
	}
	keys := []string{config.CacheKey.StudentGenerationKey(), key}
	err = fillScript.Run(ctx, c.rdb, keys, gen, raw, strconv.FormatInt(c.ttl.Milliseconds(), 10)).Err()
	if err != nil && !errors.Is(err, redis.Nil) {
		c.log.Warn().Err(err).Str("key", key).Msg("Cache write failed")
	}
}

func (c *StudentCache) invalidate(ctx context.Context, keys ...string) {
	_, err := c.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, config.CacheKey.StudentGenerationKey())
		pipe.Del(ctx, keys...)
		return nil
	})
	if err != nil {
		c.log.Warn().Err(err).Strs("keys", keys).Msg("Cache invalidation failed")
	}
}

package cache

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/student-management/internal/config"
	"github.com/stemsi/student-management/internal/model"
	"github.com/stemsi/student-management/internal/repository"
	"github.com/stemsi/student-management/internal/repository/repositorytest"
)

func openTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	url := os.Getenv("TEST_REDIS_URL")
	if url == "" {
		t.Skip("TEST_REDIS_URL not set")
		return nil
	}
	opt, err := redis.ParseURL(url)
	if err != nil {
		t.Fatalf("parse TEST_REDIS_URL: %v", err)
	}
	rdb := redis.NewClient(opt)
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		t.Skipf("redis unavailable: %v", err)
		return nil
	}
	if err := rdb.FlushDB(context.Background()).Err(); err != nil {
		t.Fatalf("flush: %v", err)
	}
	return rdb
}

func TestStudentCacheReadThrough(t *testing.T) {
	rdb := openTestRedis(t)
	if rdb == nil {
		return
	}
	defer rdb.Close()

	ctx := context.Background()
	store := repositorytest.NewStudentStore()
	c := NewStudentCache(store, rdb, time.Minute, zerolog.Nop())

	s := &model.Student{Name: "Asha", Email: "asha@x.com", Phone: "111", Course: "CS"}
	if err := c.Create(ctx, s); err != nil {
		t.Fatalf("create: %v", err)
	}

	for i := 0; i < 3; i++ {
		if _, err := c.GetByID(ctx, s.ID); err != nil {
			t.Fatalf("get: %v", err)
		}
		if _, err := c.List(ctx); err != nil {
			t.Fatalf("list: %v", err)
		}
	}
	if store.Calls["GetByID"] != 1 || store.Calls["List"] != 1 {
		t.Fatalf("expected one store hit per key, got %v", store.Calls)
	}
}

func TestStudentCacheInvalidatesOnWrite(t *testing.T) {
	rdb := openTestRedis(t)
	if rdb == nil {
		return
	}
	defer rdb.Close()

	ctx := context.Background()
	store := repositorytest.NewStudentStore()
	c := NewStudentCache(store, rdb, time.Minute, zerolog.Nop())

	s := &model.Student{Name: "Asha", Email: "asha@x.com", Phone: "111", Course: "CS"}
	if err := c.Create(ctx, s); err != nil {
		t.Fatalf("create: %v", err)
	}
	if list, _ := c.List(ctx); len(list) != 1 {
		t.Fatalf("expected 1 student, got %d", len(list))
	}
	if _, err := c.GetByID(ctx, s.ID); err != nil {
		t.Fatalf("get: %v", err)
	}

	s.Course = "Math"
	if err := c.Update(ctx, s); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, err := c.GetByID(ctx, s.ID)
	if err != nil || got.Course != "Math" {
		t.Fatalf("expected fresh record after update, got %+v (%v)", got, err)
	}

	second := &model.Student{Name: "Ravi", Email: "ravi@x.com", Phone: "2", Course: "EE"}
	if err := c.Create(ctx, second); err != nil {
		t.Fatalf("create: %v", err)
	}
	if list, _ := c.List(ctx); len(list) != 2 {
		t.Fatalf("expected list to include new student, got %d", len(list))
	}

	if err := c.Delete(ctx, s.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := c.GetByID(ctx, s.ID); !errors.Is(err, repository.ErrStudentNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
	if n, _ := rdb.Exists(ctx, config.CacheKey.StudentKey(s.ID)).Result(); n != 0 {
		t.Fatalf("not-found results must not be cached")
	}
	if list, _ := c.List(ctx); len(list) != 1 {
		t.Fatalf("expected 1 student after delete, got %d", len(list))
	}
}

func TestStudentCacheFallsThroughWhenRedisIsDown(t *testing.T) {
	// Nothing listens on this port; every Redis call fails fast.
	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer rdb.Close()

	ctx := context.Background()
	store := repositorytest.NewStudentStore()
	c := NewStudentCache(store, rdb, time.Minute, zerolog.Nop())

	s := &model.Student{Name: "Asha", Email: "asha@x.com", Phone: "111", Course: "CS"}
	if err := c.Create(ctx, s); err != nil {
		t.Fatalf("create should succeed without redis: %v", err)
	}
	got, err := c.GetByID(ctx, s.ID)
	if err != nil || got.Email != "asha@x.com" {
		t.Fatalf("get should fall through to store, got %+v (%v)", got, err)
	}
	list, err := c.List(ctx)
	if err != nil || len(list) != 1 {
		t.Fatalf("list should fall through to store, got %d (%v)", len(list), err)
	}
}

func TestStudentCachePrewarm(t *testing.T) {
	rdb := openTestRedis(t)
	if rdb == nil {
		return
	}
	defer rdb.Close()

	ctx := context.Background()
	store := repositorytest.NewStudentStore()
	if err := store.Create(ctx, &model.Student{Name: "Asha", Email: "asha@x.com", Phone: "111", Course: "CS"}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	c := NewStudentCache(store, rdb, time.Minute, zerolog.Nop())

	if err := c.Prewarm(ctx); err != nil {
		t.Fatalf("prewarm: %v", err)
	}
	list, err := c.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || store.Calls["List"] != 1 {
		t.Fatalf("expected list served from cache after prewarm, calls=%v", store.Calls)
	}
}

func TestStudentCacheDropsFillLoadedBeforeWrite(t *testing.T) {
	rdb := openTestRedis(t)
	if rdb == nil {
		return
	}
	defer rdb.Close()

	ctx := context.Background()
	store := repositorytest.NewStudentStore()
	c := NewStudentCache(store, rdb, time.Minute, zerolog.Nop())

	s := &model.Student{Name: "Asha", Email: "asha@x.com", Phone: "111", Course: "CS"}
	if err := c.Create(ctx, s); err != nil {
		t.Fatalf("create: %v", err)
	}

	// A reader misses, reads the generation and loads the old rows.
	gen, ok := c.generation(ctx)
	if !ok {
		t.Fatalf("generation unavailable")
	}
	staleList, _ := store.List(ctx)
	staleRow, _ := store.GetByID(ctx, s.ID)

	// A write completes before the reader fills the cache.
	s.Course = "Math"
	if err := c.Update(ctx, s); err != nil {
		t.Fatalf("update: %v", err)
	}
	c.fill(ctx, config.CacheKey.StudentListKey(), gen, staleList)
	c.fill(ctx, config.CacheKey.StudentKey(s.ID), gen, staleRow)

	got, err := c.GetByID(ctx, s.ID)
	if err != nil || got.Course != "Math" {
		t.Fatalf("stale row served after update: %+v (%v)", got, err)
	}
	list, err := c.List(ctx)
	if err != nil || len(list) != 1 || list[0].Course != "Math" {
		t.Fatalf("stale list served after update: %+v (%v)", list, err)
	}
}

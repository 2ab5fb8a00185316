package caching

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func setupTestRedis(t *testing.T, ttl time.Duration) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()

	srv := miniredis.RunT(t)
	rc, err := NewRedisCache(context.Background(), srv.Addr(), 0, "codehub:", ttl)
	if err != nil {
		t.Fatalf("NewRedisCache() failed: %v", err)
	}
	t.Cleanup(func() { rc.Close() })

	return rc, srv
}

func TestRedisCache_SetGet(t *testing.T) {
	ctx := context.Background()
	rc, srv := setupTestRedis(t, 0)

	if _, ok, err := rc.Get(ctx, "pg_1"); err != nil || ok {
		t.Fatalf("Get(missing) = ok %v, err %v; want miss", ok, err)
	}

	if err := rc.Set(ctx, "pg_1", []byte("hello")); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}

	data, ok, err := rc.Get(ctx, "pg_1")
	if err != nil || !ok {
		t.Fatalf("Get() = ok %v, err %v; want hit", ok, err)
	}
	if string(data) != "hello" {
		t.Errorf("Get() = %q, want %q", data, "hello")
	}

	// Stored under the prefix
	if !srv.Exists("codehub:pg_1") {
		t.Errorf("keys in redis = %v, want codehub:pg_1", srv.Keys())
	}
	if srv.Exists("pg_1") {
		t.Error("unprefixed key written to redis")
	}
}

func TestRedisCache_DeleteAndKeys(t *testing.T) {
	ctx := context.Background()
	rc, srv := setupTestRedis(t, 0)

	// Foreign keys outside the prefix are not listed
	srv.Set("other:pg_9", "x")

	for _, k := range []string{"pg_2", "imageKey", "pg_1"} {
		if err := rc.Set(ctx, k, []byte(k)); err != nil {
			t.Fatalf("Set(%s) failed: %v", k, err)
		}
	}
	if err := rc.Delete(ctx, "pg_2"); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}
	if err := rc.Delete(ctx, "never-set"); err != nil {
		t.Errorf("Delete(missing) failed: %v", err)
	}

	keys, err := rc.Keys(ctx)
	if err != nil {
		t.Fatalf("Keys() failed: %v", err)
	}
	if want := []string{"imageKey", "pg_1"}; !reflect.DeepEqual(keys, want) {
		t.Errorf("Keys() = %v, want %v", keys, want)
	}
}

func TestRedisCache_TTL(t *testing.T) {
	ctx := context.Background()
	rc, srv := setupTestRedis(t, time.Minute)

	if err := rc.Set(ctx, "dbKEY", []byte("snapshot")); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}
	if got := srv.TTL("codehub:dbKEY"); got != time.Minute {
		t.Errorf("TTL = %v, want %v", got, time.Minute)
	}

	srv.FastForward(2 * time.Minute)

	if _, ok, err := rc.Get(ctx, "dbKEY"); err != nil || ok {
		t.Errorf("Get(expired) = ok %v, err %v; want miss", ok, err)
	}
}

func TestRedisCache_OutOfMemory(t *testing.T) {
	ctx := context.Background()
	rc, srv := setupTestRedis(t, 0)

	srv.SetError("OOM command not allowed when used memory > 'maxmemory'.")

	err := rc.Set(ctx, "dbKEY", []byte("snapshot"))
	if !errors.Is(err, ErrQuotaExceeded) {
		t.Errorf("Set() = %v, want ErrQuotaExceeded", err)
	}

	srv.SetError("ERR something else")
	if err := rc.Set(ctx, "dbKEY", []byte("snapshot")); err == nil || errors.Is(err, ErrQuotaExceeded) {
		t.Errorf("Set() = %v, want a non-quota error", err)
	}
}

func TestNewRedisCache_Unreachable(t *testing.T) {
	srv, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run() failed: %v", err)
	}
	addr := srv.Addr()
	srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if _, err := NewRedisCache(ctx, addr, 0, "codehub:", 0); err == nil {
		t.Error("NewRedisCache() succeeded against a closed server, want error")
	}
}

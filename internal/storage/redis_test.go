package storage

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

// redisAddr returns the server used for redis tests, skipping when unset.
func redisAddr(t *testing.T) string {
	t.Helper()
	addr := os.Getenv("SESSIONTODO_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("SESSIONTODO_TEST_REDIS_ADDR not set")
	}
	return addr
}

func TestRedis(t *testing.T) {
	addr := redisAddr(t)
	r := NewRedis(RedisOptions{Addr: addr, TTL: time.Minute}, "test-"+uuid.NewString(), 0)
	defer r.Close()

	exerciseStorage(t, r)
}

func TestRedisQuota(t *testing.T) {
	addr := redisAddr(t)
	r := NewRedis(RedisOptions{Addr: addr}, "test-"+uuid.NewString(), 10)
	defer r.Close()
	defer r.Clear()

	if err := r.SetItem("todos", strings.Repeat("x", 20)); err == nil {
		t.Fatal("expected quota error")
	}
}

func TestRedisKeyPrefix(t *testing.T) {
	r := NewRedis(RedisOptions{Addr: "127.0.0.1:0"}, "shell-1", 0)
	defer r.Close()

	if got := r.key("todos"); got != "sessiontodo:shell-1:todos" {
		t.Errorf("key: got %q, want sessiontodo:shell-1:todos", got)
	}
}

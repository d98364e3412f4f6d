// AngelaMos | 2026
// redis_test.go

package core

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"github.com/carterperez-dev/templates/tablebook/internal/config"
)

func TestRedisOptions(t *testing.T) {
	opts, err := redisOptions(config.RedisConfig{
		URL:         "redis://localhost:6379/2",
		PoolSize:    7,
		DialTimeout: time.Second,
		ReadTimeout: 250 * time.Millisecond,
	})
	if err != nil {
		t.Fatal(err)
	}
	if opts.DB != 2 || opts.PoolSize != 7 {
		t.Fatalf("db=%d pool=%d", opts.DB, opts.PoolSize)
	}
	if opts.ReadTimeout != 250*time.Millisecond || opts.WriteTimeout != 250*time.Millisecond {
		t.Fatalf("read=%v write=%v", opts.ReadTimeout, opts.WriteTimeout)
	}

	if _, err := redisOptions(config.RedisConfig{URL: "::nope"}); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestNewRedisPing(t *testing.T) {
	mr := miniredis.RunT(t)

	r, err := NewRedis(context.Background(), config.RedisConfig{URL: "redis://" + mr.Addr()})
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	if err := r.Ping(context.Background()); err != nil {
		t.Fatalf("ping: %v", err)
	}

	mr.Close()
	if err := r.Ping(context.Background()); err == nil {
		t.Fatal("expected ping to fail after server stop")
	}
}

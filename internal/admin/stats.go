// AngelaMos | 2026
// stats.go

package admin

import (
	"context"
	"database/sql"
	"runtime"
	"sync"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

// Counter reports a count broken down by lifecycle status or another
// label. Each domain service provides one.
type Counter func(ctx context.Context) (map[string]int, error)

type EntityStats struct {
	Total    int            `json:"total"`
	ByStatus map[string]int `json:"by_status,omitempty"`
}

// countAll runs every counter concurrently. The first failure cancels
// the rest.
func countAll(ctx context.Context, counters map[string]Counter) (map[string]EntityStats, error) {
	var (
		mu  sync.Mutex
		out = make(map[string]EntityStats, len(counters))
	)

	g, ctx := errgroup.WithContext(ctx)
	for name, count := range counters {
		g.Go(func() error {
			breakdown, err := count(ctx)
			if err != nil {
				return err
			}

			stats := EntityStats{ByStatus: breakdown}
			for _, n := range breakdown {
				stats.Total += n
			}

			mu.Lock()
			out[name] = stats
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

type StoreStatus[T any] struct {
	Healthy bool `json:"healthy"`
	Stats   *T   `json:"stats,omitempty"`
}

type DBPoolStats struct {
	MaxOpenConnections int    `json:"max_open_connections"`
	OpenConnections    int    `json:"open_connections"`
	InUse              int    `json:"in_use"`
	Idle               int    `json:"idle"`
	WaitCount          int64  `json:"wait_count"`
	WaitDuration       string `json:"wait_duration"`
}

func dbPool(stats func() sql.DBStats) *DBPoolStats {
	if stats == nil {
		return nil
	}

	s := stats()
	return &DBPoolStats{
		MaxOpenConnections: s.MaxOpenConnections,
		OpenConnections:    s.OpenConnections,
		InUse:              s.InUse,
		Idle:               s.Idle,
		WaitCount:          s.WaitCount,
		WaitDuration:       s.WaitDuration.String(),
	}
}

type RedisPoolStats struct {
	Hits       uint32 `json:"hits"`
	Misses     uint32 `json:"misses"`
	Timeouts   uint32 `json:"timeouts"`
	TotalConns uint32 `json:"total_conns"`
	IdleConns  uint32 `json:"idle_conns"`
}

func redisPool(stats func() *redis.PoolStats) *RedisPoolStats {
	if stats == nil {
		return nil
	}

	s := stats()
	return &RedisPoolStats{
		Hits:       s.Hits,
		Misses:     s.Misses,
		Timeouts:   s.Timeouts,
		TotalConns: s.TotalConns,
		IdleConns:  s.IdleConns,
	}
}

type RuntimeStats struct {
	GoVersion    string `json:"go_version"`
	NumGoroutine int    `json:"num_goroutine"`
	NumCPU       int    `json:"num_cpu"`
	MemAlloc     uint64 `json:"mem_alloc_bytes"`
	MemSys       uint64 `json:"mem_sys_bytes"`
	NumGC        uint32 `json:"num_gc"`
}

func readRuntime() RuntimeStats {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	return RuntimeStats{
		GoVersion:    runtime.Version(),
		NumGoroutine: runtime.NumGoroutine(),
		NumCPU:       runtime.NumCPU(),
		MemAlloc:     mem.Alloc,
		MemSys:       mem.Sys,
		NumGC:        mem.NumGC,
	}
}

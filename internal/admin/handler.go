// AngelaMos | 2026
// handler.go

package admin

import (
	"context"
	"database/sql"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/carterperez-dev/templates/tablebook/internal/core"
)

type HandlerConfig struct {
	DBStats    func() sql.DBStats
	RedisStats func() *redis.PoolStats
	DBPing     func(ctx context.Context) error
	RedisPing  func(ctx context.Context) error
	// Counters are keyed by entity name, e.g. "restaurants".
	Counters map[string]Counter
}

type Handler struct {
	cfg HandlerConfig
}

func NewHandler(cfg HandlerConfig) *Handler {
	return &Handler{cfg: cfg}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator, adminOnly func(http.Handler) http.Handler,
) {
	r.Route("/admin/stats", func(r chi.Router) {
		r.Use(authenticator)
		r.Use(adminOnly)

		r.Get("/", h.GetSystemStats)
		r.Get("/entities", h.GetEntityStats)
		r.Get("/db", h.GetDatabaseStats)
		r.Get("/redis", h.GetRedisStats)
		r.Get("/runtime", h.GetRuntimeStats)
	})
}

type SystemStatsResponse struct {
	Entities map[string]EntityStats      `json:"entities"`
	Database StoreStatus[DBPoolStats]    `json:"database"`
	Redis    StoreStatus[RedisPoolStats] `json:"redis"`
	Runtime  RuntimeStats                `json:"runtime"`
}

// GetSystemStats counts entities and pings both stores in parallel. A
// failed ping marks the store unhealthy; a failed count fails the call.
func (h *Handler) GetSystemStats(w http.ResponseWriter, r *http.Request) {
	var (
		resp              SystemStatsResponse
		dbDown, redisDown error
	)

	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() (err error) {
		resp.Entities, err = countAll(ctx, h.cfg.Counters)
		return err
	})
	g.Go(func() error {
		dbDown = ping(ctx, h.cfg.DBPing)
		return nil
	})
	g.Go(func() error {
		redisDown = ping(ctx, h.cfg.RedisPing)
		return nil
	})

	if err := g.Wait(); err != nil {
		core.HandleError(w, err, "stats")
		return
	}

	resp.Database = StoreStatus[DBPoolStats]{Healthy: dbDown == nil, Stats: dbPool(h.cfg.DBStats)}
	resp.Redis = StoreStatus[RedisPoolStats]{Healthy: redisDown == nil, Stats: redisPool(h.cfg.RedisStats)}
	resp.Runtime = readRuntime()

	core.OK(w, resp)
}

func (h *Handler) GetEntityStats(w http.ResponseWriter, r *http.Request) {
	entities, err := countAll(r.Context(), h.cfg.Counters)
	if err != nil {
		core.HandleError(w, err, "stats")
		return
	}
	core.OK(w, entities)
}

func (h *Handler) GetDatabaseStats(w http.ResponseWriter, _ *http.Request) {
	core.OK(w, dbPool(h.cfg.DBStats))
}

func (h *Handler) GetRedisStats(w http.ResponseWriter, _ *http.Request) {
	core.OK(w, redisPool(h.cfg.RedisStats))
}

func (h *Handler) GetRuntimeStats(w http.ResponseWriter, _ *http.Request) {
	core.OK(w, readRuntime())
}

// ping treats an unconfigured check as healthy.
func ping(ctx context.Context, fn func(context.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

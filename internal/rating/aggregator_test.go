// AngelaMos | 2026
// aggregator_test.go

package rating

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/carterperez-dev/templates/tablebook/internal/config"
	"github.com/carterperez-dev/templates/tablebook/internal/core"
)

// memStore serializes Apply per restaurant with a mutex, mirroring the
// row lock taken by the SQL implementation.
type memStore struct {
	mu        sync.Mutex
	reviews   map[string][]int
	summaries map[string]Summary
	failures  int
	calls     int
}

func newMemStore(ids ...string) *memStore {
	s := &memStore{reviews: map[string][]int{}, summaries: map[string]Summary{}}
	for _, id := range ids {
		s.reviews[id] = nil
	}
	return s
}

func (s *memStore) Apply(_ context.Context, id string, compute func([]int) Summary) (Summary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.failures > 0 {
		s.failures--
		return Summary{}, core.StoreError("lock restaurant", context.DeadlineExceeded)
	}
	ratings, ok := s.reviews[id]
	if !ok {
		return Summary{}, core.ErrNotFound
	}
	sum := compute(append([]int(nil), ratings...))
	s.summaries[id] = sum
	return sum, nil
}

func (s *memStore) RestaurantIDs(_ context.Context, after string, limit int) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var ids []string
	for id := range s.reviews {
		if id > after {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	if len(ids) > limit {
		ids = ids[:limit]
	}
	return ids, nil
}

func (s *memStore) setReviews(id string, ratings ...int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reviews[id] = ratings
}

func (s *memStore) summary(id string) Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.summaries[id]
}

func newTestAggregator(t *testing.T, store Store) (*Aggregator, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	agg := NewAggregator(store, NewRedisStaleTracker(rdb), config.RatingConfig{
		RetryAttempts:        3,
		RetryInitialInterval: time.Millisecond,
		BackfillBatch:        2,
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	return agg, mr
}

func TestRecomputeTracksReviewSet(t *testing.T) {
	id := uuid.NewString()
	store := newMemStore(id)
	agg, _ := newTestAggregator(t, store)
	ctx := context.Background()

	var changed []string
	agg.OnChange(func(_ context.Context, rid string) { changed = append(changed, rid) })

	store.setReviews(id, 5, 4, 3)
	got, err := agg.Recompute(ctx, id)
	if err != nil {
		t.Fatalf("Recompute: %v", err)
	}
	if got != (Summary{Rating: 4, TotalReviews: 3}) {
		t.Errorf("got %+v", got)
	}

	store.setReviews(id, 5, 4)
	if err := agg.Settle(ctx, id); err != nil {
		t.Fatalf("Settle: %v", err)
	}
	if got := store.summary(id); got != (Summary{Rating: 4.5, TotalReviews: 2}) {
		t.Errorf("after delete got %+v", got)
	}

	store.setReviews(id)
	if err := agg.Settle(ctx, id); err != nil {
		t.Fatalf("Settle: %v", err)
	}
	if got := store.summary(id); got != (Summary{}) {
		t.Errorf("zero reviews got %+v", got)
	}

	if len(changed) != 3 {
		t.Errorf("OnChange fired %d times, want 3", len(changed))
	}
}

func TestSettleRetriesTransientFailures(t *testing.T) {
	id := uuid.NewString()
	store := newMemStore(id)
	store.setReviews(id, 4)
	store.failures = 2
	agg, mr := newTestAggregator(t, store)

	if err := agg.Settle(context.Background(), id); err != nil {
		t.Fatalf("Settle: %v", err)
	}
	if store.calls != 3 {
		t.Errorf("calls = %d, want 3", store.calls)
	}
	if got := store.summary(id); got.TotalReviews != 1 {
		t.Errorf("summary = %+v", got)
	}
	if mr.Exists(staleKey) {
		t.Error("restaurant marked stale after successful retry")
	}
}

func TestSettleMarksStaleThenBackfillRepairs(t *testing.T) {
	id := uuid.NewString()
	store := newMemStore(id)
	store.setReviews(id, 2, 3)
	store.failures = 10
	agg, mr := newTestAggregator(t, store)
	ctx := context.Background()

	if err := agg.Settle(ctx, id); err != nil {
		t.Fatalf("Settle must swallow failures, got %v", err)
	}
	if ok, _ := mr.SIsMember(staleKey, id); !ok {
		t.Fatal("restaurant not marked stale")
	}

	store.failures = 0
	n, err := agg.Backfill(ctx)
	if err != nil || n != 1 {
		t.Fatalf("Backfill = %d, %v", n, err)
	}
	if got := store.summary(id); got != (Summary{Rating: 2.5, TotalReviews: 2}) {
		t.Errorf("summary = %+v", got)
	}
	if mr.Exists(staleKey) {
		t.Error("stale set not drained")
	}
}

// cancelOnApply cancels the caller's context during the first Apply,
// as an expiring request deadline would mid-batch.
type cancelOnApply struct {
	*memStore
	cancel context.CancelFunc
	once   sync.Once
}

func (s *cancelOnApply) Apply(ctx context.Context, id string, compute func([]int) Summary) (Summary, error) {
	s.once.Do(s.cancel)
	if err := ctx.Err(); err != nil {
		return Summary{}, core.StoreError("lock restaurant", err)
	}
	return s.memStore.Apply(ctx, id, compute)
}

func TestBackfillInterruptedKeepsStaleIDs(t *testing.T) {
	first, second := uuid.NewString(), uuid.NewString()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store := &cancelOnApply{memStore: newMemStore(first, second), cancel: cancel}
	agg, mr := newTestAggregator(t, store)
	if _, err := mr.SAdd(staleKey, first, second); err != nil {
		t.Fatal(err)
	}

	n, err := agg.Backfill(ctx)
	if err == nil || n != 0 {
		t.Fatalf("Backfill = %d, %v; want 0 and an error", n, err)
	}

	members, err := mr.Members(staleKey)
	if err != nil {
		t.Fatal(err)
	}
	sort.Strings(members)
	want := []string{first, second}
	sort.Strings(want)
	if strings.Join(members, ",") != strings.Join(want, ",") {
		t.Errorf("stale set = %v, want %v", members, want)
	}

	n, err = agg.Backfill(context.Background())
	if err != nil || n != 2 {
		t.Fatalf("second Backfill = %d, %v", n, err)
	}
	if mr.Exists(staleKey) {
		t.Error("stale set not drained after retry")
	}
}

func TestBackfillFailureLeavesIDStale(t *testing.T) {
	id := uuid.NewString()
	store := newMemStore(id)
	store.failures = 1
	agg, mr := newTestAggregator(t, store)
	if _, err := mr.SAdd(staleKey, id); err != nil {
		t.Fatal(err)
	}

	n, err := agg.Backfill(context.Background())
	if err != nil || n != 0 {
		t.Fatalf("Backfill = %d, %v", n, err)
	}
	if ok, _ := mr.SIsMember(staleKey, id); !ok {
		t.Error("failed recompute dropped from stale set")
	}
}

func TestSettleIgnoresMissingRestaurant(t *testing.T) {
	store := newMemStore()
	agg, mr := newTestAggregator(t, store)

	if err := agg.Settle(context.Background(), uuid.NewString()); err != nil {
		t.Fatalf("Settle: %v", err)
	}
	if store.calls != 1 {
		t.Errorf("calls = %d, want 1 (not found is permanent)", store.calls)
	}
	if mr.Exists(staleKey) {
		t.Error("missing restaurant marked stale")
	}
}

func TestConcurrentSettleConverges(t *testing.T) {
	id := uuid.NewString()
	store := newMemStore(id)
	agg, _ := newTestAggregator(t, store)

	var wg sync.WaitGroup
	for i := 1; i <= 5; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			ratings := make([]int, n)
			for j := range ratings {
				ratings[j] = 1 + j%5
			}
			store.setReviews(id, ratings...)
			_ = agg.Settle(context.Background(), id)
		}(i)
	}
	wg.Wait()

	store.mu.Lock()
	want := Compute(store.reviews[id])
	store.mu.Unlock()

	if err := agg.Settle(context.Background(), id); err != nil {
		t.Fatal(err)
	}
	if got := store.summary(id); got != want {
		t.Errorf("settled = %+v, want %+v", got, want)
	}
}

func TestRecomputeAllPages(t *testing.T) {
	ids := []string{uuid.NewString(), uuid.NewString(), uuid.NewString()}
	store := newMemStore(ids...)
	for i, id := range ids {
		store.setReviews(id, i+1)
	}
	agg, _ := newTestAggregator(t, store)

	n, err := agg.RecomputeAll(context.Background())
	if err != nil || n != 3 {
		t.Fatalf("RecomputeAll = %d, %v", n, err)
	}
	for i, id := range ids {
		if got := store.summary(id); got.Rating != float64(i+1) {
			t.Errorf("%s rating = %v", id, got.Rating)
		}
	}
}

func TestRecomputeHandler(t *testing.T) {
	id := uuid.NewString()
	store := newMemStore(id)
	store.setReviews(id, 5, 3)
	agg, _ := newTestAggregator(t, store)

	pass := func(next http.Handler) http.Handler { return next }
	r := chi.NewRouter()
	NewHandler(agg).RegisterAdminRoutes(r, pass, pass)

	tests := []struct {
		name  string
		query string
		code  int
		body  string
	}{
		{"single", "?restaurant_id=" + id, http.StatusOK, `"rating":4`},
		{"all", "", http.StatusOK, `"recomputed":1`},
		{"bad id", "?restaurant_id=nope", http.StatusBadRequest, "restaurant_id"},
		{"unknown", "?restaurant_id=" + uuid.NewString(), http.StatusNotFound, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/admin/ratings/recompute"+tt.query, nil))
			if rec.Code != tt.code || !strings.Contains(rec.Body.String(), tt.body) {
				t.Errorf("got %d %s", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestRecomputeSweepOutlivesRequestDeadline(t *testing.T) {
	id := uuid.NewString()
	store := newMemStore(id)
	store.setReviews(id, 4)
	agg, mr := newTestAggregator(t, store)
	if _, err := mr.SAdd(staleKey, id); err != nil {
		t.Fatal(err)
	}

	pass := func(next http.Handler) http.Handler { return next }
	r := chi.NewRouter()
	NewHandler(agg).RegisterAdminRoutes(r, pass, pass)

	ctx, cancel := context.WithTimeout(context.Background(), -time.Second)
	defer cancel()
	req := httptest.NewRequest(http.MethodPost, "/admin/ratings/recompute", nil).WithContext(ctx)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"backfilled":1`) {
		t.Fatalf("got %d %s", rec.Code, rec.Body.String())
	}
	if mr.Exists(staleKey) {
		t.Error("stale set not drained")
	}
}

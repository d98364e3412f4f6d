// AngelaMos | 2026
// service_test.go

package review

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/carterperez-dev/templates/tablebook/internal/config"
	"github.com/carterperez-dev/templates/tablebook/internal/core"
	"github.com/carterperez-dev/templates/tablebook/internal/middleware"
	"github.com/carterperez-dev/templates/tablebook/internal/rating"
)

type fakeRepo struct {
	mu      sync.Mutex
	reviews map[string]Review
	votes   map[string]map[string]bool
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{reviews: map[string]Review{}, votes: map[string]map[string]bool{}}
}

func (f *fakeRepo) Create(_ context.Context, rv *Review) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.reviews {
		if existing.RestaurantID == rv.RestaurantID && existing.UserID == rv.UserID {
			return core.NewDomainError(core.ErrConflict, "you have already reviewed this restaurant")
		}
	}
	rv.CreatedAt = time.Now()
	rv.UpdatedAt = rv.CreatedAt
	f.reviews[rv.ID] = *rv
	return nil
}

func (f *fakeRepo) GetByID(_ context.Context, id string) (*Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rv, ok := f.reviews[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	rv.HelpfulCount = len(f.votes[id])
	return &rv, nil
}

func (f *fakeRepo) Update(_ context.Context, rv *Review) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reviews[rv.ID] = *rv
	return nil
}

func (f *fakeRepo) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.reviews[id]; !ok {
		return core.ErrNotFound
	}
	delete(f.reviews, id)
	return nil
}

func (f *fakeRepo) ListByRestaurant(_ context.Context, rid string, limit, offset int) ([]Review, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var all []Review
	for _, rv := range f.reviews {
		if rv.RestaurantID == rid {
			all = append(all, rv)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	total := len(all)
	if offset >= total {
		return []Review{}, total, nil
	}
	return all[offset:min(offset+limit, total)], total, nil
}

func (f *fakeRepo) ToggleHelpful(_ context.Context, reviewID, userID string) (bool, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.reviews[reviewID]; !ok {
		return false, 0, core.ErrNotFound
	}
	if f.votes[reviewID] == nil {
		f.votes[reviewID] = map[string]bool{}
	}
	if f.votes[reviewID][userID] {
		delete(f.votes[reviewID], userID)
		return false, len(f.votes[reviewID]), nil
	}
	f.votes[reviewID][userID] = true
	return true, len(f.votes[reviewID]), nil
}

func (f *fakeRepo) Count(context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.reviews), nil
}

// ratingStore computes over the fake repo's review set, standing in for
// the restaurants row the SQL store updates.
type ratingStore struct {
	repo      *fakeRepo
	mu        sync.Mutex
	summaries map[string]rating.Summary
}

func (s *ratingStore) Apply(_ context.Context, id string, compute func([]int) rating.Summary) (rating.Summary, error) {
	s.repo.mu.Lock()
	var ratings []int
	for _, rv := range s.repo.reviews {
		if rv.RestaurantID == id {
			ratings = append(ratings, rv.Rating)
		}
	}
	s.repo.mu.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	sum := compute(ratings)
	s.summaries[id] = sum
	return sum, nil
}

func (s *ratingStore) RestaurantIDs(context.Context, string, int) ([]string, error) {
	return nil, nil
}

func (s *ratingStore) summary(id string) rating.Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.summaries[id]
}

type noStale struct{}

func (noStale) Mark(context.Context, string) error          { return nil }
func (noStale) Peek(context.Context, int) ([]string, error) { return nil, nil }
func (noStale) Clear(context.Context, string) error         { return nil }

type fakeRestaurants struct {
	active      map[string]bool
	invalidated int
}

func (f *fakeRestaurants) EnsureActive(_ context.Context, id string) error {
	if !f.active[id] {
		return core.ErrNotFound
	}
	return nil
}

func (f *fakeRestaurants) InvalidateDetail(context.Context, string) {
	f.invalidated++
}

type harness struct {
	svc   *Service
	repo  *fakeRepo
	store *ratingStore
	rests *fakeRestaurants
	rid   string
}

func newHarness() *harness {
	rid := uuid.NewString()
	repo := newFakeRepo()
	store := &ratingStore{repo: repo, summaries: map[string]rating.Summary{}}
	agg := rating.NewAggregator(store, noStale{}, config.RatingConfig{
		RetryAttempts:        3,
		RetryInitialInterval: time.Millisecond,
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	rests := &fakeRestaurants{active: map[string]bool{rid: true}}
	return &harness{
		svc:   NewService(repo, rests, agg),
		repo:  repo,
		store: store,
		rests: rests,
		rid:   rid,
	}
}

func TestRatingFollowsReviewSet(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	var ids []string
	for _, stars := range []int{5, 4, 3} {
		rv, err := h.svc.Create(ctx, h.rid, uuid.NewString(), CreateReviewRequest{Rating: stars})
		if err != nil {
			t.Fatalf("Create(%d): %v", stars, err)
		}
		ids = append(ids, rv.ID)
	}

	if got := h.store.summary(h.rid); got != (rating.Summary{Rating: 4.0, TotalReviews: 3}) {
		t.Fatalf("after three reviews = %+v", got)
	}

	rv3, _ := h.repo.GetByID(ctx, ids[2])
	if err := h.svc.Delete(ctx, ids[2], rv3.UserID, false); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	if got := h.store.summary(h.rid); got != (rating.Summary{Rating: 4.5, TotalReviews: 2}) {
		t.Fatalf("after delete = %+v", got)
	}

	rv1, _ := h.repo.GetByID(ctx, ids[0])
	two := 2
	if _, err := h.svc.Update(ctx, ids[0], rv1.UserID, UpdateReviewRequest{Rating: &two}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got := h.store.summary(h.rid); got != (rating.Summary{Rating: 3.0, TotalReviews: 2}) {
		t.Fatalf("after update = %+v", got)
	}

	if h.rests.invalidated != 5 {
		t.Errorf("invalidations = %d, want 5", h.rests.invalidated)
	}
}

func TestCreateRules(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	user := uuid.NewString()

	if _, err := h.svc.Create(ctx, h.rid, user, CreateReviewRequest{Rating: 4}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	_, err := h.svc.Create(ctx, h.rid, user, CreateReviewRequest{Rating: 2})
	if !errors.Is(err, core.ErrConflict) {
		t.Fatalf("duplicate err = %v, want conflict", err)
	}

	if _, err := h.svc.Create(ctx, uuid.NewString(), user, CreateReviewRequest{Rating: 2}); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("unknown restaurant err = %v", err)
	}

	if got := h.store.summary(h.rid); got.TotalReviews != 1 {
		t.Errorf("total = %d, want 1", got.TotalReviews)
	}
}

func TestOwnership(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	author := uuid.NewString()
	other := uuid.NewString()

	rv, err := h.svc.Create(ctx, h.rid, author, CreateReviewRequest{Rating: 5})
	if err != nil {
		t.Fatal(err)
	}

	one := 1
	if _, err := h.svc.Update(ctx, rv.ID, other, UpdateReviewRequest{Rating: &one}); !errors.Is(err, core.ErrForbidden) {
		t.Errorf("foreign update err = %v", err)
	}
	if err := h.svc.Delete(ctx, rv.ID, other, false); !errors.Is(err, core.ErrForbidden) {
		t.Errorf("foreign delete err = %v", err)
	}
	if err := h.svc.Delete(ctx, rv.ID, other, true); err != nil {
		t.Errorf("admin delete: %v", err)
	}
	if err := h.svc.Delete(ctx, rv.ID, author, false); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("second delete err = %v", err)
	}
}

func TestToggleHelpful(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	rv, err := h.svc.Create(ctx, h.rid, uuid.NewString(), CreateReviewRequest{Rating: 3})
	if err != nil {
		t.Fatal(err)
	}

	voter := uuid.NewString()
	got, err := h.svc.ToggleHelpful(ctx, rv.ID, voter)
	if err != nil || !got.Helpful || got.HelpfulCount != 1 {
		t.Fatalf("first toggle = %+v, %v", got, err)
	}
	got, err = h.svc.ToggleHelpful(ctx, rv.ID, voter)
	if err != nil || got.Helpful || got.HelpfulCount != 0 {
		t.Fatalf("second toggle = %+v, %v", got, err)
	}
}

func TestHandlerCreate(t *testing.T) {
	h := newHarness()
	handler := NewHandler(h.svc, 50)

	user := uuid.NewString()
	authenticate := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := middleware.WithClaims(r.Context(), &middleware.AccessTokenClaims{
				UserID: user,
				Role:   "user",
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}

	r := chi.NewRouter()
	handler.RegisterRoutes(r, authenticate)

	post := func(body string) int {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/restaurants/"+h.rid+"/reviews", strings.NewReader(body))
		r.ServeHTTP(rec, req)
		return rec.Code
	}

	if code := post(`{"rating":6}`); code != http.StatusBadRequest {
		t.Errorf("out of range code = %d", code)
	}
	if code := post(`{"rating":4,"comment":"` + strings.Repeat("x", 501) + `"}`); code != http.StatusBadRequest {
		t.Errorf("long comment code = %d", code)
	}
	if code := post(`{"rating":4,"comment":"good"}`); code != http.StatusCreated {
		t.Errorf("valid code = %d", code)
	}
	if code := post(`{"rating":2}`); code != http.StatusConflict {
		t.Errorf("duplicate code = %d", code)
	}

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/restaurants/"+h.rid+"/reviews?limit=500", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"limit":50`) {
		t.Errorf("list = %d %s", rec.Code, rec.Body.String())
	}
}

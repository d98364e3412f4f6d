// AngelaMos | 2026
// service_test.go

package reservation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/carterperez-dev/templates/tablebook/internal/config"
	"github.com/carterperez-dev/templates/tablebook/internal/core"
	"github.com/carterperez-dev/templates/tablebook/internal/middleware"
)

// fakeRepo enforces the same uniqueness rules as the partial index and
// the confirmation code constraint.
type fakeRepo struct {
	mu           sync.Mutex
	rows         map[string]Reservation
	codeCollides int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{rows: map[string]Reservation{}}
}

func (f *fakeRepo) slotTaken(rs *Reservation) bool {
	for id, other := range f.rows {
		if id == rs.ID || !other.Status.HoldsSlot() || !rs.Status.HoldsSlot() {
			continue
		}
		if other.RestaurantID == rs.RestaurantID && other.Date.Equal(rs.Date) && other.Time == rs.Time {
			return true
		}
	}
	return false
}

func (f *fakeRepo) Create(_ context.Context, rs *Reservation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.codeCollides > 0 {
		f.codeCollides--
		return errCodeTaken
	}
	for _, other := range f.rows {
		if other.ConfirmationCode == rs.ConfirmationCode {
			return errCodeTaken
		}
	}
	if f.slotTaken(rs) {
		return slotConflict()
	}
	rs.CreatedAt = time.Now()
	rs.UpdatedAt = rs.CreatedAt
	f.rows[rs.ID] = *rs
	return nil
}

func (f *fakeRepo) GetByID(_ context.Context, id string) (*Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rs, ok := f.rows[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	rs.RestaurantName = "Luigi's"
	return &rs, nil
}

func (f *fakeRepo) GetByCode(_ context.Context, code string) (*Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, rs := range f.rows {
		if rs.ConfirmationCode == code {
			return &rs, nil
		}
	}
	return nil, core.ErrNotFound
}

func (f *fakeRepo) List(_ context.Context, filter Filter) ([]Reservation, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Reservation
	for _, rs := range f.rows {
		if filter.UserID != "" && rs.UserID != filter.UserID {
			continue
		}
		if filter.RestaurantID != "" && rs.RestaurantID != filter.RestaurantID {
			continue
		}
		if filter.Status != "" && rs.Status != filter.Status {
			continue
		}
		if filter.Date != nil && !rs.Date.Equal(*filter.Date) {
			continue
		}
		out = append(out, rs)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].Time > out[j].Time
	})
	total := len(out)
	if filter.Offset >= total {
		return []Reservation{}, total, nil
	}
	return out[filter.Offset:min(filter.Offset+filter.Limit, total)], total, nil
}

func (f *fakeRepo) Mutate(_ context.Context, id string, fn func(*Reservation) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	rs, ok := f.rows[id]
	if !ok {
		return core.ErrNotFound
	}
	if err := fn(&rs); err != nil {
		return err
	}
	if f.slotTaken(&rs) {
		return slotConflict()
	}
	f.rows[id] = rs
	return nil
}

func (f *fakeRepo) CountByStatus(context.Context) (map[Status]int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	counts := map[Status]int{}
	for _, rs := range f.rows {
		counts[rs.Status]++
	}
	return counts, nil
}

type fakeRestaurants struct{ active map[string]bool }

func (f *fakeRestaurants) EnsureActive(_ context.Context, id string) error {
	if !f.active[id] {
		return core.ErrNotFound
	}
	return nil
}

var fixedNow = time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)

type harness struct {
	svc  *Service
	repo *fakeRepo
	rid  string
}

func newHarness() *harness {
	rid := uuid.NewString()
	repo := newFakeRepo()
	svc := NewService(
		repo,
		&fakeRestaurants{active: map[string]bool{rid: true}},
		config.ReservationConfig{MaxGuests: 20, CodeAttempts: 3, MaxPageSize: 50},
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)
	svc.now = func() time.Time { return fixedNow }
	return &harness{svc: svc, repo: repo, rid: rid}
}

func (h *harness) request(date, clock string) CreateReservationRequest {
	return CreateReservationRequest{
		RestaurantID: h.rid,
		Date:         date,
		Time:         clock,
		Guests:       4,
		ContactName:  "Ada",
		ContactPhone: "555-0100",
		ContactEmail: "Ada@Example.com",
	}
}

func TestCreateAndConflict(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	user := uuid.NewString()

	rs, err := h.svc.Create(ctx, user, h.request("2030-01-01", "19:00"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if rs.Status != StatusPending || rs.ContactEmail != "ada@example.com" || rs.RestaurantName == "" {
		t.Errorf("unexpected reservation: %+v", rs)
	}
	if !strings.HasPrefix(rs.ConfirmationCode, "RES") || len(rs.ConfirmationCode) != 12 {
		t.Errorf("code = %q", rs.ConfirmationCode)
	}

	_, err = h.svc.Create(ctx, uuid.NewString(), h.request("2030-01-01", "19:00"))
	if !errors.Is(err, core.ErrConflict) {
		t.Fatalf("second booking err = %v, want conflict", err)
	}

	if _, err := h.svc.Create(ctx, user, h.request("2030-01-01", "9:00")); err != nil {
		t.Fatalf("other slot: %v", err)
	}
	_, err = h.svc.Create(ctx, user, h.request("2030-01-01", "09:00"))
	if !errors.Is(err, core.ErrConflict) {
		t.Errorf("padded duplicate err = %v, want conflict", err)
	}

	if _, err := h.svc.Cancel(ctx, rs.ID, user); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if _, err := h.svc.Create(ctx, uuid.NewString(), h.request("2030-01-01", "19:00")); err != nil {
		t.Errorf("slot should free up after cancel: %v", err)
	}
}

func TestCreateValidation(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	tests := []struct {
		name  string
		mod   func(*CreateReservationRequest)
		check error
	}{
		{"past date", func(r *CreateReservationRequest) { r.Date = "2020-01-01" }, core.ErrInvalidInput},
		{"today", func(r *CreateReservationRequest) { r.Date = "2026-06-15" }, core.ErrInvalidInput},
		{"bad time", func(r *CreateReservationRequest) { r.Time = "25:00" }, core.ErrInvalidInput},
		{"too many guests", func(r *CreateReservationRequest) { r.Guests = 21 }, core.ErrInvalidInput},
		{"unknown restaurant", func(r *CreateReservationRequest) { r.RestaurantID = uuid.NewString() }, core.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := h.request("2030-01-01", "19:00")
			tt.mod(&req)
			_, err := h.svc.Create(ctx, uuid.NewString(), req)
			if !errors.Is(err, tt.check) {
				t.Fatalf("err = %v, want %v", err, tt.check)
			}
		})
	}
}

func TestCodeCollisionRetries(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	h.repo.codeCollides = 2
	if _, err := h.svc.Create(ctx, uuid.NewString(), h.request("2030-01-01", "19:00")); err != nil {
		t.Fatalf("Create after collisions: %v", err)
	}

	h.repo.codeCollides = 3
	_, err := h.svc.Create(ctx, uuid.NewString(), h.request("2030-01-02", "19:00"))
	if !errors.Is(err, errCodeExhausted) {
		t.Fatalf("err = %v, want exhausted", err)
	}
}

func TestConcurrentCreateSingleWinner(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	var wins, conflicts atomic.Int32
	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := h.svc.Create(ctx, uuid.NewString(), h.request("2030-01-01", "19:00"))
			switch {
			case err == nil:
				wins.Add(1)
			case errors.Is(err, core.ErrConflict):
				conflicts.Add(1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if wins.Load() != 1 || conflicts.Load() != 19 {
		t.Errorf("wins=%d conflicts=%d", wins.Load(), conflicts.Load())
	}
}

func TestUpdateRules(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	owner := uuid.NewString()

	rs, err := h.svc.Create(ctx, owner, h.request("2030-01-01", "19:00"))
	if err != nil {
		t.Fatal(err)
	}
	other, err := h.svc.Create(ctx, owner, h.request("2030-01-01", "20:00"))
	if err != nil {
		t.Fatal(err)
	}

	guests := 6
	updated, err := h.svc.Update(ctx, rs.ID, owner, UpdateReservationRequest{Guests: &guests})
	if err != nil || updated.Guests != 6 {
		t.Fatalf("Update = %+v, %v", updated, err)
	}

	if _, err := h.svc.Update(ctx, rs.ID, uuid.NewString(), UpdateReservationRequest{Guests: &guests}); !errors.Is(err, core.ErrForbidden) {
		t.Errorf("foreign update err = %v", err)
	}

	past := "2020-01-01"
	if _, err := h.svc.Update(ctx, rs.ID, owner, UpdateReservationRequest{Date: &past}); !errors.Is(err, core.ErrInvalidInput) {
		t.Errorf("past date err = %v", err)
	}

	taken := "20:00"
	if _, err := h.svc.Update(ctx, rs.ID, owner, UpdateReservationRequest{Time: &taken}); !errors.Is(err, core.ErrConflict) {
		t.Errorf("move into occupied slot err = %v", err)
	}

	got, _ := h.repo.GetByID(ctx, rs.ID)
	if got.Time != "19:00" || got.Guests != 6 {
		t.Errorf("failed updates leaked: %+v", got)
	}

	if _, err := h.svc.Cancel(ctx, other.ID, owner); err != nil {
		t.Fatal(err)
	}
	if _, err := h.svc.Update(ctx, other.ID, owner, UpdateReservationRequest{Guests: &guests}); !errors.Is(err, core.ErrInvalidState) {
		t.Errorf("update cancelled err = %v", err)
	}
	if _, err := h.svc.Cancel(ctx, other.ID, owner); !errors.Is(err, core.ErrInvalidState) {
		t.Errorf("double cancel err = %v", err)
	}
	if _, err := h.svc.Update(ctx, uuid.NewString(), owner, UpdateReservationRequest{}); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("missing update err = %v", err)
	}
}

func TestAdminTransitions(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	owner := uuid.NewString()

	rs, err := h.svc.Create(ctx, owner, h.request("2030-01-01", "19:00"))
	if err != nil {
		t.Fatal(err)
	}

	table := "T4"
	confirmed, err := h.svc.Transition(ctx, rs.ID, UpdateStatusRequest{Status: "confirmed", TableNumber: &table})
	if err != nil || confirmed.Status != StatusConfirmed || confirmed.TableNumber != "T4" {
		t.Fatalf("confirm = %+v, %v", confirmed, err)
	}

	if _, err := h.svc.Transition(ctx, rs.ID, UpdateStatusRequest{Status: "pending"}); !errors.Is(err, core.ErrInvalidState) {
		t.Errorf("confirmed->pending err = %v", err)
	}

	if _, err := h.svc.Transition(ctx, rs.ID, UpdateStatusRequest{Status: "completed"}); err != nil {
		t.Fatalf("complete: %v", err)
	}

	if _, err := h.svc.Cancel(ctx, rs.ID, owner); !errors.Is(err, core.ErrInvalidState) {
		t.Errorf("cancel completed err = %v", err)
	}

	list, total, err := h.svc.AdminList(ctx, AdminListParams{
		ListParams:   ListParams{Status: StatusCompleted},
		RestaurantID: h.rid,
		Date:         "2030-01-01",
	})
	if err != nil || total != 1 || list[0].ID != rs.ID {
		t.Errorf("admin list = %d, %v", total, err)
	}

	if _, _, err := h.svc.AdminList(ctx, AdminListParams{Date: "01/01/2030"}); !errors.Is(err, core.ErrInvalidInput) {
		t.Errorf("bad date filter err = %v", err)
	}
}

func TestListAndLookup(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	owner := uuid.NewString()

	var last *Reservation
	for day := 1; day <= 3; day++ {
		rs, err := h.svc.Create(ctx, owner, h.request(fmt.Sprintf("2030-01-%02d", day), "19:00"))
		if err != nil {
			t.Fatal(err)
		}
		last = rs
	}
	if _, err := h.svc.Create(ctx, uuid.NewString(), h.request("2030-01-05", "19:00")); err != nil {
		t.Fatal(err)
	}

	list, total, err := h.svc.List(ctx, owner, ListParams{Page: 1, Limit: 2})
	if err != nil || total != 3 || len(list) != 2 || list[0].ID != last.ID {
		t.Fatalf("list = %d items, total %d, %v", len(list), total, err)
	}

	if _, _, err := h.svc.List(ctx, owner, ListParams{Status: "lost"}); !errors.Is(err, core.ErrInvalidInput) {
		t.Errorf("bad status err = %v", err)
	}

	found, err := h.svc.Lookup(ctx, strings.ToLower(last.ConfirmationCode))
	if err != nil || found.ID != last.ID {
		t.Fatalf("Lookup = %+v, %v", found, err)
	}

	if _, err := h.svc.Get(ctx, last.ID, uuid.NewString()); !errors.Is(err, core.ErrForbidden) {
		t.Errorf("foreign get err = %v", err)
	}
}

func TestHandlerFlow(t *testing.T) {
	h := newHarness()
	handler := NewHandler(h.svc)
	owner := uuid.NewString()

	authenticate := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := middleware.WithClaims(r.Context(), &middleware.AccessTokenClaims{UserID: owner, Role: "user"})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
	pass := func(next http.Handler) http.Handler { return next }

	r := chi.NewRouter()
	handler.RegisterRoutes(r, authenticate, pass)

	body := `{"restaurant_id":"` + h.rid + `","date":"2030-01-01","time":"19:00","guests":4,` +
		`"contact_name":"Ada","contact_phone":"555","contact_email":"ada@example.com"}`

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/reservations", strings.NewReader(body)))
	if rec.Code != http.StatusCreated {
		t.Fatalf("create code = %d: %s", rec.Code, rec.Body.String())
	}

	var created struct {
		Data ReservationResponse `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatal(err)
	}
	if created.Data.Date != "2030-01-01" || created.Data.Status != "pending" {
		t.Errorf("created = %+v", created.Data)
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/reservations", strings.NewReader(body)))
	if rec.Code != http.StatusConflict {
		t.Errorf("duplicate code = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/reservations",
		strings.NewReader(strings.Replace(body, `"guests":4`, `"guests":0`, 1))))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("zero guests code = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/reservations/confirm/"+created.Data.ConfirmationCode+"/qr", nil))
	if rec.Code != http.StatusOK || rec.Header().Get("Content-Type") != "image/png" {
		t.Fatalf("qr = %d %s", rec.Code, rec.Header().Get("Content-Type"))
	}
	if !strings.HasPrefix(rec.Body.String(), "\x89PNG") {
		t.Error("qr body is not a PNG")
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/reservations/confirm/RES000000AAA", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown code = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/reservations/"+created.Data.ID+"/cancel", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("cancel code = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/reservations/"+created.Data.ID+"/cancel", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("second cancel code = %d", rec.Code)
	}
}

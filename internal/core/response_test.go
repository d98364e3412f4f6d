// AngelaMos | 2026
// response_test.go

package core

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) Response {
	t.Helper()
	var resp Response
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return resp
}

func TestHandleErrorMapping(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		code    string
		message string
	}{
		{"not found", fmt.Errorf("get: %w", ErrNotFound), http.StatusNotFound, "NOT_FOUND", "reservation not found"},
		{"forbidden", fmt.Errorf("x: %w", ErrForbidden), http.StatusForbidden, "FORBIDDEN", ""},
		{"conflict", NewDomainError(ErrConflict, "This time slot is already booked"), http.StatusConflict, "CONFLICT", "This time slot is already booked"},
		{"invalid state", NewDomainError(ErrInvalidState, "Reservation is already cancelled"), http.StatusBadRequest, "INVALID_STATE", "Reservation is already cancelled"},
		{"unavailable", StoreError("get", context.DeadlineExceeded), http.StatusInternalServerError, "UNAVAILABLE", ""},
		{"validation", ValidationError(FieldError{Field: "date", Message: "must be in the future"}), http.StatusBadRequest, "VALIDATION_ERROR", "validation failed"},
		{"unexpected", fmt.Errorf("boom"), http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			HandleError(rec, tt.err, "reservation")

			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d", rec.Code, tt.status)
			}
			resp := decodeResponse(t, rec)
			if resp.Success {
				t.Error("success must be false")
			}
			if resp.Code != tt.code {
				t.Errorf("code = %q, want %q", resp.Code, tt.code)
			}
			if tt.message != "" && resp.Message != tt.message {
				t.Errorf("message = %q, want %q", resp.Message, tt.message)
			}
		})
	}
}

func TestInternalErrorDoesNotLeak(t *testing.T) {
	rec := httptest.NewRecorder()
	HandleError(rec, fmt.Errorf("pq: password authentication failed for user admin"), "thing")

	resp := decodeResponse(t, rec)
	if resp.Message != "internal server error" {
		t.Errorf("internal detail leaked: %q", resp.Message)
	}
}

func TestPaginated(t *testing.T) {
	rec := httptest.NewRecorder()
	Paginated(rec, []int{1, 2}, 2, 2, 10, 21)

	var resp PaginatedResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Pagination.Pages != 3 || resp.Total != 21 || resp.Count != 2 {
		t.Errorf("unexpected pagination %+v total=%d count=%d", resp.Pagination, resp.Total, resp.Count)
	}
}

// AngelaMos | 2026
// repository_test.go

package review

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/carterperez-dev/templates/tablebook/internal/core"
)

func TestMapCreateError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		conflict bool
		unavail  bool
	}{
		{
			name:     "second review by same user",
			err:      &pgconn.PgError{Code: "23505", ConstraintName: uniqueReviewConstraint},
			conflict: true,
		},
		{
			name:     "wrapped second review",
			err:      fmt.Errorf("scan: %w", &pgconn.PgError{Code: "23505", ConstraintName: uniqueReviewConstraint}),
			conflict: true,
		},
		{
			name: "other unique index",
			err:  &pgconn.PgError{Code: "23505", ConstraintName: "reviews_pkey"},
		},
		{
			name: "foreign key violation",
			err:  fmt.Errorf("scan: %w", &pgconn.PgError{Code: "23503", ConstraintName: uniqueReviewConstraint}),
		},
		{
			name:    "deadline",
			err:     context.DeadlineExceeded,
			unavail: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mapCreateError(tt.err)
			if errors.Is(got, core.ErrConflict) != tt.conflict {
				t.Errorf("conflict = %v, want %v (%v)", !tt.conflict, tt.conflict, got)
			}
			if errors.Is(got, core.ErrUnavailable) != tt.unavail {
				t.Errorf("unavailable = %v, want %v (%v)", !tt.unavail, tt.unavail, got)
			}
			if !tt.conflict && !errors.Is(got, tt.err) {
				t.Errorf("cause lost: %v", got)
			}
		})
	}
}

// AngelaMos | 2026
// schedule.go

package reservation

import (
	"fmt"
	"strings"
	"time"

	"github.com/carterperez-dev/templates/tablebook/internal/core"
)

const (
	dateLayout   = "2006-01-02"
	codePrefix   = "RES"
	codeDigits   = "0123456789"
	codeAlphaNum = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// ParseDate accepts YYYY-MM-DD or RFC 3339 and returns the calendar date
// as written, at midnight UTC. An offset picks the day in that offset,
// not in UTC. The instant named by the input must be strictly after now;
// a bare date names its midnight UTC.
func ParseDate(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)

	instant, err := time.Parse(dateLayout, s)
	if err != nil {
		instant, err = time.Parse(time.RFC3339, s)
		if err != nil {
			return time.Time{}, core.ValidationError(core.FieldError{
				Field:   "date",
				Message: "must be a valid date",
			})
		}
	}

	if !instant.After(now) {
		return time.Time{}, core.ValidationError(core.FieldError{
			Field:   "date",
			Message: "must be in the future",
		})
	}

	y, m, d := instant.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
}

// NormalizeTime zero-pads H:MM so 9:05 and 09:05 name the same slot.
func NormalizeTime(s string) (string, error) {
	s = strings.TrimSpace(s)
	if !core.IsClockTime(s) {
		return "", core.ValidationError(core.FieldError{
			Field:   "time",
			Message: "must be a valid time in HH:MM format",
		})
	}

	var h, m int
	if _, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil {
		return "", core.ValidationError(core.FieldError{
			Field:   "time",
			Message: "must be a valid time in HH:MM format",
		})
	}

	return fmt.Sprintf("%02d:%02d", h, m), nil
}

// NewConfirmationCode returns RES followed by six digits and three
// uppercase alphanumerics. Uniqueness is left to the store.
func NewConfirmationCode() (string, error) {
	digits, err := core.RandomString(codeDigits, 6)
	if err != nil {
		return "", err
	}

	suffix, err := core.RandomString(codeAlphaNum, 3)
	if err != nil {
		return "", err
	}

	return codePrefix + digits + suffix, nil
}

func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

package validators

import (
	"time"

	"github.com/go-playground/validator/v10"
)

// IsIso8601 accepts RFC3339 timestamps ("2025-10-14T14:00:00Z").
func IsIso8601(fl validator.FieldLevel) bool {
	_, err := time.Parse(time.RFC3339, fl.Field().String())
	return err == nil
}

// IsDateOnly accepts calendar days ("2025-10-14").
func IsDateOnly(fl validator.FieldLevel) bool {
	_, err := time.Parse("2006-01-02", fl.Field().String())
	return err == nil
}

// IsClock accepts zero-padded times of day ("09:30"). Zero padding matters:
// booking overlap checks compare these strings lexicographically, and
// time.Parse alone would let "9:30" through.
func IsClock(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	t, err := time.Parse("15:04", s)
	return err == nil && s == t.Format("15:04")
}

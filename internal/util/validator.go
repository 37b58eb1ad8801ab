package util

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"carbon-tracker/internal/emission"
)

// ErrValidation marks input rejected before any footprint is computed.
var ErrValidation = errors.New("validation failed")

const (
	maxAmount         = 10000000
	maxCategoryLen    = 32
	maxUnitLen        = 16
	maxDescriptionLen = 500
	// dateSkew tolerates client clocks running slightly ahead.
	dateSkew = 5 * time.Minute
)

var emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// MissingField reports a required field absent from the request.
func MissingField(name string) error {
	return invalid("%s is required", name)
}

// ValidateType accepts only the activity types that have an emission table.
func ValidateType(activityType string) error {
	if activityType == "" {
		return invalid("type is required")
	}
	if !emission.IsValidType(activityType) {
		return invalid("unknown activity type %q", activityType)
	}
	return nil
}

// ValidateAmount requires a finite, non-negative amount below the sanity ceiling.
func ValidateAmount(amount float64) error {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return invalid("amount must be a finite number")
	}
	if amount < 0 {
		return invalid("amount must not be negative, got %g", amount)
	}
	if amount >= maxAmount {
		return invalid("amount too large, got %g", amount)
	}
	return nil
}

// ValidateCategory checks presence and length only. A category without a factor is
// accepted and simply yields a zero footprint.
func ValidateCategory(category string) error {
	if category == "" {
		return invalid("category is required")
	}
	if utf8.RuneCountInString(category) > maxCategoryLen {
		return invalid("category too long, max %d characters", maxCategoryLen)
	}
	return nil
}

// ValidateUnit requires a non-empty unit of bounded length.
func ValidateUnit(unit string) error {
	if unit == "" {
		return invalid("unit is required")
	}
	if utf8.RuneCountInString(unit) > maxUnitLen {
		return invalid("unit too long, max %d characters", maxUnitLen)
	}
	return nil
}

// ValidateDescription bounds the length of the optional description.
func ValidateDescription(description string) error {
	if utf8.RuneCountInString(description) > maxDescriptionLen {
		return invalid("description too long, max %d characters", maxDescriptionLen)
	}
	return nil
}

// ValidateActivity runs every field check of an activity write, in field order.
func ValidateActivity(activityType, category string, amount float64, unit, description string) error {
	if err := ValidateType(activityType); err != nil {
		return err
	}
	if err := ValidateCategory(category); err != nil {
		return err
	}
	if err := ValidateAmount(amount); err != nil {
		return err
	}
	if err := ValidateUnit(unit); err != nil {
		return err
	}
	return ValidateDescription(description)
}

// ParseDate accepts RFC3339 or YYYY-MM-DD (midnight UTC). An empty string returns the zero
// time so callers can apply their own default. Dates after now are rejected.
func ParseDate(dateStr string, now time.Time) (time.Time, error) {
	dateStr = strings.TrimSpace(dateStr)
	if dateStr == "" {
		return time.Time{}, nil
	}

	t, err := time.Parse(time.RFC3339, dateStr)
	if err != nil {
		t, err = time.Parse("2006-01-02", dateStr)
		if err != nil {
			return time.Time{}, invalid("invalid date %q, want RFC3339 or YYYY-MM-DD", dateStr)
		}
	}
	if t.After(now.Add(dateSkew)) {
		return time.Time{}, invalid("date %s is in the future", dateStr)
	}
	return t.UTC(), nil
}

func ValidateEmail(email string) error {
	if !emailRe.MatchString(email) || len(email) > 255 {
		return invalid("invalid email address")
	}
	return nil
}

func ValidateName(name string) error {
	n := utf8.RuneCountInString(name)
	if n == 0 || n > 64 {
		return invalid("name must be 1-64 characters")
	}
	return nil
}

// ValidatePassword requires 8-32 characters with upper case, lower case and a digit.
func ValidatePassword(pwd string) error {
	if len(pwd) < 8 || len(pwd) > 32 {
		return invalid("password must be 8-32 characters")
	}
	var hasUpper, hasLower, hasDigit bool
	for _, ch := range pwd {
		switch {
		case ch >= 'A' && ch <= 'Z':
			hasUpper = true
		case ch >= 'a' && ch <= 'z':
			hasLower = true
		case ch >= '0' && ch <= '9':
			hasDigit = true
		}
	}
	if !hasUpper || !hasLower || !hasDigit {
		return invalid("password must contain upper case, lower case and a digit")
	}
	return nil
}

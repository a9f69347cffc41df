// Package validation implements the input checks applied to user
// mutations: password strength, e-mail syntax and uniqueness, and birth
// date format/range. All checks are pure; uniqueness delegates the
// existence lookup to the caller.
package validation

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/apetrovs/databoard/internal/common"
)

const birthDateLayout = "02/01/2006"

var (
	emailRegex     = regexp.MustCompile(`^(([^<>()[\]\\.,;:\s@"]+(\.[^<>()[\]\\.,;:\s@"]+)*)|(".+"))@((\[[0-9]{1,3}\.[0-9]{1,3}\.[0-9]{1,3}\.[0-9]{1,3}\])|(([a-zA-Z0-9-]+\.)+[a-zA-Z]{2,}))$`)
	birthDateShape = regexp.MustCompile(`^\d{2}/\d{2}/\d{4}$`)
	hasLetter      = regexp.MustCompile(`[A-Za-z]`)
	hasDigit       = regexp.MustCompile(`\d`)
)

// ValidatePassword requires at least 7 characters with at least one
// ASCII letter and one digit.
func ValidatePassword(password string) error {
	if len(password) < 7 || !hasLetter.MatchString(password) || !hasDigit.MatchString(password) {
		return common.ErrWeakPassword
	}
	return nil
}

// ValidateEmailSyntax requires a local@domain shape where the domain is
// either dot-separated labels ending in a 2+ letter TLD or a bracketed
// IPv4 literal.
func ValidateEmailSyntax(email string) error {
	if !emailRegex.MatchString(email) {
		return common.ErrInvalidEmail
	}
	return nil
}

// ValidateEmailUniqueness fails with ErrEmailTaken when a user with the
// given e-mail already exists. The existence check itself belongs to the
// persistence layer.
func ValidateEmailUniqueness(ctx context.Context, email string, exists func(ctx context.Context, email string) (bool, error)) error {
	taken, err := exists(ctx, email)
	if err != nil {
		return fmt.Errorf("checking e-mail uniqueness: %w", err)
	}
	if taken {
		return common.ErrEmailTaken
	}
	return nil
}

// ValidateBirthDate requires dateStr to be a real calendar date in
// dd/mm/yyyy form that is not later than now. The comparison is
// date-only; time of day is ignored.
func ValidateBirthDate(dateStr string, now time.Time) error {
	d, err := ParseBirthDate(dateStr)
	if err != nil {
		return err
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if d.After(today) {
		return common.ErrFutureDate
	}
	return nil
}

// ParseBirthDate parses a dd/mm/yyyy string into a date at midnight UTC.
// Calendar bounds (month lengths, leap years) are enforced by time.Parse.
func ParseBirthDate(dateStr string) (time.Time, error) {
	if !birthDateShape.MatchString(dateStr) {
		return time.Time{}, common.ErrBadDateFormat
	}
	d, err := time.Parse(birthDateLayout, dateStr)
	if err != nil {
		return time.Time{}, common.ErrBadDateFormat
	}
	return d, nil
}

// FormatBirthDate renders a date in the dd/mm/yyyy wire form.
func FormatBirthDate(d time.Time) string {
	return d.Format(birthDateLayout)
}

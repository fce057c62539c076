package utils

import (
	"time"

	"github.com/julianstephens/streakline/internal/constants"
)

// LoadLocation loads a timezone location from an IANA timezone name.
// If the timezone is "Local" or empty, it returns the system's local timezone.
func LoadLocation(timezone string) (*time.Location, error) {
	if timezone == "" || timezone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(timezone)
}

// ParseDateInLocation parses a date string (YYYY-MM-DD) in the specified timezone.
func ParseDateInLocation(dateStr string, loc *time.Location) (time.Time, error) {
	t, err := time.Parse(constants.DateFormat, dateStr)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc), nil
}

// AddDays shifts a YYYY-MM-DD date by n calendar days.
func AddDays(dateStr string, n int) (string, error) {
	t, err := time.Parse(constants.DateFormat, dateStr)
	if err != nil {
		return "", err
	}
	return time.Date(t.Year(), t.Month(), t.Day()+n, 0, 0, 0, 0, time.UTC).Format(constants.DateFormat), nil
}

// IsValidDate reports whether s is a real calendar date in YYYY-MM-DD form.
func IsValidDate(s string) bool {
	_, err := time.Parse(constants.DateFormat, s)
	return err == nil
}

// ValidateTimezone checks if the timezone name is valid.
func ValidateTimezone(timezone string) bool {
	if timezone == "" || timezone == "Local" {
		return true
	}
	_, err := time.LoadLocation(timezone)
	return err == nil
}

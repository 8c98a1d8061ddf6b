package utils

import (
	"fmt"
	"time"

	"github.com/julianstephens/habitchain/internal/constants"
)

// LoadLocation loads a timezone location from an IANA timezone name.
// If the timezone is "Local" or empty, it returns the system's local timezone.
func LoadLocation(timezone string) (*time.Location, error) {
	if timezone == "" || timezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", timezone, err)
	}
	return loc, nil
}

// ValidateTimezone checks if the timezone name is valid.
func ValidateTimezone(timezone string) bool {
	_, err := LoadLocation(timezone)
	return err == nil
}

// DayKey returns the calendar date (YYYY-MM-DD) of t in loc.
func DayKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(constants.DateFormat)
}

// PreviousDayKey returns the calendar date one day before t in loc.
// Noon is used as the anchor so DST transitions never skip or repeat a date.
func PreviousDayKey(t time.Time, loc *time.Location) string {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d-1, 12, 0, 0, 0, loc).Format(constants.DateFormat)
}

// FormatTimestamp renders t in the persisted timestamp format.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(constants.TimestampFormat)
}

// NowTimestamp returns the current time in the persisted timestamp format.
func NowTimestamp() string {
	return FormatTimestamp(time.Now())
}

// ParseTimestamp parses an RFC3339 timestamp, with or without fractional seconds.
func ParseTimestamp(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, s)
}

// TimestampPtr returns a pointer to the formatted timestamp of t.
func TimestampPtr(t time.Time) *string {
	s := FormatTimestamp(t)
	return &s
}

package constants

const (
	// DateFormat is the calendar day format used for streak comparison (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// TimeFormat is the reminder time format (HH:MM)
	TimeFormat = "15:04"
)

// TimestampFormat is the persisted timestamp format: RFC3339 in UTC with millisecond precision
const TimestampFormat = "2006-01-02T15:04:05.000Z07:00"

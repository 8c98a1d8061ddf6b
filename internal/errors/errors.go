package errors

import (
	stderrors "errors"
	"fmt"
	"os"

	"github.com/julianstephens/habitchain/internal/logger"
)

// Error taxonomy. Callers wrap these with fmt.Errorf("...: %w") and test with errors.Is.
var (
	// ErrValidation is returned when input fails sanitization or shape checks
	ErrValidation = stderrors.New("validation failed")
	// ErrRateLimited is returned when an action exceeds its rate limit window
	ErrRateLimited = stderrors.New("rate limit exceeded")
	// ErrIntegrity is returned when a checksum does not match its payload
	ErrIntegrity = stderrors.New("integrity check failed")
	// ErrSizeLimit is returned when a payload exceeds its size cap
	ErrSizeLimit = stderrors.New("size limit exceeded")
	// ErrNotFound is returned when a chain or habit does not exist
	ErrNotFound = stderrors.New("not found")
	// ErrInvalidKey is returned for storage keys outside the allowed format
	ErrInvalidKey = stderrors.New("invalid storage key")
	// ErrNotInitialized is returned when the data store has never been created
	ErrNotInitialized = stderrors.New("storage not initialized, run 'habitchain init' first")
)

// Validationf returns an ErrValidation wrapping a formatted message.
func Validationf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// Title returns a short user-facing headline for err, used for notifications.
func Title(err error) string {
	switch {
	case err == nil:
		return ""
	case Is(err, ErrValidation):
		return "Invalid input"
	case Is(err, ErrRateLimited):
		return "Too many changes, try again shortly"
	case Is(err, ErrIntegrity):
		return "Data integrity check failed"
	case Is(err, ErrSizeLimit):
		return "Data too large"
	case Is(err, ErrNotFound):
		return "Not found"
	default:
		return "Something went wrong"
	}
}

// Format formats an error message with a consistent "Error: " prefix
func Format(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Error: %v", err)
}

// Formatf formats an error message with a consistent "Error: " prefix using a format string
func Formatf(format string, args ...interface{}) string {
	return fmt.Sprintf("Error: "+format, args...)
}

// Fatal logs an error and exits the program with exit code 1
func Fatal(err error) {
	if err != nil {
		logger.Error("Command execution failed", "error", err)
		fmt.Fprintf(os.Stderr, "%s\n", Format(err))
		os.Exit(1)
	}
}

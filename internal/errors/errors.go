package errors

import (
	"errors"
	"fmt"
	"os"

	"github.com/julianstephens/streakline/internal/logger"
)

// Error kinds. Concrete errors wrap one of these so callers can branch with errors.Is.
var (
	// ErrAuth covers rejected credentials and missing, expired or malformed tokens
	ErrAuth = errors.New("authentication failed")
	// ErrValidation is returned for input rejected locally, before any network call
	ErrValidation = errors.New("invalid input")
	// ErrNetwork covers any failed remote call
	ErrNetwork = errors.New("remote call failed")
	// ErrDivergence marks local state that the server did not confirm
	ErrDivergence = errors.New("local state not confirmed by server")
)

// Validation returns an error wrapping ErrValidation with the given message.
func Validation(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// Kind returns the sentinel the error wraps, or nil if it wraps none.
func Kind(err error) error {
	for _, kind := range []error{ErrAuth, ErrValidation, ErrNetwork, ErrDivergence} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
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

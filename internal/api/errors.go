package api

import (
	"fmt"
	"net/http"

	apperrors "github.com/julianstephens/streakline/internal/errors"
)

// Error is a failed API call. It unwraps to its Kind (ErrAuth or ErrNetwork)
// and to the underlying transport error, if any.
type Error struct {
	Op      string
	Status  int
	Message string
	Kind    error
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Status != 0 {
		return fmt.Sprintf("%s: %s (status %d)", e.Op, msg, e.Status)
	}
	return fmt.Sprintf("%s: %s", e.Op, msg)
}

func (e *Error) Unwrap() []error {
	errs := []error{e.Kind}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

func classify(status int, credentials bool) error {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return apperrors.ErrAuth
	case credentials && status >= 400 && status < 500:
		return apperrors.ErrAuth
	default:
		return apperrors.ErrNetwork
	}
}

package fnclient

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is a failure surfaced by the functions platform. Status and Reason
// come from the platform's response when present.
type Error struct {
	Status int
	Reason string
}

func (e *Error) Error() string {
	if e.Reason != "" {
		return e.Reason
	}
	return fmt.Sprintf("functions platform error (status %d)", e.Status)
}

// StatusOf returns the platform-declared status of err, defaulting to 500
// when err is not a platform error or carries no status.
func StatusOf(err error) int {
	var platformErr *Error
	if errors.As(err, &platformErr) && platformErr.Status != 0 {
		return platformErr.Status
	}
	return http.StatusInternalServerError
}

// ReasonOf returns the platform-declared reason of err, defaulting to the
// error's own text.
func ReasonOf(err error) string {
	var platformErr *Error
	if errors.As(err, &platformErr) && platformErr.Reason != "" {
		return platformErr.Reason
	}
	return err.Error()
}

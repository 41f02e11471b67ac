package postdeck

import (
	"errors"
	"fmt"
	"strings"
)

// UnknownError is the fallback shown when the backend gives no reason.
const UnknownError = "Unknown error"

var (
	// ErrInvalidContent is returned when generated content is empty or still the sentinel.
	ErrInvalidContent = errors.New("generated post content is invalid")
	// ErrConfirmationExhausted is returned once the confirmation poll runs out of attempts.
	ErrConfirmationExhausted = errors.New("post not ready after retries")
	// ErrMissingID is returned when a post cannot be addressed.
	ErrMissingID = errors.New("post has no id")
	// ErrReported marks errors that have already been shown to the user.
	ErrReported = errors.New("already reported")
)

// MissingEnvError is returned when required configuration is missing.
type MissingEnvError struct {
	Provider  string
	Variables []string
}

func (e MissingEnvError) Error() string {
	if len(e.Variables) == 0 {
		return fmt.Sprintf("%s credentials not configured", e.Provider)
	}
	return fmt.Sprintf("%s credentials not configured (missing %s)", e.Provider, strings.Join(e.Variables, ", "))
}

// ValidationError captures local validation issues that never reach the network.
type ValidationError struct {
	Provider string
	Reason   string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s validation failed: %s", e.Provider, e.Reason)
}

// APIError is a rejection reported by the backend.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Status != 0 {
		return fmt.Sprintf("request failed (status %d)", e.Status)
	}
	return "request rejected"
}

// Reason picks the user-visible message for err: the server-supplied text when
// there is one, otherwise fallback.
func Reason(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

// Reported marks err as already shown to the user. The result still matches
// err with errors.Is and errors.As.
func Reported(err error) error {
	if err == nil {
		return nil
	}
	return &reportedError{err: err}
}

type reportedError struct {
	err error
}

func (e *reportedError) Error() string { return e.err.Error() }

func (e *reportedError) Unwrap() []error { return []error{e.err, ErrReported} }

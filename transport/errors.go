package transport

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrValidation classifies 4xx responses that are not authentication failures.
	ErrValidation = errors.New("validation error")
	// ErrAuthentication classifies 401 and 403 responses.
	ErrAuthentication = errors.New("authentication error")
	// ErrRemoteService classifies every other failure, including network errors.
	ErrRemoteService = errors.New("remote service error")
	// ErrInvalidPath is returned before any request is sent when a path would
	// resolve outside the base URL.
	ErrInvalidPath = errors.New("invalid request path")
)

// RemoteServiceError is returned for every failed exchange. Status is 0 when
// no response was received (network failure, undecodable body).
type RemoteServiceError struct {
	Method string
	Path   string
	Status int
	Body   []byte
	Err    error
}

func (e *RemoteServiceError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("%s %s: %v", e.Method, e.Path, e.Err)
	}
	if len(e.Body) == 0 {
		return fmt.Sprintf("%s %s: status %d", e.Method, e.Path, e.Status)
	}
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.Status, e.Body)
}

func (e *RemoteServiceError) Unwrap() error {
	return e.Err
}

// Is maps the status class onto ErrValidation, ErrAuthentication or ErrRemoteService.
func (e *RemoteServiceError) Is(target error) bool {
	switch target {
	case ErrAuthentication:
		return e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden
	case ErrValidation:
		return e.Status >= 400 && e.Status < 500 &&
			e.Status != http.StatusUnauthorized && e.Status != http.StatusForbidden
	case ErrRemoteService:
		return e.Status == 0 || e.Status < 400 || e.Status >= 500
	}
	return false
}

// StatusCode returns the HTTP status carried by err, or 0 if there is none.
func StatusCode(err error) int {
	var rse *RemoteServiceError
	if errors.As(err, &rse) {
		return rse.Status
	}
	return 0
}

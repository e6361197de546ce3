package domain

import (
	"fmt"

	"github.com/go-faster/errors"
)

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")
	// ErrValidation marks input rejected on the client before any state change.
	ErrValidation = errors.New("validation failure")
	// ErrNetwork marks a transport-level failure talking to a backend service.
	ErrNetwork = errors.New("network failure")
	// ErrServiceRejected marks a non-success status returned by a backend service.
	ErrServiceRejected = errors.New("service rejected")
	// ErrStaleResponse is returned when a response belongs to a superseded request and was discarded.
	ErrStaleResponse = errors.New("stale response")
)

// Invalid wraps ErrValidation with a reason.
func Invalid(format string, args ...interface{}) error {
	return errors.Wrap(ErrValidation, fmt.Sprintf(format, args...))
}

// ServiceError is returned when the catalog or cart service answers with a non-2xx status.
type ServiceError struct {
	Service    string
	Op         string
	StatusCode int
	Body       string
}

func (e *ServiceError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s service: %s: status %d", e.Service, e.Op, e.StatusCode)
	}
	return fmt.Sprintf("%s service: %s: status %d: %s", e.Service, e.Op, e.StatusCode, e.Body)
}

func (e *ServiceError) Is(target error) bool {
	switch target {
	case ErrServiceRejected:
		return true
	case ErrNotFound:
		return e.StatusCode == 404
	}
	return false
}

// NetworkError wraps a transport failure (dial, timeout, broken body).
type NetworkError struct {
	Service string
	Op      string
	Err     error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s service: %s: %v", e.Service, e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

func (e *NetworkError) Is(target error) bool { return target == ErrNetwork }

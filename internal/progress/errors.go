package progress

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// ErrNotFound is returned when the requested bank, module or record does
// not exist.
var ErrNotFound = errors.New("progress: not found")

// ErrUnavailable indicates the service could not be reached.
type ErrUnavailable struct {
	Err error
}

func (e *ErrUnavailable) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("progress service unavailable: %v", e.Err)
	}
	return "progress service unavailable"
}

func (e *ErrUnavailable) Unwrap() error { return e.Err }

// ErrStatus is a non-2xx response from the service.
type ErrStatus struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *ErrStatus) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("%s: %d %s: %s", e.Op, e.StatusCode, http.StatusText(e.StatusCode), e.Body)
	}
	return fmt.Sprintf("%s: %d %s", e.Op, e.StatusCode, http.StatusText(e.StatusCode))
}

// Is makes a 404 match ErrNotFound.
func (e *ErrStatus) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == http.StatusNotFound
}

// IsRetryable reports whether err is worth another attempt: the service was
// unreachable or answered 429 or 5xx.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var unavail *ErrUnavailable
	if errors.As(err, &unavail) {
		return true
	}
	var status *ErrStatus
	if errors.As(err, &status) {
		return status.StatusCode == http.StatusTooManyRequests || status.StatusCode >= 500
	}
	return false
}

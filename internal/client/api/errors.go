package api

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/nkarpov/flashsync/pkg/api"
)

// RequestError is a gateway failure carrying the machine-readable error
// class the sync engine needs to pick between retry and parking.
type RequestError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *RequestError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return http.StatusText(e.StatusCode)
}

// IsTransient reports whether the failure is worth retrying with backoff:
// network errors, timeouts, gateway 5xx and throttling.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr.StatusCode >= 500 || reqErr.StatusCode == http.StatusTooManyRequests
	}

	// Anything the transport failed to even classify (connection refused,
	// DNS) arrives wrapped in url.Error and matches net.Error above; what
	// is left are local failures, not worth a retry loop.
	return false
}

// IsPermanent reports whether the gateway rejected the request for good
// (validation and friends). Permanent failures stop automatic retries for
// the affected entity.
func IsPermanent(err error) bool {
	var reqErr *RequestError
	if !errors.As(err, &reqErr) {
		return false
	}
	return reqErr.StatusCode >= 400 && reqErr.StatusCode < 500 &&
		reqErr.StatusCode != http.StatusTooManyRequests
}

// IsNotFound reports whether the gateway answered 404 for the entity.
func IsNotFound(err error) bool {
	var reqErr *RequestError
	return errors.As(err, &reqErr) && reqErr.StatusCode == http.StatusNotFound
}

// IsConflict reports whether the gateway rejected a create because the id
// already exists. Push downgrades such creates to updates.
func IsConflict(err error) bool {
	var reqErr *RequestError
	if !errors.As(err, &reqErr) {
		return false
	}
	return reqErr.StatusCode == http.StatusConflict || reqErr.Code == api.ErrCodeConflict
}

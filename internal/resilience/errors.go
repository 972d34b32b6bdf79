package resilience

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"syscall"
)

// StatusError is a non-2xx response from an upstream tier.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d from %s", e.StatusCode, e.URL)
}

// Transient reports whether the upstream is likely to answer on a later run.
func (e *StatusError) Transient() bool {
	return TransientStatus(e.StatusCode)
}

// TransientStatus reports whether an HTTP status means the endpoint is
// throttling or briefly unhealthy. 404 and 410 mean a dataset or API version
// has been retired and are permanent, as are 501 and 505.
func TransientStatus(code int) bool {
	switch code {
	case http.StatusRequestTimeout, http.StatusTooManyRequests:
		return true
	case http.StatusNotImplemented, http.StatusHTTPVersionNotSupported:
		return false
	}
	return code >= 500 && code <= 599
}

// Failure classes returned by Classify.
const (
	ClassTransient = "transient"
	ClassPermanent = "permanent"
)

// IsTransient reports whether a tier failure should clear without anyone
// changing configuration: throttling and 5xx responses, timeouts, refused or
// reset connections, DNS hiccups and bodies cut off mid-stream.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	var se *StatusError
	if errors.As(err, &se) {
		return se.Transient()
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return dnsErr.IsTimeout || dnsErr.IsTemporary
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.EPIPE)
}

// Classify labels a tier failure for logs. A nil error is permanent by
// convention; callers only classify failures.
func Classify(err error) string {
	if IsTransient(err) {
		return ClassTransient
	}
	return ClassPermanent
}

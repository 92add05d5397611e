package ingest

import (
	"errors"
	"fmt"
	"net/http"
)

// Common upstream error conditions.
var (
	// ErrUnauthorized indicates invalid or missing API credentials.
	ErrUnauthorized = errors.New("ingest: unauthorised (invalid credentials)")

	// ErrForbidden indicates the upstream refused the request outright.
	ErrForbidden = errors.New("ingest: forbidden")

	// ErrNotFound indicates the requested resource does not exist upstream.
	ErrNotFound = errors.New("ingest: resource not found")

	// ErrUpstream indicates a rate-limit or server-side failure that is
	// worth retrying.
	ErrUpstream = errors.New("ingest: upstream unavailable")

	// ErrDataFormat indicates a response body that could not be parsed
	// into the expected shape.
	ErrDataFormat = errors.New("ingest: malformed response")
)

// SourceError records a failure tied to one source collection, accumulated
// during ingestion without aborting the overall run.
type SourceError struct {
	Source string // e.g. "quran" or a hadith book slug
	Page   int
	Err    error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("%s page %d: %v", e.Source, e.Page, e.Err)
}

func (e *SourceError) Unwrap() error { return e.Err }

// statusError converts an HTTP status into a classified error.
func statusError(status int) error {
	switch {
	case status == http.StatusUnauthorized:
		return ErrUnauthorized
	case status == http.StatusForbidden:
		return ErrForbidden
	case status == http.StatusNotFound:
		return ErrNotFound
	case status == http.StatusTooManyRequests || status >= 500:
		return fmt.Errorf("%w: status %d", ErrUpstream, status)
	default:
		return fmt.Errorf("ingest: unexpected status %d", status)
	}
}

// IsPermanent reports whether err should abort pagination of its source.
// Client errors are permanent; retrying them cannot help.
func IsPermanent(err error) bool {
	return errors.Is(err, ErrUnauthorized) ||
		errors.Is(err, ErrForbidden) ||
		errors.Is(err, ErrNotFound)
}

// IsTransient reports whether err is worth retrying: timeouts, connection
// failures, rate limits and server errors.
func IsTransient(err error) bool {
	if err == nil || IsPermanent(err) || errors.Is(err, ErrDataFormat) {
		return false
	}
	return true
}

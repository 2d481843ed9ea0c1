package omdb

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when the provider reports no title for a query.
	ErrNotFound       = errors.New("no title found for the specified criteria")
	ErrAPIKeyRequired = errors.New("omdb api key not configured")
)

// NormalizationError reports a provider payload that could not be turned
// into a MovieRecord.
type NormalizationError struct {
	Field  string
	Value  string
	Reason string
}

func (e *NormalizationError) Error() string {
	if e == nil {
		return "normalization error"
	}
	if e.Value == "" {
		return fmt.Sprintf("normalize %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("normalize %s %q: %s", e.Field, e.Value, e.Reason)
}

// HTTPStatusError is returned when the provider answers with a non-2xx status.
type HTTPStatusError struct {
	URL        string
	StatusCode int
}

func (e *HTTPStatusError) Error() string {
	if e == nil {
		return "HTTP status error"
	}
	return fmt.Sprintf("omdb returned HTTP %d", e.StatusCode)
}

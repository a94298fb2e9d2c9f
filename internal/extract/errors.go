package extract

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrRetryExhausted is the terminal error after a transient provider failure
// survives every allowed attempt.
var ErrRetryExhausted = errors.New("extraction provider failed after multiple retries; try again later")

// ProviderError wraps a non-success response from the extraction provider.
type ProviderError struct {
	Provider   string
	StatusCode int
	Err        error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s API error (status %d): %v", e.Provider, e.StatusCode, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// ShapeError reports a provider response that was null or not a JSON object.
// The retry controller treats it as transient: the model occasionally returns
// garbage and a fresh attempt usually yields a proper object.
type ShapeError struct {
	Detail string
}

func (e *ShapeError) Error() string {
	return "malformed extraction response: " + e.Detail
}

// SchemaError reports a well-formed object that violates the extraction
// contract. It is terminal: a present-but-wrong object is the provider's
// final answer.
type SchemaError struct {
	Fields []string
	Err    error
}

func (e *SchemaError) Error() string {
	if len(e.Fields) > 0 {
		return fmt.Sprintf("extraction response does not match schema; failing fields: %s", strings.Join(e.Fields, ", "))
	}
	return fmt.Sprintf("extraction response does not match schema: %v", e.Err)
}

func (e *SchemaError) Unwrap() error {
	return e.Err
}

// ErrorKind classifies a failed extraction attempt.
type ErrorKind int

const (
	// KindFatal errors surface immediately; retrying will not help.
	KindFatal ErrorKind = iota
	// KindTransient errors (rate limits, overload, malformed shapes) are
	// expected to resolve on retry.
	KindTransient
)

// Markers in provider error messages that indicate a transient condition.
// Providers are inconsistent about status codes, so the message text is
// scanned as a fallback.
var transientMarkers = []string{
	"429",
	"too many requests",
	"rate limit",
	"503",
	"service unavailable",
	"overloaded",
}

// Classify decides whether a failed attempt is worth retrying.
func Classify(err error) ErrorKind {
	if err == nil {
		return KindFatal
	}

	var shapeErr *ShapeError
	if errors.As(err, &shapeErr) {
		return KindTransient
	}

	var schemaErr *SchemaError
	if errors.As(err, &schemaErr) {
		return KindFatal
	}

	var provErr *ProviderError
	if errors.As(err, &provErr) {
		switch provErr.StatusCode {
		case http.StatusTooManyRequests, http.StatusServiceUnavailable:
			return KindTransient
		}
	}

	msg := strings.ToLower(err.Error())
	for _, marker := range transientMarkers {
		if strings.Contains(msg, marker) {
			return KindTransient
		}
	}
	return KindFatal
}

package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

// ErrRateLimit is a 429 from the provider.
type ErrRateLimit struct {
	RetryAfter time.Duration
	Err        error
}

func (e *ErrRateLimit) Error() string {
	return fmt.Sprintf("rate limited (retry after %s): %v", e.RetryAfter, e.Err)
}

func (e *ErrRateLimit) Unwrap() error { return e.Err }

// ErrInvalidResponse is output that is not valid JSON or does not match
// the requested schema.
type ErrInvalidResponse struct {
	Content json.RawMessage
	Err     error
}

func (e *ErrInvalidResponse) Error() string {
	return fmt.Sprintf("invalid LLM response: %v", e.Err)
}

func (e *ErrInvalidResponse) Unwrap() error { return e.Err }

// ErrProviderUnavailable covers 5xx responses and transport failures.
type ErrProviderUnavailable struct {
	Err error
}

func (e *ErrProviderUnavailable) Error() string {
	if e.Err == nil {
		return "LLM provider unavailable"
	}
	return fmt.Sprintf("LLM provider unavailable: %v", e.Err)
}

func (e *ErrProviderUnavailable) Unwrap() error { return e.Err }

// ErrMaxTokensExceeded means the output was cut off at MaxTokens.
type ErrMaxTokensExceeded struct {
	Content json.RawMessage
}

func (e *ErrMaxTokensExceeded) Error() string {
	return fmt.Sprintf("LLM response truncated at max tokens (%d bytes received)", len(e.Content))
}

// ErrRejected is a 4xx other than 429: bad key, unknown model, malformed
// request. Retrying cannot help.
type ErrRejected struct {
	StatusCode int
	Err        error
}

func (e *ErrRejected) Error() string {
	return fmt.Sprintf("LLM request rejected (HTTP %d): %v", e.StatusCode, e.Err)
}

func (e *ErrRejected) Unwrap() error { return e.Err }

// ErrNoProvider is returned when no provider is configured.
var ErrNoProvider = errors.New("no LLM provider configured")

type errorClass int

const (
	classFatal errorClass = iota
	classInvalid
	classTransient
)

// classify sorts an error for the retry policy.
func classify(err error) errorClass {
	var (
		maxTok   *ErrMaxTokensExceeded
		invalid  *ErrInvalidResponse
		rejected *ErrRejected
	)
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return classFatal
	case errors.As(err, &maxTok), errors.As(err, &rejected):
		return classFatal
	case errors.As(err, &invalid):
		return classInvalid
	default:
		// Rate limits, outages and unclassified network errors.
		return classTransient
	}
}

// fromStatus maps an HTTP status from any vendor SDK onto the shared error
// types. header may be nil.
func fromStatus(status int, header http.Header, err error) error {
	switch {
	case status == http.StatusTooManyRequests:
		return &ErrRateLimit{RetryAfter: retryAfter(header), Err: err}
	case status >= 500, status == 0:
		return &ErrProviderUnavailable{Err: err}
	case status == http.StatusRequestTimeout:
		return &ErrProviderUnavailable{Err: err}
	default:
		return &ErrRejected{StatusCode: status, Err: err}
	}
}

// retryAfter reads a Retry-After header given in seconds.
func retryAfter(h http.Header) time.Duration {
	if h == nil {
		return 0
	}
	secs, err := strconv.Atoi(h.Get("Retry-After"))
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}

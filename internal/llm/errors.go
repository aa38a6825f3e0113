package llm

import (
	"errors"
	"fmt"
	"net"
	"strings"
)

// APIError represents an API error with HTTP status code.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error %d: %s", e.StatusCode, e.Message)
}

// TerminalError wraps an error that exhausted its retries or was never
// retryable. It marks the end of the resilience wrapper's responsibility.
type TerminalError struct {
	Attempts int
	Err      error
}

func (e *TerminalError) Error() string {
	return fmt.Sprintf("terminal after %d attempt(s): %v", e.Attempts, e.Err)
}

func (e *TerminalError) Unwrap() error { return e.Err }

// IsRetryable reports whether an error is worth retrying. Typed checks
// first, then a liberal lowercase substring fallback for untyped errors,
// since upstream error shapes vary by provider.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case 429, 502, 503, 504, 529:
			return true
		}
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, pattern := range []string{"overloaded", "rate limit", "unavailable", "timeout"} {
		if strings.Contains(msg, pattern) {
			return true
		}
	}

	return false
}

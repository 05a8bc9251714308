package govee

import (
	"fmt"
	"net/http"
)

// APIError is returned for non-2xx responses and for responses whose embedded
// code is not 200.
type APIError struct {
	StatusCode int
	Code       int
	Message    string
	Body       string
}

func (e *APIError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("govee api error (status %d, code %d): %s", e.StatusCode, e.Code, e.message())
	}
	return fmt.Sprintf("govee api error (status %d): %s", e.StatusCode, e.message())
}

func (e *APIError) message() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Body != "" {
		return e.Body
	}
	return http.StatusText(e.StatusCode)
}

// Retryable reports whether the request may succeed if sent again.
func (e *APIError) Retryable() bool {
	return isRetryableStatus(e.StatusCode)
}

// DecodeError is returned when a response body does not match the expected shape.
type DecodeError struct {
	Endpoint string
	Err      error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("error decoding %s response: %s", e.Endpoint, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

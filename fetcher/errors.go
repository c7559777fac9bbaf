package fetcher

import (
	"errors"
	"fmt"
)

// ErrNoContent is returned when the proxy envelope carries no page body
var ErrNoContent = errors.New("could not fetch content from the provided URL")

// NoContentMessage is the user-facing text for ErrNoContent
const NoContentMessage = "Could not fetch content from the provided URL."

// ValidationError represents a URL the retriever refuses to fetch
type ValidationError struct {
	Input   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid url %q: %s", e.Input, e.Message)
}

// FetchError represents a failed round trip to the page or the proxy
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: unexpected status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// IsValidation checks if an error is a ValidationError
func IsValidation(err error) bool {
	var validationErr *ValidationError
	return errors.As(err, &validationErr)
}

// IsRetrieval checks if err is a retrieval failure (transport, status or empty envelope)
func IsRetrieval(err error) bool {
	var fetchErr *FetchError
	return errors.Is(err, ErrNoContent) || errors.As(err, &fetchErr)
}

// UserMessage turns a pipeline error into the single message shown to users
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return "Invalid URL provided: " + validationErr.Message
	}
	if errors.Is(err, ErrNoContent) {
		return NoContentMessage
	}
	return "Failed to analyze URL: " + err.Error()
}

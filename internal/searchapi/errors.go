package searchapi

import "fmt"

// The three failure classes of a page fetch. The caller treats them all the
// same way (stop paginating, surface an empty result state), but keeping
// them distinct makes diagnostics and tests precise.

// NetworkError indicates the request never produced an HTTP response.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("search request failed: %v", e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ServerError indicates a non-success HTTP status from the search endpoint.
type ServerError struct {
	StatusCode int
	Body       string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("search endpoint returned status %d: %s", e.StatusCode, e.Body)
}

// MalformedResponseError indicates a response body that could not be decoded
// into the expected shape.
type MalformedResponseError struct {
	Err error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed search response: %v", e.Err)
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }

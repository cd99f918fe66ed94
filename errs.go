package haiblock

import (
	"errors"
	"fmt"
)

var (
	ErrAuthTokenRequired = errors.New("auth token is required: set HAIBLOCK_AUTH_TOKEN or pass WithAuthToken")
	ErrInvalidToken      = errors.New("invalid or expired authentication token")
	ErrInvalidAPIURL     = errors.New("invalid API URL")

	// Resource errors
	ErrNotFound             = errors.New("requested resource not found")
	ErrFileNotFound         = errors.New("file not found")
	ErrTransformationFailed = errors.New("content transformation failed")
)

// AuthenticationError is returned when the client has no credential to send, or when the API
// rejects the credential it was given (HTTP 401).
//
// Use errors.Is with ErrAuthTokenRequired or ErrInvalidToken to tell the two cases apart:
//
//	var authErr *haiblock.AuthenticationError
//	if errors.As(err, &authErr) {
//		if errors.Is(err, haiblock.ErrInvalidToken) {
//			// refresh the token and build a new client
//		}
//	}
type AuthenticationError struct {
	Err error
}

// Error returns a string representation of the error.
func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("authentication error: %v", e.Err)
}

// Unwrap returns the underlying error.
func (e *AuthenticationError) Unwrap() error {
	return e.Err
}

// ContentNotFoundError is returned when the API answers with HTTP 404. Path is the request path
// that was not found, which identifies the content or submission involved.
type ContentNotFoundError struct {
	Path string
}

// Error returns a string representation of the error.
func (e *ContentNotFoundError) Error() string {
	return fmt.Sprintf("%v: %s", ErrNotFound, e.Path)
}

// Unwrap returns ErrNotFound.
func (e *ContentNotFoundError) Unwrap() error {
	return ErrNotFound
}

// APIError is returned for any non-2xx response other than 401 and 404, and for requests that
// never received a response at all.
//
// StatusCode is zero when no response was received; in that case Err holds the network error,
// so checks such as errors.Is(err, context.DeadlineExceeded) keep working. A response whose
// body could not be read keeps its StatusCode and carries the read error in Err.
type APIError struct {
	// StatusCode is the HTTP status code, or 0 if the request failed before a response arrived.
	StatusCode int
	// Body is the raw response body, if any.
	Body string
	// Err is the transport error, or the body read error when a response arrived.
	Err error
}

// Error returns a string representation of the error.
func (e *APIError) Error() string {
	switch {
	case e.StatusCode == 0:
		return fmt.Sprintf("request failed: %v", e.Err)
	case e.Err != nil:
		return fmt.Sprintf("API request failed with status %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("API request failed with status %d: %s", e.StatusCode, e.Body)
}

// Unwrap returns the underlying transport error, if any.
func (e *APIError) Unwrap() error {
	return e.Err
}

// ValidationError is returned when local input is malformed (an empty ID, a negative page size)
// or when a response from the API cannot be decoded into the expected model.
type ValidationError struct {
	// Field is the JSON field or argument name at fault. It may be empty when the whole
	// payload is unreadable.
	Field string
	// Reason describes what was wrong with the field.
	Reason string
	// Err is the decode error, if one caused this failure.
	Err error
}

// Error returns a string representation of the error.
func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("validation error: %s", e.Reason)
	}
	return fmt.Sprintf("validation error: %s %s", e.Field, e.Reason)
}

// Unwrap returns the underlying error.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// TransformationError signals a failed transformation. TransformContent never returns one on
// its own: an unsuccessful transformation is a normal result with Success set to false. Call
// TransformationResult.Err when you would rather handle that outcome as an error.
type TransformationError struct {
	ContentID string
	Reason    string
}

// Error returns a string representation of the error.
func (e *TransformationError) Error() string {
	if e.ContentID == "" {
		return fmt.Sprintf("%v: %s", ErrTransformationFailed, e.Reason)
	}
	return fmt.Sprintf("%v for content %s: %s", ErrTransformationFailed, e.ContentID, e.Reason)
}

// Unwrap returns ErrTransformationFailed.
func (e *TransformationError) Unwrap() error {
	return ErrTransformationFailed
}

func fileNotFound(path string, cause error) error {
	return fmt.Errorf("%w: %s: %w", ErrFileNotFound, path, cause)
}

func invalidArgument(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

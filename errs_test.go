package haiblock

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "missing token",
			err:  &AuthenticationError{Err: ErrAuthTokenRequired},
			want: "authentication error: auth token is required: set HAIBLOCK_AUTH_TOKEN or pass WithAuthToken",
		},
		{
			name: "rejected token",
			err:  &AuthenticationError{Err: ErrInvalidToken},
			want: "authentication error: invalid or expired authentication token",
		},
		{
			name: "not found",
			err:  &ContentNotFoundError{Path: "/content/abc"},
			want: "requested resource not found: /content/abc",
		},
		{
			name: "api status",
			err:  &APIError{StatusCode: 500, Body: "Internal server error"},
			want: "API request failed with status 500: Internal server error",
		},
		{
			name: "network",
			err:  &APIError{Err: errors.New("connection refused")},
			want: "request failed: connection refused",
		},
		{
			name: "truncated body",
			err:  &APIError{StatusCode: 200, Err: errors.New("unexpected EOF")},
			want: "API request failed with status 200: unexpected EOF",
		},
		{
			name: "validation with field",
			err:  &ValidationError{Field: "status", Reason: "is required"},
			want: "validation error: status is required",
		},
		{
			name: "validation without field",
			err:  &ValidationError{Reason: "response is not valid JSON"},
			want: "validation error: response is not valid JSON",
		},
		{
			name: "transformation",
			err:  &TransformationError{ContentID: "c1", Reason: "empty document"},
			want: "content transformation failed for content c1: empty document",
		},
		{
			name: "transformation without content",
			err:  &TransformationError{Reason: "empty document"},
			want: "content transformation failed: empty document",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.EqualError(t, tt.err, tt.want)
		})
	}
}

func TestErrorUnwrapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		target error
	}{
		{"auth required", &AuthenticationError{Err: ErrAuthTokenRequired}, ErrAuthTokenRequired},
		{"auth invalid", &AuthenticationError{Err: ErrInvalidToken}, ErrInvalidToken},
		{"not found", &ContentNotFoundError{Path: "/x"}, ErrNotFound},
		{"network deadline", &APIError{Err: context.DeadlineExceeded}, context.DeadlineExceeded},
		{"transformation", &TransformationError{Reason: "r"}, ErrTransformationFailed},
		{"file not found", fileNotFound("/tmp/missing.txt", fs.ErrNotExist), ErrFileNotFound},
		{"file not found cause", fileNotFound("/tmp/missing.txt", fs.ErrNotExist), fs.ErrNotExist},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.err, tt.target)
			// Wrapping by callers keeps the chain intact.
			assert.ErrorIs(t, fmt.Errorf("outer: %w", tt.err), tt.target)
		})
	}

	assert.NotErrorIs(t, &AuthenticationError{Err: ErrInvalidToken}, ErrAuthTokenRequired)
	assert.NotErrorIs(t, &APIError{StatusCode: 500}, ErrNotFound)
}

func TestErrorsAs(t *testing.T) {
	wrapped := fmt.Errorf("loading dashboard: %w", &APIError{StatusCode: 502, Body: "bad gateway"})

	var apiErr *APIError
	require.ErrorAs(t, wrapped, &apiErr)
	assert.Equal(t, 502, apiErr.StatusCode)
	assert.Equal(t, "bad gateway", apiErr.Body)

	var notFound *ContentNotFoundError
	assert.False(t, errors.As(wrapped, &notFound))

	vErr := invalidArgument("limit", "must not be negative")
	var target *ValidationError
	require.ErrorAs(t, vErr, &target)
	assert.Equal(t, "limit", target.Field)
	assert.Nil(t, target.Unwrap())
}

func TestFileNotFound(t *testing.T) {
	err := fileNotFound("/nonexistent/file.txt", fs.ErrNotExist)
	assert.Contains(t, err.Error(), "/nonexistent/file.txt")
	assert.Contains(t, err.Error(), "file not found")
}

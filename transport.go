package haiblock

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/haiblock/gosdk/internal/form"
)

// RetryConfig configures retry behavior for rate-limited (429) and unavailable (503) responses.
// Retries are off unless a config with MaxRetries > 0 is supplied.
type RetryConfig struct {
	// MaxRetries is the maximum number of retry attempts (0 means no retry)
	MaxRetries uint64
	// InitialInterval is the initial backoff interval
	InitialInterval time.Duration
	// MaxInterval is the maximum backoff interval between retries.
	MaxInterval time.Duration
	// Multiplier is the backoff multiplier (e.g., 2.0 for exponential backoff)
	Multiplier float64
	// RandomizationFactor adds jitter to prevent thundering herd
	RandomizationFactor float64
}

// DefaultRetryConfig returns our recommended retry configuration for callers that opt in with
// WithRetryConfig.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:          3,
		InitialInterval:     500 * time.Millisecond,
		MaxInterval:         10 * time.Second,
		Multiplier:          2.0,
		RandomizationFactor: 0.5,
	}
}

// request describes one API call. body is nil for JSON requests, which carry no payload.
type request struct {
	method string
	path   string
	query  url.Values
	body   *form.Body
}

// isRetriableError checks if the error is retriable (rate limit or temporarily unavailable)
func isRetriableError(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.StatusCode == http.StatusTooManyRequests || apiErr.StatusCode == http.StatusServiceUnavailable
}

// createBackoff creates a configured exponential backoff
func createBackoff(config RetryConfig) backoff.BackOff {
	if config.MaxRetries == 0 {
		return &backoff.StopBackOff{}
	}

	expBackoff := backoff.NewExponentialBackOff()
	expBackoff.InitialInterval = config.InitialInterval
	expBackoff.MaxInterval = config.MaxInterval
	expBackoff.Multiplier = config.Multiplier
	expBackoff.RandomizationFactor = config.RandomizationFactor
	expBackoff.MaxElapsedTime = 0 // We control retries with WithMaxRetries

	return backoff.WithMaxRetries(expBackoff, config.MaxRetries)
}

// checkStatus maps an HTTP status onto the error taxonomy. 2xx is success.
func checkStatus(status int, path string, body []byte) error {
	switch {
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusUnauthorized:
		return &AuthenticationError{Err: ErrInvalidToken}
	case status == http.StatusNotFound:
		return &ContentNotFoundError{Path: path}
	}
	return &APIError{StatusCode: status, Body: string(body)}
}

func (c *Client) endpoint(path string, query url.Values) string {
	u := c.config.apiURL + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

func (c *Client) setHeaders(req *http.Request, requestID string, body *form.Body) {
	req.Header.Set("Authorization", "Bearer "+c.config.authToken)
	req.Header.Set("User-Agent", c.config.userAgent)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	// Uploads carry their own multipart content type.
	if body != nil {
		req.Header.Set("Content-Type", body.ContentType)
	} else {
		req.Header.Set("Content-Type", "application/json")
	}
}

// do performs the request and returns the raw response body of a 2xx response. Every other
// outcome is translated into one of the package's error types.
func (c *Client) do(ctx context.Context, req *request) ([]byte, error) {
	requestID := uuid.NewString()
	log := c.logger.With(
		zap.String("method", req.method),
		zap.String("path", req.path),
		zap.String("request_id", requestID),
	)

	if c.config.retryConfig.MaxRetries == 0 {
		return c.roundTrip(ctx, req, requestID, log)
	}

	var respBody []byte
	err := backoff.RetryNotify(func() error {
		body, err := c.roundTrip(ctx, req, requestID, log)
		if err != nil && isRetriableError(err) {
			// Return the error to trigger backoff
			return err
		}
		// For non-retriable errors or success, stop retrying
		if err != nil {
			return backoff.Permanent(err)
		}
		respBody = body
		return nil
	}, backoff.WithContext(createBackoff(c.config.retryConfig), ctx), func(err error, wait time.Duration) {
		log.Warn("retrying request", zap.Error(err), zap.Duration("wait", wait))
	})
	if err != nil {
		// The backoff returns the bare context error when it is interrupted while waiting.
		if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				return nil, &APIError{Err: err}
			}
		}
		return nil, err
	}
	return respBody, nil
}

func (c *Client) roundTrip(ctx context.Context, req *request, requestID string, log *zap.Logger) ([]byte, error) {
	var body io.Reader
	if req.body != nil {
		body = req.body.Reader()
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, c.endpoint(req.path, req.query), body)
	if err != nil {
		return nil, &APIError{Err: fmt.Errorf("creating request: %w", err)}
	}
	c.setHeaders(httpReq, requestID, req.body)

	log.Debug("sending request")
	start := time.Now()

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		log.Debug("request failed", zap.Error(err))
		return nil, &APIError{Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &APIError{StatusCode: resp.StatusCode, Err: fmt.Errorf("reading response body: %w", err)}
	}

	log.Debug("received response",
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
	)

	if err := checkStatus(resp.StatusCode, req.path, respBody); err != nil {
		return nil, err
	}
	return respBody, nil
}

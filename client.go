package haiblock

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"iter"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/haiblock/gosdk/internal/form"
)

// Version is the SDK version reported in the User-Agent header.
const Version = "0.1.0"

const (
	defaultAPIURL    = "https://api.haiblock.com"
	defaultTimeout   = 30 * time.Second
	defaultUserAgent = "haiblock-go-sdk/" + Version
	defaultPageSize  = 50

	// EnvAPIURL is the environment variable read by ConfigFromEnv for the API URL.
	EnvAPIURL = "HAIBLOCK_API_URL"
	// EnvAuthToken is the environment variable read by ConfigFromEnv for the auth token.
	EnvAuthToken = "HAIBLOCK_AUTH_TOKEN"
)

// Config holds the connection settings that may come from outside the program, typically the
// environment. Pass it to New with WithConfig.
type Config struct {
	// APIURL is the base URL of the API, including any path prefix.
	APIURL string
	// AuthToken is the bearer token sent with every request.
	AuthToken string
}

// ConfigFromEnv reads HAIBLOCK_API_URL and HAIBLOCK_AUTH_TOKEN. Unset variables leave the
// corresponding field empty.
func ConfigFromEnv() Config {
	return Config{
		APIURL:    os.Getenv(EnvAPIURL),
		AuthToken: os.Getenv(EnvAuthToken),
	}
}

// option is a function that configures the client
type option func(*cfg)

// WithConfig supplies fallback settings, usually the result of ConfigFromEnv. Values set with
// WithAPIURL or WithAuthToken take precedence no matter the order of the options.
func WithConfig(config Config) option {
	return func(c *cfg) {
		c.fallback = config
	}
}

// WithAPIURL sets the base URL for the client. The default is https://api.haiblock.com.
func WithAPIURL(apiURL string) option {
	return func(c *cfg) {
		c.apiURL = apiURL
	}
}

// WithAuthToken sets the bearer token used to authenticate requests.
func WithAuthToken(token string) option {
	return func(c *cfg) {
		c.authToken = token
	}
}

// WithHTTPClient sets the HTTP client used for requests. When set, WithTimeout has no effect;
// configure the timeout on the supplied client instead.
func WithHTTPClient(httpClient *http.Client) option {
	return func(c *cfg) {
		c.httpClient = httpClient
	}
}

// WithTimeout sets the default timeout for requests. If not set, the default
// timeout is 30 seconds.
func WithTimeout(timeout time.Duration) option {
	return func(c *cfg) {
		c.timeout = timeout
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(userAgent string) option {
	return func(c *cfg) {
		c.userAgent = userAgent
	}
}

// WithLogger sets the logger used for request tracing. Requests are logged at debug level and
// retries at warn level. By default nothing is logged.
func WithLogger(logger *zap.Logger) option {
	return func(c *cfg) {
		c.logger = logger
	}
}

// WithRetryConfig enables retries of 429 and 503 responses with the given configuration.
func WithRetryConfig(retryConfig RetryConfig) option {
	return func(c *cfg) {
		c.retryConfig = retryConfig
	}
}

// WithDisableRetry disables automatic retry on rate limits
func WithDisableRetry() option {
	return func(c *cfg) {
		c.retryConfig.MaxRetries = 0
	}
}

// cfg holds configuration for the HaiBlock client
type cfg struct {
	// apiURL is the explicitly configured base URL
	apiURL string
	// authToken is the explicitly configured bearer token
	authToken string
	// fallback holds values used when apiURL or authToken are not set explicitly
	fallback Config
	// httpClient, if set, replaces the default client
	httpClient *http.Client
	// timeout is the default timeout for requests
	timeout time.Duration
	// userAgent is sent with every request
	userAgent string
	// logger receives request traces
	logger *zap.Logger
	// retryConfig configures retry behavior for rate-limited requests
	retryConfig RetryConfig
}

// Client is the main HaiBlock SDK client. It holds no mutable state after New returns and is
// safe for concurrent use.
type Client struct {
	config     *cfg
	httpClient *http.Client
	logger     *zap.Logger
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

func normalizeAPIURL(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%w %q: %w", ErrInvalidAPIURL, raw, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", fmt.Errorf("%w %q: must be an absolute http or https URL", ErrInvalidAPIURL, raw)
	}
	return strings.TrimRight(raw, "/"), nil
}

// New creates a new HaiBlock client. An auth token must be supplied, either with
// WithAuthToken or through WithConfig; otherwise New fails with an *AuthenticationError
// without touching the network.
func New(options ...option) (*Client, error) {
	config := &cfg{
		timeout:   defaultTimeout,
		userAgent: defaultUserAgent,
	}

	for _, option := range options {
		option(config)
	}

	config.authToken = firstNonEmpty(config.authToken, config.fallback.AuthToken)
	if config.authToken == "" {
		return nil, &AuthenticationError{Err: ErrAuthTokenRequired}
	}

	apiURL, err := normalizeAPIURL(firstNonEmpty(config.apiURL, config.fallback.APIURL, defaultAPIURL))
	if err != nil {
		return nil, err
	}
	config.apiURL = apiURL

	httpClient := config.httpClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: config.timeout}
	}

	logger := config.logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		config:     config,
		httpClient: httpClient,
		logger:     logger.Named("haiblock"),
	}, nil
}

// APIURL returns the base URL the client sends requests to.
func (c *Client) APIURL() string {
	return c.config.apiURL
}

// Close releases idle connections held by the underlying HTTP client.
func (c *Client) Close() error {
	if c.httpClient != nil {
		c.httpClient.CloseIdleConnections()
	}
	return nil
}

func requireID(field, id string) error {
	if strings.TrimSpace(id) == "" {
		return invalidArgument(field, "must not be empty")
	}
	return nil
}

func pageQuery(limit, offset int) (url.Values, error) {
	if limit < 0 {
		return nil, invalidArgument("limit", "must not be negative")
	}
	if offset < 0 {
		return nil, invalidArgument("offset", "must not be negative")
	}
	if limit == 0 {
		limit = defaultPageSize
	}
	return url.Values{
		"limit":  {strconv.Itoa(limit)},
		"offset": {strconv.Itoa(offset)},
	}, nil
}

func contentPath(contentID string, rest ...string) string {
	p := "/content/" + url.PathEscape(contentID)
	for _, r := range rest {
		p += "/" + url.PathEscape(r)
	}
	return p
}

// UploadFile uploads a local file for processing. metadata is optional and is sent JSON-encoded
// alongside the file.
//
// If path does not exist, UploadFile fails with an error matching ErrFileNotFound before any
// request is made.
func (c *Client) UploadFile(ctx context.Context, path string, metadata map[string]any) (*Content, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fileNotFound(path, err)
		}
		return nil, fmt.Errorf("failed to stat upload file: %w", err)
	}
	if info.IsDir() {
		return nil, invalidArgument("path", "is a directory")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload file: %w", err)
	}

	fields := map[string]string{}
	if len(metadata) > 0 {
		raw, err := json.Marshal(metadata)
		if err != nil {
			return nil, &ValidationError{Field: "metadata", Reason: "cannot be encoded as JSON", Err: err}
		}
		fields["metadata"] = string(raw)
	}

	body, err := form.Encode(fields, form.File{Field: "file", Name: filepath.Base(path), Data: data})
	if err != nil {
		return nil, fmt.Errorf("failed to prepare upload: %w", err)
	}

	resp, err := c.do(ctx, &request{method: http.MethodPost, path: "/upload", body: body})
	if err != nil {
		return nil, err
	}
	return DecodeContent(resp)
}

// GetContent retrieves content by its ID.
func (c *Client) GetContent(ctx context.Context, contentID string) (*Content, error) {
	if err := requireID("content_id", contentID); err != nil {
		return nil, err
	}

	resp, err := c.do(ctx, &request{method: http.MethodGet, path: contentPath(contentID)})
	if err != nil {
		return nil, err
	}
	return DecodeContent(resp)
}

// ListContent lists uploaded content. A nil request lists the first 50 items.
func (c *Client) ListContent(ctx context.Context, req *ListContentRequest) ([]Content, error) {
	if req == nil {
		req = &ListContentRequest{}
	}
	query, err := pageQuery(req.Limit, req.Offset)
	if err != nil {
		return nil, err
	}

	resp, err := c.do(ctx, &request{method: http.MethodGet, path: "/content", query: query})
	if err != nil {
		return nil, err
	}
	return decodeList(resp, DecodeContent)
}

// ListContentIter walks every page of content and returns a go iterator. You can loop over it
// with a for..range loop; if a page fails to load, the error is yielded once and the iteration
// ends. A pageSize of zero or less uses the default of 50.
//
// Iteration also ends when a page starts with the same item as the page before it, which is
// what a server that ignores the offset parameter returns.
func (c *Client) ListContentIter(ctx context.Context, pageSize int) iter.Seq2[*Content, error] {
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	return func(yield func(*Content, error) bool) {
		var previousFirstID string
		for offset := 0; ; offset += pageSize {
			page, err := c.ListContent(ctx, &ListContentRequest{Limit: pageSize, Offset: offset})
			if err != nil {
				yield(nil, err)
				return
			}
			if len(page) > 0 {
				if offset > 0 && page[0].ID == previousFirstID {
					c.logger.Warn("content listing repeated a page, stopping", zap.Int("offset", offset))
					return
				}
				previousFirstID = page[0].ID
			}
			for i := range page {
				// If the caller doesn't want to continue, we stop the iterator.
				if !yield(&page[i], nil) {
					return
				}
			}
			if len(page) < pageSize {
				return
			}
		}
	}
}

// TransformContent asks the service to transform content for AI consumption. A result with
// Success set to false is returned without error; use TransformationResult.Err to treat it as
// one.
func (c *Client) TransformContent(ctx context.Context, contentID string) (*TransformationResult, error) {
	if err := requireID("content_id", contentID); err != nil {
		return nil, err
	}

	resp, err := c.do(ctx, &request{method: http.MethodPost, path: contentPath(contentID, "transform")})
	if err != nil {
		return nil, err
	}

	result, err := DecodeTransformationResult(resp)
	if err != nil {
		return nil, err
	}
	result.contentID = contentID
	return result, nil
}

// SubmitToModel submits content to an AI provider. An empty provider selects ProviderBedrock.
func (c *Client) SubmitToModel(ctx context.Context, contentID string, provider Provider) (*Submission, error) {
	if err := requireID("content_id", contentID); err != nil {
		return nil, err
	}
	if provider == "" {
		provider = ProviderBedrock
	}

	resp, err := c.do(ctx, &request{
		method: http.MethodPost,
		path:   contentPath(contentID, "submit", provider.String()),
	})
	if err != nil {
		return nil, err
	}
	return DecodeSubmission(resp)
}

// SubmitToBedrock is sugar for SubmitToModel with ProviderBedrock.
func (c *Client) SubmitToBedrock(ctx context.Context, contentID string) (*Submission, error) {
	return c.SubmitToModel(ctx, contentID, ProviderBedrock)
}

// GetSubmission retrieves a submission by its ID.
func (c *Client) GetSubmission(ctx context.Context, submissionID string) (*Submission, error) {
	if err := requireID("submission_id", submissionID); err != nil {
		return nil, err
	}

	resp, err := c.do(ctx, &request{method: http.MethodGet, path: "/submissions/" + url.PathEscape(submissionID)})
	if err != nil {
		return nil, err
	}
	return DecodeSubmission(resp)
}

// ListSubmissions lists submissions, optionally restricted to one piece of content. A nil
// request lists the first 50 submissions.
func (c *Client) ListSubmissions(ctx context.Context, req *ListSubmissionsRequest) ([]Submission, error) {
	if req == nil {
		req = &ListSubmissionsRequest{}
	}
	query, err := pageQuery(req.Limit, req.Offset)
	if err != nil {
		return nil, err
	}
	if req.ContentID != "" {
		query.Set("content_id", req.ContentID)
	}

	resp, err := c.do(ctx, &request{method: http.MethodGet, path: "/submissions", query: query})
	if err != nil {
		return nil, err
	}
	return decodeList(resp, DecodeSubmission)
}

// GetAnalytics retrieves the account's analytics snapshot.
func (c *Client) GetAnalytics(ctx context.Context) (*AnalyticsData, error) {
	resp, err := c.do(ctx, &request{method: http.MethodGet, path: "/analytics"})
	if err != nil {
		return nil, err
	}
	return DecodeAnalytics(resp)
}

// DeleteContent deletes content by its ID. It returns true once the API has accepted the
// deletion; the response body is ignored.
func (c *Client) DeleteContent(ctx context.Context, contentID string) (bool, error) {
	if err := requireID("content_id", contentID); err != nil {
		return false, err
	}

	if _, err := c.do(ctx, &request{method: http.MethodDelete, path: contentPath(contentID)}); err != nil {
		return false, err
	}
	return true, nil
}

package haiblock

import (
	"bytes"
	"context"
	"errors"
	"io"
	"io/fs"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const contentJSON = `{
	"id": "test-content-id",
	"user_id": "user-123",
	"filename": "test.txt",
	"original_text": "test content",
	"upload_date": "2025-01-01T00:00:00Z",
	"last_updated": "2025-01-01T00:00:00Z",
	"status": "uploaded",
	"file_size": 1000,
	"file_type": "text/plain",
	"s3_key": "uploads/test.txt"
}`

const submissionJSON = `{
	"id": "submission-123",
	"content_id": "test-content-id",
	"provider": "bedrock",
	"status": "pending",
	"submitted_at": "2025-01-01T00:00:00Z"
}`

const analyticsJSON = `{
	"total_content": 5,
	"total_submissions": 10,
	"successful_submissions": 8,
	"failed_submissions": 2,
	"total_costs": 1.25,
	"recent_activity": [],
	"content_status_breakdown": {"uploaded": 3, "processed": 2},
	"submission_provider_breakdown": {"bedrock": 10},
	"monthly_trends": {},
	"average_cost_per_submission": 0.125,
	"success_rate": 0.8
}`

type recordedRequest struct {
	Method  string
	Path    string
	RawPath string
	Query   map[string][]string
	Header  http.Header
	Body    []byte
}

type testServer struct {
	server *httptest.Server

	mu       sync.Mutex
	requests []recordedRequest
}

func (ts *testServer) recorded() []recordedRequest {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return append([]recordedRequest(nil), ts.requests...)
}

// newTestClient starts a server running handler and returns a client pointed at it.
func newTestClient(t *testing.T, handler http.HandlerFunc, options ...option) (*Client, *testServer) {
	t.Helper()
	ts := &testServer{}

	ts.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		ts.mu.Lock()
		ts.requests = append(ts.requests, recordedRequest{
			Method:  r.Method,
			Path:    r.URL.Path,
			RawPath: r.URL.EscapedPath(),
			Query:   r.URL.Query(),
			Header:  r.Header.Clone(),
			Body:    body,
		})
		ts.mu.Unlock()
		// Hand the body back so handlers can parse it.
		r.Body = io.NopCloser(bytes.NewReader(body))
		handler(w, r)
	}))
	t.Cleanup(ts.server.Close)

	opts := append([]option{WithAPIURL(ts.server.URL), WithAuthToken("test-token")}, options...)
	client, err := New(opts...)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return client, ts
}

func writeTempFile(t *testing.T, name, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))
	return path
}

func respondJSON(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		io.WriteString(w, body)
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		name      string
		env       map[string]string
		options   func() []option
		wantErr   error
		wantURL   string
		wantToken string
	}{
		{
			name:    "missing token",
			options: func() []option { return []option{WithConfig(ConfigFromEnv())} },
			wantErr: ErrAuthTokenRequired,
		},
		{
			name:    "blank token",
			options: func() []option { return []option{WithAuthToken("   ")} },
			wantErr: ErrAuthTokenRequired,
		},
		{
			name:      "explicit token, default URL",
			options:   func() []option { return []option{WithAuthToken("tok")} },
			wantURL:   "https://api.haiblock.com",
			wantToken: "tok",
		},
		{
			name:      "token and URL from environment",
			env:       map[string]string{EnvAuthToken: "env-tok", EnvAPIURL: "https://env.example.com/api/"},
			options:   func() []option { return []option{WithConfig(ConfigFromEnv())} },
			wantURL:   "https://env.example.com/api",
			wantToken: "env-tok",
		},
		{
			name: "explicit values override environment",
			env:  map[string]string{EnvAuthToken: "env-tok", EnvAPIURL: "https://env.example.com"},
			options: func() []option {
				return []option{WithAuthToken("arg-tok"), WithAPIURL("https://arg.example.com"), WithConfig(ConfigFromEnv())}
			},
			wantURL:   "https://arg.example.com",
			wantToken: "arg-tok",
		},
		{
			name:    "relative URL",
			options: func() []option { return []option{WithAuthToken("tok"), WithAPIURL("api.haiblock.com")} },
			wantErr: ErrInvalidAPIURL,
		},
		{
			name:    "unsupported scheme",
			options: func() []option { return []option{WithAuthToken("tok"), WithAPIURL("ftp://api.haiblock.com")} },
			wantErr: ErrInvalidAPIURL,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(EnvAuthToken, "")
			t.Setenv(EnvAPIURL, "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			client, err := New(tt.options()...)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, client)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantURL, client.APIURL())
			assert.Equal(t, tt.wantToken, client.config.authToken)
			assert.NotNil(t, client.httpClient)
			assert.NotNil(t, client.logger)
		})
	}
}

func TestNew_MissingTokenIsAuthenticationError(t *testing.T) {
	t.Setenv(EnvAuthToken, "")

	_, err := New(WithAPIURL("https://api.test.haiblock.com"), WithConfig(ConfigFromEnv()))

	var authErr *AuthenticationError
	require.ErrorAs(t, err, &authErr)
	assert.ErrorIs(t, authErr, ErrAuthTokenRequired)
}

func TestNew_Timeout(t *testing.T) {
	client, err := New(WithAuthToken("tok"), WithTimeout(5*time.Second))
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, client.httpClient.Timeout)

	custom := &http.Client{Timeout: time.Minute}
	client, err = New(WithAuthToken("tok"), WithHTTPClient(custom), WithTimeout(5*time.Second))
	require.NoError(t, err)
	assert.Same(t, custom, client.httpClient)
}

func TestClient_RequestHeaders(t *testing.T) {
	client, ts := newTestClient(t, respondJSON(http.StatusOK, analyticsJSON), WithUserAgent("custom-agent/1.0"))

	_, err := client.GetAnalytics(context.Background())
	require.NoError(t, err)

	reqs := ts.recorded()
	require.Len(t, reqs, 1)
	h := reqs[0].Header
	assert.Equal(t, "Bearer test-token", h.Get("Authorization"))
	assert.Equal(t, "application/json", h.Get("Content-Type"))
	assert.Equal(t, "application/json", h.Get("Accept"))
	assert.Equal(t, "custom-agent/1.0", h.Get("User-Agent"))
	_, err = uuid.Parse(h.Get("X-Request-ID"))
	assert.NoError(t, err)
}

func TestClient_DefaultUserAgent(t *testing.T) {
	client, ts := newTestClient(t, respondJSON(http.StatusOK, analyticsJSON))

	_, err := client.GetAnalytics(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "haiblock-go-sdk/"+Version, ts.recorded()[0].Header.Get("User-Agent"))
}

func TestClient_BasePathPrefix(t *testing.T) {
	client, ts := newTestClient(t, respondJSON(http.StatusOK, contentJSON))
	client.config.apiURL = ts.server.URL + "/api"

	_, err := client.GetContent(context.Background(), "test-content-id")
	require.NoError(t, err)
	assert.Equal(t, "/api/content/test-content-id", ts.recorded()[0].Path)
}

func TestClient_GetContent(t *testing.T) {
	tests := []struct {
		name      string
		contentID string
		handler   http.HandlerFunc
		wantErr   any
		wantCalls int
	}{
		{
			name:      "success",
			contentID: "test-content-id",
			handler:   respondJSON(http.StatusOK, contentJSON),
			wantCalls: 1,
		},
		{
			name:      "not found",
			contentID: "missing",
			handler:   respondJSON(http.StatusNotFound, `{"detail":"not found"}`),
			wantErr:   &ContentNotFoundError{},
			wantCalls: 1,
		},
		{
			name:      "empty id",
			contentID: "",
			handler:   respondJSON(http.StatusOK, contentJSON),
			wantErr:   &ValidationError{},
			wantCalls: 0,
		},
		{
			name:      "malformed payload",
			contentID: "test-content-id",
			handler:   respondJSON(http.StatusOK, `{"id": "x"}`),
			wantErr:   &ValidationError{},
			wantCalls: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, ts := newTestClient(t, tt.handler)

			content, err := client.GetContent(context.Background(), tt.contentID)
			assert.Len(t, ts.recorded(), tt.wantCalls)

			switch want := tt.wantErr.(type) {
			case nil:
				require.NoError(t, err)
				assert.Equal(t, "test-content-id", content.ID)
				assert.Equal(t, "test.txt", content.Filename)
				assert.Equal(t, ContentStatusUploaded, content.Status)
				assert.Equal(t, "/content/test-content-id", ts.recorded()[0].Path)
				assert.Equal(t, http.MethodGet, ts.recorded()[0].Method)
			case *ContentNotFoundError:
				assert.ErrorAs(t, err, &want)
				assert.ErrorIs(t, err, ErrNotFound)
				assert.Equal(t, "/content/missing", want.Path)
				assert.Nil(t, content)
			case *ValidationError:
				assert.ErrorAs(t, err, &want)
				assert.Nil(t, content)
			}
		})
	}
}

func TestClient_GetContent_EscapesID(t *testing.T) {
	client, ts := newTestClient(t, respondJSON(http.StatusOK, contentJSON))

	_, err := client.GetContent(context.Background(), "a/b c")
	require.NoError(t, err)
	assert.Equal(t, "/content/a%2Fb%20c", ts.recorded()[0].RawPath)
}

func TestClient_ListContent(t *testing.T) {
	t.Run("items", func(t *testing.T) {
		second := `{"id":"content-2","user_id":"user-123","filename":"test2.txt","original_text":"content 2",
			"upload_date":"2025-01-01T00:00:00Z","last_updated":"2025-01-01T00:00:00Z","status":"transformed",
			"file_size":2000,"file_type":"text/plain","s3_key":"uploads/test2.txt"}`
		client, ts := newTestClient(t, respondJSON(http.StatusOK, `{"items":[`+contentJSON+`,`+second+`]}`))

		items, err := client.ListContent(context.Background(), nil)
		require.NoError(t, err)
		require.Len(t, items, 2)
		assert.Equal(t, "test.txt", items[0].Filename)
		assert.Equal(t, ContentStatusTransformed, items[1].Status)

		req := ts.recorded()[0]
		assert.Equal(t, "/content", req.Path)
		assert.Equal(t, []string{"50"}, req.Query["limit"])
		assert.Equal(t, []string{"0"}, req.Query["offset"])
	})

	t.Run("missing items is empty", func(t *testing.T) {
		client, _ := newTestClient(t, respondJSON(http.StatusOK, `{}`))

		items, err := client.ListContent(context.Background(), &ListContentRequest{Limit: 10, Offset: 20})
		require.NoError(t, err)
		assert.NotNil(t, items)
		assert.Empty(t, items)
	})

	t.Run("pagination parameters", func(t *testing.T) {
		client, ts := newTestClient(t, respondJSON(http.StatusOK, `{"items":null}`))

		_, err := client.ListContent(context.Background(), &ListContentRequest{Limit: 10, Offset: 20})
		require.NoError(t, err)
		assert.Equal(t, []string{"10"}, ts.recorded()[0].Query["limit"])
		assert.Equal(t, []string{"20"}, ts.recorded()[0].Query["offset"])
	})

	t.Run("negative limit", func(t *testing.T) {
		client, ts := newTestClient(t, respondJSON(http.StatusOK, `{}`))

		_, err := client.ListContent(context.Background(), &ListContentRequest{Limit: -1})
		var vErr *ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Equal(t, "limit", vErr.Field)
		assert.Empty(t, ts.recorded())
	})

	t.Run("invalid item", func(t *testing.T) {
		client, _ := newTestClient(t, respondJSON(http.StatusOK, `{"items":[`+contentJSON+`,{"id":"broken"}]}`))

		_, err := client.ListContent(context.Background(), nil)
		var vErr *ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Contains(t, vErr.Field, "items[1]")
	})
}

func TestClient_ListContentIter(t *testing.T) {
	item := func(id string) string {
		return `{"id":"` + id + `","user_id":"u","filename":"f","original_text":"t","upload_date":"2025-01-01T00:00:00Z",
			"last_updated":"2025-01-01T00:00:00Z","status":"uploaded","file_size":1,"file_type":"text/plain","s3_key":"k"}`
	}
	pages := map[string]string{
		"0": `{"items":[` + item("c1") + `,` + item("c2") + `]}`,
		"2": `{"items":[` + item("c3") + `,` + item("c4") + `]}`,
		"4": `{"items":[` + item("c5") + `]}`,
	}

	client, ts := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		respondJSON(http.StatusOK, pages[r.URL.Query().Get("offset")])(w, r)
	})

	var ids []string
	for content, err := range client.ListContentIter(context.Background(), 2) {
		require.NoError(t, err)
		ids = append(ids, content.ID)
	}
	assert.Equal(t, []string{"c1", "c2", "c3", "c4", "c5"}, ids)
	assert.Len(t, ts.recorded(), 3)
}

func TestClient_ListContentIter_IgnoredOffset(t *testing.T) {
	// Every request gets the same full page, whatever the offset.
	client, ts := newTestClient(t, respondJSON(http.StatusOK, `{"items":[`+contentJSON+`,`+contentJSON+`]}`))

	count := 0
	for _, err := range client.ListContentIter(context.Background(), 2) {
		require.NoError(t, err)
		count++
	}
	assert.Equal(t, 2, count)
	assert.Len(t, ts.recorded(), 2)
}

func TestClient_ListContentIter_StopsEarlyAndReportsErrors(t *testing.T) {
	t.Run("break", func(t *testing.T) {
		client, ts := newTestClient(t, respondJSON(http.StatusOK, `{"items":[`+contentJSON+`,`+contentJSON+`]}`))

		count := 0
		for _, err := range client.ListContentIter(context.Background(), 2) {
			require.NoError(t, err)
			count++
			break
		}
		assert.Equal(t, 1, count)
		assert.Len(t, ts.recorded(), 1)
	})

	t.Run("error", func(t *testing.T) {
		client, _ := newTestClient(t, respondJSON(http.StatusInternalServerError, "boom"))

		var errs []error
		for content, err := range client.ListContentIter(context.Background(), 0) {
			assert.Nil(t, content)
			errs = append(errs, err)
		}
		require.Len(t, errs, 1)
		var apiErr *APIError
		assert.ErrorAs(t, errs[0], &apiErr)
	})
}

func TestClient_UploadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "about-us.txt")
	require.NoError(t, os.WriteFile(path, []byte("We make widgets.\n"), 0o600))

	var (
		gotFilename string
		gotData     string
		gotMetadata string
	)
	client, ts := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		mediaType, params, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
		if !assert.NoError(t, err) || !assert.Equal(t, "multipart/form-data", mediaType) {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		mr := multipart.NewReader(r.Body, params["boundary"])
		for {
			part, err := mr.NextPart()
			if err != nil {
				break
			}
			data, _ := io.ReadAll(part)
			switch part.FormName() {
			case "file":
				gotFilename = part.FileName()
				gotData = string(data)
			case "metadata":
				gotMetadata = string(data)
			}
		}
		respondJSON(http.StatusOK, contentJSON)(w, r)
	})

	content, err := client.UploadFile(context.Background(), path, map[string]any{"source": "test"})
	require.NoError(t, err)
	assert.Equal(t, "test-content-id", content.ID)

	reqs := ts.recorded()
	require.Len(t, reqs, 1)
	assert.Equal(t, http.MethodPost, reqs[0].Method)
	assert.Equal(t, "/upload", reqs[0].Path)
	assert.Equal(t, "Bearer test-token", reqs[0].Header.Get("Authorization"))
	assert.NotContains(t, reqs[0].Header.Get("Content-Type"), "application/json")

	assert.Equal(t, "about-us.txt", gotFilename)
	assert.Equal(t, "We make widgets.\n", gotData)
	assert.JSONEq(t, `{"source":"test"}`, gotMetadata)
}

func TestClient_UploadFile_NoMetadata(t *testing.T) {
	path := writeTempFile(t, "a.txt", "a")

	client, ts := newTestClient(t, respondJSON(http.StatusOK, contentJSON))

	_, err := client.UploadFile(context.Background(), path, nil)
	require.NoError(t, err)
	assert.NotContains(t, string(ts.recorded()[0].Body), `name="metadata"`)
}

func TestClient_UploadFile_LocalFailures(t *testing.T) {
	client, ts := newTestClient(t, respondJSON(http.StatusOK, contentJSON))

	t.Run("missing file", func(t *testing.T) {
		_, err := client.UploadFile(context.Background(), filepath.Join(t.TempDir(), "nope.txt"), nil)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrFileNotFound)
		assert.ErrorIs(t, err, fs.ErrNotExist)
	})

	t.Run("directory", func(t *testing.T) {
		_, err := client.UploadFile(context.Background(), t.TempDir(), nil)
		var vErr *ValidationError
		assert.ErrorAs(t, err, &vErr)
	})

	t.Run("unencodable metadata", func(t *testing.T) {
		path := writeTempFile(t, "a.txt", "a")

		_, err := client.UploadFile(context.Background(), path, map[string]any{"ch": make(chan int)})
		var vErr *ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Equal(t, "metadata", vErr.Field)
	})

	assert.Empty(t, ts.recorded(), "no request should reach the server")
}

func TestClient_UploadFile_ServerRejects(t *testing.T) {
	path := writeTempFile(t, "a.txt", "a")

	client, _ := newTestClient(t, respondJSON(http.StatusRequestEntityTooLarge, "file too large"))

	_, err := client.UploadFile(context.Background(), path, nil)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusRequestEntityTooLarge, apiErr.StatusCode)
	assert.Contains(t, apiErr.Error(), "file too large")
}

func TestClient_TransformContent(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		client, ts := newTestClient(t, respondJSON(http.StatusOK, `{
			"success": true,
			"transformed_text": "clean text",
			"chunks": ["a", "b"],
			"company_info": {"name": "Acme"},
			"faqs": [{"q": "What?", "a": "Widgets."}]
		}`))

		result, err := client.TransformContent(context.Background(), "c1")
		require.NoError(t, err)
		assert.True(t, result.Success)
		assert.Equal(t, "clean text", *result.TransformedText)
		assert.Equal(t, []string{"a", "b"}, result.Chunks)
		assert.Equal(t, "Acme", result.CompanyInfo["name"])
		require.Len(t, result.FAQs, 1)
		assert.NoError(t, result.Err())

		assert.Equal(t, http.MethodPost, ts.recorded()[0].Method)
		assert.Equal(t, "/content/c1/transform", ts.recorded()[0].Path)
	})

	t.Run("unsuccessful is not an error", func(t *testing.T) {
		client, _ := newTestClient(t, respondJSON(http.StatusOK, `{"success": false, "error": "no text found"}`))

		result, err := client.TransformContent(context.Background(), "c1")
		require.NoError(t, err)
		assert.False(t, result.Success)
		require.NotNil(t, result.Error)
		assert.Equal(t, "no text found", *result.Error)

		var tErr *TransformationError
		require.ErrorAs(t, result.Err(), &tErr)
		assert.Equal(t, "c1", tErr.ContentID)
		assert.Equal(t, "no text found", tErr.Reason)
		assert.ErrorIs(t, result.Err(), ErrTransformationFailed)
	})
}

func TestClient_SubmitToModel(t *testing.T) {
	tests := []struct {
		name     string
		call     func(*Client) (*Submission, error)
		wantPath string
	}{
		{
			name:     "default provider",
			call:     func(c *Client) (*Submission, error) { return c.SubmitToModel(context.Background(), "c1", "") },
			wantPath: "/content/c1/submit/bedrock",
		},
		{
			name:     "explicit provider",
			call:     func(c *Client) (*Submission, error) { return c.SubmitToModel(context.Background(), "c1", "openai") },
			wantPath: "/content/c1/submit/openai",
		},
		{
			name:     "bedrock alias",
			call:     func(c *Client) (*Submission, error) { return c.SubmitToBedrock(context.Background(), "c1") },
			wantPath: "/content/c1/submit/bedrock",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, ts := newTestClient(t, respondJSON(http.StatusOK, submissionJSON))

			submission, err := tt.call(client)
			require.NoError(t, err)
			assert.Equal(t, ProviderBedrock, submission.Provider)
			assert.Equal(t, SubmissionStatusPending, submission.Status)

			req := ts.recorded()[0]
			assert.Equal(t, http.MethodPost, req.Method)
			assert.Equal(t, tt.wantPath, req.Path)
		})
	}
}

func TestClient_Submissions(t *testing.T) {
	t.Run("get", func(t *testing.T) {
		client, ts := newTestClient(t, respondJSON(http.StatusOK, submissionJSON))

		submission, err := client.GetSubmission(context.Background(), "submission-123")
		require.NoError(t, err)
		assert.Equal(t, "submission-123", submission.ID)
		assert.Equal(t, "/submissions/submission-123", ts.recorded()[0].Path)
	})

	t.Run("list with content filter", func(t *testing.T) {
		client, ts := newTestClient(t, respondJSON(http.StatusOK, `{"items":[`+submissionJSON+`]}`))

		req := NewListSubmissionsRequestBuilder().ContentID("test-content-id").Limit(5).Offset(10).Build()
		submissions, err := client.ListSubmissions(context.Background(), req)
		require.NoError(t, err)
		require.Len(t, submissions, 1)

		q := ts.recorded()[0].Query
		assert.Equal(t, []string{"test-content-id"}, q["content_id"])
		assert.Equal(t, []string{"5"}, q["limit"])
		assert.Equal(t, []string{"10"}, q["offset"])
	})

	t.Run("list without filter", func(t *testing.T) {
		client, ts := newTestClient(t, respondJSON(http.StatusOK, `{}`))

		submissions, err := client.ListSubmissions(context.Background(), nil)
		require.NoError(t, err)
		assert.Empty(t, submissions)
		assert.NotContains(t, ts.recorded()[0].Query, "content_id")
	})
}

func TestClient_GetAnalytics(t *testing.T) {
	client, ts := newTestClient(t, respondJSON(http.StatusOK, analyticsJSON))

	analytics, err := client.GetAnalytics(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, analytics.TotalContent)
	assert.Equal(t, 0.8, analytics.SuccessRate)
	assert.Equal(t, 1.25, analytics.TotalCosts)
	assert.Equal(t, map[string]int{"bedrock": 10}, analytics.SubmissionProviderBreakdown)
	assert.Equal(t, "/analytics", ts.recorded()[0].Path)
}

func TestClient_DeleteContent(t *testing.T) {
	for _, body := range []string{`{"deleted": true}`, ``, `not json`} {
		client, ts := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			io.WriteString(w, body)
		})

		ok, err := client.DeleteContent(context.Background(), "c1")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, http.MethodDelete, ts.recorded()[0].Method)
		assert.Equal(t, "/content/c1", ts.recorded()[0].Path)
	}

	client, _ := newTestClient(t, respondJSON(http.StatusNotFound, ``))
	ok, err := client.DeleteContent(context.Background(), "c1")
	assert.False(t, ok)
	assert.ErrorIs(t, err, ErrNotFound)
}

// everyOperation calls each network operation once against client.
func everyOperation(t *testing.T) map[string]func(*Client) error {
	t.Helper()
	path := writeTempFile(t, "a.txt", "a")
	ctx := context.Background()

	return map[string]func(*Client) error{
		"UploadFile": func(c *Client) error { _, err := c.UploadFile(ctx, path, nil); return err },
		"GetContent": func(c *Client) error { _, err := c.GetContent(ctx, "c1"); return err },
		"ListContent": func(c *Client) error {
			_, err := c.ListContent(ctx, nil)
			return err
		},
		"TransformContent": func(c *Client) error { _, err := c.TransformContent(ctx, "c1"); return err },
		"SubmitToModel":    func(c *Client) error { _, err := c.SubmitToModel(ctx, "c1", ProviderBedrock); return err },
		"GetSubmission":    func(c *Client) error { _, err := c.GetSubmission(ctx, "s1"); return err },
		"ListSubmissions": func(c *Client) error {
			_, err := c.ListSubmissions(ctx, nil)
			return err
		},
		"GetAnalytics":  func(c *Client) error { _, err := c.GetAnalytics(ctx); return err },
		"DeleteContent": func(c *Client) error { _, err := c.DeleteContent(ctx, "c1"); return err },
	}
}

func TestClient_StatusTranslation(t *testing.T) {
	for name, call := range everyOperation(t) {
		t.Run(name+"/401", func(t *testing.T) {
			client, _ := newTestClient(t, respondJSON(http.StatusUnauthorized, "Unauthorized"))

			err := call(client)
			var authErr *AuthenticationError
			require.ErrorAs(t, err, &authErr)
			assert.ErrorIs(t, err, ErrInvalidToken)
			var apiErr *APIError
			assert.False(t, errors.As(err, &apiErr), "401 must not be reported as APIError")
		})

		t.Run(name+"/404", func(t *testing.T) {
			client, _ := newTestClient(t, respondJSON(http.StatusNotFound, "Not Found"))

			var notFound *ContentNotFoundError
			assert.ErrorAs(t, call(client), &notFound)
		})

		t.Run(name+"/500", func(t *testing.T) {
			client, _ := newTestClient(t, respondJSON(http.StatusInternalServerError, "Internal Server Error"))

			err := call(client)
			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
			assert.Equal(t, "Internal Server Error", apiErr.Body)
			assert.Contains(t, err.Error(), "Internal Server Error")
		})
	}
}

func TestClient_NetworkFailure(t *testing.T) {
	client, ts := newTestClient(t, respondJSON(http.StatusOK, analyticsJSON))
	ts.server.Close()

	_, err := client.GetAnalytics(context.Background())
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Zero(t, apiErr.StatusCode)
	assert.NotNil(t, apiErr.Err)
}

func TestClient_TruncatedResponseBody(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		// Promise more bytes than are sent so the connection drops mid-body.
		w.Header().Set("Content-Length", "1000")
		w.WriteHeader(http.StatusOK)
		io.WriteString(w, `{"total_content":`)
	})

	_, err := client.GetAnalytics(context.Background())
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusOK, apiErr.StatusCode)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestClient_ContextCanceled(t *testing.T) {
	client, _ := newTestClient(t, respondJSON(http.StatusOK, analyticsJSON))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.GetAnalytics(ctx)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Zero(t, apiErr.StatusCode)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestClient_ConcurrentUse(t *testing.T) {
	client, ts := newTestClient(t, respondJSON(http.StatusOK, analyticsJSON))

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := client.GetAnalytics(context.Background())
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Len(t, ts.recorded(), 8)
}

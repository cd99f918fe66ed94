package haiblock

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// ContentStatus represents where a piece of content is in the upload → transform → submit flow.
// The server owns these transitions; the client only observes them.
type ContentStatus string

const (
	// ContentStatusUploaded means the file has been stored but not yet processed.
	ContentStatusUploaded ContentStatus = "uploaded"
	// ContentStatusProcessing means a transformation is running.
	ContentStatusProcessing ContentStatus = "processing"
	// ContentStatusTransformed means transformed text is available.
	ContentStatusTransformed ContentStatus = "transformed"
	// ContentStatusSubmitted means the content has been sent to at least one provider.
	ContentStatusSubmitted ContentStatus = "submitted"
	// ContentStatusError means processing failed.
	ContentStatusError ContentStatus = "error"
)

// String returns the string representation of the content status.
func (s ContentStatus) String() string {
	return string(s)
}

// ParseContentStatus converts a wire value into a ContentStatus. Values outside the known set
// are rejected so that contract drift on the server side surfaces immediately.
func ParseContentStatus(s string) (ContentStatus, error) {
	switch ContentStatus(s) {
	case ContentStatusUploaded, ContentStatusProcessing, ContentStatusTransformed,
		ContentStatusSubmitted, ContentStatusError:
		return ContentStatus(s), nil
	}
	return "", &ValidationError{Field: "status", Reason: fmt.Sprintf("has unrecognized value %q", s)}
}

// UnmarshalJSON implements json.Unmarshaler and rejects unknown statuses.
func (s *ContentStatus) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseContentStatus(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// SubmissionStatus represents the outcome of sending content to an AI provider.
type SubmissionStatus string

const (
	// SubmissionStatusPending means the submission is queued.
	SubmissionStatusPending SubmissionStatus = "pending"
	// SubmissionStatusSubmitted means the provider has accepted the submission.
	SubmissionStatusSubmitted SubmissionStatus = "submitted"
	// SubmissionStatusSuccess means the provider processed the content.
	SubmissionStatusSuccess SubmissionStatus = "success"
	// SubmissionStatusError means the provider rejected or failed the submission.
	SubmissionStatusError SubmissionStatus = "error"
)

// String returns the string representation of the submission status.
func (s SubmissionStatus) String() string {
	return string(s)
}

// ParseSubmissionStatus converts a wire value into a SubmissionStatus, rejecting unknown values.
func ParseSubmissionStatus(s string) (SubmissionStatus, error) {
	switch SubmissionStatus(s) {
	case SubmissionStatusPending, SubmissionStatusSubmitted, SubmissionStatusSuccess, SubmissionStatusError:
		return SubmissionStatus(s), nil
	}
	return "", &ValidationError{Field: "status", Reason: fmt.Sprintf("has unrecognized value %q", s)}
}

// UnmarshalJSON implements json.Unmarshaler and rejects unknown statuses.
func (s *SubmissionStatus) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseSubmissionStatus(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Provider names an AI model backend that can receive submissions.
type Provider string

// ProviderBedrock is the default provider.
const ProviderBedrock Provider = "bedrock"

// String returns the provider name.
func (p Provider) String() string {
	return string(p)
}

// timestampLayouts are tried in order. The service emits RFC 3339 most of the time, but some
// records carry naive ISO timestamps, which are read as UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// Timestamp is a point in time as reported by the API.
type Timestamp struct {
	time.Time
}

// ParseTimestamp parses any of the timestamp formats the API is known to emit.
func ParseTimestamp(s string) (Timestamp, error) {
	var firstErr error
	for _, layout := range timestampLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return Timestamp{Time: t}, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return Timestamp{}, firstErr
}

// MarshalJSON encodes the timestamp as RFC 3339.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Time.Format(time.RFC3339Nano))
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseTimestamp(raw)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Content is a snapshot of an uploaded file as tracked by the service.
type Content struct {
	ID               string          `json:"id"`
	UserID           string          `json:"user_id"`
	Filename         string          `json:"filename"`
	OriginalText     string          `json:"original_text"`
	TransformedText  *string         `json:"transformed_text,omitempty"`
	UploadDate       Timestamp       `json:"upload_date"`
	LastUpdated      Timestamp       `json:"last_updated"`
	Status           ContentStatus   `json:"status"`
	FileSize         int64           `json:"file_size"`
	FileType         string          `json:"file_type"`
	S3Key            string          `json:"s3_key"`
	UploadMetadata   map[string]any  `json:"upload_metadata"`
	ValidationChecks map[string]bool `json:"validation_checks"`
	UploadCompleted  *Timestamp      `json:"upload_completed,omitempty"`
	ActualFileSize   *int64          `json:"actual_file_size,omitempty"`
}

// Submission records one attempt to send content to an AI provider.
type Submission struct {
	ID           string           `json:"id"`
	ContentID    string           `json:"content_id"`
	Provider     Provider         `json:"provider"`
	Status       SubmissionStatus `json:"status"`
	SubmittedAt  Timestamp        `json:"submitted_at"`
	ResponseData map[string]any   `json:"response_data"`
	CostEstimate *float64         `json:"cost_estimate,omitempty"`
	ErrorMessage *string          `json:"error_message,omitempty"`
}

// TransformationResult is the outcome of a transformation request. Success may be false with
// Error populated; that is a normal result, not a failed call.
type TransformationResult struct {
	Success         bool             `json:"success"`
	TransformedText *string          `json:"transformed_text,omitempty"`
	Chunks          []string         `json:"chunks"`
	CompanyInfo     map[string]any   `json:"company_info"`
	FAQs            []map[string]any `json:"faqs"`
	Error           *string          `json:"error,omitempty"`

	contentID string
}

// Err returns nil for a successful transformation and a *TransformationError otherwise. It is
// a convenience for callers who prefer to treat an unsuccessful transformation as an error.
func (r *TransformationResult) Err() error {
	if r.Success {
		return nil
	}
	reason := "no reason given"
	if r.Error != nil && *r.Error != "" {
		reason = *r.Error
	}
	return &TransformationError{ContentID: r.contentID, Reason: reason}
}

// Activity is one entry of the analytics activity log. The server does not fix its shape, so
// it is kept as a loose record with accessors for the fields it usually carries.
type Activity map[string]any

func (a Activity) str(key string) string {
	s, _ := a[key].(string)
	return s
}

// Action returns the activity description, or an empty string.
func (a Activity) Action() string { return a.str("action") }

// ContentID returns the content the activity refers to, or an empty string.
func (a Activity) ContentID() string { return a.str("content_id") }

// Status returns the activity status, or an empty string.
func (a Activity) Status() string { return a.str("status") }

// Time returns the parsed activity timestamp. ok is false if it is missing or unparseable.
func (a Activity) Time() (t time.Time, ok bool) {
	ts, err := ParseTimestamp(a.str("timestamp"))
	if err != nil {
		return time.Time{}, false
	}
	return ts.Time, true
}

// MonthlyTrend is the typed view of one entry of AnalyticsData.MonthlyTrends.
type MonthlyTrend struct {
	Submissions int
	Costs       float64
}

// AnalyticsData is a read-only snapshot of account-wide usage. All derived values (rates,
// averages) are computed by the server and reported as-is.
type AnalyticsData struct {
	TotalContent                int            `json:"total_content"`
	TotalSubmissions            int            `json:"total_submissions"`
	SuccessfulSubmissions       int            `json:"successful_submissions"`
	FailedSubmissions           int            `json:"failed_submissions"`
	TotalCosts                  float64        `json:"total_costs"`
	RecentActivity              []Activity     `json:"recent_activity"`
	ContentStatusBreakdown      map[string]int `json:"content_status_breakdown"`
	SubmissionProviderBreakdown map[string]int `json:"submission_provider_breakdown"`
	MonthlyTrends               map[string]any `json:"monthly_trends"`
	AverageCostPerSubmission    float64        `json:"average_cost_per_submission"`
	SuccessRate                 float64        `json:"success_rate"`
}

// Trend returns the submissions and costs recorded for month. ok is false if the month is
// absent or its entry is not an object.
func (a *AnalyticsData) Trend(month string) (trend MonthlyTrend, ok bool) {
	entry, ok := a.MonthlyTrends[month].(map[string]any)
	if !ok {
		return MonthlyTrend{}, false
	}
	if n, isNum := entry["submissions"].(float64); isNum {
		trend.Submissions = int(n)
	}
	if c, isNum := entry["costs"].(float64); isNum {
		trend.Costs = c
	}
	return trend, true
}

// ListContentRequest is the request type for the ListContent method. Zero values select the
// defaults (50 items from offset 0).
type ListContentRequest struct {
	Limit  int
	Offset int
}

// ListSubmissionsRequest is the request type for the ListSubmissions method. ContentID is
// optional and restricts the listing to one piece of content.
type ListSubmissionsRequest struct {
	ContentID string
	Limit     int
	Offset    int
}

// ListSubmissionsRequestBuilder simplifies the construction of a ListSubmissionsRequest.
//
// Example:
//
//	req := NewListSubmissionsRequestBuilder().ContentID("content-id").Limit(10).Build()
type ListSubmissionsRequestBuilder struct {
	req ListSubmissionsRequest
}

// NewListSubmissionsRequestBuilder creates a new ListSubmissionsRequestBuilder.
func NewListSubmissionsRequestBuilder() *ListSubmissionsRequestBuilder {
	return &ListSubmissionsRequestBuilder{}
}

// ContentID restricts the listing to submissions of one piece of content.
func (b *ListSubmissionsRequestBuilder) ContentID(contentID string) *ListSubmissionsRequestBuilder {
	b.req.ContentID = contentID
	return b
}

// Limit sets the page size for the request.
func (b *ListSubmissionsRequestBuilder) Limit(limit int) *ListSubmissionsRequestBuilder {
	b.req.Limit = limit
	return b
}

// Offset sets the number of items to skip.
func (b *ListSubmissionsRequestBuilder) Offset(offset int) *ListSubmissionsRequestBuilder {
	b.req.Offset = offset
	return b
}

// Build creates a new ListSubmissionsRequest from the builder.
func (b *ListSubmissionsRequestBuilder) Build() *ListSubmissionsRequest {
	req := b.req
	return &req
}

// Decoding
//
// Responses are decoded into wire structs whose required fields are pointers, so that a
// missing field can be told apart from a zero value. The validator checks presence; enums and
// timestamps are parsed while converting into the public types.

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func decodeWire(data []byte, wire any) error {
	if err := json.Unmarshal(data, wire); err != nil {
		return decodeFailure(err)
	}
	if err := validate.Struct(wire); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			reason := "failed " + fe.Tag()
			if fe.Tag() == "required" {
				reason = "is required"
			}
			return &ValidationError{Field: fe.Field(), Reason: reason, Err: err}
		}
		return &ValidationError{Reason: "could not validate response", Err: err}
	}
	return nil
}

func decodeFailure(err error) error {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return &ValidationError{
			Field:  typeErr.Field,
			Reason: fmt.Sprintf("must be %s, got %s", typeErr.Type, typeErr.Value),
			Err:    err,
		}
	}
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return &ValidationError{Reason: "response is not valid JSON", Err: err}
	}
	return &ValidationError{Reason: "could not decode response", Err: err}
}

func parseTimestampField(field, value string) (Timestamp, error) {
	ts, err := ParseTimestamp(value)
	if err != nil {
		return Timestamp{}, &ValidationError{Field: field, Reason: fmt.Sprintf("is not a valid timestamp: %q", value), Err: err}
	}
	return ts, nil
}

type contentWire struct {
	ID               *string         `json:"id" validate:"required"`
	UserID           *string         `json:"user_id" validate:"required"`
	Filename         *string         `json:"filename" validate:"required"`
	OriginalText     *string         `json:"original_text" validate:"required"`
	TransformedText  *string         `json:"transformed_text"`
	UploadDate       *string         `json:"upload_date" validate:"required"`
	LastUpdated      *string         `json:"last_updated" validate:"required"`
	Status           *string         `json:"status" validate:"required"`
	FileSize         *int64          `json:"file_size" validate:"required"`
	FileType         *string         `json:"file_type" validate:"required"`
	S3Key            *string         `json:"s3_key" validate:"required"`
	UploadMetadata   map[string]any  `json:"upload_metadata"`
	ValidationChecks map[string]bool `json:"validation_checks"`
	UploadCompleted  *string         `json:"upload_completed"`
	ActualFileSize   *int64          `json:"actual_file_size"`
}

// DecodeContent decodes a Content from its JSON representation. It fails with a
// *ValidationError if a required field is missing or mistyped, or if the status is unknown.
func DecodeContent(data []byte) (*Content, error) {
	var w contentWire
	if err := decodeWire(data, &w); err != nil {
		return nil, err
	}

	status, err := ParseContentStatus(*w.Status)
	if err != nil {
		return nil, err
	}
	uploadDate, err := parseTimestampField("upload_date", *w.UploadDate)
	if err != nil {
		return nil, err
	}
	lastUpdated, err := parseTimestampField("last_updated", *w.LastUpdated)
	if err != nil {
		return nil, err
	}

	c := &Content{
		ID:               *w.ID,
		UserID:           *w.UserID,
		Filename:         *w.Filename,
		OriginalText:     *w.OriginalText,
		TransformedText:  w.TransformedText,
		UploadDate:       uploadDate,
		LastUpdated:      lastUpdated,
		Status:           status,
		FileSize:         *w.FileSize,
		FileType:         *w.FileType,
		S3Key:            *w.S3Key,
		UploadMetadata:   w.UploadMetadata,
		ValidationChecks: w.ValidationChecks,
		ActualFileSize:   w.ActualFileSize,
	}
	if w.UploadCompleted != nil {
		completed, err := parseTimestampField("upload_completed", *w.UploadCompleted)
		if err != nil {
			return nil, err
		}
		c.UploadCompleted = &completed
	}
	return c, nil
}

type submissionWire struct {
	ID           *string        `json:"id" validate:"required"`
	ContentID    *string        `json:"content_id" validate:"required"`
	Provider     *string        `json:"provider" validate:"required"`
	Status       *string        `json:"status" validate:"required"`
	SubmittedAt  *string        `json:"submitted_at" validate:"required"`
	ResponseData map[string]any `json:"response_data"`
	CostEstimate *float64       `json:"cost_estimate"`
	ErrorMessage *string        `json:"error_message"`
}

// DecodeSubmission decodes a Submission from its JSON representation.
func DecodeSubmission(data []byte) (*Submission, error) {
	var w submissionWire
	if err := decodeWire(data, &w); err != nil {
		return nil, err
	}

	status, err := ParseSubmissionStatus(*w.Status)
	if err != nil {
		return nil, err
	}
	submittedAt, err := parseTimestampField("submitted_at", *w.SubmittedAt)
	if err != nil {
		return nil, err
	}

	return &Submission{
		ID:           *w.ID,
		ContentID:    *w.ContentID,
		Provider:     Provider(*w.Provider),
		Status:       status,
		SubmittedAt:  submittedAt,
		ResponseData: w.ResponseData,
		CostEstimate: w.CostEstimate,
		ErrorMessage: w.ErrorMessage,
	}, nil
}

type transformationWire struct {
	Success         *bool            `json:"success" validate:"required"`
	TransformedText *string          `json:"transformed_text"`
	Chunks          []string         `json:"chunks"`
	CompanyInfo     map[string]any   `json:"company_info"`
	FAQs            []map[string]any `json:"faqs"`
	Error           *string          `json:"error"`
}

// DecodeTransformationResult decodes a TransformationResult from its JSON representation.
func DecodeTransformationResult(data []byte) (*TransformationResult, error) {
	var w transformationWire
	if err := decodeWire(data, &w); err != nil {
		return nil, err
	}
	return &TransformationResult{
		Success:         *w.Success,
		TransformedText: w.TransformedText,
		Chunks:          w.Chunks,
		CompanyInfo:     w.CompanyInfo,
		FAQs:            w.FAQs,
		Error:           w.Error,
	}, nil
}

type analyticsWire struct {
	TotalContent                *int           `json:"total_content" validate:"required"`
	TotalSubmissions            *int           `json:"total_submissions" validate:"required"`
	SuccessfulSubmissions       *int           `json:"successful_submissions" validate:"required"`
	FailedSubmissions           *int           `json:"failed_submissions" validate:"required"`
	TotalCosts                  *float64       `json:"total_costs" validate:"required"`
	RecentActivity              []Activity     `json:"recent_activity" validate:"required"`
	ContentStatusBreakdown      map[string]int `json:"content_status_breakdown" validate:"required"`
	SubmissionProviderBreakdown map[string]int `json:"submission_provider_breakdown" validate:"required"`
	MonthlyTrends               map[string]any `json:"monthly_trends" validate:"required"`
	AverageCostPerSubmission    *float64       `json:"average_cost_per_submission" validate:"required"`
	SuccessRate                 *float64       `json:"success_rate" validate:"required"`
}

// DecodeAnalytics decodes AnalyticsData from its JSON representation. Every field is
// required; the values are taken verbatim.
func DecodeAnalytics(data []byte) (*AnalyticsData, error) {
	var w analyticsWire
	if err := decodeWire(data, &w); err != nil {
		return nil, err
	}
	return &AnalyticsData{
		TotalContent:                *w.TotalContent,
		TotalSubmissions:            *w.TotalSubmissions,
		SuccessfulSubmissions:       *w.SuccessfulSubmissions,
		FailedSubmissions:           *w.FailedSubmissions,
		TotalCosts:                  *w.TotalCosts,
		RecentActivity:              w.RecentActivity,
		ContentStatusBreakdown:      w.ContentStatusBreakdown,
		SubmissionProviderBreakdown: w.SubmissionProviderBreakdown,
		MonthlyTrends:               w.MonthlyTrends,
		AverageCostPerSubmission:    *w.AverageCostPerSubmission,
		SuccessRate:                 *w.SuccessRate,
	}, nil
}

type listWire struct {
	Items []json.RawMessage `json:"items"`
}

// decodeList decodes an {"items": [...]} envelope. A missing or null items field is an empty
// list.
func decodeList[T any](data []byte, decode func([]byte) (*T, error)) ([]T, error) {
	var w listWire
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, decodeFailure(err)
	}

	items := make([]T, 0, len(w.Items))
	for i, raw := range w.Items {
		item, err := decode(raw)
		if err != nil {
			return nil, withFieldPrefix(err, fmt.Sprintf("items[%d]", i))
		}
		items = append(items, *item)
	}
	return items, nil
}

func withFieldPrefix(err error, prefix string) error {
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		return err
	}
	field := prefix
	if vErr.Field != "" {
		field = prefix + "." + vErr.Field
	}
	return &ValidationError{Field: field, Reason: vErr.Reason, Err: vErr.Err}
}

// Package haiblock provides the Go SDK for the HaiBlock content optimization API.
//
// HaiBlock takes documents you upload, transforms them into material that AI models can
// consume (chunks, company information, FAQs), and submits the result to AI providers while
// tracking cost and outcome. This SDK wraps the HaiBlock REST API in typed, idiomatic Go.
//
// # Quick Start
//
//	import "github.com/haiblock/gosdk"
//
//	// Create a client. The token can also come from HAIBLOCK_AUTH_TOKEN via ConfigFromEnv.
//	client, err := haiblock.New(haiblock.WithAuthToken("your-token"))
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer client.Close()
//
//	content, err := client.UploadFile(ctx, "./about-us.txt", nil)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	result, err := client.TransformContent(ctx, content.ID)
//	if err != nil {
//		log.Fatal(err)
//	}
//	if !result.Success {
//		log.Printf("transformation failed: %v", result.Err())
//	}
//
//	submission, err := client.SubmitToBedrock(ctx, content.ID)
//
// # Configuration
//
// Settings passed explicitly always win over settings taken from the environment:
//
//	client, err := haiblock.New(
//		haiblock.WithConfig(haiblock.ConfigFromEnv()), // HAIBLOCK_API_URL, HAIBLOCK_AUTH_TOKEN
//		haiblock.WithAPIURL("https://mvp.sandbox.haiblock.com/api"),
//	)
//
// # Operations
//
//   - UploadFile: upload a local file
//   - GetContent, ListContent, ListContentIter, DeleteContent: manage uploaded content
//   - TransformContent: prepare content for AI consumption
//   - SubmitToModel, SubmitToBedrock: send content to an AI provider
//   - GetSubmission, ListSubmissions: inspect submissions
//   - GetAnalytics: account-wide usage and cost figures
//
// Each call is a single request. The SDK keeps no cache and does not retry unless asked to
// with WithRetryConfig.
//
// # Error Handling
//
// Failures are reported with typed errors that work with errors.As:
//
//   - *AuthenticationError: no token was configured, or the API answered 401
//   - *ContentNotFoundError: the API answered 404
//   - *APIError: any other non-2xx status, or no response at all (StatusCode 0)
//   - *ValidationError: bad local input, or a response that does not match the expected model
//
// A transformation that the service could not complete is not an error: TransformContent
// returns a result with Success set to false. Call result.Err() to get a *TransformationError
// for it.
//
//	content, err := client.GetContent(ctx, id)
//	var notFound *haiblock.ContentNotFoundError
//	if errors.As(err, &notFound) {
//		// the content was deleted
//	}
package haiblock

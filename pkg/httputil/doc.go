// Package httputil fetches mystery documents over HTTP.
//
// # Overview
//
//   - [Client]: GET with default headers, a body size limit and retries
//   - [Retry]: Automatic retry with exponential backoff
//
// # Retry
//
// [Retry] re-runs an operation only for errors wrapped in [RetryableError]:
//
//   - Network errors
//   - 5xx server errors
//
// A 404 becomes a DOCUMENT_NOT_FOUND error and other 4xx responses fail
// immediately.
//
//	client := httputil.NewClient(nil)
//	body, contentType, err := client.Fetch(ctx, "https://example.com/mystery.yml")
package httputil

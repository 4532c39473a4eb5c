package httputil

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/matzehuels/mysterygraph/pkg/buildinfo"
	"github.com/matzehuels/mysterygraph/pkg/errors"
)

const (
	httpTimeout = 10 * time.Second

	// MaxDocumentSize caps the size of a fetched document.
	MaxDocumentSize = 4 << 20
)

// Client fetches documents with shared headers and retry behavior.
type Client struct {
	http    *http.Client
	headers map[string]string
	backoff Backoff
}

// NewClient creates a Client with the given default headers.
// Pass nil for headers if no default headers are needed.
func NewClient(headers map[string]string) *Client {
	return &Client{
		http:    &http.Client{Timeout: httpTimeout},
		headers: headers,
		backoff: Backoff{Attempts: 3, Delay: time.Second},
	}
}

// Fetch performs a GET request and returns the body and its Content-Type.
// The URL must be http or https.
func (c *Client) Fetch(ctx context.Context, url string) ([]byte, string, error) {
	if err := errors.ValidateURL(url); err != nil {
		return nil, "", err
	}

	var body []byte
	var contentType string
	err := Retry(ctx, c.backoff, func() error {
		var err error
		body, contentType, err = c.get(ctx, url)
		return err
	})
	if err != nil {
		return nil, "", err
	}
	return body, contentType, nil
}

func (c *Client) get(ctx context.Context, url string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", errors.Wrap(errors.ErrCodeInvalidInput, err, "build request")
	}
	req.Header.Set("User-Agent", "mysterygraph/"+buildinfo.Version)
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, "", errors.Wrap(errors.ErrCodeTimeout, err, "fetch %s", url)
		}
		return nil, "", Retryable(errors.Wrap(errors.ErrCodeNetwork, err, "fetch %s", url))
	}
	defer resp.Body.Close()

	if err := checkStatus(url, resp.StatusCode); err != nil {
		return nil, "", err
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxDocumentSize+1))
	if err != nil {
		return nil, "", Retryable(errors.Wrap(errors.ErrCodeNetwork, err, "read %s", url))
	}
	if len(data) > MaxDocumentSize {
		return nil, "", errors.New(errors.ErrCodeInvalidInput, "document exceeds %d bytes", MaxDocumentSize)
	}
	return data, resp.Header.Get("Content-Type"), nil
}

func checkStatus(url string, code int) error {
	switch {
	case code == http.StatusOK:
		return nil
	case code == http.StatusNotFound:
		return errors.New(errors.ErrCodeDocumentNotFound, "no document at %s", url)
	case code >= 500:
		return Retryable(errors.New(errors.ErrCodeNetwork, "fetch %s: status %d", url, code))
	default:
		return errors.New(errors.ErrCodeNetwork, "fetch %s: status %d", url, code)
	}
}

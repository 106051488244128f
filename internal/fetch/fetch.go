package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

var ErrUpstream = errors.New("upstream request failed")

// Fetcher downloads remote documents with retries.
type Fetcher struct {
	client  *http.Client
	timeout time.Duration
}

// NewFetcher bounds the wait for response headers by timeout. Streamed bodies
// are not cut off; Get bounds the whole download instead.
func NewFetcher(timeout time.Duration, retries int) *Fetcher {
	client := retryablehttp.NewClient()
	client.Logger = nil
	client.RetryMax = retries
	client.HTTPClient.Timeout = 0
	if transport, ok := client.HTTPClient.Transport.(*http.Transport); ok {
		transport.ResponseHeaderTimeout = timeout
	}

	return &Fetcher{client: client.StandardClient(), timeout: timeout}
}

// Open starts a GET request and returns the body for streaming along with the
// upstream content type. The caller closes the body.
func (f *Fetcher) Open(ctx context.Context, url string) (io.ReadCloser, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, "", fmt.Errorf("%w: %s returned %d", ErrUpstream, url, resp.StatusCode)
	}

	return resp.Body, resp.Header.Get("Content-Type"), nil
}

// Get downloads the whole document, refusing anything larger than maxBytes.
func (f *Fetcher) Get(ctx context.Context, url string, maxBytes int64) ([]byte, error) {
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	body, _, err := f.Open(ctx, url)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	b, err := io.ReadAll(io.LimitReader(body, maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	if int64(len(b)) > maxBytes {
		return nil, fmt.Errorf("%w: %s is larger than %d bytes", ErrUpstream, url, maxBytes)
	}

	return b, nil
}

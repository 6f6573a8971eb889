package descriptions

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/chamanbahar/cbm-sales/internal/shared"
)

const maxBodyBytes = 4 << 20

// Fetcher retrieves a page body.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// HTTPFetcher issues one GET per call. It does not retry.
type HTTPFetcher struct {
	client    *http.Client
	userAgent string
}

// NewHTTPFetcher wraps client. A nil client uses http.DefaultClient.
func NewHTTPFetcher(client *http.Client, userAgent string) *HTTPFetcher {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPFetcher{client: client, userAgent: userAgent}
}

// Fetch returns the response body. Transport failures and non-2xx responses
// wrap shared.ErrUnavailable.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("build request for %s: %w: %w", url, shared.ErrUnavailable, err)
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}
	req.Header.Set("Accept", "text/html")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w: %w", url, shared.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return "", fmt.Errorf("fetch %s: status %d: %w", url, resp.StatusCode, shared.ErrUnavailable)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes+1))
	if err != nil {
		return "", fmt.Errorf("read %s: %w: %w", url, shared.ErrUnavailable, err)
	}
	if len(body) > maxBodyBytes {
		return "", fmt.Errorf("read %s: body exceeds %d bytes: %w", url, maxBodyBytes, shared.ErrUnavailable)
	}
	return string(body), nil
}

package source

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// HTTP fetches descriptions over HTTP(S).
type HTTP struct {
	client  *resty.Client
	maxSize int64
}

// NewHTTP returns a fetcher whose requests time out after timeout.
func NewHTTP(timeout time.Duration) *HTTP {
	c := resty.New().
		SetTimeout(timeout).
		SetHeader("Accept", "application/yaml, application/json;q=0.9, */*;q=0.5").
		SetHeader("User-Agent", "apiscore")
	return &HTTP{client: c, maxSize: MaxSize}
}

// Fetch downloads the description at url. Non-2xx responses are errors.
// The body is returned exactly as sent.
func (h *HTTP) Fetch(ctx context.Context, url string) (string, error) {
	resp, err := h.client.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		Get(url)
	if err != nil {
		return "", fmt.Errorf("fetching %s: %w", url, err)
	}
	body := resp.RawBody()
	defer body.Close()

	if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		return "", fmt.Errorf("fetching %s: server returned %s", url, resp.Status())
	}
	return readAll(body, url, h.maxSize)
}

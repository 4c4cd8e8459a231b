package httpds

import (
	"context"
	"fmt"
	"io"
)

// URL is a datasource.Source that downloads its target with the retrying
// client.
type URL struct {
	client *Client
	url    string
}

// NewURL returns a source that fetches url through client.
func NewURL(client *Client, url string) *URL {
	return &URL{client: client, url: url}
}

// Open performs the GET and returns the response body for any 2xx status.
// Every other status closes the body and reports the status code; a partial
// or failed download must fail the run, not feed the parser garbage.
func (u *URL) Open(ctx context.Context) (io.ReadCloser, error) {
	resp, err := u.client.Get(ctx, u.url, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", u.url, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("fetch %s: unexpected status %d", u.url, resp.StatusCode)
	}
	return resp.Body, nil
}

package rates

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rajpat739407/Sales-Data-Processor/internal/datasource/httpds"
)

// DefaultURL serves USD-based rates as a JSON document with a "rates" map.
const DefaultURL = "https://api.exchangerate-api.com/v4/latest/USD"

// Fetcher retrieves the rate table, once per run, before cleaning starts.
// The fetch is strict: any failure aborts the run with no partial output.
// Retries stay disabled so a sick endpoint fails fast instead of stalling
// the run; reruns are cheap.
type Fetcher struct {
	client *httpds.Client
	url    string
}

// NewFetcher builds a fetcher for url, or DefaultURL when empty. timeout
// bounds the single request; zero takes the client default.
func NewFetcher(url string, timeout time.Duration) *Fetcher {
	if url == "" {
		url = DefaultURL
	}
	return &Fetcher{
		// MaxRetries stays 0.
		client: httpds.NewClient(httpds.Config{Timeout: timeout}),
		url:    url,
	}
}

// payload mirrors the exchange-rate endpoint's JSON document.
type payload struct {
	Base  string             `json:"base"`
	Rates map[string]float64 `json:"rates"`
}

// Fetch performs the single GET and returns a validated table. Network
// errors, any status other than 200, malformed JSON, an empty rates map, and
// non-positive rates all fail.
func (f *Fetcher) Fetch(ctx context.Context) (Table, error) {
	resp, err := f.client.Get(ctx, f.url, nil)
	if err != nil {
		return Table{}, fmt.Errorf("rates: fetch %s: %w", f.url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Table{}, fmt.Errorf("rates: fetch %s: unexpected status %d", f.url, resp.StatusCode)
	}
	var p payload
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return Table{}, fmt.Errorf("rates: decode %s: %w", f.url, err)
	}
	return New(p.Base, p.Rates)
}

// URL returns the endpoint the fetcher is bound to, for logging.
func (f *Fetcher) URL() string { return f.url }

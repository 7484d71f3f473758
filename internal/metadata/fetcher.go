// Package metadata fetches a page and extracts its Open Graph description.
package metadata

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/net/html/charset"

	"github.com/MrSnakeDoc/marks/internal/utils"
)

const (
	// DefaultFetchTimeout bounds one outbound page fetch.
	DefaultFetchTimeout = 10 * time.Second
	// DefaultMaxBodyBytes caps how much of a page is read. Longer bodies are truncated.
	DefaultMaxBodyBytes int64 = 5 << 20
	// DefaultUserAgent is sent with every fetch.
	DefaultUserAgent = "marks/1.0 (+bookmark preview)"
)

// ErrFetchFailed wraps every fetch failure: transport errors, timeouts and non-200 responses.
var ErrFetchFailed = errors.New("fetch failed")

// Fetcher performs a single GET against a page URL.
type Fetcher struct {
	client    *http.Client
	timeout   time.Duration
	maxBytes  int64
	userAgent string
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout sets the per-fetch timeout. Non-positive values keep the default.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		if d > 0 {
			f.timeout = d
		}
	}
}

// WithMaxBytes caps the body size read from the page.
func WithMaxBytes(n int64) Option {
	return func(f *Fetcher) {
		if n > 0 {
			f.maxBytes = n
		}
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		if ua != "" {
			f.userAgent = ua
		}
	}
}

// WithHTTPClient replaces the underlying client. Its Timeout is overwritten.
func WithHTTPClient(c *http.Client) Option {
	return func(f *Fetcher) {
		if c != nil {
			f.client = c
		}
	}
}

// NewFetcher creates a Fetcher with a bounded timeout.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		timeout:   DefaultFetchTimeout,
		maxBytes:  DefaultMaxBodyBytes,
		userAgent: DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.client == nil {
		f.client = &http.Client{}
	}
	f.client.Timeout = f.timeout
	return f
}

// Timeout returns the per-fetch timeout.
func (f *Fetcher) Timeout() time.Duration { return f.timeout }

// Fetch returns the page body transcoded to UTF-8.
// Only a 200 response counts as success; everything else wraps ErrFetchFailed.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	defer utils.Close(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: HTTP %d for %s", ErrFetchFailed, resp.StatusCode, url)
	}

	r, err := charset.NewReader(io.LimitReader(resp.Body, f.maxBytes), resp.Header.Get("Content-Type"))
	if errors.Is(err, io.EOF) {
		// An empty 200 is still a page, just one without metadata.
		return []byte{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: decoding body: %v", ErrFetchFailed, err)
	}

	body, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: reading body: %v", ErrFetchFailed, err)
	}

	return body, nil
}

// Package lookup queries the DuckDuckGo Instant Answer API for short
// background text about a query.
package lookup

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const DefaultURL = "https://api.duckduckgo.com/"

// maxBodySize caps how much of a response is read
const maxBodySize = 1 << 20

// Answer holds the fields of an instant answer that are useful as context.
// Either may be empty.
type Answer struct {
	Abstract string
	Answer   string
}

// Context returns the abstract, else the answer, else fallback
func (a Answer) Context(fallback string) string {
	if s := strings.TrimSpace(a.Abstract); s != "" {
		return s
	}
	if s := strings.TrimSpace(a.Answer); s != "" {
		return s
	}
	return fallback
}

// Lookuper is the capability the classifier depends on
type Lookuper interface {
	Lookup(ctx context.Context, query string) (Answer, error)
}

// Client calls the Instant Answer API
type Client struct {
	baseURL  string
	client   *http.Client
	attempts int
	backoff  time.Duration
}

type Option func(*Client)

// WithHTTPClient replaces the default HTTP client
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.client = c }
}

// WithRetries sets how many attempts are made on 5xx responses and transport errors
func WithRetries(attempts int, backoff time.Duration) Option {
	return func(cl *Client) {
		if attempts > 0 {
			cl.attempts = attempts
		}
		cl.backoff = backoff
	}
}

func NewClient(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultURL
	}
	transport := &http.Transport{
		MaxIdleConns:          10,
		MaxIdleConnsPerHost:   2,
		IdleConnTimeout:       30 * time.Second,
		TLSHandshakeTimeout:   5 * time.Second,
		ResponseHeaderTimeout: 5 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
	c := &Client{
		baseURL: baseURL,
		client: &http.Client{
			Transport: transport,
			// the caller's context carries the real deadline
			Timeout: 30 * time.Second,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("too many redirects (limit: 3)")
				}
				return nil
			},
		},
		attempts: 2,
		backoff:  200 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type instantAnswer struct {
	Abstract string          `json:"Abstract"`
	Answer   json.RawMessage `json:"Answer"`
}

// Lookup fetches the instant answer for query. 4xx responses are not retried.
func (c *Client) Lookup(ctx context.Context, query string) (Answer, error) {
	endpoint, err := c.endpoint(query)
	if err != nil {
		return Answer{}, err
	}

	var lastErr error
	for attempt := 0; attempt < c.attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return Answer{}, ctx.Err()
			case <-time.After(time.Duration(attempt) * c.backoff):
			}
		}

		ans, retry, err := c.fetch(ctx, endpoint)
		if err == nil {
			return ans, nil
		}
		lastErr = err
		if !retry || ctx.Err() != nil {
			break
		}
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return Answer{}, fmt.Errorf("lookup %q: %w", query, ctxErr)
	}
	return Answer{}, fmt.Errorf("lookup %q: %w", query, lastErr)
}

func (c *Client) endpoint(query string) (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid lookup URL: %w", err)
	}
	q := u.Query()
	q.Set("q", query)
	q.Set("format", "json")
	q.Set("no_html", "1")
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// fetch performs one request and reports whether a failure may be retried
func (c *Client) fetch(ctx context.Context, endpoint string) (Answer, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Answer{}, false, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "go-screen-interpreter/1.0")

	resp, err := c.client.Do(req)
	if err != nil {
		return Answer{}, true, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 500:
		return Answer{}, true, fmt.Errorf("server error: status code %d", resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return Answer{}, false, fmt.Errorf("client error: status code %d", resp.StatusCode)
	}

	var payload instantAnswer
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodySize)).Decode(&payload); err != nil {
		return Answer{}, false, fmt.Errorf("decode response: %w", err)
	}

	ans := Answer{Abstract: payload.Abstract}
	// Answer is sometimes an object (calculators, widgets); only text is usable
	if len(payload.Answer) > 0 {
		var s string
		if json.Unmarshal(payload.Answer, &s) == nil {
			ans.Answer = s
		}
	}
	return ans, false, nil
}

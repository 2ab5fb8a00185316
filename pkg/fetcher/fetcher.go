package fetcher

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"
)

// StatusError is returned for non-200 responses.
type StatusError struct {
	URL        string
	StatusCode int
	Title      string // <title> of an HTML error page, if any
}

func (e *StatusError) Error() string {
	if e.Title != "" {
		return fmt.Sprintf("unexpected status code %d from %s: %s", e.StatusCode, e.URL, e.Title)
	}
	return fmt.Sprintf("unexpected status code %d from %s", e.StatusCode, e.URL)
}

// DecodeError is returned when a 200 response does not hold the expected JSON.
type DecodeError struct {
	URL   string
	Title string
	Err   error
}

func (e *DecodeError) Error() string {
	if e.Title != "" {
		return fmt.Sprintf("failed to decode response from %s: got HTML page %q", e.URL, e.Title)
	}
	return fmt.Sprintf("failed to decode response from %s: %v", e.URL, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

type Fetcher struct {
	client    *http.Client
	limiter   *rate.Limiter
	userAgent string
}

type Option func(*Fetcher)

// WithRateLimit caps outbound requests per second. Zero or less is unlimited.
func WithRateLimit(rps float64) Option {
	return func(f *Fetcher) {
		if rps > 0 {
			burst := int(rps)
			if burst < 1 {
				burst = 1
			}
			f.limiter = rate.NewLimiter(rate.Limit(rps), burst)
		}
	}
}

// WithTimeout sets a per-request timeout. Zero leaves requests bounded only
// by the caller's context.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.client.Timeout = d
	}
}

func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		client: &http.Client{
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 100,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		limiter: rate.NewLimiter(rate.Inf, 0),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// GetBytes performs a GET and returns the body of a 200 response.
func (f *Fetcher) GetBytes(ctx context.Context, url string) ([]byte, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make HTTP request: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{URL: url, StatusCode: resp.StatusCode, Title: htmlTitle(bodyBytes)}
	}
	return bodyBytes, nil
}

// GetJSON performs a GET and decodes the JSON body into v.
func (f *Fetcher) GetJSON(ctx context.Context, url string, v interface{}) error {
	body, err := f.GetBytes(ctx, url)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return &DecodeError{URL: url, Title: htmlTitle(body), Err: err}
	}
	return nil
}

// htmlTitle extracts the <title> of an HTML body. Proxies and the API host
// answer with HTML error pages; the title is the useful part.
func htmlTitle(body []byte) string {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '<' {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(trimmed))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(doc.Find("title").First().Text())
}

// ErrorType classifies a fetch error for the access log.
func ErrorType(err error) string {
	var statusErr *StatusError
	var decodeErr *DecodeError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &statusErr):
		return "http_error"
	case errors.As(err, &decodeErr):
		return "parse_error"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	default:
		return "network_error"
	}
}

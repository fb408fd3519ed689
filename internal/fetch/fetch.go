package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hyperifyio/tagscrape/internal/cache"
)

const (
	defaultRedirectMaxHops = 30
	defaultMaxBodyBytes    = 10 << 20
)

var (
	// ErrEmptyURL is returned for a blank URL, such as a seed entry without a
	// website field. No request is attempted.
	ErrEmptyURL = errors.New("empty url")
	// ErrUnsupportedScheme is returned for anything other than http or https.
	ErrUnsupportedScheme = errors.New("unsupported url scheme")
	// ErrTooManyRedirects is returned when the redirect chain exceeds the cap.
	ErrTooManyRedirects = errors.New("too many redirects")
)

// StatusError reports an HTTP error status (4xx or 5xx).
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d for %s", e.StatusCode, e.URL)
}

// Response is the outcome of a successful Get.
type Response struct {
	// URL is the URL that was requested.
	URL string
	// FinalURL is the URL the transport ended on after following redirects.
	FinalURL    string
	StatusCode  int
	ContentType string
	Body        []byte
	// Redirects is the number of redirect hops the transport followed.
	Redirects int
	FromCache bool
}

// Redirected reports whether the transport followed at least one redirect.
func (r *Response) Redirected() bool { return r != nil && r.Redirects > 0 }

// Client performs single-attempt GET requests with a per-request timeout, a
// capped redirect policy and an optional conditional-request cache.
type Client struct {
	HTTPClient *http.Client
	UserAgent  string
	// PerRequestTimeout bounds each request including redirects. Zero disables it.
	PerRequestTimeout time.Duration
	// RedirectMaxHops caps redirects followed by the transport. Zero means 30.
	RedirectMaxHops int
	// MaxBodyBytes truncates larger bodies. Zero means 10 MiB.
	MaxBodyBytes int64
	// Optional on-disk cache for bodies and validators.
	Cache *cache.HTTPCache
	// If true, skip conditional headers but still save fresh responses.
	BypassCache bool
}

// httpClientFor clones the configured client and attaches a redirect policy
// that records the number of hops into *hops.
func (c *Client) httpClientFor(hops *int) *http.Client {
	var base http.Client
	if c.HTTPClient != nil {
		base = *c.HTTPClient
	}
	max := c.RedirectMaxHops
	if max <= 0 {
		max = defaultRedirectMaxHops
	}
	base.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		if len(via) > max {
			return ErrTooManyRedirects
		}
		if req.URL == nil || !isHTTPScheme(req.URL) {
			return fmt.Errorf("redirect: %w", ErrUnsupportedScheme)
		}
		*hops = len(via)
		return nil
	}
	return &base
}

// Get fetches rawURL once. Transport failures and 4xx/5xx statuses are
// returned as errors; a *StatusError carries the status code.
func (c *Client) Get(ctx context.Context, rawURL string) (*Response, error) {
	if strings.TrimSpace(rawURL) == "" {
		return nil, ErrEmptyURL
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse url: %w", err)
	}
	if !isHTTPScheme(u) {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedScheme, rawURL)
	}

	// Validators are only sent when the cached body is readable, so a 304
	// always has a body to fall back on.
	var cached *cache.HTTPEntry
	var cachedBody []byte
	if c.Cache != nil && !c.BypassCache {
		if meta, err := c.Cache.LoadMeta(ctx, rawURL); err == nil {
			if body, err := c.Cache.LoadBody(ctx, rawURL); err == nil {
				cached, cachedBody = meta, body
			}
		}
	}

	if c.PerRequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.PerRequestTimeout)
		defer cancel()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}
	if cached != nil {
		if cached.ETag != "" {
			req.Header.Set("If-None-Match", cached.ETag)
		}
		if cached.LastModified != "" {
			req.Header.Set("If-Modified-Since", cached.LastModified)
		}
	}

	hops := 0
	resp, err := c.httpClientFor(&hops).Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	out := &Response{
		URL:         rawURL,
		FinalURL:    resp.Request.URL.String(),
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Redirects:   hops,
	}
	if resp.StatusCode >= 400 {
		return nil, &StatusError{URL: rawURL, StatusCode: resp.StatusCode}
	}

	if resp.StatusCode == http.StatusNotModified {
		if cached == nil {
			return nil, fmt.Errorf("not modified without a cached body for %s", rawURL)
		}
		out.Body = cachedBody
		out.FromCache = true
		if out.ContentType == "" {
			out.ContentType = cached.ContentType
		}
		return out, nil
	}

	limit := c.MaxBodyBytes
	if limit <= 0 {
		limit = defaultMaxBodyBytes
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, limit))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	out.Body = body

	if c.Cache != nil && resp.StatusCode == http.StatusOK {
		_ = c.Cache.Save(ctx, cache.HTTPEntry{
			URL:          rawURL,
			ContentType:  out.ContentType,
			ETag:         resp.Header.Get("ETag"),
			LastModified: resp.Header.Get("Last-Modified"),
		}, body)
	}
	return out, nil
}

func isHTTPScheme(u *url.URL) bool {
	if u == nil {
		return false
	}
	scheme := strings.ToLower(u.Scheme)
	return scheme == "http" || scheme == "https"
}

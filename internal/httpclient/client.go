// Package httpclient implements the request-execution pipeline described in
// spec §4.B: retry/backoff, gzip/brotli decompression, range & conditional
// fetch, per-request timeouts, proxy-mode selection, and automatic cookie
// attach/observe against a shared jar.
package httpclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/roflsunriz/VBBB-sub002/internal/cookiejar"
	"github.com/roflsunriz/VBBB-sub002/internal/proxymanager"
)

// Method is the HTTP method of a Request.
type Method string

const (
	MethodGet  Method = http.MethodGet
	MethodPost Method = http.MethodPost
)

// Request describes one outbound fetch.
type Request struct {
	URL              string
	Method           Method
	Headers          map[string]string
	Body             []byte
	ConnectTimeout   time.Duration
	ReadTimeout      time.Duration
	Range            string // e.g. "bytes=2048-"
	IfModifiedSince  time.Time
	AcceptGzip       bool
	ProxyMode        proxymanager.Mode
}

// Response is what callers observe: status, lowercased header names, the
// fully decoded body, and any Last-Modified value the server sent.
type Response struct {
	Status       int
	Headers      http.Header
	Body         []byte
	LastModified time.Time
	HasLastMod   bool
}

// Client executes requests against the shared cookie jar and proxy
// configuration. One Client is shared by every component that speaks HTTP
// (board fetchers, auth subsystems, the post engine).
type Client struct {
	jar               *cookiejar.Jar
	proxyMgr          *proxymanager.Manager
	retry             RetryPolicy
	useBrowserParity  bool
	userAgent         string

	mu        sync.Mutex
	transports *transportSet
	bpTransport http.RoundTripper
}

// New creates a Client backed by jar and pm, using the default retry policy
// and the default Monazilla-style User-Agent.
func New(jar *cookiejar.Jar, pm *proxymanager.Manager) *Client {
	return &Client{
		jar:       jar,
		proxyMgr:  pm,
		retry:     DefaultRetryPolicy(),
		userAgent: DefaultUserAgent,
	}
}

// SetUserAgent overrides the Monazilla-style identity string sent on every
// request.
func (c *Client) SetUserAgent(ua string) {
	c.mu.Lock()
	c.userAgent = ua
	c.mu.Unlock()
}

// SetRetryPolicy overrides the default retry policy.
func (c *Client) SetRetryPolicy(p RetryPolicy) {
	c.mu.Lock()
	c.retry = p
	c.mu.Unlock()
}

// SetBrowserParity toggles the optional uTLS/HTTP2 browser-parity transport
// (spec SPEC_FULL.md §4.B) for requests that need a stable, coherent client
// identity against fingerprint-sensitive edge protection.
func (c *Client) SetBrowserParity(enabled bool) {
	c.mu.Lock()
	c.useBrowserParity = enabled
	c.mu.Unlock()
}

// RefreshProxyConfig must be called after the proxy manager's configuration
// changes so subsequent fetches route through the new endpoints.
func (c *Client) RefreshProxyConfig() {
	c.mu.Lock()
	c.transports = nil
	c.mu.Unlock()
}

func (c *Client) transportFor(mode proxymanager.Mode, connectTimeout time.Duration) (http.RoundTripper, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.useBrowserParity {
		if c.bpTransport == nil {
			c.bpTransport = browserParityTransport(connectTimeout)
		}
		return c.bpTransport, nil
	}

	if c.transports == nil {
		ts, err := buildTransportSet(c.proxyMgr, connectTimeout)
		if err != nil {
			return nil, err
		}
		c.transports = ts
	}
	if mode == proxymanager.Read {
		return c.transports.read, nil
	}
	return c.transports.write, nil
}

// Fetch executes req, retrying according to the client's retry policy, and
// returns the decoded Response. Cookies are attached automatically from the
// jar unless req.Headers already supplies a "Cookie" entry; every response's
// Set-Cookie headers are parsed back into the jar regardless of outcome.
func (c *Client) Fetch(ctx context.Context, req Request) (*Response, error) {
	connectTimeout := req.ConnectTimeout
	if connectTimeout == 0 {
		connectTimeout = 10 * time.Second
	}
	readTimeout := req.ReadTimeout
	if readTimeout == 0 {
		readTimeout = 30 * time.Second
	}

	rt, err := c.transportFor(req.ProxyMode, connectTimeout)
	if err != nil {
		return nil, fmt.Errorf("httpclient: select transport: %w", err)
	}
	httpClient := &http.Client{Transport: rt, Timeout: readTimeout}
	if req.Method == MethodPost {
		// A POST's response is returned as received: a redirect (Machi
		// answers a successful post with a 302) is not followed.
		httpClient.CheckRedirect = func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }
	}

	c.mu.Lock()
	policy := c.retry
	c.mu.Unlock()

	var lastErr error
	for attempt := 0; attempt <= policy.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(policy.nextDelay(attempt - 1)):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		resp, err := c.doOnce(ctx, httpClient, req)
		if err != nil {
			lastErr = err
			continue
		}
		if policy.shouldRetryStatus(resp.Status) && attempt < policy.MaxRetries {
			lastErr = fmt.Errorf("httpclient: retryable status %d", resp.Status)
			continue
		}
		return resp, nil
	}
	return nil, fmt.Errorf("httpclient: fetch %s failed after %d attempts: %w", req.URL, policy.MaxRetries+1, lastErr)
}

func (c *Client) doOnce(ctx context.Context, httpClient *http.Client, req Request) (*Response, error) {
	var bodyReader io.Reader
	if req.Body != nil {
		bodyReader = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, string(req.Method), req.URL, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("httpclient: build request: %w", err)
	}

	c.mu.Lock()
	ua := c.userAgent
	c.mu.Unlock()
	monazillaHeaders(ua).ApplyToRequest(httpReq)

	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}

	if httpReq.Header.Get("Cookie") == "" {
		if cookieHeader := c.jar.BuildCookieHeader(httpReq.URL); cookieHeader != "" {
			httpReq.Header.Set("Cookie", cookieHeader)
		}
	}
	if req.Range != "" {
		httpReq.Header.Set("Range", req.Range)
	}
	if !req.IfModifiedSince.IsZero() {
		httpReq.Header.Set("If-Modified-Since", req.IfModifiedSince.UTC().Format(http.TimeFormat))
	}
	if req.AcceptGzip {
		httpReq.Header.Set("Accept-Encoding", "gzip, br")
	}

	httpResp, err := httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("httpclient: execute %s %s: %w", req.Method, req.URL, err)
	}
	defer httpResp.Body.Close()

	rawBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("httpclient: read response body: %w", err)
	}

	contentEncoding := strings.ToLower(httpResp.Header.Get("Content-Encoding"))
	decoded, err := decodeBody(rawBody, contentEncoding)
	if err != nil {
		return nil, fmt.Errorf("httpclient: decode body: %w", err)
	}

	if setCookies := httpResp.Header.Values("Set-Cookie"); len(setCookies) > 0 {
		c.jar.ParseSetCookieHeader(setCookies, httpReq.URL)
	}

	headers := make(http.Header, len(httpResp.Header))
	for k, v := range httpResp.Header {
		headers[strings.ToLower(k)] = v
	}
	delete(headers, "content-encoding")

	resp := &Response{
		Status:  httpResp.StatusCode,
		Headers: headers,
		Body:    decoded,
	}
	if lm := httpResp.Header.Get("Last-Modified"); lm != "" {
		if t, err := http.ParseTime(lm); err == nil {
			resp.LastModified = t
			resp.HasLastMod = true
		}
	}
	return resp, nil
}

// BuildURL is a small helper for components composing query strings for GET
// requests.
func BuildURL(base string, query url.Values) string {
	if len(query) == 0 {
		return base
	}
	sep := "?"
	if strings.Contains(base, "?") {
		sep = "&"
	}
	return base + sep + query.Encode()
}

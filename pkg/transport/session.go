// Package transport executes HTTP verbs with persistent cookies, optional
// proxy and response decompression. It stays protocol-dumb: classification
// of failures into the error taxonomy happens at the dispatch boundary.
package transport

import (
	"bytes"
	"compress/flate"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"

	"igclient/pkg/logger"
)

// Response is the raw result of one HTTP exchange. Body is fully read and
// decompressed.
type Response struct {
	StatusCode int
	// URL is the final URL after redirects; soft-redirect classification
	// depends on it.
	URL    string
	Header http.Header
	Body   []byte
}

// Session wraps an http.Client with a persistent cookie jar. The underlying
// connection pool opens lazily on first use and can be closed and reopened;
// reconfiguring the proxy rebuilds the pool but keeps the jar.
type Session struct {
	mu          sync.Mutex
	client      *http.Client
	jar         http.CookieJar
	roundTrip   http.RoundTripper // non-nil overrides the built transport (tests)
	proxy       *url.URL
	base        *url.URL
	readTimeout time.Duration
	log         logger.Logger
}

// New creates a session scoped to the given base URL (used for cookie
// convenience accessors).
func New(base string, readTimeout time.Duration, log logger.Logger) (*Session, error) {
	if log == nil {
		log = logger.GetLogger()
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}
	return &Session{
		jar:         jar,
		base:        baseURL,
		readTimeout: readTimeout,
		log:         log,
	}, nil
}

// SetTransport overrides the round tripper, for tests.
func (s *Session) SetTransport(rt http.RoundTripper) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.roundTrip = rt
	s.client = nil
}

// SetProxy reconfigures the proxy from a URL string; the scheme defaults to
// http:// when absent and empty clears the proxy. The connection pool is
// recreated, the cookie jar survives. This is a session-setup operation,
// not a per-request one.
func (s *Session) SetProxy(dsn string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if dsn == "" {
		s.proxy = nil
		s.client = nil
		return nil
	}
	if !strings.Contains(dsn, "://") {
		dsn = "http://" + dsn
	}
	u, err := url.Parse(dsn)
	if err != nil {
		return fmt.Errorf("invalid proxy url: %w", err)
	}
	s.proxy = u
	s.client = nil
	return nil
}

// Proxy returns the configured proxy URL, empty when none.
func (s *Session) Proxy() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.proxy == nil {
		return ""
	}
	return s.proxy.String()
}

// Close drops the connection pool. The session reopens lazily on next use.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.client != nil {
		if t, ok := s.client.Transport.(*http.Transport); ok {
			t.CloseIdleConnections()
		}
		s.client = nil
	}
}

func (s *Session) httpClient() *http.Client {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.client == nil {
		var rt http.RoundTripper
		if s.roundTrip != nil {
			rt = s.roundTrip
		} else {
			t := &http.Transport{}
			if s.proxy != nil {
				t.Proxy = http.ProxyURL(s.proxy)
			}
			rt = t
		}
		s.client = &http.Client{
			Transport:     rt,
			Jar:           s.jar,
			Timeout:       s.readTimeout,
			CheckRedirect: trackRedirects,
		}
	}
	return s.client
}

// finalURLKey carries a per-request holder for the URL reached after
// redirects. Response.Request is only populated by http.Transport, so with a
// custom round tripper the redirect hook is the one reliable source.
type finalURLKey struct{}

func trackRedirects(req *http.Request, via []*http.Request) error {
	if holder, ok := req.Context().Value(finalURLKey{}).(*string); ok {
		*holder = req.URL.String()
	}
	if len(via) >= 10 {
		return fmt.Errorf("stopped after 10 redirects")
	}
	return nil
}

// Get issues a GET with optional query params and extra headers.
func (s *Session) Get(ctx context.Context, rawURL string, params url.Values, headers map[string]string) (*Response, error) {
	return s.do(ctx, http.MethodGet, rawURL, params, headers, "", "")
}

// Post issues a POST with the given body and content type.
func (s *Session) Post(ctx context.Context, rawURL string, params url.Values, headers map[string]string, body, contentType string) (*Response, error) {
	return s.do(ctx, http.MethodPost, rawURL, params, headers, body, contentType)
}

func (s *Session) do(ctx context.Context, method, rawURL string, params url.Values, headers map[string]string, body, contentType string) (*Response, error) {
	if len(params) > 0 {
		sep := "?"
		if strings.Contains(rawURL, "?") {
			sep = "&"
		}
		rawURL += sep + params.Encode()
	}
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	finalURL := rawURL
	ctx = context.WithValue(ctx, finalURLKey{}, &finalURL)
	req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	for k, v := range headers {
		if v == "" {
			continue
		}
		req.Header.Set(k, v)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	start := time.Now()
	resp, err := s.httpClient().Do(req)
	if err != nil {
		s.log.DebugWithFields("request failed", map[string]interface{}{
			"method": method,
			"url":    rawURL,
			"error":  err.Error(),
		})
		return nil, err
	}
	defer resp.Body.Close()

	data, err := decodeBody(resp)
	if err != nil {
		return nil, err
	}
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}
	s.log.DebugWithFields("request completed", map[string]interface{}{
		"method":   method,
		"url":      finalURL,
		"status":   resp.StatusCode,
		"duration": time.Since(start).String(),
	})
	return &Response{
		StatusCode: resp.StatusCode,
		URL:        finalURL,
		Header:     resp.Header,
		Body:       data,
	}, nil
}

// decodeBody reads and decompresses the response. Content-Encoding is
// handled here because the dispatchers set Accept-Encoding explicitly,
// which disables net/http's automatic gzip handling. zstd is the
// platform's non-standard scheme; the decoder streams so concatenated
// frames decode too.
func decodeBody(resp *http.Response) ([]byte, error) {
	var reader io.Reader = resp.Body
	switch strings.ToLower(resp.Header.Get("Content-Encoding")) {
	case "zstd":
		dec, err := zstd.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("zstd decoder: %w", err)
		}
		defer dec.Close()
		reader = dec
	case "gzip":
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("gzip decoder: %w", err)
		}
		defer gz.Close()
		reader = gz
	case "deflate":
		fl := flate.NewReader(resp.Body)
		defer fl.Close()
		reader = fl
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, reader); err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return buf.Bytes(), nil
}

// Cookies returns the raw cookies scoped to the session base URL.
func (s *Session) Cookies() []*http.Cookie {
	return s.jar.Cookies(s.base)
}

// CookieDict returns the session cookies as a name to value map.
func (s *Session) CookieDict() map[string]string {
	out := map[string]string{}
	for _, c := range s.jar.Cookies(s.base) {
		out[c.Name] = c.Value
	}
	return out
}

// CookieValue returns one cookie value, empty when absent.
func (s *Session) CookieValue(name string) string {
	return s.CookieDict()[name]
}

// ClearCookies swaps in an empty jar, dropping all session cookies.
func (s *Session) ClearCookies() {
	s.mu.Lock()
	defer s.mu.Unlock()
	jar, err := cookiejar.New(nil)
	if err != nil {
		return
	}
	s.jar = jar
	s.client = nil
}

// SetCookies seeds the jar with name/value pairs scoped to the base domain.
func (s *Session) SetCookies(values map[string]string) {
	cookies := make([]*http.Cookie, 0, len(values))
	for name, value := range values {
		cookies = append(cookies, &http.Cookie{
			Name:   name,
			Value:  value,
			Path:   "/",
			Domain: s.base.Hostname(),
		})
	}
	s.jar.SetCookies(s.base, cookies)
}

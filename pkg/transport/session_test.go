package transport

import (
	"bytes"
	"compress/gzip"
	"context"
	"io"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"igclient/pkg/logger"
)

type mockRoundTripper struct {
	handler func(req *http.Request) (*http.Response, error)
}

func (m *mockRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	return m.handler(req)
}

func newResponse(statusCode int, body string) *http.Response {
	return &http.Response{
		StatusCode: statusCode,
		Body:       io.NopCloser(bytes.NewBufferString(body)),
		Header:     make(http.Header),
	}
}

func newTestSession(t *testing.T, handler func(req *http.Request) (*http.Response, error)) *Session {
	t.Helper()
	s, err := New("https://i.instagram.com", 5*time.Second, logger.NewTestLogger())
	require.NoError(t, err)
	s.SetTransport(&mockRoundTripper{handler: handler})
	return s
}

func TestGetSendsParamsAndHeaders(t *testing.T) {
	var got *http.Request
	s := newTestSession(t, func(req *http.Request) (*http.Response, error) {
		got = req
		return newResponse(200, `{"status":"ok"}`), nil
	})

	params := url.Values{"max_id": {"cursor-1"}}
	headers := map[string]string{"X-IG-App-ID": "1234"}
	resp, err := s.Get(context.Background(), "https://i.instagram.com/api/v1/feed/user/", params, headers)
	require.NoError(t, err)

	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, `{"status":"ok"}`, string(resp.Body))
	assert.Equal(t, "cursor-1", got.URL.Query().Get("max_id"))
	assert.Equal(t, "1234", got.Header.Get("X-IG-App-ID"))
	assert.Equal(t, http.MethodGet, got.Method)
}

func TestPostSendsBody(t *testing.T) {
	var gotBody string
	var gotContentType string
	s := newTestSession(t, func(req *http.Request) (*http.Response, error) {
		raw, _ := io.ReadAll(req.Body)
		gotBody = string(raw)
		gotContentType = req.Header.Get("Content-Type")
		return newResponse(200, `{}`), nil
	})

	_, err := s.Post(context.Background(), "https://i.instagram.com/api/v1/accounts/login/", nil, nil,
		"signed_body=abc&ig_sig_key_version=4&%7B%7D", "application/x-www-form-urlencoded; charset=UTF-8")
	require.NoError(t, err)
	assert.Equal(t, "signed_body=abc&ig_sig_key_version=4&%7B%7D", gotBody)
	assert.Equal(t, "application/x-www-form-urlencoded; charset=UTF-8", gotContentType)
}

func TestCookiesPersistAcrossRequests(t *testing.T) {
	calls := 0
	s := newTestSession(t, func(req *http.Request) (*http.Response, error) {
		calls++
		if calls == 1 {
			resp := newResponse(200, `{}`)
			resp.Header.Set("Set-Cookie", "csrftoken=tok123; Path=/; Domain=i.instagram.com")
			return resp, nil
		}
		cookie, err := req.Cookie("csrftoken")
		require.NoError(t, err)
		assert.Equal(t, "tok123", cookie.Value)
		return newResponse(200, `{}`), nil
	})

	_, err := s.Get(context.Background(), "https://i.instagram.com/api/v1/a/", nil, nil)
	require.NoError(t, err)
	_, err = s.Get(context.Background(), "https://i.instagram.com/api/v1/b/", nil, nil)
	require.NoError(t, err)

	assert.Equal(t, "tok123", s.CookieValue("csrftoken"))
	assert.Equal(t, 2, calls)
}

func TestSetAndClearCookies(t *testing.T) {
	s := newTestSession(t, func(req *http.Request) (*http.Response, error) {
		return newResponse(200, `{}`), nil
	})
	s.SetCookies(map[string]string{"sessionid": "123:tok:5", "mid": "m"})
	assert.Equal(t, "123:tok:5", s.CookieValue("sessionid"))

	dict := s.CookieDict()
	assert.Len(t, dict, 2)

	s.ClearCookies()
	assert.Empty(t, s.CookieDict())
}

func TestGzipDecoding(t *testing.T) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, _ = zw.Write([]byte(`{"status":"ok","gz":true}`))
	_ = zw.Close()

	s := newTestSession(t, func(req *http.Request) (*http.Response, error) {
		resp := &http.Response{
			StatusCode: 200,
			Body:       io.NopCloser(bytes.NewReader(buf.Bytes())),
			Header:     make(http.Header),
		}
		resp.Header.Set("Content-Encoding", "gzip")
		return resp, nil
	})

	resp, err := s.Get(context.Background(), "https://i.instagram.com/api/v1/x/", nil, nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"ok","gz":true}`, string(resp.Body))
}

func TestZstdDecoding(t *testing.T) {
	var buf bytes.Buffer
	zw, err := zstd.NewWriter(&buf)
	require.NoError(t, err)
	_, _ = zw.Write([]byte(`{"status":"ok","zstd":true}`))
	require.NoError(t, zw.Close())

	s := newTestSession(t, func(req *http.Request) (*http.Response, error) {
		resp := &http.Response{
			StatusCode: 200,
			Body:       io.NopCloser(bytes.NewReader(buf.Bytes())),
			Header:     make(http.Header),
		}
		resp.Header.Set("Content-Encoding", "zstd")
		return resp, nil
	})

	resp, err := s.Get(context.Background(), "https://i.instagram.com/api/v1/x/", nil, nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"ok","zstd":true}`, string(resp.Body))
}

func TestResponseCarriesFinalURL(t *testing.T) {
	s := newTestSession(t, func(req *http.Request) (*http.Response, error) {
		if req.URL.Path == "/start" {
			resp := newResponse(302, "")
			resp.Header.Set("Location", "https://www.instagram.com/accounts/login/")
			return resp, nil
		}
		return newResponse(200, "<html></html>"), nil
	})

	resp, err := s.Get(context.Background(), "https://i.instagram.com/start", nil, nil)
	require.NoError(t, err)
	assert.Contains(t, resp.URL, "/accounts/login/")
}

func TestSetProxy(t *testing.T) {
	s, err := New("https://i.instagram.com", time.Second, logger.NewTestLogger())
	require.NoError(t, err)

	require.NoError(t, s.SetProxy("127.0.0.1:8080"))
	assert.Equal(t, "http://127.0.0.1:8080", s.Proxy(), "scheme defaults to http")

	require.NoError(t, s.SetProxy("socks5://127.0.0.1:1080"))
	assert.Equal(t, "socks5://127.0.0.1:1080", s.Proxy())

	require.NoError(t, s.SetProxy(""))
	assert.Empty(t, s.Proxy())
}

func TestProxyChangeKeepsCookies(t *testing.T) {
	s, err := New("https://i.instagram.com", time.Second, logger.NewTestLogger())
	require.NoError(t, err)
	s.SetCookies(map[string]string{"sessionid": "keepme"})

	require.NoError(t, s.SetProxy("http://127.0.0.1:8080"))
	assert.Equal(t, "keepme", s.CookieValue("sessionid"))
}

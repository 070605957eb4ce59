package dispatch

import (
	"context"
	stderrors "errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"igclient/pkg/config"
	"igclient/pkg/errors"
	"igclient/pkg/logger"
	"igclient/pkg/ratelimit"
	"igclient/pkg/transport"
)

func newTestPublic(t *testing.T, handler func(req *http.Request) (*http.Response, error)) *Public {
	t.Helper()
	log := logger.NewTestLogger()
	cfg := testConfig()
	session, err := transport.New(cfg.PublicURL, 5*time.Second, log)
	require.NoError(t, err)
	session.SetTransport(&mockRoundTripper{handler: handler})

	p := NewPublic(session, cfg, log)
	p.pacer = ratelimit.NewPacer(time.Nanosecond)
	return p
}

func TestPublicRequestParsesJSON(t *testing.T) {
	var got http.Header
	p := newTestPublic(t, func(req *http.Request) (*http.Response, error) {
		got = req.Header
		return newResponse(200, `{"status":"ok"}`), nil
	})

	res, err := p.Request(context.Background(), "https://www.instagram.com/api/x/", nil)
	require.NoError(t, err)
	assert.Equal(t, "ok", res.Str("status"))
	assert.EqualValues(t, 1, p.RequestCount())
	assert.Equal(t, publicUserAgent, got.Get("User-Agent"))
	assert.Equal(t, "zstd, gzip, deflate", got.Get("Accept-Encoding"))
}

func TestPublicRetriesCountOutOfRange(t *testing.T) {
	calls := 0
	p := newTestPublic(t, func(req *http.Request) (*http.Response, error) {
		calls++
		return newResponse(200, `{}`), nil
	})

	_, err := p.Request(context.Background(), "https://www.instagram.com/api/x/", &PublicOptions{
		RetriesCount: config.MaxRetriesCount + 1,
	})
	var cfgErr *errors.RetriesConfigError
	require.True(t, stderrors.As(err, &cfgErr))
	assert.Zero(t, calls, "bounds are checked before any network traffic")
}

func TestPublicRetriesTimeoutOutOfRange(t *testing.T) {
	calls := 0
	p := newTestPublic(t, func(req *http.Request) (*http.Response, error) {
		calls++
		return newResponse(200, `{}`), nil
	})

	_, err := p.Request(context.Background(), "https://www.instagram.com/api/x/", &PublicOptions{
		RetriesTimeout: config.MaxRetriesTimeout + time.Second,
	})
	var cfgErr *errors.RetriesConfigError
	require.True(t, stderrors.As(err, &cfgErr))
	assert.Zero(t, calls)
}

func TestPublicRetriesTransientThenSucceeds(t *testing.T) {
	calls := 0
	p := newTestPublic(t, func(req *http.Request) (*http.Response, error) {
		calls++
		if calls < 3 {
			return newResponse(429, `{}`), nil
		}
		return newResponse(200, `{"status":"ok"}`), nil
	})

	res, err := p.Request(context.Background(), "https://www.instagram.com/api/x/", &PublicOptions{
		RetriesCount:   5,
		RetriesTimeout: time.Millisecond,
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, "ok", res.Str("status"))
}

func TestPublicAbortsOnLoginRequired(t *testing.T) {
	attempts := 0
	p := newTestPublic(t, func(req *http.Request) (*http.Response, error) {
		if req.URL.Path == "/not-logged-in/" {
			attempts++
			resp := newResponse(302, "")
			resp.Header.Set("Location", "https://www.instagram.com/accounts/login/")
			return resp, nil
		}
		return newResponse(200, "<html>login</html>"), nil
	})

	_, err := p.Request(context.Background(), "https://www.instagram.com/not-logged-in/", &PublicOptions{
		RetriesCount:   5,
		RetriesTimeout: time.Millisecond,
	})
	var loginRequired *errors.ClientLoginRequired
	require.True(t, stderrors.As(err, &loginRequired), "got %T: %v", err, err)
	assert.Equal(t, 1, attempts, "login-required aborts the retry loop")
}

func TestPublicAbortsOnNotFound(t *testing.T) {
	calls := 0
	p := newTestPublic(t, func(req *http.Request) (*http.Response, error) {
		calls++
		return newResponse(404, `{}`), nil
	})

	_, err := p.Request(context.Background(), "https://www.instagram.com/api/x/", &PublicOptions{
		RetriesCount:   5,
		RetriesTimeout: time.Millisecond,
	})
	var notFound *errors.ClientNotFoundError
	require.True(t, stderrors.As(err, &notFound))
	assert.Equal(t, 1, calls)
}

func TestPublicAbortsOnBadRequest(t *testing.T) {
	calls := 0
	p := newTestPublic(t, func(req *http.Request) (*http.Response, error) {
		calls++
		return newResponse(400, `{}`), nil
	})

	_, err := p.Request(context.Background(), "https://www.instagram.com/api/x/", &PublicOptions{
		RetriesCount:   5,
		RetriesTimeout: time.Millisecond,
	})
	var badRequest *errors.ClientBadRequestError
	require.True(t, stderrors.As(err, &badRequest))
	assert.Equal(t, 1, calls)
}

func TestPublicExhaustsRetries(t *testing.T) {
	calls := 0
	p := newTestPublic(t, func(req *http.Request) (*http.Response, error) {
		calls++
		return newResponse(429, `{}`), nil
	})

	_, err := p.Request(context.Background(), "https://www.instagram.com/api/x/", &PublicOptions{
		RetriesCount:   3,
		RetriesTimeout: time.Millisecond,
	})
	var throttled *errors.ClientThrottledError
	require.True(t, stderrors.As(err, &throttled))
	assert.Equal(t, 3, calls, "attempt budget includes the first try")
}

func TestUnrecoverableProxyFailure(t *testing.T) {
	err := errors.NewConnectionError("socks connect tcp 127.0.0.1:1080: dial tcp: connection refused", nil)
	assert.True(t, unrecoverableProxyFailure(err))

	assert.False(t, unrecoverableProxyFailure(errors.NewConnectionError("connection reset by peer", nil)))
	assert.False(t, unrecoverableProxyFailure(errors.NewThrottled("socks connect connection refused", nil)))
}

func TestPublicStopsRetryingDeadSocksProxy(t *testing.T) {
	calls := 0
	p := newTestPublic(t, func(req *http.Request) (*http.Response, error) {
		calls++
		return nil, stderrors.New("socks connect tcp 127.0.0.1:1080: connection refused")
	})

	_, err := p.Request(context.Background(), "https://www.instagram.com/api/x/", &PublicOptions{
		RetriesCount:   5,
		RetriesTimeout: time.Millisecond,
	})
	var connErr *errors.ClientConnectionError
	require.True(t, stderrors.As(err, &connErr))
	assert.Equal(t, 1, calls, "a dead SOCKS upstream is not retried")
}

func TestGraphQLSetsVariables(t *testing.T) {
	var got *http.Request
	p := newTestPublic(t, func(req *http.Request) (*http.Response, error) {
		got = req
		return newResponse(200, `{"status":"ok","data":{"user":{"id":"7"}}}`), nil
	})

	body, err := p.GraphQL(context.Background(), "hash123", "", map[string]interface{}{
		"user_id": "7",
	}, nil)
	require.NoError(t, err)

	q := got.URL.Query()
	assert.Equal(t, "hash123", q.Get("query_hash"))
	assert.JSONEq(t, `{"user_id":"7"}`, q.Get("variables"))
	assert.Equal(t, "/graphql/query/", got.URL.Path)

	data := body["data"].(map[string]interface{})
	assert.NotNil(t, data["user"])
}

func TestGraphQLNonOKStatus(t *testing.T) {
	p := newTestPublic(t, func(req *http.Request) (*http.Response, error) {
		return newResponse(200, `{"status":"error","message":"rate limited"}`), nil
	})

	_, err := p.GraphQL(context.Background(), "hash123", "", nil, nil)
	var gqlErr *errors.ClientGraphqlError
	require.True(t, stderrors.As(err, &gqlErr))
}

func TestGraphQLWrapsBadRequest(t *testing.T) {
	p := newTestPublic(t, func(req *http.Request) (*http.Response, error) {
		return newResponse(400, `{"message":"bad query"}`), nil
	})

	_, err := p.GraphQL(context.Background(), "hash123", "", nil, nil)
	var gqlErr *errors.ClientGraphqlError
	require.True(t, stderrors.As(err, &gqlErr), "got %T: %v", err, err)
}

func TestA1AppendsQuerySwitches(t *testing.T) {
	var got *http.Request
	p := newTestPublic(t, func(req *http.Request) (*http.Response, error) {
		got = req
		return newResponse(200, `{"graphql":{"user":{"username":"alice"}}}`), nil
	})

	body, err := p.A1(context.Background(), "/alice/", nil, nil)
	require.NoError(t, err)

	q := got.URL.Query()
	assert.Equal(t, "1", q.Get("__a"))
	assert.Equal(t, "dis", q.Get("__d"))
	assert.Equal(t, "/alice/", got.URL.Path)

	user := body["user"].(map[string]interface{})
	assert.Equal(t, "alice", user["username"])
}

func TestA1ReturnsWholeBodyWithoutGraphqlKey(t *testing.T) {
	p := newTestPublic(t, func(req *http.Request) (*http.Response, error) {
		return newResponse(200, `{"items":[]}`), nil
	})

	body, err := p.A1(context.Background(), "p/abc/", nil, nil)
	require.NoError(t, err)
	assert.Contains(t, body, "items")
}

package dispatch

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"igclient/pkg/config"
	"igclient/pkg/errors"
	"igclient/pkg/logger"
	"igclient/pkg/ratelimit"
	"igclient/pkg/retry"
	"igclient/pkg/transport"
)

const publicUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
	"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// PublicOptions tunes one public/web call. Zero retry fields fall back to
// the configured defaults.
type PublicOptions struct {
	// Data, when non-nil, makes the call a POST with a form body.
	Data    map[string]string
	Params  url.Values
	Headers map[string]string
	// RetriesCount is the total number of attempts including the first.
	RetriesCount   int
	RetriesTimeout time.Duration
}

// Public dispatches anonymous web-surface requests with a bounded retry
// policy. It shares nothing with the private channel except the process.
type Public struct {
	session *transport.Session
	cfg     *config.Config
	log     logger.Logger

	pacer   *ratelimit.Pacer
	delayer *ratelimit.Delayer

	requests atomic.Int64
}

func NewPublic(session *transport.Session, cfg *config.Config, log logger.Logger) *Public {
	return &Public{
		session: session,
		cfg:     cfg,
		log:     log,
		pacer:   ratelimit.NewPacer(ratelimit.MinSpacing),
		delayer: ratelimit.NewDelayer(cfg.DelayRange),
	}
}

// RequestCount reports how many public attempts have been issued.
func (p *Public) RequestCount() int64 { return p.requests.Load() }

// SetPacing overrides the minimum inter-request spacing.
func (p *Public) SetPacing(spacing time.Duration) {
	p.pacer = ratelimit.NewPacer(spacing)
}

// Request performs one public call, retrying transient failures up to the
// configured attempt budget. Retry bounds outside the accepted range fail
// fast without touching the network.
func (p *Public) Request(ctx context.Context, rawURL string, opts *PublicOptions) (*Result, error) {
	if opts == nil {
		opts = &PublicOptions{}
	}
	count := opts.RetriesCount
	if count == 0 {
		count = p.cfg.RetriesCount
	}
	if count == 0 {
		count = 1
	}
	timeout := opts.RetriesTimeout
	if timeout == 0 {
		timeout = p.cfg.RetriesTimeout
	}
	if count < 1 || count > config.MaxRetriesCount {
		return nil, errors.NewRetriesConfigError(fmt.Sprintf("retries count %d out of range [1, %d]", count, config.MaxRetriesCount))
	}
	if timeout < 0 || timeout > config.MaxRetriesTimeout {
		return nil, errors.NewRetriesConfigError(fmt.Sprintf("retries timeout %s out of range [0, %s]", timeout, config.MaxRetriesTimeout))
	}

	return retry.DoWithResult(ctx, func() (*Result, error) {
		return p.send(ctx, rawURL, opts)
	}, &retry.Config{
		MaxAttempts: count,
		Backoff:     &retry.ConstantBackoff{Delay: timeout},
		RetryIf: func(err error) bool {
			if unrecoverableProxyFailure(err) {
				return false
			}
			return errors.IsRetryable(err)
		},
		OnRetry: func(attempt int, err error, delay time.Duration) {
			p.log.WithFields(map[string]interface{}{
				"attempt": attempt,
				"url":     rawURL,
				"error":   err.Error(),
				"delay":   delay.String(),
			}).Warn("public request retrying")
		},
		Logger: p.log,
	})
}

// JSONRequest is Request for callers that only need the decoded body.
func (p *Public) JSONRequest(ctx context.Context, rawURL string, opts *PublicOptions) (map[string]interface{}, error) {
	res, err := p.Request(ctx, rawURL, opts)
	if err != nil {
		return nil, err
	}
	return res.JSON, nil
}

func (p *Public) send(ctx context.Context, rawURL string, opts *PublicOptions) (*Result, error) {
	if err := p.delayer.Wait(ctx); err != nil {
		return nil, err
	}
	if err := p.pacer.Wait(ctx); err != nil {
		return nil, err
	}
	defer p.pacer.Done()
	p.requests.Add(1)

	headers := map[string]string{
		"User-Agent":       publicUserAgent,
		"Accept-Language":  strings.Replace(p.cfg.Locale, "_", "-", 1),
		"Accept-Encoding":  "zstd, gzip, deflate",
		"X-Requested-With": "XMLHttpRequest",
	}
	for k, v := range opts.Headers {
		headers[k] = v
	}

	var resp *transport.Response
	var err error
	if opts.Data != nil {
		form := url.Values{}
		for k, v := range opts.Data {
			form.Set(k, v)
		}
		resp, err = p.session.Post(ctx, rawURL, opts.Params, headers, form.Encode(), "application/x-www-form-urlencoded")
	} else {
		resp, err = p.session.Get(ctx, rawURL, opts.Params, headers)
	}
	if err != nil {
		return nil, classifyTransport(err, rawURL)
	}

	res := &Result{
		Status: resp.StatusCode,
		URL:    resp.URL,
		Header: resp.Header,
		Body:   resp.Body,
	}
	_ = json.Unmarshal(res.Body, &res.JSON)
	p.log.WithFields(map[string]interface{}{
		"status": res.Status,
		"url":    rawURL,
	}).Debug("public request")

	if res.Status >= 400 {
		// The web surface has no structured 400 vocabulary; the rule table
		// only applies to the mobile API.
		if res.Status == 400 {
			return res, errors.NewBadRequest(res.Str("message"), snapshot(res))
		}
		return res, classifyStatus(res)
	}
	if res.JSON == nil {
		if rerr := classifyRedirect(res); rerr != nil {
			return res, rerr
		}
		return res, errors.NewJSONDecodeError("response body is not JSON", snapshot(res))
	}
	if berr := checkBody(res); berr != nil {
		return res, berr
	}
	return res, nil
}

// unrecoverableProxyFailure recognizes the connection-failure signature of a
// dead SOCKS upstream; retrying through it cannot succeed.
func unrecoverableProxyFailure(err error) bool {
	var connErr *errors.ClientConnectionError
	if !stderrors.As(err, &connErr) {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "socks connect") &&
		(strings.Contains(msg, "connection refused") || strings.Contains(msg, "network unreachable"))
}

// GraphQL performs a web graphql query. Exactly one of queryHash or queryID
// should be set; variables are serialized compactly.
func (p *Public) GraphQL(ctx context.Context, queryHash, queryID string, variables map[string]interface{}, opts *PublicOptions) (map[string]interface{}, error) {
	if opts == nil {
		opts = &PublicOptions{}
	}
	params := url.Values{}
	for k, vs := range opts.Params {
		for _, v := range vs {
			params.Add(k, v)
		}
	}
	if queryHash != "" {
		params.Set("query_hash", queryHash)
	}
	if queryID != "" {
		params.Set("query_id", queryID)
	}
	if variables != nil {
		blob, err := json.Marshal(variables)
		if err != nil {
			return nil, errors.NewGraphqlError("cannot serialize variables: "+err.Error(), nil)
		}
		params.Set("variables", string(blob))
	}
	callOpts := *opts
	callOpts.Params = params

	res, err := p.Request(ctx, strings.TrimSuffix(p.cfg.PublicURL, "/")+"/graphql/query/", &callOpts)
	if err != nil {
		var badReq *errors.ClientBadRequestError
		if stderrors.As(err, &badReq) {
			return nil, errors.NewGraphqlError(badReq.Message, badReq.Response)
		}
		return nil, err
	}
	if status, _ := res.JSON["status"].(string); status != "ok" {
		return nil, errors.NewGraphqlError("graphql status "+status, snapshot(res))
	}
	return res.JSON, nil
}

// A1 fetches the legacy web JSON rendition of a page by appending the
// __a=1 query switch.
func (p *Public) A1(ctx context.Context, path string, params url.Values, opts *PublicOptions) (map[string]interface{}, error) {
	if opts == nil {
		opts = &PublicOptions{}
	}
	merged := url.Values{}
	for k, vs := range params {
		for _, v := range vs {
			merged.Add(k, v)
		}
	}
	merged.Set("__a", "1")
	merged.Set("__d", "dis")
	callOpts := *opts
	callOpts.Params = merged

	base := strings.TrimSuffix(p.cfg.PublicURL, "/")
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	res, err := p.Request(ctx, base+path, &callOpts)
	if err != nil {
		return nil, err
	}
	if gql, ok := res.JSON["graphql"].(map[string]interface{}); ok {
		return gql, nil
	}
	return res.JSON, nil
}

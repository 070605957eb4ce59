package dispatch

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"igclient/pkg/config"
	"igclient/pkg/errors"
	"igclient/pkg/identity"
	"igclient/pkg/logger"
	"igclient/pkg/ratelimit"
	"igclient/pkg/signer"
	"igclient/pkg/transport"
)

// Private dispatches signed mobile-protocol requests. All calls share one
// pacer so consecutive requests keep at least the minimum spacing, measured
// from the previous response, not the previous send.
type Private struct {
	session *transport.Session
	idn     *identity.Identity
	signer  signer.Signer
	cfg     *config.Config
	log     logger.Logger

	pacer   *ratelimit.Pacer
	delayer *ratelimit.Delayer

	requests atomic.Int64
}

func NewPrivate(session *transport.Session, idn *identity.Identity, sg signer.Signer, cfg *config.Config, log logger.Logger) *Private {
	return &Private{
		session: session,
		idn:     idn,
		signer:  sg,
		cfg:     cfg,
		log:     log,
		pacer:   ratelimit.NewPacer(ratelimit.MinSpacing),
		delayer: ratelimit.NewDelayer(cfg.DelayRange),
	}
}

// RequestCount reports how many private calls have been issued. Diagnostic
// only.
func (p *Private) RequestCount() int64 { return p.requests.Load() }

// SetPacing overrides the minimum inter-request spacing.
func (p *Private) SetPacing(spacing time.Duration) {
	p.pacer = ratelimit.NewPacer(spacing)
}

// Request performs one private-channel call and returns the parsed result
// or a typed error. Transient server-side cursor corruption (a 500 on a
// paginated call) is recovered internally with a single cursor-free retry.
func (p *Private) Request(ctx context.Context, req *Request) (*Result, error) {
	if err := p.delayer.Wait(ctx); err != nil {
		return nil, err
	}
	p.requests.Add(1)
	return p.send(ctx, req, true)
}

// JSONRequest is Request for callers that only need the decoded body.
func (p *Private) JSONRequest(ctx context.Context, req *Request) (map[string]interface{}, error) {
	res, err := p.Request(ctx, req)
	if err != nil {
		return nil, err
	}
	return res.JSON, nil
}

func (p *Private) send(ctx context.Context, req *Request, allowCursorRetry bool) (*Result, error) {
	domain := req.Domain
	if domain == "" {
		domain = p.cfg.APIDomain
	}
	if err := p.pacer.Wait(ctx); err != nil {
		return nil, err
	}
	defer p.pacer.Done()
	if !req.Login && p.cfg.RequestTimeout > 0 {
		if err := ratelimit.Sleep(ctx, p.cfg.RequestTimeout); err != nil {
			return nil, err
		}
	}

	rawURL := buildAPIURL(domain, req.Endpoint)
	headers := baseHeaders(p.idn, domain)
	for k, v := range req.Headers {
		headers[k] = v
	}

	started := time.Now()
	var resp *transport.Response
	var err error
	if req.Data != nil {
		body, contentType := p.encodeBody(req)
		resp, err = p.session.Post(ctx, rawURL, req.Params, headers, body, contentType)
	} else {
		resp, err = p.session.Get(ctx, rawURL, req.Params, headers)
	}
	if err != nil {
		cerr := classifyTransport(err, rawURL)
		p.log.WithFields(map[string]interface{}{
			"url":   rawURL,
			"error": err.Error(),
		}).Warn("private request failed before response")
		return nil, cerr
	}

	res := &Result{
		Status: resp.StatusCode,
		URL:    resp.URL,
		Header: resp.Header,
		Body:   resp.Body,
	}
	if mid := resp.Header.Get("ig-set-x-mid"); mid != "" {
		p.idn.SetMid(mid)
	}
	p.idn.SetWwwClaim(resp.Header.Get("x-ig-set-www-claim"))
	p.log.WithFields(map[string]interface{}{
		"status":   res.Status,
		"url":      rawURL,
		"duration": time.Since(started).String(),
	}).Debug("private request")

	if res.Status >= 500 && allowCursorRetry && hasCursor(req.Params) {
		p.log.WithField("url", rawURL).Info("server error on paginated call, retrying without cursors")
		retryReq := *req
		retryReq.Params = stripCursors(req.Params)
		retryReq.WithSignature = false
		return p.send(ctx, &retryReq, false)
	}

	if err := json.Unmarshal(res.Body, &res.JSON); err != nil {
		if rows, ok := decodeStreamRows(res.Body); ok {
			res.JSON = rows
		}
	}

	if res.Status >= 400 {
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

func (p *Private) encodeBody(req *Request) (body, contentType string) {
	contentType = "application/x-www-form-urlencoded; charset=UTF-8"
	if req.WithSignature {
		body = signer.SignedBody(p.signer, req.Data)
		if len(req.ExtraSig) > 0 {
			body += "&" + strings.Join(req.ExtraSig, "&")
		}
		return body, contentType
	}
	form := url.Values{}
	for k, v := range req.Data {
		form.Set(k, v)
	}
	return form.Encode(), contentType
}

// buildAPIURL resolves an endpoint against the mobile API root. Endpoints
// starting with a slash bypass the /v1/ prefix.
func buildAPIURL(domain, endpoint string) string {
	if !strings.HasPrefix(endpoint, "/") {
		endpoint = "/v1/" + endpoint
	}
	return "https://" + domain + "/api" + endpoint
}

func hasCursor(params url.Values) bool {
	if params == nil {
		return false
	}
	return params.Get("min_id") != "" || params.Get("max_id") != ""
}

func stripCursors(params url.Values) url.Values {
	out := url.Values{}
	for k, vs := range params {
		if k == "min_id" || k == "max_id" {
			continue
		}
		for _, v := range vs {
			out.Add(k, v)
		}
	}
	return out
}

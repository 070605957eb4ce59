package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net"
	"strings"

	"igclient/pkg/errors"
)

func snapshot(res *Result) *errors.Snapshot {
	if res == nil {
		return nil
	}
	return &errors.Snapshot{
		StatusCode: res.Status,
		URL:        res.URL,
		Body:       res.Body,
		JSON:       res.JSON,
	}
}

// badRequestRule maps one recognized 400-body shape to its typed error.
// Rules are evaluated strictly in order; the first match wins.
type badRequestRule struct {
	match func(res *Result, message, errorType string) bool
	raise func(res *Result, message string) error
}

func msgContains(substr string) func(*Result, string, string) bool {
	return func(_ *Result, message, _ string) bool {
		return strings.Contains(message, substr)
	}
}

func errType(name string) func(*Result, string, string) bool {
	return func(_ *Result, _, et string) bool { return et == name }
}

func hasKey(key string) func(*Result, string, string) bool {
	return func(res *Result, _, _ string) bool {
		_, ok := res.JSON[key]
		return ok
	}
}

var badRequestRules = []badRequestRule{
	{hasKey("challenge_required"), func(res *Result, m string) error {
		return errors.NewChallengeRequired(m, snapshot(res))
	}},
	{msgContains("challenge_required"), func(res *Result, m string) error {
		return errors.NewChallengeRequired(m, snapshot(res))
	}},
	{msgContains("feedback_required"), func(res *Result, _ string) error {
		m := "feedback_required"
		if fm := res.Str("feedback_message"); fm != "" {
			m = "feedback_required: " + fm
		}
		return errors.NewFeedbackRequired(m, snapshot(res))
	}},
	{msgContains("consent_required"), func(res *Result, m string) error {
		return errors.NewConsentRequired(m, snapshot(res))
	}},
	{msgContains("geoblock_required"), func(res *Result, m string) error {
		return errors.NewGeoBlockRequired(m, snapshot(res))
	}},
	{msgContains("checkpoint_required"), func(res *Result, m string) error {
		return errors.NewCheckpointRequired(m, snapshot(res))
	}},
	{errType("sentry_block"), func(res *Result, m string) error {
		return errors.NewSentryBlock(m, snapshot(res))
	}},
	{errType("rate_limit_error"), func(res *Result, m string) error {
		return errors.NewRateLimitError(m, snapshot(res))
	}},
	{errType("bad_password"), func(res *Result, m string) error {
		return errors.NewBadPassword(m, snapshot(res))
	}},
	{errType("two_factor_required"), func(res *Result, m string) error {
		identifier := ""
		if info, ok := res.JSON["two_factor_info"].(map[string]interface{}); ok {
			identifier, _ = info["two_factor_identifier"].(string)
		}
		return errors.NewTwoFactorRequired(m, snapshot(res), identifier)
	}},
	{msgContains("Please wait a few minutes before you try again"), func(res *Result, m string) error {
		return errors.NewPleaseWaitFewMinutes(m, snapshot(res))
	}},
	{msgContains("VideoTooLongException"), func(res *Result, m string) error {
		return errors.NewVideoTooLong(m, snapshot(res))
	}},
	{msgContains("Not authorized to view user"), func(res *Result, m string) error {
		return errors.NewPrivateAccount(m, snapshot(res))
	}},
	{msgContains("Invalid target user"), func(res *Result, m string) error {
		return errors.NewInvalidTargetUser(m, snapshot(res))
	}},
	{msgContains("Invalid media_id"), func(res *Result, m string) error {
		return errors.NewInvalidMediaID(m, snapshot(res))
	}},
	{func(_ *Result, m, _ string) bool {
		return strings.Contains(m, "Media is unavailable") ||
			strings.Contains(m, "Media not found or unavailable") ||
			strings.Contains(m, "has been deleted")
	}, func(res *Result, m string) error {
		return errors.NewMediaUnavailable(m, snapshot(res))
	}},
	{func(_ *Result, m, _ string) bool {
		return strings.Contains(m, "unable to fetch followers") ||
			strings.Contains(m, "Error generating user info response")
	}, func(res *Result, m string) error {
		return errors.NewUserNotFound(m, snapshot(res))
	}},
	{msgContains("The username you entered"), func(res *Result, _ string) error {
		return errors.NewProxyAddressIsBlocked(snapshot(res))
	}},
	{func(_ *Result, m, et string) bool { return m != "" || et != "" }, func(res *Result, m string) error {
		if m == "" {
			m = res.Str("error_type")
		}
		return errors.NewUnknownError(m, snapshot(res))
	}},
}

// classifyBadRequest resolves a 400 body through the ordered rule table.
func classifyBadRequest(res *Result) error {
	message := res.Str("message")
	errorType := res.Str("error_type")
	for _, rule := range badRequestRules {
		if rule.match(res, message, errorType) {
			return rule.raise(res, message)
		}
	}
	return errors.NewBadRequest(message, snapshot(res))
}

// classifyStatus maps a non-2xx private/public response to its typed error.
func classifyStatus(res *Result) error {
	message := res.Str("message")
	if strings.Contains(message, "Please wait a few minutes") {
		return errors.NewPleaseWaitFewMinutes(message, snapshot(res))
	}
	switch res.Status {
	case 400:
		return classifyBadRequest(res)
	case 401:
		return errors.NewUnauthorized(message, snapshot(res))
	case 403:
		if message == "login_required" {
			return errors.NewLoginRequired(message, snapshot(res))
		}
		if message == "" && len(res.Body) < 512 {
			message = strings.TrimSpace(string(res.Body))
		}
		return errors.NewForbidden(message, snapshot(res))
	case 404:
		return errors.NewNotFound(message, snapshot(res))
	case 407:
		return errors.NewAuthRequiredProxyError("proxy authentication required", snapshot(res))
	case 408:
		return errors.NewRequestTimeout(message, snapshot(res))
	case 429:
		return errors.NewThrottled(message, snapshot(res))
	default:
		if message == "" {
			message = fmt.Sprintf("unexpected status %d", res.Status)
		}
		return errors.NewUnknown(message, snapshot(res))
	}
}

// redirectRule maps a well-known HTML landing page, recognized by a URL
// substring after redirects, to its typed error.
type redirectRule struct {
	substr string
	raise  func(res *Result) error
}

var redirectRules = []redirectRule{
	{"/login/", func(res *Result) error {
		return errors.NewWebLoginRequired("redirected to login page", snapshot(res))
	}},
	{"/challenge/", func(res *Result) error {
		return errors.NewChallengeRequired("redirected to challenge page", snapshot(res))
	}},
	{"/suspended/", func(res *Result) error {
		return errors.NewAccountSuspended("account suspended", snapshot(res))
	}},
	{"/terms/unblock", func(res *Result) error {
		return errors.NewTermsUnblock("new terms must be accepted to unblock", snapshot(res))
	}},
	{"/terms/accept", func(res *Result) error {
		return errors.NewTermsAccept("updated terms must be accepted", snapshot(res))
	}},
	{"/about-us", func(res *Result) error {
		return errors.NewAboutUsError("redirected to about page", snapshot(res))
	}},
}

// classifyRedirect inspects the final URL of an unparseable response and
// returns the matching typed error, or nil when the URL is unremarkable.
func classifyRedirect(res *Result) error {
	for _, rule := range redirectRules {
		if strings.Contains(res.URL, rule.substr) {
			return rule.raise(res)
		}
	}
	return nil
}

// classifyTransport wraps failures that happened before any response was
// received. Context cancellation passes through unwrapped.
func classifyTransport(err error, rawURL string) error {
	if stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded) {
		return err
	}
	snap := &errors.Snapshot{URL: rawURL}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "Proxy Authentication Required") || strings.Contains(msg, "proxyconnect") && strings.Contains(msg, "407"):
		return errors.NewAuthRequiredProxyError(msg, snap)
	case isDialFailure(err):
		return errors.NewConnectProxyError(msg, snap)
	default:
		return errors.NewConnectionError(msg, snap)
	}
}

func isDialFailure(err error) bool {
	var opErr *net.OpError
	if stderrors.As(err, &opErr) && opErr.Op == "dial" {
		return true
	}
	var dnsErr *net.DNSError
	return stderrors.As(err, &dnsErr)
}

// decodeStreamRows parses a newline-delimited JSON body into a synthetic
// {"stream_rows": [...]} object. Rows arrive as concatenated objects split
// on "}\n" with the closing brace restored per row.
func decodeStreamRows(body []byte) (map[string]interface{}, bool) {
	parts := bytes.Split(body, []byte("}\n"))
	if len(parts) < 2 {
		return nil, false
	}
	rows := make([]interface{}, 0, len(parts))
	for _, part := range parts {
		part = bytes.TrimSpace(part)
		if len(part) == 0 {
			continue
		}
		if !bytes.HasSuffix(part, []byte("}")) {
			part = append(append([]byte{}, part...), '}')
		}
		var row map[string]interface{}
		if err := json.Unmarshal(part, &row); err != nil {
			return nil, false
		}
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		return nil, false
	}
	return map[string]interface{}{"stream_rows": rows}, true
}

// checkBody validates a decoded 2xx body for failure shapes that arrive with
// a success status.
func checkBody(res *Result) error {
	if warning, ok := res.JSON["warning_message"].(map[string]interface{}); ok {
		if category, _ := warning["category_name"].(string); category == "HASHTAG_PAGE_WARNING_MESSAGE" {
			msg, _ := warning["message"].(string)
			return errors.NewHashtagPageWarning(msg, snapshot(res))
		}
	}
	if disabled, ok := res.JSON["comments_disabled"].(bool); ok && disabled {
		return errors.NewCommentsDisabled("comments disabled", snapshot(res))
	}
	if status, ok := res.JSON["status"].(string); ok && status == "fail" {
		return errors.NewStatusFail(res.Str("message"), snapshot(res))
	}
	if title := res.Str("error_title"); title != "" {
		return errors.NewErrorWithTitle(title, snapshot(res))
	}
	return nil
}

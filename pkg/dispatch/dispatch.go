// Package dispatch implements the dual-channel request core: the private
// (signed, mobile-protocol) channel and the public/graphql (web-session)
// channel. Each dispatch either returns parsed data or one typed error from
// the taxonomy; recoverable conditions (cursor corruption, mid refresh) are
// handled here and never surface.
//
// Results are request-scoped: they are returned to the caller, never stored
// on the identity, so overlapping calls cannot observe each other's
// diagnostics. Only the per-channel pacing timestamp is shared, behind a
// mutex.
package dispatch

import (
	"net/http"
	"net/url"
)

// Request is the ephemeral envelope for one private-channel call.
type Request struct {
	// Endpoint is relative to the API root; a leading slash opts out of
	// the /v1/ prefix.
	Endpoint string
	// Data, when non-nil, makes the call a POST with a form body.
	Data   map[string]string
	Params url.Values
	// Login suppresses identity fields that do not exist pre-login and
	// skips the fixed pre-request sleep.
	Login bool
	// WithSignature wraps Data in the signed envelope. Ignored for GET.
	WithSignature bool
	// ExtraSig appends additional raw components after the signed body.
	ExtraSig []string
	Headers  map[string]string
	// Domain overrides the API domain for this call.
	Domain string
}

// Result is the ephemeral outcome of one dispatch: raw response plus the
// decoded JSON when parseable.
type Result struct {
	Status int
	URL    string
	Header http.Header
	Body   []byte
	JSON   map[string]interface{}
}

// Str returns a top-level string field from the decoded body, empty when
// absent or not a string.
func (r *Result) Str(key string) string {
	if r == nil || r.JSON == nil {
		return ""
	}
	s, _ := r.JSON[key].(string)
	return s
}

// Package errors defines the typed failure taxonomy raised by the request
// dispatchers and the authentication flow. The hierarchy is layered, not a
// flat enum: callers catch at different granularities with errors.As, e.g.
// *ClientError for "any request failure", *PrivateError for "semantic
// failure inside a private response", or a leaf type like *UserNotFound.
package errors

import "fmt"

// Snapshot carries the raw response attached to an error for diagnostics
// and retry decisions. It is request-scoped: built once per dispatch and
// never shared between in-flight calls.
type Snapshot struct {
	StatusCode int
	URL        string
	Body       []byte
	JSON       map[string]interface{}
}

// ClientError is the base of the taxonomy. It wraps any transport or HTTP
// failure and always carries the HTTP status and raw response when known.
type ClientError struct {
	Message  string
	Code     int
	Response *Snapshot
}

func (e *ClientError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("%s (code %d)", e.Message, e.Code)
	}
	return e.Message
}

func cl(msg string, snap *Snapshot) ClientError {
	e := ClientError{Message: msg, Response: snap}
	if snap != nil {
		e.Code = snap.StatusCode
	}
	return e
}

// NewClientError builds a bare base error for statuses with no dedicated type.
func NewClientError(msg string, snap *Snapshot) *ClientError {
	e := cl(msg, snap)
	return &e
}

// --- transport / protocol level -------------------------------------------

// ClientConnectionError is raised on network connectivity failures
// (DNS, connect, read) that never produced an HTTP response.
type ClientConnectionError struct{ ClientError }

func (e *ClientConnectionError) Unwrap() error { return &e.ClientError }

// ClientJSONDecodeError is raised when a response body cannot be decoded and
// no redirect condition explains it.
type ClientJSONDecodeError struct{ ClientError }

func (e *ClientJSONDecodeError) Unwrap() error { return &e.ClientError }

// ClientBadRequestError is raised on an HTTP 400 response with no more
// specific semantic classification.
type ClientBadRequestError struct{ ClientError }

func (e *ClientBadRequestError) Unwrap() error { return &e.ClientError }

// ClientUnauthorizedError is raised on an HTTP 401 response.
type ClientUnauthorizedError struct{ ClientError }

func (e *ClientUnauthorizedError) Unwrap() error { return &e.ClientError }

// ClientForbiddenError is raised on an HTTP 403 response.
type ClientForbiddenError struct{ ClientError }

func (e *ClientForbiddenError) Unwrap() error { return &e.ClientError }

// ClientNotFoundError is raised on an HTTP 404 response.
type ClientNotFoundError struct{ ClientError }

func (e *ClientNotFoundError) Unwrap() error { return &e.ClientError }

// ClientThrottledError is raised on an HTTP 429 response.
type ClientThrottledError struct{ ClientError }

func (e *ClientThrottledError) Unwrap() error { return &e.ClientError }

// ClientRequestTimeout is raised on an HTTP 408 response.
type ClientRequestTimeout struct{ ClientError }

func (e *ClientRequestTimeout) Unwrap() error { return &e.ClientError }

// ClientUnknownError covers statuses and failures with no dedicated type.
type ClientUnknownError struct{ ClientError }

func (e *ClientUnknownError) Unwrap() error { return &e.ClientError }

// ClientStatusFail is raised when an otherwise-successful private response
// carries a body-level `"status": "fail"` envelope.
type ClientStatusFail struct{ ClientError }

func (e *ClientStatusFail) Unwrap() error { return &e.ClientError }

// ClientErrorWithTitle is raised when a `"status": "ok"` body still carries
// an `error_title` field (e.g. media_needs_reupload).
type ClientErrorWithTitle struct{ ClientError }

func (e *ClientErrorWithTitle) Unwrap() error { return &e.ClientError }

// ClientGraphqlError is raised on graphql-channel failures.
type ClientGraphqlError struct{ ClientError }

func (e *ClientGraphqlError) Unwrap() error { return &e.ClientError }

// ClientLoginRequired is raised when a public request is soft-redirected to
// the web login page.
type ClientLoginRequired struct{ ClientError }

func (e *ClientLoginRequired) Unwrap() error { return &e.ClientError }

// AccountSuspended is raised when a public request is redirected to the
// account-suspended page.
type AccountSuspended struct{ ClientError }

func (e *AccountSuspended) Unwrap() error { return &e.ClientError }

// TermsUnblock is raised on redirect to the terms-unblock page.
type TermsUnblock struct{ ClientError }

func (e *TermsUnblock) Unwrap() error { return &e.ClientError }

// TermsAccept is raised on redirect to the terms-accept page.
type TermsAccept struct{ ClientError }

func (e *TermsAccept) Unwrap() error { return &e.ClientError }

// AboutUsError is raised on redirect to the about-us page.
type AboutUsError struct{ ClientError }

func (e *AboutUsError) Unwrap() error { return &e.ClientError }

// ReloginAttemptExceeded is terminal: the relogin cap was hit and no further
// network attempts are made.
type ReloginAttemptExceeded struct{ ClientError }

func (e *ReloginAttemptExceeded) Unwrap() error { return &e.ClientError }

// PreLoginRequired is raised before any network call when an operation
// requires authentication and no authorization bundle is present.
type PreLoginRequired struct{ ClientError }

func (e *PreLoginRequired) Unwrap() error { return &e.ClientError }

// BadCredentials is raised when username or password are missing or rejected
// before a login call can be built.
type BadCredentials struct{ ClientError }

func (e *BadCredentials) Unwrap() error { return &e.ClientError }

// RetriesConfigError is raised immediately when retry parameters exceed the
// allowed bounds. It is a caller bug, never retried.
type RetriesConfigError struct{ ClientError }

func (e *RetriesConfigError) Unwrap() error { return &e.ClientError }

// --- proxy branch ----------------------------------------------------------

// ProxyError groups proxy-specific transport failures.
type ProxyError struct{ ClientError }

func (e *ProxyError) Unwrap() error { return &e.ClientError }

// ConnectProxyError is raised on connect/DNS level failures, which with a
// proxy configured almost always mean the proxy is unreachable.
type ConnectProxyError struct{ ProxyError }

func (e *ConnectProxyError) Unwrap() error { return &e.ProxyError }

// AuthRequiredProxyError is raised on HTTP 407-class proxy authentication
// failures, distinct from generic connection errors.
type AuthRequiredProxyError struct{ ProxyError }

func (e *AuthRequiredProxyError) Unwrap() error { return &e.ProxyError }

// --- private-API semantic branch -------------------------------------------

// PrivateError groups semantic failures found inside otherwise-delivered
// private responses (HTTP 200/400 with a failure body).
type PrivateError struct{ ClientError }

func (e *PrivateError) Unwrap() error { return &e.ClientError }

// LoginRequired means the platform invalidated the session and requests a
// relogin ("You've Been Logged Out").
type LoginRequired struct{ PrivateError }

func (e *LoginRequired) Unwrap() error { return &e.PrivateError }

type FeedbackRequired struct{ PrivateError }

func (e *FeedbackRequired) Unwrap() error { return &e.PrivateError }

type ConsentRequired struct{ PrivateError }

func (e *ConsentRequired) Unwrap() error { return &e.PrivateError }

type GeoBlockRequired struct{ PrivateError }

func (e *GeoBlockRequired) Unwrap() error { return &e.PrivateError }

type CheckpointRequired struct{ PrivateError }

func (e *CheckpointRequired) Unwrap() error { return &e.PrivateError }

type SentryBlock struct{ PrivateError }

func (e *SentryBlock) Unwrap() error { return &e.PrivateError }

type RateLimitError struct{ PrivateError }

func (e *RateLimitError) Unwrap() error { return &e.PrivateError }

type BadPassword struct{ PrivateError }

func (e *BadPassword) Unwrap() error { return &e.PrivateError }

// TwoFactorRequired carries the server-issued identifier correlating the
// first login call with the verification call.
type TwoFactorRequired struct {
	PrivateError
	TwoFactorIdentifier string
}

func (e *TwoFactorRequired) Unwrap() error { return &e.PrivateError }

type PleaseWaitFewMinutes struct{ PrivateError }

func (e *PleaseWaitFewMinutes) Unwrap() error { return &e.PrivateError }

type VideoTooLongError struct{ PrivateError }

func (e *VideoTooLongError) Unwrap() error { return &e.PrivateError }

type PrivateAccount struct{ PrivateError }

func (e *PrivateAccount) Unwrap() error { return &e.PrivateError }

type InvalidTargetUser struct{ PrivateError }

func (e *InvalidTargetUser) Unwrap() error { return &e.PrivateError }

type InvalidMediaID struct{ PrivateError }

func (e *InvalidMediaID) Unwrap() error { return &e.PrivateError }

type MediaUnavailable struct{ PrivateError }

func (e *MediaUnavailable) Unwrap() error { return &e.PrivateError }

// ProxyAddressIsBlocked is the blocked-IP heuristic: the platform answers a
// login-adjacent call with a username-not-found phrasing that in practice
// means the exit address is banned.
type ProxyAddressIsBlocked struct{ PrivateError }

func (e *ProxyAddressIsBlocked) Unwrap() error { return &e.PrivateError }

// UnknownError covers a 400 body with a message or error_type that matches
// no known condition.
type UnknownError struct{ PrivateError }

func (e *UnknownError) Unwrap() error { return &e.PrivateError }

type CommentsDisabled struct{ PrivateError }

func (e *CommentsDisabled) Unwrap() error { return &e.PrivateError }

type HashtagPageWarning struct{ PrivateError }

func (e *HashtagPageWarning) Unwrap() error { return &e.PrivateError }

// --- challenge branch -------------------------------------------------------

// ChallengeError groups conditions requiring user interaction with a
// verification challenge.
type ChallengeError struct{ PrivateError }

func (e *ChallengeError) Unwrap() error { return &e.PrivateError }

type ChallengeRequired struct{ ChallengeError }

func (e *ChallengeRequired) Unwrap() error { return &e.ChallengeError }

type ChallengeSelfieCaptcha struct{ ChallengeError }

func (e *ChallengeSelfieCaptcha) Unwrap() error { return &e.ChallengeError }

type ChallengeUnknownStep struct{ ChallengeError }

func (e *ChallengeUnknownStep) Unwrap() error { return &e.ChallengeError }

type RecaptchaChallengeForm struct{ ChallengeError }

func (e *RecaptchaChallengeForm) Unwrap() error { return &e.ChallengeError }

// --- not-found branch -------------------------------------------------------

// NotFoundError groups "target does not exist" conditions raised by feature
// collaborators and by the dispatcher's body classification.
type NotFoundError struct{ PrivateError }

func (e *NotFoundError) Unwrap() error { return &e.PrivateError }

type UserNotFound struct{ NotFoundError }

func (e *UserNotFound) Unwrap() error { return &e.NotFoundError }

type MediaNotFound struct{ NotFoundError }

func (e *MediaNotFound) Unwrap() error { return &e.NotFoundError }

type StoryNotFound struct{ NotFoundError }

func (e *StoryNotFound) Unwrap() error { return &e.NotFoundError }

type CollectionNotFound struct{ NotFoundError }

func (e *CollectionNotFound) Unwrap() error { return &e.NotFoundError }

type HashtagNotFound struct{ NotFoundError }

func (e *HashtagNotFound) Unwrap() error { return &e.NotFoundError }

type LocationNotFound struct{ NotFoundError }

func (e *LocationNotFound) Unwrap() error { return &e.NotFoundError }

type DirectThreadNotFound struct{ NotFoundError }

func (e *DirectThreadNotFound) Unwrap() error { return &e.NotFoundError }

type DirectMessageNotFound struct{ NotFoundError }

func (e *DirectMessageNotFound) Unwrap() error { return &e.NotFoundError }

type HighlightNotFound struct{ NotFoundError }

func (e *HighlightNotFound) Unwrap() error { return &e.NotFoundError }

type TrackNotFound struct{ NotFoundError }

func (e *TrackNotFound) Unwrap() error { return &e.NotFoundError }

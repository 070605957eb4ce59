package errors

import (
	"context"
	"errors"
)

// IsRetryable reports whether the public-channel retry loop may re-issue the
// request after this error. Login-required, not-found and bad-request always
// abort immediately; so do configuration and credential failures, and
// cancelled contexts.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var (
		loginRequired *ClientLoginRequired
		notFound      *ClientNotFoundError
		badRequest    *ClientBadRequestError
		retriesCfg    *RetriesConfigError
		reloginCap    *ReloginAttemptExceeded
		preLogin      *PreLoginRequired
		badCreds      *BadCredentials
	)
	switch {
	case errors.As(err, &loginRequired),
		errors.As(err, &notFound),
		errors.As(err, &badRequest),
		errors.As(err, &retriesCfg),
		errors.As(err, &reloginCap),
		errors.As(err, &preLogin),
		errors.As(err, &badCreds):
		return false
	}
	var ce *ClientError
	return errors.As(err, &ce)
}

// RequiresUserAction reports whether the error needs human interaction
// (challenge resolution or a two-factor code) before the session can proceed.
func RequiresUserAction(err error) bool {
	var (
		ch  *ChallengeError
		tfa *TwoFactorRequired
	)
	return errors.As(err, &ch) || errors.As(err, &tfa)
}

// IsFatal reports whether the error is permanent for this identity:
// retrying, re-authenticating or switching channels cannot help.
func IsFatal(err error) bool {
	var (
		reloginCap *ReloginAttemptExceeded
		badCreds   *BadCredentials
		badPass    *BadPassword
		retriesCfg *RetriesConfigError
	)
	return errors.As(err, &reloginCap) || errors.As(err, &badCreds) ||
		errors.As(err, &badPass) || errors.As(err, &retriesCfg)
}

// IsNotFound reports whether the error is any of the not-found variants,
// including the protocol-level HTTP 404 mapping.
func IsNotFound(err error) bool {
	var (
		nf   *NotFoundError
		http *ClientNotFoundError
	)
	return errors.As(err, &nf) || errors.As(err, &http)
}

// IsPrivate reports whether the error came from the private channel's
// body-level semantic classification.
func IsPrivate(err error) bool {
	var pe *PrivateError
	return errors.As(err, &pe)
}

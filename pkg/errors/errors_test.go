package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHierarchyMatchesAtEveryLevel(t *testing.T) {
	snap := &Snapshot{StatusCode: 400, URL: "https://i.instagram.com/api/v1/x/"}
	err := error(NewUserNotFound("Error generating user info response", snap))

	var notFound *UserNotFound
	assert.True(t, stderrors.As(err, &notFound))

	var group *NotFoundError
	assert.True(t, stderrors.As(err, &group), "leaf should match its group")

	var private *PrivateError
	assert.True(t, stderrors.As(err, &private), "group should match the private family")

	var base *ClientError
	require.True(t, stderrors.As(err, &base), "every typed error matches the base")
	assert.Equal(t, 400, base.Response.StatusCode)

	var other *MediaNotFound
	assert.False(t, stderrors.As(err, &other), "sibling leaves must not match")
}

func TestChallengeFamily(t *testing.T) {
	err := error(NewChallengeRequired("challenge_required", nil))

	var challenge *ChallengeError
	assert.True(t, stderrors.As(err, &challenge))

	var private *PrivateError
	assert.True(t, stderrors.As(err, &private))
}

func TestWrappedErrorsStillMatch(t *testing.T) {
	inner := NewLoginRequired("login_required", nil)
	wrapped := fmt.Errorf("fetching profile: %w", inner)

	var lr *LoginRequired
	assert.True(t, stderrors.As(wrapped, &lr))

	var private *PrivateError
	assert.True(t, stderrors.As(wrapped, &private))
}

func TestTwoFactorCarriesIdentifier(t *testing.T) {
	err := error(NewTwoFactorRequired("two_factor_required", nil, "ticket-123"))

	var twoFactor *TwoFactorRequired
	require.True(t, stderrors.As(err, &twoFactor))
	assert.Equal(t, "ticket-123", twoFactor.TwoFactorIdentifier)
}

func TestProxyAddressIsBlockedMessage(t *testing.T) {
	err := NewProxyAddressIsBlocked(nil)
	assert.Contains(t, err.Error(), "blocked")
}

func TestErrorStringIncludesStatus(t *testing.T) {
	err := NewThrottled("too many requests", &Snapshot{StatusCode: 429})
	assert.Contains(t, err.Error(), "too many requests")
}

func TestIsRetryable(t *testing.T) {
	retryable := []error{
		NewConnectionError("dial tcp: timeout", nil),
		NewThrottled("429", nil),
		NewUnknown("500", nil),
		NewJSONDecodeError("html", nil),
	}
	for _, err := range retryable {
		assert.True(t, IsRetryable(err), "%T should be retryable", err)
	}

	fatal := []error{
		NewWebLoginRequired("login page", nil),
		NewNotFound("404", nil),
		NewBadRequest("400", nil),
		NewRetriesConfigError("count out of range"),
		NewReloginAttemptExceeded(),
		NewPreLoginRequired(),
		NewBadCredentials("missing password"),
		context.Canceled,
		context.DeadlineExceeded,
	}
	for _, err := range fatal {
		assert.False(t, IsRetryable(err), "%T should not be retryable", err)
	}
}

func TestIsRetryableIgnoresForeignErrors(t *testing.T) {
	assert.False(t, IsRetryable(stderrors.New("something else")))
	assert.False(t, IsRetryable(nil))
}

func TestPredicates(t *testing.T) {
	assert.True(t, IsNotFound(NewStoryNotFound("gone", nil)))
	assert.False(t, IsNotFound(NewThrottled("429", nil)))

	assert.True(t, IsPrivate(NewFeedbackRequired("feedback_required", nil)))
	assert.False(t, IsPrivate(NewConnectionError("dial", nil)))

	assert.True(t, RequiresUserAction(NewChallengeRequired("challenge_required", nil)))
	assert.True(t, RequiresUserAction(NewTwoFactorRequired("two_factor_required", nil, "")))
	assert.False(t, RequiresUserAction(NewThrottled("429", nil)))
}

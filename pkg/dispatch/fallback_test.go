package dispatch

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"igclient/pkg/errors"
)

func TestFallbackUsesPrimaryResult(t *testing.T) {
	out, err := Fallback(context.Background(),
		func(ctx context.Context) (string, error) { return "primary", nil },
		func(ctx context.Context) (string, error) { return "fallback", nil },
		On[*errors.LoginRequired](),
	)
	require.NoError(t, err)
	assert.Equal(t, "primary", out)
}

func TestFallbackOnMatchedError(t *testing.T) {
	primaryCalls, fallbackCalls := 0, 0
	out, err := Fallback(context.Background(),
		func(ctx context.Context) (string, error) {
			primaryCalls++
			return "", errors.NewLoginRequired("login_required", nil)
		},
		func(ctx context.Context) (string, error) {
			fallbackCalls++
			return "from web", nil
		},
		On[*errors.LoginRequired](),
	)
	require.NoError(t, err)
	assert.Equal(t, "from web", out)
	assert.Equal(t, 1, primaryCalls)
	assert.Equal(t, 1, fallbackCalls)
}

func TestFallbackPassesThroughUnmatchedError(t *testing.T) {
	fallbackCalls := 0
	_, err := Fallback(context.Background(),
		func(ctx context.Context) (string, error) {
			return "", errors.NewNotFound("404", nil)
		},
		func(ctx context.Context) (string, error) {
			fallbackCalls++
			return "never", nil
		},
		On[*errors.LoginRequired](),
		On[*errors.PleaseWaitFewMinutes](),
	)

	var notFound *errors.ClientNotFoundError
	require.True(t, stderrors.As(err, &notFound))
	assert.Zero(t, fallbackCalls)
}

func TestFallbackReportsFallbackError(t *testing.T) {
	wantErr := errors.NewThrottled("429", nil)
	_, err := Fallback(context.Background(),
		func(ctx context.Context) (string, error) {
			return "", errors.NewLoginRequired("login_required", nil)
		},
		func(ctx context.Context) (string, error) {
			return "", wantErr
		},
		On[*errors.LoginRequired](),
	)
	assert.ErrorIs(t, err, wantErr)
}

func TestOnMatchesGroupLevels(t *testing.T) {
	matchPrivate := On[*errors.PrivateError]()
	assert.True(t, matchPrivate(errors.NewFeedbackRequired("feedback_required", nil)))
	assert.False(t, matchPrivate(errors.NewConnectionError("dial", nil)))
}

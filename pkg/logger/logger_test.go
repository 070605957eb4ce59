package logger

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTestLoggerCapturesLevels(t *testing.T) {
	l := NewTestLogger()
	l.Debug("debug msg")
	l.Info("info msg")
	l.Warn("warn msg")
	l.Error("error msg")

	msgs := l.Messages()
	require.Len(t, msgs, 4)
	assert.Equal(t, "DEBUG", msgs[0].Level)
	assert.Equal(t, "ERROR", msgs[3].Level)

	assert.True(t, l.HasMessage("INFO", "info"))
	assert.True(t, l.HasMessage("", "warn"))
	assert.False(t, l.HasMessage("INFO", "error msg"))
}

func TestTestLoggerDerivedFieldsShareBuffer(t *testing.T) {
	l := NewTestLogger()
	derived := l.WithField("request_id", "abc").WithFields(map[string]interface{}{"attempt": 2})
	derived.Info("retrying")

	msgs := l.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "abc", msgs[0].Fields["request_id"])
	assert.Equal(t, 2, msgs[0].Fields["attempt"])
}

func TestTestLoggerWithError(t *testing.T) {
	l := NewTestLogger()
	l.WithError(stderrors.New("boom")).Warn("request failed")

	msgs := l.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "boom", msgs[0].Fields["error"])

	// nil error is a no-op wrapper
	l.WithError(nil).Info("fine")
	assert.True(t, l.HasMessage("INFO", "fine"))
}

func TestZerologLoggerBuilds(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error", ""} {
		log, err := New(&Config{Level: level})
		require.NoError(t, err)
		log.WithField("k", "v").Info("hello")
	}
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New(&Config{Level: "chatty"})
	assert.Error(t, err)
}

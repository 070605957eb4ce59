package logger

import (
	"strings"
	"sync"
)

// LogMessage is one captured log entry.
type LogMessage struct {
	Level   string
	Message string
	Fields  map[string]interface{}
}

type captureState struct {
	mu       sync.Mutex
	messages []LogMessage
}

// TestLogger captures log messages in memory for assertions in tests.
// Loggers derived via WithField/WithFields share the same capture buffer.
type TestLogger struct {
	state  *captureState
	fields map[string]interface{}
}

// NewTestLogger creates an empty capture logger.
func NewTestLogger() *TestLogger {
	return &TestLogger{state: &captureState{}}
}

func (l *TestLogger) log(level, msg string, fields map[string]interface{}) {
	merged := make(map[string]interface{}, len(l.fields)+len(fields))
	for k, v := range l.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	l.state.mu.Lock()
	defer l.state.mu.Unlock()
	l.state.messages = append(l.state.messages, LogMessage{Level: level, Message: msg, Fields: merged})
}

func (l *TestLogger) Debug(msg string) { l.log("DEBUG", msg, nil) }
func (l *TestLogger) Info(msg string)  { l.log("INFO", msg, nil) }
func (l *TestLogger) Warn(msg string)  { l.log("WARN", msg, nil) }
func (l *TestLogger) Error(msg string) { l.log("ERROR", msg, nil) }

func (l *TestLogger) DebugWithFields(msg string, fields map[string]interface{}) {
	l.log("DEBUG", msg, fields)
}

func (l *TestLogger) InfoWithFields(msg string, fields map[string]interface{}) {
	l.log("INFO", msg, fields)
}

func (l *TestLogger) WarnWithFields(msg string, fields map[string]interface{}) {
	l.log("WARN", msg, fields)
}

func (l *TestLogger) ErrorWithFields(msg string, fields map[string]interface{}) {
	l.log("ERROR", msg, fields)
}

func (l *TestLogger) WithField(key string, value interface{}) Logger {
	return l.WithFields(map[string]interface{}{key: value})
}

func (l *TestLogger) WithFields(fields map[string]interface{}) Logger {
	merged := make(map[string]interface{}, len(l.fields)+len(fields))
	for k, v := range l.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return &TestLogger{state: l.state, fields: merged}
}

func (l *TestLogger) WithError(err error) Logger {
	if err == nil {
		return l
	}
	return l.WithField("error", err.Error())
}

// Messages returns a copy of everything logged so far.
func (l *TestLogger) Messages() []LogMessage {
	l.state.mu.Lock()
	defer l.state.mu.Unlock()
	out := make([]LogMessage, len(l.state.messages))
	copy(out, l.state.messages)
	return out
}

// HasMessage reports whether any captured entry contains the substring at
// the given level ("" matches any level).
func (l *TestLogger) HasMessage(level, substr string) bool {
	for _, m := range l.Messages() {
		if level != "" && m.Level != level {
			continue
		}
		if strings.Contains(m.Message, substr) {
			return true
		}
	}
	return false
}

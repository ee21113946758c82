package errtrack

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// wireTimeLayout writes a numeric offset even for UTC ("+00:00"), which keeps the
// persisted form readable by consumers that expect offset-aware timestamps.
const wireTimeLayout = "2006-01-02T15:04:05.9999999-07:00"

// wireTimePrecision is the finest time step wireTimeLayout can represent.
const wireTimePrecision = 100 * time.Nanosecond

// ExceptionInfo is an immutable summary of one failed handling attempt.
type ExceptionInfo struct {
	// Type classifies the error, e.g. its Go type name.
	Type string
	// Message is the error text.
	Message string
	// Details carries extended information such as a stack or cause chain.
	Details string
	// Time is when the error was observed.
	Time time.Time
}

// FullErrorDescription renders the info on one or two lines:
// "<time> <type>: <message>" followed by the details, if any.
func (e ExceptionInfo) FullErrorDescription() string {
	var b strings.Builder
	b.WriteString(e.Time.Format(wireTimeLayout))
	b.WriteByte(' ')
	b.WriteString(e.Type)
	b.WriteString(": ")
	b.WriteString(e.Message)
	if e.Details != "" {
		b.WriteByte('\n')
		b.WriteString(e.Details)
	}
	return b.String()
}

type exceptionInfoJSON struct {
	Type    *string `json:"Type"`
	Message *string `json:"Message"`
	Details *string `json:"Details"`
	Time    *string `json:"Time"`
}

// MarshalJSON implements json.Marshaler.
func (e ExceptionInfo) MarshalJSON() ([]byte, error) {
	ts := e.Time.Format(wireTimeLayout)
	return json.Marshal(exceptionInfoJSON{
		Type:    &e.Type,
		Message: &e.Message,
		Details: &e.Details,
		Time:    &ts,
	})
}

// UnmarshalJSON implements json.Unmarshaler. Null or missing fields decode to
// zero values; a malformed Time is an error.
func (e *ExceptionInfo) UnmarshalJSON(data []byte) error {
	var w exceptionInfoJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	out := ExceptionInfo{}
	if w.Type != nil {
		out.Type = *w.Type
	}
	if w.Message != nil {
		out.Message = *w.Message
	}
	if w.Details != nil {
		out.Details = *w.Details
	}
	if w.Time != nil && *w.Time != "" {
		t, err := time.Parse(time.RFC3339Nano, *w.Time)
		if err != nil {
			return fmt.Errorf("parse time %q: %w", *w.Time, err)
		}
		out.Time = t
	}
	*e = out
	return nil
}

// ExceptionInfoFactory maps a handling error to its stored summary.
type ExceptionInfoFactory interface {
	CreateInfo(err error) ExceptionInfo
}

// ExceptionInfoFactoryFunc adapts a plain function to ExceptionInfoFactory.
type ExceptionInfoFactoryFunc func(err error) ExceptionInfo

// CreateInfo calls f(err).
func (f ExceptionInfoFactoryFunc) CreateInfo(err error) ExceptionInfo { return f(err) }

// DefaultExceptionInfoFactory records the error's dynamic type, its message and
// the chain of wrapped causes. Now defaults to time.Now. Times are truncated to
// the stored precision so a record reads back exactly as it was created.
type DefaultExceptionInfoFactory struct {
	Now func() time.Time
}

// CreateInfo implements ExceptionInfoFactory.
func (f DefaultExceptionInfoFactory) CreateInfo(err error) ExceptionInfo {
	now := time.Now
	if f.Now != nil {
		now = f.Now
	}
	info := ExceptionInfo{Time: now().UTC().Truncate(wireTimePrecision)}
	if err == nil {
		info.Type = "<nil>"
		return info
	}
	info.Type = fmt.Sprintf("%T", err)
	info.Message = err.Error()
	info.Details = causeChain(err)
	return info
}

// causeChain lists the wrapped errors below err, one per line.
func causeChain(err error) string {
	var lines []string
	for cur := errors.Unwrap(err); cur != nil; cur = errors.Unwrap(cur) {
		lines = append(lines, fmt.Sprintf("caused by %T: %v", cur, cur))
	}
	return strings.Join(lines, "\n")
}

// ExceptionLogger receives one call per registered error.
type ExceptionLogger interface {
	LogException(messageID string, err error, errorCount int, final bool)
}

// LoggerExceptionLogger writes registered errors to a Logger: warnings while the
// message is still being retried, errors once it is final.
type LoggerExceptionLogger struct {
	log Logger
}

// NewLoggerExceptionLogger creates an ExceptionLogger on top of l.
func NewLoggerExceptionLogger(l Logger) *LoggerExceptionLogger {
	if l == nil {
		l = NewFmtLogger()
	}
	return &LoggerExceptionLogger{log: l}
}

// LogException implements ExceptionLogger.
func (x *LoggerExceptionLogger) LogException(messageID string, err error, errorCount int, final bool) {
	if final {
		x.log.Errorf("unhandled exception %d (FINAL) while handling message id=%s: %v", errorCount, messageID, err)
		return
	}
	x.log.Warnf("unhandled exception %d while handling message id=%s: %v", errorCount, messageID, err)
}

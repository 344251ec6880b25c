// Package diag carries diagnostic events out of the share calculations.
//
// The share core never aborts: configuration anomalies, numerical edge cases and
// structural violations are reported to a Recorder and the calculation continues.
package diag

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Severity int

const (
	Debug Severity = iota
	Notice
	Warning
	Error
)

func (s Severity) String() string {
	switch s {
	case Debug:
		return "debug"
	case Notice:
		return "notice"
	case Warning:
		return "warning"
	case Error:
		return "error"
	default:
		return fmt.Sprintf("severity(%d)", int(s))
	}
}

// Recorder receives diagnostic events. keysAndValues are alternating key/value
// pairs, as in zap's sugared logger.
type Recorder interface {
	Record(sev Severity, msg string, keysAndValues ...any)
}

// Nop discards every event.
type Nop struct{}

func (Nop) Record(Severity, string, ...any) {}

// OrNop returns r, or Nop when r is nil.
func OrNop(r Recorder) Recorder {
	if r == nil {
		return Nop{}
	}
	return r
}

// Zap forwards events to a zap logger.
type Zap struct {
	log *zap.SugaredLogger
}

func NewZap(l *zap.Logger) *Zap {
	if l == nil {
		l = zap.NewNop()
	}
	return &Zap{log: l.Sugar()}
}

func (z *Zap) Record(sev Severity, msg string, keysAndValues ...any) {
	z.log.Logw(zapLevel(sev), msg, keysAndValues...)
}

func zapLevel(sev Severity) zapcore.Level {
	switch sev {
	case Debug:
		return zapcore.DebugLevel
	case Notice:
		return zapcore.InfoLevel
	case Warning:
		return zapcore.WarnLevel
	default:
		return zapcore.ErrorLevel
	}
}

// Event is one recorded diagnostic.
type Event struct {
	Severity Severity       `json:"-"`
	Level    string         `json:"level"`
	Message  string         `json:"message"`
	Fields   map[string]any `json:"fields,omitempty"`
}

// Memory keeps events in memory. It is safe for concurrent use.
type Memory struct {
	mu     sync.Mutex
	events []Event
}

func (m *Memory) Record(sev Severity, msg string, keysAndValues ...any) {
	ev := Event{Severity: sev, Level: sev.String(), Message: msg}
	if len(keysAndValues) > 0 {
		ev.Fields = make(map[string]any, len(keysAndValues)/2)
		for i := 0; i+1 < len(keysAndValues); i += 2 {
			ev.Fields[fmt.Sprint(keysAndValues[i])] = keysAndValues[i+1]
		}
	}
	m.mu.Lock()
	m.events = append(m.events, ev)
	m.mu.Unlock()
}

// Events returns a copy of the recorded events.
func (m *Memory) Events() []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Event, len(m.events))
	copy(out, m.events)
	return out
}

// Count returns the number of events at or above sev.
func (m *Memory) Count(sev Severity) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, ev := range m.events {
		if ev.Severity >= sev {
			n++
		}
	}
	return n
}

// Multi fans every event out to several recorders.
type Multi []Recorder

func (m Multi) Record(sev Severity, msg string, keysAndValues ...any) {
	for _, r := range m {
		if r != nil {
			r.Record(sev, msg, keysAndValues...)
		}
	}
}

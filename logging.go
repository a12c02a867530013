package fastexec

import "github.com/sirupsen/logrus"

// Field is a key-value pair attached to a structured log entry.
type Field struct {
	Key   string
	Value any
}

// F creates a new Field.
func F(key string, value any) Field {
	return Field{Key: key, Value: value}
}

// Logger receives structured events from the pool's lifecycle: worker
// start/stop, task panics, and local-queue overflow spills. It is
// never called from the steal/CAS retry hot path.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
}

// logrusLogger adapts Logger to a *logrus.Logger.
type logrusLogger struct {
	l *logrus.Logger
}

// NewLogrusLogger returns a Logger backed by logrus, using JSON-free
// text output and warn-level default verbosity.
func NewLogrusLogger() Logger {
	l := logrus.New()
	l.SetLevel(logrus.WarnLevel)
	return &logrusLogger{l: l}
}

func (g *logrusLogger) entry(fields ...Field) *logrus.Entry {
	if len(fields) == 0 {
		return logrus.NewEntry(g.l)
	}
	data := make(logrus.Fields, len(fields))
	for _, f := range fields {
		data[f.Key] = f.Value
	}
	return g.l.WithFields(data)
}

func (g *logrusLogger) Debug(msg string, fields ...Field) { g.entry(fields...).Debug(msg) }
func (g *logrusLogger) Info(msg string, fields ...Field)  { g.entry(fields...).Info(msg) }
func (g *logrusLogger) Warn(msg string, fields ...Field)  { g.entry(fields...).Warn(msg) }
func (g *logrusLogger) Error(msg string, fields ...Field) { g.entry(fields...).Error(msg) }

// NoOpLogger discards all log messages. Useful for tests and for
// callers who don't want scheduler chatter.
type NoOpLogger struct{}

func (NoOpLogger) Debug(string, ...Field) {}
func (NoOpLogger) Info(string, ...Field)  {}
func (NoOpLogger) Warn(string, ...Field)  {}
func (NoOpLogger) Error(string, ...Field) {}

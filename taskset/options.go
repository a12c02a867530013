// Package taskset provides an errgroup-style convenience layer over
// fastexec: a Group of related callables that run on the scheduler's
// worker pool instead of raw goroutines, with configurable error
// handling across the group.
package taskset

// ErrorMode selects how a Group aggregates errors from its member
// tasks.
type ErrorMode int

const (
	// FailFast cancels the group's context on the first error and
	// makes Wait return that error, discarding the rest.
	FailFast ErrorMode = iota
	// CollectAll lets every task run to completion and returns all
	// their errors together as an AggregateError.
	CollectAll
	// IgnoreErrors discards every task error; Wait always returns nil.
	IgnoreErrors
)

// Config holds a Group's configuration.
type Config struct {
	errorMode ErrorMode
}

// Option configures a Group.
type Option func(*Config)

// DefaultConfig returns a Config using CollectAll.
func DefaultConfig() Config {
	return Config{errorMode: CollectAll}
}

// WithErrorMode sets how a Group handles member errors.
func WithErrorMode(mode ErrorMode) Option {
	return func(c *Config) { c.errorMode = mode }
}

func buildConfig(opts []Option) Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

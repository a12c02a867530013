package fastexec

import "fmt"

// Common errors returned by the scheduler.
var (
	// ErrQueueClosed is returned when attempting to submit a task after
	// CloseAndJoin has been initiated. Once the global queue is closed it
	// never reopens.
	//
	// Example:
	//  fastexec.CloseAndJoin()
	//  future := fastexec.Spawn(ctx, task)
	//  if _, err := future.Result(); errors.Is(err, fastexec.ErrQueueClosed) {
	//      log.Println("pool is shutting down")
	//  }
	ErrQueueClosed = &PoolError{msg: "global queue is closed"}

	// ErrNilTask is returned when a nil callable is submitted.
	ErrNilTask = &PoolError{msg: "task is nil"}

	// ErrInvalidConfig is returned by NewPool when an Option produces an
	// invalid configuration (e.g. a non-power-of-two local capacity).
	ErrInvalidConfig = &PoolError{msg: "invalid config"}
)

// PoolError represents an error that occurred within the scheduler.
// It wraps an underlying cause (if any) and supports errors.Is/errors.As
// via Unwrap.
type PoolError struct {
	msg string
	err error
}

func (e *PoolError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("fastexec: %s: %v", e.msg, e.err)
	}
	return fmt.Sprintf("fastexec: %s", e.msg)
}

// Unwrap returns the underlying cause, allowing use with errors.Is/As.
func (e *PoolError) Unwrap() error {
	return e.err
}

func errInvalidConfig(msg string) error {
	return &PoolError{msg: "invalid config: " + msg, err: ErrInvalidConfig}
}

// TaskPanicError wraps a value recovered from a panicking task. It is
// surfaced through the task's Future, never through the worker loop —
// a panicking task must not take down its worker.
type TaskPanicError struct {
	Value any
	Stack []byte
}

func (p *TaskPanicError) Error() string {
	return fmt.Sprintf("fastexec: task panicked: %v", p.Value)
}

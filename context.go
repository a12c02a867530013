package fastexec

import "context"

// Go has no thread-local storage, so the "current group" / "current
// worker" per-thread context the original scheduler keeps in TLS is
// carried explicitly through a context.Context parameter threaded
// through the task-execution path — the fallback the design notes
// call out for languages without first-class thread locals. A task
// that spawns children via the ctx it was given inherits the group
// implicitly, same as the TLS original; a task that spawns via a
// fresh context.Background() opts out, same as the original's stated
// (if unusual) behavior for code that bypasses the ambient context.
type ctxKey int

const (
	groupKey ctxKey = iota
	workerKey
)

// withGroup returns a context carrying the given TaskGroup as the
// group any task spawned from it should attach to.
func withGroup(ctx context.Context, g *TaskGroup) context.Context {
	return context.WithValue(ctx, groupKey, g)
}

// groupFromContext returns the TaskGroup attached to ctx, if any.
func groupFromContext(ctx context.Context) *TaskGroup {
	g, _ := ctx.Value(groupKey).(*TaskGroup)
	return g
}

// withWorker returns a context carrying the worker whose run loop is
// executing the current task.
func withWorker(ctx context.Context, w *worker) context.Context {
	return context.WithValue(ctx, workerKey, w)
}

// workerFromContext returns the worker executing the current task, or
// nil if ctx was not produced by the pool (e.g. an external caller).
func workerFromContext(ctx context.Context) *worker {
	w, _ := ctx.Value(workerKey).(*worker)
	return w
}

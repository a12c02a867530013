package fastexec

import (
	"context"
	"runtime"
	"runtime/debug"
	"sync"

	"go.uber.org/automaxprocs/maxprocs"
)

// Pool owns a fixed set of worker goroutines and the queues they
// share. It is the Go realization of
// original_source/include/fastexec/detail/pool.hpp's Pool: construct
// once, spawn worker_count workers, and route submissions to them
// until CloseAndJoin drains and stops the whole thing.
type Pool struct {
	cfg *Config
	sh  *shared
}

func init() {
	// Adjust GOMAXPROCS for the host's cgroup CPU quota before any
	// pool reads it back to size its default worker count.
	_, _ = maxprocs.Set(maxprocs.Logger(func(string, ...any) {}))
}

var (
	defaultPool     *Pool
	defaultPoolOnce sync.Once
)

// Default returns the process-wide pool, building it lazily on first
// call via sync.Once — the Go stand-in for
// original_source/include/fastexec/exec.hpp's function-local static
// __inner singleton. Every package-level Spawn/Wait/BlockOn/
// CloseAndJoin call delegates to this pool.
func Default() *Pool {
	defaultPoolOnce.Do(func() {
		p, err := NewPool()
		if err != nil {
			// defaultConfig() is always valid; a failure here means
			// automaxprocs or the runtime returned something we didn't
			// account for.
			panic(err)
		}
		defaultPool = p
	})
	return defaultPool
}

// NewPool constructs an independently configurable pool. Most callers
// should use Default(); NewPool exists for tests and for embedders
// that want more than one pool in a process.
func NewPool(opts ...Option) (*Pool, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	if cfg.WorkerCount == 0 {
		// init has already adjusted GOMAXPROCS to the container's CPU
		// quota, so this reflects what the host actually grants rather
		// than the machine's full core count.
		cfg.WorkerCount = runtime.GOMAXPROCS(0)
	}
	if cfg.Logger == nil {
		cfg.Logger = NewLogrusLogger()
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	sh := newShared(cfg.WorkerCount)
	p := &Pool{cfg: &cfg, sh: sh}

	sh.stopped.Add(cfg.WorkerCount)
	for i := 0; i < cfg.WorkerCount; i++ {
		sh.workers[i] = newWorker(i, p.cfg, sh)
	}
	for _, w := range sh.workers {
		go w.run()
	}
	return p, nil
}

// CloseAndJoin closes the pool's global queue to new submissions, then
// blocks until every worker has drained its local and global work and
// exited. Submissions made after this call returns ErrQueueClosed.
func (p *Pool) CloseAndJoin() error {
	p.cfg.Logger.Info("pool shutting down", F("workers", len(p.sh.workers)))
	p.sh.global.Close()
	p.sh.stopped.Wait()
	p.cfg.Logger.Info("pool shutdown complete")
	return nil
}

// runGuarded invokes fn, converting a panic into a *TaskPanicError and
// routing it through the pool's configured logger and panic handler.
// A panicking task must never take down its worker's goroutine.
func runGuarded[T any](p *Pool, ctx context.Context, fn func(context.Context) T) (result T, err error) {
	defer func() {
		if r := recover(); r != nil {
			perr := &TaskPanicError{Value: r, Stack: debug.Stack()}
			err = perr
			if p.cfg.Logger != nil {
				p.cfg.Logger.Error("task panicked", F("error", perr.Error()))
			}
			if p.cfg.PanicHandler != nil {
				p.cfg.PanicHandler(r)
			}
		}
	}()
	result = fn(ctx)
	return
}

// submit implements spec.md §4.4's five-step submission algorithm:
// attach to the caller's current TaskGroup if any, wrap the callable
// so the group is decremented as its last observable action, dispatch
// to the calling worker's local queue (with global-queue overflow) if
// the caller is itself a worker, or to the global queue otherwise, and
// return a Future bound to the eventual outcome.
func submit[T any](ctx context.Context, p *Pool, fn func(context.Context) T) *Future[T] {
	future := newFuture[T]()
	if fn == nil {
		var zero T
		future.set(zero, ErrNilTask)
		return future
	}

	group := groupFromContext(ctx)
	if group != nil {
		group.Increment()
	}

	wrapped := taskFn(func(execCtx context.Context) {
		defer func() {
			if group != nil {
				group.Decrement()
			}
		}()
		runCtx := withWorker(ctx, workerFromContext(execCtx))
		result, err := runGuarded(p, runCtx, fn)
		future.set(result, err)
	})

	var dispatchErr error
	if caller := workerFromContext(ctx); caller != nil {
		dispatchErr = caller.local.pushBack(wrapped, p.sh.global)
	} else {
		dispatchErr = p.sh.global.Push(wrapped)
	}

	if dispatchErr != nil {
		if group != nil {
			group.Decrement()
		}
		var zero T
		future.set(zero, dispatchErr)
	}
	return future
}

// Spawn submits fn to the process-wide default pool and returns a
// Future for its result. If ctx carries a TaskGroup (because it
// descends from a BlockOn call), the new task attaches to that group
// so BlockOn's wait covers it.
func Spawn[T any](ctx context.Context, fn func(context.Context) T) *Future[T] {
	return SpawnOn(ctx, Default(), fn)
}

// SpawnOn is Spawn against an explicit pool, for callers using NewPool
// directly instead of the process-wide default.
func SpawnOn[T any](ctx context.Context, p *Pool, fn func(context.Context) T) *Future[T] {
	return submit(ctx, p, fn)
}

// SpawnFunc is Spawn for a callable with no result.
func SpawnFunc(ctx context.Context, fn func(context.Context)) *Future[struct{}] {
	return Spawn(ctx, func(c context.Context) struct{} {
		fn(c)
		return struct{}{}
	})
}

// BlockOn runs fn on the process-wide default pool and blocks until it
// and every task transitively spawned from it (via ctx or a context
// derived from it) have completed.
func BlockOn(ctx context.Context, fn func(context.Context)) error {
	return BlockOnPool(ctx, Default(), fn)
}

// BlockOnPool is BlockOn against an explicit pool.
func BlockOnPool(ctx context.Context, p *Pool, fn func(context.Context)) error {
	group := NewTaskGroup()
	rootCtx := withGroup(ctx, group)
	future := SpawnOn(rootCtx, p, func(c context.Context) struct{} {
		fn(c)
		return struct{}{}
	})
	group.Wait()
	_, err := future.Result()
	return err
}

// CloseAndJoin shuts down the process-wide default pool. See
// Pool.CloseAndJoin.
func CloseAndJoin() error {
	return Default().CloseAndJoin()
}

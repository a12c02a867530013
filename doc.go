// Package fastexec is a work-stealing task executor: a fixed pool of
// worker goroutines, each with its own local queue, that steal from
// each other when idle and share a global queue for external
// submissions and overflow.
//
// # Quick Start
//
//	future := fastexec.Spawn(context.Background(), func(ctx context.Context) int {
//	    return 42
//	})
//	result, err := future.Result()
//
// # Waiting on Several Results
//
// Spawn returns a *Future[T] for whatever type T the task produces.
// Wait accepts a mix of differently-typed futures and returns their
// results in call order:
//
//	a := fastexec.Spawn(ctx, func(ctx context.Context) int { return 1 })
//	b := fastexec.Spawn(ctx, func(ctx context.Context) string { return "hello" })
//	results := fastexec.Wait(a, b)
//	n := results[0].(int)
//	s := results[1].(string)
//
// # Structured Waiting
//
// BlockOn runs a task and blocks until it and every task transitively
// spawned from it (via the ctx passed down the call chain) have
// completed:
//
//	err := fastexec.BlockOn(ctx, func(ctx context.Context) {
//	    for i := 0; i < 5; i++ {
//	        fastexec.SpawnFunc(ctx, func(ctx context.Context) {
//	            // runs concurrently, counted by the same BlockOn
//	        })
//	    }
//	})
//
// # Configuration
//
// The process-wide pool returned by Default is built lazily with
// GOMAXPROCS workers. An independently configured pool can be built
// with NewPool:
//
//	pool, err := fastexec.NewPool(
//	    fastexec.WithWorkerCount(4),
//	    fastexec.WithLocalCapacity(128),
//	    fastexec.WithPanicHandler(func(r any) {
//	        log.Printf("task panicked: %v", r)
//	    }),
//	)
//
// # Shutdown
//
// CloseAndJoin stops accepting new submissions, waits for every
// worker to drain its queues, and returns once every worker goroutine
// has exited:
//
//	if err := fastexec.CloseAndJoin(); err != nil {
//	    log.Fatal(err)
//	}
//
// # Non-goals
//
// There is no task cancellation, no priorities beyond FIFO within a
// queue, no deadlines, and no fairness guarantee across unrelated
// TaskGroups. A blocking task reduces the pool's effective
// parallelism; fastexec does not detect or compensate for this.
//
// See the taskset subpackage for an errgroup-style convenience layer
// built on top of this scheduler.
package fastexec

package fastexec

import (
	"context"
	"sync/atomic"
	"time"
)

// taskFn is the unit of work queued and run by the scheduler. It
// receives the context of the worker goroutine actually running it —
// which may differ, task to task, from the worker that originally
// queued it, since a queued task can be stolen. Spawn's wrapper
// closures use this to re-derive "the worker currently running me" at
// call time (see workerFromContext), the explicit stand-in for the
// per-thread state the original scheduler kept in TLS.
type taskFn func(context.Context)

// idleSleep is how long a worker backs off after finding no work
// anywhere, before checking shutdown and trying again. Grounded on
// original_source/include/fastexec/detail/worker.hpp's spin-then-sleep
// backoff, collapsed to a single fixed sleep since Go's scheduler
// already multiplexes goroutines cheaply — a tight spin loop here would
// only burn a host thread the runtime could give to other goroutines.
const idleSleep = 100 * time.Microsecond

// worker owns one local queue and runs tasks pulled from it, from the
// global queue, or stolen from a sibling, until the pool is closed and
// every queue is empty.
//
// Grounded on Tahsin716-flock/worker.go's Worker (an owned deque plus a
// run loop reaching into the pool for global work and other workers'
// deques for stealing) and original_source/include/fastexec/detail/worker.hpp's
// try_pop -> pop_from_global -> try_steal -> sleep loop.
type worker struct {
	id     int
	local  *localQueue
	shared *shared
	cfg    *Config

	// stealing is set for the duration of this worker's own steal
	// attempt, so shared.pickVictim can exclude it as a target — a
	// worker off stealing from a third party shouldn't also be picked
	// as someone else's victim mid-attempt.
	stealing atomic.Bool
}

func newWorker(id int, cfg *Config, sh *shared) *worker {
	return &worker{
		id:     id,
		local:  newLocalQueue(cfg.LocalCapacity, cfg.Logger),
		shared: sh,
		cfg:    cfg,
	}
}

// run is the worker's goroutine body.
func (w *worker) run() {
	defer w.shared.stopped.Done()

	w.cfg.Logger.Info("worker starting", F("worker", w.id))
	if w.cfg.OnWorkerStart != nil {
		w.cfg.OnWorkerStart(w.id)
	}

	ctx := withWorker(context.Background(), w)

	for {
		if task, ok := w.local.tryPop(); ok {
			task(ctx)
			continue
		}

		if task, ok := w.refillFromGlobal(); ok {
			task(ctx)
			continue
		}

		if task, ok := w.trySteal(); ok {
			task(ctx)
			continue
		}

		if w.shared.global.Closed() && w.local.isEmpty() && w.shared.global.Empty() {
			break
		}

		time.Sleep(idleSleep)
	}

	if w.cfg.OnWorkerStop != nil {
		w.cfg.OnWorkerStop(w.id)
	}
	w.cfg.Logger.Info("worker stopped", F("worker", w.id))
}

// refillFromGlobal pulls a batch from the global queue into the local
// queue and pops one to run immediately. Per spec.md §4.3 step 2, the
// batch size is exactly min(local_remaining, capacity/2) — this is
// only ever called with an empty local queue (tryPop already failed),
// so local_remaining is the full capacity and the batch size collapses
// to capacity/2, which is also a hard ceiling on what pushBackBatch can
// safely write without overflowing the ring buffer.
func (w *worker) refillFromGlobal() (taskFn, bool) {
	n := int(w.local.capacity) / 2
	if n < 1 {
		n = 1
	}
	batch, ok := w.shared.global.TryPopBatch(n)
	if !ok {
		return nil, false
	}
	task := batch[0]
	rest := batch[1:]
	if len(rest) > 0 {
		w.local.pushBackBatch(rest)
	}
	return task, true
}

// trySteal attempts to take a batch of tasks from the biggest sibling
// queue, gated by the pool's active-stealer cap so idle workers don't
// all hammer the same victim at once. If no sibling has anything to
// steal, it falls back to a single pop off the global queue, per
// spec.md §4.3 step 5.
func (w *worker) trySteal() (taskFn, bool) {
	if !w.shared.stealSem.TryAcquire(1) {
		return nil, false
	}
	defer w.shared.stealSem.Release(1)

	w.stealing.Store(true)
	defer w.stealing.Store(false)

	victim := w.shared.pickVictim(w)
	if victim == nil {
		return w.shared.global.TryPop()
	}
	return victim.local.beStolenBy(w.local)
}

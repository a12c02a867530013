package fastexec

import (
	"sync"

	"golang.org/x/sync/semaphore"
)

// shared holds the pool-wide state every worker's run loop reaches
// into: the sibling registry (for choosing a steal victim), the
// global queue, and a cap on how many workers may be actively
// stealing at once.
//
// Grounded on original_source/include/fastexec/detail/shared.hpp,
// which bundles exactly this: the worker vector, the global queue,
// and an atomic active-stealer counter, all owned by one struct handed
// to every worker by pointer.
type shared struct {
	global *globalQueue

	workers []*worker

	// stealSem bounds the number of workers concurrently hunting for
	// work to steal, so an idle pool doesn't have every worker hammering
	// every other worker's queue at once. Sized to floor(workerCount/2)
	// per spec.md §8 Invariant 4 — with a single worker this is 0, so
	// stealing is impossible, matching original_source's plain integer
	// division with no floor clamp. Acquired non-blockingly: a worker
	// that can't get a token just falls through to idle-sleep instead
	// of queuing.
	stealSem *semaphore.Weighted

	// stopped is counted down once per worker as its run loop returns.
	// CloseAndJoin waits on it to know every worker has fully drained.
	stopped sync.WaitGroup
}

func newShared(workerCount int) *shared {
	stealCap := int64(workerCount / 2)
	return &shared{
		global:   newGlobalQueue(),
		workers:  make([]*worker, workerCount),
		stealSem: semaphore.NewWeighted(stealCap),
	}
}

// pickVictim returns the worker with the largest local queue among
// all workers other than self, breaking ties by lowest worker ID, per
// spec.md's steal-target selection rule. A worker that is itself in
// the middle of a steal attempt is excluded, per spec.md §4.3 step 3 —
// grounded on original_source/include/fastexec/detail/worker.hpp's
// is_stealing flag, checked before a worker is offered up as a victim.
// Returns nil if every other eligible worker is empty.
func (s *shared) pickVictim(self *worker) *worker {
	var best *worker
	bestSize := 0
	for _, w := range s.workers {
		if w == self {
			continue
		}
		if w.stealing.Load() {
			continue
		}
		sz := w.local.size()
		if sz == 0 {
			continue
		}
		if best == nil || sz > bestSize {
			best = w
			bestSize = sz
		}
	}
	return best
}

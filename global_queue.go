package fastexec

import (
	"sync"
	"sync/atomic"

	"github.com/eapache/queue"
)

// globalQueue is the pool-wide FIFO ingress point for external
// submissions and the spill target for full local queues. All
// operations lock an internal mutex for their duration; the backing
// storage is a growable ring buffer from github.com/eapache/queue.
type globalQueue struct {
	mu     sync.Mutex
	q      *queue.Queue
	closed atomic.Bool
}

func newGlobalQueue() *globalQueue {
	return &globalQueue{q: queue.New()}
}

// Push appends a single task. Returns ErrQueueClosed if the queue has
// been closed.
func (g *globalQueue) Push(task taskFn) error {
	if g.closed.Load() {
		return ErrQueueClosed
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed.Load() {
		return ErrQueueClosed
	}
	g.q.Add(task)
	return nil
}

// PushBatch appends a batch of tasks, preserving order. Returns
// ErrQueueClosed if the queue has been closed; in that case no task in
// the batch is enqueued.
func (g *globalQueue) PushBatch(tasks []taskFn) error {
	if len(tasks) == 0 {
		return nil
	}
	if g.closed.Load() {
		return ErrQueueClosed
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed.Load() {
		return ErrQueueClosed
	}
	for _, t := range tasks {
		g.q.Add(t)
	}
	return nil
}

// TryPop removes and returns the front task, or (nil, false) if empty.
func (g *globalQueue) TryPop() (taskFn, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.q.Length() == 0 {
		return nil, false
	}
	task := g.q.Peek().(taskFn)
	g.q.Remove()
	return task, true
}

// TryPopBatch removes and returns up to n tasks from the front,
// preserving FIFO order, or (nil, false) if the queue is empty.
func (g *globalQueue) TryPopBatch(n int) ([]taskFn, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.q.Length() == 0 || n == 0 {
		return nil, false
	}
	if n > g.q.Length() {
		n = g.q.Length()
	}
	tasks := make([]taskFn, 0, n)
	for i := 0; i < n; i++ {
		tasks = append(tasks, g.q.Peek().(taskFn))
		g.q.Remove()
	}
	return tasks, true
}

// Close marks the queue closed. Idempotent: closing twice is a no-op
// on the second call. Existing tasks remain poppable; only further
// pushes are rejected.
func (g *globalQueue) Close() {
	g.closed.Store(true)
}

// Closed reports whether Close has been called.
func (g *globalQueue) Closed() bool {
	return g.closed.Load()
}

// Empty reports whether the queue currently has no tasks.
func (g *globalQueue) Empty() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.q.Length() == 0
}

// Size returns the current number of queued tasks.
func (g *globalQueue) Size() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.q.Length()
}

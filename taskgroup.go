package fastexec

import "sync"

// TaskGroup is an atomic scorecard tracking completion of a task and
// every task transitively spawned from it. It is created fresh by
// BlockOn and referenced by every descendant task's context; nothing
// needs to destroy it explicitly — Go's garbage collector retires it
// once the last reference (the waiter and every descendant closure)
// drops, mirroring the reference-counted TaskGroup in the original
// scheduler without any manual bookkeeping.
//
// The implementation is a thin wrapper around sync.WaitGroup, which
// already gives "count outstanding work, block until zero" — exactly
// the mechanism Tahsin716-flock/pool.go's own submitWg uses to
// implement Pool.Wait for the whole pool; TaskGroup narrows that same
// idea to one logical group of descendants.
type TaskGroup struct {
	wg sync.WaitGroup
}

// NewTaskGroup creates an empty TaskGroup.
func NewTaskGroup() *TaskGroup {
	return &TaskGroup{}
}

// Increment records that one more task has joined the group.
func (g *TaskGroup) Increment() {
	g.wg.Add(1)
}

// Decrement records that one task in the group has finished. It must
// be the last observable action of the completing task.
func (g *TaskGroup) Decrement() {
	g.wg.Done()
}

// Wait blocks until every task that has ever called Increment has
// also called Decrement.
func (g *TaskGroup) Wait() {
	g.wg.Wait()
}

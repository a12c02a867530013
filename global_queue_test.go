package fastexec

import (
	"context"
	"errors"
	"testing"
)

func TestGlobalQueue_PushTryPop(t *testing.T) {
	g := newGlobalQueue()

	ran := false
	if err := g.Push(func(context.Context) { ran = true }); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	task, ok := g.TryPop()
	if !ok {
		t.Fatal("expected to pop a task")
	}
	task(context.Background())
	if !ran {
		t.Error("task was not executed")
	}
}

func TestGlobalQueue_TryPopFromEmpty(t *testing.T) {
	g := newGlobalQueue()
	if _, ok := g.TryPop(); ok {
		t.Error("expected no task from an empty queue")
	}
}

func TestGlobalQueue_FIFOOrder(t *testing.T) {
	g := newGlobalQueue()
	var order []int
	for i := 0; i < 5; i++ {
		i := i
		g.Push(func(context.Context) { order = append(order, i) })
	}

	for i := 0; i < 5; i++ {
		task, ok := g.TryPop()
		if !ok {
			t.Fatalf("expected task at position %d", i)
		}
		task(context.Background())
	}
	if len(order) != 5 {
		t.Fatalf("expected 5 pops, got %d", len(order))
	}
	for i, id := range order {
		if id != i {
			t.Errorf("position %d: expected %d, got %d", i, i, id)
		}
	}
}

func TestGlobalQueue_PushBatchPreservesOrder(t *testing.T) {
	g := newGlobalQueue()
	var order []int
	batch := make([]taskFn, 5)
	for i := 0; i < 5; i++ {
		i := i
		batch[i] = func(context.Context) { order = append(order, i) }
	}
	if err := g.PushBatch(batch); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tasks, ok := g.TryPopBatch(5)
	if !ok {
		t.Fatal("expected a batch")
	}
	for _, task := range tasks {
		task(context.Background())
	}
	for i, id := range order {
		if id != i {
			t.Errorf("position %d: expected %d, got %d", i, i, id)
		}
	}
}

func TestGlobalQueue_ClosedRejectsPush(t *testing.T) {
	g := newGlobalQueue()
	g.Close()

	err := g.Push(func(context.Context) {})
	if !errors.Is(err, ErrQueueClosed) {
		t.Errorf("expected ErrQueueClosed, got %v", err)
	}

	err = g.PushBatch([]taskFn{func(context.Context) {}})
	if !errors.Is(err, ErrQueueClosed) {
		t.Errorf("expected ErrQueueClosed from PushBatch, got %v", err)
	}
}

func TestGlobalQueue_ClosedStillDrains(t *testing.T) {
	g := newGlobalQueue()
	g.Push(func(context.Context) {})
	g.Close()

	if _, ok := g.TryPop(); !ok {
		t.Error("expected a closed queue to still yield its remaining tasks")
	}
}

func TestGlobalQueue_TryPopBatchCapsAtAvailable(t *testing.T) {
	g := newGlobalQueue()
	g.Push(func(context.Context) {})
	g.Push(func(context.Context) {})

	tasks, ok := g.TryPopBatch(10)
	if !ok || len(tasks) != 2 {
		t.Fatalf("expected 2 tasks, got %d (ok=%v)", len(tasks), ok)
	}
}

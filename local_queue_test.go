package fastexec

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func noopTask(ran *bool) taskFn {
	return func(context.Context) { *ran = true }
}

func TestLocalQueue_PushPop(t *testing.T) {
	q := newLocalQueue(16, nil)

	ran := false
	q.pushBack(noopTask(&ran), newGlobalQueue())

	if q.size() != 1 {
		t.Fatalf("expected size 1, got %d", q.size())
	}

	task, ok := q.tryPop()
	if !ok {
		t.Fatal("expected to pop a task")
	}
	task(context.Background())
	if !ran {
		t.Error("task was not executed")
	}
	if q.size() != 0 {
		t.Errorf("expected size 0 after pop, got %d", q.size())
	}
}

func TestLocalQueue_PopFromEmpty(t *testing.T) {
	q := newLocalQueue(16, nil)
	if _, ok := q.tryPop(); ok {
		t.Error("expected no task from empty queue")
	}
}

func TestLocalQueue_FIFOOrder(t *testing.T) {
	q := newLocalQueue(16, nil)
	global := newGlobalQueue()

	var order []int
	for i := 0; i < 5; i++ {
		i := i
		q.pushBack(func(context.Context) { order = append(order, i) }, global)
	}

	for i := 0; i < 5; i++ {
		task, ok := q.tryPop()
		if !ok {
			t.Fatalf("expected task at position %d", i)
		}
		task(context.Background())
	}

	expected := []int{0, 1, 2, 3, 4}
	if len(order) != len(expected) {
		t.Fatalf("expected %d tasks run, got %d", len(expected), len(order))
	}
	for i, id := range order {
		if id != expected[i] {
			t.Errorf("position %d: expected %d, got %d", i, expected[i], id)
		}
	}
}

func TestLocalQueue_OverflowSpillsToGlobal(t *testing.T) {
	q := newLocalQueue(4, nil)
	global := newGlobalQueue()

	for i := 0; i < 6; i++ {
		var ran bool
		q.pushBack(noopTask(&ran), global)
	}

	if global.Size() == 0 {
		t.Error("expected overflow to spill into the global queue")
	}
	if q.size()+global.Size() != 6 {
		t.Errorf("expected all 6 tasks accounted for, local=%d global=%d", q.size(), global.Size())
	}
}

func TestLocalQueue_BeStolenByTakesHalf(t *testing.T) {
	victim := newLocalQueue(16, nil)
	thief := newLocalQueue(16, nil)
	global := newGlobalQueue()

	for i := 0; i < 8; i++ {
		var ran bool
		victim.pushBack(noopTask(&ran), global)
	}

	last, ok := victim.beStolenBy(thief)
	if !ok {
		t.Fatal("expected a successful steal")
	}
	if last == nil {
		t.Fatal("expected a non-nil stolen task returned for immediate execution")
	}

	// Half (4) were reserved; one is returned directly, three remain
	// queued on the thief.
	if thief.size() != 3 {
		t.Errorf("expected 3 tasks left on thief's queue, got %d", thief.size())
	}
	if victim.size() != 4 {
		t.Errorf("expected 4 tasks left on victim's queue, got %d", victim.size())
	}
}

func TestLocalQueue_BeStolenByRefusesWhenThiefOverHalfFull(t *testing.T) {
	victim := newLocalQueue(16, nil)
	thief := newLocalQueue(16, nil)
	global := newGlobalQueue()

	for i := 0; i < 8; i++ {
		var ran bool
		victim.pushBack(noopTask(&ran), global)
		thief.pushBack(noopTask(&ran), global)
	}
	// One more puts the thief at 9 of 16 slots, past the half-full mark.
	var extra bool
	thief.pushBack(noopTask(&extra), global)

	if _, ok := victim.beStolenBy(thief); ok {
		t.Error("expected steal to be refused when thief's queue is already over half full")
	}
}

func TestLocalQueue_BeStolenByFromEmptyFails(t *testing.T) {
	victim := newLocalQueue(16, nil)
	thief := newLocalQueue(16, nil)

	if _, ok := victim.beStolenBy(thief); ok {
		t.Error("expected steal from an empty victim to fail")
	}
}

func TestPackUnpackHead(t *testing.T) {
	steal, real := unpackHead(packHead(7, 3))
	if steal != 7 || real != 3 {
		t.Errorf("expected (7, 3), got (%d, %d)", steal, real)
	}
}

// TestLocalQueue_MultipleThieves_NoDuplicatesOrLoss mirrors the
// teacher's TestChaseLevDeque_MultipleThieves: many thieves race to
// steal from one victim via claimSteal/commitSteal until fewer than two
// tasks remain (a steal takes half, rounded down, so a lone task is
// never stolen), the owner then pops what is left, and every task must
// run exactly once with none lost or duplicated. Thieves get the same
// capacity as the victim, as every worker in a pool does.
func TestLocalQueue_MultipleThieves_NoDuplicatesOrLoss(t *testing.T) {
	const numTasks = 2000
	victim := newLocalQueue(4096, nil)
	global := newGlobalQueue()

	executed := make([]int32, numTasks)
	for i := 0; i < numTasks; i++ {
		id := i
		victim.pushBack(func(context.Context) {
			atomic.AddInt32(&executed[id], 1)
		}, global)
	}

	const numThieves = 8
	var wg sync.WaitGroup
	for i := 0; i < numThieves; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			thief := newLocalQueue(4096, nil)
			for {
				last, ok := victim.beStolenBy(thief)
				if !ok {
					if victim.size() < 2 {
						break
					}
					continue
				}
				last(context.Background())
				for {
					task, ok := thief.tryPop()
					if !ok {
						break
					}
					task(context.Background())
				}
			}
		}()
	}
	wg.Wait()

	for {
		task, ok := victim.tryPop()
		if !ok {
			break
		}
		task(context.Background())
	}

	for id, count := range executed {
		if count != 1 {
			t.Errorf("task %d executed %d times, want exactly 1", id, count)
		}
	}
	if !victim.isEmpty() {
		t.Errorf("expected victim queue drained, size=%d", victim.size())
	}
}

// TestLocalQueue_OwnerPushPopThievesSteal mirrors the teacher's test of
// the same name: the owner keeps pushing and popping its own queue
// (exercising overflow spills) while several thieves concurrently
// steal, for a fixed duration. Every pushed task must be accounted for
// exactly once across owner pops, thief runs, and whatever is left
// queued (locally or spilled to global) once everyone stops.
func TestLocalQueue_OwnerPushPopThievesSteal(t *testing.T) {
	owner := newLocalQueue(128, nil)
	global := newGlobalQueue()

	var pushed, ownerRan, thiefRan int64
	stop := make(chan struct{})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
				for i := 0; i < 10; i++ {
					owner.pushBack(func(context.Context) {}, global)
					atomic.AddInt64(&pushed, 1)
				}
				for i := 0; i < 5; i++ {
					if task, ok := owner.tryPop(); ok {
						task(context.Background())
						atomic.AddInt64(&ownerRan, 1)
					}
				}
			}
		}
	}()

	const numThieves = 3
	for i := 0; i < numThieves; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			thief := newLocalQueue(64, nil)
			for {
				select {
				case <-stop:
					return
				default:
					last, ok := owner.beStolenBy(thief)
					if !ok {
						runtime.Gosched()
						continue
					}
					last(context.Background())
					atomic.AddInt64(&thiefRan, 1)
					for {
						task, ok := thief.tryPop()
						if !ok {
							break
						}
						task(context.Background())
						atomic.AddInt64(&thiefRan, 1)
					}
				}
			}
		}()
	}

	time.Sleep(200 * time.Millisecond)
	close(stop)
	wg.Wait()

	// Drain whatever's left: the owner's queue and the global spillover.
	remaining := int64(0)
	for {
		if _, ok := owner.tryPop(); !ok {
			break
		}
		remaining++
	}
	remaining += int64(global.Size())

	finalPushed := atomic.LoadInt64(&pushed)
	finalOwnerRan := atomic.LoadInt64(&ownerRan)
	finalThiefRan := atomic.LoadInt64(&thiefRan)
	total := finalOwnerRan + finalThiefRan + remaining

	if total != finalPushed {
		t.Errorf("task mismatch: pushed %d, owner ran %d, thief ran %d, remaining %d, total %d",
			finalPushed, finalOwnerRan, finalThiefRan, remaining, total)
	}
}

func TestNewLocalQueue_RejectsNonPowerOfTwo(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for non-power-of-two capacity")
		}
	}()
	newLocalQueue(17, nil)
}

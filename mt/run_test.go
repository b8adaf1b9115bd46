package mt

import (
	"sync/atomic"
	"testing"
)

func TestRunCallsEveryTask(t *testing.T) {
	const n = 500
	var seen int64
	hit := make([]int32, n)
	Run(n, func(task Task, _ *Barrier) {
		atomic.AddInt64(&seen, 1)
		atomic.AddInt32(&hit[task.No], 1)
	})
	if seen != n {
		t.Fatalf("expected %d calls, got %d", n, seen)
	}
	for i, c := range hit {
		if c != 1 {
			t.Fatalf("task %d called %d times, want 1", i, c)
		}
	}
}

func TestRunStopFairness(t *testing.T) {
	const rangeN = 1000
	const stopLim = 50
	dispatched, succeeded := RunStop(rangeN, func(task Task, _ *Barrier) bool {
		return task.No%2 == 0
	}, stopLim)

	if succeeded != stopLim {
		t.Fatalf("expected %d successes, got %d", stopLim, succeeded)
	}
	if dispatched < stopLim || dispatched > rangeN {
		t.Fatalf("dispatched %d out of expected bounds [%d,%d]", dispatched, stopLim, rangeN)
	}
}

func TestRunStopExhaustsRangeWhenUnreachable(t *testing.T) {
	const rangeN = 64
	dispatched, succeeded := RunStop(rangeN, func(task Task, _ *Barrier) bool {
		return false
	}, 10)
	if dispatched != rangeN {
		t.Fatalf("expected dispatched == range (%d), got %d", rangeN, dispatched)
	}
	if succeeded != 0 {
		t.Fatalf("expected 0 successes, got %d", succeeded)
	}
}

func TestBarrierRendezvous(t *testing.T) {
	const workers = 8
	var before, after int64
	Run(workers, func(task Task, barrier *Barrier) {
		atomic.AddInt64(&before, 1)
		barrier.Wait()
		// every worker should have incremented before by the time any
		// of them passes the barrier
		if atomic.LoadInt64(&before) != workers {
			t.Errorf("barrier released early: before=%d", atomic.LoadInt64(&before))
		}
		atomic.AddInt64(&after, 1)
	}, Options{Workers: workers})
	if after != workers {
		t.Fatalf("expected %d workers past barrier, got %d", workers, after)
	}
}

func TestPoolPerThreadRand(t *testing.T) {
	p := NewPool(4)
	if p.Size() != 4 {
		t.Fatalf("expected pool size 4, got %d", p.Size())
	}
	a := p.Rand(0).Float64()
	b := p.Rand(1).Float64()
	if a == b {
		t.Logf("rand collision is possible but unlikely: a=%v b=%v", a, b)
	}
}
